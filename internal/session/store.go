package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
	"github.com/xela07ax/guia-juridico-web/internal/infra"
)

// LoginFailedMessage — текст по умолчанию при отказе в логине
const LoginFailedMessage = "Falha na autenticação. Verifique suas credenciais."

// AuthAPI — часть клиента бэкенда, нужная для входа
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (string, error)
}

// Store — сессия одного браузерного клиента.
// Токен лежит в ClientStorage, раскодированная Session держится в памяти.
// Просроченный токен удаляется лениво при первом обращении.
type Store struct {
	clientID string
	storage  ClientStorage
	api      AuthAPI
	decoder  *TokenDecoder
	now      func() time.Time
	logger   *zap.Logger

	mu      sync.RWMutex
	token   string
	session *domain.Session
}

func NewStore(clientID string, storage ClientStorage, api AuthAPI, decoder *TokenDecoder, now func() time.Time, logger *zap.Logger) *Store {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		clientID: clientID,
		storage:  storage,
		api:      api,
		decoder:  decoder,
		now:      now,
		logger:   logger.Named("session"),
	}
}

// ClientID — идентификатор браузерного клиента
func (s *Store) ClientID() string { return s.clientID }

// Init читает сохраненный токен. Битый или просроченный токен стирается,
// это не ошибка: клиент просто становится анонимным.
func (s *Store) Init(ctx context.Context) error {
	return s.Reload(ctx)
}

// Reload сверяет токен в памяти с ClientStorage и подхватывает
// вход или выход, сделанный другой репликой.
func (s *Store) Reload(ctx context.Context) error {
	token, ok, err := s.storage.Get(ctx, s.clientID, infra.StorageKeyAuthToken)
	if err != nil {
		return err
	}
	if !ok {
		token = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if token == s.token {
		return nil
	}
	s.token, s.session = "", nil
	if token == "" {
		return nil
	}

	sess, err := s.decode(token)
	if err != nil {
		s.logger.Info("dropping unreadable token", zap.String("client_id", s.clientID), zap.Error(err))
		return s.storage.Delete(ctx, s.clientID, infra.StorageKeyAuthToken)
	}
	if sess.Expired(s.now()) {
		return s.storage.Delete(ctx, s.clientID, infra.StorageKeyAuthToken)
	}

	s.token, s.session = token, sess
	return nil
}

// CurrentToken возвращает токен, только если он еще не истек.
func (s *Store) CurrentToken(ctx context.Context) (string, bool) {
	if !s.ensureFresh(ctx) {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Session — копия текущей сессии или nil
func (s *Store) Session(ctx context.Context) *domain.Session {
	if !s.ensureFresh(ctx) {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	cp.Roles = append([]domain.Role(nil), s.session.Roles...)
	return &cp
}

func (s *Store) HasRole(ctx context.Context, role domain.Role) bool {
	return s.Session(ctx).HasRole(role)
}

func (s *Store) HasAnyOf(ctx context.Context, roles ...domain.Role) bool {
	return s.Session(ctx).HasAnyOf(roles...)
}

// Login меняет учетные данные на токен. Ответ 400/401/403 и ответ без
// токена дают AuthError; обрыв связи возвращается как NetworkError.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	token, err := s.api.Login(ctx, creds)
	if err != nil {
		var netErr *domain.NetworkError
		if errors.As(err, &netErr) && isRejection(netErr.Status) {
			msg := netErr.Message
			if msg == "" {
				msg = LoginFailedMessage
			}
			return nil, &domain.AuthError{Message: msg, Cause: err}
		}
		return nil, err
	}
	if token == "" {
		return nil, &domain.AuthError{Message: LoginFailedMessage}
	}

	sess, err := s.decode(token)
	if err != nil {
		return nil, &domain.AuthError{Message: LoginFailedMessage, Cause: err}
	}
	if sess.Expired(s.now()) {
		return nil, &domain.AuthError{Message: LoginFailedMessage, Cause: errors.New("token already expired")}
	}

	if err := s.storage.Set(ctx, s.clientID, infra.StorageKeyAuthToken, token); err != nil {
		return nil, err
	}
	// кэш профиля принадлежал прошлой личности
	if err := s.storage.Delete(ctx, s.clientID, infra.StorageKeyUserInfo); err != nil {
		s.logger.Warn("failed to drop cached user info", zap.Error(err))
	}

	s.mu.Lock()
	s.token, s.session = token, sess
	s.mu.Unlock()

	s.logger.Info("user logged in", zap.String("client_id", s.clientID), zap.String("user_id", sess.UserID))
	cp := *sess
	return &cp, nil
}

// Logout идемпотентен
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token, s.session = "", nil
	s.mu.Unlock()
	return s.storage.Delete(ctx, s.clientID, infra.StorageKeyAuthToken, infra.StorageKeyUserInfo)
}

// Notify сохраняет одноразовое уведомление для следующей страницы
func (s *Store) Notify(ctx context.Context, message string) {
	if err := s.storage.Set(ctx, s.clientID, infra.StorageKeyFlash, message); err != nil {
		s.logger.Warn("failed to store notice", zap.Error(err))
	}
}

// PopNotice отдает и стирает уведомление
func (s *Store) PopNotice(ctx context.Context) string {
	msg, ok, err := s.storage.Get(ctx, s.clientID, infra.StorageKeyFlash)
	if err != nil || !ok {
		return ""
	}
	if err := s.storage.Delete(ctx, s.clientID, infra.StorageKeyFlash); err != nil {
		s.logger.Warn("failed to drop notice", zap.Error(err))
	}
	return msg
}

// CachedUser — последний известный профиль (userInfo)
func (s *Store) CachedUser(ctx context.Context) (*domain.User, bool) {
	raw, ok, err := s.storage.Get(ctx, s.clientID, infra.StorageKeyUserInfo)
	if err != nil || !ok {
		return nil, false
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, false
	}
	return &u, true
}

func (s *Store) CacheUser(ctx context.Context, u *domain.User) {
	if u == nil {
		return
	}
	data, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := s.storage.Set(ctx, s.clientID, infra.StorageKeyUserInfo, string(data)); err != nil {
		s.logger.Warn("failed to cache user info", zap.Error(err))
	}
}

// ensureFresh стирает истекший токен; false — сессии нет
func (s *Store) ensureFresh(ctx context.Context) bool {
	s.mu.RLock()
	sess := s.session
	s.mu.RUnlock()
	if sess == nil {
		return false
	}
	if !sess.Expired(s.now()) {
		return true
	}

	s.mu.Lock()
	if s.session == sess {
		s.token, s.session = "", nil
	}
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, s.clientID, infra.StorageKeyAuthToken); err != nil {
		s.logger.Warn("failed to drop expired token", zap.Error(err))
	}
	s.logger.Info("token expired", zap.String("client_id", s.clientID))
	return false
}

func (s *Store) decode(token string) (*domain.Session, error) {
	claims, err := s.decoder.Decode(token)
	if err != nil {
		return nil, err
	}
	return domain.SessionFromClaims(claims)
}

func isRejection(status int) bool {
	return status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden
}
