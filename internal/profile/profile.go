package profile

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
)

// UpdateFailedMessage — общий текст ошибки сохранения профиля
const UpdateFailedMessage = "Erro ao atualizar perfil. Tente novamente."

const minPasswordLength = 6

type API interface {
	GetProfile(ctx context.Context, token string) (*domain.User, error)
	UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, token string, change domain.PasswordChange) error
}

// Session — то, что профилю нужно от сессии клиента
type Session interface {
	CurrentToken(ctx context.Context) (string, bool)
	Session(ctx context.Context) *domain.Session
	CachedUser(ctx context.Context) (*domain.User, bool)
	CacheUser(ctx context.Context, u *domain.User)
}

type Service struct {
	api    API
	logger *zap.Logger
}

func NewService(api API, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, logger: logger.Named("profile")}
}

// Load: свежий профиль с бэкенда, при ошибке кэш userInfo,
// в крайнем случае личность из токена.
func (s *Service) Load(ctx context.Context, sess Session) (*domain.User, error) {
	token, ok := sess.CurrentToken(ctx)
	if !ok {
		return nil, domain.ErrNoSession
	}

	u, err := s.api.GetProfile(ctx, token)
	if err == nil {
		sess.CacheUser(ctx, u)
		return u, nil
	}
	s.logger.Warn("failed to fetch profile, using cached copy", zap.Error(err))

	if cached, ok := sess.CachedUser(ctx); ok {
		return cached, nil
	}
	return fromSession(sess.Session(ctx)), nil
}

func fromSession(s *domain.Session) *domain.User {
	u := &domain.User{Nome: "Usuário"}
	if s == nil {
		return u
	}
	u.Nome = s.DisplayName
	u.Email = s.Email
	for _, r := range s.Roles {
		u.Roles = append(u.Roles, string(r))
	}
	return u
}

// EditForm — форма редактирования профиля
type EditForm struct {
	Nome           string
	Celular        string
	ChangePassword bool
	SenhaAtual     string
	SenhaNova      string
	ConfirmarSenha string
}

func EditFormFromUser(u *domain.User) EditForm {
	if u == nil {
		return EditForm{}
	}
	return EditForm{Nome: u.Nome, Celular: u.Celular}
}

func EditFormFromValues(v url.Values) EditForm {
	return EditForm{
		Nome:           v.Get("nome"),
		Celular:        v.Get("celular"),
		ChangePassword: v.Get("alterarSenha") != "",
		SenhaAtual:     v.Get("senhaAtual"),
		SenhaNova:      v.Get("senhaNova"),
		ConfirmarSenha: v.Get("confirmarSenha"),
	}
}

func (f EditForm) Validate() domain.FieldErrors {
	errs := domain.FieldErrors{}
	if strings.TrimSpace(f.Nome) == "" {
		errs["nome"] = "Nome é obrigatório"
	}
	if !f.ChangePassword {
		return errs
	}

	if strings.TrimSpace(f.SenhaAtual) == "" {
		errs["senhaAtual"] = "Senha atual é obrigatória"
	}
	switch {
	case strings.TrimSpace(f.SenhaNova) == "":
		errs["senhaNova"] = "Nova senha é obrigatória"
	case utf8.RuneCountInString(f.SenhaNova) < minPasswordLength:
		errs["senhaNova"] = "Nova senha deve ter pelo menos 6 caracteres"
	}
	if f.SenhaNova != f.ConfirmarSenha {
		errs["confirmarSenha"] = "Confirmação de senha não confere"
	}
	return errs
}

// Update сохраняет имя и телефон, затем (если нужно) пароль.
// После успеха обновляет кэш userInfo.
func (s *Service) Update(ctx context.Context, sess Session, current *domain.User, form EditForm) (*domain.User, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, &domain.ValidationError{Fields: errs}
	}
	token, ok := sess.CurrentToken(ctx)
	if !ok {
		return nil, domain.ErrNoSession
	}

	update := domain.ProfileUpdate{Nome: strings.TrimSpace(form.Nome), Celular: strings.TrimSpace(form.Celular)}
	saved, err := s.api.UpdateProfile(ctx, token, update)
	if err != nil {
		s.logger.Error("failed to update profile", zap.Error(err))
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if form.ChangePassword {
		change := domain.PasswordChange{SenhaAtual: form.SenhaAtual, SenhaNova: form.SenhaNova}
		if err := s.api.ChangePassword(ctx, token, change); err != nil {
			s.logger.Error("failed to change password", zap.Error(err))
			return nil, fmt.Errorf("change password: %w", err)
		}
	}

	merged := domain.User{}
	if current != nil {
		merged = *current
	}
	if saved != nil && saved.Email != "" {
		merged = *saved
	}
	merged.Nome, merged.Celular = update.Nome, update.Celular
	sess.CacheUser(ctx, &merged)

	s.logger.Info("profile updated", zap.Bool("password_changed", form.ChangePassword))
	return &merged, nil
}

// SavedCountLabel — "1 oportunidade salva", "3 oportunidades salvas"
func SavedCountLabel(n int) string {
	if n == 1 {
		return "1 oportunidade salva"
	}
	return fmt.Sprintf("%d oportunidades salvas", n)
}
