package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
)

// LoginRequiredMessage — уведомление при попытке сохранить без входа
const LoginRequiredMessage = "Você precisa estar logado para salvar oportunidades"

type API interface {
	ListFavorites(ctx context.Context, token string) ([]domain.ListingRecord, error)
	AddFavorite(ctx context.Context, token string, listingID int64) error
	RemoveFavorite(ctx context.Context, token string, listingID int64) error
}

type TokenSource interface {
	CurrentToken(ctx context.Context) (string, bool)
}

type Notifier interface {
	Notify(ctx context.Context, message string)
}

type Normalizer interface {
	NormalizeAll(records []domain.ListingRecord) []domain.Listing
}

// Snapshot — неизменяемая копия коллекции для подписчиков
type Snapshot struct {
	Items []domain.Listing
	Count int
}

// Store — кэш избранного одного клиента.
// Любая мутация идет на бэкенд и затем целиком перечитывает коллекцию.
type Store struct {
	api      API
	tokens   TokenSource
	notifier Notifier
	norm     Normalizer
	logger   *zap.Logger

	mu          sync.RWMutex
	items       []domain.Listing
	loaded      bool
	fetchedWith string
	inFlight    map[int64]struct{}

	subsMu  sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

func NewStore(api API, tokens TokenSource, notifier Notifier, norm Normalizer, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		api:      api,
		tokens:   tokens,
		notifier: notifier,
		norm:     norm,
		logger:   logger.Named("favorites"),
		items:    []domain.Listing{},
		inFlight: make(map[int64]struct{}),
		subs:     make(map[int]func(Snapshot)),
	}
}

// Fetch перечитывает коллекцию. Без токена коллекция пустеет без запроса,
// сетевая ошибка тоже оставляет ее пустой.
func (s *Store) Fetch(ctx context.Context) error {
	token, ok := s.tokens.CurrentToken(ctx)
	if !ok {
		s.replace(nil, "", true)
		return nil
	}

	records, err := s.api.ListFavorites(ctx, token)
	if err != nil {
		s.logger.Error("error fetching favorites", zap.Error(err))
		// коллекция пуста, но не считается загруженной: следующий Sync повторит запрос
		s.replace(nil, token, false)
		return err
	}
	s.replace(s.norm.NormalizeAll(records), token, true)
	return nil
}

// Sync перечитывает коллекцию, если токен сменился (вход, выход, истечение).
func (s *Store) Sync(ctx context.Context) error {
	token, _ := s.tokens.CurrentToken(ctx)

	s.mu.RLock()
	fresh := s.loaded && s.fetchedWith == token
	s.mu.RUnlock()

	if fresh {
		return nil
	}
	return s.Fetch(ctx)
}

func (s *Store) IsFavorite(listingID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.ContainsBy(s.items, func(l domain.Listing) bool { return l.ID == listingID })
}

func (s *Store) Items() []domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Listing(nil), s.items...)
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) Add(ctx context.Context, listingID int64) bool {
	return s.mutate(ctx, listingID, "add", s.api.AddFavorite, "Falha ao salvar oportunidade")
}

func (s *Store) Remove(ctx context.Context, listingID int64) bool {
	return s.mutate(ctx, listingID, "remove", s.api.RemoveFavorite, "Falha ao remover oportunidade")
}

// Toggle добавляет или убирает в зависимости от текущего членства
func (s *Store) Toggle(ctx context.Context, listingID int64) bool {
	if s.IsFavorite(listingID) {
		return s.Remove(ctx, listingID)
	}
	return s.Add(ctx, listingID)
}

// Subscribe получает снапшот при каждой замене коллекции.
// Возвращает функцию отписки.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) mutate(ctx context.Context, listingID int64, op string,
	call func(ctx context.Context, token string, listingID int64) error, fallback string) bool {

	token, ok := s.tokens.CurrentToken(ctx)
	if !ok {
		s.notifier.Notify(ctx, LoginRequiredMessage)
		return false
	}

	if !s.acquire(listingID) {
		s.logger.Debug("favorite toggle already in flight", zap.Int64("listing_id", listingID))
		return false
	}
	defer s.release(listingID)

	if err := call(ctx, token, listingID); err != nil {
		s.logger.Error("favorite mutation failed",
			zap.String("op", op),
			zap.Int64("listing_id", listingID),
			zap.Error(err))
		s.notifier.Notify(ctx, failureMessage(err, fallback))
		return false
	}

	_ = s.Fetch(ctx)
	return true
}

func (s *Store) acquire(listingID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[listingID]; busy {
		return false
	}
	s.inFlight[listingID] = struct{}{}
	return true
}

func (s *Store) release(listingID int64) {
	s.mu.Lock()
	delete(s.inFlight, listingID)
	s.mu.Unlock()
}

func (s *Store) replace(items []domain.Listing, token string, loaded bool) {
	if items == nil {
		items = []domain.Listing{}
	}

	s.mu.Lock()
	s.items = items
	s.loaded = loaded
	s.fetchedWith = token
	snap := Snapshot{Items: append([]domain.Listing(nil), items...), Count: len(items)}
	s.mu.Unlock()

	s.publish(snap)
}

func (s *Store) publish(snap Snapshot) {
	s.subsMu.Lock()
	subs := lo.Values(s.subs)
	s.subsMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func failureMessage(err error, fallback string) string {
	var netErr *domain.NetworkError
	if errors.As(err, &netErr) && netErr.Status != 0 {
		msg := netErr.Message
		if msg == "" {
			msg = fallback
		}
		return fmt.Sprintf("Erro %d: %s", netErr.Status, msg)
	}
	return domain.ConnectionErrorMessage
}
