package catalog

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
)

// API — часть клиента бэкенда, нужная каталогу
type API interface {
	ListAllListings(ctx context.Context) ([]domain.ListingRecord, error)
	ListListings(ctx context.Context, token string, params url.Values) ([]domain.ListingRecord, error)
	GetListing(ctx context.Context, token string, id int64) (*domain.ListingRecord, error)
	CreateListing(ctx context.Context, token string, payload domain.ListingPayload) (*domain.ListingRecord, error)
	UpdateListing(ctx context.Context, token string, id int64, payload domain.ListingPayload) (*domain.ListingRecord, error)
	DeleteListing(ctx context.Context, token string, id int64) error
}

// Viewer — сессия того, кто смотрит каталог
type Viewer interface {
	CurrentToken(ctx context.Context) (string, bool)
	HasAnyOf(ctx context.Context, roles ...domain.Role) bool
}

type Service struct {
	api    API
	norm   *Normalizer
	logger *zap.Logger
}

func NewService(api API, norm *Normalizer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, norm: norm, logger: logger.Named("catalog")}
}

// Normalizer нужен Favorites Store, чтобы карточки выглядели одинаково
func (s *Service) Normalizer() *Normalizer { return s.norm }

// Fetch — весь каталог, уже нормализованный
func (s *Service) Fetch(ctx context.Context) ([]domain.Listing, error) {
	records, err := s.api.ListAllListings(ctx)
	if err != nil {
		s.logger.Error("failed to fetch listings", zap.Error(err))
		return nil, err
	}
	return s.norm.NormalizeAll(records), nil
}

// Query — выборка с фильтрами на стороне бэкенда
func (s *Service) Query(ctx context.Context, viewer Viewer, params url.Values) ([]domain.Listing, error) {
	token, _ := viewer.CurrentToken(ctx)
	records, err := s.api.ListListings(ctx, token, params)
	if err != nil {
		return nil, err
	}
	return s.norm.NormalizeAll(records), nil
}

// CanManage — видны ли создание, правка и удаление
func (s *Service) CanManage(ctx context.Context, viewer Viewer) bool {
	return viewer.HasAnyOf(ctx, domain.PrivilegedRoles...)
}

// Get — сырая запись для предзаполнения редактора
func (s *Service) Get(ctx context.Context, viewer Viewer, id int64) (*domain.ListingRecord, error) {
	token, _ := viewer.CurrentToken(ctx)
	return s.api.GetListing(ctx, token, id)
}

// Save создает публикацию (id == 0) или меняет существующую.
func (s *Service) Save(ctx context.Context, viewer Viewer, id int64, payload domain.ListingPayload) error {
	token, err := s.authorize(ctx, viewer, "save listing")
	if err != nil {
		return err
	}

	if id == 0 {
		_, err = s.api.CreateListing(ctx, token, payload)
	} else {
		_, err = s.api.UpdateListing(ctx, token, id, payload)
	}
	if err != nil {
		s.logger.Error("failed to save listing", zap.Int64("listing_id", id), zap.Error(err))
		return fmt.Errorf("save listing: %w", err)
	}
	s.logger.Info("listing saved", zap.Int64("listing_id", id), zap.String("title", payload.Title))
	return nil
}

func (s *Service) Delete(ctx context.Context, viewer Viewer, id int64) error {
	token, err := s.authorize(ctx, viewer, "delete listing")
	if err != nil {
		return err
	}
	if err := s.api.DeleteListing(ctx, token, id); err != nil {
		s.logger.Error("failed to delete listing", zap.Int64("listing_id", id), zap.Error(err))
		return fmt.Errorf("delete listing: %w", err)
	}
	s.logger.Info("listing deleted", zap.Int64("listing_id", id))
	return nil
}

func (s *Service) authorize(ctx context.Context, viewer Viewer, action string) (string, error) {
	token, ok := viewer.CurrentToken(ctx)
	if !ok {
		return "", domain.ErrNoSession
	}
	if !viewer.HasAnyOf(ctx, domain.PrivilegedRoles...) {
		return "", &domain.NotAuthorizedError{Action: action, Required: domain.PrivilegedRoles}
	}
	return token, nil
}
