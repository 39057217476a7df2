package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
)

// AccessDeniedMessage — текст для всех, у кого нет ROLE_ADMIN
const AccessDeniedMessage = "Acesso negado. Apenas administradores podem acessar esta página."

type API interface {
	ListUsers(ctx context.Context, token string) ([]domain.User, error)
	DeleteUser(ctx context.Context, token string, userID int64) error
	UpdateUserRoles(ctx context.Context, token string, userID int64, roles []string) error
}

type Viewer interface {
	CurrentToken(ctx context.Context) (string, bool)
	HasRole(ctx context.Context, role domain.Role) bool
}

// Manager — список пользователей для одного запроса админки.
type Manager struct {
	api    API
	viewer Viewer
	logger *zap.Logger

	users []domain.User
}

func NewManager(api API, viewer Viewer, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{api: api, viewer: viewer, logger: logger.Named("admin")}
}

// Load читает всех пользователей
func (m *Manager) Load(ctx context.Context) error {
	token, err := m.authorize(ctx, "list users")
	if err != nil {
		return err
	}
	users, err := m.api.ListUsers(ctx, token)
	if err != nil {
		m.logger.Error("failed to load users", zap.Error(err))
		return fmt.Errorf("load users: %w", err)
	}
	m.users = users
	return nil
}

func (m *Manager) Users() []domain.User {
	return append([]domain.User(nil), m.users...)
}

// UpdateRoles заменяет набор ролей целиком и перечитывает список.
// Пустой набор отклоняется без запроса.
func (m *Manager) UpdateRoles(ctx context.Context, userID int64, roles []string) error {
	token, err := m.authorize(ctx, "update roles")
	if err != nil {
		return err
	}

	roles = lo.Uniq(lo.Map(roles, func(r string, _ int) string { return strings.TrimSpace(r) }))
	roles = lo.Compact(roles)
	if len(roles) == 0 {
		return &domain.ValidationError{Fields: domain.FieldErrors{"roles": "Selecione pelo menos uma role"}}
	}
	if unknown, found := lo.Find(roles, func(r string) bool { return !domain.IsKnownRole(domain.Role(r)) }); found {
		return &domain.ValidationError{Fields: domain.FieldErrors{"roles": "Role desconhecida: " + unknown}}
	}

	if err := m.api.UpdateUserRoles(ctx, token, userID, roles); err != nil {
		m.logger.Error("failed to update roles", zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("update roles: %w", err)
	}
	m.logger.Info("roles updated", zap.Int64("user_id", userID), zap.Strings("roles", roles))
	return m.Load(ctx)
}

// Delete убирает пользователя локально сразу после ответа бэкенда
func (m *Manager) Delete(ctx context.Context, userID int64) error {
	token, err := m.authorize(ctx, "delete user")
	if err != nil {
		return err
	}
	if err := m.api.DeleteUser(ctx, token, userID); err != nil {
		m.logger.Error("failed to delete user", zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("delete user: %w", err)
	}
	m.users = lo.Reject(m.users, func(u domain.User, _ int) bool { return u.ID == userID })
	m.logger.Info("user deleted", zap.Int64("user_id", userID))
	return nil
}

// Find ищет пользователя в загруженном списке
func (m *Manager) Find(userID int64) (domain.User, bool) {
	return lo.Find(m.users, func(u domain.User) bool { return u.ID == userID })
}

func (m *Manager) authorize(ctx context.Context, action string) (string, error) {
	token, ok := m.viewer.CurrentToken(ctx)
	if !ok {
		return "", domain.ErrNoSession
	}
	if !m.viewer.HasRole(ctx, domain.RoleAdmin) {
		return "", &domain.NotAuthorizedError{Action: action, Required: []domain.Role{domain.RoleAdmin}}
	}
	return token, nil
}

// Filter — подстрока без учета регистра в имени или email
func Filter(users []domain.User, query string) []domain.User {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return users
	}
	return lo.Filter(users, func(u domain.User, _ int) bool {
		return strings.Contains(strings.ToLower(u.Nome), q) || strings.Contains(strings.ToLower(u.Email), q)
	})
}

// FormatRoles — роли без префикса ROLE_, пустой набор показывается как USUARIO
func FormatRoles(roles []string) string {
	if len(roles) == 0 {
		return domain.RoleUsuario.Label()
	}
	return strings.Join(lo.Map(roles, func(r string, _ int) string { return domain.Role(r).Label() }), ", ")
}

// SelectedRoles — предвыбор для формы ролей
func SelectedRoles(u domain.User) []string {
	if len(u.Roles) == 0 {
		return []string{string(domain.RoleUsuario)}
	}
	return u.Roles
}

// CountLabel — "N usuário(s) encontrado(s)"
func CountLabel(n int) string {
	return strconv.Itoa(n) + " usuário(s) encontrado(s)"
}
