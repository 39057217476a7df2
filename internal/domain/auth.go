package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role — роль пользователя в бэкенде (Spring authorities)
type Role string

const (
	RoleUsuario     Role = "ROLE_USUARIO"
	RoleOrganizador Role = "ROLE_ORGANIZADOR"
	RoleAdmin       Role = "ROLE_ADMIN"
)

// AllRoles — фиксированный набор ролей, который может назначить администратор.
var AllRoles = []Role{RoleUsuario, RoleOrganizador, RoleAdmin}

// PrivilegedRoles дают право создавать, менять и удалять публикации.
var PrivilegedRoles = []Role{RoleAdmin, RoleOrganizador}

// IsKnownRole проверяет, что роль входит в фиксированный набор.
func IsKnownRole(r Role) bool {
	return slices.Contains(AllRoles, r)
}

// Label убирает префикс ROLE_ для отображения
func (r Role) Label() string {
	return strings.TrimPrefix(string(r), "ROLE_")
}

// CustomClaims — содержимое JWT, который выдает бэкенд.
// Бэкенд не стабилен в именах полей, поэтому держим оба варианта.
type CustomClaims struct {
	UserID      any      `json:"userId,omitempty"`
	ID          any      `json:"id,omitempty"`
	Nome        string   `json:"nome,omitempty"`
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Authorities []string `json:"authorities,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Session — раскодированная личность текущего пользователя.
// Создается только из токена, самостоятельно не конструируется.
type Session struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Roles       []Role    `json:"roles"`
	TokenExpiry time.Time `json:"token_expiry"`
}

// SessionFromClaims собирает Session из claims. Expiry обязателен.
func SessionFromClaims(c *CustomClaims) (*Session, error) {
	if c == nil || c.ExpiresAt == nil {
		return nil, fmt.Errorf("token has no expiry")
	}

	s := &Session{
		UserID:      firstNonEmpty(idString(c.UserID), idString(c.ID)),
		DisplayName: firstNonEmpty(c.Nome, c.Name),
		Email:       c.Email,
		TokenExpiry: c.ExpiresAt.Time,
	}
	// В токенах Spring subject — это email
	if s.Email == "" && strings.Contains(c.Subject, "@") {
		s.Email = c.Subject
	}
	if s.UserID == "" && !strings.Contains(c.Subject, "@") {
		s.UserID = c.Subject
	}
	if s.DisplayName == "" {
		s.DisplayName = firstNonEmpty(s.Email, c.Subject)
	}

	seen := make(map[Role]struct{})
	for _, raw := range append(slices.Clone(c.Authorities), c.Roles...) {
		r := Role(strings.TrimSpace(raw))
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		s.Roles = append(s.Roles, r)
	}
	return s, nil
}

// HasRole — чистый предикат над набором ролей
func (s *Session) HasRole(role Role) bool {
	if s == nil {
		return false
	}
	return slices.Contains(s.Roles, role)
}

// HasAnyOf возвращает true, если у сессии есть хотя бы одна из ролей.
func (s *Session) HasAnyOf(roles ...Role) bool {
	for _, r := range roles {
		if s.HasRole(r) {
			return true
		}
	}
	return false
}

// Expired сравнивает срок жизни токена с переданным временем.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.TokenExpiry)
}

// Credentials — тело POST /auth/login
type Credentials struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// TokenResponse — ответ бэкенда на логин
type TokenResponse struct {
	Token string `json:"token"`
}

// RegisterRequest — тело POST /auth/register
type RegisterRequest struct {
	Nome    string `json:"nome"`
	Email   string `json:"email"`
	Senha   string `json:"senha"`
	Celular string `json:"celular,omitempty"`
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprint(id)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
