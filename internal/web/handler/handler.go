package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/admin"
	"github.com/xela07ax/guia-juridico-web/internal/catalog"
	"github.com/xela07ax/guia-juridico-web/internal/clients"
	"github.com/xela07ax/guia-juridico-web/internal/domain"
	"github.com/xela07ax/guia-juridico-web/internal/profile"
	"github.com/xela07ax/guia-juridico-web/internal/web/middleware"
	"github.com/xela07ax/guia-juridico-web/internal/web/view"
)

// Registrar — регистрация нового пользователя на бэкенде
type Registrar interface {
	Register(ctx context.Context, req domain.RegisterRequest) error
}

type Deps struct {
	View      *view.Renderer
	Catalog   *catalog.Service
	Profile   *profile.Service
	AdminAPI  admin.API
	Registrar Registrar
	Logger    *zap.Logger
}

// Handler — страницы и формы веб-фронтенда
type Handler struct {
	view      *view.Renderer
	catalog   *catalog.Service
	profile   *profile.Service
	adminAPI  admin.API
	registrar Registrar
	logger    *zap.Logger
}

func New(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Handler{
		view:      d.View,
		catalog:   d.Catalog,
		profile:   d.Profile,
		adminAPI:  d.AdminAPI,
		registrar: d.Registrar,
		logger:    d.Logger.Named("handler"),
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	page := view.Page{Title: title, Data: data}
	if c := middleware.ClientFrom(r.Context()); c != nil {
		ctx := r.Context()
		page.Session = c.Session.Session(ctx)
		page.Privileged = page.Session.HasAnyOf(domain.PrivilegedRoles...)
		page.Admin = page.Session.HasRole(domain.RoleAdmin)
		page.Notice = c.Session.PopNotice(ctx)
	}
	h.view.Render(w, status, name, page)
}

// Forbidden — страница 403, в том числе для гейтов роутера
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, "error", "Acesso negado", admin.AccessDeniedMessage)
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "error", "Página não encontrada", "A página que você procura não existe.")
}

func (h *Handler) client(r *http.Request) *clients.Client {
	return middleware.ClientFrom(r.Context())
}

func (h *Handler) notify(r *http.Request, msg string) {
	h.client(r).Session.Notify(r.Context(), msg)
}

// failAction разбирает ошибку привилегированного действия:
// нет сессии — на /login, нет роли — 403. false — ошибка не из этих.
func (h *Handler) failAction(w http.ResponseWriter, r *http.Request, err error) bool {
	var denied *domain.NotAuthorizedError
	switch {
	case errors.Is(err, domain.ErrNoSession):
		redirect(w, r, "/login")
		return true
	case errors.As(err, &denied):
		h.Forbidden(w, r)
		return true
	}
	return false
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// safeReturn пропускает только локальные пути
func safeReturn(target, fallback string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.Contains(target, "\\") {
		return target
	}
	return fallback
}
