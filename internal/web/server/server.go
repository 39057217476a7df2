package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/clients"
	"github.com/xela07ax/guia-juridico-web/internal/domain"
	"github.com/xela07ax/guia-juridico-web/internal/web/handler"
	"github.com/xela07ax/guia-juridico-web/internal/web/middleware"
	"github.com/xela07ax/guia-juridico-web/internal/web/view"
)

// WebServer — SSR-фронтенд: страницы, формы и статика
type WebServer struct {
	router   *chi.Mux
	logger   *zap.Logger
	registry *clients.Registry
	client   middleware.ClientStateConfig
	handler  *handler.Handler
}

func NewWebServer(logger *zap.Logger, registry *clients.Registry, client middleware.ClientStateConfig, h *handler.Handler) *WebServer {
	s := &WebServer{
		router:   chi.NewRouter(),
		logger:   logger.Named("web"),
		registry: registry,
		client:   client,
		handler:  h,
	}

	s.routes()
	return s
}

func (s *WebServer) routes() {
	r := s.router
	h := s.handler

	// --- 1. Инфраструктурные middleware (для всех) ---
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Tracing)
	r.Use(middleware.Logging(s.logger))
	r.Use(chimw.Recoverer)

	// Статика и healthcheck без клиентского состояния
	r.Handle("/static/*", http.StripPrefix("/static/", view.Static()))
	r.Get("/health", h.Health)

	// --- 2. Страницы (клиент по cookie) ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.ClientState(s.registry, s.client, s.logger))
		r.NotFound(h.NotFound)

		// Публичные
		r.Get("/", h.Home)
		r.Get("/sobre", h.About)
		r.Get("/login", h.LoginPage)
		r.Post("/login", h.Login)
		r.Get("/register", h.RegisterPage)
		r.Post("/register", h.Register)
		r.Post("/logout", h.Logout)

		r.Get("/oportunidades", h.Listings)
		r.Post("/oportunidades/{id}/favorito", h.ToggleFavorite)

		// Только с токеном
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireToken)
			r.Get("/perfil", h.Profile)
			r.Post("/perfil", h.UpdateProfile)
		})

		// Организаторы и администраторы
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(http.HandlerFunc(h.Forbidden), domain.PrivilegedRoles...))
			r.Get("/oportunidades/nova", h.NewListing)
			r.Post("/oportunidades/nova", h.CreateListing)
			r.Get("/oportunidades/{id}/editar", h.EditListing)
			r.Post("/oportunidades/{id}/editar", h.UpdateListing)
			r.Get("/oportunidades/{id}/excluir", h.ConfirmDeleteListing)
			r.Post("/oportunidades/{id}/excluir", h.DeleteListing)
		})

		// Администрирование пользователей
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(http.HandlerFunc(h.Forbidden), domain.RoleAdmin))
			r.Get("/admin", h.Admin)
			r.Post("/admin/usuarios/{id}/roles", h.UpdateRoles)
			r.Get("/admin/usuarios/{id}/excluir", h.ConfirmDeleteUser)
			r.Post("/admin/usuarios/{id}/excluir", h.DeleteUser)
		})
	})
}

// ServeHTTP позволяет использовать WebServer как стандартный http.Handler
func (s *WebServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
