package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/apiclient"
	"github.com/xela07ax/guia-juridico-web/internal/catalog"
	"github.com/xela07ax/guia-juridico-web/internal/clients"
	"github.com/xela07ax/guia-juridico-web/internal/domain"
	"github.com/xela07ax/guia-juridico-web/internal/infra"
	"github.com/xela07ax/guia-juridico-web/internal/profile"
	"github.com/xela07ax/guia-juridico-web/internal/session"
	"github.com/xela07ax/guia-juridico-web/internal/web/handler"
	"github.com/xela07ax/guia-juridico-web/internal/web/middleware"
	"github.com/xela07ax/guia-juridico-web/internal/web/view"
)

type noAuth struct{}

func (noAuth) Login(context.Context, domain.Credentials) (string, error) { return "", nil }

func newTestServer(t *testing.T, backend http.Handler) *WebServer {
	t.Helper()
	api := httptest.NewServer(backend)
	t.Cleanup(api.Close)

	logger := zap.NewNop()
	client := apiclient.New(infra.APIConfig{BaseURL: api.URL + "/api", Timeout: time.Second, ReadAttempts: 1}, api.Client(), nil, logger)
	decoder, err := session.NewTokenDecoder(infra.AuthConfig{})
	require.NoError(t, err)
	norm := catalog.NewNormalizer(nil, time.UTC, time.Now)

	registry := clients.NewRegistry(clients.Deps{
		Storage:    session.NewMemoryStorage(),
		AuthAPI:    noAuth{},
		Decoder:    decoder,
		Favorites:  client,
		Normalizer: norm,
	})
	renderer, err := view.New(logger)
	require.NoError(t, err)

	h := handler.New(handler.Deps{
		View:      renderer,
		Catalog:   catalog.NewService(client, norm, logger),
		Profile:   profile.NewService(client, logger),
		AdminAPI:  client,
		Registrar: client,
		Logger:    logger,
	})
	return NewWebServer(logger, registry, middleware.ClientStateConfig{CookieName: "gj_client", MaxAge: time.Hour}, h)
}

func TestWebServer_HealthSkipsClientState(t *testing.T) {
	srv := newTestServer(t, http.NotFoundHandler())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
	assert.NotEmpty(t, rec.Header().Get(apiclient.TraceHeader))
}

func TestWebServer_ServesStaticAssets(t *testing.T) {
	srv := newTestServer(t, http.NotFoundHandler())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestWebServer_GatesRedirectAnonymous(t *testing.T) {
	srv := newTestServer(t, http.NotFoundHandler())

	for _, path := range []string{"/perfil", "/admin", "/oportunidades/nova", "/oportunidades/1/editar"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

func TestWebServer_PublicPagesRender(t *testing.T) {
	srv := newTestServer(t, http.NotFoundHandler())

	for _, path := range []string{"/", "/sobre", "/login", "/register"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", path)
	}
}
