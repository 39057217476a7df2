package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
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
	"github.com/xela07ax/guia-juridico-web/internal/web/server"
	"github.com/xela07ax/guia-juridico-web/internal/web/view"
)

// fakeBackend — REST бэкенд в памяти с теми же путями, что и настоящий
type fakeBackend struct {
	mu sync.Mutex

	token       string
	loginStatus int
	listStatus  int
	saveStatus  int
	saveMessage string

	// saveHangup рвет соединение вместо ответа
	saveHangup    bool
	deleteStatus  int
	deleteMessage string

	listings   []domain.ListingRecord
	favorites  []int64
	users      []domain.User
	me         domain.User
	registered []domain.RegisterRequest
	created    []domain.ListingPayload
	updated    map[int64]domain.ListingPayload
	deleted    []int64
	roles      map[int64][]string
	passwords  []domain.PasswordChange
}

func newFakeBackend() *fakeBackend {
	today := time.Now().Format(domain.DateLayout)
	nextMonth := time.Now().AddDate(0, 1, 0).Format(domain.DateLayout)
	return &fakeBackend{
		listings: []domain.ListingRecord{
			{ID: 1, Title: "Estágio no TJSP", Company: "TJSP", Location: "São Paulo", Type: string(domain.TypeEstagio),
				Requirements: json.RawMessage(`"[\"Cursando Direito\"]"`), OpeningDate: today, ClosingDate: nextMonth},
			{ID: 2, Title: "Congresso de Direito Digital", Company: "OAB", Location: "Brasília", Type: string(domain.TypeCongresso),
				OpeningDate: today, ClosingDate: nextMonth},
		},
		users: []domain.User{
			{ID: 10, Nome: "Ana Souza", Email: "ana@x.com", Roles: []string{"ROLE_ADMIN"}},
			{ID: 11, Nome: "Bruno Lima", Email: "bruno@x.com"},
		},
		me:      domain.User{ID: 42, Nome: "Ana Souza", Email: "ana@x.com", Celular: "11999990000"},
		updated: map[int64]domain.ListingPayload{},
		roles:   map[int64][]string{},
	}
}

func (b *fakeBackend) listingByID(id int64) (domain.ListingRecord, bool) {
	for _, l := range b.listings {
		if l.ID == id {
			return l, true
		}
	}
	return domain.ListingRecord{}, false
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func hangup(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic("response writer does not support hijacking")
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		panic(err)
	}
	_ = conn.Close()
}

func (b *fakeBackend) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.loginStatus != 0 {
			writeJSON(w, b.loginStatus, map[string]string{"message": "Credenciais inválidas"})
			return
		}
		writeJSON(w, http.StatusOK, domain.TokenResponse{Token: b.token})
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req domain.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.registered = append(b.registered, req)
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("GET /api/oportunidades/todas", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.listStatus != 0 {
			w.WriteHeader(b.listStatus)
			return
		}
		writeJSON(w, http.StatusOK, b.listings)
	})
	mux.HandleFunc("GET /api/oportunidades/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		l, ok := b.listingByID(pathID(r))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Oportunidade não encontrada"})
			return
		}
		writeJSON(w, http.StatusOK, l)
	})
	mux.HandleFunc("POST /api/oportunidades", func(w http.ResponseWriter, r *http.Request) {
		var p domain.ListingPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.saveHangup {
			hangup(w)
			return
		}
		if b.saveStatus != 0 {
			if b.saveMessage != "" {
				writeJSON(w, b.saveStatus, map[string]string{"message": b.saveMessage})
				return
			}
			w.WriteHeader(b.saveStatus)
			return
		}
		b.created = append(b.created, p)
		writeJSON(w, http.StatusCreated, domain.ListingRecord{ID: 99, Title: p.Title})
	})
	mux.HandleFunc("PUT /api/oportunidades/{id}", func(w http.ResponseWriter, r *http.Request) {
		var p domain.ListingPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.updated[pathID(r)] = p
		writeJSON(w, http.StatusOK, domain.ListingRecord{ID: pathID(r), Title: p.Title})
	})
	mux.HandleFunc("DELETE /api/oportunidades/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.deleteStatus != 0 {
			writeJSON(w, b.deleteStatus, map[string]string{"message": b.deleteMessage})
			return
		}
		b.deleted = append(b.deleted, pathID(r))
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/usuarios/me", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.me)
	})
	mux.HandleFunc("PUT /api/usuarios/me", func(w http.ResponseWriter, r *http.Request) {
		var u domain.ProfileUpdate
		_ = json.NewDecoder(r.Body).Decode(&u)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.me.Nome, b.me.Celular = u.Nome, u.Celular
		writeJSON(w, http.StatusOK, b.me)
	})
	mux.HandleFunc("POST /api/usuarios/me/mudar-senha", func(w http.ResponseWriter, r *http.Request) {
		var c domain.PasswordChange
		_ = json.NewDecoder(r.Body).Decode(&c)
		b.mu.Lock()
		b.passwords = append(b.passwords, c)
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/usuarios/me/favoritos", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		out := []domain.ListingRecord{}
		for _, id := range b.favorites {
			if l, ok := b.listingByID(id); ok {
				out = append(out, l)
			}
		}
		writeJSON(w, http.StatusOK, out)
	})
	mux.HandleFunc("POST /api/usuarios/me/favoritos/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.favorites = append(b.favorites, pathID(r))
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("DELETE /api/usuarios/me/favoritos/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		id := pathID(r)
		kept := b.favorites[:0]
		for _, f := range b.favorites {
			if f != id {
				kept = append(kept, f)
			}
		}
		b.favorites = kept
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/admin/usuarios", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.users)
	})
	mux.HandleFunc("DELETE /api/admin/usuarios/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id := pathID(r)
		kept := b.users[:0]
		for _, u := range b.users {
			if u.ID != id {
				kept = append(kept, u)
			}
		}
		b.users = kept
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("PUT /api/admin/usuarios/{id}/roles", func(w http.ResponseWriter, r *http.Request) {
		var body domain.RolesUpdate
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.roles[pathID(r)] = body.NomesDasRoles
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

type harness struct {
	t       *testing.T
	backend *fakeBackend
	site    *httptest.Server
	http    *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := newFakeBackend()
	api := httptest.NewServer(backend.routes())
	t.Cleanup(api.Close)

	logger := zap.NewNop()
	cfg := infra.APIConfig{
		BaseURL:               api.URL + "/api",
		Timeout:               2 * time.Second,
		ReadAttempts:          1,
		CBMaxRequests:         1,
		CBInterval:            time.Minute,
		CBTimeout:             time.Minute,
		CBConsecutiveFailures: 100,
	}
	client := apiclient.New(cfg, api.Client(), apiclient.NewMetrics(prometheus.NewRegistry()), logger)

	decoder, err := session.NewTokenDecoder(infra.AuthConfig{})
	require.NoError(t, err)
	norm := catalog.NewNormalizer(catalog.NewAssets(""), time.UTC, time.Now)

	registry := clients.NewRegistry(clients.Deps{
		Storage:    session.NewMemoryStorage(),
		AuthAPI:    client,
		Decoder:    decoder,
		Favorites:  client,
		Normalizer: norm,
		IdleTTL:    time.Hour,
		Logger:     logger,
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
	web := server.NewWebServer(logger, registry, middleware.ClientStateConfig{CookieName: "gj_client", MaxAge: time.Hour}, h)

	site := httptest.NewServer(web)
	t.Cleanup(site.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{
		t:       t,
		backend: backend,
		site:    site,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (h *harness) get(path string) (*http.Response, string) {
	h.t.Helper()
	resp, err := h.http.Get(h.site.URL + path)
	require.NoError(h.t, err)
	return resp, readBody(h.t, resp)
}

func (h *harness) post(path string, form url.Values) (*http.Response, string) {
	h.t.Helper()
	resp, err := h.http.PostForm(h.site.URL+path, form)
	require.NoError(h.t, err)
	return resp, readBody(h.t, resp)
}

// login выдает токен с ролями и проходит обычную форму входа
func (h *harness) login(roles ...domain.Role) {
	h.t.Helper()
	authorities := make([]string, 0, len(roles))
	for _, r := range roles {
		authorities = append(authorities, string(r))
	}
	claims := domain.CustomClaims{
		UserID:      42,
		Nome:        "Ana Souza",
		Email:       "ana@x.com",
		Authorities: authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(h.t, err)

	h.backend.mu.Lock()
	h.backend.token = token
	h.backend.mu.Unlock()

	resp, _ := h.post("/login", url.Values{"email": {"ana@x.com"}, "senha": {"segredo"}})
	require.Equal(h.t, http.StatusSeeOther, resp.StatusCode)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func location(resp *http.Response) string {
	return resp.Header.Get("Location")
}

func containsAll(body string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(body, p) {
			return false
		}
	}
	return true
}
