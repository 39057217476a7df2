package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/clients"
)

type ctxKey string

const clientKey ctxKey = "client"

// ClientStateConfig — cookie, по которому узнается браузерный клиент
type ClientStateConfig struct {
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

// ClientState находит (или заводит) клиента по cookie, синхронизирует
// избранное со сменой токена и кладет клиента в контекст.
func ClientState(reg *clients.Registry, cfg ClientStateConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	logger = logger.Named("client-state")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := ""
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					clientID = c.Value
				}
			}
			if clientID == "" {
				clientID = uuid.New().String()
			}
			// продлеваем cookie на каждом запросе
			http.SetCookie(w, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    clientID,
				Path:     "/",
				MaxAge:   int(cfg.MaxAge.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			client, err := reg.Get(r.Context(), clientID)
			if err != nil {
				logger.Error("failed to load client state", zap.String("client_id", clientID), zap.Error(err))
				http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
				return
			}

			if err := client.Favorites.Sync(r.Context()); err != nil {
				logger.Warn("favorites sync failed", zap.String("client_id", clientID), zap.Error(err))
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey, client)))
		})
	}
}

// ClientFrom достает клиента, положенного ClientState
func ClientFrom(ctx context.Context) *clients.Client {
	c, _ := ctx.Value(clientKey).(*clients.Client)
	return c
}

// WithClient нужен тестам обработчиков
func WithClient(ctx context.Context, c *clients.Client) context.Context {
	return context.WithValue(ctx, clientKey, c)
}
