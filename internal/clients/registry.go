package clients

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/favorites"
	"github.com/xela07ax/guia-juridico-web/internal/session"
)

// Client — состояние одного браузерного клиента в памяти процесса
type Client struct {
	ID        string
	Session   *session.Store
	Favorites *favorites.Store

	lastSeen time.Time
}

// Deps — все, что нужно для сборки нового клиента
type Deps struct {
	Storage    session.ClientStorage
	AuthAPI    session.AuthAPI
	Decoder    *session.TokenDecoder
	Favorites  favorites.API
	Normalizer favorites.Normalizer
	Now        func() time.Time
	IdleTTL    time.Duration
	Active     prometheus.Gauge
	Reloads    prometheus.Counter
	Logger     *zap.Logger
}

// Registry держит клиентов по ID из cookie и выселяет простаивающих.
// Постоянное состояние живет в Storage, поэтому выселение ничего не теряет.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	deps    Deps
	logger  *zap.Logger
}

func NewRegistry(deps Deps) *Registry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Active == nil {
		deps.Active = prometheus.NewGauge(prometheus.GaugeOpts{Name: "unregistered_active_clients"})
	}
	if deps.Reloads == nil {
		deps.Reloads = prometheus.NewCounter(prometheus.CounterOpts{Name: "unregistered_favorites_reloads_total"})
	}
	return &Registry{
		clients: make(map[string]*Client),
		deps:    deps,
		logger:  deps.Logger.Named("clients"),
	}
}

// Get возвращает клиента, при первом обращении поднимая его сессию из Storage.
func (r *Registry) Get(ctx context.Context, clientID string) (*Client, error) {
	now := r.deps.Now()

	r.mu.Lock()
	if c, ok := r.clients[clientID]; ok {
		c.lastSeen = now
		r.mu.Unlock()
		// токен мог смениться на другой реплике
		if err := c.Session.Reload(ctx); err != nil {
			r.logger.Warn("failed to reload session", zap.String("client_id", clientID), zap.Error(err))
		}
		return c, nil
	}
	r.mu.Unlock()

	// I/O вне блокировки
	c, err := r.build(ctx, clientID)
	if err != nil {
		return nil, err
	}
	c.lastSeen = now

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.clients[clientID]; ok {
		existing.lastSeen = now
		return existing, nil
	}
	r.clients[clientID] = c
	r.deps.Active.Set(float64(len(r.clients)))
	return c, nil
}

func (r *Registry) build(ctx context.Context, clientID string) (*Client, error) {
	sess := session.NewStore(clientID, r.deps.Storage, r.deps.AuthAPI, r.deps.Decoder, r.deps.Now, r.deps.Logger)
	if err := sess.Init(ctx); err != nil {
		return nil, fmt.Errorf("init session for client %s: %w", clientID, err)
	}
	fav := favorites.NewStore(r.deps.Favorites, sess, sess, r.deps.Normalizer, r.deps.Logger)
	fav.Subscribe(func(snap favorites.Snapshot) {
		r.deps.Reloads.Inc()
		r.logger.Debug("favorites reloaded", zap.String("client_id", clientID), zap.Int("count", snap.Count))
	})
	return &Client{ID: clientID, Session: sess, Favorites: fav}, nil
}

// Forget убирает клиента из памяти
func (r *Registry) Forget(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, clientID)
	r.deps.Active.Set(float64(len(r.clients)))
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Sweep выселяет клиентов, не заходивших дольше IdleTTL
func (r *Registry) Sweep() int {
	if r.deps.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.deps.Now().Add(-r.deps.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, c := range r.clients {
		if c.lastSeen.Before(cutoff) {
			delete(r.clients, id)
			evicted++
		}
	}
	r.deps.Active.Set(float64(len(r.clients)))
	return evicted
}

// StartSweeper — фоновая чистка до отмены ctx
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug("evicted idle clients", zap.Int("count", n), zap.Int("active", r.Len()))
			}
		}
	}
}
