package clients

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xela07ax/guia-juridico-web/internal/catalog"
	"github.com/xela07ax/guia-juridico-web/internal/domain"
	"github.com/xela07ax/guia-juridico-web/internal/infra"
	"github.com/xela07ax/guia-juridico-web/internal/session"
)

type nopAPI struct{}

func (nopAPI) Login(context.Context, domain.Credentials) (string, error) { return "", nil }
func (nopAPI) ListFavorites(context.Context, string) ([]domain.ListingRecord, error) {
	return nil, nil
}
func (nopAPI) AddFavorite(context.Context, string, int64) error    { return nil }
func (nopAPI) RemoveFavorite(context.Context, string, int64) error { return nil }

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newTestRegistry(t *testing.T, storage session.ClientStorage, clk *clock) (*Registry, prometheus.Gauge) {
	t.Helper()
	reg, gauge, _ := newObservedRegistry(t, storage, clk)
	return reg, gauge
}

func newObservedRegistry(t *testing.T, storage session.ClientStorage, clk *clock) (*Registry, prometheus.Gauge, prometheus.Counter) {
	t.Helper()
	decoder, err := session.NewTokenDecoder(infra.AuthConfig{})
	require.NoError(t, err)
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_active_clients"})
	reloads := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_favorites_reloads_total"})
	return NewRegistry(Deps{
		Storage:    storage,
		AuthAPI:    nopAPI{},
		Decoder:    decoder,
		Favorites:  nopAPI{},
		Normalizer: catalog.NewNormalizer(nil, time.UTC, clk.Now),
		Now:        clk.Now,
		IdleTTL:    time.Minute,
		Active:     gauge,
		Reloads:    reloads,
	}), gauge, reloads
}

func TestRegistry_GetReusesClient(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	reg, gauge := newTestRegistry(t, session.NewMemoryStorage(), clk)
	ctx := context.Background()

	a, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	b, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	c, err := reg.Get(ctx, "c2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "c1", a.Session.ClientID())
	assert.Equal(t, 2.0, testutil.ToFloat64(gauge))
}

func TestRegistry_SweepEvictsIdleOnly(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	reg, _ := newTestRegistry(t, session.NewMemoryStorage(), clk)
	ctx := context.Background()

	_, err := reg.Get(ctx, "old")
	require.NoError(t, err)
	clk.t = clk.t.Add(50 * time.Second)
	_, err = reg.Get(ctx, "fresh")
	require.NoError(t, err)
	clk.t = clk.t.Add(20 * time.Second)

	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 1, reg.Len())

	reg.Forget("fresh")
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_EvictedClientRestoresFromStorage(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	storage := session.NewMemoryStorage()
	reg, _ := newTestRegistry(t, storage, clk)
	ctx := context.Background()

	c, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	c.Session.Notify(ctx, "oi")
	reg.Forget("c1")

	again, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	assert.NotSame(t, c, again)
	assert.Equal(t, "oi", again.Session.PopNotice(ctx))
}

func TestRegistry_SeesLogoutFromAnotherReplica(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	storage := session.NewMemoryStorage()
	first, _ := newTestRegistry(t, storage, clk)
	second, _ := newTestRegistry(t, storage, clk)
	ctx := context.Background()

	claims := domain.CustomClaims{
		UserID:           7,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ana@x.com", ExpiresAt: jwt.NewNumericDate(clk.t.Add(time.Hour))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, storage.Set(ctx, "c1", infra.StorageKeyAuthToken, token))

	a, err := first.Get(ctx, "c1")
	require.NoError(t, err)
	b, err := second.Get(ctx, "c1")
	require.NoError(t, err)
	_, ok := b.Session.CurrentToken(ctx)
	require.True(t, ok)

	require.NoError(t, a.Session.Logout(ctx))

	b, err = second.Get(ctx, "c1")
	require.NoError(t, err)
	_, ok = b.Session.CurrentToken(ctx)
	assert.False(t, ok)
	assert.Nil(t, b.Session.Session(ctx))

	// и обратно: новый вход на второй реплике виден первой
	require.NoError(t, storage.Set(ctx, "c1", infra.StorageKeyAuthToken, token))
	a, err = first.Get(ctx, "c1")
	require.NoError(t, err)
	got, ok := a.Session.CurrentToken(ctx)
	assert.True(t, ok)
	assert.Equal(t, token, got)
}

func TestRegistry_CountsFavoritesReloads(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	reg, _, reloads := newObservedRegistry(t, session.NewMemoryStorage(), clk)
	ctx := context.Background()

	c, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	require.NoError(t, c.Favorites.Sync(ctx))
	require.NoError(t, c.Favorites.Sync(ctx))
	assert.Equal(t, 1.0, testutil.ToFloat64(reloads))

	require.NoError(t, c.Favorites.Fetch(ctx))
	assert.Equal(t, 2.0, testutil.ToFloat64(reloads))
}
