package marketdata

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/options-trader/internal/database"
	"github.com/aristath/options-trader/internal/domain"
)

type fakeSpot struct {
	price float64
	err   error
	calls int
}

func (f *fakeSpot) GetSpotPrice(symbol string, maxRetries int) (*float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p := f.price
	return &p, nil
}

type fakeChains struct {
	chain    *domain.OptionChain
	expiries []string
	err      error
	calls    int
}

func (f *fakeChains) GetChain(symbol, expiry string) (*domain.OptionChain, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.chain, nil
}

func (f *fakeChains) GetExpiries(symbol string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.expiries, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cache, err := NewCache(db, zerolog.Nop())
	require.NoError(t, err)
	return cache
}

func TestSpotPriceCaching(t *testing.T) {
	spot := &fakeSpot{price: 231.5}
	svc := NewService(spot, &fakeChains{}, newTestCache(t), zerolog.Nop())
	ctx := context.Background()

	price, err := svc.SpotPrice(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 231.5, price)
	assert.Equal(t, 1, spot.calls)

	// Second hit is served from the cache
	price, err = svc.SpotPrice(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 231.5, price)
	assert.Equal(t, 1, spot.calls)
}

func TestSpotPriceFetchError(t *testing.T) {
	spot := &fakeSpot{err: errors.New("rate limited")}
	svc := NewService(spot, &fakeChains{}, newTestCache(t), zerolog.Nop())

	_, err := svc.SpotPrice(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestSpotPriceRejectsZero(t *testing.T) {
	spot := &fakeSpot{price: 0}
	svc := NewService(spot, &fakeChains{}, newTestCache(t), zerolog.Nop())

	_, err := svc.SpotPrice(context.Background(), "AAPL")
	require.Error(t, err)
}

func TestOptionChainCaching(t *testing.T) {
	chains := &fakeChains{chain: &domain.OptionChain{
		Symbol: "AAPL",
		Expiry: "2026-12-18",
		Spot:   231.5,
		Calls:  []domain.OptionQuote{{Strike: 230, LastPrice: 8.1, ImpliedVolatility: 0.27}},
		Puts:   []domain.OptionQuote{{Strike: 220, LastPrice: 4.2, ImpliedVolatility: 0.29}},
	}}
	svc := NewService(&fakeSpot{}, chains, newTestCache(t), zerolog.Nop())
	ctx := context.Background()

	chain, err := svc.OptionChain(ctx, "AAPL", "2026-12-18")
	require.NoError(t, err)
	assert.Equal(t, 1, chains.calls)

	again, err := svc.OptionChain(ctx, "AAPL", "2026-12-18")
	require.NoError(t, err)
	assert.Equal(t, 1, chains.calls, "second request is a cache hit")

	// The cached copy round-trips every field
	assert.Equal(t, chain.Symbol, again.Symbol)
	assert.Equal(t, chain.Spot, again.Spot)
	require.Len(t, again.Calls, 1)
	assert.Equal(t, 0.27, again.Calls[0].ImpliedVolatility)
}

func TestExpiriesCaching(t *testing.T) {
	chains := &fakeChains{expiries: []string{"2026-10-16", "2026-12-18"}}
	svc := NewService(&fakeSpot{}, chains, newTestCache(t), zerolog.Nop())
	ctx := context.Background()

	expiries, err := svc.Expiries(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-16", "2026-12-18"}, expiries)

	_, err = svc.Expiries(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, chains.calls)
}

func TestCacheExpiry(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "spot:TEST", 42.0)

	var v float64
	assert.True(t, cache.Get(ctx, "spot:TEST", time.Minute, &v))
	assert.Equal(t, 42.0, v)

	// A zero TTL makes any entry stale
	assert.False(t, cache.Get(ctx, "spot:TEST", 0, &v))
}

func TestCachePurge(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "spot:OLD", 1.0)
	cache.Set(ctx, "spot:NEW", 2.0)

	// Nothing is older than a day yet
	removed, err := cache.Purge(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	// Everything is older than zero
	removed, err = cache.Purge(ctx, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	var v float64
	assert.False(t, cache.Get(ctx, "spot:NEW", time.Minute, &v))
}
