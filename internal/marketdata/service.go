package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/options-trader/internal/domain"
)

const (
	// spotTTL bounds how stale a cached underlying price may be
	spotTTL = 15 * time.Minute

	// chainTTL bounds how stale a cached option chain may be
	chainTTL = time.Hour

	// expiriesTTL bounds the cached expiry list; new expiries appear at
	// most weekly
	expiriesTTL = 24 * time.Hour
)

// SpotFetcher fetches underlying prices
type SpotFetcher interface {
	GetSpotPrice(symbol string, maxRetries int) (*float64, error)
}

// ChainFetcher fetches option chains and expiry lists
type ChainFetcher interface {
	GetChain(symbol, expiry string) (*domain.OptionChain, error)
	GetExpiries(symbol string) ([]string, error)
}

// Service is the cache-first market data source used by the analysis
// endpoints.
type Service struct {
	spot   SpotFetcher
	chains ChainFetcher
	cache  *Cache
	log    zerolog.Logger
}

// NewService creates a market data service.
func NewService(spot SpotFetcher, chains ChainFetcher, cache *Cache, log zerolog.Logger) *Service {
	if log.GetLevel() == zerolog.Disabled {
		log = zerolog.Nop()
	}
	return &Service{
		spot:   spot,
		chains: chains,
		cache:  cache,
		log:    log.With().Str("component", "marketdata").Logger(),
	}
}

// SpotPrice returns the current underlying price for a symbol.
func (s *Service) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	key := "spot:" + symbol

	var cached float64
	if s.cache.Get(ctx, key, spotTTL, &cached) {
		return cached, nil
	}

	price, err := s.spot.GetSpotPrice(symbol, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch spot price for %s: %w", symbol, err)
	}
	if price == nil || *price <= 0 {
		return 0, fmt.Errorf("no valid spot price for %s", symbol)
	}

	s.cache.Set(ctx, key, *price)
	return *price, nil
}

// OptionChain returns the option chain for a symbol and expiry. An empty
// expiry fetches the nearest one.
func (s *Service) OptionChain(ctx context.Context, symbol, expiry string) (*domain.OptionChain, error) {
	key := fmt.Sprintf("chain:%s:%s", symbol, expiry)

	var cached domain.OptionChain
	if s.cache.Get(ctx, key, chainTTL, &cached) {
		return &cached, nil
	}

	chain, err := s.chains.GetChain(symbol, expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch option chain for %s: %w", symbol, err)
	}

	s.cache.Set(ctx, key, chain)
	return chain, nil
}

// Expiries returns the available option expiry dates for a symbol.
func (s *Service) Expiries(ctx context.Context, symbol string) ([]string, error) {
	key := "expiries:" + symbol

	var cached []string
	if s.cache.Get(ctx, key, expiriesTTL, &cached) {
		return cached, nil
	}

	expiries, err := s.chains.GetExpiries(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expiries for %s: %w", symbol, err)
	}

	s.cache.Set(ctx, key, expiries)
	return expiries, nil
}

// PurgeStale drops cache entries old enough to be useless for any TTL.
func (s *Service) PurgeStale(ctx context.Context) error {
	_, err := s.cache.Purge(ctx, expiriesTTL)
	return err
}
