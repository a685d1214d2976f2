// Package yahoo fetches spot prices and option chains from Yahoo Finance.
// Spot quotes go through the go-yfinance library; option chains use the raw
// options endpoint, which the library does not cover.
package yahoo

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/multi"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// QuoteClient fetches spot prices using the go-yfinance library
type QuoteClient struct {
	log zerolog.Logger
}

// NewQuoteClient creates a new spot quote client
func NewQuoteClient(log zerolog.Logger) *QuoteClient {
	return &QuoteClient{
		log: log.With().Str("client", "yahoo-quote").Logger(),
	}
}

// GetSpotPrice gets the current underlying price for a symbol with retry
// logic. Pre and post market prices are accepted when the regular session
// price is unavailable.
func (c *QuoteClient) GetSpotPrice(symbol string, maxRetries int) (*float64, error) {
	if maxRetries == 0 {
		maxRetries = 3 // default
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		price, err := c.fetchSpot(symbol)
		if err == nil {
			return price, nil
		}
		lastErr = err

		if attempt < maxRetries-1 {
			waitTime := time.Duration(1<<uint(attempt)) * time.Second
			c.log.Warn().Err(err).Str("symbol", symbol).Int("attempt", attempt+1).Dur("wait", waitTime).Msg("Retrying")
			time.Sleep(waitTime)
		}
	}

	return nil, fmt.Errorf("failed to get valid price after %d attempts: %w", maxRetries, lastErr)
}

// fetchSpot performs a single quote attempt; the ticker lives only for
// the attempt.
func (c *QuoteClient) fetchSpot(symbol string) (*float64, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	// Try Quote first (faster)
	quote, err := t.Quote()
	if err == nil && quote != nil {
		if quote.RegularMarketPrice > 0 {
			price := quote.RegularMarketPrice
			return &price, nil
		}
		if quote.PreMarketPrice > 0 {
			price := quote.PreMarketPrice
			return &price, nil
		}
		if quote.PostMarketPrice > 0 {
			price := quote.PostMarketPrice
			return &price, nil
		}
	}

	// Fallback to Info
	info, err := t.Info()
	if err == nil && info != nil {
		if info.CurrentPrice > 0 {
			price := info.CurrentPrice
			return &price, nil
		}
		if info.RegularMarketPreviousClose > 0 {
			price := info.RegularMarketPreviousClose
			return &price, nil
		}
	}

	return nil, fmt.Errorf("no valid price for %s", symbol)
}

// GetBatchSpotPrices fetches current prices for multiple symbols in one
// download. Symbols that fail resolve to a missing map entry, never an
// error for the whole batch.
func (c *QuoteClient) GetBatchSpotPrices(symbols []string) (map[string]*float64, error) {
	if len(symbols) == 0 {
		return make(map[string]*float64), nil
	}

	params := models.DefaultDownloadParams()
	params.Symbols = symbols
	params.Period = "5d" // Last 5 days to ensure recent data
	params.Interval = "1d"

	result, err := multi.Download(symbols, &params)
	if err != nil {
		return nil, fmt.Errorf("failed to download batch quotes: %w", err)
	}

	quotes := make(map[string]*float64)
	for _, symbol := range symbols {
		if bars, ok := result.Data[symbol]; ok && len(bars) > 0 {
			lastBar := bars[len(bars)-1]
			price := lastBar.Close
			quotes[symbol] = &price
		} else if err, ok := result.Errors[symbol]; ok {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to get quote for symbol")
		}
	}

	return quotes, nil
}
