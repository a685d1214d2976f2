package yahoo

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/options-trader/internal/domain"
)

const defaultOptionsBaseURL = "https://query2.finance.yahoo.com/v7/finance/options"

// OptionsClient fetches option chains from the Yahoo Finance options
// endpoint.
type OptionsClient struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewOptionsClient creates a new option chain client
func NewOptionsClient(log zerolog.Logger) *OptionsClient {
	return &OptionsClient{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: defaultOptionsBaseURL,
		log:     log.With().Str("client", "yahoo-options").Logger(),
	}
}

// optionsResponse mirrors the shape of the Yahoo options endpoint
type optionsResponse struct {
	OptionChain struct {
		Result []chainResult `json:"result"`
		Error  interface{}   `json:"error"`
	} `json:"optionChain"`
}

type chainResult struct {
	UnderlyingSymbol string  `json:"underlyingSymbol"`
	ExpirationDates  []int64 `json:"expirationDates"`
	Quote            struct {
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"quote"`
	Options []optionBlock `json:"options"`
}

type optionBlock struct {
	ExpirationDate int64          `json:"expirationDate"`
	Calls          []optionDetail `json:"calls"`
	Puts           []optionDetail `json:"puts"`
}

type optionDetail struct {
	Strike            float64 `json:"strike"`
	LastPrice         float64 `json:"lastPrice"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
}

// GetExpiries returns the available option expiry dates for a symbol,
// formatted YYYY-MM-DD in UTC.
func (c *OptionsClient) GetExpiries(symbol string) ([]string, error) {
	resp, err := c.fetch(symbol, nil)
	if err != nil {
		return nil, err
	}

	expiries := make([]string, 0, len(resp.ExpirationDates))
	for _, ts := range resp.ExpirationDates {
		expiries = append(expiries, time.Unix(ts, 0).UTC().Format("2006-01-02"))
	}
	return expiries, nil
}

// GetChain fetches the option chain for a symbol and expiry date
// (YYYY-MM-DD). An empty expiry fetches the nearest one.
func (c *OptionsClient) GetChain(symbol, expiry string) (*domain.OptionChain, error) {
	var date *int64
	if expiry != "" {
		t, err := time.Parse("2006-01-02", expiry)
		if err != nil {
			return nil, fmt.Errorf("invalid expiry %q: %w", expiry, err)
		}
		ts := t.Unix()
		date = &ts
	}

	resp, err := c.fetch(symbol, date)
	if err != nil {
		return nil, err
	}

	if len(resp.Options) == 0 {
		return nil, fmt.Errorf("no option data for %s at %s", symbol, expiry)
	}

	block := resp.Options[0]
	chain := &domain.OptionChain{
		Symbol: resp.UnderlyingSymbol,
		Expiry: time.Unix(block.ExpirationDate, 0).UTC().Format("2006-01-02"),
		Spot:   resp.Quote.RegularMarketPrice,
		Calls:  make([]domain.OptionQuote, 0, len(block.Calls)),
		Puts:   make([]domain.OptionQuote, 0, len(block.Puts)),
	}

	for _, q := range block.Calls {
		chain.Calls = append(chain.Calls, toQuote(q))
	}
	for _, q := range block.Puts {
		chain.Puts = append(chain.Puts, toQuote(q))
	}

	c.log.Debug().
		Str("symbol", chain.Symbol).
		Str("expiry", chain.Expiry).
		Int("calls", len(chain.Calls)).
		Int("puts", len(chain.Puts)).
		Msg("Fetched option chain")

	return chain, nil
}

func toQuote(q optionDetail) domain.OptionQuote {
	return domain.OptionQuote{
		Strike:            q.Strike,
		LastPrice:         q.LastPrice,
		Bid:               q.Bid,
		Ask:               q.Ask,
		ImpliedVolatility: q.ImpliedVolatility,
	}
}

func (c *OptionsClient) fetch(symbol string, date *int64) (*chainResult, error) {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(symbol))
	if date != nil {
		endpoint += fmt.Sprintf("?date=%d", *date)
	}

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("options request failed for %s: %w", symbol, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("options request for %s returned status %d", symbol, httpResp.StatusCode)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read options response: %w", err)
	}

	var parsed optionsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse options response: %w", err)
	}

	if len(parsed.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("no results for symbol %s", symbol)
	}

	return &parsed.OptionChain.Result[0], nil
}
