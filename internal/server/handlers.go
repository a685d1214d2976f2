package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aristath/options-trader/internal/domain"
	"github.com/aristath/options-trader/internal/modules/payoff"
	"github.com/aristath/options-trader/internal/modules/strategy"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "options-trader",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response. Structural strategy errors map
// to 422 so callers can distinguish bad definitions from bad requests.
func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	var structural *domain.StructuralError
	if errors.As(err, &structural) {
		status = http.StatusUnprocessableEntity
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

// priceRequest is a pricing request with an optional model override
type priceRequest struct {
	Model domain.PricingModel `json:"model,omitempty"`
	domain.PricingRequest
}

// handlePrice prices a single contract. An empty model lets the service
// pick one.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.applyPricingDefaults(&req.PricingRequest)

	var price float64
	if req.Model == "" {
		price = s.pricing.TheoreticalValue(req.PricingRequest)
	} else {
		price = s.pricing.Price(req.Model, req.PricingRequest)
	}

	s.writeJSON(w, http.StatusOK, map[string]float64{"price": price})
}

// batchPriceRequest prices many contracts under one model
type batchPriceRequest struct {
	Model    domain.PricingModel     `json:"model,omitempty"`
	Requests []domain.PricingRequest `json:"requests"`
}

func (s *Server) handlePriceBatch(w http.ResponseWriter, r *http.Request) {
	var req batchPriceRequest
	if !s.decode(w, r, &req) {
		return
	}
	for i := range req.Requests {
		s.applyPricingDefaults(&req.Requests[i])
	}

	var prices []float64
	if req.Model == "" {
		prices = s.pool.TheoreticalBatch(req.Requests)
	} else {
		prices = s.pool.PriceBatch(req.Model, req.Requests)
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"prices": prices})
}

func (s *Server) handleGreeks(w http.ResponseWriter, r *http.Request) {
	var req domain.PricingRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.applyPricingDefaults(&req)

	s.writeJSON(w, http.StatusOK, s.pricing.Greeks(req))
}

type impliedVolRequest struct {
	domain.PricingRequest
	MarketPrice float64 `json:"market_price"`
}

func (s *Server) handleImpliedVolatility(w http.ResponseWriter, r *http.Request) {
	var req impliedVolRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.applyPricingDefaults(&req.PricingRequest)

	iv := s.pricing.ImpliedVolatility(req.PricingRequest, req.MarketPrice)
	s.writeJSON(w, http.StatusOK, map[string]float64{"implied_volatility": iv})
}

// applyPricingDefaults fills in the rate and resolution knobs the caller
// left at zero.
func (s *Server) applyPricingDefaults(req *domain.PricingRequest) {
	if req.RiskFree == 0 {
		req.RiskFree = s.cfg.RiskFreeRate
	}
	if req.Steps == 0 {
		req.Steps = s.cfg.PricingSteps
	}
	if req.Paths == 0 {
		req.Paths = s.cfg.PricingPaths
	}
}

// createStrategyRequest names a strategy type and its parameters
type createStrategyRequest struct {
	Type   domain.StrategyType `json:"type"`
	Params strategy.Params     `json:"params"`
}

func (s *Server) handleCreateStrategy(w http.ResponseWriter, r *http.Request) {
	var req createStrategyRequest
	if !s.decode(w, r, &req) {
		return
	}

	strat, err := s.strategy.Create(req.Type, req.Params)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, strat)
}

type validateLegsRequest struct {
	Legs []strategy.RawLeg `json:"legs"`
}

func (s *Server) handleValidateLegs(w http.ResponseWriter, r *http.Request) {
	var req validateLegsRequest
	if !s.decode(w, r, &req) {
		return
	}

	legs, err := strategy.Normalize(req.Legs)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid": true,
		"legs":  legs,
	})
}

// strategyInput accepts either a named strategy with parameters or a raw
// leg list.
type strategyInput struct {
	Type   domain.StrategyType `json:"type,omitempty"`
	Params strategy.Params     `json:"params,omitempty"`
	Legs   []strategy.RawLeg   `json:"legs,omitempty"`
}

func (s *Server) buildStrategy(in strategyInput) (domain.Strategy, error) {
	if len(in.Legs) > 0 {
		return s.strategy.Custom(in.Legs)
	}
	if in.Type == "" {
		return domain.Strategy{}, domain.NewStrategyError("either a strategy type or legs must be provided")
	}
	return s.strategy.Create(in.Type, in.Params)
}

type analyzeRequest struct {
	strategyInput
	Symbol       string   `json:"symbol,omitempty"`
	Spot         float64  `json:"spot,omitempty"`
	RiskFreeRate *float64 `json:"risk_free_rate,omitempty"`
	Samples      int      `json:"samples,omitempty"`
}

type analyzeResponse struct {
	Strategy        domain.Strategy     `json:"strategy"`
	Metrics         payoff.Metrics      `json:"metrics"`
	ExpirationCurve []domain.CurvePoint `json:"expiration_curve"`
	CurrentCurve    []domain.CurvePoint `json:"current_curve"`
}

// handleAnalyzeStrategy builds a strategy and returns its full risk
// profile: metrics plus the expiration and mark-to-model curves.
func (s *Server) handleAnalyzeStrategy(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}

	strat, err := s.buildStrategy(req.strategyInput)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	spot, err := s.resolveSpot(r, req.Spot, req.Symbol)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	if spot <= 0 {
		s.writeError(w, http.StatusBadRequest,
			domain.NewStrategyError("a positive spot price or a symbol is required"))
		return
	}

	riskFree := s.cfg.RiskFreeRate
	if req.RiskFreeRate != nil {
		riskFree = *req.RiskFreeRate
	}
	samples := req.Samples
	if samples <= 0 {
		samples = s.cfg.AnalysisBins
	}

	now := time.Now().UTC()
	prices := s.payoff.PriceRange(strat, spot, samples)

	resp := analyzeResponse{
		Strategy:        strat,
		Metrics:         s.payoff.Analyze(strat, spot, now, riskFree),
		ExpirationCurve: s.payoff.ExpirationPayoff(strat, prices),
		CurrentCurve:    s.payoff.CurrentValue(strat, prices, now, riskFree),
	}

	s.writeJSON(w, http.StatusOK, resp)
}

type payoffRequest struct {
	strategyInput
	Spot    float64 `json:"spot"`
	Samples int     `json:"samples,omitempty"`
}

func (s *Server) handlePayoffCurve(w http.ResponseWriter, r *http.Request) {
	var req payoffRequest
	if !s.decode(w, r, &req) {
		return
	}

	strat, err := s.buildStrategy(req.strategyInput)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Spot <= 0 {
		s.writeError(w, http.StatusBadRequest,
			domain.NewStrategyError("a positive spot price is required"))
		return
	}

	samples := req.Samples
	if samples <= 0 {
		samples = s.cfg.AnalysisBins
	}

	prices := s.payoff.PriceRange(strat, req.Spot, samples)

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"strategy":   strat,
		"curve":      s.payoff.ExpirationPayoff(strat, prices),
		"breakevens": s.payoff.Breakevens(strat, prices),
	})
}

// resolveSpot prefers an explicit spot price over a symbol lookup.
func (s *Server) resolveSpot(r *http.Request, spot float64, symbol string) (float64, error) {
	if spot > 0 || symbol == "" {
		return spot, nil
	}
	return s.market.SpotPrice(r.Context(), symbol)
}

func (s *Server) handleSpot(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	price, err := s.market.SpotPrice(r.Context(), symbol)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"spot":   price,
	})
}

func (s *Server) handleExpiries(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	expiries, err := s.market.Expiries(r.Context(), symbol)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":   symbol,
		"expiries": expiries,
	})
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	expiry := r.URL.Query().Get("expiry")

	chain, err := s.market.OptionChain(r.Context(), symbol, expiry)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	s.writeJSON(w, http.StatusOK, chain)
}
