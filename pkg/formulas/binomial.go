package formulas

import "math"

// DefaultTreeSteps is the step count used when the caller does not size the
// lattice explicitly.
const DefaultTreeSteps = 100

// BinomialTree calculates the option price on a Cox-Ross-Rubinstein
// recombining lattice. Up/down multipliers derive from volatility and the
// time step, the risk-neutral transition probability from the risk-free
// rate. Terminal node values are intrinsic payoffs propagated backward as
// discounted expectations.
//
// With american=true every node value is replaced by
// max(continuation, immediate intrinsic) before continuing backward; this is
// the only source of early-exercise premium in the system.
//
// Edge cases mirror BlackScholes: t <= 0 returns intrinsic, sigma <= 0 is
// clamped, and any non-finite result falls back to the analytic price.
func BinomialTree(call bool, spot, strike, t, rate, sigma float64, steps int, american bool) float64 {
	if t <= 0 {
		return Intrinsic(call, spot, strike)
	}
	if sigma <= 0 {
		sigma = MinVolatility
	}
	if steps <= 0 {
		steps = DefaultTreeSteps
	}
	if spot <= 0 || strike <= 0 {
		return Intrinsic(call, spot, strike)
	}

	dt := t / float64(steps)
	u := math.Exp(sigma * math.Sqrt(dt))
	d := 1 / u
	p := (math.Exp(rate*dt) - d) / (u - d)
	discount := math.Exp(-rate * dt)

	if math.IsNaN(p) || p < 0 || p > 1 {
		return BlackScholes(call, spot, strike, t, rate, sigma)
	}

	// Terminal layer: node i holds spot * u^(steps-i) * d^i
	values := make([]float64, steps+1)
	for i := 0; i <= steps; i++ {
		terminal := spot * math.Pow(u, float64(steps-i)) * math.Pow(d, float64(i))
		values[i] = Intrinsic(call, terminal, strike)
	}

	// Backward induction, one layer at a time
	for step := steps - 1; step >= 0; step-- {
		for i := 0; i <= step; i++ {
			values[i] = discount * (p*values[i] + (1-p)*values[i+1])

			if american {
				nodeSpot := spot * math.Pow(u, float64(step-i)) * math.Pow(d, float64(i))
				values[i] = math.Max(values[i], Intrinsic(call, nodeSpot, strike))
			}
		}
	}

	if math.IsNaN(values[0]) || math.IsInf(values[0], 0) {
		return BlackScholes(call, spot, strike, t, rate, sigma)
	}

	return values[0]
}
