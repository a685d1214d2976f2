package formulas

import (
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultPaths is the simulation size used when the caller does not
	// specify one.
	DefaultPaths = 10000

	// DefaultPathSteps is the per-path step count
	DefaultPathSteps = 100
)

// MonteCarlo calculates the option price by simulating independent terminal
// price paths under geometric Brownian motion and discounting the sample
// mean of the terminal payoffs. Work is sized by paths and steps; there is
// no wall-clock cutoff.
func MonteCarlo(call bool, spot, strike, t, rate, sigma float64, paths, steps int) float64 {
	return MonteCarloSeeded(call, spot, strike, t, rate, sigma, paths, steps, time.Now().UnixNano())
}

// MonteCarloSeeded is MonteCarlo with a fixed base seed for reproducible
// runs. Paths are independent and fanned out across workers; each worker
// draws from its own generator seeded from the base seed, and a failed path
// degrades to the terminal intrinsic value without aborting the batch.
func MonteCarloSeeded(call bool, spot, strike, t, rate, sigma float64, paths, steps int, seed int64) float64 {
	if t <= 0 {
		return Intrinsic(call, spot, strike)
	}
	if sigma <= 0 {
		sigma = MinVolatility
	}
	if paths <= 0 {
		paths = DefaultPaths
	}
	if steps <= 0 {
		steps = DefaultPathSteps
	}
	if spot <= 0 || strike <= 0 {
		return Intrinsic(call, spot, strike)
	}

	dt := t / float64(steps)
	drift := (rate - 0.5*sigma*sigma) * dt
	shock := sigma * math.Sqrt(dt)

	payoffs := make([]float64, paths)

	workers := runtime.NumCPU()
	if workers > paths {
		workers = paths
	}
	chunk := (paths + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > paths {
			end = paths
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int, normal distuv.Normal) {
			defer wg.Done()
			for i := start; i < end; i++ {
				price := spot
				for j := 0; j < steps; j++ {
					price *= math.Exp(drift + shock*normal.Rand())
				}
				payoff := Intrinsic(call, price, strike)
				if math.IsNaN(payoff) || math.IsInf(payoff, 0) {
					// Degrade this path, keep the batch alive
					payoff = Intrinsic(call, spot, strike)
				}
				payoffs[i] = payoff
			}
		}(start, end, distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(uint64(seed), uint64(w))})
	}
	wg.Wait()

	price := math.Exp(-rate*t) * stat.Mean(payoffs, nil)

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return BlackScholes(call, spot, strike, t, rate, sigma)
	}

	return price
}
