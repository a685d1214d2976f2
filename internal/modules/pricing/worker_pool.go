package pricing

import (
	"sync"

	"github.com/aristath/options-trader/internal/domain"
)

// WorkerPool fans batch pricing and greeks requests out over a fixed number
// of goroutines. Requests are independent, so the only guarantee needed is
// that every contribution lands in the result slice at its own index.
type WorkerPool struct {
	svc        *Service
	numWorkers int
}

// NewWorkerPool creates a worker pool backed by the given pricing service.
func NewWorkerPool(svc *Service, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 10
	}
	return &WorkerPool{
		svc:        svc,
		numWorkers: numWorkers,
	}
}

// PriceBatch prices multiple contracts in parallel under one model.
// Results come back in input order.
func (wp *WorkerPool) PriceBatch(model domain.PricingModel, reqs []domain.PricingRequest) []float64 {
	results := make([]float64, len(reqs))
	wp.run(len(reqs), func(i int) {
		results[i] = wp.svc.Price(model, reqs[i])
	})
	return results
}

// GreeksBatch computes the sensitivity vector for multiple contracts in
// parallel. A single degraded contract does not disturb its neighbours.
func (wp *WorkerPool) GreeksBatch(reqs []domain.PricingRequest) []domain.Greeks {
	results := make([]domain.Greeks, len(reqs))
	wp.run(len(reqs), func(i int) {
		results[i] = wp.svc.Greeks(reqs[i])
	})
	return results
}

// TheoreticalBatch prices multiple contracts in parallel, letting the
// service pick the model per contract. Results come back in input order.
func (wp *WorkerPool) TheoreticalBatch(reqs []domain.PricingRequest) []float64 {
	results := make([]float64, len(reqs))
	wp.run(len(reqs), func(i int) {
		results[i] = wp.svc.TheoreticalValue(reqs[i])
	})
	return results
}

// run distributes n independent jobs across the pool's workers.
func (wp *WorkerPool) run(n int, job func(i int)) {
	if n == 0 {
		return
	}

	jobs := make(chan int, n)

	workers := wp.numWorkers
	if n < workers {
		workers = n
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				job(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
}
