package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/options-trader/internal/database"
	"github.com/aristath/options-trader/internal/marketdata"
)

// CachePurgeJob drops stale market data cache entries and truncates the WAL
// so the cache file does not grow without bound.
type CachePurgeJob struct {
	market *marketdata.Service
	db     *database.DB
	log    zerolog.Logger
}

// NewCachePurgeJob creates the cache purge job.
func NewCachePurgeJob(market *marketdata.Service, db *database.DB, log zerolog.Logger) *CachePurgeJob {
	return &CachePurgeJob{
		market: market,
		db:     db,
		log:    log.With().Str("job", "cache_purge").Logger(),
	}
}

// Name implements Job.
func (j *CachePurgeJob) Name() string { return "cache_purge" }

// Run purges stale entries and checkpoints the WAL.
func (j *CachePurgeJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := j.market.PurgeStale(ctx); err != nil {
		return err
	}

	if err := j.db.WALCheckpoint(""); err != nil {
		j.log.Warn().Err(err).Msg("WAL checkpoint failed after purge")
	}

	return nil
}
