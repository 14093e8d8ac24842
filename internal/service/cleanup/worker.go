package cleanup

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// SessionCleaner drops live sessions idle for longer than maxIdle
type SessionCleaner interface {
	CleanupIdleSessions(maxIdle time.Duration) int
}

// SnapshotPruner removes stored snapshots last updated before a cutoff.
// Stores that expire keys on their own do not need one.
type SnapshotPruner interface {
	PruneSnapshots(ctx context.Context, before time.Time) (int64, error)
}

type Worker struct {
	Sessions    SessionCleaner
	Snapshots   SnapshotPruner
	Interval    time.Duration
	IdleTimeout time.Duration
	SnapshotTTL time.Duration

	now func() time.Time
}

func NewWorker(sessions SessionCleaner, snapshots SnapshotPruner, interval, idleTimeout, snapshotTTL time.Duration) *Worker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Worker{
		Sessions:    sessions,
		Snapshots:   snapshots,
		Interval:    interval,
		IdleTimeout: idleTimeout,
		SnapshotTTL: snapshotTTL,
		now:         time.Now,
	}
}

// Run cleans up once right away, then every Interval until ctx is done
func (w *Worker) Run(ctx context.Context) error {
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	log.Info().Str("component", "cleanup").Dur("interval", w.Interval).Msg("background worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("component", "cleanup").Msg("background worker stopped")
			return nil
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce executes the actual cleanup logic
func (w *Worker) RunOnce(ctx context.Context) {
	log.Debug().Str("component", "cleanup").Msg("starting scheduled cleanup task")

	if w.Sessions != nil {
		w.Sessions.CleanupIdleSessions(w.IdleTimeout)
	}

	if w.Snapshots == nil || w.SnapshotTTL <= 0 {
		return
	}

	deleted, err := w.Snapshots.PruneSnapshots(ctx, w.now().Add(-w.SnapshotTTL))
	if err != nil {
		log.Error().Err(err).Str("component", "cleanup").Msg("error pruning snapshots")
		return
	}
	if deleted > 0 {
		log.Info().Str("component", "cleanup").Int64("removed", deleted).Msg("removed expired snapshots from database")
	}
}
