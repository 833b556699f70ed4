// Package cleanup provides data retention and cleanup services.
package cleanup

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/opencity/insight/pkg/config"
)

// Service periodically deletes session_events audit rows older than the
// configured retention window. Artifacts, Summaries, and the centroid
// tables are never subject to retention: only the per-session event trail
// accumulates over time.
type Service struct {
	config *config.RetentionConfig
	db     *sql.DB

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new cleanup service.
func NewService(cfg *config.RetentionConfig, db *sql.DB) *Service {
	return &Service{
		config: cfg,
		db:     db,
	}
}

// Start launches the background cleanup loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("cleanup service started",
		"session_event_ttl", s.config.SessionEventTTL,
		"interval", s.config.CleanupInterval)
}

// Stop signals the cleanup loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	count, err := s.cleanupOldSessionEvents(ctx)
	if err != nil {
		slog.Error("retention: session_events cleanup failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("retention: deleted expired session events", "count", count)
	}
}

// cleanupOldSessionEvents deletes session_events rows older than
// SessionEventTTL. Idempotent and safe to run concurrently from multiple
// process instances.
func (s *Service) cleanupOldSessionEvents(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.config.SessionEventTTL)
	res, err := s.db.ExecContext(ctx, `DELETE FROM session_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
