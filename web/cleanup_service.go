package web

import (
	"context"
	"time"

	"datachat/agent"
	"datachat/config"
	"datachat/database"

	"go.uber.org/zap"
)

// CleanupService retires sessions that have been idle past the configured
// retention age and drops their in-memory conversation state.
type CleanupService struct {
	store       *database.PostgresStore
	agentRouter *agent.Router
	logger      *zap.Logger
}

func NewCleanupService(store *database.PostgresStore, agentRouter *agent.Router, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		store:       store,
		agentRouter: agentRouter,
		logger:      logger,
	}
}

// RunOnce deactivates stale sessions and forgets their router state.
func (cs *CleanupService) RunOnce(ctx context.Context, retentionAge time.Duration) {
	cutoff := time.Now().Add(-retentionAge)
	ids, err := cs.store.DeactivateStaleSessions(ctx, cutoff)
	if err != nil {
		cs.logger.Error("Failed to deactivate stale sessions", zap.Error(err))
		return
	}
	for _, id := range ids {
		cs.agentRouter.Forget(id.String())
	}
	if len(ids) > 0 {
		cs.logger.Info("Retired stale sessions", zap.Int("count", len(ids)))
	}
}

// StartSessionCleanup runs the cleanup loop until the context is cancelled.
func StartSessionCleanup(ctx context.Context, cfg *config.Config, cs *CleanupService, logger *zap.Logger) {
	if !cfg.CleanupEnabled {
		logger.Info("Session cleanup disabled")
		return
	}

	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()

	logger.Info("Session cleanup started",
		zap.Duration("interval", cfg.CleanupInterval),
		zap.Duration("retention_age", cfg.SessionRetentionAge))

	for {
		select {
		case <-ticker.C:
			cs.RunOnce(ctx, cfg.SessionRetentionAge)
		case <-ctx.Done():
			return
		}
	}
}
