package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/service"
)

// StartStatsWorker schedules periodic refreshes of the cached dashboard
// snapshot. Refresh failures only log; the stale snapshot keeps serving.
// The returned cron should be stopped on shutdown.
func StartStatsWorker(spec string, reports *service.ReportService, logger *zap.Logger) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := reports.RefreshGlobalStats(ctx); err != nil {
			logger.Warn("stats refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Warn("invalid stats refresh schedule", zap.String("spec", spec), zap.Error(err))
		return c
	}
	c.Start()
	return c
}
