package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/vitrine-backend/pkg/logger"
	"github.com/ikkim/vitrine-backend/pkg/metrics"
	"github.com/robfig/cron/v3"
)

const sweepJob = "session_sweep"

// IdleSweeper is the service side of the sweep.
type IdleSweeper interface {
	SweepIdle(ctx context.Context) (int, error)
}

// SessionSweeper 유휴 세션 정리 스케줄러
type SessionSweeper struct {
	cron    *cron.Cron
	spec    string
	timeout time.Duration
	sweeper IdleSweeper
	metrics *metrics.JobMetrics
}

func NewSessionSweeper(spec string, sweeper IdleSweeper, m *metrics.JobMetrics) *SessionSweeper {
	return &SessionSweeper{
		cron:    cron.New(),
		spec:    spec,
		timeout: time.Minute,
		sweeper: sweeper,
		metrics: m,
	}
}

// Start 스케줄러 시작
func (s *SessionSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runOnce); err != nil {
		logger.Error("Failed to add cron job for session sweep", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Session sweeper started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Stop waits for a running sweep to finish.
func (s *SessionSweeper) Stop() {
	logger.Info("Stopping session sweeper...")
	<-s.cron.Stop().Done()
	logger.Info("Session sweeper stopped")
}

func (s *SessionSweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	removed, err := s.sweeper.SweepIdle(ctx)
	s.metrics.Record(sweepJob, time.Since(start), err)
	if err != nil {
		logger.Error("Scheduled session sweep failed", err)
		return
	}

	logger.Debug("Scheduled session sweep finished", map[string]interface{}{
		"removed":  removed,
		"duration": time.Since(start).String(),
	})
}
