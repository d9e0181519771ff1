package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/ikkim/vitrine-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSweeper struct {
	calls int
	err   error
}

func (s *stubSweeper) SweepIdle(ctx context.Context) (int, error) {
	s.calls++
	return 3, s.err
}

func TestSessionSweeper_RunOnceRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	jm := metrics.NewJobMetrics(reg)
	stub := &stubSweeper{}
	s := NewSessionSweeper("@every 1h", stub, jm)

	s.runOnce()
	stub.err = errors.New("redis down")
	s.runOnce()

	assert.Equal(t, 2, stub.calls)
	mfs, err := reg.Gather()
	require.NoError(t, err)
	got := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				got[mf.GetName()] += c.GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, got["job_success_total"])
	assert.Equal(t, 1.0, got["job_failure_total"])
}

func TestSessionSweeper_StartRejectsBadSpec(t *testing.T) {
	s := NewSessionSweeper("not a spec", &stubSweeper{}, nil)
	assert.Error(t, s.Start())
}

func TestSessionSweeper_StartStop(t *testing.T) {
	s := NewSessionSweeper("*/15 * * * *", &stubSweeper{}, nil)
	require.NoError(t, s.Start())
	s.Stop()
}
