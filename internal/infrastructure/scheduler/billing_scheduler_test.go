package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingRunner struct {
	mu        sync.Mutex
	calls     []string
	statusErr error
	windows   []time.Duration
}

func (r *recordingRunner) UpdateBillStatuses(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "statuses")
	if r.statusErr != nil {
		return 0, r.statusErr
	}
	return 2, nil
}

func (r *recordingRunner) GenerateDueBills(ctx context.Context, refDate time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "generate")
	return 1, nil
}

func (r *recordingRunner) NotifyUpcomingDue(ctx context.Context, within time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "remind")
	r.windows = append(r.windows, within)
	return 3, nil
}

func (r *recordingRunner) callLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func newTestScheduler(runner *recordingRunner, at time.Time) *BillingScheduler {
	config := DefaultBillingSchedulerConfig()
	s := NewBillingScheduler(config, runner, zap.NewNop())
	s.now = func() time.Time { return at }
	return s
}

func TestBillingScheduler_RunNow(t *testing.T) {
	t.Run("runs passes in order", func(t *testing.T) {
		runner := &recordingRunner{}
		s := newTestScheduler(runner, time.Date(2025, 4, 15, 2, 5, 0, 0, time.UTC))

		s.RunNow(context.Background())

		assert.Equal(t, []string{"statuses", "generate", "remind"}, runner.callLog())
		require.Len(t, runner.windows, 1)
		assert.Equal(t, 72*time.Hour, runner.windows[0])
	})

	t.Run("later passes run when an earlier one fails", func(t *testing.T) {
		runner := &recordingRunner{statusErr: fmt.Errorf("db down")}
		s := newTestScheduler(runner, time.Date(2025, 4, 15, 2, 5, 0, 0, time.UTC))

		s.RunNow(context.Background())

		assert.Equal(t, []string{"statuses", "generate", "remind"}, runner.callLog())
	})
}

func TestBillingScheduler_CheckAndRun(t *testing.T) {
	t.Run("runs at the configured hour", func(t *testing.T) {
		runner := &recordingRunner{}
		s := newTestScheduler(runner, time.Date(2025, 4, 15, 2, 30, 0, 0, time.UTC))

		s.checkAndRun(context.Background())

		assert.Len(t, runner.callLog(), 3)
	})

	t.Run("skips outside the configured hour", func(t *testing.T) {
		runner := &recordingRunner{}
		s := newTestScheduler(runner, time.Date(2025, 4, 15, 9, 0, 0, 0, time.UTC))

		s.checkAndRun(context.Background())

		assert.Empty(t, runner.callLog())
	})

	t.Run("runs at most once per date", func(t *testing.T) {
		runner := &recordingRunner{}
		s := newTestScheduler(runner, time.Date(2025, 4, 15, 2, 0, 0, 0, time.UTC))

		s.checkAndRun(context.Background())
		s.checkAndRun(context.Background())

		assert.Len(t, runner.callLog(), 3)

		// a new date resets the latch
		s.now = func() time.Time { return time.Date(2025, 4, 16, 2, 0, 0, 0, time.UTC) }
		s.checkAndRun(context.Background())

		assert.Len(t, runner.callLog(), 6)
	})
}

func TestBillingScheduler_StartStop(t *testing.T) {
	runner := &recordingRunner{}
	config := BillingSchedulerConfig{RunHour: 2, CheckInterval: time.Hour, ReminderDays: 3}
	s := NewBillingScheduler(config, runner, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background())) // idempotent

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
	require.NoError(t, s.Stop(stopCtx)) // idempotent
}
