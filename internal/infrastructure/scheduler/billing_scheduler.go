package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BillingRunner is the slice of the billing engine the scheduler drives
type BillingRunner interface {
	UpdateBillStatuses(ctx context.Context) (int, error)
	GenerateDueBills(ctx context.Context, refDate time.Time) (int, error)
	NotifyUpcomingDue(ctx context.Context, within time.Duration) (int, error)
}

// BillingSchedulerConfig holds configuration for the billing scheduler
type BillingSchedulerConfig struct {
	// RunHour is the hour of day (24h) the daily billing run starts
	RunHour int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration

	// ReminderDays is how many days ahead the upcoming-due pass looks
	ReminderDays int
}

// DefaultBillingSchedulerConfig returns default billing scheduler configuration
func DefaultBillingSchedulerConfig() BillingSchedulerConfig {
	return BillingSchedulerConfig{
		RunHour:       2, // 2am
		CheckInterval: 10 * time.Minute,
		ReminderDays:  3,
	}
}

// BillingScheduler runs the daily billing sequence: escalate overdue
// bills, generate the day's bills, then send upcoming-due reminders.
// Escalation runs first so a cycle that both generates and escalates on
// the same day sees yesterday's bills settled before new ones appear.
type BillingScheduler struct {
	config BillingSchedulerConfig
	runner BillingRunner
	logger *zap.Logger
	now    func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string // Track which date we last ran for
}

// NewBillingScheduler creates a new billing scheduler
func NewBillingScheduler(config BillingSchedulerConfig, runner BillingRunner, logger *zap.Logger) *BillingScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingScheduler{
		config: config,
		runner: runner,
		logger: logger,
		now:    time.Now,
	}
}

// Start starts the billing scheduler
func (s *BillingScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Billing scheduler started",
		zap.Int("run_hour", s.config.RunHour),
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Int("reminder_days", s.config.ReminderDays),
	)

	return nil
}

// Stop stops the billing scheduler
func (s *BillingScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Billing scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop checks periodically if it's time to run the daily sequence
func (s *BillingScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

// checkAndRun runs the daily sequence once per date at the configured hour
func (s *BillingScheduler) checkAndRun(ctx context.Context) {
	now := s.now()
	currentDate := now.Format("2006-01-02")

	s.mu.Lock()
	alreadyRan := s.lastRunDate == currentDate
	s.mu.Unlock()

	if alreadyRan || now.Hour() != s.config.RunHour {
		return
	}

	s.mu.Lock()
	s.lastRunDate = currentDate
	s.mu.Unlock()

	s.RunNow(ctx)
}

// RunNow executes the daily billing sequence immediately. Each pass is
// independent; a failing pass is logged and the remaining passes still
// run.
func (s *BillingScheduler) RunNow(ctx context.Context) {
	now := s.now()
	s.logger.Info("Starting daily billing run", zap.Time("ref_date", now))

	escalated, err := s.runner.UpdateBillStatuses(ctx)
	if err != nil {
		s.logger.Error("Overdue escalation pass failed", zap.Error(err))
	} else {
		s.logger.Info("Overdue escalation pass finished", zap.Int("escalated", escalated))
	}

	created, err := s.runner.GenerateDueBills(ctx, now)
	if err != nil {
		s.logger.Error("Bill generation pass failed", zap.Error(err))
	} else {
		s.logger.Info("Bill generation pass finished", zap.Int("created", created))
	}

	window := time.Duration(s.config.ReminderDays) * 24 * time.Hour
	reminded, err := s.runner.NotifyUpcomingDue(ctx, window)
	if err != nil {
		s.logger.Error("Upcoming-due reminder pass failed", zap.Error(err))
	} else {
		s.logger.Info("Upcoming-due reminder pass finished", zap.Int("reminded", reminded))
	}
}
