package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// Completer completes matches that have been active for longer than window.
type Completer interface {
	CompleteStaleMatches(ctx context.Context, window time.Duration) (int, error)
}

// Sweeper periodically completes stale matches.
type Sweeper struct {
	scheduler gocron.Scheduler
	completer Completer
	window    time.Duration
	timeout   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// New schedules a sweep every interval. Nothing runs until Start is called.
func New(c Completer, interval, window time.Duration) (*Sweeper, error) {
	if interval <= 0 || window <= 0 {
		return nil, fmt.Errorf("sweep interval and window must be positive")
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Sweeper{
		scheduler: scheduler,
		completer: c,
		window:    window,
		timeout:   interval,
		ctx:       ctx,
		cancel:    cancel,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := s.Sweep(s.ctx); err != nil {
				log.Error("Stale match sweep failed", "error", err)
			}
		}),
		gocron.WithName("complete-stale-matches"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to schedule sweep: %w", err)
	}
	return s, nil
}

// Start begins running the scheduled sweeps.
func (s *Sweeper) Start() {
	log.Info("Starting stale match sweeper", "window", s.window)
	s.scheduler.Start()
}

// Sweep runs one sweep and returns the number of completed matches.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.completer.CompleteStaleMatches(ctx, s.window)
	if err != nil {
		return 0, err
	}
	log.Debug("Stale match sweep done", "completed", n)
	return n, nil
}

// Shutdown stops the scheduler and cancels a sweep in progress.
func (s *Sweeper) Shutdown() error {
	s.cancel()
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop sweeper: %w", err)
	}
	log.Info("Stale match sweeper stopped")
	return nil
}
