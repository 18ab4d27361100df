package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Ticker is anything that advances on the decay tick.
type Ticker interface {
	Tick(ctx context.Context)
}

// Scheduler runs the client's periodic decay and reconnect tick.
type Scheduler struct {
	Cron   *cron.Cron
	Ticker Ticker
	Ctx    context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, t Ticker) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Ticker: t,
		Ctx:    ctx,
	}
}

// Register adds the tick task. tickCron accepts six-field specs as well as
// descriptors such as "@every 30s".
func (s *Scheduler) Register(tickCron string) error {
	if _, err := s.Cron.AddFunc(tickCron, s.tick); err != nil {
		return fmt.Errorf("register tick task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes one tick immediately.
func (s *Scheduler) RunNow() {
	s.tick()
}

func (s *Scheduler) tick() {
	if s.Ctx.Err() != nil {
		return
	}
	s.Ticker.Tick(s.Ctx)
}
