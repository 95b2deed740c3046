// Package scheduler drives the periodic sweeps. It owns the tickers and
// nothing else: every tick hands an explicit now to the lifecycle and reminder
// services, which keeps the business logic deterministic under test.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/syncfield/standup-bot/internal/domain/contract"
)

type Scheduler struct {
	lifecycle contract.LifecycleService
	reminder  contract.ReminderService

	materializeEvery time.Duration
	remindEvery      time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

func New(lifecycle contract.LifecycleService, reminder contract.ReminderService, materializeEvery, remindEvery time.Duration) *Scheduler {
	return &Scheduler{
		lifecycle:        lifecycle,
		reminder:         reminder,
		materializeEvery: materializeEvery,
		remindEvery:      remindEvery,
		stopChan:         make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	logrus.WithField("component", "scheduler").Info("scheduler starting")

	s.wg.Add(2)
	go s.loop(s.materializeEvery, s.lifecycleTick)
	go s.loop(s.remindEvery, s.reminderTick)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false

	logrus.WithField("component", "scheduler").Info("scheduler stopping")
	close(s.stopChan)
	s.wg.Wait()
}

func (s *Scheduler) loop(every time.Duration, tick func(now time.Time)) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	// Run once at startup so a restart never waits a full interval
	tick(time.Now().UTC())

	for {
		select {
		case <-ticker.C:
			tick(time.Now().UTC())
		case <-s.stopChan:
			return
		}
	}
}

// lifecycleTick materializes due instances, then closes elapsed ones. Each
// sweep is a bounded unit of work; failures are retried on the next tick.
func (s *Scheduler) lifecycleTick(now time.Time) {
	ctx := context.Background()

	if err := s.lifecycle.MaterializeDue(ctx, now); err != nil {
		logrus.WithField("component", "scheduler").WithError(err).Error("materialize sweep failed")
	}
	if err := s.lifecycle.CloseDue(ctx, now); err != nil {
		logrus.WithField("component", "scheduler").WithError(err).Error("close sweep failed")
	}
}

func (s *Scheduler) reminderTick(now time.Time) {
	if err := s.reminder.SweepReminders(context.Background(), now); err != nil {
		logrus.WithField("component", "scheduler").WithError(err).Error("reminder sweep failed")
	}
}
