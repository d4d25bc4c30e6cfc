// internal/scheduler/scheduler.go

// Package scheduler runs the periodic reconciliation jobs on their own
// tickers, independent of any user request. Operators can also trigger the
// same jobs on demand through the admin endpoints.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/config"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/services"
)

type Scheduler struct {
	service *services.SchedulerService
	config  config.SchedulerConfig

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(service *services.SchedulerService, cfg config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		service: service,
		config:  cfg,
	}
}

// Start launches one goroutine per recurring job. It is a no-op when the
// scheduler is disabled by configuration.
func (s *Scheduler) Start() {
	if !s.config.Enabled {
		logrus.Info("Scheduler disabled by configuration")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.run(ctx, "send_reminders", time.Duration(s.config.ReminderInterval)*time.Minute, func() {
		if _, err := s.service.SendReminders(); err != nil {
			logrus.WithError(err).Error("Reminder job failed")
		}
	})

	s.run(ctx, "resend_expired", time.Duration(s.config.ResendInterval)*time.Minute, func() {
		if _, err := s.service.ResendExpired(); err != nil {
			logrus.WithError(err).Error("Expired link renewal job failed")
		}
	})

	logrus.Info("Scheduler started")
}

// Stop signals the job goroutines and waits for the current tick, if any,
// to finish. In-flight batch items are not cancelled.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	logrus.Info("Scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, name string, interval time.Duration, job func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logrus.WithFields(logrus.Fields{"job": name, "interval": interval}).Info("Job scheduled")

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job()
			}
		}
	}()
}
