/*
scheduler.go - Automatic cycle reconciliation

PURPOSE:
  Detects rollovers without waiting for user traffic. Runs one
  reconciliation immediately at startup and then on a cron schedule
  (default shortly after midnight, when a boundary is most likely to have
  been crossed). Manual triggers and the schedule are coalesced by the
  manager's single-flight guard.

USAGE:
  sched, err := NewScheduler(manager, "5 0 * * *", logger)
  sched.Start()
  ...
  sched.Stop()
*/
package api

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Tranvietnhattu/SMARTMONEY/cycle"
)

// Scheduler triggers reconciliations on a cron schedule.
type Scheduler struct {
	manager *cycle.Manager
	engine  *cron.Cron
	log     *logrus.Entry
}

// NewScheduler wires a scheduler for the given cron spec.
func NewScheduler(manager *cycle.Manager, spec string, log *logrus.Logger) (*Scheduler, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Scheduler{
		manager: manager,
		engine:  cron.New(cron.WithLocation(time.Local)),
		log:     log.WithField("component", "scheduler"),
	}
	if _, err := s.engine.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

// Start runs an immediate reconciliation and begins the schedule.
func (s *Scheduler) Start() {
	s.runOnce()
	s.engine.Start()
	s.log.Info("reconciliation scheduler started")
}

// Stop stops the schedule, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.engine.Stop()
	<-ctx.Done()
	s.log.Info("reconciliation scheduler stopped")
}

func (s *Scheduler) runOnce() {
	outcome, err := s.manager.ReconcileNow(context.Background())
	if err != nil {
		if errors.Is(err, cycle.ErrReconcileInFlight) {
			s.log.Debug("reconciliation already running, tick coalesced")
			return
		}
		s.log.WithError(err).Error("scheduled reconciliation failed")
		return
	}
	if outcome.Archived {
		s.log.WithField("closed_cycle", outcome.ClosedCycleID).Info("scheduled reconciliation archived a cycle")
	}
}
