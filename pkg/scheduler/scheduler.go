// Package scheduler runs the recurring inventory jobs on their cron
// schedules. A job that is still running when its next tick fires is
// skipped rather than stacked.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/pasuper/supercron/pkg/services"
)

// job binds a name and cron expression to an Operations method.
type job struct {
	name     string
	schedule string
	run      func(context.Context) error
}

// Scheduler owns the cron runner and the registered inventory jobs.
type Scheduler struct {
	cron    *cron.Cron
	ops     services.Operations
	entries map[string]cron.EntryID
}

// New builds a scheduler with every inventory job registered but not
// yet started.
func New(ops services.Operations) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	runner := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	s := &Scheduler{
		cron:    runner,
		ops:     ops,
		entries: make(map[string]cron.EntryID),
	}

	jobs := []job{
		{"update_price_label", "0 20 * * *", ops.UpdatePriceLabels},
		{"unknown_inv", "0 21 * * *", ops.UpdateUnknownLocations},
		{"diff_inv", "20 1 * * *", ops.CheckInventoryDiffs},
		{"update_qty_label", "*/30 7-19 * * *", ops.UpdateQuantityLabels},
		{"offline_inv", "*/15 7-19 * * *", ops.ExportOffline},
	}
	for _, j := range jobs {
		if err := s.register(j); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) register(j job) error {
	run := j.run
	name := j.name
	entryID, err := s.cron.AddFunc(j.schedule, func() {
		if err := run(context.Background()); err != nil {
			log.WithError(err).WithField("job", name).Error("Scheduled job failed")
		}
	})
	if err != nil {
		return err
	}
	s.entries[j.name] = entryID
	log.WithFields(log.Fields{
		"job":      j.name,
		"schedule": j.schedule,
	}).Info("Registered scheduled job")
	return nil
}

// Start begins firing jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.WithField("jobs", len(s.entries)).Info("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Scheduler stopped")
}

// JobCount returns the number of registered jobs.
func (s *Scheduler) JobCount() int {
	return len(s.entries)
}
