// Package sched runs registered background jobs on cron schedules.
package sched

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled task. RunOnStart jobs also execute immediately when
// the scheduler starts, before their first scheduled tick.
type Job struct {
	Name       string
	Schedule   string
	RunOnStart bool
	Execute    func()
}

// Stats summarizes a registration pass.
type Stats struct {
	Created  int
	Executed int
	Failed   int
}

// Scheduler wraps a cron runner with registration bookkeeping.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	jobs    []Job
	started bool
}

// New creates an empty scheduler. Standard five-field cron expressions.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger.Named("sched"),
	}
}

// Register adds jobs to the scheduler and reports how many were created,
// how many failed to parse, and how many RunOnStart jobs executed. A job
// with an invalid schedule is skipped; it does not stop the others.
func (s *Scheduler) Register(jobs ...Job) Stats {
	var stats Stats
	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.Schedule, func() {
			s.logger.Debug("running scheduled job", zap.String("job", job.Name))
			job.Execute()
		})
		if err != nil {
			stats.Failed++
			s.logger.Error("invalid schedule, job skipped",
				zap.String("job", job.Name),
				zap.String("schedule", job.Schedule),
				zap.Error(err))
			continue
		}
		s.jobs = append(s.jobs, job)
		stats.Created++
		if job.RunOnStart {
			job.Execute()
			stats.Executed++
		}
	}
	return stats
}

// Start begins scheduled execution and returns the count of live jobs.
func (s *Scheduler) Start() int {
	if !s.started {
		s.cron.Start()
		s.started = true
	}
	return len(s.jobs)
}

// Stop halts scheduling. Running jobs finish; none start after. Returns the
// count of jobs that were live.
func (s *Scheduler) Stop() int {
	if s.started {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.started = false
	}
	return len(s.jobs)
}
