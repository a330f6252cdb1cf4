package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Schedule struct {
	InsuranceCron string
	OverdueCron   string
}

// Scheduler runs the alert checks on cron expressions with a seconds field, in UTC.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

func NewScheduler(runner *AlertRunner, schedule Schedule, log zerolog.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	if _, err := c.AddFunc(schedule.InsuranceCron, runner.run("insurance_expiry", runner.CheckInsuranceExpiry)); err != nil {
		return nil, fmt.Errorf("register insurance expiry job: %w", err)
	}
	if _, err := c.AddFunc(schedule.OverdueCron, runner.run("overdue_rentals", runner.CheckOverdueRentals)); err != nil {
		return nil, fmt.Errorf("register overdue rentals job: %w", err)
	}

	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("starting alert scheduler")
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("alert scheduler stopped")
}
