// Package cron schedules the recurring assistant briefings.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pbhm215/everyday-pda/assistant"
	"github.com/pbhm215/everyday-pda/internal/profile"
)

// jobTimeout bounds a full briefing run across all users.
const jobTimeout = 10 * time.Minute

// Notifier delivers finished briefings to a frontend channel.
type Notifier interface {
	Notify(ctx context.Context, summaries []assistant.UserSummary)
}

// Scheduler runs the morning briefing and the hourly significance check.
type Scheduler struct {
	cron            *cron.Cron
	orchestrator    *assistant.Orchestrator
	notifiers       []Notifier
	morningSpec     string
	proactivitySpec string
}

func NewScheduler(profile *profile.Profile, orchestrator *assistant.Orchestrator, notifiers ...Notifier) *Scheduler {
	return &Scheduler{
		cron:            cron.New(),
		orchestrator:    orchestrator,
		notifiers:       notifiers,
		morningSpec:     profile.MorningCron,
		proactivitySpec: profile.ProactivityCron,
	}
}

// Start registers both jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.morningSpec, s.runMorning); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.proactivitySpec, s.runProactivity); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("scheduler started",
		slog.String("morning", s.morningSpec),
		slog.String("proactivity", s.proactivitySpec),
	)
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

func (s *Scheduler) runMorning() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	summaries, err := s.orchestrator.AllMorningSummaries(ctx)
	if err != nil {
		slog.Error("morning briefing failed", slog.String("error", err.Error()))
		return
	}
	s.notify(ctx, summaries)
}

func (s *Scheduler) runProactivity() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	summaries, err := s.orchestrator.AllProactivitySummaries(ctx)
	if err != nil {
		slog.Error("proactivity check failed", slog.String("error", err.Error()))
		return
	}
	s.notify(ctx, summaries)
}

func (s *Scheduler) notify(ctx context.Context, summaries []assistant.UserSummary) {
	// Users without anything to report carry a nil response and are skipped.
	deliverable := summaries[:0:0]
	for _, summary := range summaries {
		if summary.Response != nil {
			deliverable = append(deliverable, summary)
		}
	}
	if len(deliverable) == 0 {
		return
	}
	for _, notifier := range s.notifiers {
		notifier.Notify(ctx, deliverable)
	}
}
