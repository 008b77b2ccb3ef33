// Package schedule fires dispatch triggers at fixed local times of day.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Job is the work a trigger performs. today is the calendar date the
// trigger fired on, formatted YYYY-MM-DD in the scheduler's zone.
type Job func(ctx context.Context, today string)

// Trigger is a named job fired at one or more HH:MM local times.
type Trigger struct {
	Name  string
	Times []string
	Run   Job
}

// Config holds scheduler settings.
type Config struct {
	// Timezone all trigger times are interpreted in.
	Timezone string
	// CheckInterval is how often to test whether a slot is due.
	// Must divide a minute to never skip a slot; default 30s.
	CheckInterval time.Duration
}

// Scheduler fires each trigger slot exactly once per calendar day.
type Scheduler struct {
	config   Config
	location *time.Location
	triggers []Trigger
	logger   *zerolog.Logger

	mu      sync.Mutex
	lastRun map[string]string // "trigger@HH:MM" -> YYYY-MM-DD of last fire
	running bool
	stopCh  chan struct{}
}

// NewScheduler validates trigger times and builds a scheduler.
func NewScheduler(config Config, triggers []Trigger, logger *zerolog.Logger) (*Scheduler, error) {
	if config.Timezone == "" {
		config.Timezone = "America/Chicago"
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = 30 * time.Second
	}

	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", config.Timezone, err)
	}

	for _, t := range triggers {
		if len(t.Times) == 0 {
			return nil, fmt.Errorf("trigger %s has no times", t.Name)
		}
		for _, slot := range t.Times {
			if _, err := time.Parse("15:04", slot); err != nil {
				return nil, fmt.Errorf("trigger %s: bad time %q: %w", t.Name, slot, err)
			}
		}
	}

	return &Scheduler{
		config:   config,
		location: loc,
		triggers: triggers,
		logger:   logger,
		lastRun:  make(map[string]string),
		stopCh:   make(chan struct{}),
	}, nil
}

// Location returns the zone trigger times are interpreted in.
func (s *Scheduler) Location() *time.Location {
	return s.location
}

// Start runs the check loop until the context is cancelled or Stop is
// called. Blocks.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info().
		Str("timezone", s.config.Timezone).
		Dur("check_interval", s.config.CheckInterval).
		Int("triggers", len(s.triggers)).
		Msg("scheduler started")

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped by context")
			return
		case <-s.stopCh:
			s.logger.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.checkAndRun(ctx, time.Now())
		}
	}
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()
}

// checkAndRun fires every trigger whose slot matches the current local
// minute and has not fired yet today.
func (s *Scheduler) checkAndRun(ctx context.Context, now time.Time) {
	local := now.In(s.location)
	today := local.Format("2006-01-02")
	minute := local.Format("15:04")

	for _, trigger := range s.triggers {
		for _, slot := range trigger.Times {
			if slot != minute {
				continue
			}
			if !s.markFired(trigger.Name, slot, today) {
				continue
			}

			s.logger.Info().
				Str("trigger", trigger.Name).
				Str("slot", slot).
				Str("date", today).
				Msg("trigger fired")

			trigger.Run(ctx, today)
		}
	}
}

// markFired records a slot fire and reports whether this call won the slot.
func (s *Scheduler) markFired(name, slot, today string) bool {
	key := name + "@" + slot
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun[key] == today {
		return false
	}
	s.lastRun[key] = today
	return true
}

// RunNow fires the named trigger immediately, outside its schedule.
// Returns false when no trigger has that name.
func (s *Scheduler) RunNow(ctx context.Context, name string) bool {
	for _, trigger := range s.triggers {
		if trigger.Name != name {
			continue
		}
		today := time.Now().In(s.location).Format("2006-01-02")
		s.logger.Info().Str("trigger", name).Msg("manual trigger fired")
		trigger.Run(ctx, today)
		return true
	}
	return false
}

// IsRunning reports whether the scheduler loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
