// Package dispatch implements the scan-and-notify core: enumerate every
// participant, check the day's status record, and remind non-responders
// over the channel the invoking trigger selects.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wordpair/internal/directory"
	"wordpair/internal/metrics"
	"wordpair/internal/models"
	"wordpair/internal/notify"
)

// StatusStore provides access to per-user-per-day response records.
type StatusStore interface {
	// GetDailyStatus returns the record for a day key, or nil when absent.
	GetDailyStatus(ctx context.Context, key string) (*models.DailyStatus, error)

	// MarkNotResponded upsert-merges the not_responded marker for a
	// (date, user) pair. Idempotent for a given day.
	MarkNotResponded(ctx context.Context, date, userID string, now time.Time) error
}

// AuditSink persists the per-user outcomes of a run.
type AuditSink interface {
	RecordRun(ctx context.Context, report *RunReport) error
}

// Per-user outcomes beyond the sender outcomes in notify.
const (
	OutcomeSkippedResponded = "skipped_responded"
	OutcomeFailed           = string(notify.OutcomeFailed)
)

// UserResult is the outcome of one user's unit of work within a run.
type UserResult struct {
	UserID  string
	Channel string
	Outcome string
	Err     string
}

// RunReport summarizes one dispatch run.
type RunReport struct {
	RunID     string
	Trigger   string
	Date      string
	Scanned   int
	Responded int
	Sent      int
	Skipped   int
	Failed    int
	Results   []UserResult
	Duration  time.Duration
}

// Config holds tunables for the scan loop.
type Config struct {
	// MaxConcurrent bounds how many users are processed in parallel.
	// 1 preserves strictly sequential processing.
	MaxConcurrent int
}

// Service runs the scan-and-notify job.
type Service struct {
	directory directory.Directory
	store     StatusStore
	push      notify.PushSender
	email     notify.EmailSender
	audit     AuditSink
	metrics   *metrics.Metrics
	logger    *zerolog.Logger
	config    Config
}

// NewService wires the scan-and-notify job. audit and metrics may be nil.
func NewService(
	dir directory.Directory,
	store StatusStore,
	push notify.PushSender,
	email notify.EmailSender,
	audit AuditSink,
	m *metrics.Metrics,
	config Config,
	logger *zerolog.Logger,
) *Service {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}
	return &Service{
		directory: dir,
		store:     store,
		push:      push,
		email:     email,
		audit:     audit,
		metrics:   m,
		logger:    logger,
		config:    config,
	}
}

// Run scans every participant for the given calendar date and performs the
// mode's side effect for each non-responder. One user's failure never
// aborts the rest of the scan; failures are collected into the report.
// The returned error covers only the directory read, without which there
// is nothing to scan.
func (s *Service) Run(ctx context.Context, mode Mode, today string) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{
		RunID:   uuid.NewString(),
		Trigger: mode.String(),
		Date:    today,
	}

	s.logger.Info().
		Str("run_id", report.RunID).
		Str("trigger", report.Trigger).
		Str("date", today).
		Msg("dispatch run started")

	users, err := s.directory.ListUsers(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("run_id", report.RunID).Msg("failed to list users")
		return report, err
	}

	report.Scanned = len(users)
	if s.metrics != nil {
		s.metrics.UsersScannedTotal.Add(float64(len(users)))
	}

	sem := make(chan struct{}, s.config.MaxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, user := range users {
		select {
		case <-ctx.Done():
			wg.Wait()
			s.logger.Info().
				Str("run_id", report.RunID).
				Int("processed", len(report.Results)).
				Msg("dispatch run interrupted")
			s.finish(ctx, report, start)
			return report, ctx.Err()
		default:
		}

		wg.Add(1)
		sem <- struct{}{} // acquire

		go func(u models.User) {
			defer wg.Done()
			defer func() { <-sem }() // release

			res := s.processUser(ctx, mode, today, u)

			mu.Lock()
			report.Results = append(report.Results, res)
			mu.Unlock()

			if s.metrics != nil && res.Channel != ChannelNone {
				s.metrics.IncNotification(res.Channel, res.Outcome)
			}
		}(user)
	}
	wg.Wait()

	s.finish(ctx, report, start)
	return report, nil
}

// processUser is one user's isolated unit of work: status read, optional
// marker write, optional send. Errors are captured in the result.
func (s *Service) processUser(ctx context.Context, mode Mode, today string, user models.User) UserResult {
	key := models.DayKey(today, user.ID)

	record, err := s.store.GetDailyStatus(ctx, key)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("status read failed")
		return UserResult{UserID: user.ID, Channel: ChannelNone, Outcome: OutcomeFailed, Err: err.Error()}
	}

	if record.HasResponded() {
		return UserResult{UserID: user.ID, Channel: ChannelNone, Outcome: OutcomeSkippedResponded}
	}

	if mode == ModeMarkNotResponded {
		if err := s.store.MarkNotResponded(ctx, today, user.ID, time.Now()); err != nil {
			s.logger.Error().Err(err).Str("user_id", user.ID).Msg("status write failed")
			return UserResult{UserID: user.ID, Channel: ChannelNone, Outcome: OutcomeFailed, Err: err.Error()}
		}
		if s.metrics != nil {
			s.metrics.StatusesMarkedTotal.Inc()
		}
	}

	msg := modeMessages[mode]
	var res notify.Result
	switch mode.Channel() {
	case ChannelPush:
		res = s.push.SendPush(ctx, user.FCMToken, msg.subject, msg.body)
	case ChannelEmail:
		res = s.email.SendEmail(ctx, user.Email, msg.subject, msg.body)
	}

	return UserResult{
		UserID:  user.ID,
		Channel: mode.Channel(),
		Outcome: string(res.Outcome),
		Err:     res.Reason,
	}
}

func (s *Service) finish(ctx context.Context, report *RunReport, start time.Time) {
	for _, r := range report.Results {
		switch r.Outcome {
		case string(notify.OutcomeSent):
			report.Sent++
		case OutcomeSkippedResponded:
			report.Responded++
		case string(notify.OutcomeSkippedNoDestination):
			report.Skipped++
		case OutcomeFailed:
			report.Failed++
		}
	}
	report.Duration = time.Since(start)

	if s.metrics != nil {
		s.metrics.ObserveRun(report.Trigger, report.Duration.Seconds())
	}

	if s.audit != nil {
		if err := s.audit.RecordRun(ctx, report); err != nil {
			s.logger.Error().Err(err).Str("run_id", report.RunID).Msg("audit record failed")
		}
	}

	s.logger.Info().
		Str("run_id", report.RunID).
		Str("trigger", report.Trigger).
		Int("scanned", report.Scanned).
		Int("responded", report.Responded).
		Int("sent", report.Sent).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Dur("duration", report.Duration).
		Msg("dispatch run finished")
}
