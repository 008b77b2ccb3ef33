// Package audit persists per-user dispatch outcomes and exports them
// for study coordinators.
package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"wordpair/internal/database"
	"wordpair/internal/dispatch"
	"wordpair/internal/metrics"
)

// Recorder writes dispatch run outcomes to the audit table.
type Recorder struct {
	db      *database.DB
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

// NewRecorder builds a run recorder. metrics may be nil.
func NewRecorder(db *database.DB, m *metrics.Metrics, logger *zerolog.Logger) *Recorder {
	return &Recorder{db: db, metrics: m, logger: logger}
}

// RecordRun persists one row per user result in the report.
func (r *Recorder) RecordRun(ctx context.Context, report *dispatch.RunReport) error {
	rows := make([]database.AuditRow, 0, len(report.Results))
	for _, res := range report.Results {
		rows = append(rows, database.AuditRow{
			RunID:   report.RunID,
			Trigger: report.Trigger,
			Date:    report.Date,
			UserID:  res.UserID,
			Channel: res.Channel,
			Outcome: res.Outcome,
			Error:   res.Err,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	if err := r.db.InsertAuditRows(ctx, rows); err != nil {
		return err
	}
	if r.metrics != nil {
		r.metrics.AuditRowsWrittenTotal.Add(float64(len(rows)))
	}
	return nil
}

// Cleanup deletes audit rows older than the retention period.
func (r *Recorder) Cleanup(ctx context.Context, retention time.Duration) {
	deleted, err := r.db.DeleteOldAuditRows(ctx, retention)
	if err != nil {
		r.logger.Error().Err(err).Msg("audit cleanup failed")
		return
	}
	if deleted > 0 {
		r.logger.Info().Int64("deleted", deleted).Msg("cleaned up old audit rows")
	}
}
