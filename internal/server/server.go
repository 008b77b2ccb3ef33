// Package server exposes the dispatcher's HTTP surface: health and
// readiness probes, Prometheus metrics, and the diagnostic endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"wordpair/internal/audit"
	"wordpair/internal/database"
	"wordpair/internal/notify"
	"wordpair/internal/schedule"
)

// Server wires the health and diagnostic HTTP endpoints.
type Server struct {
	db            *database.DB
	rdb           *redis.Client
	scheduler     *schedule.Scheduler
	email         *notify.SendGridSender
	testRecipient string
	logger        *zerolog.Logger
}

// New builds the HTTP surface. rdb may be nil.
func New(
	db *database.DB,
	rdb *redis.Client,
	scheduler *schedule.Scheduler,
	email *notify.SendGridSender,
	testRecipient string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		db:            db,
		rdb:           rdb,
		scheduler:     scheduler,
		email:         email,
		testRecipient: testRecipient,
		logger:        logger,
	}
}

// Start serves health and diagnostic endpoints until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz(ctx))
	mux.HandleFunc("/diag/test-email", s.handleTestEmail)
	mux.HandleFunc("/diag/run/", s.handleRunTrigger)
	mux.HandleFunc("/diag/audit.xlsx", s.handleAuditExport)

	s.serve(ctx, port, mux, "health server")
}

// StartMetrics serves /metrics until ctx is cancelled.
func (s *Server) StartMetrics(ctx context.Context, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	s.serve(ctx, port, mux, "metrics server")
}

func (s *Server) serve(ctx context.Context, port int, mux *http.ServeMux, name string) {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error().Err(err).Msg(name + " error")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := s.db.Ping(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if s.rdb != nil {
			if err := s.rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}

// handleTestEmail sends one fixed test email to the configured recipient
// and reports the transport result to the caller.
func (s *Server) handleTestEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.testRecipient == "" {
		http.Error(w, "no test recipient configured", http.StatusInternalServerError)
		return
	}

	if err := s.email.SendTestEmail(r.Context(), s.testRecipient); err != nil {
		s.logger.Error().Err(err).Msg("test email failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, _ = w.Write([]byte("Email sent!"))
}

// handleRunTrigger fires one named trigger immediately.
func (s *Server) handleRunTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/diag/run/")
	if name == "" {
		http.Error(w, "trigger name required", http.StatusBadRequest)
		return
	}

	if !s.scheduler.RunNow(r.Context(), name) {
		http.Error(w, "unknown trigger: "+name, http.StatusNotFound)
		return
	}
	_, _ = w.Write([]byte("triggered " + name))
}

// handleAuditExport streams the audit tables as an xlsx workbook.
func (s *Server) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="dispatch_audit.xlsx"`)

	if err := audit.WriteExcel(r.Context(), s.db, w); err != nil {
		s.logger.Error().Err(err).Msg("audit export failed")
		http.Error(w, "export failed", http.StatusInternalServerError)
	}
}
