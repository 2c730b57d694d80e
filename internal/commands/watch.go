package commands

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bit2swaz/cache-janitor/internal/janitor"
	"github.com/bit2swaz/cache-janitor/internal/logging"
	"github.com/bit2swaz/cache-janitor/pkg/observability"
)

func newWatchCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run cleanup passes periodically and serve health and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			logger, closeLog := logging.Open(cfg.Log, cmd.ErrOrStderr())
			defer closeLog()

			j, err := newJanitor(cfg, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			status := &passStatus{}

			if cfg.Watch.Listen != "" {
				srv := &http.Server{
					Addr:              cfg.Watch.Listen,
					Handler:           newStatusRouter(status),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					logger.WithField("listen", cfg.Watch.Listen).Info("Status server listening")
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.WithError(err).Error("Status server failed")
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := srv.Shutdown(shutdownCtx); err != nil {
						logger.WithError(err).Warn("Status server shutdown failed")
					}
				}()
			}

			watchPasses(ctx, cfg.Watch.Interval, func() {
				report, err := j.Run(ctx)
				observability.ObservePass(report, err)
				status.record(report, err)
				if err != nil && ctx.Err() == nil {
					logger.WithError(err).WithField("cache_dir", cfg.CacheDir).Error("Cache cleanup pass aborted")
				}
			})

			logger.Info("Watch stopped")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Duration("interval", time.Hour, "time between passes")
	flags.String("listen", ":9400", "address for /healthz and /metrics; empty disables the server")
	bindFlags(opts.v, flags, map[string]string{
		"watch.interval": "interval",
		"watch.listen":   "listen",
	})

	return cmd
}

// watchPasses runs pass immediately and then on every tick until ctx is done.
// Passes run on this goroutine, so they never overlap.
func watchPasses(ctx context.Context, interval time.Duration, pass func()) {
	pass()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pass()
		}
	}
}

type passStatus struct {
	mu       sync.Mutex
	report   janitor.Report
	err      error
	finished bool
}

func (s *passStatus) record(r janitor.Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = r
	s.err = err
	s.finished = true
}

type statusResponse struct {
	Status    string     `json:"status"`
	LastPass  *time.Time `json:"last_pass,omitempty"`
	Scanned   int        `json:"scanned"`
	Removed   int        `json:"removed"`
	Retained  int        `json:"retained"`
	Errors    int        `json:"errors"`
	LastError string     `json:"last_error,omitempty"`
}

func (s *passStatus) snapshot() (statusResponse, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := statusResponse{Status: "up"}
	if !s.finished {
		return resp, http.StatusOK
	}

	started := s.report.Started
	resp.LastPass = &started
	resp.Scanned = s.report.Scanned
	resp.Removed = s.report.Removed
	resp.Retained = s.report.Retained
	resp.Errors = s.report.Errors

	if s.err != nil {
		resp.LastError = s.err.Error()
		if errors.Is(s.err, janitor.ErrDirectoryUnavailable) {
			resp.Status = "unavailable"
			return resp, http.StatusServiceUnavailable
		}
	}
	return resp, http.StatusOK
}

func newStatusRouter(status *passStatus) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(observability.MetricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		resp, code := status.snapshot()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
