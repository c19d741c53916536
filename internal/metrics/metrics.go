package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Sampling metrics
	SamplesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worklog_samples_total",
			Help: "Samples written to the record sink",
		},
	)

	ProbeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worklog_probe_errors_total",
			Help: "Probe query failures, labelled by whether the retry recovered",
		},
		[]string{"outcome"},
	)

	ProbeResetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worklog_probe_resets_total",
			Help: "Probe reconnect cycles by reason",
		},
		[]string{"reason"},
	)

	ReleaseErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worklog_release_errors_total",
			Help: "Errors swallowed while disconnecting probes",
		},
	)

	// Scheduler metrics
	MissedTicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worklog_missed_ticks_total",
			Help: "Sampling ticks skipped because an iteration overran its period",
		},
	)

	IdleSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worklog_idle_seconds",
			Help: "Idle time reported by the most recent sample",
		},
	)
)

func init() {
	prometheus.MustRegister(
		SamplesTotal,
		ProbeErrorsTotal,
		ProbeResetsTotal,
		ReleaseErrorsTotal,
		MissedTicksTotal,
		IdleSeconds,
	)
}

// Server exposes /metrics and /health.
type Server struct {
	server *http.Server
	logger zerolog.Logger
}

func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
