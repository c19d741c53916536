// Package tracker runs the sampling engine: start delay, self-check, sinks,
// sampler and scheduler.
package tracker

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/worklog/worklog/internal/clock"
	"github.com/worklog/worklog/internal/config"
	"github.com/worklog/worklog/internal/database"
	"github.com/worklog/worklog/internal/models"
	"github.com/worklog/worklog/internal/sampler"
	"github.com/worklog/worklog/internal/scheduler"
	"github.com/worklog/worklog/internal/sink"
	"github.com/worklog/worklog/pkg/window"
)

type Service struct {
	config *config.Config
	repo   *database.Repository // nil disables error records and mirroring
	window window.WindowProbe
	idle   window.IdleProbe
	clock  clock.Clock
	logger zerolog.Logger
}

func NewService(cfg *config.Config, repo *database.Repository, win window.WindowProbe, idle window.IdleProbe, clk clock.Clock, logger zerolog.Logger) *Service {
	return &Service{
		config: cfg,
		repo:   repo,
		window: win,
		idle:   idle,
		clock:  clk,
		logger: logger.With().Str("component", "tracker").Logger(),
	}
}

// Run samples until ctx is cancelled, returning nil, or until sampling
// fails. Failures are also stored as error records.
func (s *Service) Run(ctx context.Context) error {
	if err := s.run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Info().Msg("Tracker stopped")
			return nil
		}
		s.storeError(err)
		return err
	}
	return nil
}

func (s *Service) run(ctx context.Context) error {
	if d := s.config.Sampler.StartDelay; d > 0 {
		s.logger.Info().Dur("delay", d).Msg("Waiting before first sample")
		if err := s.clock.Sleep(ctx, d); err != nil {
			return err
		}
		s.logger.Info().Msg("Delay complete")
	}

	if s.config.Sampler.SelfCheck {
		if err := s.selfCheck(); err != nil {
			return err
		}
	}

	out, err := s.openSinks()
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Failed to close sinks")
		}
	}()

	smp, err := sampler.New(s.window, s.idle, s.clock, s.logger)
	if err != nil {
		return startupError{errors.Wrap(err, "connect probes")}
	}
	defer smp.Release()

	sched, err := scheduler.New(smp, out, s.clock, s.config.Sampler.Rate, s.logger)
	if err != nil {
		return startupError{err}
	}

	s.logger.Info().
		Float64("rate", s.config.Sampler.Rate).
		Str("window_backend", s.window.Backend()).
		Str("idle_backend", s.idle.Backend()).
		Msg("Starting tracker")
	return sched.Run(ctx)
}

// selfCheck takes one sample on short-lived connections so missing titles
// or program names are reported before the run starts.
func (s *Service) selfCheck() error {
	smp, err := sampler.New(s.window, s.idle, s.clock, s.logger)
	if err != nil {
		return startupError{errors.Wrap(err, "connect probes")}
	}
	defer smp.Release()

	if _, err := smp.SelfCheck(); err != nil {
		return err
	}
	return nil
}

func (s *Service) openSinks() (sink.Sink, error) {
	csv, err := sink.OpenCSV(s.config.Storage.LogDir, s.clock.Now())
	if err != nil {
		return nil, startupError{err}
	}
	s.logger.Info().Str("path", csv.Path()).Msg("Writing samples")

	if !s.config.Storage.MirrorSamples || s.repo == nil {
		return csv, nil
	}
	return sink.Multi{csv, sink.NewSQLite(s.repo)}, nil
}

// Snapshot takes a single sample and releases the probes.
func (s *Service) Snapshot() (sampler.Sample, error) {
	smp, err := sampler.New(s.window, s.idle, s.clock, s.logger)
	if err != nil {
		return sampler.Sample{}, errors.Wrap(err, "connect probes")
	}
	defer smp.Release()
	return smp.Sample()
}

type startupError struct{ error }

func (e startupError) Unwrap() error { return e.error }

func errorKind(err error) string {
	var fatal *sampler.FatalSamplingError
	var startup startupError
	switch {
	case errors.As(err, &fatal):
		return models.ErrorKindFatal
	case errors.As(err, &startup):
		return models.ErrorKindStartup
	default:
		return models.ErrorKindSink
	}
}

func (s *Service) storeError(err error) {
	kind := errorKind(err)
	s.logger.Error().Err(err).Str("kind", kind).Msg("Tracker stopped on error")

	if s.repo == nil {
		return
	}
	errorLog := &models.ErrorLog{
		Timestamp: time.Now(),
		Kind:      kind,
		ErrorMsg:  err.Error(),
	}
	if dbErr := s.repo.CreateErrorLog(errorLog); dbErr != nil {
		s.logger.Error().Err(dbErr).Msg("Failed to store error in database")
	}
}
