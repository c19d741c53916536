// Package sampler combines a window probe and an idle probe into a single
// sampling call with one level of reset-and-retry recovery.
package sampler

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/worklog/worklog/internal/clock"
	"github.com/worklog/worklog/internal/metrics"
	"github.com/worklog/worklog/pkg/window"
)

// Sampler owns one window probe and one idle probe.
type Sampler struct {
	window   window.WindowProbe
	idle     window.IdleProbe
	clock    clock.Clock
	logger   zerolog.Logger
	released bool
}

// New connects both probes. On failure nothing is left connected.
func New(win window.WindowProbe, idle window.IdleProbe, clk clock.Clock, logger zerolog.Logger) (*Sampler, error) {
	s := &Sampler{
		window: win,
		idle:   idle,
		clock:  clk,
		logger: logger.With().Str("component", "sampler").Logger(),
	}
	if err := s.connect(); err != nil {
		s.disconnect()
		return nil, err
	}
	return s, nil
}

// Sample queries both probes. If either fails, the error is logged, both
// probes are reconnected and the query is retried once. A second failure is
// returned as *FatalSamplingError.
func (s *Sampler) Sample() (Sample, error) {
	sample, err := s.query()
	if err == nil {
		return sample, nil
	}

	s.logger.Error().Err(err).Msg("Probe query failed, resetting probes")
	metrics.ProbeResetsTotal.WithLabelValues("error").Inc()

	if connErr := s.reset(); connErr != nil {
		metrics.ProbeErrorsTotal.WithLabelValues("fatal").Inc()
		return Sample{}, &FatalSamplingError{First: err, Retry: connErr}
	}

	sample, retryErr := s.query()
	if retryErr != nil {
		metrics.ProbeErrorsTotal.WithLabelValues("fatal").Inc()
		return Sample{}, &FatalSamplingError{First: err, Retry: retryErr}
	}

	metrics.ProbeErrorsTotal.WithLabelValues("recovered").Inc()
	return sample, nil
}

// ForceRefresh reconnects both probes regardless of their state. Long-lived
// X connections have been seen to go stale without reporting errors.
func (s *Sampler) ForceRefresh() error {
	metrics.ProbeResetsTotal.WithLabelValues("refresh").Inc()
	return s.reset()
}

// Release disconnects both probes. Calls after the first are no-ops.
func (s *Sampler) Release() {
	if s.released {
		return
	}
	s.released = true
	s.disconnect()
}

// SelfCheck takes one sample and warns about data the backends cannot
// provide on this system.
func (s *Sampler) SelfCheck() (Sample, error) {
	sample, err := s.Sample()
	if err != nil {
		return Sample{}, err
	}
	if sample.WindowTitle == nil {
		s.logger.Warn().Str("backend", s.window.Backend()).Msg("Your system does not supply window titles")
	}
	if sample.ProgramName == "" {
		s.logger.Warn().Str("backend", s.window.Backend()).Msg("Your system does not supply program names")
	}
	return sample, nil
}

func (s *Sampler) query() (Sample, error) {
	ts := clock.Seconds(s.clock.Now())

	title, program, err := s.window.TopLevelWindowInfo()
	if err != nil {
		return Sample{}, errors.Wrap(err, "window info")
	}
	idle, err := s.idle.IdleSeconds()
	if err != nil {
		return Sample{}, errors.Wrap(err, "idle time")
	}

	metrics.IdleSeconds.Set(idle)
	return Sample{
		WindowTitle: title,
		ProgramName: program,
		IdleSeconds: idle,
		Timestamp:   ts,
	}, nil
}

// connect connects both probes, attempting the second even if the first
// fails, and returns the first error.
func (s *Sampler) connect() error {
	idleErr := s.idle.Connect()
	winErr := s.window.Connect()
	if idleErr != nil {
		return errors.Wrap(idleErr, "connect idle probe")
	}
	if winErr != nil {
		return errors.Wrap(winErr, "connect window probe")
	}
	return nil
}

// reset resets both probes, idle first, even if the first one fails. Release
// failures are logged and dropped; the first reconnect failure is returned.
func (s *Sampler) reset() error {
	var first error
	for _, p := range []struct {
		name  string
		reset func() error
	}{
		{"idle", s.idle.Reset},
		{"window", s.window.Reset},
	} {
		err := p.reset()
		var release *window.ResourceReleaseError
		switch {
		case err == nil:
		case errors.As(err, &release):
			metrics.ReleaseErrorsTotal.Inc()
			s.logger.Error().Err(err).Str("probe", p.name).Msg("Failed to release probe")
		case first == nil:
			first = errors.Wrapf(err, "reset %s probe", p.name)
		}
	}
	return first
}

// disconnect releases both probes. Release failures are logged and dropped
// so that one broken probe never keeps the other connected.
func (s *Sampler) disconnect() {
	for _, p := range []struct {
		name       string
		disconnect func() error
	}{
		{"idle", s.idle.Disconnect},
		{"window", s.window.Disconnect},
	} {
		if err := p.disconnect(); err != nil {
			metrics.ReleaseErrorsTotal.Inc()
			s.logger.Error().Err(err).Str("probe", p.name).Msg("Failed to release probe")
		}
	}
}
