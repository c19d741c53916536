// Package scheduler drives the sampler at a fixed rate and refreshes its
// probes on a fixed cadence.
package scheduler

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/worklog/worklog/internal/clock"
	"github.com/worklog/worklog/internal/metrics"
	"github.com/worklog/worklog/internal/sampler"
)

// RefreshInterval is the cadence of unconditional probe reconnects.
const RefreshInterval = 5 * time.Second

// UsageSampler is what the scheduler needs from *sampler.Sampler.
type UsageSampler interface {
	Sample() (sampler.Sample, error)
	ForceRefresh() error
}

// Sink receives every sample.
type Sink interface {
	Write(sampler.Sample) error
}

// Scheduler runs the sampling loop. It is not safe for concurrent use.
type Scheduler struct {
	sampler UsageSampler
	sink    Sink
	clock   clock.Clock
	period  time.Duration
	logger  zerolog.Logger

	nextRefresh time.Time
	nextWake    time.Time
}

// New creates a scheduler taking rate samples per second.
func New(s UsageSampler, sink Sink, clk clock.Clock, rate float64, logger zerolog.Logger) (*Scheduler, error) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, errors.Errorf("sampling rate must be a positive number, got %v", rate)
	}
	period := time.Duration(float64(time.Second) / rate)
	if period <= 0 {
		return nil, errors.Errorf("sampling rate %v is too high", rate)
	}
	return &Scheduler{
		sampler: s,
		sink:    sink,
		clock:   clk,
		period:  period,
		logger:  logger.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Period returns the time between samples.
func (s *Scheduler) Period() time.Duration {
	return s.period
}

// Run samples until ctx is cancelled or sampling fails. Cancellation is
// observed between iterations and during the wait; it returns ctx.Err().
// A failed sample or sink write ends the loop with that error.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info().Dur("period", s.period).Msg("Starting sampling loop")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.iterate(ctx); err != nil {
			return err
		}
	}
}

func (s *Scheduler) iterate(ctx context.Context) error {
	now := s.clock.Now()
	if s.nextRefresh.IsZero() {
		s.nextRefresh = now.Add(RefreshInterval)
		s.nextWake = now
	}

	if !now.Before(s.nextRefresh) {
		if err := s.sampler.ForceRefresh(); err != nil {
			// The next Sample recovers through its own reset.
			s.logger.Warn().Err(err).Msg("Forced probe refresh failed")
		}
		s.nextRefresh = now.Add(RefreshInterval)
	}

	sample, err := s.sampler.Sample()
	if err != nil {
		return err
	}
	if err := s.sink.Write(sample); err != nil {
		return errors.Wrap(err, "write sample")
	}
	metrics.SamplesTotal.Inc()

	return s.wait(ctx)
}

// wait sleeps until the next point on the fixed-period grid that is not in
// the past. Grid points that already passed are skipped, not replayed.
func (s *Scheduler) wait(ctx context.Context) error {
	s.nextWake = s.nextWake.Add(s.period)
	now := s.clock.Now()

	missed := 0
	for s.nextWake.Before(now) {
		s.nextWake = s.nextWake.Add(s.period)
		missed++
	}
	if missed > 0 {
		metrics.MissedTicksTotal.Add(float64(missed))
		s.logger.Debug().Int("missed", missed).Msg("Iteration overran, skipping ticks")
	}

	return s.clock.Sleep(ctx, s.nextWake.Sub(now))
}
