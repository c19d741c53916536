package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklog/worklog/internal/clock"
	"github.com/worklog/worklog/internal/sampler"
)

var epoch = time.Unix(1_700_000_000, 0)

// fakeSampler stamps samples with the clock and can stall or fail on
// chosen calls (1-based).
type fakeSampler struct {
	clock     *clock.TestClock
	stalls    map[int]time.Duration
	failOn    int
	calls     int
	refreshes []time.Duration
}

func (f *fakeSampler) Sample() (sampler.Sample, error) {
	f.calls++
	ts := clock.Seconds(f.clock.Now())
	if d, ok := f.stalls[f.calls]; ok {
		f.clock.Advance(d)
	}
	if f.calls == f.failOn {
		return sampler.Sample{}, &sampler.FatalSamplingError{First: errors.New("first"), Retry: errors.New("retry")}
	}
	return sampler.Sample{ProgramName: "editor-bin", Timestamp: ts}, nil
}

func (f *fakeSampler) ForceRefresh() error {
	f.refreshes = append(f.refreshes, f.clock.Now().Sub(epoch))
	return nil
}

// recordingSink cancels the run after limit samples.
type recordingSink struct {
	samples []sampler.Sample
	limit   int
	cancel  context.CancelFunc
	err     error
}

func (r *recordingSink) Write(s sampler.Sample) error {
	if r.err != nil {
		return r.err
	}
	r.samples = append(r.samples, s)
	if len(r.samples) >= r.limit {
		r.cancel()
	}
	return nil
}

func run(t *testing.T, f *fakeSampler, rate float64, limit int) (*recordingSink, error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &recordingSink{limit: limit, cancel: cancel}
	s, err := New(f, sink, f.clock, rate, zerolog.Nop())
	require.NoError(t, err)
	return sink, s.Run(ctx)
}

func TestNewRejectsBadRates(t *testing.T) {
	for _, rate := range []float64{0, -1} {
		_, err := New(&fakeSampler{}, &recordingSink{}, clock.RealClock{}, rate, zerolog.Nop())
		assert.Error(t, err, "rate %v", rate)
	}

	s, err := New(&fakeSampler{}, &recordingSink{}, clock.RealClock{}, 4, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, s.Period())
}

func TestRunOnFixedGrid(t *testing.T) {
	clk := clock.NewTestClock(epoch)
	f := &fakeSampler{clock: clk}

	sink, err := run(t, f, 1.0, 3)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, sink.samples, 3)

	base := clock.Seconds(epoch)
	for i, s := range sink.samples {
		assert.InDelta(t, base+float64(i), s.Timestamp, 1e-6)
	}
	assert.Equal(t, []time.Duration{time.Second, time.Second}, clk.Sleeps())
}

func TestRunSkipsMissedTicksAfterStall(t *testing.T) {
	clk := clock.NewTestClock(epoch)
	f := &fakeSampler{clock: clk, stalls: map[int]time.Duration{1: 1300 * time.Millisecond}}

	sink, err := run(t, f, 2.0, 3)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, sink.samples, 3)

	// The stall ends at 1.3s; the next grid point is 1.5s, not 1.8s.
	sleeps := clk.Sleeps()
	require.GreaterOrEqual(t, len(sleeps), 2)
	assert.Equal(t, 200*time.Millisecond, sleeps[0])
	assert.Equal(t, 500*time.Millisecond, sleeps[1])

	base := clock.Seconds(epoch)
	assert.InDelta(t, base+1.5, sink.samples[1].Timestamp, 1e-6)
	assert.InDelta(t, base+2.0, sink.samples[2].Timestamp, 1e-6)
}

func TestRunAfterStallLandingOnGridPoint(t *testing.T) {
	clk := clock.NewTestClock(epoch)
	f := &fakeSampler{clock: clk, stalls: map[int]time.Duration{1: time.Second}}

	_, err := run(t, f, 2.0, 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, time.Duration(0), clk.Sleeps()[0])
}

func TestForcedRefreshCadence(t *testing.T) {
	tests := []struct {
		name  string
		rate  float64
		limit int
		want  []time.Duration
	}{
		{
			name:  "fast sampling",
			rate:  10,
			limit: 121, // t = 0 .. 12s
			want:  []time.Duration{5 * time.Second, 10 * time.Second},
		},
		{
			name:  "slow sampling",
			rate:  0.25,
			limit: 5, // t = 0, 4, 8, 12, 16
			want:  []time.Duration{8 * time.Second, 16 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := clock.NewTestClock(epoch)
			f := &fakeSampler{clock: clk}

			_, err := run(t, f, tt.rate, tt.limit)
			assert.ErrorIs(t, err, context.Canceled)
			require.Len(t, f.refreshes, len(tt.want))
			for i, at := range f.refreshes {
				assert.InDelta(t, tt.want[i].Seconds(), at.Seconds(), 1e-6)
				if i > 0 {
					assert.GreaterOrEqual(t, at-f.refreshes[i-1], RefreshInterval)
				}
			}
		})
	}
}

func TestRunStopsOnFatalSamplingError(t *testing.T) {
	clk := clock.NewTestClock(epoch)
	f := &fakeSampler{clock: clk, failOn: 3}

	sink, err := run(t, f, 1.0, 100)
	var fatal *sampler.FatalSamplingError
	require.ErrorAs(t, err, &fatal)
	assert.Len(t, sink.samples, 2)
	assert.Equal(t, 3, f.calls)
}

func TestRunStopsOnSinkError(t *testing.T) {
	clk := clock.NewTestClock(epoch)
	f := &fakeSampler{clock: clk}
	sink := &recordingSink{err: errors.New("disk full")}

	s, err := New(f, sink, clk, 1.0, zerolog.Nop())
	require.NoError(t, err)
	err = s.Run(context.Background())
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, f.calls)
}

func TestRunReturnsImmediatelyWhenCancelled(t *testing.T) {
	clk := clock.NewTestClock(epoch)
	f := &fakeSampler{clock: clk}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(f, &recordingSink{}, clk, 1.0, zerolog.Nop())
	require.NoError(t, err)
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
	assert.Zero(t, f.calls)
}
