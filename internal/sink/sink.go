// Package sink persists samples: a daily CSV file and an optional SQLite
// mirror.
package sink

import (
	"github.com/worklog/worklog/internal/sampler"
)

// Sink accepts samples until closed.
type Sink interface {
	Write(sampler.Sample) error
	Close() error
}

// Multi writes every sample to all sinks in order.
type Multi []Sink

// Write stops at the first failing sink.
func (m Multi) Write(s sampler.Sample) error {
	for _, sk := range m {
		if err := sk.Write(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and returns the first error.
func (m Multi) Close() error {
	var first error
	for _, sk := range m {
		if err := sk.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
