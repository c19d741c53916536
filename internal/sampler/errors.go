package sampler

import "fmt"

// FatalSamplingError is returned by Sample when the query failed, the probes
// were reset, and the retry failed as well.
type FatalSamplingError struct {
	First error
	Retry error
}

func (e *FatalSamplingError) Error() string {
	return fmt.Sprintf("sampling failed after reset and retry: %v (first failure: %v)", e.Retry, e.First)
}

// Unwrap exposes both causes to errors.Is and errors.As, the retry first.
func (e *FatalSamplingError) Unwrap() []error { return []error{e.Retry, e.First} }
