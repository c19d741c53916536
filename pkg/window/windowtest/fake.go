// Package windowtest provides scripted probes for exercising the sampling
// engine without a display server.
package windowtest

import (
	"sync"

	"github.com/worklog/worklog/pkg/window"
)

// WindowProbe is a scripted window.WindowProbe. Failures is consumed one
// entry per query; a nil entry (or an exhausted script) means success.
type WindowProbe struct {
	mu sync.Mutex

	Title   *string
	Program string

	Failures      []error
	ConnectErr    error
	DisconnectErr error

	// OnQuery runs at the start of every query, before the scripted result.
	OnQuery func()

	Connects    int
	Disconnects int
	Resets      int
	Queries     int
	connected   bool
}

var _ window.WindowProbe = (*WindowProbe)(nil)

func (p *WindowProbe) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Connects++
	if p.ConnectErr != nil {
		return window.NewConnectionError("fake", "connect", p.ConnectErr)
	}
	p.connected = true
	return nil
}

func (p *WindowProbe) TopLevelWindowInfo() (*string, string, error) {
	if p.OnQuery != nil {
		p.OnQuery()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Queries++
	if !p.connected {
		return nil, "", window.NewConnectionError("fake", "get input focus", window.ErrNotConnected)
	}
	if len(p.Failures) > 0 {
		err := p.Failures[0]
		p.Failures = p.Failures[1:]
		if err != nil {
			return nil, "", err
		}
	}
	return p.Title, p.Program, nil
}

func (p *WindowProbe) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Disconnects++
	p.connected = false
	if p.DisconnectErr != nil {
		return &window.ResourceReleaseError{Backend: "fake", Err: p.DisconnectErr}
	}
	return nil
}

// Reset mirrors the real probes: a release error is reported only once the
// reconnect succeeded.
func (p *WindowProbe) Reset() error {
	p.mu.Lock()
	p.Resets++
	p.mu.Unlock()
	releaseErr := p.Disconnect()
	if err := p.Connect(); err != nil {
		return err
	}
	return releaseErr
}

func (p *WindowProbe) Backend() string { return "fake" }

// Connected reports whether the probe currently holds a session.
func (p *WindowProbe) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// IdleProbe is a scripted window.IdleProbe. Values are returned in order and
// the last one repeats; Failures works as in WindowProbe.
type IdleProbe struct {
	mu sync.Mutex

	Values        []float64
	Failures      []error
	ConnectErr    error
	DisconnectErr error

	Connects    int
	Disconnects int
	Resets      int
	Queries     int
	connected   bool
}

var _ window.IdleProbe = (*IdleProbe)(nil)

func (p *IdleProbe) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Connects++
	if p.ConnectErr != nil {
		return window.NewConnectionError("fake", "connect", p.ConnectErr)
	}
	p.connected = true
	return nil
}

func (p *IdleProbe) IdleSeconds() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Queries++
	if !p.connected {
		return 0, window.NewConnectionError("fake", "query info", window.ErrNotConnected)
	}
	if len(p.Failures) > 0 {
		err := p.Failures[0]
		p.Failures = p.Failures[1:]
		if err != nil {
			return 0, err
		}
	}
	if len(p.Values) == 0 {
		return 0, nil
	}
	v := p.Values[0]
	if len(p.Values) > 1 {
		p.Values = p.Values[1:]
	}
	return v, nil
}

func (p *IdleProbe) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Disconnects++
	p.connected = false
	if p.DisconnectErr != nil {
		return &window.ResourceReleaseError{Backend: "fake", Err: p.DisconnectErr}
	}
	return nil
}

func (p *IdleProbe) Reset() error {
	p.mu.Lock()
	p.Resets++
	p.mu.Unlock()
	releaseErr := p.Disconnect()
	if err := p.Connect(); err != nil {
		return err
	}
	return releaseErr
}

func (p *IdleProbe) Backend() string { return "fake" }

// Connected reports whether the probe currently holds a session.
func (p *IdleProbe) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// String returns a pointer to s, for scripting titles.
func String(s string) *string { return &s }
