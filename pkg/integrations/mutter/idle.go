package mutter

import "github.com/worklog/worklog/pkg/window"

// IdleProbe reads the idle time from Mutter's IdleMonitor.
type IdleProbe struct {
	session

	// idleMs receives every reply; it lives as long as the probe.
	idleMs uint64
}

var _ window.IdleProbe = (*IdleProbe)(nil)

// NewIdleProbe creates an unconnected probe on the session bus.
func NewIdleProbe() *IdleProbe {
	return &IdleProbe{session: session{dial: dialSessionBus}}
}

func (p *IdleProbe) Backend() string   { return backendName }
func (p *IdleProbe) Connect() error    { return p.connect() }
func (p *IdleProbe) Disconnect() error { return p.disconnect() }
func (p *IdleProbe) Reset() error      { return p.reset() }

// IdleSeconds calls GetIdletime, which answers in milliseconds.
func (p *IdleProbe) IdleSeconds() (float64, error) {
	if err := p.call("get idletime", idleMonitorDestination, idleMonitorObjectPath, idleMonitorMethod, &p.idleMs); err != nil {
		return 0, err
	}
	return float64(p.idleMs) / 1000.0, nil
}
