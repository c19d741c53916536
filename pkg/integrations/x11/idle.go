package x11

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/screensaver"
	"github.com/jezek/xgb/xproto"

	"github.com/worklog/worklog/pkg/window"
)

// IdleProbe reads the user idle time from the MIT-SCREEN-SAVER extension.
// xgb decodes every reply into a freshly allocated struct, so unlike the
// mutter probe there is no caller-owned result buffer here.
type IdleProbe struct {
	display string
	conn    *idleConn
}

var _ window.IdleProbe = (*IdleProbe)(nil)

type idleConn struct {
	x    *xgb.Conn
	root xproto.Drawable
}

// NewIdleProbe creates an unconnected probe for display ("" means $DISPLAY).
func NewIdleProbe(display string) *IdleProbe {
	return &IdleProbe{display: display}
}

func (p *IdleProbe) Backend() string {
	return backendName
}

// Connect opens the connection and initializes the extension.
func (p *IdleProbe) Connect() error {
	if p.conn != nil {
		return nil
	}
	x, root, err := dial(p.display)
	if err != nil {
		return err
	}
	if err := screensaver.Init(x); err != nil {
		closeConn(x)
		return window.NewConnectionError(backendName, "init MIT-SCREEN-SAVER", err)
	}
	p.conn = &idleConn{x: x, root: xproto.Drawable(root)}
	return nil
}

func (p *IdleProbe) Disconnect() error {
	c := p.conn
	p.conn = nil
	if c == nil {
		return nil
	}
	return closeConn(c.x)
}

func (p *IdleProbe) Reset() error {
	releaseErr := p.Disconnect()
	if err := p.Connect(); err != nil {
		return err
	}
	return releaseErr
}

// IdleSeconds returns milliseconds since the last input event, in seconds.
func (p *IdleProbe) IdleSeconds() (float64, error) {
	c := p.conn
	if c == nil {
		return 0, window.NewConnectionError(backendName, "query info", window.ErrNotConnected)
	}
	reply, err := screensaver.QueryInfo(c.x, c.root).Reply()
	if err != nil {
		return 0, window.NewConnectionError(backendName, "query info", err)
	}
	return float64(reply.MsSinceUserInput) / 1000.0, nil
}
