package x11

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/worklog/worklog/pkg/window"
)

// Property reads are capped at 4 KiB (length is in 32-bit units).
const maxPropertyLength = 1024

// WindowProbe resolves the focused top-level window over a private X
// connection.
type WindowProbe struct {
	display string
	conn    *windowConn
}

var _ window.WindowProbe = (*WindowProbe)(nil)

// NewWindowProbe creates an unconnected probe for display ("" means $DISPLAY).
func NewWindowProbe(display string) *WindowProbe {
	return &WindowProbe{display: display}
}

// Backend returns "x11".
func (p *WindowProbe) Backend() string {
	return backendName
}

// Connect opens the connection. It is a no-op while already connected.
func (p *WindowProbe) Connect() error {
	if p.conn != nil {
		return nil
	}
	c, err := dialWindowConn(p.display)
	if err != nil {
		return err
	}
	p.conn = c
	return nil
}

// Disconnect closes the connection, if any.
func (p *WindowProbe) Disconnect() error {
	c := p.conn
	p.conn = nil
	if c == nil {
		return nil
	}
	return closeConn(c.x)
}

// Reset replaces the connection with a fresh one. The old connection is
// detached before it is closed; a close failure does not stop the redial.
func (p *WindowProbe) Reset() error {
	releaseErr := p.Disconnect()
	if err := p.Connect(); err != nil {
		return err
	}
	return releaseErr
}

// TopLevelWindowInfo implements window.WindowProbe.
func (p *WindowProbe) TopLevelWindowInfo() (*string, string, error) {
	c := p.conn
	if c == nil {
		return nil, "", window.NewConnectionError(backendName, "get input focus", window.ErrNotConnected)
	}

	focus, err := xproto.GetInputFocus(c.x).Reply()
	if err != nil {
		return nil, "", window.NewConnectionError(backendName, "get input focus", err)
	}
	// Right after login the server can report no focus or pointer-root focus.
	if kindOf(focus.Focus) != kindWindow {
		return nil, "", nil
	}

	top, err := resolveTopLevel(c, focus.Focus)
	if err != nil {
		return nil, "", err
	}

	title, err := c.title(top)
	if err != nil {
		return nil, "", err
	}
	_, class, err := c.class(top)
	if err != nil {
		return nil, "", err
	}
	return title, class, nil
}

// windowConn is a live connection plus the values cached at connect time.
type windowConn struct {
	x          *xgb.Conn
	root       xproto.Window
	netWMName  xproto.Atom
	utf8String xproto.Atom
}

var _ windowTree = (*windowConn)(nil)

func dialWindowConn(display string) (*windowConn, error) {
	x, root, err := dial(display)
	if err != nil {
		return nil, err
	}

	c := &windowConn{x: x, root: root}
	atoms := map[string]*xproto.Atom{
		"_NET_WM_NAME": &c.netWMName,
		"UTF8_STRING":  &c.utf8String,
	}
	for name, dst := range atoms {
		reply, err := xproto.InternAtom(x, false, uint16(len(name)), name).Reply()
		if err != nil {
			closeConn(x)
			return nil, window.NewConnectionError(backendName, "intern atom",
				errors.Wrapf(err, "intern %s", name))
		}
		*dst = reply.Atom
	}
	return c, nil
}

func (c *windowConn) rootWindow() xproto.Window {
	return c.root
}

func (c *windowConn) kind(w xproto.Window) windowKind {
	return kindOf(w)
}

func (c *windowConn) parent(w xproto.Window) (xproto.Window, error) {
	reply, err := xproto.QueryTree(c.x, w).Reply()
	if err != nil {
		return 0, window.NewConnectionError(backendName, "query tree", err)
	}
	return reply.Parent, nil
}

// title prefers the EWMH UTF-8 name and falls back to WM_NAME. It returns
// nil when the window carries neither property.
func (c *windowConn) title(w xproto.Window) (*string, error) {
	reply, err := c.property(w, c.netWMName, c.utf8String)
	if err != nil {
		return nil, err
	}
	if reply.Type != xproto.AtomNone && reply.Format == 8 {
		s := decodeText(reply.Value)
		return &s, nil
	}

	reply, err = c.property(w, xproto.AtomWmName, xproto.GetPropertyTypeAny)
	if err != nil {
		return nil, err
	}
	if reply.Type == xproto.AtomNone {
		return nil, nil
	}
	s := decodeText(reply.Value)
	return &s, nil
}

func (c *windowConn) class(w xproto.Window) (instance, class string, err error) {
	reply, err := c.property(w, xproto.AtomWmClass, xproto.AtomString)
	if err != nil {
		return "", "", err
	}
	if reply.Type == xproto.AtomNone {
		return "", "", nil
	}
	instance, class = parseWMClass(reply.Value)
	return instance, class, nil
}

func (c *windowConn) property(w xproto.Window, prop, typ xproto.Atom) (*xproto.GetPropertyReply, error) {
	reply, err := xproto.GetProperty(c.x, false, w, prop, typ, 0, maxPropertyLength).Reply()
	if err != nil {
		return nil, window.NewConnectionError(backendName, "get property", err)
	}
	return reply, nil
}
