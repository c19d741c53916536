// Package mutter implements the probes against GNOME Shell / Mutter over the
// D-Bus session bus. It covers Wayland sessions where X11 clients cannot see
// other applications' windows.
package mutter

import (
	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"

	"github.com/worklog/worklog/pkg/window"
)

const backendName = "mutter"

const (
	idleMonitorDestination = "org.gnome.Mutter.IdleMonitor"
	idleMonitorObjectPath  = "/org/gnome/Mutter/IdleMonitor/Core"
	idleMonitorMethod      = "org.gnome.Mutter.IdleMonitor.GetIdletime"

	// Provided by the "Focused Window D-Bus" shell extension.
	focusedWindowDestination = "org.gnome.Shell"
	focusedWindowObjectPath  = "/org/gnome/shell/extensions/FocusedWindow"
	focusedWindowMethod      = "org.gnome.shell.extensions.FocusedWindow.Get"
)

// busDialer opens a private session bus connection. Tests replace it.
type busDialer func() (busConn, error)

// busConn is the subset of *dbus.Conn the probes use.
type busConn interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	Close() error
}

func dialSessionBus() (busConn, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// session holds at most one live bus connection. Both probes embed one.
type session struct {
	dial busDialer
	conn busConn
}

func (s *session) connect() error {
	if s.conn != nil {
		return nil
	}
	conn, err := s.dial()
	if err != nil {
		return window.NewConnectionError(backendName, "connect", errors.Wrap(err, "session bus"))
	}
	s.conn = conn
	return nil
}

func (s *session) disconnect() error {
	conn := s.conn
	s.conn = nil
	if conn == nil {
		return nil
	}
	if err := conn.Close(); err != nil {
		return &window.ResourceReleaseError{Backend: backendName, Err: err}
	}
	return nil
}

func (s *session) reset() error {
	releaseErr := s.disconnect()
	if err := s.connect(); err != nil {
		return err
	}
	return releaseErr
}

func (s *session) call(op, dest, path, method string, out interface{}) error {
	if s.conn == nil {
		return window.NewConnectionError(backendName, op, window.ErrNotConnected)
	}
	call := s.conn.Object(dest, dbus.ObjectPath(path)).Call(method, 0)
	if call.Err != nil {
		return window.NewConnectionError(backendName, op, errors.Wrapf(call.Err, "call %s", method))
	}
	if err := call.Store(out); err != nil {
		return window.NewConnectionError(backendName, op, errors.Wrapf(err, "decode %s reply", method))
	}
	return nil
}
