// Package x11 implements the window and idle probes on top of the X protocol
// using jezek/xgb. Both probes own a private connection to the display.
package x11

import (
	"fmt"
	"os"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/worklog/worklog/pkg/window"
)

const backendName = "x11"

var errNoDisplay = errors.New("no display configured (DISPLAY is empty)")

// dial opens a connection to display, or to $DISPLAY when display is empty,
// and returns it with the root window of the default screen.
func dial(display string) (*xgb.Conn, xproto.Window, error) {
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	if display == "" {
		return nil, 0, window.NewConnectionError(backendName, "connect", errNoDisplay)
	}

	x, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, 0, window.NewConnectionError(backendName, "connect",
			errors.Wrapf(err, "open display %s", display))
	}

	screen := xproto.Setup(x).DefaultScreen(x)
	if screen == nil {
		closeConn(x)
		return nil, 0, window.NewConnectionError(backendName, "connect",
			errors.Errorf("display %s has no default screen", display))
	}
	return x, screen.Root, nil
}

// closeConn closes x. xgb panics when a connection is closed twice, which
// happens after the library tore the socket down on its own.
func closeConn(x *xgb.Conn) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &window.ResourceReleaseError{Backend: backendName, Err: fmt.Errorf("close: %v", r)}
		}
	}()
	x.Close()
	return nil
}
