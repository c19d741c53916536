// Package detector picks window and idle probe backends for the current
// session.
package detector

import (
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/worklog/worklog/pkg/integrations/mutter"
	"github.com/worklog/worklog/pkg/integrations/x11"
	"github.com/worklog/worklog/pkg/window"
)

// Backend names, matching the display configuration values.
const (
	Auto   = "auto"
	X11    = "x11"
	Mutter = "mutter"
)

// Options selects the backends. Empty backends mean Auto.
type Options struct {
	Display       string
	WindowBackend string
	IdleBackend   string
}

// Probes holds one unconnected probe of each kind.
type Probes struct {
	Window window.WindowProbe
	Idle   window.IdleProbe
}

// New builds unconnected probes for the chosen backends.
func New(opts Options) (*Probes, error) {
	winBackend, err := Resolve(opts.WindowBackend)
	if err != nil {
		return nil, errors.Wrap(err, "window backend")
	}
	idleBackend, err := Resolve(opts.IdleBackend)
	if err != nil {
		return nil, errors.Wrap(err, "idle backend")
	}

	p := &Probes{}
	switch winBackend {
	case X11:
		p.Window = x11.NewWindowProbe(opts.Display)
	case Mutter:
		p.Window = mutter.NewWindowProbe()
	}
	switch idleBackend {
	case X11:
		p.Idle = x11.NewIdleProbe(opts.Display)
	case Mutter:
		p.Idle = mutter.NewIdleProbe()
	}
	return p, nil
}

// Resolve maps a configured backend to a concrete one, detecting the
// session for Auto.
func Resolve(backend string) (string, error) {
	switch backend {
	case X11, Mutter:
		return backend, nil
	case Auto, "":
	default:
		return "", errors.Errorf("unknown backend %q", backend)
	}

	switch DetectDisplayServer() {
	case "x11":
		return X11, nil
	case "wayland":
		if isGnome() {
			return Mutter, nil
		}
		// XWayland still answers for X clients.
		if os.Getenv("DISPLAY") != "" {
			return X11, nil
		}
		return "", errors.New("wayland session without GNOME or XWayland is not supported")
	default:
		return "", errors.New("no display server detected")
	}
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}

func isGnome() bool {
	for _, desktop := range strings.Split(os.Getenv("XDG_CURRENT_DESKTOP"), ":") {
		if strings.EqualFold(desktop, "GNOME") {
			return true
		}
	}
	return false
}
