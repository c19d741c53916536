package mutter

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/worklog/worklog/pkg/window"
)

// focusedWindow is the part of the extension's JSON reply we read. The
// shell already reports the top-level window, so no tree walk is needed.
type focusedWindow struct {
	Title   *string `json:"title"`
	WmClass string  `json:"wm_class"`
}

// WindowProbe asks GNOME Shell for the focused window.
type WindowProbe struct {
	session
	reply string
}

var _ window.WindowProbe = (*WindowProbe)(nil)

// NewWindowProbe creates an unconnected probe on the session bus.
func NewWindowProbe() *WindowProbe {
	return &WindowProbe{session: session{dial: dialSessionBus}}
}

func (p *WindowProbe) Backend() string   { return backendName }
func (p *WindowProbe) Connect() error    { return p.connect() }
func (p *WindowProbe) Disconnect() error { return p.disconnect() }
func (p *WindowProbe) Reset() error      { return p.reset() }

// TopLevelWindowInfo implements window.WindowProbe. An empty or "null"
// reply means nothing has focus.
func (p *WindowProbe) TopLevelWindowInfo() (*string, string, error) {
	if err := p.call("get focused window", focusedWindowDestination, focusedWindowObjectPath, focusedWindowMethod, &p.reply); err != nil {
		return nil, "", err
	}
	if p.reply == "" || p.reply == "null" {
		return nil, "", nil
	}

	var fw focusedWindow
	if err := json.Unmarshal([]byte(p.reply), &fw); err != nil {
		return nil, "", window.NewConnectionError(backendName, "get focused window",
			errors.Wrap(err, "parse window JSON"))
	}
	return fw.Title, fw.WmClass, nil
}
