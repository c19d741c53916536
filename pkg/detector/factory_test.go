package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSession(t *testing.T, sessionType, waylandDisplay, x11Display, desktop string) {
	t.Helper()
	t.Setenv("XDG_SESSION_TYPE", sessionType)
	t.Setenv("WAYLAND_DISPLAY", waylandDisplay)
	t.Setenv("DISPLAY", x11Display)
	t.Setenv("XDG_CURRENT_DESKTOP", desktop)
}

func TestDetectDisplayServer(t *testing.T) {
	tests := []struct {
		name           string
		sessionType    string
		waylandDisplay string
		x11Display     string
		expected       string
	}{
		{"Wayland session", "wayland", "wayland-0", "", "wayland"},
		{"X11 session", "x11", "", ":0", "x11"},
		{"Unknown session", "", "", "", "unknown"},
		{"Wayland display set", "", "wayland-1", "", "wayland"},
		{"X11 display set", "", "", ":1", "x11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSession(t, tt.sessionType, tt.waylandDisplay, tt.x11Display, "")
			assert.Equal(t, tt.expected, DetectDisplayServer())
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		backend     string
		sessionType string
		wayland     string
		display     string
		desktop     string
		expected    string
		wantErr     bool
	}{
		{name: "explicit x11", backend: X11, expected: X11},
		{name: "explicit mutter", backend: Mutter, expected: Mutter},
		{name: "unknown", backend: "kwin", wantErr: true},
		{name: "auto on x11", backend: Auto, sessionType: "x11", display: ":0", expected: X11},
		{name: "empty on x11", backend: "", display: ":0", expected: X11},
		{name: "auto on gnome wayland", backend: Auto, sessionType: "wayland", wayland: "wayland-0", desktop: "ubuntu:GNOME", expected: Mutter},
		{name: "auto on xwayland", backend: Auto, sessionType: "wayland", wayland: "wayland-0", display: ":0", desktop: "KDE", expected: X11},
		{name: "auto on bare wayland", backend: Auto, sessionType: "wayland", wayland: "wayland-0", desktop: "sway", wantErr: true},
		{name: "auto without display", backend: Auto, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSession(t, tt.sessionType, tt.wayland, tt.display, tt.desktop)
			got, err := Resolve(tt.backend)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNew(t *testing.T) {
	setSession(t, "x11", "", ":0", "")

	p, err := New(Options{WindowBackend: Auto, IdleBackend: Mutter})
	require.NoError(t, err)
	assert.Equal(t, "x11", p.Window.Backend())
	assert.Equal(t, "mutter", p.Idle.Backend())
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(Options{WindowBackend: "kwin"})
	assert.Error(t, err)
}
