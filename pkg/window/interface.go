package window

// WindowProbe owns a session to the windowing system and reports the
// focused top-level window.
type WindowProbe interface {
	// Connect opens the session and caches the root window.
	Connect() error

	// TopLevelWindowInfo returns the title and program name of the focused
	// top-level window. A nil title means the window has none. When there is
	// no usable focus handle it returns (nil, "", nil).
	TopLevelWindowInfo() (title *string, program string, err error)

	// Disconnect releases the session. Safe to call when not connected.
	Disconnect() error

	// Reset disconnects and reconnects as one step.
	Reset() error

	// Backend names the implementation ("x11", "mutter").
	Backend() string
}

// IdleProbe owns a session to the idle-time service of the windowing system.
type IdleProbe interface {
	Connect() error

	// IdleSeconds returns the time since the last user input.
	IdleSeconds() (float64, error)

	Disconnect() error
	Reset() error
	Backend() string
}
