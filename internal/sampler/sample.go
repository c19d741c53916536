package sampler

// Sample is one observation of the focused window and idle time.
type Sample struct {
	// WindowTitle is nil when the window system supplied no title.
	WindowTitle *string
	ProgramName string
	IdleSeconds float64
	// Timestamp is Unix seconds, taken from the sampler's clock.
	Timestamp float64
}

// Title returns the window title, or "" when absent.
func (s Sample) Title() string {
	if s.WindowTitle == nil {
		return ""
	}
	return *s.WindowTitle
}
