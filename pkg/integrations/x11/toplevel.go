package x11

import "github.com/jezek/xgb/xproto"

// windowKind separates real windows from the sentinel values the server
// hands out in place of a window (no focus, pointer-root focus).
type windowKind int

const (
	kindNone windowKind = iota
	kindPointerRoot
	kindWindow
)

func kindOf(w xproto.Window) windowKind {
	switch w {
	case xproto.WindowNone:
		return kindNone
	case xproto.InputFocusPointerRoot:
		return kindPointerRoot
	}
	return kindWindow
}

// windowTree is the part of the X protocol the resolver walks.
type windowTree interface {
	rootWindow() xproto.Window
	parent(w xproto.Window) (xproto.Window, error)
	kind(w xproto.Window) windowKind
	title(w xproto.Window) (*string, error)
}

// resolveTopLevel climbs from focus towards the root. It stops below the
// root, at a parent of a different kind, or at the first ancestor that has a
// title: some window managers reparent clients into unnamed frames that are
// not direct children of the root.
func resolveTopLevel(t windowTree, focus xproto.Window) (xproto.Window, error) {
	top := focus
	for {
		parent, err := t.parent(top)
		if err != nil {
			return 0, err
		}
		if parent == t.rootWindow() {
			return top, nil
		}
		if t.kind(parent) != t.kind(top) {
			return top, nil
		}
		top = parent

		title, err := t.title(top)
		if err != nil {
			return 0, err
		}
		if title != nil {
			return top, nil
		}
	}
}
