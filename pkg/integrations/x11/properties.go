package x11

import "strings"

// parseWMClass splits a WM_CLASS value ("instance\x00class\x00") into its
// two parts. Missing parts come back empty.
func parseWMClass(value []byte) (instance, class string) {
	parts := strings.Split(strings.TrimRight(string(value), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

// decodeText trims the trailing NULs some clients leave in text properties.
func decodeText(value []byte) string {
	return strings.TrimRight(string(value), "\x00")
}
