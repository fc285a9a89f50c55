package draft

import "strings"

// Key is a key press relevant to the editor.
type Key int

// Editor keys. KeyConfirm saves, KeyCancel cancels; anything else is
// ignored.
const (
	KeyOther Key = iota
	KeyConfirm
	KeyCancel
)

// ParseKey maps a key name to an editor key.
func ParseKey(name string) Key {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "enter", "return":
		return KeyConfirm
	case "escape", "esc":
		return KeyCancel
	}
	return KeyOther
}
