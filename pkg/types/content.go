package types

import "strings"

// Content is the editable payload of a card or a box. The interface is
// sealed: only CardData and BoxData implement it.
type Content interface {
	// ContentType reports which object type this content belongs to.
	ContentType() ObjectType

	// EntityID returns the card or box id, empty for unsaved content.
	EntityID() string

	isContent()
}

// EmptyContent returns the default content used when an object type has
// no editable payload.
func EmptyContent() Content {
	return CardData{}.Normalize()
}

// NormalizeContent applies the per-type reset transform. Unsupported types
// fall back to EmptyContent rather than failing.
func NormalizeContent(t ObjectType, c Content) Content {
	switch t {
	case ObjectTypeCard:
		if card, ok := c.(CardData); ok {
			return card.Normalize()
		}
	case ObjectTypeBox:
		if box, ok := c.(BoxData); ok {
			return box.Normalize()
		}
	}
	return EmptyContent()
}

// normalizeTags trims tags, drops empty ones and duplicates, and always
// returns a non-nil slice.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
