package types

import "time"

// BoxData is the content of a box together with its membership set.
// Membership holds ObjectIDs of the placed objects inside the box and is
// changed through the data layer, never directly by the core.
type BoxData struct {
	BoxID     BoxID      `json:"box_id"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Tags      []string   `json:"tags"`
	Contains  []ObjectID `json:"contains"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ContentType implements Content.
func (b BoxData) ContentType() ObjectType { return ObjectTypeBox }

// EntityID implements Content.
func (b BoxData) EntityID() string { return string(b.BoxID) }

func (BoxData) isContent() {}

// Normalize returns a copy of the box safe to edit: tags are cleaned,
// membership is de-duplicated in insertion order, and neither slice is nil.
func (b BoxData) Normalize() BoxData {
	out := b
	out.Tags = normalizeTags(b.Tags)
	out.Contains = make([]ObjectID, 0, len(b.Contains))
	seen := make(map[ObjectID]bool, len(b.Contains))
	for _, id := range b.Contains {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out.Contains = append(out.Contains, id)
	}
	return out
}

// Has reports whether the object is a member of the box.
func (b BoxData) Has(id ObjectID) bool {
	for _, m := range b.Contains {
		if m == id {
			return true
		}
	}
	return false
}

// WithMember returns a copy of the box that contains id. Idempotent.
func (b BoxData) WithMember(id ObjectID) BoxData {
	out := b.Normalize()
	if !out.Has(id) {
		out.Contains = append(out.Contains, id)
	}
	return out
}

// WithoutMember returns a copy of the box that does not contain id.
// Idempotent.
func (b BoxData) WithoutMember(id ObjectID) BoxData {
	out := b.Normalize()
	kept := out.Contains[:0]
	for _, m := range out.Contains {
		if m != id {
			kept = append(kept, m)
		}
	}
	out.Contains = kept
	return out
}
