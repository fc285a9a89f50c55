package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardNormalize(t *testing.T) {
	in := CardData{
		CardID:   "c1",
		Title:    "Title",
		Tags:     []string{" a ", "b", "a", ""},
		CardType: "weird",
	}

	got := in.Normalize()
	assert.Equal(t, []string{"a", "b"}, got.Tags)
	assert.Equal(t, CardTypeNormal, got.CardType)
	assert.Equal(t, "Title", got.Title)

	got.Tags[0] = "changed"
	assert.Equal(t, " a ", in.Tags[0], "normalized copy must not alias the source")

	assert.NotNil(t, CardData{}.Normalize().Tags)
	assert.Equal(t, in.Normalize(), in.Normalize())
}

func TestBoxMembership(t *testing.T) {
	box := BoxData{BoxID: "b1", Contains: []ObjectID{"o1", "o2", "o1"}}

	n := box.Normalize()
	assert.Equal(t, []ObjectID{"o1", "o2"}, n.Contains)
	assert.True(t, n.Has("o2"))
	assert.False(t, n.Has("o3"))

	added := box.WithMember("o3")
	assert.Equal(t, []ObjectID{"o1", "o2", "o3"}, added.Contains)
	assert.Equal(t, added, added.WithMember("o3"))

	removed := added.WithoutMember("o1")
	assert.Equal(t, []ObjectID{"o2", "o3"}, removed.Contains)
	assert.Equal(t, []ObjectID{"o1", "o2", "o3"}, added.Contains)
	assert.Equal(t, removed, removed.WithoutMember("o1"))
}

func TestNormalizeContent(t *testing.T) {
	card := CardData{CardID: "c1", Title: "t"}
	box := BoxData{BoxID: "b1", Title: "t"}

	assert.Equal(t, card.Normalize(), NormalizeContent(ObjectTypeCard, card))
	assert.Equal(t, box.Normalize(), NormalizeContent(ObjectTypeBox, box))
	assert.Equal(t, EmptyContent(), NormalizeContent(ObjectTypeNone, card))
	assert.Equal(t, EmptyContent(), NormalizeContent(ObjectTypeCard, box))
	assert.Equal(t, EmptyContent(), NormalizeContent("CIRCLE", nil))
}
