package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		name  string
		typ   types.ObjectType
		field string
		value string
		want  Action
	}{
		{"card title", types.ObjectTypeCard, "title", "Hello", SetCardTitle{Title: "Hello"}},
		{"card summary", types.ObjectTypeCard, "Summary", "s", SetCardSummary{Summary: "s"}},
		{"card description", types.ObjectTypeCard, "description", "d", SetCardDescription{Description: "d"}},
		{"card tags", types.ObjectTypeCard, "tags", "a, b", SetCardTags{Tags: []string{"a", " b"}}},
		{"card empty tags", types.ObjectTypeCard, "tags", " ", SetCardTags{}},
		{"said by underscore", types.ObjectTypeCard, "said_by", "Ann", SetCardSaidBy{SaidBy: "Ann"}},
		{"said by dash", types.ObjectTypeCard, "said-by", "Ann", SetCardSaidBy{SaidBy: "Ann"}},
		{"stakeholder", types.ObjectTypeCard, "stakeholder", "ops", SetCardStakeholder{Stakeholder: "ops"}},
		{"url", types.ObjectTypeCard, "URL", "https://x", SetCardURL{URL: "https://x"}},
		{"card type", types.ObjectTypeCard, "type", "question", SetCardType{CardType: types.CardTypeQuestion}},
		{"box title", types.ObjectTypeBox, "title", "Bin", SetBoxTitle{Title: "Bin"}},
		{"box summary", types.ObjectTypeBox, "summary", "s", SetBoxSummary{Summary: "s"}},
		{"box tags", types.ObjectTypeBox, "tags", "x,y", SetBoxTags{Tags: []string{"x", "y"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAction(tt.typ, tt.field, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.typ, got.Target())
		})
	}
}

func TestParseActionErrors(t *testing.T) {
	_, err := ParseAction(types.ObjectTypeBox, "url", "x")
	assert.ErrorIs(t, err, types.ErrInvalidData)

	_, err = ParseAction(types.ObjectTypeCard, "type", "RIDDLE")
	assert.ErrorIs(t, err, types.ErrInvalidData)

	_, err = ParseAction(types.ObjectTypeNone, "title", "x")
	assert.ErrorIs(t, err, types.ErrInvalidObjectType)
}
