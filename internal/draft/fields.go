package draft

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// ParseAction builds the action that sets field to value on content of the
// given object type. Field names are case-insensitive and accept either
// dashes or underscores. Tags are comma-separated.
func ParseAction(t types.ObjectType, field, value string) (Action, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(field)), "_", "-")

	switch t {
	case types.ObjectTypeCard:
		switch name {
		case "title":
			return SetCardTitle{Title: value}, nil
		case "summary":
			return SetCardSummary{Summary: value}, nil
		case "description":
			return SetCardDescription{Description: value}, nil
		case "tags":
			return SetCardTags{Tags: splitTags(value)}, nil
		case "said-by":
			return SetCardSaidBy{SaidBy: value}, nil
		case "stakeholder":
			return SetCardStakeholder{Stakeholder: value}, nil
		case "url":
			return SetCardURL{URL: value}, nil
		case "type", "card-type":
			ct := types.CardType(strings.ToUpper(strings.TrimSpace(value)))
			if !types.ValidCardType(ct) {
				return nil, fmt.Errorf("%w: card type %q", types.ErrInvalidData, value)
			}
			return SetCardType{CardType: ct}, nil
		}
	case types.ObjectTypeBox:
		switch name {
		case "title":
			return SetBoxTitle{Title: value}, nil
		case "summary":
			return SetBoxSummary{Summary: value}, nil
		case "tags":
			return SetBoxTags{Tags: splitTags(value)}, nil
		}
	default:
		return nil, fmt.Errorf("%w: %q has no editable fields", types.ErrInvalidObjectType, t)
	}
	return nil, fmt.Errorf("%w: unknown %s field %q", types.ErrInvalidData, t, field)
}

func splitTags(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.Split(value, ",")
}
