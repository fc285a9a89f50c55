package types

import "time"

// CardType classifies a card.
type CardType string

// Card types.
const (
	CardTypeNormal   CardType = "NORMAL"
	CardTypeQuestion CardType = "QUESTION"
	CardTypeAnswer   CardType = "ANSWER"
	CardTypeNote     CardType = "NOTE"
)

// validCardTypes is the set of recognized card types.
var validCardTypes = map[CardType]bool{
	CardTypeNormal:   true,
	CardTypeQuestion: true,
	CardTypeAnswer:   true,
	CardTypeNote:     true,
}

// ValidCardType reports whether t is a recognized card type.
func ValidCardType(t CardType) bool {
	return validCardTypes[t]
}

// CardData is the content of a card. Cards are owned by the data layer;
// placed objects only reference them by CardID.
type CardData struct {
	CardID      CardID    `json:"card_id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	SaidBy      string    `json:"said_by"`
	Stakeholder string    `json:"stakeholder"`
	URL         string    `json:"url"`
	CardType    CardType  `json:"card_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ContentType implements Content.
func (c CardData) ContentType() ObjectType { return ObjectTypeCard }

// EntityID implements Content.
func (c CardData) EntityID() string { return string(c.CardID) }

func (CardData) isContent() {}

// Normalize returns a copy of the card safe to edit: tags are cleaned and
// never nil, and an unknown card type becomes NORMAL. The result shares no
// memory with the receiver.
func (c CardData) Normalize() CardData {
	out := c
	out.Tags = normalizeTags(c.Tags)
	if !ValidCardType(out.CardType) {
		out.CardType = CardTypeNormal
	}
	return out
}
