package draft

import "github.com/mesh-intelligence/sensemap/pkg/types"

// Action is a single local edit. The set of actions is closed: every
// action is either a CardAction or a BoxAction defined in this package.
type Action interface {
	// Target is the object type the action edits.
	Target() types.ObjectType
	isAction()
}

// CardAction edits card content.
type CardAction interface {
	Action
	applyCard(c *types.CardData)
}

// BoxAction edits box content.
type BoxAction interface {
	Action
	applyBox(b *types.BoxData)
}

type cardEdit struct{}

func (cardEdit) Target() types.ObjectType { return types.ObjectTypeCard }
func (cardEdit) isAction()                {}

type boxEdit struct{}

func (boxEdit) Target() types.ObjectType { return types.ObjectTypeBox }
func (boxEdit) isAction()                {}

// SetCardTitle replaces the card title.
type SetCardTitle struct {
	cardEdit
	Title string
}

func (a SetCardTitle) applyCard(c *types.CardData) { c.Title = a.Title }

// SetCardSummary replaces the card summary.
type SetCardSummary struct {
	cardEdit
	Summary string
}

func (a SetCardSummary) applyCard(c *types.CardData) { c.Summary = a.Summary }

// SetCardDescription replaces the card description.
type SetCardDescription struct {
	cardEdit
	Description string
}

func (a SetCardDescription) applyCard(c *types.CardData) { c.Description = a.Description }

// SetCardTags replaces the card tags.
type SetCardTags struct {
	cardEdit
	Tags []string
}

func (a SetCardTags) applyCard(c *types.CardData) {
	c.Tags = append([]string(nil), a.Tags...)
}

// SetCardSaidBy replaces who said the card's content.
type SetCardSaidBy struct {
	cardEdit
	SaidBy string
}

func (a SetCardSaidBy) applyCard(c *types.CardData) { c.SaidBy = a.SaidBy }

// SetCardStakeholder replaces the card stakeholder.
type SetCardStakeholder struct {
	cardEdit
	Stakeholder string
}

func (a SetCardStakeholder) applyCard(c *types.CardData) { c.Stakeholder = a.Stakeholder }

// SetCardURL replaces the card source URL.
type SetCardURL struct {
	cardEdit
	URL string
}

func (a SetCardURL) applyCard(c *types.CardData) { c.URL = a.URL }

// SetCardType changes the card type. Unknown types normalize to NORMAL.
type SetCardType struct {
	cardEdit
	CardType types.CardType
}

func (a SetCardType) applyCard(c *types.CardData) { c.CardType = a.CardType }

// SetBoxTitle replaces the box title.
type SetBoxTitle struct {
	boxEdit
	Title string
}

func (a SetBoxTitle) applyBox(b *types.BoxData) { b.Title = a.Title }

// SetBoxSummary replaces the box summary.
type SetBoxSummary struct {
	boxEdit
	Summary string
}

func (a SetBoxSummary) applyBox(b *types.BoxData) { b.Summary = a.Summary }

// SetBoxTags replaces the box tags.
type SetBoxTags struct {
	boxEdit
	Tags []string
}

func (a SetBoxTags) applyBox(b *types.BoxData) {
	b.Tags = append([]string(nil), a.Tags...)
}

// ReduceCard applies actions to a normalized copy of c. With no actions it
// is the card reset transform.
func ReduceCard(c types.CardData, actions ...CardAction) types.CardData {
	out := c.Normalize()
	for _, a := range actions {
		a.applyCard(&out)
	}
	return out.Normalize()
}

// ReduceBox applies actions to a normalized copy of b. With no actions it
// is the box reset transform.
func ReduceBox(b types.BoxData, actions ...BoxAction) types.BoxData {
	out := b.Normalize()
	for _, a := range actions {
		a.applyBox(&out)
	}
	return out.Normalize()
}
