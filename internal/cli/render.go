package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

// renderedObject is one line of rendered map output.
type renderedObject struct {
	ObjectID types.ObjectID   `json:"object_id"`
	Type     types.ObjectType `json:"object_type"`
	X        float64          `json:"x"`
	Y        float64          `json:"y"`
	Selected bool             `json:"selected,omitempty"`
	Ref      string           `json:"data_ref,omitempty"`
	Title    string           `json:"title,omitempty"`
	CardType types.CardType   `json:"card_type,omitempty"`
	Tags     []string         `json:"tags,omitempty"`
	Members  []types.ObjectID `json:"members,omitempty"`
	Openable bool             `json:"openable,omitempty"`
	Missing  bool             `json:"missing,omitempty"`
}

// collector is a RenderDelegate that records what it is asked to draw.
type collector struct {
	objects []renderedObject
}

func (c *collector) RenderEmpty(p types.EmptyPayload, _ types.Handles) {
	c.objects = append(c.objects, renderedObject{
		ObjectID: p.Placed.ID,
		Type:     p.Placed.ObjectType,
		X:        p.Placed.X,
		Y:        p.Placed.Y,
		Selected: p.Selected,
		Ref:      p.Placed.DataRef,
		Missing:  p.Placed.ObjectType != types.ObjectTypeNone,
	})
}

func (c *collector) RenderCard(p types.CardPayload, _ types.Handles) {
	c.objects = append(c.objects, renderedObject{
		ObjectID: p.Placed.ID,
		Type:     types.ObjectTypeCard,
		X:        p.Placed.X,
		Y:        p.Placed.Y,
		Selected: p.Selected,
		Ref:      string(p.Card.CardID),
		Title:    p.Card.Title,
		CardType: p.Card.CardType,
		Tags:     p.Card.Tags,
	})
}

func (c *collector) RenderBox(p types.BoxPayload, _ types.Handles) {
	c.objects = append(c.objects, renderedObject{
		ObjectID: p.Placed.ID,
		Type:     types.ObjectTypeBox,
		X:        p.Placed.X,
		Y:        p.Placed.Y,
		Selected: p.Selected,
		Ref:      string(p.Box.BoxID),
		Title:    p.Box.Title,
		Tags:     p.Box.Tags,
		Members:  p.Box.Contains,
		Openable: p.Openable,
	})
}

// writeText prints a scope header and one line per object. Selected
// objects are marked with an asterisk.
func writeText(w io.Writer, scope types.Scope, objects []renderedObject) {
	fmt.Fprintf(w, "scope %s, %d objects\n", scope, len(objects))
	for _, o := range objects {
		mark := " "
		if o.Selected {
			mark = "*"
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s %-5s %s  (%g, %g)", mark, o.Type, o.ObjectID, o.X, o.Y)
		switch {
		case o.Missing:
			fmt.Fprintf(&sb, "  <missing %s>", o.Ref)
		case o.Type == types.ObjectTypeCard:
			fmt.Fprintf(&sb, "  %q", o.Title)
			if o.CardType != "" && o.CardType != types.CardTypeNormal {
				fmt.Fprintf(&sb, "  [%s]", o.CardType)
			}
		case o.Type == types.ObjectTypeBox:
			fmt.Fprintf(&sb, "  %q  %d items", o.Title, len(o.Members))
			if o.Openable {
				sb.WriteString("  (open-box " + o.Ref + ")")
			}
		}
		for _, tag := range o.Tags {
			sb.WriteString(" #" + tag)
		}
		fmt.Fprintln(w, sb.String())
	}
}
