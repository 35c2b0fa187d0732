package editor

import (
	"fmt"

	"github.com/kavyapath/kavyapath-web/internal/common"
)

// Control is one toolbar trigger bound to exactly one command
type Control struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Kind       Kind   `json:"kind"`
	Args       Args   `json:"args"`
	NeedsValue bool   `json:"needs_value"` // color, link, emoji, video, image
	Group      string `json:"group"`
}

// ControlState is how a control renders for the current selection
type ControlState struct {
	Control
	Pressed bool `json:"pressed"`
	Enabled bool `json:"enabled"`
}

// Toolbar is an ordered set of controls
type Toolbar struct {
	Controls []Control
}

type historian interface {
	CanUndo() bool
	CanRedo() bool
}

// DefaultToolbar is the authoring page toolbar
func DefaultToolbar() Toolbar {
	return Toolbar{Controls: []Control{
		{ID: "bold", Label: "Bold", Kind: KindBold, Group: "marks"},
		{ID: "italic", Label: "Italic", Kind: KindItalic, Group: "marks"},
		{ID: "underline", Label: "Underline", Kind: KindUnderline, Group: "marks"},
		{ID: "h1", Label: "Heading 1", Kind: KindHeading, Args: Args{Level: 1}, Group: "headings"},
		{ID: "h2", Label: "Heading 2", Kind: KindHeading, Args: Args{Level: 2}, Group: "headings"},
		{ID: "h3", Label: "Heading 3", Kind: KindHeading, Args: Args{Level: 3}, Group: "headings"},
		{ID: "align-left", Label: "Align left", Kind: KindAlign, Args: Args{Align: AlignLeft}, Group: "align"},
		{ID: "align-center", Label: "Align center", Kind: KindAlign, Args: Args{Align: AlignCenter}, Group: "align"},
		{ID: "align-right", Label: "Align right", Kind: KindAlign, Args: Args{Align: AlignRight}, Group: "align"},
		{ID: "bullet-list", Label: "Bullet list", Kind: KindBulletList, Group: "blocks"},
		{ID: "ordered-list", Label: "Numbered list", Kind: KindOrderedList, Group: "blocks"},
		{ID: "blockquote", Label: "Quote", Kind: KindBlockquote, Group: "blocks"},
		{ID: "undo", Label: "Undo", Kind: KindUndo, Group: "history"},
		{ID: "redo", Label: "Redo", Kind: KindRedo, Group: "history"},
		{ID: "color", Label: "Text color", Kind: KindColor, NeedsValue: true, Group: "insert"},
		{ID: "highlight", Label: "Highlight", Kind: KindHighlight, NeedsValue: true, Group: "insert"},
		{ID: "link", Label: "Link", Kind: KindLink, NeedsValue: true, Group: "insert"},
		{ID: "image", Label: "Image", Kind: KindImage, NeedsValue: true, Group: "insert"},
		{ID: "emoji", Label: "Emoji", Kind: KindEmoji, NeedsValue: true, Group: "insert"},
		{ID: "video", Label: "Video", Kind: KindVideo, NeedsValue: true, Group: "insert"},
	}}
}

// Find returns the control with the given id
func (t Toolbar) Find(id string) (Control, bool) {
	for _, c := range t.Controls {
		if c.ID == id {
			return c, true
		}
	}
	return Control{}, false
}

// Trigger issues the control's command. value feeds controls that need one.
func (t Toolbar) Trigger(d Document, id, value string) error {
	c, ok := t.Find(id)
	if !ok {
		return fmt.Errorf("%w: control %q", common.ErrUnknownCommand, id)
	}
	return d.Apply(c.Command(value))
}

// Command builds the command for this control
func (c Control) Command(value string) Command {
	args := c.Args
	switch c.Kind {
	case KindColor, KindHighlight:
		args.Color = value
	case KindLink:
		args.Href = value
	case KindImage:
		args.Src = value
	case KindEmoji:
		args.Text = value
	case KindVideo:
		args.URL = value
	}
	return Command{Kind: c.Kind, Args: args}
}

// State reports pressed/enabled for every control
func (t Toolbar) State(d Document) []ControlState {
	h, hasHistory := d.(historian)
	out := make([]ControlState, 0, len(t.Controls))
	for _, c := range t.Controls {
		st := ControlState{Control: c, Enabled: true}
		switch c.Kind {
		case KindUndo:
			st.Enabled = hasHistory && h.CanUndo()
		case KindRedo:
			st.Enabled = hasHistory && h.CanRedo()
		case KindImage, KindEmoji, KindVideo:
		default:
			st.Pressed = d.IsActive(c.Kind, c.Args)
		}
		out = append(out, st)
	}
	return out
}
