package editor

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/kavyapath/kavyapath-web/internal/common"
)

// Kind names an editor command or an IsActive predicate
type Kind string

const (
	KindBold        Kind = "bold"
	KindItalic      Kind = "italic"
	KindUnderline   Kind = "underline"
	KindHeading     Kind = "heading"
	KindParagraph   Kind = "paragraph"
	KindAlign       Kind = "textAlign"
	KindBulletList  Kind = "bulletList"
	KindOrderedList Kind = "orderedList"
	KindBlockquote  Kind = "blockquote"
	KindUndo        Kind = "undo"
	KindRedo        Kind = "redo"
	KindColor       Kind = "color"
	KindHighlight   Kind = "highlight"
	KindLink        Kind = "link"
	KindImage       Kind = "image"
	KindEmoji       Kind = "emoji"
	KindVideo       Kind = "video"
)

// Args carries the parameters of a command; only the fields relevant to
// the command's Kind are read.
type Args struct {
	Level int    `json:"level,omitempty"`
	Align string `json:"align,omitempty"`
	Color string `json:"color,omitempty"`
	Href  string `json:"href,omitempty"`
	Src   string `json:"src,omitempty"`
	Alt   string `json:"alt,omitempty"`
	Text  string `json:"text,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Command is one editor operation
type Command struct {
	Kind Kind `json:"kind"`
	Args Args `json:"args"`
}

// Document is the integration surface of the rich-text model
type Document interface {
	Apply(cmd Command) error
	IsActive(kind Kind, args Args) bool
	HTML() string
	Text() string
	SetContent(html string) error
	Select(sel Selection)
	IsEmpty() bool
}

const maxHistory = 100

var colorPattern = regexp.MustCompile(`^(#[0-9a-f]{3,8}|[a-z]{3,20})$`)

// Doc is the built-in Document implementation
type Doc struct {
	Blocks []Block   `json:"blocks"`
	Sel    Selection `json:"selection"`
	Undo   [][]Block `json:"undo,omitempty"`
	Redo   [][]Block `json:"redo,omitempty"`
}

var _ Document = (*Doc)(nil)

// New returns an empty document
func New() *Doc {
	return &Doc{Blocks: []Block{{Type: BlockParagraph}}}
}

// Select moves the selection, clamped to the document
func (d *Doc) Select(sel Selection) {
	d.Sel = sel
	d.clamp()
}

// Selection returns the current selection
func (d *Doc) Selection() Selection {
	return d.Sel
}

// SelectAll selects the whole document
func (d *Doc) SelectAll() {
	last := len(d.Blocks) - 1
	d.Sel = Range(0, 0, last, d.Blocks[last].length())
}

// CanUndo reports whether an undo step exists
func (d *Doc) CanUndo() bool { return len(d.Undo) > 0 }

// CanRedo reports whether a redo step exists
func (d *Doc) CanRedo() bool { return len(d.Redo) > 0 }

// IsEmpty reports whether the document has no content at all
func (d *Doc) IsEmpty() bool {
	for _, b := range d.Blocks {
		if !b.empty() {
			return false
		}
	}
	return true
}

// SetContent replaces the document with parsed HTML. The previous content
// becomes an undo step; the cursor moves to the end.
func (d *Doc) SetContent(src string) error {
	blocks, err := Parse(src)
	if err != nil {
		return err
	}
	_ = d.mutate(func() error {
		d.Blocks = blocks
		return nil
	})
	last := len(d.Blocks) - 1
	d.Sel = Cursor(Pos{Block: last, Offset: d.Blocks[last].length()})
	return nil
}

// Clear empties the document and its history
func (d *Doc) Clear() {
	d.Blocks = []Block{{Type: BlockParagraph}}
	d.Sel = Selection{}
	d.Undo = nil
	d.Redo = nil
}

// Apply runs one command
func (d *Doc) Apply(cmd Command) error {
	d.clamp()
	switch cmd.Kind {
	case KindUndo:
		d.undo()
		return nil
	case KindRedo:
		d.redo()
		return nil
	case KindBold, KindItalic, KindUnderline:
		return d.mutate(func() error { return d.toggleMark(cmd.Kind, cmd.Args) })
	case KindHighlight:
		cmd.Args.Color = strings.ToLower(strings.TrimSpace(cmd.Args.Color))
		if cmd.Args.Color != "" && !colorPattern.MatchString(cmd.Args.Color) {
			return fmt.Errorf("%w: color %q", common.ErrInvalidInput, cmd.Args.Color)
		}
		return d.mutate(func() error { return d.toggleMark(cmd.Kind, cmd.Args) })
	case KindColor:
		color := strings.ToLower(strings.TrimSpace(cmd.Args.Color))
		if color != "" && !colorPattern.MatchString(color) {
			return fmt.Errorf("%w: color %q", common.ErrInvalidInput, color)
		}
		return d.mutate(func() error { return d.setMark(cmd.Kind, color) })
	case KindLink:
		href := ""
		if cmd.Args.Href != "" {
			v, err := common.ValidateLink(cmd.Args.Href)
			if err != nil {
				return err
			}
			href = v
		}
		return d.mutate(func() error { return d.setMark(KindLink, href) })
	case KindHeading:
		if cmd.Args.Level < 1 || cmd.Args.Level > 3 {
			return fmt.Errorf("%w: heading level %d", common.ErrInvalidInput, cmd.Args.Level)
		}
		return d.mutate(func() error { return d.toggleBlock(BlockHeading, cmd.Args.Level) })
	case KindParagraph:
		return d.mutate(func() error { return d.setBlocks(BlockParagraph, 0) })
	case KindBulletList:
		return d.mutate(func() error { return d.toggleBlock(BlockBullet, 0) })
	case KindOrderedList:
		return d.mutate(func() error { return d.toggleBlock(BlockOrdered, 0) })
	case KindBlockquote:
		return d.mutate(func() error { return d.toggleBlock(BlockQuote, 0) })
	case KindAlign:
		return d.mutate(func() error { return d.setAlign(cmd.Args.Align) })
	case KindEmoji:
		if cmd.Args.Text == "" {
			return fmt.Errorf("%w: empty emoji", common.ErrInvalidInput)
		}
		return d.mutate(func() error { return d.insertText(cmd.Args.Text) })
	case KindImage:
		if !strings.HasPrefix(cmd.Args.Src, "data:image/") && !strings.HasPrefix(cmd.Args.Src, "https://") {
			return fmt.Errorf("%w: image source", common.ErrInvalidInput)
		}
		return d.mutate(func() error { return d.insertImage(Image{Src: cmd.Args.Src, Alt: cmd.Args.Alt}) })
	case KindVideo:
		src, err := common.EmbedURL(cmd.Args.URL)
		if err != nil {
			return err
		}
		return d.mutate(func() error { return d.insertEmbed(src) })
	}
	return fmt.Errorf("%w: %s", common.ErrUnknownCommand, cmd.Kind)
}

// IsActive reports whether a mark, block type or alignment applies at the selection
func (d *Doc) IsActive(kind Kind, args Args) bool {
	d.clamp()
	switch kind {
	case KindBold, KindItalic, KindUnderline, KindColor, KindHighlight, KindLink:
		return d.markActive(kind, args)
	case KindHeading:
		return d.blocksMatch(func(b Block) bool {
			return b.Type == BlockHeading && (args.Level == 0 || b.Level == args.Level)
		})
	case KindParagraph:
		return d.blocksMatch(func(b Block) bool { return b.Type == BlockParagraph })
	case KindBulletList:
		return d.blocksMatch(func(b Block) bool { return b.Type == BlockBullet })
	case KindOrderedList:
		return d.blocksMatch(func(b Block) bool { return b.Type == BlockOrdered })
	case KindBlockquote:
		return d.blocksMatch(func(b Block) bool { return b.Type == BlockQuote })
	case KindAlign:
		want := args.Align
		if want == "" {
			want = AlignLeft
		}
		return d.blocksMatch(func(b Block) bool { return b.align() == want })
	}
	return false
}

// mutate records an undo step around fn when the blocks actually change
func (d *Doc) mutate(fn func() error) error {
	before := copyBlocks(d.Blocks)
	if err := fn(); err != nil {
		d.Blocks = before
		return err
	}
	if reflect.DeepEqual(before, d.Blocks) {
		return nil
	}
	d.Undo = append(d.Undo, before)
	if len(d.Undo) > maxHistory {
		d.Undo = d.Undo[len(d.Undo)-maxHistory:]
	}
	d.Redo = nil
	return nil
}

func (d *Doc) undo() {
	if len(d.Undo) == 0 {
		return
	}
	d.Redo = append(d.Redo, copyBlocks(d.Blocks))
	d.Blocks = d.Undo[len(d.Undo)-1]
	d.Undo = d.Undo[:len(d.Undo)-1]
	d.clamp()
}

func (d *Doc) redo() {
	if len(d.Redo) == 0 {
		return
	}
	d.Undo = append(d.Undo, copyBlocks(d.Blocks))
	d.Blocks = d.Redo[len(d.Redo)-1]
	d.Redo = d.Redo[:len(d.Redo)-1]
	d.clamp()
}

func (d *Doc) clamp() {
	if len(d.Blocks) == 0 {
		d.Blocks = []Block{{Type: BlockParagraph}}
	}
	fix := func(p Pos) Pos {
		if p.Block < 0 {
			return Pos{}
		}
		if p.Block >= len(d.Blocks) {
			last := len(d.Blocks) - 1
			return Pos{Block: last, Offset: d.Blocks[last].length()}
		}
		n := d.Blocks[p.Block].length()
		if p.Offset < 0 {
			p.Offset = 0
		}
		if p.Offset > n {
			p.Offset = n
		}
		return p
	}
	d.Sel.Anchor = fix(d.Sel.Anchor)
	d.Sel.Head = fix(d.Sel.Head)
}

// eachBlockRange calls fn for every block touched by the selection with the
// selected offsets inside that block.
func (d *Doc) eachBlockRange(fn func(idx, s, e int)) {
	start, end := d.Sel.ordered()
	for i := start.Block; i <= end.Block; i++ {
		s, e := 0, d.Blocks[i].length()
		if i == start.Block {
			s = start.Offset
		}
		if i == end.Block {
			e = end.Offset
		}
		fn(i, s, e)
	}
}

func (d *Doc) blocksMatch(pred func(Block) bool) bool {
	matched := false
	ok := true
	d.eachBlockRange(func(idx, _, _ int) {
		b := d.Blocks[idx]
		if b.Type == BlockEmbed {
			return
		}
		matched = true
		if !pred(b) {
			ok = false
		}
	})
	return matched && ok
}

// splitAt guarantees a run boundary at off and returns the index of the run starting there
func splitAt(b *Block, off int) int {
	pos := 0
	for i := 0; i < len(b.Runs); i++ {
		if pos == off {
			return i
		}
		n := runLen(b.Runs[i])
		if off < pos+n {
			rs := []rune(b.Runs[i].Text)
			left, right := b.Runs[i], b.Runs[i]
			left.Text = string(rs[:off-pos])
			right.Text = string(rs[off-pos:])
			b.Runs[i] = left
			b.Runs = slices.Insert(b.Runs, i+1, right)
			return i + 1
		}
		pos += n
	}
	return len(b.Runs)
}

func hasMark(r Run, kind Kind, args Args) bool {
	m := r.Marks
	switch kind {
	case KindBold:
		return m.Bold
	case KindItalic:
		return m.Italic
	case KindUnderline:
		return m.Underline
	case KindColor:
		return m.Color != "" && (args.Color == "" || strings.EqualFold(m.Color, args.Color))
	case KindHighlight:
		return m.Highlight != "" && (args.Color == "" || strings.EqualFold(m.Highlight, args.Color))
	case KindLink:
		return m.Link != "" && (args.Href == "" || m.Link == args.Href)
	}
	return false
}

func setMarkOn(r *Run, kind Kind, value string) {
	switch kind {
	case KindBold:
		r.Marks.Bold = value != ""
	case KindItalic:
		r.Marks.Italic = value != ""
	case KindUnderline:
		r.Marks.Underline = value != ""
	case KindColor:
		r.Marks.Color = value
	case KindHighlight:
		r.Marks.Highlight = value
	case KindLink:
		r.Marks.Link = value
	}
}

func (d *Doc) markActive(kind Kind, args Args) bool {
	if d.Sel.Collapsed() {
		p := d.Sel.Head
		k := p.Offset - 1
		if k < 0 {
			k = 0
		}
		pos := 0
		for _, r := range d.Blocks[p.Block].Runs {
			n := runLen(r)
			if k >= pos && k < pos+n {
				return hasMark(r, kind, args)
			}
			pos += n
		}
		return false
	}

	seen := false
	all := true
	d.eachBlockRange(func(idx, s, e int) {
		pos := 0
		for _, r := range d.Blocks[idx].Runs {
			n := runLen(r)
			if n > 0 && pos < e && pos+n > s {
				seen = true
				if !hasMark(r, kind, args) {
					all = false
				}
			}
			pos += n
		}
	})
	return seen && all
}

// applyMark sets value on every run inside the selection
func (d *Doc) applyMark(kind Kind, value string) {
	d.eachBlockRange(func(idx, s, e int) {
		if s >= e {
			return
		}
		b := &d.Blocks[idx]
		i := splitAt(b, s)
		j := splitAt(b, e)
		for k := i; k < j; k++ {
			setMarkOn(&b.Runs[k], kind, value)
		}
		b.Runs = normalize(b.Runs)
	})
}

func (d *Doc) toggleMark(kind Kind, args Args) error {
	if d.Sel.Collapsed() {
		return nil
	}
	value := "on"
	if kind == KindHighlight {
		value = args.Color
		if value == "" {
			value = DefaultHighlight
		}
	}
	if d.markActive(kind, args) {
		value = ""
	}
	d.applyMark(kind, value)
	return nil
}

func (d *Doc) setMark(kind Kind, value string) error {
	if d.Sel.Collapsed() {
		return nil
	}
	d.applyMark(kind, value)
	return nil
}

func (d *Doc) setBlocks(t BlockType, level int) error {
	d.eachBlockRange(func(idx, _, _ int) {
		b := &d.Blocks[idx]
		if b.Type == BlockEmbed {
			return
		}
		b.Type = t
		b.Level = level
	})
	return nil
}

func (d *Doc) toggleBlock(t BlockType, level int) error {
	active := d.blocksMatch(func(b Block) bool {
		return b.Type == t && (t != BlockHeading || b.Level == level)
	})
	if active {
		return d.setBlocks(BlockParagraph, 0)
	}
	return d.setBlocks(t, level)
}

func (d *Doc) setAlign(align string) error {
	switch align {
	case AlignLeft, "":
		align = ""
	case AlignCenter, AlignRight, AlignJustify:
	default:
		return fmt.Errorf("%w: alignment %q", common.ErrInvalidInput, align)
	}
	d.eachBlockRange(func(idx, _, _ int) {
		if d.Blocks[idx].Type != BlockEmbed {
			d.Blocks[idx].Align = align
		}
	})
	return nil
}

// deleteSelection removes the selected content and collapses the cursor at its start
func (d *Doc) deleteSelection() Pos {
	start, end := d.Sel.ordered()
	if start == end {
		return start
	}

	first := &d.Blocks[start.Block]
	i := splitAt(first, start.Offset)
	head := slices.Clone(first.Runs[:i])

	last := &d.Blocks[end.Block]
	j := splitAt(last, end.Offset)
	tail := slices.Clone(last.Runs[j:])

	first = &d.Blocks[start.Block]
	first.Runs = normalize(append(head, tail...))
	if end.Block > start.Block {
		d.Blocks = slices.Delete(d.Blocks, start.Block+1, end.Block+1)
	}
	d.Sel = Cursor(start)
	return start
}

func (d *Doc) marksBefore(p Pos) Marks {
	if p.Offset == 0 {
		return Marks{}
	}
	pos := 0
	for _, r := range d.Blocks[p.Block].Runs {
		n := runLen(r)
		if p.Offset-1 >= pos && p.Offset-1 < pos+n {
			return r.Marks
		}
		pos += n
	}
	return Marks{}
}

func (d *Doc) insertRun(r Run) error {
	p := d.deleteSelection()
	b := &d.Blocks[p.Block]
	if b.Type == BlockEmbed {
		return fmt.Errorf("%w: cannot type inside an embed", common.ErrCommandNotAllowed)
	}
	i := splitAt(b, p.Offset)
	b.Runs = normalize(slices.Insert(b.Runs, i, r))
	d.Sel = Cursor(Pos{Block: p.Block, Offset: p.Offset + runLen(r)})
	return nil
}

func (d *Doc) insertText(text string) error {
	start, _ := d.Sel.ordered()
	return d.insertRun(Run{Text: text, Marks: d.marksBefore(start)})
}

func (d *Doc) insertImage(img Image) error {
	return d.insertRun(Run{Image: &img})
}

// insertEmbed places a video block at the cursor. An empty cursor block is
// replaced; otherwise the embed goes after it. Existing content is kept.
func (d *Doc) insertEmbed(src string) error {
	p := d.deleteSelection()
	embed := Block{Type: BlockEmbed, Src: src}

	at := p.Block + 1
	if d.Blocks[p.Block].empty() {
		d.Blocks[p.Block] = embed
		at = p.Block
	} else {
		d.Blocks = slices.Insert(d.Blocks, at, embed)
	}
	if at == len(d.Blocks)-1 {
		d.Blocks = append(d.Blocks, Block{Type: BlockParagraph})
	}
	d.Sel = Cursor(Pos{Block: at + 1})
	return nil
}
