// Package editor is the rich-text document model behind the poem authoring page.
//
// A document is a flat list of blocks (paragraphs, headings, list items,
// quotes, embeds) holding inline runs of marked text or images. Toolbar
// controls issue Commands against a Document and read back IsActive to
// render their pressed state; HTML is the only representation that leaves
// the server.
package editor

import "unicode/utf8"

// BlockType is the kind of a top-level block
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockHeading   BlockType = "heading"
	BlockBullet    BlockType = "bulletList"
	BlockOrdered   BlockType = "orderedList"
	BlockQuote     BlockType = "blockquote"
	BlockEmbed     BlockType = "embed"
)

// Text alignments
const (
	AlignLeft    = "left"
	AlignCenter  = "center"
	AlignRight   = "right"
	AlignJustify = "justify"
)

// DefaultHighlight is used for <mark> elements without an explicit color
const DefaultHighlight = "#fef08a"

// Marks are the inline formatting flags of a run
type Marks struct {
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Color     string `json:"color,omitempty"`
	Highlight string `json:"highlight,omitempty"`
	Link      string `json:"link,omitempty"`
}

// Image is an inline image, usually a base64 data URL
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// Run is a span of text sharing the same marks, or a single inline image.
// An image counts as one character for selection offsets.
type Run struct {
	Text  string `json:"text,omitempty"`
	Marks Marks  `json:"marks"`
	Image *Image `json:"image,omitempty"`
}

// Block is a top-level node of the document
type Block struct {
	Type  BlockType `json:"type"`
	Level int       `json:"level,omitempty"` // heading level 1-3
	Align string    `json:"align,omitempty"` // empty means left
	Runs  []Run     `json:"runs,omitempty"`
	Src   string    `json:"src,omitempty"` // embed URL
}

// Pos addresses a character boundary: block index and rune offset inside it
type Pos struct {
	Block  int `json:"block"`
	Offset int `json:"offset"`
}

// Selection is the current editor selection; Anchor may come after Head
type Selection struct {
	Anchor Pos `json:"anchor"`
	Head   Pos `json:"head"`
}

// Cursor returns a collapsed selection at p
func Cursor(p Pos) Selection {
	return Selection{Anchor: p, Head: p}
}

// Range returns a selection from (fromBlock, fromOffset) to (toBlock, toOffset)
func Range(fromBlock, fromOffset, toBlock, toOffset int) Selection {
	return Selection{
		Anchor: Pos{Block: fromBlock, Offset: fromOffset},
		Head:   Pos{Block: toBlock, Offset: toOffset},
	}
}

// Collapsed reports whether the selection is a plain cursor
func (s Selection) Collapsed() bool {
	return s.Anchor == s.Head
}

func (s Selection) ordered() (Pos, Pos) {
	a, h := s.Anchor, s.Head
	if a.Block > h.Block || (a.Block == h.Block && a.Offset > h.Offset) {
		return h, a
	}
	return a, h
}

func runLen(r Run) int {
	if r.Image != nil {
		return 1
	}
	return utf8.RuneCountInString(r.Text)
}

func (b Block) length() int {
	n := 0
	for _, r := range b.Runs {
		n += runLen(r)
	}
	return n
}

func (b Block) empty() bool {
	return b.Type != BlockEmbed && b.length() == 0
}

func (b Block) align() string {
	if b.Align == "" {
		return AlignLeft
	}
	return b.Align
}

func copyBlocks(src []Block) []Block {
	out := make([]Block, len(src))
	for i, b := range src {
		nb := b
		if b.Runs != nil {
			nb.Runs = make([]Run, len(b.Runs))
			copy(nb.Runs, b.Runs)
		}
		out[i] = nb
	}
	return out
}

// normalize merges adjacent text runs with identical marks and drops empty runs
func normalize(runs []Run) []Run {
	out := runs[:0]
	for _, r := range runs {
		if r.Image == nil && r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && r.Image == nil && out[n-1].Image == nil && out[n-1].Marks == r.Marks {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
