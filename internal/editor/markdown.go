package editor

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// SetMarkdown replaces the document with rendered markdown, for poems
// drafted outside the editor.
func (d *Doc) SetMarkdown(md string) error {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return err
	}
	return d.SetContent(buf.String())
}

// FromMarkdown builds a new document from markdown
func FromMarkdown(md string) (*Doc, error) {
	d := New()
	if err := d.SetMarkdown(md); err != nil {
		return nil, err
	}
	return d, nil
}
