package domain

import (
	"strings"
	"time"

	"github.com/kavyapath/kavyapath-web/internal/editor"
)

// ExcerptLength is the number of characters of plain text sent as excerpt
const ExcerptLength = 100

// Upload is an optional file attached to a draft
type Upload struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// StoryDraft is the server-side state of the authoring page
type StoryDraft struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Category  string      `json:"category"`
	Tags      []string    `json:"tags"`
	ChapterID string      `json:"chapter_id"`
	Image     *Upload     `json:"image,omitempty"`
	Doc       *editor.Doc `json:"doc"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewStoryDraft returns an empty draft with a blank editor
func NewStoryDraft(id string) *StoryDraft {
	return &StoryDraft{ID: id, Doc: editor.New(), UpdatedAt: time.Now()}
}

// Content is the serialized editor document
func (d *StoryDraft) Content() string {
	if d.Doc == nil {
		return ""
	}
	return d.Doc.HTML()
}

// Excerpt is the first ExcerptLength characters of plain text
func (d *StoryDraft) Excerpt() string {
	if d.Doc == nil {
		return ""
	}
	return d.Doc.Excerpt(ExcerptLength)
}

// CleanTags drops blank entries and surrounding whitespace
func (d *StoryDraft) CleanTags() []string {
	out := make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Reset clears every field and the editor, keeping the draft ID
func (d *StoryDraft) Reset() {
	id := d.ID
	*d = StoryDraft{ID: id, Doc: editor.New(), UpdatedAt: time.Now()}
}

// SplitTags parses the comma separated tag input of the form
func SplitTags(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Notice is a flash message shown after an action
type Notice struct {
	Kind    string `json:"kind"` // success, error
	Message string `json:"message"`
}
