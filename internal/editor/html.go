package editor

import (
	"fmt"
	"html"
	"strings"
)

// HTML serializes the document to the flat markup stored by the API.
// An empty document serializes to "".
func (d *Doc) HTML() string {
	if d.IsEmpty() {
		return ""
	}
	return RenderHTML(d.Blocks)
}

// Text returns the plain text of the document, blocks separated by a blank line
func (d *Doc) Text() string {
	parts := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.Type == BlockEmbed {
			continue
		}
		var sb strings.Builder
		for _, r := range b.Runs {
			if r.Image == nil {
				sb.WriteString(r.Text)
			}
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "\n\n")
}

// Excerpt returns the first n characters of the plain text
func (d *Doc) Excerpt(n int) string {
	rs := []rune(d.Text())
	if len(rs) > n {
		rs = rs[:n]
	}
	return string(rs)
}

// Sanitize re-renders stored markup through the document model, keeping
// only the elements the editor itself produces.
func Sanitize(src string) string {
	blocks, err := Parse(src)
	if err != nil {
		return ""
	}
	doc := &Doc{Blocks: blocks}
	return doc.HTML()
}

// RenderHTML serializes blocks; consecutive list items and quotes share one container
func RenderHTML(blocks []Block) string {
	var sb strings.Builder
	for i := 0; i < len(blocks); {
		b := blocks[i]
		switch b.Type {
		case BlockBullet, BlockOrdered:
			tag := "ul"
			if b.Type == BlockOrdered {
				tag = "ol"
			}
			sb.WriteString("<" + tag + ">")
			for ; i < len(blocks) && blocks[i].Type == b.Type; i++ {
				sb.WriteString("<li>")
				writeTextBlock(&sb, "p", blocks[i])
				sb.WriteString("</li>")
			}
			sb.WriteString("</" + tag + ">")
			continue
		case BlockQuote:
			sb.WriteString("<blockquote>")
			for ; i < len(blocks) && blocks[i].Type == BlockQuote; i++ {
				writeTextBlock(&sb, "p", blocks[i])
			}
			sb.WriteString("</blockquote>")
			continue
		case BlockHeading:
			writeTextBlock(&sb, fmt.Sprintf("h%d", b.Level), b)
		case BlockEmbed:
			fmt.Fprintf(&sb, `<div class="video-embed"><iframe src="%s" frameborder="0" allowfullscreen="true"></iframe></div>`,
				html.EscapeString(b.Src))
		default:
			writeTextBlock(&sb, "p", b)
		}
		i++
	}
	return sb.String()
}

func writeTextBlock(sb *strings.Builder, tag string, b Block) {
	sb.WriteString("<" + tag)
	if b.Align != "" && b.Align != AlignLeft {
		fmt.Fprintf(sb, ` style="text-align: %s"`, b.Align)
	}
	sb.WriteString(">")
	for _, r := range b.Runs {
		writeRun(sb, r)
	}
	sb.WriteString("</" + tag + ">")
}

func writeRun(sb *strings.Builder, r Run) {
	if r.Image != nil {
		fmt.Fprintf(sb, `<img src="%s"`, html.EscapeString(r.Image.Src))
		if r.Image.Alt != "" {
			fmt.Fprintf(sb, ` alt="%s"`, html.EscapeString(r.Image.Alt))
		}
		sb.WriteString(">")
		return
	}

	m := r.Marks
	var open, closing []string
	wrap := func(o, c string) {
		open = append(open, o)
		closing = append([]string{c}, closing...)
	}
	if m.Link != "" {
		wrap(fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer nofollow">`, html.EscapeString(m.Link)), "</a>")
	}
	if m.Bold {
		wrap("<strong>", "</strong>")
	}
	if m.Italic {
		wrap("<em>", "</em>")
	}
	if m.Underline {
		wrap("<u>", "</u>")
	}
	if m.Highlight != "" {
		c := html.EscapeString(m.Highlight)
		wrap(fmt.Sprintf(`<mark data-color="%s" style="background-color: %s; color: inherit">`, c, c), "</mark>")
	}
	if m.Color != "" {
		wrap(fmt.Sprintf(`<span style="color: %s">`, html.EscapeString(m.Color)), "</span>")
	}

	for _, o := range open {
		sb.WriteString(o)
	}
	lines := strings.Split(r.Text, "\n")
	for i, line := range lines {
		if i > 0 {
			sb.WriteString("<br>")
		}
		sb.WriteString(html.EscapeString(line))
	}
	for _, c := range closing {
		sb.WriteString(c)
	}
}
