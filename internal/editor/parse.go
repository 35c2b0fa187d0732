package editor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/kavyapath/kavyapath-web/internal/common"
)

var spaceRun = regexp.MustCompile(`[ \t\r\n\f]+`)

// Parse converts editor HTML into normalized blocks. Unknown elements are
// unwrapped; an empty input yields a single empty paragraph.
func Parse(src string) ([]Block, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, err
	}

	var blocks []Block
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, parseBlock(s)...)
	})
	if len(blocks) == 0 {
		blocks = []Block{{Type: BlockParagraph}}
	}
	return blocks, nil
}

func parseBlock(s *goquery.Selection) []Block {
	n := s.Get(0)
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return []Block{{Type: BlockParagraph, Runs: normalize([]Run{{Text: spaceRun.ReplaceAllString(n.Data, " ")}})}}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "p":
		return []Block{textBlock(BlockParagraph, 0, s)}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(n.Data[1:])
		if level > 3 {
			level = 3
		}
		return []Block{textBlock(BlockHeading, level, s)}
	case "ul", "ol":
		t := BlockBullet
		if n.Data == "ol" {
			t = BlockOrdered
		}
		var out []Block
		s.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			b := textBlock(t, 0, li)
			if p := li.ChildrenFiltered("p").First(); p.Length() > 0 {
				b.Align = alignOf(p)
			}
			out = append(out, b)
		})
		return out
	case "blockquote":
		ps := s.ChildrenFiltered("p")
		if ps.Length() == 0 {
			return []Block{textBlock(BlockQuote, 0, s)}
		}
		var out []Block
		ps.Each(func(_ int, p *goquery.Selection) {
			out = append(out, textBlock(BlockQuote, 0, p))
		})
		return out
	case "iframe":
		return embedBlock(s)
	case "div", "section", "article":
		if iframe := s.Find("iframe").First(); iframe.Length() > 0 && strings.TrimSpace(s.Text()) == "" {
			return embedBlock(iframe)
		}
		var out []Block
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			out = append(out, parseBlock(c)...)
		})
		return out
	case "br", "hr", "script", "style":
		return nil
	}

	// inline content at top level becomes its own paragraph
	runs := trimEdges(normalize(inlineNode(n, Marks{}, nil)))
	if len(runs) == 0 {
		return nil
	}
	return []Block{{Type: BlockParagraph, Runs: runs}}
}

func embedBlock(s *goquery.Selection) []Block {
	raw, _ := s.Attr("src")
	src, err := common.EmbedURL(raw)
	if err != nil {
		return nil
	}
	return []Block{{Type: BlockEmbed, Src: src}}
}

func textBlock(t BlockType, level int, s *goquery.Selection) Block {
	var runs []Run
	n := s.Get(0)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		runs = inlineNode(c, Marks{}, runs)
	}
	return Block{
		Type:  t,
		Level: level,
		Align: alignOf(s),
		Runs:  trimEdges(normalize(runs)),
	}
}

func inlineNode(n *html.Node, m Marks, out []Run) []Run {
	switch n.Type {
	case html.TextNode:
		return append(out, Run{Text: spaceRun.ReplaceAllString(n.Data, " "), Marks: m})
	case html.ElementNode:
	default:
		return out
	}

	switch n.Data {
	case "br":
		return append(out, Run{Text: "\n", Marks: m})
	case "img":
		src := attr(n, "src")
		if !imageSource(src) {
			return out
		}
		return append(out, Run{Image: &Image{Src: src, Alt: attr(n, "alt")}})
	case "strong", "b":
		m.Bold = true
	case "em", "i":
		m.Italic = true
	case "u":
		m.Underline = true
	case "a":
		// unsafe targets keep the text and lose the link
		if href, err := common.ValidateLink(attr(n, "href")); err == nil {
			m.Link = href
		}
	case "mark":
		c := strings.ToLower(strings.TrimSpace(attr(n, "data-color")))
		if c == "" {
			c = styleProp(attr(n, "style"), "background-color")
		}
		if !colorPattern.MatchString(c) {
			c = DefaultHighlight
		}
		m.Highlight = c
	case "span":
		if c := styleProp(attr(n, "style"), "color"); colorPattern.MatchString(c) {
			m.Color = c
		}
	case "script", "style", "iframe":
		return out
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = inlineNode(c, m, out)
	}
	return out
}

// imageSource accepts embedded raster images and remote http(s) images
func imageSource(src string) bool {
	lower := strings.ToLower(strings.TrimSpace(src))
	switch {
	case strings.HasPrefix(lower, "data:image/svg"):
		return false
	case strings.HasPrefix(lower, "data:image/"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "http://"):
		return true
	}
	return false
}

// trimEdges drops the source-formatting whitespace at the start and end of a block
func trimEdges(runs []Run) []Run {
	if len(runs) == 0 {
		return nil
	}
	if runs[0].Image == nil {
		runs[0].Text = strings.TrimLeft(runs[0].Text, " ")
	}
	last := len(runs) - 1
	if runs[last].Image == nil {
		runs[last].Text = strings.TrimRight(runs[last].Text, " ")
	}
	return normalize(runs)
}

func alignOf(s *goquery.Selection) string {
	style, _ := s.Attr("style")
	switch a := styleProp(style, "text-align"); a {
	case AlignCenter, AlignRight, AlignJustify:
		return a
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// styleProp extracts one property from an inline style attribute
func styleProp(style, prop string) string {
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(k), prop) {
			return strings.ToLower(strings.TrimSpace(v))
		}
	}
	return ""
}
