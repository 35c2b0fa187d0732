package assistant

import (
	"fmt"
	"strings"
)

// Prompt is the preamble describing the poem plus the reader's question
type Prompt struct {
	System string
	User   string
}

// Text is the single prompt string sent to the provider
func (p Prompt) Text() string {
	return p.System + "\n\nUser question: " + p.User
}

// BuildPrompt describes the poem and how to answer questions about it
func BuildPrompt(title, content, query string) Prompt {
	var sb strings.Builder
	sb.WriteString("You are a knowledgeable poetry analysis assistant for Kavyapath, a platform dedicated to Hindi poetry.\n")
	sb.WriteString("You're analyzing the following poem:\n\n")
	fmt.Fprintf(&sb, "Title: \"%s\"\n\n", title)
	fmt.Fprintf(&sb, "Content:\n\"%s\"\n\n", content)
	sb.WriteString("Please provide a thoughtful, insightful response to the user's query about this poem.\n")
	sb.WriteString("Be respectful of the poet's work and provide culturally relevant context when appropriate.\n")
	sb.WriteString("If the poem is in Hindi, provide analysis that respects and understands Hindi poetic traditions.\n")
	sb.WriteString("Keep your responses concise but informative.")
	return Prompt{System: sb.String(), User: query}
}
