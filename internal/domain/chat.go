package domain

import "time"

// ChatRole is the author of a transcript message
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of an assistant transcript
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// AnalyzeRequest is the body of POST /api/gemini
type AnalyzeRequest struct {
	PoemTitle   string `json:"poemTitle"`
	PoemContent string `json:"poemContent"`
	UserQuery   string `json:"userQuery"`
}

// AnalyzeResponse is the success body of POST /api/gemini
type AnalyzeResponse struct {
	Response string `json:"response"`
}

// AskRequest is the body of a panel question
type AskRequest struct {
	Question string `json:"question" form:"question" binding:"required"`
}
