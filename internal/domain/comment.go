package domain

// Comment is a reader comment on a story. IsApproved is nil when the API
// omits the field, which happens on the public listing.
type Comment struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Text       string `json:"comment"`
	IsApproved *bool  `json:"isApproved,omitempty"`
}

// Pending reports whether the comment still awaits moderation
func (c Comment) Pending() bool {
	return c.IsApproved != nil && !*c.IsApproved
}

// PostCommentRequest is the body of POST /comment
type PostCommentRequest struct {
	Comment string `json:"comment"`
	StoryID string `json:"storyId"`
}
