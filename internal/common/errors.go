package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")

	// Session errors
	ErrUnauthorized = errors.New("unauthorized")

	// Remote API errors
	ErrUpstream = errors.New("upstream request failed")

	// Authoring errors
	ErrDraftNotFound     = errors.New("draft not found")
	ErrSubmitInProgress  = errors.New("submission already in progress")
	ErrImageTooLarge     = errors.New("image too large")
	ErrUnsupportedImage  = errors.New("unsupported image type")
	ErrInvalidLink       = errors.New("invalid link")
	ErrUnknownCommand    = errors.New("unknown editor command")
	ErrCommandNotAllowed = errors.New("command not allowed here")

	// Assistant errors
	ErrAssistantUnavailable = errors.New("assistant unavailable")
	ErrAssistantBusy        = errors.New("assistant is still answering")
	ErrPanelClosed          = errors.New("assistant panel closed")
	ErrReplyDiscarded       = errors.New("assistant reply discarded")
)

// Notice texts shown to users
const (
	MsgSomethingWrong = "Something went wrong. Please try again later."
)
