package service

import "github.com/kavyapath/kavyapath-web/internal/domain"

// Notice kinds
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

func success(msg string) domain.Notice {
	return domain.Notice{Kind: NoticeSuccess, Message: msg}
}

func failure(msg string) domain.Notice {
	return domain.Notice{Kind: NoticeError, Message: msg}
}

// ValidationError is a user input problem found before any network call
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
