package apiclient

import (
	"encoding/json"
	"fmt"
)

// Result is the decoded API envelope: either Ok with data or Err with the
// server's message. Transport failures are reported separately as errors.
type Result[T any] struct {
	ok      bool
	data    T
	message string
}

// Ok wraps a successful payload
func Ok[T any](data T, message string) Result[T] {
	return Result[T]{ok: true, data: data, message: message}
}

// Err wraps a business failure reported by the server
func Err[T any](message string) Result[T] {
	return Result[T]{message: message}
}

// IsOk reports whether the server accepted the request
func (r Result[T]) IsOk() bool { return r.ok }

// Data returns the payload; the zero value for Err results
func (r Result[T]) Data() T { return r.data }

// Message returns the server message, which may be empty
func (r Result[T]) Message() string { return r.message }

// Unwrap returns the payload and whether the result is Ok
func (r Result[T]) Unwrap() (T, bool) { return r.data, r.ok }

// envelope is the wire shape {success, data, message, nextSlug, previousSlug}
type envelope struct {
	Success      *bool           `json:"success"`
	Data         json.RawMessage `json:"data"`
	Message      string          `json:"message"`
	NextSlug     string          `json:"nextSlug"`
	PreviousSlug string          `json:"previousSlug"`
}

func decodeEnvelope(body []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return env, err
	}
	if env.Success == nil {
		return env, fmt.Errorf("response has no success field")
	}
	return env, nil
}

func toResult[T any](env envelope) (Result[T], error) {
	if !*env.Success {
		return Err[T](env.Message), nil
	}
	var data T
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return Result[T]{}, fmt.Errorf("decode data: %w", err)
		}
	}
	return Ok(data, env.Message), nil
}
