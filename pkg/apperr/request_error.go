package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// RequestError is the error every service call returns on failure. Message
// is the best message available: the server's own, else the transport's.
type RequestError struct {
	Op         string
	Message    string
	StatusCode int
	Err        error

	// Debug decorates Error() with the status code, op and notes.
	Debug bool

	notes []string
}

func New(op, message string, status int, err error) *RequestError {
	return &RequestError{Op: op, Message: message, StatusCode: status, Err: err}
}

func (e *RequestError) Error() string {
	if !e.Debug {
		return e.Message
	}

	status := "No Status Code"
	if e.StatusCode != 0 {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	parts := []string{status, e.Op, e.Message}
	parts = append(parts, e.notes...)
	return strings.Join(parts, " ")
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func (e *RequestError) Status() int {
	return e.StatusCode
}

func (e *RequestError) Notes() []string {
	return append([]string(nil), e.notes...)
}

// Annotate attaches a note to err when it is a RequestError and returns it.
// Other errors are wrapped with the note as prefix.
func Annotate(err error, note string) error {
	if err == nil {
		return nil
	}
	var re *RequestError
	if errors.As(err, &re) {
		re.notes = append(re.notes, note)
		return err
	}
	return fmt.Errorf("%s: %w", note, err)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
