package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Response is a normalized HTTP response. Data holds the body when it is
// valid JSON; otherwise it is nil and Raw keeps the text.
type Response struct {
	Status int
	Header http.Header
	Data   json.RawMessage
	Raw    []byte
}

var ErrNotJSON = errors.New("response body is not json")

func (r *Response) Decode(v any) error {
	if r.Data == nil {
		return ErrNotJSON
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode response (status %d): %w", r.Status, err)
	}
	return nil
}

func (r *Response) Text() string {
	return string(r.Raw)
}

func newResponse(resp *http.Response, body []byte) *Response {
	r := &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Raw:    body,
	}
	if len(body) > 0 && json.Valid(body) {
		r.Data = json.RawMessage(body)
	}
	return r
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Status  int
	Message string
	Body    *Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (status code = %d)", e.Message, e.Status)
}

func newStatusError(r *Response) *StatusError {
	message := StatusCodeRangeOf(r.Status).String()
	if detail, ok := parseErrorMessage(r); ok {
		message = detail
	}
	return &StatusError{Status: r.Status, Message: message, Body: r}
}

func parseErrorMessage(r *Response) (string, bool) {
	if r.Data == nil {
		return "", false
	}
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Data, &m); err != nil || m.Message == "" {
		return "", false
	}
	return m.Message, true
}
