package domain

import (
	"bytes"
	"encoding/json"

	"codeberg.org/snonux/jsontranslate/internal/jsontree"
)

// Response is the JSON envelope returned to callers.
type Response struct {
	Status         Status         `json:"status"`
	TranslatedData jsontree.Value `json:"translated_data,omitempty"`
	Notes          []Note         `json:"notes,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// NewResponse wraps a completed result.
func NewResponse(r *Result) *Response {
	return &Response{
		Status:         r.Status,
		TranslatedData: r.Data,
		Notes:          r.Notes,
	}
}

// ErrorResponse wraps a request-fatal error. No document is attached.
func ErrorResponse(err error) *Response {
	return &Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// Encode renders the envelope without HTML escaping and with a trailing
// newline.
func (r *Response) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
