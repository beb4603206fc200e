package domain

import (
	"errors"
	"fmt"

	"codeberg.org/snonux/jsontranslate/internal/jsontree"
)

// Request-fatal errors.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrMissingPayload = fmt.Errorf("%w: body must be a JSON object with a payload field", ErrInvalidInput)
	ErrTooDeep        = jsontree.ErrTooDeep
	ErrCancelled      = errors.New("request cancelled")
)

// TranslationError reports a failed translation of the leaf at Path. It is
// recovered from: the leaf keeps its original text.
type TranslationError struct {
	Path string
	Err  error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate %s: %v", e.Path, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }
