package docpage

import (
	"errors"
	"fmt"
)

// ErrNotText is returned when input is not valid UTF-8.
var ErrNotText = errors.New("input is not valid UTF-8 text")

// RenderError reports a failure to render a file.
type RenderError struct {
	File string // Source file path
	Err  error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("❌ Error in %s: %v", e.File, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RenderError) Unwrap() error {
	return e.Err
}
