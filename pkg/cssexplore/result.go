package cssexplore

import (
	"bytes"
	"time"
)

// Metadata stores information about how and when a result was generated.
type Metadata struct {
	Backend   string        // Backend name that produced the result
	Generated time.Time     // Timestamp when formatting finished
	Options   FormatOptions // Options the input was formatted with
}

// Result represents the outcome of formatting a single input.
type Result struct {
	Path      string // Input path, "-" for stdin
	Original  []byte // Input as read
	Formatted []byte // Canonical text terminated by a single newline
	Err       error  // Set when the input could not be formatted
	Metadata  Metadata
}

// NewResult creates a Result for path with initialized metadata.
func NewResult(path, backend string, opts FormatOptions) *Result {
	return &Result{
		Path: path,
		Metadata: Metadata{
			Backend: backend,
			Options: opts,
		},
	}
}

// Changed reports whether formatting produced different bytes.
func (r *Result) Changed() bool {
	return r.Err == nil && !bytes.Equal(r.Original, r.Formatted)
}
