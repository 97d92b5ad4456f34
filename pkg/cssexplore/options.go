package cssexplore

import "time"

// RenderOptions controls the rendering of a typed stylesheet.
// The same value is threaded unchanged through every nested node.
type RenderOptions struct {
	IgnoreCharset    bool // Render @charset statements as empty text
	IgnoreEmptyRules bool // Drop rules without declarations (keyframe blocks are kept)
}

// ParseOptions controls the call into the external CSS parser.
type ParseOptions struct {
	Timeout    time.Duration // Maximum time allowed for the parser process, 0 means no limit
	SourceName string        // Name of the input, used in diagnostics only
}

// FormatOptions combines both stages of a format run.
type FormatOptions struct {
	RenderOptions
	Parse ParseOptions
}
