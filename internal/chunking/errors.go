package chunking

import "errors"

// Error taxonomy for the chunking engine. Configuration and input-shape
// errors are fatal for the call that raised them; tokenizer failures are
// recovered internally via the character fallback and never surface here.
var (
	// ErrUnknownStrategy is returned by NewStrategy for unregistered names.
	ErrUnknownStrategy = errors.New("unknown chunking strategy")

	// ErrInvalidConfig marks strategy parameters rejected at construction.
	ErrInvalidConfig = errors.New("invalid chunking configuration")

	// ErrBadInput marks a malformed or unsupported input shape.
	ErrBadInput = errors.New("unsupported input shape")

	// ErrEmptyInput means no usable elements remained after filtering.
	// It is distinct from a zero-chunk success so callers can tell
	// "nothing to chunk" from "chunking produced nothing".
	ErrEmptyInput = errors.New("no usable content after filtering")
)
