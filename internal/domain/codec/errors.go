package codec

import "errors"

// Sentinel kinds for codec errors.
var (
	// ErrMalformedEventRecord marks a stored line that cannot be read back. Batch
	// callers log it and skip the page.
	ErrMalformedEventRecord = errors.New("malformed event record")
	// ErrAmbiguousKind marks a kind field with more than one hyphen. It is always
	// wrapped in ErrMalformedEventRecord.
	ErrAmbiguousKind = errors.New("ambiguous kind field")
)
