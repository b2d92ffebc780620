package app

import "errors"

// Sentinel kinds for submission errors.
var (
	// ErrEvictionInvariant marks a policy decision that would corrupt a
	// bounded set; the submission is aborted before any write.
	ErrEvictionInvariant = errors.New("eviction invariant violated")
)
