package persistence

import "errors"

// ErrConcurrentModification is returned by Save when the stored row is at
// or ahead of the aggregate's version.
var ErrConcurrentModification = errors.New("aggregate was modified concurrently")
