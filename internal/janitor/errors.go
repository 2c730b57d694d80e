package janitor

import "errors"

var (
	// ErrDirectoryUnavailable aborts a pass: the cache directory is missing,
	// not a directory, or unreadable.
	ErrDirectoryUnavailable = errors.New("cache directory unavailable")

	// ErrInconsistentState flags a stale working file whose completed result
	// already exists. It is logged and the pass goes on.
	ErrInconsistentState = errors.New("inconsistent cache state")
)
