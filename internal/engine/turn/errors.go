package turn

import "errors"

// ErrCancelled is the distinguished condition raised when a turn sequence is
// stopped by its context. File mutations applied before the cancellation are
// kept; callers should not render this as a failure.
var ErrCancelled = errors.New("turn sequence cancelled")
