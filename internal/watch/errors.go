package watch

import "errors"

// ErrStopped is returned by Post when the event loop is not running.
var ErrStopped = errors.New("watcher is not running")
