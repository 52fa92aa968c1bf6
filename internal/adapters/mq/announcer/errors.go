package announcer

import "errors"

// ErrStopped is returned by Shutdown when the announcer already stopped.
var ErrStopped = errors.New("announcer stopped")
