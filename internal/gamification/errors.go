package gamification

import "errors"

// ErrInvalidTemporalOrder means the event day precedes the stored
// last-active day. The orchestrator logs it and skips the streak update;
// it never corrupts the stored streak.
var ErrInvalidTemporalOrder = errors.New("event day precedes last active day")
