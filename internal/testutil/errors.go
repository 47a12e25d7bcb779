package testutil

import "errors"

// ErrSimulated is returned by test doubles to exercise failure paths.
var ErrSimulated = errors.New("simulated failure")
