package task

import "errors"

var (
	// ErrInvalidConfiguration reports an unusable task configuration, such as
	// an unrecognized task name. Construction cannot recover from it.
	ErrInvalidConfiguration = errors.New("invalid task configuration")

	// ErrResetExhausted reports that rejection sampling could not find a
	// contact-free starting pose. It indicates a scene or joint-range defect
	// rather than a transient condition and is not retried.
	ErrResetExhausted = errors.New("no contact-free starting pose found")
)
