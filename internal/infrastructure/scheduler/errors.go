package scheduler

import "errors"

var (
	// ErrGroupClosed is reported when a task is scheduled on a closed group
	ErrGroupClosed = errors.New("task group is closed")

	// ErrInvalidPeriod is reported for non-positive repeat periods
	ErrInvalidPeriod = errors.New("repeat period must be positive")
)
