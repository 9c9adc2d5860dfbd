package repositories

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrPreconditionFailed means the row no longer had the expected status when written.
	ErrPreconditionFailed = errors.New("row changed status before write")
	ErrDuplicate          = errors.New("duplicate row")
)
