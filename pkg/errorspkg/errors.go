// Package errorspkg provides common app errors.
package errorspkg

import "errors"

var (
	// ErrInternal indicates internal server error.
	ErrInternal = errors.New("internal")
	// ErrStorageUnavailable indicates that the persistent store failed to serve the request.
	// The operation had no effect and may be retried.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
