package leave

import "errors"

var (
	ErrInvalidRange    = errors.New("end date before start date")
	ErrRequestNotFound = errors.New("leave request not found")
)
