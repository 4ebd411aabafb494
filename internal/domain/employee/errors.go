package employee

import "errors"

var (
	ErrNotFound   = errors.New("employee not found")
	ErrUserLinked = errors.New("user already linked to an employee")
)
