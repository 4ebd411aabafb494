package policies

import "errors"

var ErrNotFound = errors.New("policy not found")
