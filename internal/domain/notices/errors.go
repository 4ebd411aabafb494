package notices

import "errors"

var ErrNotFound = errors.New("notice not found")
