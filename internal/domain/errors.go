package domain

import "errors"

// ErrForbidden is returned when a resource belongs to another user
var ErrForbidden = errors.New("resource belongs to another user")
