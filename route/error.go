package route

import "errors"

var (
	ErrDuplicate = errors.New("duplicate pattern")
	ErrNotFound  = errors.New("no matching route")
	ErrPattern   = errors.New("bad pattern")
)
