package sdfs

import "errors"

var (
	ErrNotDir     = errors.New("not a directory")
	ErrIsDir      = errors.New("is a directory")
	ErrClosed     = errors.New("resource already closed")
	ErrSeekRange  = errors.New("seek offset out of range")
	ErrNotMounted = errors.New("card not mounted")
)
