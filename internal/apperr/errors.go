package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnknownSection = errors.New("unknown section")
	ErrContentFetch   = errors.New("content fetch failed")
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrInvalidInput   = errors.New("invalid input")
)
