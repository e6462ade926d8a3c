// Package apperr defines the error kinds that abort a run.
package apperr

import "errors"

var (
	ErrSourceRead = errors.New("source read failed")
	ErrParse      = errors.New("document parse failed")
	ErrSnapshot   = errors.New("snapshot write failed")
	ErrTransport  = errors.New("catalog transport failed")
)
