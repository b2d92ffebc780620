package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("record not found")
	ErrStorage      = errors.New("storage failure")
	ErrUnknownTable = errors.New("unknown table")
)
