package models

import "errors"

// Custom errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateKey    = errors.New("duplicate key violation")
	ErrInvalidID       = errors.New("invalid ID format")
	ErrInvalidResult   = errors.New("invalid result status")
	ErrInvalidLegCount = errors.New("parlay requires between 2 and 4 legs")
)
