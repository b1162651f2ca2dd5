package store

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("already exists")
	ErrNoRowsUpdated  = errors.New("no rows updated")
	ErrNoTransaction  = errors.New("no transaction in context")
	ErrNoTenant       = errors.New("no tenant in context")
)
