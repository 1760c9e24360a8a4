package store

import "errors"

// ErrNotFound is returned when the requested row doesn't exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when creating a row that already exists.
var ErrAlreadyExists = errors.New("already exists")
