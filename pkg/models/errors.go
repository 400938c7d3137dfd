package models

import "github.com/pkg/errors"

// ErrNotFound is returned by storage when a requested row does not exist
var ErrNotFound = errors.New("not found")
