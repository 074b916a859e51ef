package database

import (
	"errors"
	"fmt"
)

// ErrCacheMiss is returned by CachedAnalysis when no record matches the range.
var ErrCacheMiss = errors.New("analysis cache miss")

// StoreError wraps a failed read or write against the backing store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
