package tmdb

import (
	"errors"
	"fmt"
)

// ErrRequestFailed is the single failure value for search and image-list
// calls: bad URL, transport error, non-2xx status or undecodable body.
var ErrRequestFailed = errors.New("request failed")

// RequestError carries the operation and underlying cause of a failed call
type RequestError struct {
	Op  string // "search" or "images"
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is makes every RequestError match ErrRequestFailed
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

func requestFailed(op string, err error) error {
	return &RequestError{Op: op, Err: err}
}
