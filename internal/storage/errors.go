package storage

import (
	"errors"
	"fmt"
)

// ErrMalformedPayload marks a stored payload that is not a valid JSON array
// of records of the expected shape.
var ErrMalformedPayload = errors.New("malformed payload")

// LoadError reports a failure to read or decode the payload under Key.
// Payload holds the raw bytes when they were read successfully.
type LoadError struct {
	Key     string
	Payload []byte
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q: %v", e.Key, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Malformed reports whether the payload was read but could not be decoded.
func (e *LoadError) Malformed() bool {
	return errors.Is(e.Err, ErrMalformedPayload)
}

// SaveError reports a failure to persist the payload under Key.
type SaveError struct {
	Key string
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save %q: %v", e.Key, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}
