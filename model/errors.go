package model

import "errors"

// ErrNetwork matches every simulator-domain error via errors.Is.
var ErrNetwork = errors.New("network error")

// NetworkError is a simulator-domain failure. All domain sentinels are
// NetworkErrors so callers can catch the whole family with ErrNetwork.
type NetworkError struct {
	msg string
}

// NewNetworkError builds a NetworkError with the given message.
func NewNetworkError(msg string) *NetworkError {
	return &NetworkError{msg: msg}
}

func (e *NetworkError) Error() string { return e.msg }

// Is reports membership in the ErrNetwork family.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

var (
	// ErrCapacityExceeded indicates a tower is already full.
	ErrCapacityExceeded = NewNetworkError("capacity exceeded")
	// ErrInvalidConfiguration indicates a profile or parameter is out of range.
	ErrInvalidConfiguration = NewNetworkError("invalid configuration")
	// ErrIndexOutOfBounds indicates a roster lookup past either end.
	ErrIndexOutOfBounds = NewNetworkError("index out of bounds")
	// ErrUnknownGeneration indicates an unrecognised generation name.
	ErrUnknownGeneration = NewNetworkError("unknown generation")
)
