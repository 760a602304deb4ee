package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected indicates no port name is known to (re)connect to.
	ErrNotConnected = errors.New("not connected")
	// ErrInvalidToken indicates a malformed data byte token.
	ErrInvalidToken = errors.New("invalid data byte token")
)

// ConnectionError wraps a failure to open the serial port.
type ConnectionError struct {
	Port string
	Err  error
}

// Error implements error.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not open serial port %q: %v", e.Port, e.Err)
}

// Unwrap returns the underlying open error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}
