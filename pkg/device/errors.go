package device

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResponse indicates the device did not answer in time.
	ErrNoResponse = errors.New("no response received from device")
	// ErrBusy indicates another command is still waiting for its response.
	ErrBusy = errors.New("device busy")
)

// DeviceError is an error reported by the device itself.
type DeviceError struct {
	Message string
}

func (e *DeviceError) Error() string {
	return "device error: " + e.Message
}

// UnexpectedResponseError indicates an Ack with a different payload than
// the command expects.
type UnexpectedResponseError struct {
	Expected string
	Actual   string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected device response %q, expected %q", e.Actual, e.Expected)
}

// InfoDecodeError indicates the Ident payload is not a valid device info.
type InfoDecodeError struct {
	Payload string
	Err     error
}

func (e *InfoDecodeError) Error() string {
	return fmt.Sprintf("could not decode device info: %v", e.Err)
}

func (e *InfoDecodeError) Unwrap() error {
	return e.Err
}

// UnsupportedImageError rejects images the panel cannot show.
type UnsupportedImageError struct {
	Width  int
	Height int
}

func (e *UnsupportedImageError) Error() string {
	return fmt.Sprintf("unsupported image dimensions %dx%d, only %dx%d is supported",
		e.Width, e.Height, PanelWidth, PanelHeight)
}

// InvalidTextError rejects a DrawString request.
type InvalidTextError struct {
	Err error
}

func (e *InvalidTextError) Error() string {
	return fmt.Sprintf("invalid text: %v", e.Err)
}

func (e *InvalidTextError) Unwrap() error {
	return e.Err
}
