package comm

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Port parameters of the PicoPaper USB serial interface.
const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = 500 * time.Millisecond
)

// Port is the subset of serial.Port used by Link.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadTimeout(t time.Duration) error
}

// Opener opens a Port by name.
type Opener func(name string, mode *serial.Mode) (Port, error)

// DefaultMode returns 115200-8-N-1 with DTR and RTS asserted.
// go.bug.st/serial never enables flow control.
func DefaultMode() *serial.Mode {
	return &serial.Mode{
		BaudRate: DefaultBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
		InitialStatusBits: &serial.ModemOutputBits{
			DTR: true,
			RTS: true,
		},
	}
}

// OpenSerial opens a real serial port.
func OpenSerial(name string, mode *serial.Mode) (Port, error) {
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return port, nil
}

// isPortClosed reports whether err is the error serial.Port.Read returns
// after Close.
func isPortClosed(err error) bool {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		return portErr.Code() == serial.PortClosed
	}
	var portErrVal serial.PortError
	if errors.As(err, &portErrVal) {
		return portErrVal.Code() == serial.PortClosed
	}
	return false
}
