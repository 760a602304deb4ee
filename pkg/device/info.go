package device

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Info is the identification reported by the device.
type Info struct {
	Device  string      `json:"device" validate:"required"`
	Version string      `json:"version" validate:"required"`
	Board   string      `json:"board"`
	ID      string      `json:"id"`
	Display DisplayInfo `json:"display" validate:"required"`
}

// DisplayInfo describes the panel.
type DisplayInfo struct {
	Type       string     `json:"type"`
	Size       string     `json:"size"`
	Color      string     `json:"color"`
	Format     string     `json:"format"`
	Resolution Resolution `json:"resolution" validate:"required"`
}

// Resolution is the panel size in pixels.
type Resolution struct {
	Width  int `json:"width" validate:"required,gt=0"`
	Height int `json:"height" validate:"required,gt=0"`
}

// String implements fmt.Stringer.
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// DecodeInfo parses the Ident payload. Keys match case-insensitively.
func DecodeInfo(payload string) (*Info, error) {
	var info Info
	dec := json.NewDecoder(strings.NewReader(payload))
	if err := dec.Decode(&info); err != nil {
		return nil, &InfoDecodeError{Payload: payload, Err: err}
	}
	if dec.More() {
		return nil, &InfoDecodeError{Payload: payload, Err: errors.New("trailing data after device info")}
	}
	if err := validate.Struct(&info); err != nil {
		return nil, &InfoDecodeError{Payload: payload, Err: err}
	}
	return &info, nil
}
