package device

import (
	"fmt"
	"strings"
)

// Command is a command byte understood by the firmware.
type Command byte

// Commands.
const (
	CmdIdent              Command = 0x01
	CmdStartImageTx       Command = 0x02
	CmdDisplayImageBuffer Command = 0x03
	CmdClearDisplay       Command = 0x04
	CmdShowSplashScreen   Command = 0x05
	CmdDrawString         Command = 0x06
)

var commandNames = map[Command]string{
	CmdIdent:              "ident",
	CmdStartImageTx:       "start-image-tx",
	CmdDisplayImageBuffer: "display-image-buffer",
	CmdClearDisplay:       "clear-display",
	CmdShowSplashScreen:   "show-splash",
	CmdDrawString:         "draw-string",
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(0x%02x)", byte(c))
}

// Ack payloads.
const (
	AckImageReceived = "IMG_RCVD"
	AckClearDisplay  = "CLR_SCR"
	AckSplashScreen  = "SPLASH"
	AckDisplayed     = "DISPLAY"
)

// Panel geometry.
const (
	PanelWidth  = 800
	PanelHeight = 480
)

// Ink is a text or background color.
type Ink int

// Inks.
const (
	White Ink = 0
	Black Ink = 1
)

// DefaultFont is used when Text.Font is 0.
const DefaultFont = 24

// MaxTextLen is the longest text the firmware draws.
const MaxTextLen = 239

// Text is a line of text drawn by the firmware with DrawString.
type Text struct {
	X          int    `validate:"min=0,max=999"`
	Y          int    `validate:"min=0,max=999"`
	Font       int    `validate:"oneof=8 12 16 20 24"`
	Foreground Ink    `validate:"oneof=0 1"`
	Background Ink    `validate:"oneof=0 1"`
	Value      string `validate:"required,max=239,printascii"`
}

// Encode validates t and formats the DrawString payload following the
// command byte: X, Y and length as 3 digits, font as 2 digits, one digit
// per ink, the text and the "^\n" end marker.
func (t Text) Encode() ([]byte, error) {
	if t.Font == 0 {
		t.Font = DefaultFont
	}
	if err := validate.Struct(t); err != nil {
		return nil, &InvalidTextError{Err: err}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%03d%03d%02d%d%d%03d", t.X, t.Y, t.Font, t.Foreground, t.Background, len(t.Value))
	sb.WriteString(t.Value)
	sb.WriteString("^\n")
	return []byte(sb.String()), nil
}
