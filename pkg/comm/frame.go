package comm

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Wire markers.
const (
	DataByteMarker = ':'
	ResetMarker    = '/'

	AckPrefix   = "~ACK#"
	ErrorPrefix = "~ERR#"
	DebugPrefix = "~DBG#"
	Terminator  = "^"
)

// TokenLen is the length of an encoded data byte.
const TokenLen = 3

// Kind classifies an inbound line.
type Kind int

// Kinds of inbound messages.
const (
	KindInvalid Kind = iota
	KindAck
	KindError
	KindDebug
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindAck:
		return "ack"
	case KindError:
		return "error"
	case KindDebug:
		return "debug"
	default:
		return "invalid"
	}
}

// Message is a decoded inbound line.
type Message struct {
	Kind    Kind
	Payload string
}

// IsResponse indicates the message answers a command.
func (m Message) IsResponse() bool {
	return m.Kind == KindAck || m.Kind == KindError
}

// Line formats the message the way the device puts it on the wire,
// including the trailing newline. Invalid messages are returned as-is.
func (m Message) Line() string {
	var prefix string
	switch m.Kind {
	case KindAck:
		prefix = AckPrefix
	case KindError:
		prefix = ErrorPrefix
	case KindDebug:
		prefix = DebugPrefix
	default:
		return m.Payload + "\n"
	}
	return prefix + m.Payload + Terminator + "\n"
}

// EncodeByte encodes a data byte into its wire token.
func EncodeByte(b byte) []byte {
	tok := make([]byte, TokenLen)
	tok[0] = DataByteMarker
	hex.Encode(tok[1:], []byte{b})
	return tok
}

// DecodeByte decodes a wire token into the data byte.
func DecodeByte(tok []byte) (byte, error) {
	if len(tok) != TokenLen || tok[0] != DataByteMarker {
		return 0, fmt.Errorf("%w: %q", ErrInvalidToken, tok)
	}
	var b [1]byte
	if _, err := hex.Decode(b[:], tok[1:]); err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidToken, tok, err)
	}
	return b[0], nil
}

// ResetToken returns the protocol reset request.
func ResetToken() []byte {
	return []byte{ResetMarker}
}

// DecodeLine classifies one raw line received from the device.
func DecodeLine(raw string) Message {
	text := strings.TrimSpace(raw)
	for _, f := range framings {
		if strings.HasPrefix(text, f.prefix) && strings.HasSuffix(text, Terminator) &&
			len(text) >= len(f.prefix)+len(Terminator) {
			inner := text[len(f.prefix) : len(text)-len(Terminator)]
			return Message{Kind: f.kind, Payload: strings.TrimSpace(inner)}
		}
	}
	return Message{Kind: KindInvalid, Payload: raw}
}

var framings = []struct {
	prefix string
	kind   Kind
}{
	{AckPrefix, KindAck},
	{ErrorPrefix, KindError},
	{DebugPrefix, KindDebug},
}
