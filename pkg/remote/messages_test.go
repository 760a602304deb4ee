package remote

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DevOats/picoPaper/pkg/device"
)

func roundTrip(t *testing.T, msg SerializableMessage, seq uint32) (*Typed, interface{}) {
	typed, err := TypedFrom(msg)
	require.NoError(t, err)
	typed.Sequence = seq
	data, err := typed.Encode()
	require.NoError(t, err)
	decoded, err := DecodeTyped(data)
	require.NoError(t, err)
	out, err := decoded.Decode()
	require.NoError(t, err)
	return decoded, out
}

func TestTypedKinds(t *testing.T) {
	cases := []struct {
		msg     SerializableMessage
		command bool
		reply   bool
	}{
		{&IdentQuery{}, true, false},
		{&DeviceInfo{}, true, true},
		{&CommandOK{}, true, true},
		{&CommandErr{}, true, true},
		{&DrawString{}, true, false},
		{&DebugEvent{}, false, false},
	}
	for _, c := range cases {
		typed, err := TypedFrom(c.msg)
		require.NoError(t, err)
		require.Equal(t, c.command, typed.IsCommand(), "%T", c.msg)
		require.Equal(t, !c.command, typed.IsEvent(), "%T", c.msg)
		require.Equal(t, c.reply, typed.IsReply(), "%T", c.msg)
	}
}

func TestDrawStringRoundTrip(t *testing.T) {
	text := device.Text{X: 10, Y: 20, Font: 16, Foreground: device.Black, Background: device.White, Value: "Hello"}
	typed, out := roundTrip(t, NewDrawString(text), 7)
	require.Equal(t, uint32(7), typed.Sequence)
	require.Equal(t, DrawStringTypeID, typed.TypeId)
	require.Equal(t, text, out.(*DrawString).DeviceText())
}

func TestDeviceInfoRoundTrip(t *testing.T) {
	info := &device.Info{
		Device:  "PicoPaper",
		Version: "1.0",
		Board:   "Pico W",
		ID:      "e6614c",
		Display: device.DisplayInfo{
			Type:       "EPD",
			Size:       "7.5",
			Color:      "BW",
			Format:     "1bpp",
			Resolution: device.Resolution{Width: 800, Height: 480},
		},
	}
	_, out := roundTrip(t, NewDeviceInfo(info), 1)
	require.Equal(t, info, out.(*DeviceInfo).Info())
}

func TestDecodeUnknownType(t *testing.T) {
	typed := &Typed{}
	typed.TypeId = GroupPaper | 0x0fff
	_, err := typed.Decode()
	var unknown *UnknownTypeError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, typed.TypeId, unknown.TypeID)
}

func TestCommandErrKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{device.ErrBusy, ErrKindBusy},
		{device.ErrNoResponse, ErrKindNoResponse},
		{ErrUnsupportedCommand, ErrKindUnsupported},
		{&UnknownTypeError{TypeID: 1}, ErrKindUnsupported},
		{&device.DeviceError{Message: "Unknown command"}, ErrKindDevice},
		{errors.New("boom"), ""},
	}
	for _, c := range cases {
		_, out := roundTrip(t, NewCommandErr(c.err), 3)
		cmdErr := out.(*CommandErr)
		require.Equal(t, c.kind, cmdErr.Kind, "%v", c.err)
		switch c.kind {
		case ErrKindDevice:
			var devErr *device.DeviceError
			require.True(t, errors.As(cmdErr.Err(), &devErr))
			require.Equal(t, "Unknown command", devErr.Message)
		case "":
			require.EqualError(t, cmdErr.Err(), "boom")
		case ErrKindUnsupported:
			require.ErrorIs(t, cmdErr.Err(), ErrUnsupportedCommand)
		default:
			require.ErrorIs(t, cmdErr.Err(), c.err)
		}
	}
}

func TestParseRef(t *testing.T) {
	cases := []struct {
		in    string
		ref   ControllerRef
		valid bool
	}{
		{"desk", ControllerRef{Type: ControllerType, ID: "desk"}, true},
		{"picopaper/hall", ControllerRef{Type: "picopaper", ID: "hall"}, true},
		{"", ControllerRef{}, false},
		{"a/b/c", ControllerRef{}, false},
		{"picopaper/", ControllerRef{}, false},
		{"picopaper/+", ControllerRef{}, false},
	}
	for _, c := range cases {
		ref, err := ParseRef(c.in)
		if !c.valid {
			require.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		require.Equal(t, c.ref, ref)
	}
	require.Equal(t, "picopaper/desk", ControllerRef{Type: "picopaper", ID: "desk"}.Name())
}
