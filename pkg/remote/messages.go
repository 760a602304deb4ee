package remote

import (
	"errors"

	"github.com/golang/protobuf/proto"

	"github.com/DevOats/picoPaper/pkg/device"
	fx "github.com/DevOats/picoPaper/pkg/framework"
	pb "github.com/DevOats/picoPaper/pkg/proto/paper/v1"
)

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupPaper   uint32 = 0x00030000
)

// TypeIDs
const (
	CommandOKTypeID    uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID   uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	IdentQueryTypeID   uint32 = GroupPaper | 0x0000
	DeviceInfoTypeID   uint32 = IdentQueryTypeID | TypeIDMaskReply
	ClearDisplayTypeID uint32 = GroupPaper | 0x0001
	ShowSplashTypeID   uint32 = GroupPaper | 0x0002
	DisplayImageTypeID uint32 = GroupPaper | 0x0003
	DrawStringTypeID   uint32 = GroupPaper | 0x0004
	ResetLinkTypeID    uint32 = GroupPaper | 0x0005
	DebugEventTypeID   uint32 = TypeIDKindEvent | GroupPaper | 0x0000
)

// MessageTypes are predefined mapping of type ID to messages.
var MessageTypes = map[uint32]SerializableMessage{
	CommandOKTypeID:    (*CommandOK)(nil),
	CommandErrTypeID:   (*CommandErr)(nil),
	IdentQueryTypeID:   (*IdentQuery)(nil),
	DeviceInfoTypeID:   (*DeviceInfo)(nil),
	ClearDisplayTypeID: (*ClearDisplay)(nil),
	ShowSplashTypeID:   (*ShowSplash)(nil),
	DisplayImageTypeID: (*DisplayImage)(nil),
	DrawStringTypeID:   (*DrawString)(nil),
	ResetLinkTypeID:    (*ResetLink)(nil),
	DebugEventTypeID:   (*DebugEvent)(nil),
}

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
	pb.CommandOK
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() fx.Message { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// Serializable implements SerializableMessage.
func (m *CommandOK) Serializable() proto.Message { return &m.CommandOK }

// Error kinds carried by CommandErr.
const (
	ErrKindBusy        = "busy"
	ErrKindNoResponse  = "no-response"
	ErrKindDevice      = "device"
	ErrKindUnsupported = "unsupported"
)

// CommandErr is the generic message representing command error.
type CommandErr struct {
	pb.CommandErr
}

// NewCommandErr creates a CommandErr from an error, keeping the kind of
// the errors a client can act on.
func NewCommandErr(err error) *CommandErr {
	m := NewCommandErrFromMsg(err.Error())
	var devErr *device.DeviceError
	var unknownErr *UnknownTypeError
	switch {
	case errors.Is(err, device.ErrBusy):
		m.Kind = ErrKindBusy
	case errors.Is(err, device.ErrNoResponse):
		m.Kind = ErrKindNoResponse
	case errors.Is(err, ErrUnsupportedCommand), errors.As(err, &unknownErr):
		m.Kind = ErrKindUnsupported
	case errors.As(err, &devErr):
		m.Kind, m.Message = ErrKindDevice, devErr.Message
	}
	return m
}

// NewCommandErrFromMsg creates a CommandErr.
func NewCommandErrFromMsg(message string) *CommandErr {
	return &CommandErr{
		CommandErr: pb.CommandErr{
			Message: message,
		},
	}
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() fx.Message { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Serializable implements SerializableMessage.
func (m *CommandErr) Serializable() proto.Message { return &m.CommandErr }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// Err converts back to the error the server reported.
func (m *CommandErr) Err() error {
	switch m.Kind {
	case ErrKindBusy:
		return device.ErrBusy
	case ErrKindNoResponse:
		return device.ErrNoResponse
	case ErrKindUnsupported:
		return ErrUnsupportedCommand
	case ErrKindDevice:
		return &device.DeviceError{Message: m.Message}
	}
	return m
}

// IdentQuery command.
type IdentQuery struct {
	pb.IdentQuery
}

// NewMessage implements Message.
func (m *IdentQuery) NewMessage() fx.Message { return &IdentQuery{} }

// TypeID implements SerializableMessage.
func (m *IdentQuery) TypeID() uint32 { return IdentQueryTypeID }

// Serializable implements SerializableMessage.
func (m *IdentQuery) Serializable() proto.Message { return &m.IdentQuery }

// DeviceInfo response.
type DeviceInfo struct {
	pb.DeviceInfo
}

// NewDeviceInfo converts the device identification.
func NewDeviceInfo(info *device.Info) *DeviceInfo {
	return &DeviceInfo{DeviceInfo: pb.DeviceInfo{
		Device:        info.Device,
		Version:       info.Version,
		Board:         info.Board,
		Id:            info.ID,
		DisplayType:   info.Display.Type,
		DisplaySize:   info.Display.Size,
		DisplayColor:  info.Display.Color,
		DisplayFormat: info.Display.Format,
		Resolution: &pb.Resolution{
			Width:  int32(info.Display.Resolution.Width),
			Height: int32(info.Display.Resolution.Height),
		},
	}}
}

// Info converts back to the device identification.
func (m *DeviceInfo) Info() *device.Info {
	info := &device.Info{
		Device:  m.Device,
		Version: m.Version,
		Board:   m.Board,
		ID:      m.Id,
		Display: device.DisplayInfo{
			Type:   m.DisplayType,
			Size:   m.DisplaySize,
			Color:  m.DisplayColor,
			Format: m.DisplayFormat,
		},
	}
	if r := m.Resolution; r != nil {
		info.Display.Resolution = device.Resolution{Width: int(r.Width), Height: int(r.Height)}
	}
	return info
}

// NewMessage implements Message.
func (m *DeviceInfo) NewMessage() fx.Message { return &DeviceInfo{} }

// TypeID implements SerializableMessage.
func (m *DeviceInfo) TypeID() uint32 { return DeviceInfoTypeID }

// Serializable implements SerializableMessage.
func (m *DeviceInfo) Serializable() proto.Message { return &m.DeviceInfo }

// ClearDisplay command.
type ClearDisplay struct {
	pb.ClearDisplay
}

// NewMessage implements Message.
func (m *ClearDisplay) NewMessage() fx.Message { return &ClearDisplay{} }

// TypeID implements SerializableMessage.
func (m *ClearDisplay) TypeID() uint32 { return ClearDisplayTypeID }

// Serializable implements SerializableMessage.
func (m *ClearDisplay) Serializable() proto.Message { return &m.ClearDisplay }

// ShowSplash command.
type ShowSplash struct {
	pb.ShowSplash
}

// NewMessage implements Message.
func (m *ShowSplash) NewMessage() fx.Message { return &ShowSplash{} }

// TypeID implements SerializableMessage.
func (m *ShowSplash) TypeID() uint32 { return ShowSplashTypeID }

// Serializable implements SerializableMessage.
func (m *ShowSplash) Serializable() proto.Message { return &m.ShowSplash }

// DisplayImage command carrying an encoded image file.
type DisplayImage struct {
	pb.DisplayImage
}

// NewMessage implements Message.
func (m *DisplayImage) NewMessage() fx.Message { return &DisplayImage{} }

// TypeID implements SerializableMessage.
func (m *DisplayImage) TypeID() uint32 { return DisplayImageTypeID }

// Serializable implements SerializableMessage.
func (m *DisplayImage) Serializable() proto.Message { return &m.DisplayImage }

// DrawString command.
type DrawString struct {
	pb.DrawString
}

// NewDrawString converts a device text.
func NewDrawString(t device.Text) *DrawString {
	return &DrawString{DrawString: pb.DrawString{
		X:          int32(t.X),
		Y:          int32(t.Y),
		Font:       int32(t.Font),
		Foreground: int32(t.Foreground),
		Background: int32(t.Background),
		Text:       t.Value,
	}}
}

// DeviceText converts back to the device text.
func (m *DrawString) DeviceText() device.Text {
	return device.Text{
		X:          int(m.X),
		Y:          int(m.Y),
		Font:       int(m.Font),
		Foreground: device.Ink(m.Foreground),
		Background: device.Ink(m.Background),
		Value:      m.Text,
	}
}

// NewMessage implements Message.
func (m *DrawString) NewMessage() fx.Message { return &DrawString{} }

// TypeID implements SerializableMessage.
func (m *DrawString) TypeID() uint32 { return DrawStringTypeID }

// Serializable implements SerializableMessage.
func (m *DrawString) Serializable() proto.Message { return &m.DrawString }

// ResetLink command.
type ResetLink struct {
	pb.ResetLink
}

// NewMessage implements Message.
func (m *ResetLink) NewMessage() fx.Message { return &ResetLink{} }

// TypeID implements SerializableMessage.
func (m *ResetLink) TypeID() uint32 { return ResetLinkTypeID }

// Serializable implements SerializableMessage.
func (m *ResetLink) Serializable() proto.Message { return &m.ResetLink }

// DebugEvent forwards a debug line of the device.
type DebugEvent struct {
	pb.DebugEvent
}

// NewMessage implements Message.
func (m *DebugEvent) NewMessage() fx.Message { return &DebugEvent{} }

// TypeID implements SerializableMessage.
func (m *DebugEvent) TypeID() uint32 { return DebugEventTypeID }

// Serializable implements SerializableMessage.
func (m *DebugEvent) Serializable() proto.Message { return &m.DebugEvent }
