// Package paper contains the wire messages of the display bridge, see
// paper.proto.
package paper

import (
	proto "github.com/golang/protobuf/proto"
)

// Typed wraps every message on the wire.
type Typed struct {
	TypeId   uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Sequence uint32 `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Message  []byte `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *Typed) Reset()         { *m = Typed{} }
func (m *Typed) String() string { return proto.CompactTextString(m) }
func (*Typed) ProtoMessage()    {}

type CommandOK struct {
}

func (m *CommandOK) Reset()         { *m = CommandOK{} }
func (m *CommandOK) String() string { return proto.CompactTextString(m) }
func (*CommandOK) ProtoMessage()    {}

type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
	Kind    string `protobuf:"bytes,2,opt,name=kind,proto3" json:"kind,omitempty"`
}

func (m *CommandErr) Reset()         { *m = CommandErr{} }
func (m *CommandErr) String() string { return proto.CompactTextString(m) }
func (*CommandErr) ProtoMessage()    {}

type IdentQuery struct {
}

func (m *IdentQuery) Reset()         { *m = IdentQuery{} }
func (m *IdentQuery) String() string { return proto.CompactTextString(m) }
func (*IdentQuery) ProtoMessage()    {}

type Resolution struct {
	Width  int32 `protobuf:"varint,1,opt,name=width,proto3" json:"width,omitempty"`
	Height int32 `protobuf:"varint,2,opt,name=height,proto3" json:"height,omitempty"`
}

func (m *Resolution) Reset()         { *m = Resolution{} }
func (m *Resolution) String() string { return proto.CompactTextString(m) }
func (*Resolution) ProtoMessage()    {}

type DeviceInfo struct {
	Device        string      `protobuf:"bytes,1,opt,name=device,proto3" json:"device,omitempty"`
	Version       string      `protobuf:"bytes,2,opt,name=version,proto3" json:"version,omitempty"`
	Board         string      `protobuf:"bytes,3,opt,name=board,proto3" json:"board,omitempty"`
	Id            string      `protobuf:"bytes,4,opt,name=id,proto3" json:"id,omitempty"`
	DisplayType   string      `protobuf:"bytes,5,opt,name=display_type,json=displayType,proto3" json:"display_type,omitempty"`
	DisplaySize   string      `protobuf:"bytes,6,opt,name=display_size,json=displaySize,proto3" json:"display_size,omitempty"`
	DisplayColor  string      `protobuf:"bytes,7,opt,name=display_color,json=displayColor,proto3" json:"display_color,omitempty"`
	DisplayFormat string      `protobuf:"bytes,8,opt,name=display_format,json=displayFormat,proto3" json:"display_format,omitempty"`
	Resolution    *Resolution `protobuf:"bytes,9,opt,name=resolution,proto3" json:"resolution,omitempty"`
}

func (m *DeviceInfo) Reset()         { *m = DeviceInfo{} }
func (m *DeviceInfo) String() string { return proto.CompactTextString(m) }
func (*DeviceInfo) ProtoMessage()    {}

type ClearDisplay struct {
}

func (m *ClearDisplay) Reset()         { *m = ClearDisplay{} }
func (m *ClearDisplay) String() string { return proto.CompactTextString(m) }
func (*ClearDisplay) ProtoMessage()    {}

type ShowSplash struct {
}

func (m *ShowSplash) Reset()         { *m = ShowSplash{} }
func (m *ShowSplash) String() string { return proto.CompactTextString(m) }
func (*ShowSplash) ProtoMessage()    {}

type DisplayImage struct {
	Image []byte `protobuf:"bytes,1,opt,name=image,proto3" json:"image,omitempty"`
}

func (m *DisplayImage) Reset()         { *m = DisplayImage{} }
func (m *DisplayImage) String() string { return proto.CompactTextString(m) }
func (*DisplayImage) ProtoMessage()    {}

type DrawString struct {
	X          int32  `protobuf:"varint,1,opt,name=x,proto3" json:"x,omitempty"`
	Y          int32  `protobuf:"varint,2,opt,name=y,proto3" json:"y,omitempty"`
	Font       int32  `protobuf:"varint,3,opt,name=font,proto3" json:"font,omitempty"`
	Foreground int32  `protobuf:"varint,4,opt,name=foreground,proto3" json:"foreground,omitempty"`
	Background int32  `protobuf:"varint,5,opt,name=background,proto3" json:"background,omitempty"`
	Text       string `protobuf:"bytes,6,opt,name=text,proto3" json:"text,omitempty"`
}

func (m *DrawString) Reset()         { *m = DrawString{} }
func (m *DrawString) String() string { return proto.CompactTextString(m) }
func (*DrawString) ProtoMessage()    {}

type ResetLink struct {
}

func (m *ResetLink) Reset()         { *m = ResetLink{} }
func (m *ResetLink) String() string { return proto.CompactTextString(m) }
func (*ResetLink) ProtoMessage()    {}

type DebugEvent struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *DebugEvent) Reset()         { *m = DebugEvent{} }
func (m *DebugEvent) String() string { return proto.CompactTextString(m) }
func (*DebugEvent) ProtoMessage()    {}

func init() {
	proto.RegisterType((*Typed)(nil), "picopaper.paper.v1.Typed")
	proto.RegisterType((*CommandOK)(nil), "picopaper.paper.v1.CommandOK")
	proto.RegisterType((*CommandErr)(nil), "picopaper.paper.v1.CommandErr")
	proto.RegisterType((*IdentQuery)(nil), "picopaper.paper.v1.IdentQuery")
	proto.RegisterType((*Resolution)(nil), "picopaper.paper.v1.Resolution")
	proto.RegisterType((*DeviceInfo)(nil), "picopaper.paper.v1.DeviceInfo")
	proto.RegisterType((*ClearDisplay)(nil), "picopaper.paper.v1.ClearDisplay")
	proto.RegisterType((*ShowSplash)(nil), "picopaper.paper.v1.ShowSplash")
	proto.RegisterType((*DisplayImage)(nil), "picopaper.paper.v1.DisplayImage")
	proto.RegisterType((*DrawString)(nil), "picopaper.paper.v1.DrawString")
	proto.RegisterType((*ResetLink)(nil), "picopaper.paper.v1.ResetLink")
	proto.RegisterType((*DebugEvent)(nil), "picopaper.paper.v1.DebugEvent")
}
