// Package device implements the PicoPaper command set on top of a serial
// link.
package device

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/jonboulle/clockwork"

	"github.com/DevOats/picoPaper/pkg/bitmap"
	"github.com/DevOats/picoPaper/pkg/comm"
)

// DefaultResponseTimeout is how long a command waits for its response.
const DefaultResponseTimeout = 20 * time.Second

// Link is the transport used by Device, implemented by *comm.Link.
type Link interface {
	Connect(portName string) error
	Disconnect() error
	ResetProtocol() error
	SendByte(b byte) error
	SendBytes(data []byte) error
	SetMessageHandler(h comm.MessageHandler)
}

// Device drives one PicoPaper display.
//
// Only one command may wait for a response at a time; a second caller gets
// ErrBusy. Responses carry no correlation id, the latest Ack or Error is the
// answer to the command in flight.
type Device struct {
	Link            Link
	ResponseTimeout time.Duration
	// DisconnectGrace delays closing the port after the final clear.
	DisconnectGrace time.Duration
	Clock           clockwork.Clock

	flight   sync.Mutex
	response chan comm.Message
}

// New creates a Device on link and registers as its message handler.
func New(link Link) *Device {
	d := &Device{
		Link:            link,
		ResponseTimeout: DefaultResponseTimeout,
		Clock:           clockwork.NewRealClock(),
		response:        make(chan comm.Message, 1),
	}
	link.SetMessageHandler(comm.HandleMessageFunc(d.handleMessage))
	return d
}

// NewSerial creates a Device on a real serial link.
func NewSerial() *Device {
	return New(comm.NewLink())
}

// Connect opens the port and resets the device protocol state.
func (d *Device) Connect(portName string) error {
	if err := d.Link.Connect(portName); err != nil {
		return err
	}
	return d.Link.ResetProtocol()
}

// Busy indicates a command is waiting for its response.
func (d *Device) Busy() bool {
	if d.flight.TryLock() {
		d.flight.Unlock()
		return false
	}
	return true
}

// Identify queries the device identification.
func (d *Device) Identify(ctx context.Context) (*Info, error) {
	if !d.flight.TryLock() {
		return nil, ErrBusy
	}
	defer d.flight.Unlock()
	msg, err := d.exchange(ctx, CmdIdent)
	if err != nil {
		return nil, err
	}
	if msg.Kind == comm.KindError {
		return nil, &DeviceError{Message: msg.Payload}
	}
	return DecodeInfo(msg.Payload)
}

// ShowSplash shows the firmware splash screen.
func (d *Device) ShowSplash(ctx context.Context) error {
	return d.command(ctx, AckSplashScreen, CmdShowSplashScreen)
}

// ClearDisplay blanks the panel.
func (d *Device) ClearDisplay(ctx context.Context) error {
	return d.command(ctx, AckClearDisplay, CmdClearDisplay)
}

// DisplayImage uploads img and shows it. img must be exactly the panel
// size; nothing is sent otherwise.
func (d *Device) DisplayImage(ctx context.Context, img image.Image) error {
	b := img.Bounds()
	if b.Dx() != PanelWidth || b.Dy() != PanelHeight {
		return &UnsupportedImageError{Width: b.Dx(), Height: b.Dy()}
	}
	if !d.flight.TryLock() {
		return ErrBusy
	}
	defer d.flight.Unlock()
	data := bitmap.Encode(img)
	msg, err := d.exchange(ctx, CmdStartImageTx, data...)
	if err != nil {
		return err
	}
	if err = expectAck(msg, AckImageReceived); err != nil {
		return err
	}
	msg, err = d.exchange(ctx, CmdDisplayImageBuffer)
	if err != nil {
		return err
	}
	return expectAck(msg, AckDisplayed)
}

// DrawString draws a line of text over the current panel content.
func (d *Device) DrawString(ctx context.Context, text Text) error {
	payload, err := text.Encode()
	if err != nil {
		return err
	}
	return d.command(ctx, AckDisplayed, CmdDrawString, payload...)
}

// ResetLink asks the device to drop any partial command. No response is
// expected.
func (d *Device) ResetLink() error {
	return d.Link.ResetProtocol()
}

// Disconnect clears the panel without waiting for the response and closes
// the port. Failing to send the clear is logged only.
func (d *Device) Disconnect() error {
	if err := d.Link.SendByte(byte(CmdClearDisplay)); err != nil {
		glog.Warningf("clear display on disconnect: %v", err)
	} else if d.DisconnectGrace > 0 {
		d.clock().Sleep(d.DisconnectGrace)
	}
	return d.Link.Disconnect()
}

// Close closes the port and leaves the panel content.
func (d *Device) Close() error {
	return d.Link.Disconnect()
}

func (d *Device) command(ctx context.Context, ack string, cmd Command, payload ...byte) error {
	if !d.flight.TryLock() {
		return ErrBusy
	}
	defer d.flight.Unlock()
	msg, err := d.exchange(ctx, cmd, payload...)
	if err != nil {
		return err
	}
	return expectAck(msg, ack)
}

// exchange sends cmd followed by payload and waits for the response.
// Caller must hold flight.
func (d *Device) exchange(ctx context.Context, cmd Command, payload ...byte) (comm.Message, error) {
	select {
	case stale := <-d.response:
		glog.Warningf("discard stale response %s %q", stale.Kind, stale.Payload)
	default:
	}
	if glog.V(2) {
		glog.Infof("SND %s +%d bytes", cmd, len(payload))
	}
	if err := d.Link.SendByte(byte(cmd)); err != nil {
		return comm.Message{}, err
	}
	if len(payload) > 0 {
		if err := d.Link.SendBytes(payload); err != nil {
			return comm.Message{}, err
		}
	}

	timeout := d.ResponseTimeout
	if timeout <= 0 {
		timeout = DefaultResponseTimeout
	}
	timer := d.clock().NewTimer(timeout)
	defer timer.Stop()
	select {
	case msg := <-d.response:
		return msg, nil
	case <-timer.Chan():
		return comm.Message{}, ErrNoResponse
	case <-ctx.Done():
		return comm.Message{}, ctx.Err()
	}
}

// handleMessage runs on the link reader. The slot keeps the latest
// response only.
func (d *Device) handleMessage(msg comm.Message) {
	if !msg.IsResponse() {
		return
	}
	for {
		select {
		case d.response <- msg:
			return
		default:
		}
		select {
		case old := <-d.response:
			glog.Warningf("response %s %q overwritten", old.Kind, old.Payload)
		default:
		}
	}
}

func (d *Device) clock() clockwork.Clock {
	if d.Clock == nil {
		return clockwork.NewRealClock()
	}
	return d.Clock
}

func expectAck(msg comm.Message, ack string) error {
	switch {
	case msg.Kind == comm.KindError:
		return &DeviceError{Message: msg.Payload}
	case msg.Kind == comm.KindAck && msg.Payload == ack:
		return nil
	}
	return &UnexpectedResponseError{Expected: ack, Actual: msg.Payload}
}
