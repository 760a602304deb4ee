package remote

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/DevOats/picoPaper/pkg/device"
	fx "github.com/DevOats/picoPaper/pkg/framework"
)

// DefaultCommandExpiration is the default time to wait for a reply. An
// image upload alone takes about 13s at 115200 baud.
const DefaultCommandExpiration = time.Minute

// Result represents result of a command.
type Result struct {
	Msg fx.Message
	Err error
}

// Conn is the client side of a registered display. It implements
// device.Display.
type Conn struct {
	Expiration time.Duration
	// OnEvent receives events; debug lines are logged when unset.
	OnEvent func(fx.Message)

	pipe    Pipe
	closer  func() error
	lock    sync.Mutex
	seq     uint32
	pending map[uint32]chan Result
	runner  *fx.Runner
}

var _ device.Display = (*Conn)(nil)

// NewConn creates a Conn over rw. Start must be called to receive replies.
func NewConn(rw PacketReadWriter) *Conn {
	c := &Conn{
		Expiration: DefaultCommandExpiration,
		pending:    make(map[uint32]chan Result),
	}
	c.pipe.ReadWriter = rw
	c.pipe.Handler = HandleTypedMsgFunc(c.handleTypedMsg)
	return c
}

// Start runs the receiving side and extra runnables until Close.
func (c *Conn) Start(runnables ...fx.Runnable) {
	c.runner = fx.NewRunner().Go(append(runnables, &c.pipe)...)
}

// DoCommand sends a command and waits for its reply.
func (c *Conn) DoCommand(ctx context.Context, msg fx.Message) (fx.Message, error) {
	ch := make(chan Result, 1)
	c.lock.Lock()
	c.seq++
	if c.seq == 0 {
		c.seq++
	}
	seq := c.seq
	c.pending[seq] = ch
	c.lock.Unlock()
	defer c.forget(seq)

	if err := c.pipe.SendCommandMsg(msg, seq); err != nil {
		return nil, err
	}
	expiration := c.Expiration
	if expiration <= 0 {
		expiration = DefaultCommandExpiration
	}
	timer := time.NewTimer(expiration)
	defer timer.Stop()
	select {
	case res := <-ch:
		return res.Msg, res.Err
	case <-timer.C:
		return nil, context.DeadlineExceeded
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Conn) forget(seq uint32) {
	c.lock.Lock()
	delete(c.pending, seq)
	c.lock.Unlock()
}

func (c *Conn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *Typed) error {
	if typed.IsEvent() {
		if h := c.OnEvent; h != nil {
			h(msg)
		} else if ev, ok := msg.(*DebugEvent); ok {
			glog.Infof("device: %s", ev.Message)
		}
		return nil
	}
	c.lock.Lock()
	ch := c.pending[typed.Sequence]
	delete(c.pending, typed.Sequence)
	c.lock.Unlock()
	if ch == nil {
		glog.V(2).Infof("drop reply #%d", typed.Sequence)
		return nil
	}
	res := Result{Msg: msg}
	if cmdErr, ok := msg.(*CommandErr); ok {
		res.Err = cmdErr.Err()
	}
	ch <- res
	return nil
}

func (c *Conn) expectOK(ctx context.Context, msg fx.Message) error {
	reply, err := c.DoCommand(ctx, msg)
	if err != nil {
		return err
	}
	if _, ok := reply.(*CommandOK); !ok {
		return fmt.Errorf("unexpected reply %T", reply)
	}
	return nil
}

// Identify implements device.Display.
func (c *Conn) Identify(ctx context.Context) (*device.Info, error) {
	reply, err := c.DoCommand(ctx, &IdentQuery{})
	if err != nil {
		return nil, err
	}
	info, ok := reply.(*DeviceInfo)
	if !ok {
		return nil, fmt.Errorf("unexpected reply %T", reply)
	}
	return info.Info(), nil
}

// ShowSplash implements device.Display.
func (c *Conn) ShowSplash(ctx context.Context) error {
	return c.expectOK(ctx, &ShowSplash{})
}

// ClearDisplay implements device.Display.
func (c *Conn) ClearDisplay(ctx context.Context) error {
	return c.expectOK(ctx, &ClearDisplay{})
}

// DisplayImage implements device.Display. The image travels PNG encoded.
func (c *Conn) DisplayImage(ctx context.Context, img image.Image) error {
	b := img.Bounds()
	if b.Dx() != device.PanelWidth || b.Dy() != device.PanelHeight {
		return &device.UnsupportedImageError{Width: b.Dx(), Height: b.Dy()}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	msg := &DisplayImage{}
	msg.Image = buf.Bytes()
	return c.expectOK(ctx, msg)
}

// DrawString implements device.Display.
func (c *Conn) DrawString(ctx context.Context, text device.Text) error {
	if _, err := text.Encode(); err != nil {
		return err
	}
	return c.expectOK(ctx, NewDrawString(text))
}

// ResetLink implements device.Display.
func (c *Conn) ResetLink() error {
	return c.expectOK(context.Background(), &ResetLink{})
}

// Disconnect implements device.Display. The daemon owns the panel, so this
// is the same as Close.
func (c *Conn) Disconnect() error {
	return c.Close()
}

// Close stops receiving and releases the connection.
func (c *Conn) Close() error {
	var err error
	if c.runner != nil {
		c.runner.Stop()
		c.pipe.Close()
		err = c.runner.Wait()
		c.runner = nil
	}
	if c.closer != nil {
		if closeErr := c.closer(); err == nil {
			err = closeErr
		}
	}
	return err
}
