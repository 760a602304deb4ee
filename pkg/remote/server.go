package remote

import (
	"bytes"
	"context"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/DevOats/picoPaper/pkg/bitmap"
	"github.com/DevOats/picoPaper/pkg/comm"
	"github.com/DevOats/picoPaper/pkg/device"
	fx "github.com/DevOats/picoPaper/pkg/framework"
)

// Server executes commands received on a pipe against a display, one at a
// time. A command arriving while another executes is answered with a busy
// CommandErr.
type Server struct {
	Display device.Display

	pipe Pipe
	busy atomic.Bool
	jobs chan job
}

type job struct {
	seq uint32
	msg fx.Message
}

// NewServer creates a Server.
func NewServer(display device.Display, rw PacketReadWriter) *Server {
	s := &Server{Display: display, jobs: make(chan job, 1)}
	s.pipe.ReadWriter = rw
	s.pipe.Handler = HandleTypedMsgFunc(s.handleTypedMsg)
	return s
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.work(ctx)
	}()
	err := s.pipe.Run(ctx)
	cancel()
	<-done
	return err
}

// HandleMessage implements comm.MessageHandler and forwards debug lines of
// the device as events.
func (s *Server) HandleMessage(msg comm.Message) {
	glog.Infof("device: %s", msg.Payload)
	ev := &DebugEvent{}
	ev.Message = msg.Payload
	if err := s.pipe.SendEventMsg(ev); err != nil {
		glog.Warningf("forward debug message: %v", err)
	}
}

func (s *Server) handleTypedMsg(ctx context.Context, msg fx.Message, typed *Typed) error {
	if !typed.IsCommand() || typed.IsReply() {
		return nil
	}
	if !s.busy.CompareAndSwap(false, true) {
		glog.Warningf("reject command %x#%d: busy", typed.TypeId, typed.Sequence)
		return s.pipe.SendCommandMsg(NewCommandErr(device.ErrBusy), typed.Sequence)
	}
	s.jobs <- job{seq: typed.Sequence, msg: msg}
	return nil
}

func (s *Server) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.jobs:
			reply := s.execute(ctx, j.msg)
			s.busy.Store(false)
			if err := s.pipe.SendCommandMsg(reply, j.seq); err != nil {
				glog.Errorf("reply #%d: %v", j.seq, err)
			}
		}
	}
}

func (s *Server) execute(ctx context.Context, msg fx.Message) fx.Message {
	var err error
	switch m := msg.(type) {
	case *IdentQuery:
		var info *device.Info
		if info, err = s.Display.Identify(ctx); err == nil {
			return NewDeviceInfo(info)
		}
	case *ClearDisplay:
		err = s.Display.ClearDisplay(ctx)
	case *ShowSplash:
		err = s.Display.ShowSplash(ctx)
	case *DisplayImage:
		img, decodeErr := bitmap.Decode(bytes.NewReader(m.Image))
		if err = decodeErr; err == nil {
			err = s.Display.DisplayImage(ctx, img)
		}
	case *DrawString:
		err = s.Display.DrawString(ctx, m.DeviceText())
	case *ResetLink:
		err = s.Display.ResetLink()
	default:
		err = ErrUnsupportedCommand
	}
	if err != nil {
		glog.Warningf("command %T failed: %v", msg, err)
		return NewCommandErr(err)
	}
	return &CommandOK{}
}
