package comm

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"
)

// State is the state of the physical link.
type State int

// Link states.
const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "disconnected"
	}
}

// MessageHandler is called on the reader goroutine for every message.
// It must not block.
type MessageHandler interface {
	HandleMessage(Message)
}

// HandleMessageFunc is func type of MessageHandler.
type HandleMessageFunc func(Message)

// HandleMessage implements MessageHandler.
func (f HandleMessageFunc) HandleMessage(msg Message) {
	f(msg)
}

type handlerBox struct {
	h MessageHandler
}

// session is one open port and its reader.
type session struct {
	port Port
	done chan struct{}
}

// Link owns the serial port to a PicoPaper device and its reader.
//
// Ack and Error messages go to the message handler, Debug messages go to
// the debug handler (or the log when none is set), invalid lines are
// dropped. A send on a closed link reopens the port with the last port
// name first.
//
// The lock serializes writers and reopening. The reader only touches the
// current session pointer, so a slow write never stalls it.
type Link struct {
	Opener      Opener
	Mode        *serial.Mode
	ReadTimeout time.Duration

	handler atomic.Value
	debug   atomic.Value

	current    atomic.Pointer[session]
	connecting atomic.Bool

	lock     sync.Mutex
	portName string
}

// NewLink creates a Link using real serial ports.
func NewLink() *Link {
	return &Link{
		Opener:      OpenSerial,
		ReadTimeout: DefaultReadTimeout,
	}
}

// SetMessageHandler registers the consumer of Ack and Error messages.
// The last registration wins.
func (l *Link) SetMessageHandler(h MessageHandler) {
	l.handler.Store(handlerBox{h})
}

// SetDebugHandler registers the sink of Debug messages.
func (l *Link) SetDebugHandler(h MessageHandler) {
	l.debug.Store(handlerBox{h})
}

// State gets the current link state.
func (l *Link) State() State {
	switch {
	case l.current.Load() != nil:
		return StateOpen
	case l.connecting.Load():
		return StateConnecting
	default:
		return StateDisconnected
	}
}

// PortName gets the last port name used to connect.
func (l *Link) PortName() string {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.portName
}

// Connect opens the port and starts the reader. An already open port is
// closed first.
func (l *Link) Connect(portName string) error {
	l.lock.Lock()
	s := l.current.Swap(nil)
	l.lock.Unlock()
	s.close()

	l.lock.Lock()
	defer l.lock.Unlock()
	l.portName = portName
	if err := l.openLocked(); err != nil {
		return err
	}
	glog.Infof("link %s open", portName)
	return nil
}

// Disconnect closes the port and waits for the reader to exit.
// It is a no-op on a closed link.
func (l *Link) Disconnect() error {
	l.lock.Lock()
	s := l.current.Swap(nil)
	name := l.portName
	l.lock.Unlock()
	if s == nil {
		return nil
	}
	if err := s.close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	glog.Infof("link %s closed", name)
	return nil
}

// ResetProtocol writes the protocol reset marker.
func (l *Link) ResetProtocol() error {
	return l.write(ResetToken())
}

// SendByte writes one data byte.
func (l *Link) SendByte(b byte) error {
	return l.write(EncodeByte(b))
}

// SendBytes writes data byte by byte. A failure leaves the device with a
// partial payload.
func (l *Link) SendBytes(data []byte) error {
	for n, b := range data {
		if err := l.SendByte(b); err != nil {
			return fmt.Errorf("byte %d of %d: %w", n, len(data), err)
		}
	}
	return nil
}

func (l *Link) write(tok []byte) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	s := l.current.Load()
	if s == nil {
		glog.Warningf("link %s is disconnected, reconnecting", l.portName)
		if err := l.openLocked(); err != nil {
			return err
		}
		glog.Infof("link %s reopened", l.portName)
		s = l.current.Load()
	}
	if _, err := s.port.Write(tok); err != nil {
		return fmt.Errorf("write %q to %s: %w", tok, l.portName, err)
	}
	return nil
}

func (l *Link) openLocked() error {
	if l.portName == "" {
		return ErrNotConnected
	}
	l.connecting.Store(true)
	defer l.connecting.Store(false)
	opener, mode, timeout := l.Opener, l.Mode, l.ReadTimeout
	if opener == nil {
		opener = OpenSerial
	}
	if mode == nil {
		mode = DefaultMode()
	}
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	port, err := opener(l.portName, mode)
	if err != nil {
		return &ConnectionError{Port: l.portName, Err: err}
	}
	if err = port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return &ConnectionError{Port: l.portName, Err: err}
	}
	s := &session{port: port, done: make(chan struct{})}
	l.current.Store(s)
	go l.readLoop(s, l.portName)
	return nil
}

// close closes the port and waits for the reader to exit.
func (s *session) close() error {
	if s == nil {
		return nil
	}
	err := s.port.Close()
	<-s.done
	return err
}

func (l *Link) readLoop(s *session, name string) {
	defer close(s.done)
	var parser LineParser
	buf := make([]byte, 256)
	for {
		n, err := s.port.Read(buf)
		if err != nil {
			if os.IsTimeout(err) {
				continue
			}
			if l.current.CompareAndSwap(s, nil) {
				if isPortClosed(err) {
					glog.Warningf("link %s closed underneath", name)
				} else {
					glog.Errorf("link %s read error: %v", name, err)
				}
				s.port.Close()
			}
			return
		}
		if n == 0 {
			// read timeout
			if l.current.Load() != s {
				return
			}
			continue
		}
		lines, dropped := parser.ParseBytes(buf[:n])
		if dropped > 0 {
			glog.Warningf("link %s dropped %d overlong lines", name, dropped)
		}
		for _, line := range lines {
			l.dispatch(line)
		}
	}
}

func (l *Link) dispatch(line string) {
	msg := DecodeLine(line)
	switch msg.Kind {
	case KindDebug:
		if h := loadHandler(&l.debug); h != nil {
			h.HandleMessage(msg)
		} else {
			glog.Infof("device: %s", msg.Payload)
		}
	case KindInvalid:
		if glog.V(2) {
			glog.Infof("drop invalid line %q", line)
		}
	default:
		if glog.V(2) {
			glog.Infof("RCV %s %q", msg.Kind, msg.Payload)
		}
		if h := loadHandler(&l.handler); h != nil {
			h.HandleMessage(msg)
		}
	}
}

func loadHandler(v *atomic.Value) MessageHandler {
	if box, ok := v.Load().(handlerBox); ok {
		return box.h
	}
	return nil
}
