package comm

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/golang/glog.(*loggingT).flushDaemon"))
}

type memPort struct {
	in      chan []byte
	fail    chan error
	closed  chan struct{}
	once    sync.Once
	lock    sync.Mutex
	writes  []string
	timeout time.Duration

	// when set, Write signals writing and waits for hold
	hold    chan struct{}
	writing chan struct{}
}

func newMemPort() *memPort {
	return &memPort{
		in:     make(chan []byte, 16),
		fail:   make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (p *memPort) Read(buf []byte) (int, error) {
	select {
	case data := <-p.in:
		return copy(buf, data), nil
	case err := <-p.fail:
		return 0, err
	case <-p.closed:
		return 0, errors.New("closed")
	case <-time.After(p.timeout):
		return 0, nil
	}
}

func (p *memPort) Write(data []byte) (int, error) {
	if p.hold != nil {
		p.writing <- struct{}{}
		<-p.hold
	}
	select {
	case <-p.closed:
		return 0, errors.New("closed")
	default:
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.writes = append(p.writes, string(data))
	return len(data), nil
}

func (p *memPort) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

func (p *memPort) SetReadTimeout(d time.Duration) error {
	p.timeout = d
	return nil
}

func (p *memPort) written() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]string(nil), p.writes...)
}

type testOpener struct {
	lock  sync.Mutex
	ports []*memPort
	names []string
	err   error
}

func (o *testOpener) open(name string, mode *serial.Mode) (Port, error) {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	p := newMemPort()
	o.ports = append(o.ports, p)
	o.names = append(o.names, name)
	return p, nil
}

func (o *testOpener) port(n int) *memPort {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.ports[n]
}

func (o *testOpener) opened() int {
	o.lock.Lock()
	defer o.lock.Unlock()
	return len(o.ports)
}

func newTestLink(o *testOpener) *Link {
	return &Link{Opener: o.open, ReadTimeout: 10 * time.Millisecond}
}

func collect(ch chan Message) HandleMessageFunc {
	return func(msg Message) { ch <- msg }
}

func receive(t *testing.T, ch chan Message) Message {
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		require.FailNow(t, "no message")
	}
	return Message{}
}

func TestLinkWrites(t *testing.T) {
	o := &testOpener{}
	l := newTestLink(o)
	require.NoError(t, l.Connect("/dev/ttyACM0"))
	defer l.Disconnect()
	require.Equal(t, StateOpen, l.State())
	require.Equal(t, "/dev/ttyACM0", l.PortName())

	require.NoError(t, l.ResetProtocol())
	require.NoError(t, l.SendByte(0x02))
	require.NoError(t, l.SendBytes([]byte{0x00, 0xab, 0xff}))
	require.Equal(t, []string{"/", ":02", ":00", ":ab", ":ff"}, o.port(0).written())
}

func TestLinkDispatch(t *testing.T) {
	o := &testOpener{}
	l := newTestLink(o)
	msgs, debugs := make(chan Message, 4), make(chan Message, 4)
	l.SetMessageHandler(collect(msgs))
	l.SetDebugHandler(collect(debugs))
	require.NoError(t, l.Connect("COM3"))
	defer l.Disconnect()

	p := o.port(0)
	p.in <- []byte("~DBG#Receiving image^\ngarbage\n~AC")
	p.in <- []byte("K#IMG_RCVD^\r\n~ERR#bad^\n")

	require.Equal(t, Message{Kind: KindDebug, Payload: "Receiving image"}, receive(t, debugs))
	require.Equal(t, Message{Kind: KindAck, Payload: "IMG_RCVD"}, receive(t, msgs))
	require.Equal(t, Message{Kind: KindError, Payload: "bad"}, receive(t, msgs))
	require.Empty(t, debugs)
}

func TestLinkReplaceHandler(t *testing.T) {
	o := &testOpener{}
	l := newTestLink(o)
	first, second := make(chan Message, 1), make(chan Message, 1)
	l.SetMessageHandler(collect(first))
	l.SetMessageHandler(collect(second))
	require.NoError(t, l.Connect("COM3"))
	defer l.Disconnect()

	o.port(0).in <- []byte("~ACK#SPLASH^\n")
	require.Equal(t, "SPLASH", receive(t, second).Payload)
	require.Empty(t, first)
}

func TestLinkDisconnect(t *testing.T) {
	o := &testOpener{}
	l := newTestLink(o)
	require.NoError(t, l.Disconnect())
	require.NoError(t, l.Connect("COM3"))
	require.NoError(t, l.Disconnect())
	require.Equal(t, StateDisconnected, l.State())
	require.NoError(t, l.Disconnect())
	select {
	case <-o.port(0).closed:
	default:
		require.Fail(t, "port not closed")
	}
}

func TestLinkReconnectOnSend(t *testing.T) {
	o := &testOpener{}
	l := newTestLink(o)
	require.NoError(t, l.Connect("COM3"))
	defer l.Disconnect()

	o.port(0).fail <- errors.New("device unplugged")
	require.Eventually(t, func() bool {
		return l.State() == StateDisconnected
	}, time.Second, time.Millisecond)

	require.NoError(t, l.SendByte(0x04))
	require.Equal(t, StateOpen, l.State())
	require.Equal(t, 2, o.opened())
	require.Equal(t, []string{"COM3", "COM3"}, o.names)
	require.Equal(t, []string{":04"}, o.port(1).written())
	require.Empty(t, o.port(0).written())
}

func TestLinkReaderIgnoresStuckWrite(t *testing.T) {
	o := &testOpener{}
	l := newTestLink(o)
	msgs := make(chan Message, 1)
	l.SetMessageHandler(collect(msgs))
	require.NoError(t, l.Connect("COM3"))
	defer l.Disconnect()

	p := o.port(0)
	p.hold, p.writing = make(chan struct{}), make(chan struct{}, 1)
	sent := make(chan error, 1)
	go func() { sent <- l.SendByte(0x05) }()
	<-p.writing

	// several read timeouts pass while the writer holds the link
	time.Sleep(5 * l.ReadTimeout)
	p.in <- []byte("~ACK#CLR_SCR^\n")
	require.Equal(t, Message{Kind: KindAck, Payload: "CLR_SCR"}, receive(t, msgs))

	p.fail <- errors.New("device unplugged")
	require.Eventually(t, func() bool {
		return l.State() == StateDisconnected
	}, time.Second, time.Millisecond)
	select {
	case <-p.closed:
	case <-time.After(time.Second):
		require.FailNow(t, "port not closed by reader")
	}

	close(p.hold)
	require.Error(t, <-sent)
}

func TestLinkReconnectAfterDisconnect(t *testing.T) {
	o := &testOpener{}
	l := newTestLink(o)
	require.NoError(t, l.Connect("COM3"))
	require.NoError(t, l.Disconnect())
	require.NoError(t, l.ResetProtocol())
	defer l.Disconnect()
	require.Equal(t, []string{"/"}, o.port(1).written())
}

func TestLinkConnectReplacesPort(t *testing.T) {
	o := &testOpener{}
	l := newTestLink(o)
	require.NoError(t, l.Connect("COM3"))
	require.NoError(t, l.Connect("COM4"))
	defer l.Disconnect()
	<-o.port(0).closed
	require.Equal(t, "COM4", l.PortName())
}

func TestLinkConnectFailure(t *testing.T) {
	o := &testOpener{err: errors.New("access denied")}
	l := newTestLink(o)
	err := l.Connect("COM9")
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	require.Equal(t, "COM9", connErr.Port)
	require.Equal(t, StateDisconnected, l.State())

	err = l.SendByte(0x01)
	require.ErrorAs(t, err, &connErr)
}

func TestLinkNeverConnected(t *testing.T) {
	l := newTestLink(&testOpener{})
	require.ErrorIs(t, l.SendByte(0x01), ErrNotConnected)
}
