package remote

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Connector finds and connects to displays registered on a broker.
type Connector struct {
	DiscoverTimeout time.Duration

	newQueue func() *Queue
}

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return NewConnectorWith(func() *Queue { return NewQueue(opts, topicPrefix) }), nil
}

// NewConnectorWith creates a Connector using newQueue for each broker
// connection.
func NewConnectorWith(newQueue func() *Queue) *Connector {
	return &Connector{DiscoverTimeout: DefaultDiscoverTimeout, newQueue: newQueue}
}

// Discover lists the displays with retained metadata.
func (c *Connector) Discover(ctx context.Context) (res []ControllerInfo, err error) {
	q := c.newQueue()
	defer q.Close()
	if err = waitToken(ctx, q.Connect()); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	resCh := make(chan ControllerInfo, 1)
	sub := q.Sub("+/+/meta", Handler(func(topic string, payload []byte) {
		items := strings.Split(topic, "/")
		if len(items) != 3 || len(payload) == 0 {
			return
		}
		info := ControllerInfo{Ref: ControllerRef{Type: items[0], ID: items[1]}}
		if err := json.Unmarshal(payload, &info.Meta); err != nil {
			glog.Warningf("invalid meta of %s: %v", info.Ref.Name(), err)
		}
		select {
		case resCh <- info:
		case <-done:
		}
	}))
	defer sub.Close()
	defer close(done)

	dur := c.DiscoverTimeout
	if dur <= 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.NewTimer(dur)
	defer timeout.Stop()
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-timeout.C:
			return res, nil
		case <-ctx.Done():
			return res, ctx.Err()
		}
	}
}

// Connect connects to a registered display.
func (c *Connector) Connect(ctx context.Context, ref ControllerRef) (*Conn, error) {
	q := c.newQueue()
	if err := waitToken(ctx, q.Connect()); err != nil {
		q.Close()
		return nil, err
	}
	rw := NewPacketReadWriter(q).ForConnector(ref)
	conn := NewConn(rw)
	conn.closer = q.Close
	conn.Start(rw)
	select {
	case <-rw.Ready():
		return conn, nil
	case <-ctx.Done():
		conn.Close()
		return nil, ctx.Err()
	}
}

func waitToken(ctx context.Context, token paho.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
