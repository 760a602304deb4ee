package remote

import (
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// memBroker is an in-process MQTT broker for memClients.
type memBroker struct {
	lock      sync.Mutex
	clients   []*memClient
	retained  map[string][]byte
	published []string
}

type memClient struct {
	broker    *memBroker
	onConnect paho.OnConnectHandler
	connected bool
	subs      map[string]paho.MessageHandler
}

type memMessage struct {
	topic    string
	payload  []byte
	retained bool
}

type memToken struct {
	err error
}

type delivery struct {
	client  *memClient
	handler paho.MessageHandler
	msg     *memMessage
}

func newMemBroker() *memBroker {
	return &memBroker{retained: make(map[string][]byte)}
}

// queue creates a Queue with its own client on the broker.
func (b *memBroker) queue(prefix string) *Queue {
	c := &memClient{broker: b, subs: make(map[string]paho.MessageHandler)}
	q := &Queue{Client: c, TopicPrefix: prefix}
	c.onConnect = q.OnConnectHandler
	b.lock.Lock()
	b.clients = append(b.clients, c)
	b.lock.Unlock()
	return q
}

func (b *memBroker) Retained(topic string) ([]byte, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	payload, ok := b.retained[topic]
	return payload, ok
}

func (b *memBroker) Published() []string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]string(nil), b.published...)
}

func (b *memBroker) publish(topic string, payload []byte, retain bool) {
	var deliveries []delivery
	b.lock.Lock()
	b.published = append(b.published, topic)
	if retain {
		if len(payload) == 0 {
			delete(b.retained, topic)
		} else {
			b.retained[topic] = payload
		}
	}
	for _, c := range b.clients {
		if !c.connected {
			continue
		}
		for filter, handler := range c.subs {
			if MatchTopic(topic, filter) {
				deliveries = append(deliveries, delivery{c, handler, &memMessage{topic: topic, payload: payload}})
			}
		}
	}
	b.lock.Unlock()
	for _, d := range deliveries {
		d.handler(d.client, d.msg)
	}
}

// subscribe must hold the lock.
func (b *memBroker) subscribe(c *memClient, filter string, handler paho.MessageHandler) {
	c.subs[filter] = handler
	var deliveries []delivery
	for topic, payload := range b.retained {
		if MatchTopic(topic, filter) {
			deliveries = append(deliveries, delivery{c, handler, &memMessage{topic: topic, payload: payload, retained: true}})
		}
	}
	if len(deliveries) == 0 {
		return
	}
	go func() {
		for _, d := range deliveries {
			d.handler(d.client, d.msg)
		}
	}()
}

func (c *memClient) IsConnected() bool {
	c.broker.lock.Lock()
	defer c.broker.lock.Unlock()
	return c.connected
}

func (c *memClient) IsConnectionOpen() bool {
	return c.IsConnected()
}

func (c *memClient) Connect() paho.Token {
	c.broker.lock.Lock()
	c.connected = true
	c.broker.lock.Unlock()
	if c.onConnect != nil {
		c.onConnect(c)
	}
	return &memToken{}
}

func (c *memClient) Disconnect(uint) {
	c.broker.lock.Lock()
	c.connected = false
	c.subs = make(map[string]paho.MessageHandler)
	c.broker.lock.Unlock()
}

func (c *memClient) Publish(topic string, _ byte, retained bool, payload any) paho.Token {
	var data []byte
	switch p := payload.(type) {
	case []byte:
		data = p
	case string:
		data = []byte(p)
	}
	c.broker.publish(topic, data, retained)
	return &memToken{}
}

func (c *memClient) Subscribe(topic string, _ byte, callback paho.MessageHandler) paho.Token {
	c.broker.lock.Lock()
	defer c.broker.lock.Unlock()
	c.broker.subscribe(c, topic, callback)
	return &memToken{}
}

func (c *memClient) SubscribeMultiple(filters map[string]byte, callback paho.MessageHandler) paho.Token {
	c.broker.lock.Lock()
	defer c.broker.lock.Unlock()
	for filter := range filters {
		c.broker.subscribe(c, filter, callback)
	}
	return &memToken{}
}

func (c *memClient) Unsubscribe(topics ...string) paho.Token {
	c.broker.lock.Lock()
	defer c.broker.lock.Unlock()
	for _, topic := range topics {
		delete(c.subs, topic)
	}
	return &memToken{}
}

func (*memClient) AddRoute(string, paho.MessageHandler) {}

func (*memClient) OptionsReader() paho.ClientOptionsReader {
	return paho.ClientOptionsReader{}
}

func (m *memMessage) Duplicate() bool   { return false }
func (m *memMessage) Qos() byte         { return 0 }
func (m *memMessage) Retained() bool    { return m.retained }
func (m *memMessage) Topic() string     { return m.topic }
func (m *memMessage) MessageID() uint16 { return 0 }
func (m *memMessage) Payload() []byte   { return m.payload }
func (m *memMessage) Ack()              {}

func (*memToken) Wait() bool                     { return true }
func (*memToken) WaitTimeout(time.Duration) bool { return true }
func (*memToken) Done() <-chan struct{}          { return closedCh }
func (t *memToken) Error() error                 { return t.err }
