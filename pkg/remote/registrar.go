package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/golang/glog"

	"github.com/DevOats/picoPaper/pkg/device"
	fx "github.com/DevOats/picoPaper/pkg/framework"
)

// Registrar registers a display on an MQTT broker and serves commands for
// it. The retained metadata is cleared on exit and by the broker (will
// message) when the connection is lost.
type Registrar struct {
	Queue  *Queue
	Info   ControllerInfo
	Server *Server

	metaJSON []byte
	rw       *ReadWriter
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info ControllerInfo, display device.Display) (*Registrar, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+info.Ref.Name()+"/meta", nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID(ControllerType + ":" + info.Ref.Name())
	}
	return NewRegistrarWithQueue(NewQueue(opts, topicPrefix), info, display), nil
}

// NewRegistrarWithQueue creates a Registrar on an existing Queue.
func NewRegistrarWithQueue(q *Queue, info ControllerInfo, display device.Display) *Registrar {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		panic(err)
	}
	r := &Registrar{
		Queue:    q,
		Info:     info,
		metaJSON: meta,
		rw:       NewPacketReadWriter(q).ForController(info.Ref),
	}
	r.Server = NewServer(display, r.rw)
	q.OnConnect = func(*Queue) { r.onConnected() }
	return r
}

// Name implements Named.
func (r *Registrar) Name() string {
	return "registrar " + r.Info.Ref.Name()
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	token := r.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect broker: %w", err)
	}
	err := fx.NewRunnerWith(ctx).Go(r.rw, r.Server).Wait()
	r.Queue.PubWith(r.Info.Ref.Name()+"/meta", nil, 1, true).Wait()
	r.Queue.Close()
	return err
}

func (r *Registrar) onConnected() {
	glog.Infof("registered %s", r.Info.Ref.Name())
	r.Queue.PubWith(r.Info.Ref.Name()+"/meta", r.metaJSON, 1, true)
}
