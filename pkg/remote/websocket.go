package remote

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/DevOats/picoPaper/pkg/device"
)

const wsOrigin = "http://localhost/"

// WSReadWriter implements PacketReadWriter over a websocket connection,
// one packet per websocket message.
type WSReadWriter struct {
	Conn *websocket.Conn

	closed atomic.Bool
}

// NewWSReadWriter wraps websocket.Conn.
func NewWSReadWriter(conn *websocket.Conn) *WSReadWriter {
	return &WSReadWriter{Conn: conn}
}

// ReadPacket implements PacketReader. It returns io.EOF once closed.
func (p *WSReadWriter) ReadPacket() (pkt []byte, err error) {
	if err = websocket.Message.Receive(p.Conn, &pkt); err != nil && p.closed.Load() {
		err = io.EOF
	}
	return
}

// WritePacket implements PacketWriter.
func (p *WSReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send(p.Conn, pkt)
}

// Close implements io.Closer.
func (p *WSReadWriter) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.Conn.Close()
}

// WSHandler serves display to websocket clients. Every connection gets its
// own Server; the display rejects overlapping commands across connections.
func WSHandler(display device.Display) websocket.Handler {
	return func(ws *websocket.Conn) {
		glog.Infof("websocket client %s connected", ws.Request().RemoteAddr)
		server := NewServer(display, NewWSReadWriter(ws))
		if err := server.Run(ws.Request().Context()); err != nil {
			glog.Warningf("websocket client %s: %v", ws.Request().RemoteAddr, err)
		}
	}
}

// WSServer serves a display to websocket clients on Addr.
type WSServer struct {
	Addr    string
	Display device.Display
}

// Name implements Named.
func (s *WSServer) Name() string {
	return "websocket " + s.Addr
}

// Run implements Runnable.
func (s *WSServer) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: WSHandler(s.Display)}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	glog.Infof("serving websocket on %s", s.Addr)
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		srv.Close()
		<-errCh
		return ctx.Err()
	}
}

// DialWS connects a display served over websocket at url, e.g.
// ws://host:8086/.
func DialWS(ctx context.Context, url string) (*Conn, error) {
	config, err := websocket.NewConfig(url, wsOrigin)
	if err != nil {
		return nil, err
	}
	ws, err := config.DialContext(ctx)
	if err != nil {
		return nil, err
	}
	conn := NewConn(NewWSReadWriter(ws))
	conn.Start()
	return conn, nil
}
