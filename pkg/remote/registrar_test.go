package remote

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DevOats/picoPaper/pkg/device"
)

func TestRegistrarDiscoverConnect(t *testing.T) {
	b := newMemBroker()
	display := &fakeDisplay{Info: testInfo}
	info := ControllerInfo{
		Ref:  ControllerRef{Type: ControllerType, ID: "desk"},
		Meta: ControllerMeta{Description: "desk display"},
	}
	reg := NewRegistrarWithQueue(b.queue("pp/"), info, display)
	require.Equal(t, "registrar picopaper/desk", reg.Name())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- reg.Run(ctx) }()

	select {
	case <-reg.rw.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("registrar not subscribed")
	}
	meta, ok := b.Retained("pp/picopaper/desk/meta")
	require.True(t, ok)
	var decoded ControllerMeta
	require.NoError(t, json.Unmarshal(meta, &decoded))
	require.Equal(t, info.Meta, decoded)

	connector := NewConnectorWith(func() *Queue { return b.queue("pp/") })
	connector.DiscoverTimeout = 50 * time.Millisecond
	found, err := connector.Discover(context.Background())
	require.NoError(t, err)
	require.Equal(t, []ControllerInfo{info}, found)

	conn, err := connector.Connect(context.Background(), info.Ref)
	require.NoError(t, err)
	got, err := conn.Identify(context.Background())
	require.NoError(t, err)
	require.Equal(t, testInfo, got)
	require.NoError(t, conn.DrawString(context.Background(), device.Text{X: 5, Y: 6, Value: "remote"}))
	require.NoError(t, conn.Disconnect())
	require.Equal(t, []string{"ident", "text"}, display.Calls())

	cancel()
	require.NoError(t, <-errCh)
	_, ok = b.Retained("pp/picopaper/desk/meta")
	require.False(t, ok)

	found, err = connector.Discover(context.Background())
	require.NoError(t, err)
	require.Empty(t, found)
}
