package remote

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DevOats/picoPaper/pkg/device"
)

func TestWebSocket(t *testing.T) {
	display := &fakeDisplay{Info: testInfo}
	srv := httptest.NewServer(WSHandler(display))
	defer srv.Close()

	ctx := context.Background()
	conn, err := DialWS(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/")
	require.NoError(t, err)

	info, err := conn.Identify(ctx)
	require.NoError(t, err)
	require.Equal(t, testInfo, info)
	require.NoError(t, conn.DrawString(ctx, device.Text{Value: "ws"}))
	require.NoError(t, conn.Close())
	require.Equal(t, []string{"ident", "text"}, display.Calls())
}

func TestDialWSRefused(t *testing.T) {
	srv := httptest.NewServer(WSHandler(&fakeDisplay{}))
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	srv.Close()

	_, err := DialWS(context.Background(), url)
	require.Error(t, err)
}
