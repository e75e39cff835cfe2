package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func TestReadWriterEcho(t *testing.T) {
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		rw := New(conn)
		for {
			pkt, err := rw.ReadPacket()
			if err != nil {
				return
			}
			if err := rw.WritePacket(append([]byte("re:"), pkt...)); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := websocket.Dial(url, "", srv.URL)
	require.NoError(t, err)
	rw := New(conn)
	require.NoError(t, rw.WritePacket([]byte{0x01, 0x02}))
	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("re:\x01\x02"), pkt)

	require.NoError(t, rw.Close())
	_, err = rw.ReadPacket()
	require.Error(t, err)
}

func TestDrainClosesWithPeer(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		<-New(conn).Drain()
		close(done)
	}))
	defer srv.Close()

	conn, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), "", srv.URL)
	require.NoError(t, err)
	require.NoError(t, New(conn).WritePacket([]byte("ignored")))
	conn.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("drain did not finish")
	}
}
