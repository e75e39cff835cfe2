package websocket

import (
	"time"

	"golang.org/x/net/websocket"
)

// DefaultWriteTimeout bounds a single packet write.
const DefaultWriteTimeout = 5 * time.Second

// ReadWriter implements PacketReadWriter over a websocket connection,
// one binary frame per packet.
type ReadWriter struct {
	Conn         *websocket.Conn
	WriteTimeout time.Duration
}

// New wraps websocket.Conn and switches it to binary frames.
func New(conn *websocket.Conn) *ReadWriter {
	conn.PayloadType = websocket.BinaryFrame
	return &ReadWriter{Conn: conn, WriteTimeout: DefaultWriteTimeout}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive(p.Conn, &pkt)
	return
}

// WritePacket implements PacketWriter. A write exceeding WriteTimeout
// fails and leaves the connection unusable.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	if p.WriteTimeout > 0 {
		if err := p.Conn.SetWriteDeadline(time.Now().Add(p.WriteTimeout)); err != nil {
			return err
		}
	}
	return websocket.Message.Send(p.Conn, pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return p.Conn.Close()
}

// Drain discards incoming packets in the background. The returned
// channel is closed when the peer goes away.
func (p *ReadWriter) Drain() <-chan struct{} {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, err := p.ReadPacket(); err != nil {
				return
			}
		}
	}()
	return closed
}
