package api

import (
	"sync"

	"github.com/golang/glog"
	"github.com/labstack/echo/v4"
	"golang.org/x/net/websocket"

	wsrw "github.com/robotalks/pursuit/pkg/l1/comm/websocket"
	"github.com/robotalks/pursuit/pkg/sim/driver"
	"github.com/robotalks/pursuit/pkg/sim/export"
)

// DefaultStreamBacklog is the number of frames queued per client
// before new frames are dropped for it.
const DefaultStreamBacklog = 4

// Streamer broadcasts plot window frames (msgpack) to websocket clients.
type Streamer struct {
	Backlog int

	lock    sync.Mutex
	clients map[*streamClient]struct{}
}

type streamClient struct {
	frames chan []byte
}

// NewStreamer creates a Streamer.
func NewStreamer() *Streamer {
	return &Streamer{Backlog: DefaultStreamBacklog}
}

// ChartWindow implements tracker.WindowCharter. It's invoked on the
// loop goroutine and never blocks on clients.
func (s *Streamer) ChartWindow(runID string, steps uint64, window []driver.StepRecord) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.clients) == 0 {
		return
	}
	data, err := export.EncodeWindow(runID, steps, window)
	if err != nil {
		glog.Errorf("encode window error: %v", err)
		return
	}
	for c := range s.clients {
		select {
		case c.frames <- data:
		default:
			glog.V(2).Info("stream client lagging, frame dropped")
		}
	}
}

// Clients returns the number of connected clients.
func (s *Streamer) Clients() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.clients)
}

// Serve streams frames to a websocket connection until it's closed.
func (s *Streamer) Serve(conn *websocket.Conn) {
	rw := wsrw.New(conn)
	c := s.add()
	defer s.remove(c)

	closed := rw.Drain()
	for {
		select {
		case data := <-c.frames:
			if err := rw.WritePacket(data); err != nil {
				glog.V(2).Infof("stream client write error: %v", err)
				return
			}
		case <-closed:
			return
		}
	}
}

// Handler returns the echo handler upgrading to websocket.
func (s *Streamer) Handler() echo.HandlerFunc {
	return echo.WrapHandler(websocket.Handler(s.Serve))
}

func (s *Streamer) add() *streamClient {
	backlog := s.Backlog
	if backlog <= 0 {
		backlog = DefaultStreamBacklog
	}
	c := &streamClient{frames: make(chan []byte, backlog)}
	s.lock.Lock()
	if s.clients == nil {
		s.clients = make(map[*streamClient]struct{})
	}
	s.clients[c] = struct{}{}
	s.lock.Unlock()
	return c
}

func (s *Streamer) remove(c *streamClient) {
	s.lock.Lock()
	delete(s.clients, c)
	s.lock.Unlock()
}
