package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/pursuit/pkg/l1"
	"github.com/robotalks/pursuit/pkg/l1/comm"
)

// Connector implements l1.Connector using MQTT.
type Connector struct {
	DiscoverTimeout time.Duration
	ConnectTimeout  time.Duration

	broker *BrokerURL
}

// Defaults of Connector.
const (
	DefaultDiscoverTimeout = 500 * time.Millisecond
	DefaultConnectTimeout  = 5 * time.Second
)

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	b, err := ParseBrokerURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		ConnectTimeout:  DefaultConnectTimeout,
		broker:          b,
	}, nil
}

// ParseMeta decodes a retained meta message. An empty payload means
// the controller is gone.
func ParseMeta(topic string, payload []byte) (l1.ControllerInfo, bool) {
	levels := strings.Split(topic, "/")
	if len(levels) != 3 || levels[2] != TopicMeta || len(payload) == 0 {
		return l1.ControllerInfo{}, false
	}
	info := l1.ControllerInfo{Ref: l1.ControllerRef{Type: levels[0], ID: levels[1]}}
	if err := json.Unmarshal(payload, &info.Meta); err != nil {
		glog.V(1).Infof("%s: bad meta: %v", topic, err)
	}
	return info, true
}

// Discover implements Connector. It collects the retained meta messages
// received within DiscoverTimeout.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	q := c.broker.NewQueue()
	if err := q.ConnectWait(c.ConnectTimeout); err != nil {
		return nil, err
	}
	defer q.Close()

	found := make(chan l1.ControllerInfo, 16)
	done := make(chan struct{})
	defer close(done)
	q.Sub(MetaFilter, func(topic string, payload []byte) {
		if info, ok := ParseMeta(topic, payload); ok {
			select {
			case found <- info:
			case <-done:
			}
		}
	})

	dur := c.DiscoverTimeout
	if dur <= 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	seen := make(map[l1.ControllerRef]bool)
	var res []l1.ControllerInfo
	for {
		select {
		case info := <-found:
			if !seen[info.Ref] {
				seen[info.Ref] = true
				res = append(res, info)
			}
		case <-timeout:
			return res, nil
		case <-ctx.Done():
			return res, ctx.Err()
		}
	}
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	conn := &ControllerConn{Queue: c.broker.NewQueue()}
	conn.Init(NewPacketReadWriter(conn.Queue).ForConnector(ref))
	timeout := c.ConnectTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := conn.Queue.ConnectWait(timeout); err != nil {
		return nil, err
	}
	return conn, nil
}

// ControllerConn implements ControllerConn using MQTT.
type ControllerConn struct {
	comm.ControllerConn
	Queue *Queue
}
