package feed

import (
	"fmt"
	"time"

	"github.com/robotalks/pursuit/pkg/l1/comm/mqtt"
)

// DefaultPublishTimeout bounds the wait for a publish acknowledgement.
const DefaultPublishTimeout = 5 * time.Second

// Publisher publishes targets to a feed topic with the queue's QoS.
type Publisher struct {
	Queue   *mqtt.Queue
	Topic   string
	Format  string
	Retain  bool
	Timeout time.Duration
}

// Publish encodes a target and waits until it's sent.
func (p *Publisher) Publish(x, y float64) error {
	payload, err := Encode(p.Format, x, y)
	if err != nil {
		return err
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return p.Queue.Publish(p.Topic, payload, p.Retain, timeout)
}

// ParseLine parses an interactive input line "X Y" or "X,Y".
func ParseLine(line string) (Target, error) {
	target, ok := parseText(line)
	if !ok {
		return target, fmt.Errorf("invalid input %q, expect: X Y", line)
	}
	return target, nil
}
