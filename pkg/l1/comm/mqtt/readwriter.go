package mqtt

import (
	"context"
	"io"

	"github.com/robotalks/pursuit/pkg/l1"
)

// L1 topics of a controller, relative to its ref name.
const (
	TopicCmd  = "cmd"
	TopicMsg  = "msg"
	TopicMeta = "meta"
	// MetaFilter matches the meta topics of all controllers.
	MetaFilter = "+/+/" + TopicMeta
)

// ControllerTopic builds the topic of a controller.
func ControllerTopic(ref l1.ControllerRef, name string) string {
	return ref.Name() + "/" + name
}

// DefaultBacklog is the number of received packets buffered before the
// MQTT client blocks.
const DefaultBacklog = 16

// ReadWriter implements PacketReadWriter over a pair of topics.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
	done     chan struct{}
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, DefaultBacklog),
		done:     make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForConnector reads replies and events from <ref>/msg and writes
// commands to <ref>/cmd.
func (p *ReadWriter) ForConnector(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(ControllerTopic(ref, TopicMsg), ControllerTopic(ref, TopicCmd))
}

// ForController reads commands from <ref>/cmd and writes replies and
// events to <ref>/msg.
func (p *ReadWriter) ForController(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(ControllerTopic(ref, TopicCmd), ControllerTopic(ref, TopicMsg))
}

// ReadPacket implements PacketReader. It returns io.EOF once Run stopped.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter with the queue's QoS.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return p.Queue.Publish(p.PubTopic, pkt, false, 0)
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, p.handleMsg)
	defer sub.Close()
	defer close(p.done)
	<-ctx.Done()
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.done:
	}
}
