package feed

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/l1/comm"
	"github.com/robotalks/pursuit/pkg/l1/comm/mqtt"
)

// DefaultTopic is the topic targets are published to.
const DefaultTopic = "huber/robot/goal"

// Subscriber posts targets received from an MQTT topic into the loop.
type Subscriber struct {
	Queue *mqtt.Queue
	Topic string
}

// NewSubscriber creates a Subscriber.
func NewSubscriber(q *mqtt.Queue, topic string) *Subscriber {
	return &Subscriber{Queue: q, Topic: topic}
}

// AddToLoop implements LoopAdder.
func (s *Subscriber) AddToLoop(l *fx.Loop) {
	l.AddRunnable(fx.NamedRun("feed", s))
}

// Run implements Runnable.
func (s *Subscriber) Run(ctx context.Context) error {
	loopCtl := fx.LoopCtlFrom(ctx)
	return s.Queue.Serve(ctx, s.Topic, func(topic string, payload []byte) {
		s.HandlePayload(loopCtl, payload)
	})
}

// HandlePayload parses the payload and posts a TargetMsg.
// Malformed payloads are dropped.
func (s *Subscriber) HandlePayload(poster comm.MessagePoster, payload []byte) bool {
	target, ok := ParsePayload(payload)
	if !ok {
		glog.Warningf("feed %q: dropped payload %q", s.Topic, truncate(payload, 64))
		return false
	}
	glog.V(2).Infof("feed %q: target (%v, %v)", s.Topic, target.X, target.Y)
	poster.PostMessage(&TargetMsg{Target: target})
	poster.TriggerNext()
	return true
}

func truncate(data []byte, n int) []byte {
	if len(data) > n {
		return data[:n]
	}
	return data
}

// Config configures the feed subscriber.
type Config struct {
	// BrokerURL enables the feed, e.g. mqtt://host:port/topic-prefix
	BrokerURL string
	Topic     string
}

var defaultConfig = Config{
	Topic: DefaultTopic,
}

func init() {
	if val := os.Getenv("PURSUIT_FEED_URL"); val != "" {
		defaultConfig.BrokerURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BrokerURL, "feed-mqtt", defaultConfig.BrokerURL, "MQTT broker URL of the target feed, empty to disable.")
	flag.StringVar(&defaultConfig.Topic, "feed-topic", defaultConfig.Topic, "Topic of the target feed.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Enabled indicates a broker is configured.
func (c *Config) Enabled() bool {
	return c.BrokerURL != ""
}

// NewSubscriber creates the Subscriber.
func (c *Config) NewSubscriber() (*Subscriber, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("feed broker URL not specified")
	}
	q, err := mqtt.NewQueueFromURL(c.BrokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed broker URL: %w", err)
	}
	return NewSubscriber(q, c.Topic), nil
}
