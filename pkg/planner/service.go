package planner

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/pursuit/pkg/feed"
	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/l1/comm"
	"github.com/robotalks/pursuit/pkg/l1/comm/mqtt"
	"github.com/robotalks/pursuit/pkg/sim"
)

// Default topics
const (
	DefaultCmdTopic    = "huber/robot/plan/cmd"
	DefaultStatusTopic = "huber/robot/plan/status"
	DefaultGoalTopic   = feed.DefaultTopic
)

// DefaultInterval is the period of goals.
const DefaultInterval = 100 * time.Millisecond

// RequestMsg carries a request received from the command topic.
type RequestMsg struct {
	Request *Request
}

// NewMessage implements Message.
func (m *RequestMsg) NewMessage() fx.Message { return &RequestMsg{} }

// Publisher sends payloads to topics without waiting, *mqtt.Queue
// publishes with its QoS.
type Publisher interface {
	Post(topic string, payload []byte, retain bool)
}

// Service runs a Planner in a loop: commands are applied as they
// arrive and goals are published every Interval.
type Service struct {
	Planner     *Planner
	Queue       *mqtt.Queue
	Publisher   Publisher
	CmdTopic    string
	GoalTopic   string
	StatusTopic string
	Interval    time.Duration
	Retain      bool

	next time.Time
}

// AddToLoop implements LoopAdder.
func (s *Service) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvControl, fx.ControlFunc(s.handleRequests))
	l.AddController(fx.PrLvAcuate, fx.ControlFunc(s.tick))
	if s.Queue != nil {
		l.AddRunnable(fx.NamedRun("planner-mqtt", s))
	}
}

// Run implements Runnable.
func (s *Service) Run(ctx context.Context) error {
	loopCtl := fx.LoopCtlFrom(ctx)
	return s.Queue.Serve(ctx, s.CmdTopic, func(topic string, payload []byte) {
		s.HandlePayload(loopCtl, payload)
	})
}

// HandlePayload decodes a command payload and posts it into the loop.
// Undecodable payloads are reported on the status topic from the loop.
func (s *Service) HandlePayload(poster comm.MessagePoster, payload []byte) {
	req, err := ParseRequest(payload)
	if err != nil {
		glog.Warningf("invalid command payload: %v", err)
		req = &Request{}
	}
	poster.PostMessage(&RequestMsg{Request: req})
	poster.TriggerNext()
}

func (s *Service) handleRequests(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		if msg, ok := mctx.CurrentMessage().(*RequestMsg); ok {
			mctx.MessageTaken()
			s.publishStatus(s.Planner.Apply(msg.Request, cc.Time()))
		}
	}))
	return nil
}

func (s *Service) tick(cc fx.ControlContext) error {
	now := cc.Time()
	if now.Before(s.next) {
		return nil
	}
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	// fall back to now if behind by more than a tick.
	if s.next.IsZero() || now.Sub(s.next) >= interval {
		s.next = now
	}
	s.next = s.next.Add(interval)

	payload, err := feed.EncodeGoal(s.Planner.Tick(now))
	if err != nil {
		return err
	}
	s.Publisher.Post(s.GoalTopic, payload, s.Retain)
	return nil
}

func (s *Service) publishStatus(st *Status) {
	if st.OK {
		glog.Infof("command: %s", st.Note)
	} else {
		glog.Warningf("command rejected: %s", st.Note)
	}
	payload, err := json.Marshal(st)
	if err != nil {
		glog.Errorf("encode status error: %v", err)
		return
	}
	s.Publisher.Post(s.StatusTopic, payload, false)
}

// Config configures the planner service.
type Config struct {
	BrokerURL   string
	CmdTopic    string
	GoalTopic   string
	StatusTopic string
	Interval    time.Duration
	QoS         uint
	Retain      bool
	// YPositive is the y convention of published goals, up or down.
	YPositive string
	HalfWidth   float64
	HalfHeight  float64
}

var defaultConfig = Config{
	BrokerURL:   "mqtt://localhost:1883",
	CmdTopic:    DefaultCmdTopic,
	GoalTopic:   DefaultGoalTopic,
	StatusTopic: DefaultStatusTopic,
	Interval:    DefaultInterval,
	YPositive:   "up",
	HalfWidth:   500,
	HalfHeight:  300,
}

func init() {
	if val := os.Getenv("PURSUIT_PLANNER_URL"); val != "" {
		defaultConfig.BrokerURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BrokerURL, "mqtt", defaultConfig.BrokerURL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.CmdTopic, "cmd-topic", defaultConfig.CmdTopic, "Topic of planner commands.")
	flag.StringVar(&defaultConfig.GoalTopic, "goal-topic", defaultConfig.GoalTopic, "Topic goals are published to.")
	flag.StringVar(&defaultConfig.StatusTopic, "status-topic", defaultConfig.StatusTopic, "Topic status is published to.")
	flag.DurationVar(&defaultConfig.Interval, "dt", defaultConfig.Interval, "Interval between goals.")
	flag.UintVar(&defaultConfig.QoS, "qos", defaultConfig.QoS, "MQTT QoS, 0 to 2.")
	flag.BoolVar(&defaultConfig.Retain, "retain", defaultConfig.Retain, "Retain the last goal.")
	flag.StringVar(&defaultConfig.YPositive, "y-positive", defaultConfig.YPositive, "Published y convention: up or down.")
	flag.Float64Var(&defaultConfig.HalfWidth, "ws-half-width", defaultConfig.HalfWidth, "Half width of the planner workspace (mm).")
	flag.Float64Var(&defaultConfig.HalfHeight, "ws-half-height", defaultConfig.HalfHeight, "Half height of the planner workspace (mm).")
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

// Validate checks the config.
func (c *Config) Validate() error {
	if c.QoS > 2 {
		return fmt.Errorf("invalid qos %d", c.QoS)
	}
	if c.YPositive != "up" && c.YPositive != "down" {
		return fmt.Errorf("invalid y-positive %q, expect up or down", c.YPositive)
	}
	if c.HalfWidth <= 0 || c.HalfHeight <= 0 {
		return fmt.Errorf("workspace must not be empty")
	}
	if c.Interval < 10*time.Millisecond {
		return fmt.Errorf("interval %v too short", c.Interval)
	}
	return nil
}

// NewService creates the Service connected to the broker.
func (c *Config) NewService() (*Service, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	q, err := mqtt.NewQueueFromURL(c.BrokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid broker URL: %w", err)
	}
	if c.QoS > 0 {
		q.QoS = byte(c.QoS)
	}
	p := New(sim.RectAround(c.HalfWidth, c.HalfHeight))
	p.YDown = c.YPositive == "down"
	return &Service{
		Planner:     p,
		Queue:       q,
		Publisher:   q,
		CmdTopic:    c.CmdTopic,
		GoalTopic:   c.GoalTopic,
		StatusTopic: c.StatusTopic,
		Interval:    c.Interval,
		Retain:      c.Retain,
	}, nil
}
