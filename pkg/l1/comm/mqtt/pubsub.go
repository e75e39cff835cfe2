package mqtt

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received. Topic has the
// queue's TopicPrefix removed.
type Handler func(topic string, payload []byte)

// ConnectHandler is to handle connect/disconnect events.
type ConnectHandler func(*Queue)

// Queue wraps an MQTT client. All topics are relative to TopicPrefix,
// QoS applies to subscriptions and to Post and Publish.
type Queue struct {
	Client       paho.Client
	TopicPrefix  string
	QoS          byte
	OnConnect    ConnectHandler
	OnDisconnect ConnectHandler

	lock sync.RWMutex
	subs map[string][]*Subscription
}

// Subscription is a handler registered for a topic filter.
type Subscription struct {
	Token paho.Token

	queue   *Queue
	filter  string
	handler Handler
}

// IsFilter tells whether a topic contains wildcards.
func IsFilter(topic string) bool {
	return strings.Contains(topic, "+") || strings.HasSuffix(topic, "#")
}

// MatchTopic matches a topic against a filter: + matches one level,
// a trailing # matches the parent and any number of levels.
func MatchTopic(topic, filter string) bool {
	levels, patterns := strings.Split(topic, "/"), strings.Split(filter, "/")
	for i, p := range patterns {
		if p == "#" {
			return i+1 == len(patterns)
		}
		if i >= len(levels) || (p != "+" && p != levels[i]) {
			return false
		}
	}
	return len(levels) == len(patterns)
}

// BrokerURL is a parsed broker URL:
//
//	mqtt|tcp|ssl|ws|wss://[user[:password]@]host:port[/topic-prefix/][?client-id=ID&qos=N]
type BrokerURL struct {
	Options     *paho.ClientOptions
	TopicPrefix string
	QoS         byte
}

// ParseBrokerURL parses a broker URL.
func ParseBrokerURL(brokerURL string) (*BrokerURL, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, err
	}
	scheme := u.Scheme
	switch scheme {
	case "", "mqtt":
		scheme = "tcp"
	case "tcp", "ssl", "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported broker scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("broker host missing in %q", brokerURL)
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	query := u.Query()
	if clientID := query.Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	b := &BrokerURL{Options: opts, TopicPrefix: strings.TrimPrefix(u.Path, "/")}
	if val := query.Get("qos"); val != "" {
		qos, err := strconv.ParseUint(val, 10, 8)
		if err != nil || qos > 2 {
			return nil, fmt.Errorf("invalid qos %q", val)
		}
		b.QoS = byte(qos)
	}
	return b, nil
}

// NewQueue creates a Queue for the broker.
func (b *BrokerURL) NewQueue() *Queue {
	q := NewQueue(b.Options, b.TopicPrefix)
	q.QoS = b.QoS
	return q
}

// NewQueue creates Queue.
func NewQueue(options *paho.ClientOptions, topicPrefix string) *Queue {
	q := &Queue{TopicPrefix: topicPrefix}
	options.SetOnConnectHandler(q.OnConnectHandler)
	options.SetConnectionLostHandler(q.ConnectionLostHandler)
	q.Client = paho.NewClient(options)
	return q
}

// NewQueueFromURL creates Queue from a broker URL.
func NewQueueFromURL(brokerURL string) (*Queue, error) {
	b, err := ParseBrokerURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return b.NewQueue(), nil
}

// Connect starts connecting, the client keeps reconnecting after.
func (q *Queue) Connect() paho.Token {
	return q.Client.Connect()
}

// ConnectWait connects and waits up to timeout for the first
// connection.
func (q *Queue) ConnectWait(timeout time.Duration) error {
	return waitToken(q.Connect(), timeout, "connect")
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(250)
	return nil
}

// Sub adds a handler for a topic or filter. The broker subscription
// is made for the first handler of a filter only.
func (q *Queue) Sub(filter string, handler Handler) *Subscription {
	sub := &Subscription{queue: q, filter: filter, handler: handler}
	q.lock.Lock()
	if q.subs == nil {
		q.subs = make(map[string][]*Subscription)
	}
	first := len(q.subs[filter]) == 0
	q.subs[filter] = append(q.subs[filter], sub)
	q.lock.Unlock()

	if first {
		glog.V(2).Infof("SUB %q qos %d", q.TopicPrefix+filter, q.QoS)
		sub.Token = q.Client.Subscribe(q.TopicPrefix+filter, q.QoS, q.dispatch)
	} else {
		sub.Token = &paho.DummyToken{}
	}
	return sub
}

// Serve subscribes handler to filter, connects and blocks until ctx
// is done, then unsubscribes and disconnects.
func (q *Queue) Serve(ctx context.Context, filter string, handler Handler) error {
	sub := q.Sub(filter, handler)
	q.Connect()
	<-ctx.Done()
	sub.Close()
	return q.Close()
}

// Pub publishes with QoS 0.
func (q *Queue) Pub(topic string, payload []byte) paho.Token {
	return q.PubWith(topic, payload, 0, false)
}

// PubWith publishes with explicit QoS and retain settings.
func (q *Queue) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	return q.Client.Publish(q.TopicPrefix+topic, qos, retain, payload)
}

// Post publishes with the queue's QoS without waiting. Delivery errors
// are logged.
func (q *Queue) Post(topic string, payload []byte, retain bool) {
	token := q.PubWith(topic, payload, q.QoS, retain)
	go func() {
		if token.Wait() && token.Error() != nil {
			glog.Warningf("publish %q error: %v", topic, token.Error())
		}
	}()
}

// Publish publishes with the queue's QoS and waits up to timeout.
func (q *Queue) Publish(topic string, payload []byte, retain bool, timeout time.Duration) error {
	return waitToken(q.PubWith(topic, payload, q.QoS, retain), timeout, "publish to "+strconv.Quote(topic))
}

// Resubscribe subscribes all filters again. It's used on (re)connect
// as sessions are clean.
func (q *Queue) Resubscribe() paho.Token {
	filters := make(map[string]byte)
	q.lock.RLock()
	for filter := range q.subs {
		filters[q.TopicPrefix+filter] = q.QoS
	}
	q.lock.RUnlock()
	if len(filters) == 0 {
		return &paho.DummyToken{}
	}
	if glog.V(2) {
		for filter := range filters {
			glog.Infof("SUB %q qos %d", filter, q.QoS)
		}
	}
	return q.Client.SubscribeMultiple(filters, q.dispatch)
}

// OnConnectHandler is the default implementation of paho.OnConnectHandler.
func (q *Queue) OnConnectHandler(paho.Client) {
	glog.Infof("connected, topic prefix %q", q.TopicPrefix)
	q.Resubscribe()
	if h := q.OnConnect; h != nil {
		h(q)
	}
}

// ConnectionLostHandler is the default implementation of paho.ConnectLostHandler.
func (q *Queue) ConnectionLostHandler(c paho.Client, err error) {
	glog.Warningf("connection lost: %v", err)
	if h := q.OnDisconnect; h != nil {
		h(q)
	}
}

func (q *Queue) dispatch(c paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if !strings.HasPrefix(topic, q.TopicPrefix) {
		return
	}
	topic = topic[len(q.TopicPrefix):]
	glog.V(2).Infof("RCV %q", topic)
	for _, h := range q.handlers(topic) {
		h(topic, msg.Payload())
	}
}

func (q *Queue) handlers(topic string) []Handler {
	q.lock.RLock()
	defer q.lock.RUnlock()
	var handlers []Handler
	for filter, subs := range q.subs {
		if filter == topic || (IsFilter(filter) && MatchTopic(topic, filter)) {
			for _, sub := range subs {
				handlers = append(handlers, sub.handler)
			}
		}
	}
	return handlers
}

// Close removes the handler, the last handler of a filter unsubscribes.
func (s *Subscription) Close() error {
	q := s.queue
	q.lock.Lock()
	subs, found := q.subs[s.filter], false
	for i, sub := range subs {
		if sub == s {
			subs, found = append(subs[:i], subs[i+1:]...), true
			break
		}
	}
	if !found {
		q.lock.Unlock()
		return nil
	}
	last := len(subs) == 0
	if last {
		delete(q.subs, s.filter)
	} else {
		q.subs[s.filter] = subs
	}
	q.lock.Unlock()
	if !last || !q.Client.IsConnected() {
		return nil
	}
	glog.V(2).Infof("UNSUB %q", s.filter)
	return waitToken(q.Client.Unsubscribe(q.TopicPrefix+s.filter), time.Second, "unsubscribe")
}

func waitToken(token paho.Token, timeout time.Duration, what string) error {
	if timeout > 0 {
		if !token.WaitTimeout(timeout) {
			return fmt.Errorf("%s timed out after %v", what, timeout)
		}
	} else {
		token.Wait()
	}
	return token.Error()
}
