package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/l1"
	"github.com/robotalks/pursuit/pkg/l1/comm"
)

// MetaQoS is used for the retained meta topic.
const MetaQoS = 1

// Registrar announces a controller with a retained <ref>/meta message
// and serves commands on <ref>/cmd. The meta topic is cleared on exit,
// or by the broker through the will when the connection is lost.
type Registrar struct {
	Queue *Queue
	Info  l1.ControllerInfo

	meta      []byte
	registrar comm.Registrar
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info l1.ControllerInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	b, err := ParseBrokerURL(brokerURL)
	if err != nil {
		return nil, err
	}
	metaTopic := ControllerTopic(info.Ref, TopicMeta)
	b.Options.SetBinaryWill(b.TopicPrefix+metaTopic, nil, MetaQoS, true)
	if b.Options.ClientID == "" {
		b.Options.SetClientID("pursuit:" + info.Ref.Name())
	}
	r := &Registrar{
		Queue: b.NewQueue(),
		Info:  info,
		meta:  meta,
	}
	r.Queue.OnConnect = func(*Queue) {
		if err := r.announce(r.meta); err != nil {
			glog.Warningf("announce %s error: %v", info.Ref.Name(), err)
		}
	}
	r.registrar.Init(NewPacketReadWriter(r.Queue).ForController(info.Ref))
	return r, nil
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.registrar.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.registrar)
	loop.AddRunnable(fx.NamedRun("mqtt-registrar", r))
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	r.Queue.Connect()
	<-ctx.Done()
	if err := r.announce(nil); err != nil {
		glog.Warningf("clear %s meta error: %v", r.Info.Ref.Name(), err)
	}
	return r.Queue.Close()
}

func (r *Registrar) announce(meta []byte) error {
	token := r.Queue.PubWith(ControllerTopic(r.Info.Ref, TopicMeta), meta, MetaQoS, true)
	return waitToken(token, time.Second, "announce")
}
