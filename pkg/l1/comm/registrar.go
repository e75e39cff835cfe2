package comm

import (
	"context"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/l1"
	"github.com/robotalks/pursuit/pkg/l1/msgs"
)

// Registrar is the controller side of a Pipe: commands are posted into
// the loop as l1.CommandMsg and replied through the pipe with the
// sequence they came with, events are posted as they are.
type Registrar struct {
	pipe Pipe
}

// Init binds the Registrar to a PacketReadWriter.
func (r *Registrar) Init(rw PacketReadWriter) {
	r.pipe.ReadWriter = rw
	r.pipe.Handler = msgs.HandleTypedMsgFunc(r.handleTypedMsg)
}

func (r *Registrar) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	loopCtl := fx.LoopCtlFrom(ctx)
	switch typed.Kind() {
	case msgs.TypeIDKindCommand:
		post(loopCtl, &l1.CommandMsg{Command: &pipeCommand{seq: typed.Sequence, msg: msg, pipe: &r.pipe}})
	case msgs.TypeIDKindEvent:
		post(loopCtl, msg)
	}
	return nil
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.pipe.SendEventMsg(msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.pipe)
}

// pipeCommand replies once, a second Done is a no-op.
type pipeCommand struct {
	seq  uint32
	msg  fx.Message
	pipe *Pipe
	once sync.Once
}

func (c *pipeCommand) Msg() fx.Message {
	return c.msg
}

func (c *pipeCommand) Done(reply fx.Message) (err error) {
	c.once.Do(func() {
		err = c.pipe.SendCommandMsg(reply, c.seq)
	})
	return
}

// RegistrarMux fans events out to several Registrars.
type RegistrarMux struct {
	Registrars []l1.Registrar
}

// SendEvent implements Registrar. Every registrar is tried.
func (r *RegistrarMux) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.AggregatedError
	for _, reg := range r.Registrars {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (r *RegistrarMux) AddToLoop(l *fx.Loop) {
	for _, reg := range r.Registrars {
		if adder, ok := reg.(fx.LoopAdder); ok {
			l.Add(adder)
		}
	}
}

// Add adds more registrars.
func (r *RegistrarMux) Add(regs ...l1.Registrar) {
	r.Registrars = append(r.Registrars, regs...)
}

// UnsupportedCommands replies commands left untaken at the idle level
// with ErrUnsupportedCommand.
type UnsupportedCommands struct {
}

// Control implements Controller.
func (c *UnsupportedCommands) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		if cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg); ok {
			mctx.MessageTaken()
			glog.V(1).Infof("unsupported command %T", cmdMsg.Command.Msg())
			if err := cmdMsg.Command.Done(msgs.NewCommandErr(msgs.ErrUnsupportedCommand)); err != nil {
				glog.Warningf("reply unsupported command error: %v", err)
			}
		}
	}))
	return nil
}

// AddToLoop implements LoopAdder.
func (c *UnsupportedCommands) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvIdle, c)
}
