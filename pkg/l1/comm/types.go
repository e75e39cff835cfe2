package comm

import (
	"sync"

	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/l1"
	"github.com/robotalks/pursuit/pkg/l1/msgs"
)

// PacketReader reads packets, each an encoded msgs.Typed.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// MessagePoster delivers messages into a loop from other goroutines.
// Both *fx.Loop and fx.LoopControl satisfy it.
type MessagePoster interface {
	PostMessage(fx.Message)
	TriggerNext()
}

func post(p MessagePoster, msg fx.Message) {
	p.PostMessage(msg)
	p.TriggerNext()
}

// ResultOf converts a command reply into a Result. A CommandErr reply
// fails the command with itself as the error.
func ResultOf(reply fx.Message) l1.Result {
	result := l1.Result{Msg: reply}
	if cmdErr, ok := reply.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	return result
}

// future delivers the first result of a command, later ones are
// ignored.
type future struct {
	result chan l1.Result
	once   sync.Once
}

func newFuture() *future {
	return &future{result: make(chan l1.Result, 1)}
}

// ResultChan implements l1.CommandFuture.
func (f *future) ResultChan() <-chan l1.Result {
	return f.result
}

func (f *future) resolve(result l1.Result) (delivered bool) {
	f.once.Do(func() {
		f.result <- result
		close(f.result)
		delivered = true
	})
	return
}
