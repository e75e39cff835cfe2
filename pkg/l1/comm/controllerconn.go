package comm

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/l1"
	"github.com/robotalks/pursuit/pkg/l1/msgs"
)

// ControllerConn is the L2 side of a Pipe. Commands are numbered,
// replies are matched by sequence and commands without a reply within
// Expiration fail with context.DeadlineExceeded.
type ControllerConn struct {
	Expiration time.Duration
	// Clock stamps commands, time.Now if nil.
	Clock func() time.Time

	pipe    Pipe
	seq     uint32
	pending map[uint32]*pendingCommand
	lock    sync.Mutex
}

type pendingCommand struct {
	*future
	expireAt time.Time
}

// DefaultCommandExpiration is the default expiration expecting a result.
const DefaultCommandExpiration = 1 * time.Second

// Init binds the ControllerConn to a PacketReadWriter.
func (c *ControllerConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	c.pending = make(map[uint32]*pendingCommand)
}

// DoCommand implements ControllerConn.
func (c *ControllerConn) DoCommand(msg fx.Message) l1.CommandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	// 0 is never used.
	if c.seq++; c.seq == 0 {
		c.seq++
	}
	cmd := &pendingCommand{future: newFuture(), expireAt: c.now().Add(c.Expiration)}
	if err := c.pipe.SendCommandMsg(msg, c.seq); err != nil {
		cmd.resolve(l1.Result{Err: err})
		return cmd
	}
	c.pending[c.seq] = cmd
	return cmd
}

// Pending returns the number of commands waiting for a reply.
func (c *ControllerConn) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.pending)
}

// AddToLoop implements LoopAdder.
func (c *ControllerConn) AddToLoop(l *fx.Loop) {
	l.Add(&c.pipe)
	l.AddController(fx.PrLvIdle, fx.ControlFunc(func(cc fx.ControlContext) error {
		c.PurgeExpired(c.now())
		return nil
	}))
}

func (c *ControllerConn) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

func (c *ControllerConn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		post(fx.LoopCtlFrom(ctx), msg)
		return nil
	}
	c.lock.Lock()
	cmd := c.pending[typed.Sequence]
	delete(c.pending, typed.Sequence)
	c.lock.Unlock()
	if cmd == nil {
		glog.V(1).Infof("reply %x for unknown or expired command %d", typed.TypeID, typed.Sequence)
		return nil
	}
	cmd.resolve(ResultOf(msg))
	return nil
}

// PurgeExpired fails the commands expired at now.
func (c *ControllerConn) PurgeExpired(now time.Time) int {
	c.lock.Lock()
	var expired []*pendingCommand
	for seq, cmd := range c.pending {
		if !cmd.expireAt.After(now) {
			expired = append(expired, cmd)
			delete(c.pending, seq)
		}
	}
	c.lock.Unlock()
	for _, cmd := range expired {
		cmd.resolve(l1.Result{Err: context.DeadlineExceeded})
	}
	return len(expired)
}
