package comm

import (
	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/l1"
)

// LocalConn implements l1.ControllerConn for a controller running in
// the same process. Commands skip serialization and are posted into
// the controller's loop as l1.CommandMsg.
type LocalConn struct {
	Loop MessagePoster
}

// NewLocalConn creates a LocalConn.
func NewLocalConn(loop MessagePoster) *LocalConn {
	return &LocalConn{Loop: loop}
}

// DoCommand implements ControllerConn.
func (c *LocalConn) DoCommand(msg fx.Message) l1.CommandFuture {
	cmd := &localCommand{future: newFuture(), msg: msg}
	post(c.Loop, &l1.CommandMsg{Command: cmd})
	return cmd
}

type localCommand struct {
	*future
	msg fx.Message
}

func (c *localCommand) Msg() fx.Message {
	return c.msg
}

// Done only honors the first reply.
func (c *localCommand) Done(reply fx.Message) error {
	c.resolve(ResultOf(reply))
	return nil
}
