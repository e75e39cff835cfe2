package comm

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/l1"
	"github.com/robotalks/pursuit/pkg/l1/msgs"
)

type chanReadWriter struct {
	in  <-chan []byte
	out chan<- []byte
}

func newChanPair() (*chanReadWriter, *chanReadWriter) {
	a, b := make(chan []byte, 16), make(chan []byte, 16)
	return &chanReadWriter{in: a, out: b}, &chanReadWriter{in: b, out: a}
}

func (rw *chanReadWriter) ReadPacket() ([]byte, error) {
	pkt, ok := <-rw.in
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}

func (rw *chanReadWriter) WritePacket(pkt []byte) error {
	rw.out <- pkt
	return nil
}

func replyStatus(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		if _, ok := cmdMsg.Command.Msg().(*msgs.SimStatusQuery); ok {
			mctx.MessageTaken()
			cmdMsg.Command.Done(&msgs.SimStatusReply{Status: &msgs.SimStatus{State: "idle"}})
		}
	}))
	return nil
}

func runLoop(t *testing.T, l *fx.Loop) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go l.Run(ctx)
}

func TestRegistrarAndControllerConn(t *testing.T) {
	ctlEnd, connEnd := newChanPair()

	var reg Registrar
	reg.Init(ctlEnd)
	ctlLoop := fx.NewLoopWithInterval(5 * time.Millisecond)
	ctlLoop.Add(&reg)
	ctlLoop.AddController(fx.PrLvControl, fx.ControlFunc(replyStatus))
	ctlLoop.Add(&UnsupportedCommands{})
	runLoop(t, ctlLoop)

	var conn ControllerConn
	conn.Init(connEnd)
	events := make(chan fx.Message, 4)
	connLoop := fx.NewLoopWithInterval(5 * time.Millisecond)
	connLoop.Add(&conn)
	connLoop.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
			if msg, ok := mctx.CurrentMessage().(*msgs.SimStatus); ok {
				mctx.MessageTaken()
				events <- msg
			}
		}))
		return nil
	}))
	runLoop(t, connLoop)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reply, err := l1.WaitResult(ctx, conn.DoCommand(&msgs.SimStatusQuery{}))
	require.NoError(t, err)
	require.Equal(t, "idle", reply.(*msgs.SimStatusReply).Status.State)

	_, err = l1.WaitResult(ctx, conn.DoCommand(&msgs.SimStart{}))
	require.Error(t, err)
	require.Equal(t, msgs.ErrUnsupportedCommand.Error(), err.Error())

	require.NoError(t, reg.SendEvent(ctx, &msgs.SimStatus{State: "running", RunID: "r1"}))
	select {
	case msg := <-events:
		require.Equal(t, "r1", msg.(*msgs.SimStatus).RunID)
	case <-ctx.Done():
		t.Fatal("event not received")
	}
}

func TestControllerConnExpires(t *testing.T) {
	_, connEnd := newChanPair()
	var conn ControllerConn
	conn.Init(connEnd)
	conn.Expiration = time.Millisecond
	l := fx.NewLoopWithInterval(5 * time.Millisecond)
	l.Add(&conn)
	runLoop(t, l)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := l1.WaitResult(ctx, conn.DoCommand(&msgs.SimPause{}))
	require.Equal(t, context.DeadlineExceeded, err)
}

type recordingPoster struct {
	posted    []fx.Message
	triggered int
}

func (p *recordingPoster) PostMessage(msg fx.Message) { p.posted = append(p.posted, msg) }
func (p *recordingPoster) TriggerNext()               { p.triggered++ }

func TestLocalConn(t *testing.T) {
	poster := &recordingPoster{}
	conn := NewLocalConn(poster)
	f := conn.DoCommand(&msgs.SimReset{})
	require.Len(t, poster.posted, 1)
	require.Equal(t, 1, poster.triggered)

	cmd := poster.posted[0].(*l1.CommandMsg).Command
	require.IsType(t, &msgs.SimReset{}, cmd.Msg())
	require.NoError(t, cmd.Done(msgs.NewCommandErrFromMsg("nope")))
	require.NoError(t, cmd.Done(msgs.NewCommandOK()))

	res, err := l1.WaitResult(context.Background(), f)
	require.Error(t, err)
	require.Equal(t, "nope", err.Error())
	require.IsType(t, &msgs.CommandErr{}, res)

	f = conn.DoCommand(&msgs.SimStart{})
	poster.posted[1].(*l1.CommandMsg).Command.Done(msgs.NewCommandOK())
	res, err = l1.WaitResult(context.Background(), f)
	require.NoError(t, err)
	require.IsType(t, &msgs.CommandOK{}, res)
}

func TestPurgeExpired(t *testing.T) {
	_, connEnd := newChanPair()
	base := time.Unix(1000, 0)
	now := base
	var conn ControllerConn
	conn.Init(connEnd)
	conn.Clock = func() time.Time { return now }

	first := conn.DoCommand(&msgs.SimStart{})
	now = now.Add(500 * time.Millisecond)
	second := conn.DoCommand(&msgs.SimPause{})
	require.Equal(t, 2, conn.Pending())

	require.Zero(t, conn.PurgeExpired(base.Add(999*time.Millisecond)))
	require.Equal(t, 1, conn.PurgeExpired(base.Add(time.Second)))
	res := <-first.ResultChan()
	require.Equal(t, context.DeadlineExceeded, res.Err)
	require.Equal(t, 1, conn.Pending())

	require.Equal(t, 1, conn.PurgeExpired(base.Add(2*time.Second)))
	res = <-second.ResultChan()
	require.Equal(t, context.DeadlineExceeded, res.Err)
	require.Zero(t, conn.Pending())
}

func TestPipeSkipsMalformedPackets(t *testing.T) {
	ctlEnd, connEnd := newChanPair()
	var reg Registrar
	reg.Init(ctlEnd)
	l := fx.NewLoopWithInterval(5 * time.Millisecond)
	l.Add(&reg)
	l.AddController(fx.PrLvControl, fx.ControlFunc(replyStatus))
	runLoop(t, l)

	require.NoError(t, connEnd.WritePacket([]byte{0xff, 0xff, 0xff}))
	unknown, err := (&msgs.Typed{TypeID: msgs.GroupSim | 0x7f, Sequence: 9}).Encode()
	require.NoError(t, err)
	require.NoError(t, connEnd.WritePacket(unknown))
	query, err := msgs.TypedFrom(&msgs.SimStatusQuery{})
	require.NoError(t, err)
	query.Sequence = 10
	require.NoError(t, NewPipe(connEnd).SendTyped(query))

	read := func() (*msgs.Typed, fx.Message) {
		select {
		case pkt := <-connEnd.in:
			typed, err := msgs.DecodeTyped(pkt)
			require.NoError(t, err)
			msg, err := typed.Decode()
			require.NoError(t, err)
			return typed, msg
		case <-time.After(2 * time.Second):
			t.Fatal("no reply")
		}
		return nil, nil
	}
	typed, msg := read()
	require.Equal(t, uint32(9), typed.Sequence)
	require.IsType(t, &msgs.CommandErr{}, msg)
	typed, msg = read()
	require.Equal(t, uint32(10), typed.Sequence)
	require.Equal(t, "idle", msg.(*msgs.SimStatusReply).Status.State)
}

func TestPipeRejectsWrongKind(t *testing.T) {
	_, end := newChanPair()
	p := NewPipe(end)
	require.Equal(t, ErrNotEvent, p.SendEventMsg(&msgs.SimStart{}))
	require.Equal(t, ErrNotCommand, p.SendCommandMsg(&msgs.SimStatus{}, 1))
}

func TestResultOf(t *testing.T) {
	res := ResultOf(msgs.NewCommandErrFromMsg("busy"))
	require.EqualError(t, res.Err, "busy")
	res = ResultOf(msgs.NewCommandOK())
	require.NoError(t, res.Err)
	require.IsType(t, &msgs.CommandOK{}, res.Msg)
}
