package msgs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/pursuit/pkg/framework"
)

type plainMsg struct{}

func (m *plainMsg) NewMessage() fx.Message { return &plainMsg{} }

func TestTypedRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		msg     SerializableMessage
		command bool
	}{
		{"start", &SimStart{}, true},
		{"target", &SimSetTarget{X: 12.5, Y: -300}, true},
		{"source", &SimSelectSource{Source: "feed"}, true},
		{"configure", &SimConfigure{Setup: &SimSetup{X0: 1, Y0: 2, Theta0: 90, K: 0.1, L: 50, Dt: 0.05}}, true},
		{"log query", &SimLogQuery{Window: true, Limit: 10}, true},
		{"log", &SimLog{RunID: "r", Records: []*SimRecord{{T: 0.05, X: 1}, {T: 0.1, X: 2}}}, true},
		{"status reply", &SimStatusReply{Status: &SimStatus{State: "running", Steps: 3}}, true},
		{"status event", &SimStatus{State: "paused", RunID: "abc", SimTime: 1.5, Setup: &SimSetup{L: -20}}, false},
		{"error", NewCommandErr(errors.New("boom")), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			typed, err := TypedFrom(c.msg)
			require.NoError(t, err)
			require.Equal(t, c.msg.TypeID(), typed.TypeID)
			require.Equal(t, c.command, typed.IsCommand())
			require.Equal(t, !c.command, typed.IsEvent())
			typed.Sequence = 42

			data, err := typed.Encode()
			require.NoError(t, err)
			decoded, err := DecodeTyped(data)
			require.NoError(t, err)
			require.Equal(t, uint32(42), decoded.Sequence)

			msg, err := decoded.Decode()
			require.NoError(t, err)
			require.Equal(t, c.msg, msg)
		})
	}
}

func TestTypedErrors(t *testing.T) {
	_, err := TypedFrom(&plainMsg{})
	require.Equal(t, ErrNotSerializable, err)

	typed := &Typed{TypeID: GroupCustom | 0x1234}
	_, err = typed.Decode()
	var unknown *ErrUnknownType
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, GroupCustom|0x1234, unknown.TypeID)
}

func TestTypeIDKinds(t *testing.T) {
	for id, msg := range MessageTypes {
		require.Equal(t, id, msg.TypeID())
	}
	require.NotZero(t, SimStatusReplyTypeID&TypeIDMaskReply)
	require.Equal(t, TypeIDKindEvent, SimStatusEventTypeID&TypeIDMaskKind)
	require.Equal(t, "boom", NewCommandErrFromMsg("boom").Error())
}
