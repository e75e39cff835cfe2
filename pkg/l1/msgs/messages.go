package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/pursuit/pkg/framework"
)

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() fx.Message { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// Serializable implements SerializableMessage.
func (m *CommandOK) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CommandOK) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandOK) Reset() { *m = CommandOK{} }

// String implements proto.Message.
func (m *CommandOK) String() string { return proto.CompactTextString(m) }

// CommandErr is the generic message representing command error.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return NewCommandErrFromMsg(err.Error())
}

// NewCommandErrFromMsg creates a CommandErr.
func NewCommandErrFromMsg(message string) *CommandErr {
	return &CommandErr{Message: message}
}

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// NewMessage implements Message.
func (m *CommandErr) NewMessage() fx.Message { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Serializable implements SerializableMessage.
func (m *CommandErr) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CommandErr) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandErr) Reset() { *m = CommandErr{} }

// String implements proto.Message.
func (m *CommandErr) String() string { return proto.CompactTextString(m) }

// SimStart starts a run from the current setup.
type SimStart struct {
}

// NewMessage implements Message.
func (m *SimStart) NewMessage() fx.Message { return &SimStart{} }

// TypeID implements SerializableMessage.
func (m *SimStart) TypeID() uint32 { return SimStartTypeID }

// Serializable implements SerializableMessage.
func (m *SimStart) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SimStart) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SimStart) Reset() { *m = SimStart{} }

// String implements proto.Message.
func (m *SimStart) String() string { return proto.CompactTextString(m) }

// SimPause pauses the running simulation.
type SimPause struct {
}

// NewMessage implements Message.
func (m *SimPause) NewMessage() fx.Message { return &SimPause{} }

// TypeID implements SerializableMessage.
func (m *SimPause) TypeID() uint32 { return SimPauseTypeID }

// Serializable implements SerializableMessage.
func (m *SimPause) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SimPause) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SimPause) Reset() { *m = SimPause{} }

// String implements proto.Message.
func (m *SimPause) String() string { return proto.CompactTextString(m) }

// SimResume resumes the paused simulation.
type SimResume struct {
}

// NewMessage implements Message.
func (m *SimResume) NewMessage() fx.Message { return &SimResume{} }

// TypeID implements SerializableMessage.
func (m *SimResume) TypeID() uint32 { return SimResumeTypeID }

// Serializable implements SerializableMessage.
func (m *SimResume) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SimResume) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SimResume) Reset() { *m = SimResume{} }

// String implements proto.Message.
func (m *SimResume) String() string { return proto.CompactTextString(m) }

// SimReset stops the simulation and clears the logs.
type SimReset struct {
}

// NewMessage implements Message.
func (m *SimReset) NewMessage() fx.Message { return &SimReset{} }

// TypeID implements SerializableMessage.
func (m *SimReset) TypeID() uint32 { return SimResetTypeID }

// Serializable implements SerializableMessage.
func (m *SimReset) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SimReset) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SimReset) Reset() { *m = SimReset{} }

// String implements proto.Message.
func (m *SimReset) String() string { return proto.CompactTextString(m) }

// SimSetTarget moves the target. It is subject to the active
// target source like any manual input.
type SimSetTarget struct {
	X float64 `protobuf:"fixed64,1,opt,name=x,proto3" json:"x,omitempty"`
	Y float64 `protobuf:"fixed64,2,opt,name=y,proto3" json:"y,omitempty"`
}

// NewMessage implements Message.
func (m *SimSetTarget) NewMessage() fx.Message { return &SimSetTarget{} }

// TypeID implements SerializableMessage.
func (m *SimSetTarget) TypeID() uint32 { return SimSetTargetTypeID }

// Serializable implements SerializableMessage.
func (m *SimSetTarget) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SimSetTarget) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SimSetTarget) Reset() { *m = SimSetTarget{} }

// String implements proto.Message.
func (m *SimSetTarget) String() string { return proto.CompactTextString(m) }

// SimSelectSource switches the active target source.
type SimSelectSource struct {
	Source string `protobuf:"bytes,1,opt,name=source,proto3" json:"source,omitempty"`
}

// NewMessage implements Message.
func (m *SimSelectSource) NewMessage() fx.Message { return &SimSelectSource{} }

// TypeID implements SerializableMessage.
func (m *SimSelectSource) TypeID() uint32 { return SimSelectSourceTypeID }

// Serializable implements SerializableMessage.
func (m *SimSelectSource) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SimSelectSource) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SimSelectSource) Reset() { *m = SimSelectSource{} }

// String implements proto.Message.
func (m *SimSelectSource) String() string { return proto.CompactTextString(m) }

// SimConfigure replaces the setup read on start and reset.
type SimConfigure struct {
	Setup *SimSetup `protobuf:"bytes,1,opt,name=setup,proto3" json:"setup,omitempty"`
}

// NewMessage implements Message.
func (m *SimConfigure) NewMessage() fx.Message { return &SimConfigure{} }

// TypeID implements SerializableMessage.
func (m *SimConfigure) TypeID() uint32 { return SimConfigureTypeID }

// Serializable implements SerializableMessage.
func (m *SimConfigure) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SimConfigure) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SimConfigure) Reset() { *m = SimConfigure{} }

// String implements proto.Message.
func (m *SimConfigure) String() string { return proto.CompactTextString(m) }

// SimStatusQuery queries the status.
type SimStatusQuery struct {
}

// NewMessage implements Message.
func (m *SimStatusQuery) NewMessage() fx.Message { return &SimStatusQuery{} }

// TypeID implements SerializableMessage.
func (m *SimStatusQuery) TypeID() uint32 { return SimStatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *SimStatusQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SimStatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SimStatusQuery) Reset() { *m = SimStatusQuery{} }

// String implements proto.Message.
func (m *SimStatusQuery) String() string { return proto.CompactTextString(m) }

// SimStatusReply is the response for SimStatusQuery.
type SimStatusReply struct {
	Status *SimStatus `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

// NewMessage implements Message.
func (m *SimStatusReply) NewMessage() fx.Message { return &SimStatusReply{} }

// TypeID implements SerializableMessage.
func (m *SimStatusReply) TypeID() uint32 { return SimStatusReplyTypeID }

// Serializable implements SerializableMessage.
func (m *SimStatusReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SimStatusReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SimStatusReply) Reset() { *m = SimStatusReply{} }

// String implements proto.Message.
func (m *SimStatusReply) String() string { return proto.CompactTextString(m) }

// SimStatus is an Event message reflecting simulation status.
// It is sent on every lifecycle transition.
type SimStatus struct {
	State   string    `protobuf:"bytes,1,opt,name=state,proto3" json:"state,omitempty"`
	Source  string    `protobuf:"bytes,2,opt,name=source,proto3" json:"source,omitempty"`
	RunID   string    `protobuf:"bytes,3,opt,name=run_id,json=runId,proto3" json:"run_id,omitempty"`
	Steps   uint64    `protobuf:"varint,4,opt,name=steps,proto3" json:"steps,omitempty"`
	SimTime float64   `protobuf:"fixed64,5,opt,name=sim_time,json=simTime,proto3" json:"sim_time,omitempty"`
	X       float64   `protobuf:"fixed64,6,opt,name=x,proto3" json:"x,omitempty"`
	Y       float64   `protobuf:"fixed64,7,opt,name=y,proto3" json:"y,omitempty"`
	Theta   float64   `protobuf:"fixed64,8,opt,name=theta,proto3" json:"theta,omitempty"`
	TargetX float64   `protobuf:"fixed64,9,opt,name=target_x,json=targetX,proto3" json:"target_x,omitempty"`
	TargetY float64   `protobuf:"fixed64,10,opt,name=target_y,json=targetY,proto3" json:"target_y,omitempty"`
	Setup   *SimSetup `protobuf:"bytes,11,opt,name=setup,proto3" json:"setup,omitempty"`
}

// NewMessage implements Message.
func (m *SimStatus) NewMessage() fx.Message { return &SimStatus{} }

// TypeID implements SerializableMessage.
func (m *SimStatus) TypeID() uint32 { return SimStatusEventTypeID }

// Serializable implements SerializableMessage.
func (m *SimStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SimStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SimStatus) Reset() { *m = SimStatus{} }

// String implements proto.Message.
func (m *SimStatus) String() string { return proto.CompactTextString(m) }

// SimLogQuery requests step records. Window selects the rolling plot
// window instead of the session log, Limit keeps only the most recent.
type SimLogQuery struct {
	Window bool   `protobuf:"varint,1,opt,name=window,proto3" json:"window,omitempty"`
	Limit  uint32 `protobuf:"varint,2,opt,name=limit,proto3" json:"limit,omitempty"`
}

// NewMessage implements Message.
func (m *SimLogQuery) NewMessage() fx.Message { return &SimLogQuery{} }

// TypeID implements SerializableMessage.
func (m *SimLogQuery) TypeID() uint32 { return SimLogQueryTypeID }

// Serializable implements SerializableMessage.
func (m *SimLogQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SimLogQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SimLogQuery) Reset() { *m = SimLogQuery{} }

// String implements proto.Message.
func (m *SimLogQuery) String() string { return proto.CompactTextString(m) }

// SimLog is the response for SimLogQuery.
type SimLog struct {
	RunID   string       `protobuf:"bytes,1,opt,name=run_id,json=runId,proto3" json:"run_id,omitempty"`
	Records []*SimRecord `protobuf:"bytes,2,rep,name=records,proto3" json:"records,omitempty"`
	// Steps is the step count at the time the records were taken.
	Steps uint64 `protobuf:"varint,3,opt,name=steps,proto3" json:"steps,omitempty"`
}

// NewMessage implements Message.
func (m *SimLog) NewMessage() fx.Message { return &SimLog{} }

// TypeID implements SerializableMessage.
func (m *SimLog) TypeID() uint32 { return SimLogTypeID }

// Serializable implements SerializableMessage.
func (m *SimLog) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SimLog) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SimLog) Reset() { *m = SimLog{} }

// String implements proto.Message.
func (m *SimLog) String() string { return proto.CompactTextString(m) }

// SimSetup carries the initial pose and the model parameters.
type SimSetup struct {
	X0     float64 `protobuf:"fixed64,1,opt,name=x0,proto3" json:"x0,omitempty"`
	Y0     float64 `protobuf:"fixed64,2,opt,name=y0,proto3" json:"y0,omitempty"`
	Theta0 float64 `protobuf:"fixed64,3,opt,name=theta0,proto3" json:"theta0,omitempty"`
	K      float64 `protobuf:"fixed64,4,opt,name=k,proto3" json:"k,omitempty"`
	L      float64 `protobuf:"fixed64,5,opt,name=l,proto3" json:"l,omitempty"`
	Dt     float64 `protobuf:"fixed64,6,opt,name=dt,proto3" json:"dt,omitempty"`
}

// SimRecord is a single simulation step.
type SimRecord struct {
	T       float64 `protobuf:"fixed64,1,opt,name=t,proto3" json:"t,omitempty"`
	Ex      float64 `protobuf:"fixed64,2,opt,name=ex,proto3" json:"ex,omitempty"`
	Ey      float64 `protobuf:"fixed64,3,opt,name=ey,proto3" json:"ey,omitempty"`
	V       float64 `protobuf:"fixed64,4,opt,name=v,proto3" json:"v,omitempty"`
	W       float64 `protobuf:"fixed64,5,opt,name=w,proto3" json:"w,omitempty"`
	X       float64 `protobuf:"fixed64,6,opt,name=x,proto3" json:"x,omitempty"`
	Y       float64 `protobuf:"fixed64,7,opt,name=y,proto3" json:"y,omitempty"`
	Theta   float64 `protobuf:"fixed64,8,opt,name=theta,proto3" json:"theta,omitempty"`
	TargetX float64 `protobuf:"fixed64,9,opt,name=target_x,json=targetX,proto3" json:"target_x,omitempty"`
	TargetY float64 `protobuf:"fixed64,10,opt,name=target_y,json=targetY,proto3" json:"target_y,omitempty"`
}

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupSim     uint32 = 0x00030000
	GroupCustom  uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	CommandOKTypeID       uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID      uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	SimStartTypeID        uint32 = GroupSim | 0x0000
	SimPauseTypeID        uint32 = GroupSim | 0x0001
	SimResumeTypeID       uint32 = GroupSim | 0x0002
	SimResetTypeID        uint32 = GroupSim | 0x0003
	SimSetTargetTypeID    uint32 = GroupSim | 0x0004
	SimSelectSourceTypeID uint32 = GroupSim | 0x0005
	SimConfigureTypeID    uint32 = GroupSim | 0x0006
	SimStatusQueryTypeID  uint32 = GroupSim | 0x0007
	SimStatusReplyTypeID  uint32 = SimStatusQueryTypeID | TypeIDMaskReply
	SimLogQueryTypeID     uint32 = GroupSim | 0x0008
	SimLogTypeID          uint32 = SimLogQueryTypeID | TypeIDMaskReply
	SimStatusEventTypeID  uint32 = GroupSim | TypeIDKindEvent | 0x0000
)
