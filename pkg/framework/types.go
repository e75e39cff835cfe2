package framework

import (
	"context"
	"time"
)

// Named is implemented by runnables reporting a name in logs and errors.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Message is consumed by controllers on the loop goroutine. State
// carried by a message is applied as a whole, never partially.
type Message interface {
	// NewMessage creates an empty message of the same type.
	NewMessage() Message
}

// Controller runs once per iteration at its priority level.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// ControlContext is the view of the current iteration given to
// controllers.
type ControlContext interface {
	// Time is sampled once when the iteration starts, all
	// controllers of the iteration see the same value.
	Time() time.Time
	Context() context.Context
	PriorityLevel() int
	// Messages holds messages posted before the iteration started
	// and not yet taken by a previous controller.
	Messages() MessageStore

	LoopControl
}

// LoopControl is safe to use from any goroutine.
type LoopControl interface {
	// PostMessage enqueues a message for the next iteration.
	PostMessage(Message)
	// TriggerNext runs the next iteration without waiting for the
	// ticker.
	TriggerNext()

	FrameScheduler
}

// PriorityLevels is the number of priority levels.
const PriorityLevels int = 16

// Priority levels, lower runs first.
const (
	// PrLvControl handles commands and inputs.
	PrLvControl int = 8
	// PrLvAcuate produces outputs (goals, frames).
	PrLvAcuate int = 12
	// PrLvFrame is the priority level frame callbacks run at.
	PrLvFrame = PrLvAcuate
	// PrLvPostProc renders and notifies after the state settled.
	PrLvPostProc int = PrLvIdle - 1
	// PrLvIdle replies leftovers and purges expired state.
	PrLvIdle int = PriorityLevels - 1
)

// MessageStore gives controllers access to the pending messages.
type MessageStore interface {
	ProcessMessages(MessageProcessor)
}

// MessageProcessor visits messages in posting order.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageProcessingContext) {
	f(mc)
}

// MessageProcessingContext refers to the message being visited.
type MessageProcessingContext interface {
	CurrentMessage() Message
	// MessageTaken removes the message so later controllers won't see it.
	MessageTaken()
}
