package framework

import "time"

// FrameFunc is invoked once per frame with the iteration time.
type FrameFunc func(now time.Time)

// FrameScheduler schedules one-shot frame callbacks. A callback
// runs at most once, in the iteration following the request, unless
// its handle is cancelled first. Repeating work re-arms itself.
type FrameScheduler interface {
	RequestFrame(FrameFunc) *FrameHandle
}

// FrameHandle is the cancellation token of a requested frame.
type FrameHandle struct {
	cancelled bool
	fired     bool
}

// Cancel invalidates the frame. It's safe to cancel a fired frame.
func (h *FrameHandle) Cancel() {
	if h != nil {
		h.cancelled = true
	}
}

// Cancelled indicates Cancel was called before the frame fired.
func (h *FrameHandle) Cancelled() bool {
	return h != nil && h.cancelled
}

// Pending indicates the frame is neither fired nor cancelled.
func (h *FrameHandle) Pending() bool {
	return h != nil && !h.cancelled && !h.fired
}

// Fire marks a pending frame fired and reports whether the callback
// should run. Schedulers other than Loop use it to honor cancellation.
func (h *FrameHandle) Fire() bool {
	if !h.Pending() {
		return false
	}
	h.fired = true
	return true
}

type frameRequest struct {
	handle *FrameHandle
	fn     FrameFunc
}

// RequestFrame implements FrameScheduler. The callback runs when the
// loop next reaches PrLvFrame: later in the current iteration if
// requested from a lower level, otherwise in the next iteration.
func (l *Loop) RequestFrame(fn FrameFunc) *FrameHandle {
	h := &FrameHandle{}
	l.lock.Lock()
	l.frames = append(l.frames, frameRequest{handle: h, fn: fn})
	l.lock.Unlock()
	return h
}

func (l *Loop) fireFrames(now time.Time) {
	l.lock.Lock()
	frames := l.frames
	l.frames = nil
	l.lock.Unlock()
	for _, f := range frames {
		if f.handle.Fire() {
			f.fn(now)
		}
	}
}
