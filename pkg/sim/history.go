package sim

// History is an append-only buffer keeping the most recent entries.
// It trims in batches: once the length exceeds Max+Batch the oldest
// entries are dropped at once, leaving exactly Max.
type History[T any] struct {
	Max   int
	Batch int

	items []T
}

// NewHistory creates a History. limit <= 0 means unbounded.
func NewHistory[T any](limit, batch int) *History[T] {
	if batch < 0 {
		batch = 0
	}
	return &History[T]{Max: limit, Batch: batch}
}

// Append appends entries and trims if needed.
func (h *History[T]) Append(items ...T) {
	h.items = append(h.items, items...)
	if h.Max > 0 && len(h.items) > h.Max+h.Batch {
		drop := len(h.items) - h.Max
		// shift in place so the backing array is reused.
		n := copy(h.items, h.items[drop:])
		var zero T
		for i := n; i < len(h.items); i++ {
			h.items[i] = zero
		}
		h.items = h.items[:n]
	}
}

// Reset clears the buffer, optionally seeding it.
func (h *History[T]) Reset(items ...T) {
	var zero T
	for i := range h.items {
		h.items[i] = zero
	}
	h.items = append(h.items[:0], items...)
}

// Len returns the number of entries.
func (h *History[T]) Len() int {
	return len(h.items)
}

// Items exposes the entries, oldest first. The slice is only valid
// until the next Append or Reset.
func (h *History[T]) Items() []T {
	return h.items
}

// Last returns the most recent entry.
func (h *History[T]) Last() (T, bool) {
	if len(h.items) == 0 {
		var zero T
		return zero, false
	}
	return h.items[len(h.items)-1], true
}

// Snapshot copies the entries.
func (h *History[T]) Snapshot() []T {
	out := make([]T, len(h.items))
	copy(out, h.items)
	return out
}
