package memory

import "github.com/patham9/YAN/internal/event"

// FIFO is a ring buffer of input events; the oldest is overwritten when full.
type FIFO struct {
	items []event.Event
	start int
	count int
	added uint64
}

func newFIFO(capacity int) FIFO {
	return FIFO{items: make([]event.Event, capacity)}
}

// Add appends e, dropping the oldest event when the buffer is full.
func (f *FIFO) Add(e event.Event) {
	f.added++
	if f.count < len(f.items) {
		f.items[(f.start+f.count)%len(f.items)] = e
		f.count++
		return
	}
	f.items[f.start] = e
	f.start = (f.start + 1) % len(f.items)
}

// Added returns how many events were ever added, including dropped ones.
func (f *FIFO) Added() uint64 { return f.added }

// Len returns the number of buffered events.
func (f *FIFO) Len() int { return f.count }

// At returns the i-th event, 0 being the oldest.
func (f *FIFO) At(i int) event.Event {
	if i < 0 || i >= f.count {
		panic("memory: FIFO index out of range")
	}
	return f.items[(f.start+i)%len(f.items)]
}

// Newest returns the most recently added event.
func (f *FIFO) Newest() (event.Event, bool) {
	if f.count == 0 {
		return event.Event{}, false
	}
	return f.At(f.count - 1), true
}

// Events returns the buffered events, oldest first.
func (f *FIFO) Events() []event.Event {
	out := make([]event.Event, f.count)
	for i := range out {
		out[i] = f.At(i)
	}
	return out
}
