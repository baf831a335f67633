package memory

import (
	"sort"

	"github.com/patham9/YAN/internal/event"
)

// CyclingEvent is a belief waiting to be selected for inference.
type CyclingEvent struct {
	Event    event.Event
	Priority float64
}

// cyclingPool keeps events sorted by priority, highest first. Equal
// priorities keep insertion order.
type cyclingPool struct {
	items []CyclingEvent
}

func newCyclingPool(capacity int) cyclingPool {
	return cyclingPool{items: make([]CyclingEvent, 0, capacity)}
}

// push inserts e, evicting the lowest-priority event when full. An event
// below the lowest priority of a full pool is rejected.
func (p *cyclingPool) push(e event.Event, priority float64) bool {
	if len(p.items) == cap(p.items) {
		if priority < p.items[len(p.items)-1].Priority {
			return false
		}
		p.items = p.items[:len(p.items)-1]
	}
	i := sort.Search(len(p.items), func(i int) bool {
		return p.items[i].Priority < priority
	})
	p.items = append(p.items, CyclingEvent{})
	copy(p.items[i+1:], p.items[i:])
	p.items[i] = CyclingEvent{Event: e, Priority: priority}
	return true
}

// pop removes the highest-priority event.
func (p *cyclingPool) pop() (CyclingEvent, bool) {
	if len(p.items) == 0 {
		return CyclingEvent{}, false
	}
	top := p.items[0]
	p.items = append(p.items[:0], p.items[1:]...)
	return top, true
}

func (p *cyclingPool) contains(e event.Event) bool {
	for i := range p.items {
		if p.items[i].Event.Equal(e) {
			return true
		}
	}
	return false
}

func (p *cyclingPool) snapshot() []CyclingEvent {
	return append([]CyclingEvent(nil), p.items...)
}
