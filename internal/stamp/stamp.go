// Package stamp tracks evidential bases so that revision never counts the
// same piece of input evidence twice.
package stamp

import "fmt"

// Size bounds the evidential base. Older evidence is truncated on merge.
const Size = 10

// Stamp is an evidential base: the ids of the input events a statement was
// derived from. Zero entries are unused.
type Stamp struct {
	Base [Size]int64
}

// New returns a stamp holding a single id.
func New(id int64) Stamp {
	var s Stamp
	s.Base[0] = id
	return s
}

func (s Stamp) contains(id int64) bool {
	for _, e := range s.Base {
		if e == id {
			return true
		}
	}
	return false
}

// Merge interleaves a and b, dropping duplicates, and truncates at Size.
func Merge(a, b Stamp) Stamp {
	var ret Stamp
	n := 0
	add := func(id int64) {
		if id == 0 || n >= Size || ret.contains(id) {
			return
		}
		ret.Base[n] = id
		n++
	}
	for i := 0; i < Size; i++ {
		add(a.Base[i])
		add(b.Base[i])
	}
	return ret
}

// Overlaps reports whether a and b share any evidence.
func Overlaps(a, b Stamp) bool {
	for _, x := range a.Base {
		if x != 0 && b.contains(x) {
			return true
		}
	}
	return false
}

// Equal compares the bases entry by entry.
func Equal(a, b Stamp) bool {
	return a.Base == b.Base
}

func (s Stamp) String() string {
	ids := make([]int64, 0, Size)
	for _, id := range s.Base {
		if id != 0 {
			ids = append(ids, id)
		}
	}
	return fmt.Sprint(ids)
}

// Counter hands out fresh stamps for input events. Ids start at 1.
type Counter struct {
	last int64
}

// Next returns a stamp with an id that no earlier call returned.
func (c *Counter) Next() Stamp {
	c.last++
	return New(c.last)
}
