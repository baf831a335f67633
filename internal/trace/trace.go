// Package trace receives the knowledge log: every statement memory admits,
// derives or revises. Sinks are observational and never feed back into
// reasoning.
package trace

import (
	"github.com/patham9/YAN/internal/event"
	"github.com/patham9/YAN/internal/term"
	"github.com/patham9/YAN/internal/truth"
)

// Kind says how a statement reached memory.
type Kind uint8

const (
	Input Kind = iota
	Derived
	Revised
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Derived:
		return "derived"
	default:
		return "revised"
	}
}

// Record is one knowledge log entry. OccurrenceTime is event.Eternal for
// eternal statements.
type Record struct {
	Kind           Kind
	Term           term.Term
	Type           event.Type
	Truth          truth.Truth
	OccurrenceTime int64
	Priority       float64
}

// Sink consumes records. Memory applies the print toggles and priority
// threshold before calling it.
type Sink interface {
	Record(Record)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Record)

func (f SinkFunc) Record(r Record) { f(r) }

type discard struct{}

func (discard) Record(Record) {}

// Discard drops every record.
var Discard Sink = discard{}

type multi []Sink

func (m multi) Record(r Record) {
	for _, s := range m {
		s.Record(r)
	}
}

// Multi fans records out to every sink in order. Nil sinks are skipped.
func Multi(sinks ...Sink) Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	switch len(m) {
	case 0:
		return Discard
	case 1:
		return m[0]
	}
	return m
}

// Collector keeps records in memory.
type Collector struct {
	Records []Record
}

func (c *Collector) Record(r Record) {
	c.Records = append(c.Records, r)
}
