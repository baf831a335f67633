// Package engine owns one reasoning memory together with its vocabulary,
// stamp counter and logical clock. Every call is serialized behind a single
// mutex, so the server and the CLI can share an engine safely.
package engine

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/patham9/YAN/internal/config"
	"github.com/patham9/YAN/internal/event"
	"github.com/patham9/YAN/internal/inference"
	"github.com/patham9/YAN/internal/memory"
	"github.com/patham9/YAN/internal/narsese"
	"github.com/patham9/YAN/internal/stamp"
	"github.com/patham9/YAN/internal/term"
	"github.com/patham9/YAN/internal/trace"
	"github.com/patham9/YAN/internal/truth"
)

// Default truth of input events that do not state one.
const (
	DefaultFrequency  = 1.0
	DefaultConfidence = 0.9
)

var (
	ErrNoBelief    = errors.New("no temporal belief")
	ErrOrder       = errors.New("second premise occurs before the first")
	ErrOverlap     = errors.New("premises share evidence")
	ErrTooLarge    = errors.New("conclusion does not fit a term")
	ErrNotTemporal = errors.New("premises must be temporal beliefs")
)

// Engine orchestrates input, inference and the clock over one memory.
type Engine struct {
	mu     sync.Mutex
	cfg    config.Config
	vocab  *narsese.Vocabulary
	rules  *inference.Rules
	mem    *memory.Memory
	stamps stamp.Counter
	now    int64
	nextOp int
	paired uint64 // input beliefs already paired by Cycle

	stopCh   chan struct{}
	stopOnce sync.Once
	clocks   sync.WaitGroup
}

// New creates an engine. vocab may be nil, in which case a fresh vocabulary
// is used; sinks that format terms must share the engine's vocabulary.
func New(cfg config.Config, vocab *narsese.Vocabulary, sink trace.Sink) *Engine {
	if vocab == nil {
		vocab = narsese.NewVocabulary()
	}
	e := &Engine{
		cfg:    cfg,
		vocab:  vocab,
		stopCh: make(chan struct{}),
	}
	e.rules = inference.New(cfg.Calculus(), vocab)
	e.mem = memory.New(&e.cfg, e.rules, sink)
	return e
}

// Vocabulary returns the engine's vocabulary. Callers outside the engine must
// not use it concurrently with engine calls.
func (e *Engine) Vocabulary() *narsese.Vocabulary {
	return e.vocab
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Input is an external statement. Term is a decoded JSON node: an atom
// symbol or [copula, left, right].
type Input struct {
	Term       any      `json:"term"`
	Type       string   `json:"type,omitempty"`
	Frequency  *float64 `json:"frequency,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Eternal    bool     `json:"eternal,omitempty"`
}

func parseType(s string) (event.Type, error) {
	switch s {
	case "", "belief", ".":
		return event.Belief, nil
	case "goal", "!":
		return event.Goal, nil
	default:
		return event.Deleted, fmt.Errorf("unknown event type %q", s)
	}
}

func (in Input) truth() (truth.Truth, error) {
	t := truth.Truth{Frequency: DefaultFrequency, Confidence: DefaultConfidence}
	if in.Frequency != nil {
		t.Frequency = *in.Frequency
	}
	if in.Confidence != nil {
		t.Confidence = *in.Confidence
	}
	if t.Frequency < 0 || t.Frequency > 1 {
		return t, fmt.Errorf("frequency %v outside [0, 1]", t.Frequency)
	}
	if t.Confidence <= 0 || t.Confidence >= 1 {
		return t, fmt.Errorf("confidence %v outside (0, 1)", t.Confidence)
	}
	return t, nil
}

// Input admits in at the current time with a fresh stamp and returns the
// event that was built.
func (e *Engine) Input(in Input) (event.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	typ, err := parseType(in.Type)
	if err != nil {
		return event.Event{}, err
	}
	tv, err := in.truth()
	if err != nil {
		return event.Event{}, err
	}
	if typ == event.Goal && in.Eternal {
		return event.Event{}, fmt.Errorf("goals must be temporal")
	}
	t, err := e.vocab.Build(in.Term)
	if err != nil {
		return event.Event{}, fmt.Errorf("build term: %w", err)
	}

	ev := event.Event{
		Term:           term.WithHash(t),
		Type:           typ,
		Truth:          tv,
		Stamp:          e.stamps.Next(),
		OccurrenceTime: e.now,
		CreationTime:   e.now,
	}
	if in.Eternal {
		ev.OccurrenceTime = event.Eternal
	}
	e.mem.AddInputEvent(ev, e.now)
	return ev, nil
}

// ParseTerm builds a term from a decoded JSON node.
func (e *Engine) ParseTerm(node any) (term.Term, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vocab.Build(node)
}

// RegisterOperation registers an operator symbol (starting with ^) under the
// next free operation id and returns the id.
func (e *Engine) RegisterOperation(symbol string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.nextOp >= e.cfg.Memory.OperationsMax {
		return 0, fmt.Errorf("all %d operation ids in use", e.cfg.Memory.OperationsMax)
	}
	a, err := e.vocab.AtomIndex(symbol)
	if err != nil {
		return 0, err
	}
	if !e.vocab.IsOperator(a) {
		return 0, fmt.Errorf("%q is not an operator", symbol)
	}
	op := term.Atomic(a)
	if id := e.mem.OperationID(op); id != 0 {
		return id, nil
	}
	e.nextOp++
	e.mem.AddOperation(e.nextOp, memory.Operation{Term: op})
	return e.nextOp, nil
}

// Time returns the current logical time.
func (e *Engine) Time() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

// Advance moves the clock forward and returns the new time.
func (e *Engine) Advance(steps int64) (int64, error) {
	if steps < 0 {
		return 0, fmt.Errorf("cannot advance by %d steps", steps)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now += steps
	return e.now, nil
}

// Derivation holds what one inference produced. Sequence is always set on
// success; Implication only when the second premise is strictly later.
type Derivation struct {
	Sequence          event.Event
	Implication       *event.Implication
	ImplicationStored bool
}

// Infer derives the sequence (a &/ b) and, when b is strictly later than a,
// the implication <a =/> b>, and admits both into memory as derivations.
func (e *Engine) Infer(a, b event.Event, priority float64) (Derivation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.infer(a, b, priority)
}

func (e *Engine) infer(a, b event.Event, priority float64) (Derivation, error) {
	if a.Type != event.Belief || b.Type != event.Belief || a.IsEternal() || b.IsEternal() {
		return Derivation{}, ErrNotTemporal
	}
	if b.OccurrenceTime < a.OccurrenceTime {
		return Derivation{}, ErrOrder
	}
	if stamp.Overlaps(a.Stamp, b.Stamp) {
		return Derivation{}, ErrOverlap
	}
	if !term.Composable(a.Term, b.Term) {
		return Derivation{}, ErrTooLarge
	}

	var d Derivation
	d.Sequence = e.rules.BeliefIntersection(a, b)
	e.mem.AddEvent(d.Sequence, e.now, priority, memory.Admission{Derived: true})
	if b.OccurrenceTime > a.OccurrenceTime {
		imp := e.rules.BeliefInduction(a, b)
		d.Implication = &imp
		d.ImplicationStored = e.mem.AddImplication(imp, e.now, priority, memory.Admission{Derived: true})
	}
	return d, nil
}

// InferLatest runs Infer on the belief spikes of the concepts of a and b,
// at the product of the two concept priorities.
func (e *Engine) InferLatest(a, b term.Term) (Derivation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ca, ok := e.mem.FindConcept(a)
	if !ok || ca.BeliefSpike.Type != event.Belief {
		return Derivation{}, fmt.Errorf("%s: %w", e.vocab.Format(a), ErrNoBelief)
	}
	cb, ok := e.mem.FindConcept(b)
	if !ok || cb.BeliefSpike.Type != event.Belief {
		return Derivation{}, fmt.Errorf("%s: %w", e.vocab.Format(b), ErrNoBelief)
	}
	return e.infer(ca.BeliefSpike, cb.BeliefSpike, ca.Priority*cb.Priority)
}

// Cycle runs one selection step: up to event_selections beliefs leave the
// cycling pool and return to it with reduced priority, and every input belief
// buffered since the previous cycle is combined with the earlier buffered
// inputs. Each input is paired once. The clock then advances by one. It
// returns the number of derivations.
func (e *Engine) Cycle() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	var selected []memory.CyclingEvent
	for len(selected) < e.cfg.Memory.EventSelections {
		ce, ok := e.mem.PopCyclingEvent()
		if !ok {
			break
		}
		e.mem.MarkSelected(ce.Event)
		selected = append(selected, ce)
	}

	inputs := e.mem.BeliefEvents()
	added := e.mem.BeliefInputs()
	fresh := int(min(added-e.paired, uint64(len(inputs))))
	e.paired = added

	derived := 0
	for _, later := range inputs[len(inputs)-fresh:] {
		for _, prior := range inputs {
			if prior.OccurrenceTime >= later.OccurrenceTime {
				continue
			}
			if _, err := e.infer(prior, later, 1); err == nil {
				derived++
			}
		}
	}

	e.mem.ClearSelected()
	for _, sel := range selected {
		e.mem.AddEvent(sel.Event, e.now, sel.Priority, memory.Admission{Readded: true})
	}
	e.now++
	return derived
}

// StartClock runs Cycle every interval until Stop is called.
func (e *Engine) StartClock(interval time.Duration) {
	if interval <= 0 {
		return
	}
	e.clocks.Add(1)
	go func() {
		defer e.clocks.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := e.Cycle(); n > 0 {
					log.Printf("clock: %d derivations at t=%d", n, e.Time())
				}
			case <-e.stopCh:
				return
			}
		}
	}()
}

// Stop shuts down the engine's background goroutines and waits for a cycle
// in flight to finish, so sinks can be closed afterwards.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
	e.clocks.Wait()
}
