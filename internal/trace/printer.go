package trace

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/patham9/YAN/internal/event"
	"github.com/patham9/YAN/internal/narsese"
)

// Printer writes one structured line per record.
type Printer struct {
	logger *log.Logger
	vocab  *narsese.Vocabulary
}

// NewPrinter returns a printer writing to w. json selects JSON lines instead
// of the human readable text format.
func NewPrinter(w io.Writer, vocab *narsese.Vocabulary, json bool) *Printer {
	opts := log.Options{
		Prefix:          "yan",
		ReportTimestamp: false,
		Level:           log.InfoLevel,
	}
	if json {
		opts.Formatter = log.JSONFormatter
	}
	return &Printer{logger: log.NewWithOptions(w, opts), vocab: vocab}
}

func (p *Printer) Record(r Record) {
	kv := []any{
		"term", p.vocab.Format(r.Term) + r.Type.Punctuation(),
		"truth", r.Truth.String(),
		"priority", r.Priority,
	}
	if r.OccurrenceTime != event.Eternal {
		kv = append(kv, "occurrence", r.OccurrenceTime)
	}
	p.logger.Info(r.Kind.String(), kv...)
}
