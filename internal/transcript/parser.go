// Package transcript reads event scripts: JSON lines, one input statement per
// line, optionally followed by a number of steps to wait.
package transcript

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/patham9/YAN/internal/engine"
	"github.com/patham9/YAN/internal/event"
)

// Entry is one script line.
type Entry struct {
	engine.Input
	Wait int64 `json:"wait,omitempty"` // steps to advance after the input
	Line int   `json:"-"`
}

// ParseFile reads a JSONL event script.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// ParseLines parses script content from a string.
func ParseLines(content string) ([]Entry, error) {
	return Parse(strings.NewReader(content))
}

// Parse reads entries from r. Blank lines and lines starting with # are
// skipped; a malformed line fails the whole script.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB line buffer

	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		entry.Line = n
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan script: %w", err)
	}

	return entries, nil
}

func parseLine(line []byte) (Entry, error) {
	var entry Entry
	if err := json.Unmarshal(line, &entry); err != nil {
		return Entry{}, err
	}
	if entry.Term == nil {
		return Entry{}, fmt.Errorf("term required")
	}
	if entry.Wait < 0 {
		return Entry{}, fmt.Errorf("negative wait %d", entry.Wait)
	}
	return entry, nil
}

// Result counts what a replay did.
type Result struct {
	Inputs      int
	Derivations int
	Skipped     int // consecutive beliefs that could not be combined
}

// Replay feeds entries to eng in order. After each temporal belief it infers
// against the previous temporal belief of the script. A line the engine
// rejects stops the replay.
func Replay(eng *engine.Engine, entries []Entry) (Result, error) {
	var res Result
	var prev *event.Event

	for _, entry := range entries {
		ev, err := eng.Input(entry.Input)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", entry.Line, err)
		}
		res.Inputs++

		if ev.Type == event.Belief && !ev.IsEternal() {
			if prev != nil {
				_, err := eng.Infer(*prev, ev, 1)
				switch {
				case err == nil:
					res.Derivations++
				case errors.Is(err, engine.ErrTooLarge), errors.Is(err, engine.ErrOverlap):
					res.Skipped++
				default:
					return res, fmt.Errorf("line %d: %w", entry.Line, err)
				}
			}
			prev = &ev
		}

		if entry.Wait > 0 {
			if _, err := eng.Advance(entry.Wait); err != nil {
				return res, fmt.Errorf("line %d: %w", entry.Line, err)
			}
		}
	}
	return res, nil
}
