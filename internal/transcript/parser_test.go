package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/patham9/YAN/internal/config"
	"github.com/patham9/YAN/internal/engine"
)

func TestParseLines(t *testing.T) {
	lines := `# rain makes the street wet
{"term":"rain","wait":3}

{"term":["-->","street","wet"],"frequency":0.9,"confidence":0.8}
{"term":"dry","type":"goal"}`

	entries, err := ParseLines(lines)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	if entries[0].Term != "rain" || entries[0].Wait != 3 || entries[0].Line != 2 {
		t.Errorf("entry[0] = %+v", entries[0])
	}
	if entries[1].Frequency == nil || *entries[1].Frequency != 0.9 {
		t.Errorf("entry[1].Frequency = %v", entries[1].Frequency)
	}
	if entries[1].Line != 4 {
		t.Errorf("entry[1].Line = %d, want 4", entries[1].Line)
	}
	if entries[2].Type != "goal" {
		t.Errorf("entry[2].Type = %q, want goal", entries[2].Type)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"malformed json", "{\"term\":\"a\"}\n{oops", "line 2"},
		{"missing term", `{"wait":1}`, "term required"},
		{"negative wait", `{"term":"a","wait":-2}`, "negative wait"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLines(tt.content)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	if err := os.WriteFile(path, []byte(`{"term":"a"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	entries, err := ParseFile(path)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ParseFile = %v, %v", entries, err)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("missing file parsed")
	}
}

func TestReplay(t *testing.T) {
	entries, err := ParseLines(`{"term":"a","wait":2}
{"term":"b","wait":1}
{"term":"c","eternal":true}
{"term":"d"}`)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}

	eng := engine.New(config.Default(), nil, nil)
	res, err := Replay(eng, entries)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if res.Inputs != 4 || res.Derivations != 2 || res.Skipped != 0 {
		t.Errorf("result = %+v, want 4 inputs, 2 derivations", res)
	}
	if eng.Time() != 3 {
		t.Errorf("Time = %d, want 3", eng.Time())
	}

	found := map[string]bool{}
	for _, c := range eng.Concepts("") {
		for _, imp := range c.Preconditions {
			found[imp.Term] = true
		}
	}
	for _, want := range []string{"<a =/> b>", "<b =/> d>"} {
		if !found[want] {
			t.Errorf("implication %s not learned; have %v", want, found)
		}
	}
}

func TestReplayStopsOnRejectedInput(t *testing.T) {
	entries, err := ParseLines(`{"term":"a"}
{"term":"b","type":"question"}
{"term":"c"}`)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}

	res, err := Replay(engine.New(config.Default(), nil, nil), entries)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v, want line 2 failure", err)
	}
	if res.Inputs != 1 {
		t.Errorf("Inputs = %d, want 1", res.Inputs)
	}
}
