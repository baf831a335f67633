package server

import (
	"net/http"
	"strconv"
	"strings"
	"testing"
)

func postEvent(t *testing.T, srv *Server, body string) {
	t.Helper()
	if w := do(t, srv, "POST", "/api/events", body); w.Code != http.StatusCreated {
		t.Fatalf("POST /api/events %s: status = %d; body: %s", body, w.Code, w.Body.String())
	}
}

func advanceTime(t *testing.T, srv *Server, steps int) {
	t.Helper()
	body := `{"steps":` + strconv.Itoa(steps) + `}`
	if w := do(t, srv, "POST", "/api/time", body); w.Code != http.StatusOK {
		t.Fatalf("POST /api/time: status = %d; body: %s", w.Code, w.Body.String())
	}
}

func TestAddEvent(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "POST", "/api/events", `{"term":["-->","bird","animal"],"confidence":0.8}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	body := decode(t, w)
	if body["term"] != "<bird --> animal>" || body["punctuation"] != "." {
		t.Errorf("event = %v", body)
	}
	if body["confidence"] != 0.8 || body["frequency"] != 1.0 {
		t.Errorf("truth = %v/%v", body["frequency"], body["confidence"])
	}
	if body["occurrence_time"] != float64(0) {
		t.Errorf("occurrence_time = %v, want 0", body["occurrence_time"])
	}
}

func TestAddEventErrors(t *testing.T) {
	srv := testServer(t)

	for _, body := range []string{
		`not json`,
		`{"type":"belief"}`,
		`{"term":"a","confidence":1.5}`,
		`{"term":"a","type":"goal","eternal":true}`,
		`{"term":["-->","a"]}`,
	} {
		w := do(t, srv, "POST", "/api/events", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", body, w.Code, http.StatusBadRequest)
		}
	}
}

func TestAdvanceAndCycle(t *testing.T) {
	srv := testServer(t)
	postEvent(t, srv, `{"term":"a"}`)
	advanceTime(t, srv, 3)
	postEvent(t, srv, `{"term":"b"}`)

	body := decode(t, do(t, srv, "POST", "/api/cycle", ""))
	if body["derived"] != float64(1) || body["time"] != float64(4) {
		t.Errorf("cycle = %v, want derived 1 at time 4", body)
	}

	if w := do(t, srv, "POST", "/api/time", `{"steps":-1}`); w.Code != http.StatusBadRequest {
		t.Errorf("negative steps: status = %d", w.Code)
	}
	if w := do(t, srv, "POST", "/api/cycle", `{"cycles":0}`); w.Code != http.StatusBadRequest {
		t.Errorf("zero cycles: status = %d", w.Code)
	}
}

func TestInfer(t *testing.T) {
	srv := testServer(t)
	postEvent(t, srv, `{"term":"a"}`)
	advanceTime(t, srv, 2)
	postEvent(t, srv, `{"term":"b"}`)

	w := do(t, srv, "POST", "/api/infer", `{"a":"a","b":"b"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	seq := body["sequence"].(map[string]any)
	if seq["term"] != "(a &/ b)" {
		t.Errorf("sequence = %v", seq["term"])
	}
	imp, ok := body["implication"].(map[string]any)
	if !ok || imp["term"] != "<a =/> b>" || imp["offset"] != float64(2) {
		t.Errorf("implication = %v", body["implication"])
	}
	if body["implication_stored"] != true {
		t.Error("implication not stored")
	}

	if w := do(t, srv, "POST", "/api/infer", `{"a":"b","b":"a"}`); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("reversed: status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	if w := do(t, srv, "POST", "/api/infer", `{"a":"a","b":"zzz"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown: status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if w := do(t, srv, "POST", "/api/infer", `{"a":"a"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing b: status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestConcepts(t *testing.T) {
	srv := testServer(t)
	postEvent(t, srv, `{"term":["-->","bird","animal"]}`)
	postEvent(t, srv, `{"term":"fish"}`)

	body := decode(t, do(t, srv, "GET", "/api/concepts", ""))
	if body["count"] != float64(2) {
		t.Errorf("count = %v, want 2", body["count"])
	}

	body = decode(t, do(t, srv, "GET", "/api/concepts?atom=animal", ""))
	if body["count"] != float64(1) {
		t.Errorf("filtered count = %v, want 1", body["count"])
	}

	body = decode(t, do(t, srv, "GET", "/api/concepts?limit=1", ""))
	if body["count"] != float64(1) {
		t.Errorf("limited count = %v, want 1", body["count"])
	}
}

func TestConceptLookup(t *testing.T) {
	srv := testServer(t)
	postEvent(t, srv, `{"term":"a","eternal":true}`)

	w := do(t, srv, "POST", "/api/concepts/lookup", `{"term":"a"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["term"] != "a" || body["belief"] == nil {
		t.Errorf("concept = %v", body)
	}

	if w := do(t, srv, "POST", "/api/concepts/lookup", `{"term":"b"}`); w.Code != http.StatusNotFound {
		t.Errorf("absent: status = %d, want 404", w.Code)
	}
}

func TestCyclingAndSnapshot(t *testing.T) {
	srv := testServer(t)
	postEvent(t, srv, `{"term":"a"}`)
	postEvent(t, srv, `{"term":"g","type":"goal"}`)

	body := decode(t, do(t, srv, "GET", "/api/cycling", ""))
	if body["count"] != float64(1) {
		t.Errorf("cycling count = %v, want 1", body["count"])
	}

	body = decode(t, do(t, srv, "GET", "/api/snapshot", ""))
	if len(body["concepts"].([]any)) != 1 || len(body["cycling"].([]any)) != 1 {
		t.Errorf("snapshot = %v", body)
	}
}

func TestRegisterOperation(t *testing.T) {
	srv := testServer(t)

	body := decode(t, do(t, srv, "POST", "/api/operations", `{"symbol":"^left"}`))
	if body["id"] != float64(1) {
		t.Errorf("id = %v, want 1", body["id"])
	}
	if w := do(t, srv, "POST", "/api/operations", `{"symbol":"left"}`); w.Code != http.StatusBadRequest {
		t.Errorf("plain atom: status = %d, want 400", w.Code)
	}
}

func TestJournal(t *testing.T) {
	srv := testServer(t)
	postEvent(t, srv, `{"term":"a"}`)
	postEvent(t, srv, `{"term":"b"}`)

	body := decode(t, do(t, srv, "GET", "/api/journal", ""))
	if body["count"] != float64(2) {
		t.Fatalf("count = %v, want 2", body["count"])
	}
	first := body["entries"].([]any)[0].(map[string]any)
	if first["statement"] != "b." || first["kind"] != "input" {
		t.Errorf("newest entry = %v", first)
	}

	body = decode(t, do(t, srv, "GET", "/api/journal?run="+srv.runID+"&limit=1", ""))
	entries := body["entries"].([]any)
	if len(entries) != 1 || entries[0].(map[string]any)["statement"] != "b." {
		t.Errorf("run tail = %v", entries)
	}
}

func TestRuns(t *testing.T) {
	srv := testServer(t)

	body := decode(t, do(t, srv, "GET", "/api/runs", ""))
	runs := body["runs"].([]any)
	if len(runs) != 1 {
		t.Fatalf("runs = %v", runs)
	}
	run := runs[0].(map[string]any)
	if run["run_id"] != srv.runID || run["status"] != "active" {
		t.Errorf("run = %v", run)
	}
}

func TestSummary(t *testing.T) {
	srv := testServer(t)
	postEvent(t, srv, `{"term":"a","eternal":true}`)

	w := do(t, srv, "GET", "/api/summary", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	out := w.Body.String()
	for _, want := range []string{"## YAN memory at t=0", "### Strongest Beliefs", "- a. %1.00;0.90%", "(this run)"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
