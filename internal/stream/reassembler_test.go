package stream

import (
	"reflect"
	"strings"
	"testing"
)

func feed(r *Reassembler, chunks []string) []string {
	var lines []string
	for _, c := range chunks {
		lines = append(lines, r.Push(c)...)
	}
	if last, ok := r.Flush(); ok {
		lines = append(lines, last)
	}
	return lines
}

func TestPush_MultipleLinesInOneChunk(t *testing.T) {
	r := New()
	got := r.Push("a\nb\nc\n")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Push returned %v, want %v", got, want)
	}
	if r.Carryover() != "" {
		t.Errorf("Carryover = %q, want empty", r.Carryover())
	}
}

func TestPush_NoNewlineGrowsCarryover(t *testing.T) {
	r := New()
	if got := r.Push(`{"date":"2024-`); got != nil {
		t.Errorf("Push returned %v, want nil", got)
	}
	if got := r.Push(`01-05"`); got != nil {
		t.Errorf("Push returned %v, want nil", got)
	}
	if r.Carryover() != `{"date":"2024-01-05"` {
		t.Errorf("Carryover = %q", r.Carryover())
	}
}

func TestPush_PartialLineCompletedByLaterChunk(t *testing.T) {
	r := New()
	var lines []string
	lines = append(lines, r.Push("first li")...)
	lines = append(lines, r.Push("ne\nsecond")...)
	lines = append(lines, r.Push(" line\n")...)

	want := []string{"first line", "second line"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
}

func TestFlush_UnterminatedFinalLine(t *testing.T) {
	r := New()
	r.Push("complete\nleftover")
	line, ok := r.Flush()
	if !ok || line != "leftover" {
		t.Errorf("Flush = (%q, %v), want (\"leftover\", true)", line, ok)
	}
	if r.Carryover() != "" {
		t.Errorf("Carryover after Flush = %q, want empty", r.Carryover())
	}
}

func TestFlush_BlankCarryover(t *testing.T) {
	r := New()
	r.Push("complete\n  ")
	if line, ok := r.Flush(); ok {
		t.Errorf("Flush = (%q, true), want no final line", line)
	}
}

func TestPushAfterFlushIgnored(t *testing.T) {
	r := New()
	r.Flush()
	if got := r.Push("late\n"); got != nil {
		t.Errorf("Push after Flush = %v, want nil", got)
	}
}

// Splitting the same text at every possible boundary must yield the same
// lines as feeding it whole.
func TestChunkBoundaryInvariance(t *testing.T) {
	text := `{"date":"2024-01-05","description":"Coffee","amount":5.50,"type":"debit"}` + "\n" +
		`{"date":"2024-01-06","description":"Salary","amount":2000,"type":"credit"}` + "\n" +
		`{"date":"2024-01-07","description":"Rent, flat 4","amount":950,"type":"debit"}`

	want := feed(New(), []string{text})

	for cut := 0; cut <= len(text); cut++ {
		got := feed(New(), []string{text[:cut], text[cut:]})
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("split at %d: lines = %v, want %v", cut, got, want)
		}
	}

	// One character per chunk.
	chunks := strings.Split(text, "")
	if got := feed(New(), chunks); !reflect.DeepEqual(got, want) {
		t.Errorf("char-by-char: lines = %v, want %v", got, want)
	}
}

func TestOrderPreservedAcrossChunks(t *testing.T) {
	var all []string
	for i := 0; i < 40; i++ {
		all = append(all, strings.Repeat("x", i)+"line")
	}
	text := strings.Join(all, "\n") + "\n"

	// Uneven chunk sizes unrelated to line boundaries.
	var chunks []string
	for i := 0; i < len(text); i += 7 {
		end := i + 7
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[i:end])
	}

	got := feed(New(), chunks)
	if !reflect.DeepEqual(got, all) {
		t.Errorf("order not preserved:\ngot  %v\nwant %v", got, all)
	}
}
