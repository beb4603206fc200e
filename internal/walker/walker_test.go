package walker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"codeberg.org/snonux/jsontranslate/internal/domain"
	"codeberg.org/snonux/jsontranslate/internal/jsontree"
	"codeberg.org/snonux/jsontranslate/internal/policy"
)

func newWalker(t *testing.T) *Walker {
	t.Helper()
	p, err := policy.New(policy.Config{
		UseDefaults: true,
		SkipKeys:    policy.DefaultSkipKeys,
		Marker:      "@@",
	})
	if err != nil {
		t.Fatalf("policy.New failed: %v", err)
	}
	return New(p, 32)
}

func parse(t *testing.T, s string) jsontree.Value {
	t.Helper()
	v, err := jsontree.Parse([]byte(s), 0)
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", s, err)
	}
	return v
}

func marshal(t *testing.T, v jsontree.Value) string {
	t.Helper()
	b, err := jsontree.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	return string(b)
}

func identity(_ context.Context, text string) (string, string, error) {
	return text, "", nil
}

func upper(_ context.Context, text string) (string, string, error) {
	return strings.ToUpper(text), "", nil
}

var shapeDocs = []string{
	`null`,
	`"Hello"`,
	`{"a":1,"b":["x","y"],"c":null}`,
	`{"payload":{"translations":{"greeting":"Hello, world!","nested":{"message":"Welcome"}}}}`,
	`[[["deep"]],{"k":[true,false,1.50,"Good morning"]},""]`,
	`{"id":"abc","url":"https://example.com","title":"  Spaced title  ","tags":["one","two"]}`,
	`{"a":"Same","b":"Same","c":{"d":"Same"}}`,
}

func TestWalk_ShapePreserved(t *testing.T) {
	w := newWalker(t)

	for _, doc := range shapeDocs {
		t.Run(doc, func(t *testing.T) {
			in := parse(t, doc)
			out, _, err := w.Walk(context.Background(), in, upper)
			if err != nil {
				t.Fatalf("Walk failed: %v", err)
			}
			if !jsontree.SameShape(in, out) {
				t.Errorf("Shape changed:\n in: %s\nout: %s", doc, marshal(t, out))
			}
		})
	}
}

func TestWalk_IdentityIsIdempotent(t *testing.T) {
	w := newWalker(t)

	for _, doc := range shapeDocs {
		in := parse(t, doc)
		out, notes, err := w.Walk(context.Background(), in, identity)
		if err != nil {
			t.Fatalf("Walk failed: %v", err)
		}
		if !jsontree.Equal(in, out) {
			t.Errorf("Identity walk changed %s into %s", doc, marshal(t, out))
		}
		if len(notes) != 0 {
			t.Errorf("Expected no notes, got %v", notes)
		}
	}
}

func TestWalk_NonStringsNeverTranslated(t *testing.T) {
	w := newWalker(t)
	in := parse(t, `{"a":1,"b":[true,false,null,2.50e3],"c":{"d":{}}}`)

	calls := 0
	fn := func(_ context.Context, text string) (string, string, error) {
		calls++
		return "changed", "", nil
	}

	out, _, err := w.Walk(context.Background(), in, fn)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if calls != 0 {
		t.Errorf("Expected 0 translate calls, got %d", calls)
	}
	if !jsontree.Equal(in, out) {
		t.Errorf("Document without strings changed: %s", marshal(t, out))
	}
}

func TestWalk_ConcreteScenario(t *testing.T) {
	w := newWalker(t)
	in := parse(t, `{"payload":{"translations":{"greeting":"Hello, world!","nested":{"message":"Welcome"}}}}`)

	dict := map[string]string{
		"Hello, world!": "مرحباً بالعالم!",
		"Welcome":       "مرحباً",
	}
	fn := func(_ context.Context, text string) (string, string, error) {
		return dict[text], "", nil
	}

	out, notes, err := w.Walk(context.Background(), in, fn)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	want := `{"payload":{"translations":{"greeting":"مرحباً بالعالم!","nested":{"message":"مرحباً"}}}}`
	if got := marshal(t, out); got != want {
		t.Errorf("Walk = %s, want %s", got, want)
	}
	if len(notes) != 0 {
		t.Errorf("Expected no notes, got %v", notes)
	}
}

func TestWalk_FailureIsolation(t *testing.T) {
	w := newWalker(t)
	in := parse(t, `{"first":"Good morning","second":"Good night","third":"Good evening"}`)

	fn := func(_ context.Context, text string) (string, string, error) {
		if text == "Good night" {
			return "", "", errors.New("capability error")
		}
		return strings.ToUpper(text), "", nil
	}

	out, notes, err := w.Walk(context.Background(), in, fn)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	want := `{"first":"GOOD MORNING","second":"Good night","third":"GOOD EVENING"}`
	if got := marshal(t, out); got != want {
		t.Errorf("Walk = %s, want %s", got, want)
	}
	if len(notes) != 1 {
		t.Fatalf("Expected 1 note, got %d", len(notes))
	}
	if notes[0].Path != "/second" || notes[0].Kind != domain.NoteFailure {
		t.Errorf("Unexpected note %+v", notes[0])
	}
	if notes[0].Message != "capability error" {
		t.Errorf("Note message = %q", notes[0].Message)
	}
}

func TestWalk_ExcludedNeverPassedToTranslate(t *testing.T) {
	w := newWalker(t)
	in := parse(t, `{"link":"https://example.com/docs","id":"Readable words","raw":"@@Acme Corp","text":"Read the docs"}`)

	calls := map[string]int{}
	fn := func(_ context.Context, text string) (string, string, error) {
		calls[text]++
		return text, "", nil
	}

	if _, _, err := w.Walk(context.Background(), in, fn); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	for _, excluded := range []string{"https://example.com/docs", "Readable words", "@@Acme Corp"} {
		if calls[excluded] != 0 {
			t.Errorf("Excluded %q was passed to translate %d times", excluded, calls[excluded])
		}
	}
	if calls["Read the docs"] != 1 {
		t.Errorf("Expected one call for eligible leaf, got %d", calls["Read the docs"])
	}
}

func TestWalk_NotesInDocumentOrder(t *testing.T) {
	w := newWalker(t)
	in := parse(t, `{"z":"Paris","a":["Apple","plain text"]}`)

	fn := func(_ context.Context, text string) (string, string, error) {
		switch text {
		case "Paris", "Apple":
			return text, fmt.Sprintf("%s kept as proper noun", text), nil
		}
		return text, "", nil
	}

	_, notes, err := w.Walk(context.Background(), in, fn)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(notes) != 2 {
		t.Fatalf("Expected 2 notes, got %d", len(notes))
	}
	if notes[0].Path != "/z" || notes[1].Path != "/a/0" {
		t.Errorf("Notes out of order: %+v", notes)
	}
	if notes[0].Kind != domain.NoteClarification {
		t.Errorf("Expected clarification note, got %s", notes[0].Kind)
	}
}

func TestWalk_WhitespaceRestored(t *testing.T) {
	w := newWalker(t)
	in := parse(t, `{"title":"  Spaced title\n"}`)

	var seen string
	fn := func(_ context.Context, text string) (string, string, error) {
		seen = text
		return "TITLE", "", nil
	}

	out, _, err := w.Walk(context.Background(), in, fn)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if seen != "Spaced title" {
		t.Errorf("Translate received %q, want trimmed text", seen)
	}
	if got := marshal(t, out); got != `{"title":"  TITLE\n"}` {
		t.Errorf("Walk = %s", got)
	}
}

func TestWalk_Cancelled(t *testing.T) {
	w := newWalker(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := w.Walk(ctx, parse(t, `["one thing"]`), identity)
	if !errors.Is(err, domain.ErrCancelled) {
		t.Errorf("Expected ErrCancelled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got %v", err)
	}
}

func TestCollect_TooDeep(t *testing.T) {
	p, _ := policy.New(policy.Config{})
	w := New(p, 3)

	v := jsontree.Value(jsontree.String("leaf"))
	for i := 0; i < 4; i++ {
		v = jsontree.Array{v}
	}

	_, err := w.Collect(v)
	if !errors.Is(err, domain.ErrTooDeep) {
		t.Errorf("Expected ErrTooDeep, got %v", err)
	}
}

func TestCollect_OrderAndPaths(t *testing.T) {
	w := newWalker(t)
	in := parse(t, `{"b":"Second thing","a":["First item","Other item"],"c":{"d":"Last thing"}}`)

	units, err := w.Collect(in)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	want := []string{"/b", "/a/0", "/a/1", "/c/d"}
	if len(units) != len(want) {
		t.Fatalf("Expected %d units, got %d", len(want), len(units))
	}
	for i, u := range units {
		if u.Ordinal != i {
			t.Errorf("Unit %d has ordinal %d", i, u.Ordinal)
		}
		if u.Path.String() != want[i] {
			t.Errorf("Unit %d path = %s, want %s", i, u.Path, want[i])
		}
	}
}

func TestRebuild_OutOfOrderOutcomes(t *testing.T) {
	w := newWalker(t)
	in := parse(t, `{"a":"One thing","b":["Two things","Three things"]}`)

	units, err := w.Collect(in)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	// Fill the outcome slots in reverse arrival order.
	outcomes := make([]Outcome, len(units))
	for i := len(units) - 1; i >= 0; i-- {
		outcomes[units[i].Ordinal] = Outcome{Text: fmt.Sprintf("T%d", units[i].Ordinal)}
	}

	out, _ := w.Rebuild(in, units, outcomes)
	if got := marshal(t, out); got != `{"a":"T0","b":["T1","T2"]}` {
		t.Errorf("Rebuild = %s", got)
	}
}

func TestRebuild_DuplicateKeys(t *testing.T) {
	w := newWalker(t)
	in := parse(t, `{"a":"https://example.com","a":"Hello there"}`)

	out, _, err := w.Walk(context.Background(), in, upper)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if got := marshal(t, out); got != `{"a":"https://example.com","a":"HELLO THERE"}` {
		t.Errorf("Walk = %s", got)
	}
}
