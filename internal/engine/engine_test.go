package engine

import (
	"testing"
	"time"

	"github.com/recitar-dev/recitar/internal/model"
)

// target implements Target over a literal digit string.
type target string

func (t target) Len() int      { return len(t) }
func (t target) At(i int) byte { return t[i] }

func at(ms int) time.Time {
	return time.Unix(0, 0).Add(time.Duration(ms) * time.Millisecond)
}

func checkInvariant(t *testing.T, e *Engine) {
	t.Helper()
	snap := e.Snapshot()
	if got, want := len(e.Transcript()), snap.Correct+snap.Wrong+snap.Pauses; got != want {
		t.Fatalf("transcript len %d, want %d", got, want)
	}
}

func TestPerfectRecitation(t *testing.T) {
	e := New(target("3141"), 0, 0)
	for i, sym := range []byte("3141") {
		toks, done := e.Grade(sym, at(i*500))
		if done {
			t.Fatalf("unexpected done at event %d", i)
		}
		if len(toks) != 1 || toks[0].Kind != model.TokenDigit || !toks[0].Correct {
			t.Fatalf("event %d: got %+v, want one correct digit token", i, toks)
		}
		checkInvariant(t, e)
	}
	snap := e.Snapshot()
	if snap.Correct != 4 || snap.Wrong != 0 || snap.Pauses != 0 || snap.Cursor != 4 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestPauseStrictlyGreaterThanThreshold(t *testing.T) {
	cases := []struct {
		name      string
		secondAt  int
		wantPause int
	}{
		{"just over threshold", 2100, 1},
		{"exactly at threshold", 2000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := New(target("31"), 0, 0)
			e.Grade('3', at(0))
			toks, _ := e.Grade('1', at(tc.secondAt))
			if got := e.Snapshot().Pauses; got != tc.wantPause {
				t.Fatalf("pauses = %d, want %d", got, tc.wantPause)
			}
			if tc.wantPause == 1 {
				if len(toks) != 2 || toks[0].Kind != model.TokenPause {
					t.Fatalf("expected pause then digit, got %+v", toks)
				}
			}
			checkInvariant(t, e)
		})
	}
}

func TestNoPauseBeforeFirstEvent(t *testing.T) {
	e := New(target("3"), 0, 0)
	// An arbitrarily late first arrival must not produce a pause.
	e.Grade('3', at(60_000))
	if got := e.Snapshot().Pauses; got != 0 {
		t.Fatalf("pauses = %d, want 0", got)
	}
}

func TestPauseFiresIndependentOfMatch(t *testing.T) {
	e := New(target("31"), 0, 0)
	e.Grade('3', at(0))
	toks, _ := e.Grade('9', at(3000))
	if len(toks) != 2 {
		t.Fatalf("expected pause + wrong digit, got %+v", toks)
	}
	if toks[0].Kind != model.TokenPause {
		t.Fatalf("first token should be a pause, got %+v", toks[0])
	}
	if toks[1].Kind != model.TokenDigit || toks[1].Correct {
		t.Fatalf("second token should be a wrong digit, got %+v", toks[1])
	}
	checkInvariant(t, e)
}

func TestLookaheadSkip(t *testing.T) {
	e := New(target("314"), 0, 0)
	toks, _ := e.Grade('1', at(0))
	if len(toks) != 2 {
		t.Fatalf("expected 2 tokens, got %+v", toks)
	}
	if toks[0].Symbol != '3' || toks[0].Correct {
		t.Fatalf("skipped token should be wrong '3', got %+v", toks[0])
	}
	if toks[1].Symbol != '1' || !toks[1].Correct {
		t.Fatalf("matched token should be correct '1', got %+v", toks[1])
	}
	snap := e.Snapshot()
	if snap.Cursor != 2 || snap.Wrong != 1 || snap.Correct != 1 {
		t.Fatalf("unexpected snapshot after skip: %+v", snap)
	}
	checkInvariant(t, e)
}

func TestImmediateMatchPreferredOverLookahead(t *testing.T) {
	// Both window positions hold the same digit; offset 0 must win.
	e := New(target("330"), 0, 0)
	e.Grade('3', at(0))
	if snap := e.Snapshot(); snap.Cursor != 1 || snap.Wrong != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestGenuineMiss(t *testing.T) {
	e := New(target("314"), 0, 0)
	toks, _ := e.Grade('9', at(0))
	if len(toks) != 1 || toks[0].Symbol != '9' || toks[0].Correct {
		t.Fatalf("expected single wrong '9', got %+v", toks)
	}
	snap := e.Snapshot()
	if snap.Cursor != 1 || snap.Wrong != 1 {
		t.Fatalf("unexpected snapshot after miss: %+v", snap)
	}
	checkInvariant(t, e)
}

func TestLookaheadWindowClampedNearEnd(t *testing.T) {
	e := New(target("31"), 0, 0)
	e.Grade('3', at(0))
	// Cursor at last position: window is 1, so a digit matching nothing
	// past the end is a plain miss.
	toks, _ := e.Grade('9', at(100))
	if len(toks) != 1 || toks[0].Correct {
		t.Fatalf("expected a single wrong token, got %+v", toks)
	}
	if snap := e.Snapshot(); snap.Cursor != 2 {
		t.Fatalf("cursor = %d, want 2", snap.Cursor)
	}
}

func TestOverflowAfterSequenceEnd(t *testing.T) {
	e := New(target("31"), 0, 0)
	e.Grade('3', at(0))
	e.Grade('1', at(100))
	for i := 0; i < 3; i++ {
		toks, _ := e.Grade('3', at(200+i*100))
		if len(toks) != 1 || toks[0].Correct {
			t.Fatalf("overflow event %d: got %+v, want wrong digit", i, toks)
		}
		if snap := e.Snapshot(); snap.Cursor != 2 {
			t.Fatalf("cursor moved past end: %d", snap.Cursor)
		}
		checkInvariant(t, e)
	}
	if snap := e.Snapshot(); snap.Wrong != 3 || snap.Correct != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestWrongLimitTerminates(t *testing.T) {
	e := New(target("000000000000"), 0, 10)
	var done bool
	for i := 0; i < 10; i++ {
		if done {
			t.Fatalf("done signalled early at event %d", i)
		}
		_, done = e.Grade('9', at(i*100))
	}
	if !done {
		t.Fatal("expected done after 10 wrong digits")
	}
	if snap := e.Snapshot(); snap.Wrong != 10 {
		t.Fatalf("wrong = %d, want 10", snap.Wrong)
	}
}

func TestWrongLimitViaOverflow(t *testing.T) {
	e := New(target("3"), 0, 2)
	e.Grade('3', at(0))
	if _, done := e.Grade('1', at(100)); done {
		t.Fatal("done too early")
	}
	if _, done := e.Grade('4', at(200)); !done {
		t.Fatal("expected done on second overflow wrong")
	}
}

func TestTranscriptNeverReclassified(t *testing.T) {
	e := New(target("314159"), 0, 0)
	events := []byte{'3', '9', '4', '1', '5'}
	var seen []model.Token
	for i, sym := range events {
		toks, _ := e.Grade(sym, at(i*100))
		seen = append(seen, toks...)
		full := e.Transcript()
		for j, tok := range seen {
			if full[j] != tok {
				t.Fatalf("token %d changed: was %+v, now %+v", j, tok, full[j])
			}
		}
		checkInvariant(t, e)
	}
}
