package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/recitar-dev/recitar/internal/constant"
	"github.com/recitar-dev/recitar/internal/model"
)

type fakeStore struct {
	appended []model.Summary
	err      error
}

func (f *fakeStore) Append(_ context.Context, s model.Summary) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, s)
	return nil
}

func newTestController(t *testing.T, store Store) *Controller {
	t.Helper()
	seq, err := constant.Lookup("pi")
	if err != nil {
		t.Fatalf("lookup pi: %v", err)
	}
	cfg := model.DrillConfig{Constant: "pi", PauseThreshold: 2 * time.Second, WrongLimit: 10}
	return New(seq, cfg, store)
}

func at(ms int) time.Time {
	return time.Unix(0, 0).Add(time.Duration(ms) * time.Millisecond)
}

func TestStartTwiceRejected(t *testing.T) {
	c := newTestController(t, nil)
	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := c.Start(); err == nil {
		t.Fatal("expected error starting an active session")
	}
}

func TestDigitWhileIdleIsDropped(t *testing.T) {
	c := newTestController(t, nil)
	toks, ended := c.OnDigit(context.Background(), '3', at(0))
	if toks != nil || ended != nil {
		t.Fatalf("expected no-op while idle, got %v %v", toks, ended)
	}
	if c.Active() {
		t.Fatal("controller should stay idle")
	}
}

func TestEndProducesSummary(t *testing.T) {
	store := &fakeStore{}
	c := newTestController(t, store)
	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	// pi starts 3 1 4 1 5.
	for i, sym := range []byte("31415") {
		c.OnDigit(context.Background(), sym, at(i*500))
	}
	res, err := c.End(context.Background())
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	s := res.Summary
	if s.Constant != "pi" || s.Correct != 5 || s.Wrong != 0 || s.Pauses != 0 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Digits != 5 || s.Accuracy != 1.0 {
		t.Fatalf("unexpected digits/accuracy: %+v", s)
	}
	if s.ID == "" {
		t.Fatal("summary must carry an ID")
	}
	if len(s.Transcript) != 5 {
		t.Fatalf("transcript len %d, want 5", len(s.Transcript))
	}
	if len(store.appended) != 1 || store.appended[0].ID != s.ID {
		t.Fatalf("summary not appended to store: %+v", store.appended)
	}
	if c.Active() {
		t.Fatal("controller should be idle after end")
	}
}

func TestAccuracyComputation(t *testing.T) {
	c := newTestController(t, nil)
	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	// pi: 3 1 4 1 5 9 2 6 5 3. Replace three with misses that match
	// nothing in the lookahead window.
	events := []byte{'3', '1', '4', '1', '5', '7', '7', '7', '5', '3'}
	for i, sym := range events {
		c.OnDigit(context.Background(), sym, at(i*500))
	}
	res, err := c.End(context.Background())
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if res.Summary.Correct != 7 || res.Summary.Wrong != 3 {
		t.Fatalf("got %d correct %d wrong, want 7/3", res.Summary.Correct, res.Summary.Wrong)
	}
	if res.Summary.Accuracy != 0.7 {
		t.Fatalf("accuracy = %v, want 0.7", res.Summary.Accuracy)
	}
}

func TestAutoEndOnWrongLimit(t *testing.T) {
	store := &fakeStore{}
	c := newTestController(t, store)
	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	var ended *Result
	for i := 0; i < 10; i++ {
		// '0' never matches the early pi window digits fed here.
		_, ended = c.OnDigit(context.Background(), '0', at(i*100))
		if i < 9 && ended != nil {
			t.Fatalf("ended early at event %d", i)
		}
	}
	if ended == nil {
		t.Fatal("expected auto-end after 10 wrong digits")
	}
	if !ended.Summary.Auto || ended.Summary.Wrong != 10 {
		t.Fatalf("unexpected auto summary: %+v", ended.Summary)
	}
	if c.Active() {
		t.Fatal("controller should be idle after auto-end")
	}
	// Late in-flight events after auto-end are dropped.
	toks, res := c.OnDigit(context.Background(), '3', at(5000))
	if toks != nil || res != nil {
		t.Fatal("late event must be dropped")
	}
	if len(store.appended) != 1 {
		t.Fatalf("store should hold exactly one summary, got %d", len(store.appended))
	}
}

func TestStoreFailureKeepsSummary(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("disk full")}
	c := newTestController(t, store)
	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.OnDigit(context.Background(), '3', at(0))
	res, err := c.End(context.Background())
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if res.StoreErr == nil {
		t.Fatal("expected surfaced store error")
	}
	if res.Summary.Correct != 1 {
		t.Fatalf("summary should remain valid: %+v", res.Summary)
	}
}

func TestResetIdempotentFromIdle(t *testing.T) {
	c := newTestController(t, nil)
	c.Reset()
	c.Reset()
	if c.Active() {
		t.Fatal("reset must leave controller idle")
	}
	snap := c.Snapshot()
	if snap.Correct != 0 || snap.Wrong != 0 || snap.Pauses != 0 || snap.Cursor != 0 {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
	if c.Transcript() != nil {
		t.Fatal("expected nil transcript while idle")
	}
}

func TestResetDiscardsWithoutPersisting(t *testing.T) {
	store := &fakeStore{}
	c := newTestController(t, store)
	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.OnDigit(context.Background(), '3', at(0))
	c.Reset()
	if len(store.appended) != 0 {
		t.Fatal("reset must not persist a summary")
	}
	if c.Active() {
		t.Fatal("controller should be idle after reset")
	}
	// A fresh start works after reset.
	if err := c.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
}
