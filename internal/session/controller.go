// Package session owns the drill session lifecycle around the grading
// engine: start, digit ingestion, termination, and summary handoff.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recitar-dev/recitar/internal/constant"
	"github.com/recitar-dev/recitar/internal/engine"
	"github.com/recitar-dev/recitar/internal/model"
)

// Store is the durable summary sink. Only Append is needed here; listing
// and deletion are driven by presentation code directly.
type Store interface {
	Append(ctx context.Context, summary model.Summary) error
}

// Result is returned when a session ends. StoreErr is non-nil when the
// summary could not be persisted; the summary itself is still valid.
type Result struct {
	Summary  model.Summary
	StoreErr error
}

// Controller serializes all session mutation. Digit events may arrive
// from an asynchronous source; events delivered while no session is
// active are dropped.
type Controller struct {
	mu    sync.Mutex
	seq   constant.Sequence
	cfg   model.DrillConfig
	store Store
	now   func() time.Time

	eng       *engine.Engine
	active    bool
	startedAt time.Time
}

// New builds a controller for one constant. The store may be nil, in
// which case summaries are only surfaced to the caller.
func New(seq constant.Sequence, cfg model.DrillConfig, store Store) *Controller {
	return &Controller{
		seq:   seq,
		cfg:   cfg,
		store: store,
		now:   time.Now,
	}
}

// Start begins a fresh session. Starting while a session is active or
// against an empty sequence is rejected.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return fmt.Errorf("session already active")
	}
	if c.seq.Len() == 0 {
		return fmt.Errorf("constant %q has an empty digit sequence", c.cfg.Constant)
	}
	c.eng = engine.New(c.seq, c.cfg.PauseThreshold, c.cfg.WrongLimit)
	c.startedAt = c.now()
	c.active = true
	return nil
}

// OnDigit applies one digit arrival. Events while idle are silently
// dropped (late deliveries from an already-stopped source are expected).
// When the engine signals termination, the session is ended automatically
// and the result returned.
func (c *Controller) OnDigit(ctx context.Context, symbol byte, at time.Time) (appended []model.Token, ended *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return nil, nil
	}
	appended, done := c.eng.Grade(symbol, at)
	if done {
		res := c.finalize(ctx, true)
		return appended, &res
	}
	return appended, nil
}

// End finishes the active session, persists the summary, and returns it.
func (c *Controller) End(ctx context.Context) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return Result{}, fmt.Errorf("no active session")
	}
	return c.finalize(ctx, false), nil
}

// finalize must be called with the lock held and the session active.
func (c *Controller) finalize(ctx context.Context, auto bool) Result {
	snap := c.eng.Snapshot()
	digits := snap.Correct + snap.Wrong
	accuracy := 0.0
	if digits > 0 {
		accuracy = float64(snap.Correct) / float64(digits)
	}
	summary := model.Summary{
		ID:         uuid.NewString(),
		Constant:   c.seq.Code(),
		StartedAt:  c.startedAt,
		Duration:   c.now().Sub(c.startedAt),
		Digits:     digits,
		Correct:    snap.Correct,
		Wrong:      snap.Wrong,
		Pauses:     snap.Pauses,
		Accuracy:   accuracy,
		Auto:       auto,
		Transcript: c.eng.Transcript(),
	}
	c.active = false
	c.eng = nil

	res := Result{Summary: summary}
	if c.store != nil {
		res.StoreErr = c.store.Append(ctx, summary)
	}
	return res
}

// Reset discards any session state without persisting a summary. Safe to
// call from any state; resetting while idle is a no-op.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	c.eng = nil
	c.startedAt = time.Time{}
}

// Active reports whether a session is in progress.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Snapshot returns the live counters, or a zero snapshot while idle.
func (c *Controller) Snapshot() engine.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return engine.Snapshot{}
	}
	return c.eng.Snapshot()
}

// Transcript returns a copy of the live transcript, or nil while idle.
func (c *Controller) Transcript() []model.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return nil
	}
	return c.eng.Transcript()
}

// Sequence returns the target sequence being drilled.
func (c *Controller) Sequence() constant.Sequence {
	return c.seq
}
