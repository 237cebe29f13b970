// Package engine grades incoming digit events against a target sequence.
package engine

import (
	"time"

	"github.com/recitar-dev/recitar/internal/model"
)

// Defaults for drill grading.
const (
	DefaultPauseThreshold = 2 * time.Second
	DefaultWrongLimit     = 10

	// lookahead bounds how far past the cursor a digit may match, so a
	// single dropped recognition does not derail the rest of the session.
	lookahead = 2
)

// Target is the sequence being recited: an immutable, 0-indexed list of
// ASCII digits. constant.Sequence satisfies it.
type Target interface {
	Len() int
	At(i int) byte
}

// Snapshot is a read-only view of live session counters.
type Snapshot struct {
	Cursor  int
	Correct int
	Wrong   int
	Pauses  int
}

// Engine is the per-session grading state machine. It is not safe for
// concurrent use; callers must serialize Grade calls.
type Engine struct {
	target         Target
	pauseThreshold time.Duration
	wrongLimit     int

	cursor     int
	transcript []model.Token
	correct    int
	wrong      int
	pauses     int

	lastArrival time.Time
	hasArrival  bool
}

// New builds an engine over the given target sequence. Non-positive
// threshold or limit fall back to the defaults.
func New(target Target, pauseThreshold time.Duration, wrongLimit int) *Engine {
	if pauseThreshold <= 0 {
		pauseThreshold = DefaultPauseThreshold
	}
	if wrongLimit <= 0 {
		wrongLimit = DefaultWrongLimit
	}
	return &Engine{
		target:         target,
		pauseThreshold: pauseThreshold,
		wrongLimit:     wrongLimit,
	}
}

// Grade classifies one digit arrival. It returns the tokens appended by
// this event in order, and done=true when the wrong limit has been reached
// and the session must end.
func (e *Engine) Grade(symbol byte, at time.Time) (appended []model.Token, done bool) {
	if e.hasArrival && at.Sub(e.lastArrival) > e.pauseThreshold {
		appended = append(appended, e.append(model.PauseToken()))
	}
	e.lastArrival = at
	e.hasArrival = true

	if e.cursor >= e.target.Len() {
		// Past the end of the sequence: everything is wrong, the cursor
		// stays put, no lookahead.
		appended = append(appended, e.append(model.DigitToken(symbol, false)))
		return appended, e.wrong >= e.wrongLimit
	}

	window := e.target.Len() - e.cursor
	if window > lookahead {
		window = lookahead
	}
	matched := -1
	for i := 0; i < window; i++ {
		if e.target.At(e.cursor+i) == symbol {
			matched = i
			break
		}
	}

	if matched >= 0 {
		// Positions skipped over were most likely spoken but not
		// recognized; they still count as wrong in the transcript.
		for i := 0; i < matched; i++ {
			appended = append(appended, e.append(model.DigitToken(e.target.At(e.cursor+i), false)))
		}
		appended = append(appended, e.append(model.DigitToken(symbol, true)))
		e.cursor += matched + 1
	} else {
		appended = append(appended, e.append(model.DigitToken(symbol, false)))
		e.cursor++
	}
	return appended, e.wrong >= e.wrongLimit
}

func (e *Engine) append(tok model.Token) model.Token {
	e.transcript = append(e.transcript, tok)
	switch tok.Kind {
	case model.TokenPause:
		e.pauses++
	case model.TokenDigit:
		if tok.Correct {
			e.correct++
		} else {
			e.wrong++
		}
	}
	return tok
}

// Snapshot returns the live counters.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Cursor:  e.cursor,
		Correct: e.correct,
		Wrong:   e.wrong,
		Pauses:  e.pauses,
	}
}

// Transcript returns a copy of the tokens emitted so far.
func (e *Engine) Transcript() []model.Token {
	out := make([]model.Token, len(e.transcript))
	copy(out, e.transcript)
	return out
}

// Target returns the sequence this engine grades against.
func (e *Engine) Target() Target {
	return e.target
}
