// Package model defines shared data structures.
package model

import "time"

// TokenKind discriminates transcript token variants.
type TokenKind int

// Transcript token kinds.
const (
	TokenDigit TokenKind = iota
	TokenPause
)

// Token is one entry of a session transcript: either a graded digit or a
// pause marker. Symbol and Correct are meaningful only for TokenDigit.
type Token struct {
	Kind    TokenKind
	Symbol  byte
	Correct bool
}

// DigitToken builds a graded digit token.
func DigitToken(symbol byte, correct bool) Token {
	return Token{Kind: TokenDigit, Symbol: symbol, Correct: correct}
}

// PauseToken builds a pause marker token.
func PauseToken() Token {
	return Token{Kind: TokenPause}
}

// DrillConfig defines drill settings.
type DrillConfig struct {
	Constant       string
	PauseThreshold time.Duration
	WrongLimit     int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Constant    string
	Last        int
	CurveWindow int
	WeakWindow  int
}

// Summary captures a finalized recitation session. It is immutable once
// built; the store persists it verbatim.
type Summary struct {
	ID         string
	Constant   string
	StartedAt  time.Time
	Duration   time.Duration
	Digits     int
	Correct    int
	Wrong      int
	Pauses     int
	Accuracy   float64
	Auto       bool
	Transcript []Token
}

// SessionAggregate summarizes a stored session for listing and reporting.
type SessionAggregate struct {
	ID         string
	Constant   string
	StartedAt  time.Time
	DurationMs int64
	Digits     int
	Correct    int
	Wrong      int
	Pauses     int
	Accuracy   float64
}

// DigitAggregate aggregates grading outcomes for one digit symbol across
// sessions.
type DigitAggregate struct {
	Symbol  string
	Correct int
	Wrong   int
}
