// Package timeparse resolves Japanese time expressions ("明日の朝", "30分後",
// "今日18時") into absolute instants.
package timeparse

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Strategy is one way of reading a normalized time expression. It returns
// false when it cannot produce an instant.
type Strategy interface {
	Name() string
	Resolve(text string, now time.Time) (time.Time, bool)
}

// Resolver tries its strategies in order and returns the first success.
type Resolver struct {
	strategies []Strategy
}

func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// NewDefaultResolver returns the natural-language parser followed by the
// fixed pattern table, both reading wall-clock values in loc. Inputs shaped
// like a table pattern are left to the table.
func NewDefaultResolver(loc *time.Location) *Resolver {
	table := NewPatternStrategy(loc)
	return NewResolver(NewNaturalStrategy(loc).DeferTo(table.Anchors), table)
}

// Resolve returns the instant, in UTC, that text refers to relative to now.
func (r *Resolver) Resolve(text string, now time.Time) (time.Time, bool) {
	normalized := Normalize(text)
	if normalized == "" {
		return time.Time{}, false
	}

	for _, s := range r.strategies {
		if t, ok := tryStrategy(s, normalized, now); ok {
			log.Debug().
				Str("strategy", s.Name()).
				Str("input", normalized).
				Time("resolved", t).
				Msg("time expression resolved")
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

func tryStrategy(s Strategy, text string, now time.Time) (t time.Time, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			log.Warn().
				Str("strategy", s.Name()).
				Str("input", text).
				Interface("panic", p).
				Msg("time strategy panicked, treating as unresolved")
			t, ok = time.Time{}, false
		}
	}()
	return s.Resolve(text, now)
}
