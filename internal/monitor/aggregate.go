package monitor

import "github.com/gitlab-tools/token-monitor/model"

// KindFailure records that an entire token kind could not be checked.
type KindFailure struct {
	Kind model.TokenKind
	Err  error
}

// Aggregate is the per-run summary handed to the reporter. Counts are only
// ever incremented by the same Add call that appends to the token lists, so
// displayed totals cannot drift from displayed tokens.
type Aggregate struct {
	tokens   map[model.TokenKind]map[model.Category][]model.Token
	counts   map[model.TokenKind]map[model.Category]int
	skipped  map[model.TokenKind]int
	Failures []KindFailure
}

func NewAggregate() *Aggregate {
	return &Aggregate{
		tokens:  make(map[model.TokenKind]map[model.Category][]model.Token),
		counts:  make(map[model.TokenKind]map[model.Category]int),
		skipped: make(map[model.TokenKind]int),
	}
}

func (a *Aggregate) Add(tok model.Token, cat model.Category) {
	if a.tokens[tok.Kind] == nil {
		a.tokens[tok.Kind] = make(map[model.Category][]model.Token)
		a.counts[tok.Kind] = make(map[model.Category]int)
	}
	a.tokens[tok.Kind][cat] = append(a.tokens[tok.Kind][cat], tok)
	a.counts[tok.Kind][cat]++
}

func (a *Aggregate) RecordSkip(kind model.TokenKind) {
	a.skipped[kind]++
}

func (a *Aggregate) RecordFailure(kind model.TokenKind, err error) {
	a.Failures = append(a.Failures, KindFailure{Kind: kind, Err: err})
}

// Tokens returns the classified tokens of one kind and category.
func (a *Aggregate) Tokens(kind model.TokenKind, cat model.Category) []model.Token {
	return a.tokens[kind][cat]
}

func (a *Aggregate) Count(kind model.TokenKind, cat model.Category) int {
	return a.counts[kind][cat]
}

// CategoryCount sums one category across all kinds.
func (a *Aggregate) CategoryCount(cat model.Category) int {
	var n int
	for _, kind := range model.Kinds {
		n += a.counts[kind][cat]
	}
	return n
}

// KindTotal sums all categories of one kind.
func (a *Aggregate) KindTotal(kind model.TokenKind) int {
	var n int
	for _, cat := range model.Categories {
		n += a.counts[kind][cat]
	}
	return n
}

// Total is the number of classified tokens across all kinds. Skipped
// malformed records are not included.
func (a *Aggregate) Total() int {
	var n int
	for _, kind := range model.Kinds {
		n += a.KindTotal(kind)
	}
	return n
}

// Problematic is the number of tokens needing attention.
func (a *Aggregate) Problematic() int {
	return a.CategoryCount(model.CategoryExpired) + a.CategoryCount(model.CategoryExpiringSoon)
}

func (a *Aggregate) Skipped(kind model.TokenKind) int {
	return a.skipped[kind]
}

func (a *Aggregate) SkippedTotal() int {
	var n int
	for _, kind := range model.Kinds {
		n += a.skipped[kind]
	}
	return n
}

// ShouldSend is the report decision gate. It is evaluated once, from this
// aggregate, never recomputed from raw data.
func (a *Aggregate) ShouldSend(sendAll bool) bool {
	return sendAll || a.Problematic() > 0
}
