package model

import "time"

type TokenKind string

const (
	KindPersonal TokenKind = "personal"
	KindProject  TokenKind = "project"
	KindGroup    TokenKind = "group"
)

// Kinds lists all token kinds in report order.
var Kinds = []TokenKind{KindPersonal, KindProject, KindGroup}

func (k TokenKind) Title() string {
	switch k {
	case KindPersonal:
		return "Personal"
	case KindProject:
		return "Project"
	case KindGroup:
		return "Group"
	}
	return string(k)
}

// Token is the canonical access token entity. Exactly the owner fields of
// its Kind are populated; the normalizer never emits a partial record.
type Token struct {
	ID     int64
	Kind   TokenKind
	Name   string
	Scopes []string

	// ExpiresAt is a date-only boundary in UTC. Nil means the token never
	// expires.
	ExpiresAt *time.Time

	// personal
	Username  string
	UserEmail string

	// project
	ProjectName string
	ProjectPath string

	// group
	GroupName string
	GroupPath string

	// project and group
	AccessLevel int
}

// DaysUntil returns the number of whole days between now and the token's
// expiry date, negative when already expired. ok is false for tokens that
// never expire.
func (t *Token) DaysUntil(now time.Time) (days int, ok bool) {
	if t.ExpiresAt == nil {
		return 0, false
	}
	return int(DateOnly(*t.ExpiresAt).Sub(DateOnly(now)).Hours() / 24), true
}

// DateOnly truncates t to its UTC calendar date. All expiry comparisons
// happen at day granularity.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
