package domain

import "time"

// Match is a scheduled game one of the participants plays in.
type Match struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Opponent    string      `json:"opponent"`
	Location    string      `json:"location"`
	MatchDate   time.Time   `json:"match_date"`
	RemindAt    time.Time   `json:"remind_at"`
	IsCompleted bool        `json:"is_completed"`
	CreatedBy   Participant `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
}

// MatchStatus is derived from the match date and completion flag.
type MatchStatus string

const (
	MatchUpcoming  MatchStatus = "upcoming"
	MatchOngoing   MatchStatus = "ongoing"
	MatchCompleted MatchStatus = "completed"
)

// Valid reports whether s is a known status.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchUpcoming, MatchOngoing, MatchCompleted:
		return true
	}
	return false
}

// StatusAt derives the match status at now. A match whose day has passed
// counts as completed even if nobody marked it.
func (m *Match) StatusAt(now time.Time) MatchStatus {
	if m.IsCompleted {
		return MatchCompleted
	}
	matchDay := dayStart(m.MatchDate.In(now.Location()))
	today := dayStart(now)
	switch {
	case matchDay.Before(today):
		return MatchCompleted
	case matchDay.Equal(today):
		return MatchOngoing
	default:
		return MatchUpcoming
	}
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CheerKind is a way of supporting the partner during a match.
type CheerKind string

const (
	CheerMessage     CheerKind = "message"
	CheerVoice       CheerKind = "voice"
	CheerSurprise    CheerKind = "surprise"
	CheerCelebration CheerKind = "celebration"
)

var cheerPoints = map[CheerKind]int{
	CheerMessage:     5,
	CheerVoice:       8,
	CheerSurprise:    20,
	CheerCelebration: 10,
}

// Points returns the grant for a cheer and whether k is known.
func (k CheerKind) Points() (int, bool) {
	p, ok := cheerPoints[k]
	return p, ok
}
