package domain

import "time"

// Category is the life area an exchange record belongs to.
type Category string

const (
	CategoryWork Category = "work"
	CategoryLife Category = "life"
	CategoryLove Category = "love"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryLife, CategoryLove:
		return true
	}
	return false
}

// Action is the shot played with an exchange record.
type Action string

const (
	ActionServe  Action = "serve"
	ActionReturn Action = "return"
	ActionSmash  Action = "smash"
	ActionDrop   Action = "drop"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionServe, ActionReturn, ActionSmash, ActionDrop:
		return true
	}
	return false
}

// IsResponse reports whether a may be played in reply to a pending record.
// A serve always opens a new thread.
func (a Action) IsResponse() bool {
	return a == ActionReturn || a == ActionSmash || a == ActionDrop
}

// DefaultEmotionScore is used when a record is created without a score.
const DefaultEmotionScore = 5.0

// Emotion score bounds, inclusive.
const (
	MinEmotionScore = 1.0
	MaxEmotionScore = 10.0
)

// ExchangeRecord is one ball hit from sender to receiver.
type ExchangeRecord struct {
	ID           int64       `json:"id"`
	Sender       Participant `json:"sender"`
	Receiver     Participant `json:"receiver"`
	Category     Category    `json:"category"`
	Action       Action      `json:"action"`
	Content      string      `json:"content"`
	EmotionScore float64     `json:"emotion_score"`
	IsRead       bool        `json:"is_read"`
	IsResponded  bool        `json:"is_responded"`
	CreatedAt    time.Time   `json:"created_at"`
	RespondedAt  *time.Time  `json:"responded_at,omitempty"`
}

// IsPendingFor reports whether the record waits for a response from who.
func (r *ExchangeRecord) IsPendingFor(who Participant) bool {
	return r.Receiver == who && !r.IsResponded
}
