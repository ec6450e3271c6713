package domain

import "time"

// ReminderType is the kind of healthy habit a reminder nudges.
type ReminderType string

const (
	ReminderWater     ReminderType = "water"
	ReminderBreakfast ReminderType = "breakfast"
	ReminderLunch     ReminderType = "lunch"
	ReminderDinner    ReminderType = "dinner"
	ReminderSleep     ReminderType = "sleep"
)

// ReminderDefaults describes the defaults attached to a reminder type.
type ReminderDefaults struct {
	DefaultMessage string
	Points         int
}

var reminderDefaults = map[ReminderType]ReminderDefaults{
	ReminderWater:     {DefaultMessage: "Time for some water, love!", Points: 2},
	ReminderBreakfast: {DefaultMessage: "Don't skip breakfast, start the day strong!", Points: 3},
	ReminderLunch:     {DefaultMessage: "Lunch time, eat properly!", Points: 3},
	ReminderDinner:    {DefaultMessage: "Dinner time, don't be late!", Points: 3},
	ReminderSleep:     {DefaultMessage: "Get some rest, sweet dreams~", Points: 4},
}

// Defaults returns the defaults for t and whether t is known.
func (t ReminderType) Defaults() (ReminderDefaults, bool) {
	s, ok := reminderDefaults[t]
	return s, ok
}

// Valid reports whether t is a known reminder type.
func (t ReminderType) Valid() bool {
	_, ok := reminderDefaults[t]
	return ok
}

// ReminderTypes lists every reminder type in display order.
func ReminderTypes() []ReminderType {
	return []ReminderType{ReminderWater, ReminderBreakfast, ReminderLunch, ReminderDinner, ReminderSleep}
}

// HealthReminder is a daily nudge at a wall-clock time.
type HealthReminder struct {
	ID        int64        `json:"id"`
	Type      ReminderType `json:"type"`
	At        string       `json:"at"` // HH:MM, local time
	Message   string       `json:"message"`
	Owner     Participant  `json:"owner"`
	SetBy     Participant  `json:"set_by"`
	Active    bool         `json:"active"`
	CreatedAt time.Time    `json:"created_at"`
}

// HealthLog records one completion of a reminder.
type HealthLog struct {
	ID          int64        `json:"id"`
	ReminderID  int64        `json:"reminder_id"`
	Type        ReminderType `json:"type"`
	User        Participant  `json:"user"`
	Note        string       `json:"note,omitempty"`
	CompletedAt time.Time    `json:"completed_at"`
}
