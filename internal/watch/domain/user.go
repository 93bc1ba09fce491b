package domain

import "time"

// Presence is the user's current whereabouts as the frontend reports it.
// The wire values are Russian because the product UI is.
type Presence string

const (
	PresenceHome Presence = "дома"
	PresenceAway Presence = "не дома"
)

// Valid reports whether p is one of the two known presence values.
func (p Presence) Valid() bool {
	return p == PresenceHome || p == PresenceAway
}

// Escalation stages for a user who is away. The sequence only ever moves
// forward (0 -> 1 -> 2) and resets to StageNone on any presence change.
const (
	StageNone           = 0
	StageFirstReminder  = 1
	StageSecondReminder = 2
)

const (
	// MinAwayTimeoutSeconds is the smallest stage-1 delay a user may configure.
	MinAwayTimeoutSeconds = 60

	// DefaultAwayTimeoutSeconds is used for users who never configured a timer.
	DefaultAwayTimeoutSeconds = 3600
)

// User is one registered person, keyed by their Telegram user id.
type User struct {
	ID       int64
	Handle   string // "@username", empty when Telegram exposes none
	ChatID   *int64 // deliverable address; nil until first transport contact
	Presence Presence

	EmergencyContactHandle string // "@"-normalized designated contact
	EmergencyContactChatID *int64 // cached resolution; nil until resolved

	LeftHomeAt         *time.Time // UTC; set while away, nil at home
	EscalationStage    int
	AwayTimeoutSeconds int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deliverable reports whether this user has ever talked to the bot and can
// therefore receive push notifications.
func (u User) Deliverable() bool {
	return u.ChatID != nil
}

// DeliveryChatID is the address notifications for this user go to. Telegram
// private chats share the user id, so the id itself is the fallback for users
// the bot has not seen yet.
func (u User) DeliveryChatID() int64 {
	if u.ChatID != nil {
		return *u.ChatID
	}
	return u.ID
}
