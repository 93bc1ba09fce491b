// Package watchsdk holds the wire types for the watch service HTTP API plus
// a small typed client. The frontend is a separate repo; keeping the types in
// an importable package keeps the two from drifting.
package watchsdk

import (
	"encoding/json"
	"errors"
	"strconv"
)

// ErrBadNumber reports a user_id or seconds value that is neither a JSON
// number nor a numeric string.
var ErrBadNumber = errors.New("watchsdk: not a number")

// ParseUserID coerces a decoded JSON value into a user id. The frontend has
// historically sent user_id both as a number and as a numeric string, so both
// are accepted. Decode request bodies with json.Decoder.UseNumber so numbers
// arrive as json.Number and large ids survive intact.
func ParseUserID(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		id, err := n.Int64()
		if err != nil {
			return 0, ErrBadNumber
		}
		return id, nil
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, ErrBadNumber
		}
		return id, nil
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, ErrBadNumber
	}
}

// ParseSeconds coerces a decoded JSON value into a seconds count, with the
// same number-or-numeric-string tolerance as ParseUserID.
func ParseSeconds(v any) (int, error) {
	n, err := ParseUserID(v)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// SimpleResponse is the success/error envelope for all mutating endpoints.
type SimpleResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// UpdateStatusRequest is the body of POST /status. UserID and TimerSeconds
// are `any` so the handler can report "Invalid user_id" separately from a
// generally malformed payload, matching the established API contract.
type UpdateStatusRequest struct {
	UserID       any    `json:"user_id"`
	Status       string `json:"status"`
	Username     string `json:"username,omitempty"`
	TimerSeconds any    `json:"timer_seconds,omitempty"`
}

// StatusResponse is the body of GET /status. TimeRemaining and
// ElapsedSeconds are null while the user is home.
type StatusResponse struct {
	Status              string `json:"status"`
	EmergencyContactSet bool   `json:"emergency_contact_set"`
	TimerSeconds        int    `json:"timer_seconds"`
	TimeRemaining       *int   `json:"time_remaining"`
	ElapsedSeconds      *int   `json:"elapsed_seconds"`
}

// UpdateContactRequest is the body of POST /contact.
type UpdateContactRequest struct {
	UserID  any    `json:"user_id"`
	Contact string `json:"contact"`
}

// ContactResponse is the body of GET /contact.
type ContactResponse struct {
	EmergencyContact string `json:"emergency_contact"`
}

// UpdateTimerRequest is the body of POST /timer.
type UpdateTimerRequest struct {
	UserID       any `json:"user_id"`
	TimerSeconds any `json:"timer_seconds"`
}

// TimerResponse is the body of GET /timer.
type TimerResponse struct {
	TimerSeconds int `json:"timer_seconds"`
}

// UserSnapshot is one registry row in the GET /debug dump.
type UserSnapshot struct {
	ID                     int64  `json:"id"`
	Handle                 string `json:"handle,omitempty"`
	ChatID                 *int64 `json:"chat_id"`
	Presence               string `json:"presence"`
	EmergencyContactHandle string `json:"emergency_contact_handle,omitempty"`
	EmergencyContactChatID *int64 `json:"emergency_contact_chat_id"`
	LeftHomeAt             string `json:"left_home_at,omitempty"`
	EscalationStage        int    `json:"escalation_stage"`
	AwayTimeoutSeconds     int    `json:"away_timeout_seconds"`
}

// DebugResponse is the body of GET /debug: the full registry plus the keys
// of every live escalation timer.
type DebugResponse struct {
	Users     map[string]UserSnapshot `json:"user_data"`
	TimerKeys []string                `json:"timer_keys"`
}

// HealthChecks reports the state of critical dependencies for readiness.
type HealthChecks struct {
	Database string `json:"database"`
}

// HealthResponse is the body of GET /livez and GET /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
