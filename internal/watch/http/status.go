package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aryabkin/domabot/internal/watch/domain"
	"github.com/aryabkin/domabot/internal/watch/service"
	"github.com/aryabkin/domabot/internal/watch/store"
	"github.com/aryabkin/domabot/pkg/httpx"
	"github.com/aryabkin/domabot/pkg/slogx"
	"github.com/aryabkin/domabot/pkg/watchsdk"
)

// StatusHandler serves presence reads and writes. A presence write is the
// single entry point into the escalation scheduler.
type StatusHandler struct {
	Scheduler *service.Scheduler
	Store     store.Store
}

// HandleUpdate sets a user's presence.
//
//	@Summary		Update presence
//	@Description	Marks the user home or away. Going away starts the escalation
//	@Description	chain and requires an emergency contact to be set first.
//	@Tags			status
//	@Accept			json
//	@Produce		json
//	@Param			request	body		watchsdk.UpdateStatusRequest	true	"Presence update"
//	@Success		200		{object}	watchsdk.SimpleResponse
//	@Failure		400		{object}	watchsdk.SimpleResponse
//	@Failure		500		{object}	watchsdk.SimpleResponse
//	@Router			/status [post]
func (h *StatusHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	logger := slogx.FromContext(r.Context())

	var req watchsdk.UpdateStatusRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid data")
		return
	}

	presence := domain.Presence(req.Status)
	if req.UserID == nil || !presence.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid data")
		return
	}

	userID, err := watchsdk.ParseUserID(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user_id")
		return
	}

	var timeout *int
	if req.TimerSeconds != nil {
		secs, err := watchsdk.ParseSeconds(req.TimerSeconds)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid data")
			return
		}
		timeout = &secs
	}

	err = h.Scheduler.SetPresence(r.Context(), userID, presence, timeout)
	switch {
	case errors.Is(err, service.ErrContactRequired):
		writeError(w, http.StatusBadRequest, "contact_required")
		return
	case err != nil:
		logger.Error("presence update failed", slog.Int64("user_id", userID), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Timer scheduling failed")
		return
	}

	if req.Username != "" {
		// The frontend passes the Telegram username along so users who never
		// spoke to the bot still become resolvable as emergency contacts.
		if err := h.Store.Users().EnsureReachable(r.Context(), userID, req.Username); err != nil {
			logger.Warn("ensure reachable failed", slog.Int64("user_id", userID), slog.Any("error", err))
		}
	}

	httpx.WriteJSON(w, http.StatusOK, watchsdk.SimpleResponse{Success: true})
}

// HandleGet returns a user's presence and escalation timing.
//
//	@Summary		Get presence
//	@Description	Returns presence state, emergency contact flag, the away
//	@Description	timeout and remaining time before the first reminder.
//	@Tags			status
//	@Produce		json
//	@Param			user_id	query		string	true	"Telegram user ID"
//	@Success		200		{object}	watchsdk.StatusResponse
//	@Router			/status [get]
func (h *StatusHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	resp := watchsdk.StatusResponse{
		Status:       string(domain.PresenceHome),
		TimerSeconds: domain.DefaultAwayTimeoutSeconds,
	}

	userID, err := watchsdk.ParseUserID(r.URL.Query().Get("user_id"))
	if err != nil {
		// Unknown or malformed callers get the safe defaults.
		httpx.WriteJSON(w, http.StatusOK, resp)
		return
	}

	user, err := h.Store.Users().GetUser(r.Context(), userID)
	if err != nil {
		httpx.WriteJSON(w, http.StatusOK, resp)
		return
	}

	resp.Status = string(user.Presence)
	resp.EmergencyContactSet = user.EmergencyContactHandle != ""
	resp.TimerSeconds = user.AwayTimeoutSeconds

	if user.Presence == domain.PresenceAway && user.LeftHomeAt != nil {
		elapsed := int(time.Since(*user.LeftHomeAt).Seconds())
		if elapsed < 0 {
			elapsed = 0
		}
		remaining := user.AwayTimeoutSeconds - elapsed
		if remaining < 0 {
			remaining = 0
		}
		resp.ElapsedSeconds = &elapsed
		resp.TimeRemaining = &remaining
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	httpx.WriteJSON(w, status, watchsdk.SimpleResponse{Success: false, Error: msg})
}
