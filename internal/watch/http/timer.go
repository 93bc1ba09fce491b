package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aryabkin/domabot/internal/watch/domain"
	"github.com/aryabkin/domabot/internal/watch/store"
	"github.com/aryabkin/domabot/pkg/httpx"
	"github.com/aryabkin/domabot/pkg/slogx"
	"github.com/aryabkin/domabot/pkg/watchsdk"
)

// TimerHandler manages the per-user away timeout.
type TimerHandler struct {
	Store store.Store
}

// HandleUpdate sets the away timeout for a user.
//
//	@Summary		Set away timeout
//	@Description	Configures how long the user may stay away before the first
//	@Description	reminder fires. Takes effect on the next away transition.
//	@Tags			timer
//	@Accept			json
//	@Produce		json
//	@Param			request	body		watchsdk.UpdateTimerRequest	true	"Timeout update"
//	@Success		200		{object}	watchsdk.SimpleResponse
//	@Failure		400		{object}	watchsdk.SimpleResponse
//	@Failure		500		{object}	watchsdk.SimpleResponse
//	@Router			/timer [post]
func (h *TimerHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	logger := slogx.FromContext(r.Context())

	var req watchsdk.UpdateTimerRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid data")
		return
	}
	if req.UserID == nil {
		writeError(w, http.StatusBadRequest, "Invalid data")
		return
	}

	userID, err := watchsdk.ParseUserID(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user_id")
		return
	}

	seconds, err := watchsdk.ParseSeconds(req.TimerSeconds)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timer_seconds")
		return
	}
	if seconds < domain.MinAwayTimeoutSeconds {
		writeError(w, http.StatusBadRequest, "Timer must be at least 60 seconds")
		return
	}

	if err := h.Store.Users().SetAwayTimeout(r.Context(), userID, seconds); err != nil {
		logger.Error("timeout update failed", slog.Int64("user_id", userID), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Invalid data")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, watchsdk.SimpleResponse{Success: true})
}

// HandleGet returns the configured away timeout in seconds.
//
//	@Summary	Get away timeout
//	@Tags		timer
//	@Produce	json
//	@Param		user_id	query		string	true	"Telegram user ID"
//	@Success	200		{object}	watchsdk.TimerResponse
//	@Router		/timer [get]
func (h *TimerHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	resp := watchsdk.TimerResponse{TimerSeconds: domain.DefaultAwayTimeoutSeconds}

	userID, err := watchsdk.ParseUserID(r.URL.Query().Get("user_id"))
	if err != nil {
		httpx.WriteJSON(w, http.StatusOK, resp)
		return
	}

	user, err := h.Store.Users().GetUser(r.Context(), userID)
	if err == nil {
		resp.TimerSeconds = user.AwayTimeoutSeconds
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
