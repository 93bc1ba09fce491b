package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aryabkin/domabot/internal/watch/store"
	"github.com/aryabkin/domabot/pkg/httpx"
	"github.com/aryabkin/domabot/pkg/slogx"
	"github.com/aryabkin/domabot/pkg/watchsdk"
)

// ContactHandler manages a user's emergency contact handle.
type ContactHandler struct {
	Store store.Store
}

// HandleUpdate sets the emergency contact for a user.
//
//	@Summary		Set emergency contact
//	@Description	Stores the Telegram handle to alert when the user stays away
//	@Description	past both reminders. Handles are normalized to a leading @.
//	@Tags			contact
//	@Accept			json
//	@Produce		json
//	@Param			request	body		watchsdk.UpdateContactRequest	true	"Contact update"
//	@Success		200		{object}	watchsdk.SimpleResponse
//	@Failure		400		{object}	watchsdk.SimpleResponse
//	@Failure		500		{object}	watchsdk.SimpleResponse
//	@Router			/contact [post]
func (h *ContactHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	logger := slogx.FromContext(r.Context())

	var req watchsdk.UpdateContactRequest
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

	// Handles are stored @-prefixed, matching what registration records, so
	// contact resolution is a plain equality match.
	handle := strings.TrimSpace(req.Contact)
	if handle != "" && !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}
	if handle == "" || handle == "@" {
		writeError(w, http.StatusBadRequest, "Invalid contact")
		return
	}

	if err := h.Store.Users().SetEmergencyContact(r.Context(), userID, handle); err != nil {
		logger.Error("contact update failed", slog.Int64("user_id", userID), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Invalid data")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, watchsdk.SimpleResponse{Success: true})
}

// HandleGet returns the stored emergency contact handle, empty when unset.
//
//	@Summary	Get emergency contact
//	@Tags		contact
//	@Produce	json
//	@Param		user_id	query		string	true	"Telegram user ID"
//	@Success	200		{object}	watchsdk.ContactResponse
//	@Router		/contact [get]
func (h *ContactHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	resp := watchsdk.ContactResponse{}

	userID, err := watchsdk.ParseUserID(r.URL.Query().Get("user_id"))
	if err != nil {
		httpx.WriteJSON(w, http.StatusOK, resp)
		return
	}

	user, err := h.Store.Users().GetUser(r.Context(), userID)
	if err == nil {
		resp.EmergencyContact = user.EmergencyContactHandle
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
