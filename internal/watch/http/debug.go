package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aryabkin/domabot/internal/watch/service"
	"github.com/aryabkin/domabot/internal/watch/store"
	"github.com/aryabkin/domabot/pkg/httpx"
	"github.com/aryabkin/domabot/pkg/slogx"
	"github.com/aryabkin/domabot/pkg/watchsdk"
)

// DebugHandler dumps the full user registry and the keys of every live
// escalation timer.
//
//	@Summary		Inspect registry and timers
//	@Description	Returns every known user plus the keys of all armed
//	@Description	escalation timers. Intended for manual troubleshooting.
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	watchsdk.DebugResponse
//	@Router			/debug [get]
func DebugHandler(st store.Store, sched *service.Scheduler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slogx.FromContext(r.Context())

		users, err := st.Users().ListUsers(r.Context())
		if err != nil {
			logger.Error("registry dump failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "Invalid data")
			return
		}

		resp := watchsdk.DebugResponse{
			Users:     make(map[string]watchsdk.UserSnapshot, len(users)),
			TimerKeys: sched.TimerKeys(),
		}
		for _, u := range users {
			snap := watchsdk.UserSnapshot{
				ID:                     u.ID,
				Handle:                 u.Handle,
				ChatID:                 u.ChatID,
				Presence:               string(u.Presence),
				EmergencyContactHandle: u.EmergencyContactHandle,
				EmergencyContactChatID: u.EmergencyContactChatID,
				EscalationStage:        u.EscalationStage,
				AwayTimeoutSeconds:     u.AwayTimeoutSeconds,
			}
			if u.LeftHomeAt != nil {
				snap.LeftHomeAt = u.LeftHomeAt.UTC().Format(time.RFC3339)
			}
			resp.Users[strconv.FormatInt(u.ID, 10)] = snap
		}

		httpx.WriteJSON(w, http.StatusOK, resp)
	})
}
