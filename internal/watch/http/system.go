package http

import (
	"net/http"
	"time"

	"github.com/aryabkin/domabot/internal/watch/store"
	"github.com/aryabkin/domabot/pkg/httpx"
	"github.com/aryabkin/domabot/pkg/watchsdk"
)

// RootHandler answers the frontend's reachability probe.
//
//	@Summary	Service banner
//	@Tags		system
//	@Produce	plain
//	@Success	200	{string}	string	"Backend работает ✅"
//	@Router		/ [get]
func RootHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Backend работает ✅"))
	})
}

// LivezHandler reports process liveness.
//
//	@Summary	Liveness probe
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	watchsdk.HealthResponse
//	@Router		/livez [get]
func LivezHandler(startTime time.Time, version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.NoCache(w)
		httpx.WriteJSON(w, http.StatusOK, watchsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
		})
	})
}

// ReadyzHandler reports readiness, including a database ping.
//
//	@Summary	Readiness probe
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	watchsdk.HealthResponse
//	@Failure	503	{object}	watchsdk.HealthResponse
//	@Router		/readyz [get]
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.NoCache(w)

		resp := watchsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  &watchsdk.HealthChecks{Database: "ok"},
		}

		status := http.StatusOK
		if err := st.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Checks.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, status, resp)
	})
}
