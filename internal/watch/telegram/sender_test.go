package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeAPI struct {
	err   error
	calls atomic.Int64
}

func (f *fakeAPI) Send(tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.calls.Add(1)
	return tgbotapi.Message{}, f.err
}

func TestSenderPrefersBotAPI(t *testing.T) {
	api := &fakeAPI{}
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("direct call made despite healthy bot api")
	}))
	defer direct.Close()

	s := &Sender{
		API:      api,
		Token:    "test-token",
		Endpoint: direct.URL + "/bot%s/%s",
		Logger:   slog.New(slog.DiscardHandler),
	}

	require.NoError(t, s.Notify(context.Background(), 5, "привет"))
	require.Equal(t, int64(1), api.calls.Load())
}

func TestSenderFallsBackToDirectCall(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer direct.Close()

	s := &Sender{
		API:      &fakeAPI{err: errors.New("conflict: terminated by other getUpdates request")},
		Token:    "test-token",
		Endpoint: direct.URL + "/bot%s/%s",
		Logger:   slog.New(slog.DiscardHandler),
	}

	require.NoError(t, s.Notify(context.Background(), 5, "привет"))
	require.Equal(t, "/bottest-token/sendMessage", gotPath)
	require.Equal(t, float64(5), gotBody["chat_id"])
	require.Equal(t, "привет", gotBody["text"])
}

func TestSenderWithoutAPIGoesDirect(t *testing.T) {
	var calls atomic.Int64
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer direct.Close()

	s := &Sender{
		Token:    "test-token",
		Endpoint: direct.URL + "/bot%s/%s",
		Logger:   slog.New(slog.DiscardHandler),
	}

	require.NoError(t, s.Notify(context.Background(), 5, "ok"))
	require.Equal(t, int64(1), calls.Load())
}

func TestSenderReportsAPIErrors(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"description":"bot was blocked by the user"}`))
	}))
	defer direct.Close()

	s := &Sender{
		API:      &fakeAPI{err: errors.New("down")},
		Token:    "test-token",
		Endpoint: direct.URL + "/bot%s/%s",
		Logger:   slog.New(slog.DiscardHandler),
	}

	err := s.Notify(context.Background(), 5, "ok")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 403")
}
