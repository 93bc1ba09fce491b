package service

import (
	"context"
	"testing"
	"time"

	"github.com/aryabkin/domabot/internal/watch/store"
	"github.com/aryabkin/domabot/internal/watch/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T) (*Directory, store.Store) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return &Directory{Store: st}, st
}

func TestDirectoryResolve(t *testing.T) {
	ctx := context.Background()
	dir, st := newTestDirectory(t)

	t.Run("unknown handle", func(t *testing.T) {
		_, err := dir.Resolve(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("registered handle resolves to chat id", func(t *testing.T) {
		require.NoError(t, st.Users().RegisterTransport(ctx, 7, "alice", 7))

		chatID, err := dir.Resolve(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(7), chatID)
	})

	t.Run("unreachable owner does not resolve", func(t *testing.T) {
		_, err := st.Users().GetOrCreateUser(ctx, 8)
		require.NoError(t, err)
		require.NoError(t, st.Users().EnsureReachable(ctx, 8, ""))

		// User 8 never set a handle, so "bob" stays unknown.
		_, err = dir.Resolve(ctx, "bob")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate handles resolve to the newest owner", func(t *testing.T) {
		require.NoError(t, st.Users().RegisterTransport(ctx, 10, "carol", 10))
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, st.Users().RegisterTransport(ctx, 11, "carol", 11))

		chatID, err := dir.Resolve(ctx, "carol")
		require.NoError(t, err)
		require.Equal(t, int64(11), chatID)
	})
}

func TestNotifierFunc(t *testing.T) {
	var gotChat int64
	var gotText string

	fn := NotifierFunc(func(_ context.Context, chatID int64, text string) error {
		gotChat, gotText = chatID, text
		return nil
	})

	require.NoError(t, fn.Notify(context.Background(), 5, "привет"))
	require.Equal(t, int64(5), gotChat)
	require.Equal(t, "привет", gotText)
}
