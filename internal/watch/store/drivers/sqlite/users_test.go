package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/aryabkin/domabot/internal/watch/domain"
	"github.com/aryabkin/domabot/internal/watch/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestGetOrCreateUserDefaults(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	user, err := st.Users().GetOrCreateUser(ctx, 42)
	require.NoError(t, err)

	require.Equal(t, int64(42), user.ID)
	require.Equal(t, domain.PresenceHome, user.Presence)
	require.Equal(t, domain.DefaultAwayTimeoutSeconds, user.AwayTimeoutSeconds)
	require.Equal(t, domain.StageNone, user.EscalationStage)
	require.Empty(t, user.EmergencyContactHandle)
	require.Nil(t, user.ChatID)
	require.Nil(t, user.LeftHomeAt)

	t.Run("second call is a plain fetch", func(t *testing.T) {
		require.NoError(t, st.Users().SetAwayTimeout(ctx, 42, 120))

		again, err := st.Users().GetOrCreateUser(ctx, 42)
		require.NoError(t, err)
		require.Equal(t, 120, again.AwayTimeoutSeconds)
	})
}

func TestGetUserNotFound(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Users().GetUser(ctx, 999)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdatePresenceResetsStage(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Users().GetOrCreateUser(ctx, 1)
	require.NoError(t, err)

	left := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, st.Users().UpdatePresence(ctx, 1, domain.PresenceAway, &left))
	require.NoError(t, st.Users().SetEscalationStage(ctx, 1, domain.StageSecondReminder))

	user, err := st.Users().GetUser(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.PresenceAway, user.Presence)
	require.Equal(t, domain.StageSecondReminder, user.EscalationStage)
	require.NotNil(t, user.LeftHomeAt)
	require.WithinDuration(t, left, *user.LeftHomeAt, time.Second)

	require.NoError(t, st.Users().UpdatePresence(ctx, 1, domain.PresenceHome, nil))

	user, err = st.Users().GetUser(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.PresenceHome, user.Presence)
	require.Equal(t, domain.StageNone, user.EscalationStage)
	require.Nil(t, user.LeftHomeAt)
}

func TestUpdatesRequireExistingUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.ErrorIs(t, st.Users().UpdatePresence(ctx, 7, domain.PresenceHome, nil), store.ErrNotFound)
	require.ErrorIs(t, st.Users().SetEscalationStage(ctx, 7, 1), store.ErrNotFound)
	require.ErrorIs(t, st.Users().SetAwayTimeout(ctx, 7, 300), store.ErrNotFound)
	require.ErrorIs(t, st.Users().SetEmergencyContact(ctx, 7, "alice"), store.ErrNotFound)
}

func TestSetEmergencyContactClearsCachedChatID(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Users().GetOrCreateUser(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, st.Users().SetEmergencyContact(ctx, 1, "alice"))
	require.NoError(t, st.Users().CacheEmergencyContactChatID(ctx, 1, 555))

	user, err := st.Users().GetUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, user.EmergencyContactChatID)
	require.Equal(t, int64(555), *user.EmergencyContactChatID)

	// Switching contacts must force re-resolution.
	require.NoError(t, st.Users().SetEmergencyContact(ctx, 1, "bob"))

	user, err = st.Users().GetUser(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "bob", user.EmergencyContactHandle)
	require.Nil(t, user.EmergencyContactChatID)
}

func TestRegisterTransport(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.Users().RegisterTransport(ctx, 10, "@carol", 10))

	user, err := st.Users().GetUser(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, "@carol", user.Handle)
	require.NotNil(t, user.ChatID)
	require.Equal(t, int64(10), *user.ChatID)

	t.Run("re-registration refreshes handle", func(t *testing.T) {
		require.NoError(t, st.Users().RegisterTransport(ctx, 10, "@carol_new", 10))

		user, err := st.Users().GetUser(ctx, 10)
		require.NoError(t, err)
		require.Equal(t, "@carol_new", user.Handle)
	})

	t.Run("existing state survives re-registration", func(t *testing.T) {
		require.NoError(t, st.Users().SetEmergencyContact(ctx, 10, "dave"))
		require.NoError(t, st.Users().RegisterTransport(ctx, 10, "@carol_new", 10))

		user, err := st.Users().GetUser(ctx, 10)
		require.NoError(t, err)
		require.Equal(t, "dave", user.EmergencyContactHandle)
	})
}

func TestEnsureReachable(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	t.Run("backfills chat id for unseen user", func(t *testing.T) {
		require.NoError(t, st.Users().EnsureReachable(ctx, 20, "erin"))

		user, err := st.Users().GetUser(ctx, 20)
		require.NoError(t, err)
		require.Equal(t, "erin", user.Handle)
		require.NotNil(t, user.ChatID)
		require.Equal(t, int64(20), *user.ChatID)
	})

	t.Run("keeps a chat id learned from the transport", func(t *testing.T) {
		require.NoError(t, st.Users().RegisterTransport(ctx, 21, "@frank", 9001))
		require.NoError(t, st.Users().EnsureReachable(ctx, 21, "frank2"))

		user, err := st.Users().GetUser(ctx, 21)
		require.NoError(t, err)
		require.Equal(t, "frank2", user.Handle)
		require.Equal(t, int64(9001), *user.ChatID)
	})

	t.Run("empty handle leaves handle alone", func(t *testing.T) {
		require.NoError(t, st.Users().EnsureReachable(ctx, 21, ""))

		user, err := st.Users().GetUser(ctx, 21)
		require.NoError(t, err)
		require.Equal(t, "frank2", user.Handle)
	})
}

func TestResolveHandle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Users().ResolveHandle(ctx, "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)

	t.Run("skips rows without a chat id", func(t *testing.T) {
		_, err := st.Users().GetOrCreateUser(ctx, 30)
		require.NoError(t, err)
		_, execErr := st.db.ExecContext(ctx, `UPDATE users SET handle = 'grace' WHERE id = 30`)
		require.NoError(t, execErr)

		_, err = st.Users().ResolveHandle(ctx, "grace")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("newest deliverable row wins", func(t *testing.T) {
		require.NoError(t, st.Users().RegisterTransport(ctx, 31, "heidi", 31))
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, st.Users().RegisterTransport(ctx, 32, "heidi", 32))

		user, err := st.Users().ResolveHandle(ctx, "heidi")
		require.NoError(t, err)
		require.Equal(t, int64(32), user.ID)
	})
}

func TestLinkPendingContacts(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	// Two users designate ivan before he has registered; one already holds a
	// resolved chat id and must not be touched.
	for _, id := range []int64{1, 2, 3} {
		_, err := st.Users().GetOrCreateUser(ctx, id)
		require.NoError(t, err)
	}
	require.NoError(t, st.Users().SetEmergencyContact(ctx, 1, "ivan"))
	require.NoError(t, st.Users().SetEmergencyContact(ctx, 2, "ivan"))
	require.NoError(t, st.Users().SetEmergencyContact(ctx, 3, "ivan"))
	require.NoError(t, st.Users().CacheEmergencyContactChatID(ctx, 3, 777))

	n, err := st.Users().LinkPendingContacts(ctx, "ivan", 100)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	for id, want := range map[int64]int64{1: 100, 2: 100, 3: 777} {
		user, err := st.Users().GetUser(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, user.EmergencyContactChatID)
		require.Equal(t, want, *user.EmergencyContactChatID)
	}

	n, err = st.Users().LinkPendingContacts(ctx, "ivan", 100)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestListAway(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	now := time.Now().UTC()
	for _, id := range []int64{1, 2, 3} {
		_, err := st.Users().GetOrCreateUser(ctx, id)
		require.NoError(t, err)
	}
	require.NoError(t, st.Users().UpdatePresence(ctx, 1, domain.PresenceAway, &now))
	require.NoError(t, st.Users().UpdatePresence(ctx, 3, domain.PresenceAway, &now))

	away, err := st.Users().ListAway(ctx)
	require.NoError(t, err)
	require.Len(t, away, 2)
	require.Equal(t, int64(1), away[0].ID)
	require.Equal(t, int64(3), away[1].ID)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	sentinel := store.ErrNotFound
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetOrCreateUser(ctx, 50); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = st.Users().GetUser(ctx, 50)
	require.ErrorIs(t, err, store.ErrNotFound)
}
