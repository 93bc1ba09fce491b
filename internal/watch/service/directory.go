package service

import (
	"context"

	"github.com/aryabkin/domabot/internal/watch/store"
)

// Directory resolves a user-visible handle to a deliverable chat id through
// the user registry. Pure lookup, no timers.
type Directory struct {
	Store store.Store
}

// Resolve returns the chat id of the most recently updated user carrying the
// handle who the bot can actually reach. Returns store.ErrNotFound when the
// handle's owner has never talked to the bot.
func (d *Directory) Resolve(ctx context.Context, handle string) (int64, error) {
	user, err := d.Store.Users().ResolveHandle(ctx, handle)
	if err != nil {
		return 0, err
	}
	// ResolveHandle only returns deliverable rows, so ChatID is present.
	return *user.ChatID, nil
}
