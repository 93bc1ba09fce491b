package service

import "context"

// Notifier pushes a text message to a chat. Implementations are expected to
// be best-effort: the scheduler logs delivery failures and moves on, so a
// broken transport delays messages but never stalls an escalation.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, chatID int64, text string) error

func (f NotifierFunc) Notify(ctx context.Context, chatID int64, text string) error {
	return f(ctx, chatID, text)
}
