package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aryabkin/domabot/internal/watch/domain"
	"github.com/aryabkin/domabot/internal/watch/store"
)

// Message texts pushed to users. Russian, like the rest of the product.
const (
	msgFirstReminder      = "🤗 Ты в порядке? Отметься, что ты дома."
	msgSecondReminder     = "🤗 Напоминание! Если ты уже дома — отметься."
	msgContactUnreachable = "⚠️ Экстренный контакт ещё не активировал бота или не указан."
	msgContactAlerted     = "🚨 Экстренный контакт уведомлён! Если ты в порядке — отметься."
	msgFriendMissingFmt   = "🚨 Твой друг %s не выходит на связь. Проверь, всё ли с ним в порядке."
)

// Timer kinds, one per stage transition. A timer key is "{userID}:{kind}".
const (
	kindFirstReminder  = "rem1"
	kindSecondReminder = "rem2"
	kindEmergency      = "emerg"
)

const (
	// defaultNotifyTimeout bounds a single delivery attempt so a slow
	// transport cannot stall timer goroutines.
	defaultNotifyTimeout = 10 * time.Second

	// resumeFloor is the minimum delay for timers re-armed at startup whose
	// deadline already passed while the process was down. Firing after a
	// short grace instead of instantly gives the user a moment to check in
	// after an outage before reminders resume.
	resumeFloor = 5 * time.Second
)

// Scheduler owns one escalation timer chain per away user: first reminder,
// second reminder, then a notification to the designated emergency contact.
//
// Correctness does not depend on timer cancellation. Every fire handler
// re-reads the persisted record and no-ops unless the user is still away, so
// a stale timer that slips past a cancel is harmless. Cancellation is still
// done eagerly on every presence change to avoid wasted work.
type Scheduler struct {
	Store     store.Store
	Notifier  Notifier
	Directory *Directory
	Logger    *slog.Logger

	// Stage2Delay is the gap between the first and second reminder;
	// EmergencyDelay between the second reminder and the contact alert.
	Stage2Delay    time.Duration
	EmergencyDelay time.Duration

	// NotifyTimeout overrides the per-delivery deadline; zero means default.
	NotifyTimeout time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	userMu  map[int64]*sync.Mutex
	stopped bool
}

// NewScheduler creates a scheduler with the given stage delays.
func NewScheduler(st store.Store, notifier Notifier, directory *Directory, logger *slog.Logger, stage2, emergency time.Duration) *Scheduler {
	if stage2 <= 0 {
		stage2 = time.Hour
	}
	if emergency <= 0 {
		emergency = time.Hour
	}

	return &Scheduler{
		Store:          st,
		Notifier:       notifier,
		Directory:      directory,
		Logger:         logger,
		Stage2Delay:    stage2,
		EmergencyDelay: emergency,
		timers:         make(map[string]*time.Timer),
		userMu:         make(map[int64]*sync.Mutex),
	}
}

// SetPresence records a presence change and reconciles the timer chain.
//
// Going away requires an emergency contact on record and arms the first
// reminder after the user's configured timeout (or timeoutSeconds when
// provided, which is also persisted). Coming home cancels everything.
// Calls for the same user are serialized, so the last committed presence
// always matches the timer state.
func (s *Scheduler) SetPresence(ctx context.Context, userID int64, presence domain.Presence, timeoutSeconds *int) error {
	unlock := s.lockUser(userID)
	defer unlock()

	users := s.Store.Users()

	user, err := users.GetOrCreateUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", userID, err)
	}

	if presence == domain.PresenceAway && user.EmergencyContactHandle == "" {
		return ErrContactRequired
	}

	if timeoutSeconds != nil {
		if err := users.SetAwayTimeout(ctx, userID, *timeoutSeconds); err != nil {
			return fmt.Errorf("persist timeout for %d: %w", userID, err)
		}
		user.AwayTimeoutSeconds = *timeoutSeconds
	}

	// A fresh sequence always supersedes whatever was pending.
	s.CancelAll(userID)

	if presence == domain.PresenceHome {
		if err := users.UpdatePresence(ctx, userID, domain.PresenceHome, nil); err != nil {
			return fmt.Errorf("persist presence for %d: %w", userID, err)
		}
		return nil
	}

	now := time.Now().UTC()
	if err := users.UpdatePresence(ctx, userID, domain.PresenceAway, &now); err != nil {
		return fmt.Errorf("persist presence for %d: %w", userID, err)
	}

	delay := time.Duration(user.AwayTimeoutSeconds) * time.Second
	if err := s.arm(userID, kindFirstReminder, delay, s.fireFirstReminder); err != nil {
		// Roll back so the persisted status never claims a watch that is
		// not actually armed.
		if rbErr := users.UpdatePresence(ctx, userID, domain.PresenceHome, nil); rbErr != nil {
			s.Logger.Error("presence rollback failed", "user_id", userID, "error", rbErr)
		}
		return err
	}

	s.Logger.Info("escalation armed", "user_id", userID, "timeout_seconds", user.AwayTimeoutSeconds)
	return nil
}

// CancelAll stops and removes every pending timer for the user. Idempotent;
// safe to call when none exist.
func (s *Scheduler) CancelAll(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, kind := range []string{kindFirstReminder, kindSecondReminder, kindEmergency} {
		key := timerKey(userID, kind)
		if t, ok := s.timers[key]; ok {
			t.Stop()
			delete(s.timers, key)
		}
	}
}

// Resume re-arms escalation sequences for users persisted as away, picking
// up from their stored stage. Called once at startup; timer objects
// themselves are process-local and do not survive restarts.
func (s *Scheduler) Resume(ctx context.Context) error {
	away, err := s.Store.Users().ListAway(ctx)
	if err != nil {
		return fmt.Errorf("list away users: %w", err)
	}

	for _, user := range away {
		if user.LeftHomeAt == nil {
			s.Logger.Warn("away user without left_home_at, skipping resume", "user_id", user.ID)
			continue
		}

		elapsed := time.Since(*user.LeftHomeAt)
		stage1 := time.Duration(user.AwayTimeoutSeconds) * time.Second

		var kind string
		var remaining time.Duration
		var fire func(int64)

		switch user.EscalationStage {
		case domain.StageNone:
			kind, remaining, fire = kindFirstReminder, stage1-elapsed, s.fireFirstReminder
		case domain.StageFirstReminder:
			kind, remaining, fire = kindSecondReminder, stage1+s.Stage2Delay-elapsed, s.fireSecondReminder
		case domain.StageSecondReminder:
			kind, remaining, fire = kindEmergency, stage1+s.Stage2Delay+s.EmergencyDelay-elapsed, s.fireEmergency
		default:
			continue
		}

		if remaining < resumeFloor {
			remaining = resumeFloor
		}

		if err := s.arm(user.ID, kind, remaining, fire); err != nil {
			return err
		}
		s.Logger.Info("escalation resumed",
			"user_id", user.ID,
			"stage", user.EscalationStage,
			"fires_in", remaining.Round(time.Second),
		)
	}

	return nil
}

// Stop cancels all timers and refuses further arming. Used on shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}

// TimerKeys returns a sorted snapshot of the live timer keys. Diagnostic use.
func (s *Scheduler) TimerKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.timers))
	for key := range s.timers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func timerKey(userID int64, kind string) string {
	return fmt.Sprintf("%d:%s", userID, kind)
}

// lockUser serializes all scheduler work for one user. Different users
// proceed fully in parallel.
func (s *Scheduler) lockUser(userID int64) func() {
	s.mu.Lock()
	m, ok := s.userMu[userID]
	if !ok {
		m = &sync.Mutex{}
		s.userMu[userID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// arm schedules fire to run for userID after delay, replacing any pending
// timer of the same kind.
func (s *Scheduler) arm(userID int64, kind string, delay time.Duration, fire func(int64)) error {
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}

	key := timerKey(userID, kind)
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.dispatch(key, userID, fire)
	})
	return nil
}

// dispatch runs on the timer goroutine. A fault in one user's handler must
// never take down other users' timers, hence the recover.
func (s *Scheduler) dispatch(key string, userID int64, fire func(int64)) {
	s.mu.Lock()
	delete(s.timers, key)
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("escalation handler panic", "user_id", userID, "timer", key, "panic", r)
		}
	}()

	fire(userID)
}

// reload fetches the current record for a fire handler. Each stage re-reads
// rather than closing over a snapshot: presence or configuration may have
// changed between arming and firing.
func (s *Scheduler) reload(ctx context.Context, userID int64) (domain.User, bool) {
	user, err := s.Store.Users().GetUser(ctx, userID)
	if err != nil {
		s.Logger.Error("reload before stage transition failed", "user_id", userID, "error", err)
		return domain.User{}, false
	}
	if user.Presence != domain.PresenceAway {
		// Superseded: the user came home between arming and firing.
		return domain.User{}, false
	}
	return user, true
}

func (s *Scheduler) fireFirstReminder(userID int64) {
	unlock := s.lockUser(userID)
	defer unlock()

	ctx, cancel := s.handlerContext()
	defer cancel()

	user, ok := s.reload(ctx, userID)
	if !ok {
		return
	}

	s.Logger.Info("first reminder fired", "user_id", userID)
	s.notify(ctx, user.DeliveryChatID(), msgFirstReminder)

	if err := s.Store.Users().SetEscalationStage(ctx, userID, domain.StageFirstReminder); err != nil {
		s.Logger.Error("stage update failed", "user_id", userID, "stage", 1, "error", err)
		return
	}

	if err := s.arm(userID, kindSecondReminder, s.Stage2Delay, s.fireSecondReminder); err != nil {
		s.Logger.Error("arming second reminder failed", "user_id", userID, "error", err)
	}
}

func (s *Scheduler) fireSecondReminder(userID int64) {
	unlock := s.lockUser(userID)
	defer unlock()

	ctx, cancel := s.handlerContext()
	defer cancel()

	user, ok := s.reload(ctx, userID)
	if !ok {
		return
	}

	s.Logger.Info("second reminder fired", "user_id", userID)
	s.notify(ctx, user.DeliveryChatID(), msgSecondReminder)

	if err := s.Store.Users().SetEscalationStage(ctx, userID, domain.StageSecondReminder); err != nil {
		s.Logger.Error("stage update failed", "user_id", userID, "stage", 2, "error", err)
		return
	}

	if err := s.arm(userID, kindEmergency, s.EmergencyDelay, s.fireEmergency); err != nil {
		s.Logger.Error("arming emergency timer failed", "user_id", userID, "error", err)
	}
}

// fireEmergency is the terminal stage: alert the designated contact, or tell
// the user the contact cannot be reached yet. Either way, no further timers.
func (s *Scheduler) fireEmergency(userID int64) {
	unlock := s.lockUser(userID)
	defer unlock()

	ctx, cancel := s.handlerContext()
	defer cancel()

	user, ok := s.reload(ctx, userID)
	if !ok {
		return
	}

	s.Logger.Info("emergency stage fired", "user_id", userID)

	contactChatID := user.EmergencyContactChatID
	if contactChatID == nil && user.EmergencyContactHandle != "" {
		resolved, err := s.Directory.Resolve(ctx, user.EmergencyContactHandle)
		if err == nil {
			contactChatID = &resolved
			if err := s.Store.Users().CacheEmergencyContactChatID(ctx, userID, resolved); err != nil {
				s.Logger.Warn("caching contact resolution failed", "user_id", userID, "error", err)
			}
		} else {
			s.Logger.Info("emergency contact unresolved",
				"user_id", userID,
				"contact", user.EmergencyContactHandle,
				"error", err,
			)
		}
	}

	if contactChatID == nil {
		// The contact never activated the bot. Tell the user and stop;
		// there is nothing to retry until the contact registers.
		s.notify(ctx, user.DeliveryChatID(), msgContactUnreachable)
		return
	}

	displayName := user.Handle
	if displayName == "" {
		displayName = fmt.Sprintf("id %d", user.ID)
	}

	s.notify(ctx, *contactChatID, fmt.Sprintf(msgFriendMissingFmt, displayName))
	s.notify(ctx, user.DeliveryChatID(), msgContactAlerted)
}

// notify delivers best-effort: failures are logged, never propagated, so a
// broken transport cannot block stage advancement.
func (s *Scheduler) notify(ctx context.Context, chatID int64, text string) {
	if err := s.Notifier.Notify(ctx, chatID, text); err != nil {
		s.Logger.Warn("notification delivery failed", "chat_id", chatID, "error", err)
	}
}

// handlerContext bounds everything one fire handler does, delivery included.
func (s *Scheduler) handlerContext() (context.Context, context.CancelFunc) {
	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}
