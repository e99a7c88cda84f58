// Package scheduler runs the two periodic jobs of the bot: roster sync and
// the reminder tick.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/oldtora/ppshiftsbot/internal/domain"
	"github.com/oldtora/ppshiftsbot/internal/store"
)

// Sender is the minimal interface the scheduler needs to deliver a reminder.
// telegram.Router implements it.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// RosterSource fetches the current roster rows. ems.Client implements it.
type RosterSource interface {
	FetchRoster(ctx context.Context) ([]domain.RosterRow, error)
}

// Metrics records scheduler outcomes. metrics.Collector implements it.
type Metrics interface {
	RecordSyncSuccess(rows, anomalous int)
	RecordSyncFailure()
	RecordReminderSent()
	RecordSendFailure()
}

// Clock abstracts time retrieval so the tick logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Config is the static schedule configuration, fixed at startup.
type Config struct {
	Location     *time.Location
	FetchTimes   []string // daily sync times, "HH:MM" in Location
	TickInterval time.Duration
	CutoffHour   int // at/after this local hour reminders concern tomorrow
}

// Scheduler owns the roster sync job and the notification tick. The two may
// overlap with each other but never with themselves: ticks run sequentially
// in the loop, and sync runs are guarded by an in-flight flag.
type Scheduler struct {
	cfg     Config
	repo    store.Repo
	source  RosterSource
	sender  Sender
	metrics Metrics
	log     *zap.Logger
	clock   Clock

	syncInFlight atomic.Bool
	lastSyncAt   string // "HH:MM" of the last schedule-triggered sync
}

// New creates a Scheduler with a real clock.
func New(cfg Config, repo store.Repo, source RosterSource, sender Sender, m Metrics, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		repo:    repo,
		source:  source,
		sender:  sender,
		metrics: m,
		log:     log,
		clock:   RealClock{},
	}
}

const (
	syncCheckInterval = 15 * time.Second
	warmupDelay       = 2 * time.Second
)

// Run drives both jobs until ctx is canceled. An in-flight tick is allowed to
// finish before Run returns.
func (s *Scheduler) Run(ctx context.Context) {
	notify := time.NewTicker(s.cfg.TickInterval)
	defer notify.Stop()
	syncCheck := time.NewTicker(syncCheckInterval)
	defer syncCheck.Stop()
	warmup := time.NewTimer(warmupDelay)
	defer warmup.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-warmup.C:
			// One sync shortly after start so the roster is usable
			// before the first scheduled fetch time.
			go s.runSync(ctx)
		case <-syncCheck.C:
			s.maybeSync(ctx)
		case <-notify.C:
			s.tick(ctx)
		}
	}
}

// maybeSync starts a sync run when the current local minute matches one of
// the configured fetch times. The check fires several times per minute, so
// lastSyncAt keeps one minute from triggering more than once.
func (s *Scheduler) maybeSync(ctx context.Context) {
	now := s.clock.Now().In(s.cfg.Location)
	cur := fmt.Sprintf("%02d:%02d", now.Hour(), now.Minute())

	matched := false
	for _, t := range s.cfg.FetchTimes {
		if t == cur {
			matched = true
			break
		}
	}
	if !matched {
		s.lastSyncAt = ""
		return
	}
	if cur == s.lastSyncAt {
		return
	}
	s.lastSyncAt = cur
	go s.runSync(ctx)
}

// runSync fetches the roster and fully replaces the stored one. A fetch that
// errors or returns no rows leaves the previous roster untouched. Runs are
// serialized: a new run is skipped while a previous one is still in flight.
func (s *Scheduler) runSync(ctx context.Context) {
	if !s.syncInFlight.CompareAndSwap(false, true) {
		s.log.Warn("roster sync already in flight, skipping")
		return
	}
	defer s.syncInFlight.Store(false)

	rows, err := s.source.FetchRoster(ctx)
	if err != nil {
		s.log.Error("roster fetch failed, keeping previous roster", zap.Error(err))
		s.metrics.RecordSyncFailure()
		return
	}
	if len(rows) == 0 {
		s.log.Warn("roster fetch returned nothing, keeping previous roster")
		s.metrics.RecordSyncFailure()
		return
	}

	// One default year per run: a run straddling New Year's Eve must not
	// infer different years for rows of the same roster.
	year := s.clock.Now().In(s.cfg.Location).Year()

	stored, anomalous, err := s.repo.ReplaceShifts(ctx, rows, year)
	if err != nil {
		s.log.Error("roster replace failed", zap.Error(err))
		s.metrics.RecordSyncFailure()
		return
	}
	s.metrics.RecordSyncSuccess(stored, anomalous)
	if anomalous > 0 {
		s.log.Warn("roster contains unparseable dates, stored verbatim",
			zap.Int("anomalous", anomalous))
	}
	s.log.Info("roster updated", zap.Int("rows", stored))
}

// tick performs one reminder pass. The interval is deliberately much shorter
// than the minute granularity of user preferences: the exact-minute match
// below requires that every minute boundary is observed, and the dedup ledger
// makes repeated ticks within the same minute harmless.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.clock.Now().In(s.cfg.Location)
	hour, minute := now.Hour(), now.Minute()

	target, tomorrow := domain.TargetDate(now, s.cfg.CutoffHour)
	targetKey := domain.FormatDateKey(target)

	targets, err := s.repo.UsersWithNotificationsEnabled(ctx)
	if err != nil {
		s.log.Error("list notification targets failed", zap.Error(err))
		return
	}

	for _, u := range targets {
		if u.Hour != hour || u.Minute != minute {
			continue
		}
		s.notifyUser(ctx, u, targetKey, tomorrow)
	}
}

// notifyUser sends at most one reminder for (user, targetKey). A user with no
// shift that day is skipped silently and no ledger row is written. A delivery
// failure is logged and forfeits that day's reminder: the ledger row is not
// written, but the matching minute will have passed by the next tick.
func (s *Scheduler) notifyUser(ctx context.Context, u domain.NotifyTarget, targetKey string, tomorrow bool) {
	sent, err := s.repo.WasNotified(ctx, u.UserID, targetKey)
	if err != nil {
		s.log.Error("dedup lookup failed", zap.Error(err), zap.Int64("user", u.UserID))
		return
	}
	if sent {
		return
	}

	shifts, err := s.repo.ShiftsForDate(ctx, targetKey)
	if err != nil {
		s.log.Error("shift lookup failed", zap.Error(err), zap.String("date", targetKey))
		return
	}
	var my *domain.Shift
	for i := range shifts {
		if shifts[i].Person == u.Person {
			my = &shifts[i]
			break
		}
	}
	if my == nil {
		return // day off
	}

	text := domain.ReminderMessage(targetKey, tomorrow, *my)
	if err := s.sender.SendMessage(u.TelegramID, text); err != nil {
		s.log.Error("reminder delivery failed",
			zap.Error(err),
			zap.Int64("chatID", u.TelegramID),
			zap.String("date", targetKey))
		s.metrics.RecordSendFailure()
		return
	}
	if err := s.repo.MarkNotified(ctx, u.UserID, targetKey); err != nil {
		s.log.Error("dedup record failed", zap.Error(err), zap.Int64("user", u.UserID))
	}
	s.metrics.RecordReminderSent()
	s.log.Info("reminder sent",
		zap.Int64("chatID", u.TelegramID),
		zap.String("date", targetKey))
}
