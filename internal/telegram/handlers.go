package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/oldtora/ppshiftsbot/internal/domain"
	"github.com/oldtora/ppshiftsbot/internal/store"
)

func (r *Router) tzHint() string {
	return fmt.Sprintf("Bot timezone: %s.", r.cfg.Timezone)
}

// --- Onboarding: /start → contact → activation key → person ---

func (r *Router) handleStart(ctx context.Context, chatID int64) {
	u, err := r.repo.UserByTelegramID(ctx, chatID)
	switch {
	case err == nil && u.Person != "":
		r.sendWithMarkup(chatID,
			fmt.Sprintf("Welcome back! Your profile: %s.\nUse the menu below.", u.Person),
			r.mainMenuKeyboard(chatID))
	case err == nil:
		r.offerPersonPicker(ctx, chatID)
	case errors.Is(err, store.ErrNotFound):
		s := r.session(chatID)
		s.awaitContact = true
		s.awaitKey = false
		r.sendWithMarkup(chatID, textWelcomeShareContact, contactKeyboard())
	default:
		r.log.Error("user lookup failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
	}
}

func (r *Router) handleContact(ctx context.Context, chatID int64, contact *tgbotapi.Contact) {
	s := r.session(chatID)
	if !s.awaitContact {
		return
	}
	s.phone = contact.PhoneNumber
	s.awaitContact = false
	s.awaitKey = true

	msg := tgbotapi.NewMessage(chatID, textEnterKey)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) handleKeyInput(ctx context.Context, chatID int64, text string) {
	key := strings.TrimSpace(text)
	if key == "" {
		r.sendText(chatID, "Enter a key.")
		return
	}
	k, err := r.repo.ActivationKeyByText(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		r.sendText(chatID, "Invalid key.")
		return
	}
	if err != nil {
		r.log.Error("key lookup failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	if k.Used {
		r.sendText(chatID, "This key has already been used.")
		return
	}

	s := r.session(chatID)
	if _, err := r.repo.CreateUser(ctx, chatID, k.ID, s.phone); err != nil {
		r.log.Error("create user failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	if err := r.repo.MarkKeyUsed(ctx, k.ID); err != nil {
		r.log.Error("mark key used failed", zap.Error(err))
	}
	r.clearSession(chatID)

	persons, err := r.repo.DistinctPersons(ctx)
	if err != nil {
		r.log.Error("list persons failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	if len(persons) == 0 {
		r.sendText(chatID, "Key activated. Shift data is not loaded yet — pick your name later via /start.")
		return
	}
	r.sendWithMarkup(chatID, "Key activated. Pick your name:", personKeyboard(persons))
}

func (r *Router) offerPersonPicker(ctx context.Context, chatID int64) {
	persons, err := r.repo.DistinctPersons(ctx)
	if err != nil {
		r.log.Error("list persons failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	if len(persons) == 0 {
		r.sendText(chatID, textNoRosterYet)
		return
	}
	r.sendWithMarkup(chatID, "Pick your name from the list:", personKeyboard(persons))
}

func (r *Router) handlePersonCallback(ctx context.Context, chatID int64, messageID int, person, cbID string) {
	r.answerCallback(cbID, "")
	u, err := r.repo.UserByTelegramID(ctx, chatID)
	if err != nil {
		r.editText(chatID, messageID, textActivateFirst)
		return
	}
	if err := r.repo.SetUserPerson(ctx, u.ID, person); err != nil {
		r.log.Error("set person failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	r.editText(chatID, messageID, fmt.Sprintf("Name saved: %s. Use the menu below.", person))
	r.sendWithMarkup(chatID, "Choose an action:", r.mainMenuKeyboard(chatID))
}

// --- Main menu ---

func (r *Router) handleMyShifts(ctx context.Context, chatID int64) {
	u, err := r.repo.UserByTelegramID(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		r.sendText(chatID, textActivateFirst)
		return
	}
	if err != nil {
		r.log.Error("user lookup failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	if u.Person == "" {
		r.offerPersonPicker(ctx, chatID)
		return
	}

	shifts, err := r.repo.ShiftsByPerson(ctx, u.Person)
	if err != nil {
		r.log.Error("shift lookup failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	if len(shifts) == 0 {
		r.sendText(chatID, "No shifts for your name in the roster yet.")
		return
	}

	lines := []string{"📅 Your shifts:\n"}
	for _, s := range shifts {
		lines = append(lines, fmt.Sprintf("• %s — shift %s, location: %s", s.Date, s.ShiftType, s.Location))
	}
	r.sendText(chatID, strings.Join(lines, "\n"))
}

func (r *Router) handleResetPerson(ctx context.Context, chatID int64) {
	u, err := r.repo.UserByTelegramID(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		r.sendText(chatID, textActivateFirst)
		return
	}
	if err != nil {
		r.log.Error("user lookup failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	if u.Person == "" {
		r.sendText(chatID, "No name was selected.")
		return
	}
	if err := r.repo.ResetUserPerson(ctx, u.ID); err != nil {
		r.log.Error("reset person failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}

	persons, err := r.repo.DistinctPersons(ctx)
	if err != nil || len(persons) == 0 {
		r.sendText(chatID, "Name reset. Pick a new one via /start once shift data is available.")
		return
	}
	r.sendWithMarkup(chatID, "Name reset. Pick again:", personKeyboard(persons))
}

// --- Notification settings ---

func (r *Router) handleNotifications(ctx context.Context, chatID int64) {
	u, err := r.repo.UserByTelegramID(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		r.sendText(chatID, textActivateFirst)
		return
	}
	if err != nil {
		r.log.Error("user lookup failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	if u.Person == "" {
		r.sendText(chatID, "Pick your name in the menu first.")
		return
	}

	cur, err := r.repo.NotificationSettings(ctx, u.ID)
	if err == nil && cur.Enabled {
		r.sendWithMarkup(chatID,
			fmt.Sprintf("Notifications are on: daily at %d:%02d. %s", cur.Hour, cur.Minute, r.tzHint()),
			notifyToggleKeyboard(true))
		return
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		r.log.Error("settings lookup failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	r.sendWithMarkup(chatID,
		fmt.Sprintf("Turn on notifications and pick a reminder time. %s\n\nOr tap \"Custom time\" and enter HH:MM:", r.tzHint()),
		timeKeyboard())
}

func (r *Router) handleNotifyHourCallback(ctx context.Context, chatID int64, messageID int, hourData, cbID string) {
	r.answerCallback(cbID, "")
	u, err := r.repo.UserByTelegramID(ctx, chatID)
	if err != nil {
		r.editText(chatID, messageID, textActivateFirst)
		return
	}
	hour, err := strconv.Atoi(hourData)
	if err != nil || hour < 0 || hour > 23 {
		hour = 8
	}
	if err := r.repo.SetNotificationSettings(ctx, domain.NotificationSettings{
		UserID: u.ID, Hour: hour, Minute: 0, Enabled: true,
	}); err != nil {
		r.log.Error("save settings failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	r.editWithMarkup(chatID, messageID,
		fmt.Sprintf("Notifications on. Daily at %d:00 (%s) you'll get a shift reminder (when you have a shift).", hour, r.tzHint()),
		notifyToggleKeyboard(true))
}

func (r *Router) handleNotifyCustomCallback(ctx context.Context, chatID int64, messageID int, cbID string) {
	r.answerCallback(cbID, "")
	u, err := r.repo.UserByTelegramID(ctx, chatID)
	if err != nil {
		r.editText(chatID, messageID, textActivateFirst)
		return
	}
	s := r.session(chatID)
	s.awaitNotifyTime = true
	s.notifyUserID = u.ID
	r.editText(chatID, messageID,
		fmt.Sprintf("Enter a time as HH:MM or H:MM (e.g. 13:30 or 9:00).\n\n%s", r.tzHint()))
}

func (r *Router) handleNotifyTimeInput(ctx context.Context, chatID int64, text string) {
	s := r.session(chatID)
	hour, minute, err := domain.ParseClock(text)
	if err != nil {
		r.sendText(chatID, "Invalid format. Enter a time as HH:MM or H:MM (e.g. 13:30 or 9:00).")
		return
	}
	userID := s.notifyUserID
	s.awaitNotifyTime = false
	s.notifyUserID = 0

	if err := r.repo.SetNotificationSettings(ctx, domain.NotificationSettings{
		UserID: userID, Hour: hour, Minute: minute, Enabled: true,
	}); err != nil {
		r.log.Error("save settings failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	r.sendWithMarkup(chatID,
		fmt.Sprintf("Notifications on. Daily at %d:%02d. %s", hour, minute, r.tzHint()),
		notifyToggleKeyboard(true))
}

func (r *Router) handleNotifyToggleCallback(ctx context.Context, chatID int64, messageID int, cbID string) {
	r.answerCallback(cbID, "")
	u, err := r.repo.UserByTelegramID(ctx, chatID)
	if err != nil {
		r.editText(chatID, messageID, textActivateFirst)
		return
	}
	cur, err := r.repo.NotificationSettings(ctx, u.ID)
	if err == nil && cur.Enabled {
		cur.Enabled = false
		if err := r.repo.SetNotificationSettings(ctx, *cur); err != nil {
			r.log.Error("save settings failed", zap.Error(err))
			r.sendText(chatID, textInternalError)
			return
		}
		r.editWithMarkup(chatID, messageID, "Notifications off.", notifyToggleKeyboard(false))
		return
	}
	r.editWithMarkup(chatID, messageID,
		fmt.Sprintf("Pick a daily reminder time (%s):", r.tzHint()),
		timeKeyboard())
}

// handleNotifyTestCallback previews the reminder the user would get at their
// chosen hour, applying the same cutoff rule as the scheduler.
func (r *Router) handleNotifyTestCallback(ctx context.Context, chatID int64, cbID string) {
	u, err := r.repo.UserByTelegramID(ctx, chatID)
	if err != nil {
		r.alertCallback(cbID, textActivateFirst)
		return
	}
	if u.Person == "" {
		r.alertCallback(cbID, "Pick your name first.")
		return
	}
	r.answerCallback(cbID, "")

	notifyHour := 12
	if cur, err := r.repo.NotificationSettings(ctx, u.ID); err == nil {
		notifyHour = cur.Hour
	}

	// The preview pretends "now" is the chosen hour, so a late reminder
	// time previews tomorrow's shift just like the real send would.
	now := time.Now().In(r.cfg.Location())
	probe := time.Date(now.Year(), now.Month(), now.Day(), notifyHour, 0, 0, 0, r.cfg.Location())
	target, tomorrow := domain.TargetDate(probe, r.cfg.CutoffHour)
	targetKey := domain.FormatDateKey(target)

	shifts, err := r.repo.ShiftsForDate(ctx, targetKey)
	if err != nil {
		r.log.Error("shift lookup failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	var my *domain.Shift
	for i := range shifts {
		if shifts[i].Person == u.Person {
			my = &shifts[i]
			break
		}
	}
	r.sendText(chatID, domain.TestReminderMessage(targetKey, tomorrow, my))
}
