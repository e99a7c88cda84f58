package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/oldtora/ppshiftsbot/internal/domain"
)

// Main menu buttons.
const (
	btnMyShifts      = "📅 My shifts"
	btnNotifications = "🔔 Notifications"
	btnResetPerson   = "🔄 Reset name"
	btnPush          = "📤 Push"
	btnPanel         = "📋 Panel"
	btnKeys          = "🔑 Keys"
)

const (
	textWelcomeShareContact = "Welcome. To activate, first share your contact (tap the button below):"
	textShareContactFirst   = "Share your contact first (tap the \"Share contact\" button). After that, enter your activation key."
	textEnterKey            = "Thanks. Now enter your activation key (one line):"
	textActivateFirst       = "Activate the bot with a key first (/start)."
	textNoRosterYet         = "Shift data is not loaded yet. Wait for the next update or contact the administrator."
	textInternalError       = "Something went wrong. Please try again later."
	textBatchPick           = "Pick recipients (tap to mark), then \"Done\":"
)

// mainMenuKeyboard builds the post-activation reply keyboard; admins get the
// push/panel/keys row on top of the regular buttons.
func (r *Router) mainMenuKeyboard(chatID int64) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnMyShifts)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnNotifications),
			tgbotapi.NewKeyboardButton(btnResetPerson),
		),
	}
	if r.cfg.IsAdmin(chatID) {
		rows = append(rows,
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(btnPush),
				tgbotapi.NewKeyboardButton(btnPanel),
			),
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnKeys)),
		)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// contactKeyboard offers the "share contact" button used during onboarding.
func contactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	btn := tgbotapi.NewKeyboardButtonContact("📱 Share contact")
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(btn))
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// personKeyboard lists roster names as inline buttons, one per row.
func personKeyboard(persons []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(persons))
	for _, p := range persons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p, "person:"+p),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// timeKeyboard offers hour presets plus custom time and a test button.
func timeKeyboard() tgbotapi.InlineKeyboardMarkup {
	hourRow := func(from, to int) []tgbotapi.InlineKeyboardButton {
		var row []tgbotapi.InlineKeyboardButton
		for h := from; h < to; h++ {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d:00", h), fmt.Sprintf("notify_hr:%d", h)))
		}
		return row
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		hourRow(6, 11),
		hourRow(11, 16),
		hourRow(16, 22),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Custom time (HH:MM)", "notify_custom"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧪 Test now", "notify_test_now"),
		),
	)
}

// notifyToggleKeyboard shows on/off plus the always-available test button.
func notifyToggleKeyboard(enabled bool) tgbotapi.InlineKeyboardMarkup {
	text := "🔕 Turn off notifications"
	if !enabled {
		text = "🔔 Turn on notifications"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(text, "notify_toggle"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧪 Test now", "notify_test_now"),
		),
	)
}

// panelKeyboard is attached to the admin panel message.
func panelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete user", "admin_delete_user"),
		),
	)
}

// pushRecipientsKeyboard: send to everyone, one user, or open batch select.
func pushRecipientsKeyboard(users []domain.User) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Everyone", "push_to:all"),
		),
	}
	for _, u := range users {
		label := pushLabel(u, 60)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("push_to:%d", u.TelegramID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📋 Pick several", "push_batch"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// pushBatchKeyboard: mark several recipients, then Done.
func pushBatchKeyboard(users []domain.User, selected []int64) tgbotapi.InlineKeyboardMarkup {
	isSelected := make(map[int64]bool, len(selected))
	for _, id := range selected {
		isSelected[id] = true
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, u := range users {
		label := pushLabel(u, 55)
		if isSelected[u.TelegramID] {
			label = "✓ " + label
		} else {
			label = "○ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("push_toggle:%d", u.TelegramID)),
		))
	}

	done := "Done — send to selected"
	if n := len(selected); n > 0 {
		done = fmt.Sprintf("Done — send to selected (%d)", n)
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(done, "push_batch_done")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("← Back", "push_batch_back")),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func pushLabel(u domain.User, maxLen int) string {
	person := u.Person
	if person == "" {
		person = "—"
	}
	label := fmt.Sprintf("%s (%d)", person, u.TelegramID)
	// Truncate on runes: names are often Cyrillic and a byte slice could
	// cut a character in half.
	if r := []rune(label); len(r) > maxLen {
		label = string(r[:maxLen])
	}
	return label
}
