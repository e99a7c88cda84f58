package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Admin tools: user panel with deletion, one-off push messages
// (all / single / multi-select batch), and the activation key list.

func (r *Router) handlePanel(ctx context.Context, chatID int64) {
	users, err := r.repo.AllUsers(ctx)
	if err != nil {
		r.log.Error("list users failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	if len(users) == 0 {
		r.sendWithMarkup(chatID, "Nobody has activated the bot yet.", panelKeyboard())
		return
	}

	lines := []string{"📋 Who is in the bot:\n"}
	for _, u := range users {
		person := u.Person
		if person == "" {
			person = "—"
		}
		line := fmt.Sprintf("• %d — %s", u.TelegramID, person)
		if u.Phone != "" {
			line += fmt.Sprintf(" (%s)", u.Phone)
		}
		lines = append(lines, line)
	}
	r.sendWithMarkup(chatID, strings.Join(lines, "\n"), panelKeyboard())
}

func (r *Router) handleDeleteUserCallback(ctx context.Context, chatID int64, cbID string) {
	r.answerCallback(cbID, "")
	r.session(chatID).awaitDeleteID = true
	r.sendText(chatID, "Enter the telegram_id of the user to delete (a number from the list above). Their data will be wiped; they can only return by redoing the full onboarding (contact, key, name).")
}

func (r *Router) handleDeleteIDInput(ctx context.Context, chatID int64, text string) {
	s := r.session(chatID)
	s.awaitDeleteID = false

	tid, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		r.sendText(chatID, "Enter a number (telegram_id from the list above).")
		return
	}
	if tid == chatID {
		r.sendText(chatID, "You cannot delete yourself.")
		return
	}
	deleted, err := r.repo.DeleteUserByTelegramID(ctx, tid)
	if err != nil {
		r.log.Error("delete user failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	if !deleted {
		r.sendText(chatID, fmt.Sprintf("No user with id %d in the database.", tid))
		return
	}
	r.sendText(chatID, fmt.Sprintf("User %d deleted. They can return only by redoing all the steps (contact, key, name).", tid))
}

func (r *Router) handleKeysList(ctx context.Context, chatID int64) {
	keys, err := r.repo.AvailableKeys(ctx, 100)
	if err != nil {
		r.log.Error("list keys failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	if len(keys) == 0 {
		r.sendText(chatID, "🔑 No available keys (all used).")
		return
	}

	lines := []string{fmt.Sprintf("🔑 Available keys (%d):\n", len(keys))}
	for _, k := range keys {
		lines = append(lines, "• "+k)
	}
	text := strings.Join(lines, "\n")
	// Telegram messages cap at 4096 chars; truncate long lists.
	if len(text) > 4000 {
		shown := keys
		if len(shown) > 80 {
			shown = shown[:80]
		}
		truncated := []string{lines[0]}
		for _, k := range shown {
			truncated = append(truncated, "• "+k)
		}
		text = strings.Join(truncated, "\n") + fmt.Sprintf("\n\n... and %d more.", len(keys)-len(shown))
	}
	r.sendText(chatID, text)
}

// --- Push flow ---

func (r *Router) handlePushMenu(ctx context.Context, chatID int64) {
	users, err := r.repo.AllUsers(ctx)
	if err != nil {
		r.log.Error("list users failed", zap.Error(err))
		r.sendText(chatID, textInternalError)
		return
	}
	if len(users) == 0 {
		r.sendText(chatID, "No users to send to.")
		return
	}
	r.sendWithMarkup(chatID, "Send to whom?", pushRecipientsKeyboard(users))
}

func (r *Router) handlePushToCallback(ctx context.Context, chatID int64, messageID int, rest, cbID string) {
	s := r.session(chatID)
	if rest == "all" {
		s.pushAll = true
		s.pushTo = nil
	} else {
		tid, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			r.alertCallback(cbID, "Error.")
			return
		}
		s.pushAll = false
		s.pushTo = []int64{tid}
	}
	r.answerCallback(cbID, "")
	s.awaitPushText = true
	r.editText(chatID, messageID, "Enter the message text to send.")
}

func (r *Router) handlePushBatchCallback(ctx context.Context, chatID int64, messageID int, cbID string) {
	users, err := r.repo.AllUsers(ctx)
	if err != nil || len(users) == 0 {
		r.alertCallback(cbID, "No users.")
		return
	}
	r.answerCallback(cbID, "")
	s := r.session(chatID)
	s.batchSelected = nil
	r.editWithMarkup(chatID, messageID, textBatchPick, pushBatchKeyboard(users, nil))
}

func (r *Router) handlePushToggleCallback(ctx context.Context, chatID int64, messageID int, rest, cbID string) {
	tid, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return
	}
	r.answerCallback(cbID, "")

	s := r.session(chatID)
	found := false
	selected := make([]int64, 0, len(s.batchSelected)+1)
	for _, id := range s.batchSelected {
		if id == tid {
			found = true
			continue
		}
		selected = append(selected, id)
	}
	if !found {
		selected = append(selected, tid)
	}
	s.batchSelected = selected

	users, err := r.repo.AllUsers(ctx)
	if err != nil {
		r.log.Error("list users failed", zap.Error(err))
		return
	}
	r.editWithMarkup(chatID, messageID, textBatchPick, pushBatchKeyboard(users, selected))
}

func (r *Router) handlePushBatchDoneCallback(ctx context.Context, chatID int64, messageID int, cbID string) {
	s := r.session(chatID)
	if len(s.batchSelected) == 0 {
		r.alertCallback(cbID, "Pick at least one recipient.")
		return
	}
	r.answerCallback(cbID, "")
	s.pushAll = false
	s.pushTo = s.batchSelected
	s.batchSelected = nil
	s.awaitPushText = true
	r.editText(chatID, messageID, "Enter the message text to send.")
}

func (r *Router) handlePushBatchBackCallback(ctx context.Context, chatID int64, messageID int, cbID string) {
	r.answerCallback(cbID, "")
	s := r.session(chatID)
	s.batchSelected = nil

	users, err := r.repo.AllUsers(ctx)
	if err != nil {
		r.log.Error("list users failed", zap.Error(err))
		return
	}
	r.editWithMarkup(chatID, messageID, "Send to whom?", pushRecipientsKeyboard(users))
}

// handlePushText delivers the admin broadcast. Each recipient is independent:
// one failed send does not stop the rest.
func (r *Router) handlePushText(ctx context.Context, chatID int64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		r.sendText(chatID, "Enter non-empty text.")
		return
	}

	s := r.session(chatID)
	var recipients []int64
	switch {
	case s.pushAll:
		users, err := r.repo.AllUsers(ctx)
		if err != nil {
			r.log.Error("list users failed", zap.Error(err))
			r.sendText(chatID, textInternalError)
			return
		}
		for _, u := range users {
			recipients = append(recipients, u.TelegramID)
		}
	case len(s.pushTo) > 0:
		recipients = s.pushTo
	default:
		r.sendText(chatID, "Pick recipients again (Push → All or a user).")
		return
	}

	s.awaitPushText = false
	s.pushAll = false
	s.pushTo = nil

	sent, failed := 0, 0
	for _, cid := range recipients {
		if err := r.SendMessage(cid, text); err != nil {
			r.log.Warn("push send failed", zap.Error(err), zap.Int64("chatID", cid))
			failed++
			continue
		}
		sent++
	}
	summary := fmt.Sprintf("Sent to %d recipients.", sent)
	if failed > 0 {
		summary += fmt.Sprintf(" Failures: %d.", failed)
	}
	r.sendText(chatID, summary)
}
