package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/oldtora/ppshiftsbot/internal/config"
	"github.com/oldtora/ppshiftsbot/internal/store"
)

// session keeps per-chat conversational state (non-persistent, in-memory):
// onboarding steps, pending free-form inputs and admin push selections.
type session struct {
	awaitContact bool
	awaitKey     bool
	phone        string

	awaitNotifyTime bool
	notifyUserID    int64

	awaitPushText bool
	pushAll       bool
	pushTo        []int64
	batchSelected []int64

	awaitDeleteID bool
}

// Router wires Telegram updates to handlers and holds minimal in-memory state.
type Router struct {
	bot  *tgbotapi.BotAPI
	log  *zap.Logger
	repo store.Repo
	cfg  config.Config

	mu       sync.Mutex
	sessions map[int64]*session
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo, cfg config.Config) *Router {
	return &Router{
		bot:      bot,
		log:      log,
		repo:     repo,
		cfg:      cfg,
		sessions: make(map[int64]*session),
	}
}

// session returns the chat's session, creating it when absent.
func (r *Router) session(chatID int64) *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[chatID]
	if !ok {
		s = &session{}
		r.sessions[chatID] = s
	}
	return s
}

func (r *Router) clearSession(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, chatID)
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID

		if msg.Contact != nil {
			r.handleContact(ctx, chatID, msg.Contact)
			return
		}

		text := strings.TrimSpace(msg.Text)
		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, chatID)
		case text == btnMyShifts:
			r.handleMyShifts(ctx, chatID)
		case text == btnNotifications:
			r.handleNotifications(ctx, chatID)
		case text == btnResetPerson:
			r.handleResetPerson(ctx, chatID)
		case text == btnPush && r.cfg.IsAdmin(chatID):
			r.handlePushMenu(ctx, chatID)
		case text == btnPanel && r.cfg.IsAdmin(chatID):
			r.handlePanel(ctx, chatID)
		case text == btnKeys && r.cfg.IsAdmin(chatID):
			r.handleKeysList(ctx, chatID)
		default:
			r.handleFreeForm(ctx, chatID, text)
		}
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		if cb.Message == nil {
			return
		}
		chatID := cb.Message.Chat.ID
		data := cb.Data
		msgID := cb.Message.MessageID

		switch {
		case strings.HasPrefix(data, "person:"):
			r.handlePersonCallback(ctx, chatID, msgID, strings.TrimPrefix(data, "person:"), cb.ID)
		case strings.HasPrefix(data, "notify_hr:"):
			r.handleNotifyHourCallback(ctx, chatID, msgID, strings.TrimPrefix(data, "notify_hr:"), cb.ID)
		case data == "notify_custom":
			r.handleNotifyCustomCallback(ctx, chatID, msgID, cb.ID)
		case data == "notify_toggle":
			r.handleNotifyToggleCallback(ctx, chatID, msgID, cb.ID)
		case data == "notify_test_now":
			r.handleNotifyTestCallback(ctx, chatID, cb.ID)
		case strings.HasPrefix(data, "push_to:") && r.cfg.IsAdmin(chatID):
			r.handlePushToCallback(ctx, chatID, msgID, strings.TrimPrefix(data, "push_to:"), cb.ID)
		case data == "push_batch" && r.cfg.IsAdmin(chatID):
			r.handlePushBatchCallback(ctx, chatID, msgID, cb.ID)
		case strings.HasPrefix(data, "push_toggle:") && r.cfg.IsAdmin(chatID):
			r.handlePushToggleCallback(ctx, chatID, msgID, strings.TrimPrefix(data, "push_toggle:"), cb.ID)
		case data == "push_batch_done" && r.cfg.IsAdmin(chatID):
			r.handlePushBatchDoneCallback(ctx, chatID, msgID, cb.ID)
		case data == "push_batch_back" && r.cfg.IsAdmin(chatID):
			r.handlePushBatchBackCallback(ctx, chatID, msgID, cb.ID)
		case data == "admin_delete_user" && r.cfg.IsAdmin(chatID):
			r.handleDeleteUserCallback(ctx, chatID, cb.ID)
		default:
			// Unknown callback — ignore silently.
		}
		return
	}
}

// handleFreeForm dispatches non-command text by the chat's pending state.
func (r *Router) handleFreeForm(ctx context.Context, chatID int64, text string) {
	s := r.session(chatID)
	switch {
	case s.awaitKey:
		r.handleKeyInput(ctx, chatID, text)
	case s.awaitContact:
		r.sendText(chatID, textShareContactFirst)
	case s.awaitNotifyTime:
		r.handleNotifyTimeInput(ctx, chatID, text)
	case s.awaitPushText && r.cfg.IsAdmin(chatID):
		r.handlePushText(ctx, chatID, text)
	case s.awaitDeleteID && r.cfg.IsAdmin(chatID):
		r.handleDeleteIDInput(ctx, chatID, text)
	default:
		// No pending flow: ignore free-form text.
	}
}

// --- Generic send helpers ---

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Warn("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) sendWithMarkup(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) editText(chatID int64, messageID int, text string) {
	if _, err := r.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		r.log.Warn("edit failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) editWithMarkup(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	if _, err := r.bot.Send(edit); err != nil {
		r.log.Warn("edit failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) answerCallback(id, text string) {
	if _, err := r.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		r.log.Warn("answer callback failed", zap.Error(err))
	}
}

func (r *Router) alertCallback(id, text string) {
	if _, err := r.bot.Request(tgbotapi.NewCallbackWithAlert(id, text)); err != nil {
		r.log.Warn("answer callback failed", zap.Error(err))
	}
}

// SendMessage sends a plain text message to the given chat.
// This makes Router satisfy scheduler.Sender.
func (r *Router) SendMessage(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
