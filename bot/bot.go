// Package bot runs the kitchen-side Telegram bot: new orders are posted to the admin
// chat as cards whose buttons move the order through its lifecycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pizza-palace/models"
	"pizza-palace/services"
)

// StatusNotifyDedupWindow suppresses repeat notifications for the same order and status.
const StatusNotifyDedupWindow = 30 * time.Second

// sender is the part of *tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// OrderBoard is what the bot needs from the order ledger.
type OrderBoard interface {
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (models.Order, error)
	List(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	Stats(ctx context.Context) (models.OrderStats, error)
}

type dedupKey struct {
	orderID int64
	status  models.OrderStatus
}

type AdminBot struct {
	api         *tgbotapi.BotAPI
	client      sender
	adminChatID int64
	log         *zap.Logger
	now         func() time.Time

	mu       sync.Mutex
	cards    map[int64]int // order id -> message id in the admin chat
	notified map[dedupKey]time.Time

	orderLocks sync.Map // map[orderID]*sync.Mutex
}

func New(token string, adminChatID int64, log *zap.Logger) (*AdminBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	b := newAdminBot(api, adminChatID, log)
	b.api = api
	b.log.Info("telegram_bot_authorized", zap.String("username", api.Self.UserName))
	return b, nil
}

func newAdminBot(client sender, adminChatID int64, log *zap.Logger) *AdminBot {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminBot{
		client:      client,
		adminChatID: adminChatID,
		log:         log.Named("bot"),
		now:         time.Now,
		cards:       make(map[int64]int),
		notified:    make(map[dedupKey]time.Time),
	}
}

// cardMarkup converts card buttons to an inline keyboard.
func cardMarkup(c services.OrderCardContent) *tgbotapi.InlineKeyboardMarkup {
	if len(c.Buttons) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, row := range c.Buttons {
		var btns []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.CallbackData))
		}
		rows = append(rows, btns)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func (b *AdminBot) lockOrder(orderID int64) func() {
	v, _ := b.orderLocks.LoadOrStore(orderID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (b *AdminBot) cardMessage(orderID int64) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.cards[orderID]
	return id, ok
}

func (b *AdminBot) setCardMessage(orderID int64, messageID int) {
	b.mu.Lock()
	b.cards[orderID] = messageID
	b.mu.Unlock()
}

// claimNotify records a notification for (order, status) and reports false when one
// was already sent inside the dedup window.
func (b *AdminBot) claimNotify(orderID int64, status models.OrderStatus) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	for k, at := range b.notified {
		if now.Sub(at) >= StatusNotifyDedupWindow {
			delete(b.notified, k)
		}
	}
	key := dedupKey{orderID: orderID, status: status}
	if _, seen := b.notified[key]; seen {
		return false
	}
	b.notified[key] = now
	return true
}

// releaseNotify forgets a claim whose card never made it to the chat, so a retry is not
// suppressed.
func (b *AdminBot) releaseNotify(orderID int64, status models.OrderStatus) {
	b.mu.Lock()
	delete(b.notified, dedupKey{orderID: orderID, status: status})
	b.mu.Unlock()
}

func (b *AdminBot) sendCard(orderID int64, content services.OrderCardContent) error {
	msg := tgbotapi.NewMessage(b.adminChatID, content.Text)
	if kb := cardMarkup(content); kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := b.client.Send(msg)
	if err != nil {
		return fmt.Errorf("send card for order %d: %w", orderID, err)
	}
	b.setCardMessage(orderID, sent.MessageID)
	return nil
}

// upsertCard edits the order's card in place, or posts a new one when there is none yet
// or the old message is gone.
func (b *AdminBot) upsertCard(o *models.Order) error {
	unlock := b.lockOrder(o.ID)
	defer unlock()

	content := services.BuildAdminCard(o)
	messageID, ok := b.cardMessage(o.ID)
	if !ok {
		return b.sendCard(o.ID, content)
	}
	edit := tgbotapi.NewEditMessageText(b.adminChatID, messageID, content.Text)
	if kb := cardMarkup(content); kb != nil {
		edit.ReplyMarkup = kb
	} else {
		edit.ReplyMarkup = &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	}
	if _, err := b.client.Send(edit); err != nil {
		errStr := err.Error()
		switch {
		case strings.Contains(errStr, "not modified"):
			return nil
		case strings.Contains(errStr, "not found"):
			return b.sendCard(o.ID, content)
		default:
			return fmt.Errorf("edit card for order %d: %w", o.ID, err)
		}
	}
	return nil
}

func (b *AdminBot) OrderCreated(_ context.Context, o models.Order) error {
	if !b.claimNotify(o.ID, o.Status) {
		return nil
	}
	if err := b.upsertCard(&o); err != nil {
		b.releaseNotify(o.ID, o.Status)
		return err
	}
	return nil
}

func (b *AdminBot) OrderStatusChanged(_ context.Context, o models.Order, previous models.OrderStatus) error {
	if !b.claimNotify(o.ID, o.Status) {
		b.log.Debug("order_status_notify_suppressed", zap.Int64("order_id", o.ID), zap.String("status", string(o.Status)))
		return nil
	}
	b.log.Info("order_card_refresh",
		zap.Int64("order_id", o.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(o.Status)),
	)
	if err := b.upsertCard(&o); err != nil {
		b.releaseNotify(o.ID, o.Status)
		return err
	}
	return nil
}

func (b *AdminBot) send(chatID int64, text string) {
	if _, err := b.client.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("telegram_send_failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *AdminBot) answer(callbackID, text string) {
	if _, err := b.client.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Warn("telegram_callback_answer_failed", zap.Error(err))
	}
}

func (b *AdminBot) setBotCommands() error {
	_, err := b.client.Request(tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "pending", Description: "Orders waiting in the kitchen"},
		tgbotapi.BotCommand{Command: "stats", Description: "Order totals"},
	))
	return err
}

// Start polls Telegram for updates until ctx is done.
func (b *AdminBot) Start(ctx context.Context, orders OrderBoard) {
	if b.api == nil {
		return
	}
	if err := b.setBotCommands(); err != nil {
		b.log.Warn("telegram_set_commands_failed", zap.Error(err))
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()
	b.serve(ctx, updates, orders)
}

func (b *AdminBot) serve(ctx context.Context, updates <-chan tgbotapi.Update, orders OrderBoard) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update, orders)
		}
	}
}

func (b *AdminBot) handleUpdate(ctx context.Context, update tgbotapi.Update, orders OrderBoard) {
	if cq := update.CallbackQuery; cq != nil {
		if strings.HasPrefix(cq.Data, services.OrderStatusCallbackPrefix) {
			b.handleOrderStatusCallback(ctx, cq, orders)
		}
		return
	}
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	if msg.Chat.ID != b.adminChatID {
		b.send(msg.Chat.ID, "Unauthorized.")
		return
	}
	switch msg.Command() {
	case "stats":
		b.handleStats(ctx, msg.Chat.ID, orders)
	case "pending":
		b.handlePending(ctx, msg.Chat.ID, orders)
	}
}

func (b *AdminBot) fromAdminChat(cq *tgbotapi.CallbackQuery) bool {
	if cq.Message != nil && cq.Message.Chat != nil && cq.Message.Chat.ID == b.adminChatID {
		return true
	}
	return cq.From != nil && cq.From.ID == b.adminChatID
}

func (b *AdminBot) handleOrderStatusCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, orders OrderBoard) {
	if !b.fromAdminChat(cq) {
		b.answer(cq.ID, "Unauthorized.")
		return
	}
	orderID, status, ok := services.ParseOrderStatusCallback(cq.Data)
	if !ok {
		b.answer(cq.ID, "Invalid callback.")
		return
	}
	if _, err := orders.UpdateStatus(ctx, orderID, status); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			b.answer(cq.ID, "Order not found.")
		case errors.Is(err, services.ErrInvalidTransition):
			b.answer(cq.ID, "Order has already moved past that step.")
		default:
			b.answer(cq.ID, "Update failed.")
		}
		b.log.Warn("order_status_update_failed",
			zap.Int64("order_id", orderID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return
	}
	b.answer(cq.ID, "✅ "+services.StatusLabel(status))
}

func (b *AdminBot) handleStats(ctx context.Context, chatID int64, orders OrderBoard) {
	stats, err := orders.Stats(ctx)
	if err != nil {
		b.send(chatID, "Stats failed: "+err.Error())
		return
	}
	b.send(chatID, services.BuildStatsText(stats))
}

func (b *AdminBot) handlePending(ctx context.Context, chatID int64, orders OrderBoard) {
	pending, err := orders.List(ctx, services.OrderStatusPending)
	if err != nil {
		b.send(chatID, "Listing failed: "+err.Error())
		return
	}
	b.send(chatID, pendingText(pending))
}

func pendingText(orders []models.Order) string {
	if len(orders) == 0 {
		return "No pending orders."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "⏳ Pending orders: %d\n", len(orders))
	for _, o := range orders {
		fmt.Fprintf(&sb, "\n#%d %s, %s (%s)", o.ID, o.CustomerName, services.FormatMoney(o.Total), o.CreatedAt.Format("15:04"))
	}
	return sb.String()
}
