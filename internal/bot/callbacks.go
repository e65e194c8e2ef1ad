package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/solman/solbot/pkg/logger"
)

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	data := query.Data

	switch {
	case strings.HasPrefix(data, "request_access_"):
		b.answerCallback(query.ID, "")
		b.callbackAccessRequest(query)
	case strings.HasPrefix(data, "approve_"), strings.HasPrefix(data, "deny_"):
		b.callbackApproval(query)
	case strings.HasPrefix(data, "admin_"):
		b.answerCallback(query.ID, "")
		b.callbackAdmin(query)
	case strings.HasPrefix(data, "positions_"):
		b.answerCallback(query.ID, "")
		b.callbackPositionsPage(ctx, query)
	case strings.HasPrefix(data, "sell_"):
		b.answerCallback(query.ID, "")
		b.callbackSell(ctx, query)
	}
}

// callbackAccessRequest records the request and pings the owner with
// approve/deny buttons.
func (b *Bot) callbackAccessRequest(query *tgbotapi.CallbackQuery) {
	uid := query.From.ID
	b.auth.RequestAccess(uid)

	b.edit(query.Message.Chat.ID, query.Message.MessageID,
		"✅ Access request sent to the owner. You'll be notified once approved.")

	stats := b.auth.GetStats()
	if stats.OwnerID == 0 {
		return
	}

	notice := tgbotapi.NewMessage(stats.OwnerID, fmt.Sprintf(
		"🔔 *Access Request*\n\n*User:* @%s\n*ID:* `%d`\n*Time:* %s",
		escapeMarkdown(displayName(query.From)), uid, time.Now().Format("2006-01-02 15:04:05")))
	notice.ParseMode = tgbotapi.ModeMarkdown
	notice.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", fmt.Sprintf("approve_%d", uid)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Deny", fmt.Sprintf("deny_%d", uid)),
		),
	)
	b.send(notice)
}

// callbackApproval handles the owner's approve/deny decision.
func (b *Bot) callbackApproval(query *tgbotapi.CallbackQuery) {
	if !b.auth.IsOwner(query.From.ID) {
		b.answerCallbackAlert(query.ID, "Only the owner can approve requests!")
		return
	}
	b.answerCallback(query.ID, "")

	action, rest, ok := strings.Cut(query.Data, "_")
	if !ok {
		return
	}
	uid, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		logger.Warnf("malformed approval callback %q", query.Data)
		return
	}

	b.auth.ResolveRequest(uid)

	if action == "approve" {
		b.auth.AddUser(uid)
		b.edit(query.Message.Chat.ID, query.Message.MessageID,
			fmt.Sprintf("✅ Access approved for user %d", uid))
		b.notifyUser(uid, "✅ *Access Granted!*\n\nThe owner has approved your request. You can now use the bot.")
		return
	}

	b.edit(query.Message.Chat.ID, query.Message.MessageID,
		fmt.Sprintf("❌ Access denied for user %d", uid))
	b.notifyUser(uid, "❌ Your access request was denied.")
}

func (b *Bot) callbackAdmin(query *tgbotapi.CallbackQuery) {
	if !b.auth.IsOwner(query.From.ID) {
		return
	}

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	if uid, ok := strings.CutPrefix(query.Data, "admin_remove_"); ok {
		b.callbackAdminRemove(chatID, messageID, uid)
		return
	}

	switch query.Data {
	case "admin_list_users":
		b.renderUserList(chatID, messageID)

	case "admin_stats":
		stats := b.auth.GetStats()
		b.edit(chatID, messageID, fmt.Sprintf(
			"📊 *Bot Statistics*\n\n"+
				"Authorized Users: %d\n"+
				"Pending Requests: %d\n"+
				"Owner ID: `%d`\n"+
				"API Endpoint: `%s`",
			stats.AuthorizedUsers, stats.PendingRequests, stats.OwnerID, b.cfg.APIBaseURL))

	case "admin_refresh":
		stats := b.auth.GetStats()
		e := tgbotapi.NewEditMessageText(chatID, messageID, fmt.Sprintf(
			"🔧 *Admin Panel* *(Updated)*\n\n"+
				"Authorized Users: %d\n"+
				"Pending Requests: %d\n\n"+
				"Select an option:",
			stats.AuthorizedUsers, stats.PendingRequests))
		e.ParseMode = tgbotapi.ModeMarkdown
		kb := adminKeyboard()
		e.ReplyMarkup = &kb
		b.send(e)
	}
}

// renderUserList shows the authorized set with a remove button per
// non-owner user.
func (b *Bot) renderUserList(chatID int64, messageID int) {
	ids := b.auth.AuthorizedUsers()

	var sb strings.Builder
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, id := range ids {
		if b.auth.IsOwner(id) {
			fmt.Fprintf(&sb, "• `%d` (owner)\n", id)
			continue
		}
		fmt.Fprintf(&sb, "• `%d`\n", id)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🚫 Remove %d", id),
				fmt.Sprintf("admin_remove_%d", id))))
	}
	list := sb.String()
	if list == "" {
		list = "No users authorized"
	}

	e := tgbotapi.NewEditMessageText(chatID, messageID,
		fmt.Sprintf("👥 *Authorized Users:*\n\n%s", list))
	e.ParseMode = tgbotapi.ModeMarkdown
	if len(rows) > 0 {
		kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
		e.ReplyMarkup = &kb
	}
	b.send(e)
}

func (b *Bot) callbackAdminRemove(chatID int64, messageID int, raw string) {
	uid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logger.Warnf("malformed remove callback %q", raw)
		return
	}
	if !b.auth.RemoveUser(uid) {
		b.edit(chatID, messageID, fmt.Sprintf("⚠️ Could not remove user %d", uid))
		return
	}
	logger.Infof("owner revoked access for user %d", uid)
	b.notifyUser(uid, "🚫 Your access to this bot has been revoked.")
	b.renderUserList(chatID, messageID)
}

func (b *Bot) callbackPositionsPage(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if !b.auth.IsAuthorized(query.From.ID) {
		return
	}
	page, err := strconv.Atoi(strings.TrimPrefix(query.Data, "positions_"))
	if err != nil {
		return
	}
	b.renderPositionsPage(ctx, query.Message.Chat.ID, query.Message.MessageID, page)
}

func (b *Bot) callbackSell(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if !b.auth.IsAuthorized(query.From.ID) {
		return
	}
	tokenMint := strings.TrimPrefix(query.Data, "sell_")
	if !b.validator.IsValid(tokenMint) {
		return
	}

	b.edit(query.Message.Chat.ID, query.Message.MessageID, fmt.Sprintf(
		"🔄 *Selling Position*\nToken: `%s`\nProcessing...", tokenMint))
	b.executeSell(ctx, query.Message.Chat.ID, query.Message.MessageID, tokenMint)
}

// notifyUser best-effort DMs a user; they may have blocked the bot.
func (b *Bot) notifyUser(uid int64, text string) {
	msg := tgbotapi.NewMessage(uid, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		logger.Errorf("failed to notify user %d: %v", uid, err)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		logger.Debugf("callback answer failed: %v", err)
	}
}

func (b *Bot) answerCallbackAlert(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(id, text)); err != nil {
		logger.Debugf("callback alert failed: %v", err)
	}
}
