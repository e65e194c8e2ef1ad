package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/solman/solbot/pkg/logger"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.cmdStart(msg)
	case "help":
		b.cmdHelp(msg)
	case "status":
		b.cmdStatus(ctx, msg)
	case "positions":
		b.cmdPositions(ctx, msg)
	case "sell":
		b.cmdSell(ctx, msg)
	case "wallet":
		b.cmdWallet(ctx, msg)
	case "admin":
		b.cmdAdmin(msg)
	}
}

// handleMessage scans a plain message for token addresses and buys each
// one.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	uid := msg.From.ID
	if !b.auth.IsAuthorized(uid) {
		b.sendUnauthorized(msg.Chat.ID, uid)
		return
	}

	addresses := b.validator.ExtractAll(msg.Text)
	if len(addresses) == 0 {
		return
	}

	logger.Infof("user %s (%d) triggered purchase for %d token(s)", displayName(msg.From), uid, len(addresses))

	for _, address := range addresses {
		b.processPurchase(ctx, msg, address)
	}
}

func (b *Bot) processPurchase(ctx context.Context, msg *tgbotapi.Message, address string) {
	notice := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(
		"🔍 *Token Detected!*\n*Address:* `%s`\n🚀 Initiating purchase...", address))
	notice.ParseMode = tgbotapi.ModeMarkdown
	notice.ReplyToMessageID = msg.MessageID
	status, ok := b.send(notice)
	if !ok {
		return
	}

	result := b.gw.Buy(ctx, address)
	if !result.OK() {
		b.edit(msg.Chat.ID, status.MessageID, fmt.Sprintf(
			"❌ *Purchase Failed!*\n*Token:* `%s`\n*Error:* %s",
			address, result.Failure.Message))
		return
	}

	receipt := result.Payload
	var sb strings.Builder
	sb.WriteString("✅ *Purchase Successful!*\n")
	fmt.Fprintf(&sb, "*Token:* `%s`\n", receipt.TokenMint)
	fmt.Fprintf(&sb, "*Transaction:* %s\n", txDisplay(receipt.Signature))
	fmt.Fprintf(&sb, "*Amount:* %s tokens\n", formatPrice(receipt.TokenAmount))
	fmt.Fprintf(&sb, "*Price:* %s", formatPrice(receipt.TokenPrice))
	if receipt.Slippage != 0 {
		fmt.Fprintf(&sb, "\n*Slippage:* %s%%", formatPrice(receipt.Slippage))
	}
	b.edit(msg.Chat.ID, status.MessageID, sb.String())
}

func (b *Bot) cmdStart(msg *tgbotapi.Message) {
	uid := msg.From.ID
	if !b.auth.IsAuthorized(uid) {
		b.sendUnauthorized(msg.Chat.ID, uid)
		return
	}

	var sb strings.Builder
	sb.WriteString("👋 *Welcome to Solana Token Auto-Buy Bot!*\n\n")
	sb.WriteString("Simply paste any Solana token address and I'll automatically initiate a purchase for you.\n\n")
	sb.WriteString("*Commands:*\n")
	sb.WriteString("/start - Show this message\n")
	sb.WriteString("/help - Get help\n")
	sb.WriteString("/status - Check bot status\n")
	sb.WriteString("/positions - View current positions\n")
	sb.WriteString("/sell - Sell a position\n")
	sb.WriteString("/wallet - View wallet balance\n")
	if b.auth.IsOwner(uid) {
		sb.WriteString("/admin - Admin panel\n")
	}
	sb.WriteString("\nJust paste a token address to get started! 🚀")

	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) cmdHelp(msg *tgbotapi.Message) {
	if !b.auth.IsAuthorized(msg.From.ID) {
		b.sendUnauthorized(msg.Chat.ID, msg.From.ID)
		return
	}

	help := fmt.Sprintf(
		"ℹ️ *How to use this bot:*\n\n"+
			"1. Copy any Solana token address\n"+
			"2. Paste it in this chat\n"+
			"3. The bot will automatically detect and purchase it\n\n"+
			"*Valid Address Format:*\n"+
			"• %d-%d characters long\n"+
			"• Base58 encoded (no 0, O, I, or l)\n"+
			"• Example: `EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v`\n\n"+
			"*Commands:*\n"+
			"• `/positions` - View your current positions\n"+
			"• `/sell TOKEN` - Sell a specific position\n\n"+
			"*Need help?* Contact the bot owner.",
		b.cfg.MinTokenLength, b.cfg.MaxTokenLength)

	b.reply(msg.Chat.ID, help)
}

func (b *Bot) cmdStatus(ctx context.Context, msg *tgbotapi.Message) {
	if !b.auth.IsAuthorized(msg.From.ID) {
		b.sendUnauthorized(msg.Chat.ID, msg.From.ID)
		return
	}

	result := b.gw.Health(ctx)

	var apiStatus string
	switch {
	case result.OK() && result.Payload.Healthy():
		apiStatus = fmt.Sprintf("🟢 Online (%.2fs)", result.Payload.Latency.Seconds())
	case result.OK():
		apiStatus = fmt.Sprintf("🟡 %s", result.Payload.Status)
	default:
		apiStatus = fmt.Sprintf("🔴 %s", result.Failure.Message)
	}

	stats := b.auth.GetStats()
	b.reply(msg.Chat.ID, fmt.Sprintf(
		"📊 *Bot Status*\n\n"+
			"Bot: 🟢 Online\n"+
			"API Server: %s\n"+
			"Endpoint: `%s`\n"+
			"Authorized Users: %d",
		apiStatus, b.cfg.APIBaseURL, stats.AuthorizedUsers))
}

func (b *Bot) cmdPositions(ctx context.Context, msg *tgbotapi.Message) {
	if !b.auth.IsAuthorized(msg.From.ID) {
		b.sendUnauthorized(msg.Chat.ID, msg.From.ID)
		return
	}

	loading, ok := b.reply(msg.Chat.ID, "📊 Fetching positions...")
	if !ok {
		return
	}
	b.renderPositionsPage(ctx, msg.Chat.ID, loading.MessageID, 0)
}

func (b *Bot) cmdSell(ctx context.Context, msg *tgbotapi.Message) {
	if !b.auth.IsAuthorized(msg.From.ID) {
		b.sendUnauthorized(msg.Chat.ID, msg.From.ID)
		return
	}

	tokenMint := strings.TrimSpace(msg.CommandArguments())
	if tokenMint == "" {
		b.reply(msg.Chat.ID,
			"*To sell a position, use:*\n"+
				"`/sell TOKEN_MINT`\n\n"+
				"Example:\n"+
				"`/sell 35cNWuWpRkTNAG2KiZDjhpi6QJr92Y3U8Ac6vShZpump`")
		return
	}

	if !b.validator.IsValid(tokenMint) {
		b.reply(msg.Chat.ID,
			"❌ Invalid token address format.\n\n"+
				"Please provide a valid Solana token mint address.")
		return
	}

	status, ok := b.reply(msg.Chat.ID, fmt.Sprintf(
		"🔄 *Selling Position*\nToken: `%s`\nProcessing...", tokenMint))
	if !ok {
		return
	}
	b.executeSell(ctx, msg.Chat.ID, status.MessageID, tokenMint)
}

func (b *Bot) executeSell(ctx context.Context, chatID int64, messageID int, tokenMint string) {
	result := b.gw.Sell(ctx, tokenMint)
	if !result.OK() {
		b.edit(chatID, messageID, fmt.Sprintf(
			"❌ *Sell Failed!*\n\n*Token:* `%s`\n*Error:* %s",
			tokenMint, result.Failure.Message))
		return
	}

	b.edit(chatID, messageID, fmt.Sprintf(
		"✅ *Position sold successfully*\n\n*Token:* `%s`\n*Transaction:* %s",
		tokenMint, txDisplay(result.Payload.Signature)))
}

func (b *Bot) cmdWallet(ctx context.Context, msg *tgbotapi.Message) {
	if !b.auth.IsAuthorized(msg.From.ID) {
		b.sendUnauthorized(msg.Chat.ID, msg.From.ID)
		return
	}

	result := b.gw.WalletBalance(ctx)
	if !result.OK() {
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ Failed to fetch wallet balance: %s", result.Failure.Message))
		return
	}

	balance := result.Payload
	text := fmt.Sprintf("💰 *Wallet Balance*\n\n*Balance:* %s %s",
		formatPrice(balance.UIAmount), balance.Symbol)
	if balance.Address != "" {
		text += fmt.Sprintf("\n*Wallet:* `%s`", balance.Address)
	}
	b.reply(msg.Chat.ID, text)
}

func (b *Bot) cmdAdmin(msg *tgbotapi.Message) {
	if !b.auth.IsOwner(msg.From.ID) {
		b.reply(msg.Chat.ID, "This command is only available to the bot owner.")
		return
	}

	stats := b.auth.GetStats()
	m := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(
		"🔧 *Admin Panel*\n\n"+
			"Authorized Users: %d\n"+
			"Pending Requests: %d\n\n"+
			"Select an option:",
		stats.AuthorizedUsers, stats.PendingRequests))
	m.ParseMode = tgbotapi.ModeMarkdown
	m.ReplyMarkup = adminKeyboard()
	b.send(m)
}

// sendUnauthorized tells an unknown user how to request access, or that
// their request is still pending.
func (b *Bot) sendUnauthorized(chatID, uid int64) {
	if b.auth.HasPendingRequest(uid) {
		msg := tgbotapi.NewMessage(chatID,
			"⏳ Your access request is pending approval. Please wait for the owner to approve.")
		b.send(msg)
		return
	}

	msg := tgbotapi.NewMessage(chatID,
		"🔒 *Access Denied*\n\nThis bot is private. You can request access from the owner.")
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Request Access", fmt.Sprintf("request_access_%d", uid)),
		),
	)
	b.send(msg)
}

func adminKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 List Users", "admin_list_users"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Statistics", "admin_stats"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", "admin_refresh"),
		),
	)
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return "unknown"
	}
	if u.UserName != "" {
		return u.UserName
	}
	return fmt.Sprintf("user_%d", u.ID)
}
