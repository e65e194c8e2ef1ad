package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/solman/solbot/internal/gateway"
)

// renderPositionsPage fetches positions and rewrites messageID with the
// requested page. Positions are re-fetched on every page turn so the
// numbers stay current; nothing is cached.
func (b *Bot) renderPositionsPage(ctx context.Context, chatID int64, messageID, page int) {
	result := b.gw.Positions(ctx)
	if !result.OK() {
		b.edit(chatID, messageID, fmt.Sprintf("❌ Failed to fetch positions: %s", result.Failure.Message))
		return
	}

	positions := result.Payload.Positions
	if len(positions) == 0 {
		b.edit(chatID, messageID, "📭 No active positions found.")
		return
	}

	totalPages := (len(positions) + positionsPerPage - 1) / positionsPerPage
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	start := page * positionsPerPage
	end := start + positionsPerPage
	if end > len(positions) {
		end = len(positions)
	}

	var sb strings.Builder
	sb.WriteString("📊 *Current Positions*\n\n")
	for i, pos := range positions[start:end] {
		writePosition(&sb, start+i+1, pos)
	}

	var totalPnL float64
	for _, pos := range positions {
		totalPnL += pos.CurrentPnL
	}
	sign := ""
	if totalPnL > 0 {
		sign = "+"
	}
	fmt.Fprintf(&sb, "*Summary:*\nTotal Positions: %d\nTotal PnL: %s%s SOL",
		len(positions), sign, formatPrice(totalPnL))
	if totalPages > 1 {
		fmt.Fprintf(&sb, "\nPage %d/%d", page+1, totalPages)
	}

	e := tgbotapi.NewEditMessageText(chatID, messageID, sb.String())
	e.ParseMode = tgbotapi.ModeMarkdown
	e.DisableWebPagePreview = true
	if kb := positionsKeyboard(positions[start:end], page, totalPages); kb != nil {
		e.ReplyMarkup = kb
	}
	b.send(e)
}

func writePosition(sb *strings.Builder, index int, pos gateway.Position) {
	pnlEmoji := "⚪"
	pnlSign := ""
	switch {
	case pos.CurrentPnLPercent > 0:
		pnlEmoji = "🟢"
		pnlSign = "+"
	case pos.CurrentPnLPercent < 0:
		pnlEmoji = "🔴"
	}

	fmt.Fprintf(sb, "*%d. %s*\n", index, truncateAddress(pos.TokenMint, 6))
	fmt.Fprintf(sb, "├ Token: `%s`\n", pos.TokenMint)
	if pos.Signature != "" {
		fmt.Fprintf(sb, "├ Buy TX: [%s](%s)\n", truncateAddress(pos.Signature, 6), txLink(pos.Signature))
	}
	fmt.Fprintf(sb, "├ PnL: %s %s%.2f%% (%s%s SOL)\n",
		pnlEmoji, pnlSign, pos.CurrentPnLPercent, pnlSign, formatPrice(pos.CurrentPnL))
	fmt.Fprintf(sb, "├ Peak PnL: %.2f%%\n", pos.HighestPnLPercent)
	fmt.Fprintf(sb, "├ Duration: %s\n", formatDuration(pos.HoldDuration))
	fmt.Fprintf(sb, "└ [photon](%s)\n\n", photonLink(pos.TokenMint))
}

// positionsKeyboard builds sell buttons for the visible positions plus
// prev/next navigation when there is more than one page.
func positionsKeyboard(visible []gateway.Position, page, totalPages int) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, pos := range visible {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("💸 Sell %s", truncateAddress(pos.TokenMint, 4)),
				"sell_"+pos.TokenMint),
		))
	}

	if totalPages > 1 {
		var nav []tgbotapi.InlineKeyboardButton
		if page > 0 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️ Prev", fmt.Sprintf("positions_%d", page-1)))
		}
		if page < totalPages-1 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ➡️", fmt.Sprintf("positions_%d", page+1)))
		}
		rows = append(rows, nav)
	}

	if len(rows) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}
