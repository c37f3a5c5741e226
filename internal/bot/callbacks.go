package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleStatsPeriodCallback processes time period selection for statistics
func (b *Bot) handleStatsPeriodCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	periodKey := strings.TrimPrefix(query.Data, statsPeriodPrefix)
	chatID := query.Message.Chat.ID

	startDate, endDate, label, ok := statsPeriod(periodKey, b.now())
	if !ok {
		return
	}

	stats, err := b.tracker.Stats(ctx, statsLimit, startDate, endDate)
	if err != nil {
		b.logger.Error("Failed to build stats report",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.Time("start_date", startDate),
			zap.Time("end_date", endDate),
		)
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	b.logger.Info("Generated stats report",
		zap.Int64("chat_id", chatID),
		zap.String("period", label),
		zap.Int("genre_count", len(stats.TopGenres)),
	)

	b.reply(chatID, renderStats(stats, label))
}
