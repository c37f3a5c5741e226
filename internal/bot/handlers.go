package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			b.reply(message.Chat.ID, "An error occurred while processing your request. Please try again.")
		}
	}()

	userID := message.From.ID
	ctx := context.Background()

	// Webhook updates arrive concurrently; one user's messages run one at a time
	lock := b.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	// Check if user is in a conversation
	if state, ok := b.state(userID); ok {
		if state.Step == stepDone || message.IsCommand() {
			// Any command interrupts an ongoing conversation
			b.clearState(userID)
		} else {
			b.handleConversation(ctx, message, state)
			return
		}
	}

	if !message.IsCommand() {
		return
	}

	switch message.Command() {
	case "start", "help":
		b.handleStart(message)
	case "add":
		b.handleAddStart(ctx, message)
	case "current":
		b.handleCurrent(message)
	case "finish":
		b.handleFinish(ctx, message.Chat.ID)
	case "list":
		b.handleList(message)
	case "history":
		b.handleHistory(ctx, message)
	case "stats":
		b.handleStatsStart(message)
	default:
		b.reply(message.Chat.ID, "Unknown command. Use /start to see available commands.")
	}
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	ctx := context.Background()

	b.answerCallback(query.ID)

	if query.Message == nil {
		return
	}

	data := query.Data
	switch {
	case strings.HasPrefix(data, finishPrefix):
		b.handleFinishBook(ctx, query.Message.Chat.ID, strings.TrimPrefix(data, finishPrefix))
	case strings.HasPrefix(data, statsPeriodPrefix):
		b.handleStatsPeriodCallback(ctx, query)
	default:
		b.logger.Debug("Ignoring unknown callback", zap.String("callback_data", data))
	}
}
