package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"readinglist/internal/queue"
)

const (
	finishPrefix      = "finish:"
	statsPeriodPrefix = "stats_period:"

	historyLimit = 10
	statsLimit   = 5
)

// handleStart shows welcome message and available commands
func (b *Bot) handleStart(message *tgbotapi.Message) {
	text := `Welcome to your Reading List! 📚

Available commands:
/add - Add a book (or /add Title | Author | Genre)
/current - Show current, next and last finished book
/finish - Mark the current book as finished
/list - Show the whole reading list
/history - Show the last finished books
/stats - View reading statistics`

	b.reply(message.Chat.ID, text)
}

// handleAddStart adds a book in one shot or starts the /add conversation
func (b *Bot) handleAddStart(ctx context.Context, message *tgbotapi.Message) {
	if args := message.CommandArguments(); args != "" {
		title, author, genre, ok := parseAddArgs(args)
		if !ok {
			b.reply(message.Chat.ID, "Usage: /add Title | Author | Genre")
			return
		}
		b.addBook(ctx, message.Chat.ID, title, author, genre)
		return
	}

	b.setState(message.From.ID, &ConversationState{
		Command: "add",
		Step:    stepTitle,
		Data:    make(map[string]string),
	})

	b.reply(message.Chat.ID, "Please enter the book title:")
}

// addBook stores a new book and reports where it landed in the queue
func (b *Bot) addBook(ctx context.Context, chatID int64, title, author, genre string) bool {
	book, err := b.tracker.AddBook(ctx, title, genre, author)
	if err != nil {
		if errors.Is(err, queue.ErrInvalidArgument) {
			b.reply(chatID, "Title, author and genre are all required.")
			return false
		}
		b.logger.Error("Failed to add book", zap.Error(err), zap.Int64("chat_id", chatID))
		b.reply(chatID, fmt.Sprintf("Error adding book: %v", err))
		return false
	}

	snap := b.tracker.Snapshot()
	text := fmt.Sprintf("✅ Book added!\n\n📚 %s\n✍️ %s\n🏷 %s\n\nStatus: %s",
		book.Title, book.Author, book.Genre, bookStatus(snap, book))
	b.reply(chatID, text)
	return true
}

// handleCurrent shows the queue summary with a button to finish the current book
func (b *Bot) handleCurrent(message *tgbotapi.Message) {
	snap := b.tracker.Snapshot()

	msg := tgbotapi.NewMessage(message.Chat.ID, renderStatus(snap))
	if snap.Current != nil {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Finished it", finishPrefix+snap.Current.ID),
			),
		)
	}
	b.sendMessage(msg)
}

// handleFinish marks the current book as finished
func (b *Bot) handleFinish(ctx context.Context, chatID int64) {
	finished, snap, ok := b.tracker.FinishCurrent(ctx)
	if !ok {
		b.reply(chatID, "There is no current book, nothing to finish. Add one with /add")
		return
	}

	b.reply(chatID, renderFinished(finished, snap))
}

// handleFinishBook finishes the book a "Finished it" button was shown for.
// A stale button or a repeated tap leaves the queue alone.
func (b *Bot) handleFinishBook(ctx context.Context, chatID int64, bookID string) {
	finished, snap, ok := b.tracker.FinishBook(ctx, bookID)
	if !ok {
		b.reply(chatID, "That book is already finished.\n\n"+renderStatus(snap))
		return
	}

	b.reply(chatID, renderFinished(finished, snap))
}

// handleList shows every book with its status
func (b *Bot) handleList(message *tgbotapi.Message) {
	b.reply(message.Chat.ID, renderList(b.tracker.Snapshot()))
}

// handleHistory shows the last finished books
func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	books, err := b.tracker.History(ctx, historyLimit)
	if err != nil {
		b.logger.Error("Failed to load history", zap.Error(err), zap.Int64("chat_id", message.Chat.ID))
		b.reply(message.Chat.ID, fmt.Sprintf("Error: %v", err))
		return
	}

	b.reply(message.Chat.ID, renderHistory(books))
}

// handleStatsStart shows the time period selection for statistics
func (b *Bot) handleStatsStart(message *tgbotapi.Message) {
	msg := tgbotapi.NewMessage(message.Chat.ID, "📊 Select time period for statistics:")

	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏮ Last month", statsPeriodPrefix+"last1"),
			tgbotapi.NewInlineKeyboardButtonData("⏮ Last 3 months", statsPeriodPrefix+"last3"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏮ Last 12 months", statsPeriodPrefix+"last12"),
			tgbotapi.NewInlineKeyboardButtonData("📅 All time", statsPeriodPrefix+"all"),
		),
	)
	b.sendMessage(msg)
}
