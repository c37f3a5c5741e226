package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleConversation processes multi-step conversations
func (b *Bot) handleConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	switch state.Command {
	case "add":
		b.handleAddConversation(ctx, message, state)
	}

	// Clean up completed conversations
	if state.Step == stepDone {
		b.clearState(message.From.ID)
	}
}

// handleAddConversation asks for title, author and genre in turn
func (b *Bot) handleAddConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	input := strings.TrimSpace(message.Text)

	switch state.Step {
	case stepTitle:
		if input == "" {
			b.reply(message.Chat.ID, "The title cannot be empty. Please enter the book title:")
			return
		}
		state.Data["title"] = input
		state.Step = stepAuthor
		b.reply(message.Chat.ID, "Who is the author?")

	case stepAuthor:
		if input == "" {
			b.reply(message.Chat.ID, "The author cannot be empty. Who is the author?")
			return
		}
		state.Data["author"] = input
		state.Step = stepGenre
		b.reply(message.Chat.ID, "What genre is it?")

	case stepGenre:
		if input == "" {
			b.reply(message.Chat.ID, "The genre cannot be empty. What genre is it?")
			return
		}
		state.Data["genre"] = input

		b.addBook(ctx, message.Chat.ID, state.Data["title"], state.Data["author"], state.Data["genre"])
		state.Step = stepDone // Mark conversation as complete
	}
}
