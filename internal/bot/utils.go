package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// sendMessage sends a prepared message and logs delivery failures
func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if b.sender == nil {
		return
	}

	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Warn("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", msg.ChatID),
		)
	}
}

// reply sends plain text to a chat
func (b *Bot) reply(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// answerCallback removes the loading state from an inline button
func (b *Bot) answerCallback(queryID string) {
	if b.sender == nil {
		return
	}

	if _, err := b.sender.Request(tgbotapi.NewCallback(queryID, "")); err != nil {
		b.logger.Debug("Failed to answer callback query", zap.Error(err))
	}
}

// userLock returns the mutex serializing message handling for one user
func (b *Bot) userLock(userID int64) *sync.Mutex {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()

	lock, ok := b.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		b.userLocks[userID] = lock
	}
	return lock
}

func (b *Bot) state(userID int64) (*ConversationState, bool) {
	b.statesMu.RLock()
	defer b.statesMu.RUnlock()

	state, ok := b.states[userID]
	return state, ok
}

func (b *Bot) setState(userID int64, state *ConversationState) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()

	b.states[userID] = state
}

func (b *Bot) clearState(userID int64) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()

	delete(b.states, userID)
}
