package bot

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"readinglist/internal/tracker"
)

// messageSender is the part of the Telegram API the handlers talk to
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot represents the Telegram bot wrapper
type Bot struct {
	api          *tgbotapi.BotAPI
	sender       messageSender
	token        string
	tracker      *tracker.Tracker
	allowedUsers map[int64]bool
	states       map[int64]*ConversationState
	userLocks    map[int64]*sync.Mutex
	statesMu     sync.RWMutex
	logger       *zap.Logger
	now          func() time.Time
}

// ConversationState tracks the state of multi-step commands
type ConversationState struct {
	Command string
	Step    int
	Data    map[string]string
}

// Conversation steps for /add
const (
	stepTitle  = 1
	stepAuthor = 2
	stepGenre  = 3
	stepDone   = -1
)
