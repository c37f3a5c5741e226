package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"readinglist/internal/metrics"
	"readinglist/internal/models"
	"readinglist/internal/queue"
	"readinglist/internal/storage"
)

// Tracker serializes access to the reading queue for the bot and HTTP handlers
// and writes every finished book to the history store.
type Tracker struct {
	mu      sync.Mutex
	queue   *queue.Queue
	history storage.Storage
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New creates a tracker around q
func New(q *queue.Queue, history storage.Storage, m *metrics.Metrics, logger *zap.Logger) *Tracker {
	return &Tracker{
		queue:   q,
		history: history,
		metrics: m,
		logger:  logger,
	}
}

// AddBook validates the fields and appends a new book to the reading list
func (t *Tracker) AddBook(ctx context.Context, title, genre, author string) (queue.Book, error) {
	book, err := queue.NewBook(title, genre, author)
	if err != nil {
		return queue.Book{}, err
	}

	t.mu.Lock()
	stored := t.queue.Add(book)
	unread := t.queue.UnreadCount()
	t.metrics.BookAdded()
	t.metrics.ObserveQueue(t.queue.ReadCount(), unread)
	t.mu.Unlock()

	t.logger.Info("Book added",
		zap.String("book_id", stored.ID),
		zap.String("title", stored.Title),
		zap.String("author", stored.Author),
		zap.String("genre", stored.Genre),
		zap.Int("unread", unread),
	)

	return stored, nil
}

// FinishCurrent marks the current book as read and advances the queue.
// It returns the finished book and the queue state right after the finish,
// or false when there is no current book.
//
// The history write is best-effort: a storage failure is logged and
// the queue still advances.
func (t *Tracker) FinishCurrent(ctx context.Context) (queue.Book, queue.Snapshot, bool) {
	return t.finish(ctx, "", false)
}

// FinishBook finishes the current book only if its ID is bookID.
// It returns false and leaves the queue untouched when another book,
// or none, is current.
func (t *Tracker) FinishBook(ctx context.Context, bookID string) (queue.Book, queue.Snapshot, bool) {
	return t.finish(ctx, bookID, true)
}

// finish advances the queue; with matchID set, bookID must be the current book
func (t *Tracker) finish(ctx context.Context, bookID string, matchID bool) (queue.Book, queue.Snapshot, bool) {
	t.mu.Lock()
	if matchID {
		if current, ok := t.queue.Current(); !ok || current.ID != bookID {
			snap := t.queue.Snapshot()
			t.mu.Unlock()
			t.logger.Debug("Finish requested for a book that is not current", zap.String("book_id", bookID))
			return queue.Book{}, snap, false
		}
	}
	finished, ok := t.queue.FinishCurrent()
	read, unread := t.queue.ReadCount(), t.queue.UnreadCount()
	if ok {
		t.metrics.BookFinished()
		t.metrics.ObserveQueue(read, unread)
	}
	snap := t.queue.Snapshot()
	t.mu.Unlock()

	if !ok {
		t.logger.Debug("Finish requested with no current book")
		return queue.Book{}, snap, false
	}

	t.logger.Info("Book finished",
		zap.String("book_id", finished.ID),
		zap.String("title", finished.Title),
		zap.Time("finished_at", *finished.FinishedAt),
		zap.Int("read", read),
		zap.Int("unread", unread),
	)

	record := models.FinishedBook{
		BookID:     finished.ID,
		Title:      finished.Title,
		Author:     finished.Author,
		Genre:      finished.Genre,
		FinishedAt: *finished.FinishedAt,
	}
	if err := t.history.RecordFinished(ctx, record); err != nil {
		t.metrics.HistoryWriteFailed()
		t.logger.Warn("Failed to record finished book",
			zap.Error(err),
			zap.String("book_id", finished.ID),
		)
	}

	return finished, snap, true
}

// Snapshot returns the current queue state
func (t *Tracker) Snapshot() queue.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.queue.Snapshot()
}

// History returns the last finished books, newest first
func (t *Tracker) History(ctx context.Context, limit int) ([]models.FinishedBook, error) {
	books, err := t.history.GetLastFinished(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return books, nil
}

// Stats builds a report of the top genres and authors finished within the period
func (t *Tracker) Stats(ctx context.Context, limit int, startDate, endDate time.Time) (models.Stats, error) {
	genres, err := t.history.GetTopGenres(ctx, limit, startDate, endDate)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to load genre stats: %w", err)
	}

	authors, err := t.history.GetTopAuthors(ctx, limit, startDate, endDate)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to load author stats: %w", err)
	}

	t.logger.Debug("Generated stats report",
		zap.Time("start_date", startDate),
		zap.Time("end_date", endDate),
		zap.Int("genre_count", len(genres)),
		zap.Int("author_count", len(authors)),
	)

	return models.Stats{
		StartDate:  startDate,
		EndDate:    endDate,
		TopGenres:  genres,
		TopAuthors: authors,
	}, nil
}
