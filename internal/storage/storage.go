package storage

import (
	"context"
	"time"

	"readinglist/internal/models"
)

// Storage defines the interface for the reading history log.
// The queue is never rebuilt from it; it only backs history and statistics.
type Storage interface {
	// History operations
	RecordFinished(ctx context.Context, book models.FinishedBook) error
	GetLastFinished(ctx context.Context, limit int) ([]models.FinishedBook, error)

	// Statistics operations

	// GetTopGenres returns genres ordered by number of books finished within the period.
	// Ties are broken by genre name. A limit <= 0 returns every genre.
	GetTopGenres(ctx context.Context, limit int, startDate, endDate time.Time) ([]models.GenreStat, error)

	// GetTopAuthors returns authors ordered by number of books finished within the period.
	// Ties are broken by author name. A limit <= 0 returns every author.
	GetTopAuthors(ctx context.Context, limit int, startDate, endDate time.Time) ([]models.AuthorStat, error)

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
