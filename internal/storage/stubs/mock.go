package stubs

import (
	"context"
	"sort"
	"sync"
	"time"

	"readinglist/internal/models"
)

// MockDB is an in-memory implementation of the Storage interface.
// It is the default history store and is also used in tests.
type MockDB struct {
	mu       sync.RWMutex
	finished []models.FinishedBook
}

// NewMockDB creates a new in-memory history store
func NewMockDB() *MockDB {
	return &MockDB{
		finished: make([]models.FinishedBook, 0),
	}
}

// Initialize does nothing for the in-memory store
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// RecordFinished appends a finished book to the history
func (m *MockDB) RecordFinished(ctx context.Context, book models.FinishedBook) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finished = append(m.finished, book)
	return nil
}

// GetLastFinished returns the last N finished books, newest first
func (m *MockDB) GetLastFinished(ctx context.Context, limit int) ([]models.FinishedBook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sorted := make([]models.FinishedBook, len(m.finished))
	copy(sorted, m.finished)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FinishedAt.After(sorted[j].FinishedAt)
	})

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return sorted, nil
}

// GetTopGenres returns top N genres by finished count within the period
func (m *MockDB) GetTopGenres(ctx context.Context, limit int, startDate, endDate time.Time) ([]models.GenreStat, error) {
	counts := m.countWithin(startDate, endDate, func(b models.FinishedBook) string { return b.Genre })

	stats := make([]models.GenreStat, 0, len(counts))
	for genre, count := range counts {
		stats = append(stats, models.GenreStat{Genre: genre, ReadCount: count})
	}

	// Sort by count descending, then by name
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].ReadCount != stats[j].ReadCount {
			return stats[i].ReadCount > stats[j].ReadCount
		}
		return stats[i].Genre < stats[j].Genre
	})

	if limit > 0 && limit < len(stats) {
		stats = stats[:limit]
	}
	return stats, nil
}

// GetTopAuthors returns top N authors by finished count within the period
func (m *MockDB) GetTopAuthors(ctx context.Context, limit int, startDate, endDate time.Time) ([]models.AuthorStat, error) {
	counts := m.countWithin(startDate, endDate, func(b models.FinishedBook) string { return b.Author })

	stats := make([]models.AuthorStat, 0, len(counts))
	for author, count := range counts {
		stats = append(stats, models.AuthorStat{Author: author, ReadCount: count})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].ReadCount != stats[j].ReadCount {
			return stats[i].ReadCount > stats[j].ReadCount
		}
		return stats[i].Author < stats[j].Author
	})

	if limit > 0 && limit < len(stats) {
		stats = stats[:limit]
	}
	return stats, nil
}

func (m *MockDB) countWithin(startDate, endDate time.Time, key func(models.FinishedBook) string) map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, book := range m.finished {
		// Filter by date range (inclusive)
		if book.FinishedAt.Before(startDate) || book.FinishedAt.After(endDate) {
			continue
		}
		counts[key(book)]++
	}
	return counts
}

// Close does nothing for the in-memory store
func (m *MockDB) Close() error {
	return nil
}
