package ch

import (
	"context"
	"testing"
	"time"

	"readinglist/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clickhouseTC "github.com/testcontainers/testcontainers-go/modules/clickhouse"
)

// runMigrations manually creates the history table
func runMigrations(ctx context.Context, db *ClickHouseDB) error {
	_ = db.conn.Exec(ctx, "DROP TABLE IF EXISTS finished_books")

	return db.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS finished_books (
			book_id String,
			title String,
			author String,
			genre String,
			finished_at DateTime64(3, 'UTC')
		) ENGINE = MergeTree()
		ORDER BY finished_at
	`)
}

// setupTestDB creates a test ClickHouse instance using testcontainers
func setupTestDB(t *testing.T) (*ClickHouseDB, func()) {
	if testing.Short() {
		t.Skip("skipping ClickHouse integration test in short mode")
	}

	ctx := context.Background()

	clickhouseContainer, err := clickhouseTC.Run(ctx,
		"clickhouse/clickhouse-server:24.3.3.102-alpine",
		clickhouseTC.WithUsername("default"),
		clickhouseTC.WithPassword(""),
		clickhouseTC.WithDatabase("default"),
	)
	require.NoError(t, err, "Failed to start ClickHouse container")

	host, err := clickhouseContainer.Host(ctx)
	require.NoError(t, err)

	port, err := clickhouseContainer.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	db, err := NewClickHouseDB(host, port.Int(), "default", "default", "", false)
	require.NoError(t, err, "Failed to connect to ClickHouse")

	err = runMigrations(ctx, db)
	require.NoError(t, err, "Failed to run migrations")

	cleanup := func() {
		db.Close()
		clickhouseContainer.Terminate(ctx)
	}

	return db, cleanup
}

func record(t *testing.T, db *ClickHouseDB, title, author, genre string, at time.Time) {
	t.Helper()
	err := db.RecordFinished(context.Background(), models.FinishedBook{
		BookID:     title + "-id",
		Title:      title,
		Author:     author,
		Genre:      genre,
		FinishedAt: at,
	})
	require.NoError(t, err)
}

// TestClickHouseDB_RecordFinished tests writing and reading back one history row
func TestClickHouseDB_RecordFinished(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	at := time.Date(2024, 3, 10, 21, 15, 0, 0, time.UTC)

	record(t, db, "Dune", "Frank Herbert", "Sci-Fi", at)

	books, err := db.GetLastFinished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune-id", books[0].BookID)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Frank Herbert", books[0].Author)
	assert.Equal(t, "Sci-Fi", books[0].Genre)
	assert.True(t, at.Equal(books[0].FinishedAt))
}

// TestClickHouseDB_GetLastFinished tests ordering and limit, including no limit
func TestClickHouseDB_GetLastFinished(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	books, err := db.GetLastFinished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, books)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"First", "Second", "Third", "Fourth"} {
		record(t, db, title, "Author", "Novel", base.AddDate(0, 0, i))
	}

	books, err = db.GetLastFinished(ctx, 3)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "Fourth", books[0].Title)
	assert.Equal(t, "Third", books[1].Title)
	assert.Equal(t, "Second", books[2].Title)

	for _, limit := range []int{0, -1} {
		books, err = db.GetLastFinished(ctx, limit)
		require.NoError(t, err)
		require.Len(t, books, 4, "limit %d", limit)
		assert.Equal(t, "Fourth", books[0].Title)
		assert.Equal(t, "First", books[3].Title)
	}
}

// TestClickHouseDB_GetTopGenres tests period filtering and ordering
func TestClickHouseDB_GetTopGenres(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()

	record(t, db, "Dune", "Frank Herbert", "Sci-Fi", now.AddDate(0, 0, -2))
	record(t, db, "Hyperion", "Dan Simmons", "Sci-Fi", now.AddDate(0, 0, -1))
	record(t, db, "Emma", "Jane Austen", "Classic", now.AddDate(0, 0, -1))
	record(t, db, "Odyssey", "Homer", "Epic", now.AddDate(-3, 0, 0))

	stats, err := db.GetTopGenres(ctx, 10, now.AddDate(0, -1, 0), now)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, models.GenreStat{Genre: "Sci-Fi", ReadCount: 2}, stats[0])
	assert.Equal(t, models.GenreStat{Genre: "Classic", ReadCount: 1}, stats[1])

	all, err := db.GetTopGenres(ctx, 0, now.AddDate(-10, 0, 0), now)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// TestClickHouseDB_GetTopAuthors tests tie-breaking by name
func TestClickHouseDB_GetTopAuthors(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()

	record(t, db, "Persuasion", "Jane Austen", "Classic", now.AddDate(0, 0, -1))
	record(t, db, "Emma", "Jane Austen", "Classic", now.AddDate(0, 0, -1))
	record(t, db, "Middlemarch", "George Eliot", "Classic", now.AddDate(0, 0, -1))
	record(t, db, "Dune", "Frank Herbert", "Sci-Fi", now.AddDate(0, 0, -1))

	stats, err := db.GetTopAuthors(ctx, 2, now.AddDate(0, -1, 0), now)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Jane Austen", stats[0].Author)
	assert.Equal(t, 2, stats[0].ReadCount)
	assert.Equal(t, "Frank Herbert", stats[1].Author)
}
