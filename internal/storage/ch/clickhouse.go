package ch

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"readinglist/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
)

type ClickHouseDB struct {
	conn clickhouse.Conn
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Initialize is a no-op - tables are managed via migrations
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	return nil
}

// RecordFinished appends a finished book to the history table
func (db *ClickHouseDB) RecordFinished(ctx context.Context, book models.FinishedBook) error {
	err := db.conn.Exec(ctx, `INSERT INTO finished_books (book_id, title, author, genre, finished_at) VALUES (?, ?, ?, ?, ?)`,
		book.BookID, book.Title, book.Author, book.Genre, book.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record finished book: %w", err)
	}
	return nil
}

// GetLastFinished returns the last N finished books; limit <= 0 returns all of them
func (db *ClickHouseDB) GetLastFinished(ctx context.Context, limit int) ([]models.FinishedBook, error) {
	query := `
		SELECT book_id, title, author, genre, finished_at
		FROM finished_books
		ORDER BY finished_at DESC`
	var args []any
	if limit > 0 {
		query += "\n\t\tLIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get last finished books: %w", err)
	}
	defer rows.Close()

	var books []models.FinishedBook
	for rows.Next() {
		var book models.FinishedBook
		if err := rows.Scan(&book.BookID, &book.Title, &book.Author, &book.Genre, &book.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan finished book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate finished books: %w", err)
	}
	return books, nil
}

// GetTopGenres returns top N genres by finished count within the period
func (db *ClickHouseDB) GetTopGenres(ctx context.Context, limit int, startDate, endDate time.Time) ([]models.GenreStat, error) {
	counts, err := db.topBy(ctx, "genre", limit, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get top genres: %w", err)
	}

	stats := make([]models.GenreStat, 0, len(counts))
	for _, c := range counts {
		stats = append(stats, models.GenreStat{Genre: c.name, ReadCount: c.count})
	}
	return stats, nil
}

// GetTopAuthors returns top N authors by finished count within the period
func (db *ClickHouseDB) GetTopAuthors(ctx context.Context, limit int, startDate, endDate time.Time) ([]models.AuthorStat, error) {
	counts, err := db.topBy(ctx, "author", limit, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get top authors: %w", err)
	}

	stats := make([]models.AuthorStat, 0, len(counts))
	for _, c := range counts {
		stats = append(stats, models.AuthorStat{Author: c.name, ReadCount: c.count})
	}
	return stats, nil
}

type namedCount struct {
	name  string
	count int
}

// topBy groups finished books by column. column is never user input.
func (db *ClickHouseDB) topBy(ctx context.Context, column string, limit int, startDate, endDate time.Time) ([]namedCount, error) {
	query := fmt.Sprintf(`
		SELECT %[1]s, count() AS reads
		FROM finished_books
		WHERE finished_at >= ? AND finished_at <= ?
		GROUP BY %[1]s
		ORDER BY reads DESC, %[1]s ASC`, column)

	args := []any{startDate.UTC(), endDate.UTC()}
	if limit > 0 {
		query += "\n\t\tLIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []namedCount
	for rows.Next() {
		var (
			name  string
			reads uint64
		)
		if err := rows.Scan(&name, &reads); err != nil {
			return nil, fmt.Errorf("failed to scan %s stat: %w", column, err)
		}
		counts = append(counts, namedCount{name: name, count: int(reads)})
	}
	return counts, rows.Err()
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
