package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"readinglist/internal/metrics"
	"readinglist/internal/models"
	"readinglist/internal/queue"
	"readinglist/internal/storage/stubs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// failingHistory wraps the in-memory store and fails every write
type failingHistory struct {
	*stubs.MockDB
}

func (f failingHistory) RecordFinished(ctx context.Context, book models.FinishedBook) error {
	return errors.New("history unavailable")
}

var fixedNow = time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC)

func newTracker(t *testing.T) (*Tracker, *stubs.MockDB, *prometheus.Registry) {
	t.Helper()
	db := stubs.NewMockDB()
	reg := prometheus.NewRegistry()
	q := queue.New(queue.WithClock(func() time.Time { return fixedNow }))
	return New(q, db, metrics.New(reg), zap.NewNop()), db, reg
}

// assertMetrics compares the named metrics in reg against the exposition text
func assertMetrics(t *testing.T, reg *prometheus.Registry, expected string, names ...string) {
	t.Helper()
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), names...))
}

func queueGauges(read, unread int) string {
	return fmt.Sprintf(`
# HELP readinglist_books_read Number of books marked as read.
# TYPE readinglist_books_read gauge
readinglist_books_read %d
# HELP readinglist_books_unread Number of books not read yet.
# TYPE readinglist_books_unread gauge
readinglist_books_unread %d
`, read, unread)
}

func TestTracker_AddBook(t *testing.T) {
	tr, _, reg := newTracker(t)
	ctx := context.Background()

	book, err := tr.AddBook(ctx, "Dune", "Sci-Fi", "Frank Herbert")
	require.NoError(t, err)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "Dune", book.Title)

	snap := tr.Snapshot()
	require.NotNil(t, snap.Current)
	assert.Equal(t, book.ID, snap.Current.ID)
	assert.Equal(t, 1, snap.UnreadCount)
	assertMetrics(t, reg, queueGauges(0, 1), "readinglist_books_read", "readinglist_books_unread")
}

func TestTracker_AddBook_Invalid(t *testing.T) {
	tr, _, _ := newTracker(t)

	_, err := tr.AddBook(context.Background(), "Dune", "", "Frank Herbert")
	require.Error(t, err)
	assert.ErrorIs(t, err, queue.ErrInvalidArgument)
	assert.Equal(t, 0, tr.Snapshot().Total())
}

func TestTracker_FinishCurrent_RecordsHistory(t *testing.T) {
	tr, db, reg := newTracker(t)
	ctx := context.Background()

	first, err := tr.AddBook(ctx, "Dune", "Sci-Fi", "Frank Herbert")
	require.NoError(t, err)
	second, err := tr.AddBook(ctx, "Emma", "Classic", "Jane Austen")
	require.NoError(t, err)

	finished, snapAfter, ok := tr.FinishCurrent(ctx)
	require.True(t, ok)
	assert.Equal(t, first.ID, finished.ID)
	require.NotNil(t, snapAfter.Current)
	assert.Equal(t, second.ID, snapAfter.Current.ID)
	assert.Equal(t, 1, snapAfter.ReadCount)

	history, err := db.GetLastFinished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.FinishedBook{
		BookID:     first.ID,
		Title:      "Dune",
		Author:     "Frank Herbert",
		Genre:      "Sci-Fi",
		FinishedAt: fixedNow,
	}, history[0])

	snap := tr.Snapshot()
	require.NotNil(t, snap.Current)
	assert.Equal(t, second.ID, snap.Current.ID)
	assertMetrics(t, reg, queueGauges(1, 1), "readinglist_books_read", "readinglist_books_unread")
}

func TestTracker_FinishCurrent_NoCurrent(t *testing.T) {
	tr, db, _ := newTracker(t)
	ctx := context.Background()

	_, snap, ok := tr.FinishCurrent(ctx)
	assert.False(t, ok)
	assert.Nil(t, snap.Current)

	history, err := db.GetLastFinished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestTracker_FinishCurrent_HistoryFailureStillAdvances(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	tr := New(queue.New(), failingHistory{stubs.NewMockDB()}, m, zap.NewNop())
	ctx := context.Background()

	_, err := tr.AddBook(ctx, "Dune", "Sci-Fi", "Frank Herbert")
	require.NoError(t, err)

	finished, _, ok := tr.FinishCurrent(ctx)
	require.True(t, ok)
	assert.True(t, finished.IsRead)
	assert.Equal(t, 1, tr.Snapshot().ReadCount)

	assertMetrics(t, reg, `
# HELP readinglist_books_finished_total Total books finished.
# TYPE readinglist_books_finished_total counter
readinglist_books_finished_total 1
# HELP readinglist_history_write_failures_total Total finished books that could not be written to the history store.
# TYPE readinglist_history_write_failures_total counter
readinglist_history_write_failures_total 1
`, "readinglist_books_finished_total", "readinglist_history_write_failures_total")
}

func TestTracker_FinishBook_OnlyFinishesMatchingCurrent(t *testing.T) {
	tr, db, _ := newTracker(t)
	ctx := context.Background()

	a, err := tr.AddBook(ctx, "A", "Novel", "Author")
	require.NoError(t, err)
	b, err := tr.AddBook(ctx, "B", "Novel", "Author")
	require.NoError(t, err)
	_, err = tr.AddBook(ctx, "C", "Novel", "Author")
	require.NoError(t, err)

	finished, snap, ok := tr.FinishBook(ctx, a.ID)
	require.True(t, ok)
	assert.Equal(t, a.ID, finished.ID)
	require.NotNil(t, snap.Current)
	assert.Equal(t, b.ID, snap.Current.ID)

	// A second request for A must not finish B
	_, snap, ok = tr.FinishBook(ctx, a.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, snap.ReadCount)
	require.NotNil(t, snap.Current)
	assert.Equal(t, b.ID, snap.Current.ID)

	_, _, ok = tr.FinishBook(ctx, "unknown")
	assert.False(t, ok)
	_, _, ok = tr.FinishBook(ctx, "")
	assert.False(t, ok)

	history, err := db.GetLastFinished(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestTracker_Stats(t *testing.T) {
	tr, _, _ := newTracker(t)
	ctx := context.Background()

	for _, b := range [][3]string{
		{"Dune", "Sci-Fi", "Frank Herbert"},
		{"Children of Dune", "Sci-Fi", "Frank Herbert"},
		{"Emma", "Classic", "Jane Austen"},
	} {
		_, err := tr.AddBook(ctx, b[0], b[1], b[2])
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, _, ok := tr.FinishCurrent(ctx)
		require.True(t, ok)
	}

	stats, err := tr.Stats(ctx, 5, fixedNow.AddDate(0, -1, 0), fixedNow)
	require.NoError(t, err)
	require.Len(t, stats.TopGenres, 2)
	assert.Equal(t, models.GenreStat{Genre: "Sci-Fi", ReadCount: 2}, stats.TopGenres[0])
	require.Len(t, stats.TopAuthors, 2)
	assert.Equal(t, models.AuthorStat{Author: "Frank Herbert", ReadCount: 2}, stats.TopAuthors[0])

	history, err := tr.History(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestTracker_ConcurrentAccess(t *testing.T) {
	tr, _, _ := newTracker(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = tr.AddBook(ctx, "Book", "Genre", "Author")
		}()
		go func() {
			defer wg.Done()
			tr.FinishCurrent(ctx)
		}()
	}
	wg.Wait()

	snap := tr.Snapshot()
	assert.Equal(t, 20, snap.Total())
	assert.Equal(t, snap.Total(), snap.ReadCount+snap.UnreadCount)
}
