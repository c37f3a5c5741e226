package bot

import (
	"fmt"
	"strings"
	"time"

	"readinglist/internal/models"
	"readinglist/internal/queue"
)

const dateLayout = "2006-01-02"

// bookStatus describes where a book stands in the queue.
//
// Status rules:
// 1. A read book shows the date it was finished
// 2. The current book is being read now
// 3. The next book is up next
// 4. Everything else is unread
func bookStatus(snap queue.Snapshot, book queue.Book) string {
	switch {
	case book.IsRead && book.FinishedAt != nil:
		return "Read on " + book.FinishedAt.Format(dateLayout)
	case book.IsRead:
		return "Read"
	case snap.IsCurrent(book):
		return "Reading now"
	case snap.IsNext(book):
		return "Up next"
	default:
		return "Unread"
	}
}

func describeBook(book queue.Book) string {
	return fmt.Sprintf("%s by %s (%s)", book.Title, book.Author, book.Genre)
}

// renderStatus formats the current/next/last-finished summary
func renderStatus(snap queue.Snapshot) string {
	var text strings.Builder

	if snap.Current != nil {
		text.WriteString(fmt.Sprintf("📖 Reading now: %s\n", describeBook(*snap.Current)))
	} else {
		text.WriteString("📖 Reading now: nothing. Add a book with /add\n")
	}

	if snap.Next != nil {
		text.WriteString(fmt.Sprintf("⏭ Up next: %s\n", describeBook(*snap.Next)))
	} else {
		text.WriteString("⏭ Up next: nothing queued\n")
	}

	if snap.LastFinished != nil {
		last := *snap.LastFinished
		text.WriteString(fmt.Sprintf("✅ Last finished: %s", describeBook(last)))
		if last.FinishedAt != nil {
			text.WriteString(" on " + last.FinishedAt.Format(dateLayout))
		}
		text.WriteString("\n")
	}

	text.WriteString("\n")
	text.WriteString(renderCounter(snap))
	return text.String()
}

// renderFinished announces a finished book followed by the new queue state
func renderFinished(finished queue.Book, snap queue.Snapshot) string {
	return fmt.Sprintf("🎉 Finished %s by %s!\n\n%s", finished.Title, finished.Author, renderStatus(snap))
}

// renderCounter formats the "X of N" footer
func renderCounter(snap queue.Snapshot) string {
	return fmt.Sprintf("Books read: %d of %d", snap.ReadCount, snap.Total())
}

// renderList formats every book with its status in insertion order
func renderList(snap queue.Snapshot) string {
	if snap.Total() == 0 {
		return "Your reading list is empty. Add a book with /add"
	}

	var text strings.Builder
	text.WriteString("📚 Reading list:\n\n")
	for i, book := range snap.Books {
		text.WriteString(fmt.Sprintf("%d. %s - %s\n   %s\n",
			i+1, book.Title, book.Author, bookStatus(snap, book)))
	}
	text.WriteString("\n")
	text.WriteString(renderCounter(snap))
	return text.String()
}

// renderHistory formats finished books, newest first
func renderHistory(books []models.FinishedBook) string {
	if len(books) == 0 {
		return "No finished books recorded yet."
	}

	var text strings.Builder
	text.WriteString("Last finished books:\n\n")
	for i, book := range books {
		text.WriteString(fmt.Sprintf("%d. %s - %s by %s (%s)\n",
			i+1,
			book.FinishedAt.Format(dateLayout),
			book.Title,
			book.Author,
			book.Genre))
	}
	return text.String()
}

// renderStats formats a statistics report
func renderStats(stats models.Stats, periodLabel string) string {
	if len(stats.TopGenres) == 0 && len(stats.TopAuthors) == 0 {
		return "No finished books found for the selected period."
	}

	var text strings.Builder
	text.WriteString("📊 Reading Statistics\n\n")
	text.WriteString(fmt.Sprintf("📅 Period: %s\n", periodLabel))
	text.WriteString(fmt.Sprintf("   %s - %s\n\n", stats.StartDate.Format(dateLayout), stats.EndDate.Format(dateLayout)))

	text.WriteString("🏷 Top genres:\n")
	for i, stat := range stats.TopGenres {
		text.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, stat.Genre, pluralBooks(stat.ReadCount)))
	}

	text.WriteString("\n✍️ Top authors:\n")
	for i, stat := range stats.TopAuthors {
		text.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, stat.Author, pluralBooks(stat.ReadCount)))
	}
	return text.String()
}

func pluralBooks(n int) string {
	if n == 1 {
		return "1 book"
	}
	return fmt.Sprintf("%d books", n)
}

// statsPeriod resolves a stats_period callback key into a date range
func statsPeriod(key string, now time.Time) (startDate, endDate time.Time, label string, ok bool) {
	switch key {
	case "last1":
		return now.AddDate(0, -1, 0), now, "Last month", true
	case "last3":
		return now.AddDate(0, -3, 0), now, "Last 3 months", true
	case "last12":
		return now.AddDate(0, -12, 0), now, "Last 12 months", true
	case "all":
		return time.Unix(0, 0).UTC(), now, "All time", true
	default:
		return time.Time{}, time.Time{}, "", false
	}
}

// parseAddArgs splits the one-shot form "/add Title | Author | Genre"
func parseAddArgs(args string) (title, author, genre string, ok bool) {
	parts := strings.Split(args, "|")
	if len(parts) != 3 {
		return "", "", "", false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return "", "", "", false
		}
	}
	return parts[0], parts[1], parts[2], true
}
