package queue

import (
	"time"

	"github.com/google/uuid"
)

// none marks an absent current/next/last-finished reference
const none = -1

// Queue owns the reading list and tracks which book is being read now,
// which one comes next and which one was finished last.
//
// The current, next and last-finished references are indices into books,
// so the queue stays the only owner of every Book it holds. Queue is not
// safe for concurrent use.
type Queue struct {
	books []Book

	readCount   int
	unreadCount int

	current      int
	next         int
	lastFinished int

	now func() time.Time
}

// Option configures a Queue
type Option func(*Queue)

// WithClock replaces the clock used to stamp finished books
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		q.now = now
	}
}

// New creates an empty queue
func New(opts ...Option) *Queue {
	q := &Queue{
		current:      none,
		next:         none,
		lastFinished: none,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Add appends a book to the end of the list and returns the stored copy.
//
// The first book added becomes current, the second becomes next. Later books
// wait in the list until FinishCurrent picks them up.
func (q *Queue) Add(book Book) Book {
	book.ID = uuid.NewString()
	book.IsRead = false
	book.FinishedAt = nil

	q.books = append(q.books, book)
	q.unreadCount++

	idx := len(q.books) - 1
	if q.current == none {
		q.current = idx
	} else if q.next == none {
		q.next = idx
	}

	return book
}

// FinishCurrent marks the current book as read and advances the queue.
// It returns the finished book, or false if there was no current book,
// in which case nothing changes.
func (q *Queue) FinishCurrent() (Book, bool) {
	if q.current == none {
		return Book{}, false
	}

	finishedAt := q.now()
	finished := &q.books[q.current]
	finished.IsRead = true
	finished.FinishedAt = &finishedAt

	q.readCount++
	q.unreadCount--

	q.lastFinished = q.current
	q.current = q.next
	q.next = q.firstUnreadExcept(q.current)

	return finished.clone(), true
}

// firstUnreadExcept scans the whole list from the start on every call, O(n).
func (q *Queue) firstUnreadExcept(skip int) int {
	for i := range q.books {
		if i != skip && !q.books[i].IsRead {
			return i
		}
	}
	return none
}

// Books returns a copy of all books in insertion order
func (q *Queue) Books() []Book {
	books := make([]Book, len(q.books))
	for i, book := range q.books {
		books[i] = book.clone()
	}
	return books
}

// Len returns the number of books in the list
func (q *Queue) Len() int {
	return len(q.books)
}

// Current returns the book being read now
func (q *Queue) Current() (Book, bool) {
	return q.at(q.current)
}

// Next returns the book that becomes current after the present one is finished
func (q *Queue) Next() (Book, bool) {
	return q.at(q.next)
}

// LastFinished returns the most recently finished book
func (q *Queue) LastFinished() (Book, bool) {
	return q.at(q.lastFinished)
}

// ReadCount returns the number of finished books
func (q *Queue) ReadCount() int {
	return q.readCount
}

// UnreadCount returns the number of books not finished yet
func (q *Queue) UnreadCount() int {
	return q.unreadCount
}

func (q *Queue) at(idx int) (Book, bool) {
	if idx == none {
		return Book{}, false
	}
	return q.books[idx].clone(), true
}
