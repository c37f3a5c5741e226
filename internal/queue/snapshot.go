package queue

// Snapshot is a point-in-time view of the queue for presentation layers
type Snapshot struct {
	Books        []Book `json:"books"`
	Current      *Book  `json:"current"`
	Next         *Book  `json:"next"`
	LastFinished *Book  `json:"last_finished"`
	ReadCount    int    `json:"read_count"`
	UnreadCount  int    `json:"unread_count"`
}

// Snapshot copies the queue state. Absent references are nil.
func (q *Queue) Snapshot() Snapshot {
	return Snapshot{
		Books:        q.Books(),
		Current:      q.ref(q.current),
		Next:         q.ref(q.next),
		LastFinished: q.ref(q.lastFinished),
		ReadCount:    q.readCount,
		UnreadCount:  q.unreadCount,
	}
}

func (q *Queue) ref(idx int) *Book {
	book, ok := q.at(idx)
	if !ok {
		return nil
	}
	return &book
}

// Total returns the number of books in the snapshot
func (s Snapshot) Total() int {
	return len(s.Books)
}

// IsCurrent reports whether book is the current one
func (s Snapshot) IsCurrent(book Book) bool {
	return s.Current != nil && s.Current.ID == book.ID
}

// IsNext reports whether book is the next one
func (s Snapshot) IsNext(book Book) bool {
	return s.Next != nil && s.Next.ID == book.ID
}
