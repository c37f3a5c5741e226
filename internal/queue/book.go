package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidArgument is returned when a book is constructed with a blank field
var ErrInvalidArgument = errors.New("invalid argument")

// Book represents one entry of the reading list
type Book struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Genre  string `json:"genre"`
	Author string `json:"author"`

	IsRead     bool       `json:"is_read"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewBook creates an unread book. All three fields are required.
func NewBook(title, genre, author string) (Book, error) {
	title = strings.TrimSpace(title)
	genre = strings.TrimSpace(genre)
	author = strings.TrimSpace(author)

	switch {
	case title == "":
		return Book{}, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	case genre == "":
		return Book{}, fmt.Errorf("%w: genre is required", ErrInvalidArgument)
	case author == "":
		return Book{}, fmt.Errorf("%w: author is required", ErrInvalidArgument)
	}

	return Book{
		Title:  title,
		Genre:  genre,
		Author: author,
	}, nil
}

// clone returns a copy that shares no memory with b
func (b Book) clone() Book {
	if b.FinishedAt != nil {
		finishedAt := *b.FinishedAt
		b.FinishedAt = &finishedAt
	}
	return b
}
