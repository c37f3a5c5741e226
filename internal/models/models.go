package models

import "time"

// FinishedBook is a history record written each time the current book is finished
type FinishedBook struct {
	BookID     string    `json:"book_id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	Genre      string    `json:"genre"`
	FinishedAt time.Time `json:"finished_at"`
}

// GenreStat represents how many finished books belong to a genre
type GenreStat struct {
	Genre     string `json:"genre"`
	ReadCount int    `json:"read_count"`
}

// AuthorStat represents how many finished books were written by an author
type AuthorStat struct {
	Author    string `json:"author"`
	ReadCount int    `json:"read_count"`
}

// Stats is a reading report for a time period
type Stats struct {
	StartDate  time.Time    `json:"start_date"`
	EndDate    time.Time    `json:"end_date"`
	TopGenres  []GenreStat  `json:"top_genres"`
	TopAuthors []AuthorStat `json:"top_authors"`
}
