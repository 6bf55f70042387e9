package models

import "time"

type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Genre       string    `json:"genre"`
	Year        int       `json:"year"`
	AddedBy     string    `json:"added_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookSummary is a Book decorated with its creator's display name and the
// rating aggregate recomputed at read time.
type BookSummary struct {
	Book
	AddedByName   string  `json:"added_by_name"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

type BookDetail struct {
	BookSummary
	Reviews []BookReview `json:"reviews"`
}
