package reviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookhub/pkg/database"
	"bookhub/pkg/models"
)

var ErrDuplicateReview = errors.New("review already exists for this book and user")

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Create inserts the review. The unique (book_id, user_id) index is the
// real duplicate guard; a handler-level existence check alone would race.
func (r *Repo) Create(ctx context.Context, review models.Review) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO reviews (id, book_id, user_id, rating, review_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, review.ID, review.BookID, review.UserID, review.Rating, review.ReviewText,
		review.CreatedAt, review.UpdatedAt)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, book_id, user_id, rating, review_text, created_at, updated_at
		FROM reviews
		WHERE id = ?
	`, id)

	var review models.Review
	if err := row.Scan(&review.ID, &review.BookID, &review.UserID, &review.Rating,
		&review.ReviewText, &review.CreatedAt, &review.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	return &review, nil
}

func (r *Repo) Update(ctx context.Context, review models.Review) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE reviews
		SET rating = ?, review_text = ?, updated_at = ?
		WHERE id = ?
	`, review.Rating, review.ReviewText, review.UpdatedAt, review.ID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

// BookExists answers the 404-before-validation check on review creation.
func (r *Repo) BookExists(ctx context.Context, bookID string) (bool, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT 1 FROM books WHERE id = ?`, bookID)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("book exists: %w", err)
	}
	return true, nil
}

// RatingsForBook re-fetches the full rating set for a book; the aggregate
// is recomputed from it on every read rather than cached.
func (r *Repo) RatingsForBook(ctx context.Context, bookID string) ([]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT rating FROM reviews WHERE book_id = ?`, bookID)
	if err != nil {
		return nil, fmt.Errorf("ratings query: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) ListForBook(ctx context.Context, bookID string) ([]models.BookReview, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.id, r.user_id, u.name, r.rating, r.review_text, r.created_at, r.updated_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_id = ?
		ORDER BY r.created_at DESC
	`, bookID)
	if err != nil {
		return nil, fmt.Errorf("list book reviews: %w", err)
	}
	defer rows.Close()

	out := make([]models.BookReview, 0)
	for rows.Next() {
		var review models.BookReview
		if err := rows.Scan(&review.ID, &review.UserID, &review.UserName, &review.Rating,
			&review.ReviewText, &review.CreatedAt, &review.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan book review: %w", err)
		}
		out = append(out, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) ListForUser(ctx context.Context, userID string) ([]models.UserReview, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.id, r.book_id, b.title, b.author, r.rating, r.review_text, r.created_at, r.updated_at
		FROM reviews r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}
	defer rows.Close()

	out := make([]models.UserReview, 0)
	for rows.Next() {
		var review models.UserReview
		if err := rows.Scan(&review.ID, &review.BookID, &review.BookTitle, &review.BookAuthor,
			&review.Rating, &review.ReviewText, &review.CreatedAt, &review.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user review: %w", err)
		}
		out = append(out, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
