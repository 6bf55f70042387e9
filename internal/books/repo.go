package books

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bookhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type ListQuery struct {
	Search    string // keyword search in title/author/description
	Genre     string // substring match on genre
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// sortColumns is the whitelist for ORDER BY; anything else falls back to
// creation time.
var sortColumns = map[string]string{
	"created_at": "b.created_at",
	"createdAt":  "b.created_at",
	"title":      "b.title",
	"author":     "b.author",
	"year":       "b.year",
}

const summaryColumns = `
	b.id, b.title, b.author, b.description, b.genre, b.year,
	b.added_by, u.name, b.created_at, b.updated_at
`

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.BookSummary, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.BookSummary, 0, q.Limit)
	for rows.Next() {
		b, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.BookSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+summaryColumns+`
		FROM books b
		JOIN users u ON u.id = b.added_by
		WHERE b.id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows err: %w", err)
		}
		return nil, nil
	}
	return scanSummary(rows)
}

func (r *Repo) ListByOwner(ctx context.Context, userID string) ([]models.BookSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+summaryColumns+`
		FROM books b
		JOIN users u ON u.id = b.added_by
		WHERE b.added_by = ?
		ORDER BY b.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list by owner: %w", err)
	}
	defer rows.Close()

	out := make([]models.BookSummary, 0)
	for rows.Next() {
		b, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, b models.Book) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO books (id, title, author, description, genre, year, added_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Title, b.Author, b.Description, b.Genre, b.Year, b.AddedBy, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, b models.Book) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE books
		SET title = ?, author = ?, description = ?, genre = ?, year = ?, updated_at = ?
		WHERE id = ?
	`, b.Title, b.Author, b.Description, b.Genre, b.Year, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return nil
}

// Delete removes the book; its reviews go with it via the ON DELETE CASCADE
// foreign key, so the cascade cannot strand reviews mid-flight.
func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

func scanSummary(rows *sql.Rows) (*models.BookSummary, error) {
	var b models.BookSummary
	if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Genre, &b.Year,
		&b.AddedBy, &b.AddedByName, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan book: %w", err)
	}
	return &b, nil
}

func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `
		SELECT ` + summaryColumns + `
		FROM books b
		JOIN users u ON u.id = b.added_by
	`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM books b`
	}

	var where []string
	var args []any

	if kw := strings.TrimSpace(q.Search); kw != "" {
		where = append(where, "(LOWER(b.title) LIKE ? OR LOWER(b.author) LIKE ? OR LOWER(b.description) LIKE ?)")
		pat := "%" + strings.ToLower(kw) + "%"
		args = append(args, pat, pat, pat)
	}

	if g := strings.TrimSpace(q.Genre); g != "" {
		where = append(where, "LOWER(b.genre) LIKE ?")
		args = append(args, "%"+strings.ToLower(g)+"%")
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		col, ok := sortColumns[q.SortBy]
		if !ok {
			col = "b.created_at"
		}
		dir := "DESC"
		if strings.EqualFold(q.SortOrder, "asc") {
			dir = "ASC"
		}
		sqlStr += fmt.Sprintf(" ORDER BY %s %s", col, dir)
		sqlStr += " LIMIT ? OFFSET ?"

		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 5
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}
