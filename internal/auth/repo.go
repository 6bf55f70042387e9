package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookhub/pkg/database"
	"bookhub/pkg/models"
)

var ErrDuplicateEmail = errors.New("email already registered")

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) CreateUser(ctx context.Context, u models.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE LOWER(email) = ?
	`, email)
	return scanUser(row)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = ?
	`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var created, updated time.Time
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = created
	u.UpdatedAt = updated
	return &u, nil
}
