package database

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON;`)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, Migrate(db))
}

func TestEmailUniqueViolation(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	insert := `INSERT INTO users (id, name, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(insert, "u1", "Alice", "alice@example.com", "hash", now, now)
	require.NoError(t, err)

	// case-insensitive: NOCASE collation on the email column
	_, err = db.Exec(insert, "u2", "Other", "ALICE@example.com", "hash", now, now)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestReviewUniquePerBookAndUser(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	_, err := db.Exec(`INSERT INTO users (id, name, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"u1", "Alice", "alice@example.com", "hash", now, now)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO books (id, title, author, description, genre, year, added_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"b1", "1984", "George Orwell", "Dystopia.", "Fiction", 1949, "u1", now, now)
	require.NoError(t, err)

	insert := `INSERT INTO reviews (id, book_id, user_id, rating, review_text, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = db.Exec(insert, "r1", "b1", "u1", 5, "Great.", now, now)
	require.NoError(t, err)

	_, err = db.Exec(insert, "r2", "b1", "u1", 3, "Again.", now, now)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestDeleteBookCascadesToReviews(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	_, err := db.Exec(`INSERT INTO users (id, name, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"u1", "Alice", "alice@example.com", "hash", now, now)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO books (id, title, author, description, genre, year, added_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"b1", "1984", "George Orwell", "Dystopia.", "Fiction", 1949, "u1", now, now)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO reviews (id, book_id, user_id, rating, review_text, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"r1", "b1", "u1", 5, "Great.", now, now)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM books WHERE id = ?`, "b1")
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM reviews`).Scan(&count))
	assert.Zero(t, count)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("something else")))
}

func TestMissingBookForeignKeyRejected(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	_, err := db.Exec(`INSERT INTO users (id, name, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"u1", "Alice", "alice@example.com", "hash", now, now)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO reviews (id, book_id, user_id, rating, review_text, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"r1", "no-such-book", "u1", 5, "Great.", now, now)
	require.Error(t, err)
	assert.False(t, IsUniqueViolation(err))
}
