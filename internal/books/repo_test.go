package books

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildListSQLDefaults(t *testing.T) {
	sqlStr, args := buildListSQL(ListQuery{Limit: 5}, false)

	assert.Contains(t, sqlStr, "ORDER BY b.created_at DESC")
	assert.NotContains(t, sqlStr, "WHERE")
	// limit and offset placeholders only
	assert.Equal(t, []any{5, 0}, args)
}

func TestBuildListSQLSearchAndGenre(t *testing.T) {
	sqlStr, args := buildListSQL(ListQuery{Search: "Orwell", Genre: "Fiction", Limit: 5}, false)

	assert.Contains(t, sqlStr, "LOWER(b.title) LIKE ?")
	assert.Contains(t, sqlStr, "LOWER(b.author) LIKE ?")
	assert.Contains(t, sqlStr, "LOWER(b.description) LIKE ?")
	assert.Contains(t, sqlStr, "LOWER(b.genre) LIKE ?")
	assert.Equal(t, []any{"%orwell%", "%orwell%", "%orwell%", "%fiction%", 5, 0}, args)
}

func TestBuildListSQLSortWhitelist(t *testing.T) {
	sqlStr, _ := buildListSQL(ListQuery{SortBy: "title", SortOrder: "asc", Limit: 5}, false)
	assert.Contains(t, sqlStr, "ORDER BY b.title ASC")

	// camelCase alias accepted for client compatibility
	sqlStr, _ = buildListSQL(ListQuery{SortBy: "createdAt", Limit: 5}, false)
	assert.Contains(t, sqlStr, "ORDER BY b.created_at DESC")

	// anything not whitelisted falls back to creation time
	sqlStr, _ = buildListSQL(ListQuery{SortBy: "password_hash; DROP TABLE users", Limit: 5}, false)
	assert.Contains(t, sqlStr, "ORDER BY b.created_at DESC")
}

func TestBuildListSQLCountOnly(t *testing.T) {
	sqlStr, args := buildListSQL(ListQuery{Search: "x", Limit: 5, Offset: 10}, true)

	assert.Contains(t, sqlStr, "SELECT COUNT(*) FROM books")
	assert.NotContains(t, sqlStr, "ORDER BY")
	assert.NotContains(t, sqlStr, "LIMIT")
	assert.Len(t, args, 3)
}
