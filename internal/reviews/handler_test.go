package reviews_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/internal/server"
	"bookhub/internal/testutil"
	"bookhub/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.NewDB(t)
	return server.New(db, testutil.AuthConfig(), false)
}

type messageResponse struct {
	Message string `json:"message"`
}

func addBook(t *testing.T, router http.Handler, token, title string) string {
	t.Helper()

	w := testutil.Request(t, router, http.MethodPost, "/api/books", token, map[string]any{
		"title":       title,
		"author":      "Some Author",
		"description": "A description.",
		"genre":       "Fiction",
		"year":        1990,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Book models.BookSummary `json:"book"`
	}
	testutil.Decode(t, w, &resp)
	return resp.Book.ID
}

func addReview(t *testing.T, router http.Handler, token, bookID string, rating int, text string) string {
	t.Helper()

	w := testutil.Request(t, router, http.MethodPost, "/api/reviews", token, map[string]any{
		"bookId":     bookID,
		"rating":     rating,
		"reviewText": text,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Review models.Review `json:"review"`
	}
	testutil.Decode(t, w, &resp)
	require.NotEmpty(t, resp.Review.ID)
	return resp.Review.ID
}

func TestCreateReview(t *testing.T) {
	router := newRouter(t)
	token := testutil.Signup(t, router, "Alice", "alice@example.com", "secret1")
	bookID := addBook(t, router, token, "1984")

	w := testutil.Request(t, router, http.MethodPost, "/api/reviews", token, map[string]any{
		"bookId":     bookID,
		"rating":     5,
		"reviewText": "An absolute masterpiece!",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Message string        `json:"message"`
		Review  models.Review `json:"review"`
	}
	testutil.Decode(t, w, &resp)
	assert.Equal(t, "Review created successfully", resp.Message)
	assert.Equal(t, bookID, resp.Review.BookID)
	assert.Equal(t, 5, resp.Review.Rating)
	assert.Equal(t, "An absolute masterpiece!", resp.Review.ReviewText)
}

func TestCreateReviewValidation(t *testing.T) {
	router := newRouter(t)
	token := testutil.Signup(t, router, "Alice", "alice@example.com", "secret1")
	bookID := addBook(t, router, token, "1984")

	tests := []struct {
		name    string
		body    map[string]any
		status  int
		message string
	}{
		{
			"rating too low",
			map[string]any{"bookId": bookID, "rating": 0, "reviewText": "x"},
			http.StatusBadRequest, "Rating must be between 1 and 5",
		},
		{
			"rating too high",
			map[string]any{"bookId": bookID, "rating": 6, "reviewText": "x"},
			http.StatusBadRequest, "Rating must be between 1 and 5",
		},
		{
			"empty text",
			map[string]any{"bookId": bookID, "rating": 3, "reviewText": "   "},
			http.StatusBadRequest, "Review text is required and must be less than 500 characters",
		},
		{
			"unknown book",
			map[string]any{"bookId": "no-such-book", "rating": 3, "reviewText": "x"},
			http.StatusNotFound, "Book not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.Request(t, router, http.MethodPost, "/api/reviews", token, tt.body)
			require.Equal(t, tt.status, w.Code)

			var resp messageResponse
			testutil.Decode(t, w, &resp)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestDuplicateReviewRejected(t *testing.T) {
	router := newRouter(t)
	token := testutil.Signup(t, router, "Alice", "alice@example.com", "secret1")
	bookID := addBook(t, router, token, "1984")

	addReview(t, router, token, bookID, 5, "First impression.")

	w := testutil.Request(t, router, http.MethodPost, "/api/reviews", token, map[string]any{
		"bookId":     bookID,
		"rating":     3,
		"reviewText": "Second thoughts.",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp messageResponse
	testutil.Decode(t, w, &resp)
	assert.Equal(t, "You have already reviewed this book", resp.Message)
}

func TestAverageRatingOnBookListing(t *testing.T) {
	router := newRouter(t)
	alice := testutil.Signup(t, router, "Alice", "alice@example.com", "secret1")
	bob := testutil.Signup(t, router, "Bob", "bob@example.com", "secret2")
	bookID := addBook(t, router, alice, "1984")

	addReview(t, router, alice, bookID, 5, "Loved it.")
	addReview(t, router, bob, bookID, 4, "Pretty good.")

	w := testutil.Request(t, router, http.MethodGet, "/api/books/"+bookID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail models.BookDetail
	testutil.Decode(t, w, &detail)
	assert.InDelta(t, 4.5, detail.AverageRating, 1e-9)
	assert.Equal(t, 2, detail.ReviewCount)
	require.Len(t, detail.Reviews, 2)
	// newest first
	assert.Equal(t, "Bob", detail.Reviews[0].UserName)
}

func TestUpdateReviewOwnership(t *testing.T) {
	router := newRouter(t)
	alice := testutil.Signup(t, router, "Alice", "alice@example.com", "secret1")
	bob := testutil.Signup(t, router, "Bob", "bob@example.com", "secret2")
	bookID := addBook(t, router, alice, "1984")
	reviewID := addReview(t, router, alice, bookID, 2, "Rushed first read.")

	w := testutil.Request(t, router, http.MethodPut, "/api/reviews/no-such-id", bob, map[string]any{"rating": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.Request(t, router, http.MethodPut, "/api/reviews/"+reviewID, bob, map[string]any{"rating": 5})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.Request(t, router, http.MethodPut, "/api/reviews/"+reviewID, alice, map[string]any{"rating": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Message string        `json:"message"`
		Review  models.Review `json:"review"`
	}
	testutil.Decode(t, w, &resp)
	assert.Equal(t, "Review updated successfully", resp.Message)
	assert.Equal(t, 5, resp.Review.Rating)
	// text untouched by the partial update
	assert.Equal(t, "Rushed first read.", resp.Review.ReviewText)
}

func TestDeleteReview(t *testing.T) {
	router := newRouter(t)
	alice := testutil.Signup(t, router, "Alice", "alice@example.com", "secret1")
	bob := testutil.Signup(t, router, "Bob", "bob@example.com", "secret2")
	bookID := addBook(t, router, alice, "1984")
	reviewID := addReview(t, router, alice, bookID, 4, "Good.")

	w := testutil.Request(t, router, http.MethodDelete, "/api/reviews/"+reviewID, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.Request(t, router, http.MethodDelete, "/api/reviews/"+reviewID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.Request(t, router, http.MethodGet, "/api/reviews/book/"+bookID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reviews []models.BookReview
	testutil.Decode(t, w, &reviews)
	assert.Empty(t, reviews)
}

func TestListForBookIsPublic(t *testing.T) {
	router := newRouter(t)
	token := testutil.Signup(t, router, "Alice", "alice@example.com", "secret1")
	bookID := addBook(t, router, token, "1984")
	addReview(t, router, token, bookID, 5, "Loved it.")

	w := testutil.Request(t, router, http.MethodGet, "/api/reviews/book/"+bookID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reviews []models.BookReview
	testutil.Decode(t, w, &reviews)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Alice", reviews[0].UserName)
	assert.Equal(t, "Loved it.", reviews[0].ReviewText)
}

func TestProfileReviews(t *testing.T) {
	router := newRouter(t)
	alice := testutil.Signup(t, router, "Alice", "alice@example.com", "secret1")
	bob := testutil.Signup(t, router, "Bob", "bob@example.com", "secret2")
	bookID := addBook(t, router, alice, "1984")

	addReview(t, router, alice, bookID, 5, "Mine.")
	addReview(t, router, bob, bookID, 3, "Bob's.")

	w := testutil.Request(t, router, http.MethodGet, "/api/reviews/profile/reviews", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reviews []models.UserReview
	testutil.Decode(t, w, &reviews)
	require.Len(t, reviews, 1)
	assert.Equal(t, "1984", reviews[0].BookTitle)
	assert.Equal(t, "Some Author", reviews[0].BookAuthor)
	assert.Equal(t, "Mine.", reviews[0].ReviewText)
}

func TestProfileReviewsRequiresAuth(t *testing.T) {
	router := newRouter(t)

	w := testutil.Request(t, router, http.MethodGet, "/api/reviews/profile/reviews", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
