package books

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookhub/internal/auth"
	"bookhub/internal/reviews"
	"bookhub/pkg/logger"
	"bookhub/pkg/models"
)

type Handler struct {
	Repo    *Repo
	Reviews *reviews.Repo
}

func NewHandler(repo *Repo, reviewRepo *reviews.Repo) *Handler {
	return &Handler{Repo: repo, Reviews: reviewRepo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("", h.list)
	rg.GET("/:id", h.getByID)
	rg.POST("", authMW, h.create)
	rg.PUT("/:id", authMW, h.update)
	rg.DELETE("/:id", authMW, h.delete)
	rg.GET("/profile/books", authMW, h.listMine)
}

func (h *Handler) list(c *gin.Context) {
	page := parseInt(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	limit := parseInt(c.Query("limit"), 5)
	if limit < 1 || limit > 100 {
		limit = 5
	}

	q := ListQuery{
		Search:    c.Query("search"),
		Genre:     c.Query("genre"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		logger.Log.WithError(err).Error("count books failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		logger.Log.WithError(err).Error("list books failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if err := h.decorate(c, items); err != nil {
		logger.Log.WithError(err).Error("rating aggregate failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	c.JSON(http.StatusOK, gin.H{
		"books":        items,
		"total_pages":  totalPages,
		"current_page": page,
		"total_books":  total,
		"has_next":     page < totalPages,
		"has_prev":     page > 1,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	book, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		logger.Log.WithError(err).Error("get book failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if book == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Book not found"})
		return
	}

	bookReviews, err := h.Reviews.ListForBook(c.Request.Context(), book.ID)
	if err != nil {
		logger.Log.WithError(err).Error("list book reviews failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	ratings := make([]int, 0, len(bookReviews))
	for _, review := range bookReviews {
		ratings = append(ratings, review.Rating)
	}
	book.AverageRating, book.ReviewCount = reviews.Summarize(ratings)

	c.JSON(http.StatusOK, models.BookDetail{
		BookSummary: *book,
		Reviews:     bookReviews,
	})
}

type createReq struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	Year        int    `json:"year"`
}

func (h *Handler) create(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid JSON format"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.Description = strings.TrimSpace(req.Description)
	req.Genre = strings.TrimSpace(req.Genre)

	if msg := validateFields(req.Title, req.Author, req.Description, req.Genre, req.Year); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}

	now := time.Now().UTC()
	book := models.Book{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Genre:       req.Genre,
		Year:        req.Year,
		AddedBy:     user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Repo.Create(c.Request.Context(), book); err != nil {
		logger.Log.WithError(err).Error("create book failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Book created successfully",
		"book": models.BookSummary{
			Book:        book,
			AddedByName: user.Name,
		},
	})
}

type updateReq struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	Genre       *string `json:"genre"`
	Year        *int    `json:"year"`
}

func (h *Handler) update(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid JSON format"})
		return
	}

	book, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		logger.Log.WithError(err).Error("get book failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if book == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Book not found"})
		return
	}
	if book.AddedBy != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to update this book"})
		return
	}

	// apply only supplied fields, then re-validate the whole record
	updated := book.Book
	if req.Title != nil {
		updated.Title = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		updated.Author = strings.TrimSpace(*req.Author)
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.Genre != nil {
		updated.Genre = strings.TrimSpace(*req.Genre)
	}
	if req.Year != nil {
		updated.Year = *req.Year
	}

	if msg := validateFields(updated.Title, updated.Author, updated.Description, updated.Genre, updated.Year); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}

	updated.UpdatedAt = time.Now().UTC()
	if err := h.Repo.Update(c.Request.Context(), updated); err != nil {
		logger.Log.WithError(err).Error("update book failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	book.Book = updated
	ratings, err := h.Reviews.RatingsForBook(c.Request.Context(), book.ID)
	if err != nil {
		logger.Log.WithError(err).Error("rating aggregate failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	book.AverageRating, book.ReviewCount = reviews.Summarize(ratings)

	c.JSON(http.StatusOK, gin.H{
		"message": "Book updated successfully",
		"book":    book,
	})
}

func (h *Handler) delete(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
		return
	}

	book, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		logger.Log.WithError(err).Error("get book failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if book == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Book not found"})
		return
	}
	if book.AddedBy != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this book"})
		return
	}

	if err := h.Repo.Delete(c.Request.Context(), book.ID); err != nil {
		logger.Log.WithError(err).Error("delete book failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}

func (h *Handler) listMine(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
		return
	}

	items, err := h.Repo.ListByOwner(c.Request.Context(), user.ID)
	if err != nil {
		logger.Log.WithError(err).Error("list own books failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if err := h.decorate(c, items); err != nil {
		logger.Log.WithError(err).Error("rating aggregate failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// decorate fills in average_rating and review_count for each book, one
// ratings fetch per book.
func (h *Handler) decorate(c *gin.Context, items []models.BookSummary) error {
	for i := range items {
		ratings, err := h.Reviews.RatingsForBook(c.Request.Context(), items[i].ID)
		if err != nil {
			return err
		}
		items[i].AverageRating, items[i].ReviewCount = reviews.Summarize(ratings)
	}
	return nil
}

func validateFields(title, author, description, genre string, year int) string {
	switch {
	case len(title) < 1 || len(title) > 100:
		return "Title is required and must be less than 100 characters"
	case len(author) < 1 || len(author) > 50:
		return "Author is required and must be less than 50 characters"
	case len(description) < 1 || len(description) > 1000:
		return "Description is required and must be less than 1000 characters"
	case len(genre) < 1 || len(genre) > 30:
		return "Genre is required and must be less than 30 characters"
	case year < 1000 || year > time.Now().Year():
		return "Year must be a valid year"
	}
	return ""
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
