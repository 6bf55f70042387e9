package reviews

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookhub/internal/auth"
	"bookhub/pkg/logger"
	"bookhub/pkg/models"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/book/:bookId", h.listForBook)
	rg.POST("", authMW, h.create)
	rg.PUT("/:id", authMW, h.update)
	rg.DELETE("/:id", authMW, h.delete)
	rg.GET("/profile/reviews", authMW, h.listMine)
}

type createReq struct {
	BookID     string `json:"bookId"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"reviewText"`
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

	bookID := strings.TrimSpace(req.BookID)
	if bookID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Valid book ID is required"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Rating must be between 1 and 5"})
		return
	}
	text := strings.TrimSpace(req.ReviewText)
	if len(text) < 1 || len(text) > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Review text is required and must be less than 500 characters"})
		return
	}

	exists, err := h.Repo.BookExists(c.Request.Context(), bookID)
	if err != nil {
		logger.Log.WithError(err).Error("book existence check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "Book not found"})
		return
	}

	now := time.Now().UTC()
	review := models.Review{
		ID:         uuid.NewString(),
		BookID:     bookID,
		UserID:     user.ID,
		Rating:     req.Rating,
		ReviewText: text,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.Repo.Create(c.Request.Context(), review); err != nil {
		if errors.Is(err, ErrDuplicateReview) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "You have already reviewed this book"})
			return
		}
		logger.Log.WithError(err).Error("create review failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review created successfully",
		"review":  review,
	})
}

type updateReq struct {
	Rating     *int    `json:"rating"`
	ReviewText *string `json:"reviewText"`
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

	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Rating must be between 1 and 5"})
		return
	}
	var text string
	if req.ReviewText != nil {
		text = strings.TrimSpace(*req.ReviewText)
		if len(text) < 1 || len(text) > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Review text must be less than 500 characters"})
			return
		}
	}

	review, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		logger.Log.WithError(err).Error("get review failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if review == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Review not found"})
		return
	}
	if review.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to update this review"})
		return
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.ReviewText != nil {
		review.ReviewText = text
	}
	review.UpdatedAt = time.Now().UTC()

	if err := h.Repo.Update(c.Request.Context(), *review); err != nil {
		logger.Log.WithError(err).Error("update review failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review updated successfully",
		"review":  review,
	})
}

func (h *Handler) delete(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
		return
	}

	review, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		logger.Log.WithError(err).Error("get review failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if review == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Review not found"})
		return
	}
	if review.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this review"})
		return
	}

	if err := h.Repo.Delete(c.Request.Context(), review.ID); err != nil {
		logger.Log.WithError(err).Error("delete review failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

func (h *Handler) listForBook(c *gin.Context) {
	bookID := strings.TrimSpace(c.Param("bookId"))
	out, err := h.Repo.ListForBook(c.Request.Context(), bookID)
	if err != nil {
		logger.Log.WithError(err).Error("list book reviews failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) listMine(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
		return
	}

	out, err := h.Repo.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		logger.Log.WithError(err).Error("list user reviews failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, out)
}
