package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bookhub/pkg/logger"
	"bookhub/pkg/models"
)

type Handler struct {
	Repo   *Repo
	Tokens TokenService
}

func NewHandler(repo *Repo, tokens TokenService) *Handler {
	return &Handler{Repo: repo, Tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/signup", h.signup)
	rg.POST("/login", h.login)
	rg.GET("/me", Middleware(h.Tokens, h.Repo), h.me)
}

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid JSON format"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if len(req.Name) < 2 || len(req.Name) > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name must be between 2 and 50 characters"})
		return
	}
	if !strings.Contains(req.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please enter a valid email"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Password must be at least 6 characters"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.WithError(err).Error("password hash failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during signup"})
		return
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Repo.CreateUser(c.Request.Context(), u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists with this email"})
			return
		}
		logger.Log.WithError(err).Error("create user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during signup"})
		return
	}

	token, _, err := h.Tokens.Sign(&u)
	if err != nil {
		logger.Log.WithError(err).Error("sign token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during signup"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "User created successfully",
		"access_token": token,
		"user": gin.H{
			"id":    u.ID,
			"name":  u.Name,
			"email": u.Email,
		},
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid JSON format"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please enter a valid email"})
		return
	}
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Password is required"})
		return
	}

	u, err := h.Repo.GetByEmail(c.Request.Context(), email)
	if err != nil {
		logger.Log.WithError(err).Error("login lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during login"})
		return
	}
	// same message for unknown email and wrong password
	if u == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}

	token, _, err := h.Tokens.Sign(u)
	if err != nil {
		logger.Log.WithError(err).Error("sign token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"access_token": token,
		"user": gin.H{
			"id":    u.ID,
			"name":  u.Name,
			"email": u.Email,
		},
	})
}

func (h *Handler) me(c *gin.Context) {
	u := CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
	})
}
