package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bookhub/internal/auth"
	"bookhub/internal/books"
	"bookhub/internal/ratelimit"
	"bookhub/internal/reviews"
	"bookhub/pkg/logger"
	"bookhub/pkg/utils"
)

// New builds the full /api route tree. limitAuth toggles the per-IP rate
// limit on the auth endpoints; tests turn it off.
func New(db *sql.DB, authCfg utils.AuthConfig, limitAuth bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), corsHeaders())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "Method not allowed"})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is running", "status": "healthy"})
	})

	tokens := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authMW := auth.Middleware(tokens, authRepo)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	if limitAuth {
		authGroup.Use(ratelimit.Middleware(5, 20))
	}
	auth.NewHandler(authRepo, tokens).RegisterRoutes(authGroup)

	reviewRepo := reviews.NewRepo(db)
	reviews.NewHandler(reviewRepo).RegisterRoutes(api.Group("/reviews"), authMW)

	bookRepo := books.NewRepo(db)
	books.NewHandler(bookRepo, reviewRepo).RegisterRoutes(api.Group("/books"), authMW)

	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("request")
	}
}

func corsHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
