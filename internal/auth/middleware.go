package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookhub/pkg/models"
)

const ctxUserKey = "auth_user"

// Middleware validates the bearer token and resolves it to a live user row.
// A syntactically valid token whose user has since been deleted is rejected,
// so handlers never see a stale identity.
func Middleware(tokens TokenService, repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "No token, authorization denied"})
			c.Abort()
			return
		}

		raw := strings.TrimSpace(h[len("Bearer "):])
		claims, err := tokens.Parse(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
			c.Abort()
			return
		}

		user, err := repo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
			c.Abort()
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by Middleware, or nil outside a
// protected route.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
