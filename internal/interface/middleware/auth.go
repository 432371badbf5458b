package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursewire/coursewire/internal/domain/entity"
	"github.com/coursewire/coursewire/internal/domain/repository"
	"github.com/coursewire/coursewire/pkg/helpers"
	"github.com/coursewire/coursewire/pkg/response"
)

// CtxUserKey holds the authenticated *entity.User in the Gin context.
const CtxUserKey = "authUser"

// Authenticated extracts the bearer token from the request cookie, verifies
// it and attaches the resolved user record. It fails closed: no cookie, a bad
// token, or an id that no longer resolves to a record all abort with 401.
func Authenticated(repo repository.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.TokenCookie)
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "not logged in", nil)
			c.Abort()
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid or expired token", nil)
			c.Abort()
			return
		}
		u, err := repo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "not logged in", nil)
			c.Abort()
			return
		}
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// AdminOnly requires the attached user to hold the admin role.
// Must run after Authenticated.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.IsAdmin() {
			role := "anonymous"
			if u != nil {
				role = u.Role
			}
			response.Error[any](c, http.StatusForbidden, fmt.Sprintf("%s is not allowed to access this resource", role), nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SubscribersOnly requires an active subscription; admins bypass the check.
// Must run after Authenticated.
func SubscribersOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || (!u.HasActiveSubscription() && !u.IsAdmin()) {
			response.Error[any](c, http.StatusForbidden, "only subscribers can access this resource", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user attached by Authenticated, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(CtxUserKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}
