package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coursewire/coursewire/internal/application"
	"github.com/coursewire/coursewire/pkg/response"
)

// AdminHandler serves the admin user-management and dashboard endpoints.
type AdminHandler struct {
	Users  *application.UserService
	Stats  *application.StatsService
	Logger *logrus.Logger
}

func NewAdminHandler(users *application.UserService, stats *application.StatsService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Users: users, Stats: stats, Logger: logger}
}

// ListUsers GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.Users.ListUsers(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users")
}

// SearchUsers GET /api/admin/users/search?q=<query>&size=<n>
func (h *AdminHandler) SearchUsers(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "query is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Users.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results")
}

// UpdateRole PUT /api/admin/user/:id — toggles between the two roles.
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	role, err := h.Users.ToggleRole(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"role": role}, "role updated")
}

// DeleteUser DELETE /api/admin/user/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.Users.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "user deleted successfully")
}

// Dashboard GET /api/admin/stats
func (h *AdminHandler) Dashboard(c *gin.Context) {
	d, err := h.Stats.Dashboard(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, d, "stats")
}
