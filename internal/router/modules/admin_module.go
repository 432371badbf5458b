package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/coursewire/coursewire/internal/domain/repository"
	handlers "github.com/coursewire/coursewire/internal/interface/http"
	"github.com/coursewire/coursewire/internal/interface/middleware"
	"github.com/coursewire/coursewire/pkg/helpers"
)

// AdminModule wires user administration and the stats dashboard.
type AdminModule struct {
	Handler *handlers.AdminHandler
	Repo    repository.UserRepository
	JWT     *helpers.JWTManager
}

func NewAdminModule(h *handlers.AdminHandler, repo repository.UserRepository, jwt *helpers.JWTManager) *AdminModule {
	return &AdminModule{Handler: h, Repo: repo, JWT: jwt}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Authenticated(m.Repo, m.JWT), middleware.AdminOnly())
	{
		admin.GET("/users", m.Handler.ListUsers)
		admin.GET("/users/search", m.Handler.SearchUsers)
		admin.PUT("/user/:id", m.Handler.UpdateRole)
		admin.DELETE("/user/:id", m.Handler.DeleteUser)
		admin.GET("/stats", m.Handler.Dashboard)
	}
}
