package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/coursewire/coursewire/internal/domain/repository"
	handlers "github.com/coursewire/coursewire/internal/interface/http"
	"github.com/coursewire/coursewire/internal/interface/middleware"
	"github.com/coursewire/coursewire/pkg/helpers"
)

// CourseModule wires the catalog and lecture routes.
// Listing is public, course detail needs an active subscription, everything
// else needs admin.
type CourseModule struct {
	Handler *handlers.CourseHandler
	Repo    repository.UserRepository
	JWT     *helpers.JWTManager
}

func NewCourseModule(h *handlers.CourseHandler, repo repository.UserRepository, jwt *helpers.JWTManager) *CourseModule {
	return &CourseModule{Handler: h, Repo: repo, JWT: jwt}
}

func (m *CourseModule) Register(rg *gin.RouterGroup) {
	rg.GET("/courses", m.Handler.List)

	authed := middleware.Authenticated(m.Repo, m.JWT)

	rg.GET("/course/:id", authed, middleware.SubscribersOnly(), m.Handler.Lectures)

	admin := rg.Group("/")
	admin.Use(authed, middleware.AdminOnly())
	{
		admin.POST("/createcourse", m.Handler.Create)
		admin.POST("/course/:id", m.Handler.AddLecture)
		admin.DELETE("/course/:id", m.Handler.Delete)
		admin.DELETE("/lecture", m.Handler.DeleteLecture)
	}
}
