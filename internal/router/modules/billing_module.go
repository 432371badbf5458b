package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/coursewire/coursewire/internal/domain/repository"
	handlers "github.com/coursewire/coursewire/internal/interface/http"
	"github.com/coursewire/coursewire/internal/interface/middleware"
	"github.com/coursewire/coursewire/pkg/helpers"
)

// BillingModule wires the subscription purchase route.
type BillingModule struct {
	Handler *handlers.BillingHandler
	Repo    repository.UserRepository
	JWT     *helpers.JWTManager
}

func NewBillingModule(h *handlers.BillingHandler, repo repository.UserRepository, jwt *helpers.JWTManager) *BillingModule {
	return &BillingModule{Handler: h, Repo: repo, JWT: jwt}
}

func (m *BillingModule) Register(rg *gin.RouterGroup) {
	rg.GET("/subscribe", middleware.Authenticated(m.Repo, m.JWT), m.Handler.Subscribe)
}
