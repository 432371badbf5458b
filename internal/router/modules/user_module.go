package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/coursewire/coursewire/internal/domain/repository"
	handlers "github.com/coursewire/coursewire/internal/interface/http"
	"github.com/coursewire/coursewire/internal/interface/middleware"
	"github.com/coursewire/coursewire/pkg/helpers"
)

// UserModule wires the account, auth, password-reset and playlist routes.
type UserModule struct {
	Handler *handlers.UserHandler
	Repo    repository.UserRepository
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, repo repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Repo: repo, JWT: jwt, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	// Public with per-IP rate limits
	registerLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath())
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIP())
	forgotLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath())
	resetLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath())

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.GET("/logout", m.Handler.Logout)
	rg.POST("/forgotpassword", forgotLimiter, m.Handler.ForgotPassword)
	rg.PUT("/resetpassword/:token", resetLimiter, m.Handler.ResetPassword)

	// Authenticated
	auth := rg.Group("/")
	auth.Use(middleware.Authenticated(m.Repo, m.JWT))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUser()))
	{
		auth.GET("/me", m.Handler.Me)
		auth.DELETE("/me", m.Handler.DeleteMe)
		auth.PUT("/changepassword", m.Handler.ChangePassword)
		auth.PUT("/updateprofile", m.Handler.UpdateProfile)
		auth.PUT("/updateprofilepicture", m.Handler.UpdateAvatar)
		auth.GET("/playlist", m.Handler.Playlist)
		auth.POST("/addtoplaylist", m.Handler.AddToPlaylist)
		auth.DELETE("/removefromplaylist", m.Handler.RemoveFromPlaylist)
	}
}
