package router

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/coursewire/coursewire/config"
	"github.com/coursewire/coursewire/internal/application"
	pginfra "github.com/coursewire/coursewire/internal/infrastructure/postgres"
	handlers "github.com/coursewire/coursewire/internal/interface/http"
	"github.com/coursewire/coursewire/internal/router/modules"
	"github.com/coursewire/coursewire/pkg/helpers"
	"github.com/coursewire/coursewire/pkg/media"
	"github.com/coursewire/coursewire/pkg/payments"
)

// Deps carries everything the modules need. main builds the external clients
// once and hands them in here; nothing below reaches for globals.
type Deps struct {
	Config *config.Config
	Logger *logrus.Logger

	Pool  *pgxpool.Pool
	Redis *redis.Client
	ES    *elasticsearch.Client

	JWT       *helpers.JWTManager
	Media     media.Host
	Payments  payments.Processor
	MailQueue application.EmailPublisher
}

// Services groups the application layer so the stats collector and seed
// command can share the exact instances the HTTP surface uses.
type Services struct {
	Users   *application.UserService
	Courses *application.CourseService
	Billing *application.BillingService
	Stats   *application.StatsService
}

// InitModules builds the repositories, services and handlers and registers
// every feature module on the registry. Called once at startup.
func InitModules(r *Registry, d Deps) *Services {
	userRepo := pginfra.NewUserRepository(d.Pool)
	courseRepo := pginfra.NewCourseRepository(d.Pool)
	statsRepo := pginfra.NewStatsRepository(d.Pool)

	userSvc := &application.UserService{
		Repo:          userRepo,
		Courses:       courseRepo,
		Media:         d.Media,
		Mail:          d.MailQueue,
		Logger:        d.Logger,
		ES:            d.ES,
		ESUsersIndex:  d.Config.ESUsersIndex,
		AppName:       d.Config.AppName,
		FrontendURL:   d.Config.FrontendURL,
		ResetURL:      d.Config.ResetPasswordURL,
		ResetTokenTTL: d.Config.ResetTokenTTL,
	}
	courseSvc := &application.CourseService{
		Repo:   courseRepo,
		Media:  d.Media,
		Redis:  d.Redis,
		Logger: d.Logger,
	}
	billingSvc := &application.BillingService{
		Users:     userRepo,
		Processor: d.Payments,
		PriceID:   d.Config.StripePriceID,
		Logger:    d.Logger,
	}
	statsSvc := &application.StatsService{
		Users:   userRepo,
		Courses: courseRepo,
		Stats:   statsRepo,
		Redis:   d.Redis,
		Logger:  d.Logger,
	}

	userHandler := handlers.NewUserHandler(userSvc, d.JWT, d.Logger, d.Config.CookieDomain, d.Config.CookieSecure)
	courseHandler := handlers.NewCourseHandler(courseSvc, d.Logger)
	billingHandler := handlers.NewBillingHandler(billingSvc, d.Logger)
	adminHandler := handlers.NewAdminHandler(userSvc, statsSvc, d.Logger)

	r.Add(modules.NewUserModule(userHandler, userRepo, d.JWT, d.Redis))
	r.Add(modules.NewCourseModule(courseHandler, userRepo, d.JWT))
	r.Add(modules.NewBillingModule(billingHandler, userRepo, d.JWT))
	r.Add(modules.NewAdminModule(adminHandler, userRepo, d.JWT))

	return &Services{Users: userSvc, Courses: courseSvc, Billing: billingSvc, Stats: statsSvc}
}
