package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/ecowork/api/handler"
)

type Handlers struct {
	Session   *apiHandler.SessionHandler
	Rewards   *apiHandler.RewardsHandler
	Company   *apiHandler.CompanyHandler
	Directory *apiHandler.DirectoryHandler
	Health    *apiHandler.HealthHandler
}

func New(handlers Handlers, requireSession func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Session routes
	r.GET("/api/v1/session", handlers.Session.Get)
	r.POST("/api/v1/session/login", handlers.Session.Login)
	r.POST("/api/v1/session/register/company", handlers.Session.RegisterCompany)
	r.POST("/api/v1/session/register/employee", handlers.Session.RegisterEmployee)
	r.DELETE("/api/v1/session", handlers.Session.Logout)

	// Protected routes
	r.GET("/api/v1/records", requireSession(handlers.Rewards.ListRecords))
	r.POST("/api/v1/records", requireSession(handlers.Rewards.CreateRecord))
	r.GET("/api/v1/stats", requireSession(handlers.Rewards.Stats))
	r.GET("/api/v1/benefits", requireSession(handlers.Rewards.Benefits))
	r.POST("/api/v1/benefits/redeem", requireSession(handlers.Rewards.Redeem))
	r.GET("/api/v1/company/dashboard", requireSession(handlers.Company.Dashboard))
	r.GET("/api/v1/users", requireSession(handlers.Directory.Users))
	r.GET("/api/v1/users/{id}", requireSession(handlers.Directory.User))
	r.GET("/api/v1/companies/{id}", requireSession(handlers.Directory.Company))

	return r
}
