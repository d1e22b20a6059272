package bootstrap

import (
	"database/sql"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/clientdesk/clientdesk-backend/config"
	httpapi "github.com/clientdesk/clientdesk-backend/internal/api/http"
	"github.com/clientdesk/clientdesk-backend/internal/api/http/middleware"
	"github.com/clientdesk/clientdesk-backend/internal/auth"
	"github.com/clientdesk/clientdesk-backend/internal/clients"
	"github.com/clientdesk/clientdesk-backend/internal/invoices"
	"github.com/clientdesk/clientdesk-backend/internal/projects"
	"github.com/clientdesk/clientdesk-backend/internal/users"
)

type RouterDeps struct {
	ServiceName string
	Cfg         *config.Config
	DB          *sql.DB
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(dep.Cfg.Server.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-Id", "X-User-Id", "X-User-Email", "X-User-Name", "X-User-Org"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Cfg.App.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(rate.Limit(20), 40))

	userRepo := users.NewRepo(dep.DB)
	api.Use(auth.WithOwner(userRepo))

	clientRepo := clients.NewRepo(dep.DB)
	clients.Register(api.Group("/clients"), clientRepo)

	projectRepo := projects.NewRepo(dep.DB)
	projects.Register(api.Group("/projects"), projectRepo)

	invoiceRepo := invoices.NewRepo(dep.DB, dep.Cfg.Billing.NumberAttempts)
	invoices.Register(api.Group("/invoices"), invoiceRepo, userRepo, clientRepo)

	return r
}
