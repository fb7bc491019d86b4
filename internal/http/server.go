// README: API gateway; registers gin routes and middleware and delegates to module services.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"autometer/internal/http/handlers"
	"autometer/internal/http/middleware"
	"autometer/internal/infra"
	"autometer/internal/modules/account"
	"autometer/internal/modules/fare"
	"autometer/internal/modules/ledger"
)

const (
	roleAdmin  = string(account.RoleAdmin)
	roleDriver = string(account.RoleDriver)
)

type ServerDeps struct {
	Fares    *fare.Service
	Ledger   *ledger.Service
	Accounts *account.Service
	Verifier infra.TokenVerifier
	Logger   *slog.Logger
	// RequestTimeout bounds each request's context; zero disables it.
	RequestTimeout time.Duration
}

type Server struct {
	fares    *fare.Service
	ledger   *ledger.Service
	accounts *account.Service
	verifier infra.TokenVerifier
	log      *slog.Logger
	timeout  time.Duration
}

func NewServer(deps ServerDeps) *Server {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		fares:    deps.Fares,
		ledger:   deps.Ledger,
		accounts: deps.Accounts,
		verifier: deps.Verifier,
		log:      log,
		timeout:  deps.RequestTimeout,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(s.log),
		middleware.Logging(s.log),
		middleware.Timeout(s.timeout),
	)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authH := handlers.NewAuthHandler(s.accounts, s.log)
	fareH := handlers.NewFareHandler(s.fares, s.log)
	rideH := handlers.NewRideHandler(s.ledger, s.log)
	adminH := handlers.NewAdminHandler(s.accounts, s.ledger, s.log)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/admin-login", authH.AdminLogin)

	signedIn := api.Group("", middleware.Auth(s.verifier))
	anyRole := middleware.RequireRole(roleAdmin, roleDriver)
	adminOnly := middleware.RequireRole(roleAdmin)

	signedIn.GET("/auth/admin", adminOnly, authH.AdminProfile)
	signedIn.PUT("/auth/admin", adminOnly, authH.UpdateAdminProfile)

	fares := signedIn.Group("/fares")
	fares.GET("", anyRole, fareH.Get)
	fares.POST("", adminOnly, fareH.Set)
	fares.POST("/calculate", anyRole, fareH.Calculate)

	rides := signedIn.Group("/rides/:id", anyRole)
	rides.PATCH("/complete-ride", rideH.Complete)
	rides.PATCH("/cancel-ride", rideH.Cancel)
	rides.GET("/stats", rideH.Stats)

	admin := signedIn.Group("/admin", adminOnly)
	admin.POST("/add-driver", adminH.AddDriver)
	admin.GET("/drivers", adminH.ListDrivers)
	admin.GET("/driver/:id/stats", adminH.DriverStats)
	admin.PUT("/driver/:id/earnings", adminH.AdjustEarnings)
	admin.PUT("/driver/:id/ride", adminH.RecordRide)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "route not found"})
	})
	return r
}
