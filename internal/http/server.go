// README: API gateway; registers gin routes and delegates to module services.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ada/internal/http/handlers"
	"ada/internal/http/middleware"
	"ada/internal/infra"
	"ada/internal/modules/auditlog"
	"ada/internal/modules/pricing"
	"ada/internal/modules/profile"
	"ada/internal/modules/tenant"
	"ada/internal/types"
)

type TenantService interface {
	Register(ctx context.Context, cmd tenant.RegisterCommand) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Resolve(ctx context.Context, email string, tenantID int64) (types.Caller, error)
	Me(ctx context.Context, caller types.Caller) (tenant.Account, error)
	ListUsers(ctx context.Context, caller types.Caller) ([]tenant.User, error)
	CreateUser(ctx context.Context, caller types.Caller, cmd tenant.CreateUserCommand) (*tenant.User, error)
	ChangeRole(ctx context.Context, caller types.Caller, email string, role types.Role) error
	DeleteUser(ctx context.Context, caller types.Caller, email string) error
}

type ProfileService interface {
	List(ctx context.Context, caller types.Caller) ([]profile.Summary, error)
	Get(ctx context.Context, caller types.Caller, profileID string) (pricing.CostProfile, error)
	Upsert(ctx context.Context, caller types.Caller, in profile.Input) (pricing.CostProfile, error)
	Delete(ctx context.Context, caller types.Caller, profileID string) error
}

type Recommender interface {
	Recommend(ctx context.Context, caller types.Caller, profileID string, load pricing.LoadRequest) (pricing.Recommendation, error)
}

type RecentLogs interface {
	Recent(ctx context.Context, tenantID int64, limit int) ([]auditlog.Summary, error)
}

type MileageEstimator interface {
	LoadedMiles(ctx context.Context, origin, destination string) (float64, error)
}

// ServerDeps wires the services behind the routes. Mileage may be nil.
type ServerDeps struct {
	Verifier    infra.TokenVerifier
	Tenants     TenantService
	Profiles    ProfileService
	Pricing     Recommender
	Logs        RecentLogs
	Mileage     MileageEstimator
	Logger      *zap.Logger
	CORSOrigins []string
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Server{deps: deps}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(
		middleware.Recovery(s.deps.Logger),
		middleware.Logging(s.deps.Logger),
		middleware.CORS(s.deps.CORSOrigins),
	)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "utc": time.Now().UTC()})
	})

	authHandler := handlers.NewAuthHandler(s.deps.Tenants)
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)

	authed := r.Group("/")
	authed.Use(middleware.Auth(s.deps.Verifier, s.deps.Tenants))

	managers := middleware.RequireRole(types.RoleOwner, types.RoleAdmin)
	ownerOnly := middleware.RequireRole(types.RoleOwner)

	authed.GET("/me", authHandler.Me)

	userHandler := handlers.NewUserHandler(s.deps.Tenants)
	authed.GET("/tenant/users", managers, userHandler.List)
	authed.POST("/tenant/users", managers, userHandler.Create)
	authed.PATCH("/tenant/users/:email", ownerOnly, userHandler.ChangeRole)
	authed.DELETE("/tenant/users/:email", ownerOnly, userHandler.Delete)

	profileHandler := handlers.NewProfileHandler(s.deps.Profiles)
	authed.GET("/profiles", profileHandler.List)
	authed.GET("/profiles/:profile_id", profileHandler.Get)
	authed.POST("/profiles", managers, profileHandler.Upsert)
	authed.DELETE("/profiles/:profile_id", managers, profileHandler.Delete)

	recommendHandler := handlers.NewRecommendHandler(s.deps.Pricing)
	authed.POST("/recommend", recommendHandler.Recommend)

	logHandler := handlers.NewLogHandler(s.deps.Logs)
	authed.GET("/logs/recent", logHandler.Recent)

	laneHandler := handlers.NewLaneHandler(s.deps.Mileage)
	authed.GET("/api/lanes/mileage", laneHandler.Mileage)

	return r
}
