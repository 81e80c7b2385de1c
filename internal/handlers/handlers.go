package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"flipyard/internal/config"
	"flipyard/internal/inference"
	"flipyard/internal/middleware"
	"flipyard/internal/models"
	"flipyard/internal/service"
)

type AuthAPI interface {
	middleware.Authenticator
	Register(ctx context.Context, input service.RegisterInput) (service.SessionGrant, error)
	Login(ctx context.Context, email, password string) (service.SessionGrant, error)
	Logout(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	RequestPasswordReset(ctx context.Context, email string)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type ListingGenerator interface {
	Infer(ctx context.Context, rawURL string, askingPrice float64) (inference.Draft, error)
}

type ListingAPI interface {
	Create(ctx context.Context, sellerID string, input service.ListingInput) (models.Listing, error)
	Get(ctx context.Context, id string) (models.Listing, error)
	Update(ctx context.Context, sellerID, id string, input service.ListingInput) (models.Listing, error)
	Archive(ctx context.Context, caller models.User, id string) error
	Search(ctx context.Context, q service.SearchQuery) (service.SearchResult, error)
	ListForSeller(ctx context.Context, sellerID string) ([]models.Listing, error)
}

type InquiryAPI interface {
	Submit(ctx context.Context, input service.InquiryInput) (models.Inquiry, error)
	ListForSeller(ctx context.Context, sellerID string, page, perPage int) ([]models.Inquiry, error)
}

type UploadAPI interface {
	Upload(ctx context.Context, input service.UploadInput) (models.ListingImage, error)
}

type AdminAPI interface {
	ListUsers(ctx context.Context, page, perPage int) ([]models.User, error)
	SetBanned(ctx context.Context, userID string, banned bool) error
}

// HealthCheck is one dependency reported by /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type Services struct {
	Auth      AuthAPI
	Generator ListingGenerator
	Listings  ListingAPI
	Inquiries InquiryAPI
	Uploads   UploadAPI
	Admin     AdminAPI
}

type HandlerSet struct {
	log       zerolog.Logger
	cfg       *config.AppConfig
	auth      AuthAPI
	generator ListingGenerator
	listings  ListingAPI
	inquiries InquiryAPI
	uploads   UploadAPI
	admin     AdminAPI
	checks    []HealthCheck
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, svc Services, checks ...HealthCheck) HandlerSet {
	return HandlerSet{
		log:       log,
		cfg:       cfg,
		auth:      svc.Auth,
		generator: svc.Generator,
		listings:  svc.Listings,
		inquiries: svc.Inquiries,
		uploads:   svc.Uploads,
		admin:     svc.Admin,
		checks:    checks,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	v1.Use(middleware.Session(h.auth, h.cfg.Security.CookieName, h.log))

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.RegisterAccount)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
		auth.POST("/recover", h.RecoverPassword)
		auth.POST("/reset", h.ResetPassword)
		auth.POST("/change-pw", middleware.RequireUser(), h.ChangePassword)
	}

	v1.POST("/ai/generate-listing", middleware.RequireUser(), h.GenerateListing)

	listings := v1.Group("/listings")
	{
		listings.GET("", h.SearchListings)
		listings.GET("/:id", h.GetListing)
		listings.POST("", middleware.RequireUser(), h.CreateListing)
		listings.PATCH("/:id", middleware.RequireUser(), h.UpdateListing)
		listings.DELETE("/:id", middleware.RequireUser(), h.ArchiveListing)
		listings.POST("/:id/inquiries", h.SubmitInquiry)
	}

	v1.POST("/media/upload", middleware.RequireUser(), h.UploadMedia)

	dashboard := v1.Group("/dashboard")
	dashboard.Use(middleware.RequireUser())
	{
		dashboard.GET("/listings", h.DashboardListings)
		dashboard.GET("/inquiries", h.DashboardInquiries)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/users", h.AdminListUsers)
		admin.POST("/users/:id/ban", h.AdminBan)
		admin.POST("/users/:id/unban", h.AdminUnban)
	}
}
