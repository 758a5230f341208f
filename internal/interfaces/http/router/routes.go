package router

import (
	"github.com/gin-gonic/gin"
	"github.com/househero/backend/internal/domain/identity"
	"github.com/househero/backend/internal/interfaces/http/handler"
	"github.com/househero/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers mounted by Routes
type Handlers struct {
	Health         *handler.HealthHandler
	Auth           *handler.AuthHandler
	Pricing        *handler.PricingHandler
	Payment        *handler.PaymentHandler
	ServiceRequest *handler.ServiceRequestHandler
	Trust          *handler.TrustHandler
	Audit          *handler.AuditHandler
	Site           *handler.SiteHandler
}

// Routes builds the HomeSwift domain groups. authLimit guards the
// credential endpoints and may be nil.
func Routes(h Handlers, authLimit gin.HandlerFunc) []RouteRegistrar {
	adminOnly := middleware.RequireRole(string(identity.RoleAdmin))
	limited := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if authLimit == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{authLimit, fn}
	}

	system := NewDomainGroup("system", "")
	system.GET("/health", h.Health.APIHealth)

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", limited(h.Auth.Login)...)
	auth.POST("/signup", limited(h.Auth.Signup)...)
	auth.POST("/refresh", limited(h.Auth.Refresh)...)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)

	pricing := NewDomainGroup("pricing", "/pricing")
	pricing.GET("", h.Pricing.List)
	pricing.POST("/quote", h.Pricing.Quote)

	payments := NewDomainGroup("payments", "/payments")
	payments.POST("/submit/:requestId", h.Payment.Submit)
	paymentAdmin := payments.Group("payments-admin", "").Use(adminOnly)
	paymentAdmin.GET("", h.Payment.List)
	paymentAdmin.GET("/:id", h.Payment.Get)
	paymentAdmin.GET("/:id/proof-url", h.Payment.ProofURL)
	paymentAdmin.POST("/:id/verify", h.Payment.Verify)
	paymentAdmin.POST("/:id/release", h.Payment.Release)
	paymentAdmin.POST("/:id/refund", h.Payment.Refund)

	requests := NewDomainGroup("service-requests", "/service-requests")
	requests.POST("/:id/confirm-completion", h.ServiceRequest.ConfirmCompletion)
	requests.GET("/:id", adminOnly, h.ServiceRequest.Get)

	trust := NewDomainGroup("trust", "/trust-scores")
	trust.GET("/:providerId", h.Trust.Get)

	audit := NewDomainGroup("audit", "/audit-logs").Use(adminOnly)
	audit.GET("", h.Audit.List)

	site := NewDomainGroup("site", "/site")
	site.GET("/config", h.Site.Config)
	site.GET("/layout", h.Site.Layout)
	site.GET("/theme", h.Site.Theme)

	return []RouteRegistrar{system, auth, pricing, payments, requests, trust, audit, site}
}

// RegisterStatic mounts the routes that live outside the API prefix
func RegisterStatic(engine *gin.Engine, h Handlers) {
	engine.GET("/health", h.Health.Readiness)
	engine.GET("/js/config.js", h.Site.ConfigScript)
	engine.GET("/css/theme.css", h.Site.ThemeCSS)
}
