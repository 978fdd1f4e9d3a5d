package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"luxe-estates.backend/internal/interfaces/http/handlers"
	"luxe-estates.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler     *handlers.AuthHandler
	profileHandler  *handlers.ProfileHandler
	propertyHandler *handlers.PropertyHandler
	currencyHandler *handlers.CurrencyHandler
	adminHandler    *handlers.AdminHandler
	contactHandler  *handlers.ContactHandler
	payFastHandler  *handlers.PayFastHandler
	sitemapHandler  *handlers.SitemapHandler

	authMiddleware         gin.HandlerFunc
	optionalAuthMiddleware gin.HandlerFunc
	activeAccount          gin.HandlerFunc
	optionalActiveAccount  gin.HandlerFunc
	contactRateLimit       gin.HandlerFunc
	metricsHandler         http.Handler
}

// registerPublicRoutes mounts the unversioned site endpoints
func registerPublicRoutes(r *gin.Engine, d routeDeps) {
	if d.metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(d.metricsHandler))
	}
	r.GET("/sitemap.xml", d.sitemapHandler.Get)

	api := r.Group("/api")
	{
		api.POST("/contact", d.contactRateLimit, d.contactHandler.Submit)

		payfast := api.Group("/payfast")
		{
			payfast.POST("/create-subscription", middleware.IdempotencyMiddleware(), d.payFastHandler.CreateSubscription)
			payfast.POST("/notify", d.payFastHandler.Notify)
		}
	}
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Currency routes (public)
		currencies := v1.Group("/currency")
		{
			currencies.GET("/rates", d.currencyHandler.GetRates)
			currencies.GET("/detect", d.currencyHandler.Detect)
			currencies.GET("/convert", d.currencyHandler.Convert)
			currencies.PUT("/preference", d.currencyHandler.SetPreference)
			currencies.DELETE("/preference", d.currencyHandler.ResetPreference)
		}

		// Catalog routes (public, exclusive listings need a session)
		properties := v1.Group("/properties")
		properties.Use(d.optionalAuthMiddleware, d.optionalActiveAccount)
		{
			properties.GET("", d.propertyHandler.ListProperties)
			properties.GET("/featured", d.propertyHandler.ListFeatured)
			properties.GET("/:id", d.propertyHandler.GetProperty)
		}

		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", d.authHandler.SignUp)
			auth.POST("/signin", d.authHandler.SignIn)
			auth.POST("/oauth", d.authHandler.SignInWithOAuth)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.GET("/route-guard", d.optionalAuthMiddleware, d.optionalActiveAccount, d.authHandler.RouteGuard)
			auth.POST("/signout", d.authMiddleware, d.authHandler.SignOut)
			auth.GET("/me", d.authMiddleware, d.activeAccount, d.authHandler.GetMe)
		}

		// Member routes (protected)
		profile := v1.Group("/profile")
		profile.Use(d.authMiddleware, d.activeAccount)
		{
			profile.GET("", d.profileHandler.GetProfile)
			profile.PUT("", d.profileHandler.UpdateProfile)
			profile.POST("/change-password", d.profileHandler.ChangePassword)
		}

		// Admin routes (protected + admin role)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, d.activeAccount, middleware.RequireAdmin())
		{
			admin.GET("/stats", d.adminHandler.Stats)

			admin.GET("/properties", d.adminHandler.ListProperties)
			admin.POST("/properties", d.adminHandler.CreateProperty)
			admin.GET("/properties/:id", d.adminHandler.GetProperty)
			admin.PUT("/properties/:id", d.adminHandler.UpdateProperty)
			admin.DELETE("/properties/:id", d.adminHandler.DeleteProperty)

			admin.POST("/properties/images", d.adminHandler.UploadImage)
			admin.DELETE("/properties/images", d.adminHandler.RemoveImage)

			admin.GET("/users", d.adminHandler.ListUsers)
			admin.PATCH("/users/:id/tier", d.adminHandler.UpdateTier)
			admin.PATCH("/users/:id/status", d.adminHandler.UpdateStatus)
			admin.PATCH("/users/:id/payment", d.adminHandler.UpdatePaymentStatus)
			admin.PATCH("/users/:id/role", d.adminHandler.UpdateRole)
		}
	}
}
