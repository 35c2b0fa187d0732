package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kavyapath/kavyapath-web/internal/handler"
	"github.com/kavyapath/kavyapath-web/internal/middleware"
	"github.com/kavyapath/kavyapath-web/internal/session"
)

// Handlers bundles every route handler
type Handlers struct {
	Story     *handler.StoryHandler
	Comment   *handler.CommentHandler
	Write     *handler.WriteHandler
	Auth      *handler.AuthHandler
	Profile   *handler.ProfileHandler
	Assistant *handler.AssistantHandler
	Health    *handler.HealthHandler
	Page      *handler.PageHandler
}

// Options are the route-level settings
type Options struct {
	LoginPath        string
	AssistantLimiter middleware.Limiter
	AssistantLimit   middleware.RateLimitConfig
}

// Setup configures all routes. The session middleware must already be installed.
func Setup(router *gin.Engine, h Handlers, opts Options) {
	router.GET("/health", h.Health.Health)
	router.GET("/ready", h.Health.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/sitemap.xml", h.Story.Sitemap)

	guard := session.Guard(opts.LoginPath)
	limit := middleware.RateLimit(opts.AssistantLimiter, opts.AssistantLimit)

	// Public reading pages
	router.GET("/", h.Story.Home)
	router.GET("/about", h.Page.About)
	router.GET("/contact", h.Page.Contact)
	story := router.Group("/story/:slug")
	{
		story.GET("", h.Story.Show)
		story.POST("/comments", h.Comment.Post)

		panel := story.Group("/assistant")
		panel.GET("", h.Assistant.Panel)
		panel.POST("", limit, h.Assistant.Ask)
		panel.POST("/reset", h.Assistant.Reset)
		panel.DELETE("", h.Assistant.Close)
	}
	router.GET("/comments", h.Comment.List)

	// Moderation (the API decides who may)
	router.POST("/stories/:id/verify", guard, h.Story.Verify)
	router.POST("/comments/:id/approve", guard, h.Comment.Approve)

	// Auth
	router.GET("/login", h.Auth.LoginPage)
	router.POST("/login", h.Auth.Login)
	router.GET("/register", h.Auth.RegisterPage)
	router.POST("/register", h.Auth.Register)
	router.POST("/logout", h.Auth.Logout)

	router.GET("/profile", guard, middleware.NoStore(), h.Profile.Show)

	// Authoring
	write := router.Group("/write", guard, middleware.NoStore())
	{
		write.GET("", h.Write.Page)
		write.POST("/chapters", h.Write.CreateChapter)
		write.GET("/:id", h.Write.Get)
		write.PUT("/:id", h.Write.UpdateFields)
		write.DELETE("/:id", h.Write.Discard)
		write.PUT("/:id/content", h.Write.SetContent)
		write.POST("/:id/control", h.Write.Control)
		write.POST("/:id/image", h.Write.InsertImage)
		write.POST("/:id/cover", h.Write.AttachCover)
		write.POST("/:id/submit", h.Write.Submit)
		write.POST("/:id/blog", h.Write.SubmitBlog)
	}

	// Stateless analysis endpoint
	router.POST("/api/gemini", limit, h.Assistant.Analyze)
}
