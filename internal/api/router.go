package api

import (
	"context"
	"net/http"
	"time"

	"github.com/blog-content-api/internal/cache"
	"github.com/blog-content-api/internal/identity"
	"github.com/blog-content-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ServiceName is reported by the health endpoint
const ServiceName = "blog-content-api"

// Dependencies are the collaborators the router needs besides the services
type Dependencies struct {
	// Gate resolves bearer tokens into callers
	Gate *identity.Gate
	// CommentLimiter throttles comment creation per caller; nil allows everything
	CommentLimiter cache.RateLimiter
	// Health reports store reachability; nil always reports healthy
	Health func(ctx context.Context) error
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, deps Dependencies, log zerolog.Logger) *gin.Engine {
	if deps.CommentLimiter == nil {
		deps.CommentLimiter = cache.NoopRateLimiter{}
	}

	router := gin.New()

	// Middleware
	router.Use(requestIDMiddleware())
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(identifyMiddleware(deps.Gate))

	// Handlers
	articles := NewArticleHandler(services, log)
	comments := NewCommentHandler(services, log)
	likes := NewLikeHandler(services, log)
	taxonomy := NewTaxonomyHandler(services, log)
	exports := NewExportHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(deps.Health))
	router.GET("/metrics", metricsHandler(services))

	auth := requireAuth()

	// API v1
	v1 := router.Group("/v1")
	{
		a := v1.Group("/articles")
		{
			a.GET("", articles.List)
			a.GET("/:id", articles.Get)
			a.POST("", auth, articles.Create)
			a.PUT("/:id", auth, articles.Update)
			a.DELETE("/:id", auth, articles.Delete)

			a.GET("/:id/comments", comments.ListByArticle)

			a.GET("/:id/like", likes.ArticleStatus)
			a.POST("/:id/like", auth, likes.LikeArticle)
			a.DELETE("/:id/like", auth, likes.UnlikeArticle)
		}

		c := v1.Group("/comments")
		{
			c.POST("", auth, rateLimitMiddleware(deps.CommentLimiter, log), comments.Create)
			c.DELETE("/:id", auth, comments.Delete)

			c.GET("/:id/like", likes.CommentStatus)
			c.POST("/:id/like", auth, likes.LikeComment)
			c.DELETE("/:id/like", auth, likes.UnlikeComment)
		}

		v1.GET("/tags", taxonomy.ListTags)
		v1.GET("/categories", taxonomy.CategoryTree)

		// Admin endpoints; the services enforce the admin role
		admin := v1.Group("/admin", auth)
		{
			admin.GET("/articles", articles.ListManaged)
			admin.POST("/articles/:id/audit", articles.Audit)
			admin.POST("/articles/:id/offline", articles.Offline)

			admin.GET("/comments", comments.ListForModeration)
			admin.POST("/comments/:id/audit", comments.Audit)

			admin.POST("/tags", taxonomy.CreateTag)
			admin.PUT("/tags/:id", taxonomy.UpdateTag)
			admin.DELETE("/tags/:id", taxonomy.DeleteTag)

			admin.POST("/categories", taxonomy.CreateCategory)
			admin.PUT("/categories/:id", taxonomy.UpdateCategory)
			admin.DELETE("/categories/:id", taxonomy.DeleteCategory)

			admin.GET("/exports/articles", exports.StreamArticles)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if check != nil {
			ctx, cancel := contextWithTimeout(c, 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   ServiceName,
		})
	}
}

// metricsHandler returns article counts by status
func metricsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := services.Export.CountByStatus(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"articles":  counts,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
