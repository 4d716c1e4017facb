package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"devconnect/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	tokenSvc *service.TokenService,
	userH *UserHandler,
	profileH *ProfileHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API Running")
	})

	authRequired := AuthMiddleware(tokenSvc)
	api := r.Group("/api")

	users := api.Group("/users")
	users.POST("", userH.RegisterUser)

	auth := api.Group("/auth")
	auth.POST("", userH.Login)
	auth.GET("", authRequired, userH.GetLoggedInUser)

	profile := api.Group("/profile")
	profile.GET("", profileH.GetProfiles)
	profile.GET("/github/:username", profileH.GetGithubRepos)
	profile.GET("/me", authRequired, profileH.GetMyProfile)
	profile.GET("/:id", profileH.GetProfile)
	profile.POST("", authRequired, profileH.CreateProfile)
	profile.PUT("/me", authRequired, profileH.UpdateProfile)
	profile.DELETE("/me", authRequired, profileH.DeleteProfile)
	profile.POST("/experience", authRequired, profileH.AddExperience)
	profile.PUT("/experience/:exp_id", authRequired, profileH.UpdateExperience)
	profile.DELETE("/experience/:exp_id", authRequired, profileH.RemoveExperience)
	profile.POST("/education", authRequired, profileH.AddEducation)
	profile.PUT("/education/:edu_id", authRequired, profileH.UpdateEducation)
	profile.DELETE("/education/:edu_id", authRequired, profileH.RemoveEducation)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
