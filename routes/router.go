package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/inkwell/config"
	"github.com/cppla/inkwell/controllers"
	"github.com/cppla/inkwell/middleware"
	"github.com/cppla/inkwell/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
// accessLog may be nil, in which case the access log goes to a rolling file at cfg.GinPath.
func SetupRouter(cfg config.AppConfig, repo controllers.Repository, log *zap.Logger, accessLog *zap.Logger) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())

	if accessLog == nil {
		gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
		if err != nil {
			log.Warn("gin access log unavailable, using application logger", zap.Error(err))
			gl = log
		}
		accessLog = gl
	}
	r.Use(middleware.Ginzap(accessLog, time.RFC3339, true))
	r.Use(middleware.RecoveryWithZap(accessLog, false))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))

	demoController := controllers.NewDemoController(repo, log.Named("demo"))
	userController := controllers.NewUserController(repo)
	articleController := controllers.NewArticleController(repo)
	statsController := controllers.NewStatsController(repo)

	r.GET("/", demoController.Hello)
	r.GET("/user/add", demoController.AddUser)
	r.GET("/user/query", demoController.QueryUser)
	r.GET("/user/update", demoController.UpdateUser)
	r.GET("/user/delete", demoController.DeleteUser)
	r.GET("/article/add", demoController.AddArticles)
	r.GET("/article/query", demoController.QueryArticles)

	r.GET("/health", statsController.Health)

	api := r.Group("/api/v1")
	api.GET("/stats", statsController.GetStats)

	users := api.Group("/users")
	users.POST("", userController.CreateUser)
	users.GET("", userController.FindUsers)
	users.GET("/:id", userController.GetUser)
	users.PATCH("/:id/password", userController.UpdatePassword)
	users.POST("/:id/password/verify", userController.VerifyPassword)
	users.DELETE("/:id", userController.DeleteUser)
	users.GET("/:id/articles", articleController.ListUserArticles)

	api.POST("/articles", articleController.CreateArticles)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.String(http.StatusNotFound, "404 page not found")
	})

	return r
}
