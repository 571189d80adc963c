package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/AndersonGC/dryfit/internal/auth"
	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/AndersonGC/dryfit/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth       service.AuthService
	Invites    service.InviteService
	Workouts   service.WorkoutService
	Categories service.CategoryService
	Profiles   service.ProfileService
}

// Pinger reports backend health for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter builds the gin engine with recovery, request logging and CORS,
// then registers every route.
func NewRouter(allowedOrigins []string, tokens *auth.TokenManager, svc Services, health Pinger, log logging.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))
	router.Use(cors.New(corsConfig(allowedOrigins)))

	SetupRoutes(router, tokens, svc, health, log)
	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// Credentials cannot be combined with a wildcard origin.
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cfg
}

// SetupRoutes defines all the API routes for the application.
func SetupRoutes(
	router *gin.Engine,
	tokens *auth.TokenManager,
	svc Services,
	health Pinger,
	log logging.Logger,
) {
	authHandler := NewAuthHandler(svc.Auth, svc.Profiles, log)
	profileHandler := NewProfileHandler(svc.Profiles, svc.Categories, log)
	coachHandler := NewCoachHandler(svc.Workouts, svc.Invites, svc.Profiles, log)
	studentHandler := NewStudentHandler(svc.Workouts, log)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := health.Ping(ctx); err != nil {
			log.Warn(c.Request.Context(), "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	apiV1 := router.Group("/api/v1")
	{
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/verify-email/send", authHandler.SendVerificationCode)
			authRoutes.POST("/verify-email/confirm", authHandler.ConfirmVerificationCode)
			authRoutes.POST("/register", authHandler.Register)
		}

		authenticated := apiV1.Group("")
		authenticated.Use(AuthMiddleware(tokens))
		{
			authenticated.GET("/me", profileHandler.Me)
			authenticated.POST("/me/avatar/upload-url", profileHandler.RequestAvatarUpload)
			authenticated.PUT("/me/avatar", profileHandler.SetAvatar)
			authenticated.GET("/categories", profileHandler.ListCategories)
		}

		coachRoutes := apiV1.Group("/coach")
		coachRoutes.Use(AuthMiddleware(tokens))
		coachRoutes.Use(RoleMiddleware(domain.RoleCoach))
		{
			coachRoutes.GET("/students", coachHandler.ListStudents)
			coachRoutes.GET("/students/by-date", coachHandler.StudentsForDate)

			coachRoutes.GET("/invite-code", coachHandler.CurrentInviteCode)
			coachRoutes.GET("/invite-codes", coachHandler.ListInviteCodes)
			coachRoutes.POST("/invite-codes", coachHandler.GenerateInviteCode)

			coachRoutes.GET("/workouts", coachHandler.ListWorkouts)
			coachRoutes.POST("/workouts", coachHandler.CreateWorkout)
			coachRoutes.PATCH("/workouts/:workoutId", coachHandler.UpdateWorkout)
			coachRoutes.DELETE("/workouts/:workoutId", coachHandler.DeleteWorkout)
		}

		studentRoutes := apiV1.Group("/student")
		studentRoutes.Use(AuthMiddleware(tokens))
		studentRoutes.Use(RoleMiddleware(domain.RoleStudent))
		{
			studentRoutes.GET("/workout", studentHandler.WorkoutForDate)
			studentRoutes.GET("/workouts", studentHandler.ListWorkouts)
			studentRoutes.PATCH("/workouts/:workoutId/complete", studentHandler.CompleteWorkout)
		}
	}
}
