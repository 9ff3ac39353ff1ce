package api

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/metrics"
	"baisics/coach-api/internal/service"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth      service.AuthService
	Coach     service.CoachService
	Program   service.ProgramService
	Nutrition service.NutritionService
	FoodLog   service.FoodLogService
	Workout   service.WorkoutService
	Milestone service.MilestoneService
	Exercise  service.ExerciseService
	BodyStat  service.BodyStatService
}

func SetupRoutes(
	router *gin.Engine,
	svc Services,
	logger *zap.Logger,
	reg *metrics.Registry,
	corsOrigins []string,
) {
	router.Use(RequestID(), Recovery(logger), RequestLogger(logger, reg))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := NewAuthHandler(svc.Auth)
	exerciseHandler := NewExerciseHandler(svc.Exercise)
	programHandler := NewProgramHandler(svc.Program)
	nutritionHandler := NewNutritionHandler(svc.Nutrition)
	foodLogHandler := NewFoodLogHandler(svc.FoodLog)
	workoutHandler := NewWorkoutHandler(svc.Workout)
	milestoneHandler := NewMilestoneHandler(svc.Milestone)
	bodyStatHandler := NewBodyStatHandler(svc.BodyStat)
	coachHandler := NewCoachHandler(
		svc.Coach,
		programHandler,
		nutritionHandler,
		foodLogHandler,
		milestoneHandler,
		svc.Program,
		svc.Workout,
		svc.BodyStat,
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
	if reg != nil {
		router.GET("/metrics", gin.WrapH(reg.Handler()))
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(svc.Auth))
	{
		protected.GET("/me", authHandler.Me)

		programs := protected.Group("/programs")
		{
			programs.POST("", programHandler.CreateProgram)
			programs.GET("", programHandler.ListPrograms)
			programs.POST("/:id/activate", programHandler.ActivateProgram)
			programs.PUT("/:id/phase", programHandler.SetPhase)
		}

		plans := protected.Group("/nutrition-plans")
		{
			plans.POST("", nutritionHandler.CreatePlan)
			plans.GET("", nutritionHandler.ListPlans)
		}
		protected.GET("/nutrition/targets", nutritionHandler.GetTargets)

		foodLog := protected.Group("/food-log")
		{
			foodLog.POST("", foodLogHandler.LogFood)
			foodLog.GET("", foodLogHandler.GetDay)
			foodLog.GET("/daily-summary", foodLogHandler.DailySummary)
			foodLog.DELETE("/:id", foodLogHandler.DeleteEntry)
		}

		workouts := protected.Group("/workout-logs")
		{
			workouts.POST("", workoutHandler.StartWorkout)
			workouts.POST("/quick-log", workoutHandler.QuickLog)
			workouts.GET("", workoutHandler.History)
			workouts.GET("/:id", workoutHandler.GetWorkout)
			workouts.POST("/:id/sets", workoutHandler.AddSets)
			workouts.POST("/:id/complete", workoutHandler.CompleteWorkout)
		}

		protected.GET("/milestones", milestoneHandler.GetProgress)

		exercises := protected.Group("/exercises")
		{
			exercises.POST("", RoleMiddleware(domain.RoleCoach), exerciseHandler.CreateExercise)
			exercises.GET("", exerciseHandler.GetExercises)
			exercises.GET("/match", exerciseHandler.MatchExercises)
		}

		bodyStats := protected.Group("/body-stats")
		{
			bodyStats.POST("", bodyStatHandler.RecordStat)
			bodyStats.GET("", bodyStatHandler.ListStats)
			bodyStats.POST("/photos/upload-url", bodyStatHandler.RequestPhotoUploadURL)
			bodyStats.POST("/photos/confirm", bodyStatHandler.ConfirmPhotoUpload)
			bodyStats.GET("/photos", bodyStatHandler.ListPhotos)
		}

		coach := protected.Group("/coach")
		coach.Use(RoleMiddleware(domain.RoleCoach))
		{
			coach.POST("/clients", coachHandler.AddClientByEmail)
			coach.GET("/clients", coachHandler.GetManagedClients)

			client := coach.Group("/clients/:clientId")
			{
				client.GET("/daily-summary", coachHandler.ClientDailySummary)
				client.GET("/milestones", coachHandler.ClientMilestones)
				client.GET("/workouts", coachHandler.ClientWorkouts)
				client.GET("/photos", coachHandler.ClientPhotos)
				client.POST("/programs", coachHandler.CreateClientProgram)
				client.GET("/programs", coachHandler.ListClientPrograms)
				client.POST("/nutrition-plans", coachHandler.CreateClientPlan)
			}
		}
	}
}
