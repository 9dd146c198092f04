package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/Ocelots/config"
	"github.com/lshigami/Ocelots/database"
	"github.com/lshigami/Ocelots/internal/attempt"
	rootctrl "github.com/lshigami/Ocelots/internal/controller"
	studentctrl "github.com/lshigami/Ocelots/internal/controller/student"
	teacherctrl "github.com/lshigami/Ocelots/internal/controller/teacher"
	"github.com/lshigami/Ocelots/internal/logger"
	"github.com/lshigami/Ocelots/internal/middleware"
	"github.com/lshigami/Ocelots/internal/model"
	"github.com/lshigami/Ocelots/internal/repository"
	"github.com/lshigami/Ocelots/internal/service"
	"github.com/lshigami/Ocelots/internal/storage"
	"github.com/lshigami/Ocelots/internal/ws"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Course Platform API
// @version 1.0
// @description Courses, enrollments and timed quiz attempts for teachers and students.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
			NewAttemptStore,
			func(cfg *config.Config) (storage.BlobStore, error) {
				return storage.NewFSStore(cfg.Storage.Dir)
			},
			func(cfg *config.Config) *ws.Hub {
				return ws.NewHub([]byte(cfg.JWTSecret))
			},
		),

		fx.Provide(
			repository.NewUserRepository,
			repository.NewCourseRepository,
			repository.NewLessonRepository,
			repository.NewQuizRepository,
			repository.NewQuestionRepository,
			repository.NewEnrollmentRepository,
			repository.NewCompletionRepository,
		),

		fx.Provide(
			func(userRepo repository.UserRepository, cfg *config.Config) service.AuthService {
				return service.NewAuthService(userRepo, []byte(cfg.JWTSecret))
			},
			service.NewCourseService,
			service.NewQuizService,
			service.NewEnrollmentService,
			service.NewCompletionService,
			func(store attempt.Store, completions service.CompletionService, hub *ws.Hub) *attempt.Controller {
				return attempt.NewController(store, service.NewAttemptLedger(completions), hub)
			},
			service.NewAttemptService,
		),

		fx.Provide(
			rootctrl.NewAuthController,
			teacherctrl.NewCourseController,
			teacherctrl.NewQuizController,
			studentctrl.NewEnrollmentController,
			studentctrl.NewQuizController,
			studentctrl.NewAttemptController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

// NewAttemptStore picks the attempt session store. With REDIS_URL set the
// sessions survive process restarts; without it they live in memory.
func NewAttemptStore(cfg *config.Config) (attempt.Store, error) {
	if cfg.Redis.URL == "" {
		log.Warn().Msg("REDIS_URL not set, attempt sessions will not survive restarts")
		return attempt.NewMemoryStore(), nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	return attempt.NewRedisStore(redis.NewClient(opts)), nil
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	hub *ws.Hub,
	attemptCtrl *attempt.Controller,
	authCtrl *rootctrl.AuthController,
	teacherCourseCtrl *teacherctrl.CourseController,
	teacherQuizCtrl *teacherctrl.QuizController,
	enrollmentCtrl *studentctrl.EnrollmentController,
	studentQuizCtrl *studentctrl.QuizController,
	studentAttemptCtrl *studentctrl.AttemptController,
) {
	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authCtrl.Register)
		authGroup.POST("/login", authCtrl.Login)
	}

	jwtSecret := []byte(cfg.JWTSecret)

	teacherGroup := api.Group("/teacher", middleware.Auth(jwtSecret), middleware.RequireRole(model.RoleTeacher))
	{
		teacherGroup.POST("/courses", teacherCourseCtrl.CreateCourse)
		teacherGroup.GET("/courses", teacherCourseCtrl.ListCourses)
		teacherGroup.GET("/courses/:course_id", teacherCourseCtrl.GetCourse)
		teacherGroup.DELETE("/courses/:course_id", teacherCourseCtrl.DeleteCourse)
		teacherGroup.POST("/courses/:course_id/sections", teacherCourseCtrl.CreateSection)
		teacherGroup.POST("/sections/:section_id/lessons", teacherCourseCtrl.CreateLesson)
		teacherGroup.POST("/lessons/:lesson_id/videos", teacherCourseCtrl.CreateVideo)
		teacherGroup.GET("/videos/upload-url", teacherCourseCtrl.UploadURL)

		teacherGroup.POST("/lessons/:lesson_id/quizzes", teacherQuizCtrl.CreateQuiz)
		teacherGroup.GET("/quizzes/:quiz_id", teacherQuizCtrl.GetQuiz)
		teacherGroup.PUT("/quizzes/:quiz_id", teacherQuizCtrl.UpdateQuiz)
		teacherGroup.DELETE("/quizzes/:quiz_id", teacherQuizCtrl.DeleteQuiz)
		teacherGroup.POST("/quizzes/:quiz_id/questions", teacherQuizCtrl.CreateQuestion)
		teacherGroup.PUT("/quizzes/:quiz_id/questions/order", teacherQuizCtrl.ReorderQuestions)
		teacherGroup.DELETE("/questions/:question_id", teacherQuizCtrl.DeleteQuestion)
		teacherGroup.DELETE("/answers/:answer_id", teacherQuizCtrl.DeleteAnswer)
	}

	studentGroup := api.Group("/student", middleware.Auth(jwtSecret), middleware.RequireRole(model.RoleStudent))
	{
		studentGroup.POST("/enrollments/join", enrollmentCtrl.JoinCourse)
		studentGroup.GET("/enrollments", enrollmentCtrl.ListEnrollments)
		studentGroup.GET("/enrollments/:enrollment_id", enrollmentCtrl.GetEnrollment)
		studentGroup.POST("/enrollments/:enrollment_id/videos/:video_id/complete", enrollmentCtrl.MarkVideoComplete)
		studentGroup.GET("/courses/:course_id", enrollmentCtrl.GetCourseContent)
		studentGroup.GET("/videos/:video_id/url", enrollmentCtrl.VideoURL)

		studentGroup.GET("/quizzes/:quiz_id", studentQuizCtrl.GetQuiz)
		studentGroup.POST("/quizzes/:quiz_id/complete", studentQuizCtrl.Submit)
		studentGroup.GET("/quizzes/:quiz_id/completed", studentQuizCtrl.Completed)
		studentGroup.GET("/quizzes/:quiz_id/results", studentQuizCtrl.Results)

		studentGroup.POST("/attempts", studentAttemptCtrl.Start)
		studentGroup.PUT("/attempts/answer", studentAttemptCtrl.Answer)
		studentGroup.POST("/attempts/next", studentAttemptCtrl.Next)
		studentGroup.POST("/attempts/prev", studentAttemptCtrl.Prev)
		studentGroup.POST("/attempts/submit", studentAttemptCtrl.Submit)
		studentGroup.GET("/attempts/status", studentAttemptCtrl.Status)
		studentGroup.POST("/attempts/detach", studentAttemptCtrl.Detach)
	}

	// Countdown events stream here; auth rides the token query parameter
	// because browsers cannot set headers on websocket upgrades.
	router.GET("/ws/attempts", hub.HandleWebSocket)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Course platform API starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			attemptCtrl.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Section{},
		&model.Lesson{},
		&model.Video{},
		&model.Quiz{},
		&model.Question{},
		&model.Answer{},
		&model.Enrollment{},
		&model.VideoCompletion{},
		&model.QuizCompletion{},
		&model.CompletionAnswer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
