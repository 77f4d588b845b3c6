package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collabs/internal/authz"
	"collabs/internal/config"
	"collabs/internal/event"
	"collabs/internal/handler"
	"collabs/internal/invite"
	"collabs/internal/mail"
	"collabs/internal/middleware"
	"collabs/internal/model"
	"collabs/internal/realtime"
	"collabs/internal/repository"
	"collabs/internal/worker"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	Pool   *worker.Pool
}

func Init(cfg *config.Config) (*Server, error) {
	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if err := db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.Collaborator{},
		&model.Column{},
		&model.Task{},
		&model.Comment{},
	); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate schema: %w", err)
	}

	// Background infrastructure: пул для fire-and-forget работы,
	// шина событий поверх него, push-клиент и broadcaster
	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerBuffer)
	bus := event.NewBus(pool)

	realtime.Init(cfg)
	realtime.NewBroadcaster(realtime.Client()).Register(bus)

	mailer := mail.NewMailer(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	collaboratorRepo := repository.NewCollaboratorRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	gate := authz.NewGate(collaboratorRepo)
	inviteService := invite.NewService(
		projectRepo,
		userRepo,
		collaboratorRepo,
		gate,
		invite.NewTokenCodec(cfg.InviteSecret),
		bus,
		mailer,
		pool,
	)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo, cfg.JWTSecret)
	projectHandler := handler.NewProjectHandler(projectRepo, columnRepo, collaboratorRepo, gate)
	memberHandler := handler.NewMemberHandler(inviteService, collaboratorRepo, projectRepo, gate)
	columnHandler := handler.NewColumnHandler(columnRepo, gate, bus)
	taskHandler := handler.NewTaskHandler(taskRepo, columnRepo, collaboratorRepo, gate, bus)
	commentHandler := handler.NewCommentHandler(commentRepo, taskRepo, gate, bus)
	pusherHandler := handler.NewPusherHandler(realtime.Client(), gate)

	// Setup Gin
	r := gin.Default()

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Project routes
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects", projectHandler.GetAll)
		authorized.PATCH("/projects/:id", projectHandler.Update)
		authorized.DELETE("/projects/:id", projectHandler.Delete)
		authorized.GET("/projects/:id/columns", projectHandler.GetColumns)
		authorized.GET("/projects/:id/members", projectHandler.GetMembers)

		// Member routes
		authorized.POST("/projects/:id/invites", memberHandler.Invite)
		authorized.POST("/invites/accept", memberHandler.AcceptInvite)
		authorized.PUT("/projects/:id/members/:member_id", memberHandler.UpdateRole)
		authorized.DELETE("/projects/:id/members/:member_id", memberHandler.Remove)

		// Column routes
		authorized.POST("/projects/:id/columns", columnHandler.Create)
		authorized.POST("/projects/:id/columns/reorder", columnHandler.Reorder)
		authorized.PUT("/columns/:id", columnHandler.Update)
		authorized.DELETE("/columns/:id", columnHandler.Delete)

		// Task routes
		authorized.POST("/projects/:id/tasks", taskHandler.Create)
		authorized.GET("/projects/:id/tasks", taskHandler.GetAll)
		authorized.GET("/projects/:id/tasks/:task_id", taskHandler.Get)
		authorized.PATCH("/projects/:id/tasks/:task_id", taskHandler.Update)
		authorized.DELETE("/projects/:id/tasks/:task_id", taskHandler.Delete)

		// Comment routes
		authorized.POST("/tasks/:id/comments", commentHandler.Create)
		authorized.GET("/tasks/:id/comments", commentHandler.GetAll)
		authorized.DELETE("/comments/:id", commentHandler.Delete)

		// Pusher channel authorization
		authorized.POST("/pusher/auth", pusherHandler.Auth)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
		Pool:   pool,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	// Дожидаемся фоновых задач (письма, push) и гасим клиент
	s.Pool.Shutdown()
	realtime.Shutdown()

	log.Println("✅ Server exited properly")
}
