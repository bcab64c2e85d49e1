// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"time"

	_ "fbclone/docs" // swagger docs
	"fbclone/internal/config"
	"fbclone/internal/database"
	"fbclone/internal/featureflags"
	"fbclone/internal/media"
	"fbclone/internal/middleware"
	"fbclone/internal/models"
	"fbclone/internal/notifications"
	"fbclone/internal/repository"
	"fbclone/internal/service"
	"fbclone/internal/session"
	"fbclone/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	sessions     *session.Store
	media        *media.Service
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	userService         *service.UserService
	postService         *service.PostService
	reactionService     *service.ReactionService
	commentService      *service.CommentService
	friendService       *service.FriendService
	storyService        *service.StoryService
	notificationService *service.NotificationService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// read may be nil, in which case reads go to db.
func NewServerWithDeps(cfg *config.Config, db, read *gorm.DB, redisClient *redis.Client, mediaSvc *media.Service) (*Server, error) {
	if db == nil {
		return nil, errors.New("server: database is required")
	}
	if redisClient == nil {
		return nil, errors.New("server: redis is required for sessions")
	}
	if mediaSvc == nil {
		return nil, errors.New("server: media service is required")
	}

	var reads []*gorm.DB
	if read != nil {
		reads = append(reads, read)
	}

	userRepo := repository.NewUserRepository(db, reads...)
	postRepo := repository.NewPostRepository(db, reads...)
	reactionRepo := repository.NewReactionRepository(db, reads...)
	commentRepo := repository.NewCommentRepository(db, reads...)
	friendRepo := repository.NewFriendRepository(db, reads...)
	storyRepo := repository.NewStoryRepository(db, reads...)
	notificationRepo := repository.NewNotificationRepository(db, reads...)

	sessions := session.NewStore(redisClient, cfg.SessionSecret, cfg.SessionTTL())
	notifier := notifications.NewNotifier(redisClient)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("fbclone-api"),
		sessions:       sessions,
		media:          mediaSvc,
		notifier:       notifier,
		hub:            notifications.NewHub(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	s.userService = service.NewUserService(userRepo, sessions, session.NewResetTokens(redisClient), mediaSvc, cfg.FrontendURL)
	s.postService = service.NewPostService(postRepo, userRepo, mediaSvc)
	s.reactionService = service.NewReactionService(reactionRepo)
	s.commentService = service.NewCommentService(commentRepo, postRepo, mediaSvc)
	s.friendService = service.NewFriendService(friendRepo, userRepo, mediaSvc)
	s.storyService = service.NewStoryService(storyRepo, mediaSvc)
	s.notificationService = service.NewNotificationService(notificationRepo, userRepo, notifier, mediaSvc)

	return s, nil
}

// NewApp builds the fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "fbclone API",
		BodyLimit: int(s.media.MaxUploadSizeBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New(helmet.Config{
		// Media is fetched cross-origin by the web client.
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = s.config.FrontendURL
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	if _, ok := s.media.Storage().(*storage.LocalStorage); ok {
		app.Get(storage.LocalRoute+"*", s.ServeMedia)
	}

	authRequired := middleware.AuthRequired(s.sessions, s.config.SessionCookie)
	optionalAuth := middleware.OptionalAuth(s.sessions, s.config.SessionCookie)
	authLimit := middleware.RateLimit(s.redis, s.config.RateLimitAuthPerMinute, time.Minute, "auth")

	api := app.Group("/api")
	api.Get("/feature-flags", optionalAuth, s.GetFeatureFlags)

	auth := api.Group("/auth")
	auth.Post("/register", authLimit, s.Register)
	auth.Post("/login", authLimit, s.Login)
	auth.Post("/logout", authRequired, s.Logout)
	auth.Post("/forgot-password", authLimit, s.ForgotPassword)
	auth.Post("/change-password", authLimit, s.ChangePassword)
	auth.Get("/me", optionalAuth, s.Me)

	// Specific /users routes before generic /:id
	users := api.Group("/users")
	users.Get("/", optionalAuth, s.GetUsers)
	users.Get("/search", authRequired, s.SearchUsers)
	users.Put("/me/:kind", authRequired, s.UploadUserImage)
	users.Get("/:id/friend-count", s.GetFriendCount)
	users.Get("/:id", optionalAuth, s.GetUser)

	posts := api.Group("/posts")
	posts.Get("/", optionalAuth, s.GetPosts)
	posts.Post("/", authRequired, s.CreatePost)
	posts.Post("/:id/react", authRequired, s.ReactToPost)
	posts.Get("/:id/reaction", authRequired, s.GetMyReaction)
	posts.Get("/:id/reactions", s.GetReactionCounts)
	posts.Get("/:id/comments/count", s.GetCommentCount)
	posts.Get("/:id/comments", optionalAuth, s.GetComments)
	posts.Post("/:id/comments", authRequired, s.CreateComment)
	posts.Get("/:id", optionalAuth, s.GetPost)
	posts.Put("/:id", authRequired, s.UpdatePost)
	posts.Delete("/:id", authRequired, s.DeletePost)

	api.Get("/reactions", authRequired, s.GetReactions)

	// Specific /friends routes before generic /:userId
	friends := api.Group("/friends", authRequired)
	friends.Get("/", s.GetFriendRequests)
	friends.Get("/incoming", s.GetIncomingFriendRequests)
	friends.Get("/suggestions", s.GetSuggestedFriends)
	friends.Get("/tags", s.GetFriendTags)
	friends.Get("/:userId/mutual", s.GetMutualFriendsCount)
	friends.Put("/:userId/accept", s.AcceptFriendRequest)
	friends.Get("/:userId", s.GetFriendRequest)
	friends.Post("/:userId", s.SendFriendRequest)
	friends.Delete("/:userId", s.RemoveFriendRequest)

	stories := api.Group("/stories", authRequired)
	stories.Get("/recent", s.GetRecentStories)
	stories.Post("/", s.CreateStory)

	notes := api.Group("/notifications", authRequired)
	notes.Get("/", s.GetNotifications)
	notes.Get("/unread-count", s.GetUnreadNotificationsCount)
	notes.Post("/", s.CreateNotification)
	notes.Put("/read", s.MarkNotificationsRead)

	ws := api.Group("/ws", authRequired)
	ws.Get("/notifications", s.requireFlag(featureflags.WSNotifications), s.WebsocketUpgrade, s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		middleware.Logger.WarnContext(ctx, "readiness: database ping failed", "error", err)
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if err := s.redis.Ping(ctx).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "readiness: redis ping failed", "error", err)
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires the hub to Redis and serves until the listener closes.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	go func() {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("hub wiring stopped", "hub", s.hub.Name(), "error", err)
		}
	}()

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down hub", "hub", s.hub.Name(), "error", err)
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if rerr := s.redis.Close(); rerr != nil {
		middleware.Logger.Error("error closing redis", "error", rerr)
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
