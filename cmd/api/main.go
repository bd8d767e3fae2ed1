// @title           PodPlanner API
// @version         1.0
// @description     Plan podcast episodes, collect topics and coordinate hosts.
// @host            localhost:8080
// @BasePath        /api
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/fkhayef/podplanner/docs"
	"github.com/fkhayef/podplanner/internal/config"
	"github.com/fkhayef/podplanner/internal/database"
	"github.com/fkhayef/podplanner/internal/episode"
	"github.com/fkhayef/podplanner/internal/episodetopic"
	"github.com/fkhayef/podplanner/internal/group"
	"github.com/fkhayef/podplanner/internal/invitation"
	"github.com/fkhayef/podplanner/internal/logger"
	"github.com/fkhayef/podplanner/internal/note"
	"github.com/fkhayef/podplanner/internal/notification"
	"github.com/fkhayef/podplanner/internal/passwordreset"
	"github.com/fkhayef/podplanner/internal/session"
	"github.com/fkhayef/podplanner/internal/topic"
	"github.com/fkhayef/podplanner/internal/user"
	mw "github.com/fkhayef/podplanner/pkg/middleware"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file
	envErr := godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	if envErr != nil {
		log.Info("No .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	created, err := database.Migrate(ctx, db)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("Connected to database", zap.Bool("schema_created", created))

	redisClient, err := session.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	sessions := session.NewManager(
		session.NewStore(redisClient, cfg.Session.TTL),
		session.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure},
	)
	tx := database.NewTxManager(db)

	// Outbound mail
	dispatcher := notification.NewDispatcher(notification.NewSender(cfg.SMTP, log), cfg.SMTP.Timeout, log)

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService, sessions, log)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, tx, log)
	guard := group.NewGuard(groupRepo)
	groupHandler := group.NewHandler(groupService, guard, log)

	activity := notification.NewService(groupService, dispatcher, log)

	// Invitation feature
	invitationService := invitation.NewService(invitation.NewRepository(db), groupService, userService, tx, dispatcher, cfg.BaseURL, log)
	invitationHandler := invitation.NewHandler(invitationService, guard, sessions, log)

	// Password reset feature
	resetService := passwordreset.NewService(passwordreset.NewRepository(db), userService, tx, dispatcher, cfg.BaseURL, log)
	resetHandler := passwordreset.NewHandler(resetService, log)

	// Topic vault
	topicService := topic.NewService(topic.NewRepository(db), log)
	topicHandler := topic.NewHandler(topicService, guard, log)

	// Episodes
	episodeService := episode.NewService(episode.NewRepository(db), activity, log)
	episodeHandler := episode.NewHandler(episodeService, guard, log)

	// Episode running order
	episodeTopicService := episodetopic.NewService(episodetopic.NewRepository(db), episodeService, topicService, tx, activity, log)
	episodeTopicHandler := episodetopic.NewHandler(episodeTopicService, guard, log)

	// Topic notes
	noteService := note.NewService(note.NewRepository(db), topicService, log)
	noteHandler := note.NewHandler(noteService, guard, log)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(mw.RequestLogger(log))
	r.Use(mw.LoadSession(sessions, log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		userHandler.RegisterRoutes(r)
		resetHandler.RegisterRoutes(r)
		invitationHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireSession)

			groups := groupHandler.Routes()
			groups.Mount("/{id}/episodes", episodeHandler.GroupRoutes())
			groups.Mount("/{id}/topics", topicHandler.GroupRoutes())
			groups.Mount("/{id}/invitations", invitationHandler.InvitationRoutes())
			groups.Mount("/{id}/invite-codes", invitationHandler.InviteCodeRoutes())
			r.Mount("/groups", groups)

			episodes := episodeHandler.Routes()
			episodes.Mount("/{id}/topics", episodeTopicHandler.Routes())
			r.Mount("/episodes", episodes)

			topics := topicHandler.Routes()
			topics.Mount("/{id}/comments", noteHandler.Routes())
			r.Mount("/topics", topics)
		})
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server", zap.Error(err))
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		log.Warn("pending notifications dropped", zap.Error(err))
	}
	return nil
}
