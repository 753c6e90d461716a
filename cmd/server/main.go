// Package main runs the ConventionHub HTTP server.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"conventionhub/config"
	_ "conventionhub/docs"
	"conventionhub/internal/adapters/auth"
	"conventionhub/internal/adapters/email"
	delivery "conventionhub/internal/delivery/http"
	"conventionhub/internal/delivery/http/controllers"
	"conventionhub/internal/delivery/http/middleware"
	"conventionhub/internal/repository/postgres"
	"conventionhub/internal/services"
)

// @title ConventionHub API
// @version 1.0
// @description Conference membership, room, and event scheduling API.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}
	if err := postgres.Migrate(context.Background(), db); err != nil {
		logger.Error("migrate", "err", err)
		os.Exit(1)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Email.SESAccessKeyID,
			SecretAccessKey:    cfg.Email.SESSecretKey,
			InsecureSkipVerify: cfg.Email.SESSkipTLSCheck,
		},
	})
	if err != nil {
		logger.Error("mailer", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	confRepo := postgres.NewConferenceRepository(db)
	directory := postgres.NewUserDirectory(userRepo)

	hasher := auth.NewBcryptHasher(0)
	tokens := auth.NewJWTCodec(cfg.JWTSecret)

	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer())
	userSvc := services.NewUserService(userRepo, hasher, tokens, cfg.TokenExpiry, emailSvc)
	confSvc := services.NewConferenceService(confRepo, directory, emailSvc, logger, 10*time.Second)

	mux := delivery.NewRouter(
		logger,
		tokens,
		controllers.NewAuthController(logger, userSvc),
		controllers.NewConferenceController(logger, confSvc),
		controllers.NewRoomController(logger, confSvc),
		controllers.NewEventController(logger, confSvc),
	)

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "err", err)
	}
	logger.Info("server stopped")
}
