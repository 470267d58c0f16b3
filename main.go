package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookhaven/backend/config"
	"github.com/bookhaven/backend/handlers"
	"github.com/bookhaven/backend/middleware"
	"github.com/bookhaven/backend/service"
	"github.com/bookhaven/backend/store"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("mongodb")
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			logrus.WithError(err).Warn("mongodb disconnect")
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		logrus.WithError(err).Fatal("mongodb indexes")
	}

	var s3Service *service.S3Service
	if cfg.S3Bucket != "" {
		s3Service, err = service.NewS3Service(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			logrus.WithError(err).Fatal("s3")
		}
	} else {
		logrus.Warn("AWS_S3_BUCKET not set; uploads will fail")
	}

	notifier := service.NewProcessorClient(cfg.ProcessorURL, cfg.ProcessorAPIKey, logrus.StandardLogger())

	authHandler := &handlers.AuthHandler{
		DB:           db,
		JWTSecret:    cfg.JWTSecret,
		DefaultEmail: cfg.AdminEmail,
		DefaultPass:  cfg.AdminPass,
	}
	uploadHandler := &handlers.UploadHandler{
		DB:       db,
		Notifier: notifier,
		MaxBytes: cfg.MaxUploadMB * 1024 * 1024,
	}
	if s3Service != nil {
		uploadHandler.S3 = s3Service
	}
	booksHandler := &handlers.BooksHandler{DB: db, S3: s3Service}
	summaryHandler := &handlers.SummaryHandler{DB: db, ProcessorAPIKey: cfg.ProcessorAPIKey}
	authorsHandler := &handlers.AuthorsHandler{DB: db}
	publicationsHandler := &handlers.PublicationsHandler{DB: db}
	usersHandler := &handlers.UsersHandler{DB: db}
	settingsHandler := &handlers.SettingsHandler{DB: db}

	r := chi.NewRouter()
	r.Use(middleware.AllowAll())
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Metrics())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"welcome to bookhaven."}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Get("/public/site/settings", settingsHandler.Get)

		// Reader surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Get("/books", booksHandler.List)
			r.Get("/books/{id}", booksHandler.Get)
			r.Get("/books/{id}/download", booksHandler.Download)
		})

		r.Route("/admin", func(r chi.Router) {
			// Dual-auth: processor API key or admin session. The policy
			// package decides; OptionalAuth just resolves a session when
			// one is presented.
			r.Group(func(r chi.Router) {
				r.Use(middleware.OptionalAuth(cfg.JWTSecret))
				r.Patch("/books/{id}/summary", summaryHandler.UpdateSummary)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWTSecret))
				r.Use(middleware.RequireAdmin())

				r.Post("/books", uploadHandler.Upload)
				r.Delete("/books/{id}", booksHandler.Delete)
				r.Patch("/books/{id}/visibility", booksHandler.PatchVisibility)

				r.Get("/authors", authorsHandler.List)
				r.Post("/authors", authorsHandler.Create)
				r.Get("/authors/{id}/books", authorsHandler.Books)

				r.Post("/publications", publicationsHandler.Create)
				r.Get("/publications/{id}/readers", publicationsHandler.Readers)

				r.Get("/users", usersHandler.ListUsers)
				r.Post("/users", usersHandler.CreateUser)
				r.Patch("/users/{id}", usersHandler.UpdateUser)
				r.Delete("/users/{id}", usersHandler.DeleteUser)

				r.Patch("/site/settings", settingsHandler.Update)
			})
		})
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logrus.WithField("port", cfg.Port).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("shutdown")
	}
}
