package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/placard/placard/pkg/signage/api"
	"github.com/placard/placard/pkg/signage/config"
)

// ServerEnv holds server-level settings read directly from the environment.
// Service configuration (database, storage, content defaults) is loaded
// separately through config.WithEnv.
type ServerEnv struct {
	JWTSecret string `env:"JWT_SECRET" env-default:""`
}

func main() {
	var env ServerEnv
	if err := cleanenv.ReadEnv(&env); err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}

	serverConfig, err := config.Load(config.WithEnv(""))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	svc, err := serverConfig.BuildService(context.Background())
	if err != nil {
		log.Fatalf("Failed to build service: %v", err)
	}

	// With a JWT secret configured, actor identity comes from the token's
	// "sub" claim; without one, the X-User-ID header is trusted (dev mode).
	var tokenAuth *jwtauth.JWTAuth
	if env.JWTSecret != "" {
		tokenAuth = jwtauth.New("HS256", []byte(env.JWTSecret), nil)
	}

	contentHandler := api.NewContentHandler(svc, serverConfig.BrowsePath)

	// Set up router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	if tokenAuth != nil {
		r.Use(jwtauth.Verifier(tokenAuth))
	}
	r.Use(api.ActorResolver(tokenAuth))

	// Mount routes
	r.Mount("/contents", contentHandler.Routes())

	// Add a simple health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]string{"status": "ok"})
	})

	// Create server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverConfig.Port),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Placard server starting on port %s (environment: %s)", serverConfig.Port, serverConfig.Environment)
		log.Printf("Repository: %s, media storage: %s, default kind: %s",
			serverConfig.DatabaseType, serverConfig.StorageType, serverConfig.DefaultKind)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Doesn't block if no connections, but will otherwise wait
	// until the timeout deadline
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
