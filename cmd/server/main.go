package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alextreichler/portfolio/internal/config"
	"github.com/alextreichler/portfolio/internal/contact"
	"github.com/alextreichler/portfolio/internal/emailjs"
	"github.com/alextreichler/portfolio/internal/handlers"
	"github.com/alextreichler/portfolio/internal/projects"
	"github.com/alextreichler/portfolio/internal/realtime"
	"github.com/alextreichler/portfolio/internal/store"
	"github.com/alextreichler/portfolio/web"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Using TextHandler for console readability.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// 2. Init DB
	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	broker := realtime.NewBroker()
	db.Changes = broker

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	view := projects.NewView(db, broker)
	if err := view.Refresh(ctx); err != nil {
		// The page falls back to placeholder cards until the next change.
		slog.Warn("Initial project load failed", "error", err)
	}

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 4. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load(web.FS, "templates"); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	mailer := emailjs.NewClient(cfg.EmailJSEndpoint, cfg.EmailJSServiceID, cfg.EmailJSTemplateID, cfg.EmailJSPublicKey)

	// 5. Setup Handlers
	homeHandler := &handlers.HomeHandler{
		Projects:         view,
		SiteConfig:       db,
		Templates:        templates,
		SessionStore:     sessionStore,
		CarouselInterval: cfg.CarouselInterval,
	}
	adminHandler := &handlers.AdminHandler{
		Password:     cfg.AdminPassword,
		Projects:     view,
		SiteConfig:   db,
		SessionStore: sessionStore,
		Templates:    templates,
	}
	contactHandler := &handlers.ContactHandler{
		Flow:         contact.NewFlow(mailer, db),
		SessionStore: sessionStore,
		Home:         homeHandler,
	}
	themeHandler := &handlers.ThemeHandler{CookieSecure: cfg.CookieSecure}
	realtimeHandler := &handlers.RealtimeHandler{
		Feed:     broker,
		Projects: view,
		Interval: cfg.CarouselInterval,
	}

	mux := http.NewServeMux()

	// Static Files
	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		slog.Error("Failed to open static files", "error", err)
		os.Exit(1)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static", http.FileServer(http.FS(static))))

	// Public Routes
	mux.HandleFunc("GET /", homeHandler.Index)
	mux.HandleFunc("GET /api/projects", homeHandler.ProjectsJSON)
	mux.HandleFunc("POST /contact", contactHandler.Submit)
	mux.HandleFunc("POST /theme", themeHandler.Toggle)
	mux.HandleFunc("GET /realtime", realtimeHandler.Serve)

	// Project manager
	mux.HandleFunc("GET /admin", adminHandler.Panel)
	mux.HandleFunc("POST /admin/login", adminHandler.Login)
	mux.HandleFunc("POST /admin/close", adminHandler.Close)
	mux.HandleFunc("GET /admin/projects", adminHandler.AuthMiddleware(adminHandler.ProjectsJSON))
	mux.HandleFunc("POST /admin/projects", adminHandler.AuthMiddleware(adminHandler.CreateProject))
	mux.HandleFunc("POST /admin/projects/delete", adminHandler.AuthMiddleware(adminHandler.DeleteProject))
	mux.HandleFunc("POST /admin/hero", adminHandler.AuthMiddleware(adminHandler.SetHeroImage))

	// 6. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Security Headers -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			CSRF(mux),
		),
	)

	// 7. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		view.Watch(gctx, func() {
			slog.Debug("Project cache refreshed", "count", len(view.Projects()))
		})
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
