package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"evoting-portal/internal/config"
	"evoting-portal/internal/container"
	"evoting-portal/internal/middleware"
	"evoting-portal/internal/session"
	"evoting-portal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	app, err := container.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}

	app.Results.StartElectionMonitor()

	router := buildRouter(app)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithFields(map[string]interface{}{
			"port":        cfg.Port,
			"environment": cfg.Environment,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	if err := app.Close(); err != nil {
		log.WithError(err).Error("Resource cleanup failed")
	}

	log.Info("Server stopped")
}

func buildRouter(app *container.Container) chi.Router {
	guard := app.Guard

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(app.Config.AllowedOrigins)))
	r.Use(guard.Resolve)

	r.Get("/health", app.HealthHandler.Health)

	// Entry routes, closed to anyone already logged in
	r.Group(func(r chi.Router) {
		r.Use(guard.RedirectAuthenticated)
		r.Post("/login", app.AuthHandler.Login)
		r.Post("/register", app.AuthHandler.Register)
		r.Post("/reset-password", app.AuthHandler.RequestPasswordReset)
		r.Post("/reset-password/confirm", app.AuthHandler.ResetPassword)
	})

	// Everything below requires a session
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireAuth)

		r.Get("/", app.DashboardHandler.Home)
		r.Post("/logout", app.AuthHandler.Logout)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", app.AuthHandler.Profile)
			r.Post("/change-password", app.AuthHandler.ChangePassword)
			r.Put("/theme", app.AuthHandler.SetTheme)
		})

		r.Route("/vote", func(r chi.Router) {
			r.Use(guard.RequireRole(func(s *session.Session) bool { return s.IsVoter() }))
			r.Get("/", app.VotingHandler.State)
			r.Post("/select", app.VotingHandler.SelectElection)
			r.Post("/preview", app.VotingHandler.PreviewCandidate)
			r.Post("/confirm-candidate", app.VotingHandler.ConfirmCandidate)
			r.Post("/clear-candidate", app.VotingHandler.ClearCandidate)
			r.Post("/proceed", app.VotingHandler.Proceed)
			r.Post("/back", app.VotingHandler.Back)
			r.Post("/cast", app.VotingHandler.Cast)
			r.Post("/reset", app.VotingHandler.Reset)
			r.Get("/history", app.VotingHandler.History)
			r.Post("/verify", app.VotingHandler.VerifyVote)
		})

		r.Route("/results", func(r chi.Router) {
			r.Get("/", app.ResultsHandler.Elections)
			r.Get("/{electionID}/live", app.ResultsHandler.Live)
			r.Get("/{electionID}/final", app.ResultsHandler.Final)
		})

		r.Post("/report-incident", app.IncidentHandler.Create)

		r.Route("/incidents", func(r chi.Router) {
			r.Get("/", app.IncidentHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(guard.RequireRole(func(s *session.Session) bool { return s.IsAdmin() || s.IsInec() }))
				r.Get("/stats", app.IncidentHandler.Stats)
				r.Post("/{reportID}/assign", app.IncidentHandler.Assign)
				r.Post("/{reportID}/status", app.IncidentHandler.UpdateStatus)
				r.Delete("/{reportID}", app.IncidentHandler.Delete)
			})

			r.Get("/{reportID}", app.IncidentHandler.Get)
		})

		r.Route("/manage-voters", func(r chi.Router) {
			r.Use(guard.RequireRole(func(s *session.Session) bool { return s.IsAdmin() || s.IsInec() }))
			r.Get("/", app.VoterHandler.List)
			r.Get("/{voterID}", app.VoterHandler.Detail)
			r.Post("/{voterID}/verify", app.VoterHandler.Verify)
			r.Post("/{voterID}/cancel", app.VoterHandler.Cancel)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(guard.RequireRole(func(s *session.Session) bool { return s.IsAdmin() }))
			r.Get("/", app.DashboardHandler.AdminStats)

			r.Route("/elections", func(r chi.Router) {
				r.Get("/", app.AdminHandler.Elections)
				r.Post("/", app.AdminHandler.CreateElection)
				r.Post("/check-status", app.AdminHandler.CheckStatus)
				r.Put("/{electionID}", app.AdminHandler.UpdateElection)
				r.Delete("/{electionID}", app.AdminHandler.DeleteElection)
				r.Post("/{electionID}/start", app.AdminHandler.StartElection)
				r.Post("/{electionID}/end", app.AdminHandler.EndElection)
				r.Get("/{electionID}/candidates", app.AdminHandler.Candidates)
				r.Post("/{electionID}/candidates", app.AdminHandler.CreateCandidate)
			})

			r.Put("/candidates/{candidateID}", app.AdminHandler.UpdateCandidate)
			r.Delete("/candidates/{candidateID}", app.AdminHandler.DeleteCandidate)

			r.Post("/officials/inec", app.AdminHandler.CreateInecOfficial)
			r.Group(func(r chi.Router) {
				r.Use(guard.RequireRole(func(s *session.Session) bool { return s.IsSuperuser() }))
				r.Post("/officials/admin", app.AdminHandler.CreateAdmin)
			})
		})
	})

	// Unknown paths land on the dashboard, which sends anonymous visitors
	// on to login.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})

	return r
}
