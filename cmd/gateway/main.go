package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/studyarc/studyarc-api/internal/api/http"
	auth "github.com/studyarc/studyarc-api/internal/auth/middleware"
	"github.com/studyarc/studyarc-api/internal/bank"
	"github.com/studyarc/studyarc-api/internal/config"
	"github.com/studyarc/studyarc-api/internal/db"
	"github.com/studyarc/studyarc-api/internal/eventlog"
	"github.com/studyarc/studyarc-api/internal/progress"
	"github.com/studyarc/studyarc-api/internal/quiz"
	"github.com/studyarc/studyarc-api/internal/rbac"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// --- Engine ---
	sessions := quiz.NewSQLStore(dbh)
	progStore := progress.NewSQLStore(dbh)
	questionBank := bank.NewSQLBank(dbh)
	events := eventlog.NewRepo(dbh)
	engine := quiz.NewEngine(sessions, questionBank, progStore,
		quiz.WithEvents(events),
		quiz.WithRand(rand.New(rand.NewSource(time.Now().UnixNano()))),
	)

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	}

	// Protected API (JWT → subject/role in context → RBAC → rate limit)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(api.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

		pr.With(rbac.Require("session:create")).
			Post("/sessions", api.CreateSessionHandler(engine))
		pr.With(rbac.Require("session:view-own")).
			Get("/sessions", api.ListSessionsHandler(engine))
		pr.With(rbac.Require("session:view-own")).
			Get("/sessions/{sessionID}", api.GetSessionHandler(engine))
		pr.With(rbac.Require("session:view-own")).
			Get("/sessions/{sessionID}/summary", api.SessionSummaryHandler(engine))

		pr.With(rbac.Require("session:interact")).
			Post("/sessions/{sessionID}/start", api.StartSessionHandler(engine))
		pr.With(rbac.Require("session:interact")).
			Get("/sessions/{sessionID}/question", api.CurrentSlotHandler(engine))
		pr.With(rbac.Require("session:interact")).
			Post("/sessions/{sessionID}/answer", api.SubmitAnswerHandler(engine))
		pr.With(rbac.Require("session:interact")).
			Post("/sessions/{sessionID}/skip", api.SkipSlotHandler(engine))
		pr.With(rbac.Require("session:interact")).
			Post("/sessions/{sessionID}/pause", api.PauseSessionHandler(engine))
		pr.With(rbac.Require("session:interact")).
			Post("/sessions/{sessionID}/resume", api.ResumeSessionHandler(engine))
		pr.With(rbac.Require("session:interact")).
			Post("/sessions/{sessionID}/end", api.EndSessionHandler(engine))

		pr.With(rbac.Require("progress:view-own")).
			Get("/progress", api.GetProgressHandler(progStore))

		parentAPI := &api.ParentAPI{Engine: engine, Progress: progStore, DB: dbh}
		pr.With(rbac.Require("session:view-child")).
			Get("/children/{childID}/sessions", parentAPI.ListChildSessions)
		pr.With(rbac.Require("session:view-child")).
			Get("/children/{childID}/sessions/{sessionID}/summary", parentAPI.ChildSessionSummary)
		pr.With(rbac.Require("progress:view-child")).
			Get("/children/{childID}/progress", parentAPI.ChildProgress)

		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
