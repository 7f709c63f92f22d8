// Command api runs the HTTP server with an embedded ingestion worker.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dmoraes/driver-finance/internal/api/handlers"
	"github.com/dmoraes/driver-finance/internal/api/middleware"
	"github.com/dmoraes/driver-finance/internal/auth"
	"github.com/dmoraes/driver-finance/internal/blobstore"
	"github.com/dmoraes/driver-finance/internal/config"
	"github.com/dmoraes/driver-finance/internal/jobs/inmemory"
	"github.com/dmoraes/driver-finance/internal/logger"
	"github.com/dmoraes/driver-finance/internal/statement"
	"github.com/dmoraes/driver-finance/internal/store"
	"github.com/dmoraes/driver-finance/internal/worker"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	blobs, err := blobstore.New(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create upload directory")
	}

	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.TokenExpiry)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize auth")
	}

	// Job infrastructure and the embedded worker.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, cfg.QueueWorkers, jobStore)

	pipe := statement.New(statement.DefaultConfig())
	ingestWorker := worker.New(db, blobs, pipe, log)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()

	go func() {
		log.Info().Int("workers", cfg.QueueWorkers).Msg("Starting ingestion workers")
		if err := jobQueue.Start(workerCtx, ingestWorker.Handle); err != nil {
			log.Error().Err(err).Msg("Ingestion workers stopped with error")
		}
	}()

	// Handlers.
	authHandler := handlers.NewAuthHandler(db, authManager, log)
	transactionsHandler := handlers.NewTransactionsHandler(db, log)
	categoriesHandler := handlers.NewCategoriesHandler(db, log)
	statementsHandler := handlers.NewStatementsHandler(db, blobs, jobQueue, cfg.MaxUploadBytes, log)
	documentsHandler := handlers.NewDocumentsHandler(db, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)
	workSessionsHandler := handlers.NewWorkSessionsHandler(db, log)
	goalsHandler := handlers.NewGoalsHandler(db, log)
	profileHandler := handlers.NewProfileHandler(db, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/register", methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: authHandler.Register,
	}))
	mux.HandleFunc("/api/auth/token", methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: authHandler.Token,
	}))
	mux.HandleFunc("/api/auth/user", methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: authHandler.CurrentUser,
	}))

	mux.HandleFunc("/api/transactions", methodHandler(map[string]http.HandlerFunc{
		http.MethodGet:  transactionsHandler.List,
		http.MethodPost: transactionsHandler.Create,
	}))
	mux.HandleFunc("/api/transactions/date-range", methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: transactionsHandler.ListByDateRange,
	}))

	mux.HandleFunc("/api/categories", methodHandler(map[string]http.HandlerFunc{
		http.MethodGet:  categoriesHandler.List,
		http.MethodPost: categoriesHandler.Create,
	}))

	mux.HandleFunc("/api/statements", methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: statementsHandler.Upload,
	}))

	mux.HandleFunc("/api/documents", methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: documentsHandler.List,
	}))
	mux.HandleFunc("/api/documents/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		documentID := strings.TrimPrefix(r.URL.Path, "/api/documents/")
		if documentID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Document ID is required")
			return
		}
		documentsHandler.Get(w, r, documentID)
	})

	mux.HandleFunc("/api/jobs", methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: jobsHandler.List,
	}))
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		jobsHandler.Get(w, r, jobID)
	})

	mux.HandleFunc("/api/work-sessions", methodHandler(map[string]http.HandlerFunc{
		http.MethodGet:  workSessionsHandler.List,
		http.MethodPost: workSessionsHandler.Create,
	}))

	mux.HandleFunc("/api/goals", methodHandler(map[string]http.HandlerFunc{
		http.MethodGet:  goalsHandler.List,
		http.MethodPost: goalsHandler.Create,
	}))

	mux.HandleFunc("/api/profile/comprehensive", methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: profileHandler.Comprehensive,
	}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(authManager, db)(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

// methodHandler dispatches by HTTP method, answering 405 for anything not
// registered.
func methodHandler(routes map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.Method]; ok {
			h(w, r)
			return
		}
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
