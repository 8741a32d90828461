// Package bootstrap wires configuration into repositories, services and the
// HTTP router. Every binary builds its dependencies through Build.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-scorer/internal/analyses"
	googleauth "resume-scorer/internal/auth"
	"resume-scorer/internal/files"
	"resume-scorer/internal/llm"
	"resume-scorer/internal/llm/gemini"
	"resume-scorer/internal/llm/openai"
	"resume-scorer/internal/scoring"
	"resume-scorer/internal/services/health"
	"resume-scorer/internal/shared/config"
	"resume-scorer/internal/shared/server"
	"resume-scorer/internal/shared/server/middleware"
	"resume-scorer/internal/shared/storage/db"
	"resume-scorer/internal/shared/storage/object"
	"resume-scorer/internal/shared/storage/object/httpstore"
	localstore "resume-scorer/internal/shared/storage/object/local"
	s3store "resume-scorer/internal/shared/storage/object/s3"
	"resume-scorer/internal/shared/telemetry"
	"resume-scorer/internal/suggestions"
	"resume-scorer/internal/uploads"
)

// App holds the wired dependencies of one process.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.Store
	Uploads  *s3store.Store
	Provider llm.Provider
	Scorer   *scoring.Scorer

	AnalysesService    *analyses.Service
	FilesService       *files.Service
	SuggestionsService *suggestions.Service
}

// Build prepares every dependency and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, uploadsStore, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	scorer := scoring.NewScorer(provider)
	if cfg.ScoringTemperature > 0 {
		scorer.Temperature = cfg.ScoringTemperature
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Uploads:  uploadsStore,
		Provider: provider,
		Scorer:   scorer,
	}
	app.Router = buildRouter(app)
	return app, nil
}

// Close releases the database pool. Shared Lambda pools are left open.
func (a *App) Close() error {
	if a.DB == nil || db.IsLambdaRuntime() {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultOptions(db.ProfileLambda)))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultOptions(db.ProfileServer)))
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

// buildStore registers a blob store per location scheme. The S3 store is
// also the upload presigner when a bucket is configured.
func buildStore(ctx context.Context, cfg config.Config) (object.Store, *s3store.Store, error) {
	mux := object.NewMux()
	mux.Handle(httpstore.New(), "http", "https")
	if isDevLike(cfg.Env) {
		mux.Handle(localstore.New(cfg.LocalStoreDir), "file")
	}

	if strings.TrimSpace(cfg.UploadsBucket) == "" {
		return mux, nil, nil
	}
	s3, err := s3store.New(ctx, cfg.AWSRegion, cfg.UploadsBucket, cfg.UploadsPrefix)
	if err != nil {
		return nil, nil, fmt.Errorf("s3 store: %w", err)
	}
	mux.Handle(s3, "s3")
	return mux, s3, nil
}

// NewProvider picks the model provider. Missing credentials fall back to
// the placeholder, which fails every scoring call with a clear error.
func NewProvider(ctx context.Context, cfg config.Config) (llm.Provider, error) {
	var (
		provider llm.Provider
		err      error
		key      string
	)
	switch cfg.LLMProvider {
	case "openai":
		key = cfg.OpenAIAPIKey
		if key != "" {
			provider, err = openai.New(key, cfg.LLMModel, cfg.OpenAIBaseURL)
		}
	case "gemini":
		key = cfg.GeminiAPIKey
		if key != "" {
			provider, err = gemini.New(ctx, key, cfg.LLMModel)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s provider: %w", cfg.LLMProvider, err)
	}
	if provider == nil {
		telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"provider": cfg.LLMProvider})
		return llm.Placeholder{}, nil
	}
	telemetry.Info("bootstrap.llm_provider", map[string]any{"provider": provider.Name(), "model": cfg.LLMModel})
	return provider, nil
}

func buildRouter(app *App) *gin.Engine {
	cfg := app.Config

	var (
		analysisRepo analyses.Repo
		fileRepo     files.Repo
	)
	if app.DB != nil {
		analysisRepo = &analyses.PGRepo{DB: app.DB}
		fileRepo = &files.PGRepo{DB: app.DB}
	} else {
		analysisRepo = analyses.NewMemoryRepo()
		fileRepo = files.NewMemoryRepo()
	}

	app.AnalysesService = &analyses.Service{Repo: analysisRepo, Scorer: app.Scorer}
	app.FilesService = &files.Service{
		Repo:  fileRepo,
		Store: app.Store,
		Locations: files.LocationPolicy{
			Bucket:    cfg.UploadsBucket,
			Prefix:    cfg.UploadsPrefix,
			Hosts:     cfg.BlobHosts,
			AllowFile: isDevLike(cfg.Env),
		},
	}
	app.SuggestionsService = &suggestions.Service{
		Analyses: app.AnalysesService,
		Files:    app.FilesService,
		Scorer:   app.Scorer,
	}

	var pinger health.Pinger
	if app.DB != nil {
		pinger = app.DB
	}
	healthSvc := health.NewService(pinger, app.Provider.Name())

	limiter := middleware.NewRateLimiter(nil)
	rule := middleware.RateLimitRule{Rate: cfg.ScoreRateLimit, Burst: cfg.ScoreRateBurst}
	scoreLimit := middleware.RateLimit(limiter, "score", rule)
	optimizeLimit := middleware.RateLimit(limiter, "optimize", rule)

	var presigner uploads.Presigner
	if app.Uploads != nil {
		presigner = app.Uploads
	}

	return server.NewRouter(server.RouterDeps{
		Config: cfg,
		Handlers: []server.RouteRegistrar{
			googleauth.NewGoogleService(googleauth.GoogleConfig{
				ClientID:      cfg.GoogleClientID,
				ClientSecret:  cfg.GoogleClientSecret,
				RedirectURL:   cfg.GoogleRedirectURL,
				UIRedirectURL: cfg.UIRedirectURL,
			}),
			analyses.NewHandler(app.AnalysesService, scoreLimit),
			suggestions.NewHandler(app.SuggestionsService, optimizeLimit),
			files.NewHandler(app.FilesService),
			uploads.NewHandler(presigner),
		},
		Health: func(ctx context.Context) any {
			return healthSvc.Status(ctx)
		},
	})
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
