package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/joho/godotenv"

	"github.com/juliusiqbal/ai-img-gen/internal/adapter/repo"
	"github.com/juliusiqbal/ai-img-gen/internal/generation"
	"github.com/juliusiqbal/ai-img-gen/internal/http/handlers"
	"github.com/juliusiqbal/ai-img-gen/internal/http/httpapi"
	"github.com/juliusiqbal/ai-img-gen/internal/infra"
	"github.com/juliusiqbal/ai-img-gen/internal/layout"
	"github.com/juliusiqbal/ai-img-gen/internal/promptsynth"
	imageprovider "github.com/juliusiqbal/ai-img-gen/internal/providers/image"
	"github.com/juliusiqbal/ai-img-gen/internal/providers/openai"
	"github.com/juliusiqbal/ai-img-gen/internal/storage"
	"github.com/juliusiqbal/ai-img-gen/internal/vector"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	db := infra.NewSQLRunner(dbpool, logger)
	if err := repo.Migrate(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	store, files, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to initialise storage")
	}

	if !cfg.HasOpenAI() {
		logger.Warn().Msg("OPENAI_API_KEY is not set; only local composition will succeed")
	}
	client := openai.NewClient(openai.Options{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		Organization:   cfg.OpenAIOrg,
		ImageModel:     cfg.OpenAIImageModel,
		ChatModel:      cfg.OpenAIChatModel,
		VisionModel:    cfg.OpenAIVisionModel,
		Logger:         &logger,
		RequestTimeout: cfg.OpenAITimeout,
		MaxAttempts:    cfg.OpenAIMaxAttempts,
		OnWarning: func(reason, detail string) {
			logger.Warn().Str("reason", reason).Str("detail", detail).Msg("openai configuration adjusted")
		},
	})

	synth := promptsynth.New(promptsynth.Options{
		Model:    client,
		Interval: cfg.GenerationInterval,
		Logger:   logger,
		OnFallback: func(reason string, err error) {
			logger.Warn().Err(err).Str("reason", reason).Msg("prompt synthesis fell back")
		},
	})

	templates := repo.NewTemplateRepository(db)
	orchestrator := generation.New(generation.Options{
		Prompts:     synth,
		Images:      imageprovider.NewOpenAIGenerator(client),
		Describer:   client,
		Tracer:      vector.NewPotraceTracer(cfg.PotracePath, logger),
		Compositor:  layout.NewComposer(logger),
		Store:       store,
		Templates:   templates,
		Credentials: client,
		Interval:    cfg.GenerationInterval,
		Logger:      logger,
	})

	app := &handlers.App{
		Categories:     repo.NewCategoryRepository(db),
		Templates:      templates,
		Jobs:           repo.NewJobRepository(db),
		Store:          store,
		Generator:      orchestrator,
		Prompts:        synth,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Debug:          cfg.Debug,
	}

	routerOpts := httpapi.Options{
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}
	if files != nil {
		routerOpts.FilesPrefix = "/storage"
		routerOpts.Files = files
	}
	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, routerOpts))

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("storage", cfg.StorageDriver).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// newStore returns the blob store and, for the filesystem driver, the
// directory to serve under /storage.
func newStore(ctx context.Context, cfg *infra.Config) (storage.BlobStore, http.FileSystem, error) {
	if cfg.StorageDriver == infra.StorageDriverGCS {
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewGCSStore(client, cfg.GCSBucket, cfg.GCSPrefix, cfg.StorageBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
	store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		return nil, nil, err
	}
	return store, http.Dir(store.BasePath()), nil
}
