package main

import (
	"fmt"
	"log"

	"scanscore/internal/config"
	"scanscore/internal/eval"
	"scanscore/internal/extractor"
	"scanscore/internal/extractor/gemini"
	"scanscore/internal/extractor/openai"
	"scanscore/internal/groundtruth"
	"scanscore/internal/handler"
	"scanscore/internal/langmodel"
	"scanscore/internal/lexicon"
	"scanscore/internal/port"
	"scanscore/internal/repository/postgres"
	"scanscore/internal/router"
	"scanscore/internal/service"
	s3storage "scanscore/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	registerProviders()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	evalRepo := postgres.NewEvaluationRepo(db)

	// Ground truths come from a directory of JSON files when configured,
	// from the database otherwise.
	var gtStore port.GroundTruthStore
	if cfg.Eval.GroundTruthDir != "" {
		fileStore, err := groundtruth.NewFileStore(cfg.Eval.GroundTruthDir)
		if err != nil {
			return fmt.Errorf("failed to load ground truths: %w", err)
		}
		log.Printf("loaded %d ground truths from %s", fileStore.Len(), cfg.Eval.GroundTruthDir)
		gtStore = fileStore
	} else {
		gtStore = postgres.NewGroundTruthRepo(db)
	}

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize scoring components
	dict, err := newDictionary(&cfg.Eval)
	if err != nil {
		return fmt.Errorf("failed to load wordlist: %w", err)
	}
	lm, cleanup, err := newLanguageModel(&cfg.Eval)
	if err != nil {
		return fmt.Errorf("failed to initialize language model: %w", err)
	}
	defer cleanup()

	quality := eval.NewTextQualityScorer(dict, lm)
	comparator := eval.NewComparator()
	comparator.MaxErrorFraction = cfg.Eval.MaxErrorFraction
	evaluator := eval.NewEvaluator(gtStore, quality, comparator)

	// Initialize extraction chain
	chain, err := extractor.NewChain(&cfg.OCR)
	if err != nil {
		return fmt.Errorf("failed to initialize extraction chain: %w", err)
	}

	// Initialize services
	evalSvc := service.NewEvaluationService(
		s3Client, cfg.S3.Bucket, chain, chain, evaluator, evalRepo, cfg.Eval.SizeBudgetBytes)

	// Initialize handlers
	evalH := handler.NewEvaluationHandler(evalSvc)
	reportH := handler.NewReportHandler(evalSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(evalH, reportH, healthH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// registerProviders wires the provider factories into the extractor registry.
// Registration lives here because the provider packages import extractor.
func registerProviders() {
	extractor.RegisterProvider("gemini", func(cfg *config.ProviderConfig) (extractor.Backend, error) {
		return gemini.NewClient(cfg), nil
	})
	extractor.RegisterProvider("openai", func(cfg *config.ProviderConfig) (extractor.Backend, error) {
		return openai.NewClient(cfg), nil
	})
}

func newDictionary(cfg *config.EvalConfig) (port.Dictionary, error) {
	if cfg.WordlistPath != "" {
		return lexicon.NewFromFile(cfg.WordlistPath)
	}
	return lexicon.NewEmbedded(), nil
}

// newLanguageModel loads the GPT-2 scorer when a model is configured and
// falls back to the unavailable stub otherwise, so that perplexity degrades
// to the sentinel instead of blocking startup.
func newLanguageModel(cfg *config.EvalConfig) (port.LanguageModel, func(), error) {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		log.Print("language model not configured; perplexity will report the sentinel")
		return langmodel.NewUnavailable(), func() {}, nil
	}
	scorer, err := langmodel.NewGPT2Scorer(langmodel.Config{
		ModelPath:     cfg.ModelPath,
		TokenizerPath: cfg.TokenizerPath,
		OrtLibrary:    cfg.OrtLibraryPath,
		MaxTokens:     cfg.MaxModelTokens,
	})
	if err != nil {
		return nil, nil, err
	}
	return scorer, func() {
		if err := scorer.Close(); err != nil {
			log.Printf("closing language model: %v", err)
		}
	}, nil
}
