package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"scanscore/internal/config"
	"scanscore/internal/domain"
	"scanscore/internal/eval"
	"scanscore/internal/extractor"
	"scanscore/internal/extractor/gemini"
	"scanscore/internal/extractor/openai"
	"scanscore/internal/groundtruth"
	"scanscore/internal/langmodel"
	"scanscore/internal/lexicon"
	"scanscore/internal/port"
	"scanscore/internal/report"
	"scanscore/internal/service"
)

// evalbatch runs the extraction-and-scoring pipeline over a directory of
// scanned images and writes a CSV or XLSX report. It needs no database:
// evaluations are collected in memory for the report.
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		imageDir = flag.String("dir", "", "directory of scanned images (jpg, png)")
		gtDir    = flag.String("gt", "", "directory of ground truth JSON files")
		outPath  = flag.String("out", "evaluations.csv", "report output path (.csv or .xlsx)")
		workers  = flag.Int("concurrency", 0, "worker count (defaults to SCANSCORE_BATCH_CONCURRENCY)")
	)
	flag.Parse()

	if *imageDir == "" {
		flag.Usage()
		return fmt.Errorf("-dir is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *workers > 0 {
		cfg.Batch.Concurrency = *workers
	}
	if *gtDir != "" {
		cfg.Eval.GroundTruthDir = *gtDir
	}

	registerProviders()

	var gtStore port.GroundTruthStore = groundtruth.NewMemoryStore(nil)
	if cfg.Eval.GroundTruthDir != "" {
		fileStore, err := groundtruth.NewFileStore(cfg.Eval.GroundTruthDir)
		if err != nil {
			return fmt.Errorf("failed to load ground truths: %w", err)
		}
		log.Printf("loaded %d ground truths from %s", fileStore.Len(), cfg.Eval.GroundTruthDir)
		gtStore = fileStore
	}

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

	chain, err := extractor.NewChain(&cfg.OCR)
	if err != nil {
		return fmt.Errorf("failed to initialize extraction chain: %w", err)
	}

	repo := &memoryEvaluationRepo{}
	svc := service.NewEvaluationService(
		nil, "", chain, chain, evaluator, repo, cfg.Eval.SizeBudgetBytes)

	items, err := loadItems(*imageDir)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no images found in %s", *imageDir)
	}
	log.Printf("evaluating %d documents with %d workers", len(items), cfg.Batch.Concurrency)

	batch := service.NewBatchEvaluator(svc, cfg.Batch.Concurrency)
	results := batch.Run(context.Background(), items)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Printf("completed: %d ok, %d failed", len(results)-failed, failed)

	if err := writeReport(*outPath, repo.all()); err != nil {
		return err
	}
	log.Printf("report written to %s", *outPath)
	return nil
}

// loadItems collects image files from dir as batch items. The file name is
// the document id, matching the ground truth keying.
func loadItems(dir string) ([]service.BatchItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var items []service.BatchItem
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
		default:
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		items = append(items, service.BatchItem{
			DocumentID:   entry.Name(),
			DocumentType: documentTypeFromName(entry.Name()),
			Raw:          raw,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DocumentID < items[j].DocumentID })
	return items, nil
}

// documentTypeFromName maps the form-code file prefix to a document type.
func documentTypeFromName(name string) domain.DocumentType {
	prefix, _, _ := strings.Cut(name, "-")
	switch strings.ToUpper(prefix) {
	case "CIF":
		return domain.DocumentTypeCustomerInfoSheet
	case "DF":
		return domain.DocumentTypeDepositSlipFront
	case "DB":
		return domain.DocumentTypeDepositSlipBack
	case "WF":
		return domain.DocumentTypeWithdrawalFront
	case "WB":
		return domain.DocumentTypeWithdrawalBack
	}
	return domain.DocumentTypeUnknown
}

func writeReport(path string, evals []domain.Evaluation) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		data, err := report.WriteXLSX(evals)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(report.BOM); err != nil {
		return err
	}
	w := report.NewWriter(f)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteEvaluations(evals); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

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

// memoryEvaluationRepo collects evaluations in memory for the report.
type memoryEvaluationRepo struct {
	mu    sync.Mutex
	evals []domain.Evaluation
}

func (r *memoryEvaluationRepo) Create(_ context.Context, e *domain.Evaluation) error {
	if e.ID == (uuid.UUID{}) {
		e.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evals = append(r.evals, *e)
	return nil
}

func (r *memoryEvaluationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.evals {
		if r.evals[i].ID == id {
			e := r.evals[i]
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryEvaluationRepo) ListByDocumentID(_ context.Context, documentID string, limit, offset int) ([]domain.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Evaluation
	for _, e := range r.evals {
		if e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	return page(out, limit, offset), nil
}

func (r *memoryEvaluationRepo) ListRecent(_ context.Context, limit, offset int) ([]domain.Evaluation, error) {
	return page(r.all(), limit, offset), nil
}

func (r *memoryEvaluationRepo) all() []domain.Evaluation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Evaluation, len(r.evals))
	copy(out, r.evals)
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentID < out[j].DocumentID })
	return out
}

func page(evals []domain.Evaluation, limit, offset int) []domain.Evaluation {
	if offset >= len(evals) {
		return nil
	}
	evals = evals[offset:]
	if limit > 0 && limit < len(evals) {
		evals = evals[:limit]
	}
	return evals
}
