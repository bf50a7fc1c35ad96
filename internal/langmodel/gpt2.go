package langmodel

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Config holds paths for the local GPT-2 ONNX scorer.
type Config struct {
	ModelPath     string
	TokenizerPath string
	OrtLibrary    string
	MaxTokens     int
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func initRuntime(libraryPath string) error {
	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// GPT2Scorer scores text with a local GPT-2 ONNX model. The session is
// created once and guarded by a mutex; per-call work is tensor-sized only.
type GPT2Scorer struct {
	tk        *tokenizer.Tokenizer
	session   *ort.DynamicAdvancedSession
	maxTokens int
	mu        sync.Mutex
}

// NewGPT2Scorer loads the tokenizer and creates the inference session.
func NewGPT2Scorer(cfg Config) (*GPT2Scorer, error) {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return nil, fmt.Errorf("model and tokenizer paths are required")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}

	if err := initRuntime(cfg.OrtLibrary); err != nil {
		return nil, fmt.Errorf("initializing onnx runtime: %w", err)
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("creating onnx session: %w", err)
	}

	return &GPT2Scorer{
		tk:        tk,
		session:   session,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// SequenceNLL returns the average per-token negative log-likelihood of text
// under the model. Inputs longer than MaxTokens are truncated.
func (s *GPT2Scorer) SequenceNLL(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	encoding, err := s.tk.EncodeSingle(text)
	if err != nil {
		return 0, fmt.Errorf("tokenizing: %w", err)
	}
	ids := encoding.Ids
	if len(ids) > s.maxTokens {
		ids = ids[:s.maxTokens]
	}
	if len(ids) < 2 {
		return 0, fmt.Errorf("text too short to score (%d tokens)", len(ids))
	}

	n := len(ids)
	inputIDs := make([]int64, n)
	mask := make([]int64, n)
	for i, id := range ids {
		inputIDs[i] = int64(id)
		mask[i] = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shape := ort.NewShape(1, int64(n))
	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return 0, fmt.Errorf("creating input tensor: %w", err)
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, mask)
	if err != nil {
		return 0, fmt.Errorf("creating mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := s.session.Run([]ort.Value{idsTensor, maskTensor}, outputs); err != nil {
		return 0, fmt.Errorf("running model: %w", err)
	}
	logitsTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return 0, fmt.Errorf("unexpected logits tensor type %T", outputs[0])
	}
	defer logitsTensor.Destroy()

	logits := logitsTensor.GetData()
	dims := logitsTensor.GetShape()
	if len(dims) != 3 {
		return 0, fmt.Errorf("unexpected logits shape %v", dims)
	}
	vocab := int(dims[2])
	if len(logits) < n*vocab {
		return 0, fmt.Errorf("logits buffer too small: %d < %d", len(logits), n*vocab)
	}

	// Next-token NLL: logits at position t-1 predict token t.
	var total float64
	for t := 1; t < n; t++ {
		row := logits[(t-1)*vocab : t*vocab]
		target := int(inputIDs[t])
		if target < 0 || target >= vocab {
			return 0, fmt.Errorf("token id %d outside vocab %d", target, vocab)
		}
		total += logSumExp(row) - float64(row[target])
	}
	return total / float64(n-1), nil
}

// Close releases the inference session.
func (s *GPT2Scorer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		err := s.session.Destroy()
		s.session = nil
		return err
	}
	return nil
}

func logSumExp(row []float32) float64 {
	maxVal := float64(row[0])
	for _, v := range row[1:] {
		if float64(v) > maxVal {
			maxVal = float64(v)
		}
	}
	var sum float64
	for _, v := range row {
		sum += math.Exp(float64(v) - maxVal)
	}
	return maxVal + math.Log(sum)
}
