package ai

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kapu/emotion-map-go/internal/domain"
	"go.uber.org/zap"
)

type countingGenerator struct {
	mu    sync.Mutex
	calls int
	fail  map[int]bool
}

func (c *countingGenerator) Generate(_ context.Context, prompt string, _ ModelPreset, _ *GenerateOptions) (string, *GenerateMetadata, error) {
	c.mu.Lock()
	call := c.calls
	c.calls++
	c.mu.Unlock()

	if c.fail[call] {
		return "", nil, errors.New("provider unavailable")
	}
	return validAnalysisJSON, &GenerateMetadata{Provider: "Gemini", Model: "test-model"}, nil
}

func TestAnalyzeBatchKeepsInputOrder(t *testing.T) {
	generator := &countingGenerator{}
	analyzer := NewEmotionalMapAnalyzer(generator, staticKey("config-key"), zap.NewNop())

	inputs := make([]domain.UserInput, 7)
	for i := range inputs {
		inputs[i] = domain.UserInput{Situation: "situation", Age: 20 + i, Language: "English"}
	}

	results := analyzer.AnalyzeBatch(context.Background(), inputs, "")

	if len(results) != len(inputs) {
		t.Fatalf("expected %d results, got %d", len(inputs), len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d carries index %d", i, r.Index)
		}
		if r.Err != nil {
			t.Errorf("result %d unexpectedly failed: %v", i, r.Err)
		}
		if r.Analysis == nil {
			t.Errorf("result %d missing analysis", i)
		}
	}
}

func TestAnalyzeBatchItemsFailIndependently(t *testing.T) {
	generator := &countingGenerator{fail: map[int]bool{1: true}}
	analyzer := NewEmotionalMapAnalyzer(generator, staticKey("config-key"), zap.NewNop())

	inputs := []domain.UserInput{
		{Situation: "a", Language: "English"},
		{Situation: "b", Language: "English"},
		{Situation: "c", Language: "English"},
	}

	results := analyzer.AnalyzeBatch(context.Background(), inputs, "")

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected exactly one failed item, got %d", failed)
	}
}

func TestAnalyzeBatchEmptyInput(t *testing.T) {
	generator := &countingGenerator{}
	analyzer := NewEmotionalMapAnalyzer(generator, staticKey("config-key"), zap.NewNop())

	results := analyzer.AnalyzeBatch(context.Background(), nil, "")
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if generator.calls != 0 {
		t.Errorf("expected no generator calls, got %d", generator.calls)
	}
}
