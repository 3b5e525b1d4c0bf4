package ai

import (
	"context"
	"sync"

	"github.com/kapu/emotion-map-go/internal/constants"
	"github.com/kapu/emotion-map-go/internal/domain"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// BatchItemResult is the per-input outcome of a batch analysis. Items fail
// independently; a failed item never aborts its siblings.
type BatchItemResult struct {
	Index    int
	Analysis *domain.EmotionalMapAnalysis
	Metadata *GenerateMetadata
	Err      error
}

// AnalyzeBatch runs one Analyze call per input with bounded concurrency.
// Results are returned in input order.
func (a *EmotionalMapAnalyzer) AnalyzeBatch(ctx context.Context, inputs []domain.UserInput, apiKey string) []BatchItemResult {
	results := make([]BatchItemResult, len(inputs))
	if len(inputs) == 0 {
		return results
	}

	p := pool.New().WithMaxGoroutines(constants.BatchConfig.MaxConcurrency)
	resultsMu := sync.Mutex{}

	for idx := range inputs {
		idx := idx
		input := inputs[idx]
		p.Go(func() {
			analysis, metadata, err := a.Analyze(ctx, &input, apiKey)
			resultsMu.Lock()
			results[idx] = BatchItemResult{
				Index:    idx,
				Analysis: analysis,
				Metadata: metadata,
				Err:      err,
			}
			resultsMu.Unlock()
		})
	}

	p.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	a.logger.Info("Batch analysis finished",
		zap.Int("total", len(inputs)),
		zap.Int("failed", failed),
	)

	return results
}
