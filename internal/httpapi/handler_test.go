package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kapu/emotion-map-go/internal/domain"
	"github.com/kapu/emotion-map-go/internal/service/ai"
	apperrors "github.com/kapu/emotion-map-go/pkg/errors"
	"go.uber.org/zap"
)

type fakeAnalyzer struct {
	analysis *domain.EmotionalMapAnalysis
	metadata *ai.GenerateMetadata
	err      error

	lastInput  *domain.UserInput
	lastAPIKey string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, input *domain.UserInput, apiKey string) (*domain.EmotionalMapAnalysis, *ai.GenerateMetadata, error) {
	f.lastInput = input
	f.lastAPIKey = apiKey
	return f.analysis, f.metadata, f.err
}

func (f *fakeAnalyzer) AnalyzeBatch(ctx context.Context, inputs []domain.UserInput, apiKey string) []ai.BatchItemResult {
	results := make([]ai.BatchItemResult, len(inputs))
	for i := range inputs {
		analysis, metadata, err := f.Analyze(ctx, &inputs[i], apiKey)
		results[i] = ai.BatchItemResult{Index: i, Analysis: analysis, Metadata: metadata, Err: err}
	}
	return results
}

type fakeHistory struct {
	records []*domain.AnalysisRecord
	nextID  int64
	err     error
}

func (f *fakeHistory) Record(_ context.Context, record *domain.AnalysisRecord) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	record.ID = f.nextID
	f.records = append(f.records, record)
	return f.nextID, nil
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]*domain.AnalysisRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.records) {
		limit = len(f.records)
	}
	return f.records[:limit], nil
}

func (f *fakeHistory) Get(_ context.Context, id int64) (*domain.AnalysisRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func sampleAnalysis() *domain.EmotionalMapAnalysis {
	return &domain.EmotionalMapAnalysis{
		CoreEmotions:                 []domain.CoreEmotion{{Emotion: "joy", Intensity: 80}},
		EmotionalTransitions:         []domain.EmotionalTransition{{From: "doubt", To: "joy", Description: "after the result"}},
		Triggers:                     []string{"exam result"},
		PsychologicalInterpretations: []string{"relief after sustained pressure"},
		HealingSuggestions:           []string{"celebrate it"},
		EmpatheticMessage:            "Well done.",
		MermaidCode:                  "graph LR",
	}
}

func newTestRouter(analyzer Analyzer, history History) http.Handler {
	handler := NewHandler(analyzer, history, nil, zap.NewNop())
	return NewRouter(handler, zap.NewNop())
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAnalyzeEndpointSuccess(t *testing.T) {
	analyzer := &fakeAnalyzer{
		analysis: sampleAnalysis(),
		metadata: &ai.GenerateMetadata{Provider: "Gemini", Model: "test-model"},
	}
	history := &fakeHistory{}
	router := newTestRouter(analyzer, history)

	recorder := postJSON(t, router, "/api/analyze", AnalyzeRequest{
		Situation: "I passed my exam",
		Age:       22,
		Country:   "Korea",
		Language:  "Korean",
		APIKey:    "caller-key",
	})

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var resp analyzeResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Provider != "Gemini" || resp.Model != "test-model" {
		t.Errorf("unexpected metadata: %+v", resp)
	}
	if resp.ID != 1 {
		t.Errorf("expected history id 1, got %d", resp.ID)
	}
	if resp.Analysis == nil || resp.Analysis.EmpatheticMessage != "Well done." {
		t.Errorf("unexpected analysis: %+v", resp.Analysis)
	}

	if analyzer.lastAPIKey != "caller-key" {
		t.Errorf("expected caller key forwarded, got %q", analyzer.lastAPIKey)
	}
	if analyzer.lastInput.Situation != "I passed my exam" {
		t.Errorf("unexpected input: %+v", analyzer.lastInput)
	}
}

func TestAnalyzeEndpointHistoryFailureIsNonFatal(t *testing.T) {
	analyzer := &fakeAnalyzer{
		analysis: sampleAnalysis(),
		metadata: &ai.GenerateMetadata{Provider: "Gemini", Model: "test-model"},
	}
	history := &fakeHistory{err: fmt.Errorf("postgres down")}
	router := newTestRouter(analyzer, history)

	recorder := postJSON(t, router, "/api/analyze", AnalyzeRequest{Situation: "anything"})

	if recorder.Code != http.StatusOK {
		t.Fatalf("history failure must not fail the request, got %d", recorder.Code)
	}

	var resp analyzeResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.ID != 0 {
		t.Errorf("expected no history id, got %d", resp.ID)
	}
}

func TestAnalyzeEndpointErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing credentials",
			err:        apperrors.NewMissingCredentialsError("no API key supplied and none configured"),
			wantStatus: http.StatusUnauthorized,
			wantCode:   apperrors.CodeMissingCredentials,
		},
		{
			name:       "empty response",
			err:        apperrors.NewEmptyResponseError("model returned no text", "Gemini"),
			wantStatus: http.StatusBadGateway,
			wantCode:   apperrors.CodeEmptyResponse,
		},
		{
			name:       "malformed response",
			err:        apperrors.NewMalformedResponseError("model response is not valid JSON", nil),
			wantStatus: http.StatusBadGateway,
			wantCode:   apperrors.CodeMalformedResponse,
		},
		{
			name:       "provider failure",
			err:        apperrors.NewProviderError("quota exceeded", "Gemini", nil),
			wantStatus: http.StatusBadGateway,
			wantCode:   apperrors.CodeProviderFailure,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{err: tc.err}
			router := newTestRouter(analyzer, &fakeHistory{})

			recorder := postJSON(t, router, "/api/analyze", AnalyzeRequest{Situation: "x"})

			if recorder.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, recorder.Code)
			}

			var resp errorResponse
			if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse error body: %v", err)
			}
			if resp.Error.Code != tc.wantCode {
				t.Errorf("expected code %s, got %s", tc.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestBatchEndpointRejectsEmptyAndOversized(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: sampleAnalysis()}
	router := newTestRouter(analyzer, &fakeHistory{})

	recorder := postJSON(t, router, "/api/analyze/batch", batchRequest{})
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty batch, got %d", recorder.Code)
	}

	oversized := batchRequest{Items: make([]AnalyzeRequest, 11)}
	recorder = postJSON(t, router, "/api/analyze/batch", oversized)
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for oversized batch, got %d", recorder.Code)
	}
}

func TestBatchEndpointReturnsPerItemResults(t *testing.T) {
	analyzer := &fakeAnalyzer{
		analysis: sampleAnalysis(),
		metadata: &ai.GenerateMetadata{Provider: "Gemini", Model: "test-model"},
	}
	router := newTestRouter(analyzer, &fakeHistory{})

	recorder := postJSON(t, router, "/api/analyze/batch", batchRequest{
		Items: []AnalyzeRequest{
			{Situation: "one"},
			{Situation: "two"},
		},
	})

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var resp struct {
		Items []batchItemResponse `json:"items"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resp.Items))
	}
	for i, item := range resp.Items {
		if item.Index != i {
			t.Errorf("item %d carries index %d", i, item.Index)
		}
		if item.Analysis == nil || item.Error != nil {
			t.Errorf("item %d should have succeeded: %+v", i, item)
		}
	}
}

func TestHistoryEndpointValidatesLimit(t *testing.T) {
	router := newTestRouter(&fakeAnalyzer{}, &fakeHistory{})

	req := httptest.NewRequest(http.MethodGet, "/api/history?limit=abc", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric limit, got %d", recorder.Code)
	}
}

func TestHistoryByIDNotFound(t *testing.T) {
	router := newTestRouter(&fakeAnalyzer{}, &fakeHistory{})

	req := httptest.NewRequest(http.MethodGet, "/api/history/42", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", recorder.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error body: %v", err)
	}
	if resp.Error.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, resp.Error.Code)
	}
}

func TestHealthzAlwaysOK(t *testing.T) {
	router := newTestRouter(&fakeAnalyzer{}, &fakeHistory{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", recorder.Code)
	}
}
