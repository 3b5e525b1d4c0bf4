package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kapu/emotion-map-go/internal/constants"
	"github.com/kapu/emotion-map-go/internal/domain"
	"github.com/kapu/emotion-map-go/internal/service/ai"
	"github.com/kapu/emotion-map-go/internal/util"
	apperrors "github.com/kapu/emotion-map-go/pkg/errors"
	"go.uber.org/zap"
)

// Analyzer is the analysis surface the handlers depend on.
type Analyzer interface {
	Analyze(ctx context.Context, input *domain.UserInput, apiKey string) (*domain.EmotionalMapAnalysis, *ai.GenerateMetadata, error)
	AnalyzeBatch(ctx context.Context, inputs []domain.UserInput, apiKey string) []ai.BatchItemResult
}

// History is the persistence surface the handlers depend on.
type History interface {
	Record(ctx context.Context, record *domain.AnalysisRecord) (int64, error)
	Recent(ctx context.Context, limit int) ([]*domain.AnalysisRecord, error)
	Get(ctx context.Context, id int64) (*domain.AnalysisRecord, error)
}

// CircuitReporter exposes provider circuit state for the health endpoint.
type CircuitReporter interface {
	GetCircuitStatus() util.CircuitBreakerStatus
}

type Handler struct {
	analyzer Analyzer
	history  History
	circuit  CircuitReporter
	logger   *zap.Logger
}

func NewHandler(analyzer Analyzer, history History, circuit CircuitReporter, logger *zap.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		history:  history,
		circuit:  circuit,
		logger:   logger,
	}
}

// AnalyzeRequest mirrors domain.UserInput plus an optional caller-supplied
// API key. The situation is intentionally not required; an empty one is
// passed through to the model unchanged.
type AnalyzeRequest struct {
	Situation string `json:"situation"`
	Age       int    `json:"age"`
	Country   string `json:"country"`
	Language  string `json:"language"`
	APIKey    string `json:"api_key,omitempty"`
}

func (r *AnalyzeRequest) toInput() domain.UserInput {
	return domain.UserInput{
		Situation: r.Situation,
		Age:       r.Age,
		Country:   r.Country,
		Language:  r.Language,
	}
}

type analyzeResponse struct {
	ID       int64                        `json:"id,omitempty"`
	Analysis *domain.EmotionalMapAnalysis `json:"analysis"`
	Provider string                       `json:"provider,omitempty"`
	Model    string                       `json:"model,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func recordFromResult(input domain.UserInput, analysis *domain.EmotionalMapAnalysis, metadata *ai.GenerateMetadata) *domain.AnalysisRecord {
	record := &domain.AnalysisRecord{
		Input:    input,
		Analysis: analysis,
	}
	if metadata != nil {
		record.Provider = metadata.Provider
		record.Model = metadata.Model
	}
	return record
}

func newErrorResponse(err error) (int, errorResponse) {
	return apperrors.StatusCodeOf(err), errorResponse{
		Error: errorBody{
			Code:    apperrors.CodeOf(err),
			Message: err.Error(),
		},
	}
}

// Analyze handles POST /api/analyze.
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		status, body := newErrorResponse(apperrors.NewValidationError("invalid request body", "body", err.Error()))
		c.JSON(status, body)
		return
	}

	input := req.toInput()
	analysis, metadata, err := h.analyzer.Analyze(c.Request.Context(), &input, req.APIKey)
	if err != nil {
		status, body := newErrorResponse(err)
		c.JSON(status, body)
		return
	}

	resp := analyzeResponse{Analysis: analysis}
	if metadata != nil {
		resp.Provider = metadata.Provider
		resp.Model = metadata.Model
	}

	// History is best-effort; a storage hiccup never fails the analysis.
	if h.history != nil {
		record := recordFromResult(input, analysis, metadata)
		if id, err := h.history.Record(c.Request.Context(), record); err != nil {
			h.logger.Warn("Failed to record analysis history", zap.Error(err))
		} else {
			resp.ID = id
		}
	}

	c.JSON(http.StatusOK, resp)
}

type batchRequest struct {
	Items  []AnalyzeRequest `json:"items"`
	APIKey string           `json:"api_key,omitempty"`
}

type batchItemResponse struct {
	Index    int                          `json:"index"`
	Analysis *domain.EmotionalMapAnalysis `json:"analysis,omitempty"`
	Error    *errorBody                   `json:"error,omitempty"`
}

// AnalyzeBatch handles POST /api/analyze/batch.
func (h *Handler) AnalyzeBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		status, body := newErrorResponse(apperrors.NewValidationError("invalid request body", "body", err.Error()))
		c.JSON(status, body)
		return
	}

	if len(req.Items) == 0 {
		status, body := newErrorResponse(apperrors.NewValidationError("items must not be empty", "items", 0))
		c.JSON(status, body)
		return
	}
	if len(req.Items) > constants.BatchConfig.MaxItems {
		status, body := newErrorResponse(apperrors.NewValidationError("too many items", "items", len(req.Items)))
		c.JSON(status, body)
		return
	}

	inputs := make([]domain.UserInput, len(req.Items))
	for i, item := range req.Items {
		inputs[i] = item.toInput()
	}

	results := h.analyzer.AnalyzeBatch(c.Request.Context(), inputs, req.APIKey)

	items := make([]batchItemResponse, len(results))
	for i, result := range results {
		item := batchItemResponse{Index: result.Index, Analysis: result.Analysis}
		if result.Err != nil {
			item.Error = &errorBody{
				Code:    apperrors.CodeOf(result.Err),
				Message: result.Err.Error(),
			}
		}
		items[i] = item
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// RecentHistory handles GET /api/history.
func (h *Handler) RecentHistory(c *gin.Context) {
	limit := constants.HistoryConfig.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			status, body := newErrorResponse(apperrors.NewValidationError("limit must be a positive integer", "limit", raw))
			c.JSON(status, body)
			return
		}
		limit = parsed
	}

	records, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to load analysis history", zap.Error(err))
		status, body := newErrorResponse(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analyses": records})
}

// HistoryByID handles GET /api/history/:id.
func (h *Handler) HistoryByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		status, body := newErrorResponse(apperrors.NewValidationError("id must be an integer", "id", c.Param("id")))
		c.JSON(status, body)
		return
	}

	record, err := h.history.Get(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load analysis", zap.Int64("id", id), zap.Error(err))
		status, body := newErrorResponse(err)
		c.JSON(status, body)
		return
	}
	if record == nil {
		status, body := newErrorResponse(apperrors.NewNotFoundError("analysis not found", "analysis", id))
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, record)
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(c *gin.Context) {
	resp := gin.H{"status": "ok"}

	if h.circuit != nil {
		status := h.circuit.GetCircuitStatus()
		resp["circuit"] = gin.H{
			"state":         status.State.String(),
			"failure_count": status.FailureCount,
		}
	}

	c.JSON(http.StatusOK, resp)
}
