package domain

import "time"

// AnalysisRecord is a persisted emotional map analysis with the input that
// produced it and the provider metadata of the generating call.
type AnalysisRecord struct {
	ID        int64                 `json:"id"`
	Input     UserInput             `json:"input"`
	Analysis  *EmotionalMapAnalysis `json:"analysis"`
	Provider  string                `json:"provider"`
	Model     string                `json:"model"`
	CreatedAt time.Time             `json:"created_at"`
}
