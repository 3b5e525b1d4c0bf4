package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kapu/emotion-map-go/internal/domain"
	"github.com/kapu/emotion-map-go/internal/service/database"
	"go.uber.org/zap"
)

// Repository persists completed analyses to PostgreSQL.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepository(postgres *database.PostgresService, logger *zap.Logger) *Repository {
	return &Repository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

// Insert stores a completed analysis and returns the assigned record ID.
func (r *Repository) Insert(ctx context.Context, record *domain.AnalysisRecord) (int64, error) {
	analysisJSON, err := json.Marshal(record.Analysis)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	const query = `
		INSERT INTO analyses (situation, age, country, language, analysis, provider, model)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err = r.db.QueryRowContext(ctx, query,
		record.Input.Situation,
		record.Input.Age,
		record.Input.Country,
		record.Input.Language,
		analysisJSON,
		record.Provider,
		record.Model,
	).Scan(&record.ID, &record.CreatedAt)

	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis: %w", err)
	}

	return record.ID, nil
}

// ListRecent returns the newest analyses, most recent first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisRecord, error) {
	const query = `
		SELECT id, situation, age, country, language, analysis, provider, model, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.AnalysisRecord, 0, limit)
	for rows.Next() {
		var (
			record       domain.AnalysisRecord
			analysisJSON []byte
		)

		if err := rows.Scan(
			&record.ID,
			&record.Input.Situation,
			&record.Input.Age,
			&record.Input.Country,
			&record.Input.Language,
			&analysisJSON,
			&record.Provider,
			&record.Model,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}

		var analysis domain.EmotionalMapAnalysis
		if err := json.Unmarshal(analysisJSON, &analysis); err != nil {
			r.logger.Warn("Skipping analysis row with malformed payload",
				zap.Int64("id", record.ID),
				zap.Error(err),
			)
			continue
		}
		record.Analysis = &analysis

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analysis rows: %w", err)
	}

	return records, nil
}

// FindByID returns a single analysis record, or nil when absent.
func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.AnalysisRecord, error) {
	const query = `
		SELECT id, situation, age, country, language, analysis, provider, model, created_at
		FROM analyses
		WHERE id = $1
		LIMIT 1
	`

	var (
		record       domain.AnalysisRecord
		analysisJSON []byte
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.Input.Situation,
		&record.Input.Age,
		&record.Input.Country,
		&record.Input.Language,
		&analysisJSON,
		&record.Provider,
		&record.Model,
		&record.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis by id: %w", err)
	}

	var analysis domain.EmotionalMapAnalysis
	if err := json.Unmarshal(analysisJSON, &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis payload: %w", err)
	}
	record.Analysis = &analysis

	return &record, nil
}
