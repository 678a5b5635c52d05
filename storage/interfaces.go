package storage

import (
	"context"
	"errors"

	"propertyedge/models"
)

// ErrNotFound is returned when no analysis has the requested id.
var ErrNotFound = errors.New("storage: analysis not found")

// AnalysisStore persists finished analyses under an autoincrementing id.
// It knows nothing about what the analysis contains.
type AnalysisStore interface {
	Save(ctx context.Context, a *models.Analysis) (int64, error)
	Get(ctx context.Context, id int64) (*models.Analysis, error)
	List(ctx context.Context, limit int) ([]models.AnalysisSummary, error)
	Close() error
}

// CompFinder returns recent comparable sales for a subject property.
type CompFinder interface {
	FindComps(ctx context.Context, q CompQuery) ([]models.Comp, error)
}
