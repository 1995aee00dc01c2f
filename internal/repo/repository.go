package repo

import (
	"context"

	"github.com/hamed0406/pingmore/internal/domain"
)

// ResultStore keeps finished probes for the API.
type ResultStore interface {
	// Append assigns r.ID and stores r.
	Append(ctx context.Context, r *domain.Result) error
	// Recent returns up to limit results, newest first. limit <= 0 means all.
	Recent(ctx context.Context, limit int) ([]domain.Result, error)
	Clear(ctx context.Context) error
}
