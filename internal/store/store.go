package store

import (
	"context"
	"errors"

	"Quackito/internal/model"
)

var (
	ErrNotFound  = errors.New("duck not found")
	ErrCodeTaken = errors.New("duck code already taken")
)

// Mutation changes a loaded duck in place. A non-nil Interaction is appended to
// the audit log in the same write.
type Mutation func(d *model.Duck) (*model.Interaction, error)

// Store persists ducks and their interaction log.
type Store interface {
	Create(ctx context.Context, d *model.Duck) error
	Get(ctx context.Context, code string) (*model.Duck, error)
	// Update loads the duck, applies fn and writes the result back. Updates for
	// the same store are serialized.
	Update(ctx context.Context, code string, fn Mutation) (*model.Duck, error)
	// Interactions returns the duck's log in chronological order.
	Interactions(ctx context.Context, duckID int64) ([]model.Interaction, error)
	Close() error
}
