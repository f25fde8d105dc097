package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when no profile matches.
var ErrNotFound = errors.New("profile not found")

type Repository interface {
	GetByUserID(ctx context.Context, kind Kind, userID string) (*Profile, error)
	GetByID(ctx context.Context, kind Kind, id uuid.UUID) (*Profile, error)
	List(ctx context.Context, kind Kind, limit, offset int) ([]*Profile, int, error)
}
