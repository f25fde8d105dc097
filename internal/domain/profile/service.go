package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/migrantcare/healthtrack/internal/platform/apperror"
	"github.com/migrantcare/healthtrack/internal/platform/auth"
)

// Resolver maps authenticated principals to their domain profile.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the caller's profile for its role. A role without a
// profile kind, or a user with no row, yields nil with no error.
func (r *Resolver) Resolve(ctx context.Context, p auth.Principal) (*Profile, error) {
	kind, ok := KindForRole(p.Role)
	if !ok {
		return nil, nil
	}
	return r.lookup(ctx, kind, p.UserID)
}

// ResolveUser finds a profile of any kind for userID.
func (r *Resolver) ResolveUser(ctx context.Context, userID string) (*Profile, error) {
	for _, kind := range Kinds {
		prof, err := r.lookup(ctx, kind, userID)
		if err != nil || prof != nil {
			return prof, err
		}
	}
	return nil, nil
}

func (r *Resolver) lookup(ctx context.Context, kind Kind, userID string) (*Profile, error) {
	prof, err := r.repo.GetByUserID(ctx, kind, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.DataAccess("resolve "+string(kind)+" profile", err)
	}
	return prof, nil
}

// Doctor returns the doctor with the given profile id, or nil if none.
func (r *Resolver) Doctor(ctx context.Context, id uuid.UUID) (*Profile, error) {
	prof, err := r.repo.GetByID(ctx, KindDoctor, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.DataAccess("get doctor", err)
	}
	return prof, nil
}

func (r *Resolver) ListDoctors(ctx context.Context, limit, offset int) ([]*Profile, int, error) {
	items, total, err := r.repo.List(ctx, KindDoctor, limit, offset)
	if err != nil {
		return nil, 0, apperror.DataAccess("list doctors", err)
	}
	return items, total, nil
}
