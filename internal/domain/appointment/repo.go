package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("appointment not found")

// Repository persists appointments. Update and Delete are read-modify-write
// operations: the row is locked, handed to the callback, and written only if
// the callback returns nil.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, id uuid.UUID, mutate func(a *Appointment) error) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID, check func(a *Appointment) error) error
	ListBySubject(ctx context.Context, subjectID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListUpcomingBySubject(ctx context.Context, subjectID uuid.UUID, from time.Time, limit int) ([]*Appointment, error)
}
