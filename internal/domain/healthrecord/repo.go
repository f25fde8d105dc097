package healthrecord

import (
	"context"

	"github.com/google/uuid"
)

// Reader is the read-only view of health records owned by the record
// authoring service.
type Reader interface {
	// ListRecentBySubject returns up to limit records whose worker or patient
	// is subjectID, newest record date first.
	ListRecentBySubject(ctx context.Context, subjectID uuid.UUID, limit int) ([]*Record, error)
}
