package profile

import (
	"time"

	"github.com/google/uuid"

	"github.com/migrantcare/healthtrack/internal/platform/auth"
)

// Kind is the domain record type behind an authenticated user.
type Kind string

const (
	KindWorker  Kind = "worker"
	KindPatient Kind = "patient"
	KindDoctor  Kind = "doctor"
)

// Kinds in the order ResolveUser searches them.
var Kinds = []Kind{KindWorker, KindPatient, KindDoctor}

// KindForRole maps an auth role to the profile kind it owns. Roles without
// a profile, admin included, report false.
func KindForRole(role string) (Kind, bool) {
	switch role {
	case auth.RoleWorker:
		return KindWorker, true
	case auth.RolePatient:
		return KindPatient, true
	case auth.RoleDoctor:
		return KindDoctor, true
	default:
		return "", false
	}
}

// Profile is a worker, patient or doctor record keyed by its auth user id.
type Profile struct {
	ID             uuid.UUID `json:"id"`
	UserID         string    `json:"userId"`
	Kind           Kind      `json:"kind"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Specialization string    `json:"specialization,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (p *Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}
