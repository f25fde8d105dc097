package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/migrantcare/healthtrack/internal/domain/profile"
	"github.com/migrantcare/healthtrack/internal/platform/apperror"
	"github.com/migrantcare/healthtrack/internal/platform/auth"
	"github.com/migrantcare/healthtrack/internal/platform/clock"
)

// ProfileResolver is satisfied by *profile.Resolver.
type ProfileResolver interface {
	Resolve(ctx context.Context, p auth.Principal) (*profile.Profile, error)
	ResolveUser(ctx context.Context, userID string) (*profile.Profile, error)
	Doctor(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
}

type Service struct {
	repo     Repository
	profiles ProfileResolver
	clock    clock.Clock
	loc      *time.Location
	logger   zerolog.Logger
}

func NewService(repo Repository, profiles ProfileResolver, clk clock.Clock, loc *time.Location, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, profiles: profiles, clock: clk, loc: loc, logger: logger}
}

// Create schedules an appointment for the caller's own worker or patient profile.
func (s *Service) Create(ctx context.Context, p auth.Principal, req *CreateRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prof, err := s.profiles.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if prof == nil || (prof.Kind != profile.KindWorker && prof.Kind != profile.KindPatient) {
		return nil, apperror.Forbidden("only workers and patients can schedule appointments")
	}

	doctorID, err := s.doctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		DoctorID:   doctorID,
		Date:       normalizeDate(req.Date),
		Time:       normalizeTime(req.Time),
		Type:       req.Type,
		Hospital:   req.Hospital,
		Department: req.Department,
		Notes:      req.Notes,
		Contact:    req.Contact,
		Address:    req.Address,
		Priority:   Priority(req.Priority),
	}
	if a.Type == "" {
		a.Type = DefaultType
	}
	if a.Priority == "" {
		a.Priority = PriorityNormal
	}
	subject := prof.ID
	if prof.Kind == profile.KindWorker {
		a.WorkerID = &subject
	} else {
		a.PatientID = &subject
	}
	if a.ScheduledAt, err = ScheduleAt(a.Date, a.Time, s.loc); err != nil {
		return nil, apperror.Field("date", "date and time do not form a valid instant")
	}
	now := s.clock.Now()
	a.CreatedAt, a.UpdatedAt = now, now

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, apperror.DataAccess("create appointment", err)
	}
	return a, nil
}

// Get returns one appointment visible to its subject, its assignee or an admin.
func (s *Service) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperror.NotFound("appointment", id.String())
	}
	if err != nil {
		return nil, apperror.DataAccess("get appointment", err)
	}
	if p.IsAdmin() {
		return a, nil
	}

	prof, err := s.profiles.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if !isSubject(prof, a) && !isAssignee(prof, a) {
		s.deny(p, a.ID, "read")
		return nil, apperror.Forbidden("not allowed to view this appointment")
	}
	return a, nil
}

// Update applies a partial update. Only the assignee doctor or the owning
// worker may change an appointment.
func (s *Service) Update(ctx context.Context, p auth.Principal, id uuid.UUID, req *UpdateRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prof, err := s.profiles.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	var doctorID *uuid.UUID
	if req.DoctorID != nil {
		d, err := s.doctor(ctx, *req.DoctorID)
		if err != nil {
			return nil, err
		}
		doctorID = &d
	}

	updated, err := s.repo.Update(ctx, id, func(a *Appointment) error {
		if !canMutate(prof, a) {
			s.deny(p, a.ID, "update")
			return apperror.Forbidden("only the assigned doctor or the owning worker can update this appointment")
		}
		return s.apply(a, req, doctorID)
	})
	if err != nil {
		return nil, s.storeError(err, "update appointment", id)
	}
	return updated, nil
}

// Delete removes an appointment under the same ownership rule as Update.
func (s *Service) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	prof, err := s.profiles.Resolve(ctx, p)
	if err != nil {
		return err
	}

	err = s.repo.Delete(ctx, id, func(a *Appointment) error {
		if !canMutate(prof, a) {
			s.deny(p, a.ID, "delete")
			return apperror.Forbidden("only the assigned doctor or the owning worker can delete this appointment")
		}
		return nil
	})
	if err != nil {
		return s.storeError(err, "delete appointment", id)
	}
	return nil
}

// ListOwn returns the caller's appointments: by subject for workers and
// patients, by assignee for doctors. Callers without a profile get none.
func (s *Service) ListOwn(ctx context.Context, p auth.Principal, limit, offset int) ([]*Appointment, int, error) {
	prof, err := s.profiles.Resolve(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	return s.listFor(ctx, prof, limit, offset)
}

// ListForUser lists another user's appointments. Only the user themself or
// an admin may do so.
func (s *Service) ListForUser(ctx context.Context, p auth.Principal, userID string, limit, offset int) ([]*Appointment, int, error) {
	if userID != p.UserID && !p.IsAdmin() {
		s.logger.Warn().
			Str("user_id", p.UserID).
			Str("target_user_id", userID).
			Msg("appointment list for another user denied")
		return nil, 0, apperror.Forbidden("not allowed to list appointments for this user")
	}

	prof, err := s.profiles.ResolveUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.listFor(ctx, prof, limit, offset)
}

// Upcoming returns at most limit appointments of a subject scheduled at or
// after from, earliest first.
func (s *Service) Upcoming(ctx context.Context, subjectID uuid.UUID, from time.Time, limit int) ([]*Appointment, error) {
	items, err := s.repo.ListUpcomingBySubject(ctx, subjectID, from, limit)
	if err != nil {
		return nil, apperror.DataAccess("list upcoming appointments", err)
	}
	return items, nil
}

func (s *Service) listFor(ctx context.Context, prof *profile.Profile, limit, offset int) ([]*Appointment, int, error) {
	if prof == nil {
		return nil, 0, nil
	}

	var (
		items []*Appointment
		total int
		err   error
	)
	if prof.Kind == profile.KindDoctor {
		items, total, err = s.repo.ListByDoctor(ctx, prof.ID, limit, offset)
	} else {
		items, total, err = s.repo.ListBySubject(ctx, prof.ID, limit, offset)
	}
	if err != nil {
		return nil, 0, apperror.DataAccess("list appointments", err)
	}
	return items, total, nil
}

func (s *Service) apply(a *Appointment, req *UpdateRequest, doctorID *uuid.UUID) error {
	if doctorID != nil {
		a.DoctorID = *doctorID
	}
	if req.Date != nil {
		a.Date = normalizeDate(*req.Date)
	}
	if req.Time != nil {
		a.Time = normalizeTime(*req.Time)
	}
	if req.Type != nil {
		a.Type = *req.Type
		if a.Type == "" {
			a.Type = DefaultType
		}
	}
	if req.Hospital != nil {
		a.Hospital = *req.Hospital
	}
	if req.Department != nil {
		a.Department = *req.Department
	}
	if req.Notes != nil {
		a.Notes = *req.Notes
	}
	if req.Contact != nil {
		a.Contact = *req.Contact
	}
	if req.Address != nil {
		a.Address = *req.Address
	}
	if req.Priority != nil {
		a.Priority = Priority(*req.Priority)
	}

	at, err := ScheduleAt(a.Date, a.Time, s.loc)
	if err != nil {
		return apperror.Field("date", "date and time do not form a valid instant")
	}
	a.ScheduledAt = at
	a.UpdatedAt = s.clock.Now()
	return nil
}

// doctor parses and checks that the referenced doctor exists.
func (s *Service) doctor(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Field("doctorId", "doctorId must be a valid id")
	}
	doc, err := s.profiles.Doctor(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if doc == nil {
		return uuid.Nil, apperror.Field("doctorId", "doctor not found")
	}
	return id, nil
}

func (s *Service) storeError(err error, op string, id uuid.UUID) error {
	if errors.Is(err, ErrNotFound) {
		return apperror.NotFound("appointment", id.String())
	}
	return apperror.DataAccess(op, err)
}

func (s *Service) deny(p auth.Principal, id uuid.UUID, action string) {
	s.logger.Warn().
		Str("user_id", p.UserID).
		Str("role", p.Role).
		Str("appointment_id", id.String()).
		Str("action", action).
		Msg("appointment access denied")
}

func isSubject(prof *profile.Profile, a *Appointment) bool {
	if prof == nil {
		return false
	}
	switch prof.Kind {
	case profile.KindWorker:
		return a.WorkerID != nil && *a.WorkerID == prof.ID
	case profile.KindPatient:
		return a.PatientID != nil && *a.PatientID == prof.ID
	}
	return false
}

func isAssignee(prof *profile.Profile, a *Appointment) bool {
	return prof != nil && prof.Kind == profile.KindDoctor && a.DoctorID == prof.ID
}

func canMutate(prof *profile.Profile, a *Appointment) bool {
	if isAssignee(prof, a) {
		return true
	}
	return prof != nil && prof.Kind == profile.KindWorker && isSubject(prof, a)
}
