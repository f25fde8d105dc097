package notification

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/migrantcare/healthtrack/internal/domain/appointment"
	"github.com/migrantcare/healthtrack/internal/domain/healthrecord"
	"github.com/migrantcare/healthtrack/internal/domain/profile"
	"github.com/migrantcare/healthtrack/internal/platform/apperror"
	"github.com/migrantcare/healthtrack/internal/platform/auth"
	"github.com/migrantcare/healthtrack/internal/platform/clock"
)

const (
	UpcomingAppointmentLimit = 3
	RecentRecordLimit        = 2

	displayDate = "02 Jan 2006"

	schemeID      = "scheme-1"
	schemeTitle   = "Government Health Scheme"
	schemeMessage = "You may be eligible for the Kerala Migrant Health Insurance Scheme. Apply now to get coverage."
)

type ProfileResolver interface {
	Resolve(ctx context.Context, p auth.Principal) (*profile.Profile, error)
}

type AppointmentSource interface {
	Upcoming(ctx context.Context, subjectID uuid.UUID, from time.Time, limit int) ([]*appointment.Appointment, error)
}

type RecordSource interface {
	ListRecentBySubject(ctx context.Context, subjectID uuid.UUID, limit int) ([]*healthrecord.Record, error)
}

// Aggregator builds a principal's notification feed from upcoming
// appointments, recent health records and the scheme announcement.
type Aggregator struct {
	profiles     ProfileResolver
	appointments AppointmentSource
	records      RecordSource
	clock        clock.Clock
	logger       zerolog.Logger
}

func NewAggregator(profiles ProfileResolver, appointments AppointmentSource, records RecordSource, clk clock.Clock, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		profiles:     profiles,
		appointments: appointments,
		records:      records,
		clock:        clk,
		logger:       logger,
	}
}

// Feed returns the ordered feed for p, newest first. A missing profile only
// drops the personalized items; store faults fail the whole feed.
func (a *Aggregator) Feed(ctx context.Context, p auth.Principal) ([]Item, error) {
	now := a.clock.Now()

	prof, err := a.subject(ctx, p)
	if err != nil {
		return nil, a.fault(p, "resolve profile", err)
	}

	var items []Item
	if prof != nil {
		var (
			appts []*appointment.Appointment
			recs  []*healthrecord.Record
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			appts, err = a.appointments.Upcoming(gctx, prof.ID, now, UpcomingAppointmentLimit)
			if err != nil {
				return fmt.Errorf("upcoming appointments: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			recs, err = a.records.ListRecentBySubject(gctx, prof.ID, RecentRecordLimit)
			if err != nil {
				return fmt.Errorf("recent health records: %w", err)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, a.fault(p, "build feed", err)
		}

		items = make([]Item, 0, len(appts)+len(recs)+1)
		for _, ap := range limitAppointments(appts) {
			items = append(items, appointmentItem(ap))
		}
		for _, rec := range limitRecords(recs) {
			items = append(items, recordItem(rec))
		}
	}

	items = append(items, schemeItem(now))

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	return items, nil
}

// subject resolves the worker or patient profile behind p. Other profile
// kinds get no personalized items.
func (a *Aggregator) subject(ctx context.Context, p auth.Principal) (*profile.Profile, error) {
	if p.Role != auth.RoleWorker && p.Role != auth.RolePatient {
		return nil, nil
	}
	return a.profiles.Resolve(ctx, p)
}

func (a *Aggregator) fault(p auth.Principal, op string, err error) error {
	a.logger.Error().Err(err).
		Str("user_id", p.UserID).
		Str("role", p.Role).
		Msg("notification feed failed")
	return apperror.DataAccess(op, err)
}

func limitAppointments(in []*appointment.Appointment) []*appointment.Appointment {
	if len(in) > UpcomingAppointmentLimit {
		return in[:UpcomingAppointmentLimit]
	}
	return in
}

func limitRecords(in []*healthrecord.Record) []*healthrecord.Record {
	if len(in) > RecentRecordLimit {
		return in[:RecentRecordLimit]
	}
	return in
}

func appointmentItem(ap *appointment.Appointment) Item {
	date := ap.CreatedAt
	if date.IsZero() {
		date = ap.ScheduledAt
	}
	return Item{
		ID:         "app-" + ap.ID.String(),
		Type:       KindAppointment,
		Title:      "Upcoming: " + ap.Type,
		Message:    fmt.Sprintf("You have an appointment scheduled for %s at %s.", calendarDate(ap), ap.Time),
		Date:       date,
		Priority:   PriorityHigh,
		Read:       false,
		ActionURL:  "/appointments",
		ActionText: "View Appointment",
		Icon:       KindAppointment.Icon(),
	}
}

// calendarDate formats the appointment's calendar date as entered, falling
// back to the scheduled instant.
func calendarDate(ap *appointment.Appointment) string {
	if d, err := time.Parse(appointment.DateLayout, ap.Date); err == nil {
		return d.Format(displayDate)
	}
	return ap.ScheduledAt.Format(displayDate)
}

func recordItem(rec *healthrecord.Record) Item {
	return Item{
		ID:         "rec-" + rec.ID,
		Type:       KindHealthAlert,
		Title:      "New Health Record: " + rec.Diagnosis,
		Message:    fmt.Sprintf("A new health record was added on %s.", rec.Date.Format(displayDate)),
		Date:       rec.Date,
		Priority:   PriorityNormal,
		Read:       true,
		ActionURL:  "/health-records",
		ActionText: "View Report",
		Icon:       KindHealthAlert.Icon(),
	}
}

func schemeItem(now time.Time) Item {
	return Item{
		ID:         schemeID,
		Type:       KindScheme,
		Title:      schemeTitle,
		Message:    schemeMessage,
		Date:       now,
		Priority:   PriorityNormal,
		Read:       false,
		ActionURL:  "/government-schemes",
		ActionText: "Learn More",
		Icon:       KindScheme.Icon(),
	}
}
