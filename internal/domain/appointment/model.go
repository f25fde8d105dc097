package appointment

import (
	"time"

	"github.com/google/uuid"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	DefaultType = "General Checkup"
)

type Priority string

const (
	PriorityNormal    Priority = "normal"
	PriorityUrgent    Priority = "urgent"
	PriorityEmergency Priority = "emergency"
)

// Appointment is owned by exactly one subject, a worker or a patient, and
// assigned to one doctor. Date and Time are kept as entered; ScheduledAt is
// the same instant resolved in the service time zone.
type Appointment struct {
	ID          uuid.UUID  `json:"id"`
	WorkerID    *uuid.UUID `json:"workerId,omitempty"`
	PatientID   *uuid.UUID `json:"patientId,omitempty"`
	DoctorID    uuid.UUID  `json:"doctorId"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	ScheduledAt time.Time  `json:"scheduledAt"`
	Type        string     `json:"type"`
	Hospital    string     `json:"hospital"`
	Department  string     `json:"department"`
	Notes       string     `json:"notes"`
	Contact     string     `json:"contact"`
	Address     string     `json:"address"`
	Priority    Priority   `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// SubjectID returns the owning worker or patient profile id.
func (a *Appointment) SubjectID() uuid.UUID {
	if a.WorkerID != nil {
		return *a.WorkerID
	}
	if a.PatientID != nil {
		return *a.PatientID
	}
	return uuid.Nil
}

func (a *Appointment) Clone() *Appointment {
	cp := *a
	if a.WorkerID != nil {
		id := *a.WorkerID
		cp.WorkerID = &id
	}
	if a.PatientID != nil {
		id := *a.PatientID
		cp.PatientID = &id
	}
	return &cp
}

// ScheduleAt resolves a date and clock time in loc.
func ScheduleAt(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
}
