// Package sandbox generates reproducible demo data for development
// databases: doctors, workers and patients with appointments and health
// records around a reference date.
package sandbox

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/migrantcare/healthtrack/internal/platform/db"
)

// SeedConfig controls the volume and shape of generated data.
type SeedConfig struct {
	Doctors                int
	Workers                int
	Patients               int
	AppointmentsPerSubject int
	RecordsPerSubject      int
	Seed                   int64
}

func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Doctors:                5,
		Workers:                20,
		Patients:               10,
		AppointmentsPerSubject: 3,
		RecordsPerSubject:      2,
	}
}

// SeedResult summarizes what Load inserted.
type SeedResult struct {
	Doctors      int           `json:"doctors"`
	Workers      int           `json:"workers"`
	Patients     int           `json:"patients"`
	Appointments int           `json:"appointments"`
	Records      int           `json:"records"`
	Duration     time.Duration `json:"duration"`
}

type Profile struct {
	ID             uuid.UUID
	UserID         string
	FirstName      string
	LastName       string
	Specialization string
}

type Appointment struct {
	ID          uuid.UUID
	WorkerID    *uuid.UUID
	PatientID   *uuid.UUID
	DoctorID    uuid.UUID
	Date        time.Time
	Time        string
	ScheduledAt time.Time
	Type        string
	Hospital    string
	Department  string
	Contact     string
	Address     string
	Priority    string
}

type Record struct {
	ID        uuid.UUID
	WorkerID  *uuid.UUID
	PatientID *uuid.UUID
	Diagnosis string
	Date      time.Time
}

// Dataset is one generated batch, ready to insert.
type Dataset struct {
	Doctors      []Profile
	Workers      []Profile
	Patients     []Profile
	Appointments []Appointment
	Records      []Record
}

var (
	firstNames = []string{
		"Ravi", "Suresh", "Anil", "Manoj", "Rajesh", "Sanjay", "Imran", "Bikash",
		"Deepak", "Arjun", "Meera", "Lakshmi", "Priya", "Anjali", "Fatima",
		"Sunita", "Kavya", "Rekha", "Pooja", "Nisha",
	}
	lastNames = []string{
		"Kumar", "Singh", "Das", "Mondal", "Yadav", "Nair", "Menon", "Pillai",
		"Thomas", "Khan", "Sharma", "Paswan", "Biswas", "Roy", "George",
	}
	specializations = []string{
		"General Medicine", "Pulmonology", "Dermatology", "Orthopaedics",
		"Cardiology", "Occupational Health",
	}
	appointmentTypes = []string{
		"General Checkup", "Vaccination", "Follow-up", "Blood Test", "Eye Checkup",
	}
	hospitals = []string{
		"General Hospital Ernakulam", "Government Medical College Kozhikode",
		"Taluk Hospital Perumbavoor", "District Hospital Aluva",
	}
	departments = []string{"Medicine", "Orthopaedics", "Dermatology", "ENT", "Pulmonology"}
	towns       = []string{"Perumbavoor", "Kakkanad", "Aluva", "Kalamassery", "Angamaly"}
	diagnoses   = []string{
		"Hypertension", "Respiratory Infection", "Skin Allergy", "Back Strain",
		"Seasonal Fever", "Anaemia", "Vitamin D Deficiency",
	}
	slots      = []string{"09:00", "09:30", "10:00", "10:30", "11:00", "14:00", "15:30"}
	priorities = []string{"normal", "normal", "normal", "urgent", "emergency"}
)

// DataGenerator produces deterministic demo rows.
type DataGenerator struct {
	rng     *rand.Rand
	counter int
}

// NewDataGenerator returns a generator seeded for reproducibility. If seed is
// 0 a time-based seed is chosen.
func NewDataGenerator(seed int64) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DataGenerator{rng: rand.New(rand.NewSource(seed))}
}

func (g *DataGenerator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

// uuid draws a version 4 UUID from the seeded source.
func (g *DataGenerator) uuid() uuid.UUID {
	var b [16]byte
	g.rng.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return uuid.UUID(b)
}

func (g *DataGenerator) profile(prefix string) Profile {
	g.counter++
	return Profile{
		ID:        g.uuid(),
		UserID:    fmt.Sprintf("%s-%04d", prefix, g.counter),
		FirstName: g.pick(firstNames),
		LastName:  g.pick(lastNames),
	}
}

func (g *DataGenerator) phone() string {
	return fmt.Sprintf("9%09d", g.rng.Intn(1000000000))
}

// appointment schedules around ref: roughly a third in the past, the rest
// within the next 60 days.
func (g *DataGenerator) appointment(subject Profile, isWorker bool, doctor Profile, ref time.Time, loc *time.Location) Appointment {
	offset := g.rng.Intn(90) - 30
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, offset)
	slot := g.pick(slots)
	at, _ := time.ParseInLocation("2006-01-02 15:04", day.Format("2006-01-02")+" "+slot, loc)

	subjectID := subject.ID
	a := Appointment{
		ID:          g.uuid(),
		DoctorID:    doctor.ID,
		Date:        time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		Time:        slot,
		ScheduledAt: at,
		Type:        g.pick(appointmentTypes),
		Hospital:    g.pick(hospitals),
		Department:  g.pick(departments),
		Contact:     g.phone(),
		Address:     g.pick(towns) + ", Ernakulam",
		Priority:    g.pick(priorities),
	}
	if isWorker {
		a.WorkerID = &subjectID
	} else {
		a.PatientID = &subjectID
	}
	return a
}

func (g *DataGenerator) record(subject Profile, isWorker bool, ref time.Time) Record {
	subjectID := subject.ID
	r := Record{
		ID:        g.uuid(),
		Diagnosis: g.pick(diagnoses),
		Date:      ref.AddDate(0, 0, -g.rng.Intn(365)).UTC().Truncate(24 * time.Hour),
	}
	if isWorker {
		r.WorkerID = &subjectID
	} else {
		r.PatientID = &subjectID
	}
	return r
}

// Generate builds a dataset for cfg with appointment dates relative to ref.
func Generate(cfg SeedConfig, ref time.Time, loc *time.Location) (*Dataset, error) {
	if cfg.Doctors <= 0 && (cfg.Workers > 0 || cfg.Patients > 0) && cfg.AppointmentsPerSubject > 0 {
		return nil, fmt.Errorf("appointments need at least one doctor")
	}
	if loc == nil {
		loc = time.UTC
	}

	g := NewDataGenerator(cfg.Seed)
	ds := &Dataset{}

	for i := 0; i < cfg.Doctors; i++ {
		d := g.profile("doctor")
		d.Specialization = g.pick(specializations)
		ds.Doctors = append(ds.Doctors, d)
	}
	for i := 0; i < cfg.Workers; i++ {
		ds.Workers = append(ds.Workers, g.profile("worker"))
	}
	for i := 0; i < cfg.Patients; i++ {
		ds.Patients = append(ds.Patients, g.profile("patient"))
	}

	addFor := func(subject Profile, isWorker bool) {
		for j := 0; j < cfg.AppointmentsPerSubject; j++ {
			doctor := ds.Doctors[g.rng.Intn(len(ds.Doctors))]
			ds.Appointments = append(ds.Appointments, g.appointment(subject, isWorker, doctor, ref, loc))
		}
		for j := 0; j < cfg.RecordsPerSubject; j++ {
			ds.Records = append(ds.Records, g.record(subject, isWorker, ref))
		}
	}
	for _, w := range ds.Workers {
		addFor(w, true)
	}
	for _, p := range ds.Patients {
		addFor(p, false)
	}
	return ds, nil
}

// Load inserts ds in a single transaction.
func Load(ctx context.Context, b db.TxBeginner, ds *Dataset, now time.Time) (*SeedResult, error) {
	start := time.Now()
	err := db.WithTx(ctx, b, func(ctx context.Context) error {
		tx := db.TxFromContext(ctx)
		batch := &pgx.Batch{}

		for _, d := range ds.Doctors {
			batch.Queue(`INSERT INTO doctors (id, user_id, first_name, last_name, specialization) VALUES ($1,$2,$3,$4,$5)`,
				d.ID, d.UserID, d.FirstName, d.LastName, d.Specialization)
		}
		for _, w := range ds.Workers {
			batch.Queue(`INSERT INTO workers (id, user_id, first_name, last_name) VALUES ($1,$2,$3,$4)`,
				w.ID, w.UserID, w.FirstName, w.LastName)
		}
		for _, p := range ds.Patients {
			batch.Queue(`INSERT INTO patients (id, user_id, first_name, last_name) VALUES ($1,$2,$3,$4)`,
				p.ID, p.UserID, p.FirstName, p.LastName)
		}
		for _, a := range ds.Appointments {
			batch.Queue(`INSERT INTO appointments (id, worker_id, patient_id, doctor_id, appointment_date,
				appointment_time, scheduled_at, type, hospital, department, contact, address, priority,
				created_at, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$14)`,
				a.ID, a.WorkerID, a.PatientID, a.DoctorID, a.Date, a.Time, a.ScheduledAt, a.Type,
				a.Hospital, a.Department, a.Contact, a.Address, a.Priority, now)
		}
		for _, r := range ds.Records {
			batch.Queue(`INSERT INTO health_records (id, worker_id, patient_id, diagnosis, record_date) VALUES ($1,$2,$3,$4,$5)`,
				r.ID, r.WorkerID, r.PatientID, r.Diagnosis, r.Date)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert seed data: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SeedResult{
		Doctors:      len(ds.Doctors),
		Workers:      len(ds.Workers),
		Patients:     len(ds.Patients),
		Appointments: len(ds.Appointments),
		Records:      len(ds.Records),
		Duration:     time.Since(start),
	}, nil
}
