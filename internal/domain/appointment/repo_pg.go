package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/migrantcare/healthtrack/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `id, worker_id, patient_id, doctor_id, appointment_date, appointment_time,
	scheduled_at, type, hospital, department, notes, contact, address, priority,
	created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var date time.Time
	err := row.Scan(&a.ID, &a.WorkerID, &a.PatientID, &a.DoctorID, &date, &a.Time,
		&a.ScheduledAt, &a.Type, &a.Hospital, &a.Department, &a.Notes, &a.Contact,
		&a.Address, &a.Priority, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.Date = date.Format(DateLayout)
	return &a, nil
}

func dateParam(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("appointment date %q: %w", s, err)
	}
	return d, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	date, err := dateParam(a.Date)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, worker_id, patient_id, doctor_id, appointment_date,
			appointment_time, scheduled_at, type, hospital, department, notes, contact,
			address, priority, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		a.ID, a.WorkerID, a.PatientID, a.DoctorID, date, a.Time, a.ScheduledAt,
		a.Type, a.Hospital, a.Department, a.Notes, a.Contact, a.Address, a.Priority,
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *repoPG) lockByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) Update(ctx context.Context, id uuid.UUID, mutate func(a *Appointment) error) (*Appointment, error) {
	var out *Appointment
	err := db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		a, err := r.lockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(a); err != nil {
			return err
		}
		date, err := dateParam(a.Date)
		if err != nil {
			return err
		}
		_, err = r.conn(ctx).Exec(ctx, `
			UPDATE appointments SET doctor_id=$2, appointment_date=$3, appointment_time=$4,
				scheduled_at=$5, type=$6, hospital=$7, department=$8, notes=$9, contact=$10,
				address=$11, priority=$12, updated_at=$13
			WHERE id = $1`,
			a.ID, a.DoctorID, date, a.Time, a.ScheduledAt, a.Type, a.Hospital,
			a.Department, a.Notes, a.Contact, a.Address, a.Priority, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID, check func(a *Appointment) error) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		a, err := r.lockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := check(a); err != nil {
			return err
		}
		if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete appointment: %w", err)
		}
		return nil
	})
}

func (r *repoPG) ListBySubject(ctx context.Context, subjectID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `worker_id = $1 OR patient_id = $1`, subjectID, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `doctor_id = $1`, doctorID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, where string, id uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE `+where, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE `+where+`
		ORDER BY scheduled_at DESC, id LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	items, err := collect(rows)
	return items, total, err
}

func (r *repoPG) ListUpcomingBySubject(ctx context.Context, subjectID uuid.UUID, from time.Time, limit int) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE (worker_id = $1 OR patient_id = $1) AND scheduled_at >= $2
		ORDER BY scheduled_at ASC, id LIMIT $3`, subjectID, from, limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming appointments: %w", err)
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
