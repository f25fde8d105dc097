package profile

import (
	"context"
	"errors"
	"fmt"

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

var tables = map[Kind]string{
	KindWorker:  "workers",
	KindPatient: "patients",
	KindDoctor:  "doctors",
}

// columns returns the select list for kind; only doctors carry a specialization.
func columns(kind Kind) string {
	if kind == KindDoctor {
		return `id, user_id, first_name, last_name, specialization, created_at`
	}
	return `id, user_id, first_name, last_name, '' AS specialization, created_at`
}

func table(kind Kind) (string, error) {
	t, ok := tables[kind]
	if !ok {
		return "", fmt.Errorf("unknown profile kind %q", kind)
	}
	return t, nil
}

func scanProfile(row pgx.Row, kind Kind) (*Profile, error) {
	p := Profile{Kind: kind}
	if err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Specialization, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) GetByUserID(ctx context.Context, kind Kind, userID string) (*Profile, error) {
	t, err := table(kind)
	if err != nil {
		return nil, err
	}
	return scanProfile(r.conn(ctx).QueryRow(ctx,
		`SELECT `+columns(kind)+` FROM `+t+` WHERE user_id = $1`, userID), kind)
}

func (r *repoPG) GetByID(ctx context.Context, kind Kind, id uuid.UUID) (*Profile, error) {
	t, err := table(kind)
	if err != nil {
		return nil, err
	}
	return scanProfile(r.conn(ctx).QueryRow(ctx,
		`SELECT `+columns(kind)+` FROM `+t+` WHERE id = $1`, id), kind)
}

func (r *repoPG) List(ctx context.Context, kind Kind, limit, offset int) ([]*Profile, int, error) {
	t, err := table(kind)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM `+t).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", t, err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+columns(kind)+` FROM `+t+` ORDER BY last_name, first_name, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", t, err)
	}
	defer rows.Close()

	var items []*Profile
	for rows.Next() {
		p, err := scanProfile(rows, kind)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
