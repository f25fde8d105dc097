package healthrecord

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type readerPG struct{ pool *pgxpool.Pool }

func NewReaderPG(pool *pgxpool.Pool) Reader {
	return &readerPG{pool: pool}
}

const recordCols = `id, COALESCE(worker_id, patient_id), diagnosis, record_date`

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		r         Record
		id, subID uuid.UUID
	)
	if err := row.Scan(&id, &subID, &r.Diagnosis, &r.Date); err != nil {
		return nil, err
	}
	r.ID = id.String()
	r.SubjectID = subID.String()
	return &r, nil
}

func (r *readerPG) ListRecentBySubject(ctx context.Context, subjectID uuid.UUID, limit int) ([]*Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recordCols+` FROM health_records
		WHERE worker_id = $1 OR patient_id = $1
		ORDER BY record_date DESC, id
		LIMIT $2`, subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("query health records: %w", err)
	}
	defer rows.Close()

	var items []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan health record: %w", err)
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}
