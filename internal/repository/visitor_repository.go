package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartcommunity/portal/internal/domain"
)

// VisitorRepository persists visitor records.
//
// ConsumeToken and ConsumeByID are atomic check-and-set operations: they stamp
// the entry only if the record is still pending, and report pgx.ErrNoRows when
// no pending record matched. Of two concurrent calls for the same record at
// most one succeeds. ConsumeByID only matches records expected on day, the
// same rows ListPending returns for it.
type VisitorRepository interface {
	Create(ctx context.Context, visitor *domain.VisitorRecord) error
	GetByID(ctx context.Context, id string) (*domain.VisitorRecord, error)
	ListByResident(ctx context.Context, residentID string) ([]domain.VisitorRecord, error)
	ListPending(ctx context.Context, day time.Time) ([]domain.PendingVisitor, error)
	ConsumeToken(ctx context.Context, token string, checkIn domain.CheckIn) (*domain.VisitorRecord, error)
	ConsumeByID(ctx context.Context, id string, day time.Time, checkIn domain.CheckIn) (*domain.VisitorRecord, error)
}

type visitorRepository struct {
	pool *pgxpool.Pool
}

// NewVisitorRepository returns a Postgres-backed implementation.
func NewVisitorRepository(pool *pgxpool.Pool) VisitorRepository {
	return &visitorRepository{pool: pool}
}

const visitorColumns = `id, resident_id, visitor_name, visitor_phone, purpose, expected_date, qr_code,
               entry_time, exit_time, verified_by, verified_by_id, created_at, updated_at`

func (r *visitorRepository) Create(ctx context.Context, visitor *domain.VisitorRecord) error {
	const query = `
        INSERT INTO visitors (resident_id, visitor_name, visitor_phone, purpose, expected_date, qr_code)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		visitor.ResidentID,
		visitor.VisitorName,
		visitor.VisitorPhone,
		visitor.Purpose,
		visitor.ExpectedDate,
		visitor.Token,
	).Scan(&visitor.ID, &visitor.CreatedAt, &visitor.UpdatedAt)
	return mapWriteError(err)
}

func (r *visitorRepository) GetByID(ctx context.Context, id string) (*domain.VisitorRecord, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors WHERE id=$1`
	return scanVisitor(r.pool.QueryRow(ctx, query, id))
}

func (r *visitorRepository) ListByResident(ctx context.Context, residentID string) ([]domain.VisitorRecord, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors WHERE resident_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, residentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visitors []domain.VisitorRecord
	for rows.Next() {
		visitor, err := scanVisitor(rows)
		if err != nil {
			return nil, err
		}
		visitors = append(visitors, *visitor)
	}
	return visitors, rows.Err()
}

func (r *visitorRepository) ListPending(ctx context.Context, day time.Time) ([]domain.PendingVisitor, error) {
	const query = `
        SELECT v.id, v.resident_id, v.visitor_name, v.visitor_phone, v.purpose, v.expected_date, v.qr_code,
               v.entry_time, v.exit_time, v.verified_by, v.verified_by_id, v.created_at, v.updated_at,
               u.id, u.full_name, u.block, u.house_number, u.phone
        FROM visitors v
        JOIN users u ON u.id = v.resident_id
        WHERE v.entry_time IS NULL AND v.expected_date = $1
        ORDER BY v.created_at ASC`

	rows, err := r.pool.Query(ctx, query, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []domain.PendingVisitor
	for rows.Next() {
		var p domain.PendingVisitor
		if err := rows.Scan(
			&p.ID,
			&p.ResidentID,
			&p.VisitorName,
			&p.VisitorPhone,
			&p.Purpose,
			&p.ExpectedDate,
			&p.Token,
			&p.EntryTime,
			&p.ExitTime,
			&p.VerifiedBy,
			&p.VerifiedByID,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.Resident.ID,
			&p.Resident.FullName,
			&p.Resident.Block,
			&p.Resident.HouseNumber,
			&p.Resident.Phone,
		); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (r *visitorRepository) ConsumeToken(ctx context.Context, token string, checkIn domain.CheckIn) (*domain.VisitorRecord, error) {
	query := `
        UPDATE visitors SET entry_time=$2, verified_by=$3, verified_by_id=$4, updated_at=NOW()
        WHERE qr_code=$1 AND entry_time IS NULL
        RETURNING ` + visitorColumns
	return scanVisitor(r.pool.QueryRow(ctx, query, token, checkIn.At, checkIn.ActorTag, checkIn.ActorID))
}

func (r *visitorRepository) ConsumeByID(ctx context.Context, id string, day time.Time, checkIn domain.CheckIn) (*domain.VisitorRecord, error) {
	query := `
        UPDATE visitors SET entry_time=$2, verified_by=$3, verified_by_id=$4, updated_at=NOW()
        WHERE id=$1 AND expected_date=$5 AND entry_time IS NULL
        RETURNING ` + visitorColumns
	return scanVisitor(r.pool.QueryRow(ctx, query, id, checkIn.At, checkIn.ActorTag, checkIn.ActorID, day))
}

func scanVisitor(row pgx.Row) (*domain.VisitorRecord, error) {
	var v domain.VisitorRecord
	if err := row.Scan(
		&v.ID,
		&v.ResidentID,
		&v.VisitorName,
		&v.VisitorPhone,
		&v.Purpose,
		&v.ExpectedDate,
		&v.Token,
		&v.EntryTime,
		&v.ExitTime,
		&v.VerifiedBy,
		&v.VerifiedByID,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}
