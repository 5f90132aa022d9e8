package statement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRecordNotFound indicates the statement id does not exist for the owner.
var ErrRecordNotFound = errors.New("statement not found")

// Repository persists statement records.
type Repository interface {
	Save(ctx context.Context, rec Record) error
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]Record, error)
	FindByID(ctx context.Context, ownerID, id string) (Record, error)
}

// PostgresRepository stores statement records in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Save(ctx context.Context, rec Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO statements (id, owner_id, account_number, period, range_from, range_to, category, entry_count, total_credit, total_debit, net, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, rec.ID, rec.OwnerID, rec.Account, rec.Period, rec.From, rec.To, rec.Category,
		rec.Count, rec.TotalCredit, rec.TotalDebit, rec.Net, rec.GeneratedAt)
	return err
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, account_number, period, range_from, range_to, category, entry_count, total_credit::text, total_debit::text, net::text, generated_at
		FROM statements
		WHERE owner_id = $1
		ORDER BY generated_at DESC
		LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) FindByID(ctx context.Context, ownerID, id string) (Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, account_number, period, range_from, range_to, category, entry_count, total_credit::text, total_debit::text, net::text, generated_at
		FROM statements
		WHERE owner_id = $1 AND id = $2
	`, ownerID, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	return rec, err
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Account, &rec.Period, &rec.From, &rec.To,
		&rec.Category, &rec.Count, &rec.TotalCredit, &rec.TotalDebit, &rec.Net, &rec.GeneratedAt)
	return rec, err
}
