package beneficiary

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no beneficiary matches the lookup.
var ErrNotFound = errors.New("beneficiary not found")

// Repository persists saved counterparties. A beneficiary is unique per
// (owner, account number, bank code); saving an existing one bumps its usage.
type Repository interface {
	Save(ctx context.Context, b Beneficiary) (Beneficiary, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Beneficiary, error)
	Delete(ctx context.Context, ownerID, id string) error
	UpdateNickname(ctx context.Context, ownerID, id, nickname string) error
}

// PostgresRepository stores beneficiaries in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed beneficiary repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save inserts the beneficiary or, when it already exists for the owner,
// bumps its transfer count and last-used timestamp.
func (r *PostgresRepository) Save(ctx context.Context, b Beneficiary) (Beneficiary, error) {
	ownerID, err := uuid.Parse(b.OwnerID)
	if err != nil {
		return Beneficiary{}, err
	}
	now := time.Now().UTC()
	row := r.db.QueryRow(ctx, `INSERT INTO beneficiaries
        (id, owner_id, name, account_number, bank_code, bank_name, nickname, transfer_count, created_at, last_used)
        VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $8)
        ON CONFLICT (owner_id, account_number, bank_code) DO UPDATE
            SET transfer_count = beneficiaries.transfer_count + 1, last_used = $8
        RETURNING id, name, nickname, transfer_count, created_at, last_used`,
		uuid.New(), ownerID, b.Name, b.AccountNumber, b.BankCode, b.BankName, b.Nickname, now)

	var id uuid.UUID
	var createdAt, lastUsed time.Time
	if err := row.Scan(&id, &b.Name, &b.Nickname, &b.TransferCount, &createdAt, &lastUsed); err != nil {
		return Beneficiary{}, err
	}
	b.ID = id.String()
	b.CreatedAt = createdAt.UTC()
	b.LastUsed = lastUsed.UTC()
	return b, nil
}

// ListByOwner returns the owner's beneficiaries, most recently used first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Beneficiary, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, name, account_number, bank_code, bank_name, nickname, transfer_count, created_at, last_used
        FROM beneficiaries WHERE owner_id = $1 ORDER BY last_used DESC`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Beneficiary
	for rows.Next() {
		var (
			b                  Beneficiary
			id                 uuid.UUID
			createdAt, lastUse time.Time
		)
		if err := rows.Scan(&id, &b.Name, &b.AccountNumber, &b.BankCode, &b.BankName, &b.Nickname, &b.TransferCount, &createdAt, &lastUse); err != nil {
			return nil, err
		}
		b.ID = id.String()
		b.OwnerID = ownerID
		b.CreatedAt = createdAt.UTC()
		b.LastUsed = lastUse.UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

// Delete removes one of the owner's beneficiaries.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return ErrNotFound
	}
	beneficiaryID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM beneficiaries WHERE id = $1 AND owner_id = $2`, beneficiaryID, owner)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateNickname renames one of the owner's beneficiaries.
func (r *PostgresRepository) UpdateNickname(ctx context.Context, ownerID, id, nickname string) error {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return ErrNotFound
	}
	beneficiaryID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE beneficiaries SET nickname = $1 WHERE id = $2 AND owner_id = $3`, nickname, beneficiaryID, owner)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
