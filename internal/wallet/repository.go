package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no wallet matches the lookup key.
	ErrNotFound = errors.New("wallet not found")

	// ErrAlreadyExists indicates the holder already owns a wallet.
	ErrAlreadyExists = errors.New("wallet already exists")
)

// Repository persists wallet metadata. Balances are not read or written
// here; the ledger owns them.
type Repository interface {
	Create(ctx context.Context, wallet Wallet) error
	GetByOwner(ctx context.Context, ownerID string) (Wallet, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (Wallet, error)
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a wallet row with a zero starting balance.
func (r *PostgresRepository) Create(ctx context.Context, wallet Wallet) error {
	walletID, err := uuid.Parse(wallet.ID)
	if err != nil {
		return err
	}
	ownerID, err := uuid.Parse(wallet.OwnerID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallets (id, owner_id, account_number, balance, created_at)
        VALUES ($1, $2, $3, 0, $4)`, walletID, ownerID, wallet.AccountNumber, wallet.CreatedAt.UTC())
	return err
}

// GetByOwner fetches the holder's wallet.
func (r *PostgresRepository) GetByOwner(ctx context.Context, ownerID string) (Wallet, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return Wallet{}, ErrNotFound
	}
	return scanWallet(r.db.QueryRow(ctx, `SELECT id, owner_id, account_number, created_at
        FROM wallets WHERE owner_id = $1`, owner))
}

// FindByAccountNumber resolves an account number to its wallet.
func (r *PostgresRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (Wallet, error) {
	return scanWallet(r.db.QueryRow(ctx, `SELECT id, owner_id, account_number, created_at
        FROM wallets WHERE account_number = $1`, accountNumber))
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		id        uuid.UUID
		ownerID   uuid.UUID
		createdAt time.Time
		w         Wallet
	)
	if err := row.Scan(&id, &ownerID, &w.AccountNumber, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	w.ID = id.String()
	w.OwnerID = ownerID.String()
	w.CreatedAt = createdAt.UTC()
	return w, nil
}
