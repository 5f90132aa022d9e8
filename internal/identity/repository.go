package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserNotFound indicates no user matches the lookup key.
var ErrUserNotFound = errors.New("user not found")

// Repository persists account holders.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	UpdatePINHash(ctx context.Context, id string, hash []byte) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, email, phone, first_name, last_name, password_hash, pin_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		userID, user.Email, user.Phone, user.FirstName, user.LastName, user.PasswordHash, user.PINHash, user.CreatedAt.UTC())
	return err
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrUserNotFound
	}
	return r.scanOne(r.db.QueryRow(ctx, `SELECT id, email, phone, first_name, last_name, password_hash, pin_hash, created_at
        FROM users WHERE id = $1`, userID))
}

// FindByEmail fetches a user by email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT id, email, phone, first_name, last_name, password_hash, pin_hash, created_at
        FROM users WHERE email = $1`, email))
}

// UpdatePINHash stores a new PIN hash for the user.
func (r *PostgresRepository) UpdatePINHash(ctx context.Context, id string, hash []byte) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrUserNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET pin_hash = $1 WHERE id = $2`, hash, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		user      User
	)
	if err := row.Scan(&id, &user.Email, &user.Phone, &user.FirstName, &user.LastName, &user.PasswordHash, &user.PINHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
