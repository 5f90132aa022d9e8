package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresLedger persists wallet balances and transaction entries in
// PostgreSQL. Balances live on the wallets row; every mutation locks the
// affected rows with SELECT ... FOR UPDATE and writes the balance update and
// the log entries inside one transaction.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// EnsureAccount is a no-op: the wallets repository creates the balance row.
func (l *PostgresLedger) EnsureAccount(_ context.Context, _ string) error {
	return nil
}

// Balance returns the stored balance for the account number.
func (l *PostgresLedger) Balance(ctx context.Context, account string) (decimal.Decimal, error) {
	var raw string
	err := l.db.QueryRow(ctx, `SELECT balance::text FROM wallets WHERE account_number = $1`, account).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Decimal{}, ErrWalletNotFound
		}
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(raw)
}

// Transfer debits the sender, credits the recipient and appends one entry to
// each log as a single atomic unit. Rows are locked in account-number order
// so two opposing transfers cannot deadlock.
func (l *PostgresLedger) Transfer(ctx context.Context, p TransferPosting) (PostingResult, error) {
	if err := validPosting(p.FromAccount, p.Amount); err != nil {
		return PostingResult{}, err
	}
	if p.ToAccount == "" || p.ToAccount == p.FromAccount {
		return PostingResult{}, fmt.Errorf("transfer requires two distinct accounts")
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return PostingResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	first, second := p.FromAccount, p.ToAccount
	if second < first {
		first, second = second, first
	}
	firstBalance, err := lockWallet(ctx, tx, first)
	if err != nil {
		return PostingResult{}, err
	}
	secondBalance, err := lockWallet(ctx, tx, second)
	if err != nil {
		return PostingResult{}, err
	}

	fromBalance := firstBalance
	if first != p.FromAccount {
		fromBalance = secondBalance
	}
	if fromBalance.LessThan(p.Amount) {
		return PostingResult{}, ErrInsufficientFunds
	}

	now := time.Now().UTC()
	newFrom := fromBalance.Sub(p.Amount)

	if err := setBalance(ctx, tx, p.FromAccount, newFrom); err != nil {
		return PostingResult{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = balance + $1 WHERE account_number = $2`,
		p.Amount.StringFixed(2), p.ToAccount); err != nil {
		return PostingResult{}, err
	}

	debitID := uuid.New()
	if err := insertEntry(ctx, tx, debitID, p.FromAccount, p.Amount.Neg(), CategoryTransfer, p.FromLeg, now); err != nil {
		return PostingResult{}, err
	}
	if err := insertEntry(ctx, tx, uuid.New(), p.ToAccount, p.Amount, CategoryTransfer, p.ToLeg, now); err != nil {
		return PostingResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return PostingResult{}, err
	}

	return PostingResult{TransactionID: debitID.String(), NewBalance: newFrom}, nil
}

// Debit removes funds from one wallet and appends a negative entry.
func (l *PostgresLedger) Debit(ctx context.Context, p Posting) (PostingResult, error) {
	return l.post(ctx, p, true)
}

// Credit adds funds to one wallet and appends a positive entry.
func (l *PostgresLedger) Credit(ctx context.Context, p Posting) (PostingResult, error) {
	return l.post(ctx, p, false)
}

func (l *PostgresLedger) post(ctx context.Context, p Posting, debit bool) (PostingResult, error) {
	if err := validPosting(p.Account, p.Amount); err != nil {
		return PostingResult{}, err
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return PostingResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	balance, err := lockWallet(ctx, tx, p.Account)
	if err != nil {
		return PostingResult{}, err
	}

	var newBalance, entryAmount decimal.Decimal
	if debit {
		if balance.LessThan(p.Amount) {
			return PostingResult{}, ErrInsufficientFunds
		}
		newBalance = balance.Sub(p.Amount)
		entryAmount = p.Amount.Neg()
	} else {
		newBalance = balance.Add(p.Amount)
		entryAmount = p.Amount
	}

	if err := setBalance(ctx, tx, p.Account, newBalance); err != nil {
		return PostingResult{}, err
	}

	entryID := uuid.New()
	leg := LegSpec{Description: p.Description, Counterparty: p.Counterparty, CounterpartyAccount: p.CounterpartyAccount}
	if err := insertEntry(ctx, tx, entryID, p.Account, entryAmount, p.Category, leg, time.Now().UTC()); err != nil {
		return PostingResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return PostingResult{}, err
	}

	return PostingResult{TransactionID: entryID.String(), NewBalance: newBalance}, nil
}

// Entries returns the filtered log slice, newest first.
func (l *PostgresLedger) Entries(ctx context.Context, q EntryQuery) ([]Entry, error) {
	sql := `SELECT id, account_number, amount::text, category, description, counterparty, counterparty_account, created_at
        FROM transactions
        WHERE account_number = $1`
	args := []any{q.Account}

	if !q.From.IsZero() {
		args = append(args, q.From.UTC())
		sql += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if !q.To.IsZero() {
		args = append(args, q.To.UTC())
		sql += fmt.Sprintf(` AND created_at <= $%d`, len(args))
	}

	switch q.Category {
	case "", "all":
	case "deposit":
		sql += ` AND amount > 0`
	case "withdrawal":
		sql += ` AND amount < 0`
	default:
		args = append(args, q.Category)
		sql += fmt.Sprintf(` AND category = $%d`, len(args))
	}

	sql += ` ORDER BY created_at DESC, id DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := l.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			id        uuid.UUID
			raw       string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &e.AccountNumber, &raw, &e.Category, &e.Description, &e.Counterparty, &e.CounterpartyAccount, &createdAt); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, err
		}
		e.ID = id.String()
		e.Amount = amount
		e.CreatedAt = createdAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Summarize aggregates the filtered log slice with exact decimal arithmetic.
func (l *PostgresLedger) Summarize(ctx context.Context, q EntryQuery) (Summary, error) {
	full := q
	full.Limit = 0
	entries, err := l.Entries(ctx, full)
	if err != nil {
		return Summary{}, err
	}
	return summarize(entries), nil
}

func summarize(entries []Entry) Summary {
	s := Summary{TotalCredit: decimal.Zero, TotalDebit: decimal.Zero, Net: decimal.Zero}
	for _, e := range entries {
		s.Count++
		if e.Amount.IsPositive() {
			s.TotalCredit = s.TotalCredit.Add(e.Amount)
		} else {
			s.TotalDebit = s.TotalDebit.Add(e.Amount.Abs())
		}
	}
	s.Net = s.TotalCredit.Sub(s.TotalDebit)
	return s
}

func lockWallet(ctx context.Context, tx pgx.Tx, account string) (decimal.Decimal, error) {
	var raw string
	err := tx.QueryRow(ctx, `SELECT balance::text FROM wallets WHERE account_number = $1 FOR UPDATE`, account).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Decimal{}, ErrWalletNotFound
		}
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(raw)
}

func setBalance(ctx context.Context, tx pgx.Tx, account string, balance decimal.Decimal) error {
	_, err := tx.Exec(ctx, `UPDATE wallets SET balance = $1 WHERE account_number = $2`, balance.StringFixed(2), account)
	return err
}

func insertEntry(ctx context.Context, tx pgx.Tx, id uuid.UUID, account string, amount decimal.Decimal, category string, leg LegSpec, at time.Time) error {
	_, err := tx.Exec(ctx, `INSERT INTO transactions (id, account_number, amount, category, description, counterparty, counterparty_account, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, account, amount.StringFixed(2), category, leg.Description, leg.Counterparty, leg.CounterpartyAccount, at)
	return err
}
