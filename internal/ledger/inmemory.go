package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memEntry struct {
	Entry
	seq int
}

type inMemoryLedger struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal
	entries  map[string][]memEntry
	seq      int
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit
// tests and for running the API without a database.
func NewInMemory() Ledger {
	return &inMemoryLedger{
		balances: make(map[string]decimal.Decimal),
		entries:  make(map[string][]memEntry),
	}
}

func (l *inMemoryLedger) EnsureAccount(_ context.Context, account string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.balances[account]; !exists {
		l.balances[account] = decimal.Zero
	}
	return nil
}

func (l *inMemoryLedger) Balance(_ context.Context, account string) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	balance, exists := l.balances[account]
	if !exists {
		return decimal.Decimal{}, ErrWalletNotFound
	}
	return balance, nil
}

func (l *inMemoryLedger) Transfer(_ context.Context, p TransferPosting) (PostingResult, error) {
	if err := validPosting(p.FromAccount, p.Amount); err != nil {
		return PostingResult{}, err
	}
	if p.ToAccount == "" || p.ToAccount == p.FromAccount {
		return PostingResult{}, fmt.Errorf("transfer requires two distinct accounts")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fromBalance, ok := l.balances[p.FromAccount]
	if !ok {
		return PostingResult{}, ErrWalletNotFound
	}
	toBalance, ok := l.balances[p.ToAccount]
	if !ok {
		return PostingResult{}, ErrWalletNotFound
	}
	if fromBalance.LessThan(p.Amount) {
		return PostingResult{}, ErrInsufficientFunds
	}

	now := time.Now().UTC()
	l.balances[p.FromAccount] = fromBalance.Sub(p.Amount)
	l.balances[p.ToAccount] = toBalance.Add(p.Amount)

	debitID := l.append(p.FromAccount, p.Amount.Neg(), CategoryTransfer, p.FromLeg, now)
	l.append(p.ToAccount, p.Amount, CategoryTransfer, p.ToLeg, now)

	return PostingResult{TransactionID: debitID, NewBalance: l.balances[p.FromAccount]}, nil
}

func (l *inMemoryLedger) Debit(_ context.Context, p Posting) (PostingResult, error) {
	if err := validPosting(p.Account, p.Amount); err != nil {
		return PostingResult{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[p.Account]
	if !ok {
		return PostingResult{}, ErrWalletNotFound
	}
	if balance.LessThan(p.Amount) {
		return PostingResult{}, ErrInsufficientFunds
	}

	l.balances[p.Account] = balance.Sub(p.Amount)
	leg := LegSpec{Description: p.Description, Counterparty: p.Counterparty, CounterpartyAccount: p.CounterpartyAccount}
	id := l.append(p.Account, p.Amount.Neg(), p.Category, leg, time.Now().UTC())

	return PostingResult{TransactionID: id, NewBalance: l.balances[p.Account]}, nil
}

func (l *inMemoryLedger) Credit(_ context.Context, p Posting) (PostingResult, error) {
	if err := validPosting(p.Account, p.Amount); err != nil {
		return PostingResult{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[p.Account]
	if !ok {
		return PostingResult{}, ErrWalletNotFound
	}

	l.balances[p.Account] = balance.Add(p.Amount)
	leg := LegSpec{Description: p.Description, Counterparty: p.Counterparty, CounterpartyAccount: p.CounterpartyAccount}
	id := l.append(p.Account, p.Amount, p.Category, leg, time.Now().UTC())

	return PostingResult{TransactionID: id, NewBalance: l.balances[p.Account]}, nil
}

func (l *inMemoryLedger) Entries(_ context.Context, q EntryQuery) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.balances[q.Account]; !ok {
		return nil, ErrWalletNotFound
	}

	var matched []memEntry
	for _, e := range l.entries[q.Account] {
		if !q.From.IsZero() && e.CreatedAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && e.CreatedAt.After(q.To) {
			continue
		}
		if !matchesCategory(e.Entry, q.Category) {
			continue
		}
		matched = append(matched, e)
	}

	// Newest first; the insertion sequence breaks same-instant ties.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].seq > matched[j].seq
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]Entry, len(matched))
	for i, e := range matched {
		out[i] = e.Entry
	}
	return out, nil
}

func (l *inMemoryLedger) Summarize(ctx context.Context, q EntryQuery) (Summary, error) {
	full := q
	full.Limit = 0
	entries, err := l.Entries(ctx, full)
	if err != nil {
		return Summary{}, err
	}
	return summarize(entries), nil
}

// append records an entry; callers must hold the write lock.
func (l *inMemoryLedger) append(account string, amount decimal.Decimal, category string, leg LegSpec, at time.Time) string {
	l.seq++
	id := uuid.NewString()
	l.entries[account] = append(l.entries[account], memEntry{
		Entry: Entry{
			ID:                  id,
			AccountNumber:       account,
			Amount:              amount,
			Category:            category,
			Description:         leg.Description,
			Counterparty:        leg.Counterparty,
			CounterpartyAccount: leg.CounterpartyAccount,
			CreatedAt:           at,
		},
		seq: l.seq,
	})
	return id
}
