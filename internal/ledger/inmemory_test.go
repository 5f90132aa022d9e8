package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestInMemoryLedger_TransferMaintainsInvariant(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	if err := l.EnsureAccount(ctx, "1000000001"); err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	if err := l.EnsureAccount(ctx, "1000000002"); err != nil {
		t.Fatalf("ensure account: %v", err)
	}

	if _, err := l.Credit(ctx, Posting{Account: "1000000001", Amount: dec(t, "1000.00"), Category: CategoryDeposit, Description: "Wallet funding"}); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	res, err := l.Transfer(ctx, TransferPosting{
		FromAccount: "1000000001",
		ToAccount:   "1000000002",
		Amount:      dec(t, "300.00"),
		FromLeg:     LegSpec{Description: "Transfer to Jane", Counterparty: "Jane Smith", CounterpartyAccount: "1000000002"},
		ToLeg:       LegSpec{Description: "Transfer from John", Counterparty: "John Doe", CounterpartyAccount: "1000000001"},
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := res.NewBalance.StringFixed(2); got != "700.00" {
		t.Fatalf("expected sender balance 700.00, got %s", got)
	}

	for _, account := range []string{"1000000001", "1000000002"} {
		balance, err := l.Balance(ctx, account)
		if err != nil {
			t.Fatalf("balance %s: %v", account, err)
		}
		entries, err := l.Entries(ctx, EntryQuery{Account: account})
		if err != nil {
			t.Fatalf("entries %s: %v", account, err)
		}
		sum := decimal.Zero
		for _, e := range entries {
			sum = sum.Add(e.Amount)
		}
		if !sum.Equal(balance) {
			t.Fatalf("account %s: entry sum %s != balance %s", account, sum, balance)
		}
	}
}

func TestInMemoryLedger_TransferRecordsLinkedEntries(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	l.EnsureAccount(ctx, "1000000001")
	l.EnsureAccount(ctx, "1000000002")
	SeedBalance(l, "1000000001", dec(t, "1000.00"))

	if _, err := l.Transfer(ctx, TransferPosting{
		FromAccount: "1000000001",
		ToAccount:   "1000000002",
		Amount:      dec(t, "300.00"),
		FromLeg:     LegSpec{Counterparty: "Jane Smith", CounterpartyAccount: "1000000002"},
		ToLeg:       LegSpec{Counterparty: "John Doe", CounterpartyAccount: "1000000001"},
	}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	senderEntries, _ := l.Entries(ctx, EntryQuery{Account: "1000000001"})
	if len(senderEntries) != 1 {
		t.Fatalf("expected 1 sender entry, got %d", len(senderEntries))
	}
	if senderEntries[0].Amount.StringFixed(2) != "-300.00" {
		t.Fatalf("expected debit of -300.00, got %s", senderEntries[0].Amount)
	}
	if senderEntries[0].CounterpartyAccount != "1000000002" {
		t.Fatalf("sender entry should reference recipient account, got %q", senderEntries[0].CounterpartyAccount)
	}

	recipientEntries, _ := l.Entries(ctx, EntryQuery{Account: "1000000002"})
	if len(recipientEntries) != 1 {
		t.Fatalf("expected 1 recipient entry, got %d", len(recipientEntries))
	}
	if recipientEntries[0].Amount.StringFixed(2) != "300.00" {
		t.Fatalf("expected credit of 300.00, got %s", recipientEntries[0].Amount)
	}
	if recipientEntries[0].Counterparty != "John Doe" {
		t.Fatalf("recipient entry should name the sender, got %q", recipientEntries[0].Counterparty)
	}
}

func TestInMemoryLedger_InsufficientFundsLeavesStateUntouched(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	l.EnsureAccount(ctx, "1000000001")
	l.EnsureAccount(ctx, "1000000002")
	SeedBalance(l, "1000000001", dec(t, "50.00"))

	_, err := l.Transfer(ctx, TransferPosting{FromAccount: "1000000001", ToAccount: "1000000002", Amount: dec(t, "100.00")})
	if err != ErrInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	balance, _ := l.Balance(ctx, "1000000001")
	if balance.StringFixed(2) != "50.00" {
		t.Fatalf("sender balance mutated: %s", balance)
	}
	for _, account := range []string{"1000000001", "1000000002"} {
		entries, _ := l.Entries(ctx, EntryQuery{Account: account})
		if len(entries) != 0 {
			t.Fatalf("account %s: expected empty log, got %d entries", account, len(entries))
		}
	}
}

func TestInMemoryLedger_ConcurrentDoubleSpend(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	l.EnsureAccount(ctx, "1000000001")
	l.EnsureAccount(ctx, "1000000002")
	SeedBalance(l, "1000000001", dec(t, "400.00"))

	// Two transfers of the full balance race; at most one may commit.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Transfer(ctx, TransferPosting{
				FromAccount: "1000000001",
				ToAccount:   "1000000002",
				Amount:      dec(t, "400.00"),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch err {
		case nil:
			succeeded++
		case ErrInsufficientFunds:
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one transfer to commit, got %d", succeeded)
	}

	balance, _ := l.Balance(ctx, "1000000001")
	if balance.StringFixed(2) != "0.00" {
		t.Fatalf("expected final balance 0.00, got %s", balance)
	}
	if balance.IsNegative() {
		t.Fatalf("balance went negative: %s", balance)
	}
}

func TestInMemoryLedger_ConcurrentDebitsSerialize(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	l.EnsureAccount(ctx, "1000000001")
	SeedBalance(l, "1000000001", dec(t, "1000.00"))

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Debit(ctx, Posting{Account: "1000000001", Amount: dec(t, "100.00"), Category: CategoryAirtime}); err != nil {
				t.Errorf("debit: %v", err)
			}
		}()
	}
	wg.Wait()

	balance, _ := l.Balance(ctx, "1000000001")
	if balance.StringFixed(2) != "0.00" {
		t.Fatalf("expected balance 0.00 after %d debits, got %s", workers, balance)
	}
}

func TestInMemoryLedger_EntriesNewestFirst(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	l.EnsureAccount(ctx, "1000000001")

	for _, amount := range []string{"10.00", "20.00", "30.00"} {
		if _, err := l.Credit(ctx, Posting{Account: "1000000001", Amount: dec(t, amount), Category: CategoryDeposit}); err != nil {
			t.Fatalf("credit %s: %v", amount, err)
		}
	}

	entries, err := l.Entries(ctx, EntryQuery{Account: "1000000001"})
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Amount.StringFixed(2) != "30.00" {
		t.Fatalf("expected newest entry first, got %s", entries[0].Amount)
	}
	if entries[2].Amount.StringFixed(2) != "10.00" {
		t.Fatalf("expected oldest entry last, got %s", entries[2].Amount)
	}
}

func TestInMemoryLedger_SummarizeExactTotals(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	l.EnsureAccount(ctx, "1000000001")

	// Amounts chosen to expose binary float drift if it ever crept in.
	for i := 0; i < 10; i++ {
		if _, err := l.Credit(ctx, Posting{Account: "1000000001", Amount: dec(t, "0.10"), Category: CategoryDeposit}); err != nil {
			t.Fatalf("credit: %v", err)
		}
	}
	if _, err := l.Debit(ctx, Posting{Account: "1000000001", Amount: dec(t, "0.30"), Category: CategoryAirtime}); err != nil {
		t.Fatalf("debit: %v", err)
	}

	s, err := l.Summarize(ctx, EntryQuery{Account: "1000000001"})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Count != 11 {
		t.Fatalf("expected 11 entries, got %d", s.Count)
	}
	if s.TotalCredit.StringFixed(2) != "1.00" {
		t.Fatalf("expected total credit 1.00, got %s", s.TotalCredit)
	}
	if s.TotalDebit.StringFixed(2) != "0.30" {
		t.Fatalf("expected total debit 0.30, got %s", s.TotalDebit)
	}
	if s.Net.StringFixed(2) != "0.70" {
		t.Fatalf("expected net 0.70, got %s", s.Net)
	}
}

func TestInMemoryLedger_CategoryFilters(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	l.EnsureAccount(ctx, "1000000001")

	l.Credit(ctx, Posting{Account: "1000000001", Amount: dec(t, "500.00"), Category: CategoryDeposit})
	l.Debit(ctx, Posting{Account: "1000000001", Amount: dec(t, "100.00"), Category: CategoryAirtime})
	l.Debit(ctx, Posting{Account: "1000000001", Amount: dec(t, "50.00"), Category: CategoryData})

	airtime, _ := l.Entries(ctx, EntryQuery{Account: "1000000001", Category: CategoryAirtime})
	if len(airtime) != 1 {
		t.Fatalf("expected 1 airtime entry, got %d", len(airtime))
	}

	debits, _ := l.Entries(ctx, EntryQuery{Account: "1000000001", Category: "withdrawal"})
	if len(debits) != 2 {
		t.Fatalf("expected 2 debit entries, got %d", len(debits))
	}

	credits, _ := l.Entries(ctx, EntryQuery{Account: "1000000001", Category: "deposit"})
	if len(credits) != 1 {
		t.Fatalf("expected 1 credit entry, got %d", len(credits))
	}
}

func TestParseAmount(t *testing.T) {
	if _, err := ParseAmount("300.00"); err != nil {
		t.Fatalf("valid amount rejected: %v", err)
	}
	if _, err := ParseAmount("0.01"); err != nil {
		t.Fatalf("valid amount rejected: %v", err)
	}

	for _, bad := range []string{"", "abc", "-5.00", "0", "0.00", "1.234", "1e2.5"} {
		if _, err := ParseAmount(bad); err != ErrInvalidAmount {
			t.Fatalf("expected ErrInvalidAmount for %q, got %v", bad, err)
		}
	}
}
