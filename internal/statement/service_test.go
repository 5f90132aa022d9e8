package statement

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/owobank/owobank/internal/ledger"
	"github.com/owobank/owobank/internal/wallet"
)

func TestResolvePeriodNamedWindows(t *testing.T) {
	// A Wednesday, so week boundaries are unambiguous.
	now := time.Date(2026, time.August, 26, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		period string
		from   time.Time
		toDay  time.Time
	}{
		{"today", day(2026, 8, 26), day(2026, 8, 26)},
		{"yesterday", day(2026, 8, 25), day(2026, 8, 25)},
		{"this_week", day(2026, 8, 24), day(2026, 8, 30)},
		{"last_week", day(2026, 8, 17), day(2026, 8, 23)},
		{"this_month", day(2026, 8, 1), day(2026, 8, 31)},
		{"last_month", day(2026, 7, 1), day(2026, 7, 31)},
		{"this_year", day(2026, 1, 1), day(2026, 12, 31)},
	}
	for _, tc := range cases {
		from, to, err := resolvePeriod(tc.period, time.Time{}, time.Time{}, now)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.period, err)
		}
		if !from.Equal(tc.from) {
			t.Errorf("%s: from = %v, want %v", tc.period, from, tc.from)
		}
		if !startOfDay(to).Equal(tc.toDay) {
			t.Errorf("%s: to = %v, want end of %v", tc.period, to, tc.toDay)
		}
		if to.Before(from) {
			t.Errorf("%s: inverted window %v .. %v", tc.period, from, to)
		}
	}
}

func TestResolvePeriodCustom(t *testing.T) {
	now := time.Date(2026, time.August, 26, 9, 0, 0, 0, time.UTC)

	from, to, err := resolvePeriod("custom", day(2026, 6, 1), day(2026, 6, 30), now)
	if err != nil {
		t.Fatalf("valid custom range rejected: %v", err)
	}
	if !from.Equal(day(2026, 6, 1)) || !startOfDay(to).Equal(day(2026, 6, 30)) {
		t.Fatalf("unexpected window %v .. %v", from, to)
	}

	if _, _, err := resolvePeriod("custom", day(2026, 6, 30), day(2026, 6, 1), now); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("inverted range: got %v, want ErrInvalidRange", err)
	}
	if _, _, err := resolvePeriod("custom", time.Time{}, day(2026, 6, 1), now); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("missing start: got %v, want ErrInvalidRange", err)
	}
	if _, _, err := resolvePeriod("custom", day(2026, 1, 1), day(2026, 6, 1), now); !errors.Is(err, ErrRangeTooWide) {
		t.Fatalf("151-day range: got %v, want ErrRangeTooWide", err)
	}
	if _, _, err := resolvePeriod("fortnight", time.Time{}, time.Time{}, now); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("unknown period: got %v, want ErrInvalidPeriod", err)
	}
}

func TestResolvePeriodCustomAtCap(t *testing.T) {
	now := time.Date(2026, time.August, 26, 9, 0, 0, 0, time.UTC)
	// 2026-03-02 .. 2026-05-31 spans exactly 90 days.
	if _, _, err := resolvePeriod("custom", day(2026, 3, 2), day(2026, 5, 31), now); err != nil {
		t.Fatalf("90-day range rejected: %v", err)
	}
	if _, _, err := resolvePeriod("custom", day(2026, 3, 1), day(2026, 5, 31), now); !errors.Is(err, ErrRangeTooWide) {
		t.Fatalf("91-day range: got %v, want ErrRangeTooWide", err)
	}
}

type statementFixture struct {
	svc     *Service
	ledger  ledger.Ledger
	repo    *MemoryRepository
	ownerID string
	account string
}

func newStatementFixture(t *testing.T, previewLimit int) *statementFixture {
	t.Helper()

	led := ledger.NewInMemory()
	wallets := wallet.NewService(wallet.NewMemoryRepository(), led)
	repo := NewMemoryRepository()

	ownerID := uuid.NewString()
	w, err := wallets.Create(context.Background(), wallet.CreateInput{OwnerID: ownerID, Phone: "+234 803 123 4567"})
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}

	return &statementFixture{
		svc:     NewService(led, wallets, repo, previewLimit),
		ledger:  led,
		repo:    repo,
		ownerID: ownerID,
		account: w.AccountNumber,
	}
}

func (f *statementFixture) credit(t *testing.T, amount, category string) {
	t.Helper()
	amt, err := ledger.ParseAmount(amount)
	if err != nil {
		t.Fatalf("parse %q: %v", amount, err)
	}
	if _, err := f.ledger.Credit(context.Background(), ledger.Posting{
		Account: f.account, Amount: amt, Category: category, Description: "test credit",
	}); err != nil {
		t.Fatalf("credit: %v", err)
	}
}

func (f *statementFixture) debit(t *testing.T, amount, category string) {
	t.Helper()
	amt, err := ledger.ParseAmount(amount)
	if err != nil {
		t.Fatalf("parse %q: %v", amount, err)
	}
	if _, err := f.ledger.Debit(context.Background(), ledger.Posting{
		Account: f.account, Amount: amt, Category: category, Description: "test debit",
	}); err != nil {
		t.Fatalf("debit: %v", err)
	}
}

func TestGenerateAggregatesExactTotals(t *testing.T) {
	f := newStatementFixture(t, 0)
	f.credit(t, "1000.00", ledger.CategoryDeposit)
	f.debit(t, "250.50", ledger.CategoryTransfer)
	f.debit(t, "99.99", ledger.CategoryAirtime)

	stmt, err := f.svc.Generate(context.Background(), Input{OwnerID: f.ownerID, Period: "today"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	rec := stmt.Record
	if rec.Count != 3 {
		t.Fatalf("count = %d, want 3", rec.Count)
	}
	if rec.TotalCredit != "1000.00" {
		t.Errorf("total credit = %s, want 1000.00", rec.TotalCredit)
	}
	if rec.TotalDebit != "350.49" {
		t.Errorf("total debit = %s, want 350.49", rec.TotalDebit)
	}
	if rec.Net != "649.51" {
		t.Errorf("net = %s, want 649.51", rec.Net)
	}
	if !strings.HasPrefix(rec.ID, "STM-") || len(rec.ID) != 16 {
		t.Errorf("statement id %q does not match STM- plus 12 hex digits", rec.ID)
	}
	if len(stmt.Entries) != 3 {
		t.Fatalf("preview has %d entries, want 3", len(stmt.Entries))
	}
	if !stmt.Entries[0].CreatedAt.Before(time.Now().Add(time.Second)) {
		t.Errorf("entry timestamp in the future: %v", stmt.Entries[0].CreatedAt)
	}
}

func TestGenerateCategoryFilter(t *testing.T) {
	f := newStatementFixture(t, 0)
	f.credit(t, "500.00", ledger.CategoryDeposit)
	f.debit(t, "100.00", ledger.CategoryAirtime)
	f.debit(t, "50.00", ledger.CategoryTransfer)

	stmt, err := f.svc.Generate(context.Background(), Input{
		OwnerID: f.ownerID, Period: "today", Category: ledger.CategoryAirtime,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if stmt.Record.Count != 1 {
		t.Fatalf("count = %d, want 1", stmt.Record.Count)
	}
	if stmt.Record.TotalDebit != "100.00" || stmt.Record.TotalCredit != "0.00" {
		t.Fatalf("totals = credit %s debit %s, want 0.00 / 100.00",
			stmt.Record.TotalCredit, stmt.Record.TotalDebit)
	}
}

func TestGeneratePreviewCapDoesNotTruncateTotals(t *testing.T) {
	f := newStatementFixture(t, 5)
	for i := 0; i < 12; i++ {
		f.credit(t, "10.00", ledger.CategoryDeposit)
	}

	stmt, err := f.svc.Generate(context.Background(), Input{OwnerID: f.ownerID, Period: "today"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(stmt.Entries) != 5 {
		t.Fatalf("preview has %d entries, want 5", len(stmt.Entries))
	}
	if stmt.Record.Count != 12 {
		t.Errorf("count = %d, want 12", stmt.Record.Count)
	}
	if stmt.Record.TotalCredit != "120.00" {
		t.Errorf("total credit = %s, want 120.00", stmt.Record.TotalCredit)
	}
}

func TestGenerateEmptyWindow(t *testing.T) {
	f := newStatementFixture(t, 0)
	f.credit(t, "500.00", ledger.CategoryDeposit)

	stmt, err := f.svc.Generate(context.Background(), Input{OwnerID: f.ownerID, Period: "yesterday"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if stmt.Record.Count != 0 || len(stmt.Entries) != 0 {
		t.Fatalf("yesterday should be empty, got count %d / %d entries",
			stmt.Record.Count, len(stmt.Entries))
	}
	if stmt.Record.Net != "0.00" {
		t.Errorf("net = %s, want 0.00", stmt.Record.Net)
	}
}

func TestGenerateRejectsInvalidPeriods(t *testing.T) {
	f := newStatementFixture(t, 0)

	if _, err := f.svc.Generate(context.Background(), Input{OwnerID: f.ownerID, Period: "fortnight"}); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("got %v, want ErrInvalidPeriod", err)
	}
	if _, err := f.svc.Generate(context.Background(), Input{
		OwnerID: f.ownerID, Period: "custom", Start: day(2026, 1, 1), End: day(2026, 6, 1),
	}); !errors.Is(err, ErrRangeTooWide) {
		t.Fatalf("got %v, want ErrRangeTooWide", err)
	}
}

func TestHistoryReturnsNewestFirst(t *testing.T) {
	f := newStatementFixture(t, 0)
	f.credit(t, "100.00", ledger.CategoryDeposit)

	base := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		f.svc.now = func() time.Time { return at }
		if _, err := f.svc.Generate(context.Background(), Input{OwnerID: f.ownerID, Period: "today"}); err != nil {
			t.Fatalf("generate %d: %v", i, err)
		}
	}

	records, err := f.svc.History(context.Background(), f.ownerID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("history has %d records, want 3", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].GeneratedAt.After(records[i-1].GeneratedAt) {
			t.Fatalf("history not newest first at index %d", i)
		}
	}

	found, err := f.svc.Find(context.Background(), f.ownerID, records[0].ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != records[0].ID {
		t.Fatalf("find returned %s, want %s", found.ID, records[0].ID)
	}
	if _, err := f.svc.Find(context.Background(), "someone-else", records[0].ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("cross-owner find: got %v, want ErrRecordNotFound", err)
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
