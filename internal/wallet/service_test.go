package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/owobank/owobank/internal/ledger"
)

func TestCreateDerivesAccountNumberFromPhone(t *testing.T) {
	svc := NewService(NewMemoryRepository(), ledger.NewInMemory())
	ctx := context.Background()

	w, err := svc.Create(ctx, CreateInput{OwnerID: uuid.NewString(), Phone: "+234 803 123 4567"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if w.AccountNumber != "8031234567" {
		t.Fatalf("expected last 10 phone digits, got %q", w.AccountNumber)
	}

	found, err := svc.FindByAccountNumber(ctx, "8031234567")
	if err != nil {
		t.Fatalf("find by account: %v", err)
	}
	if found.ID != w.ID {
		t.Fatalf("lookup returned a different wallet")
	}
}

func TestCreateRandomAccountNumberForShortPhone(t *testing.T) {
	svc := NewService(NewMemoryRepository(), ledger.NewInMemory())

	w, err := svc.Create(context.Background(), CreateInput{OwnerID: uuid.NewString(), Phone: "0801"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(w.AccountNumber) != 10 {
		t.Fatalf("expected 10-digit account number, got %q", w.AccountNumber)
	}
}

func TestCreateSecondWalletRejected(t *testing.T) {
	svc := NewService(NewMemoryRepository(), ledger.NewInMemory())
	ctx := context.Background()
	owner := uuid.NewString()

	if _, err := svc.Create(ctx, CreateInput{OwnerID: owner, Phone: "+2348031234567"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{OwnerID: owner, Phone: "+2348031234567"}); err != ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestDepositCreditsBalanceAndLog(t *testing.T) {
	led := ledger.NewInMemory()
	svc := NewService(NewMemoryRepository(), led)
	ctx := context.Background()
	owner := uuid.NewString()

	w, err := svc.Create(ctx, CreateInput{OwnerID: owner, Phone: "+2348031234567"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := svc.Deposit(ctx, owner, "250.50", "bank transfer")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if res.NewBalance.StringFixed(2) != "250.50" {
		t.Fatalf("expected balance 250.50, got %s", res.NewBalance)
	}

	entries, err := led.Entries(ctx, ledger.EntryQuery{Account: w.AccountNumber})
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Category != ledger.CategoryDeposit {
		t.Fatalf("expected one DEPOSIT entry, got %+v", entries)
	}
}

func TestDepositRejectsMalformedAmount(t *testing.T) {
	svc := NewService(NewMemoryRepository(), ledger.NewInMemory())
	ctx := context.Background()
	owner := uuid.NewString()

	if _, err := svc.Create(ctx, CreateInput{OwnerID: owner, Phone: "+2348031234567"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Deposit(ctx, owner, "12.345", ""); err != ledger.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
