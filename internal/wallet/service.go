package wallet

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/owobank/owobank/internal/ledger"
)

// Service exposes wallet provisioning and funding backed by the ledger.
type Service struct {
	repo   Repository
	ledger ledger.Ledger
}

// NewService builds a wallet service instance.
func NewService(repo Repository, ledger ledger.Ledger) *Service {
	return &Service{repo: repo, ledger: ledger}
}

// CreateInput captures data required to provision a wallet.
type CreateInput struct {
	OwnerID string
	Phone   string
}

// Create provisions the holder's wallet with a freshly assigned account
// number and registers the account with the ledger.
func (s *Service) Create(ctx context.Context, input CreateInput) (Wallet, error) {
	if _, err := uuid.Parse(input.OwnerID); err != nil {
		return Wallet{}, err
	}

	accountNumber, err := deriveAccountNumber(input.Phone)
	if err != nil {
		return Wallet{}, err
	}

	w := Wallet{
		ID:            uuid.New().String(),
		OwnerID:       input.OwnerID,
		AccountNumber: accountNumber,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.ledger.EnsureAccount(ctx, accountNumber); err != nil {
		return Wallet{}, err
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return Wallet{}, err
	}
	return w, nil
}

// GetByOwner retrieves the holder's wallet metadata.
func (s *Service) GetByOwner(ctx context.Context, ownerID string) (Wallet, error) {
	return s.repo.GetByOwner(ctx, ownerID)
}

// FindByAccountNumber resolves an account number to its wallet.
func (s *Service) FindByAccountNumber(ctx context.Context, accountNumber string) (Wallet, error) {
	return s.repo.FindByAccountNumber(ctx, accountNumber)
}

// Balance returns the ledger balance for the holder's wallet.
func (s *Service) Balance(ctx context.Context, ownerID string) (Balance, error) {
	w, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return Balance{}, err
	}
	amount, err := s.ledger.Balance(ctx, w.AccountNumber)
	if err != nil {
		return Balance{}, err
	}
	return Balance{AccountNumber: w.AccountNumber, Amount: amount.StringFixed(2), AsOf: time.Now().UTC()}, nil
}

// Deposit credits the holder's wallet with a DEPOSIT entry. The credit and
// the entry persist atomically through the ledger.
func (s *Service) Deposit(ctx context.Context, ownerID, amount, source string) (ledger.PostingResult, error) {
	w, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return ledger.PostingResult{}, err
	}
	amt, err := ledger.ParseAmount(amount)
	if err != nil {
		return ledger.PostingResult{}, err
	}
	description := "Wallet deposit"
	if source != "" {
		description = fmt.Sprintf("Wallet deposit via %s", source)
	}
	return s.ledger.Credit(ctx, ledger.Posting{
		Account:      w.AccountNumber,
		Amount:       amt,
		Category:     ledger.CategoryDeposit,
		Description:  description,
		Counterparty: source,
	})
}

// deriveAccountNumber follows the issuing rule for account numbers: the last
// ten digits of the holder's phone number when it is long enough, otherwise a
// random ten-digit number.
func deriveAccountNumber(phone string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) >= 10 {
		return digits[len(digits)-10:], nil
	}

	n, err := rand.Int(rand.Reader, big.NewInt(9_000_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+1_000_000_000), nil
}
