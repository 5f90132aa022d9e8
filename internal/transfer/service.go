package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/owobank/owobank/internal/banks"
	"github.com/owobank/owobank/internal/beneficiary"
	"github.com/owobank/owobank/internal/identity"
	"github.com/owobank/owobank/internal/ledger"
	"github.com/owobank/owobank/internal/notification"
	"github.com/owobank/owobank/internal/pin"
	"github.com/owobank/owobank/internal/wallet"
)

var (
	// ErrRecipientNotFound indicates no local wallet matches the account
	// number of an internal transfer.
	ErrRecipientNotFound = errors.New("recipient account not found")

	// ErrSelfTransfer rejects transfers into the sender's own wallet.
	ErrSelfTransfer = errors.New("cannot transfer to own account")

	// ErrRecipientNameRequired indicates an external transfer arrived without
	// the verified recipient name.
	ErrRecipientNameRequired = errors.New("recipient name required for external transfers")

	// ErrUnknownBank rejects bank codes outside the directory.
	ErrUnknownBank = errors.New("unknown bank code")
)

// Service executes wallet-to-wallet and outbound bank transfers through the
// ledger, behind the PIN gate.
type Service struct {
	ledger        ledger.Ledger
	wallets       *wallet.Service
	users         identity.Repository
	gate          *pin.Gate
	beneficiaries beneficiary.Repository
	notifier      notification.Notifier
}

// NewService constructs a transfer service. The beneficiary repository and
// notifier are optional.
func NewService(led ledger.Ledger, wallets *wallet.Service, users identity.Repository, gate *pin.Gate, beneficiaries beneficiary.Repository, notifier notification.Notifier) *Service {
	return &Service{
		ledger:        led,
		wallets:       wallets,
		users:         users,
		gate:          gate,
		beneficiaries: beneficiaries,
		notifier:      notifier,
	}
}

// Input captures one transfer request. Amount is the wire-form decimal
// string. An empty BankCode means an internal transfer.
type Input struct {
	SenderID         string
	Amount           string
	RecipientAccount string
	BankCode         string
	Description      string
	PIN              string
	RecipientName    string
	SaveBeneficiary  bool
	Nickname         string
}

// Result describes a committed transfer.
type Result struct {
	TransactionID string
	NewBalance    string
	CompletedAt   time.Time
}

// Transfer validates, authorizes and posts one transfer as a single atomic
// unit. Every precondition failure returns before the ledger is touched;
// once posting starts, the ledger guarantees all-or-nothing.
func (s *Service) Transfer(ctx context.Context, input Input) (Result, error) {
	amount, err := ledger.ParseAmount(input.Amount)
	if err != nil {
		return Result{}, err
	}
	if input.RecipientAccount == "" {
		return Result{}, ErrRecipientNotFound
	}

	sender, err := s.gate.Authorize(ctx, input.SenderID, input.PIN)
	if err != nil {
		return Result{}, err
	}
	senderWallet, err := s.wallets.GetByOwner(ctx, input.SenderID)
	if err != nil {
		return Result{}, err
	}

	bankCode := input.BankCode
	if bankCode == "" {
		bankCode = banks.InternalCode
	}
	bank, ok := banks.Lookup(bankCode)
	if !ok {
		return Result{}, ErrUnknownBank
	}

	var res ledger.PostingResult
	recipientName := input.RecipientName

	if bankCode == banks.InternalCode {
		recipientWallet, err := s.wallets.FindByAccountNumber(ctx, input.RecipientAccount)
		if err != nil {
			if errors.Is(err, wallet.ErrNotFound) {
				return Result{}, ErrRecipientNotFound
			}
			return Result{}, err
		}
		// Identity comparison, not account-number string equality, so alias
		// account numbers can never slip past the self check.
		if recipientWallet.ID == senderWallet.ID {
			return Result{}, ErrSelfTransfer
		}

		recipient, err := s.users.FindByID(ctx, recipientWallet.OwnerID)
		if err != nil {
			return Result{}, err
		}
		// The recipient's own profile name wins over anything the caller sent.
		recipientName = recipient.DisplayName()
		senderName := sender.DisplayName()

		res, err = s.ledger.Transfer(ctx, ledger.TransferPosting{
			FromAccount: senderWallet.AccountNumber,
			ToAccount:   recipientWallet.AccountNumber,
			Amount:      amount,
			FromLeg: ledger.LegSpec{
				Description:         orDefault(input.Description, fmt.Sprintf("Transfer to %s", recipientName)),
				Counterparty:        recipientName,
				CounterpartyAccount: recipientWallet.AccountNumber,
			},
			ToLeg: ledger.LegSpec{
				Description:         orDefault(input.Description, fmt.Sprintf("Transfer from %s", senderName)),
				Counterparty:        senderName,
				CounterpartyAccount: senderWallet.AccountNumber,
			},
		})
		if err != nil {
			return Result{}, err
		}

		if s.notifier != nil {
			_ = s.notifier.Send(ctx, notification.Message{
				Kind:        notification.KindTransferReceived,
				Destination: recipient.ID,
				Body:        fmt.Sprintf("You received %s from %s", amount.StringFixed(2), senderName),
			})
		}
	} else {
		if recipientName == "" {
			return Result{}, ErrRecipientNameRequired
		}
		res, err = s.ledger.Debit(ctx, ledger.Posting{
			Account:             senderWallet.AccountNumber,
			Amount:              amount,
			Category:            ledger.CategoryTransfer,
			Description:         orDefault(input.Description, fmt.Sprintf("Transfer to %s", recipientName)),
			Counterparty:        recipientName,
			CounterpartyAccount: input.RecipientAccount,
		})
		if err != nil {
			return Result{}, err
		}
	}

	if input.SaveBeneficiary && s.beneficiaries != nil {
		// Best effort; a failed save never unwinds a committed transfer.
		_, _ = s.beneficiaries.Save(ctx, beneficiary.Beneficiary{
			OwnerID:       input.SenderID,
			Name:          recipientName,
			AccountNumber: input.RecipientAccount,
			BankCode:      bankCode,
			BankName:      bank.Name,
			Nickname:      input.Nickname,
		})
	}

	return Result{
		TransactionID: res.TransactionID,
		NewBalance:    res.NewBalance.StringFixed(2),
		CompletedAt:   time.Now().UTC(),
	}, nil
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
