// Package statement aggregates the transaction log into account
// statements over named or custom periods.
package statement

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/owobank/owobank/internal/ledger"
	"github.com/owobank/owobank/internal/wallet"
)

const (
	defaultPreviewLimit = 50
	historyLimit        = 20
)

// Statement is a generated statement: the stored record plus a preview
// of the entries that fell inside the window.
type Statement struct {
	Record  Record
	Entries []ledger.Entry
}

// Input describes a statement request.
type Input struct {
	OwnerID  string
	Period   string
	Start    time.Time
	End      time.Time
	Category string
}

type Service struct {
	ledger       ledger.Ledger
	wallets      *wallet.Service
	repo         Repository
	previewLimit int
	now          func() time.Time
}

func NewService(led ledger.Ledger, wallets *wallet.Service, repo Repository, previewLimit int) *Service {
	if previewLimit <= 0 {
		previewLimit = defaultPreviewLimit
	}
	return &Service{
		ledger:       led,
		wallets:      wallets,
		repo:         repo,
		previewLimit: previewLimit,
		now:          time.Now,
	}
}

// Generate resolves the requested period, aggregates matching entries
// and records the statement. Totals are computed over every matching
// entry; the returned entry list is capped at the preview limit.
func (s *Service) Generate(ctx context.Context, in Input) (Statement, error) {
	from, to, err := resolvePeriod(in.Period, in.Start, in.End, s.now())
	if err != nil {
		return Statement{}, err
	}

	w, err := s.wallets.GetByOwner(ctx, in.OwnerID)
	if err != nil {
		return Statement{}, err
	}

	query := ledger.EntryQuery{
		Account:  w.AccountNumber,
		From:     from,
		To:       to,
		Category: in.Category,
	}
	summary, err := s.ledger.Summarize(ctx, query)
	if err != nil {
		return Statement{}, fmt.Errorf("summarize entries: %w", err)
	}

	query.Limit = s.previewLimit
	entries, err := s.ledger.Entries(ctx, query)
	if err != nil {
		return Statement{}, fmt.Errorf("list entries: %w", err)
	}

	rec := Record{
		ID:          newStatementID(),
		OwnerID:     in.OwnerID,
		Account:     w.AccountNumber,
		Period:      in.Period,
		From:        from,
		To:          to,
		Category:    in.Category,
		Count:       summary.Count,
		TotalCredit: summary.TotalCredit.StringFixed(2),
		TotalDebit:  summary.TotalDebit.StringFixed(2),
		Net:         summary.Net.StringFixed(2),
		GeneratedAt: s.now().UTC(),
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return Statement{}, fmt.Errorf("save statement: %w", err)
	}

	return Statement{Record: rec, Entries: entries}, nil
}

// History returns the owner's most recently generated statements.
func (s *Service) History(ctx context.Context, ownerID string) ([]Record, error) {
	return s.repo.ListByOwner(ctx, ownerID, historyLimit)
}

// Find returns one of the owner's statement records by id.
func (s *Service) Find(ctx context.Context, ownerID, id string) (Record, error) {
	return s.repo.FindByID(ctx, ownerID, id)
}

func newStatementID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("STM-%012X", time.Now().UnixNano()&0xFFFFFFFFFFFF)
	}
	return "STM-" + strings.ToUpper(hex.EncodeToString(buf))
}
