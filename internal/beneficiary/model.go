package beneficiary

import "time"

// Beneficiary is a saved counterparty for repeat transfers. It lives outside
// the ledger invariant; losing one never affects balances.
type Beneficiary struct {
	ID            string
	OwnerID       string
	Name          string
	AccountNumber string
	BankCode      string
	BankName      string
	Nickname      string
	TransferCount int
	CreatedAt     time.Time
	LastUsed      time.Time
}
