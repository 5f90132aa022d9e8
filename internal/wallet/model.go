package wallet

import "time"

// Wallet is the balance-holding record for one account holder. Each holder
// owns at most one wallet; the account number is assigned once and never
// changes. The balance itself is owned by the ledger and is only mutated
// inside a ledger transaction.
type Wallet struct {
	ID            string
	OwnerID       string
	AccountNumber string
	CreatedAt     time.Time
}

// Balance is a point-in-time read of a wallet's funds.
type Balance struct {
	AccountNumber string
	Amount        string
	AsOf          time.Time
}
