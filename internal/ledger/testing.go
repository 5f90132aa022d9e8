package ledger

import "github.com/shopspring/decimal"

// SeedBalance is a test helper that sets the balance for an account when
// using the in-memory ledger. It bypasses the entry log, so invariant checks
// should sum entries plus the seeded amount.
func SeedBalance(l Ledger, account string, balance decimal.Decimal) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.balances[account] = balance
	}
}
