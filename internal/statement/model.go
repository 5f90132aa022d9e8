package statement

import "time"

// Record is the durable trace of a generated statement. The entries
// themselves are not stored; they are re-read from the transaction log
// when a statement is regenerated.
type Record struct {
	ID          string
	OwnerID     string
	Account     string
	Period      string
	From        time.Time
	To          time.Time
	Category    string
	Count       int
	TotalCredit string
	TotalDebit  string
	Net         string
	GeneratedAt time.Time
}
