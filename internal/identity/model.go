package identity

import (
	"strings"
	"time"
)

// User represents a registered account holder. PINHash stays nil until the
// holder sets a transaction PIN; PasswordHash guards login only and is never
// consulted by the ledger.
type User struct {
	ID           string
	Email        string
	Phone        string
	FirstName    string
	LastName     string
	PasswordHash []byte
	PINHash      []byte
	CreatedAt    time.Time
}

// DisplayName renders the holder's name for counterparty fields: first and
// last name when present, otherwise the local part of the email address.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

// Credentials carries a login attempt.
type Credentials struct {
	Email    string
	Password string
}
