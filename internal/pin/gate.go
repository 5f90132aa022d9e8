// Package pin implements the authorization gate in front of every
// balance-changing operation: a wallet PIN checked against a hash at rest.
// The plaintext PIN and its hash never appear in logs or API responses.
package pin

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/owobank/owobank/internal/identity"
)

const pinLength = 4

var (
	// ErrInvalidPIN indicates a PIN of the wrong length or with non-numeric
	// characters. It is rejected before any hashing work.
	ErrInvalidPIN = errors.New("PIN must be 4 digits")

	// ErrNotSet indicates the holder has not yet set a transaction PIN.
	ErrNotSet = errors.New("transaction PIN not set")

	// ErrMismatch indicates the supplied PIN does not match the stored hash.
	ErrMismatch = errors.New("incorrect PIN")

	// ErrWeakPIN rejects trivially guessable PINs.
	ErrWeakPIN = errors.New("please choose a stronger PIN")

	// ErrConfirmation indicates the new PIN and its confirmation differ.
	ErrConfirmation = errors.New("PINs do not match")
)

// Gate authorizes ledger operations by verifying the holder's PIN.
type Gate struct {
	users identity.Repository
}

// NewGate builds an authorization gate over the identity store.
func NewGate(users identity.Repository) *Gate {
	return &Gate{users: users}
}

// Authorize loads the holder and verifies the supplied PIN. It returns the
// holder on success so callers avoid a second lookup.
func (g *Gate) Authorize(ctx context.Context, holderID, supplied string) (identity.User, error) {
	if err := validate(supplied); err != nil {
		return identity.User{}, err
	}
	user, err := g.users.FindByID(ctx, holderID)
	if err != nil {
		return identity.User{}, err
	}
	if err := Verify(user.PINHash, supplied); err != nil {
		return identity.User{}, err
	}
	return user, nil
}

// Update sets a new PIN for the holder. When a PIN already exists the old
// one must verify first; a holder without a PIN sets one without oldPIN.
func (g *Gate) Update(ctx context.Context, holderID, oldPIN, newPIN, confirm string) error {
	if err := validate(newPIN); err != nil {
		return err
	}
	if newPIN != confirm {
		return ErrConfirmation
	}
	if weak(newPIN) {
		return ErrWeakPIN
	}

	user, err := g.users.FindByID(ctx, holderID)
	if err != nil {
		return err
	}
	if user.PINHash != nil {
		if err := validate(oldPIN); err != nil {
			return err
		}
		if err := Verify(user.PINHash, oldPIN); err != nil {
			return err
		}
	}

	hash, err := Hash(newPIN)
	if err != nil {
		return err
	}
	return g.users.UpdatePINHash(ctx, holderID, hash)
}

// Hash derives the at-rest hash for a PIN.
func Hash(pin string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
}

// Verify compares a supplied PIN against the stored hash. The comparison is
// delegated to bcrypt, whose digest check does not branch on the stored
// value.
func Verify(hash []byte, supplied string) error {
	if len(hash) == 0 {
		return ErrNotSet
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(supplied)) != nil {
		return ErrMismatch
	}
	return nil
}

func validate(pin string) error {
	if len(pin) != pinLength {
		return ErrInvalidPIN
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}

// weak flags repeated digits, ascending or descending runs, and a small set
// of popular patterns.
func weak(pin string) bool {
	repeated, ascending, descending := true, true, true
	for i := 1; i < len(pin); i++ {
		if pin[i] != pin[0] {
			repeated = false
		}
		if pin[i] != pin[i-1]+1 {
			ascending = false
		}
		if pin[i] != pin[i-1]-1 {
			descending = false
		}
	}
	if repeated || ascending || descending {
		return true
	}
	switch pin {
	case "2580", "0852", "1010", "6969":
		return true
	}
	return false
}
