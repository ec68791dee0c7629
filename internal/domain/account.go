// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrNewAccountNotFound indicates that the account a transaction is being moved to is not found.
	ErrNewAccountNotFound = errors.New("new account not found")
	// ErrAccountHasTransactions indicates that the account still has transactions referencing it.
	ErrAccountHasTransactions = errors.New("account has transactions")
)

// Account holds the running balance maintained by the ledger.
//
// Balance always equals the sum of the signed amounts of the account's
// transactions and is only ever changed together with a transaction row.
type Account struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}
