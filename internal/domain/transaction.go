package domain

import (
	"errors"
	"time"
)

// Constants for the two supported transaction types.
const (
	// TypeEntrada is an inflow, it increases the account balance.
	TypeEntrada = "entrada"
	// TypeSaida is an outflow, it decreases the account balance.
	TypeSaida = "saida"
)

// TransactionTypes holds all the supported transaction types.
var TransactionTypes = []string{TypeEntrada, TypeSaida}

// IsSupportedTransactionType returns true if the transaction type is supported.
func IsSupportedTransactionType(transactionType string) bool {
	for _, t := range TransactionTypes {
		if t == transactionType {
			return true
		}
	}

	return false
}

var (
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInvalidTransactionType indicates that the transaction type is neither entrada nor saida.
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	// ErrInvalidAmount indicates invalid amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNegativeAmount indicates negative amount.
	ErrNegativeAmount = errors.New("negative amount")
)

// Transaction holds a single ledger movement against an account.
type Transaction struct {
	ID              int64     `json:"id"`
	Date            time.Time `json:"date"`
	Description     string    `json:"description"`
	TransactionType string    `json:"transaction_type"`
	Category        string    `json:"category"`
	Amount          string    `json:"amount"` // non-negative magnitude, the sign is implied by TransactionType
	AccountID       int32     `json:"account_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateTransactionParams is the input data to record a new transaction.
type CreateTransactionParams struct {
	Date            time.Time `json:"date"`
	Description     string    `json:"description"`
	TransactionType string    `json:"transaction_type"`
	Category        string    `json:"category"`
	Amount          string    `json:"amount"`
	AccountID       int32     `json:"account_id"`
}

// UpdateTransactionParams carries a partial update.
//
// A nil field means the field was not supplied and keeps its current value.
type UpdateTransactionParams struct {
	Date            *time.Time `json:"date"`
	Description     *string    `json:"description"`
	TransactionType *string    `json:"transaction_type"`
	Category        *string    `json:"category"`
	Amount          *string    `json:"amount"`
	AccountID       *int32     `json:"account_id"`
}

// ListTransactionsParams holds the conjunctive filters and pagination for listing.
//
// Zero values mean the filter is not applied.
type ListTransactionsParams struct {
	Month           int32 // 1-12
	Year            int32
	TransactionType string
	Category        string
	AccountID       int32
	Description     string // case-insensitive substring
	Limit           int32
	Skip            int32
}

// MonthSummary aggregates the transactions of a single month.
type MonthSummary struct {
	Entrada string `json:"entrada"`
	Saida   string `json:"saida"`
	Total   string `json:"total"`
	Count   int32  `json:"count"`
}
