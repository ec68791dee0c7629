// Package helpers provides seed and random data helpers for integration tests.
package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/financas/ledger-api/internal/accountrepo"
	"github.com/financas/ledger-api/internal/domain"
	"github.com/financas/ledger-api/internal/transactionrepo"
	"github.com/financas/ledger-api/pkg/dbpkg"
	"github.com/financas/ledger-api/pkg/randompkg"
)

// RandomAccount returns a random account.
func RandomAccount() domain.Account {
	return domain.Account{
		ID:        randompkg.IntBetween(1, 100),
		Name:      randompkg.String(8),
		Balance:   randompkg.MoneyAmountBetween(1000, 10_000),
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomTransaction returns a random transaction against the given account.
func RandomTransaction(accountID int32) domain.Transaction {
	return domain.Transaction{
		ID:              int64(randompkg.IntBetween(1, 100)),
		Date:            randompkg.DateBetween(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Now()),
		Description:     randompkg.String(12),
		TransactionType: randompkg.TransactionType(),
		Category:        randompkg.Category(),
		Amount:          randompkg.MoneyAmountBetween(10, 1000),
		AccountID:       accountID,
		CreatedAt:       time.Now().Truncate(time.Second).UTC(),
	}
}

// SeedAccount creates an account with the given balance inside a test transaction.
func SeedAccount(t *testing.T, tx dbpkg.SQLInterface, balance string) domain.Account {
	t.Helper()

	accountRepo := accountrepo.NewRepoPGS(tx)

	name := randompkg.String(8)

	account, err := accountRepo.Create(context.Background(), name, balance)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %v, %v) returned error: %v", name, balance, err)
	}

	return account
}

// SeedTransaction creates a transaction row inside a test transaction.
//
// It only inserts the row; callers seeding consistent state should pass a
// balance to SeedAccount that already accounts for the seeded rows.
func SeedTransaction(t *testing.T, tx dbpkg.SQLInterface, arg domain.CreateTransactionParams) domain.Transaction {
	t.Helper()

	transactionRepo := transactionrepo.NewTxRepoPGS(tx)

	transaction, err := transactionRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("transactionRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return transaction
}

// SeedTransactionParams returns create params for the given account with fixed
// type and amount and a date inside the given year and month.
func SeedTransactionParams(accountID int32, transactionType, amount string, year int, month time.Month) domain.CreateTransactionParams {
	return domain.CreateTransactionParams{
		Date:            time.Date(year, month, 15, 12, 0, 0, 0, time.UTC),
		Description:     randompkg.String(12),
		TransactionType: transactionType,
		Category:        randompkg.Category(),
		Amount:          amount,
		AccountID:       accountID,
	}
}
