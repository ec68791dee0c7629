// Package transactionservice manages business logic layer of ledger transactions.
package transactionservice

import (
	"context"

	"github.com/financas/ledger-api/internal/domain"
	"github.com/financas/ledger-api/pkg/errorspkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// defaultListLimit caps unpaginated list requests.
const defaultListLimit = 100

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	CreateTx(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	Get(ctx context.Context, id int64) (domain.Transaction, error)
	UpdateTx(ctx context.Context, id int64, arg domain.UpdateTransactionParams) (domain.Transaction, error)
	DeleteTx(ctx context.Context, id int64) error
	List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error)
	ListByYear(ctx context.Context, year int32) ([]domain.Transaction, error)
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo Repo
}

// New returns transaction service struct to manage ledger bussines logic.
func New(tr Repo) *Service {
	return &Service{repo: tr}
}

// validAmount parses the amount and returns its canonical decimal form, so
// representations like "+50" never reach balance arithmetic.
func validAmount(ctx context.Context, amount string) (string, error) {
	l := zerolog.Ctx(ctx)

	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		l.Info().Err(err).Send()
		return "", domain.ErrInvalidAmount
	}

	if amountDecimal.IsNegative() {
		return "", domain.ErrNegativeAmount
	}

	return amountDecimal.String(), nil
}

// Create validates and records the transaction, moving the owning account's balance with it.
func (s *Service) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	if !domain.IsSupportedTransactionType(arg.TransactionType) {
		return domain.Transaction{}, domain.ErrInvalidTransactionType
	}

	amount, err := validAmount(ctx, arg.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	arg.Amount = amount

	return s.repo.CreateTx(ctx, arg)
}

// Get returns the transaction with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	return s.repo.Get(ctx, id)
}

// Update validates the supplied fields and applies the partial update,
// reconciling the affected account balances.
func (s *Service) Update(ctx context.Context, id int64, arg domain.UpdateTransactionParams) (domain.Transaction, error) {
	if arg.TransactionType != nil && !domain.IsSupportedTransactionType(*arg.TransactionType) {
		return domain.Transaction{}, domain.ErrInvalidTransactionType
	}

	if arg.Amount != nil {
		amount, err := validAmount(ctx, *arg.Amount)
		if err != nil {
			return domain.Transaction{}, err
		}

		arg.Amount = &amount
	}

	return s.repo.UpdateTx(ctx, id, arg)
}

// Delete reverses the transaction's delta and removes it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteTx(ctx, id)
}

// List returns the transactions matching all the supplied filters.
func (s *Service) List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	if arg.Limit == 0 {
		arg.Limit = defaultListLimit
	}

	return s.repo.List(ctx, arg)
}

// MonthlySummary scans the given year's transactions and aggregates them by
// month. Months without transactions are absent from the result.
func (s *Service) MonthlySummary(ctx context.Context, year int32) (map[int32]domain.MonthSummary, error) {
	l := zerolog.Ctx(ctx)

	transactions, err := s.repo.ListByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	type monthTotals struct {
		entrada decimal.Decimal
		saida   decimal.Decimal
		count   int32
	}

	totals := make(map[int32]*monthTotals)

	for _, t := range transactions {
		amount, err := decimal.NewFromString(t.Amount)
		if err != nil {
			l.Error().Err(err).Int64("transaction_id", t.ID).Send()
			return nil, errorspkg.ErrInternal
		}

		month := int32(t.Date.Month())

		mt, ok := totals[month]
		if !ok {
			mt = &monthTotals{}
			totals[month] = mt
		}

		if t.TransactionType == domain.TypeEntrada {
			mt.entrada = mt.entrada.Add(amount)
		} else {
			mt.saida = mt.saida.Add(amount)
		}

		mt.count++
	}

	summary := make(map[int32]domain.MonthSummary, len(totals))

	for month, mt := range totals {
		summary[month] = domain.MonthSummary{
			Entrada: mt.entrada.String(),
			Saida:   mt.saida.String(),
			Total:   mt.entrada.Sub(mt.saida).String(),
			Count:   mt.count,
		}
	}

	return summary, nil
}
