package transactiondelivery

import (
	"github.com/financas/ledger-api/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidTransactionType validates whether the transaction type is supported.
var ValidTransactionType validator.Func = func(fl validator.FieldLevel) bool {
	if t, ok := fl.Field().Interface().(string); ok {
		return domain.IsSupportedTransactionType(t)
	}
	return false
}
