// Package transactionrepo manages repository layer of ledger transactions.
//
// The composite CreateTx, UpdateTx and DeleteTx methods mutate the
// transaction row and the owning account's balance inside a single
// database transaction, so either both rows change or neither does.
package transactionrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/financas/ledger-api/internal/accountrepo"
	"github.com/financas/ledger-api/internal/domain"
	"github.com/financas/ledger-api/pkg/dbpkg"
	"github.com/financas/ledger-api/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transaction RepoPGS bound to an already open database transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transaction RepoPGS with a connection to start database transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

// signedAmount returns the balance delta the transaction contributes.
// Signing goes through decimal so representations like "+50" stay valid.
func signedAmount(transactionType, amount string) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", domain.ErrInvalidAmount
	}

	if transactionType == domain.TypeSaida {
		d = d.Neg()
	}

	return d.String(), nil
}

// reversedAmount returns the delta that undoes the transaction's contribution.
func reversedAmount(transactionType, amount string) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", domain.ErrInvalidAmount
	}

	if transactionType == domain.TypeEntrada {
		d = d.Neg()
	}

	return d.String(), nil
}

const transactionColumns = `id, date, description, transaction_type, category, amount, account_id, created_at`

func scanTransaction(row *sql.Row) (domain.Transaction, error) {
	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.Date,
		&t.Description,
		&t.TransactionType,
		&t.Category,
		&t.Amount,
		&t.AccountID,
		&t.CreatedAt,
	)

	return t, err
}

func mapConstraintErr(err error, accountErr error) error {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return errorspkg.ErrInternal
	}

	switch pqErr.Constraint {
	case "transactions_account_id_fkey":
		return accountErr
	case "transactions_amount_check":
		return domain.ErrInvalidAmount
	case "transactions_transaction_type_check":
		return domain.ErrInvalidTransactionType
	}

	return errorspkg.ErrInternal
}

const createQuery = `
INSERT INTO
    transactions (date, description, transaction_type, category, amount, account_id)
VALUES
    ($1, $2, $3, $4, $5, $6)
RETURNING ` + transactionColumns

// Create inserts the transaction row and then returns it.
//
// It does not touch the owning account's balance, use CreateTx for that.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Date,
		arg.Description,
		arg.TransactionType,
		arg.Category,
		arg.Amount,
		arg.AccountID,
	)

	t, err := scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)
		return t, mapConstraintErr(err, domain.ErrAccountNotFound)
	}

	return t, nil
}

const getQuery = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	t, err := scanTransaction(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		l.Error().Err(err).Send()

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getForUpdateQuery = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE id = $1
FOR UPDATE
`

// getForUpdate locks the transaction row for the remainder of the database transaction.
func (r *RepoPGS) getForUpdate(ctx context.Context, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	t, err := scanTransaction(r.db.QueryRowContext(ctx, getForUpdateQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		l.Error().Err(err).Send()

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const updateQuery = `
UPDATE transactions
SET date = $1, description = $2, transaction_type = $3, category = $4, amount = $5, account_id = $6
WHERE id = $7
RETURNING ` + transactionColumns

// update writes the merged row back.
//
// A foreign key violation here means the transaction is being moved to an
// account that does not exist.
func (r *RepoPGS) update(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateQuery,
		t.Date,
		t.Description,
		t.TransactionType,
		t.Category,
		t.Amount,
		t.AccountID,
		t.ID,
	)

	updated, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return updated, domain.ErrTransactionNotFound
		}

		l.Error().Err(err).Msgf("update(ctx, %+v)", t)

		return updated, mapConstraintErr(err, domain.ErrNewAccountNotFound)
	}

	return updated, nil
}

const deleteQuery = `
DELETE FROM transactions
WHERE id = $1
`

// Delete removes the transaction row with the given id.
func (r *RepoPGS) Delete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	result, err := r.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if rowsAffected == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// List returns the transactions matching all the supplied filters,
// ordered by date then id for deterministic pagination.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var (
		conditions []string
		args       []interface{}
	)

	addCondition := func(format string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(format, len(args)))
	}

	if arg.Month != 0 {
		addCondition("EXTRACT(MONTH FROM date) = $%d", arg.Month)
	}

	if arg.Year != 0 {
		addCondition("EXTRACT(YEAR FROM date) = $%d", arg.Year)
	}

	if arg.TransactionType != "" {
		addCondition("transaction_type = $%d", arg.TransactionType)
	}

	if arg.Category != "" {
		addCondition("category = $%d", arg.Category)
	}

	if arg.AccountID != 0 {
		addCondition("account_id = $%d", arg.AccountID)
	}

	if arg.Description != "" {
		// The filter matches a literal substring, so LIKE metacharacters
		// in the value must not act as wildcards.
		escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(arg.Description)
		addCondition(`description ILIKE '%%' || $%d || '%%' ESCAPE '\'`, escaped)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, arg.Limit, arg.Skip)
	query += fmt.Sprintf(" ORDER BY date, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.Date,
			&t.Description,
			&t.TransactionType,
			&t.Category,
			&t.Amount,
			&t.AccountID,
			&t.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const listByYearQuery = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE EXTRACT(YEAR FROM date) = $1
ORDER BY date, id
`

// ListByYear returns all the transactions dated in the given year.
func (r *RepoPGS) ListByYear(ctx context.Context, year int32) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByYearQuery, year)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.Date,
			&t.Description,
			&t.TransactionType,
			&t.Category,
			&t.Amount,
			&t.AccountID,
			&t.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

func (r *RepoPGS) beginTx(ctx context.Context) (*sql.Tx, error) {
	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return tx, nil
}

func rollback(ctx context.Context, tx *sql.Tx) {
	l := zerolog.Ctx(ctx)

	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		l.Error().Err(err).Send()
	}
}

// CreateTx records a new transaction and applies its delta to the owning
// account within a single database transaction.
func (r *RepoPGS) CreateTx(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	tx, err := r.beginTx(ctx)
	if err != nil {
		return domain.Transaction{}, err
	}
	defer rollback(ctx, tx)

	transactionRepo := NewTxRepoPGS(tx)
	accountRepo := accountrepo.NewRepoPGS(tx)

	created, err := transactionRepo.Create(ctx, arg)
	if err != nil {
		return domain.Transaction{}, err
	}

	delta, err := signedAmount(arg.TransactionType, arg.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	if _, err = accountRepo.AddBalance(ctx, delta, arg.AccountID); err != nil {
		return domain.Transaction{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.Transaction{}, errorspkg.ErrInternal
	}

	return created, nil
}

// UpdateTx applies a partial update to the transaction and reconciles the
// account balances within a single database transaction.
//
// The old delta is reversed against the old account before the new delta is
// applied against the possibly different new account. A missing OLD account
// only skips the reversal (tolerated stale reference), a missing NEW account
// rolls the whole update back.
func (r *RepoPGS) UpdateTx(ctx context.Context, id int64, arg domain.UpdateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	tx, err := r.beginTx(ctx)
	if err != nil {
		return domain.Transaction{}, err
	}
	defer rollback(ctx, tx)

	transactionRepo := NewTxRepoPGS(tx)
	accountRepo := accountrepo.NewRepoPGS(tx)

	old, err := transactionRepo.getForUpdate(ctx, id)
	if err != nil {
		return domain.Transaction{}, err
	}

	merged := mergeUpdate(old, arg)
	accountChanged := merged.AccountID != old.AccountID

	updated, err := transactionRepo.update(ctx, merged)
	if err != nil {
		return domain.Transaction{}, err
	}

	reversal, err := reversedAmount(old.TransactionType, old.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	if _, err := accountRepo.AddBalance(ctx, reversal, old.AccountID); err != nil {
		if err != domain.ErrAccountNotFound {
			return domain.Transaction{}, err
		}

		l.Warn().Int32("account_id", old.AccountID).
			Msg("skipping balance reversal: owning account is missing")
	}

	delta, err := signedAmount(updated.TransactionType, updated.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	if _, err := accountRepo.AddBalance(ctx, delta, updated.AccountID); err != nil {
		if err != domain.ErrAccountNotFound {
			return domain.Transaction{}, err
		}

		if accountChanged {
			return domain.Transaction{}, domain.ErrNewAccountNotFound
		}

		l.Warn().Int32("account_id", updated.AccountID).
			Msg("skipping balance update: owning account is missing")
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.Transaction{}, errorspkg.ErrInternal
	}

	return updated, nil
}

// DeleteTx reverses the transaction's delta against its owning account and
// removes the row within a single database transaction.
func (r *RepoPGS) DeleteTx(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer rollback(ctx, tx)

	transactionRepo := NewTxRepoPGS(tx)
	accountRepo := accountrepo.NewRepoPGS(tx)

	old, err := transactionRepo.getForUpdate(ctx, id)
	if err != nil {
		return err
	}

	reversal, err := reversedAmount(old.TransactionType, old.Amount)
	if err != nil {
		return err
	}

	if _, err := accountRepo.AddBalance(ctx, reversal, old.AccountID); err != nil {
		if err != domain.ErrAccountNotFound {
			return err
		}

		l.Warn().Int32("account_id", old.AccountID).
			Msg("skipping balance reversal: owning account is missing")
	}

	if err := transactionRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

// mergeUpdate overlays the supplied fields onto the stored transaction.
func mergeUpdate(t domain.Transaction, arg domain.UpdateTransactionParams) domain.Transaction {
	if arg.Date != nil {
		t.Date = *arg.Date
	}

	if arg.Description != nil {
		t.Description = *arg.Description
	}

	if arg.TransactionType != nil {
		t.TransactionType = *arg.TransactionType
	}

	if arg.Category != nil {
		t.Category = *arg.Category
	}

	if arg.Amount != nil {
		t.Amount = *arg.Amount
	}

	if arg.AccountID != nil {
		t.AccountID = *arg.AccountID
	}

	return t
}
