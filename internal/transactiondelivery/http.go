// Package transactiondelivery manages delivery layer of ledger transactions.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/financas/ledger-api/internal/domain"
	"github.com/financas/ledger-api/pkg/errorspkg"
	"github.com/financas/ledger-api/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	Get(ctx context.Context, id int64) (domain.Transaction, error)
	Update(ctx context.Context, id int64, arg domain.UpdateTransactionParams) (domain.Transaction, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error)
	MonthlySummary(ctx context.Context, year int32) (map[int32]domain.MonthSummary, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) Handler {
	return Handler{service: ts}
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

func bindErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + web.GetErrorMsg(field)
	}

	return "invalid request"
}

type idRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type createRequest struct {
	Date            time.Time `json:"date" binding:"required"`
	Description     string    `json:"description" binding:"required"`
	TransactionType string    `json:"transaction_type" binding:"required,transactiontype"`
	Category        string    `json:"category" binding:"required"`
	Amount          string    `json:"amount" binding:"required"`
	AccountID       int32     `json:"account_id" binding:"required,min=1"`
}

// Create handles http request to record a transaction.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindErrorMsg(err)})

		return
	}

	arg := domain.CreateTransactionParams{
		Date:            req.Date,
		Description:     req.Description,
		TransactionType: req.TransactionType,
		Category:        req.Category,
		Amount:          req.Amount,
		AccountID:       req.AccountID,
	}

	created, err := h.service.Create(ctx, arg)
	if err != nil {
		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrInvalidAmount, domain.ErrNegativeAmount, domain.ErrInvalidTransactionType:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{created}})
}

// Get handles http request to get a single transaction.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindErrorMsg(err)})

		return
	}

	transaction, err := h.service.Get(ctx, req.ID)
	if err != nil {
		if err == domain.ErrTransactionNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{transaction}})
}

type updateRequest struct {
	Date            *time.Time `json:"date"`
	Description     *string    `json:"description"`
	TransactionType *string    `json:"transaction_type" binding:"omitempty,transactiontype"`
	Category        *string    `json:"category"`
	Amount          *string    `json:"amount"`
	AccountID       *int32     `json:"account_id" binding:"omitempty,min=1"`
}

// Update handles http request to partially update a transaction.
func (h *Handler) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindErrorMsg(err)})

		return
	}

	var req updateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindErrorMsg(err)})

		return
	}

	arg := domain.UpdateTransactionParams{
		Date:            req.Date,
		Description:     req.Description,
		TransactionType: req.TransactionType,
		Category:        req.Category,
		Amount:          req.Amount,
		AccountID:       req.AccountID,
	}

	updated, err := h.service.Update(ctx, uri.ID, arg)
	if err != nil {
		switch err {
		case domain.ErrTransactionNotFound, domain.ErrNewAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrInvalidAmount, domain.ErrNegativeAmount, domain.ErrInvalidTransactionType:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{updated}})
}

type deleteResponse struct {
	Detail string `json:"detail"`
}

// Delete handles http request to delete a transaction.
func (h *Handler) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindErrorMsg(err)})

		return
	}

	if err := h.service.Delete(ctx, req.ID); err != nil {
		if err == domain.ErrTransactionNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, deleteResponse{Detail: "Transaction deleted successfully"})
}

type listRequest struct {
	Skip            int32  `form:"skip" binding:"omitempty,min=0"`
	Limit           int32  `form:"limit" binding:"omitempty,min=1"`
	Month           int32  `form:"month" binding:"omitempty,min=1,max=12"`
	Year            int32  `form:"year" binding:"omitempty,min=1"`
	TransactionType string `form:"transaction_type" binding:"omitempty,transactiontype"`
	Category        string `form:"category"`
	AccountID       int32  `form:"account_id" binding:"omitempty,min=1"`
	Description     string `form:"description"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}
type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

// List handles http request to list transactions with optional filters.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindErrorMsg(err)})

		return
	}

	arg := domain.ListTransactionsParams{
		Month:           req.Month,
		Year:            req.Year,
		TransactionType: req.TransactionType,
		Category:        req.Category,
		AccountID:       req.AccountID,
		Description:     req.Description,
		Limit:           req.Limit,
		Skip:            req.Skip,
	}

	transactions, err := h.service.List(ctx, arg)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{transactions}})
}

type monthlyRequest struct {
	Year int32 `form:"year" binding:"required,min=1"`
}

type dataSummary struct {
	Summary map[int32]domain.MonthSummary `json:"summary"`
}
type responseSummary struct {
	Data dataSummary `json:"data,omitempty"`
}

// MonthlySummary handles http request to aggregate a year's transactions by month.
func (h *Handler) MonthlySummary(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req monthlyRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindErrorMsg(err)})

		return
	}

	summary, err := h.service.MonthlySummary(ctx, req.Year)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseSummary{Data: dataSummary{summary}})
}
