package transactiondelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/financas/ledger-api/internal/domain"
	"github.com/financas/ledger-api/pkg/errorspkg"
	"github.com/financas/ledger-api/pkg/randompkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("transactiontype", ValidTransactionType); err != nil {
			log.Fatal("cannot register transaction type validator:", err)
		}
	}

	os.Exit(m.Run())
}

func setupRouter(service Service) *gin.Engine {
	h := NewHandler(service)

	router := gin.New()
	router.GET("/transactions/monthly", h.MonthlySummary)
	router.GET("/transactions", h.List)
	router.POST("/transactions", h.Create)
	router.GET("/transactions/:id", h.Get)
	router.PUT("/transactions/:id", h.Update)
	router.DELETE("/transactions/:id", h.Delete)

	return router
}

func testTransaction() domain.Transaction {
	return domain.Transaction{
		ID:              1,
		Date:            time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC),
		Description:     randompkg.String(12),
		TransactionType: domain.TypeEntrada,
		Category:        randompkg.Category(),
		Amount:          "100",
		AccountID:       1,
		CreatedAt:       time.Now().Truncate(time.Second).UTC(),
	}
}

func TestCreateAPI(t *testing.T) {
	transaction := testTransaction()

	arg := domain.CreateTransactionParams{
		Date:            transaction.Date,
		Description:     transaction.Description,
		TransactionType: transaction.TransactionType,
		Category:        transaction.Category,
		Amount:          transaction.Amount,
		AccountID:       transaction.AccountID,
	}

	body := gin.H{
		"date":             transaction.Date,
		"description":      transaction.Description,
		"transaction_type": transaction.TransactionType,
		"category":         transaction.Category,
		"amount":           transaction.Amount,
		"account_id":       transaction.AccountID,
	}

	testCases := []struct {
		name           string
		body           gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
		checkBody      func(body *bytes.Buffer)
	}{
		{
			name: "OK",
			body: body,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Eq(arg)).
					Times(1).
					Return(transaction, nil)
			},
			wantStatusCode: http.StatusCreated,
			checkBody: func(b *bytes.Buffer) {
				var res struct {
					Data struct {
						Transaction domain.Transaction `json:"transaction"`
					} `json:"data"`
				}
				if err := json.Unmarshal(b.Bytes(), &res); err != nil {
					t.Fatalf("json.Unmarshal(%v) returned error: %v", b.String(), err)
				}

				compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
				if diff := cmp.Diff(transaction, res.Data.Transaction, compareCreatedAt); diff != "" {
					t.Errorf("response transaction mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "AccountNotFound",
			body: body,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Eq(arg)).
					Times(1).
					Return(domain.Transaction{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "InvalidTransactionType",
			body: gin.H{
				"date":             transaction.Date,
				"description":      transaction.Description,
				"transaction_type": "transferencia",
				"category":         transaction.Category,
				"amount":           transaction.Amount,
				"account_id":       transaction.AccountID,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "MissingDescription",
			body: gin.H{
				"date":             transaction.Date,
				"transaction_type": transaction.TransactionType,
				"category":         transaction.Category,
				"amount":           transaction.Amount,
				"account_id":       transaction.AccountID,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "InternalError",
			body: body,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Eq(arg)).
					Times(1).
					Return(domain.Transaction{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := setupRouter(service)

			data, err := json.Marshal(tc.body)
			if err != nil {
				t.Fatalf("json.Marshal(%v) returned error: %v", tc.body, err)
			}

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(data))

			router.ServeHTTP(recorder, request)

			if recorder.Code != tc.wantStatusCode {
				t.Errorf("status code = %v, want %v, body: %v", recorder.Code, tc.wantStatusCode, recorder.Body)
			}

			if tc.checkBody != nil {
				tc.checkBody(recorder.Body)
			}
		})
	}
}

func TestGetAPI(t *testing.T) {
	transaction := testTransaction()

	testCases := []struct {
		name           string
		url            string
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "OK",
			url:  fmt.Sprintf("/transactions/%d", transaction.ID),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Eq(transaction.ID)).
					Times(1).
					Return(transaction, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "NotFound",
			url:  fmt.Sprintf("/transactions/%d", transaction.ID),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Eq(transaction.ID)).
					Times(1).
					Return(domain.Transaction{}, domain.ErrTransactionNotFound)
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "InvalidID",
			url:  "/transactions/0",
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := setupRouter(service)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, tc.url, nil)

			router.ServeHTTP(recorder, request)

			if recorder.Code != tc.wantStatusCode {
				t.Errorf("status code = %v, want %v, body: %v", recorder.Code, tc.wantStatusCode, recorder.Body)
			}
		})
	}
}

func TestUpdateAPI(t *testing.T) {
	transaction := testTransaction()

	newAmount := "80"
	newAccountID := int32(2)

	testCases := []struct {
		name           string
		url            string
		body           gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "OK",
			url:  fmt.Sprintf("/transactions/%d", transaction.ID),
			body: gin.H{"amount": newAmount},
			buildStubs: func(service *MockService) {
				want := domain.UpdateTransactionParams{Amount: &newAmount}

				service.EXPECT().
					Update(gomock.Any(), gomock.Eq(transaction.ID), gomock.Eq(want)).
					Times(1).
					Return(transaction, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "TransactionNotFound",
			url:  fmt.Sprintf("/transactions/%d", transaction.ID),
			body: gin.H{"amount": newAmount},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Update(gomock.Any(), gomock.Eq(transaction.ID), gomock.Any()).
					Times(1).
					Return(domain.Transaction{}, domain.ErrTransactionNotFound)
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "NewAccountNotFound",
			url:  fmt.Sprintf("/transactions/%d", transaction.ID),
			body: gin.H{"account_id": newAccountID},
			buildStubs: func(service *MockService) {
				want := domain.UpdateTransactionParams{AccountID: &newAccountID}

				service.EXPECT().
					Update(gomock.Any(), gomock.Eq(transaction.ID), gomock.Eq(want)).
					Times(1).
					Return(domain.Transaction{}, domain.ErrNewAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "InvalidTransactionType",
			url:  fmt.Sprintf("/transactions/%d", transaction.ID),
			body: gin.H{"transaction_type": "transferencia"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := setupRouter(service)

			data, err := json.Marshal(tc.body)
			if err != nil {
				t.Fatalf("json.Marshal(%v) returned error: %v", tc.body, err)
			}

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPut, tc.url, bytes.NewReader(data))

			router.ServeHTTP(recorder, request)

			if recorder.Code != tc.wantStatusCode {
				t.Errorf("status code = %v, want %v, body: %v", recorder.Code, tc.wantStatusCode, recorder.Body)
			}
		})
	}
}

func TestDeleteAPI(t *testing.T) {
	transaction := testTransaction()

	testCases := []struct {
		name           string
		buildStubs     func(service *MockService)
		wantStatusCode int
		checkBody      func(body *bytes.Buffer)
	}{
		{
			name: "OK",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Delete(gomock.Any(), gomock.Eq(transaction.ID)).
					Times(1).
					Return(nil)
			},
			wantStatusCode: http.StatusOK,
			checkBody: func(b *bytes.Buffer) {
				var res struct {
					Detail string `json:"detail"`
				}
				if err := json.Unmarshal(b.Bytes(), &res); err != nil {
					t.Fatalf("json.Unmarshal(%v) returned error: %v", b.String(), err)
				}

				if res.Detail != "Transaction deleted successfully" {
					t.Errorf(`detail = %q, want "Transaction deleted successfully"`, res.Detail)
				}
			},
		},
		{
			name: "NotFound",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Delete(gomock.Any(), gomock.Eq(transaction.ID)).
					Times(1).
					Return(domain.ErrTransactionNotFound)
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := setupRouter(service)

			recorder := httptest.NewRecorder()
			url := fmt.Sprintf("/transactions/%d", transaction.ID)
			request := httptest.NewRequest(http.MethodDelete, url, nil)

			router.ServeHTTP(recorder, request)

			if recorder.Code != tc.wantStatusCode {
				t.Errorf("status code = %v, want %v, body: %v", recorder.Code, tc.wantStatusCode, recorder.Body)
			}

			if tc.checkBody != nil {
				tc.checkBody(recorder.Body)
			}
		})
	}
}

func TestListAPI(t *testing.T) {
	transaction := testTransaction()

	testCases := []struct {
		name           string
		url            string
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "ConjunctiveFilters",
			url:  "/transactions?month=1&transaction_type=entrada&category=mercado&account_id=1&description=feira&year=2023&skip=10&limit=5",
			buildStubs: func(service *MockService) {
				want := domain.ListTransactionsParams{
					Month:           1,
					Year:            2023,
					TransactionType: domain.TypeEntrada,
					Category:        "mercado",
					AccountID:       1,
					Description:     "feira",
					Limit:           5,
					Skip:            10,
				}

				service.EXPECT().
					List(gomock.Any(), gomock.Eq(want)).
					Times(1).
					Return([]domain.Transaction{transaction}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "NoFilters",
			url:  "/transactions",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Eq(domain.ListTransactionsParams{})).
					Times(1).
					Return([]domain.Transaction{}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "InvalidMonth",
			url:  "/transactions?month=13",
			buildStubs: func(service *MockService) {
				service.EXPECT().List(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "InvalidTransactionType",
			url:  "/transactions?transaction_type=transferencia",
			buildStubs: func(service *MockService) {
				service.EXPECT().List(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := setupRouter(service)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, tc.url, nil)

			router.ServeHTTP(recorder, request)

			if recorder.Code != tc.wantStatusCode {
				t.Errorf("status code = %v, want %v, body: %v", recorder.Code, tc.wantStatusCode, recorder.Body)
			}
		})
	}
}

func TestMonthlySummaryAPI(t *testing.T) {
	summary := map[int32]domain.MonthSummary{
		1: {Entrada: "100", Saida: "30", Total: "70", Count: 2},
		2: {Entrada: "50", Saida: "0", Total: "50", Count: 1},
	}

	testCases := []struct {
		name           string
		url            string
		buildStubs     func(service *MockService)
		wantStatusCode int
		checkBody      func(body *bytes.Buffer)
	}{
		{
			name: "OK",
			url:  "/transactions/monthly?year=2023",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					MonthlySummary(gomock.Any(), gomock.Eq(int32(2023))).
					Times(1).
					Return(summary, nil)
			},
			wantStatusCode: http.StatusOK,
			checkBody: func(b *bytes.Buffer) {
				var res struct {
					Data struct {
						Summary map[int32]domain.MonthSummary `json:"summary"`
					} `json:"data"`
				}
				if err := json.Unmarshal(b.Bytes(), &res); err != nil {
					t.Fatalf("json.Unmarshal(%v) returned error: %v", b.String(), err)
				}

				if diff := cmp.Diff(summary, res.Data.Summary); diff != "" {
					t.Errorf("summary mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "MissingYear",
			url:  "/transactions/monthly",
			buildStubs: func(service *MockService) {
				service.EXPECT().MonthlySummary(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router := setupRouter(service)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, tc.url, nil)

			router.ServeHTTP(recorder, request)

			if recorder.Code != tc.wantStatusCode {
				t.Errorf("status code = %v, want %v, body: %v", recorder.Code, tc.wantStatusCode, recorder.Body)
			}

			if tc.checkBody != nil {
				tc.checkBody(recorder.Body)
			}
		})
	}
}
