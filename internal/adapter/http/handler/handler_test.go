package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tapneat/internal/core/domain"
	"tapneat/internal/core/ports"
	"tapneat/internal/core/ports/mocks"
	"tapneat/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testAPIKey = "queue-secret"

type routerDeps struct {
	wallet     *mocks.MockWalletService
	printQueue *mocks.MockPrintQueueService
	receipt    *mocks.MockReceiptService
	router     *gin.Engine
}

func setupRouter(t *testing.T) routerDeps {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	wallet := mocks.NewMockWalletService(ctrl)
	printQueue := mocks.NewMockPrintQueueService(ctrl)
	receipt := mocks.NewMockReceiptService(ctrl)

	router := SetupRouter(RouterDeps{
		WalletSvc:     wallet,
		PrintQueueSvc: printQueue,
		ReceiptSvc:    receipt,
		QueueAPIKey:   testAPIKey,
		Logger:        zerolog.Nop(),
	})
	return routerDeps{wallet: wallet, printQueue: printQueue, receipt: receipt, router: router}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testScanResult() *ports.ScanResult {
	empID := uuid.New()
	entryID := uuid.New()
	meal := domain.MealLunch
	occurred := time.Date(2025, 3, 14, 13, 30, 0, 0, time.Local)
	return &ports.ScanResult{
		Employee: &domain.Employee{
			ID:      empID,
			RFIDTag: "04A1B2C3",
			Code:    "EMP042",
			Name:    "Asha Verma",
			Site:    "Pune Tech Park",
			Balance: 10000,
		},
		Entry: &domain.LedgerEntry{
			ID:                entryID,
			EmployeeID:        empID,
			RFIDTag:           "04A1B2C3",
			EmployeeCode:      "EMP042",
			EmployeeName:      "Asha Verma",
			Type:              domain.LedgerDeduction,
			FulfillmentStatus: domain.FulfillmentPending,
			MealCategory:      &meal,
			Amount:            5000,
			PreviousBalance:   15000,
			NewBalance:        10000,
			OccurredAt:        occurred,
		},
		Slot: domain.MealSlot{Category: domain.MealLunch, Price: 5000, Window: "1:00 PM - 3:00 PM"},
	}
}

func TestScan_Success(t *testing.T) {
	deps := setupRouter(t)
	result := testScanResult()

	deps.wallet.EXPECT().Deduct(gomock.Any(), "04A1B2C3").Return(result, nil)
	deps.printQueue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, req ports.EnqueueRequest) (*domain.PrintJob, error) {
			assert.Equal(t, "Asha Verma", req.EmployeeName)
			assert.Equal(t, "EMP042", req.EmployeeCode)
			require.NotNil(t, req.LedgerEntryID)
			assert.Equal(t, result.Entry.ID, *req.LedgerEntryID)
			assert.Equal(t, "Lunch", req.MealLabel)
			assert.Equal(t, int64(5000), req.Amount)
			assert.Equal(t, int64(10000), req.Balance)
			return &domain.PrintJob{ID: uuid.New()}, nil
		})

	w := doJSON(t, deps.router, http.MethodPost, "/api/v1/scan", gin.H{"rfid_number": "04A1B2C3"}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data struct {
			Employee struct {
				EmpName string `json:"emp_name"`
				Balance string `json:"balance"`
			} `json:"employee"`
			Transaction struct {
				Amount      string `json:"amount"`
				OrderStatus string `json:"order_status"`
			} `json:"transaction"`
			Meal struct {
				MealCategory string `json:"meal_category"`
			} `json:"meal"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "Asha Verma", envelope.Data.Employee.EmpName)
	assert.Equal(t, "100.00", envelope.Data.Employee.Balance)
	assert.Equal(t, "50.00", envelope.Data.Transaction.Amount)
	assert.Equal(t, "Pending", envelope.Data.Transaction.OrderStatus)
	assert.Equal(t, "Lunch", envelope.Data.Meal.MealCategory)
}

func TestScan_EnqueueFailureStillSucceeds(t *testing.T) {
	deps := setupRouter(t)
	deps.wallet.EXPECT().Deduct(gomock.Any(), "04A1B2C3").Return(testScanResult(), nil)
	deps.printQueue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil, errors.New("queue down"))

	w := doJSON(t, deps.router, http.MethodPost, "/api/v1/scan", gin.H{"rfid_number": "04A1B2C3"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestScan_InsufficientBalance(t *testing.T) {
	deps := setupRouter(t)
	deps.wallet.EXPECT().Deduct(gomock.Any(), "04A1B2C3").
		Return(nil, apperror.ErrInsufficientBalance())

	w := doJSON(t, deps.router, http.MethodPost, "/api/v1/scan", gin.H{"rfid_number": "04A1B2C3"}, nil)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "CARD_003")
}

func TestScan_MissingRFID(t *testing.T) {
	deps := setupRouter(t)
	w := doJSON(t, deps.router, http.MethodPost, "/api/v1/scan", gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CARD_004")
}

func TestMealInfo_WithTimeParam(t *testing.T) {
	deps := setupRouter(t)

	w := doJSON(t, deps.router, http.MethodGet, "/api/v1/scan?time=13:30", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"meal_category":"Lunch"`)
	assert.Contains(t, w.Body.String(), `"price":"50.00"`)
}

func TestMealInfo_OutsideWindow(t *testing.T) {
	deps := setupRouter(t)

	w := doJSON(t, deps.router, http.MethodGet, "/api/v1/scan?time=04:00", nil, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CARD_002")
}

func TestMealInfo_BadTimeParam(t *testing.T) {
	deps := setupRouter(t)
	w := doJSON(t, deps.router, http.MethodGet, "/api/v1/scan?time=quarter-past", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletLookup(t *testing.T) {
	deps := setupRouter(t)
	emp := testScanResult().Employee
	deps.wallet.EXPECT().Lookup(gomock.Any(), "EMP042").Return(emp, nil)

	w := doJSON(t, deps.router, http.MethodGet, "/api/v1/wallet?search=EMP042", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"emp_id":"EMP042"`)
	assert.Contains(t, w.Body.String(), `"balance":"100.00"`)
}

func TestWalletLookup_NotFound(t *testing.T) {
	deps := setupRouter(t)
	deps.wallet.EXPECT().Lookup(gomock.Any(), "ghost").Return(nil, apperror.ErrNotFound("employee"))

	w := doJSON(t, deps.router, http.MethodGet, "/api/v1/wallet?search=ghost", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecharge_Single(t *testing.T) {
	deps := setupRouter(t)
	result := testScanResult()
	deps.wallet.EXPECT().Credit(gomock.Any(), result.Employee.ID, int64(20000)).
		Return(result.Employee, result.Entry, nil)

	w := doJSON(t, deps.router, http.MethodPost, "/api/v1/wallet/recharge", gin.H{
		"employee_id": result.Employee.ID.String(),
		"amount":      "200",
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"emp_id":"EMP042"`)
}

func TestRecharge_Bulk(t *testing.T) {
	deps := setupRouter(t)
	deps.wallet.EXPECT().CreditAll(gomock.Any(), int64(5000)).Return(int64(137), nil)

	w := doJSON(t, deps.router, http.MethodPost, "/api/v1/wallet/recharge", gin.H{
		"amount": "50",
		"all":    true,
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"credited":137`)
}

func TestRecharge_InvalidAmount(t *testing.T) {
	deps := setupRouter(t)
	w := doJSON(t, deps.router, http.MethodPost, "/api/v1/wallet/recharge", gin.H{
		"employee_id": uuid.New().String(),
		"amount":      "fifty",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CARD_004")
}

func TestRecharge_MissingEmployeeID(t *testing.T) {
	deps := setupRouter(t)
	w := doJSON(t, deps.router, http.MethodPost, "/api/v1/wallet/recharge", gin.H{
		"amount": "50",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReceiptGet(t *testing.T) {
	deps := setupRouter(t)
	entry := testScanResult().Entry
	deps.receipt.EXPECT().Get(gomock.Any(), entry.ID).Return(entry, nil)

	w := doJSON(t, deps.router, http.MethodGet, "/api/v1/receipt?id="+entry.ID.String(), nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"transaction_type":"deduction"`)
}

func TestReceiptGet_BadID(t *testing.T) {
	deps := setupRouter(t)
	w := doJSON(t, deps.router, http.MethodGet, "/api/v1/receipt?id=not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReceiptUpdateStatus(t *testing.T) {
	deps := setupRouter(t)
	id := uuid.New()
	deps.receipt.EXPECT().UpdateFulfillment(gomock.Any(), id, domain.FulfillmentDelivered).Return(nil)

	w := doJSON(t, deps.router, http.MethodPost, "/api/v1/receipt/status", gin.H{
		"id":     id.String(),
		"status": "Delivered",
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"order_status":"Delivered"`)
}

func TestReceiptUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	deps := setupRouter(t)
	w := doJSON(t, deps.router, http.MethodPost, "/api/v1/receipt/status", gin.H{
		"id":     uuid.New().String(),
		"status": "Eaten",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTransactions_Filters(t *testing.T) {
	deps := setupRouter(t)
	empID := uuid.New()
	entry := testScanResult().Entry

	deps.receipt.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, params ports.LedgerListParams) ([]domain.LedgerEntry, error) {
			require.NotNil(t, params.EmployeeID)
			assert.Equal(t, empID, *params.EmployeeID)
			require.NotNil(t, params.Date)
			assert.Equal(t, 2025, params.Date.Year())
			require.NotNil(t, params.MealCategory)
			assert.Equal(t, domain.MealLunch, *params.MealCategory)
			assert.Equal(t, 25, params.Limit)
			return []domain.LedgerEntry{*entry}, nil
		})

	path := "/api/v1/transactions?employee_id=" + empID.String() +
		"&date=2025-03-14&meal_category=Lunch&limit=25"
	w := doJSON(t, deps.router, http.MethodGet, path, nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"transactions"`)
}

func TestQueueClaim_RequiresAPIKey(t *testing.T) {
	deps := setupRouter(t)
	w := doJSON(t, deps.router, http.MethodGet, "/api/v1/print-queue/jobs", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "SEC_001")
}

func TestQueueClaim(t *testing.T) {
	deps := setupRouter(t)
	entryID := uuid.New()
	jobs := []domain.PrintJob{{
		ID:            uuid.New(),
		EmployeeName:  "Asha Verma",
		EmployeeCode:  "EMP042",
		Site:          "Pune Tech Park",
		LedgerEntryID: &entryID,
		MealLabel:     "Lunch",
		Amount:        5000,
		Balance:       10000,
		OccurredAt:    time.Now(),
		ReceiptURL:    "https://meals.example.com/receipt?id=" + entryID.String(),
		Status:        domain.PrintJobPrinting,
	}}
	deps.printQueue.EXPECT().Claim(gomock.Any(), 5).Return(jobs, nil)

	w := doJSON(t, deps.router, http.MethodGet, "/api/v1/print-queue/jobs?limit=5", nil,
		map[string]string{"X-API-Key": testAPIKey})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"employee_name":"Asha Verma"`)
	assert.Contains(t, w.Body.String(), `"amount":"50.00"`)
}

func TestQueueGetJob(t *testing.T) {
	deps := setupRouter(t)
	id := uuid.New()
	deps.printQueue.EXPECT().GetJob(gomock.Any(), id).Return(&domain.PrintJob{
		ID:           id,
		EmployeeName: "Asha Verma",
		MealLabel:    "Lunch",
		Amount:       5000,
		Status:       domain.PrintJobFailed,
	}, nil)

	w := doJSON(t, deps.router, http.MethodGet, "/api/v1/print-queue/jobs/"+id.String(), nil,
		map[string]string{"X-API-Key": testAPIKey})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"failed"`)
	assert.Contains(t, w.Body.String(), `"employee_name":"Asha Verma"`)
}

func TestQueueGetJob_NotFound(t *testing.T) {
	deps := setupRouter(t)
	id := uuid.New()
	deps.printQueue.EXPECT().GetJob(gomock.Any(), id).Return(nil, apperror.ErrNotFound("print job"))

	w := doJSON(t, deps.router, http.MethodGet, "/api/v1/print-queue/jobs/"+id.String(), nil,
		map[string]string{"X-API-Key": testAPIKey})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "CARD_001")
}

func TestQueueGetJob_BadID(t *testing.T) {
	deps := setupRouter(t)
	w := doJSON(t, deps.router, http.MethodGet, "/api/v1/print-queue/jobs/not-a-uuid", nil,
		map[string]string{"X-API-Key": testAPIKey})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CARD_004")
}

func TestQueueUpdateStatus_Completed(t *testing.T) {
	deps := setupRouter(t)
	id := uuid.New()
	deps.printQueue.EXPECT().Complete(gomock.Any(), id).Return(nil)

	w := doJSON(t, deps.router, http.MethodPost, "/api/v1/print-queue/status", gin.H{
		"job_id": id.String(),
		"status": "completed",
	}, map[string]string{"X-API-Key": testAPIKey})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestQueueUpdateStatus_FailedWithDetail(t *testing.T) {
	deps := setupRouter(t)
	id := uuid.New()
	deps.printQueue.EXPECT().Fail(gomock.Any(), id, "printer unreachable").Return(nil)

	w := doJSON(t, deps.router, http.MethodPost, "/api/v1/print-queue/status", gin.H{
		"job_id": id.String(),
		"status": "failed",
		"error":  "printer unreachable",
	}, map[string]string{"X-API-Key": testAPIKey})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestQueueEnqueue_DuckTyped(t *testing.T) {
	deps := setupRouter(t)
	deps.printQueue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, req ports.EnqueueRequest) (*domain.PrintJob, error) {
			assert.Equal(t, "Ravi Nair", req.EmployeeName)
			assert.Equal(t, int64(3000), req.Amount)
			return &domain.PrintJob{
				ID:           uuid.New(),
				EmployeeName: req.EmployeeName,
				Status:       domain.PrintJobPending,
			}, nil
		})

	w := doJSON(t, deps.router, http.MethodPost, "/api/v1/print-queue/jobs", gin.H{
		"employee": gin.H{
			"name":          "Ravi Nair",
			"id":            "EMP077",
			"site":          "Pune Tech Park",
			"meal_category": "Snack",
			"amount":        "30",
			"balance":       "120",
		},
		"transaction": gin.H{},
	}, map[string]string{"X-API-Key": testAPIKey})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}
