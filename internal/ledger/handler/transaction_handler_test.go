package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/coughlinalbert1/distributed-banking/shared/apperr"
	"github.com/coughlinalbert1/distributed-banking/shared/cqrs"
)

// ---- mock implementations ----

type mockTransactionCommander struct {
	depositFn  func(cqrs.DepositCommand) (float64, error)
	withdrawFn func(cqrs.WithdrawCommand) (float64, error)
	transferFn func(cqrs.TransferCommand) (float64, error)
}

func (m *mockTransactionCommander) Deposit(cmd cqrs.DepositCommand) (float64, error) {
	if m.depositFn != nil {
		return m.depositFn(cmd)
	}
	return 0, fmt.Errorf("not configured")
}

func (m *mockTransactionCommander) Withdraw(cmd cqrs.WithdrawCommand) (float64, error) {
	if m.withdrawFn != nil {
		return m.withdrawFn(cmd)
	}
	return 0, fmt.Errorf("not configured")
}

func (m *mockTransactionCommander) Transfer(cmd cqrs.TransferCommand) (float64, error) {
	if m.transferFn != nil {
		return m.transferFn(cmd)
	}
	return 0, fmt.Errorf("not configured")
}

// ---- helpers ----

func fakeAuthTx(userID, username string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("username", username)
		c.Next()
	}
}

func newTxTestRouter(cmds TransactionCommander, authUserID, authUsername string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuthTx(authUserID, authUsername))
	h := NewTransactionHandler(cmds)
	v1 := r.Group("/v1/transactions")
	v1.POST("/deposit", h.Deposit)
	v1.POST("/withdraw", h.Withdraw)
	v1.POST("/transfer", h.Transfer)
	return r
}

func txDoRequest(router *gin.Engine, url string, body interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, strings.NewReader(string(b)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- tests ----

func TestDepositHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		depositFn      func(cqrs.DepositCommand) (float64, error)
		expectedStatus int
	}{
		{
			name:           "success - deposit into own account",
			body:           map[string]interface{}{"amount": 100.0},
			depositFn:      func(cmd cqrs.DepositCommand) (float64, error) { return 100, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found - account does not exist",
			body: map[string]interface{}{"amount": 100.0},
			depositFn: func(cmd cqrs.DepositCommand) (float64, error) {
				return 0, fmt.Errorf("%w: account not found", apperr.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - missing amount",
			body:           map[string]interface{}{},
			depositFn:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - amount is zero",
			body:           map[string]interface{}{"amount": 0},
			depositFn:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - negative amount",
			body:           map[string]interface{}{"amount": -5.0},
			depositFn:      nil,
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTxTestRouter(&mockTransactionCommander{depositFn: tt.depositFn}, "usr-001", "alice")
			w := txDoRequest(router, "/v1/transactions/deposit", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestDepositHandlerPassesTokenIdentity(t *testing.T) {
	var got cqrs.DepositCommand
	router := newTxTestRouter(&mockTransactionCommander{
		depositFn: func(cmd cqrs.DepositCommand) (float64, error) {
			got = cmd
			return 50, nil
		},
	}, "usr-001", "alice")

	w := txDoRequest(router, "/v1/transactions/deposit", map[string]interface{}{"amount": 50.0})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d; body: %s", w.Code, w.Body.String())
	}
	if got.UserID != "usr-001" || got.Username != "alice" {
		t.Errorf("expected identity from token claims, got %+v", got)
	}
}

func TestWithdrawHandler(t *testing.T) {
	tests := []struct {
		name           string
		withdrawFn     func(cqrs.WithdrawCommand) (float64, error)
		expectedStatus int
	}{
		{
			name:           "success - withdraw from own account",
			withdrawFn:     func(cmd cqrs.WithdrawCommand) (float64, error) { return 70, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name: "unprocessable entity - insufficient funds",
			withdrawFn: func(cmd cqrs.WithdrawCommand) (float64, error) {
				return 0, fmt.Errorf("%w: balance 20.00, requested 50.00", apperr.ErrInsufficientFunds)
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "forbidden - account does not match identity",
			withdrawFn: func(cmd cqrs.WithdrawCommand) (float64, error) {
				return 0, fmt.Errorf("%w: account does not belong to the authenticated identity", apperr.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "internal error - persistence failure",
			withdrawFn: func(cmd cqrs.WithdrawCommand) (float64, error) {
				return 0, fmt.Errorf("%w: db down", apperr.ErrInternal)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTxTestRouter(&mockTransactionCommander{withdrawFn: tt.withdrawFn}, "usr-001", "alice")
			w := txDoRequest(router, "/v1/transactions/withdraw", map[string]interface{}{"amount": 30.0})
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestTransferHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		transferFn     func(cqrs.TransferCommand) (float64, error)
		expectedStatus int
	}{
		{
			name:           "success - transfer to another account",
			body:           map[string]interface{}{"receiverUsername": "bob", "amount": 50.0},
			transferFn:     func(cmd cqrs.TransferCommand) (float64, error) { return 20, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found - receiver does not exist",
			body: map[string]interface{}{"receiverUsername": "nobody", "amount": 50.0},
			transferFn: func(cmd cqrs.TransferCommand) (float64, error) {
				return 0, fmt.Errorf("%w: account not found", apperr.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "unprocessable entity - insufficient funds",
			body: map[string]interface{}{"receiverUsername": "bob", "amount": 1000.0},
			transferFn: func(cmd cqrs.TransferCommand) (float64, error) {
				return 0, fmt.Errorf("%w: balance 20.00, requested 1000.00", apperr.ErrInsufficientFunds)
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "forbidden - sender does not match identity",
			body: map[string]interface{}{"receiverUsername": "bob", "amount": 50.0},
			transferFn: func(cmd cqrs.TransferCommand) (float64, error) {
				return 0, fmt.Errorf("%w: account does not belong to the authenticated identity", apperr.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "bad request - transfer to self",
			body:           map[string]interface{}{"receiverUsername": "alice", "amount": 50.0},
			transferFn:     nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing receiver",
			body:           map[string]interface{}{"amount": 50.0},
			transferFn:     nil,
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTxTestRouter(&mockTransactionCommander{transferFn: tt.transferFn}, "usr-001", "alice")
			w := txDoRequest(router, "/v1/transactions/transfer", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
