package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coughlinalbert1/distributed-banking/shared/apperr"
	"github.com/coughlinalbert1/distributed-banking/shared/cqrs"
	"github.com/coughlinalbert1/distributed-banking/shared/middleware"
)

// TransactionCommander defines the balance-mutation operations used by
// TransactionHandler.
type TransactionCommander interface {
	Deposit(cqrs.DepositCommand) (float64, error)
	Withdraw(cqrs.WithdrawCommand) (float64, error)
	Transfer(cqrs.TransferCommand) (float64, error)
}

type TransactionHandler struct {
	commands TransactionCommander
}

type AmountRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type TransferRequest struct {
	ReceiverUsername string  `json:"receiverUsername" validate:"required"`
	Amount           float64 `json:"amount" validate:"required,gt=0"`
}

type BalanceResponse struct {
	Balance float64 `json:"balance"`
}

func NewTransactionHandler(commands TransactionCommander) *TransactionHandler {
	return &TransactionHandler{commands: commands}
}

func (h *TransactionHandler) Deposit(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	username, _ := middleware.GetUsername(c)

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	balance, err := h.commands.Deposit(cqrs.DepositCommand{
		UserID:   userID,
		Username: username,
		Amount:   req.Amount,
	})
	if err != nil {
		respondTransactionError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{Balance: balance})
}

func (h *TransactionHandler) Withdraw(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	username, _ := middleware.GetUsername(c)

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	balance, err := h.commands.Withdraw(cqrs.WithdrawCommand{
		UserID:   userID,
		Username: username,
		Amount:   req.Amount,
	})
	if err != nil {
		respondTransactionError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{Balance: balance})
}

func (h *TransactionHandler) Transfer(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	username, _ := middleware.GetUsername(c)

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if req.ReceiverUsername == username {
		middleware.RespondWithError(c, http.StatusBadRequest, "Cannot transfer to your own account")
		return
	}

	balance, err := h.commands.Transfer(cqrs.TransferCommand{
		UserID:           userID,
		Username:         username,
		ReceiverUsername: req.ReceiverUsername,
		Amount:           req.Amount,
	})
	if err != nil {
		respondTransactionError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{Balance: balance})
}

func respondTransactionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
	case errors.Is(err, apperr.ErrForbidden):
		middleware.RespondWithError(c, http.StatusForbidden, "You can only transact on your own account")
	case errors.Is(err, apperr.ErrInsufficientFunds):
		middleware.RespondWithError(c, http.StatusUnprocessableEntity, "Insufficient funds")
	case errors.Is(err, apperr.ErrConflict):
		middleware.RespondWithError(c, http.StatusConflict, "Invalid transfer")
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to process transaction")
	}
}
