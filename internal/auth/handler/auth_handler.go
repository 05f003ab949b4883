package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coughlinalbert1/distributed-banking/shared/apperr"
	"github.com/coughlinalbert1/distributed-banking/shared/cqrs"
	"github.com/coughlinalbert1/distributed-banking/shared/middleware"
	"github.com/coughlinalbert1/distributed-banking/shared/models"
)

// IdentityServicer defines the operations used by AuthHandler.
type IdentityServicer interface {
	Register(cqrs.RegisterCommand) (*models.Credential, error)
	Authenticate(cqrs.AuthenticateCommand) (*models.Credential, error)
	Login(cqrs.LoginCommand) (string, error)
}

type AuthHandler struct {
	identity IdentityServicer
}

type CredentialsRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

type RegisterResponse struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

type AuthenticateResponse struct {
	Success string `json:"success"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

func NewAuthHandler(identity IdentityServicer) *AuthHandler {
	return &AuthHandler{identity: identity}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	cred, err := h.identity.Register(cqrs.RegisterCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			middleware.RespondWithError(c, http.StatusConflict, "Username already registered")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to register user")
		return
	}

	// The password hash is returned for the ledger service, which stores a
	// copy on the account record. It never reaches end users: the gateway
	// only exposes registration through account creation.
	c.JSON(http.StatusCreated, RegisterResponse{
		UserID:       cred.UserID,
		Username:     cred.Username,
		PasswordHash: cred.PasswordHash,
	})
}

func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	_, err := h.identity.Authenticate(cqrs.AuthenticateCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthenticateResponse{Success: "User authenticated successfully"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	signed, err := h.identity.Login(cqrs.LoginCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{AccessToken: signed, TokenType: "Bearer"})
}

// respondAuthError maps authenticate/login failures. Unknown usernames and
// bad passwords get distinct statuses, matching the original API.
func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "User not found")
	case errors.Is(err, apperr.ErrUnauthorized):
		middleware.RespondWithError(c, http.StatusUnauthorized, "Incorrect username or password")
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, "Authentication failed")
	}
}
