package handler

import (
	"crypto/subtle"
	"net/http"

	"land-ledger/internal/adapter/http/dto"
	"land-ledger/internal/core/domain"
	"land-ledger/internal/core/ports"
	"land-ledger/pkg/apperror"
	"land-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles the gateway token exchange. The upstream gateway
// authenticates the wallet; it then trades the proven address for a ledger
// token using the shared secret.
type AuthHandler struct {
	tokenSvc      ports.TokenService
	gatewaySecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(tokenSvc ports.TokenService, gatewaySecret string) *AuthHandler {
	return &AuthHandler{tokenSvc: tokenSvc, gatewaySecret: gatewaySecret}
}

// Token handles POST /api/v1/auth/token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if h.gatewaySecret == "" ||
		subtle.ConstantTimeCompare([]byte(req.GatewaySecret), []byte(h.gatewaySecret)) != 1 {
		response.Error(c, apperror.ErrInvalidGatewaySecret())
		return
	}

	token, expiry, err := h.tokenSvc.Generate(domain.NormalizeAddress(req.Address))
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	response.OK(c, dto.TokenResponse{
		Token:  token,
		Expiry: expiry.Unix(),
	})
}

// HealthCheck handles GET /health — deep health check verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
