package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"multiverse-server/internal/auth"
	"multiverse-server/internal/shared/config"
	"multiverse-server/internal/shared/errors"
	"multiverse-server/internal/shared/response"
)

type tokenRequest struct {
	APIKey string `json:"api_key"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	Operator  string `json:"operator"`
	ExpiresIn int    `json:"expires_in_seconds"`
}

// TokenHandler exchanges the configured admin API key for an operator JWT.
// There is no interactive account model; this replaces browser login flows.
type TokenHandler struct{}

func NewTokenHandler() *TokenHandler {
	return &TokenHandler{}
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "token")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	cfg := config.GlobalConfig

	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(cfg.Admin.APIKey)) != 1 {
		response.Error(w, r, logger, errors.Unauthorized("invalid API key"))
		return
	}

	token, err := auth.GenerateToken(cfg.Admin.Operator, auth.RoleAdmin, cfg.Auth.TokenExpiration)
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to generate token", err))
		return
	}

	logger.Info("Operator token issued", "operator", cfg.Admin.Operator)

	response.Success(w, http.StatusOK, tokenResponse{
		Token:     token,
		Operator:  cfg.Admin.Operator,
		ExpiresIn: int(cfg.Auth.TokenExpiration.Seconds()),
	})
}
