package auth

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sisedoc/document-tracking/internal"
	"github.com/sisedoc/document-tracking/internal/transport"
	"github.com/sisedoc/document-tracking/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, user, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err)

		switch err {
		case ErrInvalidCredentials:
			h.HandleServiceError(w, internal.ErrInvalidCredentials)
		case ErrUserInactive:
			h.HandleServiceError(w, internal.ErrInvalidCredentials)
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, LoginResponseDTO{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user,
	})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.Logger.Error("token refresh failed", "error", err)

		switch err {
		case ErrInvalidToken, ErrTokenExpired:
			h.HandleServiceError(w, internal.ErrInvalidToken)
		case ErrUserInactive:
			h.HandleServiceError(w, internal.ErrInvalidToken)
		default:
			h.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware validates the bearer token and loads the session user into
// the request context. Everything behind it can assume a user is present.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, internal.NewUnauthorizedError("Sesión no iniciada", internal.ErrCodeInvalidToken))
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("token validation failed", "error", err)
			if err == ErrTokenExpired {
				h.HandleServiceError(w, internal.ErrTokenExpired)
			} else {
				h.HandleServiceError(w, internal.ErrInvalidToken)
			}
			return
		}

		userID, err := strconv.ParseInt(claims.UserID, 10, 64)
		if err != nil {
			h.Logger.Warn("malformed user id in token claims", "value", claims.UserID)
			h.HandleServiceError(w, internal.ErrInvalidToken)
			return
		}

		sessionUser, err := h.Service.SessionUser(userID)
		if err != nil {
			h.Logger.Warn("failed to load session user", "user_id", userID, "error", err)
			h.HandleServiceError(w, internal.ErrInvalidToken)
			return
		}

		ctx := internal.ContextWithUser(r.Context(), sessionUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
