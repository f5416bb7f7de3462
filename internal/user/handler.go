package user

import (
	"errors"
	"net/http"

	"github.com/Raminhrd/Kaaro/internal/dto"
	"github.com/Raminhrd/Kaaro/internal/httpx"
)

type Handler struct {
	service  UserService
	verifier *Verifier
	jwtTTL   int64
}

func NewHandler(service UserService, verifier *Verifier, jwtTTLSeconds int64) *Handler {
	return &Handler{
		service:  service,
		verifier: verifier,
		jwtTTL:   jwtTTLSeconds,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /users/signup", h.SignUp)
	mux.HandleFunc("POST /users/otp/request", h.RequestOTP)
	mux.HandleFunc("POST /users/otp/login", h.LoginWithOTP)
	mux.HandleFunc("POST /users/logout", h.Logout)
	mux.HandleFunc("GET /users/me", h.Me)
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := h.service.SignUp(r.Context(), req.PhoneNumber, req.Password, req.FirstName, req.LastName, ParseRole(req.Role))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.OTPRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.service.RequestOTP(r.Context(), req.PhoneNumber); err != nil {
		h.writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"detail": "otp sent"})
}

func (h *Handler) LoginWithOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.OTPLoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, token, err := h.service.LoginWithOTP(r.Context(), req.PhoneNumber, req.OTP)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     httpx.AccessTokenCookie,
		Value:    token,
		MaxAge:   int(h.jwtTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})

	httpx.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		AccessToken: token,
		ExpiresIn:   h.jwtTTL,
		User:        toUserResponse(u),
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, err := h.authenticate(r)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), claims); err != nil {
		h.writeServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     httpx.AccessTokenCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"detail": "logged out"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := h.authenticate(r)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	u, err := h.service.Profile(r.Context(), claims.UserID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) authenticate(r *http.Request) (Claims, error) {
	token, err := httpx.TokenFromRequest(r)
	if err != nil {
		return Claims{}, err
	}
	return h.verifier.Verify(r.Context(), token)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidPhone), errors.Is(err, ErrInvalidPassword), errors.Is(err, ErrInvalidName):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPhoneTaken):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidOTP):
		httpx.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrTooManyRequests):
		httpx.WriteError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ErrAccountBanned):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrRevokedToken):
		httpx.WriteError(w, http.StatusUnauthorized, err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

func toUserResponse(u User) dto.UserResponse {
	return dto.UserResponse{
		ID:              u.ID.String(),
		PhoneNumber:     u.PhoneNumber,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		FullName:        u.FullName(),
		Role:            string(u.Role),
		Status:          string(u.Status),
		IsPhoneVerified: u.IsPhoneVerified,
		CreatedAt:       u.CreatedAt,
	}
}
