package specialist

import (
	"errors"
	"net/http"
	"time"

	"github.com/Raminhrd/Kaaro/internal/dto"
	"github.com/Raminhrd/Kaaro/internal/httpx"
	"github.com/Raminhrd/Kaaro/internal/user"
)

type Handler struct {
	service  RequestService
	verifier *user.Verifier
}

func NewHandler(service RequestService, verifier *user.Verifier) *Handler {
	return &Handler{
		service:  service,
		verifier: verifier,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /specialists/requests", h.Apply)
	mux.HandleFunc("GET /specialists/requests/me", h.MyRequest)
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	claims, err := h.authenticate(r)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req dto.SpecialistApplyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sr, err := h.service.Apply(r.Context(), claims.UserID, req.Note)
	if err != nil {
		if errors.Is(err, ErrAlreadyApplied) {
			httpx.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toRequestResponse(sr))
}

func (h *Handler) MyRequest(w http.ResponseWriter, r *http.Request) {
	claims, err := h.authenticate(r)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sr, err := h.service.MyRequest(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			httpx.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toRequestResponse(sr))
}

func (h *Handler) authenticate(r *http.Request) (user.Claims, error) {
	token, err := httpx.TokenFromRequest(r)
	if err != nil {
		return user.Claims{}, err
	}
	return h.verifier.Verify(r.Context(), token)
}

func toRequestResponse(sr SpecialistRequest) dto.SpecialistRequestResponse {
	resp := dto.SpecialistRequestResponse{
		ID:        sr.ID.String(),
		UserID:    sr.UserID.String(),
		Status:    string(sr.Status),
		Note:      sr.Note,
		CreatedAt: sr.CreatedAt.Format(time.RFC3339),
	}
	if sr.ReviewedAt != nil {
		reviewed := sr.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &reviewed
	}
	return resp
}
