package task

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Raminhrd/Kaaro/internal/dto"
	"github.com/Raminhrd/Kaaro/internal/httpx"
	"github.com/Raminhrd/Kaaro/internal/user"
	"github.com/google/uuid"
)

type Handler struct {
	service  TaskService
	verifier *user.Verifier
}

func NewHandler(service TaskService, verifier *user.Verifier) *Handler {
	return &Handler{
		service:  service,
		verifier: verifier,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /tasks", h.Create)
	mux.HandleFunc("GET /tasks", h.ListMine)
	mux.HandleFunc("GET /tasks/available", h.ListAvailable)
	mux.HandleFunc("POST /tasks/{id}/accept", h.transition(TaskService.Accept))
	mux.HandleFunc("POST /tasks/{id}/start", h.transition(TaskService.Start))
	mux.HandleFunc("POST /tasks/{id}/done", h.transition(TaskService.Complete))
	mux.HandleFunc("POST /tasks/{id}/cancel", h.transition(TaskService.Cancel))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req dto.CreateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid service_id")
		return
	}

	t, err := h.service.Create(r.Context(), actor, CreateInput{
		ServiceID:    serviceID,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Note:         req.Note,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toTaskResponse(t))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := h.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	tasks, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	actor, err := h.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	tasks, err := h.service.ListClaimable(r.Context(), actor)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTaskResponses(tasks))
}

// transition - общий обработчик для accept/start/done/cancel:
// они различаются только вызываемым методом сервиса
func (h *Handler) transition(call func(TaskService, context.Context, Actor, uuid.UUID) (Task, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := h.authenticate(r)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid id")
			return
		}

		t, err := call(h.service, r.Context(), actor, id)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toTaskResponse(t))
	}
}

func (h *Handler) authenticate(r *http.Request) (Actor, error) {
	token, err := httpx.TokenFromRequest(r)
	if err != nil {
		return Actor{}, err
	}
	claims, err := h.verifier.Verify(r.Context(), token)
	if err != nil {
		return Actor{}, err
	}
	return Actor{
		ID:   claims.UserID,
		Role: user.ParseRole(string(claims.Role)),
	}, nil
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		writeUnauthorized(w)
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotEligible):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrTaskNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrStateConflict):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

const unauthorizedMessage = "authentication required"

func writeUnauthorized(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, unauthorizedMessage)
}

func toTaskResponse(t Task) dto.TaskResponse {
	resp := dto.TaskResponse{
		ID:           t.ID.String(),
		ServiceID:    t.ServiceID.String(),
		CustomerID:   t.CustomerID.String(),
		Status:       string(t.Status),
		ContactName:  t.ContactName,
		ContactPhone: t.ContactPhone,
		Address:      t.Address,
		Latitude:     t.Latitude,
		Longitude:    t.Longitude,
		Note:         t.Note,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	}
	if t.SpecialistID != nil {
		id := t.SpecialistID.String()
		resp.SpecialistID = &id
	}
	return resp
}

func toTaskResponses(tasks []Task) []dto.TaskResponse {
	resp := make([]dto.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toTaskResponse(t))
	}
	return resp
}
