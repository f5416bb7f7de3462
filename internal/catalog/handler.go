package catalog

import (
	"net/http"

	"github.com/Raminhrd/Kaaro/internal/dto"
	"github.com/Raminhrd/Kaaro/internal/httpx"
)

type Handler struct {
	service CatalogService
}

func NewHandler(service CatalogService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Каталог доступен без авторизации
	mux.HandleFunc("GET /services", h.List)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.ListActive(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]dto.ServiceResponse, 0, len(services))
	for _, svc := range services {
		resp = append(resp, dto.ServiceResponse{
			ID:                  svc.ID.String(),
			Title:               svc.Title,
			ServiceType:         string(svc.ServiceType),
			Description:         svc.Description,
			BaseDurationMinutes: svc.BaseDurationMinutes,
			IsActive:            svc.IsActive,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
