package dto

type ServiceResponse struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	ServiceType         string `json:"service_type"`
	Description         string `json:"description,omitempty"`
	BaseDurationMinutes int    `json:"base_duration_minutes"`
	IsActive            bool   `json:"is_active"`
}
