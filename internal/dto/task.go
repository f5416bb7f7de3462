package dto

type CreateTaskRequest struct {
	ServiceID    string   `json:"service_id"`
	ContactName  string   `json:"contact_name"`
	ContactPhone string   `json:"contact_phone"`
	Address      string   `json:"address"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Note         *string  `json:"note,omitempty"`
}

type TaskResponse struct {
	ID           string   `json:"id"`
	ServiceID    string   `json:"service_id"`
	CustomerID   string   `json:"customer_id"`
	SpecialistID *string  `json:"specialist_id"`
	Status       string   `json:"status"`
	ContactName  string   `json:"contact_name"`
	ContactPhone string   `json:"contact_phone"`
	Address      string   `json:"address"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Note         *string  `json:"note,omitempty"`
	CreatedAt    string   `json:"created_at"`
}
