package dto

type SpecialistApplyRequest struct {
	Note string `json:"note,omitempty"`
}

type SpecialistRequestResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Status     string  `json:"status"`
	Note       string  `json:"note,omitempty"`
	CreatedAt  string  `json:"created_at"`
	ReviewedAt *string `json:"reviewed_at,omitempty"`
}
