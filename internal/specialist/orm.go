package specialist

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// SpecialistRequest - заявка на получение статуса специалиста.
// Одна заявка на пользователя; APPROVED открывает доступ к задачам.
type SpecialistRequest struct {
	ID         uuid.UUID     `json:"id" gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID     `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Status     RequestStatus `json:"status" gorm:"type:text;not null;default:'PENDING'"`
	Note       string        `json:"note,omitempty" gorm:"type:text"`
	CreatedAt  time.Time     `json:"created_at" gorm:"not null;default:now()"`
	ReviewedAt *time.Time    `json:"reviewed_at,omitempty"`
}
