package task

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusAccepted   Status = "ACCEPTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusCanceled   Status = "CANCELED"
)

// Task - заявка клиента на услугу. Статус движется только по рёбрам
// PENDING -> ACCEPTED -> IN_PROGRESS -> DONE, с отменой из PENDING/ACCEPTED.
// SpecialistID ставится ровно один раз (на accept) и больше не очищается.
type Task struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	ServiceID    uuid.UUID  `json:"service_id" gorm:"type:uuid;not null"`
	CustomerID   uuid.UUID  `json:"customer_id" gorm:"type:uuid;not null;index"`
	SpecialistID *uuid.UUID `json:"specialist_id" gorm:"type:uuid;index"`
	Status       Status     `json:"status" gorm:"type:text;not null;default:'PENDING';check:status IN ('PENDING', 'ACCEPTED', 'IN_PROGRESS', 'DONE', 'CANCELED')"`
	ContactName  string     `json:"contact_name" gorm:"not null"`
	ContactPhone string     `json:"contact_phone" gorm:"not null"`
	Address      string     `json:"address" gorm:"type:text;not null"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	Note         *string    `json:"note,omitempty" gorm:"type:text"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null;default:now()"`
}

// Terminal сообщает, определены ли переходы из статуса
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCanceled
}
