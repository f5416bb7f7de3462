package catalog

import (
	"time"

	"github.com/google/uuid"
)

type ServiceType string

const (
	TypeCleaning   ServiceType = "CLEANING"
	TypePlumbing   ServiceType = "PLUMBING"
	TypeElectrical ServiceType = "ELECTRICAL"
	TypeMoving     ServiceType = "MOVING"
	TypeRepair     ServiceType = "REPAIR"
)

type Service struct {
	ID                  uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	Title               string      `json:"title" gorm:"not null"`
	ServiceType         ServiceType `json:"service_type" gorm:"type:text;not null"`
	Description         string      `json:"description,omitempty" gorm:"type:text"`
	BaseDurationMinutes int         `json:"base_duration_minutes" gorm:"not null;default:60"`
	IsActive            bool        `json:"is_active" gorm:"not null;default:true"`
	CreatedAt           time.Time   `json:"created_at" gorm:"not null;default:now()"`
}
