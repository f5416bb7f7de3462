package user

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleSpecialist Role = "SPECIALIST"
	RoleOther      Role = "OTHER"
)

// ParseRole нормализует строку роли; всё неизвестное схлопывается в RoleOther
func ParseRole(value string) Role {
	switch Role(value) {
	case RoleCustomer:
		return RoleCustomer
	case RoleSpecialist:
		return RoleSpecialist
	default:
		return RoleOther
	}
}

type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountBanned AccountStatus = "BANNED"
)

type User struct {
	ID              uuid.UUID     `json:"id" gorm:"type:uuid;primary_key"`
	PhoneNumber     string        `json:"phone_number" gorm:"uniqueIndex;not null"`
	FirstName       string        `json:"first_name"`
	LastName        string        `json:"last_name"`
	PasswordHash    string        `json:"-" gorm:"not null"`
	Role            Role          `json:"role" gorm:"type:text;not null;default:'CUSTOMER'"`
	Status          AccountStatus `json:"status" gorm:"type:text;not null;default:'ACTIVE'"`
	IsPhoneVerified bool          `json:"is_phone_verified" gorm:"not null;default:false"`
	CreatedAt       time.Time     `json:"created_at" gorm:"not null;default:now()"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
	jwt.RegisteredClaims
}
