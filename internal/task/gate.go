package task

import (
	"context"

	"github.com/Raminhrd/Kaaro/internal/user"
	"github.com/google/uuid"
)

// Actor - кто выполняет операцию; прокидывается явно в каждый вызов,
// никакого глобального "текущего пользователя" нет
type Actor struct {
	ID   uuid.UUID
	Role user.Role
}

// Operation - операции ядра, на которые выдаётся разрешение
type Operation int

const (
	OpCreate Operation = iota
	OpAccept
	OpStart
	OpComplete
	OpCancel
	OpListClaimable
)

// EligibilityChecker - внешняя проверка одобрения специалиста
// (заявка в статусе APPROVED)
type EligibilityChecker interface {
	IsApproved(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Gate решает, может ли актор выполнить операцию. Чистая проверка
// роли и eligibility; владение конкретной задачей проверяется дальше,
// в state machine, где задача уже загружена.
type Gate struct {
	eligibility EligibilityChecker
}

func NewGate(eligibility EligibilityChecker) *Gate {
	return &Gate{eligibility: eligibility}
}

func (g *Gate) Authorize(ctx context.Context, actor Actor, op Operation) error {
	if actor.ID == uuid.Nil {
		return ErrUnauthenticated
	}

	switch op {
	case OpCreate, OpCancel:
		if actor.Role != user.RoleCustomer {
			return ErrForbidden
		}
		return nil

	case OpAccept, OpStart, OpComplete, OpListClaimable:
		if actor.Role != user.RoleSpecialist {
			return ErrForbidden
		}
		approved, err := g.eligibility.IsApproved(ctx, actor.ID)
		if err != nil {
			return err
		}
		if !approved {
			return ErrNotEligible
		}
		return nil

	default:
		return ErrForbidden
	}
}
