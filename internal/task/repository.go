package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransitionResult - исход условного перехода
type TransitionResult int

const (
	TransitionApplied TransitionResult = iota
	TransitionConflict
	TransitionNotFound
)

// TaskRepository - хранилище задач. ConditionalTransition - единственный
// способ мутации: атомарный compare-and-set по (status, specialist_id)
// одной строки. При гонке двух вызовов по одному id максимум один
// получает TransitionApplied.
type TaskRepository interface {
	CreateTask(ctx context.Context, t Task) error
	GetTask(ctx context.Context, id uuid.UUID) (Task, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Task, error)
	ListBySpecialist(ctx context.Context, specialistID uuid.UUID) ([]Task, error)
	ListClaimable(ctx context.Context) ([]Task, error)
	// ConditionalTransition применяет newStatus (и newSpecialist, если задан)
	// только если текущие status и specialist_id совпадают с ожидаемыми.
	// expectedSpecialist == nil означает "specialist_id должен быть NULL",
	// newSpecialist == nil означает "не трогать specialist_id".
	ConditionalTransition(ctx context.Context, id uuid.UUID, expectedStatus Status, expectedSpecialist *uuid.UUID, newStatus Status, newSpecialist *uuid.UUID) (TransitionResult, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) CreateTask(ctx context.Context, t Task) error {
	return r.db.WithContext(ctx).Create(&t).Error
}

func (r *taskRepository) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	var t Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, err
	}
	return t, nil
}

func (r *taskRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) ListBySpecialist(ctx context.Context, specialistID uuid.UUID) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Where("specialist_id = ?", specialistID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) ListClaimable(ctx context.Context) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Where("status = ? AND specialist_id IS NULL", StatusPending).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ConditionalTransition: один UPDATE с WHERE по ожидаемой паре
// (status, specialist_id). Арбитр гонки - RowsAffected: БД применяет
// UPDATE по строке атомарно, поэтому из конкурирующих вызовов ровно
// один увидит 1, остальные 0.
func (r *taskRepository) ConditionalTransition(ctx context.Context, id uuid.UUID, expectedStatus Status, expectedSpecialist *uuid.UUID, newStatus Status, newSpecialist *uuid.UUID) (TransitionResult, error) {
	tx := r.db.WithContext(ctx).Model(&Task{}).
		Where("id = ? AND status = ?", id, expectedStatus)

	if expectedSpecialist == nil {
		tx = tx.Where("specialist_id IS NULL")
	} else {
		tx = tx.Where("specialist_id = ?", *expectedSpecialist)
	}

	updates := map[string]interface{}{"status": newStatus}
	if newSpecialist != nil {
		updates["specialist_id"] = *newSpecialist
	}

	res := tx.Updates(updates)
	if res.Error != nil {
		return TransitionConflict, res.Error
	}
	if res.RowsAffected == 1 {
		return TransitionApplied, nil
	}

	// Строка не совпала: различаем "нет такой задачи" и "кто-то успел раньше"
	var count int64
	if err := r.db.WithContext(ctx).Model(&Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return TransitionConflict, err
	}
	if count == 0 {
		return TransitionNotFound, nil
	}
	return TransitionConflict, nil
}
