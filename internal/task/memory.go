package task

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository - in-memory реализация TaskRepository на мьютексе.
// Используется в тестах и dev-режиме без Postgres; семантика
// ConditionalTransition та же: compare-and-set под одной блокировкой.
type MemoryRepository struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]Task
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tasks: make(map[uuid.UUID]Task),
	}
}

func (r *MemoryRepository) CreateTask(_ context.Context, t Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = t
	return nil
}

func (r *MemoryRepository) GetTask(_ context.Context, id uuid.UUID) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return t, nil
}

func (r *MemoryRepository) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(func(t Task) bool {
		return t.CustomerID == customerID
	}), nil
}

func (r *MemoryRepository) ListBySpecialist(_ context.Context, specialistID uuid.UUID) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(func(t Task) bool {
		return t.SpecialistID != nil && *t.SpecialistID == specialistID
	}), nil
}

func (r *MemoryRepository) ListClaimable(_ context.Context) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(func(t Task) bool {
		return t.Status == StatusPending && t.SpecialistID == nil
	}), nil
}

func (r *MemoryRepository) ConditionalTransition(_ context.Context, id uuid.UUID, expectedStatus Status, expectedSpecialist *uuid.UUID, newStatus Status, newSpecialist *uuid.UUID) (TransitionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return TransitionNotFound, nil
	}

	if t.Status != expectedStatus {
		return TransitionConflict, nil
	}
	if expectedSpecialist == nil {
		if t.SpecialistID != nil {
			return TransitionConflict, nil
		}
	} else {
		if t.SpecialistID == nil || *t.SpecialistID != *expectedSpecialist {
			return TransitionConflict, nil
		}
	}

	t.Status = newStatus
	if newSpecialist != nil {
		sp := *newSpecialist
		t.SpecialistID = &sp
	}
	r.tasks[id] = t
	return TransitionApplied, nil
}

// collect вызывается под r.mu; возвращает копии, отсортированные по created_at DESC
func (r *MemoryRepository) collect(match func(Task) bool) []Task {
	result := make([]Task, 0)
	for _, t := range r.tasks {
		if match(t) {
			result = append(result, t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID.String() > result[j].ID.String()
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}
