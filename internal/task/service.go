package task

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Raminhrd/Kaaro/internal/user"
	"github.com/google/uuid"
)

// CatalogChecker подтверждает существование активной услуги при создании задачи
type CatalogChecker interface {
	ExistsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

type CreateInput struct {
	ServiceID    uuid.UUID
	ContactName  string
	ContactPhone string
	Address      string
	Latitude     *float64
	Longitude    *float64
	Note         *string
}

// TaskService - state machine жизненного цикла задачи. Каждый переход:
// gate -> загрузка и проверка владения -> ConditionalTransition.
// Единственный победитель accept гарантируется только атомарностью
// хранилища, без блокировок на уровне приложения.
type TaskService interface {
	Create(ctx context.Context, actor Actor, in CreateInput) (Task, error)
	Accept(ctx context.Context, actor Actor, id uuid.UUID) (Task, error)
	Start(ctx context.Context, actor Actor, id uuid.UUID) (Task, error)
	Complete(ctx context.Context, actor Actor, id uuid.UUID) (Task, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (Task, error)
	ListMine(ctx context.Context, actor Actor) ([]Task, error)
	ListClaimable(ctx context.Context, actor Actor) ([]Task, error)
}

type taskService struct {
	repo     TaskRepository
	gate     *Gate
	catalog  CatalogChecker
	producer EventProducer
}

func NewTaskService(repo TaskRepository, gate *Gate, catalog CatalogChecker, producer EventProducer) TaskService {
	return &taskService{
		repo:     repo,
		gate:     gate,
		catalog:  catalog,
		producer: producer,
	}
}

func (s *taskService) Create(ctx context.Context, actor Actor, in CreateInput) (Task, error) {
	if err := s.gate.Authorize(ctx, actor, OpCreate); err != nil {
		return Task{}, err
	}

	if strings.TrimSpace(in.ContactName) == "" {
		return Task{}, fmt.Errorf("%w: contact_name is required", ErrValidation)
	}
	if strings.TrimSpace(in.ContactPhone) == "" {
		return Task{}, fmt.Errorf("%w: contact_phone is required", ErrValidation)
	}
	if strings.TrimSpace(in.Address) == "" {
		return Task{}, fmt.Errorf("%w: address is required", ErrValidation)
	}

	if s.catalog != nil {
		exists, err := s.catalog.ExistsActive(ctx, in.ServiceID)
		if err != nil {
			return Task{}, err
		}
		if !exists {
			return Task{}, fmt.Errorf("%w: unknown or inactive service", ErrValidation)
		}
	}

	t := Task{
		ID:           uuid.New(),
		ServiceID:    in.ServiceID,
		CustomerID:   actor.ID,
		Status:       StatusPending,
		ContactName:  in.ContactName,
		ContactPhone: in.ContactPhone,
		Address:      in.Address,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Note:         in.Note,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateTask(ctx, t); err != nil {
		return Task{}, err
	}

	return t, nil
}

// Accept - единственный переход с настоящей конкуренцией: N специалистов
// могут звать его одновременно на одной PENDING задаче, выигрывает ровно
// один (чей CAS применился), остальные получают ErrStateConflict и не
// должны ретраить ту же задачу.
func (s *taskService) Accept(ctx context.Context, actor Actor, id uuid.UUID) (Task, error) {
	if err := s.gate.Authorize(ctx, actor, OpAccept); err != nil {
		return Task{}, err
	}

	specialistID := actor.ID
	res, err := s.repo.ConditionalTransition(ctx, id, StatusPending, nil, StatusAccepted, &specialistID)
	if err != nil {
		return Task{}, err
	}

	return s.finishTransition(ctx, id, res)
}

func (s *taskService) Start(ctx context.Context, actor Actor, id uuid.UUID) (Task, error) {
	if err := s.gate.Authorize(ctx, actor, OpStart); err != nil {
		return Task{}, err
	}
	return s.advanceOwn(ctx, actor, id, StatusAccepted, StatusInProgress)
}

func (s *taskService) Complete(ctx context.Context, actor Actor, id uuid.UUID) (Task, error) {
	if err := s.gate.Authorize(ctx, actor, OpComplete); err != nil {
		return Task{}, err
	}
	return s.advanceOwn(ctx, actor, id, StatusInProgress, StatusDone)
}

// advanceOwn двигает задачу, которой владеет специалист actor.
// Сначала загружаем задачу, чтобы различить Forbidden (чужая задача)
// и StateConflict (своя, но не в том статусе).
func (s *taskService) advanceOwn(ctx context.Context, actor Actor, id uuid.UUID, from, to Status) (Task, error) {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}

	if t.SpecialistID == nil || *t.SpecialistID != actor.ID {
		return Task{}, ErrForbidden
	}
	if t.Status != from {
		return Task{}, ErrStateConflict
	}

	specialistID := actor.ID
	res, err := s.repo.ConditionalTransition(ctx, id, from, &specialistID, to, nil)
	if err != nil {
		return Task{}, err
	}

	return s.finishTransition(ctx, id, res)
}

func (s *taskService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (Task, error) {
	if err := s.gate.Authorize(ctx, actor, OpCancel); err != nil {
		return Task{}, err
	}

	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}

	if t.CustomerID != actor.ID {
		return Task{}, ErrForbidden
	}
	if t.Status.Terminal() || t.Status == StatusInProgress {
		return Task{}, ErrStateConflict
	}

	// Отмена идёт через тот же CAS, что и остальные переходы: если между
	// чтением и записью специалист успел взять или начать задачу, получаем
	// конфликт, а не потерянный переход
	res, err := s.repo.ConditionalTransition(ctx, id, t.Status, t.SpecialistID, StatusCanceled, nil)
	if err != nil {
		return Task{}, err
	}

	return s.finishTransition(ctx, id, res)
}

func (s *taskService) ListMine(ctx context.Context, actor Actor) ([]Task, error) {
	if actor.ID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	switch actor.Role {
	case user.RoleCustomer:
		return s.repo.ListByCustomer(ctx, actor.ID)
	case user.RoleSpecialist:
		return s.repo.ListBySpecialist(ctx, actor.ID)
	default:
		// Прочие роли видят пустой список, не ошибку
		return []Task{}, nil
	}
}

func (s *taskService) ListClaimable(ctx context.Context, actor Actor) ([]Task, error) {
	if err := s.gate.Authorize(ctx, actor, OpListClaimable); err != nil {
		return nil, err
	}
	// Читаем напрямую из хранилища: взятая задача исчезает из выдачи
	// сразу после коммита CAS
	return s.repo.ListClaimable(ctx)
}

// finishTransition переводит исход CAS в результат операции и публикует событие
func (s *taskService) finishTransition(ctx context.Context, id uuid.UUID, res TransitionResult) (Task, error) {
	switch res {
	case TransitionApplied:
		t, err := s.repo.GetTask(ctx, id)
		if err != nil {
			return Task{}, err
		}
		s.publishEvent(t)
		return t, nil
	case TransitionNotFound:
		return Task{}, ErrTaskNotFound
	default:
		return Task{}, ErrStateConflict
	}
}

func (s *taskService) publishEvent(t Task) {
	if s.producer == nil {
		return
	}

	event := TaskEvent{
		TaskID:     t.ID.String(),
		CustomerID: t.CustomerID.String(),
		Status:     string(t.Status),
		Timestamp:  time.Now(),
	}
	if t.SpecialistID != nil {
		event.SpecialistID = t.SpecialistID.String()
	}

	// Отправляем событие асинхронно (не блокируем ответ)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.producer.SendTaskEvent(ctx, event); err != nil {
			log.Printf("failed to send task event to kafka: %v", err)
		}
	}()
}
