package specialist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAlreadyApplied = errors.New("specialist request already exists")

type RequestService interface {
	Apply(ctx context.Context, userID uuid.UUID, note string) (SpecialistRequest, error)
	MyRequest(ctx context.Context, userID uuid.UUID) (SpecialistRequest, error)
	Review(ctx context.Context, userID uuid.UUID, approve bool) (SpecialistRequest, error)
	IsApproved(ctx context.Context, userID uuid.UUID) (bool, error)
}

type requestService struct {
	repo RequestRepository
}

func NewRequestService(repo RequestRepository) RequestService {
	return &requestService{repo: repo}
}

func (s *requestService) Apply(ctx context.Context, userID uuid.UUID, note string) (SpecialistRequest, error) {
	if _, err := s.repo.GetByUserID(ctx, userID); err == nil {
		return SpecialistRequest{}, ErrAlreadyApplied
	} else if !errors.Is(err, ErrRequestNotFound) {
		return SpecialistRequest{}, err
	}

	sr := SpecialistRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    RequestPending,
		Note:      note,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateRequest(ctx, sr); err != nil {
		return SpecialistRequest{}, err
	}
	return sr, nil
}

func (s *requestService) MyRequest(ctx context.Context, userID uuid.UUID) (SpecialistRequest, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *requestService) Review(ctx context.Context, userID uuid.UUID, approve bool) (SpecialistRequest, error) {
	sr, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return SpecialistRequest{}, err
	}

	status := RequestRejected
	if approve {
		status = RequestApproved
	}
	now := time.Now()
	if err := s.repo.SetStatus(ctx, sr.ID, status, now); err != nil {
		return SpecialistRequest{}, err
	}

	sr.Status = status
	sr.ReviewedAt = &now
	return sr, nil
}

// IsApproved - источник eligibility для задач: только APPROVED заявка
// даёт специалисту право брать задачи
func (s *requestService) IsApproved(ctx context.Context, userID uuid.UUID) (bool, error) {
	sr, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return false, nil
		}
		return false, err
	}
	return sr.Status == RequestApproved, nil
}
