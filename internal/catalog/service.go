package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type CatalogService interface {
	ListActive(ctx context.Context) ([]Service, error)
	// ExistsActive сообщает, существует ли активная услуга с данным id
	ExistsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

type catalogService struct {
	repo ServiceRepository
}

func NewCatalogService(repo ServiceRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) ListActive(ctx context.Context) ([]Service, error) {
	return s.repo.ListActive(ctx)
}

func (s *catalogService) ExistsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return false, nil
		}
		return false, err
	}
	return svc.IsActive, nil
}
