package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrServiceNotFound = errors.New("service not found")

type ServiceRepository interface {
	ListActive(ctx context.Context) ([]Service, error)
	GetByID(ctx context.Context, id uuid.UUID) (Service, error)
}

type serviceRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) ListActive(ctx context.Context) ([]Service, error) {
	var services []Service
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("service_type, title").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (r *serviceRepository) GetByID(ctx context.Context, id uuid.UUID) (Service, error) {
	var svc Service
	err := r.db.WithContext(ctx).First(&svc, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Service{}, ErrServiceNotFound
		}
		return Service{}, err
	}
	return svc, nil
}
