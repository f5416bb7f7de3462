package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type memoryServiceRepo struct {
	services map[uuid.UUID]Service
}

func (r *memoryServiceRepo) ListActive(_ context.Context) ([]Service, error) {
	var result []Service
	for _, svc := range r.services {
		if svc.IsActive {
			result = append(result, svc)
		}
	}
	return result, nil
}

func (r *memoryServiceRepo) GetByID(_ context.Context, id uuid.UUID) (Service, error) {
	svc, ok := r.services[id]
	if !ok {
		return Service{}, ErrServiceNotFound
	}
	return svc, nil
}

func TestExistsActive(t *testing.T) {
	active := Service{ID: uuid.New(), Title: "Cleaning", ServiceType: TypeCleaning, IsActive: true}
	inactive := Service{ID: uuid.New(), Title: "Moving", ServiceType: TypeMoving, IsActive: false}

	svc := NewCatalogService(&memoryServiceRepo{services: map[uuid.UUID]Service{
		active.ID:   active,
		inactive.ID: inactive,
	}})
	ctx := context.Background()

	ok, err := svc.ExistsActive(ctx, active.ID)
	if err != nil || !ok {
		t.Fatalf("active service must exist, got %v / %v", ok, err)
	}

	ok, err = svc.ExistsActive(ctx, inactive.ID)
	if err != nil || ok {
		t.Fatalf("inactive service must not count, got %v / %v", ok, err)
	}

	ok, err = svc.ExistsActive(ctx, uuid.New())
	if err != nil || ok {
		t.Fatalf("unknown service must not count, got %v / %v", ok, err)
	}
}
