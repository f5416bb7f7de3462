package specialist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRequestNotFound = errors.New("no specialist request found")

type RequestRepository interface {
	CreateRequest(ctx context.Context, sr SpecialistRequest) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (SpecialistRequest, error)
	SetStatus(ctx context.Context, id uuid.UUID, status RequestStatus, reviewedAt time.Time) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) CreateRequest(ctx context.Context, sr SpecialistRequest) error {
	return r.db.WithContext(ctx).Create(&sr).Error
}

func (r *requestRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (SpecialistRequest, error) {
	var sr SpecialistRequest
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SpecialistRequest{}, ErrRequestNotFound
		}
		return SpecialistRequest{}, err
	}
	return sr, nil
}

func (r *requestRepository) SetStatus(ctx context.Context, id uuid.UUID, status RequestStatus, reviewedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&SpecialistRequest{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      status,
		"reviewed_at": reviewedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}
