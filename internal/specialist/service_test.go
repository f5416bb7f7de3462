package specialist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// memoryRequestRepo is an in-memory RequestRepository for tests.
type memoryRequestRepo struct {
	mu      sync.Mutex
	byUser  map[uuid.UUID]SpecialistRequest
	byReqID map[uuid.UUID]uuid.UUID
}

func newMemoryRequestRepo() *memoryRequestRepo {
	return &memoryRequestRepo{
		byUser:  make(map[uuid.UUID]SpecialistRequest),
		byReqID: make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *memoryRequestRepo) CreateRequest(_ context.Context, sr SpecialistRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[sr.UserID] = sr
	r.byReqID[sr.ID] = sr.UserID
	return nil
}

func (r *memoryRequestRepo) GetByUserID(_ context.Context, userID uuid.UUID) (SpecialistRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sr, ok := r.byUser[userID]
	if !ok {
		return SpecialistRequest{}, ErrRequestNotFound
	}
	return sr, nil
}

func (r *memoryRequestRepo) SetStatus(_ context.Context, id uuid.UUID, status RequestStatus, reviewedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.byReqID[id]
	if !ok {
		return ErrRequestNotFound
	}
	sr := r.byUser[userID]
	sr.Status = status
	sr.ReviewedAt = &reviewedAt
	r.byUser[userID] = sr
	return nil
}

func TestApplyAndReview(t *testing.T) {
	svc := NewRequestService(newMemoryRequestRepo())
	ctx := context.Background()
	userID := uuid.New()

	sr, err := svc.Apply(ctx, userID, "electrician, 5 years")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if sr.Status != RequestPending {
		t.Fatalf("expected PENDING, got %s", sr.Status)
	}

	// second application is rejected
	if _, err := svc.Apply(ctx, userID, ""); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}

	// pending request is not yet eligibility
	approved, err := svc.IsApproved(ctx, userID)
	if err != nil {
		t.Fatalf("is approved: %v", err)
	}
	if approved {
		t.Fatal("pending request must not grant eligibility")
	}

	reviewed, err := svc.Review(ctx, userID, true)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != RequestApproved || reviewed.ReviewedAt == nil {
		t.Fatal("approval must set status and reviewed_at")
	}

	approved, err = svc.IsApproved(ctx, userID)
	if err != nil {
		t.Fatalf("is approved: %v", err)
	}
	if !approved {
		t.Fatal("approved request must grant eligibility")
	}
}

func TestRejectedIsNotEligible(t *testing.T) {
	svc := NewRequestService(newMemoryRequestRepo())
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.Apply(ctx, userID, ""); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := svc.Review(ctx, userID, false); err != nil {
		t.Fatalf("review: %v", err)
	}

	approved, err := svc.IsApproved(ctx, userID)
	if err != nil {
		t.Fatalf("is approved: %v", err)
	}
	if approved {
		t.Fatal("rejected request must not grant eligibility")
	}
}

func TestIsApprovedWithoutRequest(t *testing.T) {
	svc := NewRequestService(newMemoryRequestRepo())

	approved, err := svc.IsApproved(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("is approved: %v", err)
	}
	if approved {
		t.Fatal("user without a request must not be eligible")
	}
}

func TestMyRequestNotFound(t *testing.T) {
	svc := NewRequestService(newMemoryRequestRepo())

	if _, err := svc.MyRequest(context.Background(), uuid.New()); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}
