package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Raminhrd/Kaaro/internal/user"
	"github.com/google/uuid"
)

// eligibilityStub approves the configured set of specialists.
type eligibilityStub struct {
	approved map[uuid.UUID]bool
}

func (e *eligibilityStub) IsApproved(_ context.Context, userID uuid.UUID) (bool, error) {
	return e.approved[userID], nil
}

// catalogStub knows a fixed set of active services.
type catalogStub struct {
	known map[uuid.UUID]bool
}

func (c *catalogStub) ExistsActive(_ context.Context, id uuid.UUID) (bool, error) {
	return c.known[id], nil
}

type fixture struct {
	svc        TaskService
	repo       *MemoryRepository
	serviceID  uuid.UUID
	customer   Actor
	specialist Actor
	rival      Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := NewMemoryRepository()
	serviceID := uuid.New()
	customer := Actor{ID: uuid.New(), Role: user.RoleCustomer}
	specialist := Actor{ID: uuid.New(), Role: user.RoleSpecialist}
	rival := Actor{ID: uuid.New(), Role: user.RoleSpecialist}

	eligibility := &eligibilityStub{approved: map[uuid.UUID]bool{
		specialist.ID: true,
		rival.ID:      true,
	}}
	catalog := &catalogStub{known: map[uuid.UUID]bool{serviceID: true}}

	svc := NewTaskService(repo, NewGate(eligibility), catalog, nil)

	return &fixture{
		svc:        svc,
		repo:       repo,
		serviceID:  serviceID,
		customer:   customer,
		specialist: specialist,
		rival:      rival,
	}
}

func (f *fixture) createTask(t *testing.T) Task {
	t.Helper()
	created, err := f.svc.Create(context.Background(), f.customer, CreateInput{
		ServiceID:    f.serviceID,
		ContactName:  "Ramin",
		ContactPhone: "09120000000",
		Address:      "Tehran, Valiasr",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return created
}

func TestCreatePendingWithoutSpecialist(t *testing.T) {
	f := newFixture(t)
	created := f.createTask(t)

	if created.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", created.Status)
	}
	if created.SpecialistID != nil {
		t.Fatal("new task must not have a specialist")
	}
	if created.CustomerID != f.customer.ID {
		t.Fatal("task must belong to the creating customer")
	}
}

func TestCreateRequiresCustomerRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.specialist, CreateInput{
		ServiceID:    f.serviceID,
		ContactName:  "A",
		ContactPhone: "09120000000",
		Address:      "Addr",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing contact name", CreateInput{ServiceID: f.serviceID, ContactPhone: "09120000000", Address: "Addr"}},
		{"missing contact phone", CreateInput{ServiceID: f.serviceID, ContactName: "A", Address: "Addr"}},
		{"missing address", CreateInput{ServiceID: f.serviceID, ContactName: "A", ContactPhone: "09120000000"}},
		{"unknown service", CreateInput{ServiceID: uuid.New(), ContactName: "A", ContactPhone: "09120000000", Address: "Addr"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, f.customer, tc.in); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAcceptSetsSpecialist(t *testing.T) {
	f := newFixture(t)
	created := f.createTask(t)

	accepted, err := f.svc.Accept(context.Background(), f.specialist, created.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != StatusAccepted {
		t.Fatalf("expected ACCEPTED, got %s", accepted.Status)
	}
	if accepted.SpecialistID == nil || *accepted.SpecialistID != f.specialist.ID {
		t.Fatal("accept must assign the calling specialist")
	}
}

func TestAcceptRequiresEligibleSpecialist(t *testing.T) {
	f := newFixture(t)
	created := f.createTask(t)
	ctx := context.Background()

	// customer cannot accept
	if _, err := f.svc.Accept(ctx, f.customer, created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for customer, got %v", err)
	}

	// unapproved specialist gets a definitive NotEligible, not a silent pass
	unapproved := Actor{ID: uuid.New(), Role: user.RoleSpecialist}
	if _, err := f.svc.Accept(ctx, unapproved, created.ID); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}

	// unauthenticated actor
	if _, err := f.svc.Accept(ctx, Actor{}, created.ID); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAcceptLoserGetsStateConflict(t *testing.T) {
	f := newFixture(t)
	created := f.createTask(t)
	ctx := context.Background()

	if _, err := f.svc.Accept(ctx, f.specialist, created.ID); err != nil {
		t.Fatalf("first accept: %v", err)
	}

	if _, err := f.svc.Accept(ctx, f.rival, created.ID); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict for second accept, got %v", err)
	}

	stored, err := f.repo.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.SpecialistID == nil || *stored.SpecialistID != f.specialist.ID {
		t.Fatal("persisted specialist must be the first winner")
	}
}

func TestAcceptNotFound(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Accept(context.Background(), f.specialist, uuid.New()); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

// N eligible specialists race for one pending task: exactly one wins,
// the rest get ErrStateConflict, and the stored specialist is the winner.
func TestConcurrentAcceptSingleWinner(t *testing.T) {
	f := newFixture(t)
	created := f.createTask(t)
	ctx := context.Background()

	const n = 16
	actors := make([]Actor, n)
	eligibility := &eligibilityStub{approved: make(map[uuid.UUID]bool, n)}
	for i := range actors {
		actors[i] = Actor{ID: uuid.New(), Role: user.RoleSpecialist}
		eligibility.approved[actors[i].ID] = true
	}
	svc := NewTaskService(f.repo, NewGate(eligibility), &catalogStub{}, nil)

	var wg sync.WaitGroup
	winners := make(chan uuid.UUID, n)
	conflicts := make(chan error, n)

	for _, actor := range actors {
		wg.Add(1)
		go func(a Actor) {
			defer wg.Done()
			if _, err := svc.Accept(ctx, a, created.ID); err != nil {
				conflicts <- err
			} else {
				winners <- a.ID
			}
		}(actor)
	}
	wg.Wait()
	close(winners)
	close(conflicts)

	var winnerIDs []uuid.UUID
	for id := range winners {
		winnerIDs = append(winnerIDs, id)
	}
	if len(winnerIDs) != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", len(winnerIDs))
	}
	if len(conflicts) != n-1 {
		t.Fatalf("expected %d losers, got %d", n-1, len(conflicts))
	}
	for err := range conflicts {
		if !errors.Is(err, ErrStateConflict) {
			t.Fatalf("loser must get ErrStateConflict, got %v", err)
		}
	}

	stored, err := f.repo.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.SpecialistID == nil || *stored.SpecialistID != winnerIDs[0] {
		t.Fatal("persisted specialist must equal the sole winner")
	}
}

func TestStartAndCompleteByOwner(t *testing.T) {
	f := newFixture(t)
	created := f.createTask(t)
	ctx := context.Background()

	if _, err := f.svc.Accept(ctx, f.specialist, created.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	started, err := f.svc.Start(ctx, f.specialist, created.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", started.Status)
	}

	done, err := f.svc.Complete(ctx, f.specialist, created.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != StatusDone {
		t.Fatalf("expected DONE, got %s", done.Status)
	}
	if done.SpecialistID == nil || *done.SpecialistID != f.specialist.ID {
		t.Fatal("specialist must be retained through the lifecycle")
	}
}

func TestStartForeignTaskForbidden(t *testing.T) {
	f := newFixture(t)
	created := f.createTask(t)
	ctx := context.Background()

	if _, err := f.svc.Accept(ctx, f.specialist, created.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// rival is eligible but does not own the task: Forbidden, not a state error
	if _, err := f.svc.Start(ctx, f.rival, created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.Complete(ctx, f.rival, created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCompleteWithoutStartConflicts(t *testing.T) {
	f := newFixture(t)
	created := f.createTask(t)
	ctx := context.Background()

	if _, err := f.svc.Accept(ctx, f.specialist, created.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// ACCEPTED -> DONE is not an edge
	if _, err := f.svc.Complete(ctx, f.specialist, created.ID); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}
}

func TestStartPendingTaskForbiddenForAnyone(t *testing.T) {
	f := newFixture(t)
	created := f.createTask(t)

	// pending task has no owner yet, so even an eligible specialist is foreign
	if _, err := f.svc.Start(context.Background(), f.specialist, created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCancelRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// cancel from PENDING by owner
	t1 := f.createTask(t)
	canceled, err := f.svc.Cancel(ctx, f.customer, t1.ID)
	if err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if canceled.Status != StatusCanceled {
		t.Fatalf("expected CANCELED, got %s", canceled.Status)
	}

	// cancel from ACCEPTED keeps the specialist reference
	t2 := f.createTask(t)
	if _, err := f.svc.Accept(ctx, f.specialist, t2.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	canceled, err = f.svc.Cancel(ctx, f.customer, t2.ID)
	if err != nil {
		t.Fatalf("cancel accepted: %v", err)
	}
	if canceled.SpecialistID == nil || *canceled.SpecialistID != f.specialist.ID {
		t.Fatal("specialist reference must be retained after cancel")
	}

	// cancel by a non-owning customer
	t3 := f.createTask(t)
	stranger := Actor{ID: uuid.New(), Role: user.RoleCustomer}
	if _, err := f.svc.Cancel(ctx, stranger, t3.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// cancel from IN_PROGRESS / DONE / CANCELED conflicts
	if _, err := f.svc.Start(ctx, f.specialist, t3.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on pending start, got %v", err)
	}
	if _, err := f.svc.Accept(ctx, f.specialist, t3.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := f.svc.Start(ctx, f.specialist, t3.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.svc.Cancel(ctx, f.customer, t3.ID); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict for in-progress cancel, got %v", err)
	}
	if _, err := f.svc.Complete(ctx, f.specialist, t3.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := f.svc.Cancel(ctx, f.customer, t3.ID); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict for done cancel, got %v", err)
	}
	if _, err := f.svc.Cancel(ctx, f.customer, t1.ID); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict for canceled cancel, got %v", err)
	}
}

// staleReadRepo serves a frozen snapshot from GetTask for one task while
// all writes go to the underlying store. Simulates another transition
// committing between a handler's read and its conditional write.
type staleReadRepo struct {
	TaskRepository
	stale Task
}

func (r *staleReadRepo) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	if id == r.stale.ID {
		return r.stale, nil
	}
	return r.TaskRepository.GetTask(ctx, id)
}

// A cancel that read the task as PENDING must lose to an accept that
// committed in between: the conditional write rejects it instead of
// blindly overwriting the accepted state.
func TestCancelLosesRaceToAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.createTask(t)
	if _, err := f.svc.Accept(ctx, f.specialist, created.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	stale := &staleReadRepo{TaskRepository: f.repo, stale: created}
	svc := NewTaskService(stale, NewGate(&eligibilityStub{}), &catalogStub{}, nil)

	if _, err := svc.Cancel(ctx, f.customer, created.ID); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}

	stored, err := f.repo.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != StatusAccepted {
		t.Fatalf("accept must survive the losing cancel, got %s", stored.Status)
	}
	if stored.SpecialistID == nil || *stored.SpecialistID != f.specialist.ID {
		t.Fatal("specialist assignment must survive the losing cancel")
	}
}

// Same race for start: the pre-load saw ACCEPTED but the task already
// moved to IN_PROGRESS, so the second start conflicts instead of
// rewriting the status.
func TestStartLosesRaceOnStaleRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.createTask(t)
	accepted, err := f.svc.Accept(ctx, f.specialist, created.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := f.svc.Start(ctx, f.specialist, created.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	stale := &staleReadRepo{TaskRepository: f.repo, stale: accepted}
	eligibility := &eligibilityStub{approved: map[uuid.UUID]bool{f.specialist.ID: true}}
	svc := NewTaskService(stale, NewGate(eligibility), &catalogStub{}, nil)

	if _, err := svc.Start(ctx, f.specialist, created.ID); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}

	stored, err := f.repo.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != StatusInProgress {
		t.Fatalf("expected IN_PROGRESS to survive, got %s", stored.Status)
	}
}

func TestClaimableExcludesClaimedImmediately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t1 := f.createTask(t)
	time.Sleep(time.Millisecond)
	t2 := f.createTask(t)

	claimable, err := f.svc.ListClaimable(ctx, f.specialist)
	if err != nil {
		t.Fatalf("list claimable: %v", err)
	}
	if len(claimable) != 2 {
		t.Fatalf("expected 2 claimable tasks, got %d", len(claimable))
	}
	// created_at DESC
	if claimable[0].ID != t2.ID || claimable[1].ID != t1.ID {
		t.Fatal("claimable tasks must be ordered newest first")
	}

	if _, err := f.svc.Accept(ctx, f.specialist, t1.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	claimable, err = f.svc.ListClaimable(ctx, f.rival)
	if err != nil {
		t.Fatalf("list claimable: %v", err)
	}
	for _, item := range claimable {
		if item.ID == t1.ID {
			t.Fatal("claimed task must disappear from the claimable pool immediately")
		}
	}

	// in-progress task never shows up either
	if _, err := f.svc.Start(ctx, f.specialist, t1.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	claimable, _ = f.svc.ListClaimable(ctx, f.rival)
	for _, item := range claimable {
		if item.ID == t1.ID {
			t.Fatal("in-progress task must not be claimable")
		}
	}
}

func TestListClaimableRequiresEligibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.ListClaimable(ctx, f.customer); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for customer, got %v", err)
	}

	unapproved := Actor{ID: uuid.New(), Role: user.RoleSpecialist}
	if _, err := f.svc.ListClaimable(ctx, unapproved); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}
}

func TestListMineByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t1 := f.createTask(t)
	if _, err := f.svc.Accept(ctx, f.specialist, t1.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// another customer's task is invisible to f.customer
	other := Actor{ID: uuid.New(), Role: user.RoleCustomer}
	if _, err := f.svc.Create(ctx, other, CreateInput{
		ServiceID:    f.serviceID,
		ContactName:  "B",
		ContactPhone: "09120000002",
		Address:      "Addr2",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	mine, err := f.svc.ListMine(ctx, f.customer)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != t1.ID {
		t.Fatalf("customer must see only own tasks, got %d", len(mine))
	}

	assigned, err := f.svc.ListMine(ctx, f.specialist)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != t1.ID {
		t.Fatalf("specialist must see only assigned tasks, got %d", len(assigned))
	}

	// unknown role sees nothing
	outsider := Actor{ID: uuid.New(), Role: user.RoleOther}
	none, err := f.svc.ListMine(ctx, outsider)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("other role must see an empty list, got %d", len(none))
	}
}

// Full lifecycle walk from the customer's and two specialists' perspective.
func TestLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.createTask(t)
	if created.Status != StatusPending || created.SpecialistID != nil {
		t.Fatal("new task must be PENDING without a specialist")
	}

	accepted, err := f.svc.Accept(ctx, f.specialist, created.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != StatusAccepted || *accepted.SpecialistID != f.specialist.ID {
		t.Fatal("accept must assign the caller")
	}

	if _, err := f.svc.Accept(ctx, f.rival, created.ID); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("rival accept: expected ErrStateConflict, got %v", err)
	}

	if _, err := f.svc.Start(ctx, f.specialist, created.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.svc.Start(ctx, f.rival, created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("rival start: expected ErrForbidden, got %v", err)
	}

	done, err := f.svc.Complete(ctx, f.specialist, created.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != StatusDone {
		t.Fatalf("expected DONE, got %s", done.Status)
	}

	if _, err := f.svc.Cancel(ctx, f.customer, created.ID); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("cancel after done: expected ErrStateConflict, got %v", err)
	}
}
