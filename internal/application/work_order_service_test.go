package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/cmms-backend/internal/persistence"
	"github.com/example/cmms-backend/internal/recurrence"
)

type workOrderRepoStub struct {
	created   WorkOrder
	createErr error

	getOrder WorkOrder
	getErr   error

	updated   WorkOrder
	updateErr error

	deletedID string
	deleteErr error

	list       []WorkOrder
	listErr    error
	lastFilter WorkOrderRepositoryFilter
}

func (r *workOrderRepoStub) CreateWorkOrder(ctx context.Context, order WorkOrder) (WorkOrder, error) {
	if r.createErr != nil {
		return WorkOrder{}, r.createErr
	}
	r.created = order
	return order, nil
}

func (r *workOrderRepoStub) GetWorkOrder(ctx context.Context, id string) (WorkOrder, error) {
	if r.getErr != nil {
		return WorkOrder{}, r.getErr
	}
	if r.getOrder.ID == "" {
		return WorkOrder{}, persistence.ErrNotFound
	}
	return r.getOrder, nil
}

func (r *workOrderRepoStub) UpdateWorkOrder(ctx context.Context, order WorkOrder) (WorkOrder, error) {
	if r.updateErr != nil {
		return WorkOrder{}, r.updateErr
	}
	r.updated = order
	return order, nil
}

func (r *workOrderRepoStub) UpdateWorkOrderDates(ctx context.Context, id string, start time.Time, due *time.Time, updatedAt time.Time) error {
	return nil
}

func (r *workOrderRepoStub) DeleteWorkOrder(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedID = id
	return nil
}

func (r *workOrderRepoStub) ListWorkOrders(ctx context.Context, filter WorkOrderRepositoryFilter) ([]WorkOrder, error) {
	r.lastFilter = filter
	if r.listErr != nil {
		return nil, r.listErr
	}
	if len(r.list) == 0 {
		return nil, nil
	}
	out := make([]WorkOrder, len(r.list))
	copy(out, r.list)
	return out, nil
}

type processorStub struct {
	ops      []Operation
	lastOpts HookOptions
	result   *WorkOrder
	err      error
}

func (p *processorStub) AfterChange(ctx context.Context, op Operation, order WorkOrder, opts HookOptions) (WorkOrder, error) {
	p.ops = append(p.ops, op)
	p.lastOpts = opts
	if p.err != nil {
		return order, p.err
	}
	if p.result != nil {
		return *p.result, nil
	}
	return order, nil
}

func validWorkOrderInput() WorkOrderInput {
	return WorkOrderInput{
		Name:  "Replace filter",
		Start: time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestWorkOrderService_CreateWorkOrder(t *testing.T) {
	principal := Principal{UserID: "user-1", TenantID: "tenant-1"}

	t.Run("requires a tenant scope", func(t *testing.T) {
		svc := NewWorkOrderService(&workOrderRepoStub{}, nil, nil, nil)

		_, err := svc.CreateWorkOrder(context.Background(), CreateWorkOrderParams{
			Principal: Principal{UserID: "user-1"},
			Input:     validWorkOrderInput(),
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewWorkOrderService(&workOrderRepoStub{}, nil, nil, nil)

		due := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		_, err := svc.CreateWorkOrder(context.Background(), CreateWorkOrderParams{
			Principal: principal,
			Input: WorkOrderInput{
				Name:     "  ",
				Priority: "urgent",
				Start:    time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC),
				Due:      &due,
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"name", "priority", "due"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("validates recurrence details", func(t *testing.T) {
		svc := NewWorkOrderService(&workOrderRepoStub{}, nil, nil, nil)

		input := validWorkOrderInput()
		input.Recurrence = recurrence.Rule{Type: recurrence.TypeWeekly, Interval: 0}

		_, err := svc.CreateWorkOrder(context.Background(), CreateWorkOrderParams{
			Principal: principal,
			Input:     input,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["recurrence.interval"]; !ok {
			t.Fatalf("expected interval validation error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["recurrence.daysOfWeek"]; !ok {
			t.Fatalf("expected weekday validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("persists orders with defaults and runs recurrence processing", func(t *testing.T) {
		repo := &workOrderRepoStub{}
		processor := &processorStub{}
		now := time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC)
		svc := NewWorkOrderService(repo, processor, func() string { return "wo-1" }, func() time.Time { return now })

		result, err := svc.CreateWorkOrder(context.Background(), CreateWorkOrderParams{
			Principal: principal,
			Input:     validWorkOrderInput(),
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if repo.created.ID != "wo-1" {
			t.Fatalf("expected generated ID, got %q", repo.created.ID)
		}
		if repo.created.TenantID != "tenant-1" {
			t.Fatalf("expected tenant scope, got %q", repo.created.TenantID)
		}
		if repo.created.Status != StatusOpen {
			t.Fatalf("expected default status open, got %q", repo.created.Status)
		}
		if repo.created.Priority != PriorityNone {
			t.Fatalf("expected default priority none, got %q", repo.created.Priority)
		}
		if repo.created.Recurrence.Type != recurrence.TypeNone {
			t.Fatalf("expected default recurrence none, got %q", repo.created.Recurrence.Type)
		}
		if repo.created.CreatedBy != "user-1" {
			t.Fatalf("expected creator to be recorded, got %q", repo.created.CreatedBy)
		}
		if !repo.created.CreatedAt.Equal(now) || !repo.created.UpdatedAt.Equal(now) {
			t.Fatalf("expected timestamps from injected clock, got %v/%v", repo.created.CreatedAt, repo.created.UpdatedAt)
		}

		if len(processor.ops) != 1 || processor.ops[0] != OperationCreate {
			t.Fatalf("expected one create hook invocation, got %v", processor.ops)
		}
		if processor.lastOpts.SuppressRecurrence {
			t.Fatalf("expected recurrence processing enabled by default")
		}
		if result.WorkOrder.ID != "wo-1" {
			t.Fatalf("expected returned order, got %+v", result.WorkOrder)
		}
	})

	t.Run("threads the suppression flag into the hook", func(t *testing.T) {
		processor := &processorStub{}
		svc := NewWorkOrderService(&workOrderRepoStub{}, processor, nil, nil)

		_, err := svc.CreateWorkOrder(context.Background(), CreateWorkOrderParams{
			Principal:          principal,
			Input:              validWorkOrderInput(),
			SuppressRecurrence: true,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if !processor.lastOpts.SuppressRecurrence {
			t.Fatalf("expected suppression flag to reach the hook")
		}
	})

	t.Run("reports assignee conflicts without blocking the write", func(t *testing.T) {
		due := time.Date(2025, time.February, 3, 12, 0, 0, 0, time.UTC)
		repo := &workOrderRepoStub{list: []WorkOrder{{
			ID:          "wo-0",
			TenantID:    "tenant-1",
			Status:      StatusOpen,
			AssigneeIDs: []string{"tech-1"},
			Start:       time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC),
			Due:         &due,
		}}}
		svc := NewWorkOrderService(repo, nil, func() string { return "wo-1" }, nil)

		input := validWorkOrderInput()
		input.AssigneeIDs = []string{"tech-1"}
		input.Due = &due

		result, err := svc.CreateWorkOrder(context.Background(), CreateWorkOrderParams{
			Principal: principal,
			Input:     input,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if len(result.Warnings) != 1 {
			t.Fatalf("expected 1 warning, got %d", len(result.Warnings))
		}
		if result.Warnings[0].WorkOrderID != "wo-0" || result.Warnings[0].AssigneeID != "tech-1" {
			t.Fatalf("unexpected warning %+v", result.Warnings[0])
		}
		if repo.created.ID != "wo-1" {
			t.Fatalf("expected order to persist despite warning")
		}
	})

	t.Run("maps repository errors to sentinel failures", func(t *testing.T) {
		repo := &workOrderRepoStub{createErr: persistence.ErrDuplicate}
		svc := NewWorkOrderService(repo, nil, nil, nil)

		_, err := svc.CreateWorkOrder(context.Background(), CreateWorkOrderParams{
			Principal: principal,
			Input:     validWorkOrderInput(),
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestWorkOrderService_UpdateWorkOrder(t *testing.T) {
	principal := Principal{UserID: "user-1", TenantID: "tenant-1"}
	existing := WorkOrder{
		ID:        "wo-1",
		TenantID:  "tenant-1",
		Name:      "Inspect pump",
		Status:    StatusOpen,
		Priority:  PriorityLow,
		Start:     time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC),
		CreatedBy: "user-2",
		CreatedAt: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("hides orders from other tenants", func(t *testing.T) {
		other := existing
		other.TenantID = "tenant-2"
		repo := &workOrderRepoStub{getOrder: other}
		svc := NewWorkOrderService(repo, nil, nil, nil)

		_, err := svc.UpdateWorkOrder(context.Background(), UpdateWorkOrderParams{
			Principal:   principal,
			WorkOrderID: "wo-1",
			Input:       validWorkOrderInput(),
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("propagates ErrNotFound for missing orders", func(t *testing.T) {
		repo := &workOrderRepoStub{getErr: persistence.ErrNotFound}
		svc := NewWorkOrderService(repo, nil, nil, nil)

		_, err := svc.UpdateWorkOrder(context.Background(), UpdateWorkOrderParams{
			Principal:   principal,
			WorkOrderID: "missing",
			Input:       validWorkOrderInput(),
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("persists changes and invokes the update hook", func(t *testing.T) {
		repo := &workOrderRepoStub{getOrder: existing}
		processor := &processorStub{}
		now := time.Date(2025, time.February, 10, 9, 0, 0, 0, time.UTC)
		svc := NewWorkOrderService(repo, processor, nil, func() time.Time { return now })

		input := validWorkOrderInput()
		input.Status = StatusDone
		input.Priority = PriorityHigh

		result, err := svc.UpdateWorkOrder(context.Background(), UpdateWorkOrderParams{
			Principal:   principal,
			WorkOrderID: "wo-1",
			Input:       input,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if repo.updated.Status != StatusDone {
			t.Fatalf("expected status done, got %q", repo.updated.Status)
		}
		if repo.updated.Priority != PriorityHigh {
			t.Fatalf("expected priority high, got %q", repo.updated.Priority)
		}
		if repo.updated.CreatedBy != "user-2" {
			t.Fatalf("expected creator to be preserved, got %q", repo.updated.CreatedBy)
		}
		if !repo.updated.CreatedAt.Equal(existing.CreatedAt) {
			t.Fatalf("expected created timestamp to be preserved")
		}
		if !repo.updated.UpdatedAt.Equal(now) {
			t.Fatalf("expected updated timestamp from injected clock, got %v", repo.updated.UpdatedAt)
		}

		if len(processor.ops) != 1 || processor.ops[0] != OperationUpdate {
			t.Fatalf("expected one update hook invocation, got %v", processor.ops)
		}
		if result.WorkOrder.Status != StatusDone {
			t.Fatalf("expected returned order to reflect the update, got %q", result.WorkOrder.Status)
		}
	})

	t.Run("returns the hook-adjusted order", func(t *testing.T) {
		adjustedDue := time.Date(2025, time.February, 17, 0, 0, 0, 0, time.UTC)
		adjusted := existing
		adjusted.Due = &adjustedDue
		repo := &workOrderRepoStub{getOrder: existing}
		processor := &processorStub{result: &adjusted}
		svc := NewWorkOrderService(repo, processor, nil, nil)

		result, err := svc.UpdateWorkOrder(context.Background(), UpdateWorkOrderParams{
			Principal:   principal,
			WorkOrderID: "wo-1",
			Input:       validWorkOrderInput(),
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if result.WorkOrder.Due == nil || !result.WorkOrder.Due.Equal(adjustedDue) {
			t.Fatalf("expected hook-adjusted due date, got %v", result.WorkOrder.Due)
		}
	})

	t.Run("propagates hook persistence failures", func(t *testing.T) {
		boom := errors.New("boom")
		repo := &workOrderRepoStub{getOrder: existing}
		processor := &processorStub{err: boom}
		svc := NewWorkOrderService(repo, processor, nil, nil)

		_, err := svc.UpdateWorkOrder(context.Background(), UpdateWorkOrderParams{
			Principal:   principal,
			WorkOrderID: "wo-1",
			Input:       validWorkOrderInput(),
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})
}

func TestWorkOrderService_DeleteWorkOrder(t *testing.T) {
	principal := Principal{UserID: "user-1", TenantID: "tenant-1"}

	t.Run("hides orders from other tenants", func(t *testing.T) {
		repo := &workOrderRepoStub{getOrder: WorkOrder{ID: "wo-1", TenantID: "tenant-2"}}
		svc := NewWorkOrderService(repo, nil, nil, nil)

		if err := svc.DeleteWorkOrder(context.Background(), principal, "wo-1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if repo.deletedID != "" {
			t.Fatalf("expected no delete, got %q", repo.deletedID)
		}
	})

	t.Run("deletes orders in the caller's tenant", func(t *testing.T) {
		repo := &workOrderRepoStub{getOrder: WorkOrder{ID: "wo-1", TenantID: "tenant-1"}}
		svc := NewWorkOrderService(repo, nil, nil, nil)

		if err := svc.DeleteWorkOrder(context.Background(), principal, "wo-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.deletedID != "wo-1" {
			t.Fatalf("expected wo-1 deleted, got %q", repo.deletedID)
		}
	})
}

func TestWorkOrderService_ListWorkOrders(t *testing.T) {
	principal := Principal{UserID: "user-1", TenantID: "tenant-1"}

	t.Run("forces the caller's tenant into the filter", func(t *testing.T) {
		repo := &workOrderRepoStub{}
		svc := NewWorkOrderService(repo, nil, nil, nil)

		_, err := svc.ListWorkOrders(context.Background(), ListWorkOrdersParams{
			Principal: principal,
			Statuses:  []WorkOrderStatus{StatusOpen},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.lastFilter.TenantID != "tenant-1" {
			t.Fatalf("expected tenant filter, got %q", repo.lastFilter.TenantID)
		}
	})

	t.Run("rejects unknown status filters", func(t *testing.T) {
		svc := NewWorkOrderService(&workOrderRepoStub{}, nil, nil, nil)

		_, err := svc.ListWorkOrders(context.Background(), ListWorkOrdersParams{
			Principal: principal,
			Statuses:  []WorkOrderStatus{"archived"},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("sorts results by start date", func(t *testing.T) {
		repo := &workOrderRepoStub{list: []WorkOrder{
			{ID: "wo-2", TenantID: "tenant-1", Start: time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC)},
			{ID: "wo-1", TenantID: "tenant-1", Start: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "wo-3", TenantID: "tenant-1", Start: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)},
		}}
		svc := NewWorkOrderService(repo, nil, nil, nil)

		got, err := svc.ListWorkOrders(context.Background(), ListWorkOrdersParams{Principal: principal})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(got) != 3 || got[0].ID != "wo-1" || got[1].ID != "wo-3" || got[2].ID != "wo-2" {
			t.Fatalf("unexpected order %+v", got)
		}
	})
}
