package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/cmms-backend/internal/persistence"
)

func seedWorkOrderGraph(t *testing.T, pool *ConnectionPool) {
	t.Helper()

	seedTenant(t, pool, "tenant-1")
	seedTenant(t, pool, "tenant-2")
	seedUser(t, pool, "user-1", "tenant-1")
	seedUser(t, pool, "user-2", "tenant-1")
	seedUser(t, pool, "user-3", "tenant-2")

	if err := NewAssetRepository(pool).CreateAsset(context.Background(), persistence.Asset{
		ID:        "asset-1",
		TenantID:  "tenant-1",
		Name:      "Chiller 3",
		Location:  "Roof",
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}); err != nil {
		t.Fatalf("failed to seed asset: %v", err)
	}
}

func weeklyWorkOrder(id string) persistence.WorkOrder {
	description := "Inspect belts and filters"
	assetID := "asset-1"
	location := "Roof"
	due := testTime.Add(48 * time.Hour)
	return persistence.WorkOrder{
		ID:          id,
		TenantID:    "tenant-1",
		Name:        "Weekly chiller inspection",
		Description: &description,
		Priority:    "medium",
		Status:      "open",
		Start:       testTime,
		Due:         &due,
		Recurrence: persistence.RecurrenceRule{
			Type:       "weekly",
			Interval:   1,
			DaysOfWeek: []time.Weekday{time.Monday, time.Friday},
		},
		AssigneeIDs: []string{"user-1", "user-2"},
		AssetID:     &assetID,
		Location:    &location,
		Vendors:     []string{"Acme HVAC", "Belt Supply Co"},
		Uploads:     []string{"uploads/manual.pdf"},
		CreatedBy:   "user-1",
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
}

func TestWorkOrderRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t)
	repo := NewWorkOrderRepository(pool)
	ctx := context.Background()
	seedWorkOrderGraph(t, pool)

	order := weeklyWorkOrder("wo-1")
	if err := repo.CreateWorkOrder(ctx, order); err != nil {
		t.Fatalf("CreateWorkOrder returned error: %v", err)
	}

	got, err := repo.GetWorkOrder(ctx, "wo-1")
	if err != nil {
		t.Fatalf("GetWorkOrder returned error: %v", err)
	}

	if got.Name != order.Name || got.Priority != "medium" || got.Status != "open" {
		t.Errorf("scalar fields = %q/%q/%q", got.Name, got.Priority, got.Status)
	}
	if got.Description == nil || *got.Description != *order.Description {
		t.Errorf("description = %v", got.Description)
	}
	if !got.Start.Equal(order.Start) {
		t.Errorf("start = %v, want %v", got.Start, order.Start)
	}
	if got.Due == nil || !got.Due.Equal(*order.Due) {
		t.Errorf("due = %v, want %v", got.Due, order.Due)
	}
	if got.Recurrence.Type != "weekly" || got.Recurrence.Interval != 1 {
		t.Errorf("recurrence = %+v", got.Recurrence)
	}
	if len(got.Recurrence.DaysOfWeek) != 2 ||
		got.Recurrence.DaysOfWeek[0] != time.Monday ||
		got.Recurrence.DaysOfWeek[1] != time.Friday {
		t.Errorf("days of week = %v", got.Recurrence.DaysOfWeek)
	}
	if len(got.AssigneeIDs) != 2 || got.AssigneeIDs[0] != "user-1" || got.AssigneeIDs[1] != "user-2" {
		t.Errorf("assignees = %v", got.AssigneeIDs)
	}
	if len(got.Vendors) != 2 || got.Vendors[0] != "Acme HVAC" {
		t.Errorf("vendors = %v", got.Vendors)
	}
	if len(got.Uploads) != 1 || got.Uploads[0] != "uploads/manual.pdf" {
		t.Errorf("uploads = %v", got.Uploads)
	}
	if got.AssetID == nil || *got.AssetID != "asset-1" {
		t.Errorf("asset id = %v", got.AssetID)
	}
	if got.ParentID != nil {
		t.Errorf("parent id = %v, want nil", got.ParentID)
	}

	if _, err := repo.GetWorkOrder(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("GetWorkOrder for missing id = %v, want ErrNotFound", err)
	}
	if err := repo.CreateWorkOrder(ctx, persistence.WorkOrder{}); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Errorf("CreateWorkOrder without id = %v, want ErrConstraintViolation", err)
	}

	orphan := weeklyWorkOrder("wo-orphan")
	orphan.CreatedBy = "user-missing"
	if err := repo.CreateWorkOrder(ctx, orphan); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Errorf("CreateWorkOrder with unknown creator = %v, want ErrForeignKeyViolation", err)
	}
}

func TestWorkOrderRepositoryUpdateReplacesRelations(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t)
	repo := NewWorkOrderRepository(pool)
	ctx := context.Background()
	seedWorkOrderGraph(t, pool)

	order := weeklyWorkOrder("wo-1")
	if err := repo.CreateWorkOrder(ctx, order); err != nil {
		t.Fatalf("CreateWorkOrder returned error: %v", err)
	}

	order.Status = "done"
	order.Recurrence = persistence.RecurrenceRule{
		Type:        "monthlyByDate",
		Interval:    2,
		DateOfMonth: 15,
	}
	order.AssigneeIDs = []string{"user-2"}
	order.Vendors = nil
	order.UpdatedAt = testTime.Add(time.Hour)
	if err := repo.UpdateWorkOrder(ctx, order); err != nil {
		t.Fatalf("UpdateWorkOrder returned error: %v", err)
	}

	got, err := repo.GetWorkOrder(ctx, "wo-1")
	if err != nil {
		t.Fatalf("GetWorkOrder after update returned error: %v", err)
	}
	if got.Status != "done" {
		t.Errorf("status = %q, want done", got.Status)
	}
	if got.Recurrence.Type != "monthlyByDate" || got.Recurrence.DateOfMonth != 15 {
		t.Errorf("recurrence = %+v", got.Recurrence)
	}
	if got.Recurrence.DaysOfWeek != nil {
		t.Errorf("days of week = %v, want nil after rule change", got.Recurrence.DaysOfWeek)
	}
	if len(got.AssigneeIDs) != 1 || got.AssigneeIDs[0] != "user-2" {
		t.Errorf("assignees = %v, want only user-2", got.AssigneeIDs)
	}
	if got.Vendors != nil {
		t.Errorf("vendors = %v, want none", got.Vendors)
	}

	missing := weeklyWorkOrder("wo-missing")
	if err := repo.UpdateWorkOrder(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("UpdateWorkOrder for missing order = %v, want ErrNotFound", err)
	}
}

func TestWorkOrderRepositoryUpdateDates(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t)
	repo := NewWorkOrderRepository(pool)
	ctx := context.Background()
	seedWorkOrderGraph(t, pool)

	if err := repo.CreateWorkOrder(ctx, weeklyWorkOrder("wo-1")); err != nil {
		t.Fatalf("CreateWorkOrder returned error: %v", err)
	}

	newStart := testTime.AddDate(0, 0, 7)
	newDue := newStart.Add(48 * time.Hour)
	updatedAt := testTime.Add(time.Hour)
	if err := repo.UpdateWorkOrderDates(ctx, "wo-1", newStart, &newDue, updatedAt); err != nil {
		t.Fatalf("UpdateWorkOrderDates returned error: %v", err)
	}

	got, err := repo.GetWorkOrder(ctx, "wo-1")
	if err != nil {
		t.Fatalf("GetWorkOrder returned error: %v", err)
	}
	if !got.Start.Equal(newStart) {
		t.Errorf("start = %v, want %v", got.Start, newStart)
	}
	if got.Due == nil || !got.Due.Equal(newDue) {
		t.Errorf("due = %v, want %v", got.Due, newDue)
	}
	if !got.UpdatedAt.Equal(updatedAt) {
		t.Errorf("updated at = %v, want %v", got.UpdatedAt, updatedAt)
	}
	// The date write leaves everything else untouched.
	if got.Name != "Weekly chiller inspection" || len(got.AssigneeIDs) != 2 {
		t.Errorf("non-date fields changed: %+v", got)
	}

	if err := repo.UpdateWorkOrderDates(ctx, "wo-1", newStart, nil, updatedAt); err != nil {
		t.Fatalf("UpdateWorkOrderDates clearing due returned error: %v", err)
	}
	got, err = repo.GetWorkOrder(ctx, "wo-1")
	if err != nil {
		t.Fatalf("GetWorkOrder returned error: %v", err)
	}
	if got.Due != nil {
		t.Errorf("due = %v, want nil", got.Due)
	}

	if err := repo.UpdateWorkOrderDates(ctx, "wo-missing", newStart, nil, updatedAt); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("UpdateWorkOrderDates for missing order = %v, want ErrNotFound", err)
	}
}

func TestWorkOrderRepositoryList(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t)
	repo := NewWorkOrderRepository(pool)
	ctx := context.Background()
	seedWorkOrderGraph(t, pool)

	first := weeklyWorkOrder("wo-1")
	if err := repo.CreateWorkOrder(ctx, first); err != nil {
		t.Fatalf("CreateWorkOrder returned error: %v", err)
	}

	second := weeklyWorkOrder("wo-2")
	second.Status = "done"
	second.Start = testTime.AddDate(0, 0, 7)
	due := second.Start.Add(24 * time.Hour)
	second.Due = &due
	second.AssigneeIDs = []string{"user-2"}
	second.AssetID = nil
	second.ParentID = stringRef("wo-1")
	second.Recurrence = persistence.RecurrenceRule{Type: "none"}
	if err := repo.CreateWorkOrder(ctx, second); err != nil {
		t.Fatalf("CreateWorkOrder returned error: %v", err)
	}

	other := weeklyWorkOrder("wo-3")
	other.TenantID = "tenant-2"
	other.AssigneeIDs = []string{"user-3"}
	other.AssetID = nil
	other.CreatedBy = "user-3"
	other.Start = testTime.AddDate(0, 0, 14)
	other.Due = nil
	if err := repo.CreateWorkOrder(ctx, other); err != nil {
		t.Fatalf("CreateWorkOrder returned error: %v", err)
	}

	tests := []struct {
		name    string
		filter  persistence.WorkOrderFilter
		wantIDs []string
	}{
		{
			name:    "by tenant ordered by start",
			filter:  persistence.WorkOrderFilter{TenantID: "tenant-1"},
			wantIDs: []string{"wo-1", "wo-2"},
		},
		{
			name:    "by status",
			filter:  persistence.WorkOrderFilter{TenantID: "tenant-1", Statuses: []string{"done"}},
			wantIDs: []string{"wo-2"},
		},
		{
			name:    "by multiple statuses",
			filter:  persistence.WorkOrderFilter{TenantID: "tenant-1", Statuses: []string{"open", "done"}},
			wantIDs: []string{"wo-1", "wo-2"},
		},
		{
			name:    "by assignee",
			filter:  persistence.WorkOrderFilter{TenantID: "tenant-1", AssigneeIDs: []string{"user-1"}},
			wantIDs: []string{"wo-1"},
		},
		{
			name:    "by asset",
			filter:  persistence.WorkOrderFilter{AssetID: stringRef("asset-1")},
			wantIDs: []string{"wo-1"},
		},
		{
			name:    "by parent",
			filter:  persistence.WorkOrderFilter{ParentID: stringRef("wo-1")},
			wantIDs: []string{"wo-2"},
		},
		{
			name:    "starting after a cutoff",
			filter:  persistence.WorkOrderFilter{TenantID: "tenant-1", StartsAfter: timeRef(testTime.AddDate(0, 0, 1))},
			wantIDs: []string{"wo-2"},
		},
		{
			name:    "due before a cutoff skips orders without a due date",
			filter:  persistence.WorkOrderFilter{DueBefore: timeRef(testTime.AddDate(0, 0, 30))},
			wantIDs: []string{"wo-1", "wo-2"},
		},
		{
			name:    "no matches",
			filter:  persistence.WorkOrderFilter{TenantID: "tenant-1", Statuses: []string{"onHold"}},
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := repo.ListWorkOrders(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListWorkOrders returned error: %v", err)
			}
			if len(orders) != len(tt.wantIDs) {
				t.Fatalf("got %d orders, want %d", len(orders), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if orders[i].ID != want {
					t.Errorf("orders[%d].ID = %q, want %q", i, orders[i].ID, want)
				}
			}
		})
	}
}

func TestWorkOrderRepositoryDelete(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t)
	repo := NewWorkOrderRepository(pool)
	ctx := context.Background()
	seedWorkOrderGraph(t, pool)

	parent := weeklyWorkOrder("wo-parent")
	if err := repo.CreateWorkOrder(ctx, parent); err != nil {
		t.Fatalf("CreateWorkOrder returned error: %v", err)
	}

	child := weeklyWorkOrder("wo-child")
	child.ParentID = stringRef("wo-parent")
	child.Recurrence = persistence.RecurrenceRule{Type: "none"}
	if err := repo.CreateWorkOrder(ctx, child); err != nil {
		t.Fatalf("CreateWorkOrder returned error: %v", err)
	}

	// The child still references its parent, so the parent cannot go first.
	if err := repo.DeleteWorkOrder(ctx, "wo-parent"); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Errorf("DeleteWorkOrder with children = %v, want ErrForeignKeyViolation", err)
	}

	if err := repo.DeleteWorkOrder(ctx, "wo-child"); err != nil {
		t.Fatalf("DeleteWorkOrder returned error: %v", err)
	}
	if err := repo.DeleteWorkOrder(ctx, "wo-parent"); err != nil {
		t.Fatalf("DeleteWorkOrder returned error: %v", err)
	}
	if err := repo.DeleteWorkOrder(ctx, "wo-parent"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("DeleteWorkOrder twice = %v, want ErrNotFound", err)
	}
}

func stringRef(s string) *string {
	return &s
}

func timeRef(t time.Time) *time.Time {
	return &t
}
