package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/cmms-backend/internal/calendar"
	"github.com/example/cmms-backend/internal/recurrence"
)

// Operation identifies the kind of mutation that triggered recurrence processing.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
)

// HookOptions carries per-call flags for recurrence processing.
type HookOptions struct {
	// SuppressRecurrence disables all recurrence processing for the mutation.
	// Internal writes performed by the orchestrator itself must set it when
	// they re-enter the mutation pipeline, otherwise completed recurring
	// orders would spawn successors for their own follow-up bookkeeping.
	SuppressRecurrence bool
}

// WorkOrderWriter captures the narrow persistence surface the orchestrator needs.
type WorkOrderWriter interface {
	CreateWorkOrder(ctx context.Context, order WorkOrder) (WorkOrder, error)
	UpdateWorkOrderDates(ctx context.Context, id string, start time.Time, due *time.Time, updatedAt time.Time) error
}

// WorkingDaysResolver yields the working-day set configured for a tenant.
type WorkingDaysResolver interface {
	WorkingDaysForTenant(ctx context.Context, tenantID string) (calendar.WorkingDays, error)
}

// RecurrenceOrchestrator applies recurrence rules after every work order
// mutation. Completing a recurring order spawns its successor; any other
// mutation of a recurring order refreshes its due date in place.
type RecurrenceOrchestrator struct {
	orders      WorkOrderWriter
	workingDays WorkingDaysResolver
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRecurrenceOrchestrator wires dependencies for recurrence processing.
func NewRecurrenceOrchestrator(orders WorkOrderWriter, workingDays WorkingDaysResolver, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RecurrenceOrchestrator {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RecurrenceOrchestrator{
		orders:      orders,
		workingDays: workingDays,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (o *RecurrenceOrchestrator) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, o.logger, "RecurrenceOrchestrator", operation, attrs...)
}

// AfterChange runs recurrence processing for a just-persisted work order and
// returns the order as it stands after any in-place adjustment. Calculator
// failures are logged and leave the order untouched; persistence failures
// propagate to the caller.
func (o *RecurrenceOrchestrator) AfterChange(ctx context.Context, op Operation, order WorkOrder, opts HookOptions) (WorkOrder, error) {
	if o == nil {
		return order, fmt.Errorf("RecurrenceOrchestrator is nil")
	}
	if opts.SuppressRecurrence {
		return order, nil
	}
	if !order.Recurrence.IsRecurring() {
		return order, nil
	}

	logger := o.loggerWith(ctx, "AfterChange",
		"work_order_id", order.ID,
		"tenant_id", order.TenantID,
		"trigger", string(op),
		"recurrence_type", string(order.Recurrence.Type),
	)

	workingDays := o.resolveWorkingDays(ctx, logger, order.TenantID)

	if op == OperationUpdate && order.Status == StatusDone {
		return o.spawnSuccessor(ctx, logger, order, workingDays, opts)
	}
	return o.refreshDueDate(ctx, logger, order, workingDays)
}

// spawnSuccessor duplicates a completed recurring order into a fresh open one.
// The successor's start is the predecessor's due date and its own due date is
// computed from the rule, anchored on the current time.
func (o *RecurrenceOrchestrator) spawnSuccessor(ctx context.Context, logger *slog.Logger, order WorkOrder, workingDays calendar.WorkingDays, opts HookOptions) (WorkOrder, error) {
	anchor := order.Start
	if order.Due != nil {
		anchor = *order.Due
	}

	window, err := recurrence.NextWindow(order.Recurrence, anchor, o.now(), workingDays)
	if err != nil {
		logger.WarnContext(ctx, "skipping successor creation", "error", err)
		return order, nil
	}

	now := o.now()
	parentID := order.ID
	due := window.Due

	successor := order
	successor.ID = o.idGenerator()
	successor.Status = StatusOpen
	successor.ParentID = &parentID
	successor.Start = window.Start
	successor.Due = &due
	successor.CreatedAt = now
	successor.UpdatedAt = now
	successor.AssigneeIDs = cloneStrings(order.AssigneeIDs)
	successor.Vendors = cloneStrings(order.Vendors)
	successor.Uploads = cloneStrings(order.Uploads)

	if o.orders == nil {
		return order, fmt.Errorf("work order writer not configured")
	}

	persisted, err := o.orders.CreateWorkOrder(ctx, successor)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create successor", "error", err, "error_kind", ErrorKind(err))
		return order, err
	}

	logger.With("successor_id", persisted.ID).InfoContext(ctx, "successor created")

	// The successor entered through the mutation pipeline, so it gets the
	// same post-write treatment as any freshly created recurring order.
	if _, err := o.AfterChange(ctx, OperationCreate, persisted, opts); err != nil {
		return order, err
	}

	return order, nil
}

// refreshDueDate recomputes the due date in place, anchored on the order's
// own start date, so edits to the rule or the start immediately reflect in
// the due date.
func (o *RecurrenceOrchestrator) refreshDueDate(ctx context.Context, logger *slog.Logger, order WorkOrder, workingDays calendar.WorkingDays) (WorkOrder, error) {
	window, err := recurrence.NextWindow(order.Recurrence, order.Start, o.now(), workingDays)
	if err != nil {
		logger.WarnContext(ctx, "skipping due date refresh", "error", err)
		return order, nil
	}

	if order.Due != nil && order.Due.Equal(window.Due) {
		return order, nil
	}

	if o.orders == nil {
		return order, fmt.Errorf("work order writer not configured")
	}

	now := o.now()
	due := window.Due
	if err := o.orders.UpdateWorkOrderDates(ctx, order.ID, order.Start, &due, now); err != nil {
		logger.ErrorContext(ctx, "failed to refresh due date", "error", err, "error_kind", ErrorKind(err))
		return order, err
	}

	order.Due = &due
	order.UpdatedAt = now
	logger.With("due", due).InfoContext(ctx, "due date refreshed")
	return order, nil
}

func (o *RecurrenceOrchestrator) resolveWorkingDays(ctx context.Context, logger *slog.Logger, tenantID string) calendar.WorkingDays {
	if o.workingDays == nil {
		return calendar.DefaultWorkingDays()
	}
	days, err := o.workingDays.WorkingDaysForTenant(ctx, tenantID)
	if err != nil {
		logger.WarnContext(ctx, "falling back to default working days", "error", err)
		return calendar.DefaultWorkingDays()
	}
	if len(days) == 0 {
		return calendar.DefaultWorkingDays()
	}
	return days
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
