package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/cmms-backend/internal/persistence"
	"github.com/example/cmms-backend/internal/recurrence"
	"github.com/example/cmms-backend/internal/workload"
)

// WorkOrderRepositoryFilter narrows work order listings.
type WorkOrderRepositoryFilter struct {
	TenantID    string
	Statuses    []WorkOrderStatus
	AssigneeIDs []string
	AssetID     *string
	ParentID    *string
	StartsAfter *time.Time
	DueBefore   *time.Time
}

// WorkOrderRepository captures the persistence operations needed by the service.
type WorkOrderRepository interface {
	CreateWorkOrder(ctx context.Context, order WorkOrder) (WorkOrder, error)
	GetWorkOrder(ctx context.Context, id string) (WorkOrder, error)
	UpdateWorkOrder(ctx context.Context, order WorkOrder) (WorkOrder, error)
	UpdateWorkOrderDates(ctx context.Context, id string, start time.Time, due *time.Time, updatedAt time.Time) error
	DeleteWorkOrder(ctx context.Context, id string) error
	ListWorkOrders(ctx context.Context, filter WorkOrderRepositoryFilter) ([]WorkOrder, error)
}

// RecurrenceProcessor runs post-write recurrence handling for a work order.
type RecurrenceProcessor interface {
	AfterChange(ctx context.Context, op Operation, order WorkOrder, opts HookOptions) (WorkOrder, error)
}

// WorkOrderService orchestrates validation, authorization, persistence, and
// recurrence processing for maintenance work orders.
type WorkOrderService struct {
	orders      WorkOrderRepository
	recurrence  RecurrenceProcessor
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewWorkOrderService constructs a work order service with the provided dependencies.
func NewWorkOrderService(orders WorkOrderRepository, processor RecurrenceProcessor, idGenerator func() string, now func() time.Time) *WorkOrderService {
	return NewWorkOrderServiceWithLogger(orders, processor, idGenerator, now, nil)
}

// NewWorkOrderServiceWithLogger constructs a work order service with a specified logger.
func NewWorkOrderServiceWithLogger(orders WorkOrderRepository, processor RecurrenceProcessor, idGenerator func() string, now func() time.Time, logger *slog.Logger) *WorkOrderService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &WorkOrderService{
		orders:      orders,
		recurrence:  processor,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *WorkOrderService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "WorkOrderService", operation, attrs...)
}

// CreateWorkOrder validates input, persists a new work order in the caller's
// tenant, runs recurrence processing, and reports any scheduling conflicts.
func (s *WorkOrderService) CreateWorkOrder(ctx context.Context, params CreateWorkOrderParams) (result WorkOrderResult, err error) {
	if s == nil {
		err = fmt.Errorf("WorkOrderService is nil")
		return
	}
	if s.orders == nil {
		err = fmt.Errorf("work order repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateWorkOrder",
		"principal_id", params.Principal.UserID,
		"tenant_id", params.Principal.TenantID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create work order", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"work_order_id", result.WorkOrder.ID,
			"warning_count", len(result.Warnings),
		).InfoContext(ctx, "work order created")
	}()

	if params.Principal.TenantID == "" {
		err = ErrUnauthorized
		return
	}

	input := normalizeWorkOrderInput(params.Input)
	vErr := validateWorkOrderInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	order := WorkOrder{
		ID:          s.idGenerator(),
		TenantID:    params.Principal.TenantID,
		Name:        input.Name,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		Start:       input.Start,
		Due:         input.Due,
		Recurrence:  input.Recurrence,
		AssigneeIDs: cloneStrings(input.AssigneeIDs),
		AssetID:     input.AssetID,
		Location:    input.Location,
		Vendors:     cloneStrings(input.Vendors),
		Uploads:     cloneStrings(input.Uploads),
		CreatedBy:   params.Principal.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	warnings, warnErr := s.detectConflicts(ctx, order)
	if warnErr != nil {
		logger.WarnContext(ctx, "conflict detection skipped", "error", warnErr)
	}

	var persisted WorkOrder
	persisted, err = s.orders.CreateWorkOrder(ctx, order)
	if err != nil {
		err = mapWorkOrderRepoError(err)
		return
	}

	persisted, err = s.afterChange(ctx, OperationCreate, persisted, params.SuppressRecurrence)
	if err != nil {
		return
	}

	result = WorkOrderResult{WorkOrder: persisted, Warnings: warnings}
	return
}

// UpdateWorkOrder validates input, updates an existing work order in the
// caller's tenant, and runs recurrence processing on the outcome. Completing
// a recurring order here is what spawns its successor.
func (s *WorkOrderService) UpdateWorkOrder(ctx context.Context, params UpdateWorkOrderParams) (result WorkOrderResult, err error) {
	if s == nil {
		err = fmt.Errorf("WorkOrderService is nil")
		return
	}
	if s.orders == nil {
		err = fmt.Errorf("work order repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateWorkOrder",
		"principal_id", params.Principal.UserID,
		"work_order_id", params.WorkOrderID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update work order", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"work_order_id", result.WorkOrder.ID,
			"status", string(result.WorkOrder.Status),
		).InfoContext(ctx, "work order updated")
	}()

	var existing WorkOrder
	existing, err = s.orders.GetWorkOrder(ctx, params.WorkOrderID)
	if err != nil {
		err = mapWorkOrderRepoError(err)
		return
	}
	if existing.TenantID != params.Principal.TenantID {
		err = ErrNotFound
		return
	}

	input := normalizeWorkOrderInput(params.Input)
	vErr := validateWorkOrderInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = input.Name
	updated.Description = input.Description
	updated.Priority = input.Priority
	updated.Status = input.Status
	updated.Start = input.Start
	updated.Due = input.Due
	updated.Recurrence = input.Recurrence
	updated.AssigneeIDs = cloneStrings(input.AssigneeIDs)
	updated.AssetID = input.AssetID
	updated.Location = input.Location
	updated.Vendors = cloneStrings(input.Vendors)
	updated.Uploads = cloneStrings(input.Uploads)
	updated.UpdatedAt = s.now()

	warnings, warnErr := s.detectConflicts(ctx, updated)
	if warnErr != nil {
		logger.WarnContext(ctx, "conflict detection skipped", "error", warnErr)
	}

	var persisted WorkOrder
	persisted, err = s.orders.UpdateWorkOrder(ctx, updated)
	if err != nil {
		err = mapWorkOrderRepoError(err)
		return
	}

	persisted, err = s.afterChange(ctx, OperationUpdate, persisted, params.SuppressRecurrence)
	if err != nil {
		return
	}

	result = WorkOrderResult{WorkOrder: persisted, Warnings: warnings}
	return
}

// DeleteWorkOrder removes a work order from the caller's tenant.
func (s *WorkOrderService) DeleteWorkOrder(ctx context.Context, principal Principal, workOrderID string) error {
	if s == nil {
		return fmt.Errorf("WorkOrderService is nil")
	}
	if s.orders == nil {
		return fmt.Errorf("work order repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteWorkOrder",
		"principal_id", principal.UserID,
		"work_order_id", workOrderID,
	)

	existing, err := s.orders.GetWorkOrder(ctx, workOrderID)
	if err != nil {
		err = mapWorkOrderRepoError(err)
		logger.ErrorContext(ctx, "failed to delete work order", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if existing.TenantID != principal.TenantID {
		logger.ErrorContext(ctx, "failed to delete work order", "error", ErrNotFound, "error_kind", ErrorKind(ErrNotFound))
		return ErrNotFound
	}

	if err := s.orders.DeleteWorkOrder(ctx, workOrderID); err != nil {
		err = mapWorkOrderRepoError(err)
		logger.ErrorContext(ctx, "failed to delete work order", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "work order deleted")
	return nil
}

// GetWorkOrder returns a single work order visible to the caller's tenant.
func (s *WorkOrderService) GetWorkOrder(ctx context.Context, principal Principal, workOrderID string) (order WorkOrder, err error) {
	if s == nil {
		err = fmt.Errorf("WorkOrderService is nil")
		return
	}
	if s.orders == nil {
		err = ErrNotFound
		return
	}

	order, err = s.orders.GetWorkOrder(ctx, workOrderID)
	if err != nil {
		err = mapWorkOrderRepoError(err)
		return
	}
	if order.TenantID != principal.TenantID {
		order = WorkOrder{}
		err = ErrNotFound
		return
	}
	return
}

// ListWorkOrders returns the work orders matching the filter within the
// caller's tenant, sorted by start date.
func (s *WorkOrderService) ListWorkOrders(ctx context.Context, params ListWorkOrdersParams) (orders []WorkOrder, err error) {
	if s == nil {
		err = fmt.Errorf("WorkOrderService is nil")
		return
	}
	if s.orders == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListWorkOrders",
		"principal_id", params.Principal.UserID,
		"tenant_id", params.Principal.TenantID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list work orders", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(orders)).InfoContext(ctx, "work orders listed")
	}()

	if params.Principal.TenantID == "" {
		err = ErrUnauthorized
		return
	}

	for _, status := range params.Statuses {
		if !status.Known() {
			vErr := &ValidationError{}
			vErr.add("status", fmt.Sprintf("unknown status %q", status))
			err = vErr
			return
		}
	}

	filter := WorkOrderRepositoryFilter{
		TenantID:    params.Principal.TenantID,
		Statuses:    params.Statuses,
		AssigneeIDs: params.AssigneeIDs,
		AssetID:     params.AssetID,
		ParentID:    params.ParentID,
		StartsAfter: params.StartsAfter,
		DueBefore:   params.DueBefore,
	}

	var raw []WorkOrder
	raw, err = s.orders.ListWorkOrders(ctx, filter)
	if err != nil {
		err = mapWorkOrderRepoError(err)
		return
	}

	orders = make([]WorkOrder, len(raw))
	copy(orders, raw)

	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Start.Equal(orders[j].Start) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].Start.Before(orders[j].Start)
	})

	return
}

func (s *WorkOrderService) afterChange(ctx context.Context, op Operation, order WorkOrder, suppress bool) (WorkOrder, error) {
	if s.recurrence == nil {
		return order, nil
	}
	return s.recurrence.AfterChange(ctx, op, order, HookOptions{SuppressRecurrence: suppress})
}

// detectConflicts compares the candidate against the tenant's unfinished
// orders. Failures here never block the write; the caller logs and proceeds.
func (s *WorkOrderService) detectConflicts(ctx context.Context, candidate WorkOrder) ([]ConflictWarning, error) {
	if len(candidate.AssigneeIDs) == 0 && candidate.AssetID == nil {
		return nil, nil
	}

	existing, err := s.orders.ListWorkOrders(ctx, WorkOrderRepositoryFilter{
		TenantID: candidate.TenantID,
		Statuses: []WorkOrderStatus{StatusOpen, StatusOnHold, StatusInProgress},
	})
	if err != nil {
		return nil, err
	}

	others := make([]workload.Order, 0, len(existing))
	for _, order := range existing {
		others = append(others, workload.Order{
			ID:          order.ID,
			AssigneeIDs: order.AssigneeIDs,
			AssetID:     order.AssetID,
			Start:       order.Start,
			Due:         order.Due,
		})
	}

	conflicts := workload.DetectConflicts(others, workload.Order{
		ID:          candidate.ID,
		AssigneeIDs: candidate.AssigneeIDs,
		AssetID:     candidate.AssetID,
		Start:       candidate.Start,
		Due:         candidate.Due,
	})
	if len(conflicts) == 0 {
		return nil, nil
	}

	warnings := make([]ConflictWarning, 0, len(conflicts))
	for _, conflict := range conflicts {
		warnings = append(warnings, ConflictWarning{
			WorkOrderID: conflict.WithOrderID,
			Type:        string(conflict.Type),
			AssigneeID:  conflict.AssigneeID,
			AssetID:     conflict.AssetID,
		})
	}
	return warnings, nil
}

func normalizeWorkOrderInput(input WorkOrderInput) WorkOrderInput {
	out := input
	out.Name = strings.TrimSpace(input.Name)
	out.Description = normalizeOptionalString(input.Description)
	out.Location = normalizeOptionalString(input.Location)
	if out.Priority == "" {
		out.Priority = PriorityNone
	}
	if out.Status == "" {
		out.Status = StatusOpen
	}
	if out.Recurrence.Type == "" {
		out.Recurrence = recurrence.None()
	}
	return out
}

func validateWorkOrderInput(input WorkOrderInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if !input.Status.Known() {
		vErr.add("status", fmt.Sprintf("unknown status %q", input.Status))
	}
	if !input.Priority.Known() {
		vErr.add("priority", fmt.Sprintf("unknown priority %q", input.Priority))
	}
	if input.Start.IsZero() {
		vErr.add("start", "start date is required")
	}
	if input.Due != nil && !input.Start.IsZero() && input.Due.Before(input.Start) {
		vErr.add("due", "due date must not precede the start date")
	}

	vErr.merge(validateRecurrenceRule(input.Recurrence))

	return vErr
}

func validateRecurrenceRule(rule recurrence.Rule) *ValidationError {
	vErr := &ValidationError{}

	if !rule.Type.Known() {
		vErr.add("recurrence.type", fmt.Sprintf("unknown recurrence type %q", rule.Type))
		return vErr
	}
	if !rule.IsRecurring() {
		return vErr
	}

	if rule.Interval <= 0 {
		vErr.add("recurrence.interval", "interval must be at least 1")
	}

	switch rule.Type {
	case recurrence.TypeWeekly:
		if rule.Weekly == nil || len(rule.Weekly.DaysOfWeek) == 0 {
			vErr.add("recurrence.daysOfWeek", "at least one weekday is required")
		}
	case recurrence.TypeMonthlyByDate:
		if rule.MonthlyByDate == nil || rule.MonthlyByDate.DateOfMonth < 1 || rule.MonthlyByDate.DateOfMonth > 31 {
			vErr.add("recurrence.dateOfMonth", "date of month must be between 1 and 31")
		}
	case recurrence.TypeMonthlyByWeekday:
		if rule.MonthlyByWeekday == nil || !rule.MonthlyByWeekday.Week.Valid() {
			vErr.add("recurrence.weekOfMonth", "week of month must be 1st, 2nd, 3rd, 4th, or last")
		} else if rule.MonthlyByWeekday.Day < time.Sunday || rule.MonthlyByWeekday.Day > time.Saturday {
			vErr.add("recurrence.weekdayOfMonth", "weekday is out of range")
		}
	case recurrence.TypeYearly:
		if rule.Yearly == nil || rule.Yearly.MonthOfYear < 1 || rule.Yearly.MonthOfYear > 12 {
			vErr.add("recurrence.monthOfYear", "month of year must be between 1 and 12")
		}
	}

	return vErr
}

func mapWorkOrderRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("asset_id", "referenced record does not exist")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("status", "value violates a storage constraint")
		return vErr
	}
	return err
}
