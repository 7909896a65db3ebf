package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/cmms-backend/internal/application"
	"github.com/example/cmms-backend/internal/calendar"
	"github.com/example/cmms-backend/internal/recurrence"
)

type workOrderService interface {
	CreateWorkOrder(ctx context.Context, params application.CreateWorkOrderParams) (application.WorkOrderResult, error)
	UpdateWorkOrder(ctx context.Context, params application.UpdateWorkOrderParams) (application.WorkOrderResult, error)
	DeleteWorkOrder(ctx context.Context, principal application.Principal, workOrderID string) error
	GetWorkOrder(ctx context.Context, principal application.Principal, workOrderID string) (application.WorkOrder, error)
	ListWorkOrders(ctx context.Context, params application.ListWorkOrdersParams) ([]application.WorkOrder, error)
}

type WorkOrderHandler struct {
	service   workOrderService
	responder responder
	logger    *slog.Logger
}

func NewWorkOrderHandler(service workOrderService, logger *slog.Logger) *WorkOrderHandler {
	base := defaultLogger(logger)
	return &WorkOrderHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *WorkOrderHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "WorkOrderHandler", operation, attrs...)
}

func (h *WorkOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req workOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode work order request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid work order payload", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	result, err := h.service.CreateWorkOrder(r.Context(), application.CreateWorkOrderParams{
		Principal:          principal,
		Input:              input,
		SuppressRecurrence: suppressRecurrenceParam(r),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "work order creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("work_order_id", result.WorkOrder.ID).InfoContext(r.Context(), "work order created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, workOrderResponse{
		WorkOrder: toWorkOrderDTO(result.WorkOrder),
		Warnings:  toWarningDTOs(result.Warnings),
	})
}

func (h *WorkOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workOrderID, ok := WorkOrderIDFromContext(r.Context())
	if !ok || strings.TrimSpace(workOrderID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing work order id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkOrderID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req workOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "work_order_id", workOrderID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode work order update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "work_order_id", workOrderID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid work order payload", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "work_order_id", workOrderID)

	result, err := h.service.UpdateWorkOrder(r.Context(), application.UpdateWorkOrderParams{
		Principal:          principal,
		WorkOrderID:        workOrderID,
		Input:              input,
		SuppressRecurrence: suppressRecurrenceParam(r),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "work order update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", string(result.WorkOrder.Status)).InfoContext(r.Context(), "work order updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, workOrderResponse{
		WorkOrder: toWorkOrderDTO(result.WorkOrder),
		Warnings:  toWarningDTOs(result.Warnings),
	})
}

func (h *WorkOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workOrderID, ok := WorkOrderIDFromContext(r.Context())
	if !ok || strings.TrimSpace(workOrderID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing work order id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkOrderID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "work_order_id", workOrderID)
	if err := h.service.DeleteWorkOrder(r.Context(), principal, workOrderID); err != nil {
		logger.ErrorContext(r.Context(), "work order delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "work order deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *WorkOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workOrderID, ok := WorkOrderIDFromContext(r.Context())
	if !ok || strings.TrimSpace(workOrderID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkOrderID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "work_order_id", workOrderID)

	order, err := h.service.GetWorkOrder(r.Context(), principal, workOrderID)
	if err != nil {
		logger.ErrorContext(r.Context(), "work order fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, workOrderResponse{WorkOrder: toWorkOrderDTO(order)})
}

func (h *WorkOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok || strings.TrimSpace(principal.UserID) == "" {
		h.log(r.Context(), "List", "error_kind", "unauthorized").ErrorContext(r.Context(), "missing authenticated principal")
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	params, err := listWorkOrdersParams(r, principal)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid list query", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	orders, err := h.service.ListWorkOrders(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "work order list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(orders)).InfoContext(r.Context(), "work orders listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listWorkOrdersResponse{WorkOrders: toWorkOrderDTOs(orders)})
}

func suppressRecurrenceParam(r *http.Request) bool {
	return r.URL.Query().Get("suppress_recurrence") == "true"
}

func listWorkOrdersParams(r *http.Request, principal application.Principal) (application.ListWorkOrdersParams, error) {
	query := r.URL.Query()
	params := application.ListWorkOrdersParams{Principal: principal}

	for _, raw := range query["status"] {
		for _, value := range strings.Split(raw, ",") {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			params.Statuses = append(params.Statuses, application.WorkOrderStatus(value))
		}
	}
	for _, raw := range query["assignee_id"] {
		if value := strings.TrimSpace(raw); value != "" {
			params.AssigneeIDs = append(params.AssigneeIDs, value)
		}
	}
	if value := strings.TrimSpace(query.Get("asset_id")); value != "" {
		params.AssetID = &value
	}
	if value := strings.TrimSpace(query.Get("parent_id")); value != "" {
		params.ParentID = &value
	}
	if value := strings.TrimSpace(query.Get("starts_after")); value != "" {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return application.ListWorkOrdersParams{}, fmt.Errorf("invalid starts_after timestamp %q", value)
		}
		params.StartsAfter = &parsed
	}
	if value := strings.TrimSpace(query.Get("due_before")); value != "" {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return application.ListWorkOrdersParams{}, fmt.Errorf("invalid due_before timestamp %q", value)
		}
		params.DueBefore = &parsed
	}

	return params, nil
}

type recurrenceDTO struct {
	Type           string   `json:"type"`
	Interval       int      `json:"interval,omitempty"`
	DaysOfWeek     []string `json:"days_of_week,omitempty"`
	DateOfMonth    int      `json:"date_of_month,omitempty"`
	WeekOfMonth    string   `json:"week_of_month,omitempty"`
	WeekdayOfMonth string   `json:"weekday_of_month,omitempty"`
	MonthOfYear    int      `json:"month_of_year,omitempty"`
}

func (d *recurrenceDTO) toRule() (recurrence.Rule, error) {
	if d == nil || d.Type == "" || d.Type == string(recurrence.TypeNone) {
		return recurrence.None(), nil
	}

	rule := recurrence.Rule{Type: recurrence.Type(d.Type), Interval: d.Interval}

	switch rule.Type {
	case recurrence.TypeDaily:
	case recurrence.TypeWeekly:
		days := make([]time.Weekday, 0, len(d.DaysOfWeek))
		for _, name := range d.DaysOfWeek {
			day, err := calendar.ParseWeekday(name)
			if err != nil {
				return recurrence.Rule{}, fmt.Errorf("invalid weekday %q", name)
			}
			days = append(days, day)
		}
		rule.Weekly = &recurrence.WeeklyDetails{DaysOfWeek: days}
	case recurrence.TypeMonthlyByDate:
		rule.MonthlyByDate = &recurrence.MonthlyByDateDetails{DateOfMonth: d.DateOfMonth}
	case recurrence.TypeMonthlyByWeekday:
		day, err := calendar.ParseWeekday(d.WeekdayOfMonth)
		if err != nil {
			return recurrence.Rule{}, fmt.Errorf("invalid weekday %q", d.WeekdayOfMonth)
		}
		rule.MonthlyByWeekday = &recurrence.MonthlyByWeekdayDetails{
			Week: calendar.WeekOfMonth(d.WeekOfMonth),
			Day:  day,
		}
	case recurrence.TypeYearly:
		rule.Yearly = &recurrence.YearlyDetails{MonthOfYear: d.MonthOfYear}
	default:
		return recurrence.Rule{}, fmt.Errorf("invalid recurrence type %q", d.Type)
	}

	return rule, nil
}

func toRecurrenceDTO(rule recurrence.Rule) *recurrenceDTO {
	if !rule.IsRecurring() {
		return nil
	}

	dto := &recurrenceDTO{Type: string(rule.Type), Interval: rule.Interval}
	switch rule.Type {
	case recurrence.TypeWeekly:
		if rule.Weekly != nil {
			for _, day := range rule.Weekly.DaysOfWeek {
				dto.DaysOfWeek = append(dto.DaysOfWeek, strings.ToLower(day.String()))
			}
		}
	case recurrence.TypeMonthlyByDate:
		if rule.MonthlyByDate != nil {
			dto.DateOfMonth = rule.MonthlyByDate.DateOfMonth
		}
	case recurrence.TypeMonthlyByWeekday:
		if rule.MonthlyByWeekday != nil {
			dto.WeekOfMonth = string(rule.MonthlyByWeekday.Week)
			dto.WeekdayOfMonth = strings.ToLower(rule.MonthlyByWeekday.Day.String())
		}
	case recurrence.TypeYearly:
		if rule.Yearly != nil {
			dto.MonthOfYear = rule.Yearly.MonthOfYear
		}
	}
	return dto
}

type workOrderRequest struct {
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Priority    string         `json:"priority"`
	Status      string         `json:"status"`
	Start       string         `json:"start"`
	Due         *string        `json:"due"`
	Recurrence  *recurrenceDTO `json:"recurrence"`
	AssigneeIDs []string       `json:"assignee_ids"`
	AssetID     *string        `json:"asset_id"`
	Location    *string        `json:"location"`
	Vendors     []string       `json:"vendors"`
	Uploads     []string       `json:"uploads"`
}

func (r workOrderRequest) toInput() (application.WorkOrderInput, error) {
	var start time.Time
	if trimmed := strings.TrimSpace(r.Start); trimmed != "" {
		parsed, err := time.Parse(time.RFC3339, trimmed)
		if err != nil {
			return application.WorkOrderInput{}, fmt.Errorf("invalid start timestamp %q", r.Start)
		}
		start = parsed
	}

	var due *time.Time
	if r.Due != nil && strings.TrimSpace(*r.Due) != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*r.Due))
		if err != nil {
			return application.WorkOrderInput{}, fmt.Errorf("invalid due timestamp %q", *r.Due)
		}
		due = &parsed
	}

	rule, err := r.Recurrence.toRule()
	if err != nil {
		return application.WorkOrderInput{}, err
	}

	return application.WorkOrderInput{
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Priority:    application.WorkOrderPriority(r.Priority),
		Status:      application.WorkOrderStatus(r.Status),
		Start:       start,
		Due:         due,
		Recurrence:  rule,
		AssigneeIDs: r.AssigneeIDs,
		AssetID:     r.AssetID,
		Location:    r.Location,
		Vendors:     r.Vendors,
		Uploads:     r.Uploads,
	}, nil
}

type warningDTO struct {
	WorkOrderID string  `json:"work_order_id"`
	Type        string  `json:"type"`
	AssigneeID  string  `json:"assignee_id,omitempty"`
	AssetID     *string `json:"asset_id,omitempty"`
}

func toWarningDTOs(warnings []application.ConflictWarning) []warningDTO {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]warningDTO, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, warningDTO{
			WorkOrderID: warning.WorkOrderID,
			Type:        warning.Type,
			AssigneeID:  warning.AssigneeID,
			AssetID:     warning.AssetID,
		})
	}
	return out
}

type workOrderResponse struct {
	WorkOrder workOrderDTO `json:"work_order"`
	Warnings  []warningDTO `json:"warnings,omitempty"`
}

type listWorkOrdersResponse struct {
	WorkOrders []workOrderDTO `json:"work_orders"`
}

type workOrderDTO struct {
	ID          string         `json:"id"`
	TenantID    string         `json:"tenant_id"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Priority    string         `json:"priority"`
	Status      string         `json:"status"`
	Start       string         `json:"start"`
	Due         *string        `json:"due,omitempty"`
	Recurrence  *recurrenceDTO `json:"recurrence,omitempty"`
	AssigneeIDs []string       `json:"assignee_ids,omitempty"`
	AssetID     *string        `json:"asset_id,omitempty"`
	Location    *string        `json:"location,omitempty"`
	Vendors     []string       `json:"vendors,omitempty"`
	Uploads     []string       `json:"uploads,omitempty"`
	CreatedBy   string         `json:"created_by"`
	ParentID    *string        `json:"parent_id,omitempty"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

func toWorkOrderDTO(order application.WorkOrder) workOrderDTO {
	var due *string
	if order.Due != nil {
		formatted := order.Due.UTC().Format(time.RFC3339Nano)
		due = &formatted
	}

	return workOrderDTO{
		ID:          order.ID,
		TenantID:    order.TenantID,
		Name:        order.Name,
		Description: order.Description,
		Priority:    string(order.Priority),
		Status:      string(order.Status),
		Start:       order.Start.UTC().Format(time.RFC3339Nano),
		Due:         due,
		Recurrence:  toRecurrenceDTO(order.Recurrence),
		AssigneeIDs: order.AssigneeIDs,
		AssetID:     order.AssetID,
		Location:    order.Location,
		Vendors:     order.Vendors,
		Uploads:     order.Uploads,
		CreatedBy:   order.CreatedBy,
		ParentID:    order.ParentID,
		CreatedAt:   order.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   order.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toWorkOrderDTOs(orders []application.WorkOrder) []workOrderDTO {
	if len(orders) == 0 {
		return nil
	}
	out := make([]workOrderDTO, 0, len(orders))
	for _, order := range orders {
		out = append(out, toWorkOrderDTO(order))
	}
	return out
}
