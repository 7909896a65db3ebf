package application

import (
	"time"

	"github.com/example/cmms-backend/internal/calendar"
	"github.com/example/cmms-backend/internal/recurrence"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID   string
	TenantID string
	IsAdmin  bool
}

// WorkOrderStatus identifies the lifecycle state of a work order.
type WorkOrderStatus string

const (
	StatusOpen       WorkOrderStatus = "open"
	StatusOnHold     WorkOrderStatus = "onHold"
	StatusInProgress WorkOrderStatus = "inProgress"
	StatusDone       WorkOrderStatus = "done"
)

// Known reports whether the status is one of the recognized lifecycle states.
func (s WorkOrderStatus) Known() bool {
	switch s {
	case StatusOpen, StatusOnHold, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// WorkOrderPriority identifies the urgency assigned to a work order.
type WorkOrderPriority string

const (
	PriorityNone   WorkOrderPriority = "none"
	PriorityLow    WorkOrderPriority = "low"
	PriorityMedium WorkOrderPriority = "medium"
	PriorityHigh   WorkOrderPriority = "high"
)

// Known reports whether the priority is one of the recognized levels.
func (p WorkOrderPriority) Known() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// WorkOrderInput captures caller provided work order fields.
type WorkOrderInput struct {
	Name        string
	Description *string
	Priority    WorkOrderPriority
	Status      WorkOrderStatus
	Start       time.Time
	Due         *time.Time
	Recurrence  recurrence.Rule
	AssigneeIDs []string
	AssetID     *string
	Location    *string
	Vendors     []string
	Uploads     []string
}

// WorkOrder represents a persisted maintenance work order.
type WorkOrder struct {
	ID          string
	TenantID    string
	Name        string
	Description *string
	Priority    WorkOrderPriority
	Status      WorkOrderStatus
	Start       time.Time
	Due         *time.Time
	Recurrence  recurrence.Rule
	AssigneeIDs []string
	AssetID     *string
	Location    *string
	Vendors     []string
	Uploads     []string
	CreatedBy   string
	ParentID    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ConflictWarning describes an overlapping assignment that should be surfaced
// to callers alongside a successful write.
type ConflictWarning struct {
	WorkOrderID string
	Type        string
	AssigneeID  string
	AssetID     *string
}

// CreateWorkOrderParams wraps the data required to create a work order.
type CreateWorkOrderParams struct {
	Principal Principal
	Input     WorkOrderInput

	// SuppressRecurrence skips recurrence processing after the write. It is
	// intended for internal mutations that must not spawn follow-up orders.
	SuppressRecurrence bool
}

// UpdateWorkOrderParams wraps the data required to update an existing work order.
type UpdateWorkOrderParams struct {
	Principal   Principal
	WorkOrderID string
	Input       WorkOrderInput

	SuppressRecurrence bool
}

// ListWorkOrdersParams wraps the data required to list work orders.
type ListWorkOrdersParams struct {
	Principal   Principal
	Statuses    []WorkOrderStatus
	AssigneeIDs []string
	AssetID     *string
	ParentID    *string
	StartsAfter *time.Time
	DueBefore   *time.Time
}

// WorkOrderResult pairs a persisted work order with any conflict warnings
// detected during the write.
type WorkOrderResult struct {
	WorkOrder WorkOrder
	Warnings  []ConflictWarning
}

// AssetInput captures caller provided asset fields.
type AssetInput struct {
	Name         string
	Location     string
	SerialNumber *string
}

// Asset represents a maintainable piece of equipment registered by a tenant.
type Asset struct {
	ID           string
	TenantID     string
	Name         string
	Location     string
	SerialNumber *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateAssetParams wraps the data required to create an asset.
type CreateAssetParams struct {
	Principal Principal
	Input     AssetInput
}

// UpdateAssetParams wraps the data required to update an asset.
type UpdateAssetParams struct {
	Principal Principal
	AssetID   string
	Input     AssetInput
}

// TenantInput captures caller provided tenant fields.
type TenantInput struct {
	Name        string
	WorkingDays []string
}

// Tenant represents an organization whose users share a maintenance catalog.
type Tenant struct {
	ID          string
	Name        string
	WorkingDays calendar.WorkingDays
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateTenantParams wraps the data required to create a tenant.
type CreateTenantParams struct {
	Principal Principal
	Input     TenantInput
}

// UpdateTenantParams wraps the data required to update a tenant.
type UpdateTenantParams struct {
	Principal Principal
	TenantID  string
	Input     TenantInput
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	Email       string
	DisplayName string
	IsAdmin     bool
}

// User represents an account exposed by the application services.
type User struct {
	ID          string
	TenantID    string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	TenantID  string
	Input     UserInput
	Password  string
}

// UpdateUserParams wraps the data required to update a user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
	Disabled     bool
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID          string
	UserID      string
	Token       string
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RevokedAt   *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email       string
	Password    string
	Fingerprint string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}

// RefreshSessionParams captures the data required to refresh an existing session.
type RefreshSessionParams struct {
	Token       string
	Fingerprint string
}

// RefreshSessionResult captures the outcome of rotating a session token.
type RefreshSessionResult struct {
	Session Session
}
