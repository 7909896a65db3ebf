package persistence

import (
	"context"
	"time"
)

// TenantRepository exposes CRUD operations for tenants.
type TenantRepository interface {
	CreateTenant(ctx context.Context, tenant Tenant) error
	UpdateTenant(ctx context.Context, tenant Tenant) error
	GetTenant(ctx context.Context, id string) (Tenant, error)
	ListTenants(ctx context.Context) ([]Tenant, error)
	DeleteTenant(ctx context.Context, id string) error
}

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context, tenantID string) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// AssetRepository exposes CRUD operations for assets.
type AssetRepository interface {
	CreateAsset(ctx context.Context, asset Asset) error
	UpdateAsset(ctx context.Context, asset Asset) error
	GetAsset(ctx context.Context, id string) (Asset, error)
	ListAssets(ctx context.Context, tenantID string) ([]Asset, error)
	DeleteAsset(ctx context.Context, id string) error
}

// WorkOrderFilter narrows work-order queries.
type WorkOrderFilter struct {
	TenantID    string
	Statuses    []string
	AssigneeIDs []string
	AssetID     *string
	ParentID    *string
	StartsAfter *time.Time
	DueBefore   *time.Time
}

// WorkOrderRepository stores work orders and their recurrence state.
type WorkOrderRepository interface {
	CreateWorkOrder(ctx context.Context, order WorkOrder) error
	UpdateWorkOrder(ctx context.Context, order WorkOrder) error
	UpdateWorkOrderDates(ctx context.Context, id string, start time.Time, due *time.Time, updatedAt time.Time) error
	GetWorkOrder(ctx context.Context, id string) (WorkOrder, error)
	ListWorkOrders(ctx context.Context, filter WorkOrderFilter) ([]WorkOrder, error)
	DeleteWorkOrder(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
