package persistence

import "time"

// Tenant represents an organization with its maintenance calendar settings.
type Tenant struct {
	ID          string
	Name        string
	WorkingDays []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// User represents an account scoped to a tenant.
type User struct {
	ID           string
	TenantID     string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Asset represents a maintainable piece of equipment.
type Asset struct {
	ID           string
	TenantID     string
	Name         string
	Location     string
	SerialNumber *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecurrenceRule is the flattened recurrence configuration stored with a
// work order. Only the fields relevant to Type carry meaning.
type RecurrenceRule struct {
	Type           string
	Interval       int
	DaysOfWeek     []time.Weekday
	DateOfMonth    int
	WeekOfMonth    string
	WeekdayOfMonth time.Weekday
	MonthOfYear    int
}

// WorkOrder represents a maintenance task stored in persistence.
type WorkOrder struct {
	ID          string
	TenantID    string
	Name        string
	Description *string
	Priority    string
	Status      string
	Start       time.Time
	Due         *time.Time
	Recurrence  RecurrenceRule
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

// Session represents an authentication session persisted for a user.
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
