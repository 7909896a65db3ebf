package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/cmms-backend/internal/application"
	"github.com/example/cmms-backend/internal/calendar"
	"github.com/example/cmms-backend/internal/persistence"
	"github.com/example/cmms-backend/internal/recurrence"
	"github.com/example/cmms-backend/internal/workload"
)

var (
	tenantCounter    uint64
	userCounter      uint64
	assetCounter     uint64
	workOrderCounter uint64
	sessionCounter   uint64
)

var referenceTime = time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Tenant fixtures -----------------------------

// TenantFixture represents a deterministic tenant record.
type TenantFixture struct {
	ID          string
	Name        string
	WorkingDays []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TenantOption configures the generated tenant fixture.
type TenantOption func(*TenantFixture)

// NewTenantFixture returns a deterministic tenant fixture with optional overrides.
func NewTenantFixture(opts ...TenantOption) TenantFixture {
	idx := atomic.AddUint64(&tenantCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := TenantFixture{
		ID:          fmt.Sprintf("tenant-%03d", idx),
		Name:        fmt.Sprintf("Tenant %03d", idx),
		WorkingDays: []string{"mon", "tue", "wed", "thu", "fri"},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTenantID overrides the generated tenant ID.
func WithTenantID(id string) TenantOption {
	return func(f *TenantFixture) {
		f.ID = id
	}
}

// WithTenantName overrides the generated tenant name.
func WithTenantName(name string) TenantOption {
	return func(f *TenantFixture) {
		f.Name = name
	}
}

// WithTenantWorkingDays overrides the working day abbreviations.
func WithTenantWorkingDays(days ...string) TenantOption {
	return func(f *TenantFixture) {
		f.WorkingDays = days
	}
}

// WithTenantTimestamps sets both created and updated timestamps on the fixture.
func WithTenantTimestamps(created, updated time.Time) TenantOption {
	return func(f *TenantFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application converts the fixture into the application model.
func (f TenantFixture) Application() application.Tenant {
	return application.Tenant{
		ID:          f.ID,
		Name:        f.Name,
		WorkingDays: calendar.WorkingDaysFromAbbreviations(f.WorkingDays),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence converts the fixture into the persistence model.
func (f TenantFixture) Persistence() persistence.Tenant {
	return persistence.Tenant{
		ID:          f.ID,
		Name:        f.Name,
		WorkingDays: append([]string(nil), f.WorkingDays...),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input converts the fixture into caller-supplied input.
func (f TenantFixture) Input() application.TenantInput {
	return application.TenantInput{
		Name:        f.Name,
		WorkingDays: append([]string(nil), f.WorkingDays...),
	}
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record.
type UserFixture struct {
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

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		TenantID:     "tenant-001",
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserTenant overrides the tenant the user belongs to.
func WithUserTenant(tenantID string) UserOption {
	return func(f *UserFixture) {
		f.TenantID = tenantID
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserAdmin sets the admin flag on the generated fixture.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(f *UserFixture) {
		f.IsAdmin = isAdmin
	}
}

// WithUserDisabled marks the account as disabled.
func WithUserDisabled() UserOption {
	return func(f *UserFixture) {
		f.Disabled = true
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application converts the fixture into the application model.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		TenantID:    f.TenantID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Credentials converts the fixture into the authentication view of the user.
func (f UserFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{
		User:         f.Application(),
		PasswordHash: f.PasswordHash,
		Disabled:     f.Disabled,
	}
}

// Principal converts the fixture into an authenticated principal.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, TenantID: f.TenantID, IsAdmin: f.IsAdmin}
}

// Persistence converts the fixture into the persistence model.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		TenantID:     f.TenantID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		IsAdmin:      f.IsAdmin,
		Disabled:     f.Disabled,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input converts the fixture into caller-supplied input.
func (f UserFixture) Input() application.UserInput {
	return application.UserInput{
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
	}
}

// ----------------------------- Asset fixtures -----------------------------

// AssetFixture represents a deterministic asset record.
type AssetFixture struct {
	ID           string
	TenantID     string
	Name         string
	Location     string
	SerialNumber *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AssetOption configures the generated asset fixture.
type AssetOption func(*AssetFixture)

// NewAssetFixture returns a deterministic asset fixture with optional overrides.
func NewAssetFixture(opts ...AssetOption) AssetFixture {
	idx := atomic.AddUint64(&assetCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	serial := fmt.Sprintf("SN-%05d", idx)
	fixture := AssetFixture{
		ID:           fmt.Sprintf("asset-%03d", idx),
		TenantID:     "tenant-001",
		Name:         fmt.Sprintf("Asset %03d", idx),
		Location:     "Building A",
		SerialNumber: &serial,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAssetID overrides the generated asset ID.
func WithAssetID(id string) AssetOption {
	return func(f *AssetFixture) {
		f.ID = id
	}
}

// WithAssetTenant overrides the owning tenant.
func WithAssetTenant(tenantID string) AssetOption {
	return func(f *AssetFixture) {
		f.TenantID = tenantID
	}
}

// WithAssetName overrides the generated asset name.
func WithAssetName(name string) AssetOption {
	return func(f *AssetFixture) {
		f.Name = name
	}
}

// WithAssetLocation overrides the asset location.
func WithAssetLocation(location string) AssetOption {
	return func(f *AssetFixture) {
		f.Location = location
	}
}

// WithoutAssetSerialNumber clears the serial number.
func WithoutAssetSerialNumber() AssetOption {
	return func(f *AssetFixture) {
		f.SerialNumber = nil
	}
}

// Application converts the fixture into the application model.
func (f AssetFixture) Application() application.Asset {
	return application.Asset{
		ID:           f.ID,
		TenantID:     f.TenantID,
		Name:         f.Name,
		Location:     f.Location,
		SerialNumber: copyStringPtr(f.SerialNumber),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence converts the fixture into the persistence model.
func (f AssetFixture) Persistence() persistence.Asset {
	return persistence.Asset{
		ID:           f.ID,
		TenantID:     f.TenantID,
		Name:         f.Name,
		Location:     f.Location,
		SerialNumber: copyStringPtr(f.SerialNumber),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input converts the fixture into caller-supplied input.
func (f AssetFixture) Input() application.AssetInput {
	return application.AssetInput{
		Name:         f.Name,
		Location:     f.Location,
		SerialNumber: copyStringPtr(f.SerialNumber),
	}
}

// --------------------------- Work order fixtures ---------------------------

// WorkOrderFixture represents a deterministic work order record.
type WorkOrderFixture struct {
	ID          string
	TenantID    string
	Name        string
	Description *string
	Priority    application.WorkOrderPriority
	Status      application.WorkOrderStatus
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

// WorkOrderOption configures the generated work order fixture.
type WorkOrderOption func(*WorkOrderFixture)

// NewWorkOrderFixture returns a deterministic work order fixture with optional
// overrides. The default fixture is a non-recurring open order spanning one
// working day.
func NewWorkOrderFixture(opts ...WorkOrderOption) WorkOrderFixture {
	idx := atomic.AddUint64(&workOrderCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	start := referenceTime.AddDate(0, 0, int(idx))
	due := start.AddDate(0, 0, 1)
	fixture := WorkOrderFixture{
		ID:         fmt.Sprintf("wo-%03d", idx),
		TenantID:   "tenant-001",
		Name:       fmt.Sprintf("Work order %03d", idx),
		Priority:   application.PriorityMedium,
		Status:     application.StatusOpen,
		Start:      start,
		Due:        &due,
		Recurrence: recurrence.None(),
		CreatedBy:  "user-001",
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithWorkOrderID overrides the generated work order ID.
func WithWorkOrderID(id string) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.ID = id
	}
}

// WithWorkOrderTenant overrides the owning tenant.
func WithWorkOrderTenant(tenantID string) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.TenantID = tenantID
	}
}

// WithWorkOrderName overrides the generated name.
func WithWorkOrderName(name string) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.Name = name
	}
}

// WithWorkOrderStatus sets the lifecycle status.
func WithWorkOrderStatus(status application.WorkOrderStatus) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.Status = status
	}
}

// WithWorkOrderPriority sets the priority.
func WithWorkOrderPriority(priority application.WorkOrderPriority) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.Priority = priority
	}
}

// WithWorkOrderDates sets the start and due timestamps.
func WithWorkOrderDates(start time.Time, due *time.Time) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.Start = start
		f.Due = due
	}
}

// WithWorkOrderRecurrence sets the recurrence rule.
func WithWorkOrderRecurrence(rule recurrence.Rule) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.Recurrence = rule
	}
}

// WithWorkOrderAssignees sets the assignee identifiers.
func WithWorkOrderAssignees(ids ...string) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.AssigneeIDs = ids
	}
}

// WithWorkOrderAsset links the order to an asset.
func WithWorkOrderAsset(assetID string) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.AssetID = &assetID
	}
}

// WithWorkOrderCreator sets the creating user.
func WithWorkOrderCreator(userID string) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.CreatedBy = userID
	}
}

// WithWorkOrderParent links the order to its recurrence predecessor.
func WithWorkOrderParent(parentID string) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.ParentID = &parentID
	}
}

// Application converts the fixture into the application model.
func (f WorkOrderFixture) Application() application.WorkOrder {
	return application.WorkOrder{
		ID:          f.ID,
		TenantID:    f.TenantID,
		Name:        f.Name,
		Description: copyStringPtr(f.Description),
		Priority:    f.Priority,
		Status:      f.Status,
		Start:       f.Start,
		Due:         copyTimePtr(f.Due),
		Recurrence:  f.Recurrence,
		AssigneeIDs: append([]string(nil), f.AssigneeIDs...),
		AssetID:     copyStringPtr(f.AssetID),
		Location:    copyStringPtr(f.Location),
		Vendors:     append([]string(nil), f.Vendors...),
		Uploads:     append([]string(nil), f.Uploads...),
		CreatedBy:   f.CreatedBy,
		ParentID:    copyStringPtr(f.ParentID),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence converts the fixture into the persistence model.
func (f WorkOrderFixture) Persistence() persistence.WorkOrder {
	rule := persistence.RecurrenceRule{Type: string(f.Recurrence.Type), Interval: f.Recurrence.Interval}
	if f.Recurrence.Weekly != nil {
		rule.DaysOfWeek = append([]time.Weekday(nil), f.Recurrence.Weekly.DaysOfWeek...)
	}
	if f.Recurrence.MonthlyByDate != nil {
		rule.DateOfMonth = f.Recurrence.MonthlyByDate.DateOfMonth
	}
	if f.Recurrence.MonthlyByWeekday != nil {
		rule.WeekOfMonth = string(f.Recurrence.MonthlyByWeekday.Week)
		rule.WeekdayOfMonth = f.Recurrence.MonthlyByWeekday.Day
	}
	if f.Recurrence.Yearly != nil {
		rule.MonthOfYear = f.Recurrence.Yearly.MonthOfYear
	}

	return persistence.WorkOrder{
		ID:          f.ID,
		TenantID:    f.TenantID,
		Name:        f.Name,
		Description: copyStringPtr(f.Description),
		Priority:    string(f.Priority),
		Status:      string(f.Status),
		Start:       f.Start,
		Due:         copyTimePtr(f.Due),
		Recurrence:  rule,
		AssigneeIDs: append([]string(nil), f.AssigneeIDs...),
		AssetID:     copyStringPtr(f.AssetID),
		Location:    copyStringPtr(f.Location),
		Vendors:     append([]string(nil), f.Vendors...),
		Uploads:     append([]string(nil), f.Uploads...),
		CreatedBy:   f.CreatedBy,
		ParentID:    copyStringPtr(f.ParentID),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input converts the fixture into caller-supplied input.
func (f WorkOrderFixture) Input() application.WorkOrderInput {
	return application.WorkOrderInput{
		Name:        f.Name,
		Description: copyStringPtr(f.Description),
		Priority:    f.Priority,
		Status:      f.Status,
		Start:       f.Start,
		Due:         copyTimePtr(f.Due),
		Recurrence:  f.Recurrence,
		AssigneeIDs: append([]string(nil), f.AssigneeIDs...),
		AssetID:     copyStringPtr(f.AssetID),
		Location:    copyStringPtr(f.Location),
		Vendors:     append([]string(nil), f.Vendors...),
		Uploads:     append([]string(nil), f.Uploads...),
	}
}

// Workload converts the fixture into the conflict detection view.
func (f WorkOrderFixture) Workload() workload.Order {
	return workload.Order{
		ID:          f.ID,
		AssigneeIDs: append([]string(nil), f.AssigneeIDs...),
		AssetID:     copyStringPtr(f.AssetID),
		Start:       f.Start,
		Due:         copyTimePtr(f.Due),
	}
}

// ---------------------------- Session fixtures ----------------------------

// SessionFixture represents a deterministic session record.
type SessionFixture struct {
	ID          string
	UserID      string
	Token       string
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RevokedAt   *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		UserID:    "user-001",
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: created.Add(24 * time.Hour),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionUserID overrides the owning user.
func WithSessionUserID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.UserID = id
	}
}

// WithSessionToken overrides the generated token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionExpiresAt sets the expiry timestamp.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = t
	}
}

// WithSessionRevokedAt marks the session revoked at the supplied time.
func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.RevokedAt = &t
	}
}

// Application converts the fixture into the application model.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:          f.ID,
		UserID:      f.UserID,
		Token:       f.Token,
		Fingerprint: f.Fingerprint,
		ExpiresAt:   f.ExpiresAt,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		RevokedAt:   copyTimePtr(f.RevokedAt),
	}
}

// Persistence converts the fixture into the persistence model.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:          f.ID,
		UserID:      f.UserID,
		Token:       f.Token,
		Fingerprint: f.Fingerprint,
		ExpiresAt:   f.ExpiresAt,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		RevokedAt:   copyTimePtr(f.RevokedAt),
	}
}

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	clone := *src
	return &clone
}

func copyTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	clone := *src
	return &clone
}
