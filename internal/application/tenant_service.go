package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/cmms-backend/internal/calendar"
	"github.com/example/cmms-backend/internal/persistence"
)

// TenantRepository captures the persistence operations needed by the service.
type TenantRepository interface {
	CreateTenant(ctx context.Context, tenant Tenant) (Tenant, error)
	GetTenant(ctx context.Context, id string) (Tenant, error)
	UpdateTenant(ctx context.Context, tenant Tenant) (Tenant, error)
	ListTenants(ctx context.Context) ([]Tenant, error)
}

// TenantService manages organizations and their working-day configuration.
type TenantService struct {
	tenants     TenantRepository
	workingDays *workingDaysCache
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTenantService constructs a tenant service with the provided dependencies.
func NewTenantService(tenants TenantRepository, idGenerator func() string, now func() time.Time) *TenantService {
	return NewTenantServiceWithLogger(tenants, idGenerator, now, nil)
}

// NewTenantServiceWithLogger constructs a tenant service with a specified logger.
func NewTenantServiceWithLogger(tenants TenantRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TenantService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TenantService{
		tenants:     tenants,
		workingDays: newWorkingDaysCache(time.Minute, 256, now),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *TenantService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TenantService", operation, attrs...)
}

// CreateTenant validates input and persists a new tenant for administrators.
func (s *TenantService) CreateTenant(ctx context.Context, params CreateTenantParams) (tenant Tenant, err error) {
	if s == nil {
		err = fmt.Errorf("TenantService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateTenant",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create tenant", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("tenant_id", tenant.ID).InfoContext(ctx, "tenant created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateTenantInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	tenant = Tenant{
		ID:          s.idGenerator(),
		Name:        strings.TrimSpace(params.Input.Name),
		WorkingDays: calendar.WorkingDaysFromAbbreviations(params.Input.WorkingDays),
		CreatedAt:   s.now(),
	}
	tenant.UpdatedAt = tenant.CreatedAt

	if s.tenants == nil {
		return
	}

	var persisted Tenant
	persisted, err = s.tenants.CreateTenant(ctx, tenant)
	if err != nil {
		err = mapTenantRepoError(err)
		return
	}

	tenant = persisted
	return
}

// UpdateTenant validates input and updates an existing tenant for administrators.
func (s *TenantService) UpdateTenant(ctx context.Context, params UpdateTenantParams) (tenant Tenant, err error) {
	if s == nil {
		err = fmt.Errorf("TenantService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.tenants == nil {
		err = fmt.Errorf("tenant repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateTenant",
		"principal_id", params.Principal.UserID,
		"tenant_id", params.TenantID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update tenant", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("tenant_id", tenant.ID).InfoContext(ctx, "tenant updated")
	}()

	var existing Tenant
	existing, err = s.tenants.GetTenant(ctx, params.TenantID)
	if err != nil {
		err = mapTenantRepoError(err)
		return
	}

	vErr := validateTenantInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = strings.TrimSpace(params.Input.Name)
	updated.WorkingDays = calendar.WorkingDaysFromAbbreviations(params.Input.WorkingDays)
	updated.UpdatedAt = s.now()

	tenant, err = s.tenants.UpdateTenant(ctx, updated)
	if err != nil {
		err = mapTenantRepoError(err)
		return
	}

	s.workingDays.Invalidate(tenant.ID)
	return
}

// GetTenant returns a tenant visible to the caller.
func (s *TenantService) GetTenant(ctx context.Context, principal Principal, tenantID string) (tenant Tenant, err error) {
	if s == nil {
		err = fmt.Errorf("TenantService is nil")
		return
	}
	if !principal.IsAdmin && principal.TenantID != tenantID {
		err = ErrUnauthorized
		return
	}
	if s.tenants == nil {
		err = ErrNotFound
		return
	}

	tenant, err = s.tenants.GetTenant(ctx, tenantID)
	if err != nil {
		err = mapTenantRepoError(err)
		return
	}
	return
}

// ListTenants returns all tenants for administrators.
func (s *TenantService) ListTenants(ctx context.Context, principal Principal) (tenants []Tenant, err error) {
	if s == nil {
		err = fmt.Errorf("TenantService is nil")
		return
	}
	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.tenants == nil {
		return nil, nil
	}

	tenants, err = s.tenants.ListTenants(ctx)
	if err != nil {
		err = mapTenantRepoError(err)
		return
	}
	return
}

// WorkingDaysForTenant resolves the working-day set configured for a tenant.
// Results are cached briefly since recurrence processing may look the same
// tenant up many times in quick succession. A missing or misconfigured tenant
// yields the default all-day set.
func (s *TenantService) WorkingDaysForTenant(ctx context.Context, tenantID string) (calendar.WorkingDays, error) {
	if s == nil || s.tenants == nil {
		return calendar.DefaultWorkingDays(), nil
	}

	if days, ok := s.workingDays.Get(tenantID); ok {
		return days, nil
	}

	tenant, err := s.tenants.GetTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return calendar.DefaultWorkingDays(), nil
		}
		return nil, mapTenantRepoError(err)
	}

	days := tenant.WorkingDays
	if len(days) == 0 {
		days = calendar.DefaultWorkingDays()
	}
	s.workingDays.Store(tenantID, days)
	return days, nil
}

func validateTenantInput(input TenantInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	for _, abbr := range input.WorkingDays {
		if _, err := calendar.ParseWeekdayAbbreviation(abbr); err != nil {
			vErr.add("workingDays", fmt.Sprintf("unknown weekday %q", abbr))
			break
		}
	}

	return vErr
}

func mapTenantRepoError(err error) error {
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
	return err
}
