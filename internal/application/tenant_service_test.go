package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/cmms-backend/internal/calendar"
	"github.com/example/cmms-backend/internal/persistence"
)

type tenantRepoStub struct {
	created   Tenant
	createErr error

	getTenant Tenant
	getErr    error
	getCalls  int

	updated   Tenant
	updateErr error

	list    []Tenant
	listErr error
}

func (r *tenantRepoStub) CreateTenant(ctx context.Context, tenant Tenant) (Tenant, error) {
	if r.createErr != nil {
		return Tenant{}, r.createErr
	}
	r.created = tenant
	return tenant, nil
}

func (r *tenantRepoStub) GetTenant(ctx context.Context, id string) (Tenant, error) {
	r.getCalls++
	if r.getErr != nil {
		return Tenant{}, r.getErr
	}
	if r.getTenant.ID == "" {
		return Tenant{}, persistence.ErrNotFound
	}
	return r.getTenant, nil
}

func (r *tenantRepoStub) UpdateTenant(ctx context.Context, tenant Tenant) (Tenant, error) {
	if r.updateErr != nil {
		return Tenant{}, r.updateErr
	}
	r.updated = tenant
	return tenant, nil
}

func (r *tenantRepoStub) ListTenants(ctx context.Context) ([]Tenant, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.list, nil
}

func TestTenantService_CreateTenant(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewTenantService(nil, nil, nil)

		_, err := svc.CreateTenant(context.Background(), CreateTenantParams{
			Principal: Principal{IsAdmin: false},
			Input:     TenantInput{Name: "Acme"},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects unknown working day abbreviations", func(t *testing.T) {
		svc := NewTenantService(nil, nil, nil)

		_, err := svc.CreateTenant(context.Background(), CreateTenantParams{
			Principal: Principal{IsAdmin: true},
			Input:     TenantInput{Name: "Acme", WorkingDays: []string{"mon", "xyz"}},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["workingDays"]; !ok {
			t.Fatalf("expected workingDays validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("persists tenants with parsed working days", func(t *testing.T) {
		repo := &tenantRepoStub{}
		now := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
		svc := NewTenantService(repo, func() string { return "tenant-1" }, func() time.Time { return now })

		created, err := svc.CreateTenant(context.Background(), CreateTenantParams{
			Principal: Principal{IsAdmin: true},
			Input:     TenantInput{Name: "  Acme  ", WorkingDays: []string{"mon", "tue", "wed", "thu", "fri"}},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if repo.created.Name != "Acme" {
			t.Fatalf("expected name to be trimmed, got %q", repo.created.Name)
		}
		if len(repo.created.WorkingDays) != 5 {
			t.Fatalf("expected five working days, got %d", len(repo.created.WorkingDays))
		}
		if repo.created.WorkingDays.Contains(time.Saturday) {
			t.Fatalf("expected Saturday excluded")
		}
		if created.ID != "tenant-1" {
			t.Fatalf("expected generated ID, got %q", created.ID)
		}
	})
}

func TestTenantService_WorkingDaysForTenant(t *testing.T) {
	t.Run("falls back to every day for missing tenants", func(t *testing.T) {
		repo := &tenantRepoStub{getErr: persistence.ErrNotFound}
		svc := NewTenantService(repo, nil, nil)

		days, err := svc.WorkingDaysForTenant(context.Background(), "missing")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(days) != 7 {
			t.Fatalf("expected all seven days, got %d", len(days))
		}
	})

	t.Run("caches lookups between calls", func(t *testing.T) {
		tenant := Tenant{
			ID:          "tenant-1",
			Name:        "Acme",
			WorkingDays: mustWorkingDays(t, "mon", "wed", "fri"),
		}
		repo := &tenantRepoStub{getTenant: tenant}
		svc := NewTenantService(repo, nil, nil)

		for i := 0; i < 3; i++ {
			days, err := svc.WorkingDaysForTenant(context.Background(), "tenant-1")
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if len(days) != 3 {
				t.Fatalf("expected three days, got %d", len(days))
			}
		}
		if repo.getCalls != 1 {
			t.Fatalf("expected a single repository lookup, got %d", repo.getCalls)
		}
	})

	t.Run("expires cached entries", func(t *testing.T) {
		tenant := Tenant{ID: "tenant-1", Name: "Acme", WorkingDays: mustWorkingDays(t, "mon")}
		repo := &tenantRepoStub{getTenant: tenant}
		current := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
		svc := NewTenantService(repo, nil, func() time.Time { return current })

		if _, err := svc.WorkingDaysForTenant(context.Background(), "tenant-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		current = current.Add(2 * time.Minute)
		if _, err := svc.WorkingDaysForTenant(context.Background(), "tenant-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.getCalls != 2 {
			t.Fatalf("expected a fresh lookup after expiry, got %d calls", repo.getCalls)
		}
	})

	t.Run("update invalidates the cached entry", func(t *testing.T) {
		tenant := Tenant{ID: "tenant-1", Name: "Acme", WorkingDays: mustWorkingDays(t, "mon")}
		repo := &tenantRepoStub{getTenant: tenant}
		svc := NewTenantService(repo, nil, nil)

		if _, err := svc.WorkingDaysForTenant(context.Background(), "tenant-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if _, err := svc.UpdateTenant(context.Background(), UpdateTenantParams{
			Principal: Principal{IsAdmin: true},
			TenantID:  "tenant-1",
			Input:     TenantInput{Name: "Acme", WorkingDays: []string{"tue"}},
		}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		baseline := repo.getCalls
		if _, err := svc.WorkingDaysForTenant(context.Background(), "tenant-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.getCalls != baseline+1 {
			t.Fatalf("expected a fresh lookup after update, got %d calls", repo.getCalls-baseline)
		}
	})
}

func TestTenantService_GetTenant(t *testing.T) {
	t.Run("members may read their own tenant", func(t *testing.T) {
		repo := &tenantRepoStub{getTenant: Tenant{ID: "tenant-1", Name: "Acme"}}
		svc := NewTenantService(repo, nil, nil)

		got, err := svc.GetTenant(context.Background(), Principal{UserID: "u", TenantID: "tenant-1"}, "tenant-1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if got.ID != "tenant-1" {
			t.Fatalf("expected tenant-1, got %q", got.ID)
		}
	})

	t.Run("members may not read other tenants", func(t *testing.T) {
		repo := &tenantRepoStub{getTenant: Tenant{ID: "tenant-2"}}
		svc := NewTenantService(repo, nil, nil)

		_, err := svc.GetTenant(context.Background(), Principal{UserID: "u", TenantID: "tenant-1"}, "tenant-2")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func mustWorkingDays(t *testing.T, abbrs ...string) calendar.WorkingDays {
	t.Helper()
	days := calendar.WorkingDaysFromAbbreviations(abbrs)
	if len(days) != len(abbrs) {
		t.Fatalf("invalid working day fixture %v", abbrs)
	}
	return days
}
