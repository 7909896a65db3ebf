package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/example/cmms-backend/internal/persistence"
)

// TenantRepository implements persistence.TenantRepository using SQLite.
type TenantRepository struct {
	pool *ConnectionPool
}

// NewTenantRepository creates a new SQLite tenant repository.
func NewTenantRepository(pool *ConnectionPool) *TenantRepository {
	return &TenantRepository{pool: pool}
}

// CreateTenant inserts a new tenant.
func (r *TenantRepository) CreateTenant(ctx context.Context, tenant persistence.Tenant) error {
	if tenant.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO tenants (id, name, working_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		tenant.ID,
		tenant.Name,
		strings.Join(tenant.WorkingDays, ","),
		formatTime(tenant.CreatedAt),
		formatTime(tenant.UpdatedAt),
	)
	return mapError(err)
}

// UpdateTenant updates an existing tenant.
func (r *TenantRepository) UpdateTenant(ctx context.Context, tenant persistence.Tenant) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE tenants SET name = ?, working_days = ?, updated_at = ?
		WHERE id = ?
	`,
		tenant.Name,
		strings.Join(tenant.WorkingDays, ","),
		formatTime(tenant.UpdatedAt),
		tenant.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// GetTenant retrieves a tenant by ID.
func (r *TenantRepository) GetTenant(ctx context.Context, id string) (persistence.Tenant, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, name, working_days, created_at, updated_at
		FROM tenants WHERE id = ?
	`, id)
	return scanTenant(row)
}

// ListTenants returns all tenants ordered by creation time.
func (r *TenantRepository) ListTenants(ctx context.Context) ([]persistence.Tenant, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, name, working_days, created_at, updated_at
		FROM tenants ORDER BY created_at, id
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var tenants []persistence.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, mapError(rows.Err())
}

// DeleteTenant removes a tenant by ID.
func (r *TenantRepository) DeleteTenant(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (persistence.Tenant, error) {
	var (
		tenant      persistence.Tenant
		workingDays string
		createdAt   string
		updatedAt   string
	)
	if err := row.Scan(&tenant.ID, &tenant.Name, &workingDays, &createdAt, &updatedAt); err != nil {
		return persistence.Tenant{}, mapError(err)
	}

	if workingDays != "" {
		tenant.WorkingDays = strings.Split(workingDays, ",")
	}

	var err error
	if tenant.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Tenant{}, err
	}
	if tenant.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Tenant{}, err
	}
	return tenant, nil
}

// requireRowAffected converts a zero-row update or delete into ErrNotFound.
func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, errors.New("sqlite: malformed timestamp " + value)
	}
	return t, nil
}

func formatNullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullableTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPointer(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}
