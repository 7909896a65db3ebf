package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/cmms-backend/internal/persistence"
)

// AssetRepository implements persistence.AssetRepository using SQLite.
type AssetRepository struct {
	pool *ConnectionPool
}

// NewAssetRepository creates a new SQLite asset repository.
func NewAssetRepository(pool *ConnectionPool) *AssetRepository {
	return &AssetRepository{pool: pool}
}

const assetColumns = `id, tenant_id, name, location, serial_number, created_at, updated_at`

// CreateAsset inserts a new asset.
func (r *AssetRepository) CreateAsset(ctx context.Context, asset persistence.Asset) error {
	if asset.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO assets (`+assetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		asset.ID,
		asset.TenantID,
		asset.Name,
		asset.Location,
		nullableString(asset.SerialNumber),
		formatTime(asset.CreatedAt),
		formatTime(asset.UpdatedAt),
	)
	return mapError(err)
}

// UpdateAsset updates an existing asset.
func (r *AssetRepository) UpdateAsset(ctx context.Context, asset persistence.Asset) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE assets SET name = ?, location = ?, serial_number = ?, updated_at = ?
		WHERE id = ?
	`,
		asset.Name,
		asset.Location,
		nullableString(asset.SerialNumber),
		formatTime(asset.UpdatedAt),
		asset.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// GetAsset retrieves an asset by ID.
func (r *AssetRepository) GetAsset(ctx context.Context, id string) (persistence.Asset, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = ?`, id)
	return scanAsset(row)
}

// ListAssets returns assets for a tenant ordered by name.
func (r *AssetRepository) ListAssets(ctx context.Context, tenantID string) ([]persistence.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets`
	args := []any{}
	if tenantID != "" {
		query += ` WHERE tenant_id = ?`
		args = append(args, tenantID)
	}
	query += ` ORDER BY name, id`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var assets []persistence.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, mapError(rows.Err())
}

// DeleteAsset removes an asset by ID.
func (r *AssetRepository) DeleteAsset(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

func scanAsset(row rowScanner) (persistence.Asset, error) {
	var (
		asset        persistence.Asset
		serialNumber sql.NullString
		createdAt    string
		updatedAt    string
	)
	if err := row.Scan(
		&asset.ID,
		&asset.TenantID,
		&asset.Name,
		&asset.Location,
		&serialNumber,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Asset{}, mapError(err)
	}

	asset.SerialNumber = stringPointer(serialNumber)

	var err error
	if asset.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Asset{}, err
	}
	if asset.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Asset{}, err
	}
	return asset, nil
}
