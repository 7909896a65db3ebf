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
)

// AssetRepository captures the persistence operations needed by the service.
type AssetRepository interface {
	CreateAsset(ctx context.Context, asset Asset) (Asset, error)
	GetAsset(ctx context.Context, id string) (Asset, error)
	UpdateAsset(ctx context.Context, asset Asset) (Asset, error)
	DeleteAsset(ctx context.Context, id string) error
	ListAssets(ctx context.Context, tenantID string) ([]Asset, error)
}

// AssetService orchestrates validation, authorization, and persistence for assets.
type AssetService struct {
	assets      AssetRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAssetService constructs an asset service with the provided dependencies.
func NewAssetService(assets AssetRepository, idGenerator func() string, now func() time.Time) *AssetService {
	return NewAssetServiceWithLogger(assets, idGenerator, now, nil)
}

// NewAssetServiceWithLogger constructs an asset service with a specified logger.
func NewAssetServiceWithLogger(assets AssetRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AssetService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AssetService{assets: assets, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *AssetService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AssetService", operation, attrs...)
}

// CreateAsset validates input and persists a new asset in the caller's tenant.
func (s *AssetService) CreateAsset(ctx context.Context, params CreateAssetParams) (asset Asset, err error) {
	if s == nil {
		err = fmt.Errorf("AssetService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateAsset",
		"principal_id", params.Principal.UserID,
		"tenant_id", params.Principal.TenantID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create asset", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("asset_id", asset.ID).InfoContext(ctx, "asset created")
	}()

	if params.Principal.TenantID == "" {
		err = ErrUnauthorized
		return
	}

	vErr := validateAssetInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	asset = Asset{
		ID:           s.idGenerator(),
		TenantID:     params.Principal.TenantID,
		Name:         strings.TrimSpace(params.Input.Name),
		Location:     strings.TrimSpace(params.Input.Location),
		SerialNumber: normalizeOptionalString(params.Input.SerialNumber),
		CreatedAt:    s.now(),
	}
	asset.UpdatedAt = asset.CreatedAt

	if s.assets == nil {
		return
	}

	var persisted Asset
	persisted, err = s.assets.CreateAsset(ctx, asset)
	if err != nil {
		err = mapAssetRepoError(err)
		return
	}

	asset = persisted
	return
}

// UpdateAsset validates input and updates an existing asset in the caller's tenant.
func (s *AssetService) UpdateAsset(ctx context.Context, params UpdateAssetParams) (asset Asset, err error) {
	if s == nil {
		err = fmt.Errorf("AssetService is nil")
		return
	}
	if s.assets == nil {
		err = fmt.Errorf("asset repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateAsset",
		"principal_id", params.Principal.UserID,
		"asset_id", params.AssetID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update asset", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("asset_id", asset.ID).InfoContext(ctx, "asset updated")
	}()

	var existing Asset
	existing, err = s.assets.GetAsset(ctx, params.AssetID)
	if err != nil {
		err = mapAssetRepoError(err)
		return
	}
	if existing.TenantID != params.Principal.TenantID {
		err = ErrNotFound
		return
	}

	vErr := validateAssetInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = strings.TrimSpace(params.Input.Name)
	updated.Location = strings.TrimSpace(params.Input.Location)
	updated.SerialNumber = normalizeOptionalString(params.Input.SerialNumber)
	updated.UpdatedAt = s.now()

	asset, err = s.assets.UpdateAsset(ctx, updated)
	if err != nil {
		err = mapAssetRepoError(err)
		return
	}

	return
}

// DeleteAsset removes an existing asset from the caller's tenant.
func (s *AssetService) DeleteAsset(ctx context.Context, principal Principal, assetID string) error {
	if s == nil {
		return fmt.Errorf("AssetService is nil")
	}
	if s.assets == nil {
		return fmt.Errorf("asset repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteAsset",
		"principal_id", principal.UserID,
		"asset_id", assetID,
	)

	existing, err := s.assets.GetAsset(ctx, assetID)
	if err != nil {
		err = mapAssetRepoError(err)
		logger.ErrorContext(ctx, "failed to delete asset", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if existing.TenantID != principal.TenantID {
		logger.ErrorContext(ctx, "failed to delete asset", "error", ErrNotFound, "error_kind", ErrorKind(ErrNotFound))
		return ErrNotFound
	}

	if err := s.assets.DeleteAsset(ctx, assetID); err != nil {
		err = mapAssetRepoError(err)
		logger.ErrorContext(ctx, "failed to delete asset", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "asset deleted")
	return nil
}

// GetAsset returns a single asset visible to the caller's tenant.
func (s *AssetService) GetAsset(ctx context.Context, principal Principal, assetID string) (asset Asset, err error) {
	if s == nil {
		err = fmt.Errorf("AssetService is nil")
		return
	}
	if s.assets == nil {
		err = ErrNotFound
		return
	}

	asset, err = s.assets.GetAsset(ctx, assetID)
	if err != nil {
		err = mapAssetRepoError(err)
		return
	}
	if asset.TenantID != principal.TenantID {
		asset = Asset{}
		err = ErrNotFound
		return
	}
	return
}

// ListAssets returns the asset catalog for the caller's tenant sorted by name.
func (s *AssetService) ListAssets(ctx context.Context, principal Principal) (assets []Asset, err error) {
	if s == nil {
		err = fmt.Errorf("AssetService is nil")
		return
	}
	if s.assets == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListAssets",
		"principal_id", principal.UserID,
		"tenant_id", principal.TenantID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list assets", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(assets)).InfoContext(ctx, "assets listed")
	}()

	var raw []Asset
	raw, err = s.assets.ListAssets(ctx, principal.TenantID)
	if err != nil {
		return
	}

	assets = make([]Asset, len(raw))
	copy(assets, raw)

	sort.Slice(assets, func(i, j int) bool {
		if strings.EqualFold(assets[i].Name, assets[j].Name) {
			return assets[i].ID < assets[j].ID
		}
		return strings.ToLower(assets[i].Name) < strings.ToLower(assets[j].Name)
	})

	return
}

func validateAssetInput(input AssetInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.Location) == "" {
		vErr.add("location", "location is required")
	}

	return vErr
}

func mapAssetRepoError(err error) error {
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
		return ErrConflict
	}
	return err
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
