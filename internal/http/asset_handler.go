package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/cmms-backend/internal/application"
)

type assetService interface {
	CreateAsset(ctx context.Context, params application.CreateAssetParams) (application.Asset, error)
	UpdateAsset(ctx context.Context, params application.UpdateAssetParams) (application.Asset, error)
	DeleteAsset(ctx context.Context, principal application.Principal, assetID string) error
	GetAsset(ctx context.Context, principal application.Principal, assetID string) (application.Asset, error)
	ListAssets(ctx context.Context, principal application.Principal) ([]application.Asset, error)
}

type AssetHandler struct {
	service   assetService
	responder responder
	logger    *slog.Logger
}

func NewAssetHandler(service assetService, logger *slog.Logger) *AssetHandler {
	base := defaultLogger(logger)
	return &AssetHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AssetHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AssetHandler", operation, attrs...)
}

func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode asset request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	asset, err := h.service.CreateAsset(r.Context(), application.CreateAssetParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "asset creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("asset_id", asset.ID).InfoContext(r.Context(), "asset created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toAssetDTO(asset))
}

func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	assetID, ok := AssetIDFromContext(r.Context())
	if !ok || strings.TrimSpace(assetID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing asset id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAssetID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "asset_id", assetID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode asset update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "asset_id", assetID)

	asset, err := h.service.UpdateAsset(r.Context(), application.UpdateAssetParams{
		Principal: principal,
		AssetID:   assetID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "asset update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "asset updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAssetDTO(asset))
}

func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	assetID, ok := AssetIDFromContext(r.Context())
	if !ok || strings.TrimSpace(assetID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing asset id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAssetID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "asset_id", assetID)
	if err := h.service.DeleteAsset(r.Context(), principal, assetID); err != nil {
		logger.ErrorContext(r.Context(), "asset delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "asset deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	assetID, ok := AssetIDFromContext(r.Context())
	if !ok || strings.TrimSpace(assetID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAssetID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "asset_id", assetID)

	asset, err := h.service.GetAsset(r.Context(), principal, assetID)
	if err != nil {
		logger.ErrorContext(r.Context(), "asset fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAssetDTO(asset))
}

func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
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

	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	assets, err := h.service.ListAssets(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "asset list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(assets)).InfoContext(r.Context(), "assets listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAssetsResponse{Assets: toAssetDTOs(assets)})
}

type assetRequest struct {
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	SerialNumber *string `json:"serial_number"`
}

func (r assetRequest) toInput() application.AssetInput {
	return application.AssetInput{
		Name:         strings.TrimSpace(r.Name),
		Location:     strings.TrimSpace(r.Location),
		SerialNumber: r.SerialNumber,
	}
}

type assetDTO struct {
	ID           string  `json:"id"`
	TenantID     string  `json:"tenant_id"`
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	SerialNumber *string `json:"serial_number,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type listAssetsResponse struct {
	Assets []assetDTO `json:"assets"`
}

func toAssetDTO(asset application.Asset) assetDTO {
	return assetDTO{
		ID:           asset.ID,
		TenantID:     asset.TenantID,
		Name:         asset.Name,
		Location:     asset.Location,
		SerialNumber: asset.SerialNumber,
		CreatedAt:    asset.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    asset.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toAssetDTOs(assets []application.Asset) []assetDTO {
	if len(assets) == 0 {
		return nil
	}
	out := make([]assetDTO, 0, len(assets))
	for _, asset := range assets {
		out = append(out, toAssetDTO(asset))
	}
	return out
}
