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

type tenantService interface {
	CreateTenant(ctx context.Context, params application.CreateTenantParams) (application.Tenant, error)
	UpdateTenant(ctx context.Context, params application.UpdateTenantParams) (application.Tenant, error)
	GetTenant(ctx context.Context, principal application.Principal, tenantID string) (application.Tenant, error)
	ListTenants(ctx context.Context, principal application.Principal) ([]application.Tenant, error)
}

type TenantHandler struct {
	service   tenantService
	responder responder
	logger    *slog.Logger
}

func NewTenantHandler(service tenantService, logger *slog.Logger) *TenantHandler {
	base := defaultLogger(logger)
	return &TenantHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TenantHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TenantHandler", operation, attrs...)
}

func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req tenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode tenant request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	tenant, err := h.service.CreateTenant(r.Context(), application.CreateTenantParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "tenant creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("tenant_id", tenant.ID).InfoContext(r.Context(), "tenant created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toTenantDTO(tenant))
}

func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tenantID, ok := TenantIDFromContext(r.Context())
	if !ok || strings.TrimSpace(tenantID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing tenant id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTenantID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req tenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "tenant_id", tenantID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode tenant update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "tenant_id", tenantID)

	tenant, err := h.service.UpdateTenant(r.Context(), application.UpdateTenantParams{
		Principal: principal,
		TenantID:  tenantID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "tenant update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "tenant updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTenantDTO(tenant))
}

func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tenantID, ok := TenantIDFromContext(r.Context())
	if !ok || strings.TrimSpace(tenantID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTenantID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "tenant_id", tenantID)

	tenant, err := h.service.GetTenant(r.Context(), principal, tenantID)
	if err != nil {
		logger.ErrorContext(r.Context(), "tenant fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTenantDTO(tenant))
}

func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
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
	tenants, err := h.service.ListTenants(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "tenant list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(tenants)).InfoContext(r.Context(), "tenants listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTenantsResponse{Tenants: toTenantDTOs(tenants)})
}

type tenantRequest struct {
	Name        string   `json:"name"`
	WorkingDays []string `json:"working_days"`
}

func (r tenantRequest) toInput() application.TenantInput {
	return application.TenantInput{
		Name:        strings.TrimSpace(r.Name),
		WorkingDays: r.WorkingDays,
	}
}

type tenantDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	WorkingDays []string `json:"working_days"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type listTenantsResponse struct {
	Tenants []tenantDTO `json:"tenants"`
}

func toTenantDTO(tenant application.Tenant) tenantDTO {
	return tenantDTO{
		ID:          tenant.ID,
		Name:        tenant.Name,
		WorkingDays: tenant.WorkingDays.Abbreviations(),
		CreatedAt:   tenant.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   tenant.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toTenantDTOs(tenants []application.Tenant) []tenantDTO {
	if len(tenants) == 0 {
		return nil
	}
	out := make([]tenantDTO, 0, len(tenants))
	for _, tenant := range tenants {
		out = append(out, toTenantDTO(tenant))
	}
	return out
}
