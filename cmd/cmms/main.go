package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/cmms-backend/internal/application"
	"github.com/example/cmms-backend/internal/calendar"
	"github.com/example/cmms-backend/internal/config"
	httptransport "github.com/example/cmms-backend/internal/http"
	"github.com/example/cmms-backend/internal/logging"
	"github.com/example/cmms-backend/internal/persistence"
	"github.com/example/cmms-backend/internal/persistence/sqlite"
	"github.com/example/cmms-backend/internal/recurrence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background(), logger); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	tenantRepo := newTenantRepositoryAdapter(sqlite.NewTenantRepository(pool))
	userRepo := newUserRepositoryAdapter(sqlite.NewUserRepository(pool))
	assetRepo := newAssetRepositoryAdapter(sqlite.NewAssetRepository(pool))
	workOrderRepo := newWorkOrderRepositoryAdapter(sqlite.NewWorkOrderRepository(pool))
	sessionRepo := newSessionRepositoryAdapter(sqlite.NewSessionRepository(pool))
	credentialStore := newCredentialStoreAdapter(sqlite.NewUserRepository(pool))

	tenantService := application.NewTenantServiceWithLogger(tenantRepo, idGenerator, now, logger)
	orchestrator := application.NewRecurrenceOrchestrator(workOrderRepo, tenantService, idGenerator, now, logger)
	workOrderService := application.NewWorkOrderServiceWithLogger(workOrderRepo, orchestrator, idGenerator, now, logger)
	assetService := application.NewAssetServiceWithLogger(assetRepo, idGenerator, now, logger)
	userService := application.NewUserService(userRepo, idGenerator, now)
	authService := application.NewAuthServiceWithLogger(credentialStore, sessionRepo, nil, tokenGenerator, now, cfg.SessionTTL, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:       httptransport.NewAuthHandler(authService, logger),
		WorkOrders: httptransport.NewWorkOrderHandler(workOrderService, logger),
		Assets:     httptransport.NewAssetHandler(assetService, logger),
		Users:      httptransport.NewUserHandler(userService, logger),
		Tenants:    httptransport.NewTenantHandler(tenantService, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sessions" && r.Method == http.MethodPost {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("maintenance API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

type tenantRepositoryAdapter struct {
	repo persistence.TenantRepository
}

func newTenantRepositoryAdapter(repo persistence.TenantRepository) *tenantRepositoryAdapter {
	return &tenantRepositoryAdapter{repo: repo}
}

func (a *tenantRepositoryAdapter) CreateTenant(ctx context.Context, tenant application.Tenant) (application.Tenant, error) {
	if err := a.repo.CreateTenant(ctx, toPersistenceTenant(tenant)); err != nil {
		return application.Tenant{}, err
	}
	stored, err := a.repo.GetTenant(ctx, tenant.ID)
	if err != nil {
		return application.Tenant{}, err
	}
	return toApplicationTenant(stored), nil
}

func (a *tenantRepositoryAdapter) UpdateTenant(ctx context.Context, tenant application.Tenant) (application.Tenant, error) {
	if err := a.repo.UpdateTenant(ctx, toPersistenceTenant(tenant)); err != nil {
		return application.Tenant{}, err
	}
	stored, err := a.repo.GetTenant(ctx, tenant.ID)
	if err != nil {
		return application.Tenant{}, err
	}
	return toApplicationTenant(stored), nil
}

func (a *tenantRepositoryAdapter) GetTenant(ctx context.Context, id string) (application.Tenant, error) {
	stored, err := a.repo.GetTenant(ctx, id)
	if err != nil {
		return application.Tenant{}, err
	}
	return toApplicationTenant(stored), nil
}

func (a *tenantRepositoryAdapter) ListTenants(ctx context.Context) ([]application.Tenant, error) {
	models, err := a.repo.ListTenants(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	tenants := make([]application.Tenant, 0, len(models))
	for _, model := range models {
		tenants = append(tenants, toApplicationTenant(model))
	}
	return tenants, nil
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash, false)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, user application.User) (application.User, error) {
	current, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(user, current.PasswordHash, current.Disabled)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) DeleteUser(ctx context.Context, id string) error {
	return a.repo.DeleteUser(ctx, id)
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context, tenantID string) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

type assetRepositoryAdapter struct {
	repo persistence.AssetRepository
}

func newAssetRepositoryAdapter(repo persistence.AssetRepository) *assetRepositoryAdapter {
	return &assetRepositoryAdapter{repo: repo}
}

func (a *assetRepositoryAdapter) CreateAsset(ctx context.Context, asset application.Asset) (application.Asset, error) {
	if err := a.repo.CreateAsset(ctx, toPersistenceAsset(asset)); err != nil {
		return application.Asset{}, err
	}
	stored, err := a.repo.GetAsset(ctx, asset.ID)
	if err != nil {
		return application.Asset{}, err
	}
	return toApplicationAsset(stored), nil
}

func (a *assetRepositoryAdapter) GetAsset(ctx context.Context, id string) (application.Asset, error) {
	stored, err := a.repo.GetAsset(ctx, id)
	if err != nil {
		return application.Asset{}, err
	}
	return toApplicationAsset(stored), nil
}

func (a *assetRepositoryAdapter) UpdateAsset(ctx context.Context, asset application.Asset) (application.Asset, error) {
	if err := a.repo.UpdateAsset(ctx, toPersistenceAsset(asset)); err != nil {
		return application.Asset{}, err
	}
	stored, err := a.repo.GetAsset(ctx, asset.ID)
	if err != nil {
		return application.Asset{}, err
	}
	return toApplicationAsset(stored), nil
}

func (a *assetRepositoryAdapter) DeleteAsset(ctx context.Context, id string) error {
	return a.repo.DeleteAsset(ctx, id)
}

func (a *assetRepositoryAdapter) ListAssets(ctx context.Context, tenantID string) ([]application.Asset, error) {
	models, err := a.repo.ListAssets(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	assets := make([]application.Asset, 0, len(models))
	for _, model := range models {
		assets = append(assets, toApplicationAsset(model))
	}
	return assets, nil
}

type workOrderRepositoryAdapter struct {
	repo persistence.WorkOrderRepository
}

func newWorkOrderRepositoryAdapter(repo persistence.WorkOrderRepository) *workOrderRepositoryAdapter {
	return &workOrderRepositoryAdapter{repo: repo}
}

func (a *workOrderRepositoryAdapter) CreateWorkOrder(ctx context.Context, order application.WorkOrder) (application.WorkOrder, error) {
	if err := a.repo.CreateWorkOrder(ctx, toPersistenceWorkOrder(order)); err != nil {
		return application.WorkOrder{}, err
	}
	stored, err := a.repo.GetWorkOrder(ctx, order.ID)
	if err != nil {
		return application.WorkOrder{}, err
	}
	return toApplicationWorkOrder(stored), nil
}

func (a *workOrderRepositoryAdapter) GetWorkOrder(ctx context.Context, id string) (application.WorkOrder, error) {
	stored, err := a.repo.GetWorkOrder(ctx, id)
	if err != nil {
		return application.WorkOrder{}, err
	}
	return toApplicationWorkOrder(stored), nil
}

func (a *workOrderRepositoryAdapter) UpdateWorkOrder(ctx context.Context, order application.WorkOrder) (application.WorkOrder, error) {
	if err := a.repo.UpdateWorkOrder(ctx, toPersistenceWorkOrder(order)); err != nil {
		return application.WorkOrder{}, err
	}
	stored, err := a.repo.GetWorkOrder(ctx, order.ID)
	if err != nil {
		return application.WorkOrder{}, err
	}
	return toApplicationWorkOrder(stored), nil
}

func (a *workOrderRepositoryAdapter) UpdateWorkOrderDates(ctx context.Context, id string, start time.Time, due *time.Time, updatedAt time.Time) error {
	return a.repo.UpdateWorkOrderDates(ctx, id, start, due, updatedAt)
}

func (a *workOrderRepositoryAdapter) DeleteWorkOrder(ctx context.Context, id string) error {
	return a.repo.DeleteWorkOrder(ctx, id)
}

func (a *workOrderRepositoryAdapter) ListWorkOrders(ctx context.Context, filter application.WorkOrderRepositoryFilter) ([]application.WorkOrder, error) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, status := range filter.Statuses {
		statuses = append(statuses, string(status))
	}
	models, err := a.repo.ListWorkOrders(ctx, persistence.WorkOrderFilter{
		TenantID:    filter.TenantID,
		Statuses:    statuses,
		AssigneeIDs: append([]string(nil), filter.AssigneeIDs...),
		AssetID:     cloneString(filter.AssetID),
		ParentID:    cloneString(filter.ParentID),
		StartsAfter: filter.StartsAfter,
		DueBefore:   filter.DueBefore,
	})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	orders := make([]application.WorkOrder, 0, len(models))
	for _, model := range models {
		orders = append(orders, toApplicationWorkOrder(model))
	}
	return orders, nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.UpdateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
		Disabled:     stored.Disabled,
	}, nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func toApplicationTenant(model persistence.Tenant) application.Tenant {
	return application.Tenant{
		ID:          model.ID,
		Name:        model.Name,
		WorkingDays: calendar.WorkingDaysFromAbbreviations(model.WorkingDays),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceTenant(tenant application.Tenant) persistence.Tenant {
	return persistence.Tenant{
		ID:          tenant.ID,
		Name:        tenant.Name,
		WorkingDays: tenant.WorkingDays.Abbreviations(),
		CreatedAt:   tenant.CreatedAt,
		UpdatedAt:   tenant.UpdatedAt,
	}
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:          model.ID,
		TenantID:    model.TenantID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		IsAdmin:     model.IsAdmin,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceUser(user application.User, passwordHash string, disabled bool) persistence.User {
	return persistence.User{
		ID:           user.ID,
		TenantID:     user.TenantID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		PasswordHash: passwordHash,
		IsAdmin:      user.IsAdmin,
		Disabled:     disabled,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationAsset(model persistence.Asset) application.Asset {
	return application.Asset{
		ID:           model.ID,
		TenantID:     model.TenantID,
		Name:         model.Name,
		Location:     model.Location,
		SerialNumber: cloneString(model.SerialNumber),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceAsset(asset application.Asset) persistence.Asset {
	return persistence.Asset{
		ID:           asset.ID,
		TenantID:     asset.TenantID,
		Name:         asset.Name,
		Location:     asset.Location,
		SerialNumber: cloneString(asset.SerialNumber),
		CreatedAt:    asset.CreatedAt,
		UpdatedAt:    asset.UpdatedAt,
	}
}

func toApplicationWorkOrder(model persistence.WorkOrder) application.WorkOrder {
	return application.WorkOrder{
		ID:          model.ID,
		TenantID:    model.TenantID,
		Name:        model.Name,
		Description: cloneString(model.Description),
		Priority:    application.WorkOrderPriority(model.Priority),
		Status:      application.WorkOrderStatus(model.Status),
		Start:       model.Start,
		Due:         cloneTime(model.Due),
		Recurrence:  toApplicationRule(model.Recurrence),
		AssigneeIDs: append([]string(nil), model.AssigneeIDs...),
		AssetID:     cloneString(model.AssetID),
		Location:    cloneString(model.Location),
		Vendors:     append([]string(nil), model.Vendors...),
		Uploads:     append([]string(nil), model.Uploads...),
		CreatedBy:   model.CreatedBy,
		ParentID:    cloneString(model.ParentID),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceWorkOrder(order application.WorkOrder) persistence.WorkOrder {
	return persistence.WorkOrder{
		ID:          order.ID,
		TenantID:    order.TenantID,
		Name:        order.Name,
		Description: cloneString(order.Description),
		Priority:    string(order.Priority),
		Status:      string(order.Status),
		Start:       order.Start,
		Due:         cloneTime(order.Due),
		Recurrence:  toPersistenceRule(order.Recurrence),
		AssigneeIDs: append([]string(nil), order.AssigneeIDs...),
		AssetID:     cloneString(order.AssetID),
		Location:    cloneString(order.Location),
		Vendors:     append([]string(nil), order.Vendors...),
		Uploads:     append([]string(nil), order.Uploads...),
		CreatedBy:   order.CreatedBy,
		ParentID:    cloneString(order.ParentID),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

func toApplicationRule(model persistence.RecurrenceRule) recurrence.Rule {
	rule := recurrence.Rule{Type: recurrence.Type(model.Type), Interval: model.Interval}
	switch rule.Type {
	case recurrence.TypeWeekly:
		rule.Weekly = &recurrence.WeeklyDetails{DaysOfWeek: append([]time.Weekday(nil), model.DaysOfWeek...)}
	case recurrence.TypeMonthlyByDate:
		rule.MonthlyByDate = &recurrence.MonthlyByDateDetails{DateOfMonth: model.DateOfMonth}
	case recurrence.TypeMonthlyByWeekday:
		rule.MonthlyByWeekday = &recurrence.MonthlyByWeekdayDetails{
			Week: calendar.WeekOfMonth(model.WeekOfMonth),
			Day:  model.WeekdayOfMonth,
		}
	case recurrence.TypeYearly:
		rule.Yearly = &recurrence.YearlyDetails{MonthOfYear: model.MonthOfYear}
	case "":
		rule.Type = recurrence.TypeNone
	}
	return rule
}

func toPersistenceRule(rule recurrence.Rule) persistence.RecurrenceRule {
	model := persistence.RecurrenceRule{Type: string(rule.Type), Interval: rule.Interval}
	switch rule.Type {
	case recurrence.TypeWeekly:
		if rule.Weekly != nil {
			model.DaysOfWeek = append([]time.Weekday(nil), rule.Weekly.DaysOfWeek...)
		}
	case recurrence.TypeMonthlyByDate:
		if rule.MonthlyByDate != nil {
			model.DateOfMonth = rule.MonthlyByDate.DateOfMonth
		}
	case recurrence.TypeMonthlyByWeekday:
		if rule.MonthlyByWeekday != nil {
			model.WeekOfMonth = string(rule.MonthlyByWeekday.Week)
			model.WeekdayOfMonth = rule.MonthlyByWeekday.Day
		}
	case recurrence.TypeYearly:
		if rule.Yearly != nil {
			model.MonthOfYear = rule.Yearly.MonthOfYear
		}
	}
	return model
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:          model.ID,
		UserID:      model.UserID,
		Token:       model.Token,
		Fingerprint: model.Fingerprint,
		ExpiresAt:   model.ExpiresAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		RevokedAt:   cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:          session.ID,
		UserID:      session.UserID,
		Token:       session.Token,
		Fingerprint: session.Fingerprint,
		ExpiresAt:   session.ExpiresAt,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
		RevokedAt:   cloneTime(session.RevokedAt),
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
