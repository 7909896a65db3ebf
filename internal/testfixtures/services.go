package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/cmms-backend/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WorkOrderServiceDeps captures dependencies for constructing a work order service.
type WorkOrderServiceDeps struct {
	Orders      application.WorkOrderRepository
	Processor   application.RecurrenceProcessor
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewWorkOrderService builds a work order service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewWorkOrderService(deps WorkOrderServiceDeps) *application.WorkOrderService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewWorkOrderServiceWithLogger(
		deps.Orders,
		deps.Processor,
		idGen,
		now,
		deps.Logger,
	)
}

// RecurrenceOrchestratorDeps captures dependencies for constructing the
// recurrence orchestrator.
type RecurrenceOrchestratorDeps struct {
	Orders      application.WorkOrderWriter
	WorkingDays application.WorkingDaysResolver
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewRecurrenceOrchestrator builds a recurrence orchestrator using the
// supplied dependencies.
func (f *ServiceFactory) NewRecurrenceOrchestrator(deps RecurrenceOrchestratorDeps) *application.RecurrenceOrchestrator {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewRecurrenceOrchestrator(
		deps.Orders,
		deps.WorkingDays,
		idGen,
		now,
		deps.Logger,
	)
}

// AssetServiceDeps captures dependencies for constructing an asset service.
type AssetServiceDeps struct {
	Assets      application.AssetRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewAssetService builds an asset service using the supplied dependencies.
func (f *ServiceFactory) NewAssetService(deps AssetServiceDeps) *application.AssetService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAssetServiceWithLogger(
		deps.Assets,
		idGen,
		now,
		deps.Logger,
	)
}

// TenantServiceDeps captures dependencies for constructing a tenant service.
type TenantServiceDeps struct {
	Tenants     application.TenantRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewTenantService builds a tenant service using the supplied dependencies.
func (f *ServiceFactory) NewTenantService(deps TenantServiceDeps) *application.TenantService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewTenantServiceWithLogger(
		deps.Tenants,
		idGen,
		now,
		deps.Logger,
	)
}

// UserServiceDeps captures dependencies for constructing a user service.
type UserServiceDeps struct {
	Users       application.UserRepository
	IDGenerator func() string
	Now         func() time.Time
}

// NewUserService builds a user service using the supplied dependencies.
func (f *ServiceFactory) NewUserService(deps UserServiceDeps) *application.UserService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewUserService(
		deps.Users,
		idGen,
		now,
	)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.CredentialStore
	Sessions       application.SessionRepository
	PasswordVerify application.PasswordVerifier
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	token := deps.TokenGenerator
	if token == nil {
		token = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.Sessions,
		deps.PasswordVerify,
		token,
		now,
		deps.SessionTTL,
		deps.Logger,
	)
}
