package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/campus-scheduler/internal/application"
	"github.com/example/campus-scheduler/internal/persistence"
)

// ServiceFactory builds application services with deterministic identifiers,
// a controllable clock and a retry policy short enough for tests.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Retry       application.RetryPolicy
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Retry:       FastRetry(),
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

// WithRetry overrides the storage retry policy.
func WithRetry(policy application.RetryPolicy) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Retry = policy
	}
}

// WithLogger sets the logger handed to every service.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// FastRetry retries three times with millisecond delays.
func FastRetry() application.RetryPolicy {
	return application.RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 2,
	}
}

// NewExamService builds an exam service over exams with the given clash scope.
func (f *ServiceFactory) NewExamService(exams persistence.ExamRepository, scope application.ClashScope) *application.ExamService {
	return application.NewExamService(exams, application.ExamServiceConfig{Scope: scope, Retry: f.Retry}, f.IDGenerator.NextFunc(), f.Logger)
}

// NewAssignmentService builds an assignment service.
func (f *ServiceFactory) NewAssignmentService(assignments persistence.AssignmentRepository) *application.AssignmentService {
	return application.NewAssignmentService(assignments, f.Retry, f.IDGenerator.NextFunc(), f.Logger)
}

// NewAttendanceService builds an attendance service driven by the factory clock.
func (f *ServiceFactory) NewAttendanceService(records persistence.AttendanceRepository, window time.Duration) *application.AttendanceService {
	return application.NewAttendanceService(records, window, f.Retry, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// NewCatalogService builds a catalog service.
func (f *ServiceFactory) NewCatalogService(catalog persistence.CatalogRepository) *application.CatalogService {
	return application.NewCatalogService(catalog, f.Retry, f.IDGenerator.NextFunc(), f.Logger)
}
