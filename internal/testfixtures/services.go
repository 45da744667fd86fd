package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/house-doorbell/internal/application"
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

func (f *ServiceFactory) idFunc(override func() string) func() string {
	if override != nil {
		return override
	}
	return f.IDGenerator.NextFunc()
}

func (f *ServiceFactory) nowFunc(override func() time.Time) func() time.Time {
	if override != nil {
		return override
	}
	return f.Clock.NowFunc()
}

// PartyServiceDeps captures dependencies for constructing a party service.
type PartyServiceDeps struct {
	Parties       application.PartyRepository
	Users         application.UserRepository
	Logs          application.LogRepository
	Notifications *application.NotificationService
	IDGenerator   func() string
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewPartyService builds a party service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewPartyService(deps PartyServiceDeps) *application.PartyService {
	return application.NewPartyService(
		deps.Parties,
		deps.Users,
		deps.Logs,
		deps.Notifications,
		f.idFunc(deps.IDGenerator),
		f.nowFunc(deps.Now),
		deps.Logger,
	)
}

// UserServiceDeps captures dependencies for constructing a user service.
type UserServiceDeps struct {
	Users         application.UserRepository
	HouseState    application.HouseStateRepository
	Logs          application.LogRepository
	Notifications *application.NotificationService
	IDGenerator   func() string
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewUserService builds a user service using the supplied dependencies.
func (f *ServiceFactory) NewUserService(deps UserServiceDeps) *application.UserService {
	return application.NewUserService(
		deps.Users,
		deps.HouseState,
		deps.Logs,
		deps.Notifications,
		f.idFunc(deps.IDGenerator),
		f.nowFunc(deps.Now),
		deps.Logger,
	)
}

// HouseServiceDeps captures dependencies for constructing a house service.
type HouseServiceDeps struct {
	HouseState    application.HouseStateRepository
	Users         application.UserRepository
	Logs          application.LogRepository
	Notifications *application.NotificationService
	IDGenerator   func() string
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewHouseService builds a house service using the supplied dependencies.
func (f *ServiceFactory) NewHouseService(deps HouseServiceDeps) *application.HouseService {
	return application.NewHouseService(
		deps.HouseState,
		deps.Users,
		deps.Logs,
		deps.Notifications,
		f.idFunc(deps.IDGenerator),
		f.nowFunc(deps.Now),
		deps.Logger,
	)
}

// DoorServiceDeps captures dependencies for constructing a door service.
type DoorServiceDeps struct {
	Users                application.UserRepository
	Parties              application.PartyRepository
	Logs                 application.LogRepository
	HouseState           application.HouseStateRepository
	Actuator             application.DoorActuator
	Travel               application.TravelEstimator
	Notifications        *application.NotificationService
	IDGenerator          func() string
	Now                  func() time.Time
	InnerTravelThreshold time.Duration
	Logger               *slog.Logger
}

// NewDoorService builds a door service using the supplied dependencies.
func (f *ServiceFactory) NewDoorService(deps DoorServiceDeps) *application.DoorService {
	return application.NewDoorService(
		deps.Users,
		deps.Parties,
		deps.Logs,
		deps.HouseState,
		deps.Actuator,
		deps.Travel,
		deps.Notifications,
		f.idFunc(deps.IDGenerator),
		f.nowFunc(deps.Now),
		deps.InnerTravelThreshold,
		deps.Logger,
	)
}

// ReminderServiceDeps captures dependencies for constructing a reminder service.
type ReminderServiceDeps struct {
	Parties       application.PartyRepository
	Users         application.UserRepository
	Notifications *application.NotificationService
	Now           func() time.Time
	Interval      time.Duration
	Logger        *slog.Logger
}

// NewReminderService builds a reminder service using the supplied dependencies.
func (f *ServiceFactory) NewReminderService(deps ReminderServiceDeps) *application.ReminderService {
	return application.NewReminderService(
		deps.Parties,
		deps.Users,
		deps.Notifications,
		f.nowFunc(deps.Now),
		deps.Interval,
		deps.Logger,
	)
}
