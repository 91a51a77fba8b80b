package application

import (
	"context"
	"kabinet-assist/internal/components/chrono"
	"kabinet-assist/internal/components/telemetry"
	"kabinet-assist/internal/grades"
	"kabinet-assist/internal/preferences"
	"kabinet-assist/internal/scrapers/kabinet"
	"kabinet-assist/internal/service"
	"time"
)

// Application is the in process wiring of the portal client, the driver and the service.
type Application struct {
	Client  *kabinet.Client
	Driver  grades.Driver
	Service service.Service
	Time    chrono.API
}

// New wires an Application from `cfg`, `dump` may be nil.
func New(cfg Config, clock chrono.API, tel telemetry.API, dump telemetry.InstrumentOutput) (Application, error) {
	client, err := kabinet.NewClient(kabinet.Options{
		BaseUrl:           cfg.Portal.BaseUrl,
		Cookies:           cfg.Portal.Cookies,
		RawCookie:         cfg.Portal.Cookie,
		Timeout:           seconds(cfg.Portal.TimeoutSeconds),
		RequestsPerSecond: cfg.Portal.RequestsPerSecond,
		CloudflareBypass:  cfg.Portal.CloudflareBypass,
		Dump:              dump,
	}, tel)
	if err != nil {
		return Application{}, err
	}

	driverOpts := []grades.DriverOption{
		grades.WithCustomTelemetryAPI(tel),
		grades.WithCustomTimeAPI(clock),
	}
	if cfg.Portal.DelayMs != nil {
		driverOpts = append(driverOpts, grades.WithInterRequestDelay(milliseconds(*cfg.Portal.DelayMs)))
	}
	driver, err := grades.NewDriver(client, driverOpts...)
	if err != nil {
		return Application{}, err
	}

	svc, err := service.NewService(
		client,
		driver,
		service.WithCustomTelemetryAPI(tel),
		service.WithCustomTimeAPI(clock),
	)
	if err != nil {
		return Application{}, err
	}

	return Application{
		Client:  client,
		Driver:  driver,
		Service: svc,
		Time:    clock,
	}, nil
}

// OpenPreferences opens the configured preferences database.
func OpenPreferences(ctx context.Context, cfg Config, clock chrono.API, tel telemetry.API) (preferences.Store, error) {
	conn, err := cfg.Preferences.OpenDB()
	if err != nil {
		return preferences.Store{}, err
	}
	return preferences.NewStore(ctx, conn, clock, preferences.WithCustomTelemetryAPI(tel))
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func milliseconds(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
