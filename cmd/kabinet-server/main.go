package main

import (
	"context"
	"flag"
	"fmt"
	"kabinet-assist/internal/application"
	"kabinet-assist/internal/components/chrono"
	"kabinet-assist/internal/components/telemetry"
	"kabinet-assist/internal/report"
	"kabinet-assist/internal/service"
	"kabinet-assist/pkg/serviceutil"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/pkg/profile"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "config.json5", "Path to the configuration file.")
	dumpDir := flag.String("dump", "", "Write every raw http exchange with the portal to this directory.")
	profileDir := flag.String("profile", "", "Write a cpu profile to this directory on exit.")
	flag.Parse()

	if *profileDir != "" {
		defer profile.Start(
			profile.CPUProfile,
			profile.ProfilePath(*profileDir),
			profile.NoShutdownHook,
		).Stop()
	}

	ctx, cancel := serviceutil.SignalContext()
	defer cancel()

	telemetry.InitSlog(*verbose)
	otel, err := telemetry.SetupFromEnv(ctx, "kabinet-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	defer otel.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx, 5*time.Second)

	cfg, err := application.LoadConfig(*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	clock, err := chrono.NewStandardImpl()
	if err != nil {
		serviceutil.Fatal("load timezone", err)
	}
	tel := telemetry.SlogAPI{}

	var dump telemetry.InstrumentOutput
	if *dumpDir != "" {
		output, err := telemetry.NewFilesystemOutput(*dumpDir)
		if err != nil {
			serviceutil.Fatal("create dump directory", err)
		}
		dump = output
	}

	app, err := application.New(cfg, clock, tel, dump)
	if err != nil {
		serviceutil.Fatal("init application", err)
	}

	accessToken := cfg.Server.AccessToken
	if accessToken == "" {
		accessToken, err = serviceutil.GenerateAccessToken()
		if err != nil {
			serviceutil.Fatal("generate access token", err)
		}
		slog.Info("no access token configured, generated one", "token", accessToken)
	}

	otelIntercept, err := serviceutil.NewConnectOtelInterceptor()
	if err != nil {
		serviceutil.Fatal("init otel interceptor", err)
	}

	mux := http.NewServeMux()
	mux.Handle(service.NewHandler(
		app.Service,
		connect.WithInterceptors(
			otelIntercept,
			serviceutil.VerifyAccessTokenInterceptor(accessToken),
		),
	))

	if cfg.Server.Schedule.Cron != "" {
		err = initSchedule(cfg, app, clock, tel)
		if err != nil {
			serviceutil.Fatal("init scheduled report", err)
		}
	}

	err = serviceutil.StartHttpServer(ctx, cfg.Server.Port, mux)
	if err != nil {
		serviceutil.Fatal(fmt.Sprintf("failed to listen on port %d", cfg.Server.Port), err)
	}
}

func initSchedule(cfg application.Config, app application.Application, clock chrono.API, tel telemetry.API) error {
	mailer, err := report.NewMailer(cfg.Smtp)
	if err != nil {
		return err
	}
	scheduled, err := application.NewScheduledReport(app.Service, mailer, cfg.Server.Schedule, tel)
	if err != nil {
		return err
	}
	cron := chrono.NewStandardCron(tel, clock.Location())
	return scheduled.Register(cron)
}
