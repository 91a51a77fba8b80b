package commands

import (
	"context"
	"fmt"
	"kabinet-assist/internal/application"
	"kabinet-assist/internal/components/chrono"
	"kabinet-assist/internal/components/telemetry"
	"kabinet-assist/internal/preferences"
	"kabinet-assist/internal/service"
	"kabinet-assist/pkg/serviceutil"
	"net/http"
	"os"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	serverUrl   string
	token       string
	verbose     bool
	dumpDir     string
	interactive bool
)

// globals is what every subcommand gets after the root command set things up.
type globals struct {
	config application.Config
	api    service.API
	prefs  preferences.Store
}

type globalsKey struct{}

func getGlobals(ctx context.Context) *globals {
	return ctx.Value(globalsKey{}).(*globals)
}

var rootCmd = &cobra.Command{
	Use:   "kabinet-cli",
	Short: "kabinet-cli shows your grades and absences from the UNEC student portal.",
	Long: `kabinet-cli shows your grades and absences from the UNEC student portal.

It reuses the session of a browser that is already logged in, put the value of
the browser's Cookie header in the KABINET_COOKIE environment variable (or .env),
or in the portal.cookie field of config.json5.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		cfg, err := application.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		clock, err := chrono.NewStandardImpl()
		if err != nil {
			return err
		}
		tel := telemetry.SlogAPI{}

		prefs, err := application.OpenPreferences(cmd.Context(), cfg, clock, tel)
		if err != nil {
			return fmt.Errorf("open preferences: %w", err)
		}

		var api service.API
		if serverUrl != "" {
			api = service.NewClient(
				http.DefaultClient,
				serverUrl,
				connect.WithInterceptors(serviceutil.ProvideAccessTokenInterceptor(token)),
			)
		} else {
			var dump telemetry.InstrumentOutput
			if dumpDir != "" {
				output, err := telemetry.NewFilesystemOutput(dumpDir)
				if err != nil {
					return fmt.Errorf("create dump directory: %w", err)
				}
				dump = output
			}
			app, err := application.New(cfg, clock, tel, dump)
			if err != nil {
				return err
			}
			api = app.Service
		}

		cmd.SetContext(context.WithValue(cmd.Context(), globalsKey{}, &globals{
			config: cfg,
			api:    api,
			prefs:  prefs,
		}))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "config.json5", "Path to the configuration file.")
	flags.StringVar(&serverUrl, "server", "", "Base url of a kabinet-server to use instead of scraping in process.")
	flags.StringVar(&token, "token", os.Getenv("KABINET_SERVER_TOKEN"), "Access token of the kabinet-server.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging.")
	flags.StringVar(&dumpDir, "dump", "", "Write every raw http exchange with the portal to this directory.")
	flags.BoolVarP(&interactive, "interactive", "i", false, "Pick the academic year and semester from a list.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printStatus(errorStyle, err.Error())
		os.Exit(1)
	}
}
