// Package cli implements the restorm command line: querying configured REST
// collections through the orm package.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kbukum/restorm/config"
	"github.com/kbukum/restorm/httpclient/rest"
	"github.com/kbukum/restorm/logger"
	"github.com/kbukum/restorm/observability"
	"github.com/kbukum/restorm/orm"
	"github.com/kbukum/restorm/version"
)

// EnvPrefix prefixes every environment variable the CLI reads, e.g.
// RESTORM_API_BASE_URL.
const EnvPrefix = "RESTORM"

// flagKeys maps persistent flags onto config keys.
var flagKeys = map[string]string{
	"base-url":      "api.base_url",
	"timeout":       "api.timeout",
	"results-key":   "results_key",
	"environment":   "environment",
	"log-level":     "logging.level",
	"telemetry":     "telemetry.enabled",
	"otlp-endpoint": "telemetry.endpoint",
}

// app is the state shared by the commands of one invocation.
type app struct {
	cfg      *config.Config
	client   *rest.Client
	shutdown observability.ShutdownFunc
	output   string
}

type appKey struct{}

func fromContext(ctx context.Context) *app {
	a, _ := ctx.Value(appKey{}).(*app)
	return a
}

// Execute runs the CLI with args and returns the command error.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var state *app
	root := newRootCmd(&state)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if state != nil {
		if cerr := state.close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func newRootCmd(state **app) *cobra.Command {
	var cfgFile, envFile, output string

	root := &cobra.Command{
		Use:   "restorm",
		Short: "Query REST collections from the command line",
		Long: `restorm reads Django REST framework style collections through the
restorm object mapper. Resources are configured in config.yml or reached
directly by path name.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsSetup(cmd) {
				return nil
			}
			if output != "table" && output != "json" {
				return fmt.Errorf("unknown output format %q (want table or json)", output)
			}
			a, err := setup(cmd.Context(), cmd.Root().PersistentFlags(), cfgFile, envFile)
			if err != nil {
				return err
			}
			a.output = output
			*state = a
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./config.yml)")
	flags.StringVar(&envFile, "env-file", "", "env file (default: ./.env)")
	flags.StringVarP(&output, "output", "o", "table", "output format (table|json)")
	flags.String("base-url", "", "API base URL")
	flags.Duration("timeout", 0, "request timeout")
	flags.String("results-key", "", "envelope key holding list results")
	flags.String("environment", "", "environment (development|staging|production)")
	flags.String("log-level", "", "log level")
	flags.Bool("telemetry", false, "export traces and metrics over OTLP")
	flags.String("otlp-endpoint", "", "OTLP HTTP endpoint host:port")

	_ = root.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newListCommand(),
		newGetCommand(),
		newCountCommand(),
		newResourcesCommand(),
		newPingCommand(),
		newVersionCommand(),
	)
	return root
}

func needsSetup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "completion", "__complete":
		return false
	}
	return true
}

// setup loads the config and points the orm package at the configured API.
func setup(ctx context.Context, flags *pflag.FlagSet, cfgFile, envFile string) (*app, error) {
	cfg := &config.Config{}
	// Commands print results on stdout; keep the log quiet unless asked.
	cfg.Logging.Level = "warn"

	opts := []config.LoaderOption{
		config.WithEnvPrefix(EnvPrefix),
		config.WithFlags(flags, flagKeys),
	}
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	if err := config.LoadConfig(config.ServiceName, cfg, opts...); err != nil {
		return nil, err
	}
	logger.Init(&cfg.Logging)

	metrics, shutdown, err := observability.Setup(ctx, cfg.Name, version.Short(), cfg.Environment, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	client, err := rest.New(cfg.API)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("api client: %w", err)
	}
	orm.SetDefaultClient(client)
	orm.SetMetrics(metrics)

	logger.Get("cli").Debug("configured", logger.Fields(
		"base_url", cfg.API.BaseURL,
		"resources", cfg.ResourceNames(),
		"telemetry", cfg.Telemetry.Enabled,
	))
	return &app{cfg: cfg, client: client, shutdown: shutdown}, nil
}

func (a *app) close(ctx context.Context) error {
	orm.SetDefaultClient(nil)
	orm.SetMetrics(nil)
	if a.shutdown == nil {
		return nil
	}
	return a.shutdown(ctx)
}
