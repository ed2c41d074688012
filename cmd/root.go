package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ytbrief/internal/config"
	"github.com/xkilldash9x/ytbrief/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// flagKeys maps command-line flags onto config keys. Flags only override
// when set explicitly.
var flagKeys = map[string]string{
	"hours":        "collector.hours_lookback",
	"notebook-url": "notebook.url",
	"output":       "report.output_dir",
	"locale":       "notebook.locale",
	"exec-path":    "browser.exec_path",
}

// NewRootCommand builds a fresh command tree, so tests and repeated
// invocations never share flag state.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "ytbrief",
		Short:         "ytbrief turns the day's YouTube uploads into a NotebookLM briefing.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(cmd, v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "ytbrief"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}
			applyToggles(cmd.Flags(), cfg)

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Configuration loaded.", zap.String("version", Version), zap.String("config_file", v.ConfigFileUsed()))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}
	root.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCmd(), newAskCmd(), newLoginCmd(), newVersionCmd())
	return root
}

// Execute runs the command tree under ctx, which should be signal-aware.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		observability.GetLogger().Error("Command execution failed.", zap.Error(err))
	}
	observability.Sync()
	return err
}

// initializeConfig layers the config file and explicitly set flags over the
// defaults already registered on v. Environment overrides are bound by
// config.NewConfigFromViper.
func initializeConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// applyToggles handles boolean flags that do not map one-to-one onto a key.
func applyToggles(flags *pflag.FlagSet, cfg *config.Config) {
	if on, err := flags.GetBool("verbose"); err == nil && on {
		cfg.Logger.Level = "debug"
	}
	if f := flags.Lookup("show-browser"); f != nil && f.Changed {
		if show, err := flags.GetBool("show-browser"); err == nil {
			cfg.Browser.Headless = !show
		}
	}
}

// configFrom returns the config loaded by the root command.
func configFrom(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}
