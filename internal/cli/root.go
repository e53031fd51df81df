package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vk/declrt/internal/app"
	"github.com/vk/declrt/internal/config"
	"github.com/vk/declrt/internal/hcl_adapter"
	"github.com/vk/declrt/internal/registry"
)

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "DECLRT"

// Options carries dependencies shared by every command.
type Options struct {
	Out    io.Writer
	ErrOut io.Writer
	// Loader defaults to the HCL loader.
	Loader config.Loader
	// Modules defaults to the app's core modules printing to Out.
	Modules []registry.Module
}

// Execute builds the command tree, runs it with args and returns the first
// error. Usage problems are returned as *ExitError with code 2.
func Execute(ctx context.Context, opts Options, args []string) error {
	cmd := NewRootCommand(opts)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// NewRootCommand creates the declrt command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Loader == nil {
		opts.Loader = hcl_adapter.NewLoader()
	}
	v := viper.New()

	root := &cobra.Command{
		Use:   "declrt",
		Short: "Runtime declaration registry for ahead-of-time compiled units.",
		Long: `declrt loads unit manifests, checks them against the Go modules compiled
into the binary, and runs units in isolated run contexts.

Manifest paths are .hcl files or directories containing them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return usageError(bindSettings(v, cmd.Flags()))
		},
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.ErrOut)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	addGlobalFlags(root.PersistentFlags())

	root.AddCommand(
		newCheckCommand(v, opts),
		newListCommand(v, opts),
		newRunCommand(v, opts),
	)
	return root
}

func addGlobalFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Config file (yaml, toml or json by extension).")
	flags.String("root", "", "Root path units are registered relative to.")
	flags.String("working-dir", "", "Directory relative include paths resolve against.")
	flags.StringSlice("include-path", nil, "Include search directory (repeatable).")
	flags.String("log-level", "info", "Logging level: debug, info, warn or error.")
	flags.String("log-format", "text", "Log output format: text or json.")
	flags.Int("workers", 10, "Maximum number of concurrent runs.")
}

// bindSettings layers flags over environment variables over the config file.
func bindSettings(v *viper.Viper, flags *pflag.FlagSet) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
		slog.Debug("Config file loaded.", "path", v.ConfigFileUsed())
	}
	return nil
}

// appConfig builds the validated application configuration. Positional
// manifest paths win over the "manifests" setting.
func appConfig(v *viper.Viper, manifests []string) (*app.Config, error) {
	if len(manifests) == 0 {
		manifests = v.GetStringSlice("manifests")
	}
	cfg, err := app.NewConfig(app.Config{
		ManifestPaths:    manifests,
		RootPath:         v.GetString("root"),
		WorkingDirectory: v.GetString("working-dir"),
		IncludePaths:     v.GetStringSlice("include-path"),
		LogFormat:        strings.ToLower(v.GetString("log-format")),
		LogLevel:         strings.ToLower(v.GetString("log-level")),
		WorkerCount:      v.GetInt("workers"),
		Runs:             v.GetInt("runs"),
	})
	if err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command, v *viper.Viper, opts Options, manifests []string) (*app.App, *app.Config, error) {
	cfg, err := appConfig(v, manifests)
	if err != nil {
		return nil, nil, err
	}
	modules := opts.Modules
	if len(modules) == 0 {
		modules = app.CoreModules(cmd.OutOrStdout())
	}
	a, err := app.NewApp(cmd.Context(), cmd.ErrOrStderr(), cfg, opts.Loader, modules...)
	if err != nil {
		return nil, nil, err
	}
	return a, cfg, nil
}
