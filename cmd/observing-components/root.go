package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gnana997/observing-components/pkg/plugin"
	"github.com/gnana997/observing-components/pkg/util"
)

const rootLongDescription = `observing-components wraps the UI components of JavaScript and TypeScript
modules in a higher-order function, observer from mobx-react-lite by default,
and adds the import the wrapper needs.

Settings come from flags, OBSERVING_* environment variables and the config
file (` + defaultConfigFile + ` unless --config is given), in that order.`

// app holds what the commands of one invocation share.
type app struct {
	v          *viper.Viper
	configPath string
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: newViper(), logger: util.NewDiscardLogger()}

	cmd := &cobra.Command{
		Use:          "observing-components",
		Short:        "Wrap UI components in a higher-order function",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	a.configureRootFlags(cmd)
	cmd.AddCommand(
		newTransformCmd(a),
		newCheckCmd(a),
		newWatchCmd(a),
		newExcludeCmd(a),
		newServeCmd(a),
		newInitCmd(a),
		newVersionCmd(),
	)
	return cmd
}

func (a *app) configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, configFlagName, defaultConfigFile, "config file (yaml or json)")

	flags.String(importPathFlagName, "", "module the wrapper is imported from (required)")
	a.bindFlag(flags.Lookup(importPathFlagName), importPathKey)

	flags.String(importNameFlagName, "", "name of the wrapper function (default \"observer\")")
	a.bindFlag(flags.Lookup(importNameFlagName), importNameKey)

	flags.StringArrayP(excludeFlagName, "x", nil, "glob of files to leave untouched (can be repeated)")
	a.bindFlag(flags.Lookup(excludeFlagName), excludeKey)

	flags.String(logLevelFlagName, "", "log level: debug, info, warn or error")
	a.bindFlag(flags.Lookup(logLevelFlagName), logLevelKey)

	flags.String(logFormatFlagName, "", "log format: text or json")
	a.bindFlag(flags.Lookup(logFormatFlagName), logFormatKey)
}

// bindFlag wires a flag to a viper key so config and env values feed it.
func (a *app) bindFlag(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}
	cobra.CheckErr(a.v.BindPFlag(key, flag))
}

// skipConfigAnnotation marks commands that must not read the config file.
const skipConfigAnnotation = "skip-config"

// setup reads the config file and builds the logger. It runs before every
// command.
func (a *app) setup(cmd *cobra.Command) error {
	if _, skip := cmd.Annotations[skipConfigAnnotation]; !skip {
		explicit := cmd.Flags().Changed(configFlagName)
		if err := readConfigFile(a.v, a.configPath, explicit); err != nil {
			return err
		}
	}

	level, err := util.ParseLogLevel(a.v.GetString(logLevelKey))
	if err != nil {
		return err
	}
	format, err := util.ParseLogFormat(a.v.GetString(logFormatKey))
	if err != nil {
		return err
	}

	a.logger = util.NewLogger(util.LoggerConfig{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	})
	util.SetDefault(a.logger)
	return nil
}

// newPlugin validates the configuration and returns a plugin for it.
// Configuration errors surface here, before any file is touched.
func (a *app) newPlugin() (*plugin.Plugin, error) {
	cfg, err := transformConfig(a.v)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("configuration",
		"import_path", cfg.ImportSource,
		"import_name", cfg.WrapperName,
		"exclude", cfg.ExcludePatterns,
		"wrap_object_properties", cfg.WrapObjectProperties)
	return plugin.NewWithConfig(cfg, a.logger)
}
