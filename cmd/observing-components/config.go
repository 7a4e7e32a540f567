package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gnana997/observing-components/pkg/runner"
	"github.com/gnana997/observing-components/pkg/transform"
	"github.com/gnana997/observing-components/pkg/util"
)

const (
	defaultConfigFile = ".observing-components.yaml"
	envPrefix         = "OBSERVING"

	configFlagName     = "config"
	importPathFlagName = "import-path"
	importNameFlagName = "import-name"
	excludeFlagName    = "exclude"
	logLevelFlagName   = "log-level"
	logFormatFlagName  = "log-format"
	workersFlagName    = "workers"
	logFileFlagName    = "log-file"

	importPathKey  = "import_path"
	importNameKey  = "import_name"
	excludeKey     = "exclude"
	wrapObjectsKey = "wrap_object_properties"
	includeKey     = "paths.include"
	skipKey        = "paths.skip"
	workersKey     = "workers"
	logLevelKey    = "log.level"
	logFormatKey   = "log.format"
	mcpLogFileKey  = "serve.log_file"
)

// fileConfig is the layout of the configuration file written by init.
type fileConfig struct {
	ImportPath           string   `yaml:"import_path"`
	ImportName           string   `yaml:"import_name"`
	Exclude              []string `yaml:"exclude"`
	WrapObjectProperties bool     `yaml:"wrap_object_properties"`
	Paths                struct {
		Include []string `yaml:"include"`
		Skip    []string `yaml:"skip"`
	} `yaml:"paths"`
	Workers int `yaml:"workers"`
	Log     struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func defaultFileConfig() fileConfig {
	opts := runner.DefaultOptions()
	cfg := fileConfig{
		ImportPath: "mobx-react-lite",
		ImportName: transform.DefaultWrapperName,
		Exclude:    []string{"**/*.test.*", "**/*.stories.*"},
	}
	cfg.Paths.Include = opts.Include
	cfg.Paths.Skip = opts.Exclude
	cfg.Log.Level = string(util.LevelInfo)
	cfg.Log.Format = string(util.FormatText)
	return cfg
}

// newViper returns a viper instance with defaults and environment binding.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	opts := runner.DefaultOptions()
	v.SetDefault(importNameKey, transform.DefaultWrapperName)
	v.SetDefault(excludeKey, []string{})
	v.SetDefault(wrapObjectsKey, false)
	v.SetDefault(includeKey, opts.Include)
	v.SetDefault(skipKey, opts.Exclude)
	v.SetDefault(workersKey, 0)
	v.SetDefault(logLevelKey, string(util.LevelInfo))
	v.SetDefault(logFormatKey, string(util.FormatText))
	v.SetDefault(mcpLogFileKey, "")
	return v
}

// readConfigFile loads path into v. A missing file is only an error when it
// was asked for explicitly.
func readConfigFile(v *viper.Viper, path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// transformConfig builds and validates the pass configuration from v.
func transformConfig(v *viper.Viper) (transform.Config, error) {
	cfg := transform.Config{
		WrapperName:          v.GetString(importNameKey),
		ImportSource:         v.GetString(importPathKey),
		ExcludePatterns:      v.GetStringSlice(excludeKey),
		WrapObjectProperties: v.GetBool(wrapObjectsKey),
	}.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return transform.Config{}, err
	}
	return cfg, nil
}

// runnerOptions builds runner options from v.
func runnerOptions(v *viper.Viper) runner.Options {
	return runner.Options{
		Include: v.GetStringSlice(includeKey),
		Exclude: v.GetStringSlice(skipKey),
		Workers: v.GetInt(workersKey),
	}
}

// writeDefaultConfig writes the default configuration to path, refusing to
// overwrite an existing file.
func writeDefaultConfig(path string) error {
	data, err := yaml.Marshal(defaultFileConfig())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("config file %s already exists", path)
		}
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
