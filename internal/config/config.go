// Package config loads connection settings for the dbkit command from a YAML
// file, the environment and .env files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/satishbabariya/dbkit/database"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AppFs is the file system configuration and .env files are read from.
var AppFs = afero.NewOsFs()

const (
	configName = ".dbkit"
	envPrefix  = "DBKIT"
)

// keys lists every setting that can come from the environment.
var keys = []string{
	"driver", "host", "port", "socket", "user", "password", "database",
	"select", "prefix", "sql_modes", "utf8mb4", "sslmode", "connect_timeout",
}

// Config is the loaded configuration.
type Config struct {
	// File is the config file that was read, empty when none was found.
	File    string
	Options database.Options
}

// Load reads path, or .dbkit.yaml from the working directory, the home
// directory or ~/.config/dbkit when path is empty. .env and .env.local are
// loaded into the environment first. DBKIT_* variables override the file, and
// flags of the same name that were set on the command line override both.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	if err := loadDotEnv(".env", false); err != nil {
		return nil, err
	}
	if err := loadDotEnv(".env.local", true); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "dbkit"))
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}
	if flags != nil {
		for _, k := range keys {
			if f := flags.Lookup(k); f != nil {
				if err := v.BindPFlag(k, f); err != nil {
					return nil, err
				}
			}
		}
	}
	v.SetDefault("driver", "mysql")
	v.SetDefault("host", "localhost")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{File: v.ConfigFileUsed()}
	if err := v.Unmarshal(&cfg.Options); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// loadDotEnv sets the variables of file. Existing variables are kept unless
// override is set. A missing file is not an error.
func loadDotEnv(file string, override bool) error {
	if _, err := AppFs.Stat(file); err != nil {
		return nil
	}
	data, err := afero.ReadFile(AppFs, file)
	if err != nil {
		return err
	}
	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}
	for k, val := range vars {
		if _, set := os.LookupEnv(k); set && !override {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return err
		}
	}
	return nil
}

// Save writes opts to path, or to ~/.config/dbkit/.dbkit.yaml when path is
// empty, and returns the file written. The password is never saved.
func Save(opts database.Options, path string) (string, error) {
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", err
		}
		dir := filepath.Join(home, ".config", "dbkit")
		if err := AppFs.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		path = filepath.Join(dir, configName+".yaml")
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigType("yaml")
	v.Set("driver", opts.Driver)
	v.Set("host", opts.Host)
	v.Set("database", opts.Database)
	v.Set("prefix", opts.Prefix)
	if opts.Port != 0 {
		v.Set("port", opts.Port)
	}
	if opts.User != "" {
		v.Set("user", opts.User)
	}
	if opts.Socket != "" {
		v.Set("socket", opts.Socket)
	}
	if opts.SSLMode != "" {
		v.Set("sslmode", opts.SSLMode)
	}
	if len(opts.Params) > 0 {
		v.Set("params", opts.Params)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return "", err
	}
	return path, nil
}
