package main

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const envPrefix = "HBCDIS"

// initConfig loads the config file and environment. An explicit --config
// must exist; the default file is optional.
func (a *app) initConfig() error {
	v := a.v
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}
	home, err := homedir.Dir()
	if err != nil {
		return nil
	}
	v.SetConfigFile(filepath.Join(home, ".hbcdis.yaml"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func (a *app) initOutput() {
	if a.v.GetBool("no-color") {
		color.NoColor = true
	}
	if !a.v.GetBool("verbose") {
		a.logger = zerolog.Nop()
		return
	}
	if a.v.GetString("log-format") == "json" {
		a.logger = zerolog.New(a.stderr).With().Timestamp().Logger()
	} else {
		a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, NoColor: color.NoColor}).
			With().Timestamp().Logger()
	}
	a.logger = a.logger.Level(zerolog.DebugLevel)
}
