package store

import (
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config supplies the store base path and the reference timezone used for
// calendar-day keys.
type Config interface {
	BasePath() string
	Location() *time.Location
}

// LoadConfig reads the .donelog config file (current directory or the path in
// DONELOG_CONFIG_PATH) with DONELOG_* environment overrides.
//
// Settings:
//
//	path      base directory for the journal store (default ~/.donelog.db)
//	timezone  IANA zone name for day keys (default: process-local zone)
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetDefault("path", "~/.donelog.db")
	v.SetDefault("timezone", "")
	v.SetConfigName(".donelog")
	v.SetEnvPrefix("DONELOG")
	v.AutomaticEnv()

	if override := v.GetString("config_path"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, err
	}

	loc := time.Local
	if name := v.GetString("timezone"); name != "" {
		if parsed, err := time.LoadLocation(name); err == nil {
			loc = parsed
		}
	}

	return &fileConfig{path: path, loc: loc}, nil
}

type fileConfig struct {
	path string
	loc  *time.Location
}

func (f *fileConfig) BasePath() string         { return f.path }
func (f *fileConfig) Location() *time.Location { return f.loc }
