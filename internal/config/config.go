package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	HTTPConfig
	StoreConfig
}

type EnvConfig interface {
	GetAppName() string
	GetLogLevel() string
}

type HTTPConfig interface {
	GetAPIURL() string
	GetAuthURL() string
	GetHTTPTimeout() time.Duration
}

type StoreConfig interface {
	GetStoreKind() StoreKind
	GetSQLitePath() string
	GetRedisURL() string
	GetRedisPrefix() string
}

type StoreKind string

const (
	StoreSQLite StoreKind = "sqlite"
	StoreRedis  StoreKind = "redis"
	StoreMemory StoreKind = "memory"
)

type mainConfig struct {
	EnvVars
}

// New loads an optional .env file (files, or ".env" when none are given),
// parses TREKKER_* variables and validates the result.
func New(files ...string) (Config, error) {
	if len(files) == 0 {
		// A missing default .env is fine.
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return nil, errors.Wrap(err, "[config.New] godotenv.Load")
	}

	var vars EnvVars
	if err := env.ParseWithOptions(&vars, env.Options{Prefix: envPrefix}); err != nil {
		return nil, errors.Wrap(err, "[config.New] env.Parse")
	}
	if vars.AuthURL == "" {
		vars.AuthURL = vars.APIURL
	}
	if err := vars.Validate(); err != nil {
		return nil, err
	}
	return mainConfig{EnvVars: vars}, nil
}

// Validate checks the parsed variables against their validate tags.
func (e EnvVars) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.Errorf("[config.Validate] %s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return errors.Wrap(err, "[config.Validate]")
	}
	return nil
}
