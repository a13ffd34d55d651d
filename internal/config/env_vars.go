package config

import "time"

const envPrefix = "TREKKER_"

// EnvVars is parsed from TREKKER_* environment variables.
type EnvVars struct {
	AppName     string        `env:"APP_NAME" envDefault:"Trekker" validate:"required"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error disabled"`
	APIURL      string        `env:"API_URL" envDefault:"http://127.0.0.1:8000/api" validate:"required,url"`
	AuthURL     string        `env:"AUTH_URL" validate:"omitempty,url"` // defaults to APIURL
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	Store       StoreKind     `env:"STORE" envDefault:"sqlite" validate:"oneof=sqlite redis memory"`
	SQLitePath  string        `env:"SQLITE_PATH" envDefault:"./data/session.db" validate:"required_if=Store sqlite"`
	RedisURL    string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0" validate:"required_if=Store redis"`
	RedisPrefix string        `env:"REDIS_PREFIX" envDefault:"trekker:session"`
}

var _ Config = mainConfig{}

func (e EnvVars) GetAppName() string { return e.AppName }
func (e EnvVars) GetLogLevel() string { return e.LogLevel }
func (e EnvVars) GetAPIURL() string { return e.APIURL }
func (e EnvVars) GetAuthURL() string { return e.AuthURL }
func (e EnvVars) GetHTTPTimeout() time.Duration { return e.HTTPTimeout }
func (e EnvVars) GetStoreKind() StoreKind { return e.Store }
func (e EnvVars) GetSQLitePath() string { return e.SQLitePath }
func (e EnvVars) GetRedisURL() string { return e.RedisURL }
func (e EnvVars) GetRedisPrefix() string { return e.RedisPrefix }
