// Package configfile loads process configuration for authcore binaries.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// command-line flags that were explicitly set.
//
//	redis:
//	  addr: 127.0.0.1:6379
//	log:
//	  level: info
//	auth:
//	  jwt:
//	    access_secret: ...
//	    refresh_secret: ...
//	    access_ttl: 1h
//	  lockout:
//	    threshold: 5
package configfile

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/nuworks/authcore"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// File is the complete process configuration.
type File struct {
	Redis    RedisConfig     `koanf:"redis"`
	Database DatabaseConfig  `koanf:"database"`
	Log      LogConfig       `koanf:"log"`
	Auth     authcore.Config `koanf:"auth"`
}

// RedisConfig locates the ledger. An empty Addr means "use an in-memory
// server" for tools that support it.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// DatabaseConfig locates the credential store.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// LogConfig configures internal/logging.Setup.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Defaults returns the configuration used before any source is applied.
func Defaults() File {
	return File{
		Log:  LogConfig{Level: "info", Format: "json"},
		Auth: authcore.DefaultConfig(),
	}
}

// RegisterFlags adds the overridable settings to fs. Flag names are the
// dotted config keys.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("redis.addr", d.Redis.Addr, "Redis address (empty starts an in-memory server where supported)")
	fs.String("database.url", d.Database.URL, "PostgreSQL URL for the credential store")
	fs.String("log.level", d.Log.Level, "log level: debug, info, warn, error")
	fs.String("log.format", d.Log.Format, "log format: json or text")
	fs.String("auth.session.key_prefix", d.Auth.Session.KeyPrefix, "prefix for every ledger key")
	fs.Int("auth.lockout.threshold", d.Auth.Lockout.Threshold, "failed password attempts before an account is blocked")
	fs.Duration("auth.jwt.access_ttl", d.Auth.JWT.AccessTTL, "access token lifetime")
	fs.Duration("auth.jwt.refresh_ttl", d.Auth.JWT.RefreshTTL, "refresh token lifetime")
	fs.Duration("auth.operation_timeout", d.Auth.OperationTimeout, "timeout for each ledger or database call")
}

// Load applies path (skipped when empty) and the explicitly set flags in fs
// (skipped when nil) on top of Defaults.
func Load(path string, fs *pflag.FlagSet) (File, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return File{}, oops.In("configfile").With("path", path).Wrapf(err, "load config file")
		}
	}
	if fs != nil {
		// A nil koanf instance makes posflag skip flags left at their default.
		if err := k.Load(posflag.Provider(fs, ".", nil), nil); err != nil {
			return File{}, oops.In("configfile").Wrapf(err, "load flags")
		}
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return File{}, oops.In("configfile").Wrapf(err, "decode config")
	}
	return cfg, nil
}
