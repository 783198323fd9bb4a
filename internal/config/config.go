package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. USERDATA_MULTI_USER.
const EnvPrefix = "USERDATA"

// Configuration keys shared by flags, environment variables and the config file.
const (
	KeyListen          = "listen"
	KeyUserDirectory   = "user_directory"
	KeyMultiUser       = "multi_user"
	KeyEnvironment     = "environment"
	KeyAllowedOrigins  = "allowed_origins"
	KeyShutdownTimeout = "shutdown_timeout"
)

// Config holds server configuration.
type Config struct {
	Listen          string
	UserDirectory   string
	MultiUser       bool
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	// ConfigFile is the file the settings were read from, empty when none was used.
	ConfigFile string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyListen, "127.0.0.1:8188")
	v.SetDefault(KeyUserDirectory, "user")
	v.SetDefault(KeyMultiUser, false)
	v.SetDefault(KeyEnvironment, "development")
	v.SetDefault(KeyAllowedOrigins, []string{})
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)
}

// Load resolves the configuration from v. configFile is optional; when set it
// must exist and parse.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	cfg := Config{
		Listen:          strings.TrimSpace(v.GetString(KeyListen)),
		UserDirectory:   strings.TrimSpace(v.GetString(KeyUserDirectory)),
		MultiUser:       v.GetBool(KeyMultiUser),
		Environment:     strings.TrimSpace(v.GetString(KeyEnvironment)),
		AllowedOrigins:  normalizeOrigins(v.GetStringSlice(KeyAllowedOrigins)),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
		ConfigFile:      v.ConfigFileUsed(),
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	if c.Listen == "" {
		return errors.New("listen address is required")
	}
	if c.UserDirectory == "" {
		return errors.New("user directory is required")
	}
	abs, err := filepath.Abs(c.UserDirectory)
	if err != nil {
		return fmt.Errorf("resolve user directory: %w", err)
	}
	c.UserDirectory = abs
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	return nil
}

// IsProduction reports whether the configured environment is production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// normalizeOrigins accepts both list values and comma separated strings, as
// environment variables only carry the latter.
func normalizeOrigins(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, origin := range strings.Split(entry, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
