package configs

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/hilthontt/ragtp/internal/infrastructure/env"
	"github.com/hilthontt/ragtp/internal/infrastructure/logging"
	"github.com/hilthontt/ragtp/internal/infrastructure/tracing"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrInvalidPort      = errors.New("invalid port")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidBodyLimit = errors.New("invalid body limit")
)

type Config struct {
	HTTP    HTTPConfig    `koanf:"http"`
	Logger  LoggerConfig  `koanf:"logger"`
	Tracing TracingConfig `koanf:"tracing"`
	Web     WebConfig     `koanf:"web"`
}

type HTTPConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	BodyLimit       int64         `koanf:"body_limit"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr is the host:port the API listens on.
func (c HTTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type LoggerConfig struct {
	Level    string `koanf:"level"`
	Encoding string `koanf:"encoding"`
	Backend  string `koanf:"backend"`
	FilePath string `koanf:"file_path"`
}

type TracingConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	Environment string `koanf:"environment"`
}

type WebConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

func (c WebConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Load builds the configuration snapshot. Precedence, lowest first:
// defaults, the YAML file at path (if any), the process environment.
// A .env file in the working directory is merged into the environment
// without overriding variables that are already set.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	if err := applyEnvOverrides(k); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	// HTTP defaults
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 3000)
	setDefault(k, "http.body_limit", 100*1024)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.idle_timeout", time.Minute)
	setDefault(k, "http.shutdown_timeout", 5*time.Second)

	// Logger defaults
	setDefault(k, "logger.level", "info")
	setDefault(k, "logger.encoding", logging.EncodingConsole)
	setDefault(k, "logger.backend", logging.BackendZap)
	setDefault(k, "logger.file_path", "")

	// Tracing defaults
	setDefault(k, "tracing.enabled", false)
	setDefault(k, "tracing.exporter", "otlp")
	setDefault(k, "tracing.endpoint", "")
	setDefault(k, "tracing.environment", "development")

	// Web shell defaults
	setDefault(k, "web.host", "0.0.0.0")
	setDefault(k, "web.port", 5173)
}

func applyEnvOverrides(k *koanf.Koanf) error {
	// HTTP config from env
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if raw := env.GetString("PORT", ""); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: PORT=%q", ErrInvalidPort, raw)
		}
		k.Set("http.port", port)
	}
	if raw := env.GetString("HTTP_BODY_LIMIT", ""); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: HTTP_BODY_LIMIT=%q", ErrInvalidBodyLimit, raw)
		}
		k.Set("http.body_limit", limit)
	}
	if readTimeout := env.GetInt("HTTP_READ_TIMEOUT_SECONDS", 0); readTimeout > 0 {
		k.Set("http.read_timeout", time.Duration(readTimeout)*time.Second)
	}
	if writeTimeout := env.GetInt("HTTP_WRITE_TIMEOUT_SECONDS", 0); writeTimeout > 0 {
		k.Set("http.write_timeout", time.Duration(writeTimeout)*time.Second)
	}
	if shutdownTimeout := env.GetInt("HTTP_SHUTDOWN_TIMEOUT_SECONDS", 0); shutdownTimeout > 0 {
		k.Set("http.shutdown_timeout", time.Duration(shutdownTimeout)*time.Second)
	}

	// Logger config from env
	if level := env.GetString("LOG_LEVEL", ""); level != "" {
		k.Set("logger.level", level)
	}
	if encoding := env.GetString("LOG_ENCODING", ""); encoding != "" {
		k.Set("logger.encoding", encoding)
	}
	if backend := env.GetString("LOG_BACKEND", ""); backend != "" {
		k.Set("logger.backend", backend)
	}
	if filePath := env.GetString("LOG_FILE", ""); filePath != "" {
		k.Set("logger.file_path", filePath)
	}

	// Tracing config from env
	if enabled := env.GetString("TRACING_ENABLED", ""); enabled != "" {
		k.Set("tracing.enabled", env.GetBool("TRACING_ENABLED", false))
	}
	if exporter := env.GetString("TRACING_EXPORTER", ""); exporter != "" {
		k.Set("tracing.exporter", exporter)
	}
	if endpoint := env.GetString("TRACING_ENDPOINT", ""); endpoint != "" {
		k.Set("tracing.endpoint", endpoint)
	}
	if environment := env.GetString("ENVIRONMENT", ""); environment != "" {
		k.Set("tracing.environment", environment)
	}

	// Web shell config from env
	if host := env.GetString("WEB_HOST", ""); host != "" {
		k.Set("web.host", host)
	}
	if raw := env.GetString("WEB_PORT", ""); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: WEB_PORT=%q", ErrInvalidPort, raw)
		}
		k.Set("web.port", port)
	}

	return nil
}

func (c *Config) validate() error {
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.HTTP.Port)
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Web.Port)
	}
	if c.HTTP.BodyLimit <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBodyLimit, c.HTTP.BodyLimit)
	}
	if !logging.IsValidLevel(c.Logger.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logger.Level)
	}

	switch c.Logger.Backend {
	case logging.BackendZap, logging.BackendZerolog:
	default:
		return fmt.Errorf("%w: %q", logging.ErrUnsupportedBackend, c.Logger.Backend)
	}

	switch c.Tracing.Exporter {
	case tracing.ExporterOTLP, tracing.ExporterJaeger:
	default:
		return fmt.Errorf("%w: %q", tracing.ErrUnsupportedExporter, c.Tracing.Exporter)
	}

	return nil
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value any) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
