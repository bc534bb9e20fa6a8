// Package config assembles the service configuration from defaults,
// an optional JSON file, environment variables and command-line flags,
// in that order of increasing priority.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every setting of the registrar service.
type Config struct {
	RunAddr         string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"loglevel"`
	TrustedSubnet   string        `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" validate:"omitempty,hostname_port"`
	ServiceName     string        `env:"SERVICE_NAME" validate:"required"`
	ConfigFile      string        `env:"CONFIG"`
}

// fileConfig mirrors Config for the JSON file, where durations are strings.
type fileConfig struct {
	RunAddr         string `json:"server_address"`
	LogLevel        string `json:"log_level"`
	TrustedSubnet   string `json:"trusted_subnet"`
	ShutdownTimeout string `json:"shutdown_timeout"`
	OTLPEndpoint    string `json:"otlp_endpoint"`
	ServiceName     string `json:"service_name"`
}

var defaultConfig = Config{
	RunAddr:         ":8080",
	LogLevel:        "info",
	TrustedSubnet:   "",
	ShutdownTimeout: 10 * time.Second,
	OTLPEndpoint:    "",
	ServiceName:     "registrar",
}

var allowedLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"fatal": true,
}

// InitOption customizes New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing makes New ignore os.Args.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds and validates the configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	var fromFlags Config
	visited := map[string]bool{}
	if !options.disableFlagsParsing {
		visited, err = parseFlags(&fromFlags, os.Args[1:])
		if err != nil {
			return nil, err
		}
	}

	var fromEnv Config
	err = env.Parse(&fromEnv)
	if err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `env.Parse()` calling: %w", err)
	}

	configFile := fromEnv.ConfigFile
	if visited["c"] {
		configFile = fromFlags.ConfigFile
	}
	if configFile != "" {
		fromFile, err := loadFile(configFile)
		if err != nil {
			return nil, err
		}
		applyDefaults(values, *fromFile)
		values.ConfigFile = configFile
	}

	applyDefaults(values, fromEnv)
	applyFlags(values, &fromFlags, visited)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}

// applyDefaults copies every non-zero field of src over dst.
func applyDefaults(dst *Config, src Config) {
	if src.RunAddr != "" {
		dst.RunAddr = src.RunAddr
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.TrustedSubnet != "" {
		dst.TrustedSubnet = src.TrustedSubnet
	}
	if src.ShutdownTimeout != 0 {
		dst.ShutdownTimeout = src.ShutdownTimeout
	}
	if src.OTLPEndpoint != "" {
		dst.OTLPEndpoint = src.OTLPEndpoint
	}
	if src.ServiceName != "" {
		dst.ServiceName = src.ServiceName
	}
	if src.ConfigFile != "" {
		dst.ConfigFile = src.ConfigFile
	}
}

func parseFlags(values *Config, args []string) (map[string]bool, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.StringVar(&values.RunAddr, "a", "", "address and port to run server")
	flags.StringVar(&values.LogLevel, "l", "", "logger level")
	flags.StringVar(&values.TrustedSubnet, "t", "", "trusted subnet (CIDR) allowed to query internal endpoints")
	flags.DurationVar(&values.ShutdownTimeout, "s", 0, "graceful shutdown timeout")
	flags.StringVar(&values.OTLPEndpoint, "o", "", "OTLP gRPC collector endpoint, tracing export is off when empty")
	flags.StringVar(&values.ServiceName, "n", "", "service name reported to the tracing backend")
	flags.StringVar(&values.ConfigFile, "c", "", "path to the JSON configuration file")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	visited := map[string]bool{}
	flags.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})

	return visited, nil
}

func applyFlags(dst *Config, src *Config, visited map[string]bool) {
	if visited["a"] {
		dst.RunAddr = src.RunAddr
	}
	if visited["l"] {
		dst.LogLevel = src.LogLevel
	}
	if visited["t"] {
		dst.TrustedSubnet = src.TrustedSubnet
	}
	if visited["s"] {
		dst.ShutdownTimeout = src.ShutdownTimeout
	}
	if visited["o"] {
		dst.OTLPEndpoint = src.OTLPEndpoint
	}
	if visited["n"] {
		dst.ServiceName = src.ServiceName
	}
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/loadFile(): error while `os.ReadFile()` calling: %w", err)
	}

	var raw fileConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/loadFile(): error while `json.Unmarshal()` calling: %w", err)
	}

	result := &Config{
		RunAddr:       raw.RunAddr,
		LogLevel:      raw.LogLevel,
		TrustedSubnet: raw.TrustedSubnet,
		OTLPEndpoint:  raw.OTLPEndpoint,
		ServiceName:   raw.ServiceName,
	}
	if raw.ShutdownTimeout != "" {
		result.ShutdownTimeout, err = time.ParseDuration(raw.ShutdownTimeout)
		if err != nil {
			return nil, fmt.Errorf("in internal/config/config.go/loadFile(): bad shutdown_timeout: %w", err)
		}
	}

	return result, nil
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	return allowedLogLevels[fieldLevel.Field().String()]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}
