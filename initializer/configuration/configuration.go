package configuration

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	loggingclient "code.cloudfoundry.org/diego-logging-client"
	"code.cloudfoundry.org/durationjson"
	"code.cloudfoundry.org/lager/v3"
	"github.com/bluebrain/viztools"
	"github.com/ghodss/yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

const EnvironmentPrefix = "VIZTOOLS_"

var (
	ErrConflictingURLs       = errors.New("service_url and resource_url are mutually exclusive")
	ErrInvalidMaxAttempts    = errors.New("max_attempts must be positive")
	ErrInvalidPollInterval   = errors.New("poll_interval must not be negative")
	ErrIncompleteTLSIdentity = errors.New("the TLS certificate or key is missing")
	ErrInvalidPoolSize       = errors.New("shutdown_pool_size must be positive")
)

type Config struct {
	ServiceURL          string                `json:"service_url,omitempty"`
	APIVersion          string                `json:"api_version,omitempty"`
	ResourceURL         string                `json:"resource_url,omitempty"`
	Owner               string                `json:"owner,omitempty"`
	Renderer            string                `json:"renderer,omitempty"`
	ExclusiveAllocation bool                  `json:"exclusive_allocation"`
	NbNodes             int                   `json:"nb_nodes"`
	NbCPUs              int                   `json:"nb_cpus"`
	NbGPUs              int                   `json:"nb_gpus"`
	AllocationTime      string                `json:"allocation_time,omitempty"`
	Reservation         string                `json:"reservation,omitempty"`
	MaxAttempts         int                   `json:"max_attempts,omitempty"`
	PollInterval        durationjson.Duration `json:"poll_interval,omitempty"`
	ProgressInterval    durationjson.Duration `json:"progress_interval,omitempty"`
	RequestTimeout      durationjson.Duration `json:"request_timeout,omitempty"`
	StreamerURI         string                `json:"streamer_uri,omitempty"`
	PathToTLSCACert     string                `json:"path_to_tls_ca_cert"`
	PathToTLSCert       string                `json:"path_to_tls_cert"`
	PathToTLSKey        string                `json:"path_to_tls_key"`
	SkipCertVerify      bool                  `json:"skip_cert_verify,omitempty"`
	LogLevel            string                `json:"log_level,omitempty"`
	ShutdownPoolSize    int                   `json:"shutdown_pool_size,omitempty"`
	LoggregatorConfig   loggingclient.Config  `json:"loggregator"`
}

func DefaultConfig() Config {
	settings := viztools.DefaultAllocationSettings()
	return Config{
		APIVersion:          "v1",
		Owner:               "viztools",
		Renderer:            settings.Renderer,
		ExclusiveAllocation: settings.ExclusiveAllocation,
		NbNodes:             settings.NbNodes,
		NbCPUs:              settings.NbCPUs,
		NbGPUs:              settings.NbGPUs,
		AllocationTime:      settings.AllocationTime,
		Reservation:         settings.Reservation,
		MaxAttempts:         5,
		PollInterval:        durationjson.Duration(time.Second),
		ProgressInterval:    durationjson.Duration(500 * time.Millisecond),
		RequestTimeout:      durationjson.Duration(time.Minute),
		LogLevel:            "info",
		ShutdownPoolSize:    8,
	}
}

// Load reads a YAML or JSON file on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return config, nil
}

func (c Config) Settings() viztools.AllocationSettings {
	return viztools.AllocationSettings{
		Renderer:            c.Renderer,
		ExclusiveAllocation: c.ExclusiveAllocation,
		NbNodes:             c.NbNodes,
		NbCPUs:              c.NbCPUs,
		NbGPUs:              c.NbGPUs,
		AllocationTime:      c.AllocationTime,
		Reservation:         c.Reservation,
	}
}

func (c Config) Validate() error {
	var result *multierror.Error

	if c.ServiceURL != "" && c.ResourceURL != "" {
		result = multierror.Append(result, ErrConflictingURLs)
	}
	if c.MaxAttempts <= 0 {
		result = multierror.Append(result, ErrInvalidMaxAttempts)
	}
	if c.PollInterval < 0 {
		result = multierror.Append(result, ErrInvalidPollInterval)
	}
	if (c.PathToTLSCert == "") != (c.PathToTLSKey == "") {
		result = multierror.Append(result, ErrIncompleteTLSIdentity)
	}
	if c.ShutdownPoolSize <= 0 {
		result = multierror.Append(result, ErrInvalidPoolSize)
	}
	if _, err := lager.LogLevelFromString(c.LogLevel); err != nil {
		result = multierror.Append(result, fmt.Errorf("log_level: %w", err))
	}

	return result.ErrorOrNil()
}

// LoadEnvironment reads VIZTOOLS_ variables from the given .env files and
// the process environment, which takes precedence.
func LoadEnvironment(paths ...string) (map[string]string, error) {
	env := map[string]string{}

	if len(paths) > 0 {
		fromFiles, err := godotenv.Read(paths...)
		if err != nil {
			return nil, err
		}
		for key, value := range fromFiles {
			if strings.HasPrefix(key, EnvironmentPrefix) {
				env[key] = value
			}
		}
	}

	for _, entry := range os.Environ() {
		key, value, found := strings.Cut(entry, "=")
		if found && strings.HasPrefix(key, EnvironmentPrefix) {
			env[key] = value
		}
	}

	return env, nil
}

type setter func(c *Config, value string) error

var environmentSetters = map[string]setter{
	"SERVICE_URL":          stringSetter(func(c *Config) *string { return &c.ServiceURL }),
	"API_VERSION":          stringSetter(func(c *Config) *string { return &c.APIVersion }),
	"RESOURCE_URL":         stringSetter(func(c *Config) *string { return &c.ResourceURL }),
	"OWNER":                stringSetter(func(c *Config) *string { return &c.Owner }),
	"RENDERER":             stringSetter(func(c *Config) *string { return &c.Renderer }),
	"EXCLUSIVE_ALLOCATION": boolSetter(func(c *Config) *bool { return &c.ExclusiveAllocation }),
	"NB_NODES":             intSetter(func(c *Config) *int { return &c.NbNodes }),
	"NB_CPUS":              intSetter(func(c *Config) *int { return &c.NbCPUs }),
	"NB_GPUS":              intSetter(func(c *Config) *int { return &c.NbGPUs }),
	"ALLOCATION_TIME":      stringSetter(func(c *Config) *string { return &c.AllocationTime }),
	"RESERVATION":          stringSetter(func(c *Config) *string { return &c.Reservation }),
	"MAX_ATTEMPTS":         intSetter(func(c *Config) *int { return &c.MaxAttempts }),
	"POLL_INTERVAL":        durationSetter(func(c *Config) *durationjson.Duration { return &c.PollInterval }),
	"PROGRESS_INTERVAL":    durationSetter(func(c *Config) *durationjson.Duration { return &c.ProgressInterval }),
	"REQUEST_TIMEOUT":      durationSetter(func(c *Config) *durationjson.Duration { return &c.RequestTimeout }),
	"STREAMER_URI":         stringSetter(func(c *Config) *string { return &c.StreamerURI }),
	"PATH_TO_TLS_CA_CERT":  stringSetter(func(c *Config) *string { return &c.PathToTLSCACert }),
	"PATH_TO_TLS_CERT":     stringSetter(func(c *Config) *string { return &c.PathToTLSCert }),
	"PATH_TO_TLS_KEY":      stringSetter(func(c *Config) *string { return &c.PathToTLSKey }),
	"SKIP_CERT_VERIFY":     boolSetter(func(c *Config) *bool { return &c.SkipCertVerify }),
	"LOG_LEVEL":            stringSetter(func(c *Config) *string { return &c.LogLevel }),
	"SHUTDOWN_POOL_SIZE":   intSetter(func(c *Config) *int { return &c.ShutdownPoolSize }),
}

// ApplyEnvironment overrides fields from VIZTOOLS_ variables. Variables that
// name no field are ignored; malformed values are all reported.
func (c *Config) ApplyEnvironment(env map[string]string) error {
	var result *multierror.Error

	for key, value := range env {
		set, ok := environmentSetters[strings.TrimPrefix(key, EnvironmentPrefix)]
		if !ok || !strings.HasPrefix(key, EnvironmentPrefix) {
			continue
		}
		if err := set(c, value); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", key, err))
		}
	}

	return result.ErrorOrNil()
}

func stringSetter(field func(*Config) *string) setter {
	return func(c *Config, value string) error {
		*field(c) = value
		return nil
	}
}

func intSetter(field func(*Config) *int) setter {
	return func(c *Config, value string) error {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*field(c) = parsed
		return nil
	}
}

func boolSetter(field func(*Config) *bool) setter {
	return func(c *Config, value string) error {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		*field(c) = parsed
		return nil
	}
}

func durationSetter(field func(*Config) *durationjson.Duration) setter {
	return func(c *Config, value string) error {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*field(c) = durationjson.Duration(parsed)
		return nil
	}
}
