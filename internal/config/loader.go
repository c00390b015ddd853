package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := populate(reflect.ValueOf(cfg).Elem(), os.Getenv); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envTag is the parsed env/envAlt/default/required tag set of one field.
type envTag struct {
	names    []string
	fallback string
	required bool
}

func parseTag(f reflect.StructField) (envTag, bool) {
	name := f.Tag.Get("env")
	if name == "" {
		return envTag{}, false
	}
	tag := envTag{
		names:    []string{name},
		fallback: f.Tag.Get("default"),
		required: f.Tag.Get("required") == "true",
	}
	if alt := f.Tag.Get("envAlt"); alt != "" {
		tag.names = append(tag.names, alt)
	}
	return tag, true
}

// resolve returns the first non-empty variable, else the default.
// An empty variable counts as unset.
func (t envTag) resolve(getenv func(string) string) (string, error) {
	for _, n := range t.names {
		if v := getenv(n); v != "" {
			return v, nil
		}
	}
	if t.required {
		return "", fmt.Errorf("required environment variable %s is not set", t.names[0])
	}
	return t.fallback, nil
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// populate fills tagged fields of v, recursing into nested sections.
func populate(v reflect.Value, getenv func(string) string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != timeType {
			if err := populate(fv, getenv); err != nil {
				return err
			}
			continue
		}

		tag, ok := parseTag(field)
		if !ok {
			continue
		}
		raw, err := tag.resolve(getenv)
		if err != nil {
			return err
		}
		if raw == "" {
			continue
		}
		if err := assign(fv, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", tag.names[0], raw, err)
		}
	}

	return nil
}

// assign parses raw into the field's type.
func assign(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		fv.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", fv.Type().Elem().Kind())
		}
		fv.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type: %s", fv.Kind())
	}
	return nil
}

// splitList splits a comma-separated list, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// problems collects validation failures.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var p problems

	p.check(c.Server.Port > 0 && c.Server.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	p.check(c.Server.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(c.Server.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")

	p.check(len(c.Data.FactbookSources) > 0, "FACTBOOK_SOURCES must list at least one source")
	p.check(len(c.Data.PipelineSources) > 0, "PIPELINE_SOURCES must list at least one source")
	p.check(c.Data.LoadTimeout > 0, "DATA_LOAD_TIMEOUT must be positive")
	p.check(!c.usesPostgres() || c.Database.URL != "", "DATABASE_URL is required when a pg: source is configured")

	p.check(c.Database.MaxConns > 0, "DB_MAX_CONNS must be positive")
	p.check(c.Database.MinConns >= 0, "DB_MIN_CONNS must be non-negative")
	p.check(c.Database.MaxConns >= c.Database.MinConns,
		"DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.Database.MaxConns, c.Database.MinConns)

	p.check(c.Session.CookieName != "", "SESSION_COOKIE_NAME must not be empty")
	p.check(c.Session.TTL > 0, "SESSION_TTL must be positive")
	p.check(c.Session.SweepInterval > 0, "SESSION_SWEEP_INTERVAL must be positive")
	p.check(c.Session.MaxTags > 0, "SESSION_MAX_TAGS must be positive")

	p.check(c.Summary.MaxTokens > 0, "SUMMARY_MAX_TOKENS must be positive")
	p.check(c.Summary.Timeout > 0, "SUMMARY_TIMEOUT must be positive")
	p.check(c.Summary.MaxConcurrent > 0, "SUMMARY_MAX_CONCURRENT must be positive")
	p.check(!c.Summary.SummaryEnabled() || c.Summary.Model != "", "SUMMARY_MODEL is required when ANTHROPIC_API_KEY is set")

	if c.Rate.Enabled {
		p.check(c.Rate.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		p.check(c.Rate.SummaryLimit > 0, "RATE_LIMIT_SUMMARY must be positive when rate limiting is enabled")
	}

	p.check(!c.Security.RequireAPIKey || len(c.Security.APIKeys) > 0,
		"REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.check(false, "LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		p.check(false, "LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(p) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

// usesPostgres reports whether any configured source reads from Postgres.
func (c *Config) usesPostgres() bool {
	all := append([]string{c.Data.MappingSource}, c.Data.FactbookSources...)
	for _, s := range append(all, c.Data.PipelineSources...) {
		if strings.HasPrefix(strings.TrimSpace(s), "pg:") {
			return true
		}
	}
	return false
}

// String returns a safe representation of the config for logging.
// The database URL and API keys are masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Server: {Addr: %q}, Data: {Factbook: %q, Pipeline: %q, Mapping: %q}, "+
		"Database: {URL: %s, MaxConns: %d}, Summary: {APIKey: %s, Model: %q}, "+
		"Rate: {Enabled: %v, RequestsPerMinute: %d}, Security: {APIKeys: %d}, Logging: {Level: %q, Format: %q}}",
		c.Server.Addr(),
		c.Data.FactbookSources, c.Data.PipelineSources, c.Data.MappingSource,
		mask(c.Database.URL), c.Database.MaxConns,
		mask(c.Summary.APIKey), c.Summary.Model,
		c.Rate.Enabled, c.Rate.RequestsPerMinute,
		len(c.Security.APIKeys),
		c.Logging.Level, c.Logging.Format,
	)
}

func mask(secret string) string {
	if secret == "" {
		return "[unset]"
	}
	return "[MASKED]"
}
