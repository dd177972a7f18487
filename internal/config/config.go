package config

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultUpstreamBaseURL = "https://api-fake-blog.onrender.com"
	defaultUpstreamTimeout = 10 * time.Second
	defaultClickDebounce   = 150 * time.Millisecond
	defaultDetailPath      = "pagina2.html"
	defaultTemplatesDir    = "templates"
	defaultPublicDir       = "public"
	defaultSiteLang        = "pt-BR"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Pages    PagesConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	DevMode      bool
}

// Addr returns the listen address for the configured port.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

// UpstreamConfig points at the third-party blog API.
type UpstreamConfig struct {
	BaseURL string
	// Timeout bounds a single upstream request. Zero disables the bound.
	Timeout time.Duration
	// CacheTTL enables the in-memory response cache when positive.
	CacheTTL time.Duration
}

// PagesConfig controls rendering of the landing and detail pages.
type PagesConfig struct {
	// Lang is the BCP 47 tag rendered on the html element.
	Lang          string
	DetailPath    string
	ClickDebounce time.Duration
	TemplatesDir  string
	PublicDir     string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	// Cloud Run injects PORT; the service-specific key wins when both are set.
	port := stringWithDefault(lookup, "PORT", defaultPort)
	port = stringWithDefault(lookup, "BLOG_SERVER_PORT", port)

	cfg := Config{
		Server: ServerConfig{
			Port:         port,
			ReadTimeout:  durationWithDefault(lookup, "BLOG_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "BLOG_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "BLOG_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			DevMode:      boolWithDefault(lookup, "BLOG_DEV", false),
		},
		Upstream: UpstreamConfig{
			BaseURL:  strings.TrimRight(strings.TrimSpace(stringWithDefault(lookup, "BLOG_UPSTREAM_BASE_URL", defaultUpstreamBaseURL)), "/"),
			Timeout:  durationWithDefault(lookup, "BLOG_UPSTREAM_TIMEOUT", defaultUpstreamTimeout),
			CacheTTL: durationWithDefault(lookup, "BLOG_UPSTREAM_CACHE_TTL", 0),
		},
		Pages: PagesConfig{
			Lang:          canonicalLang(stringWithDefault(lookup, "BLOG_SITE_LANG", defaultSiteLang)),
			DetailPath:    strings.TrimPrefix(stringWithDefault(lookup, "BLOG_DETAIL_PATH", defaultDetailPath), "/"),
			ClickDebounce: durationWithDefault(lookup, "BLOG_CLICK_DEBOUNCE", defaultClickDebounce),
			TemplatesDir:  stringWithDefault(lookup, "BLOG_TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:     stringWithDefault(lookup, "BLOG_PUBLIC_DIR", defaultPublicDir),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if p, err := strconv.Atoi(cfg.Server.Port); err != nil || p <= 0 || p > 65535 {
		missing = append(missing, "Server.Port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		missing = append(missing, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		missing = append(missing, "Server.WriteTimeout")
	}
	if u, err := url.Parse(cfg.Upstream.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		missing = append(missing, "Upstream.BaseURL")
	}
	if cfg.Upstream.Timeout < 0 {
		missing = append(missing, "Upstream.Timeout")
	}
	if cfg.Upstream.CacheTTL < 0 {
		missing = append(missing, "Upstream.CacheTTL")
	}
	if _, err := language.Parse(cfg.Pages.Lang); err != nil {
		missing = append(missing, "Pages.Lang")
	}
	if strings.TrimSpace(cfg.Pages.DetailPath) == "" {
		missing = append(missing, "Pages.DetailPath")
	}
	if cfg.Pages.ClickDebounce < 0 {
		missing = append(missing, "Pages.ClickDebounce")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

// canonicalLang normalises a language tag; unparsable input is kept so validation reports it.
func canonicalLang(raw string) string {
	raw = strings.TrimSpace(raw)
	tag, err := language.Parse(raw)
	if err != nil {
		return raw
	}
	return tag.String()
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		values[key] = strings.Trim(value, "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
