package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Addr() != ":8080" {
		t.Errorf("unexpected addr: %s", cfg.Server.Addr())
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.DevMode {
		t.Errorf("expected dev mode off by default")
	}
	if cfg.Upstream.BaseURL != defaultUpstreamBaseURL {
		t.Errorf("expected default upstream %s, got %s", defaultUpstreamBaseURL, cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Timeout != defaultUpstreamTimeout {
		t.Errorf("unexpected upstream timeout: %s", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.CacheTTL != 0 {
		t.Errorf("expected cache disabled by default, got %s", cfg.Upstream.CacheTTL)
	}
	if cfg.Pages.DetailPath != "pagina2.html" {
		t.Errorf("unexpected detail path: %s", cfg.Pages.DetailPath)
	}
	if cfg.Pages.ClickDebounce != 150*time.Millisecond {
		t.Errorf("unexpected debounce: %s", cfg.Pages.ClickDebounce)
	}
	if cfg.Pages.Lang != "pt-BR" {
		t.Errorf("unexpected site lang: %s", cfg.Pages.Lang)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"PORT":                     "7000",
		"BLOG_SERVER_PORT":         "9090",
		"BLOG_SERVER_READ_TIMEOUT": "20s",
		"BLOG_DEV":                 "yes",
		"BLOG_UPSTREAM_BASE_URL":   "http://localhost:3000/",
		"BLOG_UPSTREAM_TIMEOUT":    "0",
		"BLOG_UPSTREAM_CACHE_TTL":  "30s",
		"BLOG_CLICK_DEBOUNCE":      "250ms",
		"BLOG_DETAIL_PATH":         "/post.html",
		"BLOG_SITE_LANG":           "en-us",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected BLOG_SERVER_PORT to win over PORT, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if !cfg.Server.DevMode {
		t.Errorf("expected dev mode on")
	}
	if cfg.Upstream.BaseURL != "http://localhost:3000" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Timeout != 0 {
		t.Errorf("expected timeout disabled, got %s", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.CacheTTL != 30*time.Second {
		t.Errorf("unexpected cache ttl: %s", cfg.Upstream.CacheTTL)
	}
	if cfg.Pages.ClickDebounce != 250*time.Millisecond {
		t.Errorf("unexpected debounce: %s", cfg.Pages.ClickDebounce)
	}
	if cfg.Pages.DetailPath != "post.html" {
		t.Errorf("expected leading slash trimmed, got %s", cfg.Pages.DetailPath)
	}
	if cfg.Pages.Lang != "en-US" {
		t.Errorf("expected canonical language tag, got %s", cfg.Pages.Lang)
	}
}

func TestLoadPortFallsBackToCloudRunPort(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{"PORT": "7000"}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7000" {
		t.Errorf("expected PORT fallback, got %s", cfg.Server.Port)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	env := map[string]string{
		"BLOG_SERVER_PORT":        "not-a-port",
		"BLOG_UPSTREAM_BASE_URL":  "ftp://example.com",
		"BLOG_UPSTREAM_CACHE_TTL": "-1s",
		"BLOG_SITE_LANG":          "not a tag!",
	}

	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := vErr.Fields()
	want := map[string]bool{"Server.Port": false, "Upstream.BaseURL": false, "Upstream.CacheTTL": false, "Pages.Lang": false}
	for _, f := range fields {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for f, seen := range want {
		if !seen {
			t.Errorf("expected %s in validation fields %v", f, fields)
		}
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nexport BLOG_UPSTREAM_BASE_URL=\"http://127.0.0.1:4000\"\nBLOG_CLICK_DEBOUNCE=50ms\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(WithEnvFile(path), WithoutSystemEnv(), WithEnvMap(map[string]string{"BLOG_CLICK_DEBOUNCE": "75ms"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Upstream.BaseURL != "http://127.0.0.1:4000" {
		t.Errorf("expected dotenv base url, got %s", cfg.Upstream.BaseURL)
	}
	if cfg.Pages.ClickDebounce != 75*time.Millisecond {
		t.Errorf("expected explicit map to win over dotenv, got %s", cfg.Pages.ClickDebounce)
	}
}
