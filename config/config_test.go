package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected debug logging in development, got %q", cfg.Logging.Level)
		}
		if cfg.Logging.ServiceName != "svc" {
			t.Errorf("expected logging service name propagated, got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected info logging, got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	valid := func(env string) ServiceConfig {
		cfg := ServiceConfig{Name: "svc", Environment: env}
		cfg.Logging.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", valid("development"), false, ""},
		{"valid staging", valid("staging"), false, ""},
		{"valid production", valid("production"), false, ""},
		{"missing name", ServiceConfig{Environment: "production"}, true, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "invalid"}, true, "config.environment must be one of"},
		{"invalid logging", ServiceConfig{Name: "svc", Environment: "staging"}, true, "config.logging"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{
		ResultsKey: "results",
		Resources: map[string]Resource{
			"people": {Path: "/people"},
			"books":  {Path: "/books", ResultsKey: "items"},
		},
	}
	cfg.API.BaseURL = "http://api.example.com"
	cfg.ApplyDefaults()

	if cfg.Name != ServiceName {
		t.Errorf("expected default name %q, got %q", ServiceName, cfg.Name)
	}
	if cfg.API.Name != "restorm-api" {
		t.Errorf("expected api name derived from service, got %q", cfg.API.Name)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.API.Timeout)
	}
	if cfg.Resources["people"].ResultsKey != "results" {
		t.Errorf("expected inherited results key, got %q", cfg.Resources["people"].ResultsKey)
	}
	if cfg.Resources["books"].ResultsKey != "items" {
		t.Errorf("expected explicit results key kept, got %q", cfg.Resources["books"].ResultsKey)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing base url", func(c *Config) { c.API.BaseURL = "" }, "config.api.base_url is required"},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, "config.api"},
		{"bad sample rate", func(c *Config) { c.Telemetry.SampleRate = 3 }, "config.telemetry"},
		{"resource without path", func(c *Config) {
			c.Resources = map[string]Resource{"people": {}}
		}, "config.resources.people"},
		{"bad results key", func(c *Config) {
			c.Resources = map[string]Resource{"people": {Path: "/people", ResultsKey: "a-b"}}
		}, "config.resources.people"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{}
			cfg.API.BaseURL = "http://api.example.com"
			cfg.ApplyDefaults()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
			}
		})
	}
}

func TestConfigResource(t *testing.T) {
	cfg := Config{
		ResultsKey: "results",
		Resources:  map[string]Resource{"people": {Path: "/v2/people"}},
	}

	if got := cfg.Resource("people").Path; got != "/v2/people" {
		t.Errorf("expected configured path, got %q", got)
	}
	fallback := cfg.Resource("books")
	if fallback.Path != "/books" || fallback.ResultsKey != "results" {
		t.Errorf("unexpected fallback resource %+v", fallback)
	}

	cfg.Resources["authors"] = Resource{Path: "/authors"}
	names := cfg.ResourceNames()
	if len(names) != 2 || names[0] != "authors" || names[1] != "people" {
		t.Errorf("expected sorted names, got %v", names)
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: people-cli
environment: staging
version: "1.0.0"
results_key: results
api:
  base_url: http://api.example.com
  timeout: 5s
  retry:
    max_attempts: 2
resources:
  people:
    path: /people
    page_size: 50
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg Config
	err := LoadConfig("people-cli", &cfg, WithConfigFile(configPath), WithEnvPrefix("RESTORM_YAML_TEST"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "people-cli" {
		t.Errorf("expected name 'people-cli', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.API.Timeout)
	}
	if cfg.API.Retry == nil || cfg.API.Retry.MaxAttempts != 2 {
		t.Errorf("expected retry with 2 attempts, got %+v", cfg.API.Retry)
	}
	people := cfg.Resources["people"]
	if people.PageSize != 50 || people.ResultsKey != "results" {
		t.Errorf("unexpected people resource %+v", people)
	}
}

func TestLoadConfigEnvPrefix(t *testing.T) {
	t.Setenv("RESTORM_API_BASE_URL", "http://env.example.com")
	t.Setenv("RESTORM_ENVIRONMENT", "production")

	var cfg Config
	err := LoadConfig("restorm-env-test", &cfg,
		WithFileSystem(&mockFS{}),
		WithEnvPrefix("restorm"),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.API.BaseURL != "http://env.example.com" {
		t.Errorf("expected base url from env, got %q", cfg.API.BaseURL)
	}
	if cfg.Environment != "production" {
		t.Errorf("expected environment from env, got %q", cfg.Environment)
	}
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("RESTORM_FLAGS_TEST_API_BASE_URL", "http://env.example.com")
	t.Setenv("RESTORM_FLAGS_TEST_ENVIRONMENT", "production")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("base-url", "", "")
	flags.Bool("debug", false, "")
	flags.String("results-key", "", "")
	if err := flags.Parse([]string{"--base-url", "http://flag.example.com", "--debug"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var cfg Config
	err := LoadConfig("restorm-flags-test", &cfg,
		WithFileSystem(&mockFS{}),
		WithEnvPrefix("RESTORM_FLAGS_TEST"),
		WithFlags(flags, map[string]string{
			"base-url":    "api.base_url",
			"debug":       "debug",
			"results-key": "results_key",
			"missing":     "name",
		}),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.API.BaseURL != "http://flag.example.com" {
		t.Errorf("expected base url from flag, got %q", cfg.API.BaseURL)
	}
	if !cfg.Debug || cfg.Logging.Level != "debug" {
		t.Errorf("expected debug from flag, got debug=%v level=%q", cfg.Debug, cfg.Logging.Level)
	}
	if cfg.ResultsKey != "" {
		t.Errorf("unchanged flag must not override, got %q", cfg.ResultsKey)
	}
	if cfg.Name != ServiceName {
		t.Errorf("unknown flag must be ignored, got name %q", cfg.Name)
	}
}

func TestLoadConfigValidationError(t *testing.T) {
	var cfg Config
	err := LoadConfig("restorm-invalid-test", &cfg,
		WithFileSystem(&mockFS{}),
		WithEnvPrefix("RESTORM_INVALID_TEST"),
	)
	if err == nil {
		t.Fatal("expected validation error for missing base url")
	}
	if !strings.Contains(err.Error(), "base_url") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	type TestConfig struct {
		Name string `yaml:"name" mapstructure:"name"`
	}

	var cfg TestConfig
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/my-svc/config.yml": true,
		"./config/.env":           true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("my-svc", LoaderConfig{})
	if files.ConfigFile != "./cmd/my-svc/config.yml" {
		t.Errorf("expected config file at ./cmd/my-svc/config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./config/.env" {
		t.Errorf("expected env file at ./config/.env, got %q", files.EnvFile)
	}

	explicit := resolver.ResolveFiles("my-svc", LoaderConfig{ConfigFile: "custom.yml"})
	if explicit.ConfigFile != "custom.yml" {
		t.Errorf("expected explicit config file kept, got %q", explicit.ConfigFile)
	}
}

func TestResolver_EnvFileLocations(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"service dir", "./cmd/my-svc/.env"},
		{"short name dir", "../cmd/svc/.env"},
		{"config dir", "../../config/.env"},
		{"service specific", "./.env.my-svc"},
		{"working dir", "./.env"},
		{"parent dir", "../.env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &Resolver{FileSystem: &mockFS{files: map[string]bool{tt.file: true}}}
			if got := resolver.ResolveFiles("my-svc", LoaderConfig{}).EnvFile; got != tt.file {
				t.Errorf("EnvFile = %q, want %q", got, tt.file)
			}
		})
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool   { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }
func (m *mockFS) Getwd() (string, error)    { return "/mock", nil }

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("restorm")(&lc)

	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
	if lc.EnvPrefix != "RESTORM" {
		t.Errorf("expected upper-cased prefix, got %q", lc.EnvPrefix)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	variants := generateEnvKeyVariants("API_BASE_URL")
	want := map[string]bool{"api_base_url": false, "api.base_url": false, "api.base.url": false}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("expected variant %q in %v", k, variants)
		}
	}
}
