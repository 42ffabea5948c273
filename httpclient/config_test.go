package httpclient

import (
	"testing"
	"time"

	"github.com/kbukum/restorm/resilience"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{
		Retry:          &resilience.RetryConfig{MaxAttempts: 2},
		CircuitBreaker: &resilience.CircuitBreakerConfig{},
		RateLimiter:    &resilience.RateLimiterConfig{},
	}
	cfg.ApplyDefaults()

	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.Timeout)
	}
	if cfg.Name != defaultName {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
	if cfg.Retry.RetryIf == nil {
		t.Error("expected RetryIf to default to IsRetryable")
	}
	if cfg.CircuitBreaker.Name != defaultName || cfg.RateLimiter.Name != defaultName {
		t.Error("expected guards to inherit the client name")
	}
}

func TestConfig_ApplyDefaults_PreservesExisting(t *testing.T) {
	cfg := Config{Name: "people-api", Timeout: 10 * time.Second}
	cfg.ApplyDefaults()
	if cfg.Timeout != 10*time.Second || cfg.Name != "people-api" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Timeout: time.Second, BaseURL: "https://api.example.com"}, false},
		{"no base url", Config{Timeout: time.Second}, false},
		{"negative timeout", Config{Timeout: -1}, true},
		{"relative base url", Config{Timeout: time.Second, BaseURL: "/api"}, true},
		{"bad auth", Config{Timeout: time.Second, Auth: &AuthConfig{Type: AuthBearer}}, true},
		{"tls cert without key", Config{Timeout: time.Second, TLS: &TLSConfig{CertFile: "cert.pem"}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestTLSConfig(t *testing.T) {
	var nilCfg *TLSConfig
	if nilCfg.IsEnabled() {
		t.Error("nil TLS config should be disabled")
	}
	built, err := nilCfg.Build()
	if err != nil || built != nil {
		t.Errorf("expected (nil, nil), got (%v, %v)", built, err)
	}

	cfg := &TLSConfig{ServerName: "api.internal"}
	built, err = cfg.Build()
	if err != nil {
		t.Fatal(err)
	}
	if built.ServerName != "api.internal" || built.MinVersion == 0 {
		t.Errorf("unexpected tls config: %+v", built)
	}

	if _, err := (&TLSConfig{CAFile: "/nonexistent/ca.pem"}).Build(); err == nil {
		t.Error("expected error for missing CA file")
	}
}

func TestDefaultConfigs(t *testing.T) {
	if r := DefaultRetryConfig(); r.MaxAttempts <= 0 || r.RetryIf == nil {
		t.Errorf("unexpected retry config: %+v", r)
	}
	if cb := DefaultCircuitBreakerConfig("api"); cb.Name != "api" {
		t.Errorf("expected name 'api', got %q", cb.Name)
	}
	if rl := DefaultRateLimiterConfig("api"); rl.Name != "api" {
		t.Errorf("expected name 'api', got %q", rl.Name)
	}
}
