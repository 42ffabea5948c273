package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthType identifies the authentication method.
type AuthType string

const (
	// AuthNone disables authentication.
	AuthNone AuthType = ""
	// AuthBearer sends a static bearer token.
	AuthBearer AuthType = "bearer"
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic AuthType = "basic"
	// AuthAPIKey sends an API key in a header or query parameter.
	AuthAPIKey AuthType = "api_key"
	// AuthJWT signs a short-lived HS256 token for every request.
	AuthJWT AuthType = "jwt"
	// AuthCustom uses a caller supplied request modifier.
	AuthCustom AuthType = "custom"
)

const defaultJWTTTL = 5 * time.Minute

// AuthConfig configures request authentication.
type AuthConfig struct {
	Type AuthType `yaml:"type" mapstructure:"type"`
	// Token is the bearer token (AuthBearer).
	Token string `yaml:"token" mapstructure:"token"`
	// Username and Password are used by AuthBasic.
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	// Key is the API key value (AuthAPIKey).
	Key string `yaml:"key" mapstructure:"key"`
	// In is "header" (default) or "query" (AuthAPIKey).
	In string `yaml:"in" mapstructure:"in"`
	// Name is the header or query parameter name (AuthAPIKey). Defaults to "X-API-Key".
	Name string `yaml:"name" mapstructure:"name"`
	// Secret is the HMAC key (AuthJWT).
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Subject and Issuer populate the sub and iss claims (AuthJWT).
	Subject string `yaml:"subject" mapstructure:"subject"`
	Issuer  string `yaml:"issuer" mapstructure:"issuer"`
	// TTL is the token lifetime (AuthJWT). Defaults to 5m.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
	// Apply modifies the request (AuthCustom).
	Apply func(*http.Request) `yaml:"-" mapstructure:"-"`
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key auth config sent via the X-API-Key header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: "X-API-Key"}
}

// APIKeyAuthQuery creates an API key auth config sent via query parameter.
func APIKeyAuthQuery(key, paramName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "query", Name: paramName}
}

// JWTAuth creates an auth config that signs an HS256 token per request.
func JWTAuth(secret, subject string) *AuthConfig {
	return &AuthConfig{Type: AuthJWT, Secret: secret, Subject: subject}
}

// CustomAuth creates a custom auth config with a request modifier function.
func CustomAuth(fn func(*http.Request)) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

// Validate checks the fields required by the selected auth type.
func (a *AuthConfig) Validate() error {
	if a == nil {
		return nil
	}
	switch a.Type {
	case AuthNone, AuthCustom:
	case AuthBearer:
		if a.Token == "" {
			return fmt.Errorf("httpclient: bearer auth requires a token")
		}
	case AuthBasic:
		if a.Username == "" {
			return fmt.Errorf("httpclient: basic auth requires a username")
		}
	case AuthAPIKey:
		if a.Key == "" {
			return fmt.Errorf("httpclient: api_key auth requires a key")
		}
	case AuthJWT:
		if a.Secret == "" {
			return fmt.Errorf("httpclient: jwt auth requires a secret")
		}
	default:
		return fmt.Errorf("httpclient: unknown auth type %q", a.Type)
	}
	return nil
}

// apply applies authentication to an HTTP request.
func (a *AuthConfig) apply(req *http.Request) error {
	if a == nil {
		return nil
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthBasic:
		req.SetBasicAuth(a.Username, a.Password)
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = "X-API-Key"
		}
		if a.In == "query" {
			q := req.URL.Query()
			q.Set(name, a.Key)
			req.URL.RawQuery = q.Encode()
		} else {
			req.Header.Set(name, a.Key)
		}
	case AuthJWT:
		token, err := a.signJWT(time.Now())
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	case AuthCustom:
		if a.Apply != nil {
			a.Apply(req)
		}
	}
	return nil
}

func (a *AuthConfig) signJWT(now time.Time) (string, error) {
	ttl := a.TTL
	if ttl <= 0 {
		ttl = defaultJWTTTL
	}
	claims := jwt.RegisteredClaims{
		Subject:   a.Subject,
		Issuer:    a.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.Secret))
	if err != nil {
		return "", fmt.Errorf("httpclient: sign jwt: %w", err)
	}
	return signed, nil
}
