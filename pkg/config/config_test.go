package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"SF_DOMAIN",
	"SF_CLIENT_ID",
	"SF_CLIENT_SECRET",
	"SF_USERNAME",
	"SF_PASSWORD",
	"SF_SECURITY_TOKEN",
	"SF_MAX_RETRIES",
	"SF_HTTP_TIMEOUT",
	"SF_CONDITIONAL_AS_HEADERS",
	"SF_AUTH_FORM_BODY",
}

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, values[k])
	}
}

func validEnv() map[string]string {
	return map[string]string{
		"SF_DOMAIN":         "mydomain.my.salesforce.com",
		"SF_CLIENT_ID":      "3MVG9-client",
		"SF_CLIENT_SECRET":  "secret",
		"SF_USERNAME":       "api@example.com",
		"SF_PASSWORD":       "p1",
		"SF_SECURITY_TOKEN": "tok",
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, validEnv())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mydomain.my.salesforce.com", cfg.Domain)
	assert.Equal(t, "tok", cfg.SecurityToken)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.False(t, cfg.ConditionalAsHeaders)
	assert.False(t, cfg.AuthFormBody)
}

func TestLoadOverrides(t *testing.T) {
	env := validEnv()
	env["SF_DOMAIN"] = "127.0.0.1:8443"
	env["SF_SECURITY_TOKEN"] = ""
	env["SF_MAX_RETRIES"] = "3"
	env["SF_HTTP_TIMEOUT"] = "10s"
	env["SF_CONDITIONAL_AS_HEADERS"] = "true"
	env["SF_AUTH_FORM_BODY"] = "1"
	setEnv(t, env)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8443", cfg.Domain)
	assert.Empty(t, cfg.SecurityToken)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.ConditionalAsHeaders)
	assert.True(t, cfg.AuthFormBody)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "missing domain", key: "SF_DOMAIN", value: "", wantErr: "SF_DOMAIN is required"},
		{name: "invalid domain", key: "SF_DOMAIN", value: "https://mydomain.my.salesforce.com/", wantErr: "SF_DOMAIN is invalid"},
		{name: "missing client id", key: "SF_CLIENT_ID", value: "", wantErr: "SF_CLIENT_ID is required"},
		{name: "missing client secret", key: "SF_CLIENT_SECRET", value: "", wantErr: "SF_CLIENT_SECRET is required"},
		{name: "missing username", key: "SF_USERNAME", value: "", wantErr: "SF_USERNAME is required"},
		{name: "missing password", key: "SF_PASSWORD", value: "", wantErr: "SF_PASSWORD is required"},
		{name: "retries not a number", key: "SF_MAX_RETRIES", value: "many", wantErr: "SF_MAX_RETRIES must be an integer"},
		{name: "too many retries", key: "SF_MAX_RETRIES", value: "50", wantErr: "SF_MAX_RETRIES is invalid"},
		{name: "bad timeout", key: "SF_HTTP_TIMEOUT", value: "soon", wantErr: "SF_HTTP_TIMEOUT must be a duration"},
		{name: "bad bool", key: "SF_CONDITIONAL_AS_HEADERS", value: "maybe", wantErr: "SF_CONDITIONAL_AS_HEADERS must be a boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnv()
			env[tt.key] = tt.value
			setEnv(t, env)

			cfg, err := Load()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateReportsAllMissing(t *testing.T) {
	err := (&Config{HTTPTimeout: time.Second}).Validate()
	require.Error(t, err)
	for _, key := range []string{"SF_DOMAIN", "SF_CLIENT_ID", "SF_CLIENT_SECRET", "SF_USERNAME", "SF_PASSWORD"} {
		assert.Contains(t, err.Error(), key+" is required")
	}
	assert.NotContains(t, err.Error(), "SF_SECURITY_TOKEN")
}
