package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultHTTPTimeout = 30 * time.Second
	DefaultMaxRetries  = 0
)

type Config struct {
	Domain        string `env:"SF_DOMAIN" validate:"required,hostname_rfc1123|hostname_port"`
	ClientID      string `env:"SF_CLIENT_ID" validate:"required"`
	ClientSecret  string `env:"SF_CLIENT_SECRET" validate:"required"`
	Username      string `env:"SF_USERNAME" validate:"required"`
	Password      string `env:"SF_PASSWORD" validate:"required"`
	SecurityToken string `env:"SF_SECURITY_TOKEN"`

	MaxRetries  int           `env:"SF_MAX_RETRIES" validate:"gte=0,lte=10"`
	HTTPTimeout time.Duration `env:"SF_HTTP_TIMEOUT" validate:"gt=0"`

	// ConditionalAsHeaders sends If-Modified-Since / If-Unmodified-Since as
	// HTTP headers instead of query parameters.
	ConditionalAsHeaders bool `env:"SF_CONDITIONAL_AS_HEADERS"`
	// AuthFormBody sends the password grant fields as a form body instead of
	// query parameters.
	AuthFormBody bool `env:"SF_AUTH_FORM_BODY"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their environment variable name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	maxRetries, err := getEnvInt("SF_MAX_RETRIES", DefaultMaxRetries)
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvDuration("SF_HTTP_TIMEOUT", DefaultHTTPTimeout)
	if err != nil {
		return nil, err
	}
	conditionalAsHeaders, err := getEnvBool("SF_CONDITIONAL_AS_HEADERS")
	if err != nil {
		return nil, err
	}
	authFormBody, err := getEnvBool("SF_AUTH_FORM_BODY")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Domain:               os.Getenv("SF_DOMAIN"),
		ClientID:             os.Getenv("SF_CLIENT_ID"),
		ClientSecret:         os.Getenv("SF_CLIENT_SECRET"),
		Username:             os.Getenv("SF_USERNAME"),
		Password:             os.Getenv("SF_PASSWORD"),
		SecurityToken:        os.Getenv("SF_SECURITY_TOKEN"),
		MaxRetries:           maxRetries,
		HTTPTimeout:          timeout,
		ConditionalAsHeaders: conditionalAsHeaders,
		AuthFormBody:         authFormBody,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}
