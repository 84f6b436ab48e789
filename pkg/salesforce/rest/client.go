// Package sfrest provides a session against the Salesforce REST API.
//
// A Session discovers the newest API version of an org when it is created,
// authenticates with the OAuth2 username-password flow, and then exposes the
// metadata discovery calls (resources, object list, describe) and CRUD calls
// on the Account sObject. Each call is one HTTP round trip; the status and
// body the server sent are returned unchanged so callers decide what a
// non-2xx answer means.
package sfrest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/natserract/sfrest/pkg/config"
	httpclient "github.com/natserract/sfrest/pkg/http"
	"go.uber.org/zap"
)

// Session is the main client for interacting with the Salesforce REST API
type Session struct {
	authURL string
	apiURL  string
	version string

	httpClient           *httpclient.Client
	maxRetries           int
	conditionalAsHeaders bool
	formEncodedAuth      bool

	mu    sync.RWMutex
	token string

	logger *zap.Logger
}

type sessionOptions struct {
	logger               *zap.Logger
	httpClient           *http.Client
	maxRetries           int
	conditionalAsHeaders bool
	formEncodedAuth      bool
}

// Option configures a Session.
type Option func(*sessionOptions)

// WithLogger sets the logger. The default is zap's production logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *sessionOptions) { o.logger = logger }
}

// WithHTTPClient sets the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *sessionOptions) { o.httpClient = hc }
}

// WithMaxRetries retries transport failures and 5xx answers up to n extra
// times with exponential backoff. The default is 0, a single round trip.
func WithMaxRetries(n int) Option {
	return func(o *sessionOptions) { o.maxRetries = n }
}

// WithConditionalHeaders sends If-Modified-Since and If-Unmodified-Since as
// HTTP headers. By default they go out as query parameters.
func WithConditionalHeaders(enabled bool) Option {
	return func(o *sessionOptions) { o.conditionalAsHeaders = enabled }
}

// WithFormEncodedAuth sends the password grant fields as a form body. By
// default they go out as query parameters of the token POST.
func WithFormEncodedAuth(enabled bool) Option {
	return func(o *sessionOptions) { o.formEncodedAuth = enabled }
}

// NewSession discovers the latest API version of domain (for example
// mydomain.my.salesforce.com) and returns an unauthenticated session.
// Discovery is a single unauthenticated GET; any failure is returned as a
// *DiscoveryError.
func NewSession(ctx context.Context, domain string, opts ...Option) (*Session, error) {
	o := &sessionOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger, _ = zap.NewProduction()
	}

	baseURL := "https://" + domain
	authURL, err := httpclient.BuildURL(baseURL, "/services/oauth2/token", nil)
	if err != nil {
		return nil, fmt.Errorf("invalid domain %q: %w", domain, err)
	}
	dataURL, err := httpclient.BuildURL(baseURL, "/services/data", nil)
	if err != nil {
		return nil, fmt.Errorf("invalid domain %q: %w", domain, err)
	}

	s := &Session{
		authURL:              authURL,
		httpClient:           httpclient.NewClientWithHTTPClient(o.httpClient, o.logger),
		maxRetries:           o.maxRetries,
		conditionalAsHeaders: o.conditionalAsHeaders,
		formEncodedAuth:      o.formEncodedAuth,
		logger:               o.logger,
	}

	version, err := s.discoverVersion(ctx, dataURL)
	if err != nil {
		return nil, err
	}
	s.version = version
	s.apiURL = dataURL + "/v" + version

	s.logger.Info("Salesforce session created",
		zap.String("domain", domain),
		zap.String("api_version", version))

	return s, nil
}

// NewSessionFromConfig creates a session for cfg.Domain with the transport
// settings from cfg.
func NewSessionFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	return NewSession(ctx, cfg.Domain,
		WithLogger(logger),
		WithHTTPClient(&http.Client{Timeout: timeout}),
		WithMaxRetries(cfg.MaxRetries),
		WithConditionalHeaders(cfg.ConditionalAsHeaders),
		WithFormEncodedAuth(cfg.AuthFormBody),
	)
}

func (s *Session) discoverVersion(ctx context.Context, dataURL string) (string, error) {
	s.logger.Debug("Discovering API version", zap.String("url", dataURL))

	resp, err := s.httpClient.Get(ctx, dataURL, nil)
	if err != nil {
		return "", &DiscoveryError{URL: dataURL, Err: err}
	}
	if !resp.IsSuccess() {
		s.logger.Error("Version discovery failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(resp.Body)))
		return "", &DiscoveryError{URL: dataURL, StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var versions []Version
	if err := json.Unmarshal(resp.Body, &versions); err != nil {
		return "", &DiscoveryError{URL: dataURL, StatusCode: resp.StatusCode, Body: resp.Body,
			Err: fmt.Errorf("failed to parse version list: %w", err)}
	}
	if len(versions) == 0 || versions[len(versions)-1].Version == "" {
		return "", &DiscoveryError{URL: dataURL, StatusCode: resp.StatusCode, Body: resp.Body,
			Err: fmt.Errorf("version list has no usable entry")}
	}

	return versions[len(versions)-1].Version, nil
}

// Version returns the API version discovered at construction.
func (s *Session) Version() string { return s.version }

// APIURL returns https://{domain}/services/data/v{version}.
func (s *Session) APIURL() string { return s.apiURL }

// AuthURL returns the OAuth token endpoint.
func (s *Session) AuthURL() string { return s.authURL }

// IsAuthenticated reports whether a token has been stored.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// bearer returns the Authorization header value, or ErrAuthenticationRequired
// when no token is stored.
func (s *Session) bearer() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrAuthenticationRequired
	}
	return "Bearer " + s.token, nil
}

func (s *Session) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// call runs one authenticated request. When discardBody is set the returned
// Response carries only the status code.
func (s *Session) call(ctx context.Context, opts httpclient.RequestOptions, discardBody bool) (*Response, error) {
	auth, err := s.bearer()
	if err != nil {
		s.logger.Warn("Rejected call without authentication",
			zap.String("method", opts.Method),
			zap.String("url", opts.URL))
		return nil, err
	}

	if opts.Headers == nil {
		opts.Headers = map[string]string{}
	}
	opts.Headers["Authorization"] = auth
	opts.Context = ctx
	opts.MaxRetries = s.maxRetries

	resp, err := s.httpClient.Do(opts)
	if err != nil {
		return nil, fmt.Errorf("%s %s request failed: %w", opts.Method, opts.URL, err)
	}

	if !resp.IsSuccess() {
		s.logger.Info("Salesforce returned non-success status",
			zap.String("method", opts.Method),
			zap.String("url", opts.URL),
			zap.Int("status_code", resp.StatusCode))
	}

	if discardBody {
		return &Response{StatusCode: resp.StatusCode}, nil
	}
	out := &Response{StatusCode: resp.StatusCode}
	if len(resp.Body) > 0 {
		out.Body = json.RawMessage(resp.Body)
	}
	return out, nil
}
