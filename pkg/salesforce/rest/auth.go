package sfrest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	httpclient "github.com/natserract/sfrest/pkg/http"
	"go.uber.org/zap"
)

// Authenticate runs the OAuth2 password grant and stores the returned access
// token for all later calls. The security token is appended to the password
// with no separator.
//
// A non-2xx answer, or one without access_token, yields an *AuthError and
// leaves any previously stored token in place.
func (s *Session) Authenticate(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	s.logger.Info("Authenticating with Salesforce",
		zap.String("url", s.authURL),
		zap.String("username", creds.Username))

	params := map[string]string{
		"grant_type":    "password",
		"client_id":     creds.ClientID,
		"client_secret": creds.ClientSecret,
		"username":      creds.Username,
		"password":      creds.Password + creds.SecurityToken,
	}

	opts := httpclient.RequestOptions{
		Method:     http.MethodPost,
		URL:        s.authURL,
		Context:    ctx,
		MaxRetries: s.maxRetries,
	}
	if s.formEncodedAuth {
		opts.Headers = map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
		opts.Body = params
	} else {
		opts.Query = params
	}

	resp, err := s.httpClient.Do(opts)
	if err != nil {
		s.logger.Error("Authentication request failed", zap.Error(err), zap.String("url", s.authURL))
		return nil, fmt.Errorf("authentication request failed: %w", err)
	}

	if !resp.IsSuccess() {
		s.logger.Error("Authentication failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(resp.Body)))
		return nil, &AuthError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var authResp AuthResponse
	if err := json.Unmarshal(resp.Body, &authResp); err != nil {
		s.logger.Error("Failed to parse authentication response", zap.Error(err))
		return nil, &AuthError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	if authResp.AccessToken == "" {
		s.logger.Error("Authentication response has no access token",
			zap.Int("status_code", resp.StatusCode))
		return nil, &AuthError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	authResp.StatusCode = resp.StatusCode

	s.setToken(authResp.AccessToken)

	s.logger.Info("Successfully authenticated",
		zap.Int("status_code", resp.StatusCode),
		zap.String("token_type", authResp.TokenType),
		zap.String("instance_url", authResp.InstanceURL))

	return &authResp, nil
}
