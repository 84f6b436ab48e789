package sfrest

import (
	"context"
	"net/http"
	"net/url"

	httpclient "github.com/natserract/sfrest/pkg/http"
	"go.uber.org/zap"
)

func (s *Session) accountURL(id string) string {
	return s.apiURL + "/sobjects/Account/" + url.PathEscape(id)
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

// CreateAccount creates an Account from a serialized record, typically
// schema.Account.JSON(true). On success the body holds the new id.
func (s *Session) CreateAccount(ctx context.Context, data []byte) (*Response, error) {
	s.logger.Info("Creating account")
	resp, err := s.call(ctx, httpclient.RequestOptions{
		Method:  http.MethodPost,
		URL:     s.apiURL + "/sobjects/Account/",
		Headers: jsonHeaders(),
		Body:    data,
	}, false)
	if err != nil {
		return nil, err
	}
	if resp.IsSuccess() {
		s.logger.Info("Created account", zap.String("id", resp.Get("id").String()))
	}
	return resp, nil
}

// QueryAccount retrieves the Account with the given id.
func (s *Session) QueryAccount(ctx context.Context, id string) (*Response, error) {
	s.logger.Debug("Querying account", zap.String("id", id))
	return s.call(ctx, httpclient.RequestOptions{
		Method: http.MethodGet,
		URL:    s.accountURL(id),
	}, false)
}

// UpdateAccount patches the Account with the given id. The API answers 204
// with no content; the returned Response never carries a body.
func (s *Session) UpdateAccount(ctx context.Context, id string, data []byte) (*Response, error) {
	s.logger.Info("Updating account", zap.String("id", id))
	return s.call(ctx, httpclient.RequestOptions{
		Method:  http.MethodPatch,
		URL:     s.accountURL(id),
		Headers: jsonHeaders(),
		Body:    data,
	}, true)
}

// DeleteAccount deletes the Account with the given id. The returned Response
// never carries a body.
func (s *Session) DeleteAccount(ctx context.Context, id string) (*Response, error) {
	s.logger.Info("Deleting account", zap.String("id", id))
	return s.call(ctx, httpclient.RequestOptions{
		Method: http.MethodDelete,
		URL:    s.accountURL(id),
	}, true)
}
