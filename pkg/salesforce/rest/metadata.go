package sfrest

import (
	"context"
	"net/http"
	"net/url"

	httpclient "github.com/natserract/sfrest/pkg/http"
	"go.uber.org/zap"
)

// GetResources lists the resources available for the discovered API version.
func (s *Session) GetResources(ctx context.Context) (*Response, error) {
	s.logger.Debug("Getting resources")
	return s.call(ctx, httpclient.RequestOptions{
		Method: http.MethodGet,
		URL:    s.apiURL,
	}, false)
}

// GetObjects lists the sObjects available to the session.
func (s *Session) GetObjects(ctx context.Context, cond ConditionalOptions) (*Response, error) {
	s.logger.Debug("Getting objects",
		zap.String("modified_since", cond.ModifiedSince),
		zap.String("unmodified_since", cond.UnmodifiedSince))
	return s.call(ctx, s.conditional(httpclient.RequestOptions{
		Method: http.MethodGet,
		URL:    s.apiURL + "/sobjects/",
	}, cond), false)
}

// DescribeObject returns the metadata of the sObject called name.
func (s *Session) DescribeObject(ctx context.Context, name string, cond ConditionalOptions) (*Response, error) {
	s.logger.Debug("Describing object", zap.String("object", name))
	return s.call(ctx, s.conditional(httpclient.RequestOptions{
		Method: http.MethodGet,
		URL:    s.apiURL + "/sobjects/" + url.PathEscape(name) + "/describe",
	}, cond), false)
}

// conditional attaches the If-Modified-Since / If-Unmodified-Since values as
// query parameters, or as headers when the session was built with
// WithConditionalHeaders.
func (s *Session) conditional(opts httpclient.RequestOptions, cond ConditionalOptions) httpclient.RequestOptions {
	values := cond.values()
	if len(values) == 0 {
		return opts
	}
	if s.conditionalAsHeaders {
		opts.Headers = values
	} else {
		opts.Query = values
	}
	return opts
}
