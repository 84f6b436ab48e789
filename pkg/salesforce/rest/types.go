package sfrest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// Version is one entry of the /services/data version list.
type Version struct {
	Label   string `json:"label"`
	URL     string `json:"url"`
	Version string `json:"version"`
}

// Credentials are the inputs of the OAuth password grant.
type Credentials struct {
	ClientID      string
	ClientSecret  string
	Username      string
	Password      string
	SecurityToken string
}

// AuthResponse represents the OAuth token response
type AuthResponse struct {
	StatusCode  int    `json:"-"`
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
	ID          string `json:"id"`
	TokenType   string `json:"token_type"`
	IssuedAt    string `json:"issued_at"`
	Signature   string `json:"signature"`
}

// ConditionalOptions carries the optional If-Modified-Since and
// If-Unmodified-Since values, in the 'EEE, dd MMM yyyy HH:mm:ss z' form.
type ConditionalOptions struct {
	ModifiedSince   string
	UnmodifiedSince string
}

func (o ConditionalOptions) values() map[string]string {
	params := map[string]string{}
	if o.ModifiedSince != "" {
		params["If-Modified-Since"] = o.ModifiedSince
	}
	if o.UnmodifiedSince != "" {
		params["If-Unmodified-Since"] = o.UnmodifiedSince
	}
	return params
}

// FormatHTTPDate formats t for use in ConditionalOptions.
func FormatHTTPDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// Response is the status and body of one API call, passed through as the
// server sent them. Body is nil for calls whose answer is discarded.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v interface{}) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("response with status %d has no body", r.StatusCode)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// Get looks up a gjson path in the body, e.g. "sobjects.#.name".
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// APIError is one entry of the error array the REST API returns on failure.
type APIError struct {
	Message   string   `json:"message"`
	ErrorCode string   `json:"errorCode"`
	Fields    []string `json:"fields,omitempty"`
}

// Errors parses the body as a Salesforce error array. It returns nil for
// successful responses and for bodies of any other shape.
func (r *Response) Errors() []APIError {
	if r.IsSuccess() || !gjson.ValidBytes(r.Body) || !gjson.ParseBytes(r.Body).IsArray() {
		return nil
	}
	var errs []APIError
	if err := json.Unmarshal(r.Body, &errs); err != nil {
		return nil
	}
	return errs
}

// CreateResponse is the body of a successful create.
type CreateResponse struct {
	ID      string     `json:"id"`
	Success bool       `json:"success"`
	Errors  []APIError `json:"errors"`
}

// CreatedID decodes the server-assigned id from a create response.
func CreatedID(resp *Response) (string, error) {
	var created CreateResponse
	if err := resp.Decode(&created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("create response with status %d has no id: %s", resp.StatusCode, string(resp.Body))
	}
	return created.ID, nil
}
