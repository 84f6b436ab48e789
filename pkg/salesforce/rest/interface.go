package sfrest

import "context"

// SessionClient defines the interface for Salesforce REST API operations
type SessionClient interface {
	// Authenticate runs the OAuth password grant and stores the access token
	Authenticate(ctx context.Context, creds Credentials) (*AuthResponse, error)

	// GetResources lists the resources of the discovered API version
	GetResources(ctx context.Context) (*Response, error)

	// GetObjects lists the available sObjects
	GetObjects(ctx context.Context, cond ConditionalOptions) (*Response, error)

	// DescribeObject returns the metadata of one sObject
	DescribeObject(ctx context.Context, name string, cond ConditionalOptions) (*Response, error)

	CreateAccount(ctx context.Context, data []byte) (*Response, error)
	QueryAccount(ctx context.Context, id string) (*Response, error)
	UpdateAccount(ctx context.Context, id string, data []byte) (*Response, error)
	DeleteAccount(ctx context.Context, id string) (*Response, error)
}

var _ SessionClient = (*Session)(nil)
