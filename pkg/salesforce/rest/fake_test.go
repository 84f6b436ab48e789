package sfrest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	fakeVersion      = "59.0"
	fakeToken        = "00Dxx0000000001!AQ0AQ.test-token"
	fakeClientID     = "3MVG9-client"
	fakeClientSecret = "client-secret"
	fakeUsername     = "api@example.com"
	fakePassword     = "p1"
	fakeSecurityTok  = "tok"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// fakeOrg is an in-memory stand-in for a Salesforce org.
type fakeOrg struct {
	t   *testing.T
	srv *httptest.Server

	mu           sync.Mutex
	requests     []recordedRequest
	accounts     map[string]map[string]interface{}
	nextID       int
	versionsBody string
	versionsCode int
	authBody     string
	serverErrors int
	patchBody    string
}

func newFakeOrg(t *testing.T) *fakeOrg {
	t.Helper()

	f := &fakeOrg{
		t:            t,
		accounts:     map[string]map[string]interface{}{},
		versionsCode: http.StatusOK,
		versionsBody: `[
			{"label":"Winter '24","url":"/services/data/v58.0","version":"58.0"},
			{"label":"Spring '24","url":"/services/data/v59.0","version":"59.0"}
		]`,
	}

	api := "/services/data/v" + fakeVersion
	mux := http.NewServeMux()
	mux.HandleFunc("GET /services/data", f.handleVersions)
	mux.HandleFunc("POST /services/oauth2/token", f.handleToken)
	mux.HandleFunc("GET "+api, f.authorized(f.handleResources))
	mux.HandleFunc("GET "+api+"/sobjects/{$}", f.authorized(f.handleObjects))
	mux.HandleFunc("GET "+api+"/sobjects/{name}/{leaf}", f.authorized(f.handleObjectGet))
	mux.HandleFunc("POST "+api+"/sobjects/Account/{$}", f.authorized(f.handleCreate))
	mux.HandleFunc("PATCH "+api+"/sobjects/Account/{id}", f.authorized(f.handleUpdate))
	mux.HandleFunc("DELETE "+api+"/sobjects/Account/{id}", f.authorized(f.handleDelete))

	f.srv = httptest.NewTLSServer(f.record(mux))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeOrg) domain() string {
	return strings.TrimPrefix(f.srv.URL, "https://")
}

func (f *fakeOrg) newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{
		WithLogger(zaptest.NewLogger(t)),
		WithHTTPClient(f.srv.Client()),
	}, opts...)
	s, err := NewSession(context.Background(), f.domain(), opts...)
	require.NoError(t, err)
	return s
}

func (f *fakeOrg) credentials() Credentials {
	return Credentials{
		ClientID:      fakeClientID,
		ClientSecret:  fakeClientSecret,
		Username:      fakeUsername,
		Password:      fakePassword,
		SecurityToken: fakeSecurityTok,
	}
}

func (f *fakeOrg) authenticatedSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s := f.newSession(t, opts...)
	_, err := s.Authenticate(context.Background(), f.credentials())
	require.NoError(t, err)
	return s
}

func (f *fakeOrg) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeOrg) last() recordedRequest {
	reqs := f.recorded()
	require.NotEmpty(f.t, reqs)
	return reqs[len(reqs)-1]
}

func (f *fakeOrg) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		fail := f.serverErrors > 0
		if fail {
			f.serverErrors--
		}
		f.mu.Unlock()

		if fail {
			writeJSON(w, http.StatusServiceUnavailable, `[{"message":"Server unavailable","errorCode":"SERVER_UNAVAILABLE"}]`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeOrg) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+fakeToken {
			writeJSON(w, http.StatusUnauthorized, `[{"message":"Session expired or invalid","errorCode":"INVALID_SESSION_ID"}]`)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (f *fakeOrg) handleVersions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, f.versionsCode, f.versionsBody)
}

func (f *fakeOrg) handleToken(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	if r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" {
		_ = r.ParseForm()
		params = r.PostForm
	}

	if f.authBody != "" {
		writeJSON(w, http.StatusOK, f.authBody)
		return
	}

	if params.Get("grant_type") != "password" ||
		params.Get("client_id") != fakeClientID ||
		params.Get("client_secret") != fakeClientSecret ||
		params.Get("username") != fakeUsername ||
		params.Get("password") != fakePassword+fakeSecurityTok {
		writeJSON(w, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"authentication failure"}`)
		return
	}

	writeJSON(w, http.StatusOK, fmt.Sprintf(`{
		"access_token": %q,
		"instance_url": "https://%s",
		"id": "https://login.salesforce.com/id/00Dxx0000000001/005xx000000001",
		"token_type": "Bearer",
		"issued_at": "1700000000000",
		"signature": "sig"
	}`, fakeToken, f.domain()))
}

func (f *fakeOrg) handleResources(w http.ResponseWriter, r *http.Request) {
	api := "/services/data/v" + fakeVersion
	writeJSON(w, http.StatusOK, fmt.Sprintf(`{"sobjects":%q,"query":%q,"limits":%q}`,
		api+"/sobjects", api+"/query", api+"/limits"))
}

func (f *fakeOrg) handleObjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, `{
		"encoding": "UTF-8",
		"maxBatchSize": 200,
		"sobjects": [
			{"name": "Account", "label": "Account", "custom": false},
			{"name": "Contact", "label": "Contact", "custom": false},
			{"name": "Invoice__c", "label": "Invoice", "custom": true}
		]
	}`)
}

// handleObjectGet serves both /sobjects/{name}/describe and
// /sobjects/Account/{id}.
func (f *fakeOrg) handleObjectGet(w http.ResponseWriter, r *http.Request) {
	name, leaf := r.PathValue("name"), r.PathValue("leaf")
	switch {
	case leaf == "describe":
		f.handleDescribe(w, name)
	case name == "Account":
		f.handleQuery(w, leaf)
	default:
		writeJSON(w, http.StatusNotFound, `[{"message":"The requested resource does not exist","errorCode":"NOT_FOUND"}]`)
	}
}

func (f *fakeOrg) handleDescribe(w http.ResponseWriter, name string) {
	if name == "Missing" {
		writeJSON(w, http.StatusNotFound, `[{"message":"The requested resource does not exist","errorCode":"NOT_FOUND"}]`)
		return
	}
	writeJSON(w, http.StatusOK, fmt.Sprintf(`{
		"name": %q,
		"label": %q,
		"custom": %t,
		"fields": [{"name": "Id", "type": "id"}, {"name": "Name", "type": "string"}]
	}`, name, name, strings.HasSuffix(name, "__c")))
}

func (f *fakeOrg) handleCreate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, `[{"message":"JSON parser error","errorCode":"JSON_PARSER_ERROR"}]`)
		return
	}
	if name, _ := fields["Name"].(string); name == "" {
		writeJSON(w, http.StatusBadRequest, `[{"message":"Required fields are missing: [Name]","errorCode":"REQUIRED_FIELD_MISSING","fields":["Name"]}]`)
		return
	}

	f.mu.Lock()
	f.nextID++
	id := fmt.Sprintf("001xx00000%05d", f.nextID)
	f.accounts[id] = fields
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, fmt.Sprintf(`{"id":%q,"success":true,"errors":[]}`, id))
}

func (f *fakeOrg) handleQuery(w http.ResponseWriter, id string) {

	f.mu.Lock()
	fields, ok := f.accounts[id]
	record := map[string]interface{}{}
	for k, v := range fields {
		record[k] = v
	}
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, `[{"message":"The requested resource does not exist","errorCode":"NOT_FOUND"}]`)
		return
	}

	record["Id"] = id
	record["attributes"] = map[string]string{
		"type": "Account",
		"url":  "/services/data/v" + fakeVersion + "/sobjects/Account/" + id,
	}
	b, _ := json.Marshal(record)
	writeJSON(w, http.StatusOK, string(b))
}

func (f *fakeOrg) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, `[{"message":"JSON parser error","errorCode":"JSON_PARSER_ERROR"}]`)
		return
	}

	f.mu.Lock()
	fields, ok := f.accounts[id]
	if ok {
		for k, v := range patch {
			fields[k] = v
		}
	}
	patchBody := f.patchBody
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, `[{"message":"The requested resource does not exist","errorCode":"NOT_FOUND"}]`)
		return
	}
	if patchBody != "" {
		writeJSON(w, http.StatusOK, patchBody)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeOrg) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	f.mu.Lock()
	_, ok := f.accounts[id]
	delete(f.accounts, id)
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, `[{"message":"The requested resource does not exist","errorCode":"NOT_FOUND"}]`)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
