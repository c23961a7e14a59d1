/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

//nolint:revive // naming conventions acceptable in test code
package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	HeaderContentType   = "Content-Type"
	HeaderAPIToken      = "X-API-Token"
	HeaderAPIKey        = "X-API-KEY"
	HeaderRequestID     = "x-request-id"
	HeaderCorrelationID = "x-correlation-id"

	ContentTypeJSON           = "application/json"
	ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"

	tokenParam = "token"
)

// Requester is anything that can execute a request descriptor.
//
//go:generate mockgen -source=client.go -destination=mock/requester.go -package=mock
type Requester interface {
	Do(ctx context.Context, request *Request) (*Response, error)
}

var _ Requester = (*APIClient)(nil)

// Request describes a single call. JSON and Form are mutually exclusive.
type Request struct {
	Method   string
	Endpoint string
	Query    *Query
	JSON     any
	Form     url.Values
	// Headers override anything the client sets by default.
	Headers map[string]string
}

type Response struct {
	Status int
	// Data is null only when the body was empty.
	Data Value
	// Headers has lower-cased keys.
	Headers   map[string]string
	RequestID string
	Duration  time.Duration
}

// Items returns the envelope's data field as a list, wrapping a single
// object. Counts and missing data yield nothing.
func (r *Response) Items() []Value {
	return r.Data.Get("data").Items()
}

type APIClient struct {
	baseURL          string
	token            string
	authHeader       string
	injectTokenQuery bool
	logResponses     bool
	rest             *resty.Client
}

type Option func(*APIClient)

// WithTimeout bounds every call made by the client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *APIClient) {
		if timeout > 0 {
			c.rest.SetTimeout(timeout)
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *APIClient) {
		timeout := c.rest.GetClient().Timeout
		c.rest = newRestyClient(resty.NewWithClient(client))

		if client.Timeout == 0 {
			c.rest.SetTimeout(timeout)
		}
	}
}

// WithAuthHeader changes the header that carries the token.
func WithAuthHeader(name string) Option {
	return func(c *APIClient) {
		c.authHeader = name
	}
}

// WithoutTokenQuery stops the client adding a token query parameter.
func WithoutTokenQuery() Option {
	return func(c *APIClient) {
		c.injectTokenQuery = false
	}
}

// WithResponseLogging logs successful response bodies at debug level.
func WithResponseLogging(enabled bool) Option {
	return func(c *APIClient) {
		c.logResponses = enabled
	}
}

// NewAPIClient creates a client for one base endpoint and token. Missing
// credentials are a configuration error and no client is returned.
func NewAPIClient(credentials Credentials, opts ...Option) (*APIClient, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(credentials.BaseURL), "/")
	token := strings.TrimSpace(credentials.Token)

	var missing []string

	if baseURL == "" {
		missing = append(missing, "base URL")
	}

	if token == "" {
		missing = append(missing, "token")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfiguration, strings.Join(missing, ", "))
	}

	c := &APIClient{
		baseURL:          baseURL,
		token:            token,
		authHeader:       HeaderAPIToken,
		injectTokenQuery: true,
		rest:             newRestyClient(resty.New()),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewAPIClientWithConfig creates the media API client.
func NewAPIClientWithConfig(config *TestConfig) (*APIClient, error) {
	return NewAPIClient(config.Primary(),
		WithTimeout(config.RequestTimeout),
		WithResponseLogging(config.LogResponses),
	)
}

// NewVMSClient creates a client for the video management service, which
// authenticates with an API key header only.
func NewVMSClient(config *TestConfig) (*APIClient, error) {
	credentials, err := config.VMS()
	if err != nil {
		return nil, err
	}

	return NewAPIClient(credentials,
		WithTimeout(config.RequestTimeout),
		WithAuthHeader(HeaderAPIKey),
		WithoutTokenQuery(),
		WithResponseLogging(config.LogResponses),
	)
}

func newRestyClient(client *resty.Client) *resty.Client {
	return client.
		SetRetryCount(0).
		SetDisableWarn(true).
		SetLogger(restyLogger{})
}

// BaseURL is the endpoint the client was created for, without a trailing slash.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// Get issues a GET. It never mutates server state from the client's side and
// nothing is cached: every call goes to the network.
func (c *APIClient) Get(ctx context.Context, endpoint string, query *Query) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Endpoint: endpoint, Query: query})
}

// PostJSON issues a POST with a JSON body, a nil body is sent as {}.
func (c *APIClient) PostJSON(ctx context.Context, endpoint string, body any, query *Query) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Endpoint: endpoint, Query: query, JSON: jsonOrEmpty(body)})
}

// PostForm issues a POST with an x-www-form-urlencoded body.
func (c *APIClient) PostForm(ctx context.Context, endpoint string, form url.Values, query *Query) (*Response, error) {
	if form == nil {
		form = url.Values{}
	}

	return c.Do(ctx, &Request{Method: http.MethodPost, Endpoint: endpoint, Query: query, Form: form})
}

func (c *APIClient) PutJSON(ctx context.Context, endpoint string, body any, query *Query) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Endpoint: endpoint, Query: query, JSON: jsonOrEmpty(body)})
}

func (c *APIClient) PatchJSON(ctx context.Context, endpoint string, body any, query *Query) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Endpoint: endpoint, Query: query, JSON: jsonOrEmpty(body)})
}

func (c *APIClient) Delete(ctx context.Context, endpoint string, query *Query) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Endpoint: endpoint, Query: query})
}

func jsonOrEmpty(body any) any {
	if body == nil {
		return map[string]any{}
	}

	return body
}

// generateTraceID creates a new W3C trace ID.
// we are using this to create a new trace ID for each request so if an error occurs we can find the request in the logs.
func generateTraceID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// generateSpanID creates a new W3C span ID.
func generateSpanID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// createTraceParent creates a W3C traceparent header value.
func createTraceParent() string {
	return fmt.Sprintf("00-%s-%s-01", generateTraceID(), generateSpanID())
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

// buildURL appends the encoded query to the endpoint, joining with & when
// the endpoint already carries a query string.
func (c *APIClient) buildURL(endpoint string, query *Query) string {
	fullURL := c.baseURL + endpoint

	encoded := query.Encode()
	if encoded == "" {
		return fullURL
	}

	separator := "?"
	if strings.Contains(endpoint, "?") {
		separator = "&"
	}

	return fullURL + separator + encoded
}

// normalizeHeaders lower-cases header names and joins repeated values.
func normalizeHeaders(header http.Header) map[string]string {
	out := make(map[string]string, len(header))

	for key, values := range header {
		out[strings.ToLower(key)] = strings.Join(values, ", ")
	}

	return out
}

// Do executes a request descriptor. Status codes of 400 and above, and any
// failure to get a response at all, are returned as *ClientError.
//
//nolint:cyclop,funlen // test code complexity is acceptable
func (c *APIClient) Do(ctx context.Context, request *Request) (*Response, error) {
	if request.JSON != nil && request.Form != nil {
		return nil, fmt.Errorf("%w: %s %s", ErrConflictingBody, request.Method, request.Endpoint)
	}

	query := request.Query.Clone()
	if c.injectTokenQuery && !query.Has(tokenParam) {
		query.Set(tokenParam, c.token)
	}

	method := strings.ToUpper(request.Method)
	fullURL := c.buildURL(request.Endpoint, query)
	maskedURL := RedactURL(fullURL)
	traceParent := createTraceParent()

	log := log.FromContext(ctx)

	headers := map[string]string{
		c.authHeader:  c.token,
		"Traceparent": traceParent,
		"Tracestate":  "test-automation=ginkgo",
	}

	req := c.rest.R().SetContext(ctx)

	hasBody := request.JSON != nil
	hasForm := request.Form != nil

	if hasBody {
		data, err := json.Marshal(request.JSON)
		if err != nil {
			clientErr := &ClientError{
				Method: method,
				URL:    fullURL,
				Err:    fmt.Errorf("encoding request body: %w", err),
			}

			log.Error(clientErr, "API request failed", "method", method, "url", maskedURL, "traceId", extractTraceID(traceParent))

			return nil, clientErr
		}

		headers[HeaderContentType] = ContentTypeJSON

		req.SetBody(data)
	}

	if hasForm {
		headers[HeaderContentType] = ContentTypeFormURLEncoded

		req.SetFormDataFromValues(request.Form)
	}

	maps.Copy(headers, request.Headers)
	req.SetHeaders(headers)

	log.V(1).Info("API request start", "method", method, "url", maskedURL, "hasBody", hasBody, "hasForm", hasForm, "traceId", extractTraceID(traceParent))

	start := time.Now()
	resp, err := req.Execute(method, fullURL)
	duration := time.Since(start)

	if err != nil {
		clientErr := &ClientError{
			Method:   method,
			URL:      fullURL,
			Duration: duration,
			Err:      err,
		}

		log.Error(clientErr, "API request failed", "method", method, "url", maskedURL, "duration", duration, "traceId", extractTraceID(traceParent))

		return nil, clientErr
	}

	status := resp.StatusCode()
	body := resp.Body()
	responseHeaders := normalizeHeaders(resp.Header())

	requestID := responseHeaders[HeaderRequestID]
	if requestID == "" {
		requestID = responseHeaders[HeaderCorrelationID]
	}

	if status >= http.StatusBadRequest {
		clientErr := &ClientError{
			Method:          method,
			URL:             fullURL,
			Status:          ptr.To(status),
			RequestID:       requestID,
			Duration:        duration,
			ResponseSnippet: truncate(string(body), maxSnippetLength),
		}

		log.Error(clientErr, "API request failed", "method", method, "url", maskedURL, "status", status, "requestId", requestID, "duration", duration,
			"responseSnippet", clientErr.ResponseSnippet, "traceId", extractTraceID(traceParent))

		return nil, clientErr
	}

	log.Info("API request success", "method", method, "url", maskedURL, "status", status, "requestId", requestID, "duration", duration)

	if c.logResponses && len(body) > 0 {
		log.V(1).Info("API response body", "method", method, "url", maskedURL, "body", string(body))
	}

	return &Response{
		Status:    status,
		Data:      ParseValue(body),
		Headers:   responseHeaders,
		RequestID: requestID,
		Duration:  duration,
	}, nil
}
