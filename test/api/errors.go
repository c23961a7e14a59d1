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

package api

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// maxSnippetLength bounds the response body carried by a ClientError.
	maxSnippetLength = 1000
)

var (
	// ErrMissingConfiguration is raised when a base endpoint or token cannot
	// be resolved. It is fatal: no request is attempted.
	ErrMissingConfiguration = errors.New("missing required configuration")
	ErrConflictingBody      = errors.New("request may carry a JSON body or a form body, not both")
	ErrHTTPStatus           = errors.New("unsuccessful HTTP status")
	ErrTransport            = errors.New("network/client failure")
	ErrResourceCreation     = errors.New("resource creation failed")
	ErrIndexTimeout         = errors.New("timed out waiting for resource to be indexed")
	ErrScopeReleased        = errors.New("resource scope already released")
)

// ClientError is the only failure an APIClient call returns. It is built once
// per failed call and must be treated as read only.
type ClientError struct {
	Method string
	// URL is the resolved request URL including credentials, use
	// RedactedURL when printing it.
	URL string
	// Status is nil for failures that never produced an HTTP response.
	Status          *int
	RequestID       string
	Duration        time.Duration
	ResponseSnippet string
	// Err is the underlying transport failure, if any.
	Err error
}

func (e *ClientError) Error() string {
	var b strings.Builder

	if e.Status != nil {
		fmt.Fprintf(&b, "HTTP %d on %s %s", *e.Status, e.Method, e.RedactedURL())
	} else {
		fmt.Fprintf(&b, "network/client failure on %s %s: %s", e.Method, e.RedactedURL(), RedactURL(fmt.Sprint(e.Err)))
	}

	if e.RequestID != "" {
		fmt.Fprintf(&b, " (request ID: %s)", e.RequestID)
	}

	if e.ResponseSnippet != "" {
		fmt.Fprintf(&b, ", body: %s", e.ResponseSnippet)
	}

	return b.String()
}

// Is makes errors.Is distinguish protocol failures from transport failures.
func (e *ClientError) Is(target error) bool {
	if e.Status != nil {
		return target == ErrHTTPStatus
	}

	return target == ErrTransport
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// StatusCode returns the response status, or 0 for transport failures.
func (e *ClientError) StatusCode() int {
	if e.Status == nil {
		return 0
	}

	return *e.Status
}

// RedactedURL returns URL with the token query value masked.
func (e *ClientError) RedactedURL() string {
	return RedactURL(e.URL)
}

// AsClientError extracts a *ClientError from an error chain.
func AsClientError(err error) (*ClientError, bool) {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr, true
	}

	return nil, false
}

// IndexTimeoutError reports a resource that never appeared in a listing within
// the wait budget.
type IndexTimeoutError struct {
	Kind     string
	ID       string
	Attempts int
	Elapsed  time.Duration
}

func (e *IndexTimeoutError) Error() string {
	return fmt.Sprintf("%s %s not indexed after %d attempts in %s", e.Kind, e.ID, e.Attempts, e.Elapsed.Round(time.Millisecond))
}

func (e *IndexTimeoutError) Is(target error) bool {
	return target == ErrIndexTimeout
}

// truncate returns at most limit runes of s, never splitting a character.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	count := 0

	for i := range s {
		if count == limit {
			return s[:i]
		}

		count++
	}

	return s
}
