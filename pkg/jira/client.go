package jira

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every API call; expiry is reported as FailureTimeout.
const DefaultTimeout = 30 * time.Second

// Client is a thin wrapper around the Jira Server REST API v2 using basic
// authentication. It classifies failures but never retries; retry and
// fallback policy belongs to the callers.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// Options tunes the HTTP transport of a Client
type Options struct {
	// Timeout overrides DefaultTimeout when positive
	Timeout time.Duration
	// Insecure disables TLS certificate verification. Needed for trackers
	// behind self-signed certificates; off unless explicitly requested.
	Insecure bool
}

// NewClient creates a Jira client for the given base URL
func NewClient(baseURL string, opts Options, log zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	if opts.Insecure {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		httpClient.Transport = transport
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

// BaseURL returns the tracker root URL, used for building issue links
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs a single API call and classifies any failure into an
// *APIError. A successful call returns the raw response body.
func (c *Client) do(ctx context.Context, method, path string, creds Credentials, body interface{}) ([]byte, error) {
	u := c.baseURL + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	c.log.Info().Str("method", method).Str("url", u).Msg("performing jira request")

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(creds.User, creds.Password)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Atlassian-Token", "no-check")

	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := &APIError{Kind: classifyTransport(err), URL: u, Cause: err}
		c.log.Warn().Str("url", u).Str("kind", apiErr.Kind.String()).Err(err).Msg("jira request failed")
		return nil, apiErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := FailureHTTP
		if resp.StatusCode == http.StatusForbidden {
			kind = FailureForbidden
		}
		apiErr := &APIError{Kind: kind, URL: u, Status: resp.StatusCode}
		c.log.Warn().Str("url", u).Int("status", resp.StatusCode).Str("kind", kind.String()).Msg("jira request failed")
		return nil, apiErr
	}

	return respBody, nil
}

// classifyTransport maps a transport-level error to a failure kind. Timeouts
// (client timeout or context deadline) become FailureTimeout; every other
// transport failure counts as a refused connection, matching the coarse
// split the report consumers expect.
func classifyTransport(err error) FailureKind {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return FailureTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	return FailureConnectionRefused
}

// FilterJQL fetches a saved filter by id and returns its JQL expression
func (c *Client) FilterJQL(ctx context.Context, filterID string, creds Credentials) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/rest/api/2/filter/"+url.PathEscape(filterID), creds, nil)
	if err != nil {
		return "", err
	}

	var filter filterResponse
	if err := json.Unmarshal(body, &filter); err != nil {
		return "", fmt.Errorf("parsing filter %s: %w", filterID, err)
	}
	if filter.JQL == "" {
		return "", fmt.Errorf("filter %s has no jql expression", filterID)
	}
	return filter.JQL, nil
}

// SearchIssues runs a JQL search and returns the first page of matching
// issues with the fields the overdue report needs.
func (c *Client) SearchIssues(ctx context.Context, jql string, creds Credentials) ([]Issue, error) {
	request := searchRequest{
		JQL:        jql,
		StartAt:    0,
		MaxResults: 250,
		Fields:     []string{"summary", "status", "assignee", "duedate", "key"},
	}

	body, err := c.do(ctx, http.MethodPost, "/rest/api/2/search", creds, request)
	if err != nil {
		return nil, err
	}

	var search searchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	issues := make([]Issue, 0, len(search.Issues))
	for _, raw := range search.Issues {
		issues = append(issues, raw.toIssue())
	}
	return issues, nil
}

// UpdateDueDate sets a new due date (YYYY-MM-DD) on a single issue
func (c *Client) UpdateDueDate(ctx context.Context, issueKey, dueDate string, creds Credentials) error {
	request := updateDueDateRequest{Fields: dueDateFields{DueDate: dueDate}}
	_, err := c.do(ctx, http.MethodPut, "/rest/api/2/issue/"+url.PathEscape(issueKey), creds, request)
	return err
}
