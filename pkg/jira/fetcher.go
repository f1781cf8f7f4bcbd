package jira

import (
	"context"
	"errors"
)

// FetchIssues resolves a saved filter to its JQL and returns the issues it
// matches. Every failure path degrades to an empty list: a single broken
// filter must not abort the run for the other teams. Failures are logged
// with the filter id and, for API failures, the classified kind.
func (c *Client) FetchIssues(ctx context.Context, filterID string, creds Credentials) []Issue {
	jql, err := c.FilterJQL(ctx, filterID, creds)
	if err != nil {
		c.logFetchFailure(filterID, err)
		return []Issue{}
	}

	issues, err := c.SearchIssues(ctx, jql, creds)
	if err != nil {
		c.logFetchFailure(filterID, err)
		return []Issue{}
	}
	return issues
}

func (c *Client) logFetchFailure(filterID string, err error) {
	event := c.log.Warn().Str("filter_id", filterID)
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		event = event.Str("kind", apiErr.Kind.String())
	}
	event.Err(err).Msg("cannot get task list for filter")
}
