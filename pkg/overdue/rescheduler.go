package overdue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskops/jira-overdue-mover/pkg/jira"
)

// issueUpdater is the slice of the Jira client the rescheduler needs
type issueUpdater interface {
	UpdateDueDate(ctx context.Context, issueKey, dueDate string, creds jira.Credentials) error
}

// Rescheduler moves the due date of overdue issues to the next working day
type Rescheduler struct {
	client   issueUpdater
	creds    map[string]jira.Credentials
	fallback jira.Credentials
	log      zerolog.Logger
}

// NewRescheduler creates a rescheduler. creds maps team names to the
// identity resolved for that team; fallback is the designated default
// identity retried once when a team identity is rejected.
func NewRescheduler(client issueUpdater, creds map[string]jira.Credentials, fallback jira.Credentials, log zerolog.Logger) *Rescheduler {
	return &Rescheduler{client: client, creds: creds, fallback: fallback, log: log}
}

// Reschedule sets the due date of every overdue issue to the next working
// day after today. The target date is computed once and shared by the whole
// run. A failed update is retried exactly once with the fallback identity;
// only issues whose retry also failed are returned, keyed by team. Teams
// with no failed issues are absent from the result.
func (r *Rescheduler) Reschedule(ctx context.Context, overdue map[string][]jira.Issue, today time.Time) map[string][]jira.Issue {
	target := RescheduleTarget(today).Format(DateLayout)
	r.log.Info().Str("target", target).Msg("moving overdue issues to next working day")

	notMoved := map[string][]jira.Issue{}
	for team, issues := range overdue {
		for _, issue := range issues {
			if r.moveIssue(ctx, team, issue.Key, target) {
				continue
			}
			notMoved[team] = append(notMoved[team], issue)
		}
	}
	return notMoved
}

// moveIssue attempts the due-date update with the team identity and falls
// back to the default identity on failure. Reports whether either attempt
// succeeded.
func (r *Rescheduler) moveIssue(ctx context.Context, team, issueKey, target string) bool {
	err := r.client.UpdateDueDate(ctx, issueKey, target, r.creds[team])
	if err == nil {
		return true
	}
	r.log.Warn().Str("team", team).Str("issue", issueKey).Err(err).
		Msg("not updated date for issue, retrying with fallback identity")

	if err := r.client.UpdateDueDate(ctx, issueKey, target, r.fallback); err != nil {
		r.log.Warn().Str("team", team).Str("issue", issueKey).Err(err).
			Msg("fallback identity also failed to update issue")
		return false
	}
	return true
}
