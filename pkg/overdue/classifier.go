package overdue

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/taskops/jira-overdue-mover/pkg/jira"
)

// Classifier applies the overdue predicate to fetched issues
type Classifier struct {
	isClosed func(status string) bool
	log      zerolog.Logger
}

// NewClassifier creates a classifier. isClosed decides whether a status
// name counts as completed or cancelled (see config.IsClosedStatus).
func NewClassifier(isClosed func(status string) bool, log zerolog.Logger) *Classifier {
	return &Classifier{isClosed: isClosed, log: log}
}

// Classify returns the subset of issues that are overdue as of today.
//
// An issue is overdue when its status is not closed and its due date is on
// or before today. An issue without a due date is treated as overdue and
// given today's date as a sentinel, so unscheduled tickets still surface in
// the report. An issue with an unparseable due date is skipped and logged;
// it never aborts classification of the rest.
func (c *Classifier) Classify(issues []jira.Issue, today time.Time) []jira.Issue {
	todayDate := today.Format(DateLayout)
	overdue := []jira.Issue{}

	for _, issue := range issues {
		if c.isClosed(issue.Status) {
			continue
		}
		if issue.DueDate == "" {
			issue.DueDate = todayDate
			overdue = append(overdue, issue)
			continue
		}
		due, err := time.Parse(DateLayout, issue.DueDate)
		if err != nil {
			c.log.Warn().Str("issue", issue.Key).Str("duedate", issue.DueDate).
				Msg("skipping issue with unparseable due date")
			continue
		}
		if !due.After(today) {
			overdue = append(overdue, issue)
		}
	}
	return overdue
}
