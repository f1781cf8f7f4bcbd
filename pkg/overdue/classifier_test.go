package overdue

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskops/jira-overdue-mover/pkg/config"
	"github.com/taskops/jira-overdue-mover/pkg/jira"
)

func newTestClassifier() *Classifier {
	cfg := config.DefaultConfig()
	return NewClassifier(cfg.IsClosedStatus, zerolog.Nop())
}

func TestClassify(t *testing.T) {
	today := date(2024, time.January, 10) // Wednesday
	classifier := newTestClassifier()

	issues := []jira.Issue{
		{Key: "OPS-1", Status: "open", DueDate: "2024-01-09"},      // overdue
		{Key: "OPS-2", Status: "closed", DueDate: "2024-01-09"},    // closed, excluded
		{Key: "OPS-3", Status: "open", DueDate: "2024-01-10"},      // due today counts as overdue
		{Key: "OPS-4", Status: "open", DueDate: "2024-01-11"},      // future, excluded
		{Key: "OPS-5", Status: "In Progress", DueDate: "2023-12-01"}, // overdue
	}

	overdue := classifier.Classify(issues, today)

	keys := make([]string, 0, len(overdue))
	for _, issue := range overdue {
		keys = append(keys, issue.Key)
	}
	assert.Equal(t, []string{"OPS-1", "OPS-3", "OPS-5"}, keys)
}

func TestClassifyStatusCaseInsensitive(t *testing.T) {
	today := date(2024, time.January, 10)
	classifier := newTestClassifier()

	issues := []jira.Issue{
		{Key: "OPS-1", Status: "DONE", DueDate: "2024-01-09"},
		{Key: "OPS-2", Status: "Closed", DueDate: "2024-01-09"},
		{Key: "OPS-3", Status: "Выполнено", DueDate: "2024-01-09"},
		{Key: "OPS-4", Status: "OPEN", DueDate: "2024-01-09"},
	}

	overdue := classifier.Classify(issues, today)
	require.Len(t, overdue, 1)
	assert.Equal(t, "OPS-4", overdue[0].Key)
}

func TestClassifyMissingDueDate(t *testing.T) {
	today := date(2024, time.January, 10)
	classifier := newTestClassifier()

	issues := []jira.Issue{
		{Key: "OPS-1", Status: "open"}, // no due date at all
	}

	overdue := classifier.Classify(issues, today)
	require.Len(t, overdue, 1)
	// the sentinel due date is today
	assert.Equal(t, "2024-01-10", overdue[0].DueDate)
}

func TestClassifyMalformedDueDate(t *testing.T) {
	today := date(2024, time.January, 10)
	classifier := newTestClassifier()

	issues := []jira.Issue{
		{Key: "OPS-1", Status: "open", DueDate: "not-a-date"},
		{Key: "OPS-2", Status: "open", DueDate: "2024-01-09"},
	}

	// the malformed issue is skipped, the rest still classified
	overdue := classifier.Classify(issues, today)
	require.Len(t, overdue, 1)
	assert.Equal(t, "OPS-2", overdue[0].Key)
}

func TestClassifyEmptyInput(t *testing.T) {
	classifier := newTestClassifier()
	overdue := classifier.Classify(nil, date(2024, time.January, 10))
	assert.NotNil(t, overdue)
	assert.Empty(t, overdue)
}
