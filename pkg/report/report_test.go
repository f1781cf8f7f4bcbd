package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/taskops/jira-overdue-mover/pkg/jira"
)

const jiraURL = "https://jira.example.com"

func sampleOverdue() map[string][]jira.Issue {
	return map[string][]jira.Issue{
		"DevOps_tasks": {
			{Key: "OPS-1", Summary: "Rotate certificates", Assignee: "Ivan Petrov", Status: "Open", DueDate: "2024-01-09"},
			{Key: "OPS-2", Summary: "Patch bastion", Status: "In Progress", DueDate: "2024-01-08"},
		},
		"GW": {
			{Key: "GW-5", Summary: "Renew license", Assignee: "Anna", Status: "Open", DueDate: "2024-01-05"},
		},
	}
}

func TestRender(t *testing.T) {
	body, err := Render(Data{Overdue: sampleOverdue()}, jiraURL)
	require.NoError(t, err)

	// issues are numbered in team name order
	assert.Contains(t, body, `<a href="https://jira.example.com/browse/GW-5">GW-5</a>`)
	assert.Contains(t, body, `<a href="https://jira.example.com/browse/OPS-1">OPS-1</a>`)
	assert.Contains(t, body, "Rotate certificates")
	assert.Contains(t, body, "Ivan Petrov")
	assert.Contains(t, body, "2024-01-09")

	// no problem set: the success sentence replaces the second table
	assert.Contains(t, body, "updated successfully")
	assert.NotContains(t, body, "could not be moved")
}

func TestRenderWithProblems(t *testing.T) {
	notMoved := map[string][]jira.Issue{
		"DevOps_tasks": {
			{Key: "OPS-2", Summary: "Patch bastion", Status: "In Progress", DueDate: "2024-01-08"},
		},
	}

	body, err := Render(Data{Overdue: sampleOverdue(), NotMoved: notMoved}, jiraURL)
	require.NoError(t, err)

	assert.Contains(t, body, "could not be moved")
	assert.NotContains(t, body, "updated successfully")
}

func TestRenderMissingFieldsStayEmpty(t *testing.T) {
	overdue := map[string][]jira.Issue{
		"GW": {{Key: "GW-1", Summary: "No assignee, no date"}},
	}

	body, err := Render(Data{Overdue: overdue}, jiraURL)
	require.NoError(t, err)
	assert.Contains(t, body, "No assignee, no date")
	// empty optional fields render as empty cells, not placeholders
	assert.Contains(t, body, "<td></td>")
}

func TestRenderEscapesSummary(t *testing.T) {
	overdue := map[string][]jira.Issue{
		"GW": {{Key: "GW-1", Summary: `<script>alert("x")</script>`, Status: "Open", DueDate: "2024-01-09"}},
	}

	body, err := Render(Data{Overdue: overdue}, jiraURL)
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestSubject(t *testing.T) {
	today := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Check outdated tasks 10-01-2024", Subject(today))
}

// fakeDialer records sent messages
type fakeDialer struct {
	sent []*gomail.Message
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return nil
}

func newTestMailer(d dialer) *Mailer {
	return &Mailer{
		sender:     "jira-overdue-mover@test-host",
		recipients: []string{"ops@example.com"},
		dialer:     d,
		log:        zerolog.Nop(),
	}
}

func TestSend(t *testing.T) {
	fake := &fakeDialer{}
	mailer := newTestMailer(fake)

	data := Data{
		Overdue: sampleOverdue(),
		Today:   time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, mailer.Send(data, jiraURL))

	require.Len(t, fake.sent, 1)
	msg := fake.sent[0]
	assert.Equal(t, []string{"Check outdated tasks 10-01-2024"}, msg.GetHeader("Subject"))
	assert.Equal(t, []string{"ops@example.com"}, msg.GetHeader("To"))

	// plain-text summary plus the HTML report as the preferred alternative
	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	wire := buf.String()
	assert.Contains(t, wire, "multipart/alternative")
	assert.Contains(t, wire, "text/plain")
	assert.Contains(t, wire, "text/html")
}

func TestSendSkipsWhenNothingOverdue(t *testing.T) {
	fake := &fakeDialer{}
	mailer := newTestMailer(fake)

	data := Data{Overdue: map[string][]jira.Issue{"GW": {}}}
	require.NoError(t, mailer.Send(data, jiraURL))

	assert.Empty(t, fake.sent)
}
