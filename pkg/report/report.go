package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/taskops/jira-overdue-mover/pkg/jira"
)

// Data is everything one run feeds into the report
type Data struct {
	// Overdue maps team name to its overdue issues
	Overdue map[string][]jira.Issue
	// NotMoved maps team name to issues whose due-date update failed;
	// empty when rescheduling was not requested or everything succeeded
	NotMoved map[string][]jira.Issue
	// Today is the run date shown in the subject
	Today time.Time
}

// TotalOverdue counts overdue issues across all teams
func (d Data) TotalOverdue() int {
	total := 0
	for _, issues := range d.Overdue {
		total += len(issues)
	}
	return total
}

// row is a single rendered table line
type row struct {
	N        int
	Key      string
	Link     string
	Summary  string
	Assignee string
	Status   string
	DueDate  string
}

type templateData struct {
	Overdue  []row
	NotMoved []row
}

var reportTemplate = template.Must(template.New("report").Parse(`<html>
<body>
    <p>Hi all. Here is today's overdue review:<br></p>
    <table style="width:70%" cellspacing="2" cellpadding="10" border="1">
    <caption>Overdue issues as of today</caption>
    <tr>
        <th width=5%>&#8470;</th>
        <th width=15%>Issue</th>
        <th width=35%>Summary</th>
        <th width=20%>Assignee</th>
        <th width=15%>Status</th>
        <th width=10%>Due date</th>
    </tr>
{{- range .Overdue}}
    <tr>
        <td>{{.N}}</td>
        <td><a href="{{.Link}}">{{.Key}}</a></td>
        <td>{{.Summary}}</td>
        <td>{{.Assignee}}</td>
        <td>{{.Status}}</td>
        <td>{{.DueDate}}</td>
    </tr>
{{- end}}
    </table>
    <br>
{{- if .NotMoved}}
    <table style="width:70%" cellspacing="2" cellpadding="10" border="1">
    <caption>Issues that could not be moved</caption>
    <tr>
        <th width=5%>&#8470;</th>
        <th width=15%>Issue</th>
        <th width=35%>Summary</th>
        <th width=20%>Assignee</th>
        <th width=15%>Status</th>
        <th width=10%>Due date</th>
    </tr>
{{- range .NotMoved}}
    <tr>
        <td>{{.N}}</td>
        <td><a href="{{.Link}}">{{.Key}}</a></td>
        <td>{{.Summary}}</td>
        <td>{{.Assignee}}</td>
        <td>{{.Status}}</td>
        <td>{{.DueDate}}</td>
    </tr>
{{- end}}
    </table>
    <br>
{{- else}}
    <p>The due date of every issue was updated successfully!<br></p>
{{- end}}
</body>
</html>
`))

// Render produces the HTML body of the report mail. jiraURL is the tracker
// root used to build issue links. Teams render in name order so the output
// is stable between runs.
func Render(data Data, jiraURL string) (string, error) {
	td := templateData{
		Overdue:  flatten(data.Overdue, jiraURL),
		NotMoved: flatten(data.NotMoved, jiraURL),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, td); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return buf.String(), nil
}

func flatten(set map[string][]jira.Issue, jiraURL string) []row {
	jiraURL = strings.TrimRight(jiraURL, "/")
	teams := make([]string, 0, len(set))
	for team := range set {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	var rows []row
	n := 0
	for _, team := range teams {
		for _, issue := range set[team] {
			n++
			rows = append(rows, row{
				N:        n,
				Key:      issue.Key,
				Link:     jiraURL + "/browse/" + issue.Key,
				Summary:  issue.Summary,
				Assignee: issue.Assignee,
				Status:   issue.Status,
				DueDate:  issue.DueDate,
			})
		}
	}
	return rows
}

// plainSummary is the text/plain alternative for clients that do not
// render HTML
func plainSummary(data Data) string {
	return fmt.Sprintf("%d overdue issue(s) as of %s. Open the HTML version of this message for the full report.",
		data.TotalOverdue(), data.Today.Format("2006-01-02"))
}

// Subject returns the mail subject for a run date
func Subject(today time.Time) string {
	return "Check outdated tasks " + today.Format("02-01-2006")
}

// dialer sends a composed message; satisfied by *gomail.Dialer
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer dispatches the report over a plain SMTP relay
type Mailer struct {
	sender     string
	recipients []string
	dialer     dialer
	log        zerolog.Logger
}

// NewMailer creates a mailer for an unauthenticated relay. The sender
// address is derived from the local hostname.
func NewMailer(host string, port int, recipients []string, log zerolog.Logger) *Mailer {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	return &Mailer{
		sender:     "jira-overdue-mover@" + hostname,
		recipients: recipients,
		dialer:     gomail.NewDialer(host, port, "", ""),
		log:        log,
	}
}

// Send renders and dispatches the report. A run with zero overdue issues
// sends nothing.
func (m *Mailer) Send(data Data, jiraURL string) error {
	if data.TotalOverdue() == 0 {
		m.log.Info().Msg("no overdue issues, not sending report")
		return nil
	}

	body, err := Render(data, jiraURL)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", m.recipients...)
	msg.SetHeader("Subject", Subject(data.Today))
	// multipart/alternative: plain-text summary first, HTML preferred
	msg.SetBody("text/plain", plainSummary(data))
	msg.AddAlternative("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending report mail: %w", err)
	}
	m.log.Info().Int("overdue", data.TotalOverdue()).Strs("recipients", m.recipients).Msg("report mail sent")
	return nil
}
