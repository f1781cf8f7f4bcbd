package cmd

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/taskops/jira-overdue-mover/pkg/config"
	"github.com/taskops/jira-overdue-mover/pkg/jira"
	"github.com/taskops/jira-overdue-mover/pkg/overdue"
	"github.com/taskops/jira-overdue-mover/pkg/report"
)

// reportMailer is the slice of the report package the run needs
type reportMailer interface {
	Send(data report.Data, jiraURL string) error
}

// RunCommand wires the collaborators of one batch run
type RunCommand struct {
	config     *config.Config
	client     *jira.Client
	classifier *overdue.Classifier
	mailer     reportMailer
	move       bool
	log        zerolog.Logger
}

func runRoot(cmd *cobra.Command, args []string) error {
	// local runs read credentials from a .env file; in CI the variables
	// are already exported
	_ = godotenv.Load()

	log := newLogger(logLevel)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if jiraURL != "" {
		cfg.Jira.URL = jiraURL
	}
	if insecure {
		cfg.Jira.Insecure = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cfg.ResolveCredentials(os.Environ(), log)
	cfg.LogFilters(log)

	client := jira.NewClient(cfg.Jira.URL, jira.Options{Insecure: cfg.Jira.Insecure}, log)
	command := &RunCommand{
		config:     cfg,
		client:     client,
		classifier: overdue.NewClassifier(cfg.IsClosedStatus, log),
		mailer:     report.NewMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Recipients, log),
		move:       moveTasks,
		log:        log,
	}
	return command.run(context.Background())
}

func (c *RunCommand) run(ctx context.Context) error {
	today := todayDate()
	c.log.Info().Str("today", today.Format(overdue.DateLayout)).Msg("starting overdue review")

	overdueSet := c.collectOverdue(ctx, today)
	for team, issues := range overdueSet {
		for _, issue := range issues {
			c.log.Info().Str("team", team).Str("issue", issue.Key).Str("summary", issue.Summary).
				Str("duedate", issue.DueDate).Msg("issue is out of date")
		}
	}

	notMoved := map[string][]jira.Issue{}
	if c.move {
		notMoved = c.moveOverdue(ctx, overdueSet, today)
		for team, issues := range notMoved {
			for _, issue := range issues {
				c.log.Warn().Str("team", team).Str("issue", issue.Key).Msg("issue date not moved")
			}
		}
	}

	data := report.Data{Overdue: overdueSet, NotMoved: notMoved, Today: today}
	if err := c.mailer.Send(data, c.config.Jira.URL); err != nil {
		return err
	}

	c.log.Info().Msg("all tasks done, exiting")
	return nil
}

// collectOverdue fetches every team's filter and keeps the overdue subset.
// A team whose fetch fails contributes an empty list and the run proceeds.
func (c *RunCommand) collectOverdue(ctx context.Context, today time.Time) map[string][]jira.Issue {
	overdueSet := map[string][]jira.Issue{}
	for team, filter := range c.config.Teams {
		creds := jira.Credentials{User: filter.User, Password: filter.Password}
		issues := c.client.FetchIssues(ctx, filter.FilterID, creds)
		overdueSet[team] = c.classifier.Classify(issues, today)
	}
	return overdueSet
}

// moveOverdue reschedules every overdue issue to the next working day and
// returns the issues that could not be updated, keyed by team.
func (c *RunCommand) moveOverdue(ctx context.Context, overdueSet map[string][]jira.Issue, today time.Time) map[string][]jira.Issue {
	creds := make(map[string]jira.Credentials, len(c.config.Teams))
	for team, filter := range c.config.Teams {
		creds[team] = jira.Credentials{User: filter.User, Password: filter.Password}
	}
	fallback := creds[c.config.Fallback]

	rescheduler := overdue.NewRescheduler(c.client, creds, fallback, c.log)
	return rescheduler.Reschedule(ctx, overdueSet, today)
}

// todayDate returns the current local date at midnight UTC, the form the
// classifier compares due dates against
func todayDate() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// newLogger builds the console logger used by the whole run
func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Logger().Level(parsed)
}
