package jira

// Credentials is a basic-auth identity used against the Jira API
type Credentials struct {
	User     string
	Password string
}

// Issue represents a single ticket fetched from the tracker. Optional
// fields (assignee, due date) stay empty strings when Jira returns null.
type Issue struct {
	Key      string
	Summary  string
	Status   string
	Assignee string
	DueDate  string
}

// filterResponse is the subset of GET /rest/api/2/filter/{id} we consume
type filterResponse struct {
	JQL string `json:"jql"`
}

// searchRequest is the body of POST /rest/api/2/search
type searchRequest struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields"`
}

// searchResponse is the response from POST /rest/api/2/search
type searchResponse struct {
	StartAt    int        `json:"startAt"`
	MaxResults int        `json:"maxResults"`
	Total      int        `json:"total"`
	Issues     []rawIssue `json:"issues"`
}

type rawIssue struct {
	Key    string    `json:"key"`
	Fields rawFields `json:"fields"`
}

type rawFields struct {
	Summary  string     `json:"summary"`
	Status   *rawStatus `json:"status"`
	Assignee *rawUser   `json:"assignee"`
	DueDate  string     `json:"duedate"`
}

type rawStatus struct {
	Name string `json:"name"`
}

type rawUser struct {
	DisplayName string `json:"displayName"`
}

// toIssue flattens the nested REST representation into an Issue
func (r rawIssue) toIssue() Issue {
	issue := Issue{
		Key:     r.Key,
		Summary: r.Fields.Summary,
		DueDate: r.Fields.DueDate,
	}
	if r.Fields.Status != nil {
		issue.Status = r.Fields.Status.Name
	}
	if r.Fields.Assignee != nil {
		issue.Assignee = r.Fields.Assignee.DisplayName
	}
	return issue
}

// updateDueDateRequest is the body of PUT /rest/api/2/issue/{key}
type updateDueDateRequest struct {
	Fields dueDateFields `json:"fields"`
}

type dueDateFields struct {
	DueDate string `json:"duedate"`
}
