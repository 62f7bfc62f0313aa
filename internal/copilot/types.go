// Package copilot holds the typed GitHub Copilot usage records and the pure
// transforms applied to them: option parsing, normalization, holiday
// filtering, mock data shifting and aggregate statistics.
package copilot

// MetricsDay is one day of the Copilot usage metrics API. Optional sections
// are nil when the upstream omits them.
type MetricsDay struct {
	Date                      string              `json:"date"`
	TotalActiveUsers          int                 `json:"total_active_users"`
	TotalEngagedUsers         int                 `json:"total_engaged_users"`
	CopilotIDECodeCompletions *IDECodeCompletions `json:"copilot_ide_code_completions"`
	CopilotIDEChat            *IDEChat            `json:"copilot_ide_chat,omitempty"`
	CopilotDotcomChat         *DotcomChat         `json:"copilot_dotcom_chat,omitempty"`
	CopilotDotcomPullRequests *DotcomPullRequests `json:"copilot_dotcom_pull_requests,omitempty"`
}

// IDECodeCompletions holds editor code completion usage.
type IDECodeCompletions struct {
	TotalEngagedUsers int                      `json:"total_engaged_users"`
	Languages         []CodeCompletionLanguage `json:"languages"`
	Editors           []CodeCompletionEditor   `json:"editors"`
}

// CodeCompletionLanguage is a top level language entry.
type CodeCompletionLanguage struct {
	Name              string `json:"name"`
	TotalEngagedUsers int    `json:"total_engaged_users"`
}

// CodeCompletionEditor groups completion models for one editor.
type CodeCompletionEditor struct {
	Name              string                `json:"name"`
	TotalEngagedUsers int                   `json:"total_engaged_users"`
	Models            []CodeCompletionModel `json:"models,omitempty"`
}

// CodeCompletionModel is per model usage for one editor.
type CodeCompletionModel struct {
	Name                    string                        `json:"name"`
	IsCustomModel           bool                          `json:"is_custom_model"`
	CustomModelTrainingDate *string                       `json:"custom_model_training_date,omitempty"`
	TotalEngagedUsers       int                           `json:"total_engaged_users"`
	Languages               []CodeCompletionModelLanguage `json:"languages"`
}

// CodeCompletionModelLanguage is per language usage for one editor model.
type CodeCompletionModelLanguage struct {
	Name                    string `json:"name"`
	TotalEngagedUsers       int    `json:"total_engaged_users"`
	TotalCodeSuggestions    int    `json:"total_code_suggestions"`
	TotalCodeAcceptances    int    `json:"total_code_acceptances"`
	TotalCodeLinesSuggested int    `json:"total_code_lines_suggested"`
	TotalCodeLinesAccepted  int    `json:"total_code_lines_accepted"`
}

// IDEChat holds chat usage inside editors.
type IDEChat struct {
	TotalEngagedUsers int             `json:"total_engaged_users"`
	Editors           []IDEChatEditor `json:"editors,omitempty"`
}

// IDEChatEditor groups chat models for one editor.
type IDEChatEditor struct {
	Name              string         `json:"name"`
	TotalEngagedUsers int            `json:"total_engaged_users"`
	Models            []IDEChatModel `json:"models,omitempty"`
}

// IDEChatModel is chat usage for one editor model.
type IDEChatModel struct {
	Name                     string  `json:"name"`
	IsCustomModel            bool    `json:"is_custom_model"`
	CustomModelTrainingDate  *string `json:"custom_model_training_date,omitempty"`
	TotalEngagedUsers        int     `json:"total_engaged_users"`
	TotalChats               int     `json:"total_chats"`
	TotalChatInsertionEvents int     `json:"total_chat_insertion_events"`
	TotalChatCopyEvents      int     `json:"total_chat_copy_events"`
}

// DotcomChat holds chat usage on github.com.
type DotcomChat struct {
	TotalEngagedUsers int               `json:"total_engaged_users"`
	Models            []DotcomChatModel `json:"models,omitempty"`
}

// DotcomChatModel is github.com chat usage for one model.
type DotcomChatModel struct {
	Name                    string  `json:"name"`
	IsCustomModel           bool    `json:"is_custom_model"`
	CustomModelTrainingDate *string `json:"custom_model_training_date,omitempty"`
	TotalEngagedUsers       int     `json:"total_engaged_users"`
	TotalChats              int     `json:"total_chats"`
}

// DotcomPullRequests holds pull request summary usage.
type DotcomPullRequests struct {
	TotalEngagedUsers int                     `json:"total_engaged_users"`
	Repositories      []PullRequestRepository `json:"repositories,omitempty"`
}

// PullRequestRepository is pull request summary usage for one repository.
type PullRequestRepository struct {
	Name              string             `json:"name"`
	TotalEngagedUsers int                `json:"total_engaged_users"`
	Models            []PullRequestModel `json:"models,omitempty"`
}

// PullRequestModel is pull request summary usage for one model.
type PullRequestModel struct {
	Name                    string  `json:"name"`
	IsCustomModel           bool    `json:"is_custom_model"`
	CustomModelTrainingDate *string `json:"custom_model_training_date,omitempty"`
	TotalPRSummariesCreated int     `json:"total_pr_summaries_created"`
	TotalEngagedUsers       int     `json:"total_engaged_users"`
}

// Team is an organization or enterprise team.
type Team struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TeamMember is a user belonging to a team.
type TeamMember struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}
