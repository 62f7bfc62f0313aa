package copilot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateStats(t *testing.T) {
	days := []MetricsDay{
		{
			Date: "2024-06-24",
			CopilotIDECodeCompletions: &IDECodeCompletions{
				TotalEngagedUsers: 10,
				Editors: []CodeCompletionEditor{
					{Name: "vscode", Models: []CodeCompletionModel{{Name: "default", TotalEngagedUsers: 6}}},
					{Name: "JetBrains", Models: []CodeCompletionModel{{Name: "default", TotalEngagedUsers: 4}}},
				},
			},
			CopilotIDEChat: &IDEChat{
				TotalEngagedUsers: 5,
				Editors: []IDEChatEditor{
					{Name: "vscode", Models: []IDEChatModel{{Name: "default", TotalEngagedUsers: 5, TotalChats: 20, TotalChatInsertionEvents: 3, TotalChatCopyEvents: 4}}},
				},
			},
			CopilotDotcomChat: &DotcomChat{
				TotalEngagedUsers: 2,
				Models:            []DotcomChatModel{{Name: "default", TotalEngagedUsers: 2, TotalChats: 7}},
			},
			CopilotDotcomPullRequests: &DotcomPullRequests{
				TotalEngagedUsers: 1,
				Repositories: []PullRequestRepository{
					{Name: "octo/api", Models: []PullRequestModel{{Name: "default", TotalEngagedUsers: 1, TotalPRSummariesCreated: 3}}},
				},
			},
		},
		{
			Date: "2024-06-25",
			CopilotIDECodeCompletions: &IDECodeCompletions{
				TotalEngagedUsers: 8,
				Editors: []CodeCompletionEditor{
					{Name: "vscode", Models: []CodeCompletionModel{
						{Name: "default", TotalEngagedUsers: 5},
						{Name: "tuned", IsCustomModel: true, TotalEngagedUsers: 2},
					}},
				},
			},
			CopilotIDEChat: &IDEChat{
				TotalEngagedUsers: 3,
				Editors: []IDEChatEditor{
					{Name: "vscode", Models: []IDEChatModel{{Name: "default", TotalEngagedUsers: 3, TotalChats: 10, TotalChatInsertionEvents: 1, TotalChatCopyEvents: 2}}},
				},
			},
			CopilotDotcomPullRequests: &DotcomPullRequests{
				TotalEngagedUsers: 2,
				Repositories: []PullRequestRepository{
					{Name: "octo/api", Models: []PullRequestModel{{Name: "default", TotalEngagedUsers: 2, TotalPRSummariesCreated: 5}}},
				},
			},
		},
	}

	stats := CalculateStats(days)

	assert.Equal(t, 18, stats.TotalIDECodeCompletionUsers)
	assert.Equal(t, 8, stats.TotalIDEChatUsers)
	assert.Equal(t, 2, stats.TotalDotcomChatUsers)
	assert.Equal(t, 3, stats.TotalDotcomPRUsers)
	assert.Equal(t, 8, stats.TotalPRSummariesCreated)
	assert.Equal(t, 2, stats.TotalIDECodeCompletionModels)
	assert.Equal(t, 1, stats.TotalIDEChatModels)
	assert.Equal(t, 1, stats.TotalDotcomChatModels)
	assert.Equal(t, 1, stats.TotalDotcomPRModels)

	require.Len(t, stats.IDECodeCompletionModels, 3)
	assert.Equal(t, EditorModelUsage{Name: "default", Editor: "vscode", ModelType: "Default", TotalEngagedUsers: 11}, stats.IDECodeCompletionModels[0])
	assert.Equal(t, EditorModelUsage{Name: "default", Editor: "JetBrains", ModelType: "Default", TotalEngagedUsers: 4}, stats.IDECodeCompletionModels[1])
	assert.Equal(t, EditorModelUsage{Name: "tuned", Editor: "vscode", ModelType: "Custom", TotalEngagedUsers: 2}, stats.IDECodeCompletionModels[2])

	require.Len(t, stats.IDEChatModels, 1)
	assert.Equal(t, 30, stats.IDEChatModels[0].TotalChats)
	assert.Equal(t, 4, stats.IDEChatModels[0].TotalChatInsertionEvents)
	assert.Equal(t, 6, stats.IDEChatModels[0].TotalChatCopyEvents)

	require.Len(t, stats.DotcomPRModels, 1)
	assert.Equal(t, 8, stats.DotcomPRModels[0].TotalPRSummariesCreated)
	assert.Equal(t, "octo/api", stats.DotcomPRModels[0].Repository)

	require.Len(t, stats.DailyEngagement, 2)
	assert.Equal(t, DailyEngagement{Date: "2024-06-25", IDECodeCompletions: 8, IDEChat: 3, DotcomPullRequests: 2}, stats.DailyEngagement[1])
}

func TestCalculateStats_Empty(t *testing.T) {
	stats := CalculateStats(nil)
	assert.NotNil(t, stats.IDECodeCompletionModels)
	assert.NotNil(t, stats.DailyEngagement)
	assert.Zero(t, stats.TotalIDECodeCompletionUsers)
}
