package copilot

// GitHubStats aggregates feature engagement and model usage over a range of days.
type GitHubStats struct {
	TotalIDECodeCompletionUsers  int `json:"totalIdeCodeCompletionUsers"`
	TotalIDEChatUsers            int `json:"totalIdeChatUsers"`
	TotalDotcomChatUsers         int `json:"totalDotcomChatUsers"`
	TotalDotcomPRUsers           int `json:"totalDotcomPRUsers"`
	TotalPRSummariesCreated      int `json:"totalPRSummariesCreated"`
	TotalIDECodeCompletionModels int `json:"totalIdeCodeCompletionModels"`
	TotalIDEChatModels           int `json:"totalIdeChatModels"`
	TotalDotcomChatModels        int `json:"totalDotcomChatModels"`
	TotalDotcomPRModels          int `json:"totalDotcomPRModels"`

	IDECodeCompletionModels []EditorModelUsage     `json:"ideCodeCompletionModels"`
	IDEChatModels           []EditorChatModelUsage `json:"ideChatModels"`
	DotcomChatModels        []DotcomChatModelUsage `json:"dotcomChatModels"`
	DotcomPRModels          []PRModelUsage         `json:"dotcomPRModels"`

	DailyEngagement []DailyEngagement `json:"dailyEngagement"`
}

// ModelType labels a model as "Custom" or "Default".
func ModelType(custom bool) string {
	if custom {
		return "Custom"
	}
	return "Default"
}

// EditorModelUsage is code completion engagement per model and editor.
type EditorModelUsage struct {
	Name              string `json:"name"`
	Editor            string `json:"editor"`
	ModelType         string `json:"model_type"`
	TotalEngagedUsers int    `json:"total_engaged_users"`
}

// EditorChatModelUsage is IDE chat usage per model and editor.
type EditorChatModelUsage struct {
	Name                     string `json:"name"`
	Editor                   string `json:"editor"`
	ModelType                string `json:"model_type"`
	TotalEngagedUsers        int    `json:"total_engaged_users"`
	TotalChats               int    `json:"total_chats"`
	TotalChatInsertionEvents int    `json:"total_chat_insertion_events"`
	TotalChatCopyEvents      int    `json:"total_chat_copy_events"`
}

// DotcomChatModelUsage is github.com chat usage per model.
type DotcomChatModelUsage struct {
	Name              string `json:"name"`
	ModelType         string `json:"model_type"`
	TotalEngagedUsers int    `json:"total_engaged_users"`
	TotalChats        int    `json:"total_chats"`
}

// PRModelUsage is pull request summary usage per model and repository.
type PRModelUsage struct {
	Name                    string `json:"name"`
	Repository              string `json:"repository"`
	ModelType               string `json:"model_type"`
	TotalEngagedUsers       int    `json:"total_engaged_users"`
	TotalPRSummariesCreated int    `json:"total_pr_summaries_created"`
}

// DailyEngagement is the per feature engaged user count for one day.
type DailyEngagement struct {
	Date               string `json:"date"`
	IDECodeCompletions int    `json:"ide_code_completions"`
	IDEChat            int    `json:"ide_chat"`
	DotcomChat         int    `json:"dotcom_chat"`
	DotcomPullRequests int    `json:"dotcom_pull_requests"`
}

// orderedIndex keeps aggregation keys in first-seen order.
type orderedIndex map[string]int

func (o orderedIndex) slot(key string, size int) (int, bool) {
	if i, ok := o[key]; ok {
		return i, false
	}
	o[key] = size
	return size, true
}

// CalculateStats aggregates days into GitHubStats.
func CalculateStats(days []MetricsDay) GitHubStats {
	stats := GitHubStats{
		IDECodeCompletionModels: []EditorModelUsage{},
		IDEChatModels:           []EditorChatModelUsage{},
		DotcomChatModels:        []DotcomChatModelUsage{},
		DotcomPRModels:          []PRModelUsage{},
		DailyEngagement:         make([]DailyEngagement, 0, len(days)),
	}

	completionNames := map[string]struct{}{}
	chatNames := map[string]struct{}{}
	dotcomNames := map[string]struct{}{}
	prNames := map[string]struct{}{}

	completionIdx := orderedIndex{}
	chatIdx := orderedIndex{}
	dotcomIdx := orderedIndex{}
	prIdx := orderedIndex{}

	for _, day := range days {
		daily := DailyEngagement{Date: day.Date}

		if cc := day.CopilotIDECodeCompletions; cc != nil {
			stats.TotalIDECodeCompletionUsers += cc.TotalEngagedUsers
			daily.IDECodeCompletions = cc.TotalEngagedUsers
			for _, editor := range cc.Editors {
				for _, model := range editor.Models {
					completionNames[model.Name] = struct{}{}
					i, fresh := completionIdx.slot(model.Name+"-"+editor.Name, len(stats.IDECodeCompletionModels))
					if fresh {
						stats.IDECodeCompletionModels = append(stats.IDECodeCompletionModels, EditorModelUsage{
							Name: model.Name, Editor: editor.Name, ModelType: ModelType(model.IsCustomModel),
						})
					}
					stats.IDECodeCompletionModels[i].TotalEngagedUsers += model.TotalEngagedUsers
				}
			}
		}

		if chat := day.CopilotIDEChat; chat != nil {
			stats.TotalIDEChatUsers += chat.TotalEngagedUsers
			daily.IDEChat = chat.TotalEngagedUsers
			for _, editor := range chat.Editors {
				for _, model := range editor.Models {
					chatNames[model.Name] = struct{}{}
					i, fresh := chatIdx.slot(model.Name+"-"+editor.Name, len(stats.IDEChatModels))
					if fresh {
						stats.IDEChatModels = append(stats.IDEChatModels, EditorChatModelUsage{
							Name: model.Name, Editor: editor.Name, ModelType: ModelType(model.IsCustomModel),
						})
					}
					entry := &stats.IDEChatModels[i]
					entry.TotalEngagedUsers += model.TotalEngagedUsers
					entry.TotalChats += model.TotalChats
					entry.TotalChatInsertionEvents += model.TotalChatInsertionEvents
					entry.TotalChatCopyEvents += model.TotalChatCopyEvents
				}
			}
		}

		if dc := day.CopilotDotcomChat; dc != nil {
			stats.TotalDotcomChatUsers += dc.TotalEngagedUsers
			daily.DotcomChat = dc.TotalEngagedUsers
			for _, model := range dc.Models {
				dotcomNames[model.Name] = struct{}{}
				i, fresh := dotcomIdx.slot(model.Name, len(stats.DotcomChatModels))
				if fresh {
					stats.DotcomChatModels = append(stats.DotcomChatModels, DotcomChatModelUsage{
						Name: model.Name, ModelType: ModelType(model.IsCustomModel),
					})
				}
				stats.DotcomChatModels[i].TotalEngagedUsers += model.TotalEngagedUsers
				stats.DotcomChatModels[i].TotalChats += model.TotalChats
			}
		}

		if pr := day.CopilotDotcomPullRequests; pr != nil {
			stats.TotalDotcomPRUsers += pr.TotalEngagedUsers
			daily.DotcomPullRequests = pr.TotalEngagedUsers
			for _, repo := range pr.Repositories {
				for _, model := range repo.Models {
					prNames[model.Name] = struct{}{}
					stats.TotalPRSummariesCreated += model.TotalPRSummariesCreated
					i, fresh := prIdx.slot(model.Name+"-"+repo.Name, len(stats.DotcomPRModels))
					if fresh {
						stats.DotcomPRModels = append(stats.DotcomPRModels, PRModelUsage{
							Name: model.Name, Repository: repo.Name, ModelType: ModelType(model.IsCustomModel),
						})
					}
					stats.DotcomPRModels[i].TotalEngagedUsers += model.TotalEngagedUsers
					stats.DotcomPRModels[i].TotalPRSummariesCreated += model.TotalPRSummariesCreated
				}
			}
		}

		stats.DailyEngagement = append(stats.DailyEngagement, daily)
	}

	stats.TotalIDECodeCompletionModels = len(completionNames)
	stats.TotalIDEChatModels = len(chatNames)
	stats.TotalDotcomChatModels = len(dotcomNames)
	stats.TotalDotcomPRModels = len(prNames)
	return stats
}
