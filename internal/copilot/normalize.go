package copilot

// Normalize guarantees the shape consumers rely on: every day has a code
// completions section and every slice in it is non-nil. It mutates days in
// place and returns them for chaining.
func Normalize(days []MetricsDay) []MetricsDay {
	for i := range days {
		cc := days[i].CopilotIDECodeCompletions
		if cc == nil {
			cc = &IDECodeCompletions{}
			days[i].CopilotIDECodeCompletions = cc
		}
		if cc.Editors == nil {
			cc.Editors = []CodeCompletionEditor{}
		}
		if cc.Languages == nil {
			cc.Languages = []CodeCompletionLanguage{}
		}
		for e := range cc.Editors {
			for m := range cc.Editors[e].Models {
				if cc.Editors[e].Models[m].Languages == nil {
					cc.Editors[e].Models[m].Languages = []CodeCompletionModelLanguage{}
				}
			}
		}
	}
	return days
}
