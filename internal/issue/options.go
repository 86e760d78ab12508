package issue

import (
	"strings"

	"bugtrack/internal/config"
	"bugtrack/internal/domain"
)

// Recognized option keys. Keys are matched case-insensitively and may carry
// a "bugtracker." or legacy "jira." prefix. The name of a custom field keeps
// its case.
const (
	OptAssignee    = "assignee"
	OptReporter    = "reporter"
	OptPriority    = "priority"
	OptIssueType   = "issuetype"
	OptComponents  = "components"
	OptFieldPrefix = "field."
)

// ApplyOptions fills the tracker-specific fields of issue. Unknown keys are ignored.
func ApplyOptions(issue *domain.Issue, options map[string]string) {
	for rawKey, value := range options {
		key := config.OptionKey(rawKey)
		switch {
		case key == OptAssignee:
			issue.Assignee = value
		case key == OptReporter:
			issue.Reporter = value
		case key == OptPriority:
			issue.Priority = value
		case key == OptIssueType:
			issue.IssueType = value
		case key == OptComponents:
			issue.Components = SplitComponents(value)
		case strings.HasPrefix(key, OptFieldPrefix) && len(key) > len(OptFieldPrefix):
			if issue.CustomFields == nil {
				issue.CustomFields = make(map[string]string)
			}
			issue.CustomFields[strings.TrimPrefix(key, OptFieldPrefix)] = value
		}
	}
}

// SplitComponents splits a comma separated list, dropping blanks.
func SplitComponents(value string) []string {
	var components []string
	for _, c := range strings.Split(value, ",") {
		if c = strings.TrimSpace(c); c != "" {
			components = append(components, c)
		}
	}
	return components
}
