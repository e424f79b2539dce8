package types

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// FormatFields renders fields as a markdown table under the given heading.
func FormatFields(heading string, fields []FieldInfo) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# ")
	buf.WriteString(heading)
	buf.WriteString(":\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Pointer", "Description")
	for _, field := range fields {
		_ = table.Append(field.DisplayName, field.Pointer, field.Description)
	}
	_ = table.Render()
	return buf.String()
}

// FormatIssues renders validation issues as a markdown table.
func FormatIssues(issues []Issue) string {
	if len(issues) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Validation errors:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Error")
	for _, issue := range issues {
		name := issue.Label
		if name == "" {
			name = issue.Key
		}
		_ = table.Append(name, issue.Message)
	}
	_ = table.Render()
	return buf.String()
}
