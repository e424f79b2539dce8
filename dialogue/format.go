package dialogue

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/tbxark/reliefwizard/types"
)

func formatUserInputSection(lastInput string, patchApplied bool) string {
	if lastInput == "" {
		return ""
	}
	extracted := "no"
	if patchApplied {
		extracted = "yes"
	}
	return fmt.Sprintf("# Reporter input:\n%s\n> extracted info: %s", lastInput, extracted)
}

func formatSummarySection(summary [][2]string) string {
	if len(summary) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Report summary:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Value")
	for _, row := range summary {
		_ = table.Append(row[0], row[1])
	}
	_ = table.Render()
	return buf.String()
}

// FormatRequest renders req as the markdown context handed to a language
// model.
func FormatRequest(req *Request) string {
	sections := []string{
		fmt.Sprintf("# Phase: %s\n# Step: %d of %d %s", req.Phase, req.Step, req.StepCount, req.StepTitle),
	}
	if s := types.FormatFields("Missing required fields", req.Missing); s != "" {
		sections = append(sections, s)
	}
	if s := types.FormatIssues(req.Issues); s != "" {
		sections = append(sections, s)
	}
	if s := formatSummarySection(req.Summary); s != "" {
		sections = append(sections, s)
	}
	if req.PendingAuthGate {
		sections = append(sections, "# Submission held: the reporter must sign in first")
	}
	if req.SubmitError != "" {
		sections = append(sections, fmt.Sprintf("# Submission failed:\n%s", req.SubmitError))
	}
	if req.ReceiptID != "" {
		sections = append(sections, fmt.Sprintf("# Submitted, receipt: %s", req.ReceiptID))
	}
	if s := formatUserInputSection(req.LastUserInput, req.PatchApplied); s != "" {
		sections = append(sections, s)
	}
	return strings.Join(sections, "\n\n")
}
