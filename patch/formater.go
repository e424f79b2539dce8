package patch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tbxark/reliefwizard/types"
)

func formatAllowedPaths(paths []string) string {
	if len(paths) == 0 {
		return "all (no restriction)"
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	var sb strings.Builder
	for _, path := range sorted {
		sb.WriteString("- ")
		sb.WriteString(path)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatMissingFieldsSection(fields []types.FieldInfo) string {
	if len(fields) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("# Missing required fields:\n")
	for _, field := range fields {
		sb.WriteString(fmt.Sprintf("- %s [%s]", field.DisplayName, field.Pointer))
		if field.Description != "" {
			sb.WriteString(": " + field.Description)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatFieldGuidanceSection(guidance map[string]string) string {
	if len(guidance) == 0 {
		return ""
	}
	keys := make([]string, 0, len(guidance))
	for path := range guidance {
		keys = append(keys, path)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString("# Field guidance:\n")
	for _, path := range keys {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", path, guidance[path]))
	}
	return strings.TrimRight(sb.String(), "\n")
}
