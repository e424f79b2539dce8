package patch

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidatePatchOperations checks every operation against the allowed path
// patterns. A pattern segment "*" matches any token and "-" matches an array
// index or the append token. An empty allow-list permits everything.
func ValidatePatchOperations(ops []Operation, allowedPaths map[string]bool) error {
	for i, op := range ops {
		switch op.Op {
		case OperationAdd, OperationRemove, OperationReplace:
		default:
			return fmt.Errorf("operation %d: unsupported op %q", i, op.Op)
		}
		if err := validatePathAllowed(op.Path, allowedPaths); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}

func validatePathAllowed(path string, allowedPaths map[string]bool) error {
	if len(allowedPaths) == 0 || allowedPaths[path] {
		return nil
	}
	segments := strings.Split(path, "/")
	for pattern := range allowedPaths {
		if matchPattern(strings.Split(pattern, "/"), segments) {
			return nil
		}
	}
	return fmt.Errorf("path %q is not in the allowed paths set", path)
}

func matchPattern(pattern, segments []string) bool {
	if len(pattern) != len(segments) {
		return false
	}
	for i, p := range pattern {
		s := segments[i]
		switch p {
		case "*":
		case "-":
			if s == "-" {
				continue
			}
			if _, err := strconv.Atoi(s); err != nil {
				return false
			}
		default:
			if p != s {
				return false
			}
		}
	}
	return true
}
