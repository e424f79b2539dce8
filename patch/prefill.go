package patch

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// SeedPatches returns the operations that copy non-empty values of initial
// into current wherever current still holds an empty value. Values the user
// already entered are never overwritten.
func SeedPatches[T any](current, initial T) ([]Operation, error) {
	currentMap, err := toMap(current)
	if err != nil {
		return nil, fmt.Errorf("failed to convert current state: %w", err)
	}
	initialMap, err := toMap(initial)
	if err != nil {
		return nil, fmt.Errorf("failed to convert initial state: %w", err)
	}

	patches := make([]Operation, 0)
	seedFromMap("", currentMap, initialMap, &patches)
	return patches, nil
}

func toMap(v any) (map[string]any, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func seedFromMap(prefix string, current, initial map[string]any, patches *[]Operation) {
	for key, initialValue := range initial {
		if isZeroValue(initialValue) {
			continue
		}
		path := prefix + "/" + EscapePointer(key)
		currentValue, exists := current[key]

		if initialMap, ok := initialValue.(map[string]any); ok {
			if currentMap, ok := currentValue.(map[string]any); ok && !isZeroValue(currentMap) {
				seedFromMap(path, currentMap, initialMap, patches)
				continue
			}
		}

		switch {
		case !exists:
			*patches = append(*patches, Operation{Op: OperationAdd, Path: path, Value: initialValue})
		case isZeroValue(currentValue):
			*patches = append(*patches, Operation{Op: OperationReplace, Path: path, Value: initialValue})
		}
	}
}

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

// EscapePointer escapes a single RFC6901 reference token.
func EscapePointer(token string) string {
	return pointerEscaper.Replace(token)
}

// UnescapePointer reverses EscapePointer.
func UnescapePointer(token string) string {
	return pointerUnescaper.Replace(token)
}

func isZeroValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case float64:
		return val == 0
	case bool:
		return !val
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}
