package field

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TrimText normalizes s to NFC and strips surrounding white space. Emptiness
// and length checks are always made on the trimmed form.
func TrimText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// normalize coerces v to the Go type used for kind. Values that cannot be
// coerced are kept as they are; the store accepts every write.
func normalize(kind Kind, v any) any {
	if v == nil {
		return Empty(kind)
	}
	switch kind {
	case KindText, KindEnum:
		switch val := v.(type) {
		case string:
			return val
		case fmt.Stringer:
			return val.String()
		case float64, float32, int, int64, int32, bool:
			return fmt.Sprint(val)
		}
	case KindNumber:
		switch val := v.(type) {
		case float64:
			return val
		case float32:
			return float64(val)
		case int:
			return float64(val)
		case int32:
			return float64(val)
		case int64:
			return float64(val)
		case uint:
			return float64(val)
		case uint32:
			return float64(val)
		case uint64:
			return float64(val)
		case string:
			if strings.TrimSpace(val) == "" {
				return float64(0)
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
				return f
			}
		}
	case KindLocation:
		switch val := v.(type) {
		case *Location:
			if val == nil {
				return (*Location)(nil)
			}
			cp := *val
			return &cp
		case Location:
			return &val
		case map[string]any:
			return locationFromMap(val)
		}
	case KindTags:
		switch val := v.(type) {
		case []string:
			return append([]string{}, val...)
		case []any:
			out := make([]string, 0, len(val))
			for _, item := range val {
				if item == nil {
					continue
				}
				out = append(out, fmt.Sprint(item))
			}
			return out
		case string:
			if TrimText(val) == "" {
				return []string{}
			}
			return []string{val}
		}
	case KindFlag:
		switch val := v.(type) {
		case bool:
			return val
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
				return b
			}
		}
	}
	return v
}

func locationFromMap(m map[string]any) *Location {
	if len(m) == 0 {
		return nil
	}
	loc := &Location{}
	if s, ok := m["address"].(string); ok {
		loc.Address = s
	}
	loc.Lat = toFloat(m["lat"])
	loc.Lng = toFloat(m["lng"])
	return loc
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	}
	return 0
}

func copyValue(v any) any {
	switch val := v.(type) {
	case *Location:
		if val == nil {
			return (*Location)(nil)
		}
		cp := *val
		return &cp
	case []string:
		return append([]string{}, val...)
	default:
		return v
	}
}

// isEmpty reports whether v is the empty sentinel for kind. Strings are
// trimmed first so white space only input counts as empty.
func isEmpty(kind Kind, v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return TrimText(val) == ""
	case []string:
		for _, tag := range val {
			if TrimText(tag) != "" {
				return false
			}
		}
		return true
	case *Location:
		return val == nil || (TrimText(val.Address) == "" && val.Lat == 0 && val.Lng == 0)
	case float64:
		return kind == KindNumber && val == 0
	case bool:
		return kind == KindFlag && !val
	default:
		return false
	}
}
