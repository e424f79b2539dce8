package field

// Snapshot is an immutable point-in-time copy of a Store. Every accessor
// returns copies, so holders can never observe or cause a later write.
type Snapshot struct {
	schema *Schema
	values map[string]any
}

func newSnapshot(schema *Schema, values map[string]any) Snapshot {
	cp := make(map[string]any, len(values))
	for k, v := range values {
		cp[k] = copyValue(v)
	}
	return Snapshot{schema: schema, values: cp}
}

// NewSnapshot builds a snapshot directly from values, normalizing them the
// way Store.Set would. Fields missing from values hold their defaults.
func NewSnapshot(schema *Schema, values map[string]any) Snapshot {
	st := NewStore(schema)
	st.Restore(values)
	return st.Snapshot()
}

func (s Snapshot) Schema() *Schema {
	return s.schema
}

func (s Snapshot) Value(name string) any {
	v, ok := s.values[name]
	if !ok {
		if def, known := s.schema.Lookup(name); known {
			return Empty(def.Kind)
		}
		return nil
	}
	return copyValue(v)
}

func (s Snapshot) String(name string) string {
	v, _ := s.values[name].(string)
	return v
}

func (s Snapshot) Number(name string) float64 {
	v, _ := s.values[name].(float64)
	return v
}

func (s Snapshot) Flag(name string) bool {
	v, _ := s.values[name].(bool)
	return v
}

func (s Snapshot) Tags(name string) []string {
	v, _ := s.values[name].([]string)
	return append([]string{}, v...)
}

func (s Snapshot) Location(name string) *Location {
	v, _ := s.values[name].(*Location)
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// IsEmpty reports whether the field holds its empty sentinel. Unknown names
// are empty.
func (s Snapshot) IsEmpty(name string) bool {
	def, ok := s.schema.Lookup(name)
	if !ok {
		return true
	}
	return isEmpty(def.Kind, s.values[name])
}

// Values returns a deep copy of all values keyed by field name.
func (s Snapshot) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = copyValue(v)
	}
	return out
}

// Plain returns the values using only maps, slices and scalars, suitable for
// expression evaluation and JSON encoding.
func (s Snapshot) Plain() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		switch val := v.(type) {
		case *Location:
			if val == nil {
				out[k] = nil
				continue
			}
			out[k] = map[string]any{
				"address": val.Address,
				"lat":     val.Lat,
				"lng":     val.Lng,
			}
		case []string:
			out[k] = append([]string{}, val...)
		default:
			out[k] = val
		}
	}
	return out
}
