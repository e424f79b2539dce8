package types

type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseConfirming Phase = "confirming"
	PhaseSubmitted  Phase = "submitted"
	PhaseCancelled  Phase = "cancelled"
)

// Terminal reports whether no further navigation is possible.
func (p Phase) Terminal() bool {
	return p == PhaseSubmitted || p == PhaseCancelled
}

// FieldInfo describes a field for prompts and issue listings. Pointer is the
// RFC6901 path of the field inside the form values document.
type FieldInfo struct {
	Name        string `json:"name"`
	Pointer     string `json:"pointer"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// Issue is a single validation message keyed by a field name or a
// cross-field rule key.
type Issue struct {
	Key     string `json:"key"`
	Label   string `json:"label,omitempty"`
	Message string `json:"message"`
}
