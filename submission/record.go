package submission

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/tbxark/reliefwizard/attachment"
)

// Record is the immutable payload produced from a confirmed draft. All
// accessors return copies.
type Record struct {
	id          string
	createdAt   time.Time
	fields      map[string]any
	order       []string
	attachments []attachment.Attachment
}

func (r *Record) ID() string {
	return r.id
}

func (r *Record) CreatedAt() time.Time {
	return r.createdAt
}

// Field returns the wire value stored under key.
func (r *Record) Field(key string) (any, bool) {
	v, ok := r.fields[key]
	return copyWire(v), ok
}

// Keys returns the wire keys in schema order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.order...)
}

func (r *Record) Fields() map[string]any {
	out := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		out[k] = copyWire(v)
	}
	return out
}

func (r *Record) Attachments() []attachment.Attachment {
	return append([]attachment.Attachment(nil), r.attachments...)
}

type wireRecord struct {
	ID          string                  `json:"id"`
	CreatedAt   time.Time               `json:"created_at"`
	Fields      map[string]any          `json:"fields"`
	Attachments []attachment.Attachment `json:"attachments"`
}

func (r *Record) MarshalJSON() ([]byte, error) {
	attachments := r.attachments
	if attachments == nil {
		attachments = []attachment.Attachment{}
	}
	return sonic.Marshal(wireRecord{
		ID:          r.id,
		CreatedAt:   r.createdAt,
		Fields:      r.fields,
		Attachments: attachments,
	})
}

func copyWire(v any) any {
	switch val := v.(type) {
	case []string:
		return append([]string{}, val...)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out
	default:
		return v
	}
}
