package submission

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tbxark/reliefwizard/attachment"
	"github.com/tbxark/reliefwizard/field"
)

// Mapping translates UI labels of categorical fields to the backend
// vocabulary: field name -> label -> wire value.
type Mapping map[string]map[string]string

// Lookup returns the wire value for label. Unmapped labels come back
// unchanged so user input is never lost.
func (m Mapping) Lookup(fieldName, label string) (string, bool) {
	table, ok := m[fieldName]
	if !ok {
		return label, false
	}
	wire, ok := table[label]
	if !ok {
		return label, false
	}
	return wire, true
}

type Option func(*Assembler)

// WithAliases renames schema fields to wire keys. Fields without an alias
// keep their name.
func WithAliases(aliases map[string]string) Option {
	return func(a *Assembler) {
		for k, v := range aliases {
			a.aliases[k] = v
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(a *Assembler) {
		a.newID = newID
	}
}

type Assembler struct {
	mapping Mapping
	aliases map[string]string
	now     func() time.Time
	newID   func() string
}

func NewAssembler(mapping Mapping, opts ...Option) *Assembler {
	a := &Assembler{
		mapping: mapping,
		aliases: make(map[string]string),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Assemble builds the submission record. It performs no validation; the
// caller must only use it for a draft that passed every step.
func (a *Assembler) Assemble(snapshot field.Snapshot, attachments []attachment.Attachment) *Record {
	defs := snapshot.Schema().Definitions()
	rec := &Record{
		id:          a.newID(),
		createdAt:   a.now().UTC(),
		fields:      make(map[string]any, len(defs)),
		order:       make([]string, 0, len(defs)),
		attachments: append([]attachment.Attachment(nil), attachments...),
	}
	for _, def := range defs {
		key := def.Name
		if alias, ok := a.aliases[key]; ok && alias != "" {
			key = alias
		}
		rec.fields[key] = a.wireValue(def, snapshot)
		rec.order = append(rec.order, key)
	}
	return rec
}

func (a *Assembler) wireValue(def field.Definition, snapshot field.Snapshot) any {
	switch def.Kind {
	case field.KindEnum:
		return a.mapLabel(def.Name, field.TrimText(snapshot.String(def.Name)))
	case field.KindTags:
		tags := snapshot.Tags(def.Name)
		out := make([]string, 0, len(tags))
		for _, tag := range tags {
			if t := field.TrimText(tag); t != "" {
				out = append(out, a.mapLabel(def.Name, t))
			}
		}
		return out
	case field.KindText:
		return field.TrimText(snapshot.String(def.Name))
	case field.KindLocation:
		loc := snapshot.Location(def.Name)
		if loc == nil {
			return nil
		}
		return map[string]any{"address": loc.Address, "lat": loc.Lat, "lng": loc.Lng}
	default:
		return snapshot.Value(def.Name)
	}
}

func (a *Assembler) mapLabel(fieldName, label string) string {
	if label == "" {
		return label
	}
	wire, ok := a.mapping.Lookup(fieldName, label)
	if !ok {
		if _, hasTable := a.mapping[fieldName]; hasTable {
			slog.Debug("passing through unmapped label", "field", fieldName, "label", label)
		}
	}
	return wire
}
