package disaster

import (
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/reliefwizard/attachment"
	"github.com/tbxark/reliefwizard/field"
	"github.com/tbxark/reliefwizard/validate"
)

func snapshot(values map[string]any) field.Snapshot {
	return field.NewSnapshot(Schema(), values)
}

func TestStepsBuildAnEngine(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	assert.Equal(t, 3, engine.StepCount())
}

func TestOtherNaturalRequiresDetail(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	result := engine.ValidateStep(1, snapshot(map[string]any{FieldDisasterDetail: OtherNatural}))
	assert.Equal(t, validate.Result{FieldCustomDisasterDetail: "Please describe the natural disaster"}, result)

	ok := engine.Valid(1, snapshot(map[string]any{
		FieldDisasterDetail:       OtherNatural,
		FieldCustomDisasterDetail: "Sinkhole",
	}))
	assert.True(t, ok)
}

func TestContactNeedsPhoneOrEmail(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	result := engine.ValidateStep(3, snapshot(map[string]any{FieldContactPhone: "  ", FieldContactEmail: ""}))
	assert.Equal(t, validate.Result{ContactRuleKey: "Please provide a phone number or an email address"}, result)

	assert.True(t, engine.Valid(3, snapshot(map[string]any{FieldContactPhone: "+63 917 555 0101"})))
	assert.True(t, engine.Valid(3, snapshot(map[string]any{FieldContactEmail: "ana@example.org"})))

	assert.True(t, engine.Valid(3, snapshot(map[string]any{FieldContactPhone: "911"})))
	assert.True(t, engine.Valid(3, snapshot(map[string]any{FieldContactEmail: "ask at the barangay hall"})))
	assert.True(t, engine.Valid(3, snapshot(map[string]any{FieldContactEmail: "ana@"})))
}

func TestContactHintsDoNotBlock(t *testing.T) {
	hints := ContactHints(snapshot(map[string]any{
		FieldContactPhone: "911",
		FieldContactEmail: "ask at the barangay hall",
	}))
	assert.Equal(t, validate.Result{FieldContactEmail: "This does not look like an email address"}, hints)

	hints = ContactHints(snapshot(map[string]any{FieldContactPhone: "call the chapel"}))
	assert.Contains(t, hints, FieldContactPhone)
	assert.Empty(t, ContactHints(snapshot(map[string]any{
		FieldContactPhone: "+63 917 555 0101",
		FieldContactEmail: "ana@example.org",
	})))
	assert.Empty(t, ContactHints(snapshot(nil)))
}

func TestImpactStep(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	result := engine.ValidateStep(2, snapshot(map[string]any{
		FieldDescription:     "Too short",
		FieldAssistanceTypes: []string{OtherAssistance},
		FieldPeopleAffected:  -3,
	}))
	assert.Equal(t, "Description must be at least 20 characters", result[FieldDescription])
	assert.Contains(t, result, FieldCustomAssistance)
	assert.Contains(t, result, PeopleRuleKey)

	assert.True(t, engine.Valid(2, snapshot(map[string]any{
		FieldDescription:     "The river overflowed into the market",
		FieldAssistanceTypes: []string{"Food"},
	})))
}

func TestDateFormat(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	for _, date := range []string{"03/01/2026", "2024-13-45", "2025-02-29"} {
		result := engine.ValidateStep(1, snapshot(map[string]any{FieldDisasterDetail: "Flood", FieldDateOfDisaster: date}))
		assert.Contains(t, result, FieldDateOfDisaster, date)
	}
	assert.True(t, engine.Valid(1, snapshot(map[string]any{FieldDisasterDetail: "Flood", FieldDateOfDisaster: "2024-02-29"})))
}

func TestEveryOptionIsMapped(t *testing.T) {
	m := Mapping()
	for name, options := range map[string][]string{
		FieldDisasterDetail:  DisasterDetails,
		FieldImpactTypes:     ImpactTypes,
		FieldAssistanceTypes: AssistanceTypes,
	} {
		for _, option := range options {
			_, ok := m.Lookup(name, option)
			assert.True(t, ok, "%s/%s", name, option)
		}
	}
	for _, name := range Schema().Names() {
		assert.NotEmpty(t, Aliases()[name], name)
	}
}

func TestAssembleWireRecord(t *testing.T) {
	snap := snapshot(map[string]any{
		FieldDisasterDetail:  OtherNatural,
		FieldAssistanceTypes: []string{"Medical", "Blankets"},
	})
	rec := NewAssembler().Assemble(snap, nil)

	v, ok := rec.Field("disaster_type")
	require.True(t, ok)
	assert.Equal(t, "OTHER_NATURAL", v)
	v, _ = rec.Field("assistance_types")
	assert.Equal(t, []string{"MEDICAL_AID", "Blankets"}, v)
}

func TestJSONSchema(t *testing.T) {
	out, err := JSONSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, sonic.UnmarshalString(out, &doc))
	assert.Equal(t, "Disaster report", doc["title"])
	assert.True(t, strings.Contains(out, FieldDisasterDetail))
	assert.True(t, strings.Contains(out, OtherNatural))
}

func TestIdentityValues(t *testing.T) {
	values := IdentityValues("Ana", "ana@example.org")
	for name := range values {
		assert.True(t, Schema().Has(name), name)
	}
}

func TestNewWizard(t *testing.T) {
	w, err := NewWizard(attachment.Config{MaxAttachments: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, w.ConfirmStep())
	assert.Equal(t, 3, w.Attachments().Config().MaxAttachments)
	assert.True(t, w.Store().Snapshot().Flag(FieldShareContact))
}
