// Package disaster holds the reference disaster report form: its fields,
// the rules of each wizard step and the wire vocabulary of the backend.
package disaster

import (
	"regexp"
	"sync"

	"github.com/tbxark/reliefwizard/field"
	"github.com/tbxark/reliefwizard/validate"
)

const (
	FieldDisasterDetail       = "disasterDetail"
	FieldCustomDisasterDetail = "customDisasterDetail"
	FieldLocation             = "location"
	FieldDateOfDisaster       = "dateOfDisaster"
	FieldDescription          = "description"
	FieldImpactTypes          = "impactTypes"
	FieldAssistanceTypes      = "assistanceTypes"
	FieldCustomAssistance     = "customAssistance"
	FieldPeopleAffected       = "peopleAffected"
	FieldReporterName         = "reporterName"
	FieldContactPhone         = "contactPhone"
	FieldContactEmail         = "contactEmail"
	FieldShareContact         = "shareContact"

	// ContactRuleKey carries the combined phone-or-email message.
	ContactRuleKey = "contact"
	// PeopleRuleKey carries the people-affected range message.
	PeopleRuleKey = "peopleCount"

	OtherNatural    = "Other Natural"
	OtherNonNatural = "Other Non-Natural"
	OtherAssistance = "Other"

	MinDescriptionLength = 20
	MaxDescriptionLength = 2000

	DateLayout = "2006-01-02"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{2,19}$`)
)

var DisasterDetails = []string{
	"Flood", "Earthquake", "Typhoon", "Landslide", "Volcanic Eruption", "Drought", OtherNatural,
	"Fire", "Armed Conflict", "Chemical Spill", "Structural Collapse", OtherNonNatural,
}

var ImpactTypes = []string{
	"Casualties", "Displacement", "Infrastructure Damage", "Crop Loss", "Power Outage", "Water Contamination",
}

var AssistanceTypes = []string{
	"Food", "Water", "Shelter", "Medical", "Rescue", "Evacuation", OtherAssistance,
}

var (
	schemaOnce sync.Once
	schema     *field.Schema
)

// Schema returns the field schema of the report. It is built once and
// shared; schemas are immutable.
func Schema() *field.Schema {
	schemaOnce.Do(func() {
		schema = field.MustSchema(
			field.Definition{Name: FieldDisasterDetail, Kind: field.KindEnum, Label: "Disaster type", Options: DisasterDetails},
			field.Definition{Name: FieldCustomDisasterDetail, Kind: field.KindText, Label: "Disaster type (other)", Description: "Describe the disaster when no listed type fits"},
			field.Definition{Name: FieldLocation, Kind: field.KindLocation, Label: "Location", Description: "Where the incident happened"},
			field.Definition{Name: FieldDateOfDisaster, Kind: field.KindText, Label: "Date", Description: "Date of the incident, YYYY-MM-DD"},
			field.Definition{Name: FieldDescription, Kind: field.KindText, Label: "Description", Description: "What happened and what the situation is now"},
			field.Definition{Name: FieldImpactTypes, Kind: field.KindTags, Label: "Impact", Options: ImpactTypes},
			field.Definition{Name: FieldAssistanceTypes, Kind: field.KindTags, Label: "Assistance needed", Options: AssistanceTypes},
			field.Definition{Name: FieldCustomAssistance, Kind: field.KindText, Label: "Assistance needed (other)"},
			field.Definition{Name: FieldPeopleAffected, Kind: field.KindNumber, Label: "People affected"},
			field.Definition{Name: FieldReporterName, Kind: field.KindText, Label: "Your name"},
			field.Definition{Name: FieldContactPhone, Kind: field.KindText, Label: "Phone"},
			field.Definition{Name: FieldContactEmail, Kind: field.KindText, Label: "Email"},
			field.Definition{Name: FieldShareContact, Kind: field.KindFlag, Label: "Share contact with responders", Default: true},
		)
	})
	return schema
}

// Steps returns the rule groups of the three data steps. Step 4 is the
// confirmation step and has no rules.
func Steps() []validate.Step {
	return []validate.Step{
		{
			Index:    1,
			Title:    "Disaster",
			Required: []string{FieldDisasterDetail},
			Patterns: []validate.PatternRule{
				{Field: FieldDateOfDisaster, Match: validate.TimeLayout(DateLayout), Message: "Date must be a real date in the YYYY-MM-DD format"},
			},
			Conditional: []validate.ConditionalRequirement{
				{TriggerField: FieldDisasterDetail, TriggerValue: OtherNatural, ThenRequired: FieldCustomDisasterDetail, Message: "Please describe the natural disaster"},
				{TriggerField: FieldDisasterDetail, TriggerValue: OtherNonNatural, ThenRequired: FieldCustomDisasterDetail, Message: "Please describe the disaster"},
			},
		},
		{
			Index:     2,
			Title:     "Impact",
			Required:  []string{FieldDescription, FieldAssistanceTypes},
			MinLength: map[string]int{FieldDescription: MinDescriptionLength},
			MaxLength: map[string]int{FieldDescription: MaxDescriptionLength},
			Conditional: []validate.ConditionalRequirement{
				{TriggerField: FieldAssistanceTypes, TriggerValue: OtherAssistance, ThenRequired: FieldCustomAssistance},
			},
			CrossField: []validate.CrossFieldRule{
				validate.MustExprRule(PeopleRuleKey, "People affected cannot be negative",
					`fields.peopleAffected >= 0.0`, FieldPeopleAffected),
			},
		},
		{
			Index: 3,
			Title: "Contact",
			CrossField: []validate.CrossFieldRule{
				validate.MustExprRule(ContactRuleKey, "Please provide a phone number or an email address",
					`fields.contactPhone != "" || fields.contactEmail != ""`, FieldContactPhone, FieldContactEmail),
			},
		},
	}
}

func NewEngine() (*validate.Engine, error) {
	return validate.NewEngine(Schema(), Steps()...)
}

// ContactHints flags contact details that do not look like a phone number
// or an email address. Reporters may leave directions instead, so the
// hints never block a step.
func ContactHints(snapshot field.Snapshot) validate.Result {
	hints := validate.Result{}
	if email := field.TrimText(snapshot.String(FieldContactEmail)); email != "" && !emailPattern.MatchString(email) {
		hints[FieldContactEmail] = "This does not look like an email address"
	}
	if phone := field.TrimText(snapshot.String(FieldContactPhone)); phone != "" && !phonePattern.MatchString(phone) {
		hints[FieldContactPhone] = "This does not look like a phone number"
	}
	return hints
}

// IdentityValues maps identity data of a signed-in user to report fields.
func IdentityValues(name, email string) map[string]any {
	return map[string]any{
		FieldReporterName: name,
		FieldContactEmail: email,
	}
}
