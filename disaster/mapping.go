package disaster

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/eino-contrib/jsonschema"
	"github.com/tbxark/reliefwizard/attachment"
	"github.com/tbxark/reliefwizard/field"
	"github.com/tbxark/reliefwizard/submission"
	"github.com/tbxark/reliefwizard/wizard"
)

// Mapping translates the labels shown to reporters into the enum values the
// intake backend accepts.
func Mapping() submission.Mapping {
	return submission.Mapping{
		FieldDisasterDetail: {
			"Flood":               "FLOOD",
			"Earthquake":          "EARTHQUAKE",
			"Typhoon":             "TYPHOON",
			"Landslide":           "LANDSLIDE",
			"Volcanic Eruption":   "VOLCANIC_ERUPTION",
			"Drought":             "DROUGHT",
			OtherNatural:          "OTHER_NATURAL",
			"Fire":                "FIRE",
			"Armed Conflict":      "ARMED_CONFLICT",
			"Chemical Spill":      "CHEMICAL_SPILL",
			"Structural Collapse": "STRUCTURAL_COLLAPSE",
			OtherNonNatural:       "OTHER_NON_NATURAL",
		},
		FieldImpactTypes: {
			"Casualties":            "CASUALTIES",
			"Displacement":          "DISPLACEMENT",
			"Infrastructure Damage": "INFRASTRUCTURE_DAMAGE",
			"Crop Loss":             "CROP_LOSS",
			"Power Outage":          "POWER_OUTAGE",
			"Water Contamination":   "WATER_CONTAMINATION",
		},
		FieldAssistanceTypes: {
			"Food":          "FOOD",
			"Water":         "WATER",
			"Shelter":       "SHELTER",
			"Medical":       "MEDICAL_AID",
			"Rescue":        "SEARCH_AND_RESCUE",
			"Evacuation":    "EVACUATION",
			OtherAssistance: "OTHER",
		},
	}
}

// Aliases maps field names to the snake_case keys of the wire payload.
func Aliases() map[string]string {
	return map[string]string{
		FieldDisasterDetail:       "disaster_type",
		FieldCustomDisasterDetail: "disaster_type_other",
		FieldLocation:             "location",
		FieldDateOfDisaster:       "date_of_disaster",
		FieldDescription:          "description",
		FieldImpactTypes:          "impact_types",
		FieldAssistanceTypes:      "assistance_types",
		FieldCustomAssistance:     "assistance_other",
		FieldPeopleAffected:       "people_affected",
		FieldReporterName:         "reporter_name",
		FieldContactPhone:         "contact_phone",
		FieldContactEmail:         "contact_email",
		FieldShareContact:         "share_contact",
	}
}

func NewAssembler(opts ...submission.Option) *submission.Assembler {
	opts = append([]submission.Option{submission.WithAliases(Aliases())}, opts...)
	return submission.NewAssembler(Mapping(), opts...)
}

// Report documents the field values of the form, keyed by field name. It
// is only used to describe the form to language models and tools.
type Report struct {
	DisasterDetail       string          `json:"disasterDetail" jsonschema:"description=Type of disaster,enum=Flood,enum=Earthquake,enum=Typhoon,enum=Landslide,enum=Volcanic Eruption,enum=Drought,enum=Other Natural,enum=Fire,enum=Armed Conflict,enum=Chemical Spill,enum=Structural Collapse,enum=Other Non-Natural"`
	CustomDisasterDetail string          `json:"customDisasterDetail,omitempty" jsonschema:"description=Disaster type when Other Natural or Other Non-Natural is chosen"`
	Location             *field.Location `json:"location,omitempty" jsonschema:"description=Where the incident happened"`
	DateOfDisaster       string          `json:"dateOfDisaster,omitempty" jsonschema:"description=Date of the incident,format=date"`
	Description          string          `json:"description" jsonschema:"description=What happened and what the situation is now,minLength=20,maxLength=2000"`
	ImpactTypes          []string        `json:"impactTypes,omitempty" jsonschema:"description=Observed impact,enum=Casualties,enum=Displacement,enum=Infrastructure Damage,enum=Crop Loss,enum=Power Outage,enum=Water Contamination"`
	AssistanceTypes      []string        `json:"assistanceTypes" jsonschema:"description=Assistance needed,enum=Food,enum=Water,enum=Shelter,enum=Medical,enum=Rescue,enum=Evacuation,enum=Other"`
	CustomAssistance     string          `json:"customAssistance,omitempty" jsonschema:"description=Assistance needed when Other is chosen"`
	PeopleAffected       float64         `json:"peopleAffected,omitempty" jsonschema:"description=Estimated number of people affected,minimum=0"`
	ReporterName         string          `json:"reporterName,omitempty" jsonschema:"description=Name of the reporter"`
	ContactPhone         string          `json:"contactPhone,omitempty" jsonschema:"description=Phone number of the reporter"`
	ContactEmail         string          `json:"contactEmail,omitempty" jsonschema:"description=Email address of the reporter,format=email"`
	ShareContact         bool            `json:"shareContact,omitempty" jsonschema:"description=Whether responders may contact the reporter"`
}

func JSONSchema() (string, error) {
	schema := jsonschema.Reflect(&Report{})
	schema.Title = "Disaster report"
	schema.Description = "A report of a disaster incident with its impact, the assistance needed and how to reach the reporter."
	out, err := sonic.MarshalString(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return out, nil
}

// NewWizard wires a fresh store, engine and assembler for one reporting
// session.
func NewWizard(config attachment.Config, opts ...wizard.Option) (*wizard.Wizard, error) {
	engine, err := NewEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to build rule engine: %w", err)
	}
	return wizard.New(
		engine,
		field.NewStore(Schema()),
		attachment.NewManager(config),
		NewAssembler(),
		opts...,
	)
}
