package entity

import "time"

// Part is an identifiable component in an organization's catalog,
// independent of its current specification. The specification lives on
// PartRevision rows.
type Part struct {
	ID                        string    `json:"id" gorm:"primaryKey;size:32"`
	OrganizationID            string    `json:"organization_id" gorm:"size:32;not null;uniqueIndex:idx_part_number"`
	NumberClassID             *string   `json:"number_class_id,omitempty" gorm:"size:32;uniqueIndex:idx_part_number"`
	NumberItem                string    `json:"number_item" gorm:"size:64;not null;uniqueIndex:idx_part_number"`
	NumberVariation           string    `json:"number_variation" gorm:"size:16;not null;default:'';uniqueIndex:idx_part_number"`
	PrimaryManufacturerPartID *string   `json:"primary_manufacturer_part_id,omitempty" gorm:"size:32"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`

	// Relations
	Organization            *Organization     `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	NumberClass             *PartClass        `json:"number_class,omitempty" gorm:"foreignKey:NumberClassID"`
	PrimaryManufacturerPart *ManufacturerPart `json:"primary_manufacturer_part,omitempty" gorm:"foreignKey:PrimaryManufacturerPartID"`
	Revisions               []PartRevision    `json:"revisions,omitempty" gorm:"foreignKey:PartID"`
}

func (Part) TableName() string {
	return "parts"
}

// FullNumber renders the part number in the org's scheme. The class
// segment is empty in the intelligent scheme, where the item stands alone.
func (p *Part) FullNumber() string {
	if p.NumberClass == nil || p.NumberClass.Code == "" {
		return p.NumberItem
	}
	n := p.NumberClass.Code + "-" + p.NumberItem
	if p.NumberVariation != "" {
		n += "-" + p.NumberVariation
	}
	return n
}

// Revision configurations. A Working→Released transition is a Release,
// Released→Working is a Revert; the revision timestamp updates on both.
const (
	ConfigurationWorking  = "working"
	ConfigurationReleased = "released"
)

// PartRevision is a versioned snapshot of a part's specification attributes
// and its assembly. Either Description or Value+ValueUnits must be present.
type PartRevision struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	PartID        string    `json:"part_id" gorm:"size:32;not null;uniqueIndex:idx_revision_part_rev"`
	Revision      string    `json:"revision" gorm:"size:4;not null;uniqueIndex:idx_revision_part_rev"`
	Timestamp     time.Time `json:"timestamp" gorm:"not null"`
	Configuration string    `json:"configuration" gorm:"size:16;not null;default:working"`
	AssemblyID    *string   `json:"assembly_id,omitempty" gorm:"size:32;index"`

	Description string   `json:"description,omitempty" gorm:"size:255"`
	Value       *float64 `json:"value,omitempty" gorm:"type:numeric(20,6)"`
	ValueUnits  string   `json:"value_units,omitempty" gorm:"size:16"`

	Attribute string `json:"attribute,omitempty" gorm:"size:255"`

	// Optional specification attributes. Each X_units column is set iff its
	// X column is set; the attr registry enforces the pairing.
	Tolerance          string   `json:"tolerance,omitempty" gorm:"size:16"`
	Package            string   `json:"package,omitempty" gorm:"size:32"`
	PinCount           *int     `json:"pin_count,omitempty"`
	Frequency          *float64 `json:"frequency,omitempty" gorm:"type:numeric(20,6)"`
	FrequencyUnits     string   `json:"frequency_units,omitempty" gorm:"size:16"`
	Wavelength         *float64 `json:"wavelength,omitempty" gorm:"type:numeric(20,6)"`
	WavelengthUnits    string   `json:"wavelength_units,omitempty" gorm:"size:16"`
	Memory             *float64 `json:"memory,omitempty" gorm:"type:numeric(20,6)"`
	MemoryUnits        string   `json:"memory_units,omitempty" gorm:"size:16"`
	Interface          string   `json:"interface,omitempty" gorm:"size:32"`
	SupplyVoltage      *float64 `json:"supply_voltage,omitempty" gorm:"type:numeric(20,6)"`
	SupplyVoltageUnits string   `json:"supply_voltage_units,omitempty" gorm:"size:16"`
	Temperature        *float64 `json:"temperature_rating,omitempty" gorm:"type:numeric(20,6)"`
	TemperatureUnits   string   `json:"temperature_rating_units,omitempty" gorm:"size:16"`
	Power              *float64 `json:"power_rating,omitempty" gorm:"type:numeric(20,6)"`
	PowerUnits         string   `json:"power_rating_units,omitempty" gorm:"size:16"`
	Voltage            *float64 `json:"voltage_rating,omitempty" gorm:"type:numeric(20,6)"`
	VoltageUnits       string   `json:"voltage_rating_units,omitempty" gorm:"size:16"`
	Current            *float64 `json:"current_rating,omitempty" gorm:"type:numeric(20,6)"`
	CurrentUnits       string   `json:"current_rating_units,omitempty" gorm:"size:16"`
	Material           string   `json:"material,omitempty" gorm:"size:64"`
	Color              string   `json:"color,omitempty" gorm:"size:32"`
	Finish             string   `json:"finish,omitempty" gorm:"size:64"`
	Length             *float64 `json:"length,omitempty" gorm:"type:numeric(20,6)"`
	LengthUnits        string   `json:"length_units,omitempty" gorm:"size:16"`
	Width              *float64 `json:"width,omitempty" gorm:"type:numeric(20,6)"`
	WidthUnits         string   `json:"width_units,omitempty" gorm:"size:16"`
	Height             *float64 `json:"height,omitempty" gorm:"type:numeric(20,6)"`
	HeightUnits        string   `json:"height_units,omitempty" gorm:"size:16"`
	Weight             *float64 `json:"weight,omitempty" gorm:"type:numeric(20,6)"`
	WeightUnits        string   `json:"weight_units,omitempty" gorm:"size:16"`

	DisplayableSynopsis string `json:"displayable_synopsis,omitempty" gorm:"size:512"`
	SearchableSynopsis  string `json:"searchable_synopsis,omitempty" gorm:"size:512"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Part     *Part     `json:"part,omitempty" gorm:"foreignKey:PartID"`
	Assembly *Assembly `json:"assembly,omitempty" gorm:"foreignKey:AssemblyID"`
}

func (PartRevision) TableName() string {
	return "part_revisions"
}
