// Package attr is the ordered specification-attribute registry for part
// revisions. Importers, exporters, and the synopsis builder all walk the
// same Fields slice instead of reflecting over entity columns, so adding an
// attribute means adding one registry entry.
package attr

import (
	"strings"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
)

// Kind classifies how a field's cell value is parsed and rendered.
type Kind int

const (
	KindText    Kind = iota // free-form string
	KindChoice              // string restricted to Choices
	KindNumeric             // *float64 with a units partner column
	KindInteger             // *int, no units partner
)

// Choice is a tagged unit or enum variant: a canonical code used in search
// synopses and CSV, and a display glyph used in display synopses.
type Choice struct {
	Code  string
	Glyph string
}

// Field describes one specification attribute. The accessor funcs return
// pointers into a PartRevision so importers can set and exporters can read
// without reflection.
type Field struct {
	Name      string // canonical CSV column name
	UnitsName string // units partner column, empty when none
	Kind      Kind
	Choices   []Choice // valid units (KindNumeric) or valid values (KindChoice)

	Text  func(r *entity.PartRevision) *string
	Num   func(r *entity.PartRevision) **float64
	Int   func(r *entity.PartRevision) **int
	Units func(r *entity.PartRevision) *string
}

func units(g ...string) []Choice {
	out := make([]Choice, len(g))
	for i, u := range g {
		out[i] = Choice{Code: u, Glyph: u}
	}
	return out
}

var (
	valueUnits = []Choice{
		{"ohms", "Ω"}, {"kohms", "kΩ"}, {"megohms", "MΩ"},
		{"pF", "pF"}, {"nF", "nF"}, {"uF", "μF"}, {"F", "F"},
		{"nH", "nH"}, {"uH", "μH"}, {"mH", "mH"}, {"H", "H"},
		{"mV", "mV"}, {"V", "V"}, {"uA", "μA"}, {"mA", "mA"}, {"A", "A"},
		{"mW", "mW"}, {"W", "W"},
		{"Hz", "Hz"}, {"kHz", "kHz"}, {"MHz", "MHz"}, {"GHz", "GHz"},
	}
	frequencyUnits     = units("Hz", "kHz", "MHz", "GHz")
	wavelengthUnits    = []Choice{{"nm", "nm"}, {"um", "μm"}, {"mm", "mm"}}
	memoryUnits        = units("KB", "MB", "GB", "TB", "Kb", "Mb", "Gb")
	voltageUnits       = units("mV", "V", "kV")
	currentUnits       = []Choice{{"uA", "μA"}, {"mA", "mA"}, {"A", "A"}}
	powerUnits         = units("mW", "W", "kW")
	temperatureUnits   = []Choice{{"C", "°C"}, {"F", "°F"}}
	distanceUnits      = []Choice{{"mil", "mil"}, {"mm", "mm"}, {"cm", "cm"}, {"m", "m"}, {"in", "in"}}
	weightUnits        = units("mg", "g", "kg", "oz", "lb")
	supplyVoltageUnits = units("mV", "V")

	packageChoices = units(
		"0201", "0402", "0603", "0805", "1206", "1210", "2512",
		"SOT-23", "SOT-223", "SOIC-8", "SOIC-16", "TSSOP", "QFN", "DFN",
		"BGA", "DIP", "TO-92", "TO-220", "TO-263",
	)
	interfaceChoices = units(
		"I2C", "SPI", "UART", "USB", "CAN", "RS-232", "RS-485",
		"Ethernet", "1-Wire", "PCIe", "SDIO", "JTAG",
	)
)

// Fields is the registry, in synopsis/export order.
var Fields = []Field{
	{
		Name: "value", UnitsName: "value_units", Kind: KindNumeric, Choices: valueUnits,
		Num:   func(r *entity.PartRevision) **float64 { return &r.Value },
		Units: func(r *entity.PartRevision) *string { return &r.ValueUnits },
	},
	{
		Name: "tolerance", Kind: KindText,
		Text: func(r *entity.PartRevision) *string { return &r.Tolerance },
	},
	{
		Name: "attribute", Kind: KindText,
		Text: func(r *entity.PartRevision) *string { return &r.Attribute },
	},
	{
		Name: "package", Kind: KindChoice, Choices: packageChoices,
		Text: func(r *entity.PartRevision) *string { return &r.Package },
	},
	{
		Name: "pin_count", Kind: KindInteger,
		Int: func(r *entity.PartRevision) **int { return &r.PinCount },
	},
	{
		Name: "frequency", UnitsName: "frequency_units", Kind: KindNumeric, Choices: frequencyUnits,
		Num:   func(r *entity.PartRevision) **float64 { return &r.Frequency },
		Units: func(r *entity.PartRevision) *string { return &r.FrequencyUnits },
	},
	{
		Name: "wavelength", UnitsName: "wavelength_units", Kind: KindNumeric, Choices: wavelengthUnits,
		Num:   func(r *entity.PartRevision) **float64 { return &r.Wavelength },
		Units: func(r *entity.PartRevision) *string { return &r.WavelengthUnits },
	},
	{
		Name: "memory", UnitsName: "memory_units", Kind: KindNumeric, Choices: memoryUnits,
		Num:   func(r *entity.PartRevision) **float64 { return &r.Memory },
		Units: func(r *entity.PartRevision) *string { return &r.MemoryUnits },
	},
	{
		Name: "interface", Kind: KindChoice, Choices: interfaceChoices,
		Text: func(r *entity.PartRevision) *string { return &r.Interface },
	},
	{
		Name: "supply_voltage", UnitsName: "supply_voltage_units", Kind: KindNumeric, Choices: supplyVoltageUnits,
		Num:   func(r *entity.PartRevision) **float64 { return &r.SupplyVoltage },
		Units: func(r *entity.PartRevision) *string { return &r.SupplyVoltageUnits },
	},
	{
		Name: "temperature_rating", UnitsName: "temperature_rating_units", Kind: KindNumeric, Choices: temperatureUnits,
		Num:   func(r *entity.PartRevision) **float64 { return &r.Temperature },
		Units: func(r *entity.PartRevision) *string { return &r.TemperatureUnits },
	},
	{
		Name: "power_rating", UnitsName: "power_rating_units", Kind: KindNumeric, Choices: powerUnits,
		Num:   func(r *entity.PartRevision) **float64 { return &r.Power },
		Units: func(r *entity.PartRevision) *string { return &r.PowerUnits },
	},
	{
		Name: "voltage_rating", UnitsName: "voltage_rating_units", Kind: KindNumeric, Choices: voltageUnits,
		Num:   func(r *entity.PartRevision) **float64 { return &r.Voltage },
		Units: func(r *entity.PartRevision) *string { return &r.VoltageUnits },
	},
	{
		Name: "current_rating", UnitsName: "current_rating_units", Kind: KindNumeric, Choices: currentUnits,
		Num:   func(r *entity.PartRevision) **float64 { return &r.Current },
		Units: func(r *entity.PartRevision) *string { return &r.CurrentUnits },
	},
	{
		Name: "material", Kind: KindText,
		Text: func(r *entity.PartRevision) *string { return &r.Material },
	},
	{
		Name: "color", Kind: KindText,
		Text: func(r *entity.PartRevision) *string { return &r.Color },
	},
	{
		Name: "finish", Kind: KindText,
		Text: func(r *entity.PartRevision) *string { return &r.Finish },
	},
	{
		Name: "length", UnitsName: "length_units", Kind: KindNumeric, Choices: distanceUnits,
		Num:   func(r *entity.PartRevision) **float64 { return &r.Length },
		Units: func(r *entity.PartRevision) *string { return &r.LengthUnits },
	},
	{
		Name: "width", UnitsName: "width_units", Kind: KindNumeric, Choices: distanceUnits,
		Num:   func(r *entity.PartRevision) **float64 { return &r.Width },
		Units: func(r *entity.PartRevision) *string { return &r.WidthUnits },
	},
	{
		Name: "height", UnitsName: "height_units", Kind: KindNumeric, Choices: distanceUnits,
		Num:   func(r *entity.PartRevision) **float64 { return &r.Height },
		Units: func(r *entity.PartRevision) *string { return &r.HeightUnits },
	},
	{
		Name: "weight", UnitsName: "weight_units", Kind: KindNumeric, Choices: weightUnits,
		Num:   func(r *entity.PartRevision) **float64 { return &r.Weight },
		Units: func(r *entity.PartRevision) *string { return &r.WeightUnits },
	},
}

// ByName returns the registry entry for a canonical column name.
func ByName(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FindChoice resolves a value against a choice set case-insensitively and
// returns the canonical variant.
func FindChoice(choices []Choice, value string) (Choice, bool) {
	for _, c := range choices {
		if strings.EqualFold(c.Code, value) {
			return c, true
		}
	}
	return Choice{}, false
}

// Glyph returns the display glyph for a canonical unit code, or the code
// itself when it is not in the set.
func Glyph(choices []Choice, code string) string {
	if c, ok := FindChoice(choices, code); ok {
		return c.Glyph
	}
	return code
}
