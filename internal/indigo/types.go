package indigo

// Known remote-side property field names.
//
// These are the only fields the bridge reads from a device's state; anything
// else the server reports is ignored rather than dynamically absorbed.
const (
	FieldIsOn         = "isOn"
	FieldBrightness   = "brightness"
	FieldSpeedIndex   = "speedIndex"
	FieldSetpointHeat = "setpointHeat"
	FieldSetpointCool = "setpointCool"
	FieldTemperature  = "temperatureInput1"
	FieldHumidity     = "humidityInput1"
	FieldHeaterIsOn   = "hvacHeaterIsOn"
	FieldCoolerIsOn   = "hvacCoolerIsOn"

	// Mutually exclusive operating-mode flags. At most one is true.
	FieldModeIsOff         = "hvacOperationModeIsOff"
	FieldModeIsHeat        = "hvacOperationModeIsHeat"
	FieldModeIsCool        = "hvacOperationModeIsCool"
	FieldModeIsAuto        = "hvacOperationModeIsAuto"
	FieldModeIsProgramHeat = "hvacOperationModeIsProgramHeat"
	FieldModeIsProgramCool = "hvacOperationModeIsProgramCool"
	FieldModeIsProgramAuto = "hvacOperationModeIsProgramAuto"
)

// Parent collection markers distinguishing stateful devices from actions.
const (
	RestParentDevices = "devices"
	RestParentActions = "actions"
)

// Summary is one entry of a listing resource: just enough to name the item
// and locate its detail resource.
type Summary struct {
	Name    string `json:"name"`
	RestURL string `json:"restURL"`
}

// Detail is the full detail object for one device, fetched fresh on every
// discovery pass and on every status refresh. It is not retained beyond
// constructing or refreshing an accessory adapter.
type Detail struct {
	Name       string
	RestURL    string
	RestParent string
	Version    string

	// Declared capability flags, immutable for the life of the device.
	SupportsOnOff        bool
	SupportsDim          bool
	SupportsSpeedControl bool
	SupportsHVAC         bool
	DisplaysHumidity     bool

	// Properties is the current value snapshot, filtered to known fields.
	Properties Properties
}

// IsAction reports whether the item belongs to the action-group collection
// rather than the stateful device collection.
func (d *Detail) IsAction() bool {
	return d.RestParent == RestParentActions
}

// detailFromRaw builds a Detail from a decoded JSON object.
//
// Indigo is loose about types: boolean flags may arrive as true/false or as
// 0/1, so every field goes through coercion instead of struct tags.
func detailFromRaw(raw map[string]any) *Detail {
	return &Detail{
		Name:                 stringValue(raw["name"]),
		RestURL:              stringValue(raw["restURL"]),
		RestParent:           stringValue(raw["restParent"]),
		Version:              stringValue(raw["version"]),
		SupportsOnOff:        boolValue(raw["typeSupportsOnOff"]),
		SupportsDim:          boolValue(raw["typeSupportsDim"]),
		SupportsSpeedControl: boolValue(raw["typeSupportsSpeedControl"]),
		SupportsHVAC:         boolValue(raw["typeSupportsHVAC"]),
		DisplaysHumidity:     boolValue(raw["displayHumidityInUI"]),
		Properties:           ExtractProperties(raw),
	}
}

// stringValue coerces a decoded JSON value to a string.
func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// boolValue coerces a decoded JSON value to a bool.
// Accepts JSON booleans and 0/1 numerics.
func boolValue(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	default:
		return false
	}
}

// floatValue coerces a decoded JSON value to a float64.
// Accepts JSON numbers and booleans (false=0, true=1).
func floatValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
