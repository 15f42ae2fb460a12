package indigo

import "sort"

// fieldKind is the declared type of a known property field.
type fieldKind int

const (
	kindBool fieldKind = iota
	kindFloat
)

// knownFields maps every remote-side field the bridge cares about to its
// declared kind. Fields absent from this table never enter a snapshot.
var knownFields = map[string]fieldKind{
	FieldIsOn:              kindBool,
	FieldHeaterIsOn:        kindBool,
	FieldCoolerIsOn:        kindBool,
	FieldModeIsOff:         kindBool,
	FieldModeIsHeat:        kindBool,
	FieldModeIsCool:        kindBool,
	FieldModeIsAuto:        kindBool,
	FieldModeIsProgramHeat: kindBool,
	FieldModeIsProgramCool: kindBool,
	FieldModeIsProgramAuto: kindBool,
	FieldBrightness:        kindFloat,
	FieldSpeedIndex:        kindFloat,
	FieldSetpointHeat:      kindFloat,
	FieldSetpointCool:      kindFloat,
	FieldTemperature:       kindFloat,
	FieldHumidity:          kindFloat,
}

// Properties is one consistent snapshot of a device's known property fields.
// Values are normalised at extraction time: kindBool fields hold bool,
// kindFloat fields hold float64. A snapshot is immutable once built; the
// adapter replaces it wholesale, never patches it.
type Properties map[string]any

// ExtractProperties filters a decoded detail object down to the known
// property fields, coercing each value to its declared kind. Values that
// cannot be coerced are dropped, as are unrecognised fields.
func ExtractProperties(raw map[string]any) Properties {
	props := make(Properties, len(knownFields))
	for field, kind := range knownFields {
		v, ok := raw[field]
		if !ok {
			continue
		}
		switch kind {
		case kindBool:
			props[field] = boolValue(v)
		case kindFloat:
			if f, ok := floatValue(v); ok {
				props[field] = f
			}
		}
	}
	return props
}

// Bool returns the value of a boolean field, or false if absent.
func (p Properties) Bool(field string) bool {
	v, _ := p[field].(bool)
	return v
}

// Float returns the value of a numeric field, or 0 if absent.
func (p Properties) Float(field string) float64 {
	v, _ := p[field].(float64)
	return v
}

// Has reports whether the field is present in the snapshot.
func (p Properties) Has(field string) bool {
	_, ok := p[field]
	return ok
}

// ChangedFields returns the names of fields whose value differs between p
// and next, in deterministic (sorted) order. A field present on only one
// side counts as changed.
func (p Properties) ChangedFields(next Properties) []string {
	var changed []string
	for field := range knownFields {
		oldV, oldOK := p[field]
		newV, newOK := next[field]
		if oldOK != newOK || oldV != newV {
			changed = append(changed, field)
		}
	}
	sort.Strings(changed)
	return changed
}
