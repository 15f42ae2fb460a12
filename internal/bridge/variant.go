package bridge

import "github.com/webdeck/homebridge-indigo/internal/indigo"

// traitUpdate is one trait value to push into the accessory framework.
type traitUpdate struct {
	trait Trait
	value any
}

// mirrorFunc derives framework updates from a fresh property snapshot when
// one remote field has changed. Invoked with the snapshot already installed
// as the adapter's cache.
type mirrorFunc func(a *Adapter, props indigo.Properties) []traitUpdate

// profile is the behaviour table for one capability variant: which traits
// the accessory exposes, and which framework updates each remote field
// change mirrors into.
//
// Variants are rows in this table rather than types. Door, window and
// window covering differ only in the service they advertise; they share
// identical rows.
type profile struct {
	traits  func(flags CapabilityFlags) []Trait
	mirrors map[string]mirrorFunc
}

// profiles maps every variant to its behaviour table.
var profiles = map[Variant]profile{
	VariantLight: {
		traits: func(flags CapabilityFlags) []Trait {
			traits := []Trait{TraitOn}
			if flags.Dim {
				traits = append(traits, TraitBrightness)
			}
			return traits
		},
		mirrors: map[string]mirrorFunc{
			indigo.FieldIsOn: func(_ *Adapter, props indigo.Properties) []traitUpdate {
				return []traitUpdate{{TraitOn, props.Bool(indigo.FieldIsOn)}}
			},
			indigo.FieldBrightness: func(a *Adapter, props indigo.Properties) []traitUpdate {
				if !a.flags.Dim {
					return nil
				}
				return []traitUpdate{{TraitBrightness, int(props.Float(indigo.FieldBrightness))}}
			},
		},
	},

	VariantFan: {
		traits: func(CapabilityFlags) []Trait {
			return []Trait{TraitOn, TraitRotationSpeed}
		},
		mirrors: map[string]mirrorFunc{
			indigo.FieldIsOn: func(_ *Adapter, props indigo.Properties) []traitUpdate {
				return []traitUpdate{{TraitOn, props.Bool(indigo.FieldIsOn)}}
			},
			indigo.FieldSpeedIndex: func(_ *Adapter, props indigo.Properties) []traitUpdate {
				index := int(props.Float(indigo.FieldSpeedIndex))
				return []traitUpdate{{TraitRotationSpeed, percentForSpeedIndex(index)}}
			},
		},
	},

	VariantSwitch: {
		traits: func(CapabilityFlags) []Trait {
			return []Trait{TraitOn}
		},
		mirrors: map[string]mirrorFunc{
			indigo.FieldIsOn: func(_ *Adapter, props indigo.Properties) []traitUpdate {
				return []traitUpdate{{TraitOn, props.Bool(indigo.FieldIsOn)}}
			},
		},
	},

	VariantLock: {
		traits: func(CapabilityFlags) []Trait {
			return []Trait{TraitLockCurrentState, TraitLockTargetState}
		},
		mirrors: map[string]mirrorFunc{
			// The remote side has no current/target split, so a confirmed
			// state change lands on both traits at once.
			indigo.FieldIsOn: func(_ *Adapter, props indigo.Properties) []traitUpdate {
				state := lockStateFor(props.Bool(indigo.FieldIsOn))
				return []traitUpdate{
					{TraitLockCurrentState, state},
					{TraitLockTargetState, state},
				}
			},
		},
	},

	VariantGarageDoor: {
		traits: func(CapabilityFlags) []Trait {
			return []Trait{TraitCurrentDoorState, TraitTargetDoorState, TraitObstructionDetected}
		},
		mirrors: map[string]mirrorFunc{
			indigo.FieldIsOn: func(_ *Adapter, props indigo.Properties) []traitUpdate {
				state := doorStateFor(props.Bool(indigo.FieldIsOn))
				return []traitUpdate{
					{TraitCurrentDoorState, state},
					{TraitTargetDoorState, state},
				}
			},
		},
	},

	VariantDoor:           positionProfile(),
	VariantWindow:         positionProfile(),
	VariantWindowCovering: positionProfile(),

	VariantThermostat: {
		traits: func(flags CapabilityFlags) []Trait {
			traits := []Trait{
				TraitCurrentHeatingCooling,
				TraitTargetHeatingCooling,
				TraitCurrentTemperature,
				TraitTargetTemperature,
				TraitTemperatureDisplayUnits,
			}
			if flags.HumidityDisplay {
				traits = append(traits, TraitCurrentHumidity)
			}
			return traits
		},
		mirrors: thermostatMirrors(),
	},

	VariantAction: {
		traits: func(CapabilityFlags) []Trait {
			return []Trait{TraitOn}
		},
		// Actions are momentary and carry no remote state to mirror.
		mirrors: map[string]mirrorFunc{},
	},
}

// positionProfile builds the shared row for door, window and window covering.
func positionProfile() profile {
	mirror := func(a *Adapter, props indigo.Properties) []traitUpdate {
		pos := positionFromProps(a.flags, props)
		return []traitUpdate{
			{TraitCurrentPosition, pos},
			{TraitTargetPosition, pos},
		}
	}
	return profile{
		traits: func(CapabilityFlags) []Trait {
			return []Trait{TraitCurrentPosition, TraitTargetPosition, TraitObstructionDetected}
		},
		mirrors: map[string]mirrorFunc{
			indigo.FieldIsOn:       mirror,
			indigo.FieldBrightness: mirror,
		},
	}
}

// thermostatMirrors builds the thermostat row's field table. Several fields
// feed the same trait; Reconcile deduplicates per pass.
func thermostatMirrors() map[string]mirrorFunc {
	currentMode := func(_ *Adapter, props indigo.Properties) []traitUpdate {
		return []traitUpdate{{TraitCurrentHeatingCooling, currentHeatingCooling(props)}}
	}
	targetMode := func(a *Adapter, props indigo.Properties) []traitUpdate {
		return []traitUpdate{
			{TraitTargetHeatingCooling, targetHeatingCooling(props)},
			{TraitTargetTemperature, targetTemperature(props, a.nativeUnit)},
		}
	}
	targetTemp := func(a *Adapter, props indigo.Properties) []traitUpdate {
		return []traitUpdate{{TraitTargetTemperature, targetTemperature(props, a.nativeUnit)}}
	}

	m := map[string]mirrorFunc{
		indigo.FieldHeaterIsOn:   currentMode,
		indigo.FieldCoolerIsOn:   currentMode,
		indigo.FieldSetpointHeat: targetTemp,
		indigo.FieldSetpointCool: targetTemp,
		indigo.FieldTemperature: func(a *Adapter, props indigo.Properties) []traitUpdate {
			native := props.Float(indigo.FieldTemperature)
			return []traitUpdate{{TraitCurrentTemperature, toDisplayTemperature(native, a.nativeUnit)}}
		},
		indigo.FieldHumidity: func(a *Adapter, props indigo.Properties) []traitUpdate {
			if !a.flags.HumidityDisplay {
				return nil
			}
			return []traitUpdate{{TraitCurrentHumidity, props.Float(indigo.FieldHumidity)}}
		},
	}
	for _, field := range modeFlagFields {
		m[field] = targetMode
	}
	return m
}

// modeFlagFields are the mutually exclusive operating-mode flags, any of
// which flipping means the target mode changed.
var modeFlagFields = []string{
	indigo.FieldModeIsOff,
	indigo.FieldModeIsHeat,
	indigo.FieldModeIsCool,
	indigo.FieldModeIsAuto,
	indigo.FieldModeIsProgramHeat,
	indigo.FieldModeIsProgramCool,
	indigo.FieldModeIsProgramAuto,
}

// lockStateFor maps the remote on state to a lock state value.
// On means secured.
func lockStateFor(on bool) int {
	if on {
		return LockSecured
	}
	return LockUnsecured
}

// doorStateFor maps the remote on state to a door state value.
// On means open.
func doorStateFor(on bool) int {
	if on {
		return DoorOpen
	}
	return DoorClosed
}

// positionFromProps derives a 0-100 position. Dimmable devices report their
// brightness as the position; plain on/off devices report fully open or
// fully closed.
func positionFromProps(flags CapabilityFlags, props indigo.Properties) int {
	if flags.Dim {
		return clampPercent(int(props.Float(indigo.FieldBrightness)))
	}
	if props.Bool(indigo.FieldIsOn) {
		return 100
	}
	return 0
}

// currentHeatingCooling derives the current activity from the equipment
// flags. Heating wins if the server ever reports both.
func currentHeatingCooling(props indigo.Properties) int {
	switch {
	case props.Bool(indigo.FieldHeaterIsOn):
		return ModeHeat
	case props.Bool(indigo.FieldCoolerIsOn):
		return ModeCool
	default:
		return ModeOff
	}
}

// targetHeatingCooling derives the target mode from the mutually exclusive
// mode flags. Program variants map to their plain equivalents.
func targetHeatingCooling(props indigo.Properties) int {
	switch {
	case props.Bool(indigo.FieldModeIsHeat), props.Bool(indigo.FieldModeIsProgramHeat):
		return ModeHeat
	case props.Bool(indigo.FieldModeIsCool), props.Bool(indigo.FieldModeIsProgramCool):
		return ModeCool
	case props.Bool(indigo.FieldModeIsAuto), props.Bool(indigo.FieldModeIsProgramAuto):
		return ModeAuto
	default:
		return ModeOff
	}
}

// targetTemperature derives the target temperature in Celsius. Heat and cool
// modes track their own setpoint; auto reports the midpoint of the pair.
func targetTemperature(props indigo.Properties, nativeUnit string) float64 {
	heat := props.Float(indigo.FieldSetpointHeat)
	cool := props.Float(indigo.FieldSetpointCool)

	var native float64
	switch targetHeatingCooling(props) {
	case ModeHeat:
		native = heat
	case ModeCool:
		native = cool
	default:
		native = (heat + cool) / 2
	}
	return toDisplayTemperature(native, nativeUnit)
}

// clampPercent bounds a value to the 0-100 range.
func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
