package bridge

import "github.com/webdeck/homebridge-indigo/internal/indigo"

// Trait is a single controllable or observable property surfaced to the
// accessory framework.
type Trait string

// Trait constants.
const (
	TraitOn                      Trait = "on"
	TraitBrightness              Trait = "brightness"
	TraitRotationSpeed           Trait = "rotation_speed"
	TraitCurrentPosition         Trait = "current_position"
	TraitTargetPosition          Trait = "target_position"
	TraitLockCurrentState        Trait = "lock_current_state"
	TraitLockTargetState         Trait = "lock_target_state"
	TraitCurrentDoorState        Trait = "current_door_state"
	TraitTargetDoorState         Trait = "target_door_state"
	TraitObstructionDetected     Trait = "obstruction_detected"
	TraitCurrentHeatingCooling   Trait = "current_heating_cooling"
	TraitTargetHeatingCooling    Trait = "target_heating_cooling"
	TraitCurrentTemperature      Trait = "current_temperature"
	TraitTargetTemperature       Trait = "target_temperature"
	TraitTemperatureDisplayUnits Trait = "temperature_display_units"
	TraitCurrentHumidity         Trait = "current_humidity"
)

// Origin distinguishes a real framework-initiated write from a local update
// that mirrors server-confirmed state. Mirror-origin writes never reach the
// outbound request queue.
type Origin int

// Origin constants.
const (
	// OriginUser marks a write initiated by the accessory framework on
	// behalf of a controller.
	OriginUser Origin = iota

	// OriginMirror marks a write applied purely to reflect a server-pushed
	// or server-confirmed state change.
	OriginMirror
)

// Variant is the capability profile assigned to a device at discovery time.
// It determines which traits the accessory exposes and how values translate.
type Variant string

// Variant constants.
const (
	VariantLight          Variant = "light"
	VariantFan            Variant = "fan"
	VariantThermostat     Variant = "thermostat"
	VariantSwitch         Variant = "switch"
	VariantLock           Variant = "lock"
	VariantDoor           Variant = "door"
	VariantGarageDoor     Variant = "garage_door"
	VariantWindow         Variant = "window"
	VariantWindowCovering Variant = "window_covering"
	VariantAction         Variant = "action"
)

// Enumerated framework-side values for heating/cooling traits.
const (
	ModeOff  = 0
	ModeHeat = 1
	ModeCool = 2
	ModeAuto = 3
)

// Enumerated framework-side values for lock state traits.
const (
	LockUnsecured = 0
	LockSecured   = 1
)

// Enumerated framework-side values for door state traits.
const (
	DoorOpen   = 0
	DoorClosed = 1
)

// Enumerated framework-side values for the temperature display unit trait.
// The display unit is purely local state; it is never written to the server.
const (
	DisplayUnitCelsius    = 0
	DisplayUnitFahrenheit = 1
)

// CapabilityFlags are a device's declared capabilities, immutable after
// adapter construction.
type CapabilityFlags struct {
	OnOff           bool
	Dim             bool
	SpeedControl    bool
	HVAC            bool
	HumidityDisplay bool
}

// FlagsFromDetail extracts capability flags from a device detail object.
func FlagsFromDetail(d *indigo.Detail) CapabilityFlags {
	return CapabilityFlags{
		OnOff:           d.SupportsOnOff,
		Dim:             d.SupportsDim,
		SpeedControl:    d.SupportsSpeedControl,
		HVAC:            d.SupportsHVAC,
		HumidityDisplay: d.DisplaysHumidity,
	}
}

// UpdateFunc receives trait updates that must be applied to the accessory
// framework. Updates delivered through this function are already
// echo-suppressed: applying them must not trigger an outbound write.
//
// Implementations must not call back into the adapter's Get, Set, or
// Reconcile synchronously; the adapter may be holding its refresh lock.
type UpdateFunc func(id string, trait Trait, value any)

// Logger is the logging interface required by the bridge.
// Compatible with logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
