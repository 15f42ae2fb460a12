package bridge

import (
	"math"
	"strconv"

	"github.com/webdeck/homebridge-indigo/internal/infrastructure/config"
)

// Fan speed quantization constants.
//
// The device models variable speed as a discrete 4-level index (0-3) while
// the framework exposes a continuous 0-100 percentage. The mapping is lossy
// and non-invertible: a set followed by a get lands in one of four buckets
// (0, 33.3, 66.7, 100), not on the original percentage. That round-trip loss
// is expected behaviour, not a defect.
const (
	// speedLevels is the highest discrete speed index.
	speedLevels = 3

	// speedThresholdHigh and speedThresholdMid are the write-side
	// percentage thresholds for levels 3 and 2.
	speedThresholdHigh = 66.6
	speedThresholdMid  = 33.3
)

// Auto-mode setpoint straddle offsets, in native units. Auto has no single
// setpoint in the device model, so a requested target becomes a heat/cool
// pair straddling it by this much on each side.
const (
	autoSetpointOffsetFahrenheit = 5.0
	autoSetpointOffsetCelsius    = 2.0
)

// round10 rounds to one decimal place.
func round10(v float64) float64 {
	return math.Round(v*10) / 10
}

// FahrenheitToCelsius converts and rounds to one decimal place.
func FahrenheitToCelsius(f float64) float64 {
	return round10((f - 32) * 5 / 9)
}

// CelsiusToFahrenheit converts and rounds to one decimal place.
func CelsiusToFahrenheit(c float64) float64 {
	return round10(c*9/5 + 32)
}

// speedIndexForPercent quantizes a 0-100 percentage to a device speed index.
func speedIndexForPercent(percent float64) int {
	switch {
	case percent > speedThresholdHigh:
		return 3
	case percent > speedThresholdMid:
		return 2
	case percent > 0:
		return 1
	default:
		return 0
	}
}

// percentForSpeedIndex expands a device speed index to a percentage.
func percentForSpeedIndex(index int) float64 {
	return float64(index) / speedLevels * 100.0
}

// toDisplayTemperature converts a native-unit temperature to the Celsius
// value the framework expects. Identity when the native unit is Celsius.
func toDisplayTemperature(native float64, nativeUnit string) float64 {
	if nativeUnit == config.UnitCelsius {
		return native
	}
	return FahrenheitToCelsius(native)
}

// toNativeTemperature converts a framework Celsius value to native units.
// Identity when the native unit is Celsius.
func toNativeTemperature(celsius float64, nativeUnit string) float64 {
	if nativeUnit == config.UnitCelsius {
		return celsius
	}
	return CelsiusToFahrenheit(celsius)
}

// autoSetpointOffset returns the straddle offset for the native unit.
func autoSetpointOffset(nativeUnit string) float64 {
	if nativeUnit == config.UnitCelsius {
		return autoSetpointOffsetCelsius
	}
	return autoSetpointOffsetFahrenheit
}

// formatTemperature renders a temperature query value with the one-decimal
// precision the conversion rules guarantee.
func formatTemperature(v float64) string {
	return strconv.FormatFloat(round10(v), 'f', 1, 64)
}

// formatOnOff renders a boolean as the device's native 0/1 state value.
func formatOnOff(on bool) string {
	if on {
		return "1"
	}
	return "0"
}
