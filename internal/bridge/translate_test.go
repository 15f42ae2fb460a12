package bridge

import (
	"math"
	"testing"
)

func TestSpeedIndexForPercent(t *testing.T) {
	tests := []struct {
		percent float64
		want    int
	}{
		{0, 0},
		{0.1, 1},
		{25, 1},
		{33.3, 1},
		{33.4, 2},
		{50, 2},
		{66.6, 2},
		{66.7, 3},
		{75, 3},
		{100, 3},
	}

	for _, tt := range tests {
		if got := speedIndexForPercent(tt.percent); got != tt.want {
			t.Errorf("speedIndexForPercent(%v) = %d, want %d", tt.percent, got, tt.want)
		}
	}
}

func TestPercentForSpeedIndex(t *testing.T) {
	tests := []struct {
		index int
		want  float64
	}{
		{0, 0},
		{1, 100.0 / 3},
		{2, 200.0 / 3},
		{3, 100},
	}

	for _, tt := range tests {
		got := percentForSpeedIndex(tt.index)
		if math.Abs(got-tt.want) > 0.01 {
			t.Errorf("percentForSpeedIndex(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}
}

// A speed percentage written and read back lands in one of four buckets.
// The bucket must re-quantize to the same index, or sets would drift.
func TestSpeedQuantizationStable(t *testing.T) {
	for index := 0; index <= 3; index++ {
		percent := percentForSpeedIndex(index)
		if got := speedIndexForPercent(percent); got != index {
			t.Errorf("speedIndexForPercent(percentForSpeedIndex(%d)) = %d, want %d",
				index, got, index)
		}
	}
}

func TestTemperatureConversion(t *testing.T) {
	tests := []struct {
		fahrenheit float64
		celsius    float64
	}{
		{32, 0},
		{68, 20},
		{76.6, 24.8},
		{-40, -40},
	}

	for _, tt := range tests {
		if got := FahrenheitToCelsius(tt.fahrenheit); math.Abs(got-tt.celsius) > 0.05 {
			t.Errorf("FahrenheitToCelsius(%v) = %v, want %v", tt.fahrenheit, got, tt.celsius)
		}
		if got := CelsiusToFahrenheit(tt.celsius); math.Abs(got-tt.fahrenheit) > 0.1 {
			t.Errorf("CelsiusToFahrenheit(%v) = %v, want %v", tt.celsius, got, tt.fahrenheit)
		}
	}
}

// One-decimal rounding keeps a full round trip within a tenth of a degree.
func TestTemperatureRoundTrip(t *testing.T) {
	for f := -20.0; f <= 120.0; f += 0.7 {
		back := CelsiusToFahrenheit(FahrenheitToCelsius(f))
		if math.Abs(back-f) > 0.15 {
			t.Errorf("round trip of %vF came back as %vF", f, back)
		}
	}
}

func TestFormatTemperature(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{76.6, "76.6"},
		{66.6, "66.6"},
		{24, "24.0"},
		{24.85, "24.9"},
		{-2.04, "-2.0"},
	}

	for _, tt := range tests {
		if got := formatTemperature(tt.in); got != tt.want {
			t.Errorf("formatTemperature(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNativeUnitPassthrough(t *testing.T) {
	if got := toDisplayTemperature(21.5, "celsius"); got != 21.5 {
		t.Errorf("toDisplayTemperature(21.5, celsius) = %v, want 21.5", got)
	}
	if got := toNativeTemperature(21.5, "celsius"); got != 21.5 {
		t.Errorf("toNativeTemperature(21.5, celsius) = %v, want 21.5", got)
	}
	if got := toDisplayTemperature(70, "fahrenheit"); math.Abs(got-21.1) > 0.05 {
		t.Errorf("toDisplayTemperature(70, fahrenheit) = %v, want 21.1", got)
	}
}
