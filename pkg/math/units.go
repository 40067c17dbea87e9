// pkg/math/units.go

package math

import "fmt"

// All quantities are stored internally in SI units: meters, seconds,
// radians, and compositions thereof. FromUnit/ToUnit convert at the public
// boundaries; the names accepted here match the unit tags that appear in
// configuration and state files.

const (
	MetersPerFoot         = 0.3048
	MetersPerNauticalMile = 1852.0
	KnotsToMps            = MetersPerNauticalMile / 3600
	FpmToMps              = MetersPerFoot / 60
	GravityMps2           = 9.80665
)

var unitFactors = map[string]float64{
	"m":     1,
	"ft":    MetersPerFoot,
	"nmi":   MetersPerNauticalMile,
	"nm":    MetersPerNauticalMile,
	"km":    1000,
	"m/s":   1,
	"kn":    KnotsToMps,
	"knot":  KnotsToMps,
	"kts":   KnotsToMps,
	"fpm":   FpmToMps,
	"ft/min": FpmToMps,
	"m/s^2": 1,
	"G":     GravityMps2,
	"s":     1,
	"min":   60,
	"h":     3600,
	"rad":   1,
	"deg":   3.14159265358979323846 / 180,
	"rad/s": 1,
	"deg/s": 3.14159265358979323846 / 180,
	"unitless": 1,
	"unspecified": 1,
}

// FromUnit converts val expressed in unit u to internal units. An unknown
// unit tag is treated as internal (factor 1) and reported via the bool.
func FromUnit(u string, val float64) (float64, bool) {
	if f, ok := unitFactors[u]; ok {
		return val * f, true
	}
	return val, false
}

// ToUnit converts val from internal units to unit u.
func ToUnit(u string, val float64) (float64, bool) {
	if f, ok := unitFactors[u]; ok {
		return val / f, true
	}
	return val, false
}

// FromUnitOr is FromUnit for trusted, compile-time unit names.
func FromUnitOr(u string, val float64) float64 {
	v, _ := FromUnit(u, val)
	return v
}

func ToUnitOr(u string, val float64) float64 {
	v, _ := ToUnit(u, val)
	return v
}

// FormatUnit renders val (internal units) in display unit u with four
// decimal digits, e.g. "4000.0000 [ft]".
func FormatUnit(val float64, u string) string {
	return fmt.Sprintf("%.4f [%s]", ToUnitOr(u, val), u)
}
