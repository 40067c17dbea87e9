// pkg/bands/region.go

package bands

// Region labels a band of control values along one maneuver axis.
type Region int

const (
	Unknown Region = iota
	None           // clear of conflict
	Far
	Mid
	Near     // conflict band
	Recovery // red, but the locally-least-bad escape
)

func (r Region) String() string {
	switch r {
	case None:
		return "NONE"
	case Far:
		return "FAR"
	case Mid:
		return "MID"
	case Near:
		return "NEAR"
	case Recovery:
		return "RECOVERY"
	default:
		return "UNKNOWN"
	}
}
