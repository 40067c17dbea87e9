// pkg/daa/parameters.go

package daa

import (
	"fmt"
	"os"
	"strings"

	"github.com/brunoga/deep"

	"wellclear/pkg/math"
	"wellclear/pkg/util"
)

// Parameters is the complete configuration block of the library. All
// values are stored in internal units. There is no mutable global default
// block: DefaultParameters() returns a fresh value and callers pass
// blocks explicitly.
type Parameters struct {
	// Well-clear thresholds
	DTHR, ZTHR, TTHR, TCOA float64
	// Cylinder thresholds
	D, H float64
	// Conflict bands
	AlertingTime   float64 // 0 means lookahead time is used instead
	LookaheadTime  float64
	MinGs, MaxGs   float64
	MinVs, MaxVs   float64
	MinAlt, MaxAlt float64
	ImplicitBands  bool
	// Kinematic bands
	TrkStep, GsStep, VsStep, AltStep float64
	HorizontalAccel, VerticalAccel   float64
	TurnRate                         float64
	BankAngle                        float64 // used when TurnRate is 0 or ground speed is at most 1 knot
	VerticalRate                     float64
	// Recovery bands
	RecoveryStabilityTime float64
	MaxRecoveryTime       float64 // 0 means lookahead time is used instead
	MinHorizontalRecovery float64 // 0 means TCAS RA HMD is used instead
	MinVerticalRecovery   float64 // 0 means TCAS RA ZTHR is used instead
	ConflictCrit          bool
	RecoveryCrit          bool
	RecoveryTrk           bool
	RecoveryGs            bool
	RecoveryVs            bool
	// Alerting
	BandsAlerting       bool // true: bands-based logic, false: thresholds-based
	TrkAlerting         bool
	GsAlerting          bool
	VsAlerting          bool
	PreventiveAlt       float64
	PreventiveTrk       float64 // < 0 means all tracks are preventive
	PreventiveGs        float64 // < 0 means all ground speeds are preventive
	PreventiveVs        float64 // < 0 means all vertical speeds are preventive
	TimeToWarning       float64
	WarningWhenRecovery bool
	// Other
	CABands bool
}

// DefaultParameters returns the nominal configuration.
func DefaultParameters() Parameters {
	ft := func(v float64) float64 { return math.FromUnitOr("ft", v) }
	return Parameters{
		DTHR: ft(4000),
		ZTHR: ft(450),
		TTHR: 35,
		TCOA: 0,

		D: math.FromUnitOr("nmi", 5),
		H: ft(1000),

		AlertingTime:  0,
		LookaheadTime: 180,
		MinGs:         0,
		MaxGs:         math.FromUnitOr("knot", 700),
		MinVs:         math.FromUnitOr("fpm", -5000),
		MaxVs:         math.FromUnitOr("fpm", 5000),
		MinAlt:        ft(500),
		MaxAlt:        ft(50000),
		ImplicitBands: false,

		TrkStep:         math.Radians(1),
		GsStep:          math.FromUnitOr("knot", 1),
		VsStep:          math.FromUnitOr("fpm", 10),
		AltStep:         ft(500),
		HorizontalAccel: 2.0,
		VerticalAccel:   2.0,
		TurnRate:        math.Radians(3),
		BankAngle:       math.Radians(30),
		VerticalRate:    0,

		RecoveryStabilityTime: 2,
		MaxRecoveryTime:       0,
		MinHorizontalRecovery: 0,
		MinVerticalRecovery:   0,
		ConflictCrit:          false,
		RecoveryCrit:          false,
		RecoveryTrk:           true,
		RecoveryGs:            true,
		RecoveryVs:            true,

		BandsAlerting:       true,
		TrkAlerting:         true,
		GsAlerting:          false,
		VsAlerting:          true,
		PreventiveAlt:       ft(700),
		PreventiveTrk:       math.Radians(10),
		PreventiveGs:        math.FromUnitOr("knot", 100),
		PreventiveVs:        math.FromUnitOr("fpm", 500),
		TimeToWarning:       15,
		WarningWhenRecovery: false,

		CABands: false,
	}
}

// Copy returns a deep copy of the block.
func (p *Parameters) Copy() Parameters {
	return deep.MustCopy(*p)
}

// entry describes one parameter's key, display unit, and accessors; the
// single table drives the file writer, the file reader, and the PVS
// export so the three can't drift apart.
type entry struct {
	key     string
	unit    string // "" for booleans
	fval    func(p *Parameters) *float64
	bval    func(p *Parameters) *bool
	comment string
}

var paramTable = []entry{
	{key: "DTHR", unit: "ft", fval: func(p *Parameters) *float64 { return &p.DTHR }},
	{key: "ZTHR", unit: "ft", fval: func(p *Parameters) *float64 { return &p.ZTHR }},
	{key: "TTHR", unit: "s", fval: func(p *Parameters) *float64 { return &p.TTHR }},
	{key: "TCOA", unit: "s", fval: func(p *Parameters) *float64 { return &p.TCOA }},
	{key: "D", unit: "nmi", fval: func(p *Parameters) *float64 { return &p.D }},
	{key: "H", unit: "ft", fval: func(p *Parameters) *float64 { return &p.H }},
	{key: "alerting_time", unit: "s", fval: func(p *Parameters) *float64 { return &p.AlertingTime },
		comment: "If set to 0, lookahead_time is used instead"},
	{key: "lookahead_time", unit: "s", fval: func(p *Parameters) *float64 { return &p.LookaheadTime }},
	{key: "min_gs", unit: "knot", fval: func(p *Parameters) *float64 { return &p.MinGs }},
	{key: "max_gs", unit: "knot", fval: func(p *Parameters) *float64 { return &p.MaxGs }},
	{key: "min_vs", unit: "fpm", fval: func(p *Parameters) *float64 { return &p.MinVs }},
	{key: "max_vs", unit: "fpm", fval: func(p *Parameters) *float64 { return &p.MaxVs }},
	{key: "min_alt", unit: "ft", fval: func(p *Parameters) *float64 { return &p.MinAlt }},
	{key: "max_alt", unit: "ft", fval: func(p *Parameters) *float64 { return &p.MaxAlt }},
	{key: "implicit_bands", bval: func(p *Parameters) *bool { return &p.ImplicitBands }},
	{key: "trk_step", unit: "deg", fval: func(p *Parameters) *float64 { return &p.TrkStep }},
	{key: "gs_step", unit: "knot", fval: func(p *Parameters) *float64 { return &p.GsStep }},
	{key: "vs_step", unit: "fpm", fval: func(p *Parameters) *float64 { return &p.VsStep }},
	{key: "alt_step", unit: "ft", fval: func(p *Parameters) *float64 { return &p.AltStep }},
	{key: "horizontal_accel", unit: "m/s^2", fval: func(p *Parameters) *float64 { return &p.HorizontalAccel }},
	{key: "vertical_accel", unit: "m/s^2", fval: func(p *Parameters) *float64 { return &p.VerticalAccel }},
	{key: "turn_rate", unit: "deg/s", fval: func(p *Parameters) *float64 { return &p.TurnRate }},
	{key: "bank_angle", unit: "deg", fval: func(p *Parameters) *float64 { return &p.BankAngle },
		comment: "Only used when turn_rate is set to 0"},
	{key: "vertical_rate", unit: "fpm", fval: func(p *Parameters) *float64 { return &p.VerticalRate }},
	{key: "recovery_stability_time", unit: "s", fval: func(p *Parameters) *float64 { return &p.RecoveryStabilityTime }},
	{key: "max_recovery_time", unit: "s", fval: func(p *Parameters) *float64 { return &p.MaxRecoveryTime },
		comment: "If set to 0, lookahead time is used instead"},
	{key: "min_horizontal_recovery", unit: "nmi", fval: func(p *Parameters) *float64 { return &p.MinHorizontalRecovery },
		comment: "If set to 0, TCAS RA HMD is used instead"},
	{key: "min_vertical_recovery", unit: "ft", fval: func(p *Parameters) *float64 { return &p.MinVerticalRecovery },
		comment: "If set to 0, TCAS RA ZTHR is used instead"},
	{key: "conflict_crit", bval: func(p *Parameters) *bool { return &p.ConflictCrit }},
	{key: "recovery_crit", bval: func(p *Parameters) *bool { return &p.RecoveryCrit }},
	{key: "recovery_trk", bval: func(p *Parameters) *bool { return &p.RecoveryTrk }},
	{key: "recovery_gs", bval: func(p *Parameters) *bool { return &p.RecoveryGs }},
	{key: "recovery_vs", bval: func(p *Parameters) *bool { return &p.RecoveryVs }},
	{key: "bands_alerting", bval: func(p *Parameters) *bool { return &p.BandsAlerting }},
	{key: "trk_alerting", bval: func(p *Parameters) *bool { return &p.TrkAlerting }},
	{key: "gs_alerting", bval: func(p *Parameters) *bool { return &p.GsAlerting }},
	{key: "vs_alerting", bval: func(p *Parameters) *bool { return &p.VsAlerting }},
	{key: "preventive_alt", unit: "ft", fval: func(p *Parameters) *float64 { return &p.PreventiveAlt }},
	{key: "preventive_trk", unit: "deg", fval: func(p *Parameters) *float64 { return &p.PreventiveTrk },
		comment: "If equal to 0, no tracks are preventive. If less than 0, all tracks are preventive"},
	{key: "preventive_gs", unit: "knot", fval: func(p *Parameters) *float64 { return &p.PreventiveGs },
		comment: "If equal to 0, no ground speeds are preventive. If less than 0, all ground speeds are preventive"},
	{key: "preventive_vs", unit: "fpm", fval: func(p *Parameters) *float64 { return &p.PreventiveVs },
		comment: "If equal to 0, no vertical speeds are preventive. If less than 0, all vertical speeds are preventive"},
	{key: "time_to_warning", unit: "s", fval: func(p *Parameters) *float64 { return &p.TimeToWarning }},
	{key: "warning_when_recovery", bval: func(p *Parameters) *bool { return &p.WarningWhenRecovery }},
	{key: "ca_bands", bval: func(p *Parameters) *bool { return &p.CABands }},
}

// sectionBefore maps keys to the section header comment emitted above them.
var sectionBefore = map[string]string{
	"DTHR":                    "# WC Thresholds",
	"D":                       "# CD3D Thresholds",
	"alerting_time":           "# Conflict Bands Parameters",
	"trk_step":                "# Kinematic Bands Parameters",
	"recovery_stability_time": "# Recovery Bands Parameters",
	"bands_alerting":          "# Alerting",
	"ca_bands":                "# Other Parameters",
}

// UpdateParams writes every parameter into the ordered table.
func (p *Parameters) UpdateParams(tbl *util.Params) {
	for _, e := range paramTable {
		if e.bval != nil {
			tbl.SetBool(e.key, *e.bval(p))
		} else {
			tbl.SetInternal(e.key, *e.fval(p), e.unit)
		}
	}
}

// SetParams reads the parameters present in the table; missing keys keep
// their current values. Lowercase variants of the threshold keys are also
// accepted.
func (p *Parameters) SetParams(tbl *util.Params) {
	for _, e := range paramTable {
		keys := []string{e.key}
		switch e.key {
		case "DTHR", "ZTHR", "TTHR", "TCOA", "D", "H":
			keys = append(keys, strings.ToLower(e.key))
		}
		for _, k := range keys {
			if !tbl.Contains(k) {
				continue
			}
			if e.bval != nil {
				*e.bval(p) = tbl.Bool(k)
			} else {
				*e.fval(p) = tbl.Value(k)
			}
		}
	}
}

// String renders the block in the configuration file format: one
// key = value [unit] line per parameter with section comments.
func (p *Parameters) String() string {
	var sb strings.Builder
	for _, e := range paramTable {
		if hdr, ok := sectionBefore[e.key]; ok {
			sb.WriteString(hdr + "\n")
		}
		if e.bval != nil {
			fmt.Fprintf(&sb, "%s = %t\n", e.key, *e.bval(p))
		} else {
			fmt.Fprintf(&sb, "%s = %s", e.key, math.FormatUnit(*e.fval(p), e.unit))
			if e.comment != "" {
				sb.WriteString(". " + e.comment)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// ToPVS renders the block as a PVS record with prec decimal digits.
func (p *Parameters) ToPVS(prec int) string {
	var sb strings.Builder
	sb.WriteString("(# ")
	for i, e := range paramTable {
		if i > 0 {
			sb.WriteString(", ")
		}
		if e.bval != nil {
			fmt.Fprintf(&sb, "%s := %t", e.key, *e.bval(p))
		} else {
			fmt.Fprintf(&sb, "%s := %.*f", e.key, prec, *e.fval(p))
		}
	}
	sb.WriteString(" #)")
	return sb.String()
}

// LoadFromFile reads a configuration file into the block. Unknown keys
// are ignored with a warning in the returned list; missing keys keep
// their current values.
func (p *Parameters) LoadFromFile(filename string) ([]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return p.LoadFromString(string(data)), nil
}

func (p *Parameters) LoadFromString(s string) []string {
	known := make(map[string]bool)
	for _, e := range paramTable {
		known[e.key] = true
		known[strings.ToLower(e.key)] = true
	}
	tbl := util.NewParams()
	var warnings []string
	for _, line := range strings.Split(s, "\n") {
		key, ok := tbl.ParseLine(line)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unparseable configuration line %q", strings.TrimSpace(line)))
			continue
		}
		if key != "" && !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown configuration key %q", key))
		}
	}
	p.SetParams(tbl)
	return warnings
}

// SaveToFile writes the block in the configuration file format.
func (p *Parameters) SaveToFile(filename string) error {
	return os.WriteFile(filename, []byte(p.String()), 0o644)
}
