// pkg/bands/core.go

package bands

import (
	"wellclear/pkg/detection"
	"wellclear/pkg/math"
	"wellclear/pkg/traffic"
)

// Core holds the state shared by the per-axis band computations: absolute
// ownship and traffic states, the conflict detector, and the band-related
// subset of the parameter block. The façade owns the core; the detector
// is deep-copied on every set so that no two cores share one.
type Core struct {
	Ownship traffic.Ownship
	Traffic []traffic.State

	Detector detection.Detector

	// ImplicitBands reports only conflict bands; everything else is
	// implied green.
	ImplicitBands bool
	// Lookahead is the outer horizon of the conflict search (> 0).
	Lookahead float64
	// AlertingTime is the horizon of the alerting partition; 0 means use
	// the lookahead time.
	AlertingTime float64
	// MaxRecoveryTime bounds the recovery search; 0 means use lookahead.
	MaxRecoveryTime float64
	// RecoveryStabilityTime pads the first green onset found by the
	// recovery search.
	RecoveryStabilityTime float64
	// CriteriaAc is the identifier of the most-urgent aircraft driving
	// the repulsive criteria.
	CriteriaAc string
	// ConflictCrit/RecoveryCrit enable the criteria in nominal/recovery
	// band computation.
	ConflictCrit bool
	RecoveryCrit bool
	// Minimum protected separation during recovery; 0 means use the TCAS
	// RA table at the ownship's sensitivity level.
	MinHorizontalRecovery float64
	MinVerticalRecovery   float64
	// CABands allows the recovery volume to shrink toward the NMAC
	// cylinder when no recovery exists at the nominal volume.
	CABands bool

	// RA thresholds used for the recovery-volume fallbacks.
	RA detection.TCASTable
}

func NewCore(det detection.Detector) *Core {
	return &Core{
		Ownship:   traffic.InvalidOwnship,
		Detector:  det.Copy(),
		Lookahead: 180,
		RA:        detection.DefaultTCASTable(),
	}
}

func (c *Core) Copy() *Core {
	nc := *c
	nc.Traffic = append([]traffic.State(nil), c.Traffic...)
	nc.Detector = c.Detector.Copy()
	return &nc
}

// Clear removes ownship and traffic data.
func (c *Core) Clear() {
	c.Ownship = traffic.InvalidOwnship
	c.Traffic = nil
}

func (c *Core) HasOwnship() bool {
	return c.Ownship.IsValid()
}

func (c *Core) HasTraffic() bool {
	return len(c.Traffic) > 0
}

func (c *Core) TrafficByID(id string) traffic.State {
	return traffic.Find(c.Traffic, id)
}

// ActualAlertingTime is the alerting time, or the lookahead time when the
// alerting time is unset.
func (c *Core) ActualAlertingTime() float64 {
	if c.AlertingTime > 0 {
		return c.AlertingTime
	}
	return c.Lookahead
}

func (c *Core) ActualMaxRecoveryTime() float64 {
	if c.MaxRecoveryTime > 0 {
		return c.MaxRecoveryTime
	}
	return c.Lookahead
}

func (c *Core) ActualMinHorizontalRecovery() float64 {
	if c.MinHorizontalRecovery > 0 {
		return c.MinHorizontalRecovery
	}
	sl := 3
	if c.HasOwnship() {
		sl = math.Max(3, detection.SensitivityLevel(c.Ownship.Pos.Alt()))
	}
	return c.RA.HMD[sl]
}

func (c *Core) ActualMinVerticalRecovery() float64 {
	if c.MinVerticalRecovery > 0 {
		return c.MinVerticalRecovery
	}
	sl := 3
	if c.HasOwnship() {
		sl = math.Max(3, detection.SensitivityLevel(c.Ownship.Pos.Alt()))
	}
	return c.RA.ZTHR[sl]
}

// CriteriaAircraft resolves the criterion aircraft in the traffic list;
// an absent aircraft silently degrades to no criterion.
func (c *Core) CriteriaAircraft() traffic.State {
	return c.TrafficByID(c.CriteriaAc)
}

// CheckViolation reports whether ownship and ac are in violation now.
func (c *Core) CheckViolation(ac traffic.State) bool {
	return c.Detector.Violation(c.Ownship.S(), c.Ownship.V(), c.Ownship.TrafficS(ac), c.Ownship.TrafficV(ac))
}

// CheckConflict runs conflict detection between ownship and ac over [b, t].
func (c *Core) CheckConflict(ac traffic.State, b, t float64) detection.ConflictData {
	return c.Detector.ConflictDetection(c.Ownship.S(), c.Ownship.V(),
		c.Ownship.TrafficS(ac), c.Ownship.TrafficV(ac), b, t)
}
