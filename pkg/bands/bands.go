// pkg/bands/bands.go

package bands

import (
	"strings"

	"wellclear/pkg/detection"
	"wellclear/pkg/math"
	"wellclear/pkg/traffic"
)

// Default axis configuration, used when a bands instance is built without
// an explicit parameter block.
var (
	DefaultMinGs    = 0.0
	DefaultMaxGs    = math.FromUnitOr("knot", 700)
	DefaultMinVs    = math.FromUnitOr("fpm", -5000)
	DefaultMaxVs    = math.FromUnitOr("fpm", 5000)
	DefaultMinAlt   = math.FromUnitOr("ft", 500)
	DefaultMaxAlt   = math.FromUnitOr("ft", 50000)
	DefaultTrkStep  = math.Radians(1)
	DefaultGsStep   = math.FromUnitOr("knot", 1)
	DefaultVsStep   = math.FromUnitOr("fpm", 10)
	DefaultAltStep  = math.FromUnitOr("ft", 500)
	DefaultHorizAcc = 2.0
	DefaultVertAcc  = 2.0
	DefaultTurnRate = math.Radians(3)
	DefaultBankAngl = math.Radians(30)
	DefaultVertRate = 0.0
)

// KinematicBands aggregates the four per-axis band computations over a
// shared core. Band outputs are computed lazily and cached; any setter
// that can affect them marks the affected axes outdated.
type KinematicBands struct {
	Trk *TrkBands
	Gs  *GsBands
	Vs  *VsBands
	Alt *AltBands

	Core *Core
}

// NewKinematicBands creates a bands object with the default axis
// configuration and a deep copy of the given detector.
func NewKinematicBands(det detection.Detector) *KinematicBands {
	return &KinematicBands{
		Trk:  NewTrkBands(DefaultTrkStep, true, DefaultTurnRate, DefaultBankAngl),
		Gs:   NewGsBands(DefaultMinGs, DefaultMaxGs, DefaultGsStep, true, DefaultHorizAcc),
		Vs:   NewVsBands(DefaultMinVs, DefaultMaxVs, DefaultVsStep, true, DefaultVertAcc),
		Alt:  NewAltBands(DefaultMinAlt, DefaultMaxAlt, DefaultAltStep, DefaultVertRate, DefaultVertAcc),
		Core: NewCore(det),
	}
}

// Copy returns an independent bands object with the same configuration
// and aircraft.
func (kb *KinematicBands) Copy() *KinematicBands {
	nb := NewKinematicBands(kb.Core.Detector)
	*nb.Core = *kb.Core.Copy()
	nb.Trk.min, nb.Trk.max, nb.Trk.step = kb.Trk.min, kb.Trk.max, kb.Trk.step
	nb.Trk.doRecovery, nb.Trk.turnRate, nb.Trk.bankAngle = kb.Trk.doRecovery, kb.Trk.turnRate, kb.Trk.bankAngle
	nb.Gs.min, nb.Gs.max, nb.Gs.step = kb.Gs.min, kb.Gs.max, kb.Gs.step
	nb.Gs.doRecovery, nb.Gs.horizontalAccel = kb.Gs.doRecovery, kb.Gs.horizontalAccel
	nb.Vs.min, nb.Vs.max, nb.Vs.step = kb.Vs.min, kb.Vs.max, kb.Vs.step
	nb.Vs.doRecovery, nb.Vs.verticalAccel = kb.Vs.doRecovery, kb.Vs.verticalAccel
	nb.Alt.min, nb.Alt.max, nb.Alt.step = kb.Alt.min, kb.Alt.max, kb.Alt.step
	nb.Alt.verticalRate, nb.Alt.verticalAccel = kb.Alt.verticalRate, kb.Alt.verticalAccel
	return nb
}

// ResetAll invalidates the cached outputs of every axis.
func (kb *KinematicBands) ResetAll() {
	kb.Trk.Reset()
	kb.Gs.Reset()
	kb.Vs.Reset()
	kb.Alt.Reset()
}

///////////////////////////////////////////////////////////////////////////
// aircraft

func (kb *KinematicBands) Ownship() traffic.Ownship {
	return kb.Core.Ownship
}

// SetOwnship installs the ownship; its velocity must already be
// wind-relative.
func (kb *KinematicBands) SetOwnship(ac traffic.State) {
	kb.Core.Ownship = traffic.MakeOwnship(ac)
	kb.ResetAll()
}

func (kb *KinematicBands) AddTraffic(ac traffic.State) {
	kb.Core.Traffic = append(kb.Core.Traffic, ac)
	kb.ResetAll()
}

func (kb *KinematicBands) TrafficSize() int {
	return len(kb.Core.Traffic)
}

func (kb *KinematicBands) HasOwnship() bool {
	return kb.Core.HasOwnship()
}

func (kb *KinematicBands) HasTraffic() bool {
	return kb.Core.HasTraffic()
}

///////////////////////////////////////////////////////////////////////////
// configuration

func (kb *KinematicBands) SetLookaheadTime(t float64) {
	if t > 0 && t != kb.Core.Lookahead {
		kb.Core.Lookahead = t
		kb.ResetAll()
	}
}

func (kb *KinematicBands) SetAlertingTime(t float64) {
	if t >= 0 && t != kb.Core.AlertingTime {
		kb.Core.AlertingTime = t
		kb.ResetAll()
	}
}

func (kb *KinematicBands) SetMaxRecoveryTime(t float64) {
	if t >= 0 && t != kb.Core.MaxRecoveryTime {
		kb.Core.MaxRecoveryTime = t
		kb.ResetAll()
	}
}

func (kb *KinematicBands) SetRecoveryStabilityTime(t float64) {
	if t >= 0 && t != kb.Core.RecoveryStabilityTime {
		kb.Core.RecoveryStabilityTime = t
		kb.ResetAll()
	}
}

func (kb *KinematicBands) SetMinHorizontalRecovery(v float64) {
	if v >= 0 && v != kb.Core.MinHorizontalRecovery {
		kb.Core.MinHorizontalRecovery = v
		kb.ResetAll()
	}
}

func (kb *KinematicBands) SetMinVerticalRecovery(v float64) {
	if v >= 0 && v != kb.Core.MinVerticalRecovery {
		kb.Core.MinVerticalRecovery = v
		kb.ResetAll()
	}
}

func (kb *KinematicBands) SetImplicitBands(flag bool) {
	if flag != kb.Core.ImplicitBands {
		kb.Core.ImplicitBands = flag
		kb.ResetAll()
	}
}

func (kb *KinematicBands) SetCollisionAvoidanceBands(flag bool) {
	if flag != kb.Core.CABands {
		kb.Core.CABands = flag
		kb.ResetAll()
	}
}

func (kb *KinematicBands) SetConflictCriteria(flag bool) {
	if flag != kb.Core.ConflictCrit {
		kb.Core.ConflictCrit = flag
		kb.ResetAll()
	}
}

func (kb *KinematicBands) SetRecoveryCriteria(flag bool) {
	if flag != kb.Core.RecoveryCrit {
		kb.Core.RecoveryCrit = flag
		kb.ResetAll()
	}
}

// SetCriteriaAircraft designates the most-urgent aircraft by identifier.
func (kb *KinematicBands) SetCriteriaAircraft(id string) {
	if id != kb.Core.CriteriaAc {
		kb.Core.CriteriaAc = id
		kb.ResetAll()
	}
}

// SetCriteriaAircraftFromStrategy runs the urgency strategy against the
// current aircraft and designates its choice.
func (kb *KinematicBands) SetCriteriaAircraftFromStrategy(strat UrgencyStrategy) {
	kb.SetCriteriaAircraft(kb.MostUrgentAircraft(strat).ID)
}

// MostUrgentAircraft evaluates the urgency strategy over the current
// traffic within the alerting time.
func (kb *KinematicBands) MostUrgentAircraft(strat UrgencyStrategy) traffic.State {
	if !kb.Core.HasOwnship() || !kb.Core.HasTraffic() {
		return traffic.Invalid
	}
	return strat.MostUrgentAircraft(kb.Core.Detector, kb.Core.Ownship, kb.Core.Traffic, kb.Core.ActualAlertingTime())
}

// SetDetector installs a deep copy of the detector.
func (kb *KinematicBands) SetDetector(det detection.Detector) {
	kb.Core.Detector = det.Copy()
	kb.ResetAll()
}

// DisableRecoveryBands turns recovery off on every axis.
func (kb *KinematicBands) DisableRecoveryBands() {
	kb.Trk.SetRecovery(false)
	kb.Gs.SetRecovery(false)
	kb.Vs.SetRecovery(false)
}

///////////////////////////////////////////////////////////////////////////
// per-axis queries

func (kb *KinematicBands) TrackLength() int {
	return kb.Trk.Length(kb.Core)
}

func (kb *KinematicBands) TrackInterval(i int) math.Interval {
	return kb.Trk.Interval(kb.Core, i)
}

func (kb *KinematicBands) TrackRegion(i int) Region {
	return kb.Trk.Region(kb.Core, i)
}

func (kb *KinematicBands) TrackRegionOf(trk float64) Region {
	return kb.Trk.RegionOf(kb.Core, math.To2Pi(trk))
}

// NearTrackConflict reports a track within thr of a NEAR track band.
func (kb *KinematicBands) NearTrackConflict(trk, thr float64) bool {
	return kb.Trk.AlmostNear(kb.Core, trk, thr)
}

func (kb *KinematicBands) TrackRecoveryTime() float64 {
	return kb.Trk.RecoveryTime(kb.Core)
}

func (kb *KinematicBands) GroundSpeedLength() int {
	return kb.Gs.Length(kb.Core)
}

func (kb *KinematicBands) GroundSpeedInterval(i int) math.Interval {
	return kb.Gs.Interval(kb.Core, i)
}

func (kb *KinematicBands) GroundSpeedRegion(i int) Region {
	return kb.Gs.Region(kb.Core, i)
}

func (kb *KinematicBands) GroundSpeedRegionOf(gs float64) Region {
	return kb.Gs.RegionOf(kb.Core, gs)
}

func (kb *KinematicBands) NearGroundSpeedConflict(gs, thr float64) bool {
	return kb.Gs.AlmostNear(kb.Core, gs, thr)
}

func (kb *KinematicBands) GroundSpeedRecoveryTime() float64 {
	return kb.Gs.RecoveryTime(kb.Core)
}

func (kb *KinematicBands) VerticalSpeedLength() int {
	return kb.Vs.Length(kb.Core)
}

func (kb *KinematicBands) VerticalSpeedInterval(i int) math.Interval {
	return kb.Vs.Interval(kb.Core, i)
}

func (kb *KinematicBands) VerticalSpeedRegion(i int) Region {
	return kb.Vs.Region(kb.Core, i)
}

func (kb *KinematicBands) VerticalSpeedRegionOf(vs float64) Region {
	return kb.Vs.RegionOf(kb.Core, vs)
}

func (kb *KinematicBands) NearVerticalSpeedConflict(vs, thr float64) bool {
	return kb.Vs.AlmostNear(kb.Core, vs, thr)
}

func (kb *KinematicBands) VerticalSpeedRecoveryTime() float64 {
	return kb.Vs.RecoveryTime(kb.Core)
}

func (kb *KinematicBands) AltitudeLength() int {
	return kb.Alt.Length(kb.Core)
}

func (kb *KinematicBands) AltitudeInterval(i int) math.Interval {
	return kb.Alt.Interval(kb.Core, i)
}

func (kb *KinematicBands) AltitudeRegion(i int) Region {
	return kb.Alt.Region(kb.Core, i)
}

func (kb *KinematicBands) AltitudeRegionOf(alt float64) Region {
	return kb.Alt.RegionOf(kb.Core, alt)
}

// TrackAlertingAircraft returns the identifiers of the preventive and
// corrective aircraft of the track axis, in traffic insertion order.
func (kb *KinematicBands) TrackAlertingAircraft() (preventive, corrective []string) {
	return kb.Trk.AlertingAircraftNames(kb.Core)
}

func (kb *KinematicBands) GroundSpeedAlertingAircraft() (preventive, corrective []string) {
	return kb.Gs.AlertingAircraftNames(kb.Core)
}

func (kb *KinematicBands) VerticalSpeedAlertingAircraft() (preventive, corrective []string) {
	return kb.Vs.AlertingAircraftNames(kb.Core)
}

///////////////////////////////////////////////////////////////////////////
// rendering

func (kb *KinematicBands) String() string {
	var sb strings.Builder
	sb.WriteString("Track bands:\n" + kb.Trk.String() + "\n")
	sb.WriteString("Ground speed bands:\n" + kb.Gs.String() + "\n")
	sb.WriteString("Vertical speed bands:\n" + kb.Vs.String() + "\n")
	sb.WriteString("Altitude bands:\n" + kb.Alt.String() + "\n")
	return sb.String()
}
