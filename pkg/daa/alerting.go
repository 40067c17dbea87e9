// pkg/daa/alerting.go

package daa

import (
	"fmt"
	gomath "math"

	"wellclear/pkg/bands"
	"wellclear/pkg/detection"
	"wellclear/pkg/math"
	"wellclear/pkg/traffic"
)

// Alert levels of the bands-based ladder, least to most urgent.
const (
	AlertNone       = 0
	AlertProximate  = 1
	AlertPreventive = 2
	AlertCorrective = 3
	AlertWarning    = 4
)

// AlertThresholds is one severity tier of the thresholds-based alerting
// logic: its own detector, alerting-time horizon, and minimum conflict
// duration. A vector of these ordered least-severe first is an Alertor.
type AlertThresholds struct {
	detector     detection.Detector
	alertingTime float64
	duration     float64
}

func NewAlertThresholds(det detection.Detector, alertingTime, minDuration float64) AlertThresholds {
	return AlertThresholds{detector: det.Copy(), alertingTime: alertingTime, duration: minDuration}
}

func (at *AlertThresholds) Detector() detection.Detector {
	return at.detector
}

func (at *AlertThresholds) SetDetector(det detection.Detector) {
	at.detector = det.Copy()
}

func (at *AlertThresholds) AlertingTime() float64 {
	return at.alertingTime
}

func (at *AlertThresholds) SetAlertingTime(t float64) {
	at.alertingTime = t
}

func (at *AlertThresholds) MinDuration() float64 {
	return at.duration
}

func (at *AlertThresholds) SetMinDuration(d float64) {
	at.duration = d
}

func (at *AlertThresholds) Copy() AlertThresholds {
	return NewAlertThresholds(at.detector, at.alertingTime, at.duration)
}

// Alerting reports whether the tier fires for the given pair, along with
// the detected time to violation. With a zero alerting time the tier
// fires only on a current violation.
func (at *AlertThresholds) Alerting(so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity) (bool, float64) {
	det := at.detector.ConflictDetection(so, vo, si, vi, 0, at.alertingTime)
	alert := det.ConflictWithDuration(at.duration)
	if at.alertingTime == 0 {
		alert = alert && det.TimeIn == 0
	}
	return alert, det.TimeIn
}

func (at *AlertThresholds) String() string {
	return fmt.Sprintf("AlertThresholds: %s, alerting_time=%.1f, duration_thr=%.1f",
		at.detector.TypeName(), at.alertingTime, at.duration)
}

// MOPSAlertor is the four-tier well-clear threshold ladder: Proximate,
// Preventive, Corrective, Warning.
func MOPSAlertor() []AlertThresholds {
	nmi := func(v float64) float64 { return math.FromUnitOr("nmi", v) }
	ft := func(v float64) float64 { return math.FromUnitOr("ft", v) }
	mk := func(dthr, zthr float64) detection.WCVTable {
		return detection.WCVTable{DTHR: dthr, ZTHR: zthr, TTHR: 35, TCOA: 0}
	}
	return []AlertThresholds{
		NewAlertThresholds(detection.NewWCVTaumodWithTable(mk(nmi(2), ft(1200))), 60, 0),
		NewAlertThresholds(detection.NewWCVTaumodWithTable(mk(nmi(0.66), ft(700))), 55, 0),
		NewAlertThresholds(detection.NewWCVTaumodWithTable(mk(nmi(0.66), ft(450))), 40, 0),
		NewAlertThresholds(detection.NewWCVTaumodWithTable(mk(nmi(0.66), ft(450))), 20, 0),
	}
}

// PT5Alertor is the TCAS-based four-tier ladder.
func PT5Alertor() []AlertThresholds {
	nmi := func(v float64) float64 { return math.FromUnitOr("nmi", v) }
	ft := func(v float64) float64 { return math.FromUnitOr("ft", v) }
	mk := func(dmod, hmd, zthr, tau float64) detection.TCASTable {
		t := detection.DefaultTCASTable()
		t.SetDMOD(dmod)
		t.SetHMD(hmd)
		t.SetZTHR(zthr)
		t.SetTAU(tau)
		return t
	}
	return []AlertThresholds{
		NewAlertThresholds(detection.NewTCAS3DWithTable(mk(nmi(0.75), nmi(1.5), ft(1200), 35)), 85, 0),
		NewAlertThresholds(detection.NewTCAS3DWithTable(mk(nmi(0.75), nmi(1.0), ft(700), 35)), 75, 0),
		NewAlertThresholds(detection.NewTCAS3DWithTable(mk(nmi(0.75), nmi(0.75), ft(450), 35)), 75, 0),
		NewAlertThresholds(detection.NewTCAS3DWithTable(mk(nmi(0.75), nmi(0.75), ft(450), 35)), 25, 0),
	}
}

///////////////////////////////////////////////////////////////////////////
// AlertInfo

// AlertInfo records the geometry behind the last emitted alert: type,
// relative position, both velocities, and the detected time to violation.
// It is written at most once per alerting call.
type AlertInfo struct {
	alertType int
	s         math.Vect3
	vo, vi    math.Velocity
	tin       float64
}

func emptyAlertInfo() AlertInfo {
	return AlertInfo{
		alertType: -1,
		s:         math.InvalidVect3,
		vo:        math.InvalidVect3,
		vi:        math.InvalidVect3,
		tin:       gomath.Inf(1),
	}
}

func makeAlertInfo(alertType int, so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity, tin float64) AlertInfo {
	return AlertInfo{alertType: alertType, s: so.Sub(si), vo: vo, vi: vi, tin: tin}
}

func (ai AlertInfo) AlertType() int {
	return ai.alertType
}

func (ai AlertInfo) TimeToViolation() float64 {
	return ai.tin
}

func (ai AlertInfo) HorizontalRange(u string) float64 {
	return math.ToUnitOr(u, ai.s.Vect2().Norm())
}

func (ai AlertInfo) VerticalRange(u string) float64 {
	return math.ToUnitOr(u, gomath.Abs(ai.s.Z))
}

// HorizontalMissDistance is the horizontal separation at the NMAC-scale
// closest approach.
func (ai AlertInfo) HorizontalMissDistance(u string) float64 {
	tcpa := detection.Tccpa(ai.s, ai.vo, ai.vi)
	stcpa := ai.vo.Sub(ai.vi).ScalAdd(tcpa, ai.s)
	return math.ToUnitOr(u, stcpa.Vect2().Norm())
}

func (ai AlertInfo) VerticalMissDistance(u string) float64 {
	tcpa := detection.Tccpa(ai.s, ai.vo, ai.vi)
	stcpa := ai.vo.Sub(ai.vi).ScalAdd(tcpa, ai.s)
	return math.ToUnitOr(u, gomath.Abs(stcpa.Z))
}

func (ai AlertInfo) CylindricalNorm(d float64, ud string, h float64, uh string) float64 {
	return ai.s.CylNorm(math.FromUnitOr(ud, d), math.FromUnitOr(uh, h))
}

///////////////////////////////////////////////////////////////////////////
// alerting logic

// thresholdsAlerting scans the alertor most-severe tier first and returns
// the first tier that fires; 0 if none does.
func (d *Daidalus) thresholdsAlerting(own traffic.Ownship, ac traffic.State) int {
	so := own.S()
	vo := own.V()
	si := own.TrafficS(ac)
	vi := own.TrafficV(ac)
	for i := len(d.alertor); i > 0; i-- {
		if fired, tin := d.alertor[i-1].Alerting(so, vo, si, vi); fired {
			d.info = makeAlertInfo(i, so, vo, si, vi, tin)
			return i
		}
	}
	d.info = emptyAlertInfo()
	return 0
}

// lastTimeToManeuver binary-searches [0, t2v] for the time at which every
// enabled axis becomes entirely red against ac under the linearly
// projected states: a pivot that leaves some axis with a green band moves
// the lower bound up, an all-red pivot moves the upper bound down. It
// returns the all-red bound once the two are within one second.
func (d *Daidalus) lastTimeToManeuver(own traffic.Ownship, ac, repac traffic.State, t2v float64) float64 {
	kb := bands.NewKinematicBands(d.detector)
	d.applyParameters(kb)
	kb.SetCriteriaAircraft(repac.ID)
	pivotGreen := 0.0
	pivotRed := t2v
	pivot := pivotGreen + 1
	for pivotRed-pivotGreen > 1 {
		op := own.LinearProjection(pivot)
		aircraft := []traffic.State{ac.LinearProjection(pivot)}
		allred := (!d.parameters.TrkAlerting ||
			kb.Trk.AllRed(d.detector, nil, traffic.Invalid, 0, d.alertingTime(), op, aircraft)) &&
			(!d.parameters.GsAlerting ||
				kb.Gs.AllRed(d.detector, nil, traffic.Invalid, 0, d.alertingTime(), op, aircraft)) &&
			(!d.parameters.VsAlerting ||
				kb.Vs.AllRed(d.detector, nil, traffic.Invalid, 0, d.alertingTime(), op, aircraft))
		if allred {
			pivotRed = pivot
		} else {
			pivotGreen = pivot
		}
		pivot = (pivotRed + pivotGreen) / 2
	}
	return pivotRed
}

// bandsAlerting computes the bands-based alert level against the single
// aircraft ac.
func (d *Daidalus) bandsAlerting(own traffic.Ownship, ac, repac traffic.State) int {
	p := &d.parameters
	kb := bands.NewKinematicBands(d.detector)
	d.applyParameters(kb)
	kb.SetCriteriaAircraft(repac.ID)
	kb.DisableRecoveryBands()
	kb.SetImplicitBands(true)
	kb.SetOwnship(own.State)
	kb.AddTraffic(ac)
	if (!p.TrkAlerting || kb.TrackLength() == 0) &&
		(!p.GsAlerting || kb.GroundSpeedLength() == 0) &&
		(!p.VsAlerting || kb.VerticalSpeedLength() == 0) {
		// There are no bands of any type.
		return AlertNone
	}
	so := own.S()
	vo := own.V()
	si := own.TrafficS(ac)
	vi := own.TrafficV(ac)
	det := d.detector.ConflictDetection(so, vo, si, vi, 0, d.alertingTime())
	if det.Conflict() {
		time2warning := det.TimeIn
		if p.WarningWhenRecovery {
			time2warning = d.lastTimeToManeuver(own, ac, repac, det.TimeIn)
		}
		if time2warning <= p.TimeToWarning {
			return AlertWarning
		}
		return AlertCorrective
	}
	if p.PreventiveAlt < 0 || gomath.Abs(so.Z-si.Z) <= p.PreventiveAlt {
		// Preventive alerts are only issued when the aircraft are
		// vertically close.
		if (p.TrkAlerting && kb.TrackLength() > 0 &&
			(p.PreventiveTrk < 0 || kb.NearTrackConflict(math.Trk(own.Vel), p.PreventiveTrk))) ||
			(p.GsAlerting && kb.GroundSpeedLength() > 0 &&
				(p.PreventiveGs < 0 || kb.NearGroundSpeedConflict(math.Gs(own.Vel), p.PreventiveGs))) ||
			(p.VsAlerting && kb.VerticalSpeedLength() > 0 &&
				(p.PreventiveVs < 0 || kb.NearVerticalSpeedConflict(math.Vs(own.Vel), p.PreventiveVs))) {
			return AlertPreventive
		}
	}
	return AlertProximate
}
