// pkg/daa/daa.go

// Package daa is the top-level detect-and-avoid façade: it owns the
// aircraft list, the wind field, the parameter block, the conflict
// detector, and the alerting logic, and hands out kinematic band
// computations for the current or a projected time.
package daa

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"wellclear/pkg/bands"
	"wellclear/pkg/detection"
	"wellclear/pkg/math"
	"wellclear/pkg/traffic"
	"wellclear/pkg/util"
)

type Daidalus struct {
	// acs[0] is always the ownship; a non-empty list always has one.
	acs   []traffic.State
	times []float64
	wind  math.Velocity

	alertor  []AlertThresholds
	info     AlertInfo
	detector detection.Detector
	urgency  bands.UrgencyStrategy

	parameters Parameters

	// bandsCache memoizes KinematicBandsAt results by projection offset;
	// it is purged whenever aircraft, wind, detector, or parameters
	// change.
	bandsCache *lru.Cache[int64, *bands.KinematicBands]

	errlog *util.ErrorLog
}

const bandsCacheSize = 16

// New creates a façade with the default parameters and a WCVTaumod
// detector. No aircraft or wind are initially defined.
func New() *Daidalus {
	return NewWithDetector(detection.NewWCVTaumod())
}

// NewWithDetector creates a façade around a deep copy of the given
// detector; its thresholds are folded into the parameter block.
func NewWithDetector(det detection.Detector) *Daidalus {
	cache, _ := lru.New[int64, *bands.KinematicBands](bandsCacheSize)
	d := &Daidalus{
		parameters: DefaultParameters(),
		detector:   det.Copy(),
		urgency:    bands.NoneUrgencyStrategy{},
		info:       emptyAlertInfo(),
		alertor:    MOPSAlertor(),
		bandsCache: cache,
		errlog:     util.NewErrorLog("Daidalus"),
	}
	d.setParametersFromDetector()
	return d
}

// Copy duplicates the façade, its configuration, and its traffic.
func (d *Daidalus) Copy() *Daidalus {
	cache, _ := lru.New[int64, *bands.KinematicBands](bandsCacheSize)
	nd := &Daidalus{
		acs:        append([]traffic.State(nil), d.acs...),
		times:      append([]float64(nil), d.times...),
		wind:       d.wind,
		info:       d.info,
		detector:   d.detector.Copy(),
		urgency:    d.urgency.Copy(),
		parameters: d.parameters.Copy(),
		bandsCache: cache,
		errlog:     util.NewErrorLog("Daidalus"),
	}
	for _, at := range d.alertor {
		nd.alertor = append(nd.alertor, at.Copy())
	}
	return nd
}

func (d *Daidalus) invalidate() {
	d.bandsCache.Purge()
}

///////////////////////////////////////////////////////////////////////////
// aircraft list

func (d *Daidalus) AircraftList() []traffic.State {
	return d.acs
}

func (d *Daidalus) NumberOfAircraft() int {
	return len(d.acs)
}

// AircraftName returns the identifier of the aircraft at index i; the
// ownship is index 0.
func (d *Daidalus) AircraftName(i int) string {
	if i < 0 || i >= len(d.acs) {
		d.errlog.AddError("AircraftName: invalid index %d", i)
		return traffic.Invalid.ID
	}
	return d.acs[i].ID
}

// AircraftIndex returns the index of the named aircraft, or -1.
func (d *Daidalus) AircraftIndex(name string) int {
	for i, ac := range d.acs {
		if ac.ID == name {
			return i
		}
	}
	return -1
}

// Reset clears the aircraft list, the current time, and the wind vector.
func (d *Daidalus) Reset() {
	d.acs = d.acs[:0]
	d.times = d.times[:0]
	d.wind = math.Velocity{}
	d.invalidate()
}

// CurrentTime is the timestamp of the ownship.
func (d *Daidalus) CurrentTime() float64 {
	if len(d.times) == 0 {
		return 0
	}
	return d.times[0]
}

// SetOwnshipState clears all aircraft and installs the ownship at the
// given time. The velocity is a ground velocity; the stored state is
// wind-relative.
func (d *Daidalus) SetOwnshipState(id string, pos math.Position, vel math.Velocity, time float64) {
	d.acs = d.acs[:0]
	d.times = d.times[:0]
	d.acs = append(d.acs, traffic.New(id, pos, vel.Sub(d.wind)))
	d.times = append(d.times, time)
	d.invalidate()
}

// AddTrafficState adds a traffic state with a ground velocity at the
// given time. A state at a time other than the current time is linearly
// projected to the current time using its wind-relative velocity. The
// first aircraft added becomes the ownship. Returns the aircraft index.
func (d *Daidalus) AddTrafficState(id string, pos math.Position, vel math.Velocity, time float64) int {
	if len(d.acs) == 0 {
		d.SetOwnshipState(id, pos, vel, time)
		return 0
	}
	if len(d.acs) > 0 && d.acs[0].IsLatLon() != pos.IsLatLon() {
		d.errlog.AddError("AddTrafficState: aircraft %s mixes coordinate systems with ownship", id)
		return -1
	}
	dt := d.CurrentTime() - time
	vt := vel.Sub(d.wind)
	pt := pos.Linear(vt, dt)
	d.acs = append(d.acs, traffic.New(id, pt, vt))
	d.times = append(d.times, time)
	d.invalidate()
	return len(d.acs) - 1
}

// AddTrafficStateNow adds a traffic state at the current time.
func (d *Daidalus) AddTrafficStateNow(id string, pos math.Position, vel math.Velocity) int {
	return d.AddTrafficState(id, pos, vel, d.CurrentTime())
}

// SetAircraftList clears the wind vector and installs the list at the
// given time. The first element of the list is the ownship.
func (d *Daidalus) SetAircraftList(acl []traffic.State, time float64) {
	d.Reset()
	for _, ac := range acl {
		d.AddTrafficState(ac.ID, ac.Pos, ac.Vel.Add(d.wind), time)
	}
}

// ResetOwnship exchanges the ownship with the aircraft at index i and
// re-projects every aircraft to the new current time.
func (d *Daidalus) ResetOwnship(i int) {
	if i <= 0 || i >= len(d.acs) {
		return
	}
	d.acs[0], d.acs[i] = d.acs[i], d.acs[0]
	if d.times[0] != d.times[i] {
		oldTime0 := d.times[0]
		d.times[0], d.times[i] = d.times[i], oldTime0
		dt := d.CurrentTime() - oldTime0
		for k := range d.acs {
			d.acs[k] = d.acs[k].LinearProjection(dt)
		}
	}
	d.invalidate()
}

// ResetOwnshipByName exchanges the ownship with the named aircraft.
func (d *Daidalus) ResetOwnshipByName(id string) {
	d.ResetOwnship(d.AircraftIndex(id))
}

///////////////////////////////////////////////////////////////////////////
// wind

func (d *Daidalus) WindField() math.Velocity {
	return d.wind
}

// SetWindField installs a wind vector common to all aircraft. Each stored
// aircraft's ground velocity is preserved: its air velocity is recomputed
// against the new wind and its position re-projected to the current time.
func (d *Daidalus) SetWindField(wind math.Velocity) {
	for i, ac := range d.acs {
		dt := d.CurrentTime() - d.times[i]
		pos := ac.Pos.Linear(ac.Vel, -dt)  // original position
		vel := ac.Vel.Add(d.wind)          // original ground velocity
		vt := vel.Sub(wind)
		pt := pos.Linear(vt, dt)
		d.acs[i] = traffic.New(ac.ID, pt, vt)
	}
	d.wind = wind
	d.invalidate()
}

///////////////////////////////////////////////////////////////////////////
// projected states

// OwnshipStateAt returns the ownship linearly projected to the given time.
func (d *Daidalus) OwnshipStateAt(time float64) traffic.Ownship {
	if len(d.acs) == 0 {
		d.errlog.AddError("OwnshipStateAt: no ownship state information")
		return traffic.InvalidOwnship
	}
	return traffic.MakeOwnship(d.acs[0].LinearProjection(time - d.CurrentTime()))
}

func (d *Daidalus) OwnshipState() traffic.Ownship {
	return d.OwnshipStateAt(d.CurrentTime())
}

func (d *Daidalus) TrafficStateAt(ac int, time float64) traffic.State {
	if ac < 0 || ac >= len(d.acs) {
		d.errlog.AddError("TrafficStateAt: no traffic state information")
		return traffic.Invalid
	}
	return d.acs[ac].LinearProjection(time - d.CurrentTime())
}

func (d *Daidalus) TrafficState(ac int) traffic.State {
	return d.TrafficStateAt(ac, d.CurrentTime())
}

///////////////////////////////////////////////////////////////////////////
// detector and parameters

func (d *Daidalus) Detector() detection.Detector {
	return d.detector
}

// SetDetector installs a deep copy of the detector and folds its
// thresholds into the parameter block.
func (d *Daidalus) SetDetector(det detection.Detector) {
	d.detector = det.Copy()
	d.setParametersFromDetector()
	d.invalidate()
}

func (d *Daidalus) setParametersFromDetector() {
	switch det := d.detector.(type) {
	case *detection.WCVTaumod:
		d.parameters.DTHR = det.Table.DTHR
		d.parameters.ZTHR = det.Table.ZTHR
		d.parameters.TTHR = det.Table.TTHR
		d.parameters.TCOA = det.Table.TCOA
	case *detection.CDCylinder:
		d.parameters.D = det.D
		d.parameters.H = det.H
	}
}

func (d *Daidalus) Parameters() *Parameters {
	return &d.parameters
}

// SetParameters installs a copy of the block after validating it; an
// inconsistent block (min >= max on an axis, non-positive lookahead or
// steps) is rejected.
func (d *Daidalus) SetParameters(p Parameters) bool {
	switch {
	case p.LookaheadTime <= 0,
		p.TrkStep <= 0, p.GsStep <= 0, p.VsStep <= 0, p.AltStep <= 0:
		d.errlog.AddError("SetParameters: non-positive lookahead time or axis step")
		return false
	case p.MinGs >= p.MaxGs, p.MinVs >= p.MaxVs, p.MinAlt >= p.MaxAlt:
		d.errlog.AddError("SetParameters: min >= max on an axis")
		return false
	}
	d.parameters = p.Copy()
	d.applyParametersToDetector()
	d.invalidate()
	return true
}

func (d *Daidalus) applyParametersToDetector() {
	switch det := d.detector.(type) {
	case *detection.WCVTaumod:
		det.Table.DTHR = d.parameters.DTHR
		det.Table.ZTHR = d.parameters.ZTHR
		det.Table.TTHR = d.parameters.TTHR
		det.Table.TCOA = d.parameters.TCOA
	case *detection.CDCylinder:
		det.D = d.parameters.D
		det.H = d.parameters.H
	}
}

// applyParameters pushes the parameter block into a bands object.
func (d *Daidalus) applyParameters(kb *bands.KinematicBands) {
	p := &d.parameters
	kb.SetLookaheadTime(p.LookaheadTime)
	kb.SetAlertingTime(p.AlertingTime)
	kb.SetMaxRecoveryTime(p.MaxRecoveryTime)
	kb.SetRecoveryStabilityTime(p.RecoveryStabilityTime)
	kb.SetMinHorizontalRecovery(p.MinHorizontalRecovery)
	kb.SetMinVerticalRecovery(p.MinVerticalRecovery)
	kb.SetImplicitBands(p.ImplicitBands)
	kb.SetConflictCriteria(p.ConflictCrit)
	kb.SetRecoveryCriteria(p.RecoveryCrit)
	kb.SetCollisionAvoidanceBands(p.CABands)
	kb.Trk.SetStep(p.TrkStep)
	kb.Trk.SetTurnRate(p.TurnRate)
	kb.Trk.SetBankAngle(p.BankAngle)
	kb.Trk.SetRecovery(p.RecoveryTrk)
	kb.Gs.SetMin(p.MinGs)
	kb.Gs.SetMax(p.MaxGs)
	kb.Gs.SetStep(p.GsStep)
	kb.Gs.SetHorizontalAcceleration(p.HorizontalAccel)
	kb.Gs.SetRecovery(p.RecoveryGs)
	kb.Vs.SetMin(p.MinVs)
	kb.Vs.SetMax(p.MaxVs)
	kb.Vs.SetStep(p.VsStep)
	kb.Vs.SetVerticalAcceleration(p.VerticalAccel)
	kb.Vs.SetRecovery(p.RecoveryVs)
	kb.Alt.SetMin(p.MinAlt)
	kb.Alt.SetMax(p.MaxAlt)
	kb.Alt.SetStep(p.AltStep)
	kb.Alt.SetVerticalRate(p.VerticalRate)
	kb.Alt.SetVerticalAcceleration(p.VerticalAccel)
}

///////////////////////////////////////////////////////////////////////////
// unit-checked threshold accessors

// The stored parameter value is always returned/updated; accessing a
// threshold that does not belong to the current detector variant is
// reported as a capability-mismatch warning.

func (d *Daidalus) warnIfNotWCV(method string) {
	if _, ok := d.detector.(*detection.WCVTaumod); !ok {
		d.errlog.AddWarning("[%s] Detector %s is not a well-clear detector", method, d.detector.TypeName())
	}
}

func (d *Daidalus) warnIfNotCylinder(method string) {
	if _, ok := d.detector.(*detection.CDCylinder); !ok {
		d.errlog.AddWarning("[%s] Detector %s is not a cylinder detector", method, d.detector.TypeName())
	}
}

func (d *Daidalus) DTHR() float64 {
	d.warnIfNotWCV("DTHR")
	return d.parameters.DTHR
}

func (d *Daidalus) ZTHR() float64 {
	d.warnIfNotWCV("ZTHR")
	return d.parameters.ZTHR
}

func (d *Daidalus) TTHR() float64 {
	d.warnIfNotWCV("TTHR")
	return d.parameters.TTHR
}

func (d *Daidalus) TCOA() float64 {
	d.warnIfNotWCV("TCOA")
	return d.parameters.TCOA
}

func (d *Daidalus) D() float64 {
	d.warnIfNotCylinder("D")
	return d.parameters.D
}

func (d *Daidalus) H() float64 {
	d.warnIfNotCylinder("H")
	return d.parameters.H
}

func (d *Daidalus) SetDTHR(val float64) {
	if d.errlog.IsPositive("SetDTHR", val) {
		if det, ok := d.detector.(*detection.WCVTaumod); ok {
			det.Table.DTHR = val
		} else {
			d.warnIfNotWCV("SetDTHR")
		}
		d.parameters.DTHR = val
		d.invalidate()
	}
}

func (d *Daidalus) SetZTHR(val float64) {
	if d.errlog.IsPositive("SetZTHR", val) {
		if det, ok := d.detector.(*detection.WCVTaumod); ok {
			det.Table.ZTHR = val
		} else {
			d.warnIfNotWCV("SetZTHR")
		}
		d.parameters.ZTHR = val
		d.invalidate()
	}
}

func (d *Daidalus) SetTTHR(val float64) {
	if d.errlog.IsNonNegative("SetTTHR", val) {
		if det, ok := d.detector.(*detection.WCVTaumod); ok {
			det.Table.TTHR = val
		} else {
			d.warnIfNotWCV("SetTTHR")
		}
		d.parameters.TTHR = val
		d.invalidate()
	}
}

func (d *Daidalus) SetTCOA(val float64) {
	if d.errlog.IsNonNegative("SetTCOA", val) {
		if det, ok := d.detector.(*detection.WCVTaumod); ok {
			det.Table.TCOA = val
		} else {
			d.warnIfNotWCV("SetTCOA")
		}
		d.parameters.TCOA = val
		d.invalidate()
	}
}

func (d *Daidalus) SetD(val float64) {
	if d.errlog.IsPositive("SetD", val) {
		if det, ok := d.detector.(*detection.CDCylinder); ok {
			det.D = val
		} else {
			d.warnIfNotCylinder("SetD")
		}
		d.parameters.D = val
		d.invalidate()
	}
}

func (d *Daidalus) SetH(val float64) {
	if d.errlog.IsPositive("SetH", val) {
		if det, ok := d.detector.(*detection.CDCylinder); ok {
			det.H = val
		} else {
			d.warnIfNotCylinder("SetH")
		}
		d.parameters.H = val
		d.invalidate()
	}
}

///////////////////////////////////////////////////////////////////////////
// presets

// SetNominalA configures the SC-228 nominal-A profile: kinematic bands
// with a 1.5 deg/s turn rate and the unbuffered well-clear volume.
func (d *Daidalus) SetNominalA() {
	d.setSC228MOPS(false, math.Radians(1.5))
}

// SetNominalB configures the SC-228 nominal-B profile: kinematic bands
// with a 3.0 deg/s turn rate and the buffered well-clear volume.
func (d *Daidalus) SetNominalB() {
	d.setSC228MOPS(true, math.Radians(3.0))
}

func (d *Daidalus) setSC228MOPS(buffered bool, turnRate float64) {
	table := detection.DefaultWCVTable()
	if buffered {
		table = detection.BufferedWCVTable()
	}
	d.SetDetector(detection.NewWCVTaumodWithTable(table))
	d.parameters.TurnRate = turnRate
	d.parameters.AlertingTime = 60
	d.parameters.LookaheadTime = 180
	d.alertor = MOPSAlertor()
	d.invalidate()
}

///////////////////////////////////////////////////////////////////////////
// alertor configuration

// Alertor returns the thresholds vector, ordered least-severe first.
func (d *Daidalus) Alertor() []AlertThresholds {
	return d.alertor
}

// SetAlertor installs copies of the given thresholds.
func (d *Daidalus) SetAlertor(al []AlertThresholds) {
	d.alertor = d.alertor[:0]
	for _, at := range al {
		d.alertor = append(d.alertor, at.Copy())
	}
	d.invalidate()
}

// MostSevereAlertLevel is the numeric type of the most severe tier.
func (d *Daidalus) MostSevereAlertLevel() int {
	return len(d.alertor)
}

// SetAlertThresholds replaces tier alertType (1-based); false if the type
// is not valid.
func (d *Daidalus) SetAlertThresholds(alertType int, at AlertThresholds) bool {
	if alertType <= 0 || alertType > len(d.alertor) {
		return false
	}
	d.alertor[alertType-1] = at.Copy()
	d.invalidate()
	return true
}

// AddAlertThresholds appends a tier and returns its numeric type.
func (d *Daidalus) AddAlertThresholds(at AlertThresholds) int {
	d.alertor = append(d.alertor, at.Copy())
	return len(d.alertor)
}

func (d *Daidalus) LastAlertInfo() AlertInfo {
	return d.info
}

///////////////////////////////////////////////////////////////////////////
// urgency strategy

func (d *Daidalus) UrgencyStrategy() bands.UrgencyStrategy {
	return d.urgency
}

func (d *Daidalus) SetUrgencyStrategy(strat bands.UrgencyStrategy) {
	d.urgency = strat.Copy()
	d.invalidate()
}

// MostUrgentAircraftAt evaluates the urgency strategy at time t; the
// strategy only applies when a criteria flag is enabled.
func (d *Daidalus) MostUrgentAircraftAt(t float64) traffic.State {
	if d.parameters.ConflictCrit || d.parameters.RecoveryCrit {
		own := d.OwnshipStateAt(t)
		if own.IsValid() {
			var acs []traffic.State
			for i := 1; i < d.NumberOfAircraft(); i++ {
				if ac := d.TrafficStateAt(i, t); ac.IsValid() {
					acs = append(acs, ac)
				}
			}
			return d.urgency.MostUrgentAircraft(d.detector, own, acs, d.alertingTime())
		}
	}
	return traffic.Invalid
}

///////////////////////////////////////////////////////////////////////////
// alerting and violation queries

func (d *Daidalus) alertingTime() float64 {
	if d.parameters.AlertingTime > 0 {
		return d.parameters.AlertingTime
	}
	return d.parameters.LookaheadTime
}

// AlertingAt computes the alert level against aircraft ac with states
// projected to the given time. 0 means no alert; a negative value means
// the index or time is invalid.
func (d *Daidalus) AlertingAt(ac int, time float64) int {
	if ac <= 0 || ac >= len(d.acs) {
		d.errlog.AddError("AlertingAt: aircraft index %d out of bounds", ac)
		return -1
	}
	if time < d.CurrentTime() || time > d.CurrentTime()+d.parameters.LookaheadTime {
		d.errlog.AddError("AlertingAt: time %.2f not in time horizon for aircraft %d", time, ac)
		return -1
	}
	dt := time - d.CurrentTime()
	own := traffic.MakeOwnship(d.acs[0].LinearProjection(dt))
	aci := d.acs[ac].LinearProjection(dt)
	if d.parameters.BandsAlerting {
		return d.bandsAlerting(own, aci, d.MostUrgentAircraftAt(time))
	}
	return d.thresholdsAlerting(own, aci)
}

// Alerting computes the alert level against aircraft ac at the current
// time.
func (d *Daidalus) Alerting(ac int) int {
	if len(d.acs) == 0 {
		d.errlog.AddError("Alerting: traffic list is empty")
		return -1
	}
	return d.AlertingAt(ac, d.CurrentTime())
}

// TimeIntervalOfViolationAt returns the violation window against
// aircraft ac with states projected to the given time, over the
// lookahead horizon, relative to that time.
func (d *Daidalus) TimeIntervalOfViolationAt(ac int, time float64) detection.ConflictData {
	if len(d.acs) < 1 {
		d.errlog.AddError("TimeIntervalOfViolationAt: no aircraft information has been loaded")
		return detection.NoConflict()
	}
	if time < d.CurrentTime() || time > d.CurrentTime()+d.parameters.LookaheadTime {
		d.errlog.AddError("TimeIntervalOfViolationAt: time not within ownship plan limits")
		return detection.NoConflict()
	}
	if ac <= 0 || ac >= len(d.acs) {
		return detection.NoConflict()
	}
	dt := time - d.CurrentTime()
	own := traffic.MakeOwnship(d.acs[0].LinearProjection(dt))
	aci := d.acs[ac].LinearProjection(dt)
	return d.detector.ConflictDetection(own.S(), own.V(),
		own.TrafficS(aci), own.TrafficV(aci), 0, d.parameters.LookaheadTime)
}

func (d *Daidalus) TimeIntervalOfViolation(ac int) detection.ConflictData {
	return d.TimeIntervalOfViolationAt(ac, d.CurrentTime())
}

// TimeToViolationAt returns the time to violation against aircraft ac,
// negative when there is no conflict within the lookahead time.
func (d *Daidalus) TimeToViolationAt(ac int, time float64) float64 {
	det := d.TimeIntervalOfViolationAt(ac, time)
	if det.Conflict() {
		return det.TimeIn
	}
	return -1
}

func (d *Daidalus) TimeToViolation(ac int) float64 {
	return d.TimeToViolationAt(ac, d.CurrentTime())
}

///////////////////////////////////////////////////////////////////////////
// kinematic bands

// KinematicBandsAt builds a bands object with every aircraft linearly
// projected to the given time, which must lie within the lookahead
// horizon. Results are memoized per projection offset until the façade
// mutates.
func (d *Daidalus) KinematicBandsAt(time float64) *bands.KinematicBands {
	if len(d.acs) < 1 {
		d.errlog.AddError("KinematicBandsAt: no aircraft information has been loaded")
		return bands.NewKinematicBands(d.detector)
	}
	if time < d.CurrentTime() || time > d.CurrentTime()+d.parameters.LookaheadTime {
		d.errlog.AddError("KinematicBandsAt: time %.2f not within ownship plan limits", time)
		return bands.NewKinematicBands(d.detector)
	}
	dt := time - d.CurrentTime()
	key := int64(dt * 1000)
	if kb, ok := d.bandsCache.Get(key); ok {
		return kb
	}
	own := d.acs[0].LinearProjection(dt)
	kb := bands.NewKinematicBands(d.detector)
	d.applyParameters(kb)
	kb.SetOwnship(own)
	for ac := 1; ac < len(d.acs); ac++ {
		kb.AddTraffic(d.acs[ac].LinearProjection(dt))
	}
	kb.SetCriteriaAircraftFromStrategy(d.urgency)
	d.bandsCache.Add(key, kb)
	return kb
}

// KinematicBands returns the bands at the current time.
func (d *Daidalus) KinematicBands() *bands.KinematicBands {
	if len(d.acs) == 0 {
		d.errlog.AddError("KinematicBands: traffic list is empty")
		return bands.NewKinematicBands(d.detector)
	}
	return d.KinematicBandsAt(d.CurrentTime())
}

///////////////////////////////////////////////////////////////////////////
// error log

func (d *Daidalus) HasError() bool {
	return d.errlog.HasError()
}

func (d *Daidalus) HasMessage() bool {
	return d.errlog.HasMessage()
}

func (d *Daidalus) Message() string {
	return d.errlog.Message()
}

func (d *Daidalus) MessageNoClear() string {
	return d.errlog.MessageNoClear()
}
