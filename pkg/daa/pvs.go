// pkg/daa/pvs.go

package daa

import (
	"fmt"
	"strings"

	"wellclear/pkg/math"
	"wellclear/pkg/traffic"
)

// PVS export: deterministic S-expression renderings of aircraft states
// for the external formal verification tooling. Precision is the number
// of decimal digits.

func vectToPVS(v math.Vect3, prec int) string {
	return fmt.Sprintf("(# x := %.*f, y := %.*f, z := %.*f #)", prec, v.X, prec, v.Y, prec, v.Z)
}

func stateToPVS(id string, s math.Vect3, v math.Velocity, prec int) string {
	return fmt.Sprintf("(# id := %q, s := %s, v := %s #)", id, vectToPVS(s, prec), vectToPVS(v, prec))
}

func ownshipToPVS(own traffic.Ownship, prec int) string {
	return stateToPVS(own.ID, own.S(), own.V(), prec)
}

func trafficToPVS(own traffic.Ownship, ac traffic.State, prec int) string {
	return stateToPVS(ac.ID, own.TrafficS(ac), own.TrafficV(ac), prec)
}

// OwnshipAtToPVS renders the ownship projected to the given time.
func (d *Daidalus) OwnshipAtToPVS(time float64, prec int) string {
	return ownshipToPVS(d.OwnshipStateAt(time), prec)
}

func (d *Daidalus) OwnshipToPVS(prec int) string {
	return d.OwnshipAtToPVS(d.CurrentTime(), prec)
}

// TrafficAtToPVS renders traffic aircraft ac through the projected
// ownship's frame.
func (d *Daidalus) TrafficAtToPVS(ac int, time float64, prec int) string {
	return trafficToPVS(d.OwnshipStateAt(time), d.TrafficStateAt(ac, time), prec)
}

func (d *Daidalus) TrafficToPVS(ac int, prec int) string {
	return d.TrafficAtToPVS(ac, d.CurrentTime(), prec)
}

// AircraftListAtToPVS renders the whole list, ownship first.
func (d *Daidalus) AircraftListAtToPVS(time float64, prec int) string {
	if len(d.acs) < 1 {
		d.errlog.AddError("AircraftListAtToPVS: no aircraft information has been loaded")
		return ""
	}
	var sb strings.Builder
	sb.WriteString("(: " + d.OwnshipAtToPVS(time, prec))
	for ac := 1; ac < len(d.acs); ac++ {
		sb.WriteString(", " + d.TrafficAtToPVS(ac, time, prec))
	}
	sb.WriteString(" :)")
	return sb.String()
}

func (d *Daidalus) AircraftListToPVS(prec int) string {
	return d.AircraftListAtToPVS(d.CurrentTime(), prec)
}

// ParametersToPVS renders the parameter block.
func (d *Daidalus) ParametersToPVS(prec int) string {
	return d.parameters.ToPVS(prec)
}
