// pkg/traffic/state.go

package traffic

import (
	"fmt"

	"wellclear/pkg/math"
)

// State is an immutable aircraft state: identifier, position, and
// velocity. The velocity stored here is relative to the air mass; the
// owning façade subtracts the common wind vector before constructing
// states.
type State struct {
	ID  string
	Pos math.Position
	Vel math.Velocity
}

// Invalid is the sentinel state used where no aircraft applies.
var Invalid = State{ID: "_NoAc_", Pos: math.InvalidPosition, Vel: math.InvalidVect3}

func New(id string, pos math.Position, vel math.Velocity) State {
	return State{ID: id, Pos: pos, Vel: vel}
}

func (ac State) IsValid() bool {
	return !ac.Pos.IsInvalid() && !ac.Vel.IsInvalid()
}

func (ac State) IsLatLon() bool {
	return ac.Pos.IsLatLon()
}

// LinearProjection returns the state advanced along its velocity by
// offset seconds.
func (ac State) LinearProjection(offset float64) State {
	return State{ID: ac.ID, Pos: ac.Pos.Linear(ac.Vel, offset), Vel: ac.Vel}
}

func (ac State) SameID(other State) bool {
	return ac.IsValid() && other.IsValid() && ac.ID == other.ID
}

func (ac State) String() string {
	return fmt.Sprintf("(%s, %s, %v)", ac.ID, ac.Pos, ac.Vel)
}

// Find returns the state in traffic with the given id, or Invalid.
func Find(traffic []State, id string) State {
	if id != Invalid.ID {
		for _, ac := range traffic {
			if ac.ID == id {
				return ac
			}
		}
	}
	return Invalid
}

///////////////////////////////////////////////////////////////////////////
// Ownship

// Ownship is an aircraft state extended with an east-north-up projection
// anchored at its own position, plus the cached projected state. All
// detector math happens in this frame, and traffic states are projected
// through the ownship's frame; the anchor never changes within one band
// computation.
type Ownship struct {
	State
	proj math.Projection
	s    math.Vect3
	v    math.Velocity
}

var InvalidOwnship = MakeOwnship(Invalid)

func MakeOwnship(ac State) Ownship {
	own := Ownship{State: ac}
	if ac.Pos.IsLatLon() {
		own.proj = math.NewProjection(ac.Pos.LLA())
		own.s = own.proj.Project(ac.Pos.LLA())
		own.v = own.proj.ProjectVelocity(ac.Pos.LLA(), ac.Vel)
	} else {
		own.proj = math.NewProjection(math.LatLonAlt{})
		own.s = ac.Pos.Point()
		own.v = ac.Vel
	}
	return own
}

// S returns the ownship's projected position.
func (own Ownship) S() math.Vect3 {
	return own.s
}

// V returns the ownship's projected velocity.
func (own Ownship) V() math.Velocity {
	return own.v
}

// PosToS projects any position into the ownship frame. Projecting a
// lat/lon position through a Euclidean ownship (or vice versa) is a
// coordinate-system mix and yields the invalid vector.
func (own Ownship) PosToS(p math.Position) math.Vect3 {
	if p.IsLatLon() {
		if !own.Pos.IsLatLon() {
			return math.InvalidVect3
		}
		return own.proj.Project(p.LLA())
	}
	if own.Pos.IsLatLon() {
		return math.InvalidVect3
	}
	return p.Point()
}

// VelToV re-expresses a velocity at position p in the ownship frame.
func (own Ownship) VelToV(p math.Position, v math.Velocity) math.Velocity {
	if p.IsLatLon() {
		if !own.Pos.IsLatLon() {
			return math.InvalidVect3
		}
		return own.proj.ProjectVelocity(p.LLA(), v)
	}
	return v
}

// TrafficS projects a traffic state's position into the ownship frame.
func (own Ownship) TrafficS(ac State) math.Vect3 {
	return own.PosToS(ac.Pos)
}

// TrafficV projects a traffic state's velocity into the ownship frame.
func (own Ownship) TrafficV(ac State) math.Velocity {
	return own.VelToV(ac.Pos, ac.Vel)
}

// InverseVelocity maps a frame velocity back to a ground-frame velocity
// at the ownship's position.
func (own Ownship) InverseVelocity(v math.Velocity) math.Velocity {
	return own.proj.InverseVelocity(own.s, v)
}

// FramePosition maps a frame point back to a Position of the same kind as
// the ownship's.
func (own Ownship) FramePosition(s math.Vect3) math.Position {
	if own.Pos.IsLatLon() {
		return math.PositionFromLatLonAlt(own.proj.Inverse(s))
	}
	return math.PositionFromXYZ(s)
}

// LinearProjection returns the ownship advanced by offset seconds, with
// the projection re-anchored at the new position.
func (own Ownship) LinearProjection(offset float64) Ownship {
	return MakeOwnship(own.State.LinearProjection(offset))
}
