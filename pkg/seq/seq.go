// pkg/seq/seq.go

// Package seq reads state-sequence files: whitespace-separated tables of
// aircraft states with a header naming the columns and a second row
// giving their units. A time column partitions rows into timesteps; the
// first aircraft of each timestep is the ownship.
package seq

import (
	"bufio"
	"fmt"
	gomath "math"
	"os"
	"strconv"
	"strings"

	"wellclear/pkg/math"
)

// Record is one aircraft state row.
type Record struct {
	ID  string
	Pos math.Position
	Vel math.Velocity
}

// Timestep is the group of rows sharing one time value, in file order.
type Timestep struct {
	Time     float64
	Aircraft []Record
}

// Reader holds the parsed sequence.
type Reader struct {
	Steps []Timestep
}

type column struct {
	name string
	unit string
}

var columnAliases = map[string]string{
	"name": "id", "aircraft": "id", "ac": "id",
	"latitude": "lat", "longitude": "lon", "long": "lon",
	"altitude": "alt",
	"sx": "x", "sy": "y", "sz": "z",
	"track": "trk", "heading": "trk",
	"groundspeed": "gs", "speed": "gs",
	"verticalspeed": "vs", "vz": "vs",
	"tm": "time", "st": "time",
}

func canonicalName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if a, ok := columnAliases[s]; ok {
		return a
	}
	return s
}

// defaultUnits used when the file carries no units row.
var defaultUnits = map[string]string{
	"lat": "deg", "lon": "deg", "alt": "ft",
	"x": "nmi", "y": "nmi", "z": "ft",
	"trk": "deg", "gs": "knot", "vs": "fpm",
	"vx": "knot", "vy": "knot",
	"time": "s",
}

// ReadFile parses the sequence file.
func ReadFile(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cols []column
	r := &Reader{}
	curTime := gomath.Inf(-1)
	sc := bufio.NewScanner(f)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.ReplaceAll(line, ",", " ")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if cols == nil {
			for _, fname := range fields {
				name := fname
				unit := ""
				if i := strings.Index(fname, "["); i >= 0 {
					name = fname[:i]
					unit = strings.Trim(fname[i:], "[]")
				}
				cols = append(cols, column{name: canonicalName(name), unit: unit})
			}
			continue
		}
		if strings.HasPrefix(fields[0], "[") {
			// units row
			for i, u := range fields {
				if i < len(cols) {
					cols[i].unit = strings.Trim(u, "[]")
				}
			}
			continue
		}
		rec, t, err := parseRow(cols, fields)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filename, lineno, err)
		}
		if len(r.Steps) == 0 || t != curTime {
			r.Steps = append(r.Steps, Timestep{Time: t})
			curTime = t
		}
		last := &r.Steps[len(r.Steps)-1]
		last.Aircraft = append(last.Aircraft, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if cols == nil {
		return nil, fmt.Errorf("%s: no header line", filename)
	}
	return r, nil
}

func parseRow(cols []column, fields []string) (Record, float64, error) {
	vals := make(map[string]float64)
	var rec Record
	t := 0.0
	for i, c := range cols {
		if i >= len(fields) {
			return rec, 0, fmt.Errorf("row has %d fields, header has %d columns", len(fields), len(cols))
		}
		if c.name == "id" || c.name == "none" {
			rec.ID = fields[i]
			continue
		}
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			if rec.ID == "" && i == 0 {
				rec.ID = fields[i]
				continue
			}
			return rec, 0, fmt.Errorf("column %q: %w", c.name, err)
		}
		unit := c.unit
		if unit == "" || unit == "none" {
			unit = defaultUnits[c.name]
		}
		internal, _ := math.FromUnit(unit, v)
		vals[c.name] = internal
	}
	if rec.ID == "" {
		rec.ID = fields[0]
	}
	if tv, ok := vals["time"]; ok {
		t = tv
	}
	if _, ok := vals["lat"]; ok {
		rec.Pos = math.PositionFromLatLonAlt(math.LatLonAlt{
			Lat: vals["lat"], Lon: vals["lon"], Alt: vals["alt"],
		})
	} else {
		rec.Pos = math.PositionFromXYZ(math.Vect3{X: vals["x"], Y: vals["y"], Z: vals["z"]})
	}
	if trk, ok := vals["trk"]; ok {
		rec.Vel = math.VelocityFromTrkGsVs(trk, vals["gs"], vals["vs"])
	} else {
		rec.Vel = math.Vect3{X: vals["vx"], Y: vals["vy"], Z: vals["vs"]}
	}
	return rec, t, nil
}
