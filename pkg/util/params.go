// pkg/util/params.go

package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iancoleman/orderedmap"

	"wellclear/pkg/math"
)

// Params is an ordered key -> value table used for parameter round trips:
// detector tables, the façade parameter block, and the key = value
// configuration file format all read and write through it. Insertion
// order is preserved so a write -> parse -> write cycle is byte-identical.
type Params struct {
	m *orderedmap.OrderedMap
}

type paramValue struct {
	val  float64 // internal units
	unit string  // display unit
	b    bool
	s    string
	kind byte // 'v', 'b', 's'
}

func NewParams() *Params {
	return &Params{m: orderedmap.New()}
}

// SetInternal stores a numeric value already in internal units, with the
// display unit used when the table is rendered.
func (p *Params) SetInternal(key string, val float64, unit string) {
	p.m.Set(key, paramValue{val: val, unit: unit, kind: 'v'})
}

func (p *Params) SetBool(key string, b bool) {
	p.m.Set(key, paramValue{b: b, kind: 'b'})
}

func (p *Params) SetString(key, s string) {
	p.m.Set(key, paramValue{s: s, kind: 's'})
}

func (p *Params) Contains(key string) bool {
	_, ok := p.m.Get(key)
	return ok
}

func (p *Params) Keys() []string {
	return p.m.Keys()
}

// Value returns the numeric value for key in internal units.
func (p *Params) Value(key string) float64 {
	if v, ok := p.m.Get(key); ok {
		return v.(paramValue).val
	}
	return 0
}

func (p *Params) Bool(key string) bool {
	if v, ok := p.m.Get(key); ok {
		return v.(paramValue).b
	}
	return false
}

func (p *Params) String(key string) string {
	if v, ok := p.m.Get(key); ok {
		return v.(paramValue).s
	}
	return ""
}

func (p *Params) Unit(key string) string {
	if v, ok := p.m.Get(key); ok {
		return v.(paramValue).unit
	}
	return "unspecified"
}

// ParseLine parses one "key = value [unit]" line into the table. Booleans
// are "true"/"false"; an untagged numeric value is interpreted in internal
// units. Comments start with '#'. Returns the key ("" for blank/comment
// lines) and whether the line parsed.
func (p *Params) ParseLine(line string) (string, bool) {
	if idx := strings.Index(line, "#"); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", true
	}
	key, rest, found := strings.Cut(line, "=")
	if !found {
		return "", false
	}
	key = strings.TrimSpace(key)
	rest = strings.TrimSpace(rest)
	// Strip a trailing sentence after the value, e.g. ". If set to 0, ..."
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return key, false
	}
	switch fields[0] {
	case "true":
		p.SetBool(key, true)
		return key, true
	case "false":
		p.SetBool(key, false)
		return key, true
	}
	num, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "."), 64)
	if err != nil {
		p.SetString(key, rest)
		return key, true
	}
	unit := "unspecified"
	if len(fields) > 1 && strings.HasPrefix(fields[1], "[") {
		unit = strings.Trim(fields[1], "[].")
	}
	internal, known := math.FromUnit(unit, num)
	if !known {
		return key, false
	}
	p.SetInternal(key, internal, unit)
	return key, true
}

// FormatEntry renders one key in canonical "key = value [unit]" form.
func (p *Params) FormatEntry(key string) string {
	v, ok := p.m.Get(key)
	if !ok {
		return ""
	}
	pv := v.(paramValue)
	switch pv.kind {
	case 'b':
		return fmt.Sprintf("%s = %t", key, pv.b)
	case 's':
		return fmt.Sprintf("%s = %s", key, pv.s)
	default:
		return fmt.Sprintf("%s = %s", key, math.FormatUnit(pv.val, pv.unit))
	}
}
