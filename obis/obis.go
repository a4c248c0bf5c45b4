// Package obis implements the DLMS/COSEM Object Identification System: the
// 6-octet logical name used as the instance identifier for every COSEM
// object, and the single-octet physical Unit enumeration carried alongside
// scaled register values.
package obis

import "fmt"

// Code is a 6-octet OBIS code: A-B:C.D.E*F.
type Code struct {
	A, B, C, D, E, F byte
}

// New builds a Code from its six octets.
func New(a, b, c, d, e, f byte) Code {
	return Code{A: a, B: b, C: c, D: d, E: e, F: f}
}

// Parse reads a Code from exactly 6 octets.
func Parse(b []byte) (Code, error) {
	if len(b) != 6 {
		return Code{}, fmt.Errorf("obis: need 6 octets, got %d", len(b))
	}
	return Code{b[0], b[1], b[2], b[3], b[4], b[5]}, nil
}

// Bytes renders the Code as its 6-octet wire form.
func (c Code) Bytes() []byte {
	return []byte{c.A, c.B, c.C, c.D, c.E, c.F}
}

// String renders the canonical text form A-B:C.D.E*F.
func (c Code) String() string {
	return fmt.Sprintf("%d-%d:%d.%d.%d*%d", c.A, c.B, c.C, c.D, c.E, c.F)
}

// Compare gives a total order over Code by tuple comparison (A first).
// Returns <0, 0, >0 the way bytes.Compare does.
func (c Code) Compare(o Code) int {
	for _, pair := range [][2]byte{{c.A, o.A}, {c.B, o.B}, {c.C, o.C}, {c.D, o.D}, {c.E, o.E}, {c.F, o.F}} {
		if pair[0] != pair[1] {
			if pair[0] < pair[1] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Less reports whether c sorts before o.
func (c Code) Less(o Code) bool { return c.Compare(o) < 0 }

// Equal reports octet-wise equality.
func (c Code) Equal(o Code) bool { return c == o }

// FromOctets opportunistically reinterprets a 6-octet slice as an OBIS code.
// The canonical on-the-wire form of an attribute value remains an octet
// string; this is purely a convenience for callers per the OBIS-as-octets
// vs OBIS-as-object design note.
func FromOctets(b []byte) (Code, bool) {
	if len(b) != 6 {
		return Code{}, false
	}
	c, _ := Parse(b)
	return c, true
}
