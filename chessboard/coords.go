package chessboard

import "fmt"

// CoordinateConvention decides how algebraic labels map onto the grid.
type CoordinateConvention int

const (
	// LegacyCoordinates pairs the file letter with the row index and the
	// rank number with the column index, so "a8" is (0,7) and "h1" is
	// (7,0). It does not match chess notation but is kept as the default
	// for compatibility with existing callers of Lookup.
	LegacyCoordinates CoordinateConvention = iota
	// StandardCoordinates lets the file select the column and the rank
	// select the row counted from the bottom, so "a8" is (0,0) and "e1"
	// is (7,4).
	StandardCoordinates
)

const (
	files = "abcdefgh"
	ranks = "12345678"
)

func (c CoordinateConvention) String() string {
	switch c {
	case LegacyCoordinates:
		return "legacy"
	case StandardCoordinates:
		return "standard"
	}
	return fmt.Sprintf("CoordinateConvention(%d)", int(c))
}

// ParseCoordinateConvention accepts the names returned by String.
func ParseCoordinateConvention(s string) (CoordinateConvention, error) {
	switch s {
	case "legacy":
		return LegacyCoordinates, nil
	case "standard":
		return StandardCoordinates, nil
	}
	return 0, fmt.Errorf("unknown coordinate convention %q", s)
}

func (c CoordinateConvention) build() map[string]Position {
	m := make(map[string]Position, Size*Size)
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			label := string([]byte{files[i], ranks[j]})
			if c == StandardCoordinates {
				m[label] = Position{Row: Size - 1 - j, Col: i}
			} else {
				m[label] = Position{Row: i, Col: j}
			}
		}
	}
	return m
}

// Label returns the algebraic label that maps to p under c, or "" when p
// is off the grid.
func (c CoordinateConvention) Label(p Position) string {
	if !p.valid() {
		return ""
	}
	if c == StandardCoordinates {
		return string([]byte{files[p.Col], ranks[Size-1-p.Row]})
	}
	return string([]byte{files[p.Row], ranks[p.Col]})
}
