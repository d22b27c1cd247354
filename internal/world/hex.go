// Package world provides the hex coordinate geometry, the deterministic hash
// oracle, the procedural world generator and the sparse cell store.
// Uses axial coordinates (q, r) for the hex grid.
package world

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Key returns the "q,r" string form used by save files.
func (h HexCoord) Key() string {
	return strconv.Itoa(h.Q) + "," + strconv.Itoa(h.R)
}

func (h HexCoord) String() string {
	return "(" + h.Key() + ")"
}

// ParseKey is the inverse of Key.
func ParseKey(key string) (HexCoord, error) {
	qs, rs, ok := strings.Cut(key, ",")
	if !ok {
		return HexCoord{}, fmt.Errorf("coord key %q: missing separator", key)
	}
	q, err := strconv.Atoi(strings.TrimSpace(qs))
	if err != nil {
		return HexCoord{}, fmt.Errorf("coord key %q: %w", key, err)
	}
	r, err := strconv.Atoi(strings.TrimSpace(rs))
	if err != nil {
		return HexCoord{}, fmt.Errorf("coord key %q: %w", key, err)
	}
	return HexCoord{Q: q, R: r}, nil
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
// The order is fixed; flood fill and mine counting iterate it as-is.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Scale multiplies both axial components by k.
func (h HexCoord) Scale(k int) HexCoord {
	return HexCoord{Q: h.Q * k, R: h.R * k}
}

// Distance returns the hex distance between two coordinates:
// (|dq| + |dr| + |dq+dr|) / 2, exact in integer arithmetic.
func Distance(a, b HexCoord) int {
	dq := a.Q - b.Q
	dr := a.R - b.R
	return (abs(dq) + abs(dr) + abs(dq+dr)) / 2
}

// WithinSafeStart reports whether c lies in the start neighborhood around the
// origin: |q| <= radius and |r| <= radius.
func WithinSafeStart(c HexCoord, radius int) bool {
	return abs(c.Q) <= radius && abs(c.R) <= radius
}

// Round returns the integer hex nearest to fractional axial coordinates.
// The component with the largest rounding error is recomputed from the other
// two so that q+r+s == 0 holds, checking q, then r, then s.
func Round(fracQ, fracR float64) HexCoord {
	fracS := -fracQ - fracR
	q := roundHalfUp(fracQ)
	r := roundHalfUp(fracR)
	s := roundHalfUp(fracS)

	qDiff := math.Abs(q - fracQ)
	rDiff := math.Abs(r - fracR)
	sDiff := math.Abs(s - fracS)

	if qDiff > rDiff && qDiff > sDiff {
		q = -r - s
	} else if rDiff > sDiff {
		r = -q - s
	}
	return HexCoord{Q: int(q), R: int(r)}
}

// roundHalfUp rounds .5 toward positive infinity so ties resolve the same
// way on both sides of the origin.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// Within returns every coordinate within hex distance radius of center.
func Within(center HexCoord, radius int) []HexCoord {
	out := make([]HexCoord, 0, 1+3*radius*(radius+1))
	for dq := -radius; dq <= radius; dq++ {
		lo := max(-radius, -dq-radius)
		hi := min(radius, -dq+radius)
		for dr := lo; dr <= hi; dr++ {
			out = append(out, HexCoord{Q: center.Q + dq, R: center.R + dr})
		}
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
