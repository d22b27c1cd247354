package world

import "math"

// Salt separates independent hash streams for the same coordinate.
type Salt float64

const (
	SaltMine  Salt = 1
	SaltToken Salt = 2
	SaltCost  Salt = 99
)

// Hash maps (q, r, salt, seed) to a reproducible value in [0, 1).
// Sine mixing followed by fractional extraction; total over all integers.
func Hash(q, r int, salt Salt, seed float64) float64 {
	h := math.Sin(float64(q)*12.9898+float64(r)*78.233+float64(salt)+seed) * 43758.5453123
	f := h - math.Floor(h)
	if f >= 1 {
		// A tiny negative h rounds up to exactly 1.
		return 0
	}
	return f
}

// HashCoord is Hash for a HexCoord.
func HashCoord(c HexCoord, salt Salt, seed float64) float64 {
	return Hash(c.Q, c.R, salt, seed)
}
