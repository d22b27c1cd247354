// Package zone partitions the cell plane into coarse hexagonal zones and
// keeps their lock state and unlock price.
package zone

import "github.com/talgya/hexsweep/internal/world"

// Partition maps cells to zones on a lattice K cells apart. Rounding
// (q/K, r/K) with the same hex rounding used for cells yields hexagonal
// Voronoi regions rather than rhombi.
type Partition struct {
	Spacing    int // K
	LockRadius int // Protected radius around a zone center
}

// DefaultPartition returns the standard zone geometry.
func DefaultPartition() Partition {
	return Partition{Spacing: 6, LockRadius: 2}
}

// ZoneOf returns the identity of the zone containing c.
func (p Partition) ZoneOf(c world.HexCoord) world.HexCoord {
	k := float64(p.Spacing)
	return world.Round(float64(c.Q)/k, float64(c.R)/k)
}

// Center returns the cell-space center of zone z.
func (p Partition) Center(z world.HexCoord) world.HexCoord {
	return z.Scale(p.Spacing)
}

// InProtectedRadius reports whether c is close enough to the center of its
// own zone for a lock to apply. Cells outside form the buffer ring.
func (p Partition) InProtectedRadius(c world.HexCoord) bool {
	return world.Distance(c, p.Center(p.ZoneOf(c))) <= p.LockRadius
}

// Members calls fn for every cell whose zone is z. It scans the bounding box
// center ± (K+2), which covers the whole zone.
func (p Partition) Members(z world.HexCoord, fn func(c world.HexCoord)) {
	center := p.Center(z)
	span := p.Spacing + 2
	for r := center.R - span; r <= center.R+span; r++ {
		for q := center.Q - span; q <= center.Q+span; q++ {
			c := world.HexCoord{Q: q, R: r}
			if p.ZoneOf(c) == z {
				fn(c)
			}
		}
	}
}
