package engine

import "github.com/talgya/hexsweep/internal/world"

// IsReachable reports whether input on c is accepted. Before the first safe
// reveal only the start neighborhood is reachable; afterwards a cell is
// reachable when a revealed cell lies within two steps through its
// neighbors.
func (g *Game) IsReachable(c world.HexCoord) bool {
	if g.state.TotalRevealed == 0 {
		return world.WithinSafeStart(c, g.rules.Gen.SafeRadius)
	}
	for _, n := range c.Neighbors() {
		if g.cells.IsRevealed(n) {
			return true
		}
		for _, nn := range n.Neighbors() {
			if g.cells.IsRevealed(nn) {
				return true
			}
		}
	}
	return false
}
