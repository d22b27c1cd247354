package engine

import (
	"github.com/talgya/hexsweep/internal/world"
	"github.com/talgya/hexsweep/internal/zone"
)

// Rules hold every tunable that shapes a game.
type Rules struct {
	Gen            world.GenConfig
	Zones          zone.Partition
	StartingTokens int // Tokens granted to a fresh world
	RevealScore    int // Score per safe reveal
	MinUnlockCost  int // Floor on zone unlock prices
	CascadeBatch   int // Cascade cells processed per tick
}

// DefaultRules returns the standard rules with seed left at zero.
func DefaultRules() Rules {
	return Rules{
		Gen:            world.DefaultGenConfig(),
		Zones:          zone.DefaultPartition(),
		StartingTokens: 10,
		RevealScore:    10,
		MinUnlockCost:  10,
		CascadeBatch:   8,
	}
}

// State is the world-wide counters owned by the game.
type State struct {
	Tokens        int     // Spendable currency
	Score         int     // Accumulated reveal score
	FlagCount     int     // Cells currently flagged
	TotalRevealed int     // Revealed safe cells
	Seed          float64 // Fixes all procedural outcomes
}

// Stats is a read-only copy of the counters exposed to collaborators.
type Stats struct {
	Tokens    int     `json:"tokens"`
	Score     int     `json:"score"`
	FlagCount int     `json:"flag_count"`
	Seed      float64 `json:"seed"`
}

// Camera is the renderer's view. The game stores and persists it untouched.
type Camera struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// purse lets the zone ledger charge unlocks against the game counters.
type purse struct {
	st *State
}

func (p purse) Tokens() int { return p.st.Tokens }
func (p purse) Spend(n int) { p.st.Tokens -= n }
