// Package engine is the gameplay state machine: reveals, cascades, flags,
// zone unlocks and reachability, plus the tick driver that serializes them.
package engine

import (
	"log/slog"

	"github.com/talgya/hexsweep/internal/world"
	"github.com/talgya/hexsweep/internal/zone"
)

// Game owns the cell store, the zone ledger and the world counters.
// It is not safe for concurrent use; Engine serializes access.
type Game struct {
	rules  Rules
	gen    *world.Generator
	cells  *world.Map
	zones  *zone.Ledger
	state  State
	camera Camera

	queue  cascadeQueue
	events []Event
	tick   uint64
}

// NewGame creates a fresh world for seed.
func NewGame(rules Rules, seed float64) *Game {
	g := &Game{rules: rules}
	g.reset(seed)
	return g
}

// Reset discards all progress and starts a new world with seed.
func (g *Game) Reset(seed float64) {
	g.reset(seed)
	slog.Info("world reset", "seed", seed, "tokens", g.state.Tokens)
}

func (g *Game) reset(seed float64) {
	g.rules.Gen.Seed = seed
	g.gen = world.NewGenerator(g.rules.Gen)
	g.cells = world.NewMap(g.gen)
	g.zones = zone.NewLedger(g.rules.Zones, seed, g.rules.MinUnlockCost)
	g.state = State{Tokens: g.rules.StartingTokens, Seed: seed}
	g.camera = Camera{}
	g.queue.reset()
	g.events = nil
}

// Generator exposes world truth for read-only consumers.
func (g *Game) Generator() *world.Generator {
	return g.gen
}

// Stats returns a copy of the world counters.
func (g *Game) Stats() Stats {
	return Stats{
		Tokens:    g.state.Tokens,
		Score:     g.state.Score,
		FlagCount: g.state.FlagCount,
		Seed:      g.state.Seed,
	}
}

// TotalRevealed returns the number of revealed safe cells.
func (g *Game) TotalRevealed() int {
	return g.state.TotalRevealed
}

// Camera returns the stored renderer view.
func (g *Game) Camera() Camera {
	return g.camera
}

// SetCamera stores the renderer view for the next save.
func (g *Game) SetCamera(c Camera) {
	g.camera = c
}

// Reveal is the player's reveal input. Unreachable cells are rejected.
func (g *Game) Reveal(c world.HexCoord) bool {
	if !g.IsReachable(c) {
		return false
	}
	return g.reveal(c)
}

// reveal opens one cell. A mine locks its zone; a safe zero-count cell
// queues its neighbors for the cascade.
func (g *Game) reveal(c world.HexCoord) bool {
	if g.zones.IsCellLocked(c) {
		return false
	}
	cell := g.cells.Get(c)
	if cell.Revealed || cell.Flagged {
		return false
	}

	cell.Revealed = true
	if g.gen.IsMine(c) {
		cell.IsMine = true
		z := g.zones.ZoneOf(c)
		// The whole zone locks no matter how far out the mine sits.
		if g.zones.Lock(z) {
			g.emit(EventZoneLocked, g.zones.Center(z), g.zones.Get(z).UnlockCost)
		}
		g.emit(EventMineHit, c, 0)
		slog.Debug("mine revealed", "coord", c.Key(), "zone", z.Key())
		return true
	}

	g.state.TotalRevealed++
	cell.Count = g.gen.CountAdjacentMines(c)
	g.state.Score += g.rules.RevealScore

	if cell.HasToken {
		cell.HasToken = false
		g.state.Tokens++
		g.emit(EventTokenCollected, c, g.state.Tokens)
	}

	if cell.Count == 0 {
		for _, n := range c.Neighbors() {
			g.queue.push(n)
		}
	}
	return true
}

// ToggleFlag is the player's flag input. It flips the flag on a hidden,
// reachable cell whose zone is not locked.
func (g *Game) ToggleFlag(c world.HexCoord) bool {
	if !g.IsReachable(c) {
		return false
	}
	if g.zones.IsLocked(g.zones.ZoneOf(c)) {
		return false
	}
	cell := g.cells.Get(c)
	if cell.Revealed {
		return false
	}
	cell.Flagged = !cell.Flagged
	if cell.Flagged {
		g.state.FlagCount++
	} else {
		g.state.FlagCount--
	}
	return true
}

// UnlockZone buys back zone z. On success every wrong flag in the zone is
// cleared and the cell under it revealed.
func (g *Game) UnlockZone(z world.HexCoord) bool {
	cost := g.zones.Get(z).UnlockCost
	if !g.zones.Unlock(z, purse{st: &g.state}) {
		return false
	}
	g.emit(EventZoneUnlocked, g.zones.Center(z), cost)
	corrected := g.correctZone(z)
	slog.Info("zone unlocked", "zone", z.Key(), "cost", cost, "corrected", corrected, "tokens", g.state.Tokens)
	return true
}

// correctZone exposes wrong flags inside z. Correct flags on mines stay.
func (g *Game) correctZone(z world.HexCoord) int {
	corrected := 0
	g.zones.Members(z, func(c world.HexCoord) {
		cell := g.cells.Lookup(c)
		if cell == nil || !cell.Flagged || g.gen.IsMine(c) {
			return
		}
		cell.Flagged = false
		cell.Revealed = true
		cell.Count = g.gen.CountAdjacentMines(c)
		g.state.FlagCount--
		g.state.TotalRevealed++
		corrected++
		g.emit(EventFlagCorrected, c, cell.Count)
	})
	return corrected
}

// CellView is what a renderer sees for one cell.
type CellView struct {
	Coord    world.HexCoord `json:"coord"`
	Revealed bool           `json:"revealed"`
	Flagged  bool           `json:"flagged"`
	IsMine   bool           `json:"is_mine"` // Only once revealed
	HasToken bool           `json:"has_token"`
	Count    int            `json:"count"` // Only once revealed and safe
	Locked   bool           `json:"locked"`
	Relief   float64        `json:"relief"`
}

// QueryCell returns the materialized or default view of c without
// materializing it.
func (g *Game) QueryCell(c world.HexCoord) CellView {
	cell := g.cells.Peek(c)
	v := CellView{
		Coord:    c,
		Revealed: cell.Revealed,
		Flagged:  cell.Flagged,
		HasToken: cell.HasToken,
		Locked:   g.zones.IsCellLocked(c),
		Relief:   g.gen.Relief(c),
	}
	if cell.Revealed {
		v.IsMine = cell.IsMine
		if !cell.IsMine {
			v.Count = cell.Count
		}
	}
	return v
}

// ZoneView is what a renderer sees for one zone.
type ZoneView struct {
	ID         world.HexCoord `json:"id"`
	Center     world.HexCoord `json:"center"`
	Locked     bool           `json:"locked"`
	UnlockCost int            `json:"unlock_cost"`
}

// QueryZone returns the state of zone z, creating it on first reference.
func (g *Game) QueryZone(z world.HexCoord) ZoneView {
	zn := g.zones.Get(z)
	return ZoneView{
		ID:         z,
		Center:     g.zones.Center(z),
		Locked:     zn.Locked,
		UnlockCost: zn.UnlockCost,
	}
}

// ZoneOf returns the zone containing c.
func (g *Game) ZoneOf(c world.HexCoord) world.HexCoord {
	return g.zones.ZoneOf(c)
}

// IsLockedForInteraction reports whether a lock currently blocks c.
func (g *Game) IsLockedForInteraction(c world.HexCoord) bool {
	return g.zones.IsCellLocked(c)
}

// LockedZones lists every locked zone, for drawing unlock prompts.
func (g *Game) LockedZones() []ZoneView {
	ids := g.zones.Locked()
	out := make([]ZoneView, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.QueryZone(id))
	}
	return out
}
