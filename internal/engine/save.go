package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/talgya/hexsweep/internal/world"
)

// SaveState is the logical shape of a persisted game. Only cells that differ
// from their default state are listed.
type SaveState struct {
	Tokens      int         `json:"tokens"`
	Score       int         `json:"score"`
	FlagCount   int         `json:"flagCount"`
	Seed        float64     `json:"seed"`
	Camera      Camera      `json:"camera"`
	Cells       []SavedCell `json:"cells"`
	LockedZones []string    `json:"lockedZones"`
}

// SavedCell is one sparse cell entry, encoded as [coordKey, {flags}].
type SavedCell struct {
	Key      string
	Revealed bool
	Flagged  bool
	IsMine   bool
	HasToken *bool // nil means take it from world truth
}

type savedCellFlags struct {
	Revealed bool  `json:"revealed,omitempty"`
	Flagged  bool  `json:"flagged,omitempty"`
	HasToken *bool `json:"hasToken,omitempty"`
	IsMine   bool  `json:"isMine,omitempty"`
}

func (c SavedCell) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.Key, savedCellFlags{
		Revealed: c.Revealed,
		Flagged:  c.Flagged,
		HasToken: c.HasToken,
		IsMine:   c.IsMine,
	}})
}

func (c *SavedCell) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("saved cell: want [key, flags], got %d elements", len(pair))
	}
	var flags savedCellFlags
	if err := json.Unmarshal(pair[0], &c.Key); err != nil {
		return fmt.Errorf("saved cell key: %w", err)
	}
	if err := json.Unmarshal(pair[1], &flags); err != nil {
		return fmt.Errorf("saved cell %s: %w", c.Key, err)
	}
	c.Revealed = flags.Revealed
	c.Flagged = flags.Flagged
	c.HasToken = flags.HasToken
	c.IsMine = flags.IsMine
	return nil
}

// Export captures the game for persistence. Cells are sorted by coordinate.
func (g *Game) Export() SaveState {
	st := SaveState{
		Tokens:      g.state.Tokens,
		Score:       g.state.Score,
		FlagCount:   g.state.FlagCount,
		Seed:        g.state.Seed,
		Camera:      g.camera,
		Cells:       []SavedCell{},
		LockedZones: []string{},
	}

	var coords []world.HexCoord
	g.cells.Each(func(c world.HexCoord, cell *world.Cell) {
		if !g.cells.IsDefault(c, cell) {
			coords = append(coords, c)
		}
	})
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Q != coords[j].Q {
			return coords[i].Q < coords[j].Q
		}
		return coords[i].R < coords[j].R
	})
	for _, c := range coords {
		cell := g.cells.Lookup(c)
		hasToken := cell.HasToken
		st.Cells = append(st.Cells, SavedCell{
			Key:      c.Key(),
			Revealed: cell.Revealed,
			Flagged:  cell.Flagged,
			IsMine:   cell.Revealed && cell.IsMine,
			HasToken: &hasToken,
		})
	}

	for _, z := range g.zones.Locked() {
		st.LockedZones = append(st.LockedZones, z.Key())
	}
	return st
}

// ErrBadSave reports a save that cannot be restored.
var ErrBadSave = errors.New("bad save")

// Restore rebuilds a game from a save. Mine status and counts come from
// world truth, and the flag and reveal totals are recounted from the cells.
func Restore(rules Rules, st SaveState) (*Game, error) {
	if math.IsNaN(st.Seed) || math.IsInf(st.Seed, 0) {
		return nil, fmt.Errorf("%w: seed %v", ErrBadSave, st.Seed)
	}

	g := NewGame(rules, st.Seed)
	g.state.Tokens = max(st.Tokens, 0)
	g.state.Score = max(st.Score, 0)
	g.camera = st.Camera

	for _, sc := range st.Cells {
		c, err := world.ParseKey(sc.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadSave, err)
		}
		cell := world.Cell{
			Revealed: sc.Revealed,
			Flagged:  sc.Flagged && !sc.Revealed,
			HasToken: g.gen.HasToken(c),
		}
		if sc.HasToken != nil {
			// A save can spend a token but never mint one.
			cell.HasToken = *sc.HasToken && cell.HasToken
		}
		if cell.Revealed {
			// Revealing collects the token.
			cell.HasToken = false
			cell.IsMine = g.gen.IsMine(c)
			if !cell.IsMine {
				cell.Count = g.gen.CountAdjacentMines(c)
			}
		}
		g.cells.Set(c, cell)
	}

	// Count what the store kept; a repeated key replaces the earlier entry.
	g.cells.Each(func(_ world.HexCoord, cell *world.Cell) {
		if cell.Revealed && !cell.IsMine {
			g.state.TotalRevealed++
		}
		if cell.Flagged {
			g.state.FlagCount++
		}
	})

	for _, key := range st.LockedZones {
		z, err := world.ParseKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: locked zone: %w", ErrBadSave, err)
		}
		g.zones.Lock(z)
	}

	if g.state.FlagCount != st.FlagCount {
		slog.Warn("saved flag count disagrees with cells", "saved", st.FlagCount, "counted", g.state.FlagCount)
	}
	slog.Info("world restored",
		"seed", st.Seed,
		"cells", g.cells.CellCount(),
		"revealed", g.state.TotalRevealed,
		"locked_zones", len(st.LockedZones),
	)
	return g, nil
}
