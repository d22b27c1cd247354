package engine

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/talgya/hexsweep/internal/world"
)

// playedGame returns a game with a cascade, a flag and a locked zone.
func playedGame(t *testing.T) *Game {
	t.Helper()
	g := newTestGame(0.4242)
	openOrigin(t, g)
	mine := frontierMine(t, g)
	for _, c := range world.Within(mine, 1) {
		if c != mine && !g.cells.IsRevealed(c) && g.IsReachable(c) {
			g.ToggleFlag(c)
			break
		}
	}
	g.Reveal(mine)
	g.SetCamera(Camera{X: 12.5, Y: -3, Zoom: 1.5})
	return g
}

func TestExportRestoreRoundTrip(t *testing.T) {
	g := playedGame(t)
	st := g.Export()

	restored, err := Restore(DefaultRules(), st)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Stats() != g.Stats() {
		t.Fatalf("stats %+v, want %+v", restored.Stats(), g.Stats())
	}
	if restored.TotalRevealed() != g.TotalRevealed() {
		t.Fatalf("revealed %d, want %d", restored.TotalRevealed(), g.TotalRevealed())
	}
	if restored.Camera() != g.Camera() {
		t.Fatalf("camera %+v, want %+v", restored.Camera(), g.Camera())
	}
	if !reflect.DeepEqual(restored.LockedZones(), g.LockedZones()) {
		t.Fatalf("locked zones %v, want %v", restored.LockedZones(), g.LockedZones())
	}
	g.cells.Each(func(c world.HexCoord, _ *world.Cell) {
		if got, want := restored.QueryCell(c), g.QueryCell(c); got != want {
			t.Fatalf("cell %v = %+v, want %+v", c, got, want)
		}
	})
	if !reflect.DeepEqual(restored.Export(), st) {
		t.Fatalf("re-export differs")
	}
}

func TestSaveStateJSONShape(t *testing.T) {
	g := playedGame(t)
	st := g.Export()
	b, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"tokens", "score", "flagCount", "seed", "camera", "cells", "lockedZones"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("missing %q in %s", key, b)
		}
	}
	cells := raw["cells"].([]any)
	first := cells[0].([]any)
	if _, ok := first[0].(string); !ok || len(first) != 2 {
		t.Fatalf("cell entry %v is not [key, flags]", first)
	}

	var back SaveState
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal SaveState: %v", err)
	}
	if !reflect.DeepEqual(back, st) {
		t.Fatalf("JSON round trip differs")
	}
}

func TestRestoreRecomputesDerivedState(t *testing.T) {
	rules := DefaultRules()
	gen := world.NewGenerator(world.GenConfig{
		Seed:             0.5,
		MineProbability:  rules.Gen.MineProbability,
		TokenProbability: rules.Gen.TokenProbability,
		SafeRadius:       rules.Gen.SafeRadius,
	})

	var safe, mine, tokenless world.HexCoord
	var haveSafe, haveMine, haveTokenless bool
	for _, c := range world.Within(world.HexCoord{Q: 10, R: 10}, 6) {
		switch {
		case !haveMine && gen.IsMine(c):
			mine, haveMine = c, true
		case !haveSafe && !gen.IsMine(c) && gen.CountAdjacentMines(c) > 0:
			safe, haveSafe = c, true
		case !haveTokenless && !gen.HasToken(c) && c != safe:
			tokenless, haveTokenless = c, true
		}
	}
	if !haveSafe || !haveMine || !haveTokenless {
		t.Fatalf("could not find test cells")
	}

	yes := true
	st := SaveState{
		Tokens:    7,
		Score:     20,
		FlagCount: 99, // wrong on purpose
		Seed:      0.5,
		Cells: []SavedCell{
			{Key: safe.Key(), Revealed: true, Flagged: true, IsMine: true},
			{Key: mine.Key(), Revealed: true},
			{Key: tokenless.Key(), Flagged: true, HasToken: &yes},
		},
		LockedZones: []string{"1,-1"},
	}
	g, err := Restore(rules, st)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	sv := g.QueryCell(safe)
	if !sv.Revealed || sv.Flagged || sv.IsMine || sv.Count != gen.CountAdjacentMines(safe) {
		t.Fatalf("safe cell restored as %+v", sv)
	}
	if mv := g.QueryCell(mine); !mv.Revealed || !mv.IsMine {
		t.Fatalf("mine cell restored as %+v", mv)
	}
	if tv := g.QueryCell(tokenless); tv.HasToken {
		t.Fatalf("save minted a token at %v", tokenless)
	}
	if g.TotalRevealed() != 1 {
		t.Fatalf("TotalRevealed = %d, want 1", g.TotalRevealed())
	}
	if got := g.Stats(); got.FlagCount != 1 || got.Tokens != 7 || got.Score != 20 {
		t.Fatalf("stats = %+v", got)
	}
	if !g.QueryZone(world.HexCoord{Q: 1, R: -1}).Locked {
		t.Fatalf("locked zone not restored")
	}
}

func TestRestoreRejectsCorruptSaves(t *testing.T) {
	tests := []struct {
		name string
		st   SaveState
	}{
		{"nan seed", SaveState{Seed: math.NaN()}},
		{"bad cell key", SaveState{Seed: 0.1, Cells: []SavedCell{{Key: "x,1", Revealed: true}}}},
		{"bad zone key", SaveState{Seed: 0.1, LockedZones: []string{"12"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Restore(DefaultRules(), tt.st); !errors.Is(err, ErrBadSave) {
				t.Fatalf("Restore error = %v, want ErrBadSave", err)
			}
		})
	}
}

func TestSavedCellRejectsMalformedJSON(t *testing.T) {
	for _, raw := range []string{`{}`, `["1,2"]`, `[1, {}]`, `["1,2", 3]`} {
		var c SavedCell
		if err := json.Unmarshal([]byte(raw), &c); err == nil {
			t.Errorf("unmarshal %s succeeded", raw)
		}
	}
}

func TestRestoreCountsRepeatedKeysOnce(t *testing.T) {
	st := SaveState{
		Tokens: 10,
		Seed:   0.5,
		Cells: []SavedCell{
			{Key: "0,0", Revealed: true},
			{Key: "0,0", Revealed: true},
			{Key: "0, 0", Revealed: true},
			{Key: "1,0", Flagged: true},
			{Key: "1,0", Flagged: true},
		},
		LockedZones: []string{},
	}
	g, err := Restore(DefaultRules(), st)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	revealed, flagged := 0, 0
	g.cells.Each(func(_ world.HexCoord, cell *world.Cell) {
		if cell.Revealed && !cell.IsMine {
			revealed++
		}
		if cell.Flagged {
			flagged++
		}
	})
	if revealed != 1 || flagged != 1 {
		t.Fatalf("store holds %d revealed, %d flagged; want 1 and 1", revealed, flagged)
	}
	if g.TotalRevealed() != revealed || g.Stats().FlagCount != flagged {
		t.Fatalf("TotalRevealed=%d FlagCount=%d, store has %d and %d",
			g.TotalRevealed(), g.Stats().FlagCount, revealed, flagged)
	}
}

func TestRestoreRevealedCellHoldsNoToken(t *testing.T) {
	gen := world.NewGenerator(world.GenConfig{
		Seed:             0.5,
		MineProbability:  DefaultRules().Gen.MineProbability,
		TokenProbability: DefaultRules().Gen.TokenProbability,
		SafeRadius:       DefaultRules().Gen.SafeRadius,
	})
	var token world.HexCoord
	found := false
	for _, c := range world.Within(world.HexCoord{Q: 10, R: -4}, 10) {
		if gen.HasToken(c) {
			token, found = c, true
			break
		}
	}
	if !found {
		t.Fatalf("no token cell found")
	}

	yes := true
	st := SaveState{
		Seed: 0.5,
		Cells: []SavedCell{
			{Key: token.Key(), Revealed: true},
		},
	}
	for _, hasToken := range []*bool{nil, &yes} {
		st.Cells[0].HasToken = hasToken
		g, err := Restore(DefaultRules(), st)
		if err != nil {
			t.Fatalf("Restore: %v", err)
		}
		if v := g.QueryCell(token); !v.Revealed || v.HasToken {
			t.Fatalf("revealed cell restored as %+v", v)
		}
	}
}
