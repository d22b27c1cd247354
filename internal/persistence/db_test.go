package persistence

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/talgya/hexsweep/internal/engine"
	"github.com/talgya/hexsweep/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "save.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func playedState(t *testing.T) engine.SaveState {
	t.Helper()
	g := engine.NewGame(engine.DefaultRules(), 0.4242)
	if !g.Reveal(world.HexCoord{}) {
		t.Fatalf("reveal origin failed")
	}
	g.Settle()
	g.SetCamera(engine.Camera{X: 1, Y: 2, Zoom: 3})
	st := g.Export()
	st.LockedZones = append(st.LockedZones, "-2,5")
	return st
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	if db.HasWorldState() {
		t.Fatalf("fresh database claims a save")
	}

	st := playedState(t)
	if err := db.SaveWorldState(st); err != nil {
		t.Fatalf("SaveWorldState: %v", err)
	}
	if !db.HasWorldState() {
		t.Fatalf("save not detected")
	}

	got, err := db.LoadWorldState()
	if err != nil {
		t.Fatalf("LoadWorldState: %v", err)
	}
	if !reflect.DeepEqual(got, st) {
		t.Fatalf("loaded state differs:\n got %+v\nwant %+v", got, st)
	}

	g, err := engine.Restore(engine.DefaultRules(), got)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if g.Stats().Tokens != st.Tokens || g.Stats().Seed != st.Seed {
		t.Fatalf("restored stats %+v", g.Stats())
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveWorldState(playedState(t)); err != nil {
		t.Fatalf("first save: %v", err)
	}
	fresh := engine.NewGame(engine.DefaultRules(), 0.9).Export()
	if err := db.SaveWorldState(fresh); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := db.LoadWorldState()
	if err != nil {
		t.Fatalf("LoadWorldState: %v", err)
	}
	if len(got.Cells) != 0 || len(got.LockedZones) != 0 || got.Seed != 0.9 {
		t.Fatalf("old save leaked: %+v", got)
	}
}

func TestSessionID(t *testing.T) {
	db := openTestDB(t)
	first, err := db.SessionID()
	if err != nil || first == "" {
		t.Fatalf("SessionID = %q, %v", first, err)
	}
	again, err := db.SessionID()
	if err != nil || again != first {
		t.Fatalf("SessionID changed: %q -> %q (%v)", first, again, err)
	}
	next, err := db.NewSession()
	if err != nil || next == first {
		t.Fatalf("NewSession = %q, %v", next, err)
	}
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetMeta("missing"); err == nil {
		t.Fatalf("GetMeta on missing key succeeded")
	}
	if err := db.SaveMeta("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveMeta("k", "v2"); err != nil {
		t.Fatal(err)
	}
	if v, err := db.GetMeta("k"); err != nil || v != "v2" {
		t.Fatalf("GetMeta = %q, %v", v, err)
	}
}
