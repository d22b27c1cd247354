// Command hexsweep runs an infinite hexagonal minesweeper world and reads
// player input line by line from stdin.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/talgya/hexsweep/internal/config"
	"github.com/talgya/hexsweep/internal/engine"
	"github.com/talgya/hexsweep/internal/entropy"
	"github.com/talgya/hexsweep/internal/persistence"
	"github.com/talgya/hexsweep/internal/persistence/snapshot"
)

func main() {
	var (
		tuningPath = flag.String("config", "tuning.yaml", "path to tuning.yaml (missing file uses defaults)")
		dbPath     = flag.String("db", "", "sqlite save path (default from tuning)")
		seedFlag   = flag.String("seed", "", "seed for a fresh world (default random)")
		importPath = flag.String("import", "", "start from a snapshot file instead of the database")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	tun, err := config.Load(*tuningPath)
	if err != nil {
		slog.Warn("bad tuning file, using defaults", "path", *tuningPath, "error", err)
	}
	if env := os.Getenv("HEXSWEEP_DB"); env != "" {
		tun.DBPath = env
	}
	if *dbPath != "" {
		tun.DBPath = *dbPath
	}
	if *seedFlag == "" {
		*seedFlag = os.Getenv("HEXSWEEP_SEED")
	}

	seeds := entropy.NewClient(os.Getenv("RANDOM_ORG_API_KEY"))
	freshSeed := func() float64 {
		if *seedFlag != "" {
			s, err := parseSeed(*seedFlag)
			if err == nil {
				return s
			}
			slog.Warn("ignoring seed", "seed", *seedFlag, "error", err)
		}
		return seeds.Seed()
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(tun.DBPath), 0755)
	db, err := persistence.Open(tun.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", tun.DBPath)

	// ── Load or Generate World ───────────────────────────────────────
	rules := tun.Rules()
	game := loadGame(db, rules, *importPath)
	if game == nil {
		game = engine.NewGame(rules, freshSeed())
		if _, err := db.NewSession(); err != nil {
			slog.Warn("could not record session", "error", err)
		}
	}
	session, err := db.SessionID()
	if err != nil {
		slog.Warn("could not read session", "error", err)
	}
	slog.Info("world ready", "session", session, "seed", game.Stats().Seed, "revealed", game.TotalRevealed())

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine(game)
	eng.Interval = tun.TickInterval()
	eng.AutosaveEvery = tun.AutosaveEveryTicks
	eng.OnAutosave = func(g *engine.Game, tick uint64) {
		if err := db.SaveWorldState(g.Export()); err != nil {
			slog.Error("autosave failed", "tick", tick, "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stopped := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(stopped)
	}()

	// ── Input ─────────────────────────────────────────────────────────
	sh := &shell{
		out:        os.Stdout,
		snapshotTo: tun.SnapshotPath,
		newSeed:    freshSeed,
		onReset: func() {
			if _, err := db.NewSession(); err != nil {
				slog.Warn("could not record session", "error", err)
			}
		},
		save: func(g *engine.Game) error {
			return db.SaveWorldState(g.Export())
		},
	}
	fmt.Fprintln(os.Stdout, "hexsweep: type 'help' for commands")

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			var quit bool
			if err := eng.Do(ctx, func(g *engine.Game) { quit = sh.execute(g, line) }); err != nil {
				break loop
			}
			if quit {
				break loop
			}
		}
	}

	stop()
	<-stopped
	fmt.Fprintln(os.Stdout, "World saved.")
}

// parseSeed reads a world seed. Non-finite values would make every hash NaN.
func parseSeed(raw string) (float64, error) {
	s, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, fmt.Errorf("seed %q is not finite", raw)
	}
	return s, nil
}

// loadGame restores the imported snapshot or the database save. Any failure
// is logged and yields nil so the caller starts a fresh world.
func loadGame(db *persistence.DB, rules engine.Rules, importPath string) *engine.Game {
	var (
		st  engine.SaveState
		err error
	)
	switch {
	case importPath != "":
		slog.Info("importing snapshot", "path", importPath)
		st, err = snapshot.Read(importPath)
	case db.HasWorldState():
		slog.Info("found saved world state, loading...")
		st, err = db.LoadWorldState()
	default:
		slog.Info("no saved state found, generating new world...")
		return nil
	}
	if err != nil {
		slog.Warn("save unreadable, starting fresh", "error", err)
		return nil
	}
	g, err := engine.Restore(rules, st)
	if err != nil {
		slog.Warn("save rejected, starting fresh", "error", err)
		return nil
	}
	return g
}
