package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexsweep/internal/engine"
	"github.com/talgya/hexsweep/internal/persistence/snapshot"
	"github.com/talgya/hexsweep/internal/world"
)

const helpText = `commands:
  reveal Q R     reveal a cell
  flag Q R       toggle a flag
  unlock ZQ ZR   pay to unlock a zone
  cell Q R       show a cell
  zone ZQ ZR     show a zone
  zoneof Q R     show the zone containing a cell
  zones          list locked zones
  status         show counters
  save           write the database save now
  export [PATH]  write a snapshot file
  reset          start a new world
  quit           save and exit`

// shell turns input lines into game calls. It runs on the engine goroutine.
type shell struct {
	out        io.Writer
	snapshotTo string
	newSeed    func() float64
	onReset    func()
	save       func(g *engine.Game) error
}

// execute runs one command line and reports whether the player quit.
func (sh *shell) execute(g *engine.Game, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "reveal", "r":
		if c, ok := sh.coord(args); ok {
			// The engine ticks the cascade; later events show on the next report.
			sh.report(g, g.Reveal(c))
		}
	case "flag", "f":
		if c, ok := sh.coord(args); ok {
			sh.report(g, g.ToggleFlag(c))
		}
	case "unlock", "u":
		if z, ok := sh.coord(args); ok {
			sh.report(g, g.UnlockZone(z))
		}
	case "cell":
		if c, ok := sh.coord(args); ok {
			sh.printCell(g.QueryCell(c), g.IsReachable(c))
		}
	case "zone":
		if z, ok := sh.coord(args); ok {
			sh.printZone(g.QueryZone(z))
		}
	case "zoneof":
		if c, ok := sh.coord(args); ok {
			sh.printZone(g.QueryZone(g.ZoneOf(c)))
		}
	case "zones":
		locked := g.LockedZones()
		if len(locked) == 0 {
			fmt.Fprintln(sh.out, "no locked zones")
		}
		for _, z := range locked {
			sh.printZone(z)
		}
	case "status":
		sh.printStats(g)
	case "save":
		if err := sh.save(g); err != nil {
			fmt.Fprintln(sh.out, "save failed:", err)
			return false
		}
		fmt.Fprintln(sh.out, "saved")
	case "export":
		path := sh.snapshotTo
		if len(args) > 0 {
			path = args[0]
		}
		if err := snapshot.Write(path, g.Export()); err != nil {
			fmt.Fprintln(sh.out, "export failed:", err)
			return false
		}
		fmt.Fprintln(sh.out, "exported to", path)
	case "reset":
		g.Reset(sh.newSeed())
		if sh.onReset != nil {
			sh.onReset()
		}
		sh.printStats(g)
	case "help", "?":
		fmt.Fprintln(sh.out, helpText)
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(sh.out, "unknown command %q (try help)\n", cmd)
	}
	return false
}

func (sh *shell) coord(args []string) (world.HexCoord, bool) {
	if len(args) != 2 {
		fmt.Fprintln(sh.out, "want two integers")
		return world.HexCoord{}, false
	}
	q, err1 := strconv.Atoi(args[0])
	r, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Fprintln(sh.out, "want two integers")
		return world.HexCoord{}, false
	}
	return world.HexCoord{Q: q, R: r}, true
}

// report prints the outcome of a move and the events it produced.
func (sh *shell) report(g *engine.Game, ok bool) {
	if !ok {
		fmt.Fprintln(sh.out, "nothing happened")
		return
	}
	for _, ev := range g.DrainEvents() {
		switch ev.Kind {
		case engine.EventMineHit:
			fmt.Fprintf(sh.out, "BOOM at %s\n", ev.Coord)
		case engine.EventZoneLocked:
			fmt.Fprintf(sh.out, "zone %s locked, unlock costs %d\n", ev.Zone, ev.Value)
		case engine.EventTokenCollected:
			fmt.Fprintf(sh.out, "token at %s, now %d\n", ev.Coord, ev.Value)
		case engine.EventZoneUnlocked:
			fmt.Fprintf(sh.out, "zone %s unlocked for %d\n", ev.Zone, ev.Value)
		case engine.EventFlagCorrected:
			fmt.Fprintf(sh.out, "wrong flag at %s exposed\n", ev.Coord)
		case engine.EventCascadeDone:
			if ev.Value > 0 {
				fmt.Fprintf(sh.out, "cascade opened %d cells\n", ev.Value)
			}
		}
	}
	sh.printStats(g)
}

func (sh *shell) printCell(v engine.CellView, reachable bool) {
	state := "hidden"
	switch {
	case v.Revealed && v.IsMine:
		state = "mine"
	case v.Revealed:
		state = "safe " + strconv.Itoa(v.Count)
	case v.Flagged:
		state = "flagged"
	}
	fmt.Fprintf(sh.out, "cell %s: %s token=%t locked=%t reachable=%t\n",
		v.Coord, state, v.HasToken, v.Locked, reachable)
}

func (sh *shell) printZone(z engine.ZoneView) {
	fmt.Fprintf(sh.out, "zone %s center %s locked=%t cost=%d\n", z.ID, z.Center, z.Locked, z.UnlockCost)
}

func (sh *shell) printStats(g *engine.Game) {
	s := g.Stats()
	fmt.Fprintf(sh.out, "tokens %s  score %s  flags %d  revealed %s\n",
		humanize.Comma(int64(s.Tokens)), humanize.Comma(int64(s.Score)),
		s.FlagCount, humanize.Comma(int64(g.TotalRevealed())))
}
