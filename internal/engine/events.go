package engine

import "github.com/talgya/hexsweep/internal/world"

// EventKind classifies what happened.
type EventKind string

const (
	EventMineHit        EventKind = "mine_hit"        // Mine revealed; play continues
	EventZoneLocked     EventKind = "zone_locked"     // Zone locked by a mine
	EventTokenCollected EventKind = "token_collected" // Token picked up on reveal
	EventZoneUnlocked   EventKind = "zone_unlocked"   // Zone bought back
	EventFlagCorrected  EventKind = "flag_corrected"  // Wrong flag exposed by an unlock
	EventCascadeDone    EventKind = "cascade_done"    // Reveal queue drained
)

// maxEvents bounds the undrained event backlog.
const maxEvents = 1000

// Event is a notable occurrence for renderers to react to.
type Event struct {
	Tick  uint64         `json:"tick"`
	Kind  EventKind      `json:"kind"`
	Coord world.HexCoord `json:"coord"`
	Zone  world.HexCoord `json:"zone"`
	Value int            `json:"value,omitempty"` // Tokens paid, cells revealed, etc.
}

func (g *Game) emit(kind EventKind, c world.HexCoord, value int) {
	g.events = append(g.events, Event{
		Tick:  g.tick,
		Kind:  kind,
		Coord: c,
		Zone:  g.zones.ZoneOf(c),
		Value: value,
	})
	if len(g.events) > maxEvents {
		g.events = g.events[len(g.events)-maxEvents:]
	}
}

// DrainEvents returns and forgets all pending events, oldest first.
func (g *Game) DrainEvents() []Event {
	out := g.events
	g.events = nil
	return out
}
