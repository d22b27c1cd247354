package engine

import (
	"log/slog"

	"github.com/talgya/hexsweep/internal/world"
)

// cascadeQueue is the FIFO of cells waiting for an automatic reveal.
// A coordinate already waiting is not queued twice.
type cascadeQueue struct {
	items    []world.HexCoord
	head     int
	waiting  map[world.HexCoord]struct{}
	revealed int // Reveals since the queue was last empty
}

func (q *cascadeQueue) reset() {
	q.items = nil
	q.head = 0
	q.waiting = make(map[world.HexCoord]struct{})
	q.revealed = 0
}

func (q *cascadeQueue) push(c world.HexCoord) {
	if _, ok := q.waiting[c]; ok {
		return
	}
	q.waiting[c] = struct{}{}
	q.items = append(q.items, c)
}

func (q *cascadeQueue) pop() (world.HexCoord, bool) {
	if q.head >= len(q.items) {
		return world.HexCoord{}, false
	}
	c := q.items[q.head]
	q.head++
	delete(q.waiting, c)
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return c, true
}

func (q *cascadeQueue) len() int {
	return len(q.items) - q.head
}

// Pending returns the number of cells waiting in the cascade queue.
func (g *Game) Pending() int {
	return g.queue.len()
}

// Tick drains one bounded batch of the cascade queue and reports whether
// work remains for the next tick.
func (g *Game) Tick() bool {
	g.tick++
	if g.queue.len() == 0 {
		return false
	}
	for processed := 0; processed < g.rules.CascadeBatch; processed++ {
		c, ok := g.queue.pop()
		if !ok {
			break
		}
		// Queued cells may have been revealed or flagged since.
		cell := g.cells.Peek(c)
		if cell.Revealed || cell.Flagged {
			continue
		}
		if g.reveal(c) {
			g.queue.revealed++
		}
	}
	if g.queue.len() > 0 {
		slog.Debug("cascade tick", "tick", g.tick, "pending", g.queue.len())
		return true
	}
	g.emit(EventCascadeDone, world.HexCoord{}, g.queue.revealed)
	g.queue.revealed = 0
	return false
}

// Settle runs ticks until the cascade queue is empty.
func (g *Game) Settle() {
	for g.Tick() {
	}
}
