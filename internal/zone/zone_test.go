package zone

import (
	"testing"

	"github.com/talgya/hexsweep/internal/world"
)

func TestZoneOfCenterIsIdentity(t *testing.T) {
	p := DefaultPartition()
	for zq := -8; zq <= 8; zq++ {
		for zr := -8; zr <= 8; zr++ {
			z := world.HexCoord{Q: zq, R: zr}
			if got := p.ZoneOf(p.Center(z)); got != z {
				t.Fatalf("ZoneOf(Center(%v)) = %v", z, got)
			}
		}
	}
}

func TestProtectedRadiusInsideZone(t *testing.T) {
	p := DefaultPartition()
	for _, z := range []world.HexCoord{{Q: 0, R: 0}, {Q: 1, R: -1}, {Q: -3, R: 2}, {Q: 5, R: 5}} {
		center := p.Center(z)
		for _, c := range world.Within(center, p.LockRadius) {
			if got := p.ZoneOf(c); got != z {
				t.Fatalf("%v is %d from center of %v but lands in %v", c, world.Distance(c, center), z, got)
			}
			if !p.InProtectedRadius(c) {
				t.Fatalf("%v should be in the protected radius of %v", c, z)
			}
		}
	}
}

func TestMembersPartitionThePlane(t *testing.T) {
	p := DefaultPartition()
	owner := make(map[world.HexCoord]world.HexCoord)
	for zq := -3; zq <= 3; zq++ {
		for zr := -3; zr <= 3; zr++ {
			z := world.HexCoord{Q: zq, R: zr}
			n := 0
			p.Members(z, func(c world.HexCoord) {
				n++
				if prev, ok := owner[c]; ok {
					t.Fatalf("%v claimed by %v and %v", c, prev, z)
				}
				owner[c] = z
			})
			// A lattice K apart gives each zone about K*K cells.
			if n < 30 || n > 42 {
				t.Fatalf("zone %v has %d cells", z, n)
			}
		}
	}
	// Every cell well inside the scanned zones is owned by its own zone.
	for q := -8; q <= 8; q++ {
		for r := -8; r <= 8; r++ {
			c := world.HexCoord{Q: q, R: r}
			z, ok := owner[c]
			if !ok {
				t.Fatalf("%v not claimed by any zone", c)
			}
			if z != p.ZoneOf(c) {
				t.Fatalf("%v claimed by %v, ZoneOf says %v", c, z, p.ZoneOf(c))
			}
		}
	}
}

func TestZonesAreCompact(t *testing.T) {
	p := DefaultPartition()
	z := world.HexCoord{Q: 2, R: -1}
	center := p.Center(z)
	near := 0
	total := 0
	p.Members(z, func(c world.HexCoord) {
		total++
		d := world.Distance(c, center)
		if d > p.Spacing {
			t.Fatalf("%v is %d from its zone center", c, d)
		}
		if d <= p.Spacing-1 {
			near++
		}
	})
	if near*10 < total*9 {
		t.Fatalf("only %d of %d members within %d of center", near, total, p.Spacing-1)
	}
}

type wallet struct{ tokens int }

func (w *wallet) Tokens() int { return w.tokens }
func (w *wallet) Spend(n int) { w.tokens -= n }

func TestLedgerCost(t *testing.T) {
	a := NewLedger(DefaultPartition(), 0.61, 10)
	b := NewLedger(DefaultPartition(), 0.61, 10)
	for zq := -5; zq <= 5; zq++ {
		for zr := -5; zr <= 5; zr++ {
			z := world.HexCoord{Q: zq, R: zr}
			cost := a.Get(z).UnlockCost
			dist := abs(zq) + abs(zr)
			lo := max(10, 8+2*dist)
			hi := max(10, 8+2*dist+4)
			if cost < lo || cost > hi {
				t.Fatalf("zone %v cost %d, want in [%d,%d]", z, cost, lo, hi)
			}
			if other := b.Get(z).UnlockCost; other != cost {
				t.Fatalf("zone %v cost differs between ledgers: %d vs %d", z, cost, other)
			}
		}
	}
	if a.Get(world.HexCoord{}) != a.Get(world.HexCoord{}) {
		t.Fatalf("Get created a zone twice")
	}
}

func TestLedgerLockUnlock(t *testing.T) {
	l := NewLedger(DefaultPartition(), 0.2, 10)
	z := world.HexCoord{Q: 1, R: 0}
	cost := l.Get(z).UnlockCost

	w := &wallet{tokens: 1000}
	if l.Unlock(z, w) {
		t.Fatalf("unlocked a zone that was never locked")
	}
	if w.tokens != 1000 {
		t.Fatalf("failed unlock spent tokens")
	}

	if !l.Lock(z) {
		t.Fatalf("first Lock returned false")
	}
	if l.Lock(z) {
		t.Fatalf("second Lock returned true")
	}
	if !l.IsLocked(z) {
		t.Fatalf("zone not locked")
	}

	poor := &wallet{tokens: cost - 1}
	if l.Unlock(z, poor) {
		t.Fatalf("unlocked with too few tokens")
	}
	if poor.tokens != cost-1 || !l.IsLocked(z) {
		t.Fatalf("failed unlock changed state")
	}

	rich := &wallet{tokens: cost + 3}
	if !l.Unlock(z, rich) {
		t.Fatalf("unlock failed with enough tokens")
	}
	if rich.tokens != 3 {
		t.Fatalf("tokens after unlock = %d, want 3", rich.tokens)
	}
	if l.IsLocked(z) {
		t.Fatalf("zone still locked")
	}
	if l.Get(z).UnlockCost != cost {
		t.Fatalf("unlock cost changed")
	}
}

func TestLedgerCellLockRadius(t *testing.T) {
	l := NewLedger(DefaultPartition(), 0.2, 10)
	z := world.HexCoord{Q: -1, R: 2}
	center := l.Center(z)
	l.Lock(z)

	if !l.IsCellLocked(center) {
		t.Fatalf("center not locked")
	}
	edge := world.HexCoord{Q: center.Q + 2, R: center.R}
	if !l.IsCellLocked(edge) {
		t.Fatalf("cell at protected radius not locked")
	}
	ring := world.HexCoord{Q: center.Q + 2, R: center.R + 1}
	if l.ZoneOf(ring) != z {
		t.Fatalf("test cell %v left the zone", ring)
	}
	if l.IsCellLocked(ring) {
		t.Fatalf("buffer ring cell locked")
	}
	other := world.HexCoord{Q: 0, R: 0}
	if l.IsCellLocked(other) {
		t.Fatalf("cell in an unlocked zone reported locked")
	}
}

func TestLockedSorted(t *testing.T) {
	l := NewLedger(DefaultPartition(), 0.2, 10)
	for _, z := range []world.HexCoord{{Q: 2, R: 0}, {Q: -1, R: 3}, {Q: -1, R: -2}, {Q: 0, R: 0}} {
		l.Lock(z)
	}
	l.Get(world.HexCoord{Q: 9, R: 9})
	got := l.Locked()
	want := []world.HexCoord{{Q: -1, R: -2}, {Q: -1, R: 3}, {Q: 0, R: 0}, {Q: 2, R: 0}}
	if len(got) != len(want) {
		t.Fatalf("Locked() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Locked() = %v, want %v", got, want)
		}
	}
	if l.ZoneCount() != 5 {
		t.Fatalf("ZoneCount = %d, want 5", l.ZoneCount())
	}
}
