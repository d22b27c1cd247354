package zone

import (
	"math"
	"sort"

	"github.com/talgya/hexsweep/internal/world"
)

// Zone is the economic and lock state of one zone.
type Zone struct {
	ID         world.HexCoord `json:"id"`
	Locked     bool           `json:"locked"`
	UnlockCost int            `json:"unlock_cost"` // Fixed at creation
}

// Payer holds the currency spent on unlocks.
type Payer interface {
	Tokens() int
	Spend(n int)
}

// Ledger lazily creates zones and records their state. Zones are never
// destroyed.
type Ledger struct {
	Partition
	seed    float64
	minCost int
	zones   map[world.HexCoord]*Zone
}

// NewLedger creates an empty ledger for the world seed.
func NewLedger(p Partition, seed float64, minCost int) *Ledger {
	return &Ledger{
		Partition: p,
		seed:      seed,
		minCost:   minCost,
		zones:     make(map[world.HexCoord]*Zone),
	}
}

// Get returns zone z, creating it on first reference.
func (l *Ledger) Get(z world.HexCoord) *Zone {
	zone := l.zones[z]
	if zone == nil {
		zone = &Zone{ID: z, UnlockCost: l.costOf(z)}
		l.zones[z] = zone
	}
	return zone
}

// costOf prices zone z: 8 + 2*dist + up to 5 of jitter, at least minCost.
// Zones farther from the origin cost more.
func (l *Ledger) costOf(z world.HexCoord) int {
	dist := abs(z.Q) + abs(z.R)
	raw := 8 + float64(dist)*2 + world.HashCoord(z, world.SaltCost, l.seed)*5
	return max(l.minCost, int(math.Floor(raw)))
}

// Lock marks zone z locked. Idempotent.
func (l *Ledger) Lock(z world.HexCoord) bool {
	zone := l.Get(z)
	if zone.Locked {
		return false
	}
	zone.Locked = true
	return true
}

// Unlock charges payer the unlock cost of zone z and unlocks it. It fails
// without side effects unless z is locked and payer can afford it.
func (l *Ledger) Unlock(z world.HexCoord, payer Payer) bool {
	zone := l.Get(z)
	if !zone.Locked || payer.Tokens() < zone.UnlockCost {
		return false
	}
	payer.Spend(zone.UnlockCost)
	zone.Locked = false
	return true
}

// IsLocked reports whether zone z is locked.
func (l *Ledger) IsLocked(z world.HexCoord) bool {
	return l.Get(z).Locked
}

// IsCellLocked reports whether c is locked for interaction: its zone is
// locked and c is within the protected radius of the zone center.
func (l *Ledger) IsCellLocked(c world.HexCoord) bool {
	return l.Get(l.ZoneOf(c)).Locked && l.InProtectedRadius(c)
}

// Locked returns the ids of all locked zones, sorted by (q, r).
func (l *Ledger) Locked() []world.HexCoord {
	var out []world.HexCoord
	for id, zone := range l.zones {
		if zone.Locked {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Q != out[j].Q {
			return out[i].Q < out[j].Q
		}
		return out[i].R < out[j].R
	})
	return out
}

// ZoneCount returns the number of zones created so far.
func (l *Ledger) ZoneCount() int {
	return len(l.zones)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
