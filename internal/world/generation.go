// World truth: which cells are mines, which carry tokens, and how many mines
// border a cell. Everything here is a pure function of coordinate and seed,
// so lazily generated cells match an eagerly generated infinite plane.

package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Seed             float64 // Fixes every procedural outcome for a session
	MineProbability  float64 // Share of cells outside the safe start that are mines
	TokenProbability float64 // Share of safe cells carrying a token
	SafeRadius       int     // Start neighborhood kept free of mines and tokens
}

// DefaultGenConfig returns the standard generation parameters.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		MineProbability:  0.28,
		TokenProbability: 0.10,
		SafeRadius:       1,
	}
}

// Generator answers world-truth queries for one seed.
type Generator struct {
	cfg    GenConfig
	relief opensimplex.Noise
}

// NewGenerator creates a generator for cfg.
func NewGenerator(cfg GenConfig) *Generator {
	return &Generator{
		cfg: cfg,
		// Noise takes an integer seed; spread the fractional seed across it.
		relief: opensimplex.NewNormalized(int64(cfg.Seed * (1 << 52))),
	}
}

// Seed returns the world seed.
func (g *Generator) Seed() float64 {
	return g.cfg.Seed
}

// IsMine reports whether c is a mine.
func (g *Generator) IsMine(c HexCoord) bool {
	if WithinSafeStart(c, g.cfg.SafeRadius) {
		return false
	}
	return HashCoord(c, SaltMine, g.cfg.Seed) < g.cfg.MineProbability
}

// HasToken reports whether c carries a token before anyone collects it.
// Mines never carry tokens.
func (g *Generator) HasToken(c HexCoord) bool {
	if WithinSafeStart(c, g.cfg.SafeRadius) {
		return false
	}
	if g.IsMine(c) {
		return false
	}
	return HashCoord(c, SaltToken, g.cfg.Seed) < g.cfg.TokenProbability
}

// CountAdjacentMines returns how many of the six neighbors of c are mines.
func (g *Generator) CountAdjacentMines(c HexCoord) int {
	count := 0
	for _, n := range c.Neighbors() {
		if g.IsMine(n) {
			count++
		}
	}
	return count
}

// Relief returns a smooth value in [0, 1] that renderers use to tint hidden
// cells. It plays no part in mine or token placement.
func (g *Generator) Relief(c HexCoord) float64 {
	// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
	x := float64(c.Q) + float64(c.R)*0.5
	y := float64(c.R) * math.Sqrt(3.0) / 2.0
	return octaveNoise(g.relief, x, y, 3, 0.06, 0.5)
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
