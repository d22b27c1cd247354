package world

import "fmt"

// Cell is the materialized, player-visible state of one hex.
// A cell is never both Revealed and Flagged.
type Cell struct {
	Revealed bool `json:"revealed,omitempty"`
	Flagged  bool `json:"flagged,omitempty"`
	IsMine   bool `json:"is_mine,omitempty"` // Valid once revealed
	HasToken bool `json:"has_token,omitempty"`
	Count    int  `json:"count,omitempty"` // Valid once revealed and safe
}

// Map is the sparse cell store. It records only cells that differ from the
// default hidden state; everything else is derived from the generator.
type Map struct {
	cells map[HexCoord]*Cell
	gen   *Generator
}

// NewMap creates an empty store backed by gen for default cells.
func NewMap(gen *Generator) *Map {
	return &Map{
		cells: make(map[HexCoord]*Cell),
		gen:   gen,
	}
}

// Lookup returns the stored cell at c, or nil if c was never materialized.
func (m *Map) Lookup(c HexCoord) *Cell {
	return m.cells[c]
}

// Peek returns the cell at c without materializing it.
func (m *Map) Peek(c HexCoord) Cell {
	if cell := m.cells[c]; cell != nil {
		return *cell
	}
	return Cell{HasToken: m.gen.HasToken(c)}
}

// Get returns the cell at c, materializing a default one on first access.
func (m *Map) Get(c HexCoord) *Cell {
	cell := m.cells[c]
	if cell == nil {
		cell = &Cell{HasToken: m.gen.HasToken(c)}
		m.cells[c] = cell
	}
	return cell
}

// Set places a cell at the given coordinate.
func (m *Map) Set(c HexCoord, cell Cell) {
	m.cells[c] = &cell
}

// IsRevealed reports whether c is revealed without materializing it.
func (m *Map) IsRevealed(c HexCoord) bool {
	cell := m.cells[c]
	return cell != nil && cell.Revealed
}

// Each calls fn for every materialized cell, in map order.
func (m *Map) Each(fn func(c HexCoord, cell *Cell)) {
	for c, cell := range m.cells {
		fn(c, cell)
	}
}

// IsDefault reports whether cell carries nothing beyond world truth for c,
// so a save can omit it.
func (m *Map) IsDefault(c HexCoord, cell *Cell) bool {
	return !cell.Revealed && !cell.Flagged && cell.HasToken == m.gen.HasToken(c)
}

// Clear drops every materialized cell.
func (m *Map) Clear() {
	clear(m.cells)
}

// CellCount returns the number of materialized cells.
func (m *Map) CellCount() int {
	return len(m.cells)
}

// String returns a summary of the store.
func (m *Map) String() string {
	return fmt.Sprintf("Map(seed=%g, cells=%d)", m.gen.Seed(), m.CellCount())
}
