package physics

import (
	"math"

	"github.com/san-kum/rubble/internal/dynamo"
)

// CellKey identifies a grid cell: (floor(x/bin), floor(y/bin)).
type CellKey struct {
	X, Y int
}

// SpatialHash is an unbounded uniform grid used as a broadphase. Items are
// small integers (indices into a caller-owned slice). It is rebuilt every
// step, so Remove is not provided.
//
// With the bin size equal to the query radius, every point within that
// radius of a query lies in the query's cell or one of its 8 neighbours.
type SpatialHash struct {
	bin    float64
	invBin float64
	cells  map[CellKey][]int
	count  int
}

func NewSpatialHash(bin float64) *SpatialHash {
	return &SpatialHash{
		bin:    bin,
		invBin: 1 / bin,
		cells:  make(map[CellKey][]int),
	}
}

func (h *SpatialHash) BinSize() float64 { return h.bin }

// SetBinSize changes the cell size and drops all items.
func (h *SpatialHash) SetBinSize(bin float64) {
	h.bin = bin
	h.invBin = 1 / bin
	h.Clear()
}

// Key returns the cell containing pos.
func (h *SpatialHash) Key(pos dynamo.Vec2) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X * h.invBin)),
		Y: int(math.Floor(pos.Y * h.invBin)),
	}
}

func (h *SpatialHash) Insert(pos dynamo.Vec2, item int) {
	k := h.Key(pos)
	h.cells[k] = append(h.cells[k], item)
	h.count++
}

// Cell returns the items in one cell. The slice is owned by the hash.
func (h *SpatialHash) Cell(k CellKey) []int {
	return h.cells[k]
}

// Candidates appends to dst every item in the 3x3 block of cells around pos.
func (h *SpatialHash) Candidates(pos dynamo.Vec2, dst []int) []int {
	center := h.Key(pos)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			dst = append(dst, h.cells[CellKey{center.X + dx, center.Y + dy}]...)
		}
	}
	return dst
}

// Len is the number of items inserted since the last Clear.
func (h *SpatialHash) Len() int { return h.count }

// Clear removes all items.
func (h *SpatialHash) Clear() {
	clear(h.cells)
	h.count = 0
}
