package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a position on the board, in image pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is the axis-aligned bounding box of a piece.
type Bounds struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// NeighborEdge links a piece to one adjacent piece.
type NeighborEdge struct {
	NeighborIndex int    `json:"neighborIndex"`
	EdgeID        string `json:"edgeId"`
}

// Piece is the static geometry of one jigsaw fragment. Immutable for the
// life of the game.
type Piece struct {
	Index           int            `json:"index"`
	Bounds          Bounds         `json:"bounds"`
	Centroid        Point          `json:"centroid"`
	CorrectPosition Point          `json:"correctPosition"`
	CorrectRotation float64        `json:"correctRotation"`
	Edges           []NeighborEdge `json:"edges"`
}

// Edge is an unordered adjacency between two pieces.
type Edge struct {
	ID     string `json:"id"`
	Pieces [2]int `json:"pieces"`
}

// Topology is the full immutable description of a puzzle: every piece and
// every adjacency, produced once at game creation.
type Topology struct {
	Pieces      []Piece `json:"pieces"`
	Edges       []Edge  `json:"edges"`
	ImageWidth  int     `json:"imageWidth"`
	ImageHeight int     `json:"imageHeight"`
}

// EdgeID returns the canonical id for the edge between two pieces,
// ordered min-max so both directions name the same edge.
func EdgeID(a, b int) string {
	if a > b {
		a, b = b, a
	}
	return strconv.Itoa(a) + "-" + strconv.Itoa(b)
}

// ParseEdgeID splits a canonical edge id back into its two piece indices.
func ParseEdgeID(id string) (int, int, error) {
	parts := strings.SplitN(id, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed edge id %q", id)
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed edge id %q", id)
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed edge id %q", id)
	}
	return a, b, nil
}

// PieceCount returns the number of pieces.
func (t *Topology) PieceCount() int {
	return len(t.Pieces)
}

// PieceAt returns the piece with the given index, or nil if out of range.
func (t *Topology) PieceAt(index int) *Piece {
	if index < 0 || index >= len(t.Pieces) {
		return nil
	}
	return &t.Pieces[index]
}

// Validate checks the structural invariants of a topology: dense 0-based
// piece indices, canonical edge ids, and edge endpoints inside the piece set.
func (t *Topology) Validate() error {
	if len(t.Pieces) == 0 {
		return fmt.Errorf("topology has no pieces")
	}
	for i, p := range t.Pieces {
		if p.Index != i {
			return fmt.Errorf("piece at position %d has index %d", i, p.Index)
		}
		if p.Bounds.W <= 0 || p.Bounds.H <= 0 {
			return fmt.Errorf("piece %d has empty bounds", i)
		}
		for _, e := range p.Edges {
			if e.NeighborIndex < 0 || e.NeighborIndex >= len(t.Pieces) {
				return fmt.Errorf("piece %d references unknown neighbor %d", i, e.NeighborIndex)
			}
			if e.NeighborIndex == i {
				return fmt.Errorf("piece %d references itself", i)
			}
			if e.EdgeID != EdgeID(i, e.NeighborIndex) {
				return fmt.Errorf("piece %d has non-canonical edge id %q", i, e.EdgeID)
			}
		}
	}
	seen := make(map[string]struct{}, len(t.Edges))
	for _, e := range t.Edges {
		a, b := e.Pieces[0], e.Pieces[1]
		if a < 0 || a >= len(t.Pieces) || b < 0 || b >= len(t.Pieces) {
			return fmt.Errorf("edge %q references unknown piece", e.ID)
		}
		if e.ID != EdgeID(a, b) {
			return fmt.Errorf("edge id %q does not match endpoints %d,%d", e.ID, a, b)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("duplicate edge %q", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
