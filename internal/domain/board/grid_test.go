package board

import "testing"

func TestGenerateGridSquare(t *testing.T) {
	topo := GenerateGrid(GridOptions{ImageWidth: 1000, ImageHeight: 1000, PieceCount: 400})

	if err := topo.Validate(); err != nil {
		t.Fatalf("invalid topology: %v", err)
	}
	if got := topo.PieceCount(); got != 400 {
		t.Fatalf("expected 400 pieces, got %d", got)
	}
	// 20x20 grid: 20*19 horizontal + 19*20 vertical adjacencies.
	if got := len(topo.Edges); got != 760 {
		t.Fatalf("expected 760 edges, got %d", got)
	}
}

func TestGenerateGridAspectRatio(t *testing.T) {
	// 2:1 image, 200 pieces: rows = round(sqrt(200/2)) = 10, cols = 20.
	topo := GenerateGrid(GridOptions{ImageWidth: 2000, ImageHeight: 1000, PieceCount: 200})

	if err := topo.Validate(); err != nil {
		t.Fatalf("invalid topology: %v", err)
	}
	if got := topo.PieceCount(); got != 200 {
		t.Fatalf("expected 200 pieces, got %d", got)
	}
	// Row-major: piece 1 sits to the right of piece 0.
	p := topo.PieceAt(1)
	if p.CorrectPosition.X != 100 || p.CorrectPosition.Y != 0 {
		t.Fatalf("unexpected position for piece 1: %+v", p.CorrectPosition)
	}
}

func TestGenerateGridNeighborOrder(t *testing.T) {
	topo := GenerateGrid(GridOptions{ImageWidth: 1000, ImageHeight: 1000, PieceCount: 400})

	// Interior piece: neighbors listed top, right, bottom, left.
	const cols = 20
	idx := cols + 1
	p := topo.PieceAt(idx)
	if len(p.Edges) != 4 {
		t.Fatalf("expected 4 edges for interior piece, got %d", len(p.Edges))
	}
	want := []int{idx - cols, idx + 1, idx + cols, idx - 1}
	for i, e := range p.Edges {
		if e.NeighborIndex != want[i] {
			t.Fatalf("edge %d: expected neighbor %d, got %d", i, want[i], e.NeighborIndex)
		}
		if e.EdgeID != EdgeID(idx, e.NeighborIndex) {
			t.Fatalf("edge %d: non-canonical id %q", i, e.EdgeID)
		}
	}

	// Corner piece has exactly two neighbors.
	if got := len(topo.PieceAt(0).Edges); got != 2 {
		t.Fatalf("expected 2 edges for corner piece, got %d", got)
	}
}

func TestGenerateGridBoundsPadding(t *testing.T) {
	topo := GenerateGrid(GridOptions{ImageWidth: 1000, ImageHeight: 1000, PieceCount: 400})

	p := topo.PieceAt(0)
	if p.Bounds.W != 85 || p.Bounds.H != 85 {
		t.Fatalf("expected 85x85 padded bounds, got %gx%g", p.Bounds.W, p.Bounds.H)
	}
	if p.Bounds.X != -17.5 || p.Bounds.Y != -17.5 {
		t.Fatalf("unexpected bounds origin: %+v", p.Bounds)
	}
	if p.Centroid.X != 25 || p.Centroid.Y != 25 {
		t.Fatalf("unexpected centroid: %+v", p.Centroid)
	}
}

func TestEdgeIDCanonical(t *testing.T) {
	if EdgeID(7, 3) != "3-7" || EdgeID(3, 7) != "3-7" {
		t.Fatal("edge id must be min-max ordered")
	}
	a, b, err := ParseEdgeID("3-7")
	if err != nil || a != 3 || b != 7 {
		t.Fatalf("parse: %d %d %v", a, b, err)
	}
	if _, _, err := ParseEdgeID("nope"); err == nil {
		t.Fatal("expected error for malformed id")
	}
}
