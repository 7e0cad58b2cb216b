package board

import "math"

// Tolerances for snap matching. Position tolerance is relative to the
// dropped piece's bounding width; rotation tolerance is one tenth of a
// full turn.
const (
	PositionThresholdRatio = 0.1
	RotationThreshold      = math.Pi / 5
)

// Pose is a proposed placement for a piece.
type Pose struct {
	X        float64
	Y        float64
	Rotation float64
}

// NeighborState is the live placement of one topological neighbor at the
// moment of the snap check. Pieces still in the panel are not snap targets.
type NeighborState struct {
	X        float64
	Y        float64
	Rotation float64
	InPanel  bool
}

// SnapResult reports which neighbor edges matched and the corrected pose.
type SnapResult struct {
	Snapped      bool
	SnappedEdges []string
	Pose         Pose
}

// Snap decides which of the dropped piece's neighbor edges now fit, given a
// proposed pose and the neighbors' current states (keyed by piece index;
// absent neighbors are skipped). An edge matches when the proposed position
// is strictly within the tolerance radius of the position implied by the
// neighbor's placement and the canonical relative offset, and the rotations
// agree within the rotation tolerance. When several edges match in one drop,
// the last match in the piece's neighbor-edge order dictates the final pose.
// Pure: repeated evaluation with the same inputs yields the same result.
func Snap(topo *Topology, pieceIndex int, proposed Pose, neighbors map[int]NeighborState) SnapResult {
	result := SnapResult{Pose: proposed}
	piece := topo.PieceAt(pieceIndex)
	if piece == nil {
		return result
	}

	threshold := piece.Bounds.W * PositionThresholdRatio
	proposed.Rotation = NormalizeRotation(proposed.Rotation)

	for _, edge := range piece.Edges {
		neighbor, ok := neighbors[edge.NeighborIndex]
		if !ok || neighbor.InPanel {
			continue
		}
		neighborPiece := topo.PieceAt(edge.NeighborIndex)
		if neighborPiece == nil {
			continue
		}

		// Expected position preserves the canonical offset from the neighbor.
		expectedX := neighbor.X + (piece.CorrectPosition.X - neighborPiece.CorrectPosition.X)
		expectedY := neighbor.Y + (piece.CorrectPosition.Y - neighborPiece.CorrectPosition.Y)

		dx := proposed.X - expectedX
		dy := proposed.Y - expectedY
		distance := math.Hypot(dx, dy)
		rotationDiff := RotationDistance(proposed.Rotation, neighbor.Rotation)

		if distance < threshold && rotationDiff < RotationThreshold {
			result.SnappedEdges = append(result.SnappedEdges, edge.EdgeID)
			result.Pose = Pose{X: expectedX, Y: expectedY, Rotation: neighbor.Rotation}
		}
	}

	result.Snapped = len(result.SnappedEdges) > 0
	return result
}

// NormalizeRotation reduces a rotation into [0, 2π).
func NormalizeRotation(r float64) float64 {
	r = math.Mod(r, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return r
}

// RotationDistance is the circular distance between two rotations: the
// smallest absolute difference modulo a full turn, so 0.01 and 2π-0.01 are
// near-equal rather than nearly a full turn apart.
func RotationDistance(a, b float64) float64 {
	d := math.Abs(NormalizeRotation(a) - NormalizeRotation(b))
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}
