package board

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowTopology builds three 100x100 pieces in a row: 0-1-2. Bounds carry no
// padding so the snap tolerance is exactly 10.
func rowTopology(t *testing.T) *Topology {
	t.Helper()
	topo := &Topology{
		ImageWidth:  300,
		ImageHeight: 100,
	}
	for i := 0; i < 3; i++ {
		var edges []NeighborEdge
		if i < 2 {
			edges = append(edges, NeighborEdge{NeighborIndex: i + 1, EdgeID: EdgeID(i, i+1)})
			topo.Edges = append(topo.Edges, Edge{ID: EdgeID(i, i+1), Pieces: [2]int{i, i + 1}})
		}
		if i > 0 {
			edges = append([]NeighborEdge{{NeighborIndex: i - 1, EdgeID: EdgeID(i-1, i)}}, edges...)
		}
		topo.Pieces = append(topo.Pieces, Piece{
			Index:           i,
			Bounds:          Bounds{X: float64(i * 100), Y: 0, W: 100, H: 100},
			Centroid:        Point{X: float64(i*100) + 50, Y: 50},
			CorrectPosition: Point{X: float64(i * 100), Y: 0},
			Edges:           edges,
		})
	}
	require.NoError(t, topo.Validate())
	return topo
}

func TestSnapWithinTolerance(t *testing.T) {
	topo := rowTopology(t)
	// Neighbor 0 placed at an arbitrary spot; piece 1 belongs 100 to its right.
	neighbors := map[int]NeighborState{
		0: {X: 300, Y: 300, Rotation: 0},
	}

	res := Snap(topo, 1, Pose{X: 409, Y: 304, Rotation: 0.05}, neighbors)
	require.True(t, res.Snapped)
	assert.Equal(t, []string{"0-1"}, res.SnappedEdges)
	assert.Equal(t, 400.0, res.Pose.X)
	assert.Equal(t, 300.0, res.Pose.Y)
	assert.Equal(t, 0.0, res.Pose.Rotation)
}

func TestSnapPositionBoundaryIsExclusive(t *testing.T) {
	topo := rowTopology(t)
	neighbors := map[int]NeighborState{
		0: {X: 0, Y: 0, Rotation: 0},
	}

	// Distance exactly at the tolerance radius must not snap.
	at := Snap(topo, 1, Pose{X: 110, Y: 0, Rotation: 0}, neighbors)
	assert.False(t, at.Snapped)
	assert.Equal(t, 110.0, at.Pose.X)

	within := Snap(topo, 1, Pose{X: 109.99, Y: 0, Rotation: 0}, neighbors)
	assert.True(t, within.Snapped)
	assert.Equal(t, 100.0, within.Pose.X)
}

func TestSnapRotationBoundaryIsExclusive(t *testing.T) {
	topo := rowTopology(t)
	neighbors := map[int]NeighborState{
		0: {X: 0, Y: 0, Rotation: 0},
	}

	at := Snap(topo, 1, Pose{X: 100, Y: 0, Rotation: math.Pi / 5}, neighbors)
	assert.False(t, at.Snapped)

	within := Snap(topo, 1, Pose{X: 100, Y: 0, Rotation: math.Pi/5 - 1e-9}, neighbors)
	assert.True(t, within.Snapped)
}

func TestSnapRotationWrapsAroundZero(t *testing.T) {
	topo := rowTopology(t)
	neighbors := map[int]NeighborState{
		0: {X: 0, Y: 0, Rotation: 0.01},
	}

	res := Snap(topo, 1, Pose{X: 100, Y: 0, Rotation: 2*math.Pi - 0.01}, neighbors)
	require.True(t, res.Snapped)
	assert.Equal(t, 0.01, res.Pose.Rotation)
}

func TestSnapIgnoresPanelAndAbsentNeighbors(t *testing.T) {
	topo := rowTopology(t)

	res := Snap(topo, 1, Pose{X: 100, Y: 0, Rotation: 0}, map[int]NeighborState{
		0: {X: 0, Y: 0, Rotation: 0, InPanel: true},
	})
	assert.False(t, res.Snapped)

	res = Snap(topo, 1, Pose{X: 100, Y: 0, Rotation: 0}, map[int]NeighborState{})
	assert.False(t, res.Snapped)
	assert.Equal(t, Pose{X: 100, Y: 0, Rotation: 0}, res.Pose)
}

func TestSnapLastMatchingEdgeDictatesPose(t *testing.T) {
	topo := rowTopology(t)
	// Both neighbors of piece 1 are placed slightly inconsistently; both
	// edges match, and the pose comes from the later edge in piece order.
	neighbors := map[int]NeighborState{
		0: {X: 0, Y: 0, Rotation: 0},
		2: {X: 204, Y: 2, Rotation: 0},
	}

	res := Snap(topo, 1, Pose{X: 102, Y: 1, Rotation: 0}, neighbors)
	require.True(t, res.Snapped)
	assert.Equal(t, []string{"0-1", "1-2"}, res.SnappedEdges)
	assert.Equal(t, 104.0, res.Pose.X)
	assert.Equal(t, 2.0, res.Pose.Y)
}

func TestSnapIsDeterministic(t *testing.T) {
	topo := rowTopology(t)
	neighbors := map[int]NeighborState{
		0: {X: 50, Y: 75, Rotation: 0.1},
		2: {X: 250, Y: 80, Rotation: 0.1},
	}
	pose := Pose{X: 153, Y: 77, Rotation: 0.12}

	first := Snap(topo, 1, pose, neighbors)
	for i := 0; i < 10; i++ {
		again := Snap(topo, 1, pose, neighbors)
		assert.Equal(t, first, again)
	}
}

func TestSnapUnknownPiece(t *testing.T) {
	topo := rowTopology(t)
	res := Snap(topo, 99, Pose{X: 1, Y: 2, Rotation: 3}, nil)
	assert.False(t, res.Snapped)
	assert.Equal(t, Pose{X: 1, Y: 2, Rotation: 3}, res.Pose)
}

func TestNormalizeRotation(t *testing.T) {
	assert.InDelta(t, 0, NormalizeRotation(2*math.Pi), 1e-12)
	assert.InDelta(t, math.Pi, NormalizeRotation(3*math.Pi), 1e-12)
	assert.InDelta(t, 2*math.Pi-0.5, NormalizeRotation(-0.5), 1e-12)
}

func TestRotationDistance(t *testing.T) {
	assert.InDelta(t, 0.02, RotationDistance(0.01, 2*math.Pi-0.01), 1e-12)
	assert.InDelta(t, math.Pi, RotationDistance(0, math.Pi), 1e-12)
	assert.InDelta(t, 0, RotationDistance(1.5, 1.5+2*math.Pi), 1e-12)
}
