package board

import "math"

// GridOptions controls grid topology generation.
type GridOptions struct {
	ImageWidth  int
	ImageHeight int
	PieceCount  int
}

// GenerateGrid builds a rectangular-grid topology: rows and columns chosen
// from the requested piece count and the image aspect ratio, pieces indexed
// row-major, each piece adjacent to its 4-neighborhood. Piece outlines and
// tab curves are a rendering concern and are not represented here; bounds
// carry the same padding the renderer uses so the snap tolerance scales
// with the visual piece size.
func GenerateGrid(opts GridOptions) *Topology {
	aspect := float64(opts.ImageWidth) / float64(opts.ImageHeight)
	rows := int(math.Round(math.Sqrt(float64(opts.PieceCount) / aspect)))
	if rows < 1 {
		rows = 1
	}
	cols := int(math.Round(float64(rows) * aspect))
	if cols < 1 {
		cols = 1
	}

	pieceWidth := float64(opts.ImageWidth) / float64(cols)
	pieceHeight := float64(opts.ImageHeight) / float64(rows)

	topo := &Topology{
		Pieces:      make([]Piece, 0, rows*cols),
		Edges:       make([]Edge, 0, 2*rows*cols),
		ImageWidth:  opts.ImageWidth,
		ImageHeight: opts.ImageHeight,
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			index := row*cols + col
			x := float64(col) * pieceWidth
			y := float64(row) * pieceHeight

			var pieceEdges []NeighborEdge
			if row > 0 {
				pieceEdges = append(pieceEdges, NeighborEdge{NeighborIndex: index - cols, EdgeID: EdgeID(index-cols, index)})
			}
			if col < cols-1 {
				pieceEdges = append(pieceEdges, NeighborEdge{NeighborIndex: index + 1, EdgeID: EdgeID(index, index+1)})
				topo.Edges = append(topo.Edges, Edge{ID: EdgeID(index, index+1), Pieces: [2]int{index, index + 1}})
			}
			if row < rows-1 {
				pieceEdges = append(pieceEdges, NeighborEdge{NeighborIndex: index + cols, EdgeID: EdgeID(index, index+cols)})
				topo.Edges = append(topo.Edges, Edge{ID: EdgeID(index, index+cols), Pieces: [2]int{index, index + cols}})
			}
			if col > 0 {
				pieceEdges = append(pieceEdges, NeighborEdge{NeighborIndex: index - 1, EdgeID: EdgeID(index-1, index)})
			}

			topo.Pieces = append(topo.Pieces, Piece{
				Index: index,
				Bounds: Bounds{
					X: x - pieceWidth*0.35,
					Y: y - pieceHeight*0.35,
					W: pieceWidth * 1.70,
					H: pieceHeight * 1.70,
				},
				Centroid:        Point{X: x + pieceWidth/2, Y: y + pieceHeight/2},
				CorrectPosition: Point{X: x, Y: y},
				CorrectRotation: 0,
				Edges:           pieceEdges,
			})
		}
	}

	return topo
}
