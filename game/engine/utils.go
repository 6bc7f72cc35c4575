package engine

// CountFilledCells counts the non-empty cells in the grid
func CountFilledCells(grid [][]string) int {
	count := 0
	for _, row := range grid {
		for _, occupant := range row {
			if occupant != "" {
				count++
			}
		}
	}
	return count
}

// CountEmptyCells counts the uncovered cells in the grid
func CountEmptyCells(grid [][]string) int {
	count := 0
	for _, row := range grid {
		for _, occupant := range row {
			if occupant == "" {
				count++
			}
		}
	}
	return count
}

// TotalPieceCells sums the occupied cells of every piece a puzzle defines,
// starters and available pieces alike. For a well-formed puzzle this equals
// the board area.
func TotalPieceCells(config *PuzzleConfig) int {
	total := 0
	for _, starter := range config.StarterPieces {
		total += ShapeCellCount(starter.ShapeID)
	}
	for _, piece := range config.AvailablePieces {
		total += ShapeCellCount(piece.ShapeID)
	}
	return total
}

// EmptyRegions returns the sizes of the 4-connected empty regions of the
// grid, largest first. An empty slice means the board is fully covered.
func EmptyRegions(grid [][]string) []int {
	size := len(grid)
	visited := make([][]bool, size)
	for i := range visited {
		visited[i] = make([]bool, size)
	}

	var regions []int
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if grid[y][x] != "" || visited[y][x] {
				continue
			}
			regions = append(regions, fillRegion(grid, visited, x, y))
		}
	}

	// largest first
	for i := 0; i < len(regions); i++ {
		for j := i + 1; j < len(regions); j++ {
			if regions[j] > regions[i] {
				regions[i], regions[j] = regions[j], regions[i]
			}
		}
	}
	return regions
}

// fillRegion flood-fills one empty region and returns its cell count.
func fillRegion(grid [][]string, visited [][]bool, x, y int) int {
	size := len(grid)
	stack := []Position{{X: x, Y: y}}
	visited[y][x] = true
	count := 0

	for len(stack) > 0 {
		cell := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++

		neighbors := []Position{
			{X: cell.X, Y: cell.Y - 1},
			{X: cell.X + 1, Y: cell.Y},
			{X: cell.X, Y: cell.Y + 1},
			{X: cell.X - 1, Y: cell.Y},
		}
		for _, n := range neighbors {
			if n.X < 0 || n.X >= size || n.Y < 0 || n.Y >= size {
				continue
			}
			if visited[n.Y][n.X] || grid[n.Y][n.X] != "" {
				continue
			}
			visited[n.Y][n.X] = true
			stack = append(stack, n)
		}
	}
	return count
}

// SmallestAvailablePiece returns the cell count of the smallest piece still
// in the unplaced pool, or 0 when the pool is empty.
func SmallestAvailablePiece(gs *GameState) int {
	smallest := 0
	for _, id := range gs.AvailablePieces {
		piece, ok := gs.Pieces[id]
		if !ok {
			continue
		}
		cells := ShapeCellCount(piece.ShapeID)
		if cells == 0 {
			continue
		}
		if smallest == 0 || cells < smallest {
			smallest = cells
		}
	}
	return smallest
}

// HasDeadRegion reports whether some empty region is smaller than the
// smallest remaining piece, meaning the board can no longer be completed
// without taking pieces back.
func HasDeadRegion(gs *GameState) bool {
	smallest := SmallestAvailablePiece(gs)
	if smallest == 0 {
		return false
	}
	for _, region := range EmptyRegions(gs.Grid) {
		if region < smallest {
			return true
		}
	}
	return false
}
