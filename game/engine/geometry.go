package engine

// Rect is a screen-space rectangle in pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Geometry bundles the parameters of the grid-to-screen projection. It is a
// value type: swapping in a new Geometry (e.g. after a viewport resize)
// changes only the screen projection, never logical positions.
type Geometry struct {
	CellSize      int `json:"cell_size"`
	BorderWidth   int `json:"border_width"`
	GridLineWidth int `json:"grid_line_width"`
	CellPadding   int `json:"cell_padding"`
	BoardSize     int `json:"board_size"`
}

// DefaultGeometry returns the standard desktop projection for a board.
func DefaultGeometry(boardSize int) Geometry {
	return Geometry{
		CellSize:      DefaultCellSize,
		BorderWidth:   DefaultBorderWidth,
		GridLineWidth: DefaultGridLineWidth,
		CellPadding:   DefaultCellPadding,
		BoardSize:     boardSize,
	}
}

// GeometryForWidth recomputes the cell size from an available viewport
// width, clamped to MinCellSize so narrow screens stay usable.
func GeometryForWidth(viewportWidth, boardSize int) Geometry {
	g := DefaultGeometry(boardSize)

	cellSize := (viewportWidth - 2*g.BorderWidth) / boardSize
	if cellSize < MinCellSize {
		cellSize = MinCellSize
	}
	g.CellSize = cellSize
	return g
}

// GridToScreen converts a grid cell to the screen position of its top-left
// corner.
func (g Geometry) GridToScreen(gx, gy int) (int, int) {
	x := gx*g.CellSize + g.BorderWidth
	y := gy*g.CellSize + g.BorderWidth
	return x, y
}

// ScreenToGrid converts a screen position to the grid cell containing it.
// The result may lie outside the board; check IsValidGridPosition.
func (g Geometry) ScreenToGrid(x, y int) (int, int) {
	gx := floorDiv(x-g.BorderWidth, g.CellSize)
	gy := floorDiv(y-g.BorderWidth, g.CellSize)
	return gx, gy
}

// CellBounds returns the drawable rectangle of a cell, inset by CellPadding
// on all sides.
func (g Geometry) CellBounds(gx, gy int) Rect {
	x, y := g.GridToScreen(gx, gy)
	return Rect{
		X:      x + g.CellPadding,
		Y:      y + g.CellPadding,
		Width:  g.CellSize - 2*g.CellPadding,
		Height: g.CellSize - 2*g.CellPadding,
	}
}

// IsValidGridPosition reports whether a cell lies on the board.
func (g Geometry) IsValidGridPosition(gx, gy int) bool {
	return gx >= 0 && gx < g.BoardSize && gy >= 0 && gy < g.BoardSize
}

// IsWithinBoardBounds reports whether a screen position falls inside the
// full board rectangle, border included.
func (g Geometry) IsWithinBoardBounds(x, y int) bool {
	extent := g.BoardPixelSize()
	return x >= 0 && x < extent && y >= 0 && y < extent
}

// BoardPixelSize returns the screen-space edge length of the full board.
func (g Geometry) BoardPixelSize() int {
	return g.BoardSize*g.CellSize + 2*g.BorderWidth
}

// floorDiv divides rounding toward negative infinity, so screen positions
// left of or above the board map to negative cells instead of cell 0.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
