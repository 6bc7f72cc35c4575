package engine

// CanPlaceAt checks whether a piece may occupy the board with its rotated
// pattern anchored at (x, y). Cells occupied by ignorePieceID are treated
// as free, which lets a piece already on the board be evaluated for a new
// position without first being removed (live drag previews). Pass "" when
// no piece should be ignored.
//
// The check is side-effect-free and never mutates the board.
func (gs *GameState) CanPlaceAt(pieceID string, x, y, rotation int, ignorePieceID string) bool {
	piece, ok := gs.Pieces[pieceID]
	if !ok {
		return false
	}
	shape, err := LookupShape(piece.ShapeID)
	if err != nil {
		return false
	}

	pattern := RotatePattern(shape.Pattern, rotation)
	width := PatternWidth(pattern)
	height := PatternHeight(pattern)

	// Bounds check first, fail fast
	if x < 0 || y < 0 || x+width > gs.BoardSize || y+height > gs.BoardSize {
		return false
	}

	for r, row := range pattern {
		for c, occupied := range row {
			if !occupied {
				continue
			}
			occupant := gs.Grid[y+r][x+c]
			if occupant != "" && occupant != ignorePieceID {
				return false
			}
		}
	}

	return true
}

// CheckWinCondition reports whether every cell of the grid is covered.
func (gs *GameState) CheckWinCondition() bool {
	for _, row := range gs.Grid {
		for _, occupant := range row {
			if occupant == "" {
				return false
			}
		}
	}
	return true
}

// IsStarterPiece reports whether a piece is fixed by the puzzle definition.
func (gs *GameState) IsStarterPiece(pieceID string) bool {
	piece, ok := gs.Pieces[pieceID]
	return ok && piece.Starter
}
