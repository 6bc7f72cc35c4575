package engine

import (
	"fmt"
	"time"
)

// FindPlacedPiece returns the placement record for a piece currently on the
// board, or nil when the piece is not placed.
func (gs *GameState) FindPlacedPiece(pieceID string) *PlacedPiece {
	for i := range gs.PlacedPieces {
		if gs.PlacedPieces[i].PieceID == pieceID {
			return &gs.PlacedPieces[i]
		}
	}
	return nil
}

// stampPiece writes a piece id into every cell its rotated pattern covers.
// The caller must have validated the placement.
func (gs *GameState) stampPiece(p PlacedPiece) {
	shape, err := LookupShape(p.ShapeID)
	if err != nil {
		return
	}
	pattern := RotatePattern(shape.Pattern, p.Rotation)
	for r, row := range pattern {
		for c, occupied := range row {
			if occupied {
				gs.Grid[p.Position.Y+r][p.Position.X+c] = p.PieceID
			}
		}
	}
}

// clearPiece empties every cell currently claimed by the piece id.
func (gs *GameState) clearPiece(pieceID string) {
	for y := range gs.Grid {
		for x := range gs.Grid[y] {
			if gs.Grid[y][x] == pieceID {
				gs.Grid[y][x] = ""
			}
		}
	}
}

// deletePlacedRecord removes a piece's placement entry from the list.
func (gs *GameState) deletePlacedRecord(pieceID string) {
	for i := range gs.PlacedPieces {
		if gs.PlacedPieces[i].PieceID == pieceID {
			gs.PlacedPieces = append(gs.PlacedPieces[:i], gs.PlacedPieces[i+1:]...)
			return
		}
	}
}

// takeFromAvailable removes a piece id from the unplaced pool.
func (gs *GameState) takeFromAvailable(pieceID string) {
	for i, id := range gs.AvailablePieces {
		if id == pieceID {
			gs.AvailablePieces = append(gs.AvailablePieces[:i], gs.AvailablePieces[i+1:]...)
			return
		}
	}
}

// returnToAvailable puts a piece id back into the unplaced pool.
func (gs *GameState) returnToAvailable(pieceID string) {
	for _, id := range gs.AvailablePieces {
		if id == pieceID {
			return
		}
	}
	gs.AvailablePieces = append(gs.AvailablePieces, pieceID)
}

// PlacePiece attempts to place a piece at (x, y) with the given rotation.
// On success the grid is stamped, the placement recorded, the piece leaves
// the unplaced pool, the move counter increments, and the win condition is
// evaluated. On failure the state is unchanged and false is returned; the
// caller decides what to do (e.g. snap a drag back).
func (gs *GameState) PlacePiece(pieceID string, x, y, rotation int, config *PuzzleConfig) bool {
	if gs.FindPlacedPiece(pieceID) != nil {
		gs.Message = fmt.Sprintf("Piece %s is already on the board", pieceID)
		return false
	}

	if !gs.CanPlaceAt(pieceID, x, y, rotation, "") {
		gs.Message = fmt.Sprintf("Can't place %s at (%d,%d)", pieceID, x, y)
		if config.Messages.CannotPlace != "" {
			gs.Message = config.Messages.CannotPlace + fmt.Sprintf(" [%s at (%d,%d)]", pieceID, x, y)
		}
		return false
	}

	placed := PlacedPiece{
		PieceID:  pieceID,
		ShapeID:  gs.Pieces[pieceID].ShapeID,
		Position: Position{X: x, Y: y},
		Rotation: ((rotation % RotationSteps) + RotationSteps) % RotationSteps,
	}
	gs.stampPiece(placed)
	gs.PlacedPieces = append(gs.PlacedPieces, placed)
	gs.takeFromAvailable(pieceID)
	gs.TotalMoves++

	gs.Message = fmt.Sprintf("Placed %s at (%d,%d)", pieceID, x, y)
	if config.Messages.PiecePlaced != "" {
		gs.Message = fmt.Sprintf(config.Messages.PiecePlaced, pieceID)
	}

	if gs.CheckWinCondition() {
		gs.Complete = true
		gs.Message = fmt.Sprintf(config.Messages.Victory, gs.TotalMoves)
	} else if config.Messages.BoardStatus != "" {
		filled := CountFilledCells(gs.Grid)
		gs.Message = fmt.Sprintf(config.Messages.BoardStatus, filled, gs.BoardSize*gs.BoardSize)
	}

	return true
}

// RemovePiece takes a piece back off the board. Removing an absent piece is
// a no-op returning false; starter pieces are refused. Removal is a
// take-back and does not count as a move.
func (gs *GameState) RemovePiece(pieceID string, config *PuzzleConfig) bool {
	placed := gs.FindPlacedPiece(pieceID)
	if placed == nil {
		return false
	}
	if gs.IsStarterPiece(pieceID) {
		gs.Message = fmt.Sprintf("Piece %s is part of the puzzle and can't move", pieceID)
		if config.Messages.StarterLocked != "" {
			gs.Message = config.Messages.StarterLocked
		}
		return false
	}

	gs.clearPiece(pieceID)
	gs.deletePlacedRecord(pieceID)
	gs.returnToAvailable(pieceID)
	gs.Complete = false

	gs.Message = fmt.Sprintf("Removed %s", pieceID)
	if config.Messages.PieceRemoved != "" {
		gs.Message = fmt.Sprintf(config.Messages.PieceRemoved, pieceID)
	}
	return true
}

// RotatePieceInPlace turns a placed piece one quarter turn clockwise around
// its anchor. If the rotated pattern no longer fits (the bounding box can
// grow past a board edge), the piece is restored in its original
// orientation; a failed rotation never leaves the piece off the board.
// Successful rotation counts as a move.
func (gs *GameState) RotatePieceInPlace(pieceID string, config *PuzzleConfig) bool {
	placed := gs.FindPlacedPiece(pieceID)
	if placed == nil {
		return false
	}
	if gs.IsStarterPiece(pieceID) {
		gs.Message = fmt.Sprintf("Piece %s is part of the puzzle and can't rotate", pieceID)
		if config.Messages.StarterLocked != "" {
			gs.Message = config.Messages.StarterLocked
		}
		return false
	}

	original := *placed
	newRotation := (original.Rotation + 1) % RotationSteps

	gs.clearPiece(pieceID)

	if !gs.CanPlaceAt(pieceID, original.Position.X, original.Position.Y, newRotation, "") {
		// Rollback: restore the original orientation
		gs.stampPiece(original)
		gs.Message = fmt.Sprintf("Can't rotate %s here", pieceID)
		if config.Messages.CannotRotate != "" {
			gs.Message = config.Messages.CannotRotate
		}
		return false
	}

	placed.Rotation = newRotation
	gs.stampPiece(*placed)
	gs.TotalMoves++

	gs.Message = fmt.Sprintf("Rotated %s", pieceID)
	if config.Messages.PieceRotated != "" {
		gs.Message = fmt.Sprintf(config.Messages.PieceRotated, pieceID)
	}
	return true
}

// MovePiece relocates a piece already on the board to a new position and
// rotation in one step. Like RotatePieceInPlace it rolls back to the
// original placement when the target is invalid, so the board never ends up
// with the piece missing. The piece's own footprint does not block the move.
func (gs *GameState) MovePiece(pieceID string, x, y, rotation int, config *PuzzleConfig) bool {
	placed := gs.FindPlacedPiece(pieceID)
	if placed == nil {
		return false
	}
	if gs.IsStarterPiece(pieceID) {
		gs.Message = fmt.Sprintf("Piece %s is part of the puzzle and can't move", pieceID)
		if config.Messages.StarterLocked != "" {
			gs.Message = config.Messages.StarterLocked
		}
		return false
	}

	original := *placed
	gs.clearPiece(pieceID)

	if !gs.CanPlaceAt(pieceID, x, y, rotation, "") {
		gs.stampPiece(original)
		gs.Message = fmt.Sprintf("Can't move %s to (%d,%d)", pieceID, x, y)
		if config.Messages.CannotPlace != "" {
			gs.Message = config.Messages.CannotPlace + fmt.Sprintf(" [%s at (%d,%d)]", pieceID, x, y)
		}
		return false
	}

	placed.Position = Position{X: x, Y: y}
	placed.Rotation = ((rotation % RotationSteps) + RotationSteps) % RotationSteps
	gs.stampPiece(*placed)
	gs.TotalMoves++

	gs.Message = fmt.Sprintf("Moved %s to (%d,%d)", pieceID, x, y)
	if config.Messages.PiecePlaced != "" {
		gs.Message = fmt.Sprintf(config.Messages.PiecePlaced, pieceID)
	}

	if gs.CheckWinCondition() {
		gs.Complete = true
		gs.Message = fmt.Sprintf(config.Messages.Victory, gs.TotalMoves)
	}
	return true
}

// ElapsedSeconds returns the wall-clock seconds since the puzzle started.
func (gs *GameState) ElapsedSeconds() int64 {
	if gs.StartedAt == 0 {
		return 0
	}
	return time.Now().Unix() - gs.StartedAt
}

// AddMoveToHistory records an attempted operation in the history. Both the
// cumulative history and the current segment receive the entry; only the
// segment is cleared on reset.
func (gs *GameState) AddMoveToHistory(action, pieceID string, pos Position, rotation int, success bool) {
	entry := MoveHistoryEntry{
		Action:     action,
		PieceID:    pieceID,
		Position:   pos,
		Rotation:   rotation,
		Success:    success,
		Timestamp:  time.Now().Unix(),
		MoveNumber: len(gs.MoveHistory) + 1,
	}
	gs.MoveHistory = append(gs.MoveHistory, entry)

	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}
