package engine

import "fmt"

// Engine provides the main interface for board operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsComplete() bool
	GetMoves() int
	GetBoardSize() int

	// Placement operations
	PlacePiece(pieceID string, x, y, rotation int) bool
	RemovePiece(pieceID string) bool
	RotatePiece(pieceID string) bool
	MovePiece(pieceID string, x, y, rotation int) bool
	CanPlaceAt(pieceID string, x, y, rotation int, ignorePieceID string) bool
	IsStarterPiece(pieceID string) bool

	// Configuration
	GetConfig() *PuzzleConfig
	SetConfig(config *PuzzleConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Inventory
	GetAvailablePieces() []string
	GetPlacedPieces() []PlacedPiece
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *PuzzleConfig
}

// NewEngine creates a new game engine with the provided puzzle definition
func NewEngine(config *PuzzleConfig) (*GameEngine, error) {
	if err := ValidatePuzzleConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the built-in puzzle
func NewEngineWithDefaults() *GameEngine {
	config := DefaultPuzzleConfig()
	return &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	e.state = state
	return nil
}

// Reset resets the board to its starter layout
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = InitGameStateFromConfig(e.config)

	// Restore cumulative history and totals; clear only the current segment
	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	return e.state
}

// IsComplete returns whether the board is fully covered
func (e *GameEngine) IsComplete() bool {
	return e.state.Complete
}

// GetMoves returns the number of successful moves so far
func (e *GameEngine) GetMoves() int {
	return e.state.TotalMoves
}

// GetBoardSize returns the board edge length in cells
func (e *GameEngine) GetBoardSize() int {
	return e.state.BoardSize
}

// PlacePiece attempts to place a piece and records the attempt in history
func (e *GameEngine) PlacePiece(pieceID string, x, y, rotation int) bool {
	if e.config == nil {
		return false
	}

	success := e.state.PlacePiece(pieceID, x, y, rotation, e.config)
	e.state.AddMoveToHistory(ActionPlace, pieceID, Position{X: x, Y: y}, rotation, success)
	return success
}

// RemovePiece takes a piece back to the tray and records the attempt
func (e *GameEngine) RemovePiece(pieceID string) bool {
	if e.config == nil {
		return false
	}

	var pos Position
	if placed := e.state.FindPlacedPiece(pieceID); placed != nil {
		pos = placed.Position
	}
	success := e.state.RemovePiece(pieceID, e.config)
	e.state.AddMoveToHistory(ActionRemove, pieceID, pos, 0, success)
	return success
}

// RotatePiece rotates a placed piece in place and records the attempt
func (e *GameEngine) RotatePiece(pieceID string) bool {
	if e.config == nil {
		return false
	}

	var pos Position
	rotation := 0
	if placed := e.state.FindPlacedPiece(pieceID); placed != nil {
		pos = placed.Position
		rotation = (placed.Rotation + 1) % RotationSteps
	}
	success := e.state.RotatePieceInPlace(pieceID, e.config)
	e.state.AddMoveToHistory(ActionRotate, pieceID, pos, rotation, success)
	return success
}

// MovePiece relocates a placed piece and records the attempt
func (e *GameEngine) MovePiece(pieceID string, x, y, rotation int) bool {
	if e.config == nil {
		return false
	}

	success := e.state.MovePiece(pieceID, x, y, rotation, e.config)
	e.state.AddMoveToHistory(ActionMove, pieceID, Position{X: x, Y: y}, rotation, success)
	return success
}

// CanPlaceAt checks placement legality without mutating the board
func (e *GameEngine) CanPlaceAt(pieceID string, x, y, rotation int, ignorePieceID string) bool {
	return e.state.CanPlaceAt(pieceID, x, y, rotation, ignorePieceID)
}

// IsStarterPiece reports whether the piece is fixed by the puzzle
func (e *GameEngine) IsStarterPiece(pieceID string) bool {
	return e.state.IsStarterPiece(pieceID)
}

// GetConfig returns the current puzzle definition
func (e *GameEngine) GetConfig() *PuzzleConfig {
	return e.config
}

// SetConfig sets a new puzzle definition and resets the board
func (e *GameEngine) SetConfig(config *PuzzleConfig) error {
	if err := ValidatePuzzleConfig(config); err != nil {
		return err
	}

	e.config = config
	e.state = InitGameStateFromConfig(config)
	return nil
}

// GetMoveHistory returns the complete cumulative history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last attempted operation, or nil if none
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// GetAvailablePieces returns the ids still in the tray
func (e *GameEngine) GetAvailablePieces() []string {
	return e.state.AvailablePieces
}

// GetPlacedPieces returns the pieces currently on the board
func (e *GameEngine) GetPlacedPieces() []PlacedPiece {
	return e.state.PlacedPieces
}
