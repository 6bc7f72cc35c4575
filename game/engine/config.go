package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ValidatePuzzleConfig validates a puzzle definition for correctness and
// playability before a board is built from it.
func ValidatePuzzleConfig(config *PuzzleConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate board size
	if config.BoardSize < MinBoardSize || config.BoardSize > MaxBoardSize {
		return fmt.Errorf("config validation: board_size must be between %d and %d, got %d",
			MinBoardSize, MaxBoardSize, config.BoardSize)
	}

	if len(config.AvailablePieces) == 0 {
		return fmt.Errorf("config validation: at least one available piece is required")
	}

	// Validate piece ids are unique and shapes known, and total the board area
	seen := make(map[string]bool)
	totalCells := 0

	for i, starter := range config.StarterPieces {
		if starter.ID == "" {
			return fmt.Errorf("config validation: starter piece %d has no id", i)
		}
		if seen[starter.ID] {
			return fmt.Errorf("config validation: duplicate piece id %q", starter.ID)
		}
		seen[starter.ID] = true

		shape, err := LookupShape(starter.ShapeID)
		if err != nil {
			return fmt.Errorf("config validation: starter piece %q: %w", starter.ID, err)
		}
		if starter.Rotation < 0 || starter.Rotation >= RotationSteps {
			return fmt.Errorf("config validation: starter piece %q has rotation %d, must be 0-%d",
				starter.ID, starter.Rotation, RotationSteps-1)
		}
		totalCells += PatternCellCount(shape.Pattern)
	}

	for i, piece := range config.AvailablePieces {
		if piece.ID == "" {
			return fmt.Errorf("config validation: available piece %d has no id", i)
		}
		if seen[piece.ID] {
			return fmt.Errorf("config validation: duplicate piece id %q", piece.ID)
		}
		seen[piece.ID] = true

		shape, err := LookupShape(piece.ShapeID)
		if err != nil {
			return fmt.Errorf("config validation: available piece %q: %w", piece.ID, err)
		}
		totalCells += PatternCellCount(shape.Pattern)
	}

	boardArea := config.BoardSize * config.BoardSize
	if totalCells != boardArea {
		return fmt.Errorf("config validation: pieces cover %d cells but the board has %d",
			totalCells, boardArea)
	}

	// Validate starter placements: in bounds and non-overlapping
	occupied := make(map[Position]string)
	for _, starter := range config.StarterPieces {
		shape, _ := LookupShape(starter.ShapeID)
		pattern := RotatePattern(shape.Pattern, starter.Rotation)
		width := PatternWidth(pattern)
		height := PatternHeight(pattern)

		if starter.X < 0 || starter.Y < 0 ||
			starter.X+width > config.BoardSize || starter.Y+height > config.BoardSize {
			return fmt.Errorf("config validation: starter piece %q at (%d,%d) runs off the board",
				starter.ID, starter.X, starter.Y)
		}

		for r, row := range pattern {
			for c, occ := range row {
				if !occ {
					continue
				}
				cell := Position{X: starter.X + c, Y: starter.Y + r}
				if other, taken := occupied[cell]; taken {
					return fmt.Errorf("config validation: starter pieces %q and %q overlap at (%d,%d)",
						other, starter.ID, cell.X, cell.Y)
				}
				occupied[cell] = starter.ID
			}
		}
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}
	if !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("config validation: messages.victory must contain %%d for the move count")
	}
	if config.Messages.PiecePlaced != "" && !strings.Contains(config.Messages.PiecePlaced, "%s") {
		return fmt.Errorf("config validation: messages.piece_placed must contain %%s for the piece id")
	}
	if config.Messages.BoardStatus != "" && strings.Count(config.Messages.BoardStatus, "%d") != 2 {
		return fmt.Errorf("config validation: messages.board_status must contain %%d twice for filled/total cells")
	}

	return nil
}

// LoadPuzzleConfig loads a puzzle definition from a JSON file
func LoadPuzzleConfig(filename string) (*PuzzleConfig, error) {
	// Support CONFIG_DIR environment variable for alternative puzzle directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "puzzles/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "puzzles/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidatePuzzleConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadPuzzleByName loads a puzzle definition by name from the puzzles directory
func LoadPuzzleByName(name string) (*PuzzleConfig, error) {
	if !strings.HasSuffix(name, ".json") {
		name = name + ".json"
	}

	configPath := filepath.Join("puzzles", name)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("puzzle file '%s' not found", name)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzle file '%s': %v", name, err)
	}

	var config PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse puzzle file '%s': %v", name, err)
	}

	if err := ValidatePuzzleConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid puzzle '%s': %v", name, err)
	}

	return &config, nil
}

// DefaultPuzzleConfig returns the built-in puzzle used when no config is
// provided: an 8×8 board split between squares and bars, with three pieces
// pre-placed.
func DefaultPuzzleConfig() *PuzzleConfig {
	config := &PuzzleConfig{
		Name:        "Training Board",
		Description: "Built-in 8x8 warm-up puzzle of squares and bars",
		BoardSize:   8,
		StarterPieces: []StarterPlacement{
			{ID: "o1", ShapeID: ShapeTetO, X: 0, Y: 0, Rotation: 0},
			{ID: "o2", ShapeID: ShapeTetO, X: 2, Y: 0, Rotation: 0},
			{ID: "i1", ShapeID: ShapeTetI, X: 4, Y: 0, Rotation: 1},
		},
		AvailablePieces: []PieceSpec{
			{ID: "o3", ShapeID: ShapeTetO},
			{ID: "o4", ShapeID: ShapeTetO},
			{ID: "o5", ShapeID: ShapeTetO},
			{ID: "o6", ShapeID: ShapeTetO},
			{ID: "o7", ShapeID: ShapeTetO},
			{ID: "o8", ShapeID: ShapeTetO},
			{ID: "i2", ShapeID: ShapeTetI},
			{ID: "i3", ShapeID: ShapeTetI},
			{ID: "i4", ShapeID: ShapeTetI},
			{ID: "i5", ShapeID: ShapeTetI},
			{ID: "i6", ShapeID: ShapeTetI},
			{ID: "i7", ShapeID: ShapeTetI},
			{ID: "i8", ShapeID: ShapeTetI},
		},
	}
	config.Messages = PuzzleMessages{
		Welcome:       "Fill the board! Drag pieces from the tray, rotate to fit.",
		PiecePlaced:   "Placed %s",
		PieceRemoved:  "Returned %s to the tray",
		PieceRotated:  "Rotated %s",
		CannotPlace:   "That piece doesn't fit there",
		CannotRotate:  "No room to rotate here",
		StarterLocked: "That piece is part of the puzzle",
		Victory:       "Board complete in %d moves!",
		BoardStatus:   "Filled %d/%d cells",
	}
	return config
}

// InitGameStateFromConfig creates a new game state using the provided
// puzzle definition. Starter pieces are stamped into the grid; a starter
// that would overlap or run off the board is skipped rather than allowed to
// corrupt the grid (the data source is trusted, but not blindly).
func InitGameStateFromConfig(config *PuzzleConfig) *GameState {
	if config == nil {
		config = DefaultPuzzleConfig()
	}

	boardSize := config.BoardSize
	grid := make([][]string, boardSize)
	for i := range grid {
		grid[i] = make([]string, boardSize)
	}

	gs := &GameState{
		BoardSize:         boardSize,
		Grid:              grid,
		PlacedPieces:      []PlacedPiece{},
		Pieces:            make(map[string]PieceInfo),
		AvailablePieces:   []string{},
		Message:           config.Messages.Welcome,
		Complete:          false,
		ConfigName:        config.Name,
		MoveHistory:       []MoveHistoryEntry{},
		TotalMoves:        0,
		StartedAt:         time.Now().Unix(),
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}

	for _, starter := range config.StarterPieces {
		gs.Pieces[starter.ID] = PieceInfo{ID: starter.ID, ShapeID: starter.ShapeID, Starter: true}

		if !gs.CanPlaceAt(starter.ID, starter.X, starter.Y, starter.Rotation, "") {
			continue
		}
		placed := PlacedPiece{
			PieceID:  starter.ID,
			ShapeID:  starter.ShapeID,
			Position: Position{X: starter.X, Y: starter.Y},
			Rotation: starter.Rotation,
		}
		gs.stampPiece(placed)
		gs.PlacedPieces = append(gs.PlacedPieces, placed)
	}

	for _, piece := range config.AvailablePieces {
		gs.Pieces[piece.ID] = PieceInfo{ID: piece.ID, ShapeID: piece.ShapeID, Starter: false}
		gs.AvailablePieces = append(gs.AvailablePieces, piece.ID)
	}

	return gs
}
