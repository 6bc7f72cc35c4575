package service

import (
	"time"

	"github.com/rmarchese/polyfit/game/engine"
)

// SessionInfo provides information about a puzzle session
type SessionInfo struct {
	ID             string               `json:"id"`
	PuzzleName     string               `json:"puzzle_name"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	GameState      *engine.GameState    `json:"game_state"`
	PuzzleConfig   *engine.PuzzleConfig `json:"puzzle_config"`
}

// PlacementResult contains the result of a board operation
type PlacementResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`

	// Operation snapshot
	Action   string          `json:"action"`
	PieceID  string          `json:"piece_id"`
	Position engine.Position `json:"position"`
	Rotation int             `json:"rotation"`

	// Board aids for callers picking the next move
	FilledCells  int   `json:"filled_cells"`
	TotalCells   int   `json:"total_cells"`
	EmptyRegions []int `json:"empty_regions,omitempty"`
	DeadEnd      bool  `json:"dead_end"`
	Complete     bool  `json:"complete"`

	// Failure diagnostics
	Attempted *AttemptInfo `json:"attempted,omitempty"`
}

// AttemptInfo details a rejected board operation
type AttemptInfo struct {
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Rotation   int    `json:"rotation"`
	ReasonCode string `json:"reason_code"` // unknown_piece|already_placed|not_placed|out_of_bounds|overlap|starter_locked|would_not_fit
	Reason     string `json:"reason"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "place", "remove", "rotate", "move", "victory", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	PieceID   string          `json:"piece_id,omitempty"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// PuzzleInfo provides information about a puzzle definition
type PuzzleInfo struct {
	Filename    string `json:"filename"`
	PuzzleID    string `json:"puzzle_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	BoardSize   int    `json:"board_size"`
	PieceCount  int    `json:"piece_count"`
}

// ShapeInfo describes one catalog shape for clients rendering a tray
type ShapeInfo struct {
	ID    engine.ShapeID `json:"id"`
	Cells int            `json:"cells"`
	Color string         `json:"color"`
	Rows  []string       `json:"rows"`
}
