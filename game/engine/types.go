package engine

// ShapeID identifies a shape in the static catalog.
type ShapeID string

// Pattern is a rectangular occupancy matrix, row-major, true = occupied.
type Pattern [][]bool

const (
	// Validation constants
	DefaultBoardSize = 8
	MinBoardSize     = 4
	MaxBoardSize     = 16
	RotationSteps    = 4

	// Screen-space defaults for the coordinate system
	DefaultCellSize      = 64
	MinCellSize          = 24
	DefaultBorderWidth   = 2
	DefaultGridLineWidth = 1
	DefaultCellPadding   = 3

	WebSocketBufferSize = 256
)

// Move history actions
const (
	ActionPlace  = "place"
	ActionRemove = "remove"
	ActionRotate = "rotate"
	ActionMove   = "move"
)

// Shape is an immutable catalog entry: occupancy pattern plus a color tag.
type Shape struct {
	ID      ShapeID `json:"id"`
	Pattern Pattern `json:"pattern"`
	Color   string  `json:"color"`
}

// Position represents x,y grid coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PlacedPiece binds a piece instance to a board position and rotation.
// Position is the top-left cell of the rotated pattern's bounding box;
// Rotation counts quarter turns clockwise (0-3).
type PlacedPiece struct {
	PieceID  string   `json:"piece_id"`
	ShapeID  ShapeID  `json:"shape_id"`
	Position Position `json:"position"`
	Rotation int      `json:"rotation"`
}

// PieceSpec declares a piece instance available in a puzzle.
type PieceSpec struct {
	ID      string  `json:"id"`
	ShapeID ShapeID `json:"shape_id"`
}

// StarterPlacement fixes a piece on the board as part of the puzzle
// definition. Starter pieces are immovable and non-rotatable.
type StarterPlacement struct {
	ID       string  `json:"id"`
	ShapeID  ShapeID `json:"shape_id"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Rotation int     `json:"rotation"`
}

// PuzzleMessages holds the user-facing strings a puzzle config provides.
type PuzzleMessages struct {
	Welcome       string `json:"welcome"`
	PiecePlaced   string `json:"piece_placed"`
	PieceRemoved  string `json:"piece_removed"`
	PieceRotated  string `json:"piece_rotated"`
	CannotPlace   string `json:"cannot_place"`
	CannotRotate  string `json:"cannot_rotate"`
	StarterLocked string `json:"starter_locked"`
	Victory       string `json:"victory"`
	BoardStatus   string `json:"board_status"`
}

// PuzzleConfig represents a puzzle definition from JSON
type PuzzleConfig struct {
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	BoardSize       int                `json:"board_size"`
	StarterPieces   []StarterPlacement `json:"starter_pieces"`
	AvailablePieces []PieceSpec        `json:"available_pieces"`
	Messages        PuzzleMessages     `json:"messages"`
}

// PieceInfo is the per-piece record kept in the game state.
type PieceInfo struct {
	ID      string  `json:"id"`
	ShapeID ShapeID `json:"shape_id"`
	Starter bool    `json:"starter"`
}

// GameState represents the complete board state.
//
// Grid is a derived, consistent cache of PlacedPieces: a cell holds the id
// of the piece covering it, or "" when empty. Every mutating operation must
// keep the two in sync, including on failure paths.
type GameState struct {
	BoardSize       int                  `json:"board_size"`
	Grid            [][]string           `json:"grid"`
	PlacedPieces    []PlacedPiece        `json:"placed_pieces"`
	Pieces          map[string]PieceInfo `json:"pieces"`
	AvailablePieces []string             `json:"available_pieces"`
	Message         string               `json:"message"`
	Complete        bool                 `json:"complete"`
	ConfigName      string               `json:"config_name"`
	MoveHistory     []MoveHistoryEntry   `json:"move_history"`
	TotalMoves      int                  `json:"total_moves"`
	StartedAt       int64                `json:"started_at"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors
	// MoveHistory entries but gets cleared on reset while MoveHistory
	// remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// MoveHistoryEntry represents a single attempted operation in the history
type MoveHistoryEntry struct {
	Action     string   `json:"action"`
	PieceID    string   `json:"piece_id"`
	Position   Position `json:"position"`
	Rotation   int      `json:"rotation"`
	Success    bool     `json:"success"`
	Timestamp  int64    `json:"timestamp"`
	MoveNumber int      `json:"move_number"`
}
