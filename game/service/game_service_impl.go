package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rmarchese/polyfit/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	puzzles  PuzzleManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, puzzles PuzzleManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		puzzles:  puzzles,
	}
}

// getPuzzleID returns the puzzle_id for a given display name, used for consistent API responses
func (s *gameServiceImpl) getPuzzleID(puzzleName string) string {
	availablePuzzles, err := s.puzzles.ListPuzzles()
	if err == nil {
		for _, p := range availablePuzzles {
			if p.Name == puzzleName {
				return p.PuzzleID
			}
		}
	}
	// Fallback: return as-is or "default"
	if puzzleName == "" {
		return "default"
	}
	return puzzleName
}

// CreateSession creates a new puzzle session
func (s *gameServiceImpl) CreateSession(ctx context.Context, puzzleName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load puzzle definition
	var config *engine.PuzzleConfig
	var err error
	if puzzleName != "" {
		config, err = s.puzzles.LoadPuzzle(puzzleName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "puzzle not found") {
				availablePuzzles, listErr := s.puzzles.ListPuzzles()
				if listErr == nil && len(availablePuzzles) > 0 {
					var puzzleIDs []string
					for _, p := range availablePuzzles {
						puzzleIDs = append(puzzleIDs, p.PuzzleID)
					}
					return nil, fmt.Errorf("puzzle '%s' not found. Available puzzles: %v", puzzleName, puzzleIDs)
				}
				return nil, fmt.Errorf("puzzle '%s' not found. Use /api/puzzles to list available puzzles", puzzleName)
			}
			return nil, fmt.Errorf("failed to load puzzle %s: %w", puzzleName, err)
		}
	} else {
		config = s.puzzles.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Prefer the input puzzleName if provided, otherwise look up the
	// puzzle_id by display name
	puzzleID := puzzleName
	if puzzleID == "" {
		puzzleID = s.getPuzzleID(config.Name)
	}

	return &SessionInfo{
		ID:             session.ID,
		PuzzleName:     puzzleID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		PuzzleConfig:   session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return &SessionInfo{
		ID:             session.ID,
		PuzzleName:     s.getPuzzleID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		PuzzleConfig:   session.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			PuzzleName:     s.getPuzzleID(sess.Config.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			GameState:      sess.Engine.GetState(),
			PuzzleConfig:   sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// PlacePiece places a tray piece on the board
func (s *gameServiceImpl) PlacePiece(ctx context.Context, sessionID, pieceID string, x, y, rotation int) (*PlacementResult, error) {
	return s.boardOperation(sessionID, engine.ActionPlace, pieceID, x, y, rotation)
}

// RemovePiece takes a placed piece back to the tray
func (s *gameServiceImpl) RemovePiece(ctx context.Context, sessionID, pieceID string) (*PlacementResult, error) {
	return s.boardOperation(sessionID, engine.ActionRemove, pieceID, 0, 0, 0)
}

// RotatePiece rotates a placed piece a quarter turn clockwise in place
func (s *gameServiceImpl) RotatePiece(ctx context.Context, sessionID, pieceID string) (*PlacementResult, error) {
	return s.boardOperation(sessionID, engine.ActionRotate, pieceID, 0, 0, 0)
}

// MovePiece relocates a placed piece to a new position
func (s *gameServiceImpl) MovePiece(ctx context.Context, sessionID, pieceID string, x, y, rotation int) (*PlacementResult, error) {
	return s.boardOperation(sessionID, engine.ActionMove, pieceID, x, y, rotation)
}

// boardOperation runs one board mutation and builds the enriched result
func (s *gameServiceImpl) boardOperation(sessionID, action, pieceID string, x, y, rotation int) (*PlacementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	wasComplete := sess.Engine.IsComplete()

	var success bool
	switch action {
	case engine.ActionPlace:
		success = sess.Engine.PlacePiece(pieceID, x, y, rotation)
	case engine.ActionRemove:
		if placed := sess.Engine.GetState().FindPlacedPiece(pieceID); placed != nil {
			x, y = placed.Position.X, placed.Position.Y
			rotation = placed.Rotation
		}
		success = sess.Engine.RemovePiece(pieceID)
	case engine.ActionRotate:
		if placed := sess.Engine.GetState().FindPlacedPiece(pieceID); placed != nil {
			x, y = placed.Position.X, placed.Position.Y
			rotation = (placed.Rotation + 1) % engine.RotationSteps
		}
		success = sess.Engine.RotatePiece(pieceID)
	case engine.ActionMove:
		success = sess.Engine.MovePiece(pieceID, x, y, rotation)
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}

	state := sess.Engine.GetState()
	result := &PlacementResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
		Action:    action,
		PieceID:   pieceID,
		Position:  engine.Position{X: x, Y: y},
		Rotation:  rotation,
		Complete:  state.Complete,
	}
	enrichResult(result, state)

	if success {
		result.Events = append(result.Events, GameEvent{
			Type:      action,
			Message:   state.Message,
			Timestamp: time.Now(),
			PieceID:   pieceID,
			Position:  engine.Position{X: x, Y: y},
		})
		if state.Complete && !wasComplete {
			result.Events = append(result.Events, GameEvent{
				Type:      "victory",
				Message:   state.Message,
				Timestamp: time.Now(),
			})
		}
	} else {
		result.Attempted = classifyFailure(state, action, pieceID, x, y, rotation)
	}

	// Auto-save session after board operations
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after %s: %v\n", sessionID, action, err)
	}

	return result, nil
}

// Reset resets a puzzle session to its starter layout
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset()

	// Auto-save session after reset
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after reset: %v\n", sessionID, err)
	}

	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	// Get the slice of moves
	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else {
		// Normal chronological order
		if start < total {
			moves = history[start:end]
		}
	}

	// Ensure moves is not nil
	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListShapes returns the full shape catalog
func (s *gameServiceImpl) ListShapes(ctx context.Context) ([]*ShapeInfo, error) {
	ids := engine.ShapeIDs()
	result := make([]*ShapeInfo, 0, len(ids))
	for _, id := range ids {
		shape, err := engine.LookupShape(id)
		if err != nil {
			continue
		}
		result = append(result, &ShapeInfo{
			ID:    shape.ID,
			Cells: engine.PatternCellCount(shape.Pattern),
			Color: shape.Color,
			Rows:  patternRows(shape.Pattern),
		})
	}
	return result, nil
}

// ListPuzzles returns available puzzle definitions
func (s *gameServiceImpl) ListPuzzles(ctx context.Context) ([]*PuzzleInfo, error) {
	return s.puzzles.ListPuzzles()
}

// LoadPuzzle loads a specific puzzle definition
func (s *gameServiceImpl) LoadPuzzle(ctx context.Context, puzzleName string) (*engine.PuzzleConfig, error) {
	return s.puzzles.LoadPuzzle(puzzleName)
}

// SavePuzzle saves a puzzle definition to disk
func (s *gameServiceImpl) SavePuzzle(ctx context.Context, puzzleName string, config *engine.PuzzleConfig) error {
	return s.puzzles.SavePuzzle(puzzleName, config)
}

// enrichResult fills the board aids shared by every operation result
func enrichResult(result *PlacementResult, state *engine.GameState) {
	result.FilledCells = engine.CountFilledCells(state.Grid)
	result.TotalCells = state.BoardSize * state.BoardSize
	result.EmptyRegions = engine.EmptyRegions(state.Grid)
	result.DeadEnd = engine.HasDeadRegion(state)
}

// classifyFailure determines why a board operation was rejected
func classifyFailure(state *engine.GameState, action, pieceID string, x, y, rotation int) *AttemptInfo {
	attempt := &AttemptInfo{X: x, Y: y, Rotation: rotation}

	piece, known := state.Pieces[pieceID]
	if !known {
		attempt.ReasonCode = "unknown_piece"
		attempt.Reason = fmt.Sprintf("no piece %q in this puzzle", pieceID)
		return attempt
	}

	if state.IsStarterPiece(pieceID) {
		attempt.ReasonCode = "starter_locked"
		attempt.Reason = fmt.Sprintf("piece %q is part of the puzzle and cannot be changed", pieceID)
		return attempt
	}

	placed := state.FindPlacedPiece(pieceID)
	switch action {
	case engine.ActionPlace:
		if placed != nil {
			attempt.ReasonCode = "already_placed"
			attempt.Reason = fmt.Sprintf("piece %q is already on the board, move or remove it instead", pieceID)
			return attempt
		}
	case engine.ActionRemove, engine.ActionRotate, engine.ActionMove:
		if placed == nil {
			attempt.ReasonCode = "not_placed"
			attempt.Reason = fmt.Sprintf("piece %q is not on the board", pieceID)
			return attempt
		}
	}

	if action == engine.ActionRotate {
		attempt.ReasonCode = "would_not_fit"
		attempt.Reason = fmt.Sprintf("piece %q cannot rotate at its current position", pieceID)
		return attempt
	}

	// Place or move rejected by the validator: out of bounds vs overlap
	shape, err := engine.LookupShape(piece.ShapeID)
	if err == nil {
		pattern := engine.RotatePattern(shape.Pattern, rotation)
		if x < 0 || y < 0 ||
			x+engine.PatternWidth(pattern) > state.BoardSize ||
			y+engine.PatternHeight(pattern) > state.BoardSize {
			attempt.ReasonCode = "out_of_bounds"
			attempt.Reason = fmt.Sprintf("piece %q at (%d,%d) runs off the board", pieceID, x, y)
			return attempt
		}
	}

	attempt.ReasonCode = "overlap"
	attempt.Reason = fmt.Sprintf("piece %q at (%d,%d) overlaps another piece", pieceID, x, y)
	return attempt
}

// patternRows renders a pattern as strings for JSON transport
func patternRows(p engine.Pattern) []string {
	rows := make([]string, 0, len(p))
	for _, row := range p {
		var b strings.Builder
		for _, occ := range row {
			if occ {
				b.WriteByte('X')
			} else {
				b.WriteByte('.')
			}
		}
		rows = append(rows, b.String())
	}
	return rows
}
