package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	gws "github.com/gorilla/websocket"
	"github.com/rmarchese/polyfit/game/engine"
	"github.com/rmarchese/polyfit/game/service"
	"github.com/rmarchese/polyfit/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, puzzleName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Board Operations
	PlacePieceFunc  func(ctx context.Context, sessionID, pieceID string, x, y, rotation int) (*service.PlacementResult, error)
	RemovePieceFunc func(ctx context.Context, sessionID, pieceID string) (*service.PlacementResult, error)
	RotatePieceFunc func(ctx context.Context, sessionID, pieceID string) (*service.PlacementResult, error)
	MovePieceFunc   func(ctx context.Context, sessionID, pieceID string, x, y, rotation int) (*service.PlacementResult, error)
	ResetFunc       func(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	ListShapesFunc     func(ctx context.Context) ([]*service.ShapeInfo, error)

	// Puzzle definitions
	ListPuzzlesFunc func(ctx context.Context) ([]*service.PuzzleInfo, error)
	LoadPuzzleFunc  func(ctx context.Context, puzzleName string) (*engine.PuzzleConfig, error)
	SavePuzzleFunc  func(ctx context.Context, puzzleName string, config *engine.PuzzleConfig) error
}

// Session Management
func (m *MockGameService) CreateSession(ctx context.Context, puzzleName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, puzzleName)
	}
	return &service.SessionInfo{
		ID:         "test-session",
		PuzzleName: puzzleName,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		PuzzleName: "test-puzzle",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Board Operations
func (m *MockGameService) PlacePiece(ctx context.Context, sessionID, pieceID string, x, y, rotation int) (*service.PlacementResult, error) {
	if m.PlacePieceFunc != nil {
		return m.PlacePieceFunc(ctx, sessionID, pieceID, x, y, rotation)
	}
	return &service.PlacementResult{
		Success:   true,
		GameState: &engine.GameState{},
	}, nil
}

func (m *MockGameService) RemovePiece(ctx context.Context, sessionID, pieceID string) (*service.PlacementResult, error) {
	if m.RemovePieceFunc != nil {
		return m.RemovePieceFunc(ctx, sessionID, pieceID)
	}
	return &service.PlacementResult{
		Success:   true,
		GameState: &engine.GameState{},
	}, nil
}

func (m *MockGameService) RotatePiece(ctx context.Context, sessionID, pieceID string) (*service.PlacementResult, error) {
	if m.RotatePieceFunc != nil {
		return m.RotatePieceFunc(ctx, sessionID, pieceID)
	}
	return &service.PlacementResult{
		Success:   true,
		GameState: &engine.GameState{},
	}, nil
}

func (m *MockGameService) MovePiece(ctx context.Context, sessionID, pieceID string, x, y, rotation int) (*service.PlacementResult, error) {
	if m.MovePieceFunc != nil {
		return m.MovePieceFunc(ctx, sessionID, pieceID, x, y, rotation)
	}
	return &service.PlacementResult{
		Success:   true,
		GameState: &engine.GameState{},
	}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

// Game State
func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Moves:      []engine.MoveHistoryEntry{},
		TotalMoves: 0,
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockGameService) ListShapes(ctx context.Context) ([]*service.ShapeInfo, error) {
	if m.ListShapesFunc != nil {
		return m.ListShapesFunc(ctx)
	}
	return []*service.ShapeInfo{}, nil
}

// Puzzle definitions
func (m *MockGameService) ListPuzzles(ctx context.Context) ([]*service.PuzzleInfo, error) {
	if m.ListPuzzlesFunc != nil {
		return m.ListPuzzlesFunc(ctx)
	}
	return []*service.PuzzleInfo{}, nil
}

func (m *MockGameService) LoadPuzzle(ctx context.Context, puzzleName string) (*engine.PuzzleConfig, error) {
	if m.LoadPuzzleFunc != nil {
		return m.LoadPuzzleFunc(ctx, puzzleName)
	}
	return &engine.PuzzleConfig{
		Name:        puzzleName,
		Description: "Test puzzle",
	}, nil
}

func (m *MockGameService) SavePuzzle(ctx context.Context, puzzleName string, config *engine.PuzzleConfig) error {
	if m.SavePuzzleFunc != nil {
		return m.SavePuzzleFunc(ctx, puzzleName, config)
	}
	return nil
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default puzzle",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, puzzleName string) (*service.SessionInfo, error) {
					return &service.SessionInfo{
						ID:             "sess-123",
						PuzzleName:     "classic",
						CreatedAt:      time.Now(),
						LastAccessedAt: time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with specific puzzle",
			requestBody: map[string]string{"puzzle_id": "easy"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, puzzleName string) (*service.SessionInfo, error) {
					if puzzleName != "easy" {
						t.Errorf("Expected puzzle name 'easy', got %s", puzzleName)
					}
					return &service.SessionInfo{
						ID:         "sess-456",
						PuzzleName: puzzleName,
						CreatedAt:  time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.PuzzleName != "easy" {
					t.Errorf("Expected puzzle name 'easy', got %s", resp.PuzzleName)
				}
			},
		},
		{
			name:        "Deprecated puzzle_name parameter still works",
			requestBody: map[string]string{"puzzle_name": "pentomino"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, puzzleName string) (*service.SessionInfo, error) {
					if puzzleName != "pentomino" {
						t.Errorf("Expected puzzle name 'pentomino', got %s", puzzleName)
					}
					return &service.SessionInfo{ID: "sess-789", PuzzleName: puzzleName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Handle service error",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, puzzleName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions", tt.requestBody)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "List multiple sessions",
			setupMock: func(m *MockGameService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) {
					return []*service.SessionInfo{
						{ID: "sess-1", PuzzleName: "easy"},
						{ID: "sess-2", PuzzleName: "classic"},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["count"].(float64) != 2 {
					t.Errorf("Expected count 2, got %v", resp["count"])
				}
				sessions := resp["sessions"].([]interface{})
				if len(sessions) != 2 {
					t.Errorf("Expected 2 sessions, got %d", len(sessions))
				}
			},
		},
		{
			name: "Handle empty session list",
			setupMock: func(m *MockGameService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) {
					return []*service.SessionInfo{}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["count"].(float64) != 0 {
					t.Errorf("Expected count 0, got %v", resp["count"])
				}
			},
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) {
					return nil, fmt.Errorf("database error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "database error" {
					t.Errorf("Expected error 'database error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/sessions", nil)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:      "Get existing session",
			sessionID: "sess-123",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					if sessionID != "sess-123" {
						return nil, fmt.Errorf("session not found")
					}
					return &service.SessionInfo{
						ID:         sessionID,
						PuzzleName: "test-puzzle",
						CreatedAt:  time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
			},
		},
		{
			name:      "Session not found",
			sessionID: "nonexistent",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "session not found" {
					t.Errorf("Expected error 'session not found', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/sessions/"+tt.sessionID, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleGetSession(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestDeleteSession(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:      "Delete existing session",
			sessionID: "sess-123",
			setupMock: func(m *MockGameService) {
				m.DeleteSessionFunc = func(ctx context.Context, sessionID string) error {
					if sessionID != "sess-123" {
						return fmt.Errorf("session not found")
					}
					return nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["message"] != "Session sess-123 deleted" {
					t.Errorf("Unexpected message: %s", resp["message"])
				}
			},
		},
		{
			name:      "Delete non-existent session",
			sessionID: "nonexistent",
			setupMock: func(m *MockGameService) {
				m.DeleteSessionFunc = func(ctx context.Context, sessionID string) error {
					return fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "session not found" {
					t.Errorf("Expected error 'session not found', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("DELETE", "/api/sessions/"+tt.sessionID, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleDeleteSession(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

// Board Operation Tests

func TestPlacePiece(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		requestBody    map[string]interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Valid placement",
			sessionID:   "sess-123",
			requestBody: map[string]interface{}{"piece_id": "t1", "x": 3, "y": 4, "rotation": 1},
			setupMock: func(m *MockGameService) {
				m.PlacePieceFunc = func(ctx context.Context, sessionID, pieceID string, x, y, rotation int) (*service.PlacementResult, error) {
					if pieceID != "t1" || x != 3 || y != 4 || rotation != 1 {
						t.Errorf("Unexpected args: piece=%s x=%d y=%d rot=%d", pieceID, x, y, rotation)
					}
					return &service.PlacementResult{
						Success:     true,
						Action:      "place",
						PieceID:     pieceID,
						Position:    engine.Position{X: x, Y: y},
						Rotation:    rotation,
						FilledCells: 16,
						TotalCells:  64,
						GameState:   &engine.GameState{BoardSize: 8},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.PlacementResult
				parseResponse(t, w, &resp)
				if !resp.Success {
					t.Error("Expected success to be true")
				}
				if resp.FilledCells != 16 {
					t.Errorf("Expected 16 filled cells, got %d", resp.FilledCells)
				}
			},
		},
		{
			name:        "Rejected placement carries diagnostics",
			sessionID:   "sess-123",
			requestBody: map[string]interface{}{"piece_id": "t1", "x": 7, "y": 7},
			setupMock: func(m *MockGameService) {
				m.PlacePieceFunc = func(ctx context.Context, sessionID, pieceID string, x, y, rotation int) (*service.PlacementResult, error) {
					return &service.PlacementResult{
						Success:   false,
						Action:    "place",
						PieceID:   pieceID,
						GameState: &engine.GameState{BoardSize: 8},
						Attempted: &service.AttemptInfo{
							X:          x,
							Y:          y,
							ReasonCode: "out_of_bounds",
							Reason:     "piece extends past the board edge",
						},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.PlacementResult
				parseResponse(t, w, &resp)
				if resp.Success {
					t.Error("Expected success to be false")
				}
				if resp.Attempted == nil || resp.Attempted.ReasonCode != "out_of_bounds" {
					t.Errorf("Expected out_of_bounds diagnostics, got %+v", resp.Attempted)
				}
			},
		},
		{
			name:        "Session not found",
			sessionID:   "nonexistent",
			requestBody: map[string]interface{}{"piece_id": "t1", "x": 0, "y": 0},
			setupMock: func(m *MockGameService) {
				m.PlacePieceFunc = func(ctx context.Context, sessionID, pieceID string, x, y, rotation int) (*service.PlacementResult, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "session not found" {
					t.Errorf("Expected error 'session not found', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions/"+tt.sessionID+"/place", tt.requestBody)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handlePlace(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestRemovePiece(t *testing.T) {
	mockService := &MockGameService{
		RemovePieceFunc: func(ctx context.Context, sessionID, pieceID string) (*service.PlacementResult, error) {
			if pieceID != "t1" {
				t.Errorf("Expected piece t1, got %s", pieceID)
			}
			return &service.PlacementResult{
				Success:   true,
				Action:    "remove",
				PieceID:   pieceID,
				GameState: &engine.GameState{BoardSize: 8},
			}, nil
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	req := makeRequest("POST", "/api/sessions/sess-123/remove", map[string]interface{}{"piece_id": "t1"})
	req = mux.SetURLVars(req, map[string]string{"id": "sess-123"})

	server.handleRemove(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp service.PlacementResult
	parseResponse(t, w, &resp)
	if resp.Action != "remove" {
		t.Errorf("Expected action 'remove', got %s", resp.Action)
	}
}

func TestRotatePiece(t *testing.T) {
	mockService := &MockGameService{
		RotatePieceFunc: func(ctx context.Context, sessionID, pieceID string) (*service.PlacementResult, error) {
			return &service.PlacementResult{
				Success:   true,
				Action:    "rotate",
				PieceID:   pieceID,
				Rotation:  2,
				GameState: &engine.GameState{BoardSize: 8},
			}, nil
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	req := makeRequest("POST", "/api/sessions/sess-123/rotate", map[string]interface{}{"piece_id": "i1"})
	req = mux.SetURLVars(req, map[string]string{"id": "sess-123"})

	server.handleRotate(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp service.PlacementResult
	parseResponse(t, w, &resp)
	if resp.Rotation != 2 {
		t.Errorf("Expected rotation 2, got %d", resp.Rotation)
	}
}

func TestMovePiece(t *testing.T) {
	mockService := &MockGameService{
		MovePieceFunc: func(ctx context.Context, sessionID, pieceID string, x, y, rotation int) (*service.PlacementResult, error) {
			if x != 5 || y != 2 {
				t.Errorf("Expected target (5,2), got (%d,%d)", x, y)
			}
			return &service.PlacementResult{
				Success:   true,
				Action:    "move",
				PieceID:   pieceID,
				Position:  engine.Position{X: x, Y: y},
				GameState: &engine.GameState{BoardSize: 8},
			}, nil
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	req := makeRequest("POST", "/api/sessions/sess-123/move", map[string]interface{}{"piece_id": "t1", "x": 5, "y": 2})
	req = mux.SetURLVars(req, map[string]string{"id": "sess-123"})

	server.handleMovePiece(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp service.PlacementResult
	parseResponse(t, w, &resp)
	if resp.Position.X != 5 || resp.Position.Y != 2 {
		t.Errorf("Expected position (5,2), got (%d,%d)", resp.Position.X, resp.Position.Y)
	}
}

func TestReset(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:      "Reset existing session",
			sessionID: "sess-123",
			setupMock: func(m *MockGameService) {
				m.ResetFunc = func(ctx context.Context, sessionID string) (*engine.GameState, error) {
					return &engine.GameState{
						BoardSize: 8,
						Complete:  false,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["message"] != "Board reset successfully" {
					t.Errorf("Expected success message, got %s", resp["message"])
				}
				state := resp["state"].(map[string]interface{})
				if state["board_size"].(float64) != 8 {
					t.Error("Expected board size 8 in reset state")
				}
			},
		},
		{
			name:      "Reset non-existent session",
			sessionID: "nonexistent",
			setupMock: func(m *MockGameService) {
				m.ResetFunc = func(ctx context.Context, sessionID string) (*engine.GameState, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "session not found" {
					t.Errorf("Expected error 'session not found', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions/"+tt.sessionID+"/reset", nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleReset(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Default pagination",
			sessionID:   "sess-123",
			queryParams: "",
			setupMock: func(m *MockGameService) {
				m.GetMoveHistoryFunc = func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					if opts.Page != 1 || opts.Limit != 20 {
						t.Errorf("Expected default page=1, limit=20, got page=%d, limit=%d", opts.Page, opts.Limit)
					}
					return &service.HistoryResponse{
						Moves: []engine.MoveHistoryEntry{
							{Action: "place", PieceID: "t1"},
							{Action: "rotate", PieceID: "t1"},
						},
						TotalMoves: 5,
						Page:       1,
						PageSize:   20,
						TotalPages: 1,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.HistoryResponse
				parseResponse(t, w, &resp)
				if resp.PageSize != 20 {
					t.Errorf("Expected page size 20, got %d", resp.PageSize)
				}
			},
		},
		{
			name:        "Custom pagination parameters",
			sessionID:   "sess-123",
			queryParams: "?page=2&limit=10&order=asc",
			setupMock: func(m *MockGameService) {
				m.GetMoveHistoryFunc = func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					if opts.Page != 2 || opts.Limit != 10 || opts.Order != "asc" {
						t.Errorf("Expected page=2, limit=10, order=asc, got page=%d, limit=%d, order=%s",
							opts.Page, opts.Limit, opts.Order)
					}
					return &service.HistoryResponse{
						Page:     2,
						PageSize: 10,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.HistoryResponse
				parseResponse(t, w, &resp)
				if resp.Page != 2 || resp.PageSize != 10 {
					t.Errorf("Expected page 2 with size 10, got page %d with size %d",
						resp.Page, resp.PageSize)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/sessions/"+tt.sessionID+"/history"+tt.queryParams, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleGetHistory(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetGameState(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:      "Get existing game state",
			sessionID: "sess-123",
			setupMock: func(m *MockGameService) {
				m.GetGameStateFunc = func(ctx context.Context, sessionID string) (*engine.GameState, error) {
					return &engine.GameState{
						BoardSize:  8,
						Complete:   false,
						TotalMoves: 25,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp engine.GameState
				parseResponse(t, w, &resp)
				if resp.BoardSize != 8 || resp.TotalMoves != 25 {
					t.Errorf("Expected board=8, moves=25, got board=%d, moves=%d", resp.BoardSize, resp.TotalMoves)
				}
			},
		},
		{
			name:      "Session not found",
			sessionID: "nonexistent",
			setupMock: func(m *MockGameService) {
				m.GetGameStateFunc = func(ctx context.Context, sessionID string) (*engine.GameState, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "session not found" {
					t.Errorf("Expected error 'session not found', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/sessions/"+tt.sessionID+"/state", nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleGetGameState(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListPuzzles(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "List available puzzles",
			setupMock: func(m *MockGameService) {
				m.ListPuzzlesFunc = func(ctx context.Context) ([]*service.PuzzleInfo, error) {
					return []*service.PuzzleInfo{
						{PuzzleID: "easy", Name: "First Steps", BoardSize: 6},
						{PuzzleID: "classic", Name: "Training Board", BoardSize: 8},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp []*service.PuzzleInfo
				parseResponse(t, w, &resp)
				if len(resp) != 2 {
					t.Errorf("Expected 2 puzzles, got %d", len(resp))
				}
			},
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.ListPuzzlesFunc = func(ctx context.Context) ([]*service.PuzzleInfo, error) {
					return nil, fmt.Errorf("puzzle error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "puzzle error" {
					t.Errorf("Expected error 'puzzle error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/puzzles", nil)

			server.handleListPuzzles(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetPuzzle(t *testing.T) {
	tests := []struct {
		name           string
		puzzleName     string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:       "Get existing puzzle",
			puzzleName: "easy",
			setupMock: func(m *MockGameService) {
				m.LoadPuzzleFunc = func(ctx context.Context, puzzleName string) (*engine.PuzzleConfig, error) {
					if puzzleName != "easy" {
						return nil, fmt.Errorf("puzzle not found")
					}
					return &engine.PuzzleConfig{
						Name:        "easy",
						Description: "Easy puzzle",
						BoardSize:   6,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp engine.PuzzleConfig
				parseResponse(t, w, &resp)
				if resp.Name != "easy" {
					t.Errorf("Expected puzzle name 'easy', got %s", resp.Name)
				}
			},
		},
		{
			name:       "Strip .json extension",
			puzzleName: "pentomino.json",
			setupMock: func(m *MockGameService) {
				m.LoadPuzzleFunc = func(ctx context.Context, puzzleName string) (*engine.PuzzleConfig, error) {
					if puzzleName != "pentomino" {
						t.Errorf("Expected puzzle name 'pentomino' (without .json), got %s", puzzleName)
					}
					return &engine.PuzzleConfig{Name: "pentomino"}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:       "Puzzle not found",
			puzzleName: "nonexistent",
			setupMock: func(m *MockGameService) {
				m.LoadPuzzleFunc = func(ctx context.Context, puzzleName string) (*engine.PuzzleConfig, error) {
					return nil, fmt.Errorf("puzzle not found")
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "puzzle not found" {
					t.Errorf("Expected error 'puzzle not found', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/puzzles/"+tt.puzzleName, nil)
			req = mux.SetURLVars(req, map[string]string{"name": tt.puzzleName})

			server.handleGetPuzzle(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListShapes(t *testing.T) {
	mockService := &MockGameService{
		ListShapesFunc: func(ctx context.Context) ([]*service.ShapeInfo, error) {
			return []*service.ShapeInfo{
				{ID: engine.ShapeMono, Cells: 1, Rows: []string{"X"}},
				{ID: engine.ShapeDomino, Cells: 2, Rows: []string{"XX"}},
			}, nil
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	req := makeRequest("GET", "/api/shapes", nil)

	server.handleListShapes(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp []*service.ShapeInfo
	parseResponse(t, w, &resp)
	if len(resp) != 2 {
		t.Errorf("Expected 2 shapes, got %d", len(resp))
	}
	if resp[0].Cells != 1 {
		t.Errorf("Expected 1 cell for first shape, got %d", resp[0].Cells)
	}
}

// TestBoardOpBroadcastsEvents drives a place through the REST API and
// verifies viewers on /ws get the snapshot plus the piece-level frames.
func TestBoardOpBroadcastsEvents(t *testing.T) {
	mockService := &MockGameService{}
	mockService.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
		return &service.SessionInfo{ID: sessionID, PuzzleName: "classic"}, nil
	}
	mockService.PlacePieceFunc = func(ctx context.Context, sessionID, pieceID string, x, y, rotation int) (*service.PlacementResult, error) {
		now := time.Now()
		return &service.PlacementResult{
			Success:   true,
			Action:    engine.ActionPlace,
			PieceID:   pieceID,
			Position:  engine.Position{X: x, Y: y},
			GameState: &engine.GameState{BoardSize: 8, Complete: true},
			Events: []service.GameEvent{
				{Type: engine.ActionPlace, PieceID: pieceID, Position: engine.Position{X: x, Y: y}, Message: "Placed t1", Timestamp: now},
				{Type: "victory", Message: "Solved!", Timestamp: now},
			},
		}, nil
	}

	server := setupTestServer(mockService)
	ts := httptest.NewServer(server)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=live"
	conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial WebSocket: %v", err)
	}
	defer conn.Close()

	// Wait for the subscription to land before operating on the board
	deadline := time.Now().Add(2 * time.Second)
	for server.hub.SubscriberCount("live") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for WebSocket subscription")
		}
		time.Sleep(5 * time.Millisecond)
	}

	body := bytes.NewBufferString(`{"piece_id":"t1","x":2,"y":3,"rotation":0}`)
	resp, err := http.Post(ts.URL+"/api/sessions/live/place", "application/json", body)
	if err != nil {
		t.Fatalf("Failed to post place request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	readEvent := func() map[string]interface{} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read frame: %v", err)
		}
		var frame map[string]interface{}
		if err := json.Unmarshal(payload, &frame); err != nil {
			t.Fatalf("Failed to unmarshal frame: %v", err)
		}
		return frame
	}

	snapshot := readEvent()
	if snapshot["event"] != "board_update" {
		t.Errorf("Expected first frame 'board_update', got %v", snapshot["event"])
	}

	placed := readEvent()
	if placed["event"] != "piece_placed" {
		t.Errorf("Expected second frame 'piece_placed', got %v", placed["event"])
	}
	if placed["piece_id"] != "t1" {
		t.Errorf("Expected piece ID 't1', got %v", placed["piece_id"])
	}

	victory := readEvent()
	if victory["event"] != "victory" {
		t.Errorf("Expected third frame 'victory', got %v", victory["event"])
	}
}

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			setupMock:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Valid session",
			queryParams: "?session=sess-123",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return &service.SessionInfo{
						ID:         sessionID,
						PuzzleName: "test",
					}, nil
				}
			},
			expectedStatus: http.StatusSwitchingProtocols,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/ws"+tt.queryParams, nil)

			// For WebSocket upgrade test, we need proper headers
			if tt.expectedStatus == http.StatusSwitchingProtocols {
				req.Header.Set("Upgrade", "websocket")
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
				req.Header.Set("Sec-WebSocket-Version", "13")
			}

			server.handleWebSocket(w, req)

			// WebSocket upgrade fails in unit tests due to httptest.ResponseRecorder limitations
			if tt.expectedStatus == http.StatusSwitchingProtocols {
				// Can't test actual WebSocket upgrade with httptest.ResponseRecorder
				// It doesn't implement http.Hijacker interface
				// We accept 500 error in this case as it indicates the upgrade was attempted
				if w.Code == http.StatusInternalServerError {
					return
				}
			}

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}
