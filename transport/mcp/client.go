package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rmarchese/polyfit/game/engine"
	"github.com/rmarchese/polyfit/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"PolyFit Puzzle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`PolyFit Puzzle - MCP Interface

This is a thin client that proxies all requests to the REST API server.

PUZZLE OBJECTIVE:
Fill every cell of the board by placing polyomino pieces from the tray. Pre-placed starter pieces are locked and cannot be moved or removed.

AVAILABLE TOOLS:
- board_state: Get the current board and tray
- place_piece: Place a tray piece at a board position - requires intent explanation
- remove_piece: Lift a placed piece back to the tray
- rotate_piece: Rotate a placed piece 90 degrees clockwise in place
- move_piece: Relocate a placed piece to a new position
- reset_game: Clear the board back to just the starters
- move_history: View past moves
- create_session: Create a new puzzle session
- get_session: Get session details
- list_sessions: List all active sessions
- list_puzzles: List available puzzle definitions
- list_shapes: List the polyomino shape catalog
- describe_cell: Get detailed info about a specific board cell
- game_instructions: Get comprehensive puzzle instructions and rules

NOTE: The 'intent' parameter on place_piece serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new puzzle session with optional puzzle selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"puzzle_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier of the puzzle to load (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active puzzle sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Board operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_state",
		Description: "Get the current board state and available tray pieces",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleBoardState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_piece",
		Description: "Place a tray piece on the board. The (x,y) position is the top-left cell of the piece's bounding box after rotation.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"piece_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier of the tray piece to place",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the piece's top-left cell (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the piece's top-left cell (0-based)",
				},
				"rotation": map[string]interface{}{
					"type":        "integer",
					"description": "Number of clockwise quarter turns (0-3)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this placement (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "piece_id", "x", "y"},
		},
	}, c.handlePlacePiece)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "remove_piece",
		Description: "Lift a placed piece back to the tray. Starter pieces cannot be removed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"piece_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier of the placed piece to remove",
				},
			},
			Required: []string{"session_id", "piece_id"},
		},
	}, c.handleRemovePiece)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "rotate_piece",
		Description: "Rotate a placed piece 90 degrees clockwise in place. Fails if the rotated footprint would not fit.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"piece_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier of the placed piece to rotate",
				},
			},
			Required: []string{"session_id", "piece_id"},
		},
	}, c.handleRotatePiece)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_piece",
		Description: "Relocate a placed piece to a new board position, optionally with a new rotation",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"piece_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier of the placed piece to move",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "New column of the piece's top-left cell (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "New row of the piece's top-left cell (0-based)",
				},
				"rotation": map[string]interface{}{
					"type":        "integer",
					"description": "Number of clockwise quarter turns (0-3)",
				},
			},
			Required: []string{"session_id", "piece_id", "x", "y"},
		},
	}, c.handleMovePiece)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Clear the board back to just the starter pieces",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_puzzles",
		Description: "List available puzzle definitions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPuzzles)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_shapes",
		Description: "List the polyomino shape catalog with cell patterns",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListShapes)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive puzzle instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about a specific board cell: whether it is empty, which piece covers it, and whether that piece is a locked starter.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the cell to describe (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the cell to describe (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	puzzleID, _ := args["puzzle_id"].(string)

	body := map[string]string{}
	if puzzleID != "" {
		body["puzzle_id"] = puzzleID
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nPuzzle: %s\n\n%s",
		session.ID, session.PuzzleName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Puzzle: %s, Created: %s)\n",
			s.ID, s.PuzzleName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.GameState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatGameState(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handlePlacePiece(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	pieceID, _ := args["piece_id"].(string)
	intent, _ := args["intent"].(string)
	x := intArg(args, "x")
	y := intArg(args, "y")
	rotation := intArg(args, "rotation")

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"piece_id": pieceID,
		"x":        x,
		"y":        y,
		"rotation": rotation,
	}

	var result service.PlacementResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/place", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatPlacementResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleRemovePiece(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	pieceID, _ := args["piece_id"].(string)

	body := map[string]interface{}{
		"piece_id": pieceID,
	}

	var result service.PlacementResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/remove", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatPlacementResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleRotatePiece(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	pieceID, _ := args["piece_id"].(string)

	body := map[string]interface{}{
		"piece_id": pieceID,
	}

	var result service.PlacementResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/rotate", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatPlacementResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleMovePiece(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	pieceID, _ := args["piece_id"].(string)
	x := intArg(args, "x")
	y := intArg(args, "y")
	rotation := intArg(args, "rotation")

	body := map[string]interface{}{
		"piece_id": pieceID,
		"x":        x,
		"y":        y,
		"rotation": rotation,
	}

	var result service.PlacementResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/move", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatPlacementResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/history%s", sessionID, params), nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Also fetch current segment from live state
	var session service.SessionInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err != nil {
		// If fetching session fails, still return the history
		result := formatHistory(&history)
		return mcp.NewToolResultText(result), nil
	}

	result := formatHistory(&history)
	result += "\n" + formatCurrentSegment(session.GameState)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListPuzzles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var puzzles []service.PuzzleInfo
	err := c.apiCall("GET", "/api/puzzles", nil, &puzzles)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Puzzles:\n\n"
	for _, puzzle := range puzzles {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Board: %dx%d, Pieces: %d\n\n",
			puzzle.Name, puzzle.PuzzleID, puzzle.Description,
			puzzle.BoardSize, puzzle.BoardSize, puzzle.PieceCount)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListShapes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var shapes []service.ShapeInfo
	err := c.apiCall("GET", "/api/shapes", nil, &shapes)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Shape Catalog:\n\n")
	for _, shape := range shapes {
		b.WriteString(fmt.Sprintf("%s (%d cells):\n", shape.ID, shape.Cells))
		for _, row := range shape.Rows {
			b.WriteString("  " + row + "\n")
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🧩 PolyFit Puzzle - Complete Instructions

PUZZLE OBJECTIVE:
Fill every cell of the board by placing polyomino pieces from the tray. The board starts with locked starter pieces already in place.

MECHANICS:
• Placement: Give a piece, a top-left (x,y) position, and a rotation (0-3 clockwise quarter turns)
• Rotation: Placed pieces rotate in place around their top-left corner; the rotated footprint must still fit
• Removal: Placed pieces can be lifted back to the tray at any time
• Starters: Pre-placed pieces are locked and reject every operation
• Victory: The board is solved the instant every cell is covered

BOARD DISPLAY:
• Each covered cell shows the first letter of the piece covering it
• Starter piece cells are shown in UPPERCASE, your placements in lowercase
• Empty cells show as '.'
• Example: a row "OO..tt.." has a starter square piece on the left and your tromino mid-row

COORDINATES:
• (0,0) is the top-left corner; x grows rightward, y grows downward
• The (x,y) you give for a piece is the top-left cell of its bounding box AFTER rotation
• A piece placed at (6,6) with a 2x2 footprint covers (6,6) (7,6) (6,7) (7,7)

SHAPE CATALOG:
• mono (1 cell), domino (2), tromino_i / tromino_l (3)
• tetromino_i / o / t / s / z / j / l (4)
• pentomino_i / l / p / t / u / v / z (5)
• Use list_shapes to see each pattern; rotation turns the pattern clockwise

🤖 SOLVING STRATEGY:

1. **Read the board first**: fetch board_state, note starter positions, count empty cells
2. **Match cell budgets**: the tray's total cells always equal the empty cells, so every piece must be used
3. **Corners and edges first**: pieces with awkward shapes (L, Z, T) have fewer legal homes near edges
4. **Watch for dead regions**: after each placement the response reports empty_regions; a region smaller than your smallest remaining piece can never be filled
5. **Backtrack freely**: remove_piece is always available for non-starters, and removal is not counted as a move

FAILURE DIAGNOSTICS:
Rejected operations return attempted.reason_code:
• out_of_bounds - the footprint runs past the board edge
• overlap - the footprint crosses an occupied cell
• starter_locked - the target piece is a locked starter
• already_placed / not_placed - the piece is in the wrong zone for that operation
• would_not_fit - an in-place rotation cannot fit
• unknown_piece - no piece with that id exists

MOVE COUNTING:
• place, rotate and move each count one move when they succeed
• remove is a free take-back
• Victory reports the move count for the winning attempt

SESSION MANAGEMENT:
- Multiple puzzle sessions can run simultaneously
- Each session has a unique 4-character ID
- Sessions maintain independent board state and puzzle selection

Good luck filling the board! 🧩`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	x := intArg(args, "x")
	y := intArg(args, "y")

	// Get the current board state to access the grid
	var state engine.GameState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Check bounds
	boardSize := len(state.Grid)
	if x < 0 || x >= boardSize || y < 0 || y >= boardSize {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Board size is %dx%d (0-%d for both x and y)",
			x, y, boardSize, boardSize, boardSize-1)), nil
	}

	pieceID := state.Grid[y][x]

	if pieceID == "" {
		result := fmt.Sprintf(`Cell at position (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Occupied: no
Description: Empty cell - any piece footprint covering it is legal here`,
			x, y)
		return mcp.NewToolResultText(result), nil
	}

	info, known := state.Pieces[pieceID]
	shapeName := "unknown"
	starter := false
	if known {
		shapeName = string(info.ShapeID)
		starter = info.Starter
	}

	status := "placed by you - can be removed, rotated or moved"
	if starter {
		status = "LOCKED STARTER - rejects remove, rotate and move"
	}

	// Origin and rotation from the placement record
	placement := ""
	for _, p := range state.PlacedPieces {
		if p.PieceID == pieceID {
			placement = fmt.Sprintf("\nOrigin: (%d, %d), Rotation: %d", p.Position.X, p.Position.Y, p.Rotation)
			break
		}
	}

	result := fmt.Sprintf(`Cell at position (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Occupied: yes
Piece: %s
Shape: %s%s
Status: %s`,
		x, y, pieceID, shapeName, placement, status)

	return mcp.NewToolResultText(result), nil
}

// intArg reads a JSON number argument as an int, defaulting to 0
func intArg(args map[string]interface{}, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nPuzzle: %s\nCreated: %s\n\n%s",
		session.ID, session.PuzzleName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No board state available"
	}

	var result strings.Builder
	boardSize := len(state.Grid)

	// Header
	filled := 0
	for y := 0; y < boardSize; y++ {
		for x := 0; x < len(state.Grid[y]); x++ {
			if state.Grid[y][x] != "" {
				filled++
			}
		}
	}
	result.WriteString(fmt.Sprintf("Board: %dx%d | Filled: %d/%d | Moves: %d\n\n",
		state.BoardSize, state.BoardSize, filled, state.BoardSize*state.BoardSize, state.TotalMoves))

	// Grid: starter cells uppercase, player placements lowercase, empty as '.'
	for y := 0; y < boardSize; y++ {
		for x := 0; x < len(state.Grid[y]); x++ {
			result.WriteString(cellChar(state, x, y))
		}
		result.WriteString("\n")
	}

	// Tray
	if len(state.AvailablePieces) > 0 {
		result.WriteString(fmt.Sprintf("\nTray (%d pieces): ", len(state.AvailablePieces)))
		parts := make([]string, 0, len(state.AvailablePieces))
		for _, id := range state.AvailablePieces {
			if info, ok := state.Pieces[id]; ok {
				parts = append(parts, fmt.Sprintf("%s(%s)", id, info.ShapeID))
			} else {
				parts = append(parts, id)
			}
		}
		result.WriteString(strings.Join(parts, ", "))
		result.WriteString("\n")
	} else {
		result.WriteString("\nTray: empty\n")
	}

	// Status
	if state.Complete {
		result.WriteString("\n🎉 SOLVED!")
	}

	if state.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return result.String()
}

// cellChar renders one board cell. Starters are uppercase so a solver can
// tell locked pieces from its own at a glance.
func cellChar(state *engine.GameState, x, y int) string {
	pieceID := state.Grid[y][x]
	if pieceID == "" {
		return "."
	}
	ch := string(pieceID[0])
	if info, ok := state.Pieces[pieceID]; ok && info.Starter {
		return strings.ToUpper(ch)
	}
	return strings.ToLower(ch)
}

func formatPlacementResult(result *service.PlacementResult) string {
	var b strings.Builder

	if result.Success {
		b.WriteString(fmt.Sprintf("✓ %s successful: %s at (%d,%d) rotation %d\n",
			result.Action, result.PieceID, result.Position.X, result.Position.Y, result.Rotation))
	} else {
		b.WriteString(fmt.Sprintf("✗ %s failed: %s\n", result.Action, result.PieceID))
	}

	// Failure diagnostic (if available)
	if result.Attempted != nil {
		a := result.Attempted
		b.WriteString(fmt.Sprintf("Rejected: attempted (%d,%d) rotation %d - %s (%s)\n",
			a.X, a.Y, a.Rotation, a.ReasonCode, a.Reason))
	}

	// Board aids
	b.WriteString(fmt.Sprintf("Filled: %d/%d cells\n", result.FilledCells, result.TotalCells))
	if len(result.EmptyRegions) > 0 {
		regions := make([]string, len(result.EmptyRegions))
		for i, r := range result.EmptyRegions {
			regions[i] = fmt.Sprintf("%d", r)
		}
		b.WriteString(fmt.Sprintf("Empty regions: %s\n", strings.Join(regions, ", ")))
	}
	if result.DeadEnd {
		b.WriteString("⚠️ Dead end: some empty region is smaller than your smallest remaining piece\n")
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			b.WriteString(fmt.Sprintf("- %s: %s\n", event.Type, event.Message))
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Move History (Page %d/%d) - Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for i, move := range history.Moves {
		num := (history.Page-1)*history.PageSize + i + 1
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		result += fmt.Sprintf("%d. %s %s at (%d,%d) rot %d %s\n",
			num, move.Action, move.PieceID, move.Position.X, move.Position.Y, move.Rotation, status)
	}

	return result
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return "Current Segment: unavailable"
	}
	moves := state.CurrentMoves
	total := state.CurrentMovesCount
	header := fmt.Sprintf("Current Attempt - Moves: %d\n\n", total)
	if len(moves) == 0 {
		return header + "(no moves in current attempt)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, move := range moves {
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		b.WriteString(fmt.Sprintf("%d. %s %s at (%d,%d) rot %d %s\n",
			i+1, move.Action, move.PieceID, move.Position.X, move.Position.Y, move.Rotation, status))
	}
	return b.String()
}
