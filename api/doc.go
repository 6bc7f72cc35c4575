// Package api provides HTTP REST API handlers for the PolyFit puzzle server.
//
// The api package implements:
//   - RESTful endpoints for board operations
//   - Session management endpoints
//   - Puzzle definition listing and upload
//   - Shape catalog listing
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (optional puzzle_id in body)
//   - GET /api/sessions - List all sessions (sort, order, limit query params)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Board Operations:
//   - GET /api/sessions/{id}/state - Current board state
//   - POST /api/sessions/{id}/place - Place a piece from the tray
//   - POST /api/sessions/{id}/remove - Lift a placed piece back to the tray
//   - POST /api/sessions/{id}/rotate - Rotate a piece in place
//   - POST /api/sessions/{id}/move - Relocate a placed piece
//   - POST /api/sessions/{id}/reset - Clear the board back to starters
//   - GET /api/sessions/{id}/history - Move history with pagination
//
// Puzzle Definitions:
//   - GET /api/puzzles - List available puzzles
//   - POST /api/puzzles - Save a new puzzle definition
//   - GET /api/puzzles/{name} - Get a puzzle definition
//
// Shapes:
//   - GET /api/shapes - List the polyomino shape catalog
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Board operations take a JSON body:
//
//	{
//	  "piece_id": "t1",
//	  "x": 3,
//	  "y": 4,
//	  "rotation": 1
//	}
//
// Remove and rotate only require piece_id. Operation responses carry the
// full game state plus placement diagnostics:
//
//	{
//	  "success": false,
//	  "action": "place",
//	  "attempted": { "x": 3, "y": 4, "rotation": 1, "reason_code": "overlap", "reason": "..." },
//	  "filled_cells": 24,
//	  "total_cells": 64,
//	  "empty_regions": [32, 8],
//	  "dead_end": false,
//	  "game_state": { ... }
//	}
//
// Board operations are also pushed to WebSocket viewers of the session as
// a board_update frame followed by piece-level event frames.
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
