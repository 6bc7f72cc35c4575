// Package mcp provides a Model Context Protocol interface for the PolyFit puzzle server.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for board operations
//   - Session-aware command execution
//   - Thin proxying to the REST API
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - board_state: Get current board state with ASCII visualization
//   - place_piece: Place a tray piece at a board position
//   - remove_piece: Lift a placed piece back to the tray
//   - rotate_piece: Rotate a placed piece in place
//   - move_piece: Relocate a placed piece
//   - reset_game: Clear the board back to starters
//   - move_history: Retrieve move history with pagination
//   - create_session: Create a new session with puzzle selection
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - list_puzzles: List available puzzle definitions
//   - list_shapes: List the polyomino shape catalog
//   - describe_cell: Inspect a single board cell
//   - game_instructions: Full rules and solving strategy
//
// Architecture:
//
// The Client here is deliberately thin: every tool call is translated into
// an HTTP request against the REST API, so the MCP surface and the REST
// surface can never disagree about game semantics. Responses are formatted
// as compact text with an ASCII board (starters uppercase, player pieces
// lowercase, empty cells as dots).
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// AI Integration:
//
// The MCP interface enables AI agents to:
//   - Autonomously solve puzzles
//   - Inspect empty-region and dead-end diagnostics after each placement
//   - Manage multiple puzzle sessions
//   - Learn from move history
package mcp
