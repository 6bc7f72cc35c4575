// Package service provides the business logic layer for the PolyFit puzzle server.
//
// The service package implements:
//   - Multi-session puzzle management
//   - Puzzle definition loading and listing
//   - Board operation processing with failure diagnostics
//   - Session lifecycle management
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level puzzle operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// PuzzleManager manages puzzle definition loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the placement engine, providing session isolation, puzzle management, and
// business logic orchestration. Each session maintains its own engine
// instance with an independent board.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	puzzleMgr := config.NewManager("puzzles")
//	gameService := service.NewGameService(sessionMgr, puzzleMgr)
//
//	// Create a new session
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Place a piece
//	result, err := gameService.PlacePiece(ctx, sessionInfo.ID, "o3", 4, 2, 0)
//
// Session Management:
//
// Sessions are identified by unique 4-character IDs and maintain independent
// board state. Multiple sessions can run concurrently with different
// puzzles. Sessions track creation time, last access time, and move
// history for analytics and debugging.
package service
