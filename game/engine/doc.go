// Package engine provides the core logic for the PolyFit tiling puzzle.
//
// The engine package implements the puzzle mechanics including:
//   - The board grid and the placed-piece list it caches
//   - The static shape catalog and quarter-turn rotation transform
//   - Placement validation and the full-cover win condition
//   - Grid/screen coordinate conversion with responsive re-parameterization
//   - The drag/tap interaction state machine driving placement
//   - Puzzle definition loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for board operations,
// implemented by GameEngine. GameState is the authoritative board state,
// while PuzzleConfig describes a puzzle loaded from a JSON file: starter
// pieces fixed on the board plus the tray of pieces left to place.
// Controller wraps an engine with the pointer/touch interaction session.
//
// Usage:
//
//	config, err := engine.LoadPuzzleByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Place a piece
//	success := eng.PlacePiece("t1", 3, 4, 1)
//	state := eng.GetState()
//
// Puzzle Rules:
//
// An N×N board must be covered completely, without overlap, by a fixed
// inventory of polyomino pieces. Some pieces are pre-placed starters and
// cannot be moved or rotated. The puzzle is complete when no cell is empty.
package engine
