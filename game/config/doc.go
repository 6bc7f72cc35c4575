// Package config provides puzzle definition management for the PolyFit puzzle server.
//
// The config package handles:
//   - Loading puzzle definitions from JSON files
//   - Puzzle validation and verification
//   - Default puzzle management
//   - Puzzle discovery and listing
//
// Puzzle Format:
//
// Puzzles are stored as JSON files in the puzzles directory.
// Each puzzle defines:
//   - Board size (square, 4 to 16 cells per side)
//   - Starter pieces fixed on the board with position and rotation
//   - Available pieces the player places from the tray
//   - Game messages for the various events
//
// Available Puzzles:
//
// The package supports multiple difficulty levels:
//   - classic: 8x8 board with squares and bars, three starters
//   - easy: smaller board with large, forgiving pieces
//   - pentomino: 8x8 board built around pentomino shapes
//
// Usage:
//
//	manager := config.NewManager("puzzles")
//
//	// Load specific puzzle
//	puzzle, err := manager.LoadPuzzle("easy")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Get default puzzle
//	defaultPuzzle := manager.GetDefault()
//
//	// List available puzzles
//	puzzles, err := manager.ListPuzzles()
//
// Validation:
//
// All puzzles are validated for:
//   - Board size within supported bounds
//   - Known shape ids and unique piece ids
//   - Piece cells summing exactly to the board area
//   - Starter placements in bounds and non-overlapping
//   - Required message templates
package config
