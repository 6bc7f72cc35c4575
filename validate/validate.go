// Command validate provides a small CLI that validates puzzle JSON files in
// the ../puzzles directory (or a directory given as the first argument). It
// checks:
//   - JSON structure and required fields
//   - Board size bounds and shape ids against the shape catalog
//   - Piece id uniqueness across starters and available pieces
//   - Exact coverage: piece cells must total the board area
//   - Starter placements in bounds and non-overlapping
//   - Required message strings and their format verbs
//   - Feasibility: starters must not carve out a region smaller than the
//     smallest available piece
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmarchese/polyfit/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validatePuzzle loads and validates a single puzzle JSON file. Structural
// and coverage checks are delegated to the engine; the feasibility analysis
// runs on top of a board built from the config.
func validatePuzzle(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config engine.PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidatePuzzleConfig(&config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	// Feasibility analysis on the starter-only board
	feasibility := validateFeasibility(&config)
	if !feasibility.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, feasibility.Errors...)

	// Add informational data
	if result.Valid {
		starterCells := 0
		for _, starter := range config.StarterPieces {
			starterCells += engine.ShapeCellCount(starter.ShapeID)
		}
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Board: %dx%d", config.BoardSize, config.BoardSize))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Starter pieces: %d (%d cells)", len(config.StarterPieces), starterCells))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Available pieces: %d", len(config.AvailablePieces)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Coverage: %d/%d cells", engine.TotalPieceCells(&config), config.BoardSize*config.BoardSize))
	}

	return result
}

// validateFeasibility builds the starter-only board and checks that every
// empty region is at least as large as the smallest available piece. A
// smaller region can never be filled, so the puzzle is unsolvable from the
// start. It also reports the region breakdown as informational output.
func validateFeasibility(config *engine.PuzzleConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	state := engine.InitGameStateFromConfig(config)
	regions := engine.EmptyRegions(state.Grid)
	smallest := engine.SmallestAvailablePiece(state)

	if smallest == 0 {
		result.Errors = append(result.Errors, "✓ Feasibility: board already full")
		return result
	}

	deadRegions := []string{}
	for _, size := range regions {
		if size < smallest {
			deadRegions = append(deadRegions, fmt.Sprintf("region of %d cells (smallest piece is %d)", size, smallest))
		}
	}

	if len(deadRegions) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Feasibility failure: %d/%d empty regions unfillable", len(deadRegions), len(regions)))
		for _, region := range deadRegions {
			result.Errors = append(result.Errors, fmt.Sprintf("Unfillable: %s", region))
		}
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Feasibility: %d empty regions, all fit the smallest piece", len(regions)))
	}

	return result
}

// main scans the puzzle directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are
// invalid.
func main() {
	puzzleDir := "../puzzles"
	if len(os.Args) > 1 {
		puzzleDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(puzzleDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding puzzle files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validatePuzzle(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All puzzles are valid!")
	} else {
		fmt.Println("❌ Some puzzles have errors")
		os.Exit(1)
	}
}
