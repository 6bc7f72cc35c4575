// Command analyze prints quick, human-readable heuristics about puzzle files
// in the project's puzzles directory. It summarizes board dimensions, the
// starter/player coverage split, the piece mix by size, empty-region layout
// after starters are stamped, and a rough difficulty hint.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rmarchese/polyfit/game/engine"
)

func main() {
	puzzles := []string{
		"classic.json",
		"easy.json",
		"pentomino.json",
	}

	for _, puzzleFile := range puzzles {
		fmt.Printf("\n=== Analyzing %s ===\n", puzzleFile)
		analyzePuzzle(filepath.Join("puzzles", puzzleFile))
	}
}

func analyzePuzzle(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var config engine.PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	boardArea := config.BoardSize * config.BoardSize
	starterCells := 0
	for _, starter := range config.StarterPieces {
		starterCells += engine.ShapeCellCount(starter.ShapeID)
	}
	playerCells := engine.TotalPieceCells(&config) - starterCells

	fmt.Printf("Name: %s\n", config.Name)
	fmt.Printf("Board: %d x %d (%d cells)\n", config.BoardSize, config.BoardSize, boardArea)
	fmt.Printf("Starter Pieces: %d (%d cells pre-filled)\n", len(config.StarterPieces), starterCells)
	fmt.Printf("Player Pieces: %d (%d cells to fill)\n", len(config.AvailablePieces), playerCells)

	// Piece mix by cell count
	mix := pieceMix(&config)
	sizes := make([]int, 0, len(mix))
	for size := range mix {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	fmt.Printf("Piece Mix:")
	for _, size := range sizes {
		fmt.Printf(" %d-cell x%d", size, mix[size])
	}
	fmt.Println()

	// Region layout after starters are stamped
	state := engine.InitGameStateFromConfig(&config)
	regions := engine.EmptyRegions(state.Grid)
	largest := 0
	for _, size := range regions {
		if size > largest {
			largest = size
		}
	}
	fmt.Printf("Empty Regions: %d (largest %d cells)\n", len(regions), largest)

	if engine.HasDeadRegion(state) {
		fmt.Printf("⚠️  WARNING: some region is smaller than the smallest player piece!\n")
		fmt.Printf("   This puzzle cannot be completed as defined\n")
	} else {
		fmt.Printf("✅ Every empty region can hold at least one player piece\n")
	}

	fmt.Printf("Difficulty: %s\n", difficultyHint(&config, regions))
}

// pieceMix groups the player pieces by cell count.
func pieceMix(config *engine.PuzzleConfig) map[int]int {
	mix := make(map[int]int)
	for _, piece := range config.AvailablePieces {
		cells := engine.ShapeCellCount(piece.ShapeID)
		if cells == 0 {
			continue
		}
		mix[cells]++
	}
	return mix
}

// difficultyHint grades a puzzle from the number of player pieces and how
// fragmented the starter-only board is. More pieces and more disconnected
// regions both mean more placement decisions.
func difficultyHint(config *engine.PuzzleConfig, regions []int) string {
	score := len(config.AvailablePieces) + 2*(len(regions)-1)
	switch {
	case score <= 6:
		return "easy"
	case score <= 12:
		return "medium"
	default:
		return "hard"
	}
}
