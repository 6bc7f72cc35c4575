package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultPuzzleConfigValid(t *testing.T) {
	config := DefaultPuzzleConfig()
	if err := ValidatePuzzleConfig(config); err != nil {
		t.Fatalf("Default config failed validation: %v", err)
	}
	if config.BoardSize != DefaultBoardSize {
		t.Errorf("Expected board size %d, got %d", DefaultBoardSize, config.BoardSize)
	}
	if total := TotalPieceCells(config); total != config.BoardSize*config.BoardSize {
		t.Errorf("Expected piece cells to cover the board exactly, got %d", total)
	}
}

func TestValidatePuzzleConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PuzzleConfig)
		wantErr string
	}{
		{
			name:    "missing name",
			mutate:  func(c *PuzzleConfig) { c.Name = "" },
			wantErr: "name",
		},
		{
			name:    "missing description",
			mutate:  func(c *PuzzleConfig) { c.Description = "" },
			wantErr: "description",
		},
		{
			name:    "board too small",
			mutate:  func(c *PuzzleConfig) { c.BoardSize = 2 },
			wantErr: "board_size",
		},
		{
			name:    "board too large",
			mutate:  func(c *PuzzleConfig) { c.BoardSize = 32 },
			wantErr: "board_size",
		},
		{
			name:    "no available pieces",
			mutate:  func(c *PuzzleConfig) { c.AvailablePieces = nil },
			wantErr: "available",
		},
		{
			name: "duplicate piece id",
			mutate: func(c *PuzzleConfig) {
				c.AvailablePieces[1].ID = c.AvailablePieces[0].ID
			},
			wantErr: "duplicate",
		},
		{
			name: "unknown shape",
			mutate: func(c *PuzzleConfig) {
				c.AvailablePieces[0].ShapeID = "hexomino_w"
			},
			wantErr: "unknown shape",
		},
		{
			name: "starter rotation out of range",
			mutate: func(c *PuzzleConfig) {
				c.StarterPieces[0].Rotation = 4
			},
			wantErr: "rotation",
		},
		{
			name: "cell total mismatch",
			mutate: func(c *PuzzleConfig) {
				c.AvailablePieces = c.AvailablePieces[:len(c.AvailablePieces)-1]
			},
			wantErr: "cells",
		},
		{
			name: "starter out of bounds",
			mutate: func(c *PuzzleConfig) {
				c.StarterPieces[0].X = 7
				c.StarterPieces[0].Y = 7
			},
			wantErr: "runs off",
		},
		{
			name: "overlapping starters",
			mutate: func(c *PuzzleConfig) {
				c.StarterPieces[1].X = c.StarterPieces[0].X
				c.StarterPieces[1].Y = c.StarterPieces[0].Y
			},
			wantErr: "overlap",
		},
		{
			name:    "missing welcome message",
			mutate:  func(c *PuzzleConfig) { c.Messages.Welcome = "" },
			wantErr: "welcome",
		},
		{
			name:    "victory without move count verb",
			mutate:  func(c *PuzzleConfig) { c.Messages.Victory = "You won!" },
			wantErr: "victory",
		},
		{
			name:    "board status wrong placeholders",
			mutate:  func(c *PuzzleConfig) { c.Messages.BoardStatus = "%d filled" },
			wantErr: "board_status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultPuzzleConfig()
			tt.mutate(config)
			err := ValidatePuzzleConfig(config)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(strings.ToLower(err.Error()), tt.wantErr) {
				t.Errorf("Expected error mentioning %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidatePuzzleConfigNil(t *testing.T) {
	if err := ValidatePuzzleConfig(nil); err == nil {
		t.Fatal("Expected validation error for nil config, got nil")
	}

	// NewEngine refuses a nil config instead of panicking
	if _, err := NewEngine(nil); err == nil {
		t.Fatal("Expected error from NewEngine with nil config, got nil")
	}
}

func TestLoadPuzzleConfig(t *testing.T) {
	dir := t.TempDir()
	config := DefaultPuzzleConfig()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	path := filepath.Join(dir, "training.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	loaded, err := LoadPuzzleConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if loaded.Name != config.Name {
		t.Errorf("Expected name %q, got %q", config.Name, loaded.Name)
	}
	if len(loaded.AvailablePieces) != len(config.AvailablePieces) {
		t.Errorf("Expected %d pieces, got %d", len(config.AvailablePieces), len(loaded.AvailablePieces))
	}
}

func TestLoadPuzzleConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	config := DefaultPuzzleConfig()
	data, _ := json.Marshal(config)
	if err := os.WriteFile(filepath.Join(dir, "training.json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("CONFIG_DIR", dir)
	loaded, err := LoadPuzzleConfig("puzzles/training.json")
	if err != nil {
		t.Fatalf("Failed to load via CONFIG_DIR: %v", err)
	}
	if loaded.Name != config.Name {
		t.Errorf("Expected name %q, got %q", config.Name, loaded.Name)
	}
}

func TestLoadPuzzleConfigMissingFile(t *testing.T) {
	if _, err := LoadPuzzleConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadPuzzleConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := LoadPuzzleConfig(path); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestInitGameStateFromConfig(t *testing.T) {
	gs := InitGameStateFromConfig(squaresConfig())

	if gs.BoardSize != 4 {
		t.Errorf("Expected board size 4, got %d", gs.BoardSize)
	}
	if len(gs.Grid) != 4 || len(gs.Grid[0]) != 4 {
		t.Error("Expected 4x4 grid")
	}
	if len(gs.PlacedPieces) != 1 {
		t.Errorf("Expected 1 starter placed, got %d", len(gs.PlacedPieces))
	}
	if len(gs.AvailablePieces) != 3 {
		t.Errorf("Expected 3 tray pieces, got %d", len(gs.AvailablePieces))
	}
	if len(gs.Pieces) != 4 {
		t.Errorf("Expected 4 known pieces, got %d", len(gs.Pieces))
	}
	if gs.Message != testMessages().Welcome {
		t.Errorf("Expected welcome message, got %q", gs.Message)
	}
	assertConsistent(t, gs)
}

func TestInitGameStateNilConfig(t *testing.T) {
	gs := InitGameStateFromConfig(nil)
	if gs.BoardSize != DefaultBoardSize {
		t.Errorf("Expected default board size, got %d", gs.BoardSize)
	}
	if gs.ConfigName == "" {
		t.Error("Expected a config name from the default puzzle")
	}
	assertConsistent(t, gs)
}

func TestInitGameStateSkipsBadStarter(t *testing.T) {
	config := squaresConfig()
	// Two starters claiming the same cells: the second is skipped
	config.StarterPieces = append(config.StarterPieces, StarterPlacement{
		ID: "o9", ShapeID: ShapeTetO, X: 0, Y: 0,
	})

	gs := InitGameStateFromConfig(config)
	if len(gs.PlacedPieces) != 1 {
		t.Errorf("Expected conflicting starter skipped, got %d placed", len(gs.PlacedPieces))
	}
	assertConsistent(t, gs)
}
