package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rmarchese/polyfit/game/engine"
	"github.com/rmarchese/polyfit/game/service"
)

var (
	ErrPuzzleNotFound = errors.New("puzzle not found")
	ErrInvalidPuzzle  = errors.New("invalid puzzle")
)

// Manager handles puzzle definition loading and caching
type Manager struct {
	puzzleDir     string
	defaultPuzzle *engine.PuzzleConfig
	puzzles       map[string]*engine.PuzzleConfig
	mu            sync.RWMutex
}

// NewManager creates a new puzzle manager
func NewManager(puzzleDir string) (*Manager, error) {
	// Ensure puzzle directory exists
	if _, err := os.Stat(puzzleDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("puzzle directory does not exist: %s", puzzleDir)
	}

	m := &Manager{
		puzzleDir: puzzleDir,
		puzzles:   make(map[string]*engine.PuzzleConfig),
	}

	// Load default puzzle
	if err := m.loadDefaultPuzzle(); err != nil {
		return nil, fmt.Errorf("failed to load default puzzle: %w", err)
	}

	return m, nil
}

// LoadPuzzle loads a puzzle definition by name
func (m *Manager) LoadPuzzle(name string) (*engine.PuzzleConfig, error) {
	m.mu.RLock()
	// Check cache first
	if config, exists := m.puzzles[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.puzzles[name]; exists {
		return config, nil
	}

	// Add .json extension if not present
	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	puzzlePath := filepath.Join(m.puzzleDir, filename)

	// Read puzzle file
	data, err := os.ReadFile(puzzlePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPuzzleNotFound
		}
		return nil, fmt.Errorf("failed to read puzzle file: %w", err)
	}

	// Parse puzzle
	var config engine.PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse puzzle: %w", err)
	}

	// Validate puzzle
	if err := engine.ValidatePuzzleConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPuzzle, err)
	}

	// Cache the puzzle
	m.puzzles[name] = &config
	return &config, nil
}

// ListPuzzles returns information about all available puzzles
func (m *Manager) ListPuzzles() ([]*service.PuzzleInfo, error) {
	entries, err := os.ReadDir(m.puzzleDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzle directory: %w", err)
	}

	var puzzles []*service.PuzzleInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		// Remove .json extension for puzzle name
		name := strings.TrimSuffix(entry.Name(), ".json")

		// Try to load the puzzle to get details
		config, err := m.LoadPuzzle(name)
		if err != nil {
			// Skip invalid puzzles
			continue
		}

		puzzles = append(puzzles, &service.PuzzleInfo{
			Filename:    entry.Name(),
			PuzzleID:    name, // This is the identifier to use for session creation
			Name:        config.Name,
			Description: config.Description,
			BoardSize:   config.BoardSize,
			PieceCount:  len(config.StarterPieces) + len(config.AvailablePieces),
		})
	}

	return puzzles, nil
}

// GetDefault returns the default puzzle
func (m *Manager) GetDefault() *engine.PuzzleConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPuzzle
}

// SetDefault sets the default puzzle by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadPuzzle(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPuzzle = config
	return nil
}

// RefreshCache reloads all cached puzzles from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.puzzles = make(map[string]*engine.PuzzleConfig)
	m.mu.Unlock()

	// Reload default puzzle
	return m.loadDefaultPuzzle()
}

// loadDefaultPuzzle loads the default puzzle definition
func (m *Manager) loadDefaultPuzzle() error {
	// Try to load classic.json as default
	config, err := m.LoadPuzzle("classic")
	if err != nil {
		// Try to load the first available puzzle
		puzzles, listErr := m.ListPuzzles()
		if listErr != nil || len(puzzles) == 0 {
			// Fall back to the built-in puzzle
			m.setDefaultConfig(engine.DefaultPuzzleConfig())
			return nil
		}

		// Use the first available puzzle
		config, err = m.LoadPuzzle(strings.TrimSuffix(puzzles[0].Filename, ".json"))
		if err != nil {
			m.setDefaultConfig(engine.DefaultPuzzleConfig())
			return nil
		}
	}

	m.setDefaultConfig(config)
	return nil
}

func (m *Manager) setDefaultConfig(config *engine.PuzzleConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPuzzle = config
}

// SavePuzzle saves a puzzle definition to disk
func (m *Manager) SavePuzzle(name string, config *engine.PuzzleConfig) error {
	// Validate puzzle before saving
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPuzzle, err)
	}

	// Add .json extension if not present
	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	puzzlePath := filepath.Join(m.puzzleDir, filename)

	// Marshal puzzle to JSON with indentation
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal puzzle: %w", err)
	}

	// Write to file
	if err := os.WriteFile(puzzlePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write puzzle file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.puzzles[name] = config
	m.mu.Unlock()

	return nil
}
