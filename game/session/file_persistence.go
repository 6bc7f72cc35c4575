package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rmarchese/polyfit/game/engine"
	"github.com/rmarchese/polyfit/game/service"
)

// snapshotVersion tags the on-disk schema so incompatible files can be
// detected instead of half-loaded.
const snapshotVersion = 1

// sessionSnapshot is the on-disk form of a session: identity, timestamps,
// the puzzle the board was built from, and the full board state. PuzzleID
// is the puzzle's file identifier, not its display name, so renaming a
// puzzle does not orphan its sessions.
type sessionSnapshot struct {
	Version        int               `json:"version"`
	ID             string            `json:"id"`
	PuzzleID       string            `json:"puzzle_id"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	State          *engine.GameState `json:"state"`
}

// FilePersistence stores one JSON snapshot per session in a directory.
// Writes go through a temp file and a rename, so a crash mid-write never
// leaves a truncated snapshot behind.
type FilePersistence struct {
	dir     string
	puzzles service.PuzzleManager
}

func NewFilePersistence(dir string, puzzles service.PuzzleManager) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{
		dir:     dir,
		puzzles: puzzles,
	}, nil
}

// Save writes the session's snapshot atomically.
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	snap := sessionSnapshot{
		Version:        snapshotVersion,
		ID:             session.ID,
		PuzzleID:       fp.resolvePuzzleID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		State:          session.Engine.GetState(),
	}

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session snapshot: %w", err)
	}

	path := fp.snapshotPath(session.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0644); err != nil {
		return fmt.Errorf("failed to write session snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace session snapshot: %w", err)
	}

	return nil
}

// Load rebuilds a session from its snapshot. The puzzle definition is
// resolved through the puzzle manager and the stored board state is applied
// on top of a fresh engine.
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	payload, err := os.ReadFile(fp.snapshotPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session snapshot: %w", err)
	}

	var snap sessionSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session snapshot: %w", err)
	}
	if snap.Version > snapshotVersion {
		return nil, fmt.Errorf("session snapshot %s has unsupported version %d", id, snap.Version)
	}
	if snap.State == nil {
		return nil, fmt.Errorf("session snapshot %s has no board state", id)
	}

	puzzle, err := fp.puzzles.LoadPuzzle(snap.PuzzleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load puzzle '%s': %w", snap.PuzzleID, err)
	}

	eng, err := engine.NewEngine(puzzle)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}
	if err := eng.SetState(snap.State); err != nil {
		return nil, fmt.Errorf("failed to restore board state: %w", err)
	}

	return &service.Session{
		ID:             snap.ID,
		Engine:         eng,
		Config:         puzzle,
		CreatedAt:      snap.CreatedAt,
		LastAccessedAt: snap.LastAccessedAt,
	}, nil
}

// Delete removes a session's snapshot file.
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrSessionNotFound
	}

	if err := os.Remove(fp.snapshotPath(id)); err != nil {
		return fmt.Errorf("failed to remove session snapshot: %w", err)
	}
	return nil
}

// ListAll returns the IDs of every snapshot in the directory. Temp files
// left by interrupted writes are skipped.
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	return ids, nil
}

// Exists reports whether a snapshot file is on disk for the ID.
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.snapshotPath(id))
	return err == nil
}

func (fp *FilePersistence) snapshotPath(id string) string {
	return filepath.Join(fp.dir, id+".json")
}

// resolvePuzzleID maps a puzzle display name back to its file identifier.
// When no puzzle matches, the name itself is stored; Load fails loudly if
// the puzzle really is unknown.
func (fp *FilePersistence) resolvePuzzleID(displayName string) string {
	puzzles, err := fp.puzzles.ListPuzzles()
	if err != nil {
		return displayName
	}

	for _, p := range puzzles {
		if p.Name == displayName {
			return p.PuzzleID
		}
	}
	return displayName
}
