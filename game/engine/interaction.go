package engine

import "time"

// InteractionMode selects how a session places pieces. The mode comes from
// the environment (pointer precision, touch support) and is fixed for the
// lifetime of a controller; gestures never mix modes.
type InteractionMode string

const (
	ModeDrag InteractionMode = "drag"
	ModeTap  InteractionMode = "tap"
)

// PreviewInterval coalesces pointer-move bursts so at most one preview
// recomputation happens per interval. Responsiveness only; the computation
// is idempotent and order-independent within the window.
const PreviewInterval = 16 * time.Millisecond

// Phase is the tagged state of the interaction session.
type Phase int

const (
	// PhaseIdle: no piece selected.
	PhaseIdle Phase = iota
	// PhaseSelected: a piece is selected but not yet dragged (drag mode).
	PhaseSelected
	// PhaseDragging: a piece follows the pointer (drag mode).
	PhaseDragging
	// PhaseArmed: a piece awaits a target cell tap (tap mode).
	PhaseArmed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSelected:
		return "selected"
	case PhaseDragging:
		return "dragging"
	case PhaseArmed:
		return "armed"
	}
	return "unknown"
}

// Events is the capability interface the controller notifies. The UI layer
// implements it; the controller never calls into rendering directly.
type Events interface {
	PieceSelected(pieceID string)
	PiecePlaced(pieceID string, pos Position)
	PieceReturned(pieceID string)
	PreviewChanged(cell *Position)
	BoardCompleted()
}

// NopEvents is an Events implementation that ignores everything.
type NopEvents struct{}

func (NopEvents) PieceSelected(string)         {}
func (NopEvents) PiecePlaced(string, Position) {}
func (NopEvents) PieceReturned(string)         {}
func (NopEvents) PreviewChanged(*Position)     {}
func (NopEvents) BoardCompleted()              {}

// Controller drives pointer/touch-based selection, dragging, live preview,
// and commit or cancel of a move. It owns the ephemeral interaction session;
// the board itself is only mutated through the engine at commit time, so a
// cancelled gesture never leaves a partial mutation behind.
//
// The controller is single-threaded by contract: all entry points are
// called from one event loop.
type Controller struct {
	engine *GameEngine
	geom   Geometry
	mode   InteractionMode
	events Events

	phase           Phase
	pieceID         string
	workingRotation int
	pointerOffset   Position
	lastPointer     Position
	fromBoard       bool
	preview         *Position
	lastPreviewAt   time.Time
}

// NewController creates an interaction controller for an engine. The mode
// is the environment's primary-mode signal; events may be nil.
func NewController(eng *GameEngine, geom Geometry, mode InteractionMode, events Events) *Controller {
	if events == nil {
		events = NopEvents{}
	}
	return &Controller{
		engine: eng,
		geom:   geom,
		mode:   mode,
		events: events,
		phase:  PhaseIdle,
	}
}

// SetGeometry swaps the screen projection, e.g. after a viewport resize.
// Logical positions, including an active preview cell, are unaffected.
func (c *Controller) SetGeometry(geom Geometry) {
	c.geom = geom
}

// Mode returns the controller's interaction mode.
func (c *Controller) Mode() InteractionMode { return c.mode }

// Phase returns the current session phase.
func (c *Controller) Phase() Phase { return c.phase }

// SelectedPiece returns the piece id of the active session, or "".
func (c *Controller) SelectedPiece() string { return c.pieceID }

// WorkingRotation returns the rotation the next commit would use.
func (c *Controller) WorkingRotation() int { return c.workingRotation }

// PreviewCell returns the current candidate drop cell, or nil.
func (c *Controller) PreviewCell() *Position {
	if c.preview == nil {
		return nil
	}
	cell := *c.preview
	return &cell
}

// selectable checks the shared preconditions for starting a session on a
// piece: it must exist and must not be a starter.
func (c *Controller) selectable(pieceID string) bool {
	state := c.engine.GetState()
	if _, ok := state.Pieces[pieceID]; !ok {
		return false
	}
	return !state.IsStarterPiece(pieceID)
}

// SelectPiece starts a new session on a piece. Any prior uncommitted
// session is cancelled first; two sessions never run concurrently. Starter
// pieces are rejected here, so no gesture can ever start on them.
func (c *Controller) SelectPiece(pieceID string) bool {
	if c.mode == ModeTap {
		return c.ArmPiece(pieceID)
	}

	if !c.selectable(pieceID) {
		return false
	}

	c.CancelSession()

	c.phase = PhaseSelected
	c.pieceID = pieceID
	c.workingRotation = c.currentRotationOf(pieceID)
	c.events.PieceSelected(pieceID)
	return true
}

// currentRotationOf returns a placed piece's rotation, or 0 for tray pieces.
func (c *Controller) currentRotationOf(pieceID string) int {
	if placed := c.engine.GetState().FindPlacedPiece(pieceID); placed != nil {
		return placed.Rotation
	}
	return 0
}

// BeginDrag transitions Selected to Dragging. The offset is the distance
// from the pointer to the piece's own origin, captured at drag start by the
// caller. A piece already on the board is only logically detached: its
// cells stay reserved in the grid and are excluded from preview checks via
// the ignore-piece parameter, so removal is deferred until commit.
func (c *Controller) BeginDrag(pieceID string, pointer, offset Position) bool {
	switch c.phase {
	case PhaseIdle, PhaseSelected, PhaseDragging:
		// A drag may start fresh or replace the current session.
	case PhaseArmed:
		return false
	}
	if c.mode != ModeDrag || !c.selectable(pieceID) {
		return false
	}

	if c.phase != PhaseSelected || c.pieceID != pieceID {
		if !c.SelectPiece(pieceID) {
			return false
		}
	}

	c.phase = PhaseDragging
	c.pointerOffset = offset
	c.lastPointer = pointer
	c.fromBoard = c.engine.GetState().FindPlacedPiece(pieceID) != nil
	c.lastPreviewAt = time.Time{}
	c.recomputePreview(pointer)
	return true
}

// PointerMove feeds a new pointer position into an active drag. Bursts are
// coalesced to at most one preview recomputation per PreviewInterval.
func (c *Controller) PointerMove(pointer Position) {
	switch c.phase {
	case PhaseDragging:
	case PhaseIdle, PhaseSelected, PhaseArmed:
		return
	}

	c.lastPointer = pointer
	if time.Since(c.lastPreviewAt) < PreviewInterval {
		return
	}
	c.recomputePreview(pointer)
}

// recomputePreview converts the pointer to a candidate top-left cell and
// validates it. A valid in-bounds cell becomes the preview; anything else
// clears it so no stale cell is ever shown.
func (c *Controller) recomputePreview(pointer Position) {
	c.lastPreviewAt = time.Now()

	ignore := ""
	if c.fromBoard {
		ignore = c.pieceID
	}

	gx, gy := c.geom.ScreenToGrid(pointer.X-c.pointerOffset.X, pointer.Y-c.pointerOffset.Y)

	valid := c.geom.IsValidGridPosition(gx, gy) &&
		c.engine.CanPlaceAt(c.pieceID, gx, gy, c.workingRotation, ignore)

	if valid {
		c.setPreview(&Position{X: gx, Y: gy})
	} else {
		c.setPreview(nil)
	}
}

func (c *Controller) setPreview(cell *Position) {
	if cell == nil && c.preview == nil {
		return
	}
	if cell != nil && c.preview != nil && *cell == *c.preview {
		return
	}
	c.preview = cell
	c.events.PreviewChanged(c.PreviewCell())
}

// PointerUp ends a drag. With a preview cell the placement is committed
// there at the working rotation; without one, or when the commit fails, the
// piece reverts: a board-origin piece keeps its pre-drag cells (they were
// never released), a tray piece simply stays in the tray.
func (c *Controller) PointerUp() bool {
	switch c.phase {
	case PhaseDragging:
	case PhaseIdle, PhaseSelected, PhaseArmed:
		return false
	}

	pieceID := c.pieceID
	committed := false

	if c.preview != nil {
		target := *c.preview
		if c.fromBoard {
			committed = c.engine.MovePiece(pieceID, target.X, target.Y, c.workingRotation)
		} else {
			committed = c.engine.PlacePiece(pieceID, target.X, target.Y, c.workingRotation)
		}
		if committed {
			c.events.PiecePlaced(pieceID, target)
			if c.engine.IsComplete() {
				c.events.BoardCompleted()
			}
		}
	}

	if !committed {
		c.events.PieceReturned(pieceID)
	}

	c.endSession()
	return committed
}

// ReleaseOverTray ends a drag over the inventory target: a board-origin
// piece is removed back to the unplaced pool, a tray piece just stays put.
func (c *Controller) ReleaseOverTray() bool {
	switch c.phase {
	case PhaseDragging:
	case PhaseIdle, PhaseSelected, PhaseArmed:
		return false
	}

	pieceID := c.pieceID
	removed := false
	if c.fromBoard {
		removed = c.engine.RemovePiece(pieceID)
	}
	c.events.PieceReturned(pieceID)
	c.endSession()
	return removed
}

// ArmPiece arms a tray piece for tap placement. Pieces already on the board
// and starters are rejected; arming replaces any prior session.
func (c *Controller) ArmPiece(pieceID string) bool {
	if c.mode != ModeTap {
		return false
	}
	if !c.selectable(pieceID) {
		return false
	}
	if c.engine.GetState().FindPlacedPiece(pieceID) != nil {
		return false
	}

	c.CancelSession()

	c.phase = PhaseArmed
	c.pieceID = pieceID
	c.workingRotation = 0
	c.events.PieceSelected(pieceID)
	return true
}

// TapCell attempts to place the armed piece at a board cell. On success the
// piece leaves the tray and the session ends; on failure the piece stays
// armed so the player can retry elsewhere; no board mutation happened.
func (c *Controller) TapCell(gx, gy int) bool {
	switch c.phase {
	case PhaseArmed:
	case PhaseIdle, PhaseSelected, PhaseDragging:
		return false
	}

	if !c.engine.PlacePiece(c.pieceID, gx, gy, c.workingRotation) {
		return false
	}

	c.events.PiecePlaced(c.pieceID, Position{X: gx, Y: gy})
	if c.engine.IsComplete() {
		c.events.BoardCompleted()
	}
	c.endSession()
	return true
}

// RotateSelected advances the working rotation of the active session by one
// quarter turn without touching the board. During a drag the preview is
// recomputed immediately, bypassing the coalescing window.
func (c *Controller) RotateSelected() bool {
	switch c.phase {
	case PhaseSelected, PhaseArmed:
		c.workingRotation = (c.workingRotation + 1) % RotationSteps
		return true
	case PhaseDragging:
		c.workingRotation = (c.workingRotation + 1) % RotationSteps
		c.lastPreviewAt = time.Time{}
		c.recomputePreview(c.lastPointer)
		return true
	case PhaseIdle:
		return false
	}
	return false
}

// CancelSession aborts any active session, e.g. on lost pointer capture.
// The board was never mutated mid-gesture, so dropping the session restores
// the exact pre-drag presentation.
func (c *Controller) CancelSession() {
	if c.phase == PhaseIdle {
		return
	}
	if c.pieceID != "" {
		c.events.PieceReturned(c.pieceID)
	}
	c.endSession()
}

// endSession resets the controller to Idle and clears the preview.
func (c *Controller) endSession() {
	c.phase = PhaseIdle
	c.pieceID = ""
	c.workingRotation = 0
	c.pointerOffset = Position{}
	c.fromBoard = false
	c.setPreview(nil)
}
