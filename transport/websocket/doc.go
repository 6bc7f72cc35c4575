// Package websocket pushes live board updates to viewers of a puzzle
// session.
//
// The hub keeps one room per session. Board operations produce two kinds of
// frames: a "board_update" snapshot carrying the full game state, and
// piece-level events ("piece_placed", "piece_removed", "piece_rotated",
// "piece_moved", "victory") carrying just the piece, position and message so
// clients can animate the move without diffing snapshots.
//
// Frame format:
//
//	{
//	  "session_id": "ab12",
//	  "event": "piece_placed",
//	  "piece_id": "t1",
//	  "position": {"x": 2, "y": 3},
//	  "message": "Piece t1 placed!"
//	}
//
// The protocol is push-only. Board operations go through the REST API; the
// resulting state and events are broadcast here. Inbound messages beyond
// the keepalive pongs are discarded.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	// in an HTTP handler, after validating the session:
//	hub.ServeWS(w, r, sessionID)
//
// Broadcasts are enqueued on a bounded queue drained by Run, so handlers
// never block on slow viewers. A subscriber whose connection cannot keep up
// is dropped; it recovers the current board on reconnect.
package websocket
