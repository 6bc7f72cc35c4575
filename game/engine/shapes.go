package engine

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownShape is returned when a shape id is not in the catalog.
// Callers must treat it as a precondition violation, not a game event.
var ErrUnknownShape = errors.New("unknown shape")

// Shape catalog ids
const (
	ShapeMono     ShapeID = "mono"
	ShapeDomino   ShapeID = "domino"
	ShapeTromI    ShapeID = "tromino_i"
	ShapeTromL    ShapeID = "tromino_l"
	ShapeTetI     ShapeID = "tetromino_i"
	ShapeTetO     ShapeID = "tetromino_o"
	ShapeTetT     ShapeID = "tetromino_t"
	ShapeTetS     ShapeID = "tetromino_s"
	ShapeTetZ     ShapeID = "tetromino_z"
	ShapeTetJ     ShapeID = "tetromino_j"
	ShapeTetL     ShapeID = "tetromino_l"
	ShapePentI    ShapeID = "pentomino_i"
	ShapePentL    ShapeID = "pentomino_l"
	ShapePentP    ShapeID = "pentomino_p"
	ShapePentT    ShapeID = "pentomino_t"
	ShapePentU    ShapeID = "pentomino_u"
	ShapePentV    ShapeID = "pentomino_v"
	ShapePentZ    ShapeID = "pentomino_z"
)

// mustPattern builds a Pattern from layout strings ('X' = occupied).
// Rows are padded to the longest row so the result is rectangular.
// It panics on malformed input; the catalog is defined at compile time.
func mustPattern(rows ...string) Pattern {
	if len(rows) == 0 {
		panic("shape pattern needs at least one row")
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		panic("shape pattern needs at least one column")
	}

	occupied := 0
	pattern := make(Pattern, len(rows))
	for r, row := range rows {
		pattern[r] = make([]bool, width)
		for c, ch := range row {
			switch ch {
			case 'X':
				pattern[r][c] = true
				occupied++
			case '.', ' ':
			default:
				panic(fmt.Sprintf("invalid pattern character %q in row %d", ch, r))
			}
		}
	}
	if occupied == 0 {
		panic("shape pattern needs at least one occupied cell")
	}
	return pattern
}

// shapeCatalog is the static registry of piece shapes. It is defined once
// at process start and never mutated.
var shapeCatalog = map[ShapeID]Shape{
	ShapeMono:   {ID: ShapeMono, Color: "yellow", Pattern: mustPattern("X")},
	ShapeDomino: {ID: ShapeDomino, Color: "sky", Pattern: mustPattern("XX")},
	ShapeTromI:  {ID: ShapeTromI, Color: "coral", Pattern: mustPattern("XXX")},
	ShapeTromL: {ID: ShapeTromL, Color: "lime", Pattern: mustPattern(
		"XX",
		"X.",
	)},
	ShapeTetI: {ID: ShapeTetI, Color: "cyan", Pattern: mustPattern("XXXX")},
	ShapeTetO: {ID: ShapeTetO, Color: "gold", Pattern: mustPattern(
		"XX",
		"XX",
	)},
	ShapeTetT: {ID: ShapeTetT, Color: "purple", Pattern: mustPattern(
		"XXX",
		".X.",
	)},
	ShapeTetS: {ID: ShapeTetS, Color: "green", Pattern: mustPattern(
		".XX",
		"XX.",
	)},
	ShapeTetZ: {ID: ShapeTetZ, Color: "red", Pattern: mustPattern(
		"XX.",
		".XX",
	)},
	ShapeTetJ: {ID: ShapeTetJ, Color: "blue", Pattern: mustPattern(
		"X..",
		"XXX",
	)},
	ShapeTetL: {ID: ShapeTetL, Color: "orange", Pattern: mustPattern(
		"..X",
		"XXX",
	)},
	ShapePentI: {ID: ShapePentI, Color: "teal", Pattern: mustPattern("XXXXX")},
	ShapePentL: {ID: ShapePentL, Color: "navy", Pattern: mustPattern(
		"XXXX",
		"X...",
	)},
	ShapePentP: {ID: ShapePentP, Color: "pink", Pattern: mustPattern(
		"XX",
		"XX",
		"X.",
	)},
	ShapePentT: {ID: ShapePentT, Color: "plum", Pattern: mustPattern(
		"XXX",
		".X.",
		".X.",
	)},
	ShapePentU: {ID: ShapePentU, Color: "olive", Pattern: mustPattern(
		"X.X",
		"XXX",
	)},
	ShapePentV: {ID: ShapePentV, Color: "maroon", Pattern: mustPattern(
		"X..",
		"X..",
		"XXX",
	)},
	ShapePentZ: {ID: ShapePentZ, Color: "slate", Pattern: mustPattern(
		"XX.",
		".X.",
		".XX",
	)},
}

// LookupShape resolves a shape id against the static catalog.
func LookupShape(id ShapeID) (Shape, error) {
	shape, ok := shapeCatalog[id]
	if !ok {
		return Shape{}, fmt.Errorf("%w: %q", ErrUnknownShape, id)
	}
	return shape, nil
}

// ShapeIDs returns all catalog ids in stable sorted order.
func ShapeIDs() []ShapeID {
	ids := make([]ShapeID, 0, len(shapeCatalog))
	for id := range shapeCatalog {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ShapeCellCount returns the number of occupied cells for a shape id,
// or 0 when the shape is unknown.
func ShapeCellCount(id ShapeID) int {
	shape, err := LookupShape(id)
	if err != nil {
		return 0
	}
	return PatternCellCount(shape.Pattern)
}
