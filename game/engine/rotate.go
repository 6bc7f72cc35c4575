package engine

// RotatePattern rotates a pattern clockwise by the given number of quarter
// turns. The count is normalized mod 4, so negative values and values above
// 3 are accepted. The input is never modified; rotating by 0 returns a copy.
func RotatePattern(p Pattern, times int) Pattern {
	times = ((times % RotationSteps) + RotationSteps) % RotationSteps

	result := copyPattern(p)
	for i := 0; i < times; i++ {
		result = rotateQuarter(result)
	}
	return result
}

// rotateQuarter performs a single 90° clockwise turn: pattern[r][c] maps to
// rotated[c][rows-1-r], swapping the matrix dimensions.
func rotateQuarter(p Pattern) Pattern {
	rows := len(p)
	cols := len(p[0])

	rotated := make(Pattern, cols)
	for r := range rotated {
		rotated[r] = make([]bool, rows)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			rotated[c][rows-1-r] = p[r][c]
		}
	}
	return rotated
}

func copyPattern(p Pattern) Pattern {
	out := make(Pattern, len(p))
	for r, row := range p {
		out[r] = make([]bool, len(row))
		copy(out[r], row)
	}
	return out
}

// PatternHeight returns the number of rows in a pattern.
func PatternHeight(p Pattern) int {
	return len(p)
}

// PatternWidth returns the number of columns in a pattern.
func PatternWidth(p Pattern) int {
	if len(p) == 0 {
		return 0
	}
	return len(p[0])
}

// PatternCellCount returns the number of occupied cells in a pattern.
func PatternCellCount(p Pattern) int {
	count := 0
	for _, row := range p {
		for _, occupied := range row {
			if occupied {
				count++
			}
		}
	}
	return count
}
