package game

// RollDie returns a uniform value in [1, faces]. faces below 1 is treated as 1.
func RollDie(r Rand, faces int) int {
	if faces < 1 {
		faces = 1
	}
	return r.IntN(faces) + 1
}

// Advance moves pos forward by roll, clamped to the final cell.
func Advance(pos, roll, totalCells int) int {
	next := pos + roll
	if next > totalCells {
		return totalCells
	}
	return next
}
