package brackets

// Slot positions are 1-based within a phase. Winners of positions 2i-1 and 2i
// meet at position i of the next phase; the odd feeder takes the home side.

// NextPosition returns the slot position the winner of the given position
// advances to in the following phase.
func NextPosition(position int) int {
	return (position + 1) / 2
}

// FeedsHome reports whether the winner of the given position enters its next
// slot on the home side.
func FeedsHome(position int) bool {
	return position%2 == 1
}

// SlotCount returns how many slots a phase needs given the slot count of the
// phase before it.
func SlotCount(previous int) int {
	return previous / 2
}
