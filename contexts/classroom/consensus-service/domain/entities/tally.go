package entities

// Tally counts participating voting blocks. Absent blocks count toward
// neither side nor the total.
type Tally struct {
	PassBlocks    int
	FailBlocks    int
	Participating int
}

// Outcome maps the tally onto the finalize transition target.
func (t Tally) Outcome() Result {
	switch {
	case t.PassBlocks > t.FailBlocks:
		return ResultPass
	case t.FailBlocks > t.PassBlocks:
		return ResultFail
	default:
		return ResultTiePendingOverride
	}
}
