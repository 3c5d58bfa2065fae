package services

import "classconsensus/contexts/classroom/consensus-service/domain/entities"

// ComputeTally builds the block tally for a presentation.
//
// The professor and each filled TA slot contribute one block once they have
// voted. The student body contributes one block by simple majority; an even
// student split abstains.
func ComputeTally(p entities.Presentation, roster entities.Roster) entities.Tally {
	var tally entities.Tally
	add := func(ballot entities.Ballot) {
		switch ballot {
		case entities.BallotPass:
			tally.PassBlocks++
			tally.Participating++
		case entities.BallotFail:
			tally.FailBlocks++
			tally.Participating++
		case entities.BallotUnset:
		}
	}

	add(p.ProfessorVote)
	for i, ballot := range p.TAVotes {
		if !roster.SlotFilled(i + 1) {
			continue
		}
		add(ballot)
	}
	add(StudentBlock(p.StudentPass, p.StudentFail))
	return tally
}

// StudentBlock collapses the cumulative student counts into one ballot.
func StudentBlock(pass int64, fail int64) entities.Ballot {
	switch {
	case pass > fail:
		return entities.BallotPass
	case fail > pass:
		return entities.BallotFail
	default:
		return entities.BallotUnset
	}
}
