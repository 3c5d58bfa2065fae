package entities

import "time"

// FirstPresentationID is the id assigned to the first presentation.
const FirstPresentationID int64 = 101

// Ballot is a single overwrite-style vote held by the professor or a TA slot.
type Ballot uint8

const (
	BallotUnset Ballot = iota
	BallotPass
	BallotFail
)

func BallotFromPass(pass bool) Ballot {
	if pass {
		return BallotPass
	}
	return BallotFail
}

func (b Ballot) String() string {
	switch b {
	case BallotPass:
		return "pass"
	case BallotFail:
		return "fail"
	default:
		return "unset"
	}
}

func (b Ballot) Cast() bool {
	return b == BallotPass || b == BallotFail
}

// Result is the presentation lifecycle state. The numeric values match the
// original client encoding (0..3).
type Result uint8

const (
	ResultInProgress Result = iota
	ResultPass
	ResultFail
	ResultTiePendingOverride
)

func (r Result) String() string {
	switch r {
	case ResultInProgress:
		return "IN_PROGRESS"
	case ResultPass:
		return "PASS"
	case ResultFail:
		return "FAIL"
	case ResultTiePendingOverride:
		return "TIE_PENDING_OVERRIDE"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transition is possible.
func (r Result) Terminal() bool {
	return r == ResultPass || r == ResultFail
}

// Presentation is the audit record for one graded presentation. Records are
// never deleted.
type Presentation struct {
	ID             int64
	Category       string
	StudentAddress string
	StudentName    string
	CreatedAt      time.Time
	ProfessorVote  Ballot
	TAVotes        [TASlotCount]Ballot
	StudentPass    int64
	StudentFail    int64
	Result         Result
	FinalizedAt    *time.Time
	UpdatedAt      time.Time
}

// NewPresentation returns an IN_PROGRESS presentation with no votes.
func NewPresentation(id int64, category string, student Identity, createdAt time.Time) Presentation {
	return Presentation{
		ID:             id,
		Category:       category,
		StudentAddress: student.Address,
		StudentName:    student.Name,
		CreatedAt:      createdAt.UTC(),
		Result:         ResultInProgress,
		UpdatedAt:      createdAt.UTC(),
	}
}

func (p Presentation) AcceptingVotes() bool {
	return p.Result == ResultInProgress
}
