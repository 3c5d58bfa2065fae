package postgresadapter

import (
	"time"

	"classconsensus/contexts/classroom/consensus-service/domain/entities"
)

const (
	rosterRowID           = 1
	presentationCounter   = "presentation_id"
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type identityModel struct {
	Address      string    `gorm:"column:address;primaryKey"`
	Role         string    `gorm:"column:role;not null"`
	Name         string    `gorm:"column:name;not null"`
	TASlot       int       `gorm:"column:ta_slot;not null;default:0"`
	RegisteredAt time.Time `gorm:"column:registered_at;index"`
}

func (identityModel) TableName() string {
	return "consensus_identities"
}

func identityModelFromEntity(identity entities.Identity) identityModel {
	return identityModel{
		Address:      entities.NormalizeAddress(identity.Address),
		Role:         identity.Role.String(),
		Name:         identity.Name,
		TASlot:       identity.TASlot,
		RegisteredAt: identity.RegisteredAt.UTC(),
	}
}

func (m identityModel) toEntity() entities.Identity {
	role, _ := entities.ParseRole(m.Role)
	return entities.Identity{
		Address:      m.Address,
		Role:         role,
		Name:         m.Name,
		TASlot:       m.TASlot,
		RegisteredAt: m.RegisteredAt.UTC(),
	}
}

type rosterModel struct {
	ID               int    `gorm:"column:id;primaryKey;autoIncrement:false"`
	ProfessorAddress string `gorm:"column:professor_address"`
	TASlot1          string `gorm:"column:ta_slot_1"`
	TASlot2          string `gorm:"column:ta_slot_2"`
}

func (rosterModel) TableName() string {
	return "consensus_roster"
}

func (m rosterModel) toEntity() entities.Roster {
	return entities.Roster{
		Professor: m.ProfessorAddress,
		TASlots:   [entities.TASlotCount]string{m.TASlot1, m.TASlot2},
	}
}

type counterModel struct {
	Name      string `gorm:"column:name;primaryKey"`
	NextValue int64  `gorm:"column:next_value;not null"`
}

func (counterModel) TableName() string {
	return "consensus_counters"
}

type presentationModel struct {
	ID             int64      `gorm:"column:id;primaryKey;autoIncrement:false"`
	Category       string     `gorm:"column:category;not null"`
	StudentAddress string     `gorm:"column:student_address;not null;index"`
	StudentName    string     `gorm:"column:student_name"`
	ProfessorVote  int16      `gorm:"column:professor_vote;not null;default:0"`
	TASlot1Vote    int16      `gorm:"column:ta_slot_1_vote;not null;default:0"`
	TASlot2Vote    int16      `gorm:"column:ta_slot_2_vote;not null;default:0"`
	StudentPass    int64      `gorm:"column:student_pass;not null;default:0"`
	StudentFail    int64      `gorm:"column:student_fail;not null;default:0"`
	Result         int16      `gorm:"column:result;not null;default:0"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
	FinalizedAt    *time.Time `gorm:"column:finalized_at"`
}

func (presentationModel) TableName() string {
	return "consensus_presentations"
}

func presentationModelFromEntity(p entities.Presentation) presentationModel {
	return presentationModel{
		ID:             p.ID,
		Category:       p.Category,
		StudentAddress: p.StudentAddress,
		StudentName:    p.StudentName,
		ProfessorVote:  int16(p.ProfessorVote),
		TASlot1Vote:    int16(p.TAVotes[0]),
		TASlot2Vote:    int16(p.TAVotes[1]),
		StudentPass:    p.StudentPass,
		StudentFail:    p.StudentFail,
		Result:         int16(p.Result),
		CreatedAt:      p.CreatedAt.UTC(),
		UpdatedAt:      p.UpdatedAt.UTC(),
		FinalizedAt:    normalizeOptionalTime(p.FinalizedAt),
	}
}

func (m presentationModel) toEntity() entities.Presentation {
	return entities.Presentation{
		ID:             m.ID,
		Category:       m.Category,
		StudentAddress: m.StudentAddress,
		StudentName:    m.StudentName,
		CreatedAt:      m.CreatedAt.UTC(),
		ProfessorVote:  entities.Ballot(m.ProfessorVote),
		TAVotes:        [entities.TASlotCount]entities.Ballot{entities.Ballot(m.TASlot1Vote), entities.Ballot(m.TASlot2Vote)},
		StudentPass:    m.StudentPass,
		StudentFail:    m.StudentFail,
		Result:         entities.Result(m.Result),
		FinalizedAt:    normalizeOptionalTime(m.FinalizedAt),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type studentVoteModel struct {
	PresentationID int64     `gorm:"column:presentation_id;primaryKey;autoIncrement:false"`
	VoterAddress   string    `gorm:"column:voter_address;primaryKey"`
	VotedAt        time.Time `gorm:"column:voted_at"`
}

func (studentVoteModel) TableName() string {
	return "consensus_student_votes"
}

// outboxModel rows relay in Sequence order. The column is a bigserial, so
// rows committed in the same instant keep their insertion order.
type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	Sequence     int64      `gorm:"column:sequence;autoIncrement;not null;uniqueIndex"`
	EventType    string     `gorm:"column:event_type;not null"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;not null;index"`
	CreatedAt    time.Time  `gorm:"column:created_at;index"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "consensus_outbox"
}

// Models lists the gorm models owned by this adapter for schema migration.
func Models() []any {
	return []any{
		&identityModel{},
		&rosterModel{},
		&counterModel{},
		&presentationModel{},
		&studentVoteModel{},
		&outboxModel{},
	}
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}
