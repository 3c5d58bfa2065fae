package commands

import (
	"context"
	"log/slog"

	application "classconsensus/contexts/classroom/consensus-service/application"
	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	domainerrors "classconsensus/contexts/classroom/consensus-service/domain/errors"
	"classconsensus/contexts/classroom/consensus-service/ports"
)

// CastVoteCommand is shared by the three voter classes.
type CastVoteCommand struct {
	Caller         string
	PresentationID int64
	Pass           bool
}

// VoteUseCase records votes on IN_PROGRESS presentations.
//
// Professor and TA ballots overwrite the previous value. Student votes are
// cumulative counts, limited to one per student per presentation.
type VoteUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	Logger     *slog.Logger
}

// voter describes one voter class: which role may vote and how the ballot is
// applied.
type voter struct {
	class     string
	authorize func(ctx context.Context, tx ports.Tx, caller entities.Identity) (int, error)
	apply     func(ctx context.Context, tx ports.Tx, caller entities.Identity, slot int, pass bool, p *entities.Presentation) error
}

var professorVoter = voter{
	class: "professor",
	authorize: func(_ context.Context, _ ports.Tx, caller entities.Identity) (int, error) {
		switch caller.Role {
		case entities.RoleProfessor:
			return 0, nil
		case entities.RoleNone, entities.RoleStudent, entities.RoleTA:
			return 0, domainerrors.ErrUnauthorized
		default:
			return 0, domainerrors.ErrUnauthorized
		}
	},
	apply: func(_ context.Context, _ ports.Tx, _ entities.Identity, _ int, pass bool, p *entities.Presentation) error {
		p.ProfessorVote = entities.BallotFromPass(pass)
		return nil
	},
}

var taVoter = voter{
	class: "ta",
	authorize: func(ctx context.Context, tx ports.Tx, caller entities.Identity) (int, error) {
		switch caller.Role {
		case entities.RoleTA:
		case entities.RoleNone, entities.RoleStudent, entities.RoleProfessor:
			return 0, domainerrors.ErrUnauthorized
		default:
			return 0, domainerrors.ErrUnauthorized
		}
		roster, err := tx.GetRoster(ctx)
		if err != nil {
			return 0, err
		}
		slot, ok := roster.TASlotOf(caller.Address)
		if !ok {
			return 0, domainerrors.ErrUnauthorized
		}
		return slot, nil
	},
	apply: func(_ context.Context, _ ports.Tx, _ entities.Identity, slot int, pass bool, p *entities.Presentation) error {
		p.TAVotes[slot-1] = entities.BallotFromPass(pass)
		return nil
	},
}

var studentVoter = voter{
	class: "student",
	authorize: func(_ context.Context, _ ports.Tx, caller entities.Identity) (int, error) {
		switch caller.Role {
		case entities.RoleStudent:
			return 0, nil
		case entities.RoleNone, entities.RoleTA, entities.RoleProfessor:
			return 0, domainerrors.ErrUnauthorized
		default:
			return 0, domainerrors.ErrUnauthorized
		}
	},
	apply: func(ctx context.Context, tx ports.Tx, caller entities.Identity, _ int, pass bool, p *entities.Presentation) error {
		first, err := tx.MarkStudentVoted(ctx, p.ID, caller.Address)
		if err != nil {
			return err
		}
		if !first {
			return domainerrors.ErrAlreadyVoted
		}
		if pass {
			p.StudentPass++
		} else {
			p.StudentFail++
		}
		return nil
	},
}

func (uc VoteUseCase) VoteProfessor(ctx context.Context, cmd CastVoteCommand) (entities.Presentation, error) {
	return uc.cast(ctx, professorVoter, cmd)
}

func (uc VoteUseCase) VoteTA(ctx context.Context, cmd CastVoteCommand) (entities.Presentation, error) {
	return uc.cast(ctx, taVoter, cmd)
}

func (uc VoteUseCase) VoteAsStudent(ctx context.Context, cmd CastVoteCommand) (entities.Presentation, error) {
	return uc.cast(ctx, studentVoter, cmd)
}

func (uc VoteUseCase) cast(ctx context.Context, v voter, cmd CastVoteCommand) (entities.Presentation, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := entities.NormalizeAddress(cmd.Caller)

	var updated entities.Presentation
	err := uc.Repository.Atomic(ctx, func(tx ports.Tx) error {
		identity, err := resolveCaller(ctx, tx, caller)
		if err != nil {
			return err
		}
		slot, err := v.authorize(ctx, tx, identity)
		if err != nil {
			return err
		}
		presentation, err := loadPresentation(ctx, tx, cmd.PresentationID)
		if err != nil {
			return err
		}
		if !presentation.AcceptingVotes() {
			return domainerrors.ErrInvalidState
		}
		if err := v.apply(ctx, tx, identity, slot, cmd.Pass, &presentation); err != nil {
			return err
		}
		presentation.UpdatedAt = nowFrom(uc.Clock)
		updated = presentation
		return tx.SavePresentation(ctx, presentation)
	})
	if err != nil {
		return entities.Presentation{}, logRejected(logger, "consensus_vote_failed", err,
			"voter_class", v.class,
			"caller", caller,
			"presentation_id", cmd.PresentationID,
		)
	}

	logger.Info("vote recorded",
		"event", "consensus_vote_recorded",
		"module", moduleName,
		"layer", "application",
		"voter_class", v.class,
		"caller", caller,
		"presentation_id", updated.ID,
		"pass", cmd.Pass,
	)
	return updated, nil
}
