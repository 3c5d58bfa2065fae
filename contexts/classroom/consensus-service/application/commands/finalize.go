package commands

import (
	"context"
	"log/slog"

	application "classconsensus/contexts/classroom/consensus-service/application"
	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	domainerrors "classconsensus/contexts/classroom/consensus-service/domain/errors"
	"classconsensus/contexts/classroom/consensus-service/domain/services"
	"classconsensus/contexts/classroom/consensus-service/ports"
)

type FinalizeCommand struct {
	Caller         string
	PresentationID int64
}

type OverrideCommand struct {
	Caller         string
	PresentationID int64
	Pass           bool
}

// FinalizeResult is returned by both finalize and override. For an override
// Tally is the recorded vote state, which the professor's decision replaces.
type FinalizeResult struct {
	Presentation entities.Presentation
	Tally        entities.Tally
}

// FinalizeUseCase drives the IN_PROGRESS -> PASS/FAIL/TIE and
// TIE -> PASS/FAIL transitions.
type FinalizeUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// FinalizeResult tallies the participating blocks and commits the outcome.
// A presentation.result_finalized event is written in the same unit of work.
func (uc FinalizeUseCase) FinalizeResult(ctx context.Context, cmd FinalizeCommand) (FinalizeResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := entities.NormalizeAddress(cmd.Caller)

	var result FinalizeResult
	err := uc.Repository.Atomic(ctx, func(tx ports.Tx) error {
		identity, err := resolveCaller(ctx, tx, caller)
		if err != nil {
			return err
		}
		if !identity.Role.CanManagePresentations() {
			return domainerrors.ErrUnauthorized
		}
		presentation, err := loadPresentation(ctx, tx, cmd.PresentationID)
		if err != nil {
			return err
		}
		if presentation.Result != entities.ResultInProgress {
			return domainerrors.ErrInvalidState
		}
		roster, err := tx.GetRoster(ctx)
		if err != nil {
			return err
		}

		tally := services.ComputeTally(presentation, roster)
		now := nowFrom(uc.Clock)
		presentation.Result = tally.Outcome()
		presentation.UpdatedAt = now
		if presentation.Result.Terminal() {
			presentation.FinalizedAt = &now
		}
		if err := tx.SavePresentation(ctx, presentation); err != nil {
			return err
		}
		result = FinalizeResult{Presentation: presentation, Tally: tally}
		return appendPresentationEvent(ctx, tx, uc.IDGen, EventResultFinalized, presentation, map[string]any{
			"pass_blocks":   tally.PassBlocks,
			"fail_blocks":   tally.FailBlocks,
			"participating": tally.Participating,
			"finalized_by":  identity.Address,
		})
	})
	if err != nil {
		return FinalizeResult{}, logRejected(logger, "consensus_finalize_failed", err,
			"caller", caller,
			"presentation_id", cmd.PresentationID,
		)
	}

	logger.Info("presentation finalized",
		"event", "consensus_presentation_finalized",
		"module", moduleName,
		"layer", "application",
		"caller", caller,
		"presentation_id", result.Presentation.ID,
		"result", result.Presentation.Result.String(),
		"pass_blocks", result.Tally.PassBlocks,
		"fail_blocks", result.Tally.FailBlocks,
	)
	return result, nil
}

// ProfessorOverride resolves a tied presentation directly to PASS or FAIL.
func (uc FinalizeUseCase) ProfessorOverride(ctx context.Context, cmd OverrideCommand) (FinalizeResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := entities.NormalizeAddress(cmd.Caller)

	var result FinalizeResult
	err := uc.Repository.Atomic(ctx, func(tx ports.Tx) error {
		identity, err := resolveCaller(ctx, tx, caller)
		if err != nil {
			return err
		}
		switch identity.Role {
		case entities.RoleProfessor:
		case entities.RoleNone, entities.RoleStudent, entities.RoleTA:
			return domainerrors.ErrUnauthorized
		default:
			return domainerrors.ErrUnauthorized
		}
		presentation, err := loadPresentation(ctx, tx, cmd.PresentationID)
		if err != nil {
			return err
		}
		if presentation.Result != entities.ResultTiePendingOverride {
			return domainerrors.ErrInvalidState
		}
		roster, err := tx.GetRoster(ctx)
		if err != nil {
			return err
		}

		now := nowFrom(uc.Clock)
		if cmd.Pass {
			presentation.Result = entities.ResultPass
		} else {
			presentation.Result = entities.ResultFail
		}
		presentation.UpdatedAt = now
		presentation.FinalizedAt = &now
		if err := tx.SavePresentation(ctx, presentation); err != nil {
			return err
		}
		result = FinalizeResult{Presentation: presentation, Tally: services.ComputeTally(presentation, roster)}
		return appendPresentationEvent(ctx, tx, uc.IDGen, EventResultOverridden, presentation, map[string]any{
			"overridden_by": identity.Address,
		})
	})
	if err != nil {
		return FinalizeResult{}, logRejected(logger, "consensus_override_failed", err,
			"caller", caller,
			"presentation_id", cmd.PresentationID,
		)
	}

	logger.Info("tie overridden",
		"event", "consensus_tie_overridden",
		"module", moduleName,
		"layer", "application",
		"caller", caller,
		"presentation_id", result.Presentation.ID,
		"result", result.Presentation.Result.String(),
	)
	return result, nil
}
