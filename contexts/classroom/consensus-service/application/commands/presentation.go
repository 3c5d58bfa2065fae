package commands

import (
	"context"
	"log/slog"

	application "classconsensus/contexts/classroom/consensus-service/application"
	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	domainerrors "classconsensus/contexts/classroom/consensus-service/domain/errors"
	"classconsensus/contexts/classroom/consensus-service/ports"
)

// CreatePresentationCommand schedules a graded presentation for a student.
type CreatePresentationCommand struct {
	Caller   string
	Category string
	Student  string
}

type PresentationUseCase struct {
	Repository ports.Repository
	Categories entities.Categories
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// CreatePresentation allocates the next sequential id and stores a fresh
// IN_PROGRESS presentation. Failed creations release the reserved id.
func (uc PresentationUseCase) CreatePresentation(ctx context.Context, cmd CreatePresentationCommand) (entities.Presentation, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("presentation create started",
		"event", "consensus_presentation_create_started",
		"module", moduleName,
		"layer", "application",
		"caller", entities.NormalizeAddress(cmd.Caller),
		"student", entities.NormalizeAddress(cmd.Student),
		"category", cmd.Category,
	)

	var presentation entities.Presentation
	err := uc.Repository.Atomic(ctx, func(tx ports.Tx) error {
		caller, err := resolveCaller(ctx, tx, cmd.Caller)
		if err != nil {
			return err
		}
		if !caller.Role.CanManagePresentations() {
			return domainerrors.ErrUnauthorized
		}

		studentAddress := entities.NormalizeAddress(cmd.Student)
		if studentAddress == "" {
			return domainerrors.ErrStudentNotFound
		}
		student, found, err := tx.GetIdentity(ctx, studentAddress)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrStudentNotFound
		}
		if student.Role != entities.RoleStudent {
			return domainerrors.ErrNotAStudent
		}

		category, ok := uc.Categories.Resolve(cmd.Category)
		if !ok {
			return domainerrors.ErrInvalidCategory
		}

		id, err := tx.NextPresentationID(ctx)
		if err != nil {
			return err
		}
		presentation = entities.NewPresentation(id, category, student, nowFrom(uc.Clock))
		if err := tx.SavePresentation(ctx, presentation); err != nil {
			return err
		}
		return appendPresentationEvent(ctx, tx, uc.IDGen, eventPresentationCreated, presentation, map[string]any{
			"category":        presentation.Category,
			"student_address": presentation.StudentAddress,
			"created_by":      caller.Address,
		})
	})
	if err != nil {
		return entities.Presentation{}, logRejected(logger, "consensus_presentation_create_failed", err,
			"caller", entities.NormalizeAddress(cmd.Caller),
			"student", entities.NormalizeAddress(cmd.Student),
		)
	}

	logger.Info("presentation created",
		"event", "consensus_presentation_created",
		"module", moduleName,
		"layer", "application",
		"presentation_id", presentation.ID,
		"category", presentation.Category,
		"student", presentation.StudentAddress,
	)
	return presentation, nil
}
