package queries

import (
	"context"

	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	domainerrors "classconsensus/contexts/classroom/consensus-service/domain/errors"
	"classconsensus/contexts/classroom/consensus-service/domain/services"
	"classconsensus/contexts/classroom/consensus-service/ports"
)

// PresentationView is the committed presentation plus the derived tally as it
// would be computed by a finalize right now.
type PresentationView struct {
	Presentation entities.Presentation
	StudentBlock entities.Ballot
	Tally        entities.Tally
}

type PresentationQueryUseCase struct {
	Repository ports.Repository
}

func (uc PresentationQueryUseCase) GetAllIDs(ctx context.Context) ([]int64, error) {
	return uc.Repository.ListPresentationIDs(ctx)
}

func (uc PresentationQueryUseCase) GetPresentationView(ctx context.Context, id int64) (PresentationView, error) {
	if id < entities.FirstPresentationID {
		return PresentationView{}, domainerrors.ErrPresentationNotFound
	}
	presentation, err := uc.Repository.GetPresentation(ctx, id)
	if err != nil {
		return PresentationView{}, err
	}
	roster, err := uc.Repository.GetRoster(ctx)
	if err != nil {
		return PresentationView{}, err
	}
	return PresentationView{
		Presentation: presentation,
		StudentBlock: services.StudentBlock(presentation.StudentPass, presentation.StudentFail),
		Tally:        services.ComputeTally(presentation, roster),
	}, nil
}

func (uc PresentationQueryUseCase) GetAllStudents(ctx context.Context) ([]entities.Student, error) {
	return uc.Repository.ListStudents(ctx)
}
